package checkinfo

const NotAvailable = "Not available"

type BasicDetails struct {
	PayeeName   string `json:"payee_name"`
	Amount      string `json:"amount"`
	AmountWords string `json:"amount_words"`
	ChequeDate  string `json:"cheque_date"`
}

type BankDetails struct {
	MicrCode      string `json:"micr_code"`
	AccountNumber string `json:"account_number"`
	Currency      string `json:"currency"`
}

type SecurityFeatures struct {
	AntiFraudFeatures string `json:"anti_fraud_features"`
}

// Display groups reconciled values into sections. SecurityFeatures is nil when the
// cheque has no anti-fraud text.
type Display struct {
	BasicDetails     BasicDetails      `json:"basicDetails"`
	BankDetails      BankDetails       `json:"bankDetails"`
	SecurityFeatures *SecurityFeatures `json:"securityFeatures,omitempty"`
}

// Format fills empty values with NotAvailable. The amount always carries the currency,
// so a missing amount reads "Not available USD".
func Format(info Info) Display {
	currency := info.Currency
	if currency == "" {
		currency = DefaultCurrency
	}
	display := Display{
		BasicDetails: BasicDetails{
			PayeeName:   OrPlaceholder(info.PayeeName),
			Amount:      OrPlaceholder(info.AmountNumber) + " " + currency,
			AmountWords: OrPlaceholder(info.AmountWords),
			ChequeDate:  OrPlaceholder(info.ChequeDate),
		},
		BankDetails: BankDetails{
			MicrCode:      OrPlaceholder(info.MicrCode),
			AccountNumber: OrPlaceholder(info.AccountNumber),
			Currency:      currency,
		},
	}
	if info.AntiFraudFeatures != "" {
		display.SecurityFeatures = &SecurityFeatures{AntiFraudFeatures: info.AntiFraudFeatures}
	}
	return display
}

// OrPlaceholder returns s, or NotAvailable when s is empty
func OrPlaceholder(s string) string {
	if s == "" {
		return NotAvailable
	}
	return s
}
