package checkinfo

import "strings"

// Keys shared by the structured columns, the extraction prompt and the recovered JSON
const (
	KeyMicrCode          = "micr_code"
	KeyChequeDate        = "cheque_date"
	KeyAmountNumber      = "amount_number"
	KeyAmountWords       = "amount_words"
	KeyCurrencyName      = "currency_name"
	KeyPayeeName         = "payee_name"
	KeyAccountNumber     = "account_number"
	KeyAntiFraudFeatures = "anti_fraud_features"

	DefaultCurrency = "USD"
)

// Record is the part of a stored cheque the reconciliation needs
type Record struct {
	MicrCode          string
	ChequeDate        string
	AmountNumber      string
	AmountWords       string
	CurrencyName      string
	PayeeName         string
	AccountNumber     string
	AntiFraudFeatures string
	ExtractedText     string
}

// Info holds one resolved value per field. Empty means no source had a value.
type Info struct {
	PayeeName         string `json:"payee_name"`
	AmountNumber      string `json:"amount_number"`
	AmountWords       string `json:"amount_words"`
	ChequeDate        string `json:"cheque_date"`
	MicrCode          string `json:"micr_code"`
	AccountNumber     string `json:"account_number"`
	AntiFraudFeatures string `json:"anti_fraud_features"`
	Currency          string `json:"currency"`
}

// Extract parses the record's extracted text and reconciles it with the structured columns
func Extract(rec Record) Info {
	parsed, _ := ParseExtracted(rec.ExtractedText)
	return Reconcile(rec, parsed)
}

// Reconcile picks the value of every field: the structured column when it is not blank,
// then the recovered JSON value under the same key, then "". Currency never looks at the
// JSON and falls back to DefaultCurrency. parsed may be nil.
func Reconcile(rec Record, parsed Fields) Info {
	return Info{
		PayeeName:         pick(rec.PayeeName, parsed, KeyPayeeName),
		AmountNumber:      pick(rec.AmountNumber, parsed, KeyAmountNumber),
		AmountWords:       pick(rec.AmountWords, parsed, KeyAmountWords),
		ChequeDate:        pick(rec.ChequeDate, parsed, KeyChequeDate),
		MicrCode:          pick(rec.MicrCode, parsed, KeyMicrCode),
		AccountNumber:     pick(rec.AccountNumber, parsed, KeyAccountNumber),
		AntiFraudFeatures: pick(rec.AntiFraudFeatures, parsed, KeyAntiFraudFeatures),
		Currency:          currency(rec.CurrencyName),
	}
}

func pick(column string, parsed Fields, key string) string {
	if !isBlank(column) {
		return column
	}
	if value := parsed.String(key); !isBlank(value) {
		return value
	}
	return ""
}

func currency(column string) string {
	if isBlank(column) {
		return DefaultCurrency
	}
	return column
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
