package checkinfo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReconcile(t *testing.T) {
	tests := []struct {
		name   string
		rec    Record
		parsed Fields
		want   Info
	}{
		{
			name: "column wins over json",
			rec:  Record{PayeeName: "FROM COLUMN"},
			parsed: Fields{
				KeyPayeeName: "FROM JSON",
			},
			want: Info{PayeeName: "FROM COLUMN", Currency: "USD"},
		},
		{
			name:   "json used when column empty",
			rec:    Record{PayeeName: ""},
			parsed: Fields{KeyPayeeName: "FROM JSON"},
			want:   Info{PayeeName: "FROM JSON", Currency: "USD"},
		},
		{
			name:   "blank column counts as empty",
			rec:    Record{AmountWords: "   "},
			parsed: Fields{KeyAmountWords: "EIGHT DOLLARS"},
			want:   Info{AmountWords: "EIGHT DOLLARS", Currency: "USD"},
		},
		{
			name:   "blank json value counts as empty",
			rec:    Record{},
			parsed: Fields{KeyMicrCode: "  ", KeyChequeDate: nil},
			want:   Info{Currency: "USD"},
		},
		{
			name:   "no json",
			rec:    Record{MicrCode: "056111"},
			parsed: nil,
			want:   Info{MicrCode: "056111", Currency: "USD"},
		},
		{
			name:   "numeric json value",
			rec:    Record{},
			parsed: Fields{KeyAmountNumber: 8.01},
			want:   Info{AmountNumber: "8.01", Currency: "USD"},
		},
		{
			name:   "currency column",
			rec:    Record{CurrencyName: "AUD"},
			parsed: nil,
			want:   Info{Currency: "AUD"},
		},
		{
			name:   "currency ignores json",
			rec:    Record{},
			parsed: Fields{KeyCurrencyName: "EUR", "currency": "EUR"},
			want:   Info{Currency: "USD"},
		},
		{
			name: "all fields from json",
			rec:  Record{},
			parsed: Fields{
				KeyMicrCode:          "m",
				KeyChequeDate:        "d",
				KeyAmountNumber:      "1",
				KeyAmountWords:       "one",
				KeyPayeeName:         "p",
				KeyAccountNumber:     "a",
				KeyAntiFraudFeatures: "f",
			},
			want: Info{
				PayeeName:         "p",
				AmountNumber:      "1",
				AmountWords:       "one",
				ChequeDate:        "d",
				MicrCode:          "m",
				AccountNumber:     "a",
				AntiFraudFeatures: "f",
				Currency:          "USD",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Reconcile(tt.rec, tt.parsed)
			assert.Equal(t, tt.want, got)
			// No hidden state: a second run gives the same answer
			assert.Equal(t, got, Reconcile(tt.rec, tt.parsed))
		})
	}
}

func TestExtractScenarios(t *testing.T) {
	t.Run("payee from json, amount from column", func(t *testing.T) {
		info := Extract(Record{
			PayeeName:     "",
			AmountNumber:  "8.01",
			CurrencyName:  "",
			ExtractedText: `{"payee_name":"JULIUS EVENTS COLLEGE PTY LTD"}`,
		})
		assert.Equal(t, "JULIUS EVENTS COLLEGE PTY LTD", info.PayeeName)
		assert.Equal(t, "8.01 USD", Format(info).BasicDetails.Amount)
	})

	t.Run("prose only", func(t *testing.T) {
		display := Format(Extract(Record{ExtractedText: "Sorry, I could not read this cheque."}))
		assert.Equal(t, Display{
			BasicDetails: BasicDetails{
				PayeeName:   NotAvailable,
				Amount:      "Not available USD",
				AmountWords: NotAvailable,
				ChequeDate:  NotAvailable,
			},
			BankDetails: BankDetails{
				MicrCode:      NotAvailable,
				AccountNumber: NotAvailable,
				Currency:      "USD",
			},
		}, display)
	})

	t.Run("unbalanced brace inside value", func(t *testing.T) {
		assert.NotPanics(t, func() {
			info := Extract(Record{ExtractedText: `{"account_number": "}12345{"}`})
			assert.Equal(t, "USD", info.Currency)
		})
	})

	t.Run("fenced model answer", func(t *testing.T) {
		info := Extract(Record{
			ExtractedText: "```json\n{\"micr_code\": \"056111 063-978 1007928\", \"cheque_date\": \"07 November 2017\"}\n```",
			ChequeDate:    "2017-11-07",
		})
		assert.Equal(t, "056111 063-978 1007928", info.MicrCode)
		assert.Equal(t, "2017-11-07", info.ChequeDate)
	})
}
