// Package export renders a reconciled check as a downloadable CSV or PDF file.
package export

import (
	"chequeai/checkinfo"
	"regexp"
	"time"
)

// Document is what both export formats print
type Document struct {
	Info          checkinfo.Info
	CreatedAt     time.Time
	ImageFilename string
	ExtractedText string
}

type field struct {
	Name  string
	Value string
}

// fields lists the check fields in export order
func (d *Document) fields() []field {
	return []field{
		{"MICR Code", d.Info.MicrCode},
		{"Cheque Date", d.Info.ChequeDate},
		{"Amount (Numbers)", d.Info.AmountNumber},
		{"Amount (Words)", d.Info.AmountWords},
		{"Currency", d.Info.Currency},
		{"Payee Name", d.Info.PayeeName},
		{"Account Number", d.Info.AccountNumber},
		{"Anti-Fraud Features", d.Info.AntiFraudFeatures},
	}
}

func (d *Document) extractedOn() string {
	return d.CreatedAt.Local().Format("02/01/2006, 15:04:05")
}

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

func safeFilename(s string) string {
	return unsafeFilenameChars.ReplaceAllString(s, "_")
}
