package export

import (
	"chequeai/checkinfo"
	"encoding/csv"
	"io"
	"strings"
)

// CSVFilename is bank_check_<payee>_<date>.csv
func CSVFilename(d *Document) string {
	payee := strings.TrimSpace(d.Info.PayeeName)
	if payee == "" {
		payee = "unknown"
	}
	return "bank_check_" + safeFilename(payee) + "_" + d.CreatedAt.UTC().Format("2006-01-02") + ".csv"
}

// WriteCSV writes one Field,Value row per check field
func WriteCSV(w io.Writer, d *Document) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Field", "Value"}); err != nil {
		return err
	}
	for _, f := range d.fields() {
		if err := cw.Write([]string{f.Name, checkinfo.OrPlaceholder(f.Value)}); err != nil {
			return err
		}
	}
	if err := cw.Write([]string{"Extracted On", d.extractedOn()}); err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}
