package export

import (
	"io"
	"strings"

	"github.com/go-pdf/fpdf"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
)

const (
	fontSans = "Go"
	fontMono = "GoMono"
)

// The Go fonts have no E-13B glyphs, MICR symbols are written as their usual letters
var micrSymbols = strings.NewReplacer(
	"\u2446", "T", // transit
	"\u2447", "A", // amount
	"\u2448", "U", // on-us
	"\u2449", "D", // dash
)

func newPDF() *fpdf.Fpdf {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.AddUTF8FontFromBytes(fontSans, "", goregular.TTF)
	pdf.AddUTF8FontFromBytes(fontSans, "B", gobold.TTF)
	pdf.AddUTF8FontFromBytes(fontMono, "", gomono.TTF)
	return pdf
}

// PDFFilename is bank_check_extraction_<created at, ISO 8601 with ':' and '.' replaced>.pdf
func PDFFilename(d *Document) string {
	stamp := d.CreatedAt.UTC().Format("2006-01-02T15:04:05.000Z")
	stamp = strings.NewReplacer(":", "-", ".", "-").Replace(stamp)
	return "bank_check_extraction_" + stamp + ".pdf"
}

// WritePDF renders the report. Empty fields are left out, the raw model answer comes last.
func WritePDF(w io.Writer, d *Document) error {
	pdf := newPDF()
	tr := micrSymbols.Replace
	pdf.SetTitle("Bank Check AI Extraction", true)
	pdf.AddPage()

	pdf.SetFont(fontSans, "B", 24)
	pdf.CellFormat(0, 12, "Bank Check AI Extraction", "", 1, "C", false, 0, "")
	pdf.Ln(10)

	pdf.SetFont(fontSans, "", 12)
	pdf.MultiCell(0, 6, tr("Extracted On: "+d.extractedOn()), "", "L", false)
	if d.ImageFilename != "" {
		pdf.MultiCell(0, 6, tr("Image File: "+d.ImageFilename), "", "L", false)
	}
	pdf.Ln(10)

	pdf.SetFont(fontSans, "B", 16)
	pdf.CellFormat(0, 8, "Extracted Check Details", "", 1, "L", false, 0, "")
	pdf.Ln(4)
	pdf.SetFont(fontSans, "", 12)
	for _, f := range d.fields() {
		if strings.TrimSpace(f.Value) == "" {
			continue
		}
		pdf.MultiCell(0, 6, tr(f.Name+": "+f.Value), "", "L", false)
		pdf.Ln(2)
	}
	pdf.Ln(8)

	if d.ExtractedText != "" {
		pdf.SetFont(fontSans, "B", 16)
		pdf.CellFormat(0, 8, "Raw Extracted Text", "", 1, "L", false, 0, "")
		pdf.Ln(4)
		pdf.SetFont(fontMono, "", 10)
		pdf.MultiCell(0, 5, tr(d.ExtractedText), "", "L", false)
	}
	return pdf.Output(w)
}
