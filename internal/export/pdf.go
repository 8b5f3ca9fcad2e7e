package export

import (
	"fmt"
	"io"
	"time"

	"github.com/alleghenyre/propsearch/internal/property"
	"github.com/go-pdf/fpdf"
)

var colWidths = []float64{80, 40, 32, 28, 22, 75}

// WritePDF draws the report table on landscape A4 pages, repeating the
// header row on each page.
func WritePDF(w io.Writer, props []property.Property, generated time.Time) error {
	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetTitle("Property Report", true)
	pdf.SetAutoPageBreak(true, 15)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	header := func() {
		pdf.SetFont("Helvetica", "B", 9)
		pdf.SetFillColor(66, 139, 202)
		pdf.SetTextColor(255, 255, 255)
		for i, c := range columns {
			pdf.CellFormat(colWidths[i], 8, c, "1", 0, "L", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Helvetica", "", 8)
		pdf.SetTextColor(0, 0, 0)
	}

	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 20)
	pdf.Cell(0, 10, "Property Report")
	pdf.Ln(12)
	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 7, "Generated on: "+generated.Format("1/2/2006"))
	pdf.Ln(7)
	pdf.Cell(0, 7, fmt.Sprintf("Total Properties: %d", len(props)))
	pdf.Ln(10)
	header()

	_, pageHeight := pdf.GetPageSize()
	_, _, _, bottom := pdf.GetMargins()
	for n, p := range props {
		if pdf.GetY()+7 > pageHeight-bottom-15 {
			pdf.AddPage()
			header()
		}
		fill := n%2 == 1
		pdf.SetFillColor(245, 245, 245)
		for i, cell := range row(p) {
			pdf.CellFormat(colWidths[i], 7, fitCell(pdf, tr, cell, colWidths[i]-2), "1", 0, "L", fill, 0, "")
		}
		pdf.Ln(-1)
	}

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	return pdf.Output(w)
}

// fitCell translates s for the core font and shortens it to fit width,
// marking the cut with "...". Cutting happens on the UTF-8 text so
// multi-byte characters are never split.
func fitCell(pdf *fpdf.Fpdf, tr func(string) string, s string, width float64) string {
	if out := tr(s); pdf.GetStringWidth(out) <= width {
		return out
	}
	r := []rune(s)
	for len(r) > 0 && pdf.GetStringWidth(tr(string(r)+"...")) > width {
		r = r[:len(r)-1]
	}
	return tr(string(r) + "...")
}
