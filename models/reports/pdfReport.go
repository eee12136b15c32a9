package reports

import (
	"bytes"
	"io"

	"github.com/go-pdf/fpdf"
)

const (
	reportTitle    = "Washington County Health Department"
	pdfMargin      = 36.0
	pdfBodySize    = 10.0
	pdfMinFontSize = 5.0
	pdfRowPadding  = 6.0
)

// column widths in points, repeated for tables wider than the list
var pdfColWidths = []float64{80, 70, 70, 70, 70, 50, 100, 50, 90, 40}

type ReportTotal struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// TableReport is a titled grid rendered to a landscape letter page.
type TableReport struct {
	Subtitle string        `json:"subtitle"`
	Header   []string      `json:"header"`
	Rows     [][]string    `json:"rows"`
	Totals   []ReportTotal `json:"totals"`
}

// columnWidths cycles the fixed widths and shrinks them proportionally when the table
// does not fit between the margins. The second value is the shrink factor.
func columnWidths(n int, usable float64) ([]float64, float64) {
	widths := make([]float64, n)
	var sum float64
	for i := range widths {
		widths[i] = pdfColWidths[i%len(pdfColWidths)]
		sum += widths[i]
	}
	if sum <= usable || sum == 0 {
		return widths, 1
	}
	scale := usable / sum
	for i := range widths {
		widths[i] *= scale
	}
	return widths, scale
}

func (r *TableReport) WritePDF(w io.Writer) error {
	pdf := fpdf.New("L", "pt", "Letter", "")
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(false, pdfMargin)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pageW, pageH := pdf.GetPageSize()

	widths, scale := columnWidths(len(r.Header), pageW-2*pdfMargin)
	fontSize := pdfBodySize * scale
	if fontSize < pdfMinFontSize {
		fontSize = pdfMinFontSize
	}
	rowH := fontSize + pdfRowPadding

	pdf.AddPage()
	pdf.Ln(12)
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 22, tr(reportTitle), "", 1, "C", false, 0, "")
	if r.Subtitle != "" {
		pdf.SetFont("Helvetica", "I", 11)
		pdf.MultiCell(0, 14, tr(r.Subtitle), "", "L", false)
	}
	pdf.Ln(12)

	drawHeader := func() {
		pdf.SetFont("Helvetica", "B", fontSize)
		pdf.SetFillColor(169, 169, 169)
		pdf.SetTextColor(255, 255, 255)
		pdf.SetDrawColor(0, 0, 0)
		for i, h := range r.Header {
			pdf.CellFormat(widths[i], rowH+4, fitText(pdf, tr(h), widths[i]), "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Helvetica", "", fontSize)
		pdf.SetFillColor(245, 245, 245)
		pdf.SetTextColor(0, 0, 0)
	}
	drawHeader()
	for _, row := range r.Rows {
		if pdf.GetY()+rowH > pageH-pdfMargin {
			pdf.AddPage()
			drawHeader()
		}
		for i := range r.Header {
			var cell string
			if i < len(row) {
				cell = row[i]
			}
			pdf.CellFormat(widths[i], rowH, fitText(pdf, tr(cell), widths[i]), "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
	}

	if len(r.Totals) > 0 {
		if pdf.GetY()+12+float64(len(r.Totals))*14 > pageH-pdfMargin {
			pdf.AddPage()
		}
		pdf.Ln(12)
		for _, t := range r.Totals {
			pdf.SetFont("Helvetica", "B", 10)
			label := tr(t.Label + ":")
			pdf.CellFormat(pdf.GetStringWidth(label)+4, 14, label, "", 0, "L", false, 0, "")
			pdf.SetFont("Helvetica", "", 10)
			pdf.CellFormat(0, 14, tr(t.Value), "", 1, "L", false, 0, "")
		}
	}
	return pdf.Output(w)
}

// Bytes renders the report into memory.
func (r *TableReport) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := r.WritePDF(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// fitText cuts s so it fits a cell of width w with a little padding.
func fitText(pdf *fpdf.Fpdf, s string, w float64) string {
	limit := w - 4
	if pdf.GetStringWidth(s) <= limit {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 && pdf.GetStringWidth(string(runes)+"..") > limit {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + ".."
}
