package render

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"
)

// PDFMIMEType is the MIME type of rendered documents.
const PDFMIMEType = "application/pdf"

const (
	pageBottomLimit = 272 // mm on A4 before we force a break inside the table
	nameColWidth    = 130
	rateColWidth    = 50
	rowHeight       = 8
	lineHeight      = 6
)

// RenderPDF lays the document out as a paginated A4 PDF and returns the
// bytes. Blocks render in order: header text, item table (rates
// right-aligned with the currency symbol), footer text. The table header
// repeats after page breaks.
func RenderPDF(doc Document, opts Options) ([]byte, error) {
	if doc.Empty() {
		return nil, fmt.Errorf("nothing to render")
	}
	if opts.CurrencySymbol == "" {
		opts.CurrencySymbol = "$"
	}
	family := opts.Font.coreName()
	style := opts.style()

	pdf := fpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	if opts.Title != "" {
		pdf.SetTitle(tr(opts.Title), false)
	}
	pdf.SetMargins(15, 18, 15)
	pdf.SetAutoPageBreak(true, 20)
	pdf.AddPage()
	pdf.SetTextColor(opts.TextColor.R, opts.TextColor.G, opts.TextColor.B)

	if doc.HeaderText != "" {
		pdf.SetFont(family, style, 12)
		pdf.MultiCell(0, lineHeight, tr(doc.HeaderText), "", "L", false)
		pdf.Ln(4)
	}

	if len(doc.Items) > 0 {
		tableHeader := func() {
			pdf.SetFont(family, withBold(style), 11)
			pdf.SetFillColor(235, 235, 235)
			pdf.CellFormat(nameColWidth, rowHeight, tr("Item"), "1", 0, "L", true, 0, "")
			pdf.CellFormat(rateColWidth, rowHeight, tr("Rate"), "1", 1, "R", true, 0, "")
		}
		tableHeader()
		pdf.SetFont(family, style, 11)
		for _, it := range doc.Items {
			if pdf.GetY() > pageBottomLimit {
				pdf.AddPage()
				tableHeader()
				pdf.SetFont(family, style, 11)
			}
			name := fitCell(pdf, tr(it.Name), nameColWidth-4)
			rate := tr(opts.CurrencySymbol + it.Rate)
			pdf.CellFormat(nameColWidth, rowHeight, name, "1", 0, "L", false, 0, "")
			pdf.CellFormat(rateColWidth, rowHeight, rate, "1", 1, "R", false, 0, "")
		}
		pdf.Ln(4)
	}

	if doc.FooterText != "" {
		pdf.SetFont(family, style, 11)
		pdf.MultiCell(0, lineHeight, tr(doc.FooterText), "", "L", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func withBold(style string) string {
	if bytes.ContainsRune([]byte(style), 'B') {
		return style
	}
	return style + "B"
}

// fitCell trims a string to the given width, appending an ellipsis when it
// would overflow its column.
func fitCell(pdf *fpdf.Fpdf, s string, width float64) string {
	if pdf.GetStringWidth(s) <= width {
		return s
	}
	const ell = "..."
	for len(s) > 0 && pdf.GetStringWidth(s+ell) > width {
		s = s[:len(s)-1]
	}
	return s + ell
}
