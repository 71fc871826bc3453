package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

const (
	pageWidth   = 190.0
	rowHeight   = 6.5
	headingSize = 11
)

// PDFExporter renders agendas into an A4 document with one table per section.
type PDFExporter struct{}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// Render lays out the agenda. Sections without rows are still printed so an
// empty day range reads as such.
func (e *PDFExporter) Render(agenda Agenda) ([]byte, error) {
	if len(agenda.Columns) == 0 {
		return nil, fmt.Errorf("pdf requires at least one column")
	}
	widths := columnWidths(agenda.Columns)

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetMargins(10, 15, 10)
	pdf.AliasNbPages("")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-12)
		pdf.SetFont("Arial", "I", 8)
		pdf.CellFormat(0, 8, fmt.Sprintf("Page %d/{nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	if agenda.Title != "" {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 10, tr(agenda.Title), "", 1, "C", false, 0, "")
	}
	if agenda.Subtitle != "" {
		pdf.SetFont("Arial", "", 10)
		pdf.CellFormat(0, 6, tr(agenda.Subtitle), "", 1, "C", false, 0, "")
	}
	pdf.Ln(4)

	header := func() {
		pdf.SetFont("Arial", "B", 9)
		pdf.SetFillColor(230, 230, 230)
		for i, col := range agenda.Columns {
			pdf.CellFormat(widths[i], rowHeight, tr(col.Header), "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
	}

	for _, section := range agenda.Sections {
		if section.Heading != "" {
			pdf.SetFont("Arial", "B", headingSize)
			pdf.CellFormat(0, 8, tr(section.Heading), "", 1, "L", false, 0, "")
		}
		header()
		pdf.SetFont("Arial", "", 9)
		if len(section.Rows) == 0 {
			pdf.CellFormat(pageWidth, rowHeight, "-", "1", 1, "C", false, 0, "")
		}
		for _, row := range section.Rows {
			for i, col := range agenda.Columns {
				var value string
				if i < len(row) {
					value = row[i]
				}
				pdf.CellFormat(widths[i], rowHeight, tr(value), "1", 0, col.Align, false, 0, "")
			}
			pdf.Ln(-1)
		}
		pdf.Ln(3)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func columnWidths(columns []Column) []float64 {
	widths := make([]float64, len(columns))
	fixed, flexible := 0.0, 0
	for _, col := range columns {
		if col.Width > 0 {
			fixed += col.Width
		} else {
			flexible++
		}
	}
	share := 0.0
	if flexible > 0 && fixed < pageWidth {
		share = (pageWidth - fixed) / float64(flexible)
	}
	for i, col := range columns {
		if col.Width > 0 {
			widths[i] = col.Width
		} else {
			widths[i] = share
		}
	}
	return widths
}
