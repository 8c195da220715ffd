package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

const (
	pageWidth    = 190.0
	pageBreakAt  = 270.0
	rowHeight    = 7.0
	headerHeight = 8.0
)

// PDFExporter renders reports into a tabular A4 document.
type PDFExporter struct{}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// Render creates a single-table document.
func (e *PDFExporter) Render(data Dataset, title string) ([]byte, error) {
	return e.RenderReport(Report{Title: title, Sections: []Section{{Data: data}}})
}

// RenderReport lays out each section as a titled table, breaking pages
// before a section header would be orphaned.
func (e *PDFExporter) RenderReport(report Report) ([]byte, error) {
	if len(report.Sections) == 0 {
		return nil, fmt.Errorf("pdf report requires at least one section")
	}
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	if report.Title != "" {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 10, tr(report.Title), "", 1, "C", false, 0, "")
	}
	if report.Subtitle != "" {
		pdf.SetFont("Arial", "", 10)
		pdf.CellFormat(0, 6, tr(report.Subtitle), "", 1, "C", false, 0, "")
	}
	pdf.Ln(4)

	for _, section := range report.Sections {
		headers := section.Data.Headers
		if len(headers) == 0 {
			return nil, fmt.Errorf("pdf section %q requires at least one header", section.Title)
		}
		if pdf.GetY()+headerHeight*2+rowHeight > pageBreakAt {
			pdf.AddPage()
		}
		if section.Title != "" {
			pdf.SetFont("Arial", "B", 11)
			pdf.CellFormat(0, headerHeight, tr(section.Title), "", 1, "L", false, 0, "")
		}

		colWidth := pageWidth / float64(len(headers))
		pdf.SetFont("Arial", "B", 9)
		for _, header := range headers {
			pdf.CellFormat(colWidth, headerHeight, tr(header), "1", 0, "C", false, 0, "")
		}
		pdf.Ln(-1)

		pdf.SetFont("Arial", "", 9)
		for _, row := range section.Data.Rows {
			for _, header := range headers {
				pdf.CellFormat(colWidth, rowHeight, tr(row[header]), "1", 0, "", false, 0, "")
			}
			pdf.Ln(-1)
		}
		pdf.Ln(4)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
