package leads

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

const sheetFont = "Helvetica"

// RenderSheet lays the lead out as a one page PDF for the receiving agents.
func RenderSheet(lead Lead) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Lead "+lead.ID, false)
	pdf.SetAuthor("Lead Wizard", false)
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(true, 20)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.AddPage()
	pdf.SetFont(sheetFont, "B", 18)
	pdf.CellFormat(0, 10, tr(sheetTitle(lead.Kind)), "", 1, "C", false, 0, "")
	pdf.SetFont(sheetFont, "", 11)
	pdf.CellFormat(0, 7, tr(lead.CreatedAt.Format("January 2, 2006 15:04 MST")), "", 1, "C", false, 0, "")
	hr(pdf)

	section(pdf, "Contact")
	for _, f := range contactFields(lead) {
		kvLine(pdf, tr, f.Label, f.Value)
	}
	hr(pdf)

	section(pdf, "Request")
	for _, f := range requestFields(lead) {
		kvLine(pdf, tr, f.Label, f.Value)
	}

	if lead.AdditionalDetails != "" {
		hr(pdf)
		section(pdf, "Additional details")
		pdf.SetFont(sheetFont, "", 11)
		pdf.MultiCell(0, 6, tr(lead.AdditionalDetails), "", "L", false)
	}

	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont(sheetFont, "", 9)
		pdf.CellFormat(0, 10, tr("Lead "+lead.ID), "", 0, "C", false, 0, "")
	})

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render lead sheet: %w", err)
	}
	return buf.Bytes(), nil
}

func sheetTitle(kind Kind) string {
	if kind == KindBuyAndSell {
		return "Sell & Buy Lead"
	}
	return "Buyer Lead"
}

func section(pdf *gofpdf.Fpdf, title string) {
	pdf.SetFont(sheetFont, "B", 12)
	pdf.CellFormat(0, 8, title, "", 1, "L", false, 0, "")
}

func kvLine(pdf *gofpdf.Fpdf, tr func(string) string, key, val string) {
	pdf.SetFont(sheetFont, "B", 11)
	pdf.CellFormat(55, 6, tr(key+":"), "", 0, "L", false, 0, "")
	pdf.SetFont(sheetFont, "", 11)
	pdf.CellFormat(0, 6, tr(val), "", 1, "L", false, 0, "")
}

func hr(pdf *gofpdf.Fpdf) {
	y := pdf.GetY() + 1.5
	pdf.SetLineWidth(0.2)
	pdf.Line(20, y, 190, y)
	pdf.SetY(y + 3)
}
