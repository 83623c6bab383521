package services

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"

	"apartment_app_echo/internal/models"
)

// RenderInvoicePDF produces a one-page A4 invoice. Core PDF fonts only cover
// cp1252, so labels are ASCII and free text is transliterated by gofpdf.
func RenderInvoicePDF(inv *models.Invoice) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle("Invoice "+inv.InvoiceNumber, false)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 18)
	pdf.CellFormat(0, 12, "INVOICE", "", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 11)
	pdf.CellFormat(0, 7, "Number: "+inv.InvoiceNumber, "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 7, "Issue date: "+FormatDate(inv.IssueDate), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 7, "Due date: "+FormatDate(inv.DueDate), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	if inv.User != nil {
		pdf.SetFont("Arial", "B", 11)
		pdf.CellFormat(0, 7, "Bill to", "", 1, "L", false, 0, "")
		pdf.SetFont("Arial", "", 11)
		pdf.CellFormat(0, 7, tr(inv.User.Name), "", 1, "L", false, 0, "")
		pdf.CellFormat(0, 7, inv.User.Email, "", 1, "L", false, 0, "")
	}
	if inv.Apartment != nil {
		pdf.CellFormat(0, 7, fmt.Sprintf("Apartment %s, building %s", tr(inv.Apartment.ApartmentNumber), tr(inv.Apartment.Building)), "", 1, "L", false, 0, "")
	}
	pdf.Ln(6)

	pdf.SetFont("Arial", "B", 11)
	pdf.SetFillColor(235, 235, 235)
	pdf.CellFormat(60, 8, "Charge", "1", 0, "L", true, 0, "")
	pdf.CellFormat(80, 8, "Description", "1", 0, "L", true, 0, "")
	pdf.CellFormat(50, 8, "Amount", "1", 1, "R", true, 0, "")

	pdf.SetFont("Arial", "", 11)
	charge := inv.ChargeType
	if charge == "" {
		charge = string(inv.Type)
	}
	pdf.CellFormat(60, 8, charge, "1", 0, "L", false, 0, "")
	pdf.CellFormat(80, 8, tr(inv.Description), "1", 0, "L", false, 0, "")
	pdf.CellFormat(50, 8, FormatCurrency(inv.Amount), "1", 1, "R", false, 0, "")
	pdf.Ln(6)

	pdf.SetFont("Arial", "B", 12)
	status := string(inv.Status)
	if inv.PaidDate != nil {
		status += " on " + FormatDate(*inv.PaidDate)
	}
	pdf.CellFormat(0, 8, "Status: "+status, "", 1, "L", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render invoice pdf: %w", err)
	}
	return buf.Bytes(), nil
}
