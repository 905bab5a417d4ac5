// Package pdf renders document value objects to PDF bytes. Rendering is a
// pure function of its input so documents can be regenerated on demand and
// compared byte-for-byte in tests.
package pdf

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
)

type Line struct {
	SKU            string
	Name           string
	Quantity       int
	UnitPriceCents int64
	TotalCents     int64
}

type LmnData struct {
	LmnNumber         string
	OrderNumber       string
	IssueDate         time.Time
	CustomerName      string
	CustomerEmail     string
	Items             []Line
	EligibleTotal     int64
	Currency          string
	Attestation       string
	ProviderReference string
}

type InvoiceData struct {
	InvoiceNumber string
	OrderNumber   string
	IssueDate     time.Time
	CustomerName  string
	CustomerEmail string
	Items         []Line
	Total         int64
	Currency      string
}

// RenderLmn produces the Letter of Medical Necessity PDF.
func RenderLmn(d LmnData) ([]byte, error) {
	doc := newDoc(d.IssueDate)
	doc.SetFont("Helvetica", "B", 16)
	doc.Cell(0, 10, "Letter of Medical Necessity")
	doc.Ln(12)

	doc.SetFont("Helvetica", "", 10)
	field(doc, "Letter number", d.LmnNumber)
	field(doc, "Order number", d.OrderNumber)
	field(doc, "Issue date", d.IssueDate.Format("January 2, 2006"))
	field(doc, "Patient", patientLabel(d.CustomerName, d.CustomerEmail))
	if d.ProviderReference != "" {
		field(doc, "Payment reference", d.ProviderReference)
	}
	doc.Ln(4)

	itemTable(doc, d.Items, d.Currency)
	doc.Ln(2)
	doc.SetFont("Helvetica", "B", 10)
	doc.CellFormat(150, 7, "Eligible total", "T", 0, "R", false, 0, "")
	doc.CellFormat(40, 7, money(d.EligibleTotal, d.Currency), "T", 1, "R", false, 0, "")
	doc.Ln(6)

	doc.SetFont("Helvetica", "", 9)
	doc.MultiCell(0, 5, d.Attestation, "", "L", false)

	return output(doc)
}

// RenderInvoice produces the receipt PDF covering the full order total.
func RenderInvoice(d InvoiceData) ([]byte, error) {
	doc := newDoc(d.IssueDate)
	doc.SetFont("Helvetica", "B", 16)
	doc.Cell(0, 10, "Invoice")
	doc.Ln(12)

	doc.SetFont("Helvetica", "", 10)
	field(doc, "Invoice number", d.InvoiceNumber)
	field(doc, "Order number", d.OrderNumber)
	field(doc, "Issue date", d.IssueDate.Format("January 2, 2006"))
	field(doc, "Billed to", patientLabel(d.CustomerName, d.CustomerEmail))
	doc.Ln(4)

	itemTable(doc, d.Items, d.Currency)
	doc.Ln(2)
	doc.SetFont("Helvetica", "B", 10)
	doc.CellFormat(150, 7, "Total", "T", 0, "R", false, 0, "")
	doc.CellFormat(40, 7, money(d.Total, d.Currency), "T", 1, "R", false, 0, "")

	return output(doc)
}

func newDoc(issueDate time.Time) *gofpdf.Fpdf {
	doc := gofpdf.New("P", "mm", "A4", "")
	// Pin document metadata to the issue date so regenerated PDFs are
	// byte-identical.
	doc.SetCreationDate(issueDate)
	doc.SetMargins(15, 15, 15)
	doc.AddPage()
	return doc
}

func field(doc *gofpdf.Fpdf, label, value string) {
	doc.SetFont("Helvetica", "B", 10)
	doc.CellFormat(40, 6, label, "", 0, "L", false, 0, "")
	doc.SetFont("Helvetica", "", 10)
	doc.CellFormat(0, 6, value, "", 1, "L", false, 0, "")
}

func itemTable(doc *gofpdf.Fpdf, items []Line, currency string) {
	doc.SetFont("Helvetica", "B", 9)
	doc.CellFormat(40, 7, "SKU", "B", 0, "L", false, 0, "")
	doc.CellFormat(70, 7, "Item", "B", 0, "L", false, 0, "")
	doc.CellFormat(15, 7, "Qty", "B", 0, "R", false, 0, "")
	doc.CellFormat(30, 7, "Unit price", "B", 0, "R", false, 0, "")
	doc.CellFormat(25, 7, "Total", "B", 1, "R", false, 0, "")
	doc.SetFont("Helvetica", "", 9)
	for _, it := range items {
		doc.CellFormat(40, 6, it.SKU, "", 0, "L", false, 0, "")
		doc.CellFormat(70, 6, it.Name, "", 0, "L", false, 0, "")
		doc.CellFormat(15, 6, fmt.Sprintf("%d", it.Quantity), "", 0, "R", false, 0, "")
		doc.CellFormat(30, 6, money(it.UnitPriceCents, currency), "", 0, "R", false, 0, "")
		doc.CellFormat(25, 6, money(it.TotalCents, currency), "", 1, "R", false, 0, "")
	}
}

// money formats minor units for display. This is the only place amounts
// leave integer cents.
func money(cents int64, currency string) string {
	cur := strings.ToUpper(currency)
	if cur == "" {
		cur = "USD"
	}
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d %s", sign, cents/100, cents%100, cur)
}

func output(doc *gofpdf.Fpdf) ([]byte, error) {
	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdf render: %w", err)
	}
	return buf.Bytes(), nil
}

func patientLabel(name, email string) string {
	if name == "" {
		return email
	}
	return name + " <" + email + ">"
}
