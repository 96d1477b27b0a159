// Package pdf renders an invoice snapshot to an A4 PDF document.
//
// The layout mirrors the classic invoice sheet: company block top-left,
// invoice meta top-right, bill-to block, a striped line item table, and a
// totals column. The renderer only formats values it is given — all amounts
// are computed upstream and rounded here, at display time, to two decimals.
package pdf

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"

	"instant-invoice/internal/core"
)

// table geometry in millimeters on an A4 page (210 × 297)
const (
	marginLeft  = 14.0
	pageRight   = 196.0
	colName     = 92.0
	colQty      = 25.0
	colPrice    = 30.0
	colTotal    = 35.0
	rowHeight   = 8.0
	totalsLabel = 140.0
)

var headerFill = [3]int{34, 139, 34}

// Filename returns the download name for a snapshot's PDF export:
// invoice-<number>.pdf, or invoice-details.pdf when unnumbered.
func Filename(s core.InvoiceSnapshot) string {
	number := s.Meta.InvoiceNumber
	if number == "" {
		number = "details"
	}
	return fmt.Sprintf("invoice-%s.pdf", number)
}

// Renderer lays out invoice snapshots as PDF documents.
type Renderer struct{}

// NewRenderer returns a Renderer.
func NewRenderer() *Renderer {
	return &Renderer{}
}

// Render produces the PDF bytes for the snapshot. Totals are recomputed from
// the snapshot's inputs so the document never shows stale amounts.
func (r *Renderer) Render(s core.InvoiceSnapshot) ([]byte, error) {
	s.Normalize()
	totals := core.ComputeTotals(s.LineItems, s.Discount, s.TaxRatePercent)
	cur := s.CurrencySymbol

	doc := gofpdf.New("P", "mm", "A4", "")
	doc.SetAutoPageBreak(true, 20)
	doc.AddPage()

	// Company block, top-left.
	doc.SetFont("Helvetica", "B", 16)
	doc.Text(marginLeft, 22, orDefault(s.Company.Name, "Your Company"))
	doc.SetFont("Helvetica", "", 9)
	y := 28.0
	for _, line := range splitLines(s.Company.Address) {
		doc.Text(marginLeft, y, line)
		y += 4
	}
	doc.Text(marginLeft, y, s.Company.Email)
	y += 4
	doc.Text(marginLeft, y, s.Company.Phone)

	// Invoice meta, top-right.
	doc.SetFont("Helvetica", "B", 12)
	textRight(doc, pageRight, 22, "INVOICE")
	doc.SetFont("Helvetica", "", 9)
	textRight(doc, pageRight, 32, "Invoice #: "+s.Meta.InvoiceNumber)
	textRight(doc, pageRight, 37, "Status: "+string(s.Meta.Status))
	textRight(doc, pageRight, 42, "Date: "+s.Meta.InvoiceDate)
	textRight(doc, pageRight, 47, "Due Date: "+s.Meta.DueDate)

	// Bill-to block, below the company details.
	y += 10
	doc.Text(marginLeft, y, "Bill To:")
	y += 5
	doc.Text(marginLeft, y, s.Client.Name)
	y += 5
	for _, line := range splitLines(s.Client.Address) {
		doc.Text(marginLeft, y, line)
		y += 4
	}
	doc.Text(marginLeft, y, s.Client.Email)
	y += 4
	doc.Text(marginLeft, y, s.Client.Phone)

	// Item table.
	tableY := y + 10
	if tableY < 60 {
		tableY = 60
	}
	doc.SetY(tableY)
	doc.SetX(marginLeft)
	doc.SetFont("Helvetica", "B", 9)
	doc.SetFillColor(headerFill[0], headerFill[1], headerFill[2])
	doc.SetTextColor(255, 255, 255)
	doc.CellFormat(colName, rowHeight, "Item", "", 0, "L", true, 0, "")
	doc.CellFormat(colQty, rowHeight, "Quantity", "", 0, "R", true, 0, "")
	doc.CellFormat(colPrice, rowHeight, "Price", "", 0, "R", true, 0, "")
	doc.CellFormat(colTotal, rowHeight, "Total", "", 1, "R", true, 0, "")

	doc.SetFont("Helvetica", "", 9)
	doc.SetTextColor(0, 0, 0)
	for i, item := range s.LineItems {
		fill := i%2 == 1
		doc.SetFillColor(240, 240, 240)
		doc.SetX(marginLeft)
		doc.CellFormat(colName, rowHeight, item.Name, "", 0, "L", fill, 0, "")
		doc.CellFormat(colQty, rowHeight, item.Quantity.String(), "", 0, "R", fill, 0, "")
		doc.CellFormat(colPrice, rowHeight, money(cur, item.UnitPrice), "", 0, "R", fill, 0, "")
		doc.CellFormat(colTotal, rowHeight, money(cur, item.LineTotal()), "", 1, "R", fill, 0, "")
	}

	// Totals column, right-aligned under the table.
	ty := doc.GetY() + 10
	doc.SetFont("Helvetica", "", 10)
	doc.Text(totalsLabel, ty, "Subtotal:")
	textRight(doc, pageRight, ty, money(cur, totals.Subtotal))
	ty += 7

	if totals.DiscountAmount.IsPositive() {
		label := fmt.Sprintf("Discount (%s%%):", s.Discount.Value)
		if s.Discount.Kind == core.DiscountFixed {
			label = fmt.Sprintf("Discount (%s):", money(cur, s.Discount.Value))
		}
		doc.Text(totalsLabel, ty, label)
		textRight(doc, pageRight, ty, "-"+money(cur, totals.DiscountAmount))
		ty += 7
	}
	if totals.TaxAmount.IsPositive() {
		doc.Text(totalsLabel, ty, fmt.Sprintf("Tax (%s%%):", s.TaxRatePercent))
		textRight(doc, pageRight, ty, "+"+money(cur, totals.TaxAmount))
		ty += 7
	}

	doc.SetFont("Helvetica", "B", 12)
	doc.Text(totalsLabel, ty, "Total Amount:")
	textRight(doc, pageRight, ty, money(cur, totals.GrandTotal))

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render invoice %s: %w", s.Meta.InvoiceNumber, err)
	}
	return buf.Bytes(), nil
}

func money(symbol string, amount decimal.Decimal) string {
	return symbol + amount.StringFixed(2)
}

// textRight draws text so that it ends at x (gofpdf has no align option for Text).
func textRight(doc *gofpdf.Fpdf, x, y float64, text string) {
	doc.Text(x-doc.GetStringWidth(text), y, text)
}

func splitLines(address string) []string {
	if address == "" {
		return nil
	}
	return strings.Split(strings.ReplaceAll(address, "\r\n", "\n"), "\n")
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
