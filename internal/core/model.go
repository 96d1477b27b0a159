package core

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/shopspring/decimal"
)

// DiscountKind selects how DiscountRule.Value is interpreted.
type DiscountKind string

const (
	DiscountPercentage DiscountKind = "percentage"
	DiscountFixed      DiscountKind = "fixed"
)

// InvoiceStatus is the lifecycle status shown on the invoice header.
type InvoiceStatus string

const (
	StatusDraft         InvoiceStatus = "Draft"
	StatusSent          InvoiceStatus = "Sent"
	StatusPaid          InvoiceStatus = "Paid"
	StatusPartiallyPaid InvoiceStatus = "Partially Paid"
	StatusOverdue       InvoiceStatus = "Overdue"
)

// DefaultCurrencySymbol is used when a snapshot carries no currency.
const DefaultCurrencySymbol = "$"

// LineItem is one billable row on an invoice. ID is a stable identity assigned
// at creation; edit and delete operations target the ID, never a list position.
type LineItem struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// LineTotal returns Quantity × UnitPrice.
func (li LineItem) LineTotal() decimal.Decimal {
	return li.Quantity.Mul(li.UnitPrice)
}

// DiscountRule is an invoice-level discount: a percentage of the subtotal or a
// fixed amount in the invoice currency.
type DiscountRule struct {
	Kind  DiscountKind    `json:"kind"`
	Value decimal.Decimal `json:"value"`
}

// Totals are the derived monetary amounts for an invoice. They are recomputed
// from line items, discount, and tax rate on every read — never cached.
type Totals struct {
	Subtotal       decimal.Decimal `json:"subtotal"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	TaxAmount      decimal.Decimal `json:"tax_amount"`
	GrandTotal     decimal.Decimal `json:"grand_total"`
}

// PartyInfo holds free-form contact details for the issuing company or the
// billed client. Address may span multiple lines.
type PartyInfo struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
}

// InvoiceMeta is the invoice header block.
type InvoiceMeta struct {
	InvoiceNumber string        `json:"invoice_number"`
	InvoiceDate   string        `json:"invoice_date"` // YYYY-MM-DD
	DueDate       string        `json:"due_date"`     // YYYY-MM-DD, may be empty
	Status        InvoiceStatus `json:"status"`
}

// InvoiceSnapshot is a complete saved invoice state. ID doubles as the invoice
// number and is the unique key in the store.
type InvoiceSnapshot struct {
	ID             string          `json:"id"`
	LineItems      []LineItem      `json:"line_items"`
	Client         PartyInfo       `json:"client"`
	Company        PartyInfo       `json:"company"`
	Meta           InvoiceMeta     `json:"meta"`
	TaxRatePercent decimal.Decimal `json:"tax_rate_percent"`
	Discount       DiscountRule    `json:"discount"`
	CurrencySymbol string          `json:"currency_symbol"`
	Totals         Totals          `json:"totals"`
	SavedAt        time.Time       `json:"saved_at"`
}

// InvoiceSummary identifies a stored snapshot for selection lists.
type InvoiceSummary struct {
	ID         string `json:"id"`
	ClientName string `json:"client_name"`
}

// NewInvoiceNumber generates a fresh INV-xxxx number for a new draft.
func NewInvoiceNumber() string {
	return fmt.Sprintf("INV-%04d", 1000+rand.Intn(9000))
}
