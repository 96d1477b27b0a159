package core

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ValidationError reports a rejected field on item entry. The operation that
// produced it made no state change.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// LineItemInput is the raw item form submission: name, quantity, unit price.
type LineItemInput struct {
	Name      string          `json:"name"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// Normalize trims the item name.
func (in *LineItemInput) Normalize() {
	in.Name = strings.TrimSpace(in.Name)
}

// Validate enforces the item entry rules: name non-empty after trimming,
// quantity strictly positive, unit price non-negative. Violations never reach
// the totals engine.
func (in LineItemInput) Validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return &ValidationError{Field: "name", Message: "item name must not be empty"}
	}
	if !in.Quantity.IsPositive() {
		return &ValidationError{Field: "quantity", Message: fmt.Sprintf("quantity must be > 0, got %s", in.Quantity)}
	}
	if in.UnitPrice.IsNegative() {
		return &ValidationError{Field: "unit_price", Message: fmt.Sprintf("unit price must be >= 0, got %s", in.UnitPrice)}
	}
	return nil
}

// ParseLineItemInput builds a validated LineItemInput from raw string fields,
// as supplied by forms, the REPL wizard, or the AI interpreter.
func ParseLineItemInput(name, quantity, unitPrice string) (LineItemInput, error) {
	qty, err := decimal.NewFromString(strings.TrimSpace(quantity))
	if err != nil {
		return LineItemInput{}, &ValidationError{Field: "quantity", Message: fmt.Sprintf("not a number: %q", quantity)}
	}
	price, err := decimal.NewFromString(strings.TrimSpace(unitPrice))
	if err != nil {
		return LineItemInput{}, &ValidationError{Field: "unit_price", Message: fmt.Sprintf("not a number: %q", unitPrice)}
	}
	in := LineItemInput{Name: name, Quantity: qty, UnitPrice: price}
	in.Normalize()
	if err := in.Validate(); err != nil {
		return LineItemInput{}, err
	}
	return in, nil
}

// newLineItem builds a LineItem from validated input, assigning its identity.
func newLineItem(in LineItemInput) LineItem {
	in.Normalize()
	return LineItem{
		ID:        uuid.NewString(),
		Name:      in.Name,
		Quantity:  in.Quantity,
		UnitPrice: in.UnitPrice,
	}
}

// ComputeTotals derives all invoice amounts from line items, the discount rule,
// and the tax rate. Pure and deterministic:
//
//	subtotal       = Σ quantity × unitPrice
//	discountAmount = subtotal × value/100 (percentage) or value (fixed),
//	                 clamped to subtotal so the taxable base never goes negative
//	taxAmount      = (subtotal − discountAmount) × taxRatePercent/100
//	grandTotal     = taxable + tax
//
// Amounts stay exact; rounding to two decimals is a display concern.
func ComputeTotals(items []LineItem, discount DiscountRule, taxRatePercent decimal.Decimal) Totals {
	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.LineTotal())
	}

	var discountAmount decimal.Decimal
	if discount.Kind == DiscountPercentage {
		discountAmount = subtotal.Mul(discount.Value).Div(decimal.NewFromInt(100))
	} else {
		discountAmount = discount.Value
	}
	if discountAmount.GreaterThan(subtotal) {
		discountAmount = subtotal
	}

	taxable := subtotal.Sub(discountAmount)
	taxAmount := taxable.Mul(taxRatePercent).Div(decimal.NewFromInt(100))

	return Totals{
		Subtotal:       subtotal,
		DiscountAmount: discountAmount,
		TaxAmount:      taxAmount,
		GrandTotal:     taxable.Add(taxAmount),
	}
}

// ValidateInvoiceInputs checks the totals engine inputs: every line item must
// satisfy the item entry rules, and the discount value and tax rate must be
// non-negative. Violations yield a *ValidationError.
func ValidateInvoiceInputs(items []LineItem, discount DiscountRule, taxRatePercent decimal.Decimal) error {
	for i, item := range items {
		in := LineItemInput{Name: item.Name, Quantity: item.Quantity, UnitPrice: item.UnitPrice}
		if err := in.Validate(); err != nil {
			return fmt.Errorf("line item %d: %w", i+1, err)
		}
	}
	if discount.Value.IsNegative() {
		return &ValidationError{Field: "discount.value", Message: fmt.Sprintf("discount value must be >= 0, got %s", discount.Value)}
	}
	if taxRatePercent.IsNegative() {
		return &ValidationError{Field: "tax_rate_percent", Message: fmt.Sprintf("tax rate must be >= 0, got %s", taxRatePercent)}
	}
	return nil
}

// Validate checks the snapshot's totals inputs. Snapshots built through the
// draft cannot violate these rules; caller-supplied snapshots (the web API) can.
func (s *InvoiceSnapshot) Validate() error {
	return ValidateInvoiceInputs(s.LineItems, s.Discount, s.TaxRatePercent)
}

// Normalize fills fields absent in older snapshots with their documented
// defaults and recomputes totals, so a load always yields a complete state.
func (s *InvoiceSnapshot) Normalize() {
	if s.ID == "" {
		s.ID = s.Meta.InvoiceNumber
	}
	if s.Meta.InvoiceNumber == "" {
		s.Meta.InvoiceNumber = s.ID
	}
	if s.Meta.Status == "" {
		s.Meta.Status = StatusDraft
	}
	if s.CurrencySymbol == "" {
		s.CurrencySymbol = DefaultCurrencySymbol
	}
	if s.Discount.Kind == "" {
		s.Discount.Kind = DiscountPercentage
	}
	for i := range s.LineItems {
		if s.LineItems[i].ID == "" {
			s.LineItems[i].ID = uuid.NewString()
		}
	}
	s.Totals = ComputeTotals(s.LineItems, s.Discount, s.TaxRatePercent)
}
