package core

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Draft is the single source of truth for the invoice being edited: line
// items, both parties, header meta, tax, discount, and currency, plus the
// item edit state. All mutation goes through its methods; totals are derived
// on every read and never stored on the draft.
//
// At most one item is in edit mode at a time. Items are addressed by their
// stable ID, so deleting one item never invalidates an edit on another.
type Draft struct {
	Items          []LineItem
	Client         PartyInfo
	Company        PartyInfo
	Meta           InvoiceMeta
	TaxRatePercent decimal.Decimal
	Discount       DiscountRule
	CurrencySymbol string

	editingID string // empty means Idle
}

// NewDraft returns a draft seeded with the defaults of a fresh invoice:
// a generated invoice number, today's date, Draft status, and placeholder
// company details the user is expected to overwrite.
func NewDraft() *Draft {
	return &Draft{
		Company: PartyInfo{
			Name:    "Your Company LLC",
			Address: "123 Main St, Anytown, USA",
			Email:   "contact@yourcompany.com",
			Phone:   "555-1234",
		},
		Meta: InvoiceMeta{
			InvoiceNumber: NewInvoiceNumber(),
			InvoiceDate:   time.Now().Format("2006-01-02"),
			Status:        StatusDraft,
		},
		Discount:       DiscountRule{Kind: DiscountPercentage},
		CurrencySymbol: DefaultCurrencySymbol,
	}
}

// findItem returns the index of the item with the given ID, or -1.
func (d *Draft) findItem(id string) int {
	for i, item := range d.Items {
		if item.ID == id {
			return i
		}
	}
	return -1
}

// AddItem validates the input and appends a new item with a fresh identity.
func (d *Draft) AddItem(in LineItemInput) (LineItem, error) {
	if err := in.Validate(); err != nil {
		return LineItem{}, err
	}
	item := newLineItem(in)
	d.Items = append(d.Items, item)
	return item, nil
}

// BeginEdit loads the item with the given ID into edit mode. Starting an edit
// while another item is in edit mode simply switches the target.
func (d *Draft) BeginEdit(id string) (LineItem, error) {
	idx := d.findItem(id)
	if idx < 0 {
		return LineItem{}, fmt.Errorf("item %s not found", id)
	}
	d.editingID = id
	return d.Items[idx], nil
}

// UpdateItem validates the input and replaces the identified item in place,
// keeping its ID and position. Ends edit mode if this item was being edited.
func (d *Draft) UpdateItem(id string, in LineItemInput) (LineItem, error) {
	idx := d.findItem(id)
	if idx < 0 {
		return LineItem{}, fmt.Errorf("item %s not found", id)
	}
	if err := in.Validate(); err != nil {
		return LineItem{}, err
	}
	in.Normalize()
	d.Items[idx].Name = in.Name
	d.Items[idx].Quantity = in.Quantity
	d.Items[idx].UnitPrice = in.UnitPrice
	if d.editingID == id {
		d.editingID = ""
	}
	return d.Items[idx], nil
}

// CancelEdit leaves edit mode without mutating the item list.
func (d *Draft) CancelEdit() {
	d.editingID = ""
}

// EditingID returns the ID of the item in edit mode, or empty when Idle.
func (d *Draft) EditingID() string {
	return d.editingID
}

// DeleteItem removes the identified item. confirmed=false is the declined
// confirmation path: a no-op, not an error. Deleting the item currently in
// edit mode returns the draft to Idle; deleting any other item leaves the
// edit state untouched.
func (d *Draft) DeleteItem(id string, confirmed bool) error {
	idx := d.findItem(id)
	if idx < 0 {
		return fmt.Errorf("item %s not found", id)
	}
	if !confirmed {
		return nil
	}
	d.Items = append(d.Items[:idx], d.Items[idx+1:]...)
	if d.editingID == id {
		d.editingID = ""
	}
	return nil
}

// Totals recomputes the derived amounts from the current draft state.
func (d *Draft) Totals() Totals {
	return ComputeTotals(d.Items, d.Discount, d.TaxRatePercent)
}

// Snapshot builds a persistable snapshot of the current state. The snapshot
// ID is the invoice number; totals are freshly computed.
func (d *Draft) Snapshot() InvoiceSnapshot {
	items := make([]LineItem, len(d.Items))
	copy(items, d.Items)
	return InvoiceSnapshot{
		ID:             d.Meta.InvoiceNumber,
		LineItems:      items,
		Client:         d.Client,
		Company:        d.Company,
		Meta:           d.Meta,
		TaxRatePercent: d.TaxRatePercent,
		Discount:       d.Discount,
		CurrencySymbol: d.CurrencySymbol,
		Totals:         d.Totals(),
	}
}

// Apply replaces all draft state with the snapshot's values and resets edit
// mode. The snapshot is normalized first so older saves load with defaults.
func (d *Draft) Apply(s InvoiceSnapshot) {
	s.Normalize()
	d.Items = make([]LineItem, len(s.LineItems))
	copy(d.Items, s.LineItems)
	d.Client = s.Client
	d.Company = s.Company
	d.Meta = s.Meta
	d.TaxRatePercent = s.TaxRatePercent
	d.Discount = s.Discount
	d.CurrencySymbol = s.CurrencySymbol
	d.editingID = ""
}
