package app

import (
	"context"

	"instant-invoice/internal/core"
)

// ApplicationService is the single interface all UI adapters (REPL, CLI, Web)
// call. It decouples presentation from business logic. Implementations must
// contain no fmt.Println, no ANSI codes, and no display logic of any kind.
//
// Draft operations act on the one in-memory draft owned by the service — the
// system assumes a single active session. The snapshot operations are
// stateless and serve adapters that carry their own state (the web API).
type ApplicationService interface {
	// GetDraft returns the current editing state.
	GetDraft() *core.Draft

	// GetTotals recomputes the derived amounts for the current draft.
	GetTotals() core.Totals

	// AddItem validates the input and appends a new line item to the draft.
	AddItem(in core.LineItemInput) (core.LineItem, error)

	// BeginEdit loads the identified item into edit mode.
	BeginEdit(id string) (core.LineItem, error)

	// UpdateItem replaces the identified item and ends its edit mode.
	UpdateItem(id string, in core.LineItemInput) (core.LineItem, error)

	// CancelEdit leaves edit mode without mutating the draft.
	CancelEdit()

	// DeleteItem removes the identified item. Declined confirmation
	// (confirmed=false) is a no-op.
	DeleteItem(id string, confirmed bool) error

	// SaveInvoice persists the current draft under its invoice number.
	// Returns core.ErrInvoiceExists until the caller confirms the overwrite.
	SaveInvoice(ctx context.Context, overwrite bool) (*SaveResult, error)

	// LoadInvoice replaces all draft state with the stored snapshot.
	LoadInvoice(ctx context.Context, id string) (*core.InvoiceSnapshot, error)

	// ListInvoices returns the identifiers and client names of all saved invoices.
	ListInvoices(ctx context.Context) (*InvoiceListResult, error)

	// SaveSnapshot persists a caller-supplied snapshot (stateless save).
	SaveSnapshot(ctx context.Context, snapshot core.InvoiceSnapshot, overwrite bool) (*SaveResult, error)

	// GetSnapshot returns a stored snapshot without touching the draft.
	GetSnapshot(ctx context.Context, id string) (*core.InvoiceSnapshot, error)

	// ComputeTotals derives amounts for arbitrary inputs (stateless).
	// Invalid inputs yield a *core.ValidationError.
	ComputeTotals(req ComputeTotalsRequest) (core.Totals, error)

	// ExportPDF renders the current draft to PDF bytes plus a download name.
	ExportPDF() (*PDFResult, error)

	// ExportSnapshotPDF renders a stored snapshot to PDF bytes.
	ExportSnapshotPDF(ctx context.Context, id string) (*PDFResult, error)

	// ProposeItems interprets a natural language billing description into
	// proposed line items, or a clarification request. Proposals must be
	// explicitly confirmed before ApplyProposedItems.
	ProposeItems(ctx context.Context, text string) (*ProposalResult, error)

	// ApplyProposedItems adds previously proposed (and confirmed) items to the draft.
	ApplyProposedItems(items []core.LineItemInput) ([]core.LineItem, error)
}
