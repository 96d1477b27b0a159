package app

import (
	"context"
	"errors"
	"fmt"

	"instant-invoice/internal/ai"
	"instant-invoice/internal/core"
	"instant-invoice/internal/pdf"
)

type appService struct {
	store    core.InvoiceStore
	draft    *core.Draft
	renderer *pdf.Renderer
	agent    *ai.Agent // nil when OPENAI_API_KEY is not configured
}

// NewAppService constructs an appService that satisfies ApplicationService.
// agent may be nil; the AI operations then return a descriptive error.
func NewAppService(store core.InvoiceStore, agent *ai.Agent) ApplicationService {
	return &appService{
		store:    store,
		draft:    core.NewDraft(),
		renderer: pdf.NewRenderer(),
		agent:    agent,
	}
}

// ── Draft editing ────────────────────────────────────────────────────────────

func (s *appService) GetDraft() *core.Draft {
	return s.draft
}

func (s *appService) GetTotals() core.Totals {
	return s.draft.Totals()
}

func (s *appService) AddItem(in core.LineItemInput) (core.LineItem, error) {
	return s.draft.AddItem(in)
}

func (s *appService) BeginEdit(id string) (core.LineItem, error) {
	return s.draft.BeginEdit(id)
}

func (s *appService) UpdateItem(id string, in core.LineItemInput) (core.LineItem, error) {
	return s.draft.UpdateItem(id, in)
}

func (s *appService) CancelEdit() {
	s.draft.CancelEdit()
}

func (s *appService) DeleteItem(id string, confirmed bool) error {
	return s.draft.DeleteItem(id, confirmed)
}

// ── Persistence ──────────────────────────────────────────────────────────────

func (s *appService) SaveInvoice(ctx context.Context, overwrite bool) (*SaveResult, error) {
	return s.SaveSnapshot(ctx, s.draft.Snapshot(), overwrite)
}

func (s *appService) SaveSnapshot(ctx context.Context, snapshot core.InvoiceSnapshot, overwrite bool) (*SaveResult, error) {
	overwrote, err := s.store.Save(ctx, snapshot, overwrite)
	if err != nil {
		return nil, err
	}
	summaries, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	snapshot.Normalize()
	return &SaveResult{
		ID:         snapshot.ID,
		Overwrote:  overwrote,
		TotalSaved: len(summaries),
	}, nil
}

func (s *appService) LoadInvoice(ctx context.Context, id string) (*core.InvoiceSnapshot, error) {
	snapshot, err := s.store.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	s.draft.Apply(*snapshot)
	return snapshot, nil
}

func (s *appService) GetSnapshot(ctx context.Context, id string) (*core.InvoiceSnapshot, error) {
	return s.store.Load(ctx, id)
}

func (s *appService) ListInvoices(ctx context.Context) (*InvoiceListResult, error) {
	summaries, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	return &InvoiceListResult{Invoices: summaries}, nil
}

// ── Totals & export ──────────────────────────────────────────────────────────

func (s *appService) ComputeTotals(req ComputeTotalsRequest) (core.Totals, error) {
	if err := core.ValidateInvoiceInputs(req.LineItems, req.Discount, req.TaxRatePercent); err != nil {
		return core.Totals{}, err
	}
	return core.ComputeTotals(req.LineItems, req.Discount, req.TaxRatePercent), nil
}

func (s *appService) ExportPDF() (*PDFResult, error) {
	return s.renderSnapshot(s.draft.Snapshot())
}

func (s *appService) ExportSnapshotPDF(ctx context.Context, id string) (*PDFResult, error) {
	snapshot, err := s.store.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.renderSnapshot(*snapshot)
}

func (s *appService) renderSnapshot(snapshot core.InvoiceSnapshot) (*PDFResult, error) {
	data, err := s.renderer.Render(snapshot)
	if err != nil {
		return nil, err
	}
	return &PDFResult{Filename: pdf.Filename(snapshot), Data: data}, nil
}

// ── AI ───────────────────────────────────────────────────────────────────────

func (s *appService) ProposeItems(ctx context.Context, text string) (*ProposalResult, error) {
	if s.agent == nil {
		return nil, errors.New("AI interpreter is not configured (set OPENAI_API_KEY)")
	}

	response, err := s.agent.InterpretItems(ctx, text, s.draft.CurrencySymbol)
	if err != nil {
		return nil, err
	}

	if response.IsClarificationRequest {
		return &ProposalResult{
			IsClarification:      true,
			ClarificationMessage: response.Clarification.Message,
		}, nil
	}

	items, err := response.Proposal.LineItems()
	if err != nil {
		return nil, fmt.Errorf("AI proposal rejected: %w", err)
	}
	return &ProposalResult{
		Items:      items,
		Confidence: response.Proposal.Confidence,
		Reasoning:  response.Proposal.Reasoning,
	}, nil
}

func (s *appService) ApplyProposedItems(items []core.LineItemInput) ([]core.LineItem, error) {
	added := make([]core.LineItem, 0, len(items))
	for _, in := range items {
		item, err := s.draft.AddItem(in)
		if err != nil {
			return added, err
		}
		added = append(added, item)
	}
	return added, nil
}
