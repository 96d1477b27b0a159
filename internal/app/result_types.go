package app

import "instant-invoice/internal/core"

// SaveResult is returned by SaveInvoice and SaveSnapshot.
type SaveResult struct {
	ID         string
	Overwrote  bool
	TotalSaved int
}

// InvoiceListResult is returned by ListInvoices.
type InvoiceListResult struct {
	Invoices []core.InvoiceSummary
}

// PDFResult is returned by the PDF export operations.
type PDFResult struct {
	Filename string
	Data     []byte
}

// ProposalResult is returned by ProposeItems.
type ProposalResult struct {
	Items                []core.LineItemInput
	Confidence           float64
	Reasoning            string
	ClarificationMessage string
	IsClarification      bool
}
