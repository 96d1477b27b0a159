package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"instant-invoice/internal/app"
	"instant-invoice/internal/core"
)

// Handler holds the ApplicationService and the chi router.
type Handler struct {
	svc    app.ApplicationService
	router chi.Router
}

// NewHandler creates and wires the chi router with all routes.
func NewHandler(svc app.ApplicationService, allowedOrigins string) http.Handler {
	h := &Handler{svc: svc}

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Logger)
	r.Use(Recoverer)
	r.Use(CORS(allowedOrigins))

	r.Get("/api/health", h.health)

	// 1 MB body limit: an invoice snapshot is a few KB, anything larger is abuse.
	r.Group(func(r chi.Router) {
		r.Use(RequestBodyLimit(1 << 20))

		r.Get("/api/invoices", h.listInvoices)
		r.Post("/api/invoices", h.saveInvoice)
		r.Get("/api/invoices/{id}", h.getInvoice)
		r.Get("/api/invoices/{id}/pdf", h.invoicePDF)
		r.Post("/api/totals", h.computeTotals)
		r.Post("/api/ai/items", h.proposeItems)
	})

	h.router = r
	return r
}

// health returns service status.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	type response struct {
		Status string `json:"status"`
	}
	writeJSON(w, response{Status: "ok"})
}

// listInvoices handles GET /api/invoices — all saved invoice numbers with client names.
func (h *Handler) listInvoices(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.ListInvoices(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	type response struct {
		Invoices []core.InvoiceSummary `json:"invoices"`
	}
	writeJSON(w, response{Invoices: result.Invoices})
}

// saveInvoice handles POST /api/invoices. The body is a full InvoiceSnapshot;
// ?overwrite=true confirms replacing an existing invoice with the same number.
// Without it, a duplicate number returns 409 INVOICE_EXISTS so the client can
// ask the user and retry — declining simply means never retrying.
func (h *Handler) saveInvoice(w http.ResponseWriter, r *http.Request) {
	var snapshot core.InvoiceSnapshot
	if !decodeJSON(w, r, &snapshot) {
		return
	}

	overwrite, _ := strconv.ParseBool(r.URL.Query().Get("overwrite"))

	result, err := h.svc.SaveSnapshot(r.Context(), snapshot, overwrite)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	type response struct {
		ID         string `json:"id"`
		Overwrote  bool   `json:"overwrote"`
		TotalSaved int    `json:"total_saved"`
	}
	writeJSON(w, response{ID: result.ID, Overwrote: result.Overwrote, TotalSaved: result.TotalSaved})
}

// getInvoice handles GET /api/invoices/{id}.
func (h *Handler) getInvoice(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.svc.GetSnapshot(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, snapshot)
}

// invoicePDF handles GET /api/invoices/{id}/pdf — renders the stored snapshot
// and serves it as an attachment named after the invoice number.
func (h *Handler) invoicePDF(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.ExportSnapshotPDF(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(result.Data)))
	_, _ = w.Write(result.Data)
}

// computeTotals handles POST /api/totals — stateless totals for arbitrary inputs.
func (h *Handler) computeTotals(w http.ResponseWriter, r *http.Request) {
	var req app.ComputeTotalsRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	totals, err := h.svc.ComputeTotals(req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, totals)
}

// proposeItems handles POST /api/ai/items — natural language to proposed line
// items. The response is a proposal only; the client applies it by including
// the items in a subsequent snapshot save.
func (h *Handler) proposeItems(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Text == "" {
		writeError(w, r, "text is required", "BAD_REQUEST", http.StatusBadRequest)
		return
	}

	result, err := h.svc.ProposeItems(r.Context(), req.Text)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	type response struct {
		Items                []core.LineItemInput `json:"items,omitempty"`
		Confidence           float64              `json:"confidence"`
		Reasoning            string               `json:"reasoning,omitempty"`
		IsClarification      bool                 `json:"is_clarification"`
		ClarificationMessage string               `json:"clarification_message,omitempty"`
	}
	writeJSON(w, response{
		Items:                result.Items,
		Confidence:           result.Confidence,
		Reasoning:            result.Reasoning,
		IsClarification:      result.IsClarification,
		ClarificationMessage: result.ClarificationMessage,
	})
}

// decodeJSON decodes the request body into v and returns false + writes an
// appropriate error response on failure. Returns HTTP 413 when the body exceeds
// the size limit set by RequestBodyLimit middleware; HTTP 400 for all other
// decode errors.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeError(w, r, "request body too large", "REQUEST_TOO_LARGE", http.StatusRequestEntityTooLarge)
			return false
		}
		writeError(w, r, "invalid JSON body: "+err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return false
	}
	return true
}
