package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"instant-invoice/internal/core"
)

type errorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	RequestID string `json:"request_id,omitempty"`
}

// writeError writes a structured JSON error response.
func writeError(w http.ResponseWriter, r *http.Request, message, code string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	resp := errorResponse{
		Error:     message,
		Code:      code,
		RequestID: requestIDFromContext(r.Context()),
	}
	_ = json.NewEncoder(w).Encode(resp)
}

// writeJSON writes a JSON response with status 200.
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// writeServiceError maps core errors onto the API's error envelope:
// validation → 400, missing invoice number → 400, unknown invoice → 404,
// unconfirmed overwrite → 409, everything else → 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var vErr *core.ValidationError
	switch {
	case errors.As(err, &vErr):
		writeError(w, r, vErr.Error(), "VALIDATION_ERROR", http.StatusBadRequest)
	case errors.Is(err, core.ErrMissingInvoiceNumber):
		writeError(w, r, err.Error(), "MISSING_INVOICE_NUMBER", http.StatusBadRequest)
	case errors.Is(err, core.ErrInvoiceNotFound):
		writeError(w, r, err.Error(), "NOT_FOUND", http.StatusNotFound)
	case errors.Is(err, core.ErrInvoiceExists):
		writeError(w, r, err.Error(), "INVOICE_EXISTS", http.StatusConflict)
	default:
		writeError(w, r, err.Error(), "INTERNAL_ERROR", http.StatusInternalServerError)
	}
}
