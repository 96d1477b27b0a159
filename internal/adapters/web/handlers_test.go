package web_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"instant-invoice/internal/adapters/web"
	"instant-invoice/internal/app"
	"instant-invoice/internal/core"
)

func newTestHandler(t *testing.T) http.Handler {
	t.Helper()
	backend := core.NewFileBackend(filepath.Join(t.TempDir(), "invoices.json"))
	store := core.NewInvoiceStore(backend)
	return web.NewHandler(app.NewAppService(store, nil), "")
}

func snapshotJSON(number, client string) string {
	return fmt.Sprintf(`{
	  "meta": {"invoice_number": %q, "invoice_date": "2026-09-01"},
	  "client": {"name": %q},
	  "company": {"name": "Your Company LLC"},
	  "line_items": [{"name": "Widget", "quantity": "2", "unit_price": "10"}],
	  "tax_rate_percent": "10",
	  "discount": {"kind": "fixed", "value": "5"}
	}`, number, client)
}

func doRequest(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rdr *bytes.Reader
	if body == "" {
		rdr = bytes.NewReader(nil)
	} else {
		rdr = bytes.NewReader([]byte(body))
	}
	req := httptest.NewRequest(method, path, rdr)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp struct {
		Code string `json:"code"`
	}
	decodeBody(t, rec, &resp)
	return resp.Code
}

func TestHealth(t *testing.T) {
	h := newTestHandler(t)
	rec := doRequest(t, h, http.MethodGet, "/api/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestSaveInvoice(t *testing.T) {
	h := newTestHandler(t)

	rec := doRequest(t, h, http.MethodPost, "/api/invoices", snapshotJSON("INV-1001", "Acme Corp"))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		ID         string `json:"id"`
		Overwrote  bool   `json:"overwrote"`
		TotalSaved int    `json:"total_saved"`
	}
	decodeBody(t, rec, &resp)
	if resp.ID != "INV-1001" || resp.Overwrote || resp.TotalSaved != 1 {
		t.Errorf("response = %+v", resp)
	}
}

func TestSaveInvoice_MissingNumber(t *testing.T) {
	h := newTestHandler(t)

	rec := doRequest(t, h, http.MethodPost, "/api/invoices", snapshotJSON("", "Acme Corp"))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if code := errorCode(t, rec); code != "MISSING_INVOICE_NUMBER" {
		t.Errorf("code = %q", code)
	}
}

func TestSaveInvoice_RejectsInvalidLineItem(t *testing.T) {
	h := newTestHandler(t)

	body := `{
	  "meta": {"invoice_number": "INV-6666", "invoice_date": "2026-09-01"},
	  "client": {"name": "Acme Corp"},
	  "line_items": [{"name": "Widget", "quantity": "-5", "unit_price": "10"}]
	}`
	rec := doRequest(t, h, http.MethodPost, "/api/invoices", body)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400; body = %s", rec.Code, rec.Body.String())
	}
	if code := errorCode(t, rec); code != "VALIDATION_ERROR" {
		t.Errorf("code = %q", code)
	}

	// the invalid snapshot must not have reached the store
	rec = doRequest(t, h, http.MethodGet, "/api/invoices/INV-6666", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("invalid snapshot was persisted: status = %d", rec.Code)
	}
}

func TestSaveInvoice_RejectsNegativeDiscount(t *testing.T) {
	h := newTestHandler(t)

	body := `{
	  "meta": {"invoice_number": "INV-6667", "invoice_date": "2026-09-01"},
	  "line_items": [{"name": "Widget", "quantity": "2", "unit_price": "10"}],
	  "discount": {"kind": "fixed", "value": "-10"}
	}`
	rec := doRequest(t, h, http.MethodPost, "/api/invoices", body)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400; body = %s", rec.Code, rec.Body.String())
	}
	if code := errorCode(t, rec); code != "VALIDATION_ERROR" {
		t.Errorf("code = %q", code)
	}
}

func TestSaveInvoice_OverwroteReflectsReplacement(t *testing.T) {
	h := newTestHandler(t)

	// first save with ?overwrite=true replaces nothing
	rec := doRequest(t, h, http.MethodPost, "/api/invoices?overwrite=true", snapshotJSON("INV-1001", "Acme Corp"))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Overwrote bool `json:"overwrote"`
	}
	decodeBody(t, rec, &resp)
	if resp.Overwrote {
		t.Error("first-time save reported overwrote=true")
	}

	rec = doRequest(t, h, http.MethodPost, "/api/invoices?overwrite=true", snapshotJSON("INV-1001", "Globex"))
	decodeBody(t, rec, &resp)
	if !resp.Overwrote {
		t.Error("replacement save reported overwrote=false")
	}
}

func TestSaveInvoice_ConflictAndOverwrite(t *testing.T) {
	h := newTestHandler(t)

	if rec := doRequest(t, h, http.MethodPost, "/api/invoices", snapshotJSON("INV-1001", "Acme Corp")); rec.Code != http.StatusOK {
		t.Fatalf("first save: %d", rec.Code)
	}

	rec := doRequest(t, h, http.MethodPost, "/api/invoices", snapshotJSON("INV-1001", "Globex"))
	if rec.Code != http.StatusConflict {
		t.Fatalf("duplicate status = %d, want 409", rec.Code)
	}
	if code := errorCode(t, rec); code != "INVOICE_EXISTS" {
		t.Errorf("code = %q", code)
	}

	rec = doRequest(t, h, http.MethodPost, "/api/invoices?overwrite=true", snapshotJSON("INV-1001", "Globex"))
	if rec.Code != http.StatusOK {
		t.Fatalf("overwrite status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Overwrote  bool `json:"overwrote"`
		TotalSaved int  `json:"total_saved"`
	}
	decodeBody(t, rec, &resp)
	if !resp.Overwrote || resp.TotalSaved != 1 {
		t.Errorf("response = %+v", resp)
	}

	rec = doRequest(t, h, http.MethodGet, "/api/invoices/INV-1001", "")
	var snap core.InvoiceSnapshot
	decodeBody(t, rec, &snap)
	if snap.Client.Name != "Globex" {
		t.Errorf("overwrite not applied: client = %q", snap.Client.Name)
	}
}

func TestGetInvoice(t *testing.T) {
	h := newTestHandler(t)
	doRequest(t, h, http.MethodPost, "/api/invoices", snapshotJSON("INV-1001", "Acme Corp"))

	rec := doRequest(t, h, http.MethodGet, "/api/invoices/INV-1001", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var snap core.InvoiceSnapshot
	decodeBody(t, rec, &snap)
	if snap.ID != "INV-1001" || snap.Client.Name != "Acme Corp" {
		t.Errorf("snapshot = %+v", snap)
	}
	// stored totals reflect the stored inputs: 20 − 5 + 1.5
	if !snap.Totals.GrandTotal.Equal(mustDecimal(t, "16.5")) {
		t.Errorf("grand total = %s, want 16.5", snap.Totals.GrandTotal)
	}
}

func TestGetInvoice_NotFound(t *testing.T) {
	h := newTestHandler(t)

	rec := doRequest(t, h, http.MethodGet, "/api/invoices/INV-9999", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if code := errorCode(t, rec); code != "NOT_FOUND" {
		t.Errorf("code = %q", code)
	}
}

func TestListInvoices(t *testing.T) {
	h := newTestHandler(t)
	doRequest(t, h, http.MethodPost, "/api/invoices", snapshotJSON("INV-1001", "Acme Corp"))
	doRequest(t, h, http.MethodPost, "/api/invoices", snapshotJSON("INV-1002", "Globex"))

	rec := doRequest(t, h, http.MethodGet, "/api/invoices", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp struct {
		Invoices []core.InvoiceSummary `json:"invoices"`
	}
	decodeBody(t, rec, &resp)
	if len(resp.Invoices) != 2 {
		t.Fatalf("listed %d invoices, want 2", len(resp.Invoices))
	}
	if resp.Invoices[1].ID != "INV-1002" || resp.Invoices[1].ClientName != "Globex" {
		t.Errorf("invoices[1] = %+v", resp.Invoices[1])
	}
}

func TestComputeTotals(t *testing.T) {
	h := newTestHandler(t)
	body := `{
	  "line_items": [{"id": "a", "name": "Widget", "quantity": "2", "unit_price": "10"}],
	  "discount": {"kind": "percentage", "value": "50"},
	  "tax_rate_percent": "10"
	}`

	rec := doRequest(t, h, http.MethodPost, "/api/totals", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var totals core.Totals
	decodeBody(t, rec, &totals)
	if !totals.Subtotal.Equal(mustDecimal(t, "20")) {
		t.Errorf("subtotal = %s", totals.Subtotal)
	}
	if !totals.GrandTotal.Equal(mustDecimal(t, "11")) {
		t.Errorf("grand total = %s, want 11", totals.GrandTotal)
	}
}

func TestComputeTotals_RejectsInvalidInputs(t *testing.T) {
	h := newTestHandler(t)

	tests := []struct {
		name string
		body string
	}{
		{
			"negative discount value",
			`{"line_items": [{"id": "a", "name": "Widget", "quantity": "2", "unit_price": "10"}],
			  "discount": {"kind": "fixed", "value": "-10"}, "tax_rate_percent": "0"}`,
		},
		{
			"negative tax rate",
			`{"line_items": [{"id": "a", "name": "Widget", "quantity": "2", "unit_price": "10"}],
			  "discount": {"kind": "percentage", "value": "0"}, "tax_rate_percent": "-5"}`,
		},
		{
			"negative quantity",
			`{"line_items": [{"id": "a", "name": "Widget", "quantity": "-5", "unit_price": "10"}],
			  "discount": {"kind": "percentage", "value": "0"}, "tax_rate_percent": "0"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, h, http.MethodPost, "/api/totals", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400; body = %s", rec.Code, rec.Body.String())
			}
			if code := errorCode(t, rec); code != "VALIDATION_ERROR" {
				t.Errorf("code = %q", code)
			}
		})
	}
}

func TestInvoicePDF(t *testing.T) {
	h := newTestHandler(t)
	doRequest(t, h, http.MethodPost, "/api/invoices", snapshotJSON("INV-1001", "Acme Corp"))

	rec := doRequest(t, h, http.MethodGet, "/api/invoices/INV-1001/pdf", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Errorf("Content-Type = %q", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "invoice-INV-1001.pdf") {
		t.Errorf("Content-Disposition = %q", cd)
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")) {
		t.Error("body is not a PDF document")
	}
}

func TestProposeItems_NotConfigured(t *testing.T) {
	h := newTestHandler(t) // built without an AI agent

	rec := doRequest(t, h, http.MethodPost, "/api/ai/items", `{"text": "two widgets at ten dollars"}`)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
}

func TestInvalidJSONBody(t *testing.T) {
	h := newTestHandler(t)

	rec := doRequest(t, h, http.MethodPost, "/api/invoices", `{"meta": `)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if code := errorCode(t, rec); code != "BAD_REQUEST" {
		t.Errorf("code = %q", code)
	}
}

func TestRequestBodyLimit(t *testing.T) {
	h := newTestHandler(t)

	big := `{"meta": {"invoice_number": "INV-1001"}, "client": {"name": "` +
		strings.Repeat("x", 2<<20) + `"}}`
	rec := doRequest(t, h, http.MethodPost, "/api/invoices", big)
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("status = %d, want 413", rec.Code)
	}
}

func TestRequestIDHeader(t *testing.T) {
	h := newTestHandler(t)

	rec := doRequest(t, h, http.MethodGet, "/api/health", "")
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("response missing X-Request-ID header")
	}
}

func mustDecimal(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	v, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("bad decimal %q: %v", s, err)
	}
	return v
}
