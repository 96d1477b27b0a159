package core_test

import (
	"strings"
	"testing"

	"instant-invoice/internal/core"
)

func mustAdd(t *testing.T, draft *core.Draft, name, qty, price string) core.LineItem {
	t.Helper()
	it, err := draft.AddItem(core.LineItemInput{Name: name, Quantity: d(qty), UnitPrice: d(price)})
	if err != nil {
		t.Fatalf("AddItem(%s): %v", name, err)
	}
	return it
}

func TestNewDraft_Defaults(t *testing.T) {
	draft := core.NewDraft()

	if draft.Company.Name != "Your Company LLC" {
		t.Errorf("company name = %q, want placeholder default", draft.Company.Name)
	}
	if !strings.HasPrefix(draft.Meta.InvoiceNumber, "INV-") {
		t.Errorf("invoice number = %q, want INV- prefix", draft.Meta.InvoiceNumber)
	}
	if draft.Meta.Status != core.StatusDraft {
		t.Errorf("status = %q, want %q", draft.Meta.Status, core.StatusDraft)
	}
	if draft.Discount.Kind != core.DiscountPercentage {
		t.Errorf("discount kind = %q, want %q", draft.Discount.Kind, core.DiscountPercentage)
	}
	if draft.CurrencySymbol != core.DefaultCurrencySymbol {
		t.Errorf("currency = %q, want %q", draft.CurrencySymbol, core.DefaultCurrencySymbol)
	}
	if draft.EditingID() != "" {
		t.Errorf("new draft is not idle, editing %q", draft.EditingID())
	}
	if len(draft.Items) != 0 {
		t.Errorf("new draft has %d items, want 0", len(draft.Items))
	}
}

func TestDraft_AddItem(t *testing.T) {
	draft := core.NewDraft()

	first := mustAdd(t, draft, "Widget", "2", "10")
	second := mustAdd(t, draft, "Gadget", "1", "25")

	if first.ID == "" || second.ID == "" {
		t.Fatal("added items have empty IDs")
	}
	if first.ID == second.ID {
		t.Fatalf("items share ID %q", first.ID)
	}
	if len(draft.Items) != 2 {
		t.Fatalf("draft has %d items, want 2", len(draft.Items))
	}

	// invalid input must not touch the list
	if _, err := draft.AddItem(core.LineItemInput{Name: "", Quantity: d("1"), UnitPrice: d("1")}); err == nil {
		t.Error("expected validation error for blank name")
	}
	if _, err := draft.AddItem(core.LineItemInput{Name: "Bad", Quantity: d("0"), UnitPrice: d("1")}); err == nil {
		t.Error("expected validation error for zero quantity")
	}
	if len(draft.Items) != 2 {
		t.Errorf("rejected input mutated the list: %d items, want 2", len(draft.Items))
	}
}

func TestDraft_EditLifecycle(t *testing.T) {
	draft := core.NewDraft()
	it := mustAdd(t, draft, "Widget", "2", "10")

	loaded, err := draft.BeginEdit(it.ID)
	if err != nil {
		t.Fatalf("BeginEdit: %v", err)
	}
	if loaded.Name != "Widget" {
		t.Errorf("loaded %q, want Widget", loaded.Name)
	}
	if draft.EditingID() != it.ID {
		t.Errorf("editing ID = %q, want %q", draft.EditingID(), it.ID)
	}

	updated, err := draft.UpdateItem(it.ID, core.LineItemInput{Name: "Widget Pro", Quantity: d("3"), UnitPrice: d("12")})
	if err != nil {
		t.Fatalf("UpdateItem: %v", err)
	}
	if updated.ID != it.ID {
		t.Errorf("update changed ID from %q to %q", it.ID, updated.ID)
	}
	if updated.Name != "Widget Pro" || !updated.Quantity.Equal(d("3")) {
		t.Errorf("update not applied: %+v", updated)
	}
	if draft.EditingID() != "" {
		t.Errorf("update did not end edit mode, still editing %q", draft.EditingID())
	}

	if _, err := draft.BeginEdit("nope"); err == nil {
		t.Error("expected error editing unknown ID")
	}
}

func TestDraft_CancelEdit(t *testing.T) {
	draft := core.NewDraft()
	it := mustAdd(t, draft, "Widget", "2", "10")

	if _, err := draft.BeginEdit(it.ID); err != nil {
		t.Fatalf("BeginEdit: %v", err)
	}
	draft.CancelEdit()

	if draft.EditingID() != "" {
		t.Errorf("cancel did not return to idle, editing %q", draft.EditingID())
	}
	if draft.Items[0].Name != "Widget" {
		t.Errorf("cancel mutated the item: %q", draft.Items[0].Name)
	}
}

func TestDraft_UpdateRejectsInvalidInput(t *testing.T) {
	draft := core.NewDraft()
	it := mustAdd(t, draft, "Widget", "2", "10")
	if _, err := draft.BeginEdit(it.ID); err != nil {
		t.Fatalf("BeginEdit: %v", err)
	}

	if _, err := draft.UpdateItem(it.ID, core.LineItemInput{Name: "Widget", Quantity: d("-1"), UnitPrice: d("10")}); err == nil {
		t.Fatal("expected validation error")
	}
	if draft.EditingID() != it.ID {
		t.Errorf("rejected update ended edit mode")
	}
	if !draft.Items[0].Quantity.Equal(d("2")) {
		t.Errorf("rejected update mutated the item: qty %s", draft.Items[0].Quantity)
	}
}

func TestDraft_DeleteItem(t *testing.T) {
	draft := core.NewDraft()
	a := mustAdd(t, draft, "A", "1", "10")
	b := mustAdd(t, draft, "B", "1", "20")

	// declined confirmation is a no-op
	if err := draft.DeleteItem(a.ID, false); err != nil {
		t.Fatalf("declined delete: %v", err)
	}
	if len(draft.Items) != 2 {
		t.Fatalf("declined delete removed an item: %d left", len(draft.Items))
	}

	if err := draft.DeleteItem(a.ID, true); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(draft.Items) != 1 || draft.Items[0].ID != b.ID {
		t.Fatalf("wrong item deleted: %+v", draft.Items)
	}

	if err := draft.DeleteItem("nope", true); err == nil {
		t.Error("expected error deleting unknown ID")
	}
}

func TestDraft_DeleteInteractsWithEditMode(t *testing.T) {
	draft := core.NewDraft()
	a := mustAdd(t, draft, "A", "1", "10")
	b := mustAdd(t, draft, "B", "1", "20")

	if _, err := draft.BeginEdit(a.ID); err != nil {
		t.Fatalf("BeginEdit: %v", err)
	}

	// deleting an unrelated item leaves the edit in progress
	if err := draft.DeleteItem(b.ID, true); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if draft.EditingID() != a.ID {
		t.Errorf("deleting another item disturbed edit state: editing %q", draft.EditingID())
	}

	// deleting the edited item returns to idle
	if err := draft.DeleteItem(a.ID, true); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if draft.EditingID() != "" {
		t.Errorf("deleting edited item left edit mode on %q", draft.EditingID())
	}
}

func TestDraft_SnapshotApplyRoundTrip(t *testing.T) {
	draft := core.NewDraft()
	mustAdd(t, draft, "Widget", "2", "10")
	draft.Client = core.PartyInfo{Name: "Acme Corp", Email: "billing@acme.test"}
	draft.Meta.InvoiceNumber = "INV-7777"
	draft.TaxRatePercent = d("10")
	draft.Discount = core.DiscountRule{Kind: core.DiscountFixed, Value: d("5")}

	snap := draft.Snapshot()
	if snap.ID != "INV-7777" {
		t.Errorf("snapshot ID = %q, want invoice number", snap.ID)
	}
	if !snap.Totals.GrandTotal.Equal(d("16.5")) {
		t.Errorf("snapshot grand total = %s, want 16.5", snap.Totals.GrandTotal)
	}

	restored := core.NewDraft()
	if _, err := restored.BeginEdit("x"); err == nil {
		t.Fatal("sanity: expected error")
	}
	restored.Apply(snap)

	if restored.Client.Name != "Acme Corp" {
		t.Errorf("client = %q after apply", restored.Client.Name)
	}
	if len(restored.Items) != 1 || restored.Items[0].Name != "Widget" {
		t.Errorf("items after apply: %+v", restored.Items)
	}
	if restored.EditingID() != "" {
		t.Errorf("apply did not reset edit mode")
	}
	if !restored.Totals().GrandTotal.Equal(d("16.5")) {
		t.Errorf("totals after apply = %s, want 16.5", restored.Totals().GrandTotal)
	}

	// snapshot holds a copy, not the live slice
	snap.LineItems[0].Name = "Mutated"
	if draft.Items[0].Name != "Widget" {
		t.Error("snapshot shares backing array with draft")
	}
}
