package repl

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/shopspring/decimal"

	"instant-invoice/internal/app"
	"instant-invoice/internal/core"
)

// confirm prompts with the given message and returns true only on y/yes.
func confirm(reader *bufio.Reader, prompt string) bool {
	fmt.Print(prompt)
	choice, _ := reader.ReadString('\n')
	choice = strings.TrimSpace(strings.ToLower(choice))
	return choice == "y" || choice == "yes"
}

func isExists(err error) bool {
	return errors.Is(err, core.ErrInvoiceExists)
}

func writeFile(path string, data []byte) error {
	return os.WriteFile(path, data, 0o644)
}

// promptDefault asks for a value, keeping current when the input is blank.
func promptDefault(reader *bufio.Reader, label, current string) string {
	if current != "" {
		fmt.Printf("%s [%s]: ", label, current)
	} else {
		fmt.Printf("%s: ", label)
	}
	input, _ := reader.ReadString('\n')
	input = strings.TrimSpace(input)
	if input == "" {
		return current
	}
	return input
}

// itemWizard collects name/quantity/price for one line item. Re-prompts on
// validation errors; a blank name aborts and returns false.
func itemWizard(reader *bufio.Reader, current core.LineItemInput) (core.LineItemInput, bool) {
	for {
		name := promptDefault(reader, "Item name", current.Name)
		if name == "" {
			fmt.Println("Cancelled.")
			return core.LineItemInput{}, false
		}
		qty := promptDefault(reader, "Quantity", currentOrEmpty(current.Quantity))
		price := promptDefault(reader, "Unit price", currentOrEmpty(current.UnitPrice))

		in, err := core.ParseLineItemInput(name, qty, price)
		if err != nil {
			fmt.Printf("  %v — item not added.\n", err)
			current = core.LineItemInput{Name: name}
			continue
		}
		return in, true
	}
}

func currentOrEmpty(d decimal.Decimal) string {
	if d.IsZero() {
		return ""
	}
	return d.String()
}

func handleAddItem(reader *bufio.Reader, svc app.ApplicationService) {
	in, ok := itemWizard(reader, core.LineItemInput{})
	if !ok {
		return
	}
	item, err := svc.AddItem(in)
	if err != nil {
		fmt.Printf("  %v\n", err)
		return
	}
	fmt.Printf("Added %s (%s × %s).\n", item.Name, item.Quantity, item.UnitPrice)
}

// resolveItem maps a 1-based display ordinal onto the item's stable ID.
func resolveItem(draft *core.Draft, ref string) (core.LineItem, bool) {
	for i, item := range draft.Items {
		if fmt.Sprintf("%d", i+1) == ref || item.ID == ref {
			return item, true
		}
	}
	fmt.Printf("No item %q — use /items to see numbers.\n", ref)
	return core.LineItem{}, false
}

func handleEditItem(reader *bufio.Reader, svc app.ApplicationService, ref string) {
	target, ok := resolveItem(svc.GetDraft(), ref)
	if !ok {
		return
	}
	item, err := svc.BeginEdit(target.ID)
	if err != nil {
		fmt.Printf("  %v\n", err)
		return
	}

	fmt.Printf("Editing %s — blank name cancels.\n", item.Name)
	in, ok := itemWizard(reader, core.LineItemInput{
		Name:      item.Name,
		Quantity:  item.Quantity,
		UnitPrice: item.UnitPrice,
	})
	if !ok {
		svc.CancelEdit()
		return
	}
	updated, err := svc.UpdateItem(item.ID, in)
	if err != nil {
		fmt.Printf("  %v\n", err)
		return
	}
	fmt.Printf("Updated %s (%s × %s).\n", updated.Name, updated.Quantity, updated.UnitPrice)
}

func handleDeleteItem(reader *bufio.Reader, svc app.ApplicationService, ref string) {
	target, ok := resolveItem(svc.GetDraft(), ref)
	if !ok {
		return
	}
	confirmed := confirm(reader, fmt.Sprintf("Delete %q? (y/n): ", target.Name))
	if err := svc.DeleteItem(target.ID, confirmed); err != nil {
		fmt.Printf("  %v\n", err)
		return
	}
	if confirmed {
		fmt.Println("Item deleted.")
	} else {
		fmt.Println("Delete cancelled.")
	}
}

// partyWizard edits the four contact fields of a party in place.
func partyWizard(reader *bufio.Reader, label string, current core.PartyInfo) core.PartyInfo {
	fmt.Printf("%s details — blank keeps the current value.\n", label)
	current.Name = promptDefault(reader, "  Name", current.Name)
	current.Address = strings.ReplaceAll(
		promptDefault(reader, "  Address (use \\n for line breaks)", current.Address), "\\n", "\n")
	current.Email = promptDefault(reader, "  Email", current.Email)
	current.Phone = promptDefault(reader, "  Phone", current.Phone)
	return current
}

func metaWizard(reader *bufio.Reader, draft *core.Draft) {
	draft.Meta.InvoiceNumber = promptDefault(reader, "Invoice #", draft.Meta.InvoiceNumber)
	draft.Meta.InvoiceDate = promptDefault(reader, "Invoice date (YYYY-MM-DD)", draft.Meta.InvoiceDate)
	draft.Meta.DueDate = promptDefault(reader, "Due date (YYYY-MM-DD)", draft.Meta.DueDate)

	status := promptDefault(reader, "Status (Draft/Sent/Paid/Partially Paid/Overdue)", string(draft.Meta.Status))
	draft.Meta.Status = core.InvoiceStatus(status)
}

func setTaxRate(draft *core.Draft, raw string) error {
	rate, err := decimal.NewFromString(raw)
	if err != nil || rate.IsNegative() {
		return fmt.Errorf("invalid tax rate %q", raw)
	}
	draft.TaxRatePercent = rate
	fmt.Printf("Tax rate set to %s%%.\n", rate)
	return nil
}

func setDiscount(draft *core.Draft, kind, raw string) error {
	value, err := decimal.NewFromString(raw)
	if err != nil || value.IsNegative() {
		return fmt.Errorf("invalid discount value %q", raw)
	}
	switch strings.ToLower(kind) {
	case "pct", "percent", "percentage":
		draft.Discount = core.DiscountRule{Kind: core.DiscountPercentage, Value: value}
		fmt.Printf("Discount set to %s%%.\n", value)
	case "fixed", "flat":
		draft.Discount = core.DiscountRule{Kind: core.DiscountFixed, Value: value}
		fmt.Printf("Discount set to fixed %s%s.\n", draft.CurrencySymbol, value)
	default:
		return fmt.Errorf("unknown discount kind %q (use pct or fixed)", kind)
	}
	return nil
}
