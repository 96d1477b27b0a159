package repl

import (
	"fmt"
	"strings"

	"instant-invoice/internal/app"
	"instant-invoice/internal/core"
)

func printItems(draft *core.Draft) {
	fmt.Println()
	fmt.Println(strings.Repeat("=", 72))
	fmt.Println("  LINE ITEMS")
	fmt.Println(strings.Repeat("=", 72))
	if len(draft.Items) == 0 {
		fmt.Println("  No items yet. Use /add or describe the work in plain language.")
		fmt.Println(strings.Repeat("=", 72))
		return
	}
	cur := draft.CurrencySymbol
	fmt.Printf("  %-3s %-35s %10s %12s %12s\n", "#", "ITEM", "QTY", "PRICE", "TOTAL")
	fmt.Println(strings.Repeat("-", 72))
	for i, item := range draft.Items {
		marker := " "
		if draft.EditingID() == item.ID {
			marker = "*"
		}
		fmt.Printf("  %-3d %-35s %10s %11s%s %11s%s %s\n",
			i+1, item.Name, item.Quantity.String(),
			cur, item.UnitPrice.StringFixed(2),
			cur, item.LineTotal().StringFixed(2), marker)
	}
	fmt.Println(strings.Repeat("=", 72))
}

func printTotals(draft *core.Draft, totals core.Totals) {
	cur := draft.CurrencySymbol
	fmt.Println()
	fmt.Printf("  %-22s %12s%s\n", "Subtotal:", cur, totals.Subtotal.StringFixed(2))
	if totals.DiscountAmount.IsPositive() {
		label := fmt.Sprintf("Discount (%s%%):", draft.Discount.Value)
		if draft.Discount.Kind == core.DiscountFixed {
			label = fmt.Sprintf("Discount (fixed %s%s):", cur, draft.Discount.Value)
		}
		fmt.Printf("  %-22s -%11s%s\n", label, cur, totals.DiscountAmount.StringFixed(2))
	}
	if totals.TaxAmount.IsPositive() {
		fmt.Printf("  %-22s +%11s%s\n", fmt.Sprintf("Tax (%s%%):", draft.TaxRatePercent), cur, totals.TaxAmount.StringFixed(2))
	}
	fmt.Printf("  %-22s %12s%s\n", "TOTAL AMOUNT:", cur, totals.GrandTotal.StringFixed(2))
}

func printParty(label string, p core.PartyInfo) {
	fmt.Printf("  %-10s %s\n", label+":", p.Name)
	for _, line := range strings.Split(p.Address, "\n") {
		if line != "" {
			fmt.Printf("  %-10s %s\n", "", line)
		}
	}
	if p.Email != "" {
		fmt.Printf("  %-10s %s\n", "", p.Email)
	}
	if p.Phone != "" {
		fmt.Printf("  %-10s %s\n", "", p.Phone)
	}
}

func printDraft(draft *core.Draft, totals core.Totals) {
	fmt.Println()
	fmt.Println(strings.Repeat("=", 72))
	fmt.Printf("  INVOICE %s  [%s]\n", draft.Meta.InvoiceNumber, draft.Meta.Status)
	fmt.Printf("  Date: %s   Due: %s   Currency: %s\n",
		draft.Meta.InvoiceDate, orDash(draft.Meta.DueDate), draft.CurrencySymbol)
	fmt.Println(strings.Repeat("-", 72))
	printParty("From", draft.Company)
	fmt.Println()
	printParty("Bill To", draft.Client)
	printItems(draft)
	printTotals(draft, totals)
	fmt.Println(strings.Repeat("=", 72))
}

func printInvoiceList(result *app.InvoiceListResult) {
	fmt.Println()
	fmt.Println(strings.Repeat("=", 52))
	fmt.Println("  SAVED INVOICES")
	fmt.Println(strings.Repeat("=", 52))
	if len(result.Invoices) == 0 {
		fmt.Println("  No saved invoices.")
		fmt.Println(strings.Repeat("=", 52))
		return
	}
	fmt.Printf("  %-16s %s\n", "INVOICE #", "CLIENT")
	fmt.Println(strings.Repeat("-", 52))
	for _, inv := range result.Invoices {
		client := inv.ClientName
		if client == "" {
			client = "(no client)"
		}
		fmt.Printf("  %-16s %s\n", inv.ID, client)
	}
	fmt.Println(strings.Repeat("=", 52))
}

func printProposal(result *app.ProposalResult, currency string) {
	fmt.Printf("\nREASONING:  %s\n", result.Reasoning)
	fmt.Printf("CONFIDENCE: %.2f\n", result.Confidence)
	fmt.Println("PROPOSED ITEMS:")
	for _, in := range result.Items {
		fmt.Printf("  %-35s %8s × %s%s\n", in.Name, in.Quantity, currency, in.UnitPrice.StringFixed(2))
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
