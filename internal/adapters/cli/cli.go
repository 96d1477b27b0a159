package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"

	"instant-invoice/internal/app"
)

// Run executes a one-shot CLI command and exits.
// args is os.Args[1:] — the first element is the subcommand name.
func Run(ctx context.Context, svc app.ApplicationService, args []string) {
	switch args[0] {
	case "list", "ls":
		result, err := svc.ListInvoices(ctx)
		if err != nil {
			log.Fatalf("Failed to list invoices: %v", err)
		}
		printInvoiceList(result)

	case "show":
		if len(args) < 2 {
			log.Fatal("Usage: app show <invoice-number>")
		}
		snapshot, err := svc.GetSnapshot(ctx, args[1])
		if err != nil {
			log.Fatalf("Failed to load invoice: %v", err)
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		enc.Encode(snapshot)

	case "totals", "tot", "t":
		var req app.ComputeTotalsRequest
		if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
			log.Fatalf("Invalid JSON: %v", err)
		}
		totals, err := svc.ComputeTotals(req)
		if err != nil {
			log.Fatalf("Invalid totals input: %v", err)
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		enc.Encode(totals)

	case "pdf":
		if len(args) < 2 {
			log.Fatal("Usage: app pdf <invoice-number> [output-path]")
		}
		result, err := svc.ExportSnapshotPDF(ctx, args[1])
		if err != nil {
			log.Fatalf("Failed to export PDF: %v", err)
		}
		path := result.Filename
		if len(args) >= 3 {
			path = args[2]
		}
		if err := os.WriteFile(path, result.Data, 0o644); err != nil {
			log.Fatalf("Failed to write %s: %v", path, err)
		}
		fmt.Printf("PDF written to %s (%d bytes).\n", path, len(result.Data))

	case "propose", "prop", "p":
		if len(args) < 2 {
			log.Fatal("Usage: app propose \"<billing description>\"")
		}
		result, err := svc.ProposeItems(ctx, args[1])
		if err != nil {
			log.Fatalf("Interpreter error: %v", err)
		}
		if result.IsClarification {
			fmt.Fprintln(os.Stderr, "AI needs clarification:", result.ClarificationMessage)
			os.Exit(1)
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		enc.Encode(result.Items)

	default:
		log.Fatalf("Unknown command: %s\nAvailable: list, show, totals, pdf, propose", args[0])
	}
}

func printInvoiceList(result *app.InvoiceListResult) {
	fmt.Println()
	fmt.Println(strings.Repeat("=", 52))
	fmt.Printf("  %-48s\n", "SAVED INVOICES")
	fmt.Println(strings.Repeat("=", 52))
	fmt.Printf("  %-16s %s\n", "INVOICE #", "CLIENT")
	fmt.Println(strings.Repeat("-", 52))
	for _, inv := range result.Invoices {
		fmt.Printf("  %-16s %s\n", inv.ID, inv.ClientName)
	}
	fmt.Println(strings.Repeat("=", 52))
}
