package repl

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"instant-invoice/internal/app"
	"instant-invoice/internal/core"
)

// Run starts the interactive REPL loop.
// It reads commands from reader, dispatches slash commands deterministically,
// and routes natural language input through the AI item interpreter.
func Run(ctx context.Context, svc app.ApplicationService, reader *bufio.Reader) {
	draft := svc.GetDraft()

	fmt.Println("InstantInvoice")
	fmt.Printf("Invoice: %s (%s)\n", draft.Meta.InvoiceNumber, draft.Meta.Status)
	fmt.Println("Describe billable work to propose line items, or use /help for commands.")
	fmt.Println(strings.Repeat("-", 70))

	errExit := fmt.Errorf("exit")

	dispatchSlash := func(input string) error {
		tokens := strings.Fields(strings.TrimPrefix(input, "/"))
		if len(tokens) == 0 {
			return nil
		}
		cmd := strings.ToLower(tokens[0])
		args := tokens[1:]

		switch cmd {
		case "items":
			printItems(draft)

		case "add":
			handleAddItem(reader, svc)

		case "edit":
			if len(args) < 1 {
				fmt.Println("Usage: /edit <item-number>")
				return nil
			}
			handleEditItem(reader, svc, args[0])

		case "delete", "del":
			if len(args) < 1 {
				fmt.Println("Usage: /delete <item-number>")
				return nil
			}
			handleDeleteItem(reader, svc, args[0])

		case "client":
			draft.Client = partyWizard(reader, "Client", draft.Client)

		case "company":
			draft.Company = partyWizard(reader, "Company", draft.Company)

		case "meta":
			metaWizard(reader, draft)

		case "tax":
			if len(args) < 1 {
				fmt.Printf("Tax rate is %s%%. Usage: /tax <rate>\n", draft.TaxRatePercent)
				return nil
			}
			return setTaxRate(draft, args[0])

		case "discount":
			if len(args) < 2 {
				fmt.Printf("Discount is %s %s. Usage: /discount <pct|fixed> <value>\n",
					draft.Discount.Kind, draft.Discount.Value)
				return nil
			}
			return setDiscount(draft, args[0], args[1])

		case "currency":
			if len(args) < 1 {
				fmt.Printf("Currency symbol is %q. Usage: /currency <symbol>\n", draft.CurrencySymbol)
				return nil
			}
			draft.CurrencySymbol = args[0]
			fmt.Printf("Currency set to %s\n", draft.CurrencySymbol)

		case "totals":
			printTotals(draft, svc.GetTotals())

		case "show":
			printDraft(draft, svc.GetTotals())

		case "save":
			handleSave(ctx, reader, svc)

		case "load":
			if len(args) < 1 {
				fmt.Println("Usage: /load <invoice-number>")
				return nil
			}
			snapshot, err := svc.LoadInvoice(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Printf("Invoice %s loaded.\n", snapshot.ID)
			printDraft(draft, svc.GetTotals())

		case "list":
			result, err := svc.ListInvoices(ctx)
			if err != nil {
				return err
			}
			printInvoiceList(result)

		case "pdf":
			path := ""
			if len(args) > 0 {
				path = args[0]
			}
			return handleExportPDF(svc, path)

		case "new":
			*draft = *core.NewDraft()
			fmt.Printf("Started new invoice %s.\n", draft.Meta.InvoiceNumber)

		case "help":
			printHelp()

		case "exit", "quit":
			return errExit

		default:
			fmt.Printf("Unknown command: /%s (try /help)\n", cmd)
		}
		return nil
	}

	for {
		fmt.Print("\n> ")
		input, err := reader.ReadString('\n')
		if err != nil {
			break
		}
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		if strings.HasPrefix(input, "/") {
			if err := dispatchSlash(input); err != nil {
				if err == errExit {
					break
				}
				fmt.Printf("[REPL] Error: %v\n", err)
			}
			continue
		}

		handleProposal(ctx, reader, svc, input)
	}
}

// handleProposal routes natural language through the AI interpreter and asks
// for approval before any proposed item touches the draft.
func handleProposal(ctx context.Context, reader *bufio.Reader, svc app.ApplicationService, input string) {
	fmt.Println("[AI] Interpreting billing description...")

	accumulated := input
	for {
		result, err := svc.ProposeItems(ctx, accumulated)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}

		if result.IsClarification {
			fmt.Printf("\n[AI Clarification Needed]: %s\n", result.ClarificationMessage)
			fmt.Print("Your response: ")
			followUp, _ := reader.ReadString('\n')
			followUp = strings.TrimSpace(followUp)
			if followUp == "" || strings.ToLower(followUp) == "cancel" {
				fmt.Println("Cancelled.")
				return
			}
			accumulated = fmt.Sprintf("Original description: %s\nClarification requested: %s\nUser provided: %s",
				accumulated, result.ClarificationMessage, followUp)
			fmt.Println("Thinking again...")
			continue
		}

		printProposal(result, svc.GetDraft().CurrencySymbol)
		if result.Confidence < 0.6 {
			fmt.Println("\nWARNING: Low confidence proposal.")
		}

		if !confirm(reader, "\nAdd these items to the invoice? (y/n): ") {
			fmt.Println("Proposal discarded.")
			return
		}

		added, err := svc.ApplyProposedItems(result.Items)
		if err != nil {
			fmt.Printf("Failed to add items: %v\n", err)
			return
		}
		fmt.Printf("%d item(s) added.\n", len(added))
		printTotals(svc.GetDraft(), svc.GetTotals())
		return
	}
}

// handleSave persists the draft, prompting for overwrite confirmation when an
// invoice with the same number already exists. Declining leaves the store unchanged.
func handleSave(ctx context.Context, reader *bufio.Reader, svc app.ApplicationService) {
	result, err := svc.SaveInvoice(ctx, false)
	if err == nil {
		fmt.Printf("Invoice %s saved (%d invoice(s) in store).\n", result.ID, result.TotalSaved)
		return
	}
	if !isExists(err) {
		fmt.Printf("[REPL] Error: %v\n", err)
		return
	}

	number := svc.GetDraft().Meta.InvoiceNumber
	if !confirm(reader, fmt.Sprintf("Invoice %s already exists. Overwrite? (y/n): ", number)) {
		fmt.Println("Save cancelled.")
		return
	}
	result, err = svc.SaveInvoice(ctx, true)
	if err != nil {
		fmt.Printf("[REPL] Error: %v\n", err)
		return
	}
	fmt.Printf("Invoice %s overwritten.\n", result.ID)
}

func handleExportPDF(svc app.ApplicationService, path string) error {
	result, err := svc.ExportPDF()
	if err != nil {
		return err
	}
	if path == "" {
		path = result.Filename
	}
	if err := writeFile(path, result.Data); err != nil {
		return err
	}
	fmt.Printf("PDF written to %s (%d bytes).\n", path, len(result.Data))
	return nil
}

func printHelp() {
	fmt.Println("Commands:")
	fmt.Println("  /items                    list line items")
	fmt.Println("  /add                      add a line item")
	fmt.Println("  /edit <n>                 edit line item n")
	fmt.Println("  /delete <n>               delete line item n (asks for confirmation)")
	fmt.Println("  /client  /company         edit party details")
	fmt.Println("  /meta                     edit invoice number, dates, status")
	fmt.Println("  /tax <rate>               set tax rate percent")
	fmt.Println("  /discount <pct|fixed> <v> set the discount rule")
	fmt.Println("  /currency <symbol>        set the currency symbol")
	fmt.Println("  /totals  /show            recompute totals / show the full draft")
	fmt.Println("  /save  /load <id>  /list  persistence")
	fmt.Println("  /pdf [path]               export the draft as PDF")
	fmt.Println("  /new                      start a fresh invoice")
	fmt.Println("  /exit")
	fmt.Println("Anything else is sent to the AI item interpreter.")
}
