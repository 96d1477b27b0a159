package main

import (
	"bufio"
	"context"
	"log"
	"os"

	"instant-invoice/internal/adapters/cli"
	"instant-invoice/internal/adapters/repl"
	"instant-invoice/internal/ai"
	"instant-invoice/internal/app"
	"instant-invoice/internal/core"
	"instant-invoice/internal/db"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	ctx := context.Background()

	backend, cleanup, err := newBackend(ctx)
	if err != nil {
		log.Fatalf("store: %v", err)
	}
	defer cleanup()

	var agent *ai.Agent
	if apiKey := os.Getenv("OPENAI_API_KEY"); apiKey != "" {
		agent = ai.NewAgent(apiKey)
	} else {
		log.Println("Warning: OPENAI_API_KEY is not set — AI item interpretation disabled")
	}

	svc := app.NewAppService(core.NewInvoiceStore(backend), agent)

	if len(os.Args) > 1 {
		cli.Run(ctx, svc, os.Args[1:])
		return
	}
	repl.Run(ctx, svc, bufio.NewReader(os.Stdin))
}

// newBackend selects the durable store: Postgres when DATABASE_URL is set,
// otherwise a local JSON file (INVOICE_STORE_PATH, default invoices.json).
func newBackend(ctx context.Context) (core.CollectionBackend, func(), error) {
	collection := os.Getenv("INVOICE_COLLECTION")
	if collection == "" {
		collection = "savedInvoices"
	}

	if connStr := os.Getenv("DATABASE_URL"); connStr != "" {
		pool, err := db.NewPool(ctx, connStr)
		if err != nil {
			return nil, nil, err
		}
		backend, err := core.NewPostgresBackend(ctx, pool, collection)
		if err != nil {
			pool.Close()
			return nil, nil, err
		}
		return backend, pool.Close, nil
	}

	path := os.Getenv("INVOICE_STORE_PATH")
	if path == "" {
		path = "invoices.json"
	}
	return core.NewFileBackend(path), func() {}, nil
}
