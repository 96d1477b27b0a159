package main

import (
	"context"
	"log"
	"net/http"
	"os"

	webAdapter "instant-invoice/internal/adapters/web"
	"instant-invoice/internal/ai"
	"instant-invoice/internal/app"
	"instant-invoice/internal/core"
	"instant-invoice/internal/db"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	ctx := context.Background()
	pool, err := db.NewPool(ctx, os.Getenv("DATABASE_URL"))
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer pool.Close()

	collection := os.Getenv("INVOICE_COLLECTION")
	if collection == "" {
		collection = "savedInvoices"
	}
	backend, err := core.NewPostgresBackend(ctx, pool, collection)
	if err != nil {
		log.Fatalf("store: %v", err)
	}

	var agent *ai.Agent
	if apiKey := os.Getenv("OPENAI_API_KEY"); apiKey != "" {
		agent = ai.NewAgent(apiKey)
	} else {
		log.Println("Warning: OPENAI_API_KEY is not set — /api/ai/items disabled")
	}

	svc := app.NewAppService(core.NewInvoiceStore(backend), agent)

	port := os.Getenv("SERVER_PORT")
	if port == "" {
		port = "8080"
	}

	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	handler := webAdapter.NewHandler(svc, allowedOrigins)

	log.Printf("server starting on :%s", port)
	if err := http.ListenAndServe(":"+port, handler); err != nil {
		log.Fatalf("server: %v", err)
	}
}
