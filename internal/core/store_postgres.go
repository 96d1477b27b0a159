package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// postgresBackend stores each snapshot collection as one jsonb row: the
// durable-store contract is a single named entry holding the serialized array,
// so a save is a single UPSERT of the whole payload.
type postgresBackend struct {
	pool *pgxpool.Pool
	name string
}

// NewPostgresBackend returns a CollectionBackend persisting the named
// collection in the invoice_collections table, creating the table if needed.
func NewPostgresBackend(ctx context.Context, pool *pgxpool.Pool, name string) (CollectionBackend, error) {
	_, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS invoice_collections (
			name       TEXT PRIMARY KEY,
			payload    JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to ensure invoice_collections table: %w", err)
	}
	return &postgresBackend{pool: pool, name: name}, nil
}

func (b *postgresBackend) ReadAll(ctx context.Context) ([]InvoiceSnapshot, error) {
	var payload []byte
	err := b.pool.QueryRow(ctx,
		"SELECT payload FROM invoice_collections WHERE name = $1", b.name,
	).Scan(&payload)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read collection %s: %w", b.name, err)
	}

	var snapshots []InvoiceSnapshot
	if err := json.Unmarshal(payload, &snapshots); err != nil {
		return nil, fmt.Errorf("failed to parse collection %s: %w", b.name, err)
	}
	return snapshots, nil
}

func (b *postgresBackend) WriteAll(ctx context.Context, snapshots []InvoiceSnapshot) error {
	if snapshots == nil {
		snapshots = []InvoiceSnapshot{}
	}
	payload, err := json.Marshal(snapshots)
	if err != nil {
		return fmt.Errorf("failed to serialize collection %s: %w", b.name, err)
	}

	_, err = b.pool.Exec(ctx, `
		INSERT INTO invoice_collections (name, payload, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (name) DO UPDATE SET payload = EXCLUDED.payload, updated_at = NOW()
	`, b.name, payload)
	if err != nil {
		return fmt.Errorf("failed to write collection %s: %w", b.name, err)
	}
	return nil
}
