package core

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrInvoiceNotFound is returned by Load for an unknown invoice number.
	ErrInvoiceNotFound = errors.New("invoice not found")

	// ErrMissingInvoiceNumber is returned by Save when the snapshot has no
	// invoice number to key on.
	ErrMissingInvoiceNumber = errors.New("invoice number is required before saving")

	// ErrInvoiceExists is returned by Save when a snapshot with the same
	// invoice number already exists and the caller has not confirmed the
	// overwrite. Callers retry with overwrite=true after explicit user
	// confirmation; a declined confirmation is a no-op.
	ErrInvoiceExists = errors.New("invoice already exists")
)

// CollectionBackend is the durable store contract: a single named entry
// holding the full serialized snapshot collection. Every mutation reads the
// whole collection, modifies it, and rewrites it in one synchronous write.
type CollectionBackend interface {
	ReadAll(ctx context.Context) ([]InvoiceSnapshot, error)
	WriteAll(ctx context.Context, snapshots []InvoiceSnapshot) error
}

// InvoiceStore is keyed persistence of invoice snapshots, keyed by invoice
// number. Snapshots are immutable once written except for full overwrite;
// there is no delete operation.
type InvoiceStore interface {
	// Save inserts the snapshot, or overwrites an existing one with the same
	// invoice number when overwrite is true. The snapshot's inputs are validated
	// and totals recomputed before the write so stored totals always match the
	// stored inputs. Reports whether an existing snapshot was replaced.
	Save(ctx context.Context, snapshot InvoiceSnapshot, overwrite bool) (bool, error)

	// Load returns the snapshot with the given invoice number, normalized so
	// fields absent in older saves carry their documented defaults.
	Load(ctx context.Context, id string) (*InvoiceSnapshot, error)

	// List returns the identifiers and client names of all stored snapshots,
	// in stored order.
	List(ctx context.Context) ([]InvoiceSummary, error)
}

type invoiceStore struct {
	backend CollectionBackend
	now     func() time.Time
}

// NewInvoiceStore builds an InvoiceStore over the given backend.
func NewInvoiceStore(backend CollectionBackend) InvoiceStore {
	return &invoiceStore{backend: backend, now: time.Now}
}

func (s *invoiceStore) Save(ctx context.Context, snapshot InvoiceSnapshot, overwrite bool) (bool, error) {
	snapshot.Normalize()
	if snapshot.ID == "" {
		return false, ErrMissingInvoiceNumber
	}
	if err := snapshot.Validate(); err != nil {
		return false, fmt.Errorf("invoice %s: %w", snapshot.ID, err)
	}
	snapshot.SavedAt = s.now()

	all, err := s.backend.ReadAll(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to read invoice collection: %w", err)
	}

	existing := -1
	for i, saved := range all {
		if saved.ID == snapshot.ID {
			existing = i
			break
		}
	}

	if existing >= 0 {
		if !overwrite {
			return false, fmt.Errorf("invoice %s: %w", snapshot.ID, ErrInvoiceExists)
		}
		all[existing] = snapshot
	} else {
		all = append(all, snapshot)
	}

	if err := s.backend.WriteAll(ctx, all); err != nil {
		return false, fmt.Errorf("failed to write invoice collection: %w", err)
	}
	return existing >= 0, nil
}

func (s *invoiceStore) Load(ctx context.Context, id string) (*InvoiceSnapshot, error) {
	all, err := s.backend.ReadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read invoice collection: %w", err)
	}
	for _, saved := range all {
		if saved.ID == id {
			saved.Normalize()
			return &saved, nil
		}
	}
	return nil, fmt.Errorf("invoice %s: %w", id, ErrInvoiceNotFound)
}

func (s *invoiceStore) List(ctx context.Context) ([]InvoiceSummary, error) {
	all, err := s.backend.ReadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read invoice collection: %w", err)
	}
	summaries := make([]InvoiceSummary, len(all))
	for i, saved := range all {
		summaries[i] = InvoiceSummary{ID: saved.ID, ClientName: saved.Client.Name}
	}
	return summaries, nil
}
