package core

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// fileBackend stores the snapshot collection as a single JSON file — the
// local, single-user analog of the browser's localStorage entry. Writes go
// through a temp file and rename so the entry is replaced in one step.
type fileBackend struct {
	path string
}

// NewFileBackend returns a CollectionBackend persisting to the given path.
// A missing file reads as an empty collection.
func NewFileBackend(path string) CollectionBackend {
	return &fileBackend{path: path}
}

func (b *fileBackend) ReadAll(ctx context.Context) ([]InvoiceSnapshot, error) {
	data, err := os.ReadFile(b.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", b.path, err)
	}
	if len(data) == 0 {
		return nil, nil
	}
	var snapshots []InvoiceSnapshot
	if err := json.Unmarshal(data, &snapshots); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", b.path, err)
	}
	return snapshots, nil
}

func (b *fileBackend) WriteAll(ctx context.Context, snapshots []InvoiceSnapshot) error {
	if snapshots == nil {
		snapshots = []InvoiceSnapshot{}
	}
	data, err := json.MarshalIndent(snapshots, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize invoices: %w", err)
	}

	dir := filepath.Dir(b.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".invoices-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, b.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace %s: %w", b.path, err)
	}
	return nil
}
