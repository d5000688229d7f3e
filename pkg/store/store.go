// Package store keeps analysis reports produced by the HTTP server so they
// can be fetched again by id.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ccollicutt/chatlens/pkg/config"
	"github.com/ccollicutt/chatlens/pkg/output"
)

// ErrNotFound is returned when no report is stored under an id.
var ErrNotFound = errors.New("result not found")

// Record is a stored report.
type Record struct {
	ID        string         `json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	Report    *output.Report `json:"report"`
}

// Store persists analysis reports. Implementations are safe for concurrent use.
type Store interface {
	// Put stores report under a fresh id and returns the record.
	Put(ctx context.Context, report *output.Report) (*Record, error)
	// Get returns the record for id or ErrNotFound.
	Get(ctx context.Context, id string) (*Record, error)
	// Delete removes the record for id or returns ErrNotFound.
	Delete(ctx context.Context, id string) error
	// Close releases resources held by the store.
	Close() error
}

// New opens the backend selected by cfg.
func New(cfg config.StoreConfig) (Store, error) {
	switch cfg.Backend {
	case config.StoreMemory, "":
		capacity := cfg.Capacity
		if capacity < 1 {
			capacity = config.DefaultStoreCapacity
		}
		return NewMemoryStore(capacity)
	case config.StoreSQLite:
		return OpenSQLite(cfg.Path)
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}

func newRecord(report *output.Report) *Record {
	return &Record{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
		Report:    report,
	}
}
