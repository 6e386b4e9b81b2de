// Package storage defines the persistence contract of the pipeline.
// Implementations must make SaveImport atomic: either the import record
// and all its rows become visible together, or nothing does.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/billfold/billfold/pkg/models"
)

// ErrNotFound is returned by lookups that match nothing.
var ErrNotFound = errors.New("not found")

// ErrDuplicateHash is returned by SaveImport when another successful
// import with the same content hash already exists. Two workers racing on
// the same document bytes resolve through this, not through double rows.
var ErrDuplicateHash = errors.New("content hash already imported")

// Store is the persistence interface the dispatcher and aggregator run
// against.
type Store interface {
	// FindImportByHash returns the successful or partial import holding
	// this content hash, or ErrNotFound. Failed imports do not count:
	// a failed document may be retried.
	FindImportByHash(ctx context.Context, hash string) (*models.Import, error)

	// TransactionsByImport returns the rows persisted for one import.
	TransactionsByImport(ctx context.Context, importID string) ([]models.Transaction, error)

	// SaveImport atomically persists the import with its transactions and
	// reward summaries. The import is stored whatever its status; the
	// hash uniqueness check only guards non-failed imports.
	SaveImport(ctx context.Context, imp *models.Import, txs []models.Transaction, rewards []models.RewardSummary) error

	// ListTransactions returns persisted transactions, optionally bounded
	// by date (inclusive from, exclusive to).
	ListTransactions(ctx context.Context, from, to *time.Time) ([]models.Transaction, error)
}
