// Package memory is the in-memory Store used by tests and by file-only
// runs without a configured database.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/billfold/billfold/pkg/models"
	"github.com/billfold/billfold/pkg/storage"
)

type Store struct {
	mu      sync.Mutex
	imports map[string]models.Import        // by import ID
	txs     map[string][]models.Transaction // by import ID
	rewards map[string][]models.RewardSummary
	nextID  int64
}

func New() *Store {
	return &Store{
		imports: make(map[string]models.Import),
		txs:     make(map[string][]models.Transaction),
		rewards: make(map[string][]models.RewardSummary),
	}
}

func (s *Store) FindImportByHash(_ context.Context, hash string) (*models.Import, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, imp := range s.imports {
		if imp.ContentHash == hash && imp.Status != models.ImportFailed {
			found := imp
			return &found, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (s *Store) TransactionsByImport(_ context.Context, importID string) ([]models.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Transaction, len(s.txs[importID]))
	copy(out, s.txs[importID])
	return out, nil
}

func (s *Store) SaveImport(_ context.Context, imp *models.Import, txs []models.Transaction, rewards []models.RewardSummary) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if imp.Status != models.ImportFailed {
		for _, existing := range s.imports {
			if existing.ContentHash == imp.ContentHash && existing.Status != models.ImportFailed {
				return storage.ErrDuplicateHash
			}
		}
	}

	stored := make([]models.Transaction, len(txs))
	copy(stored, txs)
	for i := range stored {
		s.nextID++
		stored[i].ID = s.nextID
	}

	s.imports[imp.ID] = *imp
	s.txs[imp.ID] = stored
	s.rewards[imp.ID] = append([]models.RewardSummary(nil), rewards...)
	return nil
}

func (s *Store) ListTransactions(_ context.Context, from, to *time.Time) ([]models.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.Transaction
	for _, rows := range s.txs {
		for _, tx := range rows {
			if from != nil && tx.Date.Before(*from) {
				continue
			}
			if to != nil && !tx.Date.Before(*to) {
				continue
			}
			out = append(out, tx)
		}
	}
	return out, nil
}

// RewardsByImport is used by tests to check atomic persistence.
func (s *Store) RewardsByImport(importID string) []models.RewardSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.RewardSummary(nil), s.rewards[importID]...)
}

// ImportCount reports stored imports, used by idempotence tests.
func (s *Store) ImportCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.imports)
}
