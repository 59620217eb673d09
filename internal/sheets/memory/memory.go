// Package memory is an in-process ledger mirror used in tests and local
// development when no spreadsheet is configured.
package memory

import (
	"context"
	"fmt"
	"sync"

	"gestor/internal/core"
)

type Store struct {
	mu   sync.Mutex
	rows []core.Transaction
}

func New() *Store {
	return &Store{}
}

// AppendTransaction stores the row and returns a synthetic row reference.
func (s *Store) AppendTransaction(_ context.Context, t core.Transaction) (string, error) {
	if err := t.Validate(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = append(s.rows, t)
	return fmt.Sprintf("mem:%d", len(s.rows)), nil
}

// DeleteTransaction removes every row carrying the given id.
func (s *Store) DeleteTransaction(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.rows[:0]
	for _, row := range s.rows {
		if row.ID != id {
			kept = append(kept, row)
		}
	}
	s.rows = kept
	return nil
}

// Rows returns a copy of the mirrored rows.
func (s *Store) Rows() []core.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Transaction(nil), s.rows...)
}
