// Package sheets defines the outbound ports for mirroring the ledger to a
// spreadsheet, with adapters under google/ and memory/.
package sheets

import (
	"context"

	"gestor/internal/core"
)

type (
	// LedgerWriter appends one transaction row to the mirror.
	LedgerWriter interface {
		AppendTransaction(ctx context.Context, t core.Transaction) (rowRef string, err error)
	}

	// LedgerDeleter removes the mirrored row for a transaction id.
	LedgerDeleter interface {
		DeleteTransaction(ctx context.Context, id string) error
	}
)
