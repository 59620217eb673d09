// Package worker mirrors ledger rows from SQLite to the spreadsheet.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"gestor/internal/amqp"
	"gestor/internal/core"
	"gestor/internal/sheets"
	"gestor/internal/storage"
)

// SyncWorker applies queue messages against the spreadsheet mirror and
// runs the periodic pending scan that recovers from lost messages.
type SyncWorker struct {
	storage   *storage.SQLiteRepository
	writer    sheets.LedgerWriter
	deleter   sheets.LedgerDeleter
	batchSize int
}

func NewSyncWorker(storage *storage.SQLiteRepository, writer sheets.LedgerWriter, deleter sheets.LedgerDeleter, batchSize int) *SyncWorker {
	return &SyncWorker{
		storage:   storage,
		writer:    writer,
		deleter:   deleter,
		batchSize: batchSize,
	}
}

// HandleSyncMessage processes a single ledger sync message from AMQP.
func (w *SyncWorker) HandleSyncMessage(ctx context.Context, msg *amqp.LedgerSyncMessage) error {
	slog.InfoContext(ctx, "Processing sync message",
		"id", msg.ID,
		"version", msg.Version)

	tx, err := w.storage.GetTransaction(ctx, msg.ID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			// Deleted before we got here; the delete message handles the
			// mirror cleanup.
			slog.WarnContext(ctx, "Transaction gone, skipping sync", "id", msg.ID)
			return nil
		}
		return fmt.Errorf("get transaction from storage: %w", err)
	}

	return w.mirrorTransaction(ctx, tx.ID, msg.Version, tx)
}

// HandleDeleteMessage processes a single ledger delete message from AMQP.
func (w *SyncWorker) HandleDeleteMessage(ctx context.Context, msg *amqp.LedgerDeleteMessage) error {
	slog.InfoContext(ctx, "Processing delete message", "id", msg.ID)

	if w.deleter == nil {
		slog.WarnContext(ctx, "No ledger deleter configured, skipping mirror deletion",
			"id", msg.ID)
		return nil
	}

	if err := w.deleter.DeleteTransaction(ctx, msg.ID); err != nil {
		return fmt.Errorf("delete mirrored row: %w", err)
	}

	slog.InfoContext(ctx, "Deleted mirrored row", "id", msg.ID)
	return nil
}

// ProcessPendingTransactions mirrors any rows still marked pending. This
// is the backup mechanism in case AMQP messages are lost.
func (w *SyncWorker) ProcessPendingTransactions(ctx context.Context) error {
	pending, err := w.storage.GetPendingSyncTransactions(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("get pending transactions: %w", err)
	}

	if len(pending) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Processing pending transactions", "count", len(pending))

	for _, p := range pending {
		if err := w.mirrorTransaction(ctx, p.Transaction.ID, p.Version, p.Transaction); err != nil {
			slog.ErrorContext(ctx, "Failed to sync transaction",
				"id", p.Transaction.ID, "error", err)
			continue
		}
	}

	return nil
}

// StartupSyncCheck drains the pending backlog once at worker startup,
// recovering from missed messages or worker downtime.
func (w *SyncWorker) StartupSyncCheck(ctx context.Context) error {
	pending, err := w.storage.GetPendingSyncTransactions(ctx, w.batchSize*5)
	if err != nil {
		return fmt.Errorf("get pending transactions for startup check: %w", err)
	}

	if len(pending) == 0 {
		slog.InfoContext(ctx, "No pending transactions found on startup")
		return nil
	}

	slog.InfoContext(ctx, "Found pending transactions on startup, processing...",
		"count", len(pending))

	synced := 0
	failed := 0
	for _, p := range pending {
		if err := w.mirrorTransaction(ctx, p.Transaction.ID, p.Version, p.Transaction); err != nil {
			slog.ErrorContext(ctx, "Failed to sync transaction during startup",
				"id", p.Transaction.ID, "error", err)
			failed++
			continue
		}
		synced++
	}

	slog.InfoContext(ctx, "Startup sync check completed",
		"synced", synced,
		"failed", failed)
	return nil
}

func (w *SyncWorker) mirrorTransaction(ctx context.Context, id string, version int64, tx core.Transaction) error {
	if w.writer == nil {
		slog.WarnContext(ctx, "No ledger writer configured, skipping sync", "id", id)
		return nil
	}

	rowRef, err := w.writer.AppendTransaction(ctx, tx)
	if err != nil {
		return fmt.Errorf("append transaction to mirror: %w", err)
	}

	if err := w.storage.MarkTransactionSynced(ctx, id, version); err != nil {
		return fmt.Errorf("mark transaction synced: %w", err)
	}

	slog.InfoContext(ctx, "Transaction mirrored",
		"id", id,
		"version", version,
		"row_ref", rowRef)
	return nil
}
