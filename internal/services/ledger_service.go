// Package services orchestrates storage writes, snapshot fan-out and the
// async spreadsheet sync.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gestor/internal/core"
	applog "gestor/internal/log"
)

// LedgerService handles transaction writes: SQLite first, then snapshot
// fan-out, then a best-effort AMQP publish for the sheet mirror.
type LedgerService struct {
	store     ledgerStore
	publisher SyncPublisher
	hub       *SnapshotHub
	now       func() time.Time
}

func NewLedgerService(store ledgerStore, publisher SyncPublisher, hub *SnapshotHub) *LedgerService {
	return &LedgerService{store: store, publisher: publisher, hub: hub, now: time.Now}
}

// CreateTransaction validates and saves a transaction, then notifies
// subscribers with the fresh snapshot.
func (s *LedgerService) CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	created, err := s.store.CreateTransaction(ctx, t)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("save transaction: %w", err)
	}

	s.notifyLedger(ctx)
	s.publishSync(ctx, created.ID)
	return created, nil
}

// UpdateTransaction rewrites an existing transaction.
func (s *LedgerService) UpdateTransaction(ctx context.Context, t core.Transaction) error {
	if err := t.Validate(); err != nil {
		return err
	}
	if err := s.store.UpdateTransaction(ctx, t); err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}

	s.notifyLedger(ctx)
	s.publishSync(ctx, t.ID)
	return nil
}

// MarkPaid flips a receivable to paid, stamping today's date. The
// transition is one-way.
func (s *LedgerService) MarkPaid(ctx context.Context, id string) error {
	if err := s.store.MarkTransactionPaid(ctx, id, core.DateOf(s.now())); err != nil {
		return err
	}

	s.notifyLedger(ctx)
	s.publishSync(ctx, id)
	return nil
}

// DeleteTransaction soft deletes locally and asks the worker to clear the
// mirrored row.
func (s *LedgerService) DeleteTransaction(ctx context.Context, id string) error {
	if err := s.store.SoftDeleteTransaction(ctx, id); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}

	s.notifyLedger(ctx)
	if s.publisher != nil {
		if err := s.publisher.PublishLedgerDelete(ctx, id); err != nil {
			// Local delete already succeeded; the periodic worker scan
			// cannot recover deletes, so log loudly.
			slog.ErrorContext(ctx, "Failed to publish delete message",
				applog.FieldTransactionID, id, applog.FieldError, err)
		}
	}
	return nil
}

// List returns the current ledger snapshot.
func (s *LedgerService) List(ctx context.Context) ([]core.Transaction, error) {
	return s.store.ListTransactions(ctx)
}

func (s *LedgerService) Get(ctx context.Context, id string) (core.Transaction, error) {
	return s.store.GetTransaction(ctx, id)
}

func (s *LedgerService) notifyLedger(ctx context.Context) {
	if s.hub == nil {
		return
	}
	txs, err := s.store.ListTransactions(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to load ledger snapshot", "error", err)
		return
	}
	s.hub.publishLedger(txs)
}

func (s *LedgerService) publishSync(ctx context.Context, id string) {
	if s.publisher == nil {
		slog.WarnContext(ctx, "AMQP client not available, skipping sync message")
		return
	}
	version, err := s.store.TransactionVersion(ctx, id)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to read transaction version",
			applog.FieldTransactionID, id, applog.FieldError, err)
		return
	}
	if err := s.publisher.PublishLedgerSync(ctx, id, version); err != nil {
		// Don't fail the request; the transaction is saved locally and the
		// periodic pending scan will pick it up.
		slog.ErrorContext(ctx, "Failed to publish sync message",
			applog.FieldTransactionID, id, applog.FieldError, err)
	}
}
