package services

import (
	"context"
	"fmt"
	"log/slog"

	"gestor/internal/core"
)

type backupStore interface {
	ListTransactions(ctx context.Context) ([]core.Transaction, error)
	ListOrders(ctx context.Context) ([]core.Order, error)
	ReplaceAll(ctx context.Context, b core.Backup) error
}

// BackupService exports and restores the full data set as a JSON
// document with storage ids stripped.
type BackupService struct {
	store backupStore
	hub   *SnapshotHub
}

func NewBackupService(store backupStore, hub *SnapshotHub) *BackupService {
	return &BackupService{store: store, hub: hub}
}

// Export serializes the current orders and transactions.
func (s *BackupService) Export(ctx context.Context) ([]byte, error) {
	txs, err := s.store.ListTransactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	orders, err := s.store.ListOrders(ctx)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	data, err := core.NewBackup(orders, txs).Marshal()
	if err != nil {
		return nil, fmt.Errorf("marshal backup: %w", err)
	}
	slog.InfoContext(ctx, "Backup exported",
		"orders", len(orders),
		"transactions", len(txs))
	return data, nil
}

// Restore replaces the whole store with the backup document's contents.
func (s *BackupService) Restore(ctx context.Context, data []byte) error {
	b, err := core.ParseBackup(data)
	if err != nil {
		return fmt.Errorf("parse backup: %w", err)
	}
	if err := s.store.ReplaceAll(ctx, b); err != nil {
		return fmt.Errorf("restore backup: %w", err)
	}

	slog.InfoContext(ctx, "Backup restored",
		"orders", len(b.Orders),
		"transactions", len(b.Transactions))

	if s.hub != nil {
		if txs, err := s.store.ListTransactions(ctx); err == nil {
			s.hub.publishLedger(txs)
		}
		if orders, err := s.store.ListOrders(ctx); err == nil {
			s.hub.publishOrders(orders)
		}
	}
	return nil
}
