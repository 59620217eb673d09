package services

import (
	"context"
	"sync"

	"gestor/internal/core"
)

// SnapshotHub fans whole-collection snapshots out to subscribers after
// every successful write. Snapshots are replaced wholesale, never patched:
// each callback receives the complete current list and owns that slice.
type SnapshotHub struct {
	mu         sync.RWMutex
	ledgerSubs []func([]core.Transaction)
	orderSubs  []func([]core.Order)
}

func NewSnapshotHub() *SnapshotHub {
	return &SnapshotHub{}
}

// SubscribeLedger registers a callback invoked with the full transaction
// list on every ledger change.
func (h *SnapshotHub) SubscribeLedger(fn func([]core.Transaction)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.ledgerSubs = append(h.ledgerSubs, fn)
}

// SubscribeOrders registers a callback invoked with the full order list
// on every order change.
func (h *SnapshotHub) SubscribeOrders(fn func([]core.Order)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.orderSubs = append(h.orderSubs, fn)
}

func (h *SnapshotHub) publishLedger(txs []core.Transaction) {
	h.mu.RLock()
	subs := h.ledgerSubs
	h.mu.RUnlock()
	for _, fn := range subs {
		fn(txs)
	}
}

func (h *SnapshotHub) publishOrders(orders []core.Order) {
	h.mu.RLock()
	subs := h.orderSubs
	h.mu.RUnlock()
	for _, fn := range subs {
		fn(orders)
	}
}

// ledgerStore is the storage surface the ledger service needs.
type ledgerStore interface {
	CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error)
	UpdateTransaction(ctx context.Context, t core.Transaction) error
	SoftDeleteTransaction(ctx context.Context, id string) error
	MarkTransactionPaid(ctx context.Context, id string, paidOn core.Date) error
	GetTransaction(ctx context.Context, id string) (core.Transaction, error)
	ListTransactions(ctx context.Context) ([]core.Transaction, error)
	TransactionVersion(ctx context.Context, id string) (int64, error)
}

// orderStore is the storage surface the order service needs.
type orderStore interface {
	CreateOrder(ctx context.Context, o core.Order) (core.Order, error)
	UpdateOrder(ctx context.Context, o core.Order) error
	SoftDeleteOrder(ctx context.Context, id string) error
	GetOrder(ctx context.Context, id string) (core.Order, error)
	ListOrders(ctx context.Context) ([]core.Order, error)
}

// SyncPublisher is the AMQP surface used for async sheet sync.
type SyncPublisher interface {
	PublishLedgerSync(ctx context.Context, id string, version int64) error
	PublishLedgerDelete(ctx context.Context, id string) error
}
