package services

import (
	"context"
	"errors"
	"testing"

	"gestor/internal/core"
)

type fakeLedgerStore struct {
	txs        map[string]core.Transaction
	order      []string
	versions   map[string]int64
	failCreate bool
}

func newFakeLedgerStore() *fakeLedgerStore {
	return &fakeLedgerStore{
		txs:      make(map[string]core.Transaction),
		versions: make(map[string]int64),
	}
}

func (f *fakeLedgerStore) CreateTransaction(_ context.Context, t core.Transaction) (core.Transaction, error) {
	if f.failCreate {
		return core.Transaction{}, errors.New("disk full")
	}
	t.ID = "tx-" + string(rune('a'+len(f.order)))
	f.txs[t.ID] = t
	f.order = append(f.order, t.ID)
	f.versions[t.ID] = 1
	return t, nil
}

func (f *fakeLedgerStore) UpdateTransaction(_ context.Context, t core.Transaction) error {
	if _, ok := f.txs[t.ID]; !ok {
		return errors.New("not found")
	}
	f.txs[t.ID] = t
	f.versions[t.ID]++
	return nil
}

func (f *fakeLedgerStore) SoftDeleteTransaction(_ context.Context, id string) error {
	if _, ok := f.txs[id]; !ok {
		return errors.New("not found")
	}
	delete(f.txs, id)
	for i, txID := range f.order {
		if txID == id {
			f.order = append(f.order[:i], f.order[i+1:]...)
			break
		}
	}
	return nil
}

func (f *fakeLedgerStore) MarkTransactionPaid(_ context.Context, id string, paidOn core.Date) error {
	t, ok := f.txs[id]
	if !ok || t.Status != core.StatusReceivable {
		return core.ErrNotReceivable
	}
	t.Status = core.StatusPaid
	t.Date = paidOn
	f.txs[id] = t
	f.versions[id]++
	return nil
}

func (f *fakeLedgerStore) GetTransaction(_ context.Context, id string) (core.Transaction, error) {
	t, ok := f.txs[id]
	if !ok {
		return core.Transaction{}, errors.New("not found")
	}
	return t, nil
}

func (f *fakeLedgerStore) ListTransactions(context.Context) ([]core.Transaction, error) {
	out := make([]core.Transaction, 0, len(f.order))
	for _, id := range f.order {
		out = append(out, f.txs[id])
	}
	return out, nil
}

func (f *fakeLedgerStore) TransactionVersion(_ context.Context, id string) (int64, error) {
	v, ok := f.versions[id]
	if !ok {
		return 0, errors.New("not found")
	}
	return v, nil
}

type fakePublisher struct {
	syncs   []string
	deletes []string
	fail    bool
}

func (f *fakePublisher) PublishLedgerSync(_ context.Context, id string, _ int64) error {
	if f.fail {
		return errors.New("broker down")
	}
	f.syncs = append(f.syncs, id)
	return nil
}

func (f *fakePublisher) PublishLedgerDelete(_ context.Context, id string) error {
	if f.fail {
		return errors.New("broker down")
	}
	f.deletes = append(f.deletes, id)
	return nil
}

func validTransaction() core.Transaction {
	return core.Transaction{
		Description: "Linha de costura",
		Amount:      core.Money{Cents: 1500},
		Type:        core.Expense,
		Date:        core.NewDate(2026, 3, 10),
	}
}

func TestCreateTransactionPublishesSyncAndSnapshot(t *testing.T) {
	store := newFakeLedgerStore()
	pub := &fakePublisher{}
	hub := NewSnapshotHub()

	var snapshots [][]core.Transaction
	hub.SubscribeLedger(func(txs []core.Transaction) {
		snapshots = append(snapshots, txs)
	})

	svc := NewLedgerService(store, pub, hub)
	created, err := svc.CreateTransaction(context.Background(), validTransaction())
	if err != nil {
		t.Fatalf("CreateTransaction failed: %v", err)
	}
	if created.ID == "" {
		t.Fatal("expected assigned id")
	}
	if len(pub.syncs) != 1 || pub.syncs[0] != created.ID {
		t.Errorf("expected one sync publish for %s, got %v", created.ID, pub.syncs)
	}
	if len(snapshots) != 1 || len(snapshots[0]) != 1 {
		t.Fatalf("expected one snapshot with one transaction, got %v", snapshots)
	}
}

func TestCreateTransactionSurvivesPublishFailure(t *testing.T) {
	store := newFakeLedgerStore()
	pub := &fakePublisher{fail: true}
	svc := NewLedgerService(store, pub, NewSnapshotHub())

	created, err := svc.CreateTransaction(context.Background(), validTransaction())
	if err != nil {
		t.Fatalf("publish failure must not fail the write: %v", err)
	}
	if _, err := store.GetTransaction(context.Background(), created.ID); err != nil {
		t.Errorf("transaction not persisted: %v", err)
	}
}

func TestCreateTransactionRejectsInvalid(t *testing.T) {
	store := newFakeLedgerStore()
	svc := NewLedgerService(store, &fakePublisher{}, nil)

	bad := validTransaction()
	bad.Description = "   "
	if _, err := svc.CreateTransaction(context.Background(), bad); !errors.Is(err, core.ErrEmptyDescription) {
		t.Errorf("expected ErrEmptyDescription, got %v", err)
	}
	if len(store.txs) != 0 {
		t.Error("invalid transaction must not reach storage")
	}
}

func TestMarkPaidOneWay(t *testing.T) {
	store := newFakeLedgerStore()
	svc := NewLedgerService(store, &fakePublisher{}, nil)

	tx := validTransaction()
	tx.Type = core.Income
	tx.Status = core.StatusReceivable
	created, err := svc.CreateTransaction(context.Background(), tx)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := svc.MarkPaid(context.Background(), created.ID); err != nil {
		t.Fatalf("MarkPaid failed: %v", err)
	}
	got, _ := store.GetTransaction(context.Background(), created.ID)
	if got.Status != core.StatusPaid {
		t.Errorf("status = %q, want %q", got.Status, core.StatusPaid)
	}

	if err := svc.MarkPaid(context.Background(), created.ID); !errors.Is(err, core.ErrNotReceivable) {
		t.Errorf("second MarkPaid: expected ErrNotReceivable, got %v", err)
	}
}

func TestDeletePublishesDelete(t *testing.T) {
	store := newFakeLedgerStore()
	pub := &fakePublisher{}
	svc := NewLedgerService(store, pub, nil)

	created, err := svc.CreateTransaction(context.Background(), validTransaction())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := svc.DeleteTransaction(context.Background(), created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(pub.deletes) != 1 || pub.deletes[0] != created.ID {
		t.Errorf("expected delete publish for %s, got %v", created.ID, pub.deletes)
	}
}

type fakeOrderStore struct {
	orders map[string]core.Order
	seq    int
}

func newFakeOrderStore() *fakeOrderStore {
	return &fakeOrderStore{orders: make(map[string]core.Order)}
}

func (f *fakeOrderStore) CreateOrder(_ context.Context, o core.Order) (core.Order, error) {
	f.seq++
	o.ID = "order-" + string(rune('0'+f.seq))
	f.orders[o.ID] = o
	return o, nil
}

func (f *fakeOrderStore) UpdateOrder(_ context.Context, o core.Order) error {
	if _, ok := f.orders[o.ID]; !ok {
		return errors.New("not found")
	}
	f.orders[o.ID] = o
	return nil
}

func (f *fakeOrderStore) SoftDeleteOrder(_ context.Context, id string) error {
	if _, ok := f.orders[id]; !ok {
		return errors.New("not found")
	}
	delete(f.orders, id)
	return nil
}

func (f *fakeOrderStore) GetOrder(_ context.Context, id string) (core.Order, error) {
	o, ok := f.orders[id]
	if !ok {
		return core.Order{}, errors.New("not found")
	}
	return o, nil
}

func (f *fakeOrderStore) ListOrders(context.Context) ([]core.Order, error) {
	out := make([]core.Order, 0, len(f.orders))
	for _, o := range f.orders {
		out = append(out, o)
	}
	return out, nil
}

func TestOrderServiceNotifiesHub(t *testing.T) {
	store := newFakeOrderStore()
	hub := NewSnapshotHub()

	var snapshots int
	hub.SubscribeOrders(func([]core.Order) { snapshots++ })

	svc := NewOrderService(store, hub)
	created, err := svc.CreateOrder(context.Background(), core.Order{
		ClientName: "Maria",
		OrderDate:  core.NewDate(2026, 4, 1),
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	if err := svc.DeleteOrder(context.Background(), created.ID); err != nil {
		t.Fatalf("delete order: %v", err)
	}
	if snapshots != 2 {
		t.Errorf("expected 2 order snapshots, got %d", snapshots)
	}
}

func TestOrderServiceRejectsEmptyClient(t *testing.T) {
	svc := NewOrderService(newFakeOrderStore(), nil)
	if _, err := svc.CreateOrder(context.Background(), core.Order{}); !errors.Is(err, core.ErrEmptyClientName) {
		t.Errorf("expected ErrEmptyClientName, got %v", err)
	}
}

func TestSnapshotHubMultipleSubscribers(t *testing.T) {
	hub := NewSnapshotHub()
	var a, b int
	hub.SubscribeLedger(func([]core.Transaction) { a++ })
	hub.SubscribeLedger(func([]core.Transaction) { b++ })
	hub.publishLedger(nil)
	if a != 1 || b != 1 {
		t.Errorf("each subscriber should run once, got a=%d b=%d", a, b)
	}
}
