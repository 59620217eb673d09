package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"gestor/internal/core"
)

// ErrNotFound is returned when a record id does not exist (or was deleted).
var ErrNotFound = errors.New("record not found")

const dateLayout = "2006-01-02"

// SQLiteRepository persists the ledger, order book, price table and
// settings. IDs are opaque uuid strings assigned on insert.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// --- transactions ---

// CreateTransaction inserts the transaction and returns it with its
// assigned id.
func (r *SQLiteRepository) CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	t.ID = uuid.NewString()
	t.Source = t.EffectiveSource()
	t.Status = core.Status(statusForInsert(t))
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO transactions (id, date, description, amount_cents, type, category, source, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Date.Format(dateLayout), t.Description, t.Amount.Cents,
		string(t.Type), t.Category, string(t.EffectiveSource()), statusForInsert(t))
	if err != nil {
		return core.Transaction{}, fmt.Errorf("insert transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction saved",
		"transaction_id", t.ID,
		"amount_cents", t.Amount.Cents,
		"type", string(t.Type))
	return t, nil
}

// statusForInsert normalizes the stored status: expenses are always paid.
func statusForInsert(t core.Transaction) string {
	if t.Type == core.Income && t.Status == core.StatusReceivable {
		return string(core.StatusReceivable)
	}
	return string(core.StatusPaid)
}

// UpdateTransaction rewrites an existing row and bumps its version so the
// sheet sync picks the change up again.
func (r *SQLiteRepository) UpdateTransaction(ctx context.Context, t core.Transaction) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE transactions
		SET date = ?, description = ?, amount_cents = ?, type = ?, category = ?,
		    source = ?, status = ?, sync_status = 'pending', version = version + 1,
		    updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND deleted_at IS NULL`,
		t.Date.Format(dateLayout), t.Description, t.Amount.Cents, string(t.Type),
		t.Category, string(t.EffectiveSource()), statusForInsert(t), t.ID)
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	return requireRow(res)
}

// MarkTransactionPaid flips a receivable to paid, stamping the given date.
// The transition is one-way; paid rows are left untouched.
func (r *SQLiteRepository) MarkTransactionPaid(ctx context.Context, id string, paidOn core.Date) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE transactions
		SET status = ?, date = ?, sync_status = 'pending', version = version + 1,
		    updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND deleted_at IS NULL AND type = 'income' AND status = ?`,
		string(core.StatusPaid), paidOn.Format(dateLayout), id, string(core.StatusReceivable))
	if err != nil {
		return fmt.Errorf("mark transaction paid: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.ErrNotReceivable
	}
	return nil
}

// SoftDeleteTransaction hides the row; the worker still needs it to clear
// the mirrored spreadsheet row.
func (r *SQLiteRepository) SoftDeleteTransaction(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE transactions SET deleted_at = CURRENT_TIMESTAMP, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND deleted_at IS NULL`, id)
	if err != nil {
		return fmt.Errorf("soft delete transaction: %w", err)
	}
	return requireRow(res)
}

func (r *SQLiteRepository) GetTransaction(ctx context.Context, id string) (core.Transaction, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, date, description, amount_cents, type, category, source, status
		FROM transactions WHERE id = ? AND deleted_at IS NULL`, id)
	return scanTransaction(row)
}

// ListTransactions returns the whole live ledger, most recent first. This
// is the snapshot handed to the aggregator.
func (r *SQLiteRepository) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, date, description, amount_cents, type, category, source, status
		FROM transactions WHERE deleted_at IS NULL
		ORDER BY date DESC, created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (core.Transaction, error) {
	var t core.Transaction
	var date, typ, source, status string
	err := row.Scan(&t.ID, &date, &t.Description, &t.Amount.Cents, &typ, &t.Category, &source, &status)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, ErrNotFound
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("scan transaction: %w", err)
	}
	if parsed, err := time.Parse(dateLayout, date); err == nil {
		t.Date = core.DateOf(parsed)
	}
	t.Type = core.TransactionType(typ)
	t.Source = core.Source(source)
	t.Status = core.Status(status)
	return t, nil
}

// --- orders ---

func (r *SQLiteRepository) CreateOrder(ctx context.Context, o core.Order) (core.Order, error) {
	o.ID = uuid.NewString()
	parts, mockups, err := marshalOrderBlobs(o)
	if err != nil {
		return core.Order{}, err
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO orders (id, client_name, client_phone, status, order_date, delivery_date,
		                    observation, down_payment_cents, discount_cents, payment_method,
		                    mockup_urls, parts)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		o.ID, o.ClientName, o.ClientPhone, o.Status, o.OrderDate.Format(dateLayout),
		nullableDate(o.DeliveryDate), o.Observation, o.DownPayment.Cents, o.Discount.Cents,
		o.PaymentMethod, mockups, parts)
	if err != nil {
		return core.Order{}, fmt.Errorf("insert order: %w", err)
	}

	slog.InfoContext(ctx, "Order saved",
		"order_id", o.ID,
		"client", o.ClientName,
		"parts", len(o.Parts))
	return o, nil
}

func (r *SQLiteRepository) UpdateOrder(ctx context.Context, o core.Order) error {
	parts, mockups, err := marshalOrderBlobs(o)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE orders
		SET client_name = ?, client_phone = ?, status = ?, order_date = ?, delivery_date = ?,
		    observation = ?, down_payment_cents = ?, discount_cents = ?, payment_method = ?,
		    mockup_urls = ?, parts = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND deleted_at IS NULL`,
		o.ClientName, o.ClientPhone, o.Status, o.OrderDate.Format(dateLayout),
		nullableDate(o.DeliveryDate), o.Observation, o.DownPayment.Cents, o.Discount.Cents,
		o.PaymentMethod, mockups, parts, o.ID)
	if err != nil {
		return fmt.Errorf("update order: %w", err)
	}
	return requireRow(res)
}

func (r *SQLiteRepository) SoftDeleteOrder(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE orders SET deleted_at = CURRENT_TIMESTAMP, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND deleted_at IS NULL`, id)
	if err != nil {
		return fmt.Errorf("soft delete order: %w", err)
	}
	return requireRow(res)
}

func (r *SQLiteRepository) GetOrder(ctx context.Context, id string) (core.Order, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, client_name, client_phone, status, order_date, delivery_date, observation,
		       down_payment_cents, discount_cents, payment_method, mockup_urls, parts
		FROM orders WHERE id = ? AND deleted_at IS NULL`, id)
	return scanOrder(row)
}

func (r *SQLiteRepository) ListOrders(ctx context.Context) ([]core.Order, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, client_name, client_phone, status, order_date, delivery_date, observation,
		       down_payment_cents, discount_cents, payment_method, mockup_urls, parts
		FROM orders WHERE deleted_at IS NULL
		ORDER BY order_date DESC, created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var out []core.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func marshalOrderBlobs(o core.Order) (parts string, mockups string, err error) {
	p := o.Parts
	if p == nil {
		p = []core.Part{}
	}
	partsJSON, err := json.Marshal(p)
	if err != nil {
		return "", "", fmt.Errorf("marshal parts: %w", err)
	}
	m := o.MockupURLs
	if m == nil {
		m = []string{}
	}
	mockupsJSON, err := json.Marshal(m)
	if err != nil {
		return "", "", fmt.Errorf("marshal mockups: %w", err)
	}
	return string(partsJSON), string(mockupsJSON), nil
}

func scanOrder(row rowScanner) (core.Order, error) {
	var o core.Order
	var orderDate string
	var deliveryDate sql.NullString
	var mockups, parts string
	err := row.Scan(&o.ID, &o.ClientName, &o.ClientPhone, &o.Status, &orderDate, &deliveryDate,
		&o.Observation, &o.DownPayment.Cents, &o.Discount.Cents, &o.PaymentMethod, &mockups, &parts)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Order{}, ErrNotFound
	}
	if err != nil {
		return core.Order{}, fmt.Errorf("scan order: %w", err)
	}
	if parsed, err := time.Parse(dateLayout, orderDate); err == nil {
		o.OrderDate = core.DateOf(parsed)
	}
	if deliveryDate.Valid {
		if parsed, err := time.Parse(dateLayout, deliveryDate.String); err == nil {
			o.DeliveryDate = core.DateOf(parsed)
		}
	}
	// Stored blobs come from our own marshaling; a corrupt blob degrades to
	// an empty collection instead of failing the whole listing.
	if err := json.Unmarshal([]byte(mockups), &o.MockupURLs); err != nil {
		o.MockupURLs = nil
	}
	if err := json.Unmarshal([]byte(parts), &o.Parts); err != nil {
		o.Parts = nil
	}
	return o, nil
}

func nullableDate(d core.Date) any {
	if d.IsZero() {
		return nil
	}
	return d.Format(dateLayout)
}

func requireRow(res sql.Result) error {
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}
