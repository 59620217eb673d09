package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"gestor/internal/core"
)

// PendingSyncTransaction is a ledger row the worker still has to mirror
// to the spreadsheet.
type PendingSyncTransaction struct {
	Transaction core.Transaction
	Version     int64
	CreatedAt   time.Time
}

// GetPendingSyncTransactions returns up to limit rows awaiting sync,
// oldest first.
func (r *SQLiteRepository) GetPendingSyncTransactions(ctx context.Context, limit int) ([]PendingSyncTransaction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, date, description, amount_cents, type, category, source, status,
		       version, created_at
		FROM transactions
		WHERE sync_status = 'pending' AND deleted_at IS NULL
		ORDER BY created_at ASC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("get pending sync transactions: %w", err)
	}
	defer rows.Close()

	var out []PendingSyncTransaction
	for rows.Next() {
		var p PendingSyncTransaction
		var t core.Transaction
		var date, typ, source, status string
		if err := rows.Scan(&t.ID, &date, &t.Description, &t.Amount.Cents, &typ,
			&t.Category, &source, &status, &p.Version, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan pending transaction: %w", err)
		}
		if parsed, err := time.Parse(dateLayout, date); err == nil {
			t.Date = core.DateOf(parsed)
		}
		t.Type = core.TransactionType(typ)
		t.Source = core.Source(source)
		t.Status = core.Status(status)
		p.Transaction = t
		out = append(out, p)
	}
	return out, rows.Err()
}

// MarkTransactionSynced records that the given version reached the sheet.
// A newer local version keeps the row pending.
func (r *SQLiteRepository) MarkTransactionSynced(ctx context.Context, id string, version int64) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE transactions SET sync_status = 'synced'
		WHERE id = ? AND version <= ?`, id, version)
	if err != nil {
		return fmt.Errorf("mark transaction synced: %w", err)
	}
	return nil
}

// TransactionVersion returns the current sync version of a row.
func (r *SQLiteRepository) TransactionVersion(ctx context.Context, id string) (int64, error) {
	var version int64
	err := r.db.QueryRowContext(ctx,
		`SELECT version FROM transactions WHERE id = ?`, id).Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("transaction version: %w", err)
	}
	return version, nil
}

// ReplaceAll wipes and reloads the ledger and order book from a backup
// document inside one transaction, so a failed restore leaves the store
// untouched.
func (r *SQLiteRepository) ReplaceAll(ctx context.Context, b core.Backup) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin restore: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM transactions`); err != nil {
		return fmt.Errorf("clear transactions: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM orders`); err != nil {
		return fmt.Errorf("clear orders: %w", err)
	}

	for _, t := range b.Transactions {
		id := uuid.NewString()
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO transactions (id, date, description, amount_cents, type, category, source, status)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			id, t.Date.Format(dateLayout), t.Description, t.Amount.Cents,
			string(t.Type), t.Category, string(t.EffectiveSource()), statusForInsert(t)); err != nil {
			return fmt.Errorf("restore transaction: %w", err)
		}
	}
	for _, o := range b.Orders {
		parts, mockups, err := marshalOrderBlobs(o)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO orders (id, client_name, client_phone, status, order_date, delivery_date,
			                    observation, down_payment_cents, discount_cents, payment_method,
			                    mockup_urls, parts)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			uuid.NewString(), o.ClientName, o.ClientPhone, o.Status, o.OrderDate.Format(dateLayout),
			nullableDate(o.DeliveryDate), o.Observation, o.DownPayment.Cents, o.Discount.Cents,
			o.PaymentMethod, mockups, parts); err != nil {
			return fmt.Errorf("restore order: %w", err)
		}
	}

	return tx.Commit()
}
