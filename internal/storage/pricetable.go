package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"gestor/internal/core"
)

const settingsKeyCompany = "company"

// CreatePriceEntry inserts a price table row.
func (r *SQLiteRepository) CreatePriceEntry(ctx context.Context, e core.PriceEntry) (core.PriceEntry, error) {
	e.ID = uuid.NewString()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO price_entries (id, description, category, unit_price_cents)
		VALUES (?, ?, ?, ?)`,
		e.ID, e.Description, e.Category, e.UnitPrice.Cents)
	if err != nil {
		return core.PriceEntry{}, fmt.Errorf("insert price entry: %w", err)
	}
	return e, nil
}

func (r *SQLiteRepository) UpdatePriceEntry(ctx context.Context, e core.PriceEntry) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE price_entries SET description = ?, category = ?, unit_price_cents = ?
		WHERE id = ?`,
		e.Description, e.Category, e.UnitPrice.Cents, e.ID)
	if err != nil {
		return fmt.Errorf("update price entry: %w", err)
	}
	return requireRow(res)
}

func (r *SQLiteRepository) DeletePriceEntry(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM price_entries WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete price entry: %w", err)
	}
	return requireRow(res)
}

func (r *SQLiteRepository) ListPriceEntries(ctx context.Context) ([]core.PriceEntry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, description, category, unit_price_cents
		FROM price_entries ORDER BY category, description`)
	if err != nil {
		return nil, fmt.Errorf("list price entries: %w", err)
	}
	defer rows.Close()

	var out []core.PriceEntry
	for rows.Next() {
		var e core.PriceEntry
		if err := rows.Scan(&e.ID, &e.Description, &e.Category, &e.UnitPrice.Cents); err != nil {
			return nil, fmt.Errorf("scan price entry: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// GetSettings returns the stored company settings, or zero values when
// nothing was saved yet.
func (r *SQLiteRepository) GetSettings(ctx context.Context) (core.CompanySettings, error) {
	var value string
	err := r.db.QueryRowContext(ctx,
		`SELECT value FROM settings WHERE key = ?`, settingsKeyCompany).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return core.CompanySettings{}, nil
	}
	if err != nil {
		return core.CompanySettings{}, fmt.Errorf("get settings: %w", err)
	}
	var s core.CompanySettings
	if err := json.Unmarshal([]byte(value), &s); err != nil {
		return core.CompanySettings{}, fmt.Errorf("decode settings: %w", err)
	}
	return s, nil
}

func (r *SQLiteRepository) PutSettings(ctx context.Context, s core.CompanySettings) error {
	value, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value`,
		settingsKeyCompany, string(value))
	if err != nil {
		return fmt.Errorf("put settings: %w", err)
	}
	return nil
}
