package stock

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/georgemunganga/life360-ops/internal/apperr"
	"github.com/georgemunganga/life360-ops/internal/database"
	"github.com/google/uuid"
)

type postgresRepo struct{ db *sql.DB }

func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db} }

const itemColumns = `id, name, provider, expiry_date, received_date, current_stock, created_at`

const unitColumns = `id, item_id, barcode, batch_number, status, last_update, created_at`

func (r *postgresRepo) CreateItem(ctx context.Context, it *Item) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO stock_items (id, name, provider, expiry_date, received_date, current_stock, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		it.ID, it.Name, it.Provider, it.ExpiryDate, it.ReceivedDate, it.CurrentStock, it.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert stock item: %w", err)
	}
	return nil
}

func (r *postgresRepo) GetItem(ctx context.Context, id string) (*Item, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, apperr.NotFound("Stock item not found.")
	}
	it, err := scanItem(r.db.QueryRowContext(ctx,
		`SELECT `+itemColumns+` FROM stock_items WHERE id=$1`, uid))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("Stock item not found.")
	}
	return it, err
}

func (r *postgresRepo) ListItemSummaries(ctx context.Context) ([]*ItemSummary, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT i.id, i.name, i.provider, i.expiry_date, i.received_date, i.current_stock, i.created_at,
		       COUNT(u.id), COUNT(u.id) FILTER (WHERE u.status=$1)
		FROM stock_items i
		LEFT JOIN stock_units u ON u.item_id = i.id
		GROUP BY i.id
		ORDER BY i.created_at DESC`, UnitInStock)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*ItemSummary
	for rows.Next() {
		it := &Item{}
		s := &ItemSummary{Item: it}
		var prov sql.NullString
		if err := rows.Scan(&it.ID, &it.Name, &prov, &it.ExpiryDate, &it.ReceivedDate,
			&it.CurrentStock, &it.CreatedAt, &s.TotalUnits, &s.InStockUnits); err != nil {
			return nil, err
		}
		it.Provider = prov.String
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *postgresRepo) CreateUnit(ctx context.Context, u *Unit) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO stock_units (id, item_id, barcode, batch_number, status, last_update, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		u.ID, u.ItemID, u.Barcode, u.BatchNumber, u.Status, u.LastUpdate, u.CreatedAt)
	if database.IsUniqueViolation(err) {
		return apperr.Duplicate("This barcode already exists.")
	}
	if err != nil {
		return fmt.Errorf("insert stock unit: %w", err)
	}
	return nil
}

// CreateUnits is best effort per barcode: conflicts are skipped, not rolled back.
func (r *postgresRepo) CreateUnits(ctx context.Context, units []*Unit) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	inserted := 0
	for _, u := range units {
		res, err := tx.ExecContext(ctx, `
			INSERT INTO stock_units (id, item_id, barcode, batch_number, status, last_update, created_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7)
			ON CONFLICT (barcode) DO NOTHING`,
			u.ID, u.ItemID, u.Barcode, u.BatchNumber, u.Status, u.LastUpdate, u.CreatedAt)
		if err != nil {
			return 0, fmt.Errorf("insert stock unit %s: %w", u.Barcode, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, err
		}
		inserted += int(n)
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return inserted, nil
}

func (r *postgresRepo) GetUnit(ctx context.Context, id string) (*Unit, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, apperr.NotFound("Unit not found.")
	}
	u, err := scanUnit(r.db.QueryRowContext(ctx,
		`SELECT `+unitColumns+` FROM stock_units WHERE id=$1`, uid))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("Unit not found.")
	}
	return u, err
}

func (r *postgresRepo) GetUnitByBarcode(ctx context.Context, barcode string) (*Unit, error) {
	u, err := scanUnit(r.db.QueryRowContext(ctx,
		`SELECT `+unitColumns+` FROM stock_units WHERE barcode=$1`, barcode))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("Barcode not found in stock.")
	}
	return u, err
}

func (r *postgresRepo) ListUnits(ctx context.Context, itemID string) ([]*Unit, error) {
	uid, err := uuid.Parse(itemID)
	if err != nil {
		return nil, apperr.NotFound("Stock item not found.")
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+unitColumns+` FROM stock_units WHERE item_id=$1 ORDER BY created_at DESC`, uid)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var units []*Unit
	for rows.Next() {
		u := &Unit{}
		if err := rows.Scan(&u.ID, &u.ItemID, &u.Barcode, &u.BatchNumber,
			&u.Status, &u.LastUpdate, &u.CreatedAt); err != nil {
			return nil, err
		}
		units = append(units, u)
	}
	return units, rows.Err()
}

func (r *postgresRepo) UnitAssigned(ctx context.Context, unitID string) (bool, error) {
	uid, err := uuid.Parse(unitID)
	if err != nil {
		return false, apperr.NotFound("Unit not found.")
	}
	var assigned bool
	err = r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM order_units WHERE unit_id=$1)`, uid).Scan(&assigned)
	return assigned, err
}

func (r *postgresRepo) DeleteUnit(ctx context.Context, id string) error {
	uid, err := uuid.Parse(id)
	if err != nil {
		return apperr.NotFound("Unit not found.")
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM stock_units WHERE id=$1`, uid)
	if database.IsForeignKeyViolation(err) {
		return apperr.NotAvailable("Cannot delete: unit assigned to order.")
	}
	if err != nil {
		return fmt.Errorf("delete stock unit: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.NotFound("Unit not found.")
	}
	return nil
}

func (r *postgresRepo) BatchNumbers(ctx context.Context, itemID string) ([]string, error) {
	uid, err := uuid.Parse(itemID)
	if err != nil {
		return nil, apperr.NotFound("Stock item not found.")
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT DISTINCT batch_number FROM stock_units
		WHERE item_id=$1 AND batch_number IS NOT NULL AND batch_number <> ''
		ORDER BY batch_number`, uid)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var b string
		if err := rows.Scan(&b); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *postgresRepo) LowStock(ctx context.Context, threshold int, limit int) ([]*Item, error) {
	return r.queryItems(ctx, `
		SELECT `+itemColumns+` FROM stock_items
		WHERE current_stock <= $1
		ORDER BY current_stock ASC, name ASC LIMIT $2`, threshold, limit)
}

func (r *postgresRepo) Expiring(ctx context.Context, from, to time.Time, limit int) ([]*Item, error) {
	return r.queryItems(ctx, `
		SELECT `+itemColumns+` FROM stock_items
		WHERE expiry_date IS NOT NULL AND expiry_date BETWEEN $1 AND $2
		ORDER BY expiry_date ASC LIMIT $3`, from, to, limit)
}

// ── helpers ──────────────────────────────────────────────────────────────────

func (r *postgresRepo) queryItems(ctx context.Context, query string, args ...interface{}) ([]*Item, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanItem(row scanner) (*Item, error) {
	it := &Item{}
	var prov sql.NullString
	if err := row.Scan(&it.ID, &it.Name, &prov, &it.ExpiryDate, &it.ReceivedDate,
		&it.CurrentStock, &it.CreatedAt); err != nil {
		return nil, err
	}
	it.Provider = prov.String
	return it, nil
}

func scanUnit(row scanner) (*Unit, error) {
	u := &Unit{}
	if err := row.Scan(&u.ID, &u.ItemID, &u.Barcode, &u.BatchNumber,
		&u.Status, &u.LastUpdate, &u.CreatedAt); err != nil {
		return nil, err
	}
	return u, nil
}
