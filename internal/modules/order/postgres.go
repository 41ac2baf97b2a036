package order

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/georgemunganga/life360-ops/internal/apperr"
	"github.com/georgemunganga/life360-ops/internal/database"
	"github.com/georgemunganga/life360-ops/internal/modules/stock"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

type postgresRepo struct{ db *sql.DB }

func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db} }

const orderColumns = `id, order_number, provider, name, surname, practitioner_name, ordered_at, status,
	notes, email_status, sent_out, received_back, kit_registered, results_sent, paid, invoiced,
	created_at, completed_at`

// CreateOrder inserts the order and all its items inside a single transaction.
func (r *postgresRepo) CreateOrder(ctx context.Context, o *Order) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO orders (`+orderColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)`,
		o.ID, o.OrderNumber, nullable(o.Provider), nullable(o.Name), nullable(o.Surname),
		o.PractitionerName, o.OrderedAt, o.Status, o.Notes, o.EmailStatus,
		o.SentOut, o.ReceivedBack, o.KitRegistered, o.ResultsSent, o.Paid, o.Invoiced,
		o.CreatedAt, o.CompletedAt)
	if database.IsUniqueViolation(err) {
		return apperr.Duplicate("Order number %s is already taken.", o.OrderNumber)
	}
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	for _, item := range o.Items {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO order_items (id, order_id, sku, qty) VALUES ($1,$2,$3,$4)`,
			item.ID, o.ID, item.SKU, item.Qty)
		if err != nil {
			return fmt.Errorf("insert order_item: %w", err)
		}
	}

	return tx.Commit()
}

func (r *postgresRepo) GetOrder(ctx context.Context, id string) (*Order, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, apperr.NotFound("Order not found.")
	}
	return r.getOrder(ctx, `SELECT `+orderColumns+` FROM orders WHERE id=$1`, uid)
}

func (r *postgresRepo) GetOrderByNumber(ctx context.Context, number string) (*Order, error) {
	return r.getOrder(ctx, `SELECT `+orderColumns+` FROM orders WHERE order_number=$1`, number)
}

func (r *postgresRepo) ListOrders(ctx context.Context, limit int) ([]*Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders ORDER BY created_at DESC`
	var args []interface{}
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []*Order
	byID := make(map[uuid.UUID]*Order)
	var ids []string
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
		byID[o.ID] = o
		ids = append(ids, o.ID.String())
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return orders, nil
	}

	items, err := r.listItems(ctx, `order_id = ANY($1::uuid[])`, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	for _, it := range items {
		if o, ok := byID[it.OrderID]; ok {
			o.Items = append(o.Items, it)
		}
	}
	return orders, nil
}

func (r *postgresRepo) UpdateOrder(ctx context.Context, o *Order) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE orders SET practitioner_name=$1, status=$2, notes=$3, email_status=$4,
		       sent_out=$5, received_back=$6, kit_registered=$7, results_sent=$8, paid=$9, invoiced=$10,
		       completed_at=$11
		WHERE id=$12`,
		o.PractitionerName, o.Status, o.Notes, o.EmailStatus,
		o.SentOut, o.ReceivedBack, o.KitRegistered, o.ResultsSent, o.Paid, o.Invoiced,
		o.CompletedAt, o.ID)
	if err != nil {
		return fmt.Errorf("update order: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.NotFound("Order not found.")
	}
	return nil
}

func (r *postgresRepo) DeleteOrder(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM orders WHERE id=$1`, id)
	if database.IsForeignKeyViolation(err) {
		return apperr.NotAvailable("Cannot delete: order has assigned units or call logs.")
	}
	if err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.NotFound("Order not found.")
	}
	return nil
}

func (r *postgresRepo) Summary(ctx context.Context) (*Summary, error) {
	s := &Summary{}
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE status ILIKE '%completed%'),
		       COUNT(*) FILTER (WHERE status ILIKE '%cancel%')
		FROM orders`).Scan(&s.Total, &s.Completed, &s.Cancelled)
	if err != nil {
		return nil, fmt.Errorf("order summary: %w", err)
	}
	s.Pending = s.Total - s.Completed - s.Cancelled
	return s, nil
}

func (r *postgresRepo) ProviderCounts(ctx context.Context) (map[string]int, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT provider, COUNT(*) FROM orders GROUP BY provider`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	counts := make(map[string]int)
	for rows.Next() {
		var prov sql.NullString
		var n int
		if err := rows.Scan(&prov, &n); err != nil {
			return nil, err
		}
		counts[prov.String] += n
	}
	return counts, rows.Err()
}

func (r *postgresRepo) FindUnitByBarcode(ctx context.Context, barcode string) (*stock.Unit, error) {
	u := &stock.Unit{}
	err := r.db.QueryRowContext(ctx, `
		SELECT id, item_id, barcode, batch_number, status, last_update, created_at
		FROM stock_units WHERE barcode=$1`, barcode).
		Scan(&u.ID, &u.ItemID, &u.Barcode, &u.BatchNumber, &u.Status, &u.LastUpdate, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("Barcode not found in stock.")
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

// AssignUnit guards the status change with a conditional update so two
// concurrent assignments of one unit cannot both succeed.
func (r *postgresRepo) AssignUnit(ctx context.Context, au *AssignedUnit) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE stock_units SET status=$1, last_update=$2 WHERE id=$3 AND status=$4`,
		stock.UnitAssigned, au.AssignedAt, au.UnitID, stock.UnitInStock)
	if err != nil {
		return fmt.Errorf("mark unit assigned: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		var status string
		err := tx.QueryRowContext(ctx, `SELECT status FROM stock_units WHERE id=$1`, au.UnitID).Scan(&status)
		if errors.Is(err, sql.ErrNoRows) {
			return apperr.NotFound("Barcode not found in stock.")
		}
		if err != nil {
			return err
		}
		return apperr.NotAvailable("Unit %s is not available (status: %s).", au.Barcode, status)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO order_units (id, order_id, unit_id, assigned_at) VALUES ($1,$2,$3,$4)`,
		au.ID, au.OrderID, au.UnitID, au.AssignedAt)
	switch {
	case database.IsUniqueViolation(err):
		return apperr.NotAvailable("Unit %s is not available (status: %s).", au.Barcode, stock.UnitAssigned)
	case database.IsForeignKeyViolation(err):
		return apperr.NotFound("Order not found.")
	case err != nil:
		return fmt.Errorf("insert order_unit: %w", err)
	}
	return tx.Commit()
}

func (r *postgresRepo) GetAssignment(ctx context.Context, id string) (*AssignedUnit, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, apperr.NotFound("Assignment not found.")
	}
	au := &AssignedUnit{}
	err = r.db.QueryRowContext(ctx, `
		SELECT ou.id, ou.order_id, ou.unit_id, u.barcode, ou.assigned_at
		FROM order_units ou JOIN stock_units u ON u.id = ou.unit_id
		WHERE ou.id=$1`, uid).
		Scan(&au.ID, &au.OrderID, &au.UnitID, &au.Barcode, &au.AssignedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("Assignment not found.")
	}
	if err != nil {
		return nil, err
	}
	return au, nil
}

func (r *postgresRepo) UnassignUnit(ctx context.Context, au *AssignedUnit, at time.Time) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `DELETE FROM order_units WHERE id=$1 AND order_id=$2`, au.ID, au.OrderID)
	if err != nil {
		return fmt.Errorf("delete order_unit: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.NotFound("Assignment not found.")
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE stock_units SET status=$1, last_update=$2 WHERE id=$3`,
		stock.UnitInStock, at, au.UnitID); err != nil {
		return fmt.Errorf("return unit to stock: %w", err)
	}
	return tx.Commit()
}

func (r *postgresRepo) ListAssignments(ctx context.Context) ([]*AssignedUnit, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT ou.id, ou.order_id, ou.unit_id, u.barcode, ou.assigned_at
		FROM order_units ou JOIN stock_units u ON u.id = ou.unit_id
		ORDER BY ou.assigned_at ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*AssignedUnit
	for rows.Next() {
		au := &AssignedUnit{}
		if err := rows.Scan(&au.ID, &au.OrderID, &au.UnitID, &au.Barcode, &au.AssignedAt); err != nil {
			return nil, err
		}
		out = append(out, au)
	}
	return out, rows.Err()
}

func (r *postgresRepo) CountAssignments(ctx context.Context, orderID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM order_units WHERE order_id=$1`, orderID).Scan(&n)
	return n, err
}

func (r *postgresRepo) CountCallLogs(ctx context.Context, orderID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM order_call_logs WHERE order_id=$1`, orderID).Scan(&n)
	return n, err
}

func (r *postgresRepo) AddCallLog(ctx context.Context, cl *CallLog) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO order_call_logs (id, order_id, logged_at, author, summary, outcome)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		cl.ID, cl.OrderID, cl.LoggedAt, cl.Author, cl.Summary, cl.Outcome)
	if database.IsForeignKeyViolation(err) {
		return apperr.NotFound("Order not found.")
	}
	if err != nil {
		return fmt.Errorf("insert call log: %w", err)
	}
	return nil
}

func (r *postgresRepo) ListCallLogs(ctx context.Context) ([]*CallLog, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, order_id, logged_at, author, summary, outcome
		FROM order_call_logs ORDER BY logged_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*CallLog
	for rows.Next() {
		cl := &CallLog{}
		if err := rows.Scan(&cl.ID, &cl.OrderID, &cl.LoggedAt, &cl.Author, &cl.Summary, &cl.Outcome); err != nil {
			return nil, err
		}
		out = append(out, cl)
	}
	return out, rows.Err()
}

// ── helpers ──────────────────────────────────────────────────────────────────

func (r *postgresRepo) getOrder(ctx context.Context, query string, arg interface{}) (*Order, error) {
	o, err := scanOrder(r.db.QueryRowContext(ctx, query, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("Order not found.")
	}
	if err != nil {
		return nil, err
	}
	o.Items, err = r.listItems(ctx, `order_id=$1`, o.ID)
	if err != nil {
		return nil, err
	}
	return o, nil
}

func (r *postgresRepo) listItems(ctx context.Context, where string, arg interface{}) ([]*Item, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, order_id, sku, qty FROM order_items WHERE `+where+` ORDER BY sku ASC`, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Item
	for rows.Next() {
		it := &Item{}
		if err := rows.Scan(&it.ID, &it.OrderID, &it.SKU, &it.Qty); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanOrder(row scanner) (*Order, error) {
	o := &Order{}
	var prov, name, surname sql.NullString
	err := row.Scan(
		&o.ID, &o.OrderNumber, &prov, &name, &surname, &o.PractitionerName, &o.OrderedAt, &o.Status,
		&o.Notes, &o.EmailStatus, &o.SentOut, &o.ReceivedBack, &o.KitRegistered, &o.ResultsSent,
		&o.Paid, &o.Invoiced, &o.CreatedAt, &o.CompletedAt)
	if err != nil {
		return nil, err
	}
	o.Provider, o.Name, o.Surname = prov.String, name.String, surname.String
	return o, nil
}

func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
