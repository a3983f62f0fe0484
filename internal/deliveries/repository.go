package deliveries

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kurier-ops/kurier-ops/internal/platform/db"
	"github.com/kurier-ops/kurier-ops/internal/platform/httpx"
	"github.com/kurier-ops/kurier-ops/internal/shared"
)

// ErrNotFound indicates an unknown delivery.
var ErrNotFound = fmt.Errorf("deliveries: %w", httpx.ErrNotFound)

// Repository provides PostgreSQL backed persistence for deliveries.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const selectWithRefs = `
SELECT d.id, d.driver_id, d.client_id, d.amount, d.cash_amount, d.card_amount,
       d.transfer, d.debt, d.goods_amount, d.extra_payment, d.delivery_date,
       d.created_at, d.updated_at, dr.name, c.name
FROM deliveries d
JOIN drivers dr ON dr.id = d.driver_id
JOIN clients c ON c.id = d.client_id`

func scanWithRefs(rows pgx.Rows) ([]Delivery, error) {
	defer rows.Close()
	var out []Delivery
	for rows.Next() {
		var d Delivery
		var driverName, clientName string
		if err := rows.Scan(&d.ID, &d.DriverID, &d.ClientID, &d.Amount, &d.CashAmount,
			&d.CardAmount, &d.Transfer, &d.Debt, &d.GoodsAmount, &d.ExtraPayment,
			&d.DeliveryDate, &d.CreatedAt, &d.UpdatedAt, &driverName, &clientName); err != nil {
			return nil, err
		}
		d.Driver = &Ref{ID: d.DriverID, Name: driverName}
		d.Client = &Ref{ID: d.ClientID, Name: clientName}
		out = append(out, d)
	}
	return out, rows.Err()
}

// List returns deliveries, optionally restricted to one calendar day.
func (r *Repository) List(ctx context.Context, day *time.Time) ([]Delivery, error) {
	if day == nil {
		rows, err := r.pool.Query(ctx, selectWithRefs+` ORDER BY d.delivery_date DESC`)
		if err != nil {
			return nil, err
		}
		return scanWithRefs(rows)
	}
	start, end := shared.DayRange(*day)
	rows, err := r.pool.Query(ctx,
		selectWithRefs+` WHERE d.delivery_date >= $1 AND d.delivery_date < $2 ORDER BY d.delivery_date DESC`,
		start, end)
	if err != nil {
		return nil, err
	}
	return scanWithRefs(rows)
}

// Get returns one delivery with driver and client references.
func (r *Repository) Get(ctx context.Context, id string) (*Delivery, error) {
	rows, err := r.pool.Query(ctx, selectWithRefs+` WHERE d.id = $1`, id)
	if err != nil {
		return nil, err
	}
	out, err := scanWithRefs(rows)
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, ErrNotFound
	}
	return &out[0], nil
}

// ListByDriverDay returns a driver's deliveries for one day.
func (r *Repository) ListByDriverDay(ctx context.Context, driverID string, day time.Time) ([]Delivery, error) {
	start, end := shared.DayRange(day)
	rows, err := r.pool.Query(ctx,
		selectWithRefs+` WHERE d.driver_id = $1 AND d.delivery_date >= $2 AND d.delivery_date < $3 ORDER BY d.delivery_date`,
		driverID, start, end)
	if err != nil {
		return nil, err
	}
	return scanWithRefs(rows)
}

// ListByClient returns all deliveries for one client, newest first.
func (r *Repository) ListByClient(ctx context.Context, clientID string) ([]Delivery, error) {
	rows, err := r.pool.Query(ctx,
		selectWithRefs+` WHERE d.client_id = $1 ORDER BY d.delivery_date DESC`, clientID)
	if err != nil {
		return nil, err
	}
	return scanWithRefs(rows)
}

// CashTotal sums the cash component of a driver's deliveries for one day.
func (r *Repository) CashTotal(ctx context.Context, driverID string, day time.Time) (float64, error) {
	start, end := shared.DayRange(day)
	var total float64
	err := r.pool.QueryRow(ctx,
		`SELECT COALESCE(SUM(cash_amount), 0) FROM deliveries
		 WHERE driver_id = $1 AND delivery_date >= $2 AND delivery_date < $3`,
		driverID, start, end).Scan(&total)
	return total, err
}

// syncLedger rewrites the client-ledger rows derived from one delivery.
func syncLedger(ctx context.Context, tx pgx.Tx, d Delivery) error {
	if _, err := tx.Exec(ctx, `DELETE FROM client_ledger_entries WHERE delivery_id = $1`, d.ID); err != nil {
		return err
	}
	if d.Debt > 0 {
		desc := "Debt from delivery"
		_, err := tx.Exec(ctx,
			`INSERT INTO client_ledger_entries (id, client_id, kind, amount, entry_date, description, delivery_id, created_at)
			 VALUES ($1, $2, 'DEBT', $3, $4, $5, $6, NOW())`,
			uuid.NewString(), d.ClientID, d.Debt, d.DeliveryDate, desc, d.ID)
		if err != nil {
			return err
		}
	}
	if d.ExtraPayment > 0 {
		desc := "Payment from delivery"
		_, err := tx.Exec(ctx,
			`INSERT INTO client_ledger_entries (id, client_id, kind, amount, entry_date, description, delivery_id, created_at)
			 VALUES ($1, $2, 'PAYMENT', $3, $4, $5, $6, NOW())`,
			uuid.NewString(), d.ClientID, d.ExtraPayment, d.DeliveryDate, desc, d.ID)
		if err != nil {
			return err
		}
	}
	return nil
}

// Create inserts a delivery and its derived ledger rows in one transaction.
func (r *Repository) Create(ctx context.Context, d Delivery) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx,
			`INSERT INTO deliveries (id, driver_id, client_id, amount, cash_amount, card_amount,
			                         transfer, debt, goods_amount, extra_payment, delivery_date,
			                         created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $12)`,
			d.ID, d.DriverID, d.ClientID, d.Amount, d.CashAmount, d.CardAmount,
			d.Transfer, d.Debt, d.GoodsAmount, d.ExtraPayment, d.DeliveryDate, d.CreatedAt)
		if err != nil {
			return err
		}
		return syncLedger(ctx, tx, d)
	})
}

// Update replaces a delivery and resyncs its ledger rows in one transaction.
func (r *Repository) Update(ctx context.Context, d Delivery) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			`UPDATE deliveries SET driver_id = $2, client_id = $3, amount = $4, cash_amount = $5,
			        card_amount = $6, transfer = $7, debt = $8, goods_amount = $9,
			        extra_payment = $10, delivery_date = $11, updated_at = NOW()
			 WHERE id = $1`,
			d.ID, d.DriverID, d.ClientID, d.Amount, d.CashAmount, d.CardAmount,
			d.Transfer, d.Debt, d.GoodsAmount, d.ExtraPayment, d.DeliveryDate)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		return syncLedger(ctx, tx, d)
	})
}

// InTx runs fn against the single-statement primitives inside one
// repeatable-read transaction. The service sequences the day-level cascades
// on top of these; any error rolls the whole transaction back.
func (r *Repository) InTx(ctx context.Context, fn func(ops TxOps) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(&txOps{tx: tx})
	})
}

// txOps implements TxOps over one open pgx transaction.
type txOps struct {
	tx pgx.Tx
}

func (o *txOps) DeliveryDay(ctx context.Context, id string) (string, time.Time, error) {
	var driverID string
	var deliveryDate time.Time
	err := o.tx.QueryRow(ctx, `SELECT driver_id, delivery_date FROM deliveries WHERE id = $1`, id).
		Scan(&driverID, &deliveryDate)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", time.Time{}, ErrNotFound
	}
	return driverID, deliveryDate, err
}

func (o *txOps) DeleteDelivery(ctx context.Context, id string) error {
	// Ledger rows referencing the delivery cascade via FK.
	_, err := o.tx.Exec(ctx, `DELETE FROM deliveries WHERE id = $1`, id)
	return err
}

func (o *txOps) CountDriverDay(ctx context.Context, driverID string, day time.Time) (int, error) {
	start, end := shared.DayRange(day)
	var n int
	err := o.tx.QueryRow(ctx,
		`SELECT COUNT(*) FROM deliveries WHERE driver_id = $1 AND delivery_date >= $2 AND delivery_date < $3`,
		driverID, start, end).Scan(&n)
	return n, err
}

func (o *txOps) DriverExists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := o.tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM drivers WHERE id = $1)`, id).Scan(&exists)
	return exists, err
}

func (o *txOps) DayStatusExists(ctx context.Context, driverID string, day time.Time) (bool, error) {
	start, end := shared.DayRange(day)
	var exists bool
	err := o.tx.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM driver_day_statuses WHERE driver_id = $1 AND date >= $2 AND date < $3)`,
		driverID, start, end).Scan(&exists)
	return exists, err
}

func (o *txOps) ReassignDeliveries(ctx context.Context, driverID string, day time.Time, newDriverID string) error {
	start, end := shared.DayRange(day)
	_, err := o.tx.Exec(ctx,
		`UPDATE deliveries SET driver_id = $4, updated_at = NOW()
		 WHERE driver_id = $1 AND delivery_date >= $2 AND delivery_date < $3`,
		driverID, start, end, newDriverID)
	return err
}

func (o *txOps) ReassignExpenses(ctx context.Context, driverID string, day time.Time, newDriverID string) error {
	start, end := shared.DayRange(day)
	_, err := o.tx.Exec(ctx,
		`UPDATE driver_expenses SET driver_id = $4
		 WHERE driver_id = $1 AND expense_date >= $2 AND expense_date < $3`,
		driverID, start, end, newDriverID)
	return err
}

// ReassignDayStatus carries the source driver's reconciliation row to the
// target driver. When the target already has a row for the day, the source
// row wins and replaces it.
func (o *txOps) ReassignDayStatus(ctx context.Context, driverID string, day time.Time, newDriverID string) error {
	start, end := shared.DayRange(day)
	if _, err := o.tx.Exec(ctx,
		`INSERT INTO driver_day_statuses (id, driver_id, date, status, total_cash, cash_paid, notes, banknotes, updated_at)
		 SELECT $5, $4, date, status, total_cash, cash_paid, notes, banknotes, NOW()
		 FROM driver_day_statuses
		 WHERE driver_id = $1 AND date >= $2 AND date < $3
		 ON CONFLICT (driver_id, date) DO UPDATE SET
		     status = EXCLUDED.status, total_cash = EXCLUDED.total_cash,
		     cash_paid = EXCLUDED.cash_paid, notes = EXCLUDED.notes,
		     banknotes = EXCLUDED.banknotes, updated_at = NOW()`,
		driverID, start, end, newDriverID, uuid.NewString()); err != nil {
		return err
	}
	_, err := o.tx.Exec(ctx,
		`DELETE FROM driver_day_statuses WHERE driver_id = $1 AND date >= $2 AND date < $3`,
		driverID, start, end)
	return err
}

func (o *txOps) ShiftLedgerEntries(ctx context.Context, driverID string, day time.Time, shift time.Duration) error {
	start, end := shared.DayRange(day)
	_, err := o.tx.Exec(ctx,
		`UPDATE client_ledger_entries SET entry_date = entry_date + $4
		 WHERE delivery_id IN (
		     SELECT id FROM deliveries
		     WHERE driver_id = $1 AND delivery_date >= $2 AND delivery_date < $3)`,
		driverID, start, end, shift)
	return err
}

func (o *txOps) ShiftDeliveries(ctx context.Context, driverID string, day time.Time, shift time.Duration) error {
	start, end := shared.DayRange(day)
	_, err := o.tx.Exec(ctx,
		`UPDATE deliveries SET delivery_date = delivery_date + $4, updated_at = NOW()
		 WHERE driver_id = $1 AND delivery_date >= $2 AND delivery_date < $3`,
		driverID, start, end, shift)
	return err
}

func (o *txOps) ShiftExpenses(ctx context.Context, driverID string, day time.Time, shift time.Duration) error {
	start, end := shared.DayRange(day)
	_, err := o.tx.Exec(ctx,
		`UPDATE driver_expenses SET expense_date = expense_date + $4
		 WHERE driver_id = $1 AND expense_date >= $2 AND expense_date < $3`,
		driverID, start, end, shift)
	return err
}

func (o *txOps) ShiftDayStatus(ctx context.Context, driverID string, day time.Time, shift time.Duration) error {
	start, end := shared.DayRange(day)
	_, err := o.tx.Exec(ctx,
		`UPDATE driver_day_statuses SET date = date + $4, updated_at = NOW()
		 WHERE driver_id = $1 AND date >= $2 AND date < $3`,
		driverID, start, end, shift)
	return err
}

func (o *txOps) DeleteDayLedgerEntries(ctx context.Context, driverID string, day time.Time) error {
	start, end := shared.DayRange(day)
	_, err := o.tx.Exec(ctx,
		`DELETE FROM client_ledger_entries WHERE delivery_id IN (
		     SELECT id FROM deliveries
		     WHERE driver_id = $1 AND delivery_date >= $2 AND delivery_date < $3)`,
		driverID, start, end)
	return err
}

func (o *txOps) DeleteDayDeliveries(ctx context.Context, driverID string, day time.Time) error {
	start, end := shared.DayRange(day)
	_, err := o.tx.Exec(ctx,
		`DELETE FROM deliveries WHERE driver_id = $1 AND delivery_date >= $2 AND delivery_date < $3`,
		driverID, start, end)
	return err
}

func (o *txOps) DeleteDayExpenses(ctx context.Context, driverID string, day time.Time) error {
	start, end := shared.DayRange(day)
	_, err := o.tx.Exec(ctx,
		`DELETE FROM driver_expenses WHERE driver_id = $1 AND expense_date >= $2 AND expense_date < $3`,
		driverID, start, end)
	return err
}

func (o *txOps) DeleteDayStatus(ctx context.Context, driverID string, day time.Time) error {
	start, end := shared.DayRange(day)
	_, err := o.tx.Exec(ctx,
		`DELETE FROM driver_day_statuses WHERE driver_id = $1 AND date >= $2 AND date < $3`,
		driverID, start, end)
	return err
}
