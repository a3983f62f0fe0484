package cashdesk

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kurier-ops/kurier-ops/internal/platform/db"
	"github.com/kurier-ops/kurier-ops/internal/platform/httpx"
	"github.com/kurier-ops/kurier-ops/internal/shared"
)

// Repository errors.
var (
	ErrNotFound = fmt.Errorf("cashdesk: day status %w", httpx.ErrNotFound)
	ErrStale    = fmt.Errorf("cashdesk: day status changed since read: %w", httpx.ErrConflict)
)

// Repository provides PostgreSQL backed persistence for day statuses.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const selectStatus = `
SELECT s.id, s.driver_id, s.date, s.status, s.total_cash, s.cash_paid, s.notes,
       COALESCE(s.banknotes, '{}'::jsonb), s.updated_at, d.name
FROM driver_day_statuses s
JOIN drivers d ON d.id = s.driver_id`

func scanStatuses(rows pgx.Rows) ([]DayStatus, error) {
	defer rows.Close()
	var out []DayStatus
	for rows.Next() {
		var s DayStatus
		if err := rows.Scan(&s.ID, &s.DriverID, &s.Date, &s.Status, &s.TotalCash,
			&s.CashPaid, &s.Notes, &s.Banknotes, &s.UpdatedAt, &s.DriverName); err != nil {
			return nil, err
		}
		s.Source = SourceManual
		out = append(out, s)
	}
	return out, rows.Err()
}

// Get returns the stored day status for one driver/day.
func (r *Repository) Get(ctx context.Context, driverID string, day time.Time) (*DayStatus, error) {
	start, end := shared.DayRange(day)
	rows, err := r.pool.Query(ctx,
		selectStatus+` WHERE s.driver_id = $1 AND s.date >= $2 AND s.date < $3`,
		driverID, start, end)
	if err != nil {
		return nil, err
	}
	out, err := scanStatuses(rows)
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, ErrNotFound
	}
	return &out[0], nil
}

// Upsert saves a day status keyed by (driver, day). When expected is set, the
// write only proceeds if the stored updated_at still matches.
func (r *Repository) Upsert(ctx context.Context, s DayStatus, expected *time.Time) (*DayStatus, error) {
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if expected != nil {
			var current time.Time
			err := tx.QueryRow(ctx,
				`SELECT updated_at FROM driver_day_statuses WHERE driver_id = $1 AND date = $2 FOR UPDATE`,
				s.DriverID, s.Date).Scan(&current)
			if err != nil && !errors.Is(err, pgx.ErrNoRows) {
				return err
			}
			if err == nil && !current.Equal(*expected) {
				return ErrStale
			}
		}
		_, err := tx.Exec(ctx,
			`INSERT INTO driver_day_statuses (id, driver_id, date, status, total_cash, cash_paid, notes, banknotes, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
			 ON CONFLICT (driver_id, date) DO UPDATE SET
			     status = EXCLUDED.status, total_cash = EXCLUDED.total_cash,
			     cash_paid = EXCLUDED.cash_paid, notes = EXCLUDED.notes,
			     banknotes = EXCLUDED.banknotes, updated_at = NOW()`,
			s.ID, s.DriverID, s.Date, s.Status, s.TotalCash, s.CashPaid, s.Notes, s.Banknotes)
		return err
	})
	if err != nil {
		return nil, err
	}
	return r.Get(ctx, s.DriverID, s.Date)
}

// ListRange returns stored day statuses within [start, end), optionally for
// one driver.
func (r *Repository) ListRange(ctx context.Context, start, end time.Time, driverID *string) ([]DayStatus, error) {
	query := selectStatus + ` WHERE s.date >= $1 AND s.date < $2`
	args := []any{start, end}
	if driverID != nil {
		query += ` AND s.driver_id = $3`
		args = append(args, *driverID)
	}
	rows, err := r.pool.Query(ctx, query+` ORDER BY s.date DESC, d.name`, args...)
	if err != nil {
		return nil, err
	}
	return scanStatuses(rows)
}

// DeliveryDay is a (driver, day) pair derived from deliveries, used to
// synthesize pending rows for days that were driven but never reconciled.
type DeliveryDay struct {
	DriverID   string
	DriverName string
	Day        time.Time
	CashTotal  float64
}

// DeliveryDays returns distinct driver/day pairs with deliveries in
// [start, end), optionally for one driver.
func (r *Repository) DeliveryDays(ctx context.Context, start, end time.Time, driverID *string) ([]DeliveryDay, error) {
	query := `
		SELECT dl.driver_id, dr.name, date_trunc('day', dl.delivery_date) AS day, SUM(dl.cash_amount)
		FROM deliveries dl
		JOIN drivers dr ON dr.id = dl.driver_id
		WHERE dl.delivery_date >= $1 AND dl.delivery_date < $2`
	args := []any{start, end}
	if driverID != nil {
		query += ` AND dl.driver_id = $3`
		args = append(args, *driverID)
	}
	query += ` GROUP BY dl.driver_id, dr.name, day ORDER BY day DESC, dr.name`
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []DeliveryDay
	for rows.Next() {
		var d DeliveryDay
		if err := rows.Scan(&d.DriverID, &d.DriverName, &d.Day, &d.CashTotal); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// DayAggregates returns the cash, extra-payment and expense sums feeding the
// net-cash-due computation for one driver/day.
func (r *Repository) DayAggregates(ctx context.Context, driverID string, day time.Time) (cash, extra, expenses float64, err error) {
	start, end := shared.DayRange(day)
	err = r.pool.QueryRow(ctx,
		`SELECT COALESCE(SUM(cash_amount), 0), COALESCE(SUM(extra_payment), 0)
		 FROM deliveries
		 WHERE driver_id = $1 AND delivery_date >= $2 AND delivery_date < $3`,
		driverID, start, end).Scan(&cash, &extra)
	if err != nil {
		return 0, 0, 0, err
	}
	err = r.pool.QueryRow(ctx,
		`SELECT COALESCE(SUM(amount), 0) FROM driver_expenses
		 WHERE driver_id = $1 AND expense_date >= $2 AND expense_date < $3`,
		driverID, start, end).Scan(&expenses)
	if err != nil {
		return 0, 0, 0, err
	}
	return cash, extra, expenses, nil
}

// TotalCashPaid sums cash_paid across all day statuses for one day.
func (r *Repository) TotalCashPaid(ctx context.Context, day time.Time) (float64, error) {
	start, end := shared.DayRange(day)
	var total float64
	err := r.pool.QueryRow(ctx,
		`SELECT COALESCE(SUM(cash_paid), 0) FROM driver_day_statuses WHERE date >= $1 AND date < $2`,
		start, end).Scan(&total)
	return total, err
}
