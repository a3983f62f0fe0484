package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kurier-ops/kurier-ops/internal/platform/httpx"
)

// ErrNotFound indicates an unknown ledger entry.
var ErrNotFound = fmt.Errorf("ledger: %w", httpx.ErrNotFound)

// Repository provides PostgreSQL backed persistence for the daily books.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func tableFor(kind Kind) string {
	if kind == KindIncome {
		return "daily_incomes"
	}
	return "daily_expenses"
}

func scanEntries(rows pgx.Rows) ([]Entry, error) {
	defer rows.Close()
	var out []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Amount, &e.Description, &e.Date, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// List returns entries of one kind within [start, end), newest first.
func (r *Repository) List(ctx context.Context, kind Kind, start, end time.Time) ([]Entry, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, amount, description, date, created_at FROM `+tableFor(kind)+
			` WHERE date >= $1 AND date < $2 ORDER BY date DESC`,
		start, end)
	if err != nil {
		return nil, err
	}
	return scanEntries(rows)
}

// Get returns one entry of one kind.
func (r *Repository) Get(ctx context.Context, kind Kind, id string) (*Entry, error) {
	var e Entry
	err := r.pool.QueryRow(ctx,
		`SELECT id, amount, description, date, created_at FROM `+tableFor(kind)+` WHERE id = $1`, id).
		Scan(&e.ID, &e.Amount, &e.Description, &e.Date, &e.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// Create inserts an entry.
func (r *Repository) Create(ctx context.Context, kind Kind, e Entry) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO `+tableFor(kind)+` (id, amount, description, date, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		e.ID, e.Amount, e.Description, e.Date, e.CreatedAt)
	return err
}

// Update replaces the mutable fields of an entry.
func (r *Repository) Update(ctx context.Context, kind Kind, e Entry) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE `+tableFor(kind)+` SET amount = $2, description = $3, date = $4 WHERE id = $1`,
		e.ID, e.Amount, e.Description, e.Date)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes an entry.
func (r *Repository) Delete(ctx context.Context, kind Kind, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM `+tableFor(kind)+` WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DriverCashRow is the declared cash of one driver day feeding the summary.
type DriverCashRow struct {
	StatusID   string
	DriverID   string
	DriverName string
	Date       time.Time
	CashPaid   float64
}

// DriverCash returns declared driver cash rows within [start, end).
func (r *Repository) DriverCash(ctx context.Context, start, end time.Time) ([]DriverCashRow, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT s.id, s.driver_id, d.name, s.date, s.cash_paid
		 FROM driver_day_statuses s
		 JOIN drivers d ON d.id = s.driver_id
		 WHERE s.date >= $1 AND s.date < $2
		 ORDER BY s.date DESC`,
		start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []DriverCashRow
	for rows.Next() {
		var c DriverCashRow
		if err := rows.Scan(&c.StatusID, &c.DriverID, &c.DriverName, &c.Date, &c.CashPaid); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
