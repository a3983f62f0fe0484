package expenses

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kurier-ops/kurier-ops/internal/platform/httpx"
	"github.com/kurier-ops/kurier-ops/internal/shared"
)

// ErrNotFound indicates an unknown expense.
var ErrNotFound = fmt.Errorf("expenses: %w", httpx.ErrNotFound)

// Repository provides PostgreSQL backed persistence for driver expenses.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const selectExpense = `
SELECT e.id, e.driver_id, e.type, e.name, e.amount, e.expense_date, e.created_at, d.name
FROM driver_expenses e
JOIN drivers d ON d.id = e.driver_id`

func scanExpenses(rows pgx.Rows) ([]Expense, error) {
	defer rows.Close()
	var out []Expense
	for rows.Next() {
		var e Expense
		if err := rows.Scan(&e.ID, &e.DriverID, &e.Type, &e.Name, &e.Amount,
			&e.ExpenseDate, &e.CreatedAt, &e.DriverName); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// List returns expenses, optionally restricted to one calendar day.
func (r *Repository) List(ctx context.Context, day *time.Time) ([]Expense, error) {
	if day == nil {
		rows, err := r.pool.Query(ctx, selectExpense+` ORDER BY e.expense_date DESC`)
		if err != nil {
			return nil, err
		}
		return scanExpenses(rows)
	}
	start, end := shared.DayRange(*day)
	rows, err := r.pool.Query(ctx,
		selectExpense+` WHERE e.expense_date >= $1 AND e.expense_date < $2 ORDER BY e.expense_date DESC`,
		start, end)
	if err != nil {
		return nil, err
	}
	return scanExpenses(rows)
}

// ListByDriverDay returns one driver's expenses for one day.
func (r *Repository) ListByDriverDay(ctx context.Context, driverID string, day time.Time) ([]Expense, error) {
	start, end := shared.DayRange(day)
	rows, err := r.pool.Query(ctx,
		selectExpense+` WHERE e.driver_id = $1 AND e.expense_date >= $2 AND e.expense_date < $3 ORDER BY e.expense_date`,
		driverID, start, end)
	if err != nil {
		return nil, err
	}
	return scanExpenses(rows)
}

// Get returns one expense.
func (r *Repository) Get(ctx context.Context, id string) (*Expense, error) {
	rows, err := r.pool.Query(ctx, selectExpense+` WHERE e.id = $1`, id)
	if err != nil {
		return nil, err
	}
	out, err := scanExpenses(rows)
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, ErrNotFound
	}
	return &out[0], nil
}

// Create inserts an expense.
func (r *Repository) Create(ctx context.Context, e Expense) error {
	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM drivers WHERE id = $1)`, e.DriverID).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("expenses: driver: %w", httpx.ErrNotFound)
	}
	_, err := r.pool.Exec(ctx,
		`INSERT INTO driver_expenses (id, driver_id, type, name, amount, expense_date, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		e.ID, e.DriverID, e.Type, e.Name, e.Amount, e.ExpenseDate, e.CreatedAt)
	return err
}

// Update replaces the mutable fields of an expense.
func (r *Repository) Update(ctx context.Context, e Expense) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE driver_expenses SET type = $2, name = $3, amount = $4, expense_date = $5 WHERE id = $1`,
		e.ID, e.Type, e.Name, e.Amount, e.ExpenseDate)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes an expense.
func (r *Repository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM driver_expenses WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// TotalByDriverDay sums one driver's expenses for one day.
func (r *Repository) TotalByDriverDay(ctx context.Context, driverID string, day time.Time) (float64, error) {
	start, end := shared.DayRange(day)
	var total float64
	err := r.pool.QueryRow(ctx,
		`SELECT COALESCE(SUM(amount), 0) FROM driver_expenses
		 WHERE driver_id = $1 AND expense_date >= $2 AND expense_date < $3`,
		driverID, start, end).Scan(&total)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	return total, err
}
