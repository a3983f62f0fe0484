package drivers

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kurier-ops/kurier-ops/internal/platform/db"
	"github.com/kurier-ops/kurier-ops/internal/platform/httpx"
)

// ErrNotFound indicates an unknown driver.
var ErrNotFound = fmt.Errorf("drivers: %w", httpx.ErrNotFound)

// Repository provides PostgreSQL backed persistence for drivers.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// List returns all drivers ordered by name.
func (r *Repository) List(ctx context.Context) ([]Driver, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, phone, created_at FROM drivers ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var drivers []Driver
	for rows.Next() {
		var d Driver
		if err := rows.Scan(&d.ID, &d.Name, &d.Phone, &d.CreatedAt); err != nil {
			return nil, err
		}
		drivers = append(drivers, d)
	}
	return drivers, rows.Err()
}

// Get returns one driver by id.
func (r *Repository) Get(ctx context.Context, id string) (*Driver, error) {
	var d Driver
	err := r.pool.QueryRow(ctx, `SELECT id, name, phone, created_at FROM drivers WHERE id = $1`, id).
		Scan(&d.ID, &d.Name, &d.Phone, &d.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// Create inserts a driver.
func (r *Repository) Create(ctx context.Context, d Driver) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO drivers (id, name, phone, created_at) VALUES ($1, $2, $3, $4)`,
		d.ID, d.Name, d.Phone, d.CreatedAt)
	return err
}

// Update rewrites the mutable driver fields.
func (r *Repository) Update(ctx context.Context, id string, name string, phone *string) (*Driver, error) {
	var d Driver
	err := r.pool.QueryRow(ctx,
		`UPDATE drivers SET name = $2, phone = $3 WHERE id = $1 RETURNING id, name, phone, created_at`,
		id, name, phone).
		Scan(&d.ID, &d.Name, &d.Phone, &d.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// Delete removes a driver together with every record hanging off it, in one
// transaction: day statuses, expenses, ledger rows derived from the driver's
// deliveries, and the deliveries themselves.
func (r *Repository) Delete(ctx context.Context, id string) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `SELECT 1 FROM drivers WHERE id = $1`, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		if _, err := tx.Exec(ctx, `DELETE FROM driver_day_statuses WHERE driver_id = $1`, id); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `DELETE FROM driver_expenses WHERE driver_id = $1`, id); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx,
			`DELETE FROM client_ledger_entries WHERE delivery_id IN (SELECT id FROM deliveries WHERE driver_id = $1)`, id); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `DELETE FROM deliveries WHERE driver_id = $1`, id); err != nil {
			return err
		}
		_, err = tx.Exec(ctx, `DELETE FROM drivers WHERE id = $1`, id)
		return err
	})
}
