package products

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kurier-ops/kurier-ops/internal/platform/db"
	"github.com/kurier-ops/kurier-ops/internal/platform/httpx"
)

// Repository errors.
var (
	ErrNotFound          = fmt.Errorf("products: %w", httpx.ErrNotFound)
	ErrInsufficientStock = fmt.Errorf("products: outcome exceeds current stock: %w", httpx.ErrUnprocessable)
)

// Repository provides PostgreSQL backed persistence for products.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// List returns all products, newest first.
func (r *Repository) List(ctx context.Context) ([]Product, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, price, rating, stock_quantity, created_at
		 FROM products ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Price, &p.Rating, &p.StockQuantity, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Get returns one product.
func (r *Repository) Get(ctx context.Context, id string) (*Product, error) {
	var p Product
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, price, rating, stock_quantity, created_at FROM products WHERE id = $1`, id).
		Scan(&p.ID, &p.Name, &p.Price, &p.Rating, &p.StockQuantity, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Logs returns a product's stock movements, newest first.
func (r *Repository) Logs(ctx context.Context, productID string) ([]StockLog, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, product_id, type, value, actor, created_at
		 FROM product_logs WHERE product_id = $1 ORDER BY created_at DESC`, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []StockLog
	for rows.Next() {
		var l StockLog
		if err := rows.Scan(&l.ID, &l.ProductID, &l.Type, &l.Value, &l.Actor, &l.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// Create inserts a product and, when opening stock is positive, the initial
// income log in one transaction.
func (r *Repository) Create(ctx context.Context, p Product, initialLog *StockLog) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx,
			`INSERT INTO products (id, name, price, rating, stock_quantity, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			p.ID, p.Name, p.Price, p.Rating, p.StockQuantity, p.CreatedAt)
		if err != nil {
			return err
		}
		if initialLog == nil {
			return nil
		}
		return insertLog(ctx, tx, *initialLog)
	})
}

func insertLog(ctx context.Context, tx pgx.Tx, l StockLog) error {
	_, err := tx.Exec(ctx,
		`INSERT INTO product_logs (id, product_id, type, value, actor, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		l.ID, l.ProductID, l.Type, l.Value, l.Actor, l.CreatedAt)
	return err
}

// Update applies field changes and stock movements; the product row and its
// log rows change in one transaction. Outcomes larger than current stock are
// rejected without any write.
func (r *Repository) Update(ctx context.Context, p Product, logs []StockLog) (*Product, error) {
	return db.WithTxResult(ctx, r.pool, func(tx pgx.Tx) (*Product, error) {
		var current int64
		err := tx.QueryRow(ctx,
			`SELECT stock_quantity FROM products WHERE id = $1 FOR UPDATE`, p.ID).Scan(&current)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		if err != nil {
			return nil, err
		}

		next := current
		for _, l := range logs {
			if l.Type == LogIncome {
				next += l.Value
			} else {
				next -= l.Value
			}
		}
		if next < 0 {
			return nil, ErrInsufficientStock
		}

		p.StockQuantity = next
		_, err = tx.Exec(ctx,
			`UPDATE products SET name = $2, price = $3, rating = $4, stock_quantity = $5 WHERE id = $1`,
			p.ID, p.Name, p.Price, p.Rating, p.StockQuantity)
		if err != nil {
			return nil, err
		}
		for _, l := range logs {
			if err := insertLog(ctx, tx, l); err != nil {
				return nil, err
			}
		}
		return &p, nil
	})
}

// Delete removes a product; its logs cascade.
func (r *Repository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
