package clients

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kurier-ops/kurier-ops/internal/platform/db"
	"github.com/kurier-ops/kurier-ops/internal/platform/httpx"
)

var (
	// ErrNotFound indicates an unknown client or ledger entry.
	ErrNotFound = fmt.Errorf("clients: %w", httpx.ErrNotFound)
	// ErrDuplicateName indicates a client name collision.
	ErrDuplicateName = fmt.Errorf("clients: name already exists: %w", httpx.ErrDuplicate)
	// ErrHasRecords blocks deleting clients that still own data.
	ErrHasRecords = fmt.Errorf("clients: existing deliveries or debts: %w", httpx.ErrUnprocessable)
	// ErrPaymentExceedsDebt rejects repayments above the outstanding balance.
	ErrPaymentExceedsDebt = fmt.Errorf("clients: payment exceeds outstanding debt: %w", httpx.ErrUnprocessable)
	// ErrDeliveryDerived blocks direct edits of delivery-derived ledger rows.
	ErrDeliveryDerived = fmt.Errorf("clients: entry belongs to a delivery: %w", httpx.ErrUnprocessable)
)

const uniqueViolation = "23505"

// Repository provides PostgreSQL backed persistence for clients and the
// debt ledger.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// List returns all clients ordered by name.
func (r *Repository) List(ctx context.Context) ([]Client, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, address, phone, created_at FROM clients ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var clients []Client
	for rows.Next() {
		var c Client
		if err := rows.Scan(&c.ID, &c.Name, &c.Address, &c.Phone, &c.CreatedAt); err != nil {
			return nil, err
		}
		clients = append(clients, c)
	}
	return clients, rows.Err()
}

// Get returns one client by id.
func (r *Repository) Get(ctx context.Context, id string) (*Client, error) {
	var c Client
	err := r.pool.QueryRow(ctx, `SELECT id, name, address, phone, created_at FROM clients WHERE id = $1`, id).
		Scan(&c.ID, &c.Name, &c.Address, &c.Phone, &c.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Create inserts a client; a name collision maps to ErrDuplicateName.
func (r *Repository) Create(ctx context.Context, c Client) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO clients (id, name, address, phone, created_at) VALUES ($1, $2, $3, $4, $5)`,
		c.ID, c.Name, c.Address, c.Phone, c.CreatedAt)
	if isUniqueViolation(err) {
		return ErrDuplicateName
	}
	return err
}

// Update rewrites the mutable client fields.
func (r *Repository) Update(ctx context.Context, id, name string, address, phone *string) (*Client, error) {
	var c Client
	err := r.pool.QueryRow(ctx,
		`UPDATE clients SET name = $2, address = $3, phone = $4 WHERE id = $1
		 RETURNING id, name, address, phone, created_at`,
		id, name, address, phone).
		Scan(&c.ID, &c.Name, &c.Address, &c.Phone, &c.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if isUniqueViolation(err) {
		return nil, ErrDuplicateName
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Delete removes a client unless deliveries or ledger entries still exist.
func (r *Repository) Delete(ctx context.Context, id string) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		var exists bool
		if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM clients WHERE id = $1)`, id).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return ErrNotFound
		}
		var owned bool
		err := tx.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM deliveries WHERE client_id = $1)
			     OR EXISTS (SELECT 1 FROM client_ledger_entries WHERE client_id = $1)`, id).Scan(&owned)
		if err != nil {
			return err
		}
		if owned {
			return ErrHasRecords
		}
		_, err = tx.Exec(ctx, `DELETE FROM clients WHERE id = $1`, id)
		return err
	})
}

const ledgerColumns = `id, client_id, kind, amount, entry_date, description, delivery_id, created_at`

func scanEntries(rows pgx.Rows) ([]LedgerEntry, error) {
	defer rows.Close()
	var entries []LedgerEntry
	for rows.Next() {
		var e LedgerEntry
		if err := rows.Scan(&e.ID, &e.ClientID, &e.Kind, &e.Amount, &e.EntryDate, &e.Description, &e.DeliveryID, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// ListManualEntries returns the hand-entered ledger rows for a client,
// newest first.
func (r *Repository) ListManualEntries(ctx context.Context, clientID string) ([]LedgerEntry, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+ledgerColumns+` FROM client_ledger_entries
		 WHERE client_id = $1 AND delivery_id IS NULL ORDER BY entry_date DESC`, clientID)
	if err != nil {
		return nil, err
	}
	return scanEntries(rows)
}

// ListEntries returns the full ledger for a client, newest first.
func (r *Repository) ListEntries(ctx context.Context, clientID string) ([]LedgerEntry, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+ledgerColumns+` FROM client_ledger_entries
		 WHERE client_id = $1 ORDER BY entry_date DESC`, clientID)
	if err != nil {
		return nil, err
	}
	return scanEntries(rows)
}

// Balance returns the outstanding balance over the whole ledger.
func (r *Repository) Balance(ctx context.Context, clientID string) (float64, error) {
	var balance float64
	err := r.pool.QueryRow(ctx,
		`SELECT COALESCE(SUM(CASE WHEN kind = 'DEBT' THEN amount ELSE -amount END), 0)
		 FROM client_ledger_entries WHERE client_id = $1`, clientID).Scan(&balance)
	return balance, err
}

// CreateManualEntry inserts a manual ledger row. Payments are checked against
// the current balance inside the same transaction so a concurrent write
// cannot slip a second repayment past the limit.
func (r *Repository) CreateManualEntry(ctx context.Context, e LedgerEntry) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if e.Kind == KindPayment {
			var balance float64
			err := tx.QueryRow(ctx,
				`SELECT COALESCE(SUM(CASE WHEN kind = 'DEBT' THEN amount ELSE -amount END), 0)
				 FROM client_ledger_entries WHERE client_id = $1`, e.ClientID).Scan(&balance)
			if err != nil {
				return err
			}
			if e.Amount > balance {
				return ErrPaymentExceedsDebt
			}
		}
		_, err := tx.Exec(ctx,
			`INSERT INTO client_ledger_entries (`+ledgerColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			e.ID, e.ClientID, e.Kind, e.Amount, e.EntryDate, e.Description, e.DeliveryID, e.CreatedAt)
		return err
	})
}

// GetEntry returns one ledger row by id.
func (r *Repository) GetEntry(ctx context.Context, id string) (*LedgerEntry, error) {
	var e LedgerEntry
	err := r.pool.QueryRow(ctx,
		`SELECT `+ledgerColumns+` FROM client_ledger_entries WHERE id = $1`, id).
		Scan(&e.ID, &e.ClientID, &e.Kind, &e.Amount, &e.EntryDate, &e.Description, &e.DeliveryID, &e.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// UpdateManualEntry edits a manual ledger row.
func (r *Repository) UpdateManualEntry(ctx context.Context, e LedgerEntry) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE client_ledger_entries SET amount = $2, description = $3, entry_date = $4
		 WHERE id = $1 AND delivery_id IS NULL`,
		e.ID, e.Amount, e.Description, e.EntryDate)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteManualEntry removes a manual ledger row.
func (r *Repository) DeleteManualEntry(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM client_ledger_entries WHERE id = $1 AND delivery_id IS NULL`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
