package clients

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kurier-ops/kurier-ops/internal/platform/httpx"
	"github.com/kurier-ops/kurier-ops/internal/shared"
)

// RepositoryPort defines data access methods for clients and the ledger.
type RepositoryPort interface {
	List(ctx context.Context) ([]Client, error)
	Get(ctx context.Context, id string) (*Client, error)
	Create(ctx context.Context, c Client) error
	Update(ctx context.Context, id, name string, address, phone *string) (*Client, error)
	Delete(ctx context.Context, id string) error

	ListManualEntries(ctx context.Context, clientID string) ([]LedgerEntry, error)
	ListEntries(ctx context.Context, clientID string) ([]LedgerEntry, error)
	Balance(ctx context.Context, clientID string) (float64, error)
	CreateManualEntry(ctx context.Context, e LedgerEntry) error
	GetEntry(ctx context.Context, id string) (*LedgerEntry, error)
	UpdateManualEntry(ctx context.Context, e LedgerEntry) error
	DeleteManualEntry(ctx context.Context, id string) error
}

// Service handles client business logic.
type Service struct {
	repo RepositoryPort
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// List returns all clients.
func (s *Service) List(ctx context.Context) ([]Client, error) {
	return s.repo.List(ctx)
}

// Get returns one client.
func (s *Service) Get(ctx context.Context, id string) (*Client, error) {
	return s.repo.Get(ctx, id)
}

// Create registers a new client.
func (s *Service) Create(ctx context.Context, req CreateClientRequest) (*Client, error) {
	c := Client{
		ID:        uuid.NewString(),
		Name:      req.Name,
		Address:   req.Address,
		Phone:     req.Phone,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	return &c, nil
}

// Update applies partial changes to a client.
func (s *Service) Update(ctx context.Context, id string, req UpdateClientRequest) (*Client, error) {
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	name := current.Name
	if req.Name != nil {
		name = *req.Name
	}
	address := current.Address
	if req.Address != nil {
		address = req.Address
	}
	phone := current.Phone
	if req.Phone != nil {
		phone = req.Phone
	}
	return s.repo.Update(ctx, id, name, address, phone)
}

// Delete removes a client without records.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// Debts returns the manual ledger rows for a client, newest first.
func (s *Service) Debts(ctx context.Context, clientID string) ([]LedgerEntry, error) {
	if _, err := s.repo.Get(ctx, clientID); err != nil {
		return nil, err
	}
	return s.repo.ListManualEntries(ctx, clientID)
}

// RecordDebt appends a manual debt or payment. Payments exceeding the
// outstanding balance are rejected without any write.
func (s *Service) RecordDebt(ctx context.Context, clientID string, req CreateLedgerEntryRequest) (*LedgerEntry, error) {
	if _, err := s.repo.Get(ctx, clientID); err != nil {
		return nil, err
	}

	entryDate := time.Now().UTC()
	if req.DebtDate != nil {
		day, err := shared.ParseDay(*req.DebtDate)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", httpx.ErrValidation, err)
		}
		entryDate = day
	}

	e := LedgerEntry{
		ID:          uuid.NewString(),
		ClientID:    clientID,
		Kind:        LedgerKind(req.Type),
		Amount:      req.Amount,
		EntryDate:   entryDate,
		Description: req.Description,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.repo.CreateManualEntry(ctx, e); err != nil {
		return nil, err
	}
	return &e, nil
}

// UpdateDebt edits a manual ledger entry. Delivery-derived entries must be
// changed through the originating delivery.
func (s *Service) UpdateDebt(ctx context.Context, entryID string, req UpdateLedgerEntryRequest) (*LedgerEntry, error) {
	current, err := s.repo.GetEntry(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if current.FromDelivery() {
		return nil, ErrDeliveryDerived
	}
	if req.Amount != nil {
		current.Amount = *req.Amount
	}
	if req.Description != nil {
		current.Description = req.Description
	}
	if req.DebtDate != nil {
		day, err := shared.ParseDay(*req.DebtDate)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", httpx.ErrValidation, err)
		}
		current.EntryDate = day
	}
	if err := s.repo.UpdateManualEntry(ctx, *current); err != nil {
		return nil, err
	}
	return current, nil
}

// DeleteDebt removes a manual ledger entry.
func (s *Service) DeleteDebt(ctx context.Context, entryID string) error {
	current, err := s.repo.GetEntry(ctx, entryID)
	if err != nil {
		return err
	}
	if current.FromDelivery() {
		return ErrDeliveryDerived
	}
	return s.repo.DeleteManualEntry(ctx, entryID)
}

// TotalDebts computes the combined outstanding balance and the merged ledger
// partitioned by source.
func (s *Service) TotalDebts(ctx context.Context, clientID string) (*DebtSummary, error) {
	if _, err := s.repo.Get(ctx, clientID); err != nil {
		return nil, err
	}
	entries, err := s.repo.ListEntries(ctx, clientID)
	if err != nil {
		return nil, err
	}

	summary := DebtSummary{
		Transactions:  []LedgerEntry{},
		DeliveryDebts: []LedgerEntry{},
	}
	for _, e := range entries {
		if e.FromDelivery() {
			summary.DeliveryDebts = append(summary.DeliveryDebts, e)
			summary.Breakdown.FromDeliveries += e.Net()
		} else {
			summary.Transactions = append(summary.Transactions, e)
			summary.Breakdown.FromRegularDebts += e.Net()
		}
	}
	summary.TotalDebt = summary.Breakdown.FromRegularDebts + summary.Breakdown.FromDeliveries
	return &summary, nil
}
