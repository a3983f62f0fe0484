package expenses

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kurier-ops/kurier-ops/internal/platform/httpx"
	"github.com/kurier-ops/kurier-ops/internal/shared"
)

// RepositoryPort defines data access methods for driver expenses.
type RepositoryPort interface {
	List(ctx context.Context, day *time.Time) ([]Expense, error)
	ListByDriverDay(ctx context.Context, driverID string, day time.Time) ([]Expense, error)
	Get(ctx context.Context, id string) (*Expense, error)
	Create(ctx context.Context, e Expense) error
	Update(ctx context.Context, e Expense) error
	Delete(ctx context.Context, id string) error
	TotalByDriverDay(ctx context.Context, driverID string, day time.Time) (float64, error)
}

// Service handles driver-expense business logic.
type Service struct {
	repo RepositoryPort
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// List returns expenses, optionally for one calendar day.
func (s *Service) List(ctx context.Context, day *time.Time) ([]Expense, error) {
	return s.repo.List(ctx, day)
}

// ListByDriverDay returns a driver's expenses for one day.
func (s *Service) ListByDriverDay(ctx context.Context, driverID string, day time.Time) ([]Expense, error) {
	return s.repo.ListByDriverDay(ctx, driverID, day)
}

// Create records a driver expense. The free-text name only applies to the
// other type.
func (s *Service) Create(ctx context.Context, req CreateExpenseRequest) (*Expense, error) {
	e := Expense{
		ID:          uuid.NewString(),
		DriverID:    req.DriverID,
		Type:        ExpenseType(req.Type),
		Amount:      req.Amount,
		ExpenseDate: time.Now().UTC(),
		CreatedAt:   time.Now().UTC(),
	}
	if e.Type == TypeOther {
		e.Name = req.Name
	}
	if req.ExpenseDate != nil {
		day, err := shared.ParseDay(*req.ExpenseDate)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", httpx.ErrValidation, err)
		}
		e.ExpenseDate = day
	}
	if err := s.repo.Create(ctx, e); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, e.ID)
}

// Update applies partial changes to an expense.
func (s *Service) Update(ctx context.Context, id string, req UpdateExpenseRequest) (*Expense, error) {
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Type != nil {
		current.Type = ExpenseType(*req.Type)
	}
	if req.Name != nil {
		current.Name = req.Name
	}
	if current.Type != TypeOther {
		current.Name = nil
	}
	if req.Amount != nil {
		current.Amount = *req.Amount
	}
	if req.ExpenseDate != nil {
		day, err := shared.ParseDay(*req.ExpenseDate)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", httpx.ErrValidation, err)
		}
		current.ExpenseDate = day
	}
	if err := s.repo.Update(ctx, *current); err != nil {
		return nil, err
	}
	return current, nil
}

// Delete removes an expense.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}
