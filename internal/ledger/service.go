package ledger

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/kurier-ops/kurier-ops/internal/platform/httpx"
	"github.com/kurier-ops/kurier-ops/internal/shared"
)

// RepositoryPort defines data access methods for the daily books.
type RepositoryPort interface {
	List(ctx context.Context, kind Kind, start, end time.Time) ([]Entry, error)
	Get(ctx context.Context, kind Kind, id string) (*Entry, error)
	Create(ctx context.Context, kind Kind, e Entry) error
	Update(ctx context.Context, kind Kind, e Entry) error
	Delete(ctx context.Context, kind Kind, id string) error
	DriverCash(ctx context.Context, start, end time.Time) ([]DriverCashRow, error)
}

// Service handles bookkeeping business logic. Summaries are cached behind
// singleflight so bursts of identical requests hit the database once.
type Service struct {
	repo  RepositoryPort
	cache *Cache
	group singleflight.Group
}

// NewService builds a Service instance. cache may be nil.
func NewService(repo RepositoryPort, cache *Cache) *Service {
	return &Service{repo: repo, cache: cache}
}

// List returns entries of one kind within [start, end).
func (s *Service) List(ctx context.Context, kind Kind, start, end time.Time) ([]Entry, error) {
	return s.repo.List(ctx, kind, start, end)
}

// Create records an entry.
func (s *Service) Create(ctx context.Context, kind Kind, req CreateEntryRequest) (*Entry, error) {
	e := Entry{
		ID:          uuid.NewString(),
		Amount:      req.Amount,
		Description: req.Description,
		Date:        time.Now().UTC(),
		CreatedAt:   time.Now().UTC(),
	}
	if req.Date != nil {
		day, err := shared.ParseDay(*req.Date)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", httpx.ErrValidation, err)
		}
		e.Date = day
	}
	if err := s.repo.Create(ctx, kind, e); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return &e, nil
}

// Update applies partial changes to an entry.
func (s *Service) Update(ctx context.Context, kind Kind, id string, req UpdateEntryRequest) (*Entry, error) {
	current, err := s.repo.Get(ctx, kind, id)
	if err != nil {
		return nil, err
	}
	if req.Amount != nil {
		current.Amount = *req.Amount
	}
	if req.Description != nil {
		current.Description = *req.Description
	}
	if req.Date != nil {
		day, err := shared.ParseDay(*req.Date)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", httpx.ErrValidation, err)
		}
		current.Date = day
	}
	if err := s.repo.Update(ctx, kind, *current); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return current, nil
}

// Delete removes an entry.
func (s *Service) Delete(ctx context.Context, kind Kind, id string) error {
	if err := s.repo.Delete(ctx, kind, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *Service) invalidate(ctx context.Context) {
	_ = s.cache.Bump(ctx)
}

// Summary computes the cash position for [start, end): declared driver cash
// plus incomes minus expenses, with the flattened transaction list.
func (s *Service) Summary(ctx context.Context, start, end time.Time) (*Summary, error) {
	key := s.cache.BuildKey(ctx, "ledger", "summary",
		start.Format(shared.DayFormat), end.Format(shared.DayFormat))
	v, err, _ := s.group.Do(key, func() (any, error) {
		var out Summary
		err := s.cache.FetchJSON(ctx, key, &out, func(ctx context.Context) (any, error) {
			return s.buildSummary(ctx, start, end)
		})
		if err != nil {
			return nil, err
		}
		return &out, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Summary), nil
}

func (s *Service) buildSummary(ctx context.Context, start, end time.Time) (*Summary, error) {
	incomes, err := s.repo.List(ctx, KindIncome, start, end)
	if err != nil {
		return nil, err
	}
	expenses, err := s.repo.List(ctx, KindExpense, start, end)
	if err != nil {
		return nil, err
	}
	driverCash, err := s.repo.DriverCash(ctx, start, end)
	if err != nil {
		return nil, err
	}

	sum := Summary{Transactions: []Transaction{}}
	for _, e := range incomes {
		sum.TotalIncomes += e.Amount
		sum.Transactions = append(sum.Transactions, Transaction{
			ID: e.ID, Type: "income", Amount: e.Amount,
			Description: e.Description, Date: e.Date, Editable: true,
		})
	}
	for _, e := range expenses {
		sum.TotalExpenses += e.Amount
		sum.Transactions = append(sum.Transactions, Transaction{
			ID: e.ID, Type: "expense", Amount: e.Amount,
			Description: e.Description, Date: e.Date, Editable: true,
		})
	}
	for _, c := range driverCash {
		sum.TotalDriverCash += c.CashPaid
		sum.Transactions = append(sum.Transactions, Transaction{
			ID: c.StatusID, Type: "driver-cash", Amount: c.CashPaid,
			Description: fmt.Sprintf("Cash from %s", c.DriverName),
			Date:        c.Date, Editable: false,
			DriverID: c.DriverID, DriverName: c.DriverName,
		})
	}
	sort.Slice(sum.Transactions, func(i, j int) bool {
		return sum.Transactions[i].Date.After(sum.Transactions[j].Date)
	})
	sum.TotalBalance = sum.TotalDriverCash + sum.TotalIncomes - sum.TotalExpenses
	return &sum, nil
}
