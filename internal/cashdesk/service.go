package cashdesk

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/kurier-ops/kurier-ops/internal/platform/httpx"
	"github.com/kurier-ops/kurier-ops/internal/shared"
)

// ErrUnknownDenomination rejects banknote maps with values outside the
// accepted denomination set.
var ErrUnknownDenomination = fmt.Errorf("cashdesk: unknown banknote denomination: %w", httpx.ErrValidation)

// RepositoryPort defines data access methods for day statuses.
type RepositoryPort interface {
	Get(ctx context.Context, driverID string, day time.Time) (*DayStatus, error)
	Upsert(ctx context.Context, s DayStatus, expected *time.Time) (*DayStatus, error)
	ListRange(ctx context.Context, start, end time.Time, driverID *string) ([]DayStatus, error)
	DeliveryDays(ctx context.Context, start, end time.Time, driverID *string) ([]DeliveryDay, error)
	DayAggregates(ctx context.Context, driverID string, day time.Time) (cash, extra, expenses float64, err error)
	TotalCashPaid(ctx context.Context, day time.Time) (float64, error)
}

// Service handles cash reconciliation business logic.
type Service struct {
	repo RepositoryPort
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

func syntheticID(driverID string, day time.Time) string {
	return fmt.Sprintf("delivery_%s_%s", driverID, day.Format(shared.DayFormat))
}

func (s *Service) balance(ctx context.Context, status DayStatus) (DayBalance, error) {
	cash, extra, expenses, err := s.repo.DayAggregates(ctx, status.DriverID, status.Date)
	if err != nil {
		return DayBalance{}, err
	}
	netCashDue := cash + extra - expenses
	return NewDayBalance(netCashDue, status.Banknotes.CountedTotal()), nil
}

// Get returns the reconciliation view for one driver/day. Days with
// deliveries but no stored row yield a synthesized pending view; days with
// neither stay not found.
func (s *Service) Get(ctx context.Context, driverID string, day time.Time) (*DayStatusView, error) {
	status, err := s.repo.Get(ctx, driverID, day)
	if errors.Is(err, httpx.ErrNotFound) {
		start, end := shared.DayRange(day)
		days, dErr := s.repo.DeliveryDays(ctx, start, end, &driverID)
		if dErr != nil {
			return nil, dErr
		}
		if len(days) == 0 {
			return nil, err
		}
		cash, _, _, aggErr := s.repo.DayAggregates(ctx, driverID, day)
		if aggErr != nil {
			return nil, aggErr
		}
		status = &DayStatus{
			ID:        syntheticID(driverID, day),
			DriverID:  driverID,
			Date:      shared.TruncateDay(day),
			Status:    StatusPending,
			TotalCash: cash,
			Source:    SourceDelivery,
		}
	} else if err != nil {
		return nil, err
	}
	bal, err := s.balance(ctx, *status)
	if err != nil {
		return nil, err
	}
	return &DayStatusView{DayStatus: *status, Balance: bal}, nil
}

// Upsert saves the day status. The stored status stays exactly what the user
// asserted; the returned balance is informational.
func (s *Service) Upsert(ctx context.Context, req UpsertDayStatusRequest) (*DayStatusView, error) {
	day, err := shared.ParseDay(req.Date)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", httpx.ErrValidation, err)
	}
	if !req.Banknotes.KnownDenominations() {
		return nil, ErrUnknownDenomination
	}
	status := DayStatus{
		ID:        uuid.NewString(),
		DriverID:  req.DriverID,
		Date:      shared.TruncateDay(day),
		Status:    Status(req.Status),
		TotalCash: req.TotalCash,
		CashPaid:  req.CashPaid,
		Notes:     req.Notes,
		Banknotes: req.Banknotes,
	}
	saved, err := s.repo.Upsert(ctx, status, req.ExpectedUpdatedAt)
	if err != nil {
		return nil, err
	}
	bal, err := s.balance(ctx, *saved)
	if err != nil {
		return nil, err
	}
	return &DayStatusView{DayStatus: *saved, Balance: bal}, nil
}

// ListMerged returns stored day statuses within [start, end) merged with
// synthesized pending rows for driver/day pairs that have deliveries but no
// stored status. The driver-page source filter suppresses synthesized rows.
func (s *Service) ListMerged(ctx context.Context, start, end time.Time, driverID *string, source string) ([]DayStatus, error) {
	stored, err := s.repo.ListRange(ctx, start, end, driverID)
	if err != nil {
		return nil, err
	}
	if source == "driver-page" {
		return stored, nil
	}

	seen := make(map[string]bool, len(stored))
	for _, st := range stored {
		seen[st.DriverID+"|"+st.Date.Format(shared.DayFormat)] = true
	}

	days, err := s.repo.DeliveryDays(ctx, start, end, driverID)
	if err != nil {
		return nil, err
	}
	merged := stored
	for _, d := range days {
		if seen[d.DriverID+"|"+d.Day.Format(shared.DayFormat)] {
			continue
		}
		merged = append(merged, DayStatus{
			ID:         syntheticID(d.DriverID, d.Day),
			DriverID:   d.DriverID,
			Date:       d.Day,
			Status:     StatusPending,
			TotalCash:  d.CashTotal,
			Source:     SourceDelivery,
			DriverName: d.DriverName,
		})
	}
	sort.Slice(merged, func(i, j int) bool {
		if !merged[i].Date.Equal(merged[j].Date) {
			return merged[i].Date.After(merged[j].Date)
		}
		return merged[i].DriverName < merged[j].DriverName
	})
	return merged, nil
}

// TotalCashPaid sums declared cash across all drivers for one day.
func (s *Service) TotalCashPaid(ctx context.Context, day time.Time) (float64, error) {
	return s.repo.TotalCashPaid(ctx, day)
}
