package deliveries

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kurier-ops/kurier-ops/internal/platform/httpx"
	"github.com/kurier-ops/kurier-ops/internal/shared"
)

// ErrSplitMismatch rejects deliveries whose payment components do not add up
// to the total amount.
var ErrSplitMismatch = fmt.Errorf("deliveries: payment split does not add up to amount: %w", httpx.ErrUnprocessable)

// TxOps are the single-statement primitives available inside one repository
// transaction. The service sequences the delete cascade and the day-level
// bulk operations over them; when any step fails the transaction rolls back
// with no partial state.
type TxOps interface {
	DeliveryDay(ctx context.Context, id string) (driverID string, day time.Time, err error)
	DeleteDelivery(ctx context.Context, id string) error
	CountDriverDay(ctx context.Context, driverID string, day time.Time) (int, error)
	DriverExists(ctx context.Context, id string) (bool, error)
	DayStatusExists(ctx context.Context, driverID string, day time.Time) (bool, error)
	ReassignDeliveries(ctx context.Context, driverID string, day time.Time, newDriverID string) error
	ReassignExpenses(ctx context.Context, driverID string, day time.Time, newDriverID string) error
	ReassignDayStatus(ctx context.Context, driverID string, day time.Time, newDriverID string) error
	ShiftLedgerEntries(ctx context.Context, driverID string, day time.Time, shift time.Duration) error
	ShiftDeliveries(ctx context.Context, driverID string, day time.Time, shift time.Duration) error
	ShiftExpenses(ctx context.Context, driverID string, day time.Time, shift time.Duration) error
	ShiftDayStatus(ctx context.Context, driverID string, day time.Time, shift time.Duration) error
	DeleteDayLedgerEntries(ctx context.Context, driverID string, day time.Time) error
	DeleteDayDeliveries(ctx context.Context, driverID string, day time.Time) error
	DeleteDayExpenses(ctx context.Context, driverID string, day time.Time) error
	DeleteDayStatus(ctx context.Context, driverID string, day time.Time) error
}

// RepositoryPort defines data access methods for deliveries.
type RepositoryPort interface {
	List(ctx context.Context, day *time.Time) ([]Delivery, error)
	Get(ctx context.Context, id string) (*Delivery, error)
	Create(ctx context.Context, d Delivery) error
	Update(ctx context.Context, d Delivery) error
	ListByDriverDay(ctx context.Context, driverID string, day time.Time) ([]Delivery, error)
	ListByClient(ctx context.Context, clientID string) ([]Delivery, error)
	CashTotal(ctx context.Context, driverID string, day time.Time) (float64, error)
	InTx(ctx context.Context, fn func(ops TxOps) error) error
}

// Service handles delivery business logic.
type Service struct {
	repo RepositoryPort
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// List returns deliveries, optionally for one calendar day.
func (s *Service) List(ctx context.Context, day *time.Time) ([]Delivery, error) {
	return s.repo.List(ctx, day)
}

// Get returns one delivery.
func (s *Service) Get(ctx context.Context, id string) (*Delivery, error) {
	return s.repo.Get(ctx, id)
}

func fromInput(req DeliveryInput) (Delivery, error) {
	d := Delivery{
		DriverID:     req.DriverID,
		ClientID:     req.ClientID,
		Amount:       req.Amount,
		CashAmount:   req.CashAmount,
		CardAmount:   req.CardAmount,
		Transfer:     req.Transfer,
		Debt:         req.Debt,
		GoodsAmount:  req.GoodsAmount,
		ExtraPayment: req.ExtraPayment,
		DeliveryDate: time.Now().UTC(),
	}
	if req.DeliveryDate != nil {
		day, err := shared.ParseDay(*req.DeliveryDate)
		if err != nil {
			return d, fmt.Errorf("%w: %s", httpx.ErrValidation, err)
		}
		d.DeliveryDate = day
	}
	if !d.SplitConsistent() {
		return d, ErrSplitMismatch
	}
	return d, nil
}

// Create records a delivery and mirrors its debt and extra payment into the
// client ledger.
func (s *Service) Create(ctx context.Context, req DeliveryInput) (*Delivery, error) {
	d, err := fromInput(req)
	if err != nil {
		return nil, err
	}
	d.ID = uuid.NewString()
	d.CreatedAt = time.Now().UTC()
	d.UpdatedAt = d.CreatedAt
	if err := s.repo.Create(ctx, d); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, d.ID)
}

// Update replaces a delivery and resyncs its ledger rows.
func (s *Service) Update(ctx context.Context, id string, req DeliveryInput) (*Delivery, error) {
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	d, err := fromInput(req)
	if err != nil {
		return nil, err
	}
	d.ID = current.ID
	d.CreatedAt = current.CreatedAt
	if req.DeliveryDate == nil {
		d.DeliveryDate = current.DeliveryDate
	}
	if err := s.repo.Update(ctx, d); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, id)
}

// Delete removes a delivery and, when it was the last one of its driver and
// day, the day's reconciliation row and expenses.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.InTx(ctx, func(ops TxOps) error {
		driverID, day, err := ops.DeliveryDay(ctx, id)
		if err != nil {
			return err
		}
		if err := ops.DeleteDelivery(ctx, id); err != nil {
			return err
		}
		remaining, err := ops.CountDriverDay(ctx, driverID, day)
		if err != nil {
			return err
		}
		if remaining > 0 {
			return nil
		}
		if err := ops.DeleteDayStatus(ctx, driverID, day); err != nil {
			return err
		}
		return ops.DeleteDayExpenses(ctx, driverID, day)
	})
}

// ListByDriverDay returns a driver's deliveries for one day.
func (s *Service) ListByDriverDay(ctx context.Context, driverID string, day time.Time) ([]Delivery, error) {
	return s.repo.ListByDriverDay(ctx, driverID, day)
}

// CashTotal sums the cash collected by one driver on one day.
func (s *Service) CashTotal(ctx context.Context, driverID string, day time.Time) (float64, error) {
	return s.repo.CashTotal(ctx, driverID, day)
}

// ListByClient returns all deliveries for one client.
func (s *Service) ListByClient(ctx context.Context, clientID string) ([]Delivery, error) {
	return s.repo.ListByClient(ctx, clientID)
}

// ReassignDay moves a driver's whole day to another driver in one
// transaction. The source driver's reconciliation row wins when the target
// already has one for the day.
func (s *Service) ReassignDay(ctx context.Context, driverID string, day time.Time, newDriverID string) error {
	if driverID == newDriverID {
		return fmt.Errorf("%w: target driver equals source driver", httpx.ErrValidation)
	}
	return s.repo.InTx(ctx, func(ops TxOps) error {
		exists, err := ops.DriverExists(ctx, newDriverID)
		if err != nil {
			return err
		}
		if !exists {
			return fmt.Errorf("deliveries: target driver: %w", httpx.ErrNotFound)
		}
		if err := ops.ReassignDeliveries(ctx, driverID, day, newDriverID); err != nil {
			return err
		}
		if err := ops.ReassignExpenses(ctx, driverID, day, newDriverID); err != nil {
			return err
		}
		return ops.ReassignDayStatus(ctx, driverID, day, newDriverID)
	})
}

// MoveDay shifts a driver's whole day to another date in one transaction.
func (s *Service) MoveDay(ctx context.Context, driverID string, day time.Time, newDate string) error {
	newDay, err := shared.ParseDay(newDate)
	if err != nil {
		return fmt.Errorf("%w: %s", httpx.ErrValidation, err)
	}
	if shared.TruncateDay(day).Equal(shared.TruncateDay(newDay)) {
		return nil
	}
	shift := shared.TruncateDay(newDay).Sub(shared.TruncateDay(day))
	return s.repo.InTx(ctx, func(ops TxOps) error {
		taken, err := ops.DayStatusExists(ctx, driverID, newDay)
		if err != nil {
			return err
		}
		if taken {
			return fmt.Errorf("deliveries: day status already exists on target date: %w", httpx.ErrConflict)
		}
		if err := ops.ShiftLedgerEntries(ctx, driverID, day, shift); err != nil {
			return err
		}
		if err := ops.ShiftDeliveries(ctx, driverID, day, shift); err != nil {
			return err
		}
		if err := ops.ShiftExpenses(ctx, driverID, day, shift); err != nil {
			return err
		}
		return ops.ShiftDayStatus(ctx, driverID, day, shift)
	})
}

// DeleteDay removes a driver's whole day in one transaction.
func (s *Service) DeleteDay(ctx context.Context, driverID string, day time.Time) error {
	return s.repo.InTx(ctx, func(ops TxOps) error {
		if err := ops.DeleteDayLedgerEntries(ctx, driverID, day); err != nil {
			return err
		}
		if err := ops.DeleteDayDeliveries(ctx, driverID, day); err != nil {
			return err
		}
		if err := ops.DeleteDayExpenses(ctx, driverID, day); err != nil {
			return err
		}
		return ops.DeleteDayStatus(ctx, driverID, day)
	})
}
