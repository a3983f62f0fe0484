package cashdesk

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/kurier-ops/kurier-ops/internal/platform/httpx"
	"github.com/kurier-ops/kurier-ops/internal/shared"
)

type fakeRepo struct {
	statuses map[string]DayStatus // keyed driverID|day
	days     []DeliveryDay
	cash     map[string]float64 // Σ cash_amount per driverID|day
	extra    map[string]float64
	expenses map[string]float64
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		statuses: map[string]DayStatus{},
		cash:     map[string]float64{},
		extra:    map[string]float64{},
		expenses: map[string]float64{},
	}
}

func key(driverID string, day time.Time) string {
	return driverID + "|" + day.UTC().Format(shared.DayFormat)
}

func (f *fakeRepo) Get(_ context.Context, driverID string, day time.Time) (*DayStatus, error) {
	s, ok := f.statuses[key(driverID, day)]
	if !ok {
		return nil, ErrNotFound
	}
	return &s, nil
}

func (f *fakeRepo) Upsert(_ context.Context, s DayStatus, expected *time.Time) (*DayStatus, error) {
	k := key(s.DriverID, s.Date)
	if current, ok := f.statuses[k]; ok {
		if expected != nil && !current.UpdatedAt.Equal(*expected) {
			return nil, ErrStale
		}
		s.ID = current.ID
	}
	s.UpdatedAt = time.Now().UTC()
	s.Source = SourceManual
	f.statuses[k] = s
	return &s, nil
}

func (f *fakeRepo) ListRange(_ context.Context, start, end time.Time, driverID *string) ([]DayStatus, error) {
	var out []DayStatus
	for _, s := range f.statuses {
		if s.Date.Before(start) || !s.Date.Before(end) {
			continue
		}
		if driverID != nil && s.DriverID != *driverID {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

func (f *fakeRepo) DeliveryDays(_ context.Context, start, end time.Time, driverID *string) ([]DeliveryDay, error) {
	var out []DeliveryDay
	for _, d := range f.days {
		if d.Day.Before(start) || !d.Day.Before(end) {
			continue
		}
		if driverID != nil && d.DriverID != *driverID {
			continue
		}
		out = append(out, d)
	}
	return out, nil
}

func (f *fakeRepo) DayAggregates(_ context.Context, driverID string, day time.Time) (float64, float64, float64, error) {
	k := key(driverID, day)
	return f.cash[k], f.extra[k], f.expenses[k], nil
}

func (f *fakeRepo) TotalCashPaid(_ context.Context, day time.Time) (float64, error) {
	var total float64
	for _, s := range f.statuses {
		if s.Date.UTC().Format(shared.DayFormat) == day.UTC().Format(shared.DayFormat) {
			total += s.CashPaid
		}
	}
	return total, nil
}

func TestCountedTotal(t *testing.T) {
	b := Banknotes{500: 1, 100: 2, 20: 1}
	require.InDelta(t, 720, b.CountedTotal(), 0.001)
}

func TestUpsertComputesBalance(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)

	day := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	k := key("drv-1", day)
	repo.cash[k] = 650
	repo.extra[k] = 100
	repo.expenses[k] = 30

	view, err := svc.Upsert(context.Background(), UpsertDayStatusRequest{
		DriverID:  "drv-1",
		Date:      "2026-03-14",
		Status:    "PAID_OFF",
		TotalCash: 650,
		CashPaid:  720,
		Banknotes: Banknotes{500: 1, 100: 2, 20: 1},
	})
	require.NoError(t, err)
	require.InDelta(t, 720, view.Balance.NetCashDue, 0.001)
	require.InDelta(t, 720, view.Balance.CountedTotal, 0.001)
	require.True(t, view.Balance.Balanced)
	// stored status stays what the user asserted
	require.Equal(t, StatusPaidOff, view.Status)
}

func TestUpsertReportsSignedDifference(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)

	day := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	repo.cash[key("drv-1", day)] = 500

	view, err := svc.Upsert(context.Background(), UpsertDayStatusRequest{
		DriverID:  "drv-1",
		Date:      "2026-03-14",
		Status:    "PARTIALLY_PAID",
		Banknotes: Banknotes{100: 4}, // counted 400, due 500
	})
	require.NoError(t, err)
	require.InDelta(t, 100, view.Balance.Difference, 0.001)
	require.False(t, view.Balance.Balanced)
}

func TestUpsertRejectsUnknownDenomination(t *testing.T) {
	svc := NewService(newFakeRepo())

	_, err := svc.Upsert(context.Background(), UpsertDayStatusRequest{
		DriverID:  "drv-1",
		Date:      "2026-03-14",
		Status:    "PENDING",
		Banknotes: Banknotes{25: 3},
	})
	require.ErrorIs(t, err, ErrUnknownDenomination)
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestUpsertStalePrecondition(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)

	first, err := svc.Upsert(context.Background(), UpsertDayStatusRequest{
		DriverID: "drv-1",
		Date:     "2026-03-14",
		Status:   "PENDING",
	})
	require.NoError(t, err)

	// second writer wins
	_, err = svc.Upsert(context.Background(), UpsertDayStatusRequest{
		DriverID: "drv-1",
		Date:     "2026-03-14",
		Status:   "PAID_OFF",
	})
	require.NoError(t, err)

	stale := first.UpdatedAt
	_, err = svc.Upsert(context.Background(), UpsertDayStatusRequest{
		DriverID:          "drv-1",
		Date:              "2026-03-14",
		Status:            "DISPUTED",
		ExpectedUpdatedAt: &stale,
	})
	require.ErrorIs(t, err, httpx.ErrConflict)
}

func TestGetSynthesizesPendingView(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)

	day := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	repo.days = []DeliveryDay{{DriverID: "drv-1", DriverName: "Adam", Day: day, CashTotal: 300}}
	repo.cash[key("drv-1", day)] = 300

	view, err := svc.Get(context.Background(), "drv-1", day)
	require.NoError(t, err)
	require.Equal(t, StatusPending, view.Status)
	require.Equal(t, SourceDelivery, view.Source)
	require.Equal(t, "delivery_drv-1_2026-03-14", view.ID)
	require.InDelta(t, 300, view.TotalCash, 0.001)
}

func TestGetWithoutDeliveriesIsNotFound(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)

	day := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	_, err := svc.Get(context.Background(), "drv-1", day)
	require.ErrorIs(t, err, httpx.ErrNotFound)
}

func TestListMergedSynthesizesMissingDays(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)

	day := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	repo.days = []DeliveryDay{
		{DriverID: "drv-1", DriverName: "Adam", Day: day, CashTotal: 200},
		{DriverID: "drv-2", DriverName: "Beata", Day: day, CashTotal: 150},
	}
	_, err := svc.Upsert(context.Background(), UpsertDayStatusRequest{
		DriverID: "drv-1",
		Date:     "2026-03-14",
		Status:   "PAID_OFF",
	})
	require.NoError(t, err)

	merged, err := svc.ListMerged(context.Background(), day, day.Add(24*time.Hour), nil, "")
	require.NoError(t, err)
	require.Len(t, merged, 2)

	sources := map[string]Source{}
	for _, s := range merged {
		sources[s.DriverID] = s.Source
	}
	require.Equal(t, SourceManual, sources["drv-1"])
	require.Equal(t, SourceDelivery, sources["drv-2"])

	// the driver page only wants stored rows
	stored, err := svc.ListMerged(context.Background(), day, day.Add(24*time.Hour), nil, "driver-page")
	require.NoError(t, err)
	require.Len(t, stored, 1)
	require.Equal(t, "drv-1", stored[0].DriverID)
}
