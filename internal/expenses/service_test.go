package expenses

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/kurier-ops/kurier-ops/internal/platform/httpx"
)

type fakeRepo struct {
	expenses map[string]Expense
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{expenses: map[string]Expense{}}
}

func (f *fakeRepo) List(_ context.Context, day *time.Time) ([]Expense, error) {
	var out []Expense
	for _, e := range f.expenses {
		if day != nil && !e.ExpenseDate.Truncate(24*time.Hour).Equal(day.Truncate(24*time.Hour)) {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (f *fakeRepo) ListByDriverDay(_ context.Context, driverID string, day time.Time) ([]Expense, error) {
	var out []Expense
	for _, e := range f.expenses {
		if e.DriverID == driverID && e.ExpenseDate.Truncate(24*time.Hour).Equal(day.Truncate(24*time.Hour)) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeRepo) Get(_ context.Context, id string) (*Expense, error) {
	e, ok := f.expenses[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &e, nil
}

func (f *fakeRepo) Create(_ context.Context, e Expense) error {
	f.expenses[e.ID] = e
	return nil
}

func (f *fakeRepo) Update(_ context.Context, e Expense) error {
	if _, ok := f.expenses[e.ID]; !ok {
		return ErrNotFound
	}
	f.expenses[e.ID] = e
	return nil
}

func (f *fakeRepo) Delete(_ context.Context, id string) error {
	if _, ok := f.expenses[id]; !ok {
		return ErrNotFound
	}
	delete(f.expenses, id)
	return nil
}

func (f *fakeRepo) TotalByDriverDay(_ context.Context, driverID string, day time.Time) (float64, error) {
	var total float64
	for _, e := range f.expenses {
		if e.DriverID == driverID && e.ExpenseDate.Truncate(24*time.Hour).Equal(day.Truncate(24*time.Hour)) {
			total += e.Amount
		}
	}
	return total, nil
}

func TestCreateExpense(t *testing.T) {
	svc := NewService(newFakeRepo())

	e, err := svc.Create(context.Background(), CreateExpenseRequest{
		DriverID: "drv-1",
		Type:     "fuel",
		Amount:   120,
	})
	require.NoError(t, err)
	require.Equal(t, TypeFuel, e.Type)
	require.Nil(t, e.Name)
}

func TestCreateExpenseNameOnlyForOther(t *testing.T) {
	svc := NewService(newFakeRepo())
	name := "parking fine"

	e, err := svc.Create(context.Background(), CreateExpenseRequest{
		DriverID: "drv-1",
		Type:     "fuel",
		Name:     &name,
		Amount:   50,
	})
	require.NoError(t, err)
	require.Nil(t, e.Name)

	e, err = svc.Create(context.Background(), CreateExpenseRequest{
		DriverID: "drv-1",
		Type:     "other",
		Name:     &name,
		Amount:   50,
	})
	require.NoError(t, err)
	require.NotNil(t, e.Name)
	require.Equal(t, "parking fine", *e.Name)
}

func TestUpdateExpenseClearsNameOnTypeChange(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)
	name := "carwash"

	created, err := svc.Create(context.Background(), CreateExpenseRequest{
		DriverID: "drv-1",
		Type:     "other",
		Name:     &name,
		Amount:   30,
	})
	require.NoError(t, err)

	newType := "service"
	updated, err := svc.Update(context.Background(), created.ID, UpdateExpenseRequest{Type: &newType})
	require.NoError(t, err)
	require.Equal(t, TypeService, updated.Type)
	require.Nil(t, updated.Name)
}

func TestUpdateExpenseInvalidDate(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)

	created, err := svc.Create(context.Background(), CreateExpenseRequest{
		DriverID: "drv-1",
		Type:     "advance",
		Amount:   200,
	})
	require.NoError(t, err)

	bad := "14/03/2026"
	_, err = svc.Update(context.Background(), created.ID, UpdateExpenseRequest{ExpenseDate: &bad})
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestDeleteExpenseUnknown(t *testing.T) {
	svc := NewService(newFakeRepo())
	require.ErrorIs(t, svc.Delete(context.Background(), "missing"), httpx.ErrNotFound)
}
