package products

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/kurier-ops/kurier-ops/internal/platform/httpx"
)

type fakeRepo struct {
	products map[string]Product
	logs     map[string][]StockLog
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{products: map[string]Product{}, logs: map[string][]StockLog{}}
}

func (f *fakeRepo) List(_ context.Context) ([]Product, error) {
	var out []Product
	for _, p := range f.products {
		out = append(out, p)
	}
	return out, nil
}

func (f *fakeRepo) Get(_ context.Context, id string) (*Product, error) {
	p, ok := f.products[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (f *fakeRepo) Logs(_ context.Context, productID string) ([]StockLog, error) {
	logs := f.logs[productID]
	// newest first
	out := make([]StockLog, len(logs))
	for i, l := range logs {
		out[len(logs)-1-i] = l
	}
	return out, nil
}

func (f *fakeRepo) Create(_ context.Context, p Product, initialLog *StockLog) error {
	f.products[p.ID] = p
	if initialLog != nil {
		f.logs[p.ID] = append(f.logs[p.ID], *initialLog)
	}
	return nil
}

func (f *fakeRepo) Update(_ context.Context, p Product, logs []StockLog) (*Product, error) {
	current, ok := f.products[p.ID]
	if !ok {
		return nil, ErrNotFound
	}
	next := current.StockQuantity
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
	f.products[p.ID] = p
	f.logs[p.ID] = append(f.logs[p.ID], logs...)
	return &p, nil
}

func (f *fakeRepo) Delete(_ context.Context, id string) error {
	if _, ok := f.products[id]; !ok {
		return ErrNotFound
	}
	delete(f.products, id)
	delete(f.logs, id)
	return nil
}

func TestCreateProductLogsOpeningStock(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)

	p, err := svc.Create(context.Background(), CreateProductRequest{
		Name:          "Spring water 5L",
		Price:         12.5,
		StockQuantity: 40,
		Actor:         "magda",
	})
	require.NoError(t, err)
	require.EqualValues(t, 40, p.StockQuantity)

	require.Len(t, repo.logs[p.ID], 1)
	require.Equal(t, LogIncome, repo.logs[p.ID][0].Type)
	require.EqualValues(t, 40, repo.logs[p.ID][0].Value)
	require.Equal(t, "magda", repo.logs[p.ID][0].Actor)
}

func TestCreateProductZeroStockNoLog(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)

	p, err := svc.Create(context.Background(), CreateProductRequest{
		Name:  "Gas bottle",
		Price: 60,
		Actor: "magda",
	})
	require.NoError(t, err)
	require.Empty(t, repo.logs[p.ID])
}

func TestUpdateProductStockMovements(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)

	p, err := svc.Create(context.Background(), CreateProductRequest{
		Name:          "Spring water 5L",
		Price:         12.5,
		StockQuantity: 40,
		Actor:         "magda",
	})
	require.NoError(t, err)

	income := int64(10)
	outcome := int64(25)
	updated, err := svc.Update(context.Background(), p.ID, UpdateProductRequest{
		StockIncome:  &income,
		StockOutcome: &outcome,
		Actor:        "piotr",
	})
	require.NoError(t, err)
	require.EqualValues(t, 25, updated.StockQuantity)
	require.Len(t, repo.logs[p.ID], 3)
}

func TestUpdateProductOutcomeExceedsStock(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)

	p, err := svc.Create(context.Background(), CreateProductRequest{
		Name:          "Spring water 5L",
		Price:         12.5,
		StockQuantity: 5,
		Actor:         "magda",
	})
	require.NoError(t, err)

	outcome := int64(6)
	_, err = svc.Update(context.Background(), p.ID, UpdateProductRequest{
		StockOutcome: &outcome,
		Actor:        "piotr",
	})
	require.ErrorIs(t, err, ErrInsufficientStock)
	require.ErrorIs(t, err, httpx.ErrUnprocessable)

	// no partial write
	require.Len(t, repo.logs[p.ID], 1)
	current, err := svc.Detail(context.Background(), p.ID)
	require.NoError(t, err)
	require.EqualValues(t, 5, current.StockQuantity)
}

func TestDetailOrdersLogsNewestFirst(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)

	p, err := svc.Create(context.Background(), CreateProductRequest{
		Name:          "Spring water 5L",
		Price:         12.5,
		StockQuantity: 10,
		Actor:         "magda",
	})
	require.NoError(t, err)

	time.Sleep(time.Millisecond)
	income := int64(3)
	_, err = svc.Update(context.Background(), p.ID, UpdateProductRequest{StockIncome: &income, Actor: "piotr"})
	require.NoError(t, err)

	detail, err := svc.Detail(context.Background(), p.ID)
	require.NoError(t, err)
	require.Len(t, detail.Logs, 2)
	require.Equal(t, "piotr", detail.Logs[0].Actor)
}
