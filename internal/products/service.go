package products

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// RepositoryPort defines data access methods for products.
type RepositoryPort interface {
	List(ctx context.Context) ([]Product, error)
	Get(ctx context.Context, id string) (*Product, error)
	Logs(ctx context.Context, productID string) ([]StockLog, error)
	Create(ctx context.Context, p Product, initialLog *StockLog) error
	Update(ctx context.Context, p Product, logs []StockLog) (*Product, error)
	Delete(ctx context.Context, id string) error
}

// Service handles product business logic.
type Service struct {
	repo RepositoryPort
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// List returns all products.
func (s *Service) List(ctx context.Context) ([]Product, error) {
	return s.repo.List(ctx)
}

// Detail returns a product with its movement history.
func (s *Service) Detail(ctx context.Context, id string) (*ProductDetail, error) {
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	logs, err := s.repo.Logs(ctx, id)
	if err != nil {
		return nil, err
	}
	if logs == nil {
		logs = []StockLog{}
	}
	return &ProductDetail{Product: *p, Logs: logs}, nil
}

// Create adds a product. Positive opening stock is recorded as an income
// movement.
func (s *Service) Create(ctx context.Context, req CreateProductRequest) (*Product, error) {
	p := Product{
		ID:            uuid.NewString(),
		Name:          req.Name,
		Price:         req.Price,
		Rating:        req.Rating,
		StockQuantity: req.StockQuantity,
		CreatedAt:     time.Now().UTC(),
	}
	var initial *StockLog
	if req.StockQuantity > 0 {
		initial = &StockLog{
			ID:        uuid.NewString(),
			ProductID: p.ID,
			Type:      LogIncome,
			Value:     req.StockQuantity,
			Actor:     req.Actor,
			CreatedAt: time.Now().UTC(),
		}
	}
	if err := s.repo.Create(ctx, p, initial); err != nil {
		return nil, err
	}
	return &p, nil
}

// Update applies field changes and stock movements.
func (s *Service) Update(ctx context.Context, id string, req UpdateProductRequest) (*Product, error) {
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		current.Name = *req.Name
	}
	if req.Price != nil {
		current.Price = *req.Price
	}
	if req.Rating != nil {
		current.Rating = req.Rating
	}

	var logs []StockLog
	if req.StockIncome != nil {
		logs = append(logs, StockLog{
			ID:        uuid.NewString(),
			ProductID: id,
			Type:      LogIncome,
			Value:     *req.StockIncome,
			Actor:     req.Actor,
			CreatedAt: time.Now().UTC(),
		})
	}
	if req.StockOutcome != nil {
		logs = append(logs, StockLog{
			ID:        uuid.NewString(),
			ProductID: id,
			Type:      LogOutcome,
			Value:     *req.StockOutcome,
			Actor:     req.Actor,
			CreatedAt: time.Now().UTC(),
		})
	}
	return s.repo.Update(ctx, *current, logs)
}

// Delete removes a product and its logs.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}
