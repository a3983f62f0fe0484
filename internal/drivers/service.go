package drivers

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// RepositoryPort defines data access methods for drivers.
type RepositoryPort interface {
	List(ctx context.Context) ([]Driver, error)
	Get(ctx context.Context, id string) (*Driver, error)
	Create(ctx context.Context, d Driver) error
	Update(ctx context.Context, id string, name string, phone *string) (*Driver, error)
	Delete(ctx context.Context, id string) error
}

// Service handles driver business logic.
type Service struct {
	repo RepositoryPort
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// List returns the roster.
func (s *Service) List(ctx context.Context) ([]Driver, error) {
	return s.repo.List(ctx)
}

// Get returns one driver.
func (s *Service) Get(ctx context.Context, id string) (*Driver, error) {
	return s.repo.Get(ctx, id)
}

// Create registers a new driver.
func (s *Service) Create(ctx context.Context, req CreateDriverRequest) (*Driver, error) {
	d := Driver{
		ID:        uuid.NewString(),
		Name:      req.Name,
		Phone:     req.Phone,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, d); err != nil {
		return nil, err
	}
	return &d, nil
}

// Update applies partial changes to a driver.
func (s *Service) Update(ctx context.Context, id string, req UpdateDriverRequest) (*Driver, error) {
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	name := current.Name
	if req.Name != nil {
		name = *req.Name
	}
	phone := current.Phone
	if req.Phone != nil {
		phone = req.Phone
	}
	return s.repo.Update(ctx, id, name, phone)
}

// Delete removes a driver and everything recorded against them.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}
