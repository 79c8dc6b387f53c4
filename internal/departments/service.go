package departments

import (
	"context"

	"github.com/shelfwise/shelfwise/internal/shared"
)

// Service handles department business logic. Every operation is scoped to
// the caller's store.
type Service struct {
	repo RepositoryPort
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// List returns the departments of the caller's store.
func (s *Service) List(ctx context.Context, principal shared.Principal) ([]Department, error) {
	return s.repo.List(ctx, principal.StoreID)
}

// Get fetches a department, rejecting cross-store access as not found.
func (s *Service) Get(ctx context.Context, principal shared.Principal, id int64) (*Department, error) {
	dept, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if dept.StoreID != principal.StoreID {
		return nil, shared.NotFound("department not found")
	}
	return dept, nil
}

// Input carries the writable department fields.
type Input struct {
	Name        string
	Description string
}

// Create adds a department to the manager's store.
func (s *Service) Create(ctx context.Context, manager shared.Principal, input Input) (*Department, error) {
	return s.repo.Create(ctx, &Department{
		StoreID:     manager.StoreID,
		Name:        input.Name,
		Description: input.Description,
	})
}

// Update persists changes to a department in the manager's store.
func (s *Service) Update(ctx context.Context, manager shared.Principal, id int64, input Input) (*Department, error) {
	dept, err := s.Get(ctx, manager, id)
	if err != nil {
		return nil, err
	}
	dept.Name = input.Name
	dept.Description = input.Description
	return s.repo.Update(ctx, dept)
}

// Delete removes a department from the manager's store.
func (s *Service) Delete(ctx context.Context, manager shared.Principal, id int64) error {
	if _, err := s.Get(ctx, manager, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}
