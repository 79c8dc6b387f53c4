package stores

import (
	"context"
	"strings"

	"golang.org/x/text/cases"

	"github.com/shelfwise/shelfwise/internal/shared"
)

// Service handles store business logic.
type Service struct {
	repo RepositoryPort
	fold cases.Caser
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo, fold: cases.Fold()}
}

// Info returns the caller's store.
func (s *Service) Info(ctx context.Context, principal shared.Principal) (*Store, error) {
	return s.repo.GetByID(ctx, principal.StoreID)
}

// UpdateInput carries the mutable store fields.
type UpdateInput struct {
	Name        string
	Description string
	Address     string
	Phone       string
}

// Update persists store changes for the manager's own store. Renaming to a
// name already in use (compared case-folded) is rejected.
func (s *Service) Update(ctx context.Context, manager shared.Principal, input UpdateInput) (*Store, error) {
	current, err := s.repo.GetByID(ctx, manager.StoreID)
	if err != nil {
		return nil, err
	}
	if s.normalize(input.Name) != s.normalize(current.Name) {
		taken, err := s.repo.NameExists(ctx, s.normalize(input.Name))
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, shared.Validation("store name already in use")
		}
	}
	current.Name = input.Name
	current.Description = input.Description
	current.Address = input.Address
	current.Phone = input.Phone
	return s.repo.Update(ctx, current)
}

// CheckName reports whether a store name is still available. Comparison is
// Unicode case-folded so "Şok Market" and "şok market" collide.
func (s *Service) CheckName(ctx context.Context, name string) (bool, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return false, shared.Validation("store name is required")
	}
	taken, err := s.repo.NameExists(ctx, s.normalize(name))
	if err != nil {
		return false, err
	}
	return !taken, nil
}

func (s *Service) normalize(name string) string {
	return s.fold.String(strings.TrimSpace(name))
}
