package users

import (
	"context"

	"github.com/shelfwise/shelfwise/internal/shared"
)

// Service handles user management business logic.
type Service struct {
	repo RepositoryPort
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// Profile returns the caller's own account.
func (s *Service) Profile(ctx context.Context, principal shared.Principal) (*User, error) {
	return s.repo.GetByUsername(ctx, principal.Username)
}

// ListEmployees returns the employees of the manager's store.
func (s *Service) ListEmployees(ctx context.Context, manager shared.Principal) ([]User, error) {
	return s.repo.ListEmployees(ctx, manager.StoreID)
}

// ManagerInfo returns the manager contact card for the caller's store.
func (s *Service) ManagerInfo(ctx context.Context, principal shared.Principal) (*ManagerInfo, error) {
	return s.repo.FindManager(ctx, principal.StoreID)
}

// UpdateEmployeeInput carries the mutable employee profile fields.
type UpdateEmployeeInput struct {
	FirstName  string
	LastName   string
	Email      string
	Department string
}

// UpdateEmployee updates an employee's profile. The target must be an
// employee in the manager's store.
func (s *Service) UpdateEmployee(ctx context.Context, manager shared.Principal, employeeID int64, input UpdateEmployeeInput) (*User, error) {
	employee, err := s.repo.GetByID(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	if err := s.checkManages(manager, employee); err != nil {
		return nil, err
	}
	return s.repo.UpdateProfile(ctx, employeeID, input.FirstName, input.LastName, input.Email, input.Department)
}

// DeleteEmployee removes an employee account from the manager's store.
func (s *Service) DeleteEmployee(ctx context.Context, manager shared.Principal, employeeID int64) error {
	employee, err := s.repo.GetByID(ctx, employeeID)
	if err != nil {
		return err
	}
	if err := s.checkManages(manager, employee); err != nil {
		return err
	}
	return s.repo.Delete(ctx, employeeID)
}

func (s *Service) checkManages(manager shared.Principal, target *User) error {
	if target.Role != shared.RoleEmployee {
		return shared.General("only employee accounts can be managed")
	}
	if target.StoreID != manager.StoreID {
		return shared.Unauthorized("employee belongs to another store")
	}
	return nil
}
