package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/shelfwise/shelfwise/internal/shared"
)

// Service wraps authentication business rules: login, tenant registration
// and employee lifecycle.
type Service struct {
	repo   Repository
	issuer *Issuer
}

// NewService constructs a new Service.
func NewService(repo Repository, issuer *Issuer) *Service {
	return &Service{repo: repo, issuer: issuer}
}

// LoginResult is the login response payload: the minted token plus the
// public user record.
type LoginResult struct {
	Token string     `json:"token"`
	User  PublicUser `json:"user"`
}

// Login validates username/password credentials and mints a token. The hash
// comparison is constant time and never short-circuits on a partial match;
// unknown usernames and wrong passwords are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	identity, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrIdentityNotFound) {
			return nil, shared.Unauthorized("invalid username or password")
		}
		return nil, fmt.Errorf("auth: login lookup: %w", err)
	}
	if !identity.IsActive {
		return nil, shared.Unauthorized("invalid username or password")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(identity.PasswordHash), []byte(password)); err != nil {
		return nil, shared.Unauthorized("invalid username or password")
	}

	token, err := s.issuer.Issue(identity)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Token: token, User: identity.Public()}, nil
}

// RegisterManagerInput carries the fields for a tenant registration.
type RegisterManagerInput struct {
	Username     string
	Password     string
	Email        string
	FirstName    string
	LastName     string
	StoreName    string
	StoreAddress string
	StorePhone   string
}

// RegisterResult bundles the created manager and its store id.
type RegisterResult struct {
	User    PublicUser `json:"user"`
	StoreID int64      `json:"storeId"`
}

// RegisterManager creates a store and its owning manager account
// atomically. Only manager accounts can be self-registered; employees are
// created by their manager.
func (s *Service) RegisterManager(ctx context.Context, input RegisterManagerInput) (*RegisterResult, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, shared.Internal("could not hash password", err)
	}

	identity := &Identity{
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: string(hash),
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Role:         shared.RoleManager,
	}
	store := NewStoreAccount{
		Name:        input.StoreName,
		Description: "Store: " + input.StoreName,
		Address:     input.StoreAddress,
		Phone:       input.StorePhone,
	}

	created, storeID, err := s.repo.CreateManagerWithStore(ctx, identity, store)
	if err != nil {
		return nil, err
	}
	return &RegisterResult{User: created.Public(), StoreID: storeID}, nil
}

// CreateEmployeeInput carries the fields for an employee account.
type CreateEmployeeInput struct {
	Username   string
	Password   string
	Email      string
	FirstName  string
	LastName   string
	Department string
}

// CreateEmployee creates a subordinate account in the calling manager's
// store. The store is inherited from the principal, never taken from input.
func (s *Service) CreateEmployee(ctx context.Context, manager shared.Principal, input CreateEmployeeInput) (*PublicUser, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, shared.Internal("could not hash password", err)
	}

	identity := &Identity{
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: string(hash),
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Role:         shared.RoleEmployee,
		StoreID:      manager.StoreID,
		Department:   input.Department,
	}
	created, err := s.repo.CreateEmployee(ctx, identity)
	if err != nil {
		return nil, err
	}
	user := created.Public()
	return &user, nil
}

// DeleteEmployee removes an employee account from the manager's store.
// Manager accounts and accounts belonging to other stores cannot be
// deleted through this path.
func (s *Service) DeleteEmployee(ctx context.Context, manager shared.Principal, employeeID int64) error {
	employee, err := s.repo.FindByID(ctx, employeeID)
	if err != nil {
		if errors.Is(err, ErrIdentityNotFound) {
			return shared.NotFound("employee not found")
		}
		return fmt.Errorf("auth: delete employee lookup: %w", err)
	}
	if employee.Role != shared.RoleEmployee {
		return shared.General("only employee accounts can be deleted")
	}
	if employee.StoreID != manager.StoreID {
		return shared.Unauthorized("employee belongs to another store")
	}
	return s.repo.DeleteUser(ctx, employeeID)
}

// ChangePassword verifies the current password, stores the new hash and
// advances the credential epoch. Every token issued before the change is
// invalid on its next use.
func (s *Service) ChangePassword(ctx context.Context, principal shared.Principal, current, next string) error {
	identity, err := s.repo.FindByID(ctx, principal.UserID)
	if err != nil {
		if errors.Is(err, ErrIdentityNotFound) {
			return shared.Unauthorized("account no longer exists")
		}
		return fmt.Errorf("auth: change password lookup: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(identity.PasswordHash), []byte(current)); err != nil {
		return shared.Unauthorized("current password is incorrect")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return shared.Internal("could not hash password", err)
	}
	return s.repo.UpdatePassword(ctx, identity.ID, string(hash), time.Now())
}
