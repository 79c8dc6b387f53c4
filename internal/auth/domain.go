package auth

import (
	"time"

	"github.com/shelfwise/shelfwise/internal/shared"
)

// Identity is a user account as owned by the credential store. The auth
// core only reads it; writes go through the registration and password paths.
type Identity struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	Role         shared.Role
	StoreID      int64
	Department   string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time

	// CredentialChangedAt is the credential epoch: it advances on every
	// password change, which implicitly revokes every token issued before
	// the change. Profile edits leave it untouched.
	CredentialChangedAt time.Time
}

// PublicUser is the client-visible projection of an identity.
type PublicUser struct {
	ID         int64       `json:"id"`
	Username   string      `json:"username"`
	Email      string      `json:"email"`
	FirstName  string      `json:"firstName"`
	LastName   string      `json:"lastName"`
	Role       shared.Role `json:"role"`
	StoreID    int64       `json:"storeId"`
	Department string      `json:"department,omitempty"`
	CreatedAt  time.Time   `json:"createdAt"`
}

// Public strips credential material from the identity.
func (i *Identity) Public() PublicUser {
	return PublicUser{
		ID:         i.ID,
		Username:   i.Username,
		Email:      i.Email,
		FirstName:  i.FirstName,
		LastName:   i.LastName,
		Role:       i.Role,
		StoreID:    i.StoreID,
		Department: i.Department,
		CreatedAt:  i.CreatedAt,
	}
}
