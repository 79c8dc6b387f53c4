package users

import (
	"time"

	"github.com/shelfwise/shelfwise/internal/shared"
)

// User is the management view of an account.
type User struct {
	ID         int64       `json:"id"`
	Username   string      `json:"username"`
	Email      string      `json:"email"`
	FirstName  string      `json:"firstName"`
	LastName   string      `json:"lastName"`
	Role       shared.Role `json:"role"`
	StoreID    int64       `json:"storeId"`
	Department string      `json:"department,omitempty"`
	IsActive   bool        `json:"isActive"`
	CreatedAt  time.Time   `json:"createdAt"`
	UpdatedAt  time.Time   `json:"updatedAt"`
}

// ManagerInfo is the contact card an employee sees for their manager.
type ManagerInfo struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}
