package shared

// Role distinguishes the two account levels the system knows about.
type Role string

const (
	// RoleManager owns a store and administers its employees.
	RoleManager Role = "Manager"
	// RoleEmployee is a subordinate account scoped to a manager's store.
	RoleEmployee Role = "Employee"
)

// Principal is the request-scoped result of successful token verification.
// It lives in the request context only and is never persisted. Role and
// store are read live from the credential store at verification time, not
// taken from the token.
type Principal struct {
	UserID   int64
	Username string
	Role     Role
	StoreID  int64
}

// IsManager reports whether the principal holds the privileged role.
func (p Principal) IsManager() bool { return p.Role == RoleManager }
