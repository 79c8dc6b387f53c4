package users

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shelfwise/shelfwise/internal/shared"
)

// RepositoryPort defines data access methods for users.
type RepositoryPort interface {
	GetByUsername(ctx context.Context, username string) (*User, error)
	GetByID(ctx context.Context, id int64) (*User, error)
	ListEmployees(ctx context.Context, storeID int64) ([]User, error)
	FindManager(ctx context.Context, storeID int64) (*ManagerInfo, error)
	UpdateProfile(ctx context.Context, id int64, firstName, lastName, email, department string) (*User, error)
	Delete(ctx context.Context, id int64) error
}

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const userColumns = `id, username, email, first_name, last_name, role, store_id,
	COALESCE(department, ''), is_active, created_at, updated_at`

func scanUser(row pgx.Row) (*User, error) {
	var u User
	err := row.Scan(
		&u.ID, &u.Username, &u.Email, &u.FirstName, &u.LastName,
		&u.Role, &u.StoreID, &u.Department, &u.IsActive, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.NotFound("user not found")
		}
		return nil, err
	}
	return &u, nil
}

// GetByUsername fetches a user by username.
func (r *Repository) GetByUsername(ctx context.Context, username string) (*User, error) {
	return scanUser(r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = $1`, username))
}

// GetByID fetches a user by primary key.
func (r *Repository) GetByID(ctx context.Context, id int64) (*User, error) {
	return scanUser(r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

// ListEmployees returns the employee accounts of a store.
func (r *Repository) ListEmployees(ctx context.Context, storeID int64) ([]User, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+userColumns+` FROM users WHERE store_id = $1 AND role = $2 ORDER BY id`,
		storeID, shared.RoleEmployee)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var employees []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		employees = append(employees, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return employees, nil
}

// FindManager returns the manager contact card for a store.
func (r *Repository) FindManager(ctx context.Context, storeID int64) (*ManagerInfo, error) {
	var info ManagerInfo
	err := r.pool.QueryRow(ctx,
		`SELECT username, email, first_name, last_name FROM users WHERE store_id = $1 AND role = $2 LIMIT 1`,
		storeID, shared.RoleManager,
	).Scan(&info.Username, &info.Email, &info.FirstName, &info.LastName)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.NotFound("manager not found")
		}
		return nil, err
	}
	return &info, nil
}

// UpdateProfile updates mutable profile fields. Credential state is
// untouched, so outstanding tokens stay valid.
func (r *Repository) UpdateProfile(ctx context.Context, id int64, firstName, lastName, email, department string) (*User, error) {
	return scanUser(r.pool.QueryRow(ctx,
		`UPDATE users
		 SET first_name = $2, last_name = $3, email = $4, department = NULLIF($5, ''), updated_at = $6
		 WHERE id = $1
		 RETURNING `+userColumns,
		id, firstName, lastName, email, department, time.Now().UTC()))
}

// Delete removes an account.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.NotFound("user not found")
	}
	return nil
}

var _ RepositoryPort = (*Repository)(nil)
