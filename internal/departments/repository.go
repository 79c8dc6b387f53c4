package departments

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shelfwise/shelfwise/internal/shared"
)

// RepositoryPort defines data access methods for departments.
type RepositoryPort interface {
	List(ctx context.Context, storeID int64) ([]Department, error)
	Get(ctx context.Context, id int64) (*Department, error)
	Create(ctx context.Context, dept *Department) (*Department, error)
	Update(ctx context.Context, dept *Department) (*Department, error)
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

const deptColumns = `id, store_id, name, COALESCE(description, ''), created_at, updated_at`

func scanDept(row pgx.Row) (*Department, error) {
	var d Department
	err := row.Scan(&d.ID, &d.StoreID, &d.Name, &d.Description, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.NotFound("department not found")
		}
		return nil, err
	}
	return &d, nil
}

// List returns the departments of a store.
func (r *Repository) List(ctx context.Context, storeID int64) ([]Department, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+deptColumns+` FROM departments WHERE store_id = $1 ORDER BY name`, storeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var depts []Department
	for rows.Next() {
		d, err := scanDept(rows)
		if err != nil {
			return nil, err
		}
		depts = append(depts, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return depts, nil
}

// Get fetches a department by primary key.
func (r *Repository) Get(ctx context.Context, id int64) (*Department, error) {
	return scanDept(r.pool.QueryRow(ctx,
		`SELECT `+deptColumns+` FROM departments WHERE id = $1`, id))
}

// Create inserts a department.
func (r *Repository) Create(ctx context.Context, dept *Department) (*Department, error) {
	now := time.Now().UTC()
	created, err := scanDept(r.pool.QueryRow(ctx,
		`INSERT INTO departments (store_id, name, description, created_at, updated_at)
		 VALUES ($1, $2, NULLIF($3, ''), $4, $4)
		 RETURNING `+deptColumns,
		dept.StoreID, dept.Name, dept.Description, now))
	if err != nil {
		return nil, mapDuplicate(err)
	}
	return created, nil
}

// Update persists department changes.
func (r *Repository) Update(ctx context.Context, dept *Department) (*Department, error) {
	updated, err := scanDept(r.pool.QueryRow(ctx,
		`UPDATE departments
		 SET name = $2, description = NULLIF($3, ''), updated_at = $4
		 WHERE id = $1
		 RETURNING `+deptColumns,
		dept.ID, dept.Name, dept.Description, time.Now().UTC()))
	if err != nil {
		return nil, mapDuplicate(err)
	}
	return updated, nil
}

// Delete removes a department.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM departments WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.NotFound("department not found")
	}
	return nil
}

func mapDuplicate(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return shared.Validation("department name already in use")
	}
	return err
}

var _ RepositoryPort = (*Repository)(nil)
