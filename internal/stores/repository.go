package stores

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shelfwise/shelfwise/internal/shared"
)

// RepositoryPort defines data access methods for stores.
type RepositoryPort interface {
	GetByID(ctx context.Context, id int64) (*Store, error)
	Update(ctx context.Context, store *Store) (*Store, error)
	NameExists(ctx context.Context, folded string) (bool, error)
}

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const storeColumns = `id, name, COALESCE(description, ''), COALESCE(address, ''), COALESCE(phone, ''), created_at, updated_at`

func scanStore(row pgx.Row) (*Store, error) {
	var s Store
	err := row.Scan(&s.ID, &s.Name, &s.Description, &s.Address, &s.Phone, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.NotFound("store not found")
		}
		return nil, err
	}
	return &s, nil
}

// GetByID fetches a store by primary key.
func (r *Repository) GetByID(ctx context.Context, id int64) (*Store, error) {
	return scanStore(r.pool.QueryRow(ctx,
		`SELECT `+storeColumns+` FROM stores WHERE id = $1`, id))
}

// Update persists mutable store fields.
func (r *Repository) Update(ctx context.Context, store *Store) (*Store, error) {
	return scanStore(r.pool.QueryRow(ctx,
		`UPDATE stores
		 SET name = $2, description = $3, address = $4, phone = $5, updated_at = $6
		 WHERE id = $1
		 RETURNING `+storeColumns,
		store.ID, store.Name, store.Description, store.Address, store.Phone, time.Now().UTC()))
}

// NameExists reports whether a store name is taken, compared case-folded.
func (r *Repository) NameExists(ctx context.Context, folded string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM stores WHERE lower(name) = lower($1))`, folded).Scan(&exists)
	return exists, err
}

var _ RepositoryPort = (*Repository)(nil)
