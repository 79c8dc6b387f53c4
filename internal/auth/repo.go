package auth

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shelfwise/shelfwise/internal/shared"
)

// NewStoreAccount carries the store fields created together with a manager
// registration.
type NewStoreAccount struct {
	Name        string
	Description string
	Address     string
	Phone       string
}

// Repository defines persistence operations for the auth module.
type Repository interface {
	IdentityStore
	FindByID(ctx context.Context, id int64) (*Identity, error)
	CreateManagerWithStore(ctx context.Context, identity *Identity, store NewStoreAccount) (*Identity, int64, error)
	CreateEmployee(ctx context.Context, identity *Identity) (*Identity, error)
	DeleteUser(ctx context.Context, id int64) error
	UpdatePassword(ctx context.Context, id int64, passwordHash string, changedAt time.Time) error
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const identityColumns = `id, username, email, password_hash, first_name, last_name, role, store_id,
	COALESCE(department, ''), is_active, created_at, updated_at, credential_changed_at`

func scanIdentity(row pgx.Row) (*Identity, error) {
	var ident Identity
	err := row.Scan(
		&ident.ID, &ident.Username, &ident.Email, &ident.PasswordHash,
		&ident.FirstName, &ident.LastName, &ident.Role, &ident.StoreID,
		&ident.Department, &ident.IsActive, &ident.CreatedAt, &ident.UpdatedAt,
		&ident.CredentialChangedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrIdentityNotFound
		}
		return nil, err
	}
	return &ident, nil
}

// FindByUsername fetches an identity by username.
func (r *PGRepository) FindByUsername(ctx context.Context, username string) (*Identity, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+identityColumns+` FROM users WHERE username = $1`, username)
	return scanIdentity(row)
}

// FindByID fetches an identity by primary key.
func (r *PGRepository) FindByID(ctx context.Context, id int64) (*Identity, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+identityColumns+` FROM users WHERE id = $1`, id)
	return scanIdentity(row)
}

// CreateManagerWithStore inserts the store and its manager account in one
// transaction so a half-registered tenant can never exist.
func (r *PGRepository) CreateManagerWithStore(ctx context.Context, identity *Identity, store NewStoreAccount) (*Identity, int64, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, 0, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	now := time.Now().UTC()
	var storeID int64
	err = tx.QueryRow(ctx,
		`INSERT INTO stores (name, description, address, phone, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $5) RETURNING id`,
		store.Name, store.Description, store.Address, store.Phone, now,
	).Scan(&storeID)
	if err != nil {
		return nil, 0, mapDuplicate(err)
	}

	row := tx.QueryRow(ctx,
		`INSERT INTO users (username, email, password_hash, first_name, last_name, role, store_id,
		                    department, is_active, created_at, updated_at, credential_changed_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, NULL, TRUE, $8, $8, $8)
		 RETURNING `+identityColumns,
		identity.Username, identity.Email, identity.PasswordHash,
		identity.FirstName, identity.LastName, identity.Role, storeID, now,
	)
	created, err := scanIdentity(row)
	if err != nil {
		return nil, 0, mapDuplicate(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, 0, err
	}
	return created, storeID, nil
}

// CreateEmployee inserts a subordinate account in the manager's store.
func (r *PGRepository) CreateEmployee(ctx context.Context, identity *Identity) (*Identity, error) {
	now := time.Now().UTC()
	row := r.pool.QueryRow(ctx,
		`INSERT INTO users (username, email, password_hash, first_name, last_name, role, store_id,
		                    department, is_active, created_at, updated_at, credential_changed_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, ''), TRUE, $9, $9, $9)
		 RETURNING `+identityColumns,
		identity.Username, identity.Email, identity.PasswordHash,
		identity.FirstName, identity.LastName, identity.Role, identity.StoreID,
		identity.Department, now,
	)
	created, err := scanIdentity(row)
	if err != nil {
		return nil, mapDuplicate(err)
	}
	return created, nil
}

// DeleteUser removes an account.
func (r *PGRepository) DeleteUser(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrIdentityNotFound
	}
	return nil
}

// UpdatePassword stores a new hash and advances the credential epoch, which
// implicitly revokes every previously issued token for the account.
func (r *PGRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string, changedAt time.Time) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET password_hash = $2, credential_changed_at = $3, updated_at = $3 WHERE id = $1`,
		id, passwordHash, changedAt.UTC())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrIdentityNotFound
	}
	return nil
}

// mapDuplicate converts unique violations into client-visible validation
// failures; anything else passes through.
func mapDuplicate(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		switch pgErr.ConstraintName {
		case "users_username_key":
			return shared.Validation("username already in use")
		case "users_email_key":
			return shared.Validation("email already in use")
		case "stores_name_key":
			return shared.Validation("store name already in use")
		}
		return shared.Validation("duplicate entry")
	}
	return err
}

var _ Repository = (*PGRepository)(nil)
