package photos

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shelfwise/shelfwise/internal/shared"
)

// RepositoryPort defines data access methods for photos.
type RepositoryPort interface {
	Create(ctx context.Context, photo *Photo) (*Photo, error)
	Get(ctx context.Context, id int64) (*Photo, error)
	ListByUser(ctx context.Context, userID int64) ([]Photo, error)
	ListByStore(ctx context.Context, storeID int64) ([]Photo, error)
	Delete(ctx context.Context, id int64) error
	SetScore(ctx context.Context, id int64, score float64, analysis string) error
	MarkFailed(ctx context.Context, id int64) error
}

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const photoColumns = `id, user_id, store_id, COALESCE(department, ''), file_name, file_path,
	COALESCE(description, ''), status, score, COALESCE(analysis, ''), created_at`

func scanPhoto(row pgx.Row) (*Photo, error) {
	var p Photo
	err := row.Scan(
		&p.ID, &p.UserID, &p.StoreID, &p.Department, &p.FileName, &p.FilePath,
		&p.Description, &p.Status, &p.Score, &p.Analysis, &p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.NotFound("photo not found")
		}
		return nil, err
	}
	return &p, nil
}

// Create inserts a photo record in pending state.
func (r *Repository) Create(ctx context.Context, photo *Photo) (*Photo, error) {
	return scanPhoto(r.pool.QueryRow(ctx,
		`INSERT INTO photos (user_id, store_id, department, file_name, file_path, description, status, created_at)
		 VALUES ($1, $2, NULLIF($3, ''), $4, $5, NULLIF($6, ''), $7, $8)
		 RETURNING `+photoColumns,
		photo.UserID, photo.StoreID, photo.Department, photo.FileName,
		photo.FilePath, photo.Description, StatusPending, time.Now().UTC()))
}

// Get fetches a photo by primary key.
func (r *Repository) Get(ctx context.Context, id int64) (*Photo, error) {
	return scanPhoto(r.pool.QueryRow(ctx,
		`SELECT `+photoColumns+` FROM photos WHERE id = $1`, id))
}

// ListByUser returns a user's photos, newest first.
func (r *Repository) ListByUser(ctx context.Context, userID int64) ([]Photo, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+photoColumns+` FROM photos WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	return collect(rows)
}

// ListByStore returns every photo in a store with employee attribution,
// newest first.
func (r *Repository) ListByStore(ctx context.Context, storeID int64) ([]Photo, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT p.id, p.user_id, p.store_id, COALESCE(p.department, ''), p.file_name, p.file_path,
		        COALESCE(p.description, ''), p.status, p.score, COALESCE(p.analysis, ''), p.created_at,
		        TRIM(u.first_name || ' ' || u.last_name), u.username
		 FROM photos p
		 JOIN users u ON u.id = p.user_id
		 WHERE p.store_id = $1
		 ORDER BY p.created_at DESC`,
		storeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var photos []Photo
	for rows.Next() {
		var p Photo
		if err := rows.Scan(
			&p.ID, &p.UserID, &p.StoreID, &p.Department, &p.FileName, &p.FilePath,
			&p.Description, &p.Status, &p.Score, &p.Analysis, &p.CreatedAt,
			&p.EmployeeName, &p.EmployeeUsername,
		); err != nil {
			return nil, err
		}
		photos = append(photos, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return photos, nil
}

// Delete removes a photo record.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM photos WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.NotFound("photo not found")
	}
	return nil
}

// SetScore records a completed analysis.
func (r *Repository) SetScore(ctx context.Context, id int64, score float64, analysis string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE photos SET status = $2, score = $3, analysis = NULLIF($4, '') WHERE id = $1`,
		id, StatusScored, score, analysis)
	return err
}

// MarkFailed records that scoring did not complete.
func (r *Repository) MarkFailed(ctx context.Context, id int64) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE photos SET status = $2 WHERE id = $1`, id, StatusFailed)
	return err
}

func collect(rows pgx.Rows) ([]Photo, error) {
	defer rows.Close()
	var photos []Photo
	for rows.Next() {
		p, err := scanPhoto(rows)
		if err != nil {
			return nil, err
		}
		photos = append(photos, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return photos, nil
}

var _ RepositoryPort = (*Repository)(nil)
