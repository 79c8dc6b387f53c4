package announcements

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shelfwise/shelfwise/internal/shared"
)

// RepositoryPort defines data access methods for announcements.
type RepositoryPort interface {
	List(ctx context.Context, storeID, readerID int64) ([]Announcement, error)
	Get(ctx context.Context, id int64) (*Announcement, error)
	Create(ctx context.Context, ann *Announcement) (*Announcement, error)
	Update(ctx context.Context, ann *Announcement) (*Announcement, error)
	Delete(ctx context.Context, id int64) error
	MarkRead(ctx context.Context, id, readerID int64) error
	CountUnread(ctx context.Context, storeID, readerID int64) (int64, error)
}

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const annColumns = `id, store_id, author_id, title, body, created_at, updated_at`

func scanAnnouncement(row pgx.Row) (*Announcement, error) {
	var a Announcement
	err := row.Scan(&a.ID, &a.StoreID, &a.AuthorID, &a.Title, &a.Body, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.NotFound("announcement not found")
		}
		return nil, err
	}
	return &a, nil
}

// List returns the announcements of a store, newest first, with per-reader
// read flags.
func (r *Repository) List(ctx context.Context, storeID, readerID int64) ([]Announcement, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT a.id, a.store_id, a.author_id, a.title, a.body, a.created_at, a.updated_at,
		        (ar.user_id IS NOT NULL) AS is_read
		 FROM announcements a
		 LEFT JOIN announcement_reads ar ON ar.announcement_id = a.id AND ar.user_id = $2
		 WHERE a.store_id = $1
		 ORDER BY a.created_at DESC`,
		storeID, readerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var anns []Announcement
	for rows.Next() {
		var a Announcement
		if err := rows.Scan(&a.ID, &a.StoreID, &a.AuthorID, &a.Title, &a.Body, &a.CreatedAt, &a.UpdatedAt, &a.IsRead); err != nil {
			return nil, err
		}
		anns = append(anns, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return anns, nil
}

// Get fetches an announcement by primary key.
func (r *Repository) Get(ctx context.Context, id int64) (*Announcement, error) {
	return scanAnnouncement(r.pool.QueryRow(ctx,
		`SELECT `+annColumns+` FROM announcements WHERE id = $1`, id))
}

// Create inserts an announcement.
func (r *Repository) Create(ctx context.Context, ann *Announcement) (*Announcement, error) {
	now := time.Now().UTC()
	return scanAnnouncement(r.pool.QueryRow(ctx,
		`INSERT INTO announcements (store_id, author_id, title, body, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $5)
		 RETURNING `+annColumns,
		ann.StoreID, ann.AuthorID, ann.Title, ann.Body, now))
}

// Update persists announcement changes.
func (r *Repository) Update(ctx context.Context, ann *Announcement) (*Announcement, error) {
	return scanAnnouncement(r.pool.QueryRow(ctx,
		`UPDATE announcements SET title = $2, body = $3, updated_at = $4
		 WHERE id = $1
		 RETURNING `+annColumns,
		ann.ID, ann.Title, ann.Body, time.Now().UTC()))
}

// Delete removes an announcement and its read receipts.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM announcements WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.NotFound("announcement not found")
	}
	return nil
}

// MarkRead records a read receipt; marking twice is a no-op.
func (r *Repository) MarkRead(ctx context.Context, id, readerID int64) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO announcement_reads (announcement_id, user_id, read_at)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (announcement_id, user_id) DO NOTHING`,
		id, readerID, time.Now().UTC())
	return err
}

// CountUnread counts the store's announcements the reader has not marked.
func (r *Repository) CountUnread(ctx context.Context, storeID, readerID int64) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*)
		 FROM announcements a
		 LEFT JOIN announcement_reads ar ON ar.announcement_id = a.id AND ar.user_id = $2
		 WHERE a.store_id = $1 AND ar.user_id IS NULL`,
		storeID, readerID).Scan(&count)
	return count, err
}

var _ RepositoryPort = (*Repository)(nil)
