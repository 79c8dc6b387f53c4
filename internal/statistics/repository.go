package statistics

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// RepositoryPort defines the aggregate queries behind the dashboard.
type RepositoryPort interface {
	CountEmployees(ctx context.Context, storeID int64) (int64, error)
	CountPhotos(ctx context.Context, storeID int64) (int64, error)
	CountPhotosByStatus(ctx context.Context, storeID int64, status string) (int64, error)
	AverageScore(ctx context.Context, storeID int64) (float64, error)
	CountAnnouncements(ctx context.Context, storeID int64) (int64, error)
	EmployeeStats(ctx context.Context, storeID int64) ([]EmployeeStats, error)
}

// Repository provides PostgreSQL backed aggregates.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) countWhere(ctx context.Context, query string, args ...any) (int64, error) {
	var n int64
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// CountEmployees counts active employees in a store, excluding managers.
func (r *Repository) CountEmployees(ctx context.Context, storeID int64) (int64, error) {
	return r.countWhere(ctx,
		`SELECT COUNT(*) FROM users WHERE store_id = $1 AND role = 'Employee' AND is_active`, storeID)
}

// CountPhotos counts every photo uploaded in a store.
func (r *Repository) CountPhotos(ctx context.Context, storeID int64) (int64, error) {
	return r.countWhere(ctx, `SELECT COUNT(*) FROM photos WHERE store_id = $1`, storeID)
}

// CountPhotosByStatus counts photos in a store with a given scoring status.
func (r *Repository) CountPhotosByStatus(ctx context.Context, storeID int64, status string) (int64, error) {
	return r.countWhere(ctx,
		`SELECT COUNT(*) FROM photos WHERE store_id = $1 AND status = $2`, storeID, status)
}

// AverageScore averages the scores of scored photos in a store. Returns zero
// when nothing has been scored yet.
func (r *Repository) AverageScore(ctx context.Context, storeID int64) (float64, error) {
	var avg float64
	err := r.pool.QueryRow(ctx,
		`SELECT COALESCE(AVG(score), 0) FROM photos WHERE store_id = $1 AND score IS NOT NULL`,
		storeID).Scan(&avg)
	if err != nil {
		return 0, err
	}
	return avg, nil
}

// CountAnnouncements counts the announcements of a store.
func (r *Repository) CountAnnouncements(ctx context.Context, storeID int64) (int64, error) {
	return r.countWhere(ctx, `SELECT COUNT(*) FROM announcements WHERE store_id = $1`, storeID)
}

// EmployeeStats computes per-employee photo counts and averages for a store.
func (r *Repository) EmployeeStats(ctx context.Context, storeID int64) ([]EmployeeStats, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT u.id, u.username, u.first_name || ' ' || u.last_name, COALESCE(u.department, ''),
		        COUNT(p.id), COUNT(p.id) FILTER (WHERE p.status = 'scored'), COALESCE(AVG(p.score), 0)
		 FROM users u
		 LEFT JOIN photos p ON p.user_id = u.id
		 WHERE u.store_id = $1 AND u.role = 'Employee' AND u.is_active
		 GROUP BY u.id, u.username, u.first_name, u.last_name, u.department
		 ORDER BY u.username`, storeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := make([]EmployeeStats, 0)
	for rows.Next() {
		var s EmployeeStats
		if err := rows.Scan(&s.UserID, &s.Username, &s.FullName, &s.Department,
			&s.PhotoCount, &s.ScoredCount, &s.AverageScore); err != nil {
			return nil, err
		}
		stats = append(stats, s)
	}
	return stats, rows.Err()
}
