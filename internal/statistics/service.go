package statistics

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/shelfwise/shelfwise/internal/shared"
)

// Dashboard aggregates the headline numbers for a store.
type Dashboard struct {
	EmployeeCount     int64   `json:"employeeCount"`
	PhotoCount        int64   `json:"photoCount"`
	PendingPhotos     int64   `json:"pendingPhotos"`
	ScoredPhotos      int64   `json:"scoredPhotos"`
	AverageScore      float64 `json:"averageScore"`
	AnnouncementCount int64   `json:"announcementCount"`
}

// EmployeeStats summarizes one employee's upload activity.
type EmployeeStats struct {
	UserID       int64   `json:"userId"`
	Username     string  `json:"username"`
	FullName     string  `json:"fullName"`
	Department   string  `json:"department,omitempty"`
	PhotoCount   int64   `json:"photoCount"`
	ScoredCount  int64   `json:"scoredCount"`
	AverageScore float64 `json:"averageScore"`
}

// Service computes store statistics for managers.
type Service struct {
	repo  RepositoryPort
	group singleflight.Group
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// Dashboard fans the aggregate queries out concurrently. Concurrent requests
// for the same store are coalesced into a single computation.
func (s *Service) Dashboard(ctx context.Context, manager shared.Principal) (*Dashboard, error) {
	v, err, _ := s.group.Do(fmt.Sprintf("dashboard:%d", manager.StoreID), func() (any, error) {
		return s.computeDashboard(ctx, manager.StoreID)
	})
	if err != nil {
		return nil, err
	}
	return v.(*Dashboard), nil
}

func (s *Service) computeDashboard(ctx context.Context, storeID int64) (*Dashboard, error) {
	var d Dashboard
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		d.EmployeeCount, err = s.repo.CountEmployees(ctx, storeID)
		return err
	})
	g.Go(func() (err error) {
		d.PhotoCount, err = s.repo.CountPhotos(ctx, storeID)
		return err
	})
	g.Go(func() (err error) {
		d.PendingPhotos, err = s.repo.CountPhotosByStatus(ctx, storeID, "pending")
		return err
	})
	g.Go(func() (err error) {
		d.ScoredPhotos, err = s.repo.CountPhotosByStatus(ctx, storeID, "scored")
		return err
	})
	g.Go(func() (err error) {
		d.AverageScore, err = s.repo.AverageScore(ctx, storeID)
		return err
	})
	g.Go(func() (err error) {
		d.AnnouncementCount, err = s.repo.CountAnnouncements(ctx, storeID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &d, nil
}

// EmployeeStats lists per-employee activity for the manager's store.
func (s *Service) EmployeeStats(ctx context.Context, manager shared.Principal) ([]EmployeeStats, error) {
	return s.repo.EmployeeStats(ctx, manager.StoreID)
}
