package announcements

import (
	"context"
	"log/slog"

	"github.com/shelfwise/shelfwise/internal/shared"
)

// Service handles announcement business logic. Cache failures are logged
// and degrade to database reads; they never fail a request.
type Service struct {
	repo   RepositoryPort
	cache  *Cache
	logger *slog.Logger
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort, cache *Cache, logger *slog.Logger) *Service {
	return &Service{repo: repo, cache: cache, logger: logger}
}

// List returns the caller's store announcements with read flags.
func (s *Service) List(ctx context.Context, principal shared.Principal) ([]Announcement, error) {
	return s.repo.List(ctx, principal.StoreID, principal.UserID)
}

// Input carries the writable announcement fields.
type Input struct {
	Title string
	Body  string
}

// Create posts an announcement to the manager's store.
func (s *Service) Create(ctx context.Context, manager shared.Principal, input Input) (*Announcement, error) {
	ann, err := s.repo.Create(ctx, &Announcement{
		StoreID:  manager.StoreID,
		AuthorID: manager.UserID,
		Title:    input.Title,
		Body:     input.Body,
	})
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, manager.StoreID)
	return ann, nil
}

// Update edits an announcement in the manager's store.
func (s *Service) Update(ctx context.Context, manager shared.Principal, id int64, input Input) (*Announcement, error) {
	ann, err := s.getScoped(ctx, manager, id)
	if err != nil {
		return nil, err
	}
	ann.Title = input.Title
	ann.Body = input.Body
	updated, err := s.repo.Update(ctx, ann)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, manager.StoreID)
	return updated, nil
}

// Delete removes an announcement from the manager's store.
func (s *Service) Delete(ctx context.Context, manager shared.Principal, id int64) error {
	if _, err := s.getScoped(ctx, manager, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, manager.StoreID)
	return nil
}

// MarkRead records that the caller read an announcement.
func (s *Service) MarkRead(ctx context.Context, principal shared.Principal, id int64) error {
	if _, err := s.getScoped(ctx, principal, id); err != nil {
		return err
	}
	if err := s.repo.MarkRead(ctx, id, principal.UserID); err != nil {
		return err
	}
	s.invalidate(ctx, principal.StoreID)
	return nil
}

// UnreadCount returns how many store announcements the caller has not read,
// served from cache when possible.
func (s *Service) UnreadCount(ctx context.Context, principal shared.Principal) (int64, error) {
	if count, ok, err := s.cache.GetUnread(ctx, principal.StoreID, principal.UserID); err == nil && ok {
		return count, nil
	} else if err != nil {
		s.logger.Warn("unread cache read", slog.Any("error", err))
	}

	count, err := s.repo.CountUnread(ctx, principal.StoreID, principal.UserID)
	if err != nil {
		return 0, err
	}
	if err := s.cache.SetUnread(ctx, principal.StoreID, principal.UserID, count); err != nil {
		s.logger.Warn("unread cache write", slog.Any("error", err))
	}
	return count, nil
}

func (s *Service) getScoped(ctx context.Context, principal shared.Principal, id int64) (*Announcement, error) {
	ann, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if ann.StoreID != principal.StoreID {
		return nil, shared.NotFound("announcement not found")
	}
	return ann, nil
}

func (s *Service) invalidate(ctx context.Context, storeID int64) {
	if err := s.cache.Invalidate(ctx, storeID); err != nil {
		s.logger.Warn("unread cache invalidate", slog.Any("error", err))
	}
}
