package photos

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/shelfwise/shelfwise/internal/shared"
)

// ScoreEnqueuer schedules background scoring for an uploaded photo.
type ScoreEnqueuer interface {
	EnqueueScorePhoto(ctx context.Context, photoID int64, path string) error
}

var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
}

// Service handles photo uploads and retrieval.
type Service struct {
	logger    *slog.Logger
	repo      RepositoryPort
	enqueuer  ScoreEnqueuer
	uploadDir string
	maxBytes  int64
}

// NewService builds a Service instance. enqueuer may be nil, in which case
// uploads stay in pending state until a worker is attached.
func NewService(logger *slog.Logger, repo RepositoryPort, enqueuer ScoreEnqueuer, uploadDir string, maxBytes int64) *Service {
	return &Service{
		logger:    logger,
		repo:      repo,
		enqueuer:  enqueuer,
		uploadDir: uploadDir,
		maxBytes:  maxBytes,
	}
}

// UploadInput carries an incoming photo file and its metadata.
type UploadInput struct {
	File        multipart.File
	Header      *multipart.FileHeader
	Department  string
	Description string
}

// Upload validates the file, stores it on disk and records it in pending
// state, then schedules background scoring.
func (s *Service) Upload(ctx context.Context, principal shared.Principal, input UploadInput) (*Photo, error) {
	if input.Header == nil || input.File == nil {
		return nil, shared.Validation("photo file is required")
	}
	if input.Header.Size > s.maxBytes {
		return nil, shared.Validation(fmt.Sprintf("file exceeds the %d byte limit", s.maxBytes))
	}
	ext := strings.ToLower(filepath.Ext(input.Header.Filename))
	if !allowedExtensions[ext] {
		return nil, shared.Validation("only jpg, jpeg, png and gif files are accepted")
	}

	if err := os.MkdirAll(s.uploadDir, 0o755); err != nil {
		return nil, shared.Internal("could not prepare upload directory", err)
	}
	name := uuid.NewString() + ext
	dest := filepath.Join(s.uploadDir, name)
	if err := s.saveFile(input.File, dest); err != nil {
		return nil, shared.Internal("could not store uploaded file", err)
	}

	photo, err := s.repo.Create(ctx, &Photo{
		UserID:      principal.UserID,
		StoreID:     principal.StoreID,
		Department:  input.Department,
		FileName:    input.Header.Filename,
		FilePath:    "/uploads/" + name,
		Description: input.Description,
	})
	if err != nil {
		_ = os.Remove(dest)
		return nil, err
	}

	if s.enqueuer != nil {
		if err := s.enqueuer.EnqueueScorePhoto(ctx, photo.ID, dest); err != nil {
			s.logger.Warn("could not enqueue photo scoring", "photo_id", photo.ID, "error", err)
		}
	}
	return photo, nil
}

func (s *Service) saveFile(src multipart.File, dest string) error {
	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer func() {
		_ = out.Close()
	}()
	// Size was checked against the header; cap the copy as well in case the
	// header lied.
	if _, err := io.Copy(out, io.LimitReader(src, s.maxBytes+1)); err != nil {
		_ = os.Remove(dest)
		return err
	}
	return nil
}

// ListOwn returns the caller's photos, newest first.
func (s *Service) ListOwn(ctx context.Context, principal shared.Principal) ([]Photo, error) {
	return s.repo.ListByUser(ctx, principal.UserID)
}

// ListStore returns every photo in the manager's store with employee
// attribution.
func (s *Service) ListStore(ctx context.Context, manager shared.Principal) ([]Photo, error) {
	return s.repo.ListByStore(ctx, manager.StoreID)
}

// ListEmployee returns the photos of one employee in the manager's store.
func (s *Service) ListEmployee(ctx context.Context, manager shared.Principal, employeeID int64) ([]Photo, error) {
	photos, err := s.repo.ListByUser(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	scoped := make([]Photo, 0, len(photos))
	for _, p := range photos {
		if p.StoreID == manager.StoreID {
			scoped = append(scoped, p)
		}
	}
	return scoped, nil
}

// Get fetches one photo visible to the caller: their own, or any photo in
// the store when the caller is a manager.
func (s *Service) Get(ctx context.Context, principal shared.Principal, id int64) (*Photo, error) {
	photo, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkAccess(principal, photo); err != nil {
		return nil, err
	}
	return photo, nil
}

// Delete removes a photo record and its file from disk.
func (s *Service) Delete(ctx context.Context, principal shared.Principal, id int64) error {
	photo, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.checkAccess(principal, photo); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	name := filepath.Base(photo.FilePath)
	if err := os.Remove(filepath.Join(s.uploadDir, name)); err != nil && !os.IsNotExist(err) {
		s.logger.Warn("could not remove photo file", "photo_id", id, "error", err)
	}
	return nil
}

func (s *Service) checkAccess(principal shared.Principal, photo *Photo) error {
	if photo.UserID == principal.UserID {
		return nil
	}
	if principal.IsManager() && photo.StoreID == principal.StoreID {
		return nil
	}
	return shared.Unauthorized("you do not have access to this photo")
}
