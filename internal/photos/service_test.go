package photos

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/shelfwise/shelfwise/internal/shared"
)

type fakeRepo struct {
	nextID int64
	photos map[int64]*Photo
}

func newPhotoRepo(photos ...*Photo) *fakeRepo {
	r := &fakeRepo{nextID: 100, photos: make(map[int64]*Photo)}
	for _, p := range photos {
		r.photos[p.ID] = p
	}
	return r
}

func (r *fakeRepo) Create(ctx context.Context, photo *Photo) (*Photo, error) {
	r.nextID++
	created := *photo
	created.ID = r.nextID
	created.Status = StatusPending
	created.CreatedAt = time.Now().UTC()
	r.photos[created.ID] = &created
	clone := created
	return &clone, nil
}

func (r *fakeRepo) Get(ctx context.Context, id int64) (*Photo, error) {
	p, ok := r.photos[id]
	if !ok {
		return nil, shared.NotFound("photo not found")
	}
	clone := *p
	return &clone, nil
}

func (r *fakeRepo) ListByUser(ctx context.Context, userID int64) ([]Photo, error) {
	var out []Photo
	for _, p := range r.photos {
		if p.UserID == userID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *fakeRepo) ListByStore(ctx context.Context, storeID int64) ([]Photo, error) {
	var out []Photo
	for _, p := range r.photos {
		if p.StoreID == storeID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *fakeRepo) Delete(ctx context.Context, id int64) error {
	delete(r.photos, id)
	return nil
}

func (r *fakeRepo) SetScore(ctx context.Context, id int64, score float64, analysis string) error {
	p, ok := r.photos[id]
	if !ok {
		return shared.NotFound("photo not found")
	}
	p.Score = &score
	p.Analysis = analysis
	p.Status = StatusScored
	return nil
}

func (r *fakeRepo) MarkFailed(ctx context.Context, id int64) error {
	p, ok := r.photos[id]
	if !ok {
		return shared.NotFound("photo not found")
	}
	p.Status = StatusFailed
	return nil
}

type fakeEnqueuer struct {
	photoIDs []int64
	paths    []string
}

func (e *fakeEnqueuer) EnqueueScorePhoto(ctx context.Context, photoID int64, path string) error {
	e.photoIDs = append(e.photoIDs, photoID)
	e.paths = append(e.paths, path)
	return nil
}

func uploadInput(t *testing.T, filename string, content []byte) UploadInput {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("photo", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest("POST", "/api/photo/upload", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	file, header, err := req.FormFile("photo")
	require.NoError(t, err)
	t.Cleanup(func() { _ = file.Close() })
	return UploadInput{File: file, Header: header, Description: "end cap"}
}

func newPhotoService(t *testing.T, repo RepositoryPort, enq ScoreEnqueuer) *Service {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(logger, repo, enq, t.TempDir(), 1<<20)
}

func TestUploadStoresFileAndEnqueues(t *testing.T) {
	repo := newPhotoRepo()
	enq := &fakeEnqueuer{}
	svc := newPhotoService(t, repo, enq)
	principal := shared.Principal{UserID: 7, Role: shared.RoleEmployee, StoreID: 3}

	photo, err := svc.Upload(context.Background(), principal, uploadInput(t, "shelf.jpg", []byte("jpegdata")))
	require.NoError(t, err)
	require.Equal(t, StatusPending, photo.Status)
	require.Equal(t, int64(7), photo.UserID)
	require.Equal(t, int64(3), photo.StoreID)
	require.Equal(t, "shelf.jpg", photo.FileName)
	require.Equal(t, ".jpg", filepath.Ext(photo.FilePath))

	require.Equal(t, []int64{photo.ID}, enq.photoIDs)
	require.Len(t, enq.paths, 1)
	data, err := os.ReadFile(enq.paths[0])
	require.NoError(t, err)
	require.Equal(t, []byte("jpegdata"), data)
}

func TestUploadRejectsBadExtension(t *testing.T) {
	svc := newPhotoService(t, newPhotoRepo(), &fakeEnqueuer{})
	principal := shared.Principal{UserID: 7, Role: shared.RoleEmployee, StoreID: 3}

	for _, name := range []string{"shelf.pdf", "shelf.exe", "shelf"} {
		_, err := svc.Upload(context.Background(), principal, uploadInput(t, name, []byte("data")))
		require.Equal(t, shared.KindValidation, shared.KindOf(err), "file %q", name)
	}
}

func TestUploadRejectsOversizedFile(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := NewService(logger, newPhotoRepo(), &fakeEnqueuer{}, t.TempDir(), 16)
	principal := shared.Principal{UserID: 7, Role: shared.RoleEmployee, StoreID: 3}

	_, err := svc.Upload(context.Background(), principal, uploadInput(t, "shelf.jpg", bytes.Repeat([]byte("x"), 64)))
	require.Equal(t, shared.KindValidation, shared.KindOf(err))
}

func TestGetEnforcesOwnership(t *testing.T) {
	own := &Photo{ID: 1, UserID: 7, StoreID: 3}
	peer := &Photo{ID: 2, UserID: 8, StoreID: 3}
	elsewhere := &Photo{ID: 3, UserID: 9, StoreID: 4}
	svc := newPhotoService(t, newPhotoRepo(own, peer, elsewhere), nil)

	employee := shared.Principal{UserID: 7, Role: shared.RoleEmployee, StoreID: 3}
	manager := shared.Principal{UserID: 1, Role: shared.RoleManager, StoreID: 3}

	_, err := svc.Get(context.Background(), employee, 1)
	require.NoError(t, err)
	_, err = svc.Get(context.Background(), employee, 2)
	require.Equal(t, shared.KindUnauthorized, shared.KindOf(err))

	_, err = svc.Get(context.Background(), manager, 2)
	require.NoError(t, err)
	_, err = svc.Get(context.Background(), manager, 3)
	require.Equal(t, shared.KindUnauthorized, shared.KindOf(err))
}

func TestListEmployeeScopedToManagerStore(t *testing.T) {
	inStore := &Photo{ID: 1, UserID: 7, StoreID: 3}
	outOfStore := &Photo{ID: 2, UserID: 7, StoreID: 4}
	svc := newPhotoService(t, newPhotoRepo(inStore, outOfStore), nil)
	manager := shared.Principal{UserID: 1, Role: shared.RoleManager, StoreID: 3}

	photos, err := svc.ListEmployee(context.Background(), manager, 7)
	require.NoError(t, err)
	require.Len(t, photos, 1)
	require.Equal(t, int64(1), photos[0].ID)
}

func TestDeleteRemovesFile(t *testing.T) {
	repo := newPhotoRepo()
	enq := &fakeEnqueuer{}
	svc := newPhotoService(t, repo, enq)
	principal := shared.Principal{UserID: 7, Role: shared.RoleEmployee, StoreID: 3}

	photo, err := svc.Upload(context.Background(), principal, uploadInput(t, "shelf.png", []byte("pngdata")))
	require.NoError(t, err)
	require.FileExists(t, enq.paths[0])

	require.NoError(t, svc.Delete(context.Background(), principal, photo.ID))
	require.NoFileExists(t, enq.paths[0])
	_, err = svc.Get(context.Background(), principal, photo.ID)
	require.Equal(t, shared.KindNotFound, shared.KindOf(err))
}
