package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/shelfwise/shelfwise/internal/observability"
	"github.com/shelfwise/shelfwise/internal/photos"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeScorePhoto is the task type for scoring an uploaded photo.
	TaskTypeScorePhoto = "photo:score"
)

// ScorePhotoPayload identifies the photo to score and its file on disk.
type ScorePhotoPayload struct {
	PhotoID int64  `json:"photoId"`
	Path    string `json:"path"`
}

// NewScorePhotoTask constructs an Asynq task.
func NewScorePhotoTask(payload ScorePhotoPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeScorePhoto, data, asynq.MaxRetry(3), asynq.Timeout(2*time.Minute)), nil
}

// Analyzer produces a score for an image file.
type Analyzer interface {
	Analyze(ctx context.Context, path string) (*photos.ScoreResult, error)
}

// PhotoUpdater persists scoring outcomes.
type PhotoUpdater interface {
	SetScore(ctx context.Context, id int64, score float64, analysis string) error
	MarkFailed(ctx context.Context, id int64) error
}

// PhotoScorer handles TaskTypeScorePhoto tasks.
type PhotoScorer struct {
	logger   *slog.Logger
	analyzer Analyzer
	updater  PhotoUpdater
	metrics  *observability.Metrics
}

// NewPhotoScorer constructs a task handler. metrics may be nil.
func NewPhotoScorer(logger *slog.Logger, analyzer Analyzer, updater PhotoUpdater, metrics *observability.Metrics) *PhotoScorer {
	return &PhotoScorer{logger: logger, analyzer: analyzer, updater: updater, metrics: metrics}
}

// Handle analyzes the photo and records the result. The photo is marked
// failed once retries are exhausted.
func (p *PhotoScorer) Handle(ctx context.Context, t *asynq.Task) error {
	var payload ScorePhotoPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		p.observe("malformed")
		return asynq.SkipRetry
	}

	result, err := p.analyzer.Analyze(ctx, payload.Path)
	if err != nil {
		p.logger.Warn("photo scoring failed", "photo_id", payload.PhotoID, "error", err)
		retried, retriedOK := asynq.GetRetryCount(ctx)
		maxRetry, maxOK := asynq.GetMaxRetry(ctx)
		if retriedOK && maxOK && retried >= maxRetry {
			if markErr := p.updater.MarkFailed(ctx, payload.PhotoID); markErr != nil {
				p.logger.Error("could not mark photo failed", "photo_id", payload.PhotoID, "error", markErr)
			}
			p.observe("failed")
		}
		return err
	}

	if err := p.updater.SetScore(ctx, payload.PhotoID, result.Score, result.Summary); err != nil {
		p.logger.Error("could not store photo score", "photo_id", payload.PhotoID, "error", err)
		return err
	}
	p.observe("ok")
	p.logger.Info("photo scored", "photo_id", payload.PhotoID, "score", result.Score)
	return nil
}

func (p *PhotoScorer) observe(status string) {
	if p.metrics != nil {
		p.metrics.ObserveJob(TaskTypeScorePhoto, status)
	}
}
