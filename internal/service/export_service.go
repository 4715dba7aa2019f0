package service

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/meeting-planner-api/internal/dto"
	"github.com/noah-isme/meeting-planner-api/internal/models"
	appErrors "github.com/noah-isme/meeting-planner-api/pkg/errors"
	"github.com/noah-isme/meeting-planner-api/pkg/export"
	"github.com/noah-isme/meeting-planner-api/pkg/jobs"
	"github.com/noah-isme/meeting-planner-api/pkg/storage"
)

// ExportJobType tags grid export jobs on the shared queue.
const ExportJobType = "grid_export"

type gridBuilder interface {
	CheckWeekStart(weekStart int64) error
	Grid(ctx context.Context, meetingID string, weekStart int64) (dto.GridResponse, bool, error)
}

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type jobDispatcher interface {
	Enqueue(job jobs.Job) error
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	APIPrefix       string
	ResultTTL       time.Duration
	CleanupInterval time.Duration
}

// ExportDownload is an opened export ready to stream.
type ExportDownload struct {
	File        *os.File
	Filename    string
	ContentType string
	ExpiresAt   time.Time
}

// ExportService renders meeting grids to files in the background and hands
// out signed download links once they are ready.
type ExportService struct {
	grids     gridBuilder
	storage   fileStorage
	signer    *storage.SignedURLSigner
	renderers map[models.ExportFormat]export.Renderer
	queue     jobDispatcher
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	cfg       ExportConfig
	now       func() time.Time

	mu   sync.RWMutex
	jobs map[string]*models.ExportJob
}

// NewExportService constructs the service. The queue is attached later with
// SetQueue because the queue's handler is the service's own Process method.
func NewExportService(grids gridBuilder, files fileStorage, signer *storage.SignedURLSigner, cfg ExportConfig, metrics *MetricsService, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	if cfg.APIPrefix == "" {
		cfg.APIPrefix = "/api"
	}
	return &ExportService{
		grids:   grids,
		storage: files,
		signer:  signer,
		renderers: map[models.ExportFormat]export.Renderer{
			models.ExportFormatCSV: export.NewCSVExporter(),
			models.ExportFormatPDF: export.NewPDFExporter(),
		},
		metrics:   metrics,
		validator: validator.New(),
		logger:    logger,
		cfg:       cfg,
		now:       time.Now,
		jobs:      map[string]*models.ExportJob{},
	}
}

// SetQueue attaches the dispatcher used by Request.
func (s *ExportService) SetQueue(queue jobDispatcher) {
	s.queue = queue
}

// Request registers a new export job and enqueues it.
func (s *ExportService) Request(ctx context.Context, meetingID string, req dto.ExportRequest) (*dto.ExportJobResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid export request")
	}
	if err := s.grids.CheckWeekStart(*req.WeekStart); err != nil {
		return nil, err
	}
	if s.queue == nil {
		return nil, appErrors.ErrExportsDisabled
	}
	job := &models.ExportJob{
		ID:        uuid.NewString(),
		MeetingID: meetingID,
		WeekStart: *req.WeekStart,
		Format:    req.Format,
		Status:    models.ExportStatusQueued,
		CreatedAt: s.now().UTC(),
	}
	s.mu.Lock()
	s.jobs[job.ID] = job
	s.mu.Unlock()

	if err := s.queue.Enqueue(jobs.Job{ID: job.ID, Type: ExportJobType}); err != nil {
		s.fail(job.ID, "failed to enqueue job")
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enqueue export job")
	}
	s.logger.Info("export job queued", zap.String("job_id", job.ID), zap.String("meeting_id", meetingID), zap.String("format", string(job.Format)))
	return &dto.ExportJobResponse{ID: job.ID, Status: job.Status}, nil
}

// Process is the queue handler: it renders and stores one export.
func (s *ExportService) Process(ctx context.Context, qj jobs.Job) error {
	job, ok := s.snapshot(qj.ID)
	if !ok {
		s.logger.Warn("export job vanished", zap.String("job_id", qj.ID))
		return nil
	}
	s.update(job.ID, func(j *models.ExportJob) { j.Status = models.ExportStatusProcessing })

	relPath, err := s.render(ctx, job)
	if err != nil {
		s.update(job.ID, func(j *models.ExportJob) { j.Status = models.ExportStatusQueued })
		return err
	}

	finished := s.now().UTC()
	s.update(job.ID, func(j *models.ExportJob) {
		j.Status = models.ExportStatusFinished
		j.ResultPath = relPath
		j.FinishedAt = &finished
	})
	s.metrics.RecordExportJob(string(job.Format), string(models.ExportStatusFinished))
	s.logger.Info("export job finished", zap.String("job_id", job.ID), zap.String("path", relPath))
	return nil
}

// Discard marks a job failed once the queue gives up on it.
func (s *ExportService) Discard(qj jobs.Job, err error) {
	s.fail(qj.ID, err.Error())
}

// Status reports job progress and, for finished jobs, a signed download URL.
func (s *ExportService) Status(ctx context.Context, id string) (*dto.ExportStatusResponse, error) {
	job, ok := s.snapshot(id)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "export job not found")
	}
	resp := &dto.ExportStatusResponse{
		ID:        job.ID,
		MeetingID: job.MeetingID,
		WeekStart: job.WeekStart,
		Format:    job.Format,
		Status:    job.Status,
		Error:     job.ErrorMessage,
	}
	if job.Status == models.ExportStatusFinished {
		token, expiresAt, err := s.signer.Generate(job.ID, job.ResultPath)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign download")
		}
		link := strings.TrimRight(s.cfg.APIPrefix, "/") + "/exports/download?token=" + url.QueryEscape(token)
		resp.DownloadURL = &link
		resp.ExpiresAt = &expiresAt
	}
	return resp, nil
}

// ResolveDownload validates a token and opens the file it points to.
func (s *ExportService) ResolveDownload(ctx context.Context, token string) (*ExportDownload, error) {
	claims, err := s.signer.Verify(token)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "invalid or expired download token")
	}
	job, ok := s.snapshot(claims.JobID)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "export job not found")
	}
	if job.Status != models.ExportStatusFinished {
		return nil, appErrors.Clone(appErrors.ErrConflict, "export not ready")
	}
	if job.ResultPath != claims.Path {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "token mismatch")
	}
	file, err := s.storage.Open(claims.Path)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open export file")
	}
	return &ExportDownload{
		File:        file,
		Filename:    path.Base(claims.Path),
		ContentType: s.renderers[job.Format].ContentType(),
		ExpiresAt:   claims.ExpiresAt,
	}, nil
}

// Cleanup removes stored files and finished jobs older than the result TTL.
func (s *ExportService) Cleanup() ([]string, error) {
	removed, err := s.storage.CleanupOlderThan(s.cfg.ResultTTL)
	if err != nil {
		return nil, err
	}
	cutoff := s.now().Add(-s.cfg.ResultTTL)
	s.mu.Lock()
	for id, job := range s.jobs {
		if job.FinishedAt != nil && job.FinishedAt.Before(cutoff) {
			delete(s.jobs, id)
		}
	}
	s.mu.Unlock()
	return removed, nil
}

// StartCleanup runs Cleanup on CleanupInterval until ctx is done.
func (s *ExportService) StartCleanup(ctx context.Context) {
	if s.cfg.CleanupInterval <= 0 {
		return
	}
	ticker := time.NewTicker(s.cfg.CleanupInterval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				removed, err := s.Cleanup()
				if err != nil {
					s.logger.Warn("export cleanup failed", zap.Error(err))
					continue
				}
				if len(removed) > 0 {
					s.logger.Info("expired exports removed", zap.Int("count", len(removed)))
				}
			}
		}
	}()
}

func (s *ExportService) render(ctx context.Context, job models.ExportJob) (string, error) {
	renderer, ok := s.renderers[job.Format]
	if !ok {
		return "", fmt.Errorf("unsupported format %s", job.Format)
	}
	grid, _, err := s.grids.Grid(ctx, job.MeetingID, job.WeekStart)
	if err != nil {
		return "", err
	}
	payload, err := renderer.Render(gridDataset(grid))
	if err != nil {
		return "", err
	}
	filename := fmt.Sprintf("%s/%d_%s.%s", job.MeetingID, job.WeekStart, job.ID[:8], renderer.Extension())
	return s.storage.Save(filename, payload)
}

func (s *ExportService) fail(id, message string) {
	var format string
	s.update(id, func(j *models.ExportJob) {
		now := s.now().UTC()
		j.Status = models.ExportStatusFailed
		j.ErrorMessage = &message
		j.FinishedAt = &now
		format = string(j.Format)
	})
	s.metrics.RecordExportJob(format, string(models.ExportStatusFailed))
}

func (s *ExportService) snapshot(id string) (models.ExportJob, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobs[id]
	if !ok {
		return models.ExportJob{}, false
	}
	return *job, true
}

func (s *ExportService) update(id string, fn func(*models.ExportJob)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if job, ok := s.jobs[id]; ok {
		fn(job)
	}
}

// gridDataset flattens a grid into one row per slot, naming the participants.
func gridDataset(grid dto.GridResponse) export.Dataset {
	rows := make([][]string, 0, len(grid.Slots))
	for _, slot := range grid.Slots {
		names := make([]string, 0, len(slot.Participants))
		for _, idx := range slot.Participants {
			if idx >= 0 && idx < len(grid.Participants) {
				names = append(names, grid.Participants[idx])
			} else {
				names = append(names, "#"+strconv.Itoa(idx))
			}
		}
		rows = append(rows, []string{
			grid.DayNames[slot.Day],
			slot.HourLabel,
			strconv.Itoa(slot.Count),
			strings.Join(names, ", "),
		})
	}
	return export.Dataset{
		Title:   grid.Week.Label,
		Columns: []string{"Day", "Hour", "Count", "Participants"},
		Rows:    rows,
		Widths:  []float64{1, 1, 1, 6},
	}
}
