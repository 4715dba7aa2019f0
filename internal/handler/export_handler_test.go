package handler

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/meeting-planner-api/internal/dto"
	"github.com/noah-isme/meeting-planner-api/internal/models"
	"github.com/noah-isme/meeting-planner-api/internal/service"
	appErrors "github.com/noah-isme/meeting-planner-api/pkg/errors"
)

type exportServiceStub struct {
	requested  *dto.ExportRequest
	requestErr error
	download   *service.ExportDownload
}

func (s *exportServiceStub) Request(ctx context.Context, meetingID string, req dto.ExportRequest) (*dto.ExportJobResponse, error) {
	if s.requestErr != nil {
		return nil, s.requestErr
	}
	s.requested = &req
	return &dto.ExportJobResponse{ID: "job-1", Status: models.ExportStatusQueued}, nil
}

func (s *exportServiceStub) Status(ctx context.Context, id string) (*dto.ExportStatusResponse, error) {
	if id != "job-1" {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "export job not found")
	}
	return &dto.ExportStatusResponse{ID: id, Status: models.ExportStatusProcessing}, nil
}

func (s *exportServiceStub) ResolveDownload(ctx context.Context, token string) (*service.ExportDownload, error) {
	if token != "good" || s.download == nil {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "invalid or expired download token")
	}
	return s.download, nil
}

type meetingValidatorStub struct{}

func (meetingValidatorStub) ValidateMeetingID(id string) error {
	if strings.Contains(id, " ") {
		return appErrors.ErrInvalidMeetingID
	}
	return nil
}

func TestExportHandlerCreate(t *testing.T) {
	exports := &exportServiceStub{}
	h := NewExportHandler(exports, meetingValidatorStub{}, nil)

	c, rec := newTestContext(http.MethodPost, "/api/meetings/team/exports", strings.NewReader(`{"weekStart":1741564800000,"format":"csv"}`))
	c.Params = gin.Params{{Key: "id", Value: "team"}}
	h.Create(c)

	require.Equal(t, http.StatusAccepted, rec.Code)
	require.NotNil(t, exports.requested)
	assert.Equal(t, int64(1741564800000), *exports.requested.WeekStart)
	assert.Equal(t, models.ExportFormatCSV, exports.requested.Format)
	assert.Contains(t, string(decodeEnvelope(t, rec).Data), `"job-1"`)
}

func TestExportHandlerCreateErrors(t *testing.T) {
	h := NewExportHandler(&exportServiceStub{}, meetingValidatorStub{}, nil)
	c, rec := newTestContext(http.MethodPost, "/x", strings.NewReader(`{}`))
	c.Params = gin.Params{{Key: "id", Value: "bad id"}}
	h.Create(c)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	h = NewExportHandler(&exportServiceStub{requestErr: appErrors.ErrExportsDisabled}, meetingValidatorStub{}, nil)
	c, rec = newTestContext(http.MethodPost, "/x", strings.NewReader(`{"weekStart":1,"format":"pdf"}`))
	c.Params = gin.Params{{Key: "id", Value: "team"}}
	h.Create(c)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestExportHandlerStatus(t *testing.T) {
	h := NewExportHandler(&exportServiceStub{}, meetingValidatorStub{}, nil)

	c, rec := newTestContext(http.MethodGet, "/api/exports/job-1", nil)
	c.Params = gin.Params{{Key: "jobId", Value: "job-1"}}
	h.Status(c)
	assert.Equal(t, http.StatusOK, rec.Code)

	c, rec = newTestContext(http.MethodGet, "/api/exports/nope", nil)
	c.Params = gin.Params{{Key: "jobId", Value: "nope"}}
	h.Status(c)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestExportHandlerDownload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "week.csv")
	require.NoError(t, os.WriteFile(path, []byte("Day,Hour\nMon,10:00\n"), 0o644))
	file, err := os.Open(path)
	require.NoError(t, err)

	exports := &exportServiceStub{download: &service.ExportDownload{File: file, Filename: "week.csv", ContentType: "text/csv"}}
	h := NewExportHandler(exports, meetingValidatorStub{}, nil)

	c, rec := newTestContext(http.MethodGet, "/api/exports/download?token=good", nil)
	h.Download(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), `filename="week.csv"`)
	assert.Equal(t, "Day,Hour\nMon,10:00\n", rec.Body.String())
}

func TestExportHandlerDownloadRejectsTokens(t *testing.T) {
	h := NewExportHandler(&exportServiceStub{}, meetingValidatorStub{}, nil)

	c, rec := newTestContext(http.MethodGet, "/api/exports/download", nil)
	h.Download(c)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	c, rec = newTestContext(http.MethodGet, "/api/exports/download?token=forged", nil)
	h.Download(c)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
