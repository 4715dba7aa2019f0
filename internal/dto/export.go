package dto

import (
	"time"

	"github.com/noah-isme/meeting-planner-api/internal/models"
)

// ExportRequest captures POST /meetings/:id/exports payload.
type ExportRequest struct {
	WeekStart *int64              `json:"weekStart" validate:"required,min=0"`
	Format    models.ExportFormat `json:"format" validate:"required,oneof=csv pdf"`
}

// ExportJobResponse is returned after enqueueing an export.
type ExportJobResponse struct {
	ID     string              `json:"id"`
	Status models.ExportStatus `json:"status"`
}

// ExportStatusResponse exposes job progress and, once finished, the download link.
type ExportStatusResponse struct {
	ID          string              `json:"id"`
	MeetingID   string              `json:"meetingId"`
	WeekStart   int64               `json:"weekStart"`
	Format      models.ExportFormat `json:"format"`
	Status      models.ExportStatus `json:"status"`
	DownloadURL *string             `json:"downloadUrl,omitempty"`
	ExpiresAt   *time.Time          `json:"expiresAt,omitempty"`
	Error       *string             `json:"error,omitempty"`
}
