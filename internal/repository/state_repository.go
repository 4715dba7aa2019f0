package repository

import (
	"context"

	"github.com/noah-isme/meeting-planner-api/internal/availability"
)

// StateRepository persists one serialized selection per meeting and week.
// Get returns an empty map when nothing has been stored. Put overwrites the
// whole snapshot; the last write wins.
type StateRepository interface {
	Get(ctx context.Context, meetingID string, weekStart int64) (availability.Serialized, error)
	Put(ctx context.Context, meetingID string, weekStart int64, state availability.Serialized) error
}

func orEmpty(state availability.Serialized) availability.Serialized {
	if state == nil {
		return availability.Serialized{}
	}
	return state
}
