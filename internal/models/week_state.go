package models

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

// WeekState is the persisted selection of one meeting for one week.
type WeekState struct {
	MeetingID string         `db:"meeting_id" json:"meetingId"`
	WeekStart int64          `db:"week_start" json:"weekStart"`
	State     types.JSONText `db:"state" json:"state"`
	UpdatedAt time.Time      `db:"updated_at" json:"updatedAt"`
}
