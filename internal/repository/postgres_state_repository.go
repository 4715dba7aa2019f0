package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"

	"github.com/noah-isme/meeting-planner-api/internal/availability"
	"github.com/noah-isme/meeting-planner-api/internal/models"
)

// PostgresStateRepository persists week states in meeting_week_states.
type PostgresStateRepository struct {
	db *sqlx.DB
}

// NewPostgresStateRepository constructs the repository.
func NewPostgresStateRepository(db *sqlx.DB) *PostgresStateRepository {
	return &PostgresStateRepository{db: db}
}

// Get fetches the state for a meeting week.
func (r *PostgresStateRepository) Get(ctx context.Context, meetingID string, weekStart int64) (availability.Serialized, error) {
	const query = `SELECT meeting_id, week_start, state, updated_at FROM meeting_week_states WHERE meeting_id = $1 AND week_start = $2`
	var row models.WeekState
	if err := r.db.GetContext(ctx, &row, query, meetingID, weekStart); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return availability.Serialized{}, nil
		}
		return nil, fmt.Errorf("get week state: %w", err)
	}
	var state availability.Serialized
	if err := row.State.Unmarshal(&state); err != nil {
		return nil, fmt.Errorf("decode week state: %w", err)
	}
	return orEmpty(state), nil
}

// Put upserts the state for a meeting week.
func (r *PostgresStateRepository) Put(ctx context.Context, meetingID string, weekStart int64, state availability.Serialized) error {
	const query = `INSERT INTO meeting_week_states (meeting_id, week_start, state, updated_at)
VALUES (:meeting_id, :week_start, :state, :updated_at)
ON CONFLICT (meeting_id, week_start)
DO UPDATE SET state = EXCLUDED.state, updated_at = EXCLUDED.updated_at`
	payload, err := json.Marshal(orEmpty(state))
	if err != nil {
		return fmt.Errorf("encode week state: %w", err)
	}
	row := models.WeekState{
		MeetingID: meetingID,
		WeekStart: weekStart,
		State:     types.JSONText(payload),
		UpdatedAt: time.Now().UTC(),
	}
	if _, err := r.db.NamedExecContext(ctx, query, row); err != nil {
		return fmt.Errorf("upsert week state: %w", err)
	}
	return nil
}
