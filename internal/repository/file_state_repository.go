package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/noah-isme/meeting-planner-api/internal/availability"
	"github.com/noah-isme/meeting-planner-api/pkg/storage"
)

// stateDocument mirrors data/meetings.json: {meetingId: {weekStart: state}}.
// Meetings stay raw so entries written by older versions survive a rewrite
// untouched and never fail a read for another meeting.
type stateDocument map[string]json.RawMessage

// FileStateRepository stores every meeting in a single JSON document.
type FileStateRepository struct {
	file *storage.JSONFile
}

// NewFileStateRepository constructs the repository on top of file.
func NewFileStateRepository(file *storage.JSONFile) *FileStateRepository {
	return &FileStateRepository{file: file}
}

// Get returns the stored state for the meeting week. A week that is missing or
// cannot be decoded reads as empty.
func (r *FileStateRepository) Get(ctx context.Context, meetingID string, weekStart int64) (availability.Serialized, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	doc := stateDocument{}
	if err := r.file.Read(&doc); err != nil {
		return nil, err
	}
	raw, ok := decodeWeeks(doc[meetingID])[weekKey(weekStart)]
	if !ok {
		return availability.Serialized{}, nil
	}
	state, err := availability.DecodeSerialized(raw)
	if err != nil {
		return availability.Serialized{}, nil
	}
	return orEmpty(state), nil
}

// Put replaces the stored state for the meeting week.
func (r *FileStateRepository) Put(ctx context.Context, meetingID string, weekStart int64, state availability.Serialized) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	payload, err := json.Marshal(orEmpty(state))
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	doc := stateDocument{}
	return r.file.Update(&doc, func() error {
		weeks := decodeWeeks(doc[meetingID])
		weeks[weekKey(weekStart)] = payload
		encoded, err := json.Marshal(weeks)
		if err != nil {
			return fmt.Errorf("encode meeting %s: %w", meetingID, err)
		}
		doc[meetingID] = encoded
		return nil
	})
}

// decodeWeeks splits one meeting entry into its weeks. Anything that is not an
// object decodes to an empty map.
func decodeWeeks(raw json.RawMessage) map[string]json.RawMessage {
	weeks := map[string]json.RawMessage{}
	if len(raw) == 0 {
		return weeks
	}
	if err := json.Unmarshal(raw, &weeks); err != nil || weeks == nil {
		return map[string]json.RawMessage{}
	}
	return weeks
}

func weekKey(weekStart int64) string {
	return strconv.FormatInt(weekStart, 10)
}
