package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/noah-isme/meeting-planner-api/internal/availability"
)

type weekStateDocument struct {
	MeetingID string                  `bson:"meeting_id"`
	WeekStart int64                   `bson:"week_start"`
	State     availability.Serialized `bson:"state"`
	UpdatedAt time.Time               `bson:"updated_at"`
}

// MongoStateRepository persists week states as documents keyed by meeting and week.
type MongoStateRepository struct {
	coll    *mongo.Collection
	timeout time.Duration
}

// NewMongoStateRepository constructs the repository. A non-positive timeout defaults to 5s.
func NewMongoStateRepository(coll *mongo.Collection, timeout time.Duration) *MongoStateRepository {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &MongoStateRepository{coll: coll, timeout: timeout}
}

// EnsureIndexes creates the unique (meeting_id, week_start) index.
func (r *MongoStateRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*r.timeout)
	defer cancel()

	model := mongo.IndexModel{
		Keys:    bson.D{{Key: "meeting_id", Value: 1}, {Key: "week_start", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	if _, err := r.coll.Indexes().CreateOne(ctx, model); err != nil {
		return fmt.Errorf("create week state index: %w", err)
	}
	return nil
}

// Get fetches the state for a meeting week.
func (r *MongoStateRepository) Get(ctx context.Context, meetingID string, weekStart int64) (availability.Serialized, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var doc weekStateDocument
	err := r.coll.FindOne(ctx, weekFilter(meetingID, weekStart)).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return availability.Serialized{}, nil
		}
		return nil, fmt.Errorf("find week state: %w", err)
	}
	return orEmpty(doc.State), nil
}

// Put replaces the state document, inserting it when absent.
func (r *MongoStateRepository) Put(ctx context.Context, meetingID string, weekStart int64, state availability.Serialized) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	doc := weekStateDocument{
		MeetingID: meetingID,
		WeekStart: weekStart,
		State:     orEmpty(state),
		UpdatedAt: time.Now().UTC(),
	}
	opts := options.Replace().SetUpsert(true)
	if _, err := r.coll.ReplaceOne(ctx, weekFilter(meetingID, weekStart), doc, opts); err != nil {
		return fmt.Errorf("replace week state: %w", err)
	}
	return nil
}

func weekFilter(meetingID string, weekStart int64) bson.D {
	return bson.D{{Key: "meeting_id", Value: meetingID}, {Key: "week_start", Value: weekStart}}
}
