package service

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/noah-isme/meeting-planner-api/internal/availability"
	appErrors "github.com/noah-isme/meeting-planner-api/pkg/errors"
)

type stateRepoStub struct {
	mu     sync.Mutex
	states map[string]availability.Serialized
	gets   int
	puts   int
	getErr error
	putErr error
}

func newStateRepoStub() *stateRepoStub {
	return &stateRepoStub{states: map[string]availability.Serialized{}}
}

func stubKey(meetingID string, weekStart int64) string {
	return meetingID + "|" + strconv.FormatInt(weekStart, 10)
}

func (s *stateRepoStub) Get(ctx context.Context, meetingID string, weekStart int64) (availability.Serialized, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gets++
	if s.getErr != nil {
		return nil, s.getErr
	}
	if state, ok := s.states[stubKey(meetingID, weekStart)]; ok {
		return state, nil
	}
	return availability.Serialized{}, nil
}

func (s *stateRepoStub) Put(ctx context.Context, meetingID string, weekStart int64, state availability.Serialized) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.puts++
	if s.putErr != nil {
		return s.putErr
	}
	s.states[stubKey(meetingID, weekStart)] = state
	return nil
}

// pausingStateRepo holds its first Get after the store read until release is
// closed, so a test can run a mutation while a stale read is in flight.
type pausingStateRepo struct {
	*stateRepoStub
	paused  atomic.Bool
	read    chan struct{}
	release chan struct{}
}

func newPausingStateRepo() *pausingStateRepo {
	return &pausingStateRepo{
		stateRepoStub: newStateRepoStub(),
		read:          make(chan struct{}),
		release:       make(chan struct{}),
	}
}

func (p *pausingStateRepo) Get(ctx context.Context, meetingID string, weekStart int64) (availability.Serialized, error) {
	state, err := p.stateRepoStub.Get(ctx, meetingID, weekStart)
	if p.paused.CompareAndSwap(false, true) {
		close(p.read)
		<-p.release
	}
	return state, err
}

type cacheRepoStub struct {
	mu      sync.Mutex
	values  map[string]availability.Serialized
	getErr  error
	setErr  error
	deleted []string
}

func newCacheRepoStub() *cacheRepoStub {
	return &cacheRepoStub{values: map[string]availability.Serialized{}}
}

func (c *cacheRepoStub) Get(ctx context.Context, key string, dest interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return c.getErr
	}
	value, ok := c.values[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	target, ok := dest.(*availability.Serialized)
	if !ok {
		return errors.New("unexpected destination")
	}
	*target = value
	return nil
}

func (c *cacheRepoStub) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.setErr != nil {
		return c.setErr
	}
	c.values[key] = value.(availability.Serialized)
	return nil
}

func (c *cacheRepoStub) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deleted = append(c.deleted, key)
	delete(c.values, key)
	return nil
}

func (c *cacheRepoStub) StateKey(meetingID string, weekStart int64) string {
	return "mp-" + meetingID + "-" + strconv.FormatInt(weekStart, 10)
}
