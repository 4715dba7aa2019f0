package service

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"regexp"
	"strconv"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/meeting-planner-api/internal/availability"
	appErrors "github.com/noah-isme/meeting-planner-api/pkg/errors"
)

var (
	meetingIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)
	weekStartPattern = regexp.MustCompile(`^\d+$`)
)

// lockStripes bounds the number of week locks; unrelated weeks may share one.
const lockStripes = 64

type validationRule struct {
	tag string
	fn  validator.Func
}

var stateKeyRules = []validationRule{
	{tag: "meeting_id", fn: func(fl validator.FieldLevel) bool {
		return meetingIDPattern.MatchString(fl.Field().String())
	}},
	{tag: "week_start", fn: func(fl validator.FieldLevel) bool {
		return weekStartPattern.MatchString(fl.Field().String())
	}},
}

type stateRepository interface {
	Get(ctx context.Context, meetingID string, weekStart int64) (availability.Serialized, error)
	Put(ctx context.Context, meetingID string, weekStart int64, state availability.Serialized) error
}

// StateKeyRequest identifies a meeting week as it arrives on the wire.
type StateKeyRequest struct {
	MeetingID string `validate:"meeting_id"`
	WeekStart string `validate:"week_start"`
}

// StateServiceConfig wires the optional collaborators of StateService.
type StateServiceConfig struct {
	Backend      string
	Participants []string
	Cache        *CacheService
	Metrics      *MetricsService
	Validator    *validator.Validate
	Logger       *zap.Logger
}

// StateService applies selection changes to stored week states.
type StateService struct {
	repo      stateRepository
	backend   string
	roster    []string
	cache     *CacheService
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger

	locks [lockStripes]sync.Mutex
}

// NewStateService constructs the service. It panics when the state key
// validations cannot be registered on cfg.Validator.
func NewStateService(repo stateRepository, cfg StateServiceConfig) *StateService {
	if cfg.Validator == nil {
		cfg.Validator = validator.New()
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Backend == "" {
		cfg.Backend = "unknown"
	}
	svc := &StateService{
		repo:      repo,
		backend:   cfg.Backend,
		roster:    append([]string(nil), cfg.Participants...),
		cache:     cfg.Cache,
		metrics:   cfg.Metrics,
		validator: cfg.Validator,
		logger:    cfg.Logger,
	}
	if err := registerValidations(svc.validator, stateKeyRules); err != nil {
		panic(err)
	}
	return svc
}

func registerValidations(v *validator.Validate, rules []validationRule) error {
	for _, rule := range rules {
		if err := v.RegisterValidation(rule.tag, rule.fn); err != nil {
			return fmt.Errorf("register %q validation: %w", rule.tag, err)
		}
	}
	return nil
}

// Roster returns the participant names in index order.
func (s *StateService) Roster() []string {
	return append([]string(nil), s.roster...)
}

// ParseKey validates a meeting id and raw weekStart query value. The meeting
// id is checked first so both errors surface in the same order as before.
func (s *StateService) ParseKey(meetingID, weekStart string) (int64, error) {
	err := s.validator.Struct(StateKeyRequest{MeetingID: meetingID, WeekStart: weekStart})
	if err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			for _, fe := range fieldErrs {
				if fe.Field() == "MeetingID" {
					return 0, appErrors.ErrInvalidMeetingID
				}
			}
			return 0, appErrors.ErrInvalidWeekStart
		}
		return 0, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid state key")
	}
	ts, err := strconv.ParseInt(weekStart, 10, 64)
	if err != nil {
		return 0, appErrors.ErrInvalidWeekStart
	}
	return ts, nil
}

// ValidateMeetingID checks a meeting id on its own.
func (s *StateService) ValidateMeetingID(meetingID string) error {
	if err := s.validator.Var(meetingID, "meeting_id"); err != nil {
		return appErrors.ErrInvalidMeetingID
	}
	return nil
}

// Get returns the stored selection and whether it came from the cache. A miss
// reads and refills under the week lock so a slower read cannot overwrite the
// cache entry of a mutation that finished in between.
func (s *StateService) Get(ctx context.Context, meetingID string, weekStart int64) (availability.Selection, bool, error) {
	if cached, ok := s.cache.LoadState(ctx, meetingID, weekStart); ok {
		return availability.Deserialize(cached), true, nil
	}
	unlock := s.lock(meetingID, weekStart)
	defer unlock()

	raw, err := s.read(ctx, meetingID, weekStart)
	if err != nil {
		return availability.Selection{}, false, err
	}
	sel := availability.Deserialize(raw)
	s.cache.StoreState(ctx, meetingID, weekStart, sel.Serialize())
	return sel, false, nil
}

// Replace overwrites the stored week with state. Malformed keys and empty
// lists are dropped before the write; nil stores an empty selection.
func (s *StateService) Replace(ctx context.Context, meetingID string, weekStart int64, state availability.Serialized) (availability.Serialized, error) {
	unlock := s.lock(meetingID, weekStart)
	defer unlock()

	sel := availability.Deserialize(state)
	if err := s.write(ctx, meetingID, weekStart, sel); err != nil {
		return nil, err
	}
	s.metrics.RecordMutation(MutationReplace)
	return sel.Serialize(), nil
}

// Toggle flips participant in the (day, hour) slot.
func (s *StateService) Toggle(ctx context.Context, meetingID string, weekStart int64, day, hour, participant int) (availability.Selection, error) {
	if !availability.ValidSlot(day, hour) {
		return availability.Selection{}, appErrors.ErrSlotOutOfRange
	}
	if err := s.checkParticipant(participant); err != nil {
		return availability.Selection{}, err
	}
	return s.mutate(ctx, meetingID, weekStart, MutationToggle, func(sel availability.Selection) (availability.Selection, error) {
		return sel.Toggle(day, hour, participant), nil
	})
}

// SetRange selects or clears participant across catalog slots from..to inclusive.
func (s *StateService) SetRange(ctx context.Context, meetingID string, weekStart int64, participant, from, to int, selected bool) (availability.Selection, error) {
	if err := s.checkParticipant(participant); err != nil {
		return availability.Selection{}, err
	}
	return s.mutate(ctx, meetingID, weekStart, MutationRange, func(sel availability.Selection) (availability.Selection, error) {
		next, err := sel.SetRange(participant, from, to, selected)
		if errors.Is(err, availability.ErrSlotIndexOutOfRange) {
			return sel, appErrors.Clone(appErrors.ErrSlotOutOfRange, err.Error())
		}
		return next, err
	})
}

func (s *StateService) mutate(ctx context.Context, meetingID string, weekStart int64, kind string, apply func(availability.Selection) (availability.Selection, error)) (availability.Selection, error) {
	unlock := s.lock(meetingID, weekStart)
	defer unlock()

	raw, err := s.read(ctx, meetingID, weekStart)
	if err != nil {
		return availability.Selection{}, err
	}
	next, err := apply(availability.Deserialize(raw))
	if err != nil {
		return availability.Selection{}, err
	}
	if err := s.write(ctx, meetingID, weekStart, next); err != nil {
		return availability.Selection{}, err
	}
	s.metrics.RecordMutation(kind)
	s.logger.Debug("selection updated",
		zap.String("meeting_id", meetingID),
		zap.Int64("week_start", weekStart),
		zap.String("kind", kind),
		zap.Int("slots", next.Len()),
	)
	return next, nil
}

// read always goes to the store so mutations start from the persisted state.
func (s *StateService) read(ctx context.Context, meetingID string, weekStart int64) (availability.Serialized, error) {
	start := time.Now()
	raw, err := s.repo.Get(ctx, meetingID, weekStart)
	s.metrics.ObserveStoreOperation(s.backend, "get", err, time.Since(start))
	if err != nil {
		s.logger.Error("state read failed", zap.String("meeting_id", meetingID), zap.Int64("week_start", weekStart), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read state")
	}
	return raw, nil
}

func (s *StateService) write(ctx context.Context, meetingID string, weekStart int64, sel availability.Selection) error {
	serialized := sel.Serialize()
	start := time.Now()
	err := s.repo.Put(ctx, meetingID, weekStart, serialized)
	s.metrics.ObserveStoreOperation(s.backend, "put", err, time.Since(start))
	if err != nil {
		s.logger.Error("state write failed", zap.String("meeting_id", meetingID), zap.Int64("week_start", weekStart), zap.Error(err))
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to write state")
	}
	s.cache.StoreState(ctx, meetingID, weekStart, serialized)
	return nil
}

func (s *StateService) checkParticipant(participant int) error {
	if participant < 0 || participant >= len(s.roster) {
		return appErrors.ErrUnknownParticipant
	}
	return nil
}

// lock serialises read-modify-write cycles on one meeting week within this process.
func (s *StateService) lock(meetingID string, weekStart int64) func() {
	mu := s.stripe(meetingID, weekStart)
	mu.Lock()
	return mu.Unlock
}

func (s *StateService) stripe(meetingID string, weekStart int64) *sync.Mutex {
	h := fnv.New32a()
	h.Write([]byte(meetingID))
	h.Write([]byte{'/'})
	h.Write([]byte(strconv.FormatInt(weekStart, 10)))
	return &s.locks[h.Sum32()%lockStripes]
}
