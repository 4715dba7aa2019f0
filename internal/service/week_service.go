package service

import (
	"context"
	"strconv"
	"time"

	"github.com/noah-isme/meeting-planner-api/internal/availability"
	"github.com/noah-isme/meeting-planner-api/internal/dto"
	appErrors "github.com/noah-isme/meeting-planner-api/pkg/errors"
)

type selectionReader interface {
	Get(ctx context.Context, meetingID string, weekStart int64) (availability.Selection, bool, error)
	Roster() []string
}

// WeekService answers calendar questions and assembles grid views.
type WeekService struct {
	states selectionReader
	now    func() time.Time
	loc    *time.Location
}

// NewWeekService constructs the service. A nil clock uses time.Now and a nil
// location uses time.Local.
func NewWeekService(states selectionReader, now func() time.Time, loc *time.Location) *WeekService {
	if now == nil {
		now = time.Now
	}
	if loc == nil {
		loc = time.Local
	}
	return &WeekService{states: states, now: now, loc: loc}
}

// Current describes the week containing now.
func (s *WeekService) Current() dto.WeekInfo {
	return describeWeek(availability.WeekStartOf(s.clock()))
}

// Resolve interprets a week number or D.M[.YYYY] date.
func (s *WeekService) Resolve(input string) (dto.WeekInfo, error) {
	start, ok := availability.ResolveWeekStart(input, s.clock())
	if !ok {
		return dto.WeekInfo{}, appErrors.ErrWeekUnresolved
	}
	return describeWeek(start), nil
}

// FromTimestamp describes the week of a stored bucket id given in milliseconds.
func (s *WeekService) FromTimestamp(raw string) (dto.WeekInfo, error) {
	if !weekStartPattern.MatchString(raw) {
		return dto.WeekInfo{}, appErrors.ErrInvalidWeekStart
	}
	ms, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return dto.WeekInfo{}, appErrors.ErrInvalidWeekStart
	}
	return describeWeek(availability.WeekFromTimestamp(ms, s.loc)), nil
}

// Catalog lists the slot grid day by day.
func (s *WeekService) Catalog() dto.CatalogResponse {
	days := make([]dto.DaySlots, 0, availability.DaysPerWeek)
	for day, hours := range availability.HoursByDay {
		days = append(days, dto.DaySlots{
			Day:   day,
			Name:  availability.DayNames[day],
			Start: hours.Start,
			End:   hours.End,
			Count: availability.DaySlotCount(day),
			Hours: []string{},
		})
	}
	for _, slot := range availability.BuildSlots() {
		days[slot.Day].Hours = append(days[slot.Day].Hours, slot.HourLabel)
	}
	return dto.CatalogResponse{Days: days, TotalSlots: availability.SlotCount()}
}

// CheckWeekStart rejects timestamps that are not the Monday midnight opening
// a week in the service location.
func (s *WeekService) CheckWeekStart(weekStart int64) error {
	if availability.WeekTimestamp(availability.WeekFromTimestamp(weekStart, s.loc)) != weekStart {
		return appErrors.Clone(appErrors.ErrInvalidWeekStart, "weekStart must be the start of a week")
	}
	return nil
}

// Grid builds the render data for one meeting week. The boolean reports a cache hit.
func (s *WeekService) Grid(ctx context.Context, meetingID string, weekStart int64) (dto.GridResponse, bool, error) {
	if err := s.CheckWeekStart(weekStart); err != nil {
		return dto.GridResponse{}, false, err
	}
	sel, cacheHit, err := s.states.Get(ctx, meetingID, weekStart)
	if err != nil {
		return dto.GridResponse{}, false, err
	}

	slots := availability.BuildSlots()
	cells := make([]dto.GridSlot, 0, len(slots))
	for _, slot := range slots {
		count := sel.Count(slot.Day, slot.Hour)
		color, _ := availability.DensityColor(count)
		participants := sel.Participants(slot.Day, slot.Hour)
		if participants == nil {
			participants = []int{}
		}
		cells = append(cells, dto.GridSlot{
			Day:          slot.Day,
			Hour:         slot.Hour,
			HourLabel:    slot.HourLabel,
			FirstOfDay:   availability.IsFirstHourOfDay(slot),
			Count:        count,
			Color:        color,
			Participants: participants,
		})
	}

	return dto.GridResponse{
		MeetingID:    meetingID,
		Week:         describeWeek(availability.WeekFromTimestamp(weekStart, s.loc)),
		Participants: s.states.Roster(),
		DayNames:     append([]string(nil), availability.DayNames[:]...),
		Slots:        cells,
	}, cacheHit, nil
}

func (s *WeekService) clock() time.Time {
	return s.now().In(s.loc)
}

func describeWeek(start time.Time) dto.WeekInfo {
	return dto.WeekInfo{
		WeekStart:  start,
		Timestamp:  availability.WeekTimestamp(start),
		WeekNumber: availability.ISOWeekNumber(start),
		Label:      availability.WeekLabel(start),
		StartDate:  availability.FormatDate(start),
		EndDate:    availability.FormatDate(start.AddDate(0, 0, 6)),
		Previous:   availability.WeekTimestamp(start.AddDate(0, 0, -7)),
		Next:       availability.WeekTimestamp(start.AddDate(0, 0, 7)),
	}
}
