package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/meeting-planner-api/internal/availability"
	appErrors "github.com/noah-isme/meeting-planner-api/pkg/errors"
)

type selectionReaderStub struct {
	sel      availability.Selection
	cacheHit bool
	err      error
}

func (s selectionReaderStub) Get(ctx context.Context, meetingID string, weekStart int64) (availability.Selection, bool, error) {
	return s.sel, s.cacheHit, s.err
}

func (s selectionReaderStub) Roster() []string {
	return append([]string(nil), roster...)
}

func fixedClock() time.Time {
	return time.Date(2025, time.March, 12, 10, 30, 0, 0, time.UTC)
}

func newWeekService(reader selectionReader) *WeekService {
	return NewWeekService(reader, fixedClock, time.UTC)
}

func TestWeekServiceCurrent(t *testing.T) {
	info := newWeekService(selectionReaderStub{}).Current()
	assert.Equal(t, time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC), info.WeekStart)
	assert.Equal(t, int64(1741564800000), info.Timestamp)
	assert.Equal(t, 11, info.WeekNumber)
	assert.Equal(t, "Nädal 11 • 10.3.2025 – 16.3.2025", info.Label)
	assert.Equal(t, "10.3.2025", info.StartDate)
	assert.Equal(t, "16.3.2025", info.EndDate)
	assert.Equal(t, int64(1740960000000), info.Previous)
	assert.Equal(t, int64(1742169600000), info.Next)
}

func TestWeekServiceResolve(t *testing.T) {
	svc := newWeekService(selectionReaderStub{})

	info, err := svc.Resolve(" 1 ")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, time.December, 30, 0, 0, 0, 0, time.UTC), info.WeekStart)
	assert.Equal(t, 1, info.WeekNumber)

	info, err = svc.Resolve("14.3")
	require.NoError(t, err)
	assert.Equal(t, int64(1741564800000), info.Timestamp)

	for _, input := range []string{"", "abc", "54", "0", "31.2.2025"} {
		_, err := svc.Resolve(input)
		assert.ErrorIs(t, err, appErrors.ErrWeekUnresolved, input)
	}
}

func TestWeekServiceFromTimestamp(t *testing.T) {
	svc := newWeekService(selectionReaderStub{})

	info, err := svc.FromTimestamp("1741600000000")
	require.NoError(t, err)
	assert.Equal(t, int64(1741564800000), info.Timestamp)

	for _, raw := range []string{"", "-1", "12a", "99999999999999999999"} {
		_, err := svc.FromTimestamp(raw)
		assert.ErrorIs(t, err, appErrors.ErrInvalidWeekStart, raw)
	}
}

func TestWeekServiceCatalog(t *testing.T) {
	catalog := newWeekService(selectionReaderStub{}).Catalog()
	require.Len(t, catalog.Days, 7)
	assert.Equal(t, 71, catalog.TotalSlots)

	monday := catalog.Days[0]
	assert.Equal(t, "E", monday.Name)
	assert.Equal(t, 7, monday.Count)
	assert.Equal(t, []string{"10", "11", "12", "13", "14", "15", "16"}, monday.Hours)

	sunday := catalog.Days[6]
	assert.Equal(t, "P", sunday.Name)
	assert.Equal(t, 19, sunday.End)
	assert.Len(t, sunday.Hours, sunday.Count)
}

func TestWeekServiceGrid(t *testing.T) {
	sel := availability.NewSelection().Toggle(0, 10, 0).Toggle(0, 10, 3).Toggle(4, 18, 5)
	svc := newWeekService(selectionReaderStub{sel: sel, cacheHit: true})

	grid, hit, err := svc.Grid(context.Background(), "team", 1741564800000)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, "team", grid.MeetingID)
	assert.Equal(t, 11, grid.Week.WeekNumber)
	assert.Equal(t, roster, grid.Participants)
	assert.Equal(t, []string{"E", "T", "K", "N", "R", "L", "P"}, grid.DayNames)
	require.Len(t, grid.Slots, availability.SlotCount())

	first := grid.Slots[0]
	assert.True(t, first.FirstOfDay)
	assert.Equal(t, 2, first.Count)
	assert.Equal(t, []int{0, 3}, first.Participants)
	assert.Equal(t, "hsl(120, 64%, 71%)", first.Color)

	second := grid.Slots[1]
	assert.False(t, second.FirstOfDay)
	assert.Zero(t, second.Count)
	assert.Empty(t, second.Color)
	assert.NotNil(t, second.Participants)
}

func TestWeekServiceGridPropagatesErrors(t *testing.T) {
	svc := newWeekService(selectionReaderStub{err: errors.New("boom")})
	_, _, err := svc.Grid(context.Background(), "team", week)
	assert.EqualError(t, err, "boom")
}

func TestWeekServiceGridRejectsMisalignedWeekStart(t *testing.T) {
	svc := newWeekService(selectionReaderStub{err: errors.New("store must not be read")})
	for _, ts := range []int64{0, week + 3600000, week + 3*24*3600000, week - 1} {
		_, _, err := svc.Grid(context.Background(), "team", ts)
		assert.ErrorIs(t, err, appErrors.ErrInvalidWeekStart, "weekStart %d", ts)
	}
	assert.NoError(t, svc.CheckWeekStart(week))
	assert.NoError(t, svc.CheckWeekStart(week+7*24*3600000))

	tallinn := NewWeekService(selectionReaderStub{}, fixedClock, time.FixedZone("EET", 2*3600))
	assert.ErrorIs(t, tallinn.CheckWeekStart(week), appErrors.ErrInvalidWeekStart)
	assert.NoError(t, tallinn.CheckWeekStart(week-2*3600000))
}
