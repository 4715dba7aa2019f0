package handler

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/meeting-planner-api/internal/dto"
	appErrors "github.com/noah-isme/meeting-planner-api/pkg/errors"
)

type weekServiceStub struct {
	lastInput string
}

var stubWeek = dto.WeekInfo{
	WeekStart:  time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
	Timestamp:  1741564800000,
	WeekNumber: 11,
	Label:      "Nädal 11 • 10.3.2025 – 16.3.2025",
}

func (s *weekServiceStub) Current() dto.WeekInfo { return stubWeek }

func (s *weekServiceStub) Resolve(input string) (dto.WeekInfo, error) {
	s.lastInput = input
	if input != "11" {
		return dto.WeekInfo{}, appErrors.ErrWeekUnresolved
	}
	return stubWeek, nil
}

func (s *weekServiceStub) FromTimestamp(raw string) (dto.WeekInfo, error) {
	if raw != "1741564800000" {
		return dto.WeekInfo{}, appErrors.ErrInvalidWeekStart
	}
	return stubWeek, nil
}

func (s *weekServiceStub) Catalog() dto.CatalogResponse {
	return dto.CatalogResponse{Days: []dto.DaySlots{{Day: 0, Name: "E", Start: 10, End: 16, Count: 7}}, TotalSlots: 71}
}

type rosterStub []string

func (r rosterStub) Roster() []string { return r }

func TestWeekHandlerCurrent(t *testing.T) {
	h := NewWeekHandler(&weekServiceStub{}, rosterStub{"Ana"})
	c, rec := newTestContext(http.MethodGet, "/api/weeks/current", nil)
	h.Current(c)

	require.Equal(t, http.StatusOK, rec.Code)
	var info dto.WeekInfo
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &info))
	assert.Equal(t, int64(1741564800000), info.Timestamp)
	assert.Equal(t, 11, info.WeekNumber)
}

func TestWeekHandlerResolve(t *testing.T) {
	weeks := &weekServiceStub{}
	h := NewWeekHandler(weeks, rosterStub{})

	c, rec := newTestContext(http.MethodGet, "/api/weeks/resolve?input=11", nil)
	h.Resolve(c)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "11", weeks.lastInput)

	c, rec = newTestContext(http.MethodGet, "/api/weeks/resolve?input=abc", nil)
	h.Resolve(c)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	env := decodeEnvelope(t, rec)
	require.NotNil(t, env.Error)
	assert.Equal(t, appErrors.ErrWeekUnresolved.Code, env.Error.Code)
}

func TestWeekHandlerFromTimestamp(t *testing.T) {
	h := NewWeekHandler(&weekServiceStub{}, rosterStub{})

	c, rec := newTestContext(http.MethodGet, "/api/weeks/1741564800000", nil)
	c.Params = gin.Params{{Key: "timestamp", Value: "1741564800000"}}
	h.FromTimestamp(c)
	assert.Equal(t, http.StatusOK, rec.Code)

	c, rec = newTestContext(http.MethodGet, "/api/weeks/x", nil)
	c.Params = gin.Params{{Key: "timestamp", Value: "x"}}
	h.FromTimestamp(c)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWeekHandlerSlotsAndParticipants(t *testing.T) {
	h := NewWeekHandler(&weekServiceStub{}, rosterStub{"Ana", "Ben"})

	c, rec := newTestContext(http.MethodGet, "/api/slots", nil)
	h.Slots(c)
	require.Equal(t, http.StatusOK, rec.Code)
	var catalog dto.CatalogResponse
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &catalog))
	assert.Equal(t, 71, catalog.TotalSlots)

	c, rec = newTestContext(http.MethodGet, "/api/participants", nil)
	h.Participants(c)
	require.Equal(t, http.StatusOK, rec.Code)
	var roster dto.ParticipantsResponse
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &roster))
	assert.Equal(t, []string{"Ana", "Ben"}, roster.Participants)
}
