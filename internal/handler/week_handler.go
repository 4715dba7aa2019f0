package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/meeting-planner-api/internal/dto"
	"github.com/noah-isme/meeting-planner-api/pkg/response"
)

type weekService interface {
	Current() dto.WeekInfo
	Resolve(input string) (dto.WeekInfo, error)
	FromTimestamp(raw string) (dto.WeekInfo, error)
	Catalog() dto.CatalogResponse
}

type rosterProvider interface {
	Roster() []string
}

// WeekHandler exposes calendar lookups.
type WeekHandler struct {
	weeks  weekService
	roster rosterProvider
}

// NewWeekHandler constructs the handler.
func NewWeekHandler(weeks weekService, roster rosterProvider) *WeekHandler {
	return &WeekHandler{weeks: weeks, roster: roster}
}

// Current godoc
// @Summary Week containing today
// @Tags Weeks
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /weeks/current [get]
func (h *WeekHandler) Current(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.weeks.Current())
}

// Resolve godoc
// @Summary Resolve a week number or D.M[.YYYY] date
// @Tags Weeks
// @Produce json
// @Param input query string true "Week number or date"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /weeks/resolve [get]
func (h *WeekHandler) Resolve(c *gin.Context) {
	info, err := h.weeks.Resolve(c.Query("input"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, info)
}

// FromTimestamp godoc
// @Summary Describe the week of a stored bucket id
// @Tags Weeks
// @Produce json
// @Param timestamp path int true "Week start, Unix milliseconds"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /weeks/{timestamp} [get]
func (h *WeekHandler) FromTimestamp(c *gin.Context) {
	info, err := h.weeks.FromTimestamp(c.Param("timestamp"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, info)
}

// Slots godoc
// @Summary Slot catalog grouped by day
// @Tags Weeks
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /slots [get]
func (h *WeekHandler) Slots(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.weeks.Catalog())
}

// Participants godoc
// @Summary Configured participant roster
// @Tags Weeks
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /participants [get]
func (h *WeekHandler) Participants(c *gin.Context) {
	response.JSON(c, http.StatusOK, dto.ParticipantsResponse{Participants: h.roster.Roster()})
}
