package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/meeting-planner-api/internal/availability"
	"github.com/noah-isme/meeting-planner-api/internal/dto"
	"github.com/noah-isme/meeting-planner-api/internal/middleware"
	appErrors "github.com/noah-isme/meeting-planner-api/pkg/errors"
	"github.com/noah-isme/meeting-planner-api/pkg/response"
)

type stateService interface {
	ParseKey(meetingID, weekStart string) (int64, error)
	Get(ctx context.Context, meetingID string, weekStart int64) (availability.Selection, bool, error)
	Replace(ctx context.Context, meetingID string, weekStart int64, state availability.Serialized) (availability.Serialized, error)
	Toggle(ctx context.Context, meetingID string, weekStart int64, day, hour, participant int) (availability.Selection, error)
	SetRange(ctx context.Context, meetingID string, weekStart int64, participant, from, to int, selected bool) (availability.Selection, error)
}

type gridService interface {
	Grid(ctx context.Context, meetingID string, weekStart int64) (dto.GridResponse, bool, error)
}

// StateHandler serves meeting week state.
type StateHandler struct {
	states   stateService
	grids    gridService
	validate *validator.Validate
}

// NewStateHandler constructs the handler.
func NewStateHandler(states stateService, grids gridService) *StateHandler {
	return &StateHandler{states: states, grids: grids, validate: validator.New()}
}

// Get godoc
// @Summary Stored selection for a meeting week
// @Tags State
// @Produce json
// @Param id path string true "Meeting ID"
// @Param weekStart query int true "Week start, Unix milliseconds"
// @Success 200 {object} map[string][]int
// @Failure 400 {object} response.LegacyError
// @Router /meetings/{id}/state [get]
func (h *StateHandler) Get(c *gin.Context) {
	meetingID := c.Param("id")
	weekStart, err := h.states.ParseKey(meetingID, c.Query("weekStart"))
	if err != nil {
		response.RawError(c, err)
		return
	}
	sel, _, err := h.states.Get(c.Request.Context(), meetingID, weekStart)
	if err != nil {
		response.RawError(c, err)
		return
	}
	response.Raw(c, http.StatusOK, sel.Serialize())
}

// Put godoc
// @Summary Replace the selection for a meeting week
// @Tags State
// @Accept json
// @Produce json
// @Param id path string true "Meeting ID"
// @Param weekStart query int true "Week start, Unix milliseconds"
// @Param state body map[string][]int false "Selection; null stores an empty object"
// @Success 200 {object} map[string][]int
// @Failure 400 {object} response.LegacyError
// @Router /meetings/{id}/state [put]
func (h *StateHandler) Put(c *gin.Context) {
	meetingID := c.Param("id")
	weekStart, err := h.states.ParseKey(meetingID, c.Query("weekStart"))
	if err != nil {
		response.RawError(c, err)
		return
	}
	raw, err := c.GetRawData()
	if err != nil {
		response.RawError(c, appErrors.ErrInvalidBody)
		return
	}
	state, err := decodeStateBody(raw)
	if err != nil {
		response.RawError(c, err)
		return
	}
	stored, err := h.states.Replace(c.Request.Context(), meetingID, weekStart, state)
	if err != nil {
		response.RawError(c, err)
		return
	}
	response.Raw(c, http.StatusOK, stored)
}

// Toggle godoc
// @Summary Toggle one participant in one slot
// @Tags State
// @Accept json
// @Produce json
// @Param id path string true "Meeting ID"
// @Param weekStart query int true "Week start, Unix milliseconds"
// @Param request body dto.ToggleRequest true "Slot and participant"
// @Success 200 {object} response.Envelope
// @Router /meetings/{id}/state/toggle [post]
func (h *StateHandler) Toggle(c *gin.Context) {
	meetingID := c.Param("id")
	weekStart, err := h.states.ParseKey(meetingID, c.Query("weekStart"))
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.ToggleRequest
	if err := h.bind(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	sel, err := h.states.Toggle(c.Request.Context(), meetingID, weekStart, *req.Day, *req.Hour, *req.Participant)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.StateResponse{MeetingID: meetingID, WeekStart: weekStart, State: sel.Serialize()})
}

// Range godoc
// @Summary Select or clear a run of slots for one participant
// @Tags State
// @Accept json
// @Produce json
// @Param id path string true "Meeting ID"
// @Param weekStart query int true "Week start, Unix milliseconds"
// @Param request body dto.RangeRequest true "Slot index range"
// @Success 200 {object} response.Envelope
// @Router /meetings/{id}/state/range [post]
func (h *StateHandler) Range(c *gin.Context) {
	meetingID := c.Param("id")
	weekStart, err := h.states.ParseKey(meetingID, c.Query("weekStart"))
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.RangeRequest
	if err := h.bind(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	sel, err := h.states.SetRange(c.Request.Context(), meetingID, weekStart, *req.Participant, *req.From, *req.To, req.Selected)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.StateResponse{MeetingID: meetingID, WeekStart: weekStart, State: sel.Serialize()})
}

// Grid godoc
// @Summary Render data for a meeting week
// @Tags State
// @Produce json
// @Param id path string true "Meeting ID"
// @Param weekStart query int true "Week start, Unix milliseconds"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /meetings/{id}/grid [get]
func (h *StateHandler) Grid(c *gin.Context) {
	meetingID := c.Param("id")
	weekStart, err := h.states.ParseKey(meetingID, c.Query("weekStart"))
	if err != nil {
		response.Error(c, err)
		return
	}
	grid, cacheHit, err := h.grids.Grid(c.Request.Context(), meetingID, weekStart)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	response.JSON(c, http.StatusOK, grid, middleware.ResponseMeta(c))
}

func (h *StateHandler) bind(c *gin.Context, dest interface{}) error {
	if err := c.ShouldBindJSON(dest); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	if err := h.validate.Struct(dest); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	return nil
}

// decodeStateBody accepts a JSON object, null or an empty body. Entries whose
// value is not a list of non-negative integers are dropped.
func decodeStateBody(raw []byte) (availability.Serialized, error) {
	state, err := availability.DecodeSerialized(raw)
	if err != nil {
		return nil, appErrors.ErrInvalidBody
	}
	return state, nil
}
