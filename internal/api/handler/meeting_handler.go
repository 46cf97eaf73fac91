package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/qubehealth/appointments-api/internal/api/metrics"
	"github.com/qubehealth/appointments-api/internal/core/domain"
	"github.com/qubehealth/appointments-api/internal/core/ports"
)

// MeetingHandler handles HTTP requests for meetings.
type MeetingHandler struct {
	service ports.MeetingService
}

func NewMeetingHandler(service ports.MeetingService) *MeetingHandler {
	return &MeetingHandler{service: service}
}

// Create handles POST /api/meetings.
//
// @Summary      Book a meeting
// @Description  Rejects the booking when the doctor already has a meeting at exactly the same date-time.
// @Tags         meetings
// @Accept       json
// @Produce      json
// @Param        body  body      meetingRequest  true  "Meeting details"
// @Success      201   {object}  meetingResponse
// @Failure      400   {object}  errorResponse  "validation failed or unknown doctor/patient"
// @Failure      409   {object}  errorResponse  "slot already booked"
// @Router       /api/meetings [post]
func (h *MeetingHandler) Create(c echo.Context) error {
	var req meetingRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	m, err := h.service.CreateMeeting(c.Request().Context(), toMeetingInput(req))
	if err != nil {
		countConflict(err, "create")
		return err
	}
	metrics.MeetingsCreatedTotal.Inc()
	return c.JSON(http.StatusCreated, toMeetingResponse(m))
}

// List handles GET /api/meetings.
//
// @Summary      List meetings
// @Tags         meetings
// @Produce      json
// @Success      200  {array}  meetingResponse
// @Router       /api/meetings [get]
func (h *MeetingHandler) List(c echo.Context) error {
	ms, err := h.service.ListMeetings(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toMeetingResponses(ms))
}

// Get handles GET /api/meetings/:id.
//
// @Summary      Get a meeting by id
// @Tags         meetings
// @Produce      json
// @Param        id   path      int  true  "Meeting id"
// @Success      200  {object}  meetingResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/meetings/{id} [get]
func (h *MeetingHandler) Get(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	m, err := h.service.GetMeeting(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toMeetingResponse(m))
}

// Update handles PUT /api/meetings/:id.
//
// @Summary      Reschedule or reassign a meeting
// @Tags         meetings
// @Accept       json
// @Produce      json
// @Param        id    path      int             true  "Meeting id"
// @Param        body  body      meetingRequest  true  "Meeting details"
// @Success      200   {object}  meetingResponse
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /api/meetings/{id} [put]
func (h *MeetingHandler) Update(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req meetingRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	m, err := h.service.UpdateMeeting(c.Request().Context(), id, toMeetingInput(req))
	if err != nil {
		countConflict(err, "update")
		return err
	}
	return c.JSON(http.StatusOK, toMeetingResponse(m))
}

// Delete handles DELETE /api/meetings/:id.
//
// @Summary      Cancel a meeting
// @Tags         meetings
// @Param        id   path  int  true  "Meeting id"
// @Success      204
// @Failure      404  {object}  errorResponse
// @Router       /api/meetings/{id} [delete]
func (h *MeetingHandler) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := h.service.DeleteMeeting(c.Request().Context(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func countConflict(err error, operation string) {
	if errors.Is(err, domain.ErrSlotTaken) {
		metrics.MeetingConflictsTotal.WithLabelValues(operation).Inc()
	}
}
