package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/qubehealth/appointments-api/internal/core/ports"
)

// StaffHandler handles HTTP requests for the staff directory.
type StaffHandler struct {
	service ports.StaffService
}

func NewStaffHandler(service ports.StaffService) *StaffHandler {
	return &StaffHandler{service: service}
}

// Create handles POST /api/staff.
//
// @Summary      Add a staff member
// @Tags         staff
// @Accept       json
// @Produce      json
// @Param        body  body      staffRequest  true  "Staff details"
// @Success      201   {object}  staffResponse
// @Failure      400   {object}  errorResponse
// @Router       /api/staff [post]
func (h *StaffHandler) Create(c echo.Context) error {
	var req staffRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	s, err := h.service.CreateStaff(c.Request().Context(), toStaffInput(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toStaffResponse(s))
}

// List handles GET /api/staff.
//
// @Summary      List staff
// @Tags         staff
// @Produce      json
// @Success      200  {array}  staffResponse
// @Router       /api/staff [get]
func (h *StaffHandler) List(c echo.Context) error {
	ss, err := h.service.ListStaff(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toStaffResponses(ss))
}

// Get handles GET /api/staff/:id.
//
// @Summary      Get a staff member by id
// @Tags         staff
// @Produce      json
// @Param        id   path      int  true  "Staff id"
// @Success      200  {object}  staffResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/staff/{id} [get]
func (h *StaffHandler) Get(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	s, err := h.service.GetStaff(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toStaffResponse(s))
}

// Update handles PUT /api/staff/:id.
//
// @Summary      Replace a staff member's details
// @Tags         staff
// @Accept       json
// @Produce      json
// @Param        id    path      int           true  "Staff id"
// @Param        body  body      staffRequest  true  "Staff details"
// @Success      200   {object}  staffResponse
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /api/staff/{id} [put]
func (h *StaffHandler) Update(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req staffRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	s, err := h.service.UpdateStaff(c.Request().Context(), id, toStaffInput(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toStaffResponse(s))
}

// Delete handles DELETE /api/staff/:id.
//
// @Summary      Delete a staff member and their meetings
// @Tags         staff
// @Param        id   path  int  true  "Staff id"
// @Success      204
// @Failure      404  {object}  errorResponse
// @Router       /api/staff/{id} [delete]
func (h *StaffHandler) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := h.service.DeleteStaff(c.Request().Context(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
