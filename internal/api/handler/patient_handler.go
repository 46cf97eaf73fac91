package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/qubehealth/appointments-api/internal/core/ports"
)

// PatientHandler handles HTTP requests for patient records.
type PatientHandler struct {
	service ports.PatientService
}

func NewPatientHandler(service ports.PatientService) *PatientHandler {
	return &PatientHandler{service: service}
}

// Create handles POST /api/users.
//
// @Summary      Register a patient
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      patientRequest  true  "Patient details"
// @Success      201   {object}  patientResponse
// @Failure      400   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /api/users [post]
func (h *PatientHandler) Create(c echo.Context) error {
	var req patientRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	p, err := h.service.CreatePatient(c.Request().Context(), toPatientInput(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toPatientResponse(p))
}

// List handles GET /api/users.
//
// @Summary      List patients
// @Tags         users
// @Produce      json
// @Success      200  {array}   patientResponse
// @Failure      500  {object}  errorResponse
// @Router       /api/users [get]
func (h *PatientHandler) List(c echo.Context) error {
	ps, err := h.service.ListPatients(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toPatientResponses(ps))
}

// Get handles GET /api/users/:id.
//
// @Summary      Get a patient by id
// @Tags         users
// @Produce      json
// @Param        id   path      int  true  "Patient id"
// @Success      200  {object}  patientResponse
// @Failure      400  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/users/{id} [get]
func (h *PatientHandler) Get(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	p, err := h.service.GetPatient(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toPatientResponse(p))
}

// Update handles PUT /api/users/:id.
//
// @Summary      Replace a patient's details
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        id    path      int             true  "Patient id"
// @Param        body  body      patientRequest  true  "Patient details"
// @Success      200   {object}  patientResponse
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /api/users/{id} [put]
func (h *PatientHandler) Update(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req patientRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	p, err := h.service.UpdatePatient(c.Request().Context(), id, toPatientInput(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toPatientResponse(p))
}

// Delete handles DELETE /api/users/:id. Meetings booked for the patient are removed too.
//
// @Summary      Delete a patient
// @Tags         users
// @Param        id   path  int  true  "Patient id"
// @Success      204
// @Failure      400  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/users/{id} [delete]
func (h *PatientHandler) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := h.service.DeletePatient(c.Request().Context(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
