package handlers

import (
	"log/slog"
	"net/http"

	"github.com/SscSPs/salon_management_app/internal/core/domain"
	portssvc "github.com/SscSPs/salon_management_app/internal/core/ports/services"
	"github.com/SscSPs/salon_management_app/internal/dto"
	"github.com/SscSPs/salon_management_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

// appointmentHandler handles HTTP requests related to appointments.
type appointmentHandler struct {
	appointmentService portssvc.AppointmentSvcFacade
}

func registerAppointmentRoutes(est *gin.RouterGroup, appointmentService portssvc.AppointmentSvcFacade) {
	h := &appointmentHandler{appointmentService: appointmentService}

	est.GET("/available-slots", h.availableSlots)

	appointments := est.Group("/appointments")
	{
		appointments.GET("", h.listAppointments)
		appointments.POST("", h.createAppointment)
		appointments.GET("/:id", h.getAppointment)
		appointments.PUT("/:id", h.updateAppointment)
		appointments.DELETE("/:id", h.deleteAppointment)

		appointments.POST("/:id/confirm", h.confirmAppointment)
		appointments.POST("/:id/complete", h.completeAppointment)
		appointments.POST("/:id/cancel", h.cancelAppointment)
		appointments.POST("/:id/no-show", h.markNoShow)
	}
}

// listAppointments godoc
// @Summary List appointments
// @Description Filters by day, time range, employee, client or status. Clients only see their own appointments.
// @Tags appointments
// @Produce  json
// @Param   establishment_id path string true "Establishment ID"
// @Param   date query string false "Local day (YYYY-MM-DD)"
// @Param   from query string false "Start of range (RFC3339)"
// @Param   to query string false "End of range (RFC3339)"
// @Param   employeeID query string false "Employee ID"
// @Param   clientID query string false "Client ID"
// @Param   status query string false "Status" Enums(SCHEDULED, CONFIRMED, COMPLETED, CANCELLED, NO_SHOW)
// @Param   limit query int false "Page size" default(20)
// @Param   nextToken query string false "Token of the next page"
// @Success 200 {object} dto.ListResponse[domain.Appointment]
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Security BearerAuth
// @Router /establishments/{establishment_id}/appointments [get]
func (h *appointmentHandler) listAppointments(c *gin.Context) {
	s, ok := tenantScope(c)
	if !ok {
		return
	}
	var params dto.ListAppointmentsParams
	if !bindQuery(c, &params) {
		return
	}
	items, next, err := h.appointmentService.ListAppointments(c.Request.Context(), s.establishmentID, s.userID, params)
	if err != nil {
		respondError(c, err, "Failed to list appointments")
		return
	}
	c.JSON(http.StatusOK, dto.NewListResponse(items, next))
}

// availableSlots godoc
// @Summary Free slots of an employee
// @Description Start times on the given day where the service fits inside business hours without overlapping another booking.
// @Tags appointments
// @Produce  json
// @Param   establishment_id path string true "Establishment ID"
// @Param   employeeID query string true "Employee ID"
// @Param   serviceID query string true "Service ID"
// @Param   date query string true "Local day (YYYY-MM-DD)"
// @Success 200 {object} dto.AvailableSlotsResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /establishments/{establishment_id}/available-slots [get]
func (h *appointmentHandler) availableSlots(c *gin.Context) {
	s, ok := tenantScope(c)
	if !ok {
		return
	}
	var params dto.AvailableSlotsParams
	if !bindQuery(c, &params) {
		return
	}
	slots, err := h.appointmentService.AvailableSlots(c.Request.Context(), s.establishmentID, s.userID, params)
	if err != nil {
		respondError(c, err, "Failed to compute available slots")
		return
	}
	if slots == nil {
		slots = []domain.TimeSlot{}
	}
	c.JSON(http.StatusOK, dto.AvailableSlotsResponse{Slots: slots})
}

// createAppointment godoc
// @Summary Book an appointment
// @Tags appointments
// @Accept  json
// @Produce  json
// @Param   establishment_id path string true "Establishment ID"
// @Param   appointment body dto.CreateAppointmentRequest true "Booking"
// @Success 201 {object} domain.Appointment
// @Failure 400 {object} ErrorResponse "Outside business hours or invalid input"
// @Failure 404 {object} ErrorResponse "Employee, client or service not found"
// @Failure 409 {object} ErrorResponse "Schedule conflict"
// @Failure 422 {object} ErrorResponse "Plan limit reached"
// @Security BearerAuth
// @Router /establishments/{establishment_id}/appointments [post]
func (h *appointmentHandler) createAppointment(c *gin.Context) {
	s, ok := tenantScope(c)
	if !ok {
		return
	}
	var req dto.CreateAppointmentRequest
	if !bindJSON(c, &req) {
		return
	}
	appt, err := h.appointmentService.CreateAppointment(c.Request.Context(), s.establishmentID, req, s.userID)
	if err != nil {
		respondError(c, err, "Failed to create appointment")
		return
	}
	middleware.GetLoggerFromCtx(c.Request.Context()).Info("Appointment booked",
		slog.String("appointment_id", appt.ID), slog.String("employee_id", appt.EmployeeID))
	c.JSON(http.StatusCreated, appt)
}

// getAppointment godoc
// @Summary Get an appointment
// @Tags appointments
// @Produce  json
// @Param   establishment_id path string true "Establishment ID"
// @Param   id path string true "Appointment ID"
// @Success 200 {object} domain.Appointment
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /establishments/{establishment_id}/appointments/{id} [get]
func (h *appointmentHandler) getAppointment(c *gin.Context) {
	s, ok := tenantScope(c)
	if !ok {
		return
	}
	appt, err := h.appointmentService.GetAppointment(c.Request.Context(), s.establishmentID, c.Param("id"), s.userID)
	if err != nil {
		respondError(c, err, "Failed to retrieve appointment")
		return
	}
	c.JSON(http.StatusOK, appt)
}

// updateAppointment godoc
// @Summary Update or reschedule an appointment
// @Tags appointments
// @Accept  json
// @Produce  json
// @Param   establishment_id path string true "Establishment ID"
// @Param   id path string true "Appointment ID"
// @Param   appointment body dto.UpdateAppointmentRequest true "Fields to update"
// @Success 200 {object} domain.Appointment
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Schedule conflict or stale version"
// @Failure 422 {object} ErrorResponse "Appointment is closed"
// @Security BearerAuth
// @Router /establishments/{establishment_id}/appointments/{id} [put]
func (h *appointmentHandler) updateAppointment(c *gin.Context) {
	s, ok := tenantScope(c)
	if !ok {
		return
	}
	var req dto.UpdateAppointmentRequest
	if !bindJSON(c, &req) {
		return
	}
	appt, err := h.appointmentService.UpdateAppointment(c.Request.Context(), s.establishmentID, c.Param("id"), req, s.userID)
	if err != nil {
		respondError(c, err, "Failed to update appointment")
		return
	}
	c.JSON(http.StatusOK, appt)
}

// deleteAppointment godoc
// @Summary Delete an appointment
// @Tags appointments
// @Param   establishment_id path string true "Establishment ID"
// @Param   id path string true "Appointment ID"
// @Success 204 "No Content"
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Appointment has payments"
// @Security BearerAuth
// @Router /establishments/{establishment_id}/appointments/{id} [delete]
func (h *appointmentHandler) deleteAppointment(c *gin.Context) {
	s, ok := tenantScope(c)
	if !ok {
		return
	}
	if err := h.appointmentService.DeleteAppointment(c.Request.Context(), s.establishmentID, c.Param("id"), s.userID); err != nil {
		respondError(c, err, "Failed to delete appointment")
		return
	}
	c.Status(http.StatusNoContent)
}

// confirmAppointment godoc
// @Summary Confirm an appointment
// @Tags appointments
// @Produce  json
// @Param   establishment_id path string true "Establishment ID"
// @Param   id path string true "Appointment ID"
// @Success 200 {object} domain.Appointment
// @Failure 400 {object} ErrorResponse "Transition not allowed"
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /establishments/{establishment_id}/appointments/{id}/confirm [post]
func (h *appointmentHandler) confirmAppointment(c *gin.Context) {
	s, ok := tenantScope(c)
	if !ok {
		return
	}
	appt, err := h.appointmentService.ConfirmAppointment(c.Request.Context(), s.establishmentID, c.Param("id"), s.userID)
	if err != nil {
		respondError(c, err, "Failed to confirm appointment")
		return
	}
	c.JSON(http.StatusOK, appt)
}

// completeAppointment godoc
// @Summary Complete an appointment
// @Tags appointments
// @Produce  json
// @Param   establishment_id path string true "Establishment ID"
// @Param   id path string true "Appointment ID"
// @Success 200 {object} domain.Appointment
// @Failure 400 {object} ErrorResponse "Transition not allowed"
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /establishments/{establishment_id}/appointments/{id}/complete [post]
func (h *appointmentHandler) completeAppointment(c *gin.Context) {
	s, ok := tenantScope(c)
	if !ok {
		return
	}
	appt, err := h.appointmentService.CompleteAppointment(c.Request.Context(), s.establishmentID, c.Param("id"), s.userID)
	if err != nil {
		respondError(c, err, "Failed to complete appointment")
		return
	}
	c.JSON(http.StatusOK, appt)
}

// cancelAppointment godoc
// @Summary Cancel an appointment
// @Tags appointments
// @Accept  json
// @Produce  json
// @Param   establishment_id path string true "Establishment ID"
// @Param   id path string true "Appointment ID"
// @Param   cancel body dto.CancelAppointmentRequest false "Reason"
// @Success 200 {object} domain.Appointment
// @Failure 400 {object} ErrorResponse "Transition not allowed"
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /establishments/{establishment_id}/appointments/{id}/cancel [post]
func (h *appointmentHandler) cancelAppointment(c *gin.Context) {
	s, ok := tenantScope(c)
	if !ok {
		return
	}
	var req dto.CancelAppointmentRequest
	if c.Request.ContentLength > 0 && !bindJSON(c, &req) {
		return
	}
	appt, err := h.appointmentService.CancelAppointment(c.Request.Context(), s.establishmentID, c.Param("id"), req.Reason, s.userID)
	if err != nil {
		respondError(c, err, "Failed to cancel appointment")
		return
	}
	c.JSON(http.StatusOK, appt)
}

// markNoShow godoc
// @Summary Mark an appointment as no-show
// @Tags appointments
// @Produce  json
// @Param   establishment_id path string true "Establishment ID"
// @Param   id path string true "Appointment ID"
// @Success 200 {object} domain.Appointment
// @Failure 400 {object} ErrorResponse "Transition not allowed"
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /establishments/{establishment_id}/appointments/{id}/no-show [post]
func (h *appointmentHandler) markNoShow(c *gin.Context) {
	s, ok := tenantScope(c)
	if !ok {
		return
	}
	appt, err := h.appointmentService.MarkNoShow(c.Request.Context(), s.establishmentID, c.Param("id"), s.userID)
	if err != nil {
		respondError(c, err, "Failed to mark no-show")
		return
	}
	c.JSON(http.StatusOK, appt)
}
