package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/salon_management_app/internal/core/ports/services"
	"github.com/SscSPs/salon_management_app/internal/dto"
	"github.com/SscSPs/salon_management_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

// establishmentHandler handles HTTP requests related to establishments.
type establishmentHandler struct {
	establishmentService portssvc.EstablishmentSvcFacade
}

func newEstablishmentHandler(es portssvc.EstablishmentSvcFacade) *establishmentHandler {
	return &establishmentHandler{establishmentService: es}
}

// registerEstablishmentRoutes registers every establishment scoped route. Collections
// nest under /establishments/:establishment_id.
func registerEstablishmentRoutes(rg *gin.RouterGroup, services *portssvc.ServiceContainer) {
	h := newEstablishmentHandler(services.Establishment)

	est := rg.Group("/establishments/:establishment_id")
	{
		est.GET("", h.getEstablishment)
		est.PUT("", h.updateEstablishment)
		est.GET("/usage", h.getUsage)

		registerPeopleRoutes(est, services)
		registerCatalogRoutes(est, services.Catalog, services.Product)
		registerAppointmentRoutes(est, services.Appointment)
		registerSaleRoutes(est, services.Sale)
		registerInventoryRoutes(est, services.Inventory)
		registerPaymentRoutes(est, services.Payment)
		registerReportingRoutes(est, services.Commission, services.Reporting)
	}
}

// getEstablishment godoc
// @Summary Get an establishment
// @Tags establishments
// @Produce  json
// @Param   establishment_id path string true "Establishment ID"
// @Success 200 {object} dto.EstablishmentResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /establishments/{establishment_id} [get]
func (h *establishmentHandler) getEstablishment(c *gin.Context) {
	s, ok := tenantScope(c)
	if !ok {
		return
	}
	est, err := h.establishmentService.GetEstablishment(c.Request.Context(), s.establishmentID, s.userID)
	if err != nil {
		respondError(c, err, "Failed to retrieve establishment")
		return
	}
	c.JSON(http.StatusOK, dto.ToEstablishmentResponse(est))
}

// updateEstablishment godoc
// @Summary Update an establishment
// @Description Updates the establishment profile, plan or business hours (admin only).
// @Tags establishments
// @Accept  json
// @Produce  json
// @Param   establishment_id path string true "Establishment ID"
// @Param   establishment body dto.UpdateEstablishmentRequest true "Fields to update"
// @Success 200 {object} dto.EstablishmentResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse "Plan downgrade below current usage"
// @Security BearerAuth
// @Router /establishments/{establishment_id} [put]
func (h *establishmentHandler) updateEstablishment(c *gin.Context) {
	s, ok := tenantScope(c)
	if !ok {
		return
	}
	var req dto.UpdateEstablishmentRequest
	if !bindJSON(c, &req) {
		return
	}
	est, err := h.establishmentService.UpdateEstablishment(c.Request.Context(), s.establishmentID, req, s.userID)
	if err != nil {
		respondError(c, err, "Failed to update establishment")
		return
	}
	middleware.GetLoggerFromCtx(c.Request.Context()).Info("Establishment updated", slog.String("establishment_id", est.ID))
	c.JSON(http.StatusOK, dto.ToEstablishmentResponse(est))
}

// getUsage godoc
// @Summary Plan usage
// @Description Returns the plan limits next to the current usage (admin only).
// @Tags establishments
// @Produce  json
// @Param   establishment_id path string true "Establishment ID"
// @Success 200 {object} domain.UsageReport
// @Failure 403 {object} ErrorResponse
// @Security BearerAuth
// @Router /establishments/{establishment_id}/usage [get]
func (h *establishmentHandler) getUsage(c *gin.Context) {
	s, ok := tenantScope(c)
	if !ok {
		return
	}
	usage, err := h.establishmentService.GetUsage(c.Request.Context(), s.establishmentID, s.userID)
	if err != nil {
		respondError(c, err, "Failed to compute usage")
		return
	}
	c.JSON(http.StatusOK, usage)
}
