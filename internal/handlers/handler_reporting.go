package handlers

import (
	"net/http"

	"github.com/SscSPs/salon_management_app/internal/core/domain"
	portssvc "github.com/SscSPs/salon_management_app/internal/core/ports/services"
	"github.com/SscSPs/salon_management_app/internal/dto"
	"github.com/gin-gonic/gin"
)

// reportingHandler handles commission statements and management reports.
type reportingHandler struct {
	commissionService portssvc.CommissionSvcFacade
	reportingService  portssvc.ReportingSvcFacade
}

func newReportingHandler(cs portssvc.CommissionSvcFacade, rs portssvc.ReportingSvcFacade) *reportingHandler {
	return &reportingHandler{commissionService: cs, reportingService: rs}
}

// registerReportingRoutes registers routes related to reports.
func registerReportingRoutes(est *gin.RouterGroup, commissionService portssvc.CommissionSvcFacade, reportingService portssvc.ReportingSvcFacade) {
	h := newReportingHandler(commissionService, reportingService)

	commissions := est.Group("/commissions")
	{
		commissions.GET("", h.listCommissions)
		commissions.GET("/employee", h.getEmployeeCommission)
	}

	reports := est.Group("/reports")
	{
		reports.GET("/period", h.getPeriodReport)
		reports.GET("/low-stock", h.getLowStock)
	}
}

// getEmployeeCommission godoc
// @Summary Commission statement of one employee
// @Description Commission earned on completed appointments in the period. Employees may only read their own statement.
// @Tags reports
// @Produce json
// @Param establishment_id path string true "Establishment ID"
// @Param employeeID query string true "Employee ID"
// @Param from query string true "First day (YYYY-MM-DD)"
// @Param to query string true "Last day, inclusive (YYYY-MM-DD)"
// @Success 200 {object} domain.CommissionSummary
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /establishments/{establishment_id}/commissions/employee [get]
func (h *reportingHandler) getEmployeeCommission(c *gin.Context) {
	s, ok := tenantScope(c)
	if !ok {
		return
	}
	var params dto.CommissionParams
	if !bindQuery(c, &params) {
		return
	}
	summary, err := h.commissionService.EmployeeCommission(c.Request.Context(), s.establishmentID, s.userID, params)
	if err != nil {
		respondError(c, err, "Failed to compute commission")
		return
	}
	c.JSON(http.StatusOK, summary)
}

// listCommissions godoc
// @Summary Commission statements of every employee
// @Tags reports
// @Produce json
// @Param establishment_id path string true "Establishment ID"
// @Param from query string true "First day (YYYY-MM-DD)"
// @Param to query string true "Last day, inclusive (YYYY-MM-DD)"
// @Success 200 {object} dto.ListResponse[domain.CommissionSummary]
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Security BearerAuth
// @Router /establishments/{establishment_id}/commissions [get]
func (h *reportingHandler) listCommissions(c *gin.Context) {
	s, ok := tenantScope(c)
	if !ok {
		return
	}
	var params dto.PeriodParams
	if !bindQuery(c, &params) {
		return
	}
	summaries, err := h.commissionService.EstablishmentCommissions(c.Request.Context(), s.establishmentID, s.userID, params)
	if err != nil {
		respondError(c, err, "Failed to compute commissions")
		return
	}
	c.JSON(http.StatusOK, dto.NewListResponse(summaries, ""))
}

// getPeriodReport godoc
// @Summary Period report
// @Description Appointments by status, service and product revenue and payments by method for the period (admin only).
// @Tags reports
// @Produce json
// @Param establishment_id path string true "Establishment ID"
// @Param from query string true "First day (YYYY-MM-DD)"
// @Param to query string true "Last day, inclusive (YYYY-MM-DD)"
// @Success 200 {object} domain.PeriodReport
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Security BearerAuth
// @Router /establishments/{establishment_id}/reports/period [get]
func (h *reportingHandler) getPeriodReport(c *gin.Context) {
	s, ok := tenantScope(c)
	if !ok {
		return
	}
	var params dto.PeriodParams
	if !bindQuery(c, &params) {
		return
	}
	report, err := h.reportingService.PeriodReport(c.Request.Context(), s.establishmentID, s.userID, params)
	if err != nil {
		respondError(c, err, "Failed to generate report")
		return
	}
	c.JSON(http.StatusOK, report)
}

// getLowStock godoc
// @Summary Products at or below their minimum stock
// @Tags reports
// @Produce json
// @Param establishment_id path string true "Establishment ID"
// @Success 200 {object} dto.ListResponse[domain.Product]
// @Failure 403 {object} ErrorResponse
// @Security BearerAuth
// @Router /establishments/{establishment_id}/reports/low-stock [get]
func (h *reportingHandler) getLowStock(c *gin.Context) {
	s, ok := tenantScope(c)
	if !ok {
		return
	}
	products, err := h.reportingService.LowStockReport(c.Request.Context(), s.establishmentID, s.userID)
	if err != nil {
		respondError(c, err, "Failed to generate report")
		return
	}
	c.JSON(http.StatusOK, dto.NewListResponse[domain.Product](products, ""))
}
