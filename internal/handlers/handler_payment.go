package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/salon_management_app/internal/core/ports/services"
	"github.com/SscSPs/salon_management_app/internal/dto"
	"github.com/SscSPs/salon_management_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

// paymentHandler handles payments received for appointments and sales.
type paymentHandler struct {
	paymentService portssvc.PaymentSvcFacade
}

func registerPaymentRoutes(est *gin.RouterGroup, paymentService portssvc.PaymentSvcFacade) {
	h := &paymentHandler{paymentService: paymentService}

	payments := est.Group("/payments")
	{
		payments.GET("", h.listPayments)
		payments.POST("", h.recordPayment)
		payments.GET("/:id", h.getPayment)
		payments.POST("/:id/refund", h.refundPayment)
	}
}

// listPayments godoc
// @Summary List payments
// @Tags payments
// @Produce  json
// @Param   establishment_id path string true "Establishment ID"
// @Param   appointmentID query string false "Appointment ID"
// @Param   saleID query string false "Sale ID"
// @Param   method query string false "Method" Enums(CASH, CARD, PIX, OTHER)
// @Param   from query string false "Paid at or after (RFC3339)"
// @Param   to query string false "Paid before (RFC3339)"
// @Param   limit query int false "Page size" default(20)
// @Param   nextToken query string false "Token of the next page"
// @Success 200 {object} dto.ListResponse[domain.Payment]
// @Failure 403 {object} ErrorResponse
// @Security BearerAuth
// @Router /establishments/{establishment_id}/payments [get]
func (h *paymentHandler) listPayments(c *gin.Context) {
	s, ok := tenantScope(c)
	if !ok {
		return
	}
	var params dto.ListPaymentsParams
	if !bindQuery(c, &params) {
		return
	}
	items, next, err := h.paymentService.ListPayments(c.Request.Context(), s.establishmentID, s.userID, params)
	if err != nil {
		respondError(c, err, "Failed to list payments")
		return
	}
	c.JSON(http.StatusOK, dto.NewListResponse(items, next))
}

// recordPayment godoc
// @Summary Record a payment
// @Description Registers money received for exactly one appointment or sale. Appointment balances are updated.
// @Tags payments
// @Accept  json
// @Produce  json
// @Param   establishment_id path string true "Establishment ID"
// @Param   payment body dto.RecordPaymentRequest true "Payment"
// @Success 201 {object} domain.Payment
// @Failure 400 {object} ErrorResponse "Amount exceeds the outstanding balance"
// @Failure 404 {object} ErrorResponse "Appointment or sale not found"
// @Security BearerAuth
// @Router /establishments/{establishment_id}/payments [post]
func (h *paymentHandler) recordPayment(c *gin.Context) {
	s, ok := tenantScope(c)
	if !ok {
		return
	}
	var req dto.RecordPaymentRequest
	if !bindJSON(c, &req) {
		return
	}
	payment, err := h.paymentService.RecordPayment(c.Request.Context(), s.establishmentID, req, s.userID)
	if err != nil {
		respondError(c, err, "Failed to record payment")
		return
	}
	middleware.GetLoggerFromCtx(c.Request.Context()).Info("Payment recorded",
		slog.String("payment_id", payment.ID), slog.String("amount", payment.Amount.String()))
	c.JSON(http.StatusCreated, payment)
}

// getPayment godoc
// @Summary Get a payment
// @Tags payments
// @Produce  json
// @Param   establishment_id path string true "Establishment ID"
// @Param   id path string true "Payment ID"
// @Success 200 {object} domain.Payment
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /establishments/{establishment_id}/payments/{id} [get]
func (h *paymentHandler) getPayment(c *gin.Context) {
	s, ok := tenantScope(c)
	if !ok {
		return
	}
	payment, err := h.paymentService.GetPayment(c.Request.Context(), s.establishmentID, c.Param("id"), s.userID)
	if err != nil {
		respondError(c, err, "Failed to retrieve payment")
		return
	}
	c.JSON(http.StatusOK, payment)
}

// refundPayment godoc
// @Summary Refund a payment
// @Description Marks the payment refunded and gives the amount back to the appointment balance (admin only).
// @Tags payments
// @Accept  json
// @Produce  json
// @Param   establishment_id path string true "Establishment ID"
// @Param   id path string true "Payment ID"
// @Param   refund body dto.RefundPaymentRequest false "Notes"
// @Success 200 {object} domain.Payment
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse "Already refunded"
// @Security BearerAuth
// @Router /establishments/{establishment_id}/payments/{id}/refund [post]
func (h *paymentHandler) refundPayment(c *gin.Context) {
	s, ok := tenantScope(c)
	if !ok {
		return
	}
	var req dto.RefundPaymentRequest
	if c.Request.ContentLength > 0 && !bindJSON(c, &req) {
		return
	}
	payment, err := h.paymentService.RefundPayment(c.Request.Context(), s.establishmentID, c.Param("id"), req, s.userID)
	if err != nil {
		respondError(c, err, "Failed to refund payment")
		return
	}
	c.JSON(http.StatusOK, payment)
}
