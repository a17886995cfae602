package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/salon_management_app/internal/core/ports/services"
	"github.com/SscSPs/salon_management_app/internal/dto"
	"github.com/SscSPs/salon_management_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

// saleHandler handles product sales.
type saleHandler struct {
	saleService portssvc.SaleSvcFacade
}

func registerSaleRoutes(est *gin.RouterGroup, saleService portssvc.SaleSvcFacade) {
	h := &saleHandler{saleService: saleService}

	sales := est.Group("/sales")
	{
		sales.GET("", h.listSales)
		sales.POST("", h.createSale)
		sales.GET("/:id", h.getSale)
		sales.PUT("/:id", h.updateSale)
		sales.DELETE("/:id", h.deleteSale)
		sales.POST("/:id/cancel", h.cancelSale)
	}
}

// listSales godoc
// @Summary List sales
// @Tags sales
// @Produce  json
// @Param   establishment_id path string true "Establishment ID"
// @Param   limit query int false "Page size" default(20)
// @Param   nextToken query string false "Token of the next page"
// @Success 200 {object} dto.ListResponse[domain.Sale]
// @Failure 403 {object} ErrorResponse
// @Security BearerAuth
// @Router /establishments/{establishment_id}/sales [get]
func (h *saleHandler) listSales(c *gin.Context) {
	s, ok := tenantScope(c)
	if !ok {
		return
	}
	var params dto.ListSalesParams
	if !bindQuery(c, &params) {
		return
	}
	items, next, err := h.saleService.ListSales(c.Request.Context(), s.establishmentID, s.userID, params)
	if err != nil {
		respondError(c, err, "Failed to list sales")
		return
	}
	c.JSON(http.StatusOK, dto.NewListResponse(items, next))
}

// createSale godoc
// @Summary Register a sale
// @Description Records the sale and takes the sold quantities out of stock.
// @Tags sales
// @Accept  json
// @Produce  json
// @Param   establishment_id path string true "Establishment ID"
// @Param   sale body dto.CreateSaleRequest true "Sale"
// @Success 201 {object} domain.Sale
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse "Product not found"
// @Failure 422 {object} ErrorResponse "Insufficient stock"
// @Security BearerAuth
// @Router /establishments/{establishment_id}/sales [post]
func (h *saleHandler) createSale(c *gin.Context) {
	s, ok := tenantScope(c)
	if !ok {
		return
	}
	var req dto.CreateSaleRequest
	if !bindJSON(c, &req) {
		return
	}
	sale, err := h.saleService.CreateSale(c.Request.Context(), s.establishmentID, req, s.userID)
	if err != nil {
		respondError(c, err, "Failed to create sale")
		return
	}
	middleware.GetLoggerFromCtx(c.Request.Context()).Info("Sale registered", slog.String("sale_id", sale.ID))
	c.JSON(http.StatusCreated, sale)
}

// getSale godoc
// @Summary Get a sale
// @Tags sales
// @Produce  json
// @Param   establishment_id path string true "Establishment ID"
// @Param   id path string true "Sale ID"
// @Success 200 {object} domain.Sale
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /establishments/{establishment_id}/sales/{id} [get]
func (h *saleHandler) getSale(c *gin.Context) {
	s, ok := tenantScope(c)
	if !ok {
		return
	}
	sale, err := h.saleService.GetSale(c.Request.Context(), s.establishmentID, c.Param("id"), s.userID)
	if err != nil {
		respondError(c, err, "Failed to retrieve sale")
		return
	}
	c.JSON(http.StatusOK, sale)
}

// updateSale godoc
// @Summary Update a sale
// @Description Replacing the items moves stock by the difference between the old and new quantities.
// @Tags sales
// @Accept  json
// @Produce  json
// @Param   establishment_id path string true "Establishment ID"
// @Param   id path string true "Sale ID"
// @Param   sale body dto.UpdateSaleRequest true "Fields to update"
// @Success 200 {object} domain.Sale
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse "Insufficient stock or sale cancelled"
// @Security BearerAuth
// @Router /establishments/{establishment_id}/sales/{id} [put]
func (h *saleHandler) updateSale(c *gin.Context) {
	s, ok := tenantScope(c)
	if !ok {
		return
	}
	var req dto.UpdateSaleRequest
	if !bindJSON(c, &req) {
		return
	}
	sale, err := h.saleService.UpdateSale(c.Request.Context(), s.establishmentID, c.Param("id"), req, s.userID)
	if err != nil {
		respondError(c, err, "Failed to update sale")
		return
	}
	c.JSON(http.StatusOK, sale)
}

// cancelSale godoc
// @Summary Cancel a sale
// @Description Returns the sold quantities to stock and keeps the sale for history.
// @Tags sales
// @Produce  json
// @Param   establishment_id path string true "Establishment ID"
// @Param   id path string true "Sale ID"
// @Success 200 {object} domain.Sale
// @Failure 404 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse "Already cancelled"
// @Security BearerAuth
// @Router /establishments/{establishment_id}/sales/{id}/cancel [post]
func (h *saleHandler) cancelSale(c *gin.Context) {
	s, ok := tenantScope(c)
	if !ok {
		return
	}
	sale, err := h.saleService.CancelSale(c.Request.Context(), s.establishmentID, c.Param("id"), s.userID)
	if err != nil {
		respondError(c, err, "Failed to cancel sale")
		return
	}
	c.JSON(http.StatusOK, sale)
}

// deleteSale godoc
// @Summary Delete a sale
// @Description Deletes the sale and returns its quantities to stock.
// @Tags sales
// @Param   establishment_id path string true "Establishment ID"
// @Param   id path string true "Sale ID"
// @Success 204 "No Content"
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Sale has payments"
// @Security BearerAuth
// @Router /establishments/{establishment_id}/sales/{id} [delete]
func (h *saleHandler) deleteSale(c *gin.Context) {
	s, ok := tenantScope(c)
	if !ok {
		return
	}
	if err := h.saleService.DeleteSale(c.Request.Context(), s.establishmentID, c.Param("id"), s.userID); err != nil {
		respondError(c, err, "Failed to delete sale")
		return
	}
	c.Status(http.StatusNoContent)
}

// inventoryHandler handles stock counts.
type inventoryHandler struct {
	inventoryService portssvc.InventorySvcFacade
}

func registerInventoryRoutes(est *gin.RouterGroup, inventoryService portssvc.InventorySvcFacade) {
	h := &inventoryHandler{inventoryService: inventoryService}

	counts := est.Group("/inventory-counts")
	{
		counts.GET("", h.listCounts)
		counts.POST("", h.createCount)
		counts.GET("/:id", h.getCount)
		counts.PUT("/:id", h.updateCount)
		counts.DELETE("/:id", h.deleteCount)
		counts.POST("/:id/apply", h.applyCount)
	}
}

// listCounts godoc
// @Summary List inventory counts
// @Tags inventory
// @Produce  json
// @Param   establishment_id path string true "Establishment ID"
// @Param   status query string false "Status" Enums(DRAFT, APPLIED)
// @Param   limit query int false "Page size" default(20)
// @Param   nextToken query string false "Token of the next page"
// @Success 200 {object} dto.ListResponse[domain.InventoryCount]
// @Failure 403 {object} ErrorResponse
// @Security BearerAuth
// @Router /establishments/{establishment_id}/inventory-counts [get]
func (h *inventoryHandler) listCounts(c *gin.Context) {
	s, ok := tenantScope(c)
	if !ok {
		return
	}
	var params dto.ListInventoryCountsParams
	if !bindQuery(c, &params) {
		return
	}
	items, next, err := h.inventoryService.ListInventoryCounts(c.Request.Context(), s.establishmentID, s.userID, params)
	if err != nil {
		respondError(c, err, "Failed to list inventory counts")
		return
	}
	c.JSON(http.StatusOK, dto.NewListResponse(items, next))
}

// createCount godoc
// @Summary Open an inventory count
// @Tags inventory
// @Accept  json
// @Produce  json
// @Param   establishment_id path string true "Establishment ID"
// @Param   count body dto.CreateInventoryCountRequest true "Counted quantities"
// @Success 201 {object} domain.InventoryCount
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse "Product not found"
// @Security BearerAuth
// @Router /establishments/{establishment_id}/inventory-counts [post]
func (h *inventoryHandler) createCount(c *gin.Context) {
	s, ok := tenantScope(c)
	if !ok {
		return
	}
	var req dto.CreateInventoryCountRequest
	if !bindJSON(c, &req) {
		return
	}
	count, err := h.inventoryService.CreateInventoryCount(c.Request.Context(), s.establishmentID, req, s.userID)
	if err != nil {
		respondError(c, err, "Failed to create inventory count")
		return
	}
	c.JSON(http.StatusCreated, count)
}

// getCount godoc
// @Summary Get an inventory count
// @Tags inventory
// @Produce  json
// @Param   establishment_id path string true "Establishment ID"
// @Param   id path string true "Inventory count ID"
// @Success 200 {object} domain.InventoryCount
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /establishments/{establishment_id}/inventory-counts/{id} [get]
func (h *inventoryHandler) getCount(c *gin.Context) {
	s, ok := tenantScope(c)
	if !ok {
		return
	}
	count, err := h.inventoryService.GetInventoryCount(c.Request.Context(), s.establishmentID, c.Param("id"), s.userID)
	if err != nil {
		respondError(c, err, "Failed to retrieve inventory count")
		return
	}
	c.JSON(http.StatusOK, count)
}

// updateCount godoc
// @Summary Update a draft inventory count
// @Tags inventory
// @Accept  json
// @Produce  json
// @Param   establishment_id path string true "Establishment ID"
// @Param   id path string true "Inventory count ID"
// @Param   count body dto.UpdateInventoryCountRequest true "Fields to update"
// @Success 200 {object} domain.InventoryCount
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse "Count already applied"
// @Security BearerAuth
// @Router /establishments/{establishment_id}/inventory-counts/{id} [put]
func (h *inventoryHandler) updateCount(c *gin.Context) {
	s, ok := tenantScope(c)
	if !ok {
		return
	}
	var req dto.UpdateInventoryCountRequest
	if !bindJSON(c, &req) {
		return
	}
	count, err := h.inventoryService.UpdateInventoryCount(c.Request.Context(), s.establishmentID, c.Param("id"), req, s.userID)
	if err != nil {
		respondError(c, err, "Failed to update inventory count")
		return
	}
	c.JSON(http.StatusOK, count)
}

// applyCount godoc
// @Summary Apply an inventory count
// @Description Overwrites each product's stock with the counted quantity and records the differences.
// @Tags inventory
// @Produce  json
// @Param   establishment_id path string true "Establishment ID"
// @Param   id path string true "Inventory count ID"
// @Success 200 {object} domain.InventoryCount
// @Failure 404 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse "Count already applied"
// @Security BearerAuth
// @Router /establishments/{establishment_id}/inventory-counts/{id}/apply [post]
func (h *inventoryHandler) applyCount(c *gin.Context) {
	s, ok := tenantScope(c)
	if !ok {
		return
	}
	count, err := h.inventoryService.ApplyInventoryCount(c.Request.Context(), s.establishmentID, c.Param("id"), s.userID)
	if err != nil {
		respondError(c, err, "Failed to apply inventory count")
		return
	}
	middleware.GetLoggerFromCtx(c.Request.Context()).Info("Inventory count applied", slog.String("count_id", count.ID))
	c.JSON(http.StatusOK, count)
}

// deleteCount godoc
// @Summary Delete a draft inventory count
// @Tags inventory
// @Param   establishment_id path string true "Establishment ID"
// @Param   id path string true "Inventory count ID"
// @Success 204 "No Content"
// @Failure 404 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse "Count already applied"
// @Security BearerAuth
// @Router /establishments/{establishment_id}/inventory-counts/{id} [delete]
func (h *inventoryHandler) deleteCount(c *gin.Context) {
	s, ok := tenantScope(c)
	if !ok {
		return
	}
	if err := h.inventoryService.DeleteInventoryCount(c.Request.Context(), s.establishmentID, c.Param("id"), s.userID); err != nil {
		respondError(c, err, "Failed to delete inventory count")
		return
	}
	c.Status(http.StatusNoContent)
}
