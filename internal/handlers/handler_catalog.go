package handlers

import (
	"net/http"

	portssvc "github.com/SscSPs/salon_management_app/internal/core/ports/services"
	"github.com/SscSPs/salon_management_app/internal/dto"
	"github.com/gin-gonic/gin"
)

// catalogHandler handles the service catalogue and the product catalogue.
type catalogHandler struct {
	catalogService portssvc.CatalogSvcFacade
	productService portssvc.ProductSvcFacade
}

func registerCatalogRoutes(est *gin.RouterGroup, catalogService portssvc.CatalogSvcFacade, productService portssvc.ProductSvcFacade) {
	h := &catalogHandler{catalogService: catalogService, productService: productService}

	svc := est.Group("/services")
	{
		svc.GET("", h.listServices)
		svc.POST("", h.createService)
		svc.GET("/:id", h.getService)
		svc.PUT("/:id", h.updateService)
		svc.DELETE("/:id", h.deleteService)
	}

	products := est.Group("/products")
	{
		products.GET("", h.listProducts)
		products.POST("", h.createProduct)
		products.GET("/:id", h.getProduct)
		products.PUT("/:id", h.updateProduct)
		products.DELETE("/:id", h.deleteProduct)
	}
}

// listServices godoc
// @Summary List services
// @Tags services
// @Produce  json
// @Param   establishment_id path string true "Establishment ID"
// @Param   limit query int false "Page size" default(20)
// @Param   nextToken query string false "Token of the next page"
// @Success 200 {object} dto.ListResponse[domain.Service]
// @Failure 403 {object} ErrorResponse
// @Security BearerAuth
// @Router /establishments/{establishment_id}/services [get]
func (h *catalogHandler) listServices(c *gin.Context) {
	s, ok := tenantScope(c)
	if !ok {
		return
	}
	var params dto.ListServicesParams
	if !bindQuery(c, &params) {
		return
	}
	items, next, err := h.catalogService.ListServices(c.Request.Context(), s.establishmentID, s.userID, params)
	if err != nil {
		respondError(c, err, "Failed to list services")
		return
	}
	c.JSON(http.StatusOK, dto.NewListResponse(items, next))
}

// createService godoc
// @Summary Create a service
// @Tags services
// @Accept  json
// @Produce  json
// @Param   establishment_id path string true "Establishment ID"
// @Param   service body dto.CreateServiceRequest true "Service details"
// @Success 201 {object} domain.Service
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Duplicate name"
// @Failure 422 {object} ErrorResponse "Plan limit reached"
// @Security BearerAuth
// @Router /establishments/{establishment_id}/services [post]
func (h *catalogHandler) createService(c *gin.Context) {
	s, ok := tenantScope(c)
	if !ok {
		return
	}
	var req dto.CreateServiceRequest
	if !bindJSON(c, &req) {
		return
	}
	svc, err := h.catalogService.CreateService(c.Request.Context(), s.establishmentID, req, s.userID)
	if err != nil {
		respondError(c, err, "Failed to create service")
		return
	}
	c.JSON(http.StatusCreated, svc)
}

// getService godoc
// @Summary Get a service
// @Tags services
// @Produce  json
// @Param   establishment_id path string true "Establishment ID"
// @Param   id path string true "Service ID"
// @Success 200 {object} domain.Service
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /establishments/{establishment_id}/services/{id} [get]
func (h *catalogHandler) getService(c *gin.Context) {
	s, ok := tenantScope(c)
	if !ok {
		return
	}
	svc, err := h.catalogService.GetService(c.Request.Context(), s.establishmentID, c.Param("id"), s.userID)
	if err != nil {
		respondError(c, err, "Failed to retrieve service")
		return
	}
	c.JSON(http.StatusOK, svc)
}

// updateService godoc
// @Summary Update a service
// @Tags services
// @Accept  json
// @Produce  json
// @Param   establishment_id path string true "Establishment ID"
// @Param   id path string true "Service ID"
// @Param   service body dto.UpdateServiceRequest true "Fields to update"
// @Success 200 {object} domain.Service
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Security BearerAuth
// @Router /establishments/{establishment_id}/services/{id} [put]
func (h *catalogHandler) updateService(c *gin.Context) {
	s, ok := tenantScope(c)
	if !ok {
		return
	}
	var req dto.UpdateServiceRequest
	if !bindJSON(c, &req) {
		return
	}
	svc, err := h.catalogService.UpdateService(c.Request.Context(), s.establishmentID, c.Param("id"), req, s.userID)
	if err != nil {
		respondError(c, err, "Failed to update service")
		return
	}
	c.JSON(http.StatusOK, svc)
}

// deleteService godoc
// @Summary Delete a service
// @Tags services
// @Param   establishment_id path string true "Establishment ID"
// @Param   id path string true "Service ID"
// @Success 204 "No Content"
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Service has appointments"
// @Security BearerAuth
// @Router /establishments/{establishment_id}/services/{id} [delete]
func (h *catalogHandler) deleteService(c *gin.Context) {
	s, ok := tenantScope(c)
	if !ok {
		return
	}
	if err := h.catalogService.DeleteService(c.Request.Context(), s.establishmentID, c.Param("id"), s.userID); err != nil {
		respondError(c, err, "Failed to delete service")
		return
	}
	c.Status(http.StatusNoContent)
}

// listProducts godoc
// @Summary List products
// @Tags products
// @Produce  json
// @Param   establishment_id path string true "Establishment ID"
// @Param   limit query int false "Page size" default(20)
// @Param   nextToken query string false "Token of the next page"
// @Success 200 {object} dto.ListResponse[domain.Product]
// @Failure 403 {object} ErrorResponse
// @Security BearerAuth
// @Router /establishments/{establishment_id}/products [get]
func (h *catalogHandler) listProducts(c *gin.Context) {
	s, ok := tenantScope(c)
	if !ok {
		return
	}
	var params dto.ListProductsParams
	if !bindQuery(c, &params) {
		return
	}
	items, next, err := h.productService.ListProducts(c.Request.Context(), s.establishmentID, s.userID, params)
	if err != nil {
		respondError(c, err, "Failed to list products")
		return
	}
	c.JSON(http.StatusOK, dto.NewListResponse(items, next))
}

// createProduct godoc
// @Summary Create a product
// @Tags products
// @Accept  json
// @Produce  json
// @Param   establishment_id path string true "Establishment ID"
// @Param   product body dto.CreateProductRequest true "Product details"
// @Success 201 {object} domain.Product
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Duplicate SKU"
// @Failure 422 {object} ErrorResponse "Plan limit reached"
// @Security BearerAuth
// @Router /establishments/{establishment_id}/products [post]
func (h *catalogHandler) createProduct(c *gin.Context) {
	s, ok := tenantScope(c)
	if !ok {
		return
	}
	var req dto.CreateProductRequest
	if !bindJSON(c, &req) {
		return
	}
	product, err := h.productService.CreateProduct(c.Request.Context(), s.establishmentID, req, s.userID)
	if err != nil {
		respondError(c, err, "Failed to create product")
		return
	}
	c.JSON(http.StatusCreated, product)
}

// getProduct godoc
// @Summary Get a product
// @Tags products
// @Produce  json
// @Param   establishment_id path string true "Establishment ID"
// @Param   id path string true "Product ID"
// @Success 200 {object} domain.Product
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /establishments/{establishment_id}/products/{id} [get]
func (h *catalogHandler) getProduct(c *gin.Context) {
	s, ok := tenantScope(c)
	if !ok {
		return
	}
	product, err := h.productService.GetProduct(c.Request.Context(), s.establishmentID, c.Param("id"), s.userID)
	if err != nil {
		respondError(c, err, "Failed to retrieve product")
		return
	}
	c.JSON(http.StatusOK, product)
}

// updateProduct godoc
// @Summary Update a product
// @Description Stock is not editable here; it moves through sales and inventory counts.
// @Tags products
// @Accept  json
// @Produce  json
// @Param   establishment_id path string true "Establishment ID"
// @Param   id path string true "Product ID"
// @Param   product body dto.UpdateProductRequest true "Fields to update"
// @Success 200 {object} domain.Product
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Security BearerAuth
// @Router /establishments/{establishment_id}/products/{id} [put]
func (h *catalogHandler) updateProduct(c *gin.Context) {
	s, ok := tenantScope(c)
	if !ok {
		return
	}
	var req dto.UpdateProductRequest
	if !bindJSON(c, &req) {
		return
	}
	product, err := h.productService.UpdateProduct(c.Request.Context(), s.establishmentID, c.Param("id"), req, s.userID)
	if err != nil {
		respondError(c, err, "Failed to update product")
		return
	}
	c.JSON(http.StatusOK, product)
}

// deleteProduct godoc
// @Summary Delete a product
// @Tags products
// @Param   establishment_id path string true "Establishment ID"
// @Param   id path string true "Product ID"
// @Success 204 "No Content"
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Product referenced by sales"
// @Security BearerAuth
// @Router /establishments/{establishment_id}/products/{id} [delete]
func (h *catalogHandler) deleteProduct(c *gin.Context) {
	s, ok := tenantScope(c)
	if !ok {
		return
	}
	if err := h.productService.DeleteProduct(c.Request.Context(), s.establishmentID, c.Param("id"), s.userID); err != nil {
		respondError(c, err, "Failed to delete product")
		return
	}
	c.Status(http.StatusNoContent)
}
