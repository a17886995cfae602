package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/salon_management_app/internal/core/ports/services"
	"github.com/SscSPs/salon_management_app/internal/dto"
	"github.com/SscSPs/salon_management_app/internal/middleware"

	"github.com/gin-gonic/gin"
)

// userHandler handles HTTP requests about the authenticated user.
type userHandler struct {
	userService          portssvc.UserSvcFacade
	establishmentService portssvc.EstablishmentReaderSvc
}

func newUserHandler(us portssvc.UserSvcFacade, es portssvc.EstablishmentReaderSvc) *userHandler {
	return &userHandler{userService: us, establishmentService: es}
}

// registerUserRoutes registers the self-service user routes.
func registerUserRoutes(rg *gin.RouterGroup, userService portssvc.UserSvcFacade, establishmentService portssvc.EstablishmentReaderSvc) {
	h := newUserHandler(userService, establishmentService)

	me := rg.Group("/users/me")
	{
		me.GET("", h.getMe)
		me.PUT("", h.updateMe)
		me.GET("/establishments", h.listMyEstablishments)
	}
}

// getMe godoc
// @Summary Get the current user
// @Tags users
// @Produce  json
// @Success 200 {object} dto.UserResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /users/me [get]
func (h *userHandler) getMe(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	user, err := h.userService.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err, "Failed to retrieve user")
		return
	}
	c.JSON(http.StatusOK, dto.ToUserResponse(user))
}

// updateMe godoc
// @Summary Update the current user
// @Description Changes the caller's name or password.
// @Tags users
// @Accept  json
// @Produce  json
// @Param   user body dto.UpdateUserRequest true "Fields to update"
// @Success 200 {object} dto.UserResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Security BearerAuth
// @Router /users/me [put]
func (h *userHandler) updateMe(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	var req dto.UpdateUserRequest
	if !bindJSON(c, &req) {
		return
	}
	user, err := h.userService.UpdateUser(c.Request.Context(), userID, req, userID)
	if err != nil {
		respondError(c, err, "Failed to update user")
		return
	}
	middleware.GetLoggerFromCtx(c.Request.Context()).Info("User updated successfully", slog.String("user_id", userID))
	c.JSON(http.StatusOK, dto.ToUserResponse(user))
}

// listMyEstablishments godoc
// @Summary List establishments of the current user
// @Description Returns the establishment a staff member works at, or every establishment a client joined.
// @Tags users
// @Produce  json
// @Success 200 {object} dto.ListEstablishmentsResponse
// @Failure 401 {object} ErrorResponse
// @Security BearerAuth
// @Router /users/me/establishments [get]
func (h *userHandler) listMyEstablishments(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	establishments, err := h.establishmentService.ListUserEstablishments(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err, "Failed to list establishments")
		return
	}
	c.JSON(http.StatusOK, dto.ToListEstablishmentsResponse(establishments))
}
