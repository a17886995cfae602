package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/ulule/limiter/v3"

	"github.com/SscSPs/salon_management_app/internal/core/domain"
	portssvc "github.com/SscSPs/salon_management_app/internal/core/ports/services"
	"github.com/SscSPs/salon_management_app/internal/dto"
	"github.com/SscSPs/salon_management_app/internal/middleware"
	"github.com/SscSPs/salon_management_app/internal/platform/config"
	"github.com/SscSPs/salon_management_app/internal/utils"
	"github.com/gin-gonic/gin"
)

// refreshCookieSeparator splits the user id from the raw refresh token in the cookie value.
const refreshCookieSeparator = ":"

// AuthHandler handles authentication related requests.
type AuthHandler struct {
	cfg                  *config.Config
	userService          portssvc.UserSvcFacade
	establishmentService portssvc.EstablishmentSvcFacade
	tokenService         portssvc.TokenSvcFacade
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(cfg *config.Config, services *portssvc.ServiceContainer) *AuthHandler {
	return &AuthHandler{
		cfg:                  cfg,
		userService:          services.User,
		establishmentService: services.Establishment,
		tokenService:         services.TokenService,
	}
}

// registerAuthRoutes sets up the public authentication routes. Credential endpoints share
// the login limiter.
func registerAuthRoutes(r *gin.Engine, cfg *config.Config, services *portssvc.ServiceContainer, loginLimiter *limiter.Limiter) {
	h := NewAuthHandler(cfg, services)
	g := NewGoogleOAuthHandler(cfg, services)

	limit := func(c *gin.Context) { c.Next() }
	if loginLimiter != nil {
		limit = middleware.GinMiddlewarize(loginLimiter)
	}

	auth := r.Group("/api/v1/auth")
	{
		auth.POST("/login", limit, h.Login)
		auth.POST("/register", limit, h.RegisterClient)
		auth.POST("/register-establishment", limit, h.RegisterEstablishment)
		auth.POST("/refresh", h.Refresh)
		auth.POST("/logout", h.Logout)

		google := auth.Group("/google")
		google.GET("/login", g.LoginGoogle)
		google.POST("/exchange-code", limit, g.ExchangeCodeGoogle)
	}
}

// Login godoc
// @Summary User login
// @Description Authenticates a user with email and password. Returns an access token and sets the refresh token cookie.
// @Tags auth
// @Accept json
// @Produce json
// @Param login body dto.LoginRequest true "Login Credentials"
// @Success 200 {object} dto.LoginResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 429 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !bindJSON(c, &req) {
		return
	}
	user, err := h.userService.AuthenticateUser(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err, "Failed to authenticate user")
		return
	}
	resp, err := issueSession(c, h.cfg, h.userService, h.tokenService, user)
	if err != nil {
		respondError(c, err, "Failed to generate token")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// RegisterClient godoc
// @Summary Register a client account
// @Description Creates a client login. The client joins establishments afterwards.
// @Tags auth
// @Accept json
// @Produce json
// @Param register body dto.RegisterClientRequest true "Client registration"
// @Success 201 {object} dto.UserResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Email already registered"
// @Failure 500 {object} ErrorResponse
// @Router /auth/register [post]
func (h *AuthHandler) RegisterClient(c *gin.Context) {
	var req dto.RegisterClientRequest
	if !bindJSON(c, &req) {
		return
	}
	user, err := h.userService.RegisterClient(c.Request.Context(), req)
	if err != nil {
		respondError(c, err, "Failed to register user")
		return
	}
	c.JSON(http.StatusCreated, dto.ToUserResponse(user))
}

// RegisterEstablishment godoc
// @Summary Onboard an establishment
// @Description Creates an establishment together with its first administrator login.
// @Tags auth
// @Accept json
// @Produce json
// @Param register body dto.RegisterEstablishmentRequest true "Establishment and administrator"
// @Success 201 {object} dto.RegisterEstablishmentResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Email already registered"
// @Failure 500 {object} ErrorResponse
// @Router /auth/register-establishment [post]
func (h *AuthHandler) RegisterEstablishment(c *gin.Context) {
	var req dto.RegisterEstablishmentRequest
	if !bindJSON(c, &req) {
		return
	}
	est, owner, err := h.establishmentService.RegisterEstablishment(c.Request.Context(), req)
	if err != nil {
		respondError(c, err, "Failed to register establishment")
		return
	}
	middleware.GetLoggerFromCtx(c.Request.Context()).Info("Establishment registered",
		slog.String("establishment_id", est.ID), slog.String("owner_user_id", owner.ID))
	c.JSON(http.StatusCreated, dto.RegisterEstablishmentResponse{
		Establishment: dto.ToEstablishmentResponse(est),
		User:          dto.ToUserResponse(owner),
	})
}

// Refresh godoc
// @Summary Refresh the access token
// @Description Exchanges the refresh token cookie for a new access token. The refresh token is rotated.
// @Tags auth
// @Produce json
// @Success 200 {object} dto.RefreshTokenResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /auth/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	userID, raw, ok := h.readRefreshCookie(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Refresh token missing"})
		return
	}
	user, err := h.tokenService.ValidateAndParseRefreshToken(c.Request.Context(), userID, raw)
	if err != nil {
		clearRefreshCookie(c, h.cfg)
		respondError(c, err, "Failed to refresh token")
		return
	}
	resp, err := issueSession(c, h.cfg, h.userService, h.tokenService, user)
	if err != nil {
		respondError(c, err, "Failed to generate token")
		return
	}
	c.JSON(http.StatusOK, dto.RefreshTokenResponse{Token: resp.Token, ExpiresAt: resp.ExpiresAt})
}

// Logout godoc
// @Summary Logout
// @Description Revokes the stored refresh token and clears the cookie.
// @Tags auth
// @Success 204 "No Content"
// @Failure 500 {object} ErrorResponse
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	if userID, raw, ok := h.readRefreshCookie(c); ok {
		// only the holder of a valid token may revoke it
		if _, err := h.tokenService.ValidateAndParseRefreshToken(c.Request.Context(), userID, raw); err == nil {
			if err := h.userService.ClearRefreshToken(c.Request.Context(), userID); err != nil {
				respondError(c, err, "Failed to logout")
				return
			}
		}
	}
	clearRefreshCookie(c, h.cfg)
	c.Status(http.StatusNoContent)
}

func (h *AuthHandler) readRefreshCookie(c *gin.Context) (string, string, bool) {
	value, err := c.Cookie(h.cfg.RefreshTokenCookieName)
	if err != nil || value == "" {
		return "", "", false
	}
	userID, raw, found := strings.Cut(value, refreshCookieSeparator)
	if !found || userID == "" || raw == "" {
		return "", "", false
	}
	return userID, raw, true
}

// issueSession mints an access token, rotates the stored refresh token and sets its cookie.
func issueSession(c *gin.Context, cfg *config.Config, users portssvc.UserWriterSvc, tokens portssvc.TokenSvcFacade, user *domain.User) (dto.LoginResponse, error) {
	ctx := c.Request.Context()
	accessToken, expiresAt, err := tokens.GenerateAccessToken(ctx, user)
	if err != nil {
		return dto.LoginResponse{}, err
	}
	rawRefresh, refreshExpiry, err := tokens.GenerateRefreshToken(ctx, user)
	if err != nil {
		return dto.LoginResponse{}, err
	}
	if err := users.UpdateRefreshToken(ctx, user.ID, utils.HashRefreshToken(rawRefresh), refreshExpiry); err != nil {
		return dto.LoginResponse{}, err
	}

	maxAge := int(cfg.RefreshTokenExpiryDuration.Seconds())
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(cfg.RefreshTokenCookieName, user.ID+refreshCookieSeparator+rawRefresh, maxAge,
		cfg.RefreshTokenCookiePath, "", cfg.IsProduction, true)

	return dto.LoginResponse{Token: accessToken, ExpiresAt: expiresAt, User: dto.ToUserResponse(user)}, nil
}

func clearRefreshCookie(c *gin.Context, cfg *config.Config) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(cfg.RefreshTokenCookieName, "", -1, cfg.RefreshTokenCookiePath, "", cfg.IsProduction, true)
}
