package handlers

import (
	"crypto/subtle"
	"log/slog"
	"net/http"

	"github.com/SscSPs/salon_management_app/internal/apperrors"
	portssvc "github.com/SscSPs/salon_management_app/internal/core/ports/services"
	"github.com/SscSPs/salon_management_app/internal/dto"
	"github.com/SscSPs/salon_management_app/internal/middleware"
	"github.com/SscSPs/salon_management_app/internal/platform/config"
	"github.com/gin-gonic/gin"
)

const (
	oauthStateCookie = "oauth_state"
	oauthStateMaxAge = 600 // seconds
)

// GoogleOAuthHandler handles Google OAuth related requests.
// It depends on the Google OAuth service, user service, and token service.
type GoogleOAuthHandler struct {
	cfg                *config.Config
	googleOAuthService portssvc.GoogleOAuthHandlerSvcFacade
	userService        portssvc.UserSvcFacade
	tokenService       portssvc.TokenSvcFacade
}

// NewGoogleOAuthHandler creates a new instance of GoogleOAuthHandler.
func NewGoogleOAuthHandler(cfg *config.Config, services *portssvc.ServiceContainer) *GoogleOAuthHandler {
	return &GoogleOAuthHandler{
		cfg:                cfg,
		googleOAuthService: services.GoogleOAuthHandler,
		userService:        services.User,
		tokenService:       services.TokenService,
	}
}

// LoginGoogle godoc
// @Summary Start Google login
// @Description Redirects the browser to Google's consent screen. Google sends the code back to the frontend.
// @Tags oauth
// @Success 307 "Redirect to Google"
// @Failure 500 {object} ErrorResponse
// @Router /auth/google/login [get]
func (h *GoogleOAuthHandler) LoginGoogle(c *gin.Context) {
	ctx := c.Request.Context()
	state, err := h.googleOAuthService.GenerateStateString(ctx)
	if err != nil {
		respondError(c, err, "Failed to start Google login")
		return
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(oauthStateCookie, state, oauthStateMaxAge, "/", "", h.cfg.IsProduction, true)
	c.Redirect(http.StatusTemporaryRedirect, h.googleOAuthService.GetGoogleLoginURL(ctx, state))
}

// ExchangeCodeGoogle handles the POST request from the frontend containing the authorization code from Google.
// It exchanges the code for Google tokens, validates the ID token, finds or creates the user
// and opens a session exactly like a password login.
// @Summary Exchange authorization code for access token
// @Description Exchange a Google authorization code for an application session
// @Tags oauth
// @Accept  json
// @Produce  json
// @Param   code body dto.ExchangeCodeRequest true "Authorization code"
// @Success 200 {object} dto.LoginResponse
// @Failure 400 {object} ErrorResponse "Invalid authorization code"
// @Failure 401 {object} ErrorResponse "Google rejected the code or token"
// @Failure 500 {object} ErrorResponse
// @Router /auth/google/exchange-code [post]
func (h *GoogleOAuthHandler) ExchangeCodeGoogle(c *gin.Context) {
	ctx := c.Request.Context()
	logger := middleware.GetLoggerFromCtx(ctx)

	var req dto.ExchangeCodeRequest
	if !bindJSON(c, &req) {
		return
	}

	if expected, err := c.Cookie(oauthStateCookie); err == nil && expected != "" {
		if subtle.ConstantTimeCompare([]byte(expected), []byte(req.State)) != 1 {
			logger.Warn("OAuth state mismatch")
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid OAuth state"})
			return
		}
		c.SetCookie(oauthStateCookie, "", -1, "/", "", h.cfg.IsProduction, true)
	}

	oauth2Token, err := h.googleOAuthService.ExchangeCodeForToken(ctx, req.Code)
	if err != nil {
		respondError(c, err, "Failed to exchange authorization code")
		return
	}

	idTokenString, ok := oauth2Token.Extra("id_token").(string)
	if !ok || idTokenString == "" {
		logger.Error("ID token not found in Google's token response")
		c.JSON(http.StatusBadGateway, ErrorResponse{Error: "Failed to retrieve ID token from Google"})
		return
	}

	info, err := h.googleOAuthService.ValidateGoogleIDToken(ctx, idTokenString)
	if err != nil {
		respondError(c, err, "Failed to validate Google ID token")
		return
	}
	if info.Email == "" || info.Subject == "" {
		respondError(c, apperrors.NewAppError(http.StatusBadGateway, "Essential user information missing from Google token", nil),
			"Essential user information missing from Google token")
		return
	}

	user, err := h.userService.FindOrCreateGoogleUser(ctx, info)
	if err != nil {
		respondError(c, err, "Failed to process user authentication")
		return
	}
	logger.Info("User processed via Google OAuth", slog.String("user_id", user.ID))

	resp, err := issueSession(c, h.cfg, h.userService, h.tokenService, user)
	if err != nil {
		respondError(c, err, "Failed to generate token")
		return
	}
	c.JSON(http.StatusOK, resp)
}
