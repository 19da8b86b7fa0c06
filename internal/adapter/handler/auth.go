package handler

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-copilot/errors"
	authDTO "github.com/johnquangdev/meeting-copilot/internal/adapter/dto/auth"
	"github.com/johnquangdev/meeting-copilot/internal/adapter/dto/common"
	"github.com/johnquangdev/meeting-copilot/internal/adapter/presenter"
	"github.com/johnquangdev/meeting-copilot/internal/infrastructure/http/middleware"
	"github.com/johnquangdev/meeting-copilot/internal/usecase/auth"
)

// AuthService is what the auth handler needs from the OAuth usecase
type AuthService interface {
	GetGoogleAuthURL(ctx context.Context) (*auth.GoogleAuthURLResponse, error)
	HandleGoogleCallback(ctx context.Context, req *auth.GoogleCallbackRequest) (*auth.AuthResponse, error)
	RefreshAccessToken(ctx context.Context, refreshToken string) (*auth.AuthResponse, error)
	Logout(ctx context.Context, refreshToken string) error
	LogoutAll(ctx context.Context, userID uuid.UUID) error
}

// Auth handles authentication HTTP requests
type Auth struct {
	oauthService AuthService
	logger       *zap.Logger
}

// NewAuth creates a new auth handler
func NewAuth(oauthService AuthService, logger *zap.Logger) *Auth {
	return &Auth{
		oauthService: oauthService,
		logger:       logger,
	}
}

// GoogleLogin handles the initial Google OAuth login request
// @Summary      Start Google login
// @Description  Redirects to Google consent. With redirect=false the URL is returned as JSON.
// @Tags         Auth
// @Produce      json
// @Param        redirect  query     bool  false  "Redirect to Google (default true)"
// @Success      307
// @Success      200  {object}  authDTO.LoginURLResponse
// @Failure      500  {object}  common.ErrorResponse
// @Router       /auth/google/login [get]
func (h *Auth) GoogleLogin(c echo.Context) error {
	authURL, err := h.oauthService.GetGoogleAuthURL(c.Request().Context())
	if err != nil {
		return HandleError(h.logger, c, errors.ErrInternal(err))
	}

	if c.QueryParam("redirect") == "false" {
		return HandleSuccess(h.logger, c, authDTO.LoginURLResponse{URL: authURL.URL, State: authURL.State})
	}
	return c.Redirect(http.StatusTemporaryRedirect, authURL.URL)
}

// GoogleCallback handles the OAuth callback from Google
// @Summary      Google OAuth callback
// @Description  Exchanges the authorization code, stores the Google tokens and opens a session
// @Tags         Auth
// @Produce      json
// @Param        code   query     string  true  "Authorization code"
// @Param        state  query     string  true  "OAuth state"
// @Success      200    {object}  authDTO.AuthResponse
// @Failure      400    {object}  common.ErrorResponse
// @Failure      401    {object}  common.ErrorResponse
// @Router       /auth/google/callback [get]
func (h *Auth) GoogleCallback(c echo.Context) error {
	code := c.QueryParam("code")
	state := c.QueryParam("state")
	if code == "" || state == "" {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("Missing code or state parameter"))
	}

	response, err := h.oauthService.HandleGoogleCallback(c.Request().Context(), &auth.GoogleCallbackRequest{
		Code:  code,
		State: state,
	})
	if err != nil {
		return HandleError(h.logger, c, toAppError(err, ""))
	}

	return HandleSuccess(h.logger, c, presenter.ToAuthResponse(response))
}

// RefreshToken refreshes the access token
// @Summary      Refresh access token
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        request  body      authDTO.RefreshTokenRequest  true  "Refresh token"
// @Success      200      {object}  authDTO.RefreshTokenResponse
// @Failure      400      {object}  common.ErrorResponse
// @Failure      401      {object}  common.ErrorResponse
// @Router       /auth/refresh [post]
func (h *Auth) RefreshToken(c echo.Context) error {
	var req authDTO.RefreshTokenRequest
	if err := bindAndValidate(c, &req); err != nil {
		return HandleError(h.logger, c, err)
	}

	response, err := h.oauthService.RefreshAccessToken(c.Request().Context(), req.RefreshToken)
	if err != nil {
		return HandleError(h.logger, c, toAppError(err, ""))
	}

	return HandleSuccess(h.logger, c, presenter.ToAuthRefreshTokenResponse(response))
}

// Logout revokes the session of a refresh token
// @Summary      Logout
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        request  body      authDTO.LogoutRequest  true  "Refresh token"
// @Success      200      {object}  common.MessageResponse
// @Failure      400      {object}  common.ErrorResponse
// @Failure      401      {object}  common.ErrorResponse
// @Router       /auth/logout [post]
func (h *Auth) Logout(c echo.Context) error {
	var req authDTO.LogoutRequest
	if err := bindAndValidate(c, &req); err != nil {
		return HandleError(h.logger, c, err)
	}

	if err := h.oauthService.Logout(c.Request().Context(), req.RefreshToken); err != nil {
		return HandleError(h.logger, c, toAppError(err, ""))
	}

	return HandleSuccess(h.logger, c, common.MessageResponse{Message: "Logged out successfully"})
}

// LogoutAll revokes every session of the current user
// @Summary      Logout everywhere
// @Tags         Auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  common.MessageResponse
// @Failure      401  {object}  common.ErrorResponse
// @Router       /auth/logout-all [post]
func (h *Auth) LogoutAll(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	if err := h.oauthService.LogoutAll(c.Request().Context(), userID); err != nil {
		return HandleError(h.logger, c, errors.ErrPersistenceFailed("sessions", err))
	}
	return HandleSuccess(h.logger, c, common.MessageResponse{Message: "Logged out from all devices"})
}

// Me returns the current user information
// @Summary      Current user
// @Tags         Auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  entities.PublicUser
// @Failure      401  {object}  common.ErrorResponse
// @Router       /auth/me [get]
func (h *Auth) Me(c echo.Context) error {
	user, ok := middleware.UserFromContext(c)
	if !ok || user == nil {
		return HandleError(h.logger, c, errors.ErrUnauthenticated())
	}
	return HandleSuccess(h.logger, c, user.ToPublic())
}
