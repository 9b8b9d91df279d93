package handlers

import (
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sharepad/sharepad/internal/application/config"
	"github.com/sharepad/sharepad/internal/application/constant"
	"github.com/sharepad/sharepad/internal/infra/appctx"
	"github.com/sharepad/sharepad/internal/infra/ports/http/dto"
	"github.com/sharepad/sharepad/internal/infra/ports/http/middleware"
	"github.com/sharepad/sharepad/internal/usecase"
)

type AuthHandler struct {
	cfg         *config.Config
	userUsecase usecase.UserUsecase
}

func NewAuthHandler(cfg *config.Config, userUsecase usecase.UserUsecase) *AuthHandler {
	return &AuthHandler{
		cfg:         cfg,
		userUsecase: userUsecase,
	}
}

func (h *AuthHandler) Register(c echo.Context) error {
	var req dto.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}

	if err := req.Validate(); err != nil {
		return c.JSON(http.StatusConflict, map[string]string{"error": err.Error()})
	}

	user, err := h.userUsecase.CreateUser(c.Request().Context(), req.Username, req.Email, req.Password)
	if err != nil {
		slog.Error("create user failed", slog.Any(constant.Error, err))
		return c.JSON(http.StatusConflict, map[string]string{"error": "could not create user"})
	}

	return c.JSON(http.StatusCreated, user)
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req dto.LoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}

	user, err := h.userUsecase.ValidateCredentials(c.Request().Context(), req.UsernameOrEmail, req.Password)
	if err != nil {
		slog.Error("validate credentials failed", slog.String(constant.UserName, req.UsernameOrEmail), slog.Any(constant.Error, err))
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid credentials"})
	}

	token, err := h.userUsecase.GenerateJWT(user)
	if err != nil {
		slog.Error("generate JWT failed", slog.Any(constant.Error, err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "could not create token"})
	}

	c.SetCookie(h.authCookie(token, time.Now().Add(72*time.Hour)))

	return c.NoContent(http.StatusOK)
}

func (h *AuthHandler) Logout(c echo.Context) error {
	c.SetCookie(h.authCookie("", time.Unix(0, 0)))

	return c.JSON(http.StatusOK, map[string]bool{"ok": true})
}

func (h *AuthHandler) GetMe(c echo.Context) error {
	userID, ok := appctx.UserID(c.Request().Context())
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid user ID in context"})
	}

	user, err := h.userUsecase.GetUserByID(c.Request().Context(), userID)
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "user not found"})
	}

	resp := dto.GetMeResponse{
		ID:       user.ID,
		Username: user.Username,
	}

	return c.JSON(http.StatusOK, resp)
}

func (h *AuthHandler) authCookie(token string, expires time.Time) *http.Cookie {
	host := h.cfg.Domain
	if u, err := url.Parse(h.cfg.Domain); err == nil && u.Host != "" {
		host = u.Host
	}

	return &http.Cookie{
		Name:     "jwt",
		Value:    token,
		Expires:  expires,
		Domain:   middleware.BuildCookieDomain(host),
		Path:     "/",
		Secure:   !h.cfg.Debug,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}
