package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/GopalDev98/creditcard-backend/internal/adapter/middleware"
	"github.com/GopalDev98/creditcard-backend/internal/domain/apperr"
	"github.com/GopalDev98/creditcard-backend/internal/domain/user"
	"github.com/GopalDev98/creditcard-backend/internal/usecase/auth"
)

type AuthUsecase interface {
	Register(ctx context.Context, in auth.RegisterInput) (*auth.Session, error)
	Login(ctx context.Context, in auth.LoginInput) (*auth.Session, error)
	Refresh(ctx context.Context, refreshToken string) (*auth.Tokens, error)
	Me(ctx context.Context, userID string) (*auth.UserDTO, error)
}

type AuthHandler struct{ uc AuthUsecase }

func NewAuthHandler(uc AuthUsecase) *AuthHandler { return &AuthHandler{uc: uc} }

type registerReq struct {
	Email    string `json:"email"    validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Role     string `json:"role"     validate:"omitempty,oneof=applicant admin"`
}

type loginReq struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type refreshReq struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := bindValid(c, &req, func() { req.Email = strings.TrimSpace(req.Email) }); err != nil {
		return err
	}
	s, err := h.uc.Register(c.Request().Context(), auth.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		Role:     user.Role(req.Role),
	})
	if err != nil {
		return err
	}
	return ok(c, http.StatusCreated, "User registered successfully", s)
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := bindValid(c, &req, func() { req.Email = strings.TrimSpace(req.Email) }); err != nil {
		return err
	}
	s, err := h.uc.Login(c.Request().Context(), auth.LoginInput{Email: req.Email, Password: req.Password})
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, "Login successful", s)
}

func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := bindValid(c, &req, nil); err != nil {
		return err
	}
	t, err := h.uc.Refresh(c.Request().Context(), req.RefreshToken)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, "Token refreshed", t)
}

func (h *AuthHandler) Me(c echo.Context) error {
	actor := middleware.ActorFrom(c)
	if actor == nil {
		return apperr.Unauthenticated("Authentication required")
	}
	u, err := h.uc.Me(c.Request().Context(), actor.ID)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, "", map[string]any{"user": u})
}
