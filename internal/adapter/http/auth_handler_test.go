package http

import (
	stdhttp "net/http"
	"testing"

	"github.com/GopalDev98/creditcard-backend/internal/domain/apperr"
	"github.com/GopalDev98/creditcard-backend/internal/domain/user"
	"github.com/GopalDev98/creditcard-backend/internal/usecase/auth"
)

func TestAuth_RegisterLoginRefreshMe(t *testing.T) {
	s := newServer(t)

	rec := s.do(t, stdhttp.MethodPost, "/api/auth/register",
		map[string]any{"email": "  Meera@Example.com ", "password": "password123"}, "")
	if rec.Code != stdhttp.StatusCreated {
		t.Fatalf("register => %d %s", rec.Code, rec.Body.String())
	}
	var reg struct {
		Message string       `json:"message"`
		Data    auth.Session `json:"data"`
	}
	decode(t, rec, &reg)
	if reg.Message != "User registered successfully" || reg.Data.User.Email != "meera@example.com" || reg.Data.User.Role != user.RoleApplicant {
		t.Fatalf("unexpected register response: %+v", reg)
	}
	if reg.Data.AccessToken == "" || reg.Data.RefreshToken == "" || reg.Data.ExpiresIn != 900 {
		t.Fatalf("tokens missing: %+v", reg.Data.Tokens)
	}

	rec = s.do(t, stdhttp.MethodPost, "/api/auth/login",
		map[string]any{"email": "meera@example.com", "password": "password123"}, "")
	if rec.Code != stdhttp.StatusOK {
		t.Fatalf("login => %d %s", rec.Code, rec.Body.String())
	}
	var login struct {
		Data auth.Session `json:"data"`
	}
	decode(t, rec, &login)

	rec = s.do(t, stdhttp.MethodPost, "/api/auth/refresh", map[string]any{"refreshToken": login.Data.RefreshToken}, "")
	if rec.Code != stdhttp.StatusOK {
		t.Fatalf("refresh => %d %s", rec.Code, rec.Body.String())
	}
	var refreshed struct {
		Data auth.Tokens `json:"data"`
	}
	decode(t, rec, &refreshed)
	if refreshed.Data.AccessToken == "" || refreshed.Data.RefreshToken != "" {
		t.Fatalf("refresh must return an access token only: %+v", refreshed.Data)
	}

	rec = s.do(t, stdhttp.MethodGet, "/api/auth/me", nil, refreshed.Data.AccessToken)
	if rec.Code != stdhttp.StatusOK {
		t.Fatalf("me => %d %s", rec.Code, rec.Body.String())
	}
	var me struct {
		Data struct {
			User auth.UserDTO `json:"user"`
		} `json:"data"`
	}
	decode(t, rec, &me)
	if me.Data.User.ID != reg.Data.User.ID {
		t.Fatalf("me returned %+v", me.Data.User)
	}
}

func TestAuth_Errors(t *testing.T) {
	s := newServer(t)
	_, _ = s.register(t, "dup@example.com", user.RoleApplicant)

	cases := []struct {
		name   string
		method string
		path   string
		body   any
		token  string
		status int
		code   string
	}{
		{"duplicate email", stdhttp.MethodPost, "/api/auth/register",
			map[string]any{"email": "DUP@example.com", "password": "password123"}, "", stdhttp.StatusConflict, apperr.CodeConflict},
		{"short password", stdhttp.MethodPost, "/api/auth/register",
			map[string]any{"email": "x@example.com", "password": "short"}, "", stdhttp.StatusBadRequest, apperr.CodeValidation},
		{"unknown role", stdhttp.MethodPost, "/api/auth/register",
			map[string]any{"email": "x@example.com", "password": "password123", "role": "root"}, "", stdhttp.StatusBadRequest, apperr.CodeValidation},
		{"wrong password", stdhttp.MethodPost, "/api/auth/login",
			map[string]any{"email": "dup@example.com", "password": "password999"}, "", stdhttp.StatusUnauthorized, apperr.CodeUnauthorized},
		{"unknown email", stdhttp.MethodPost, "/api/auth/login",
			map[string]any{"email": "ghost@example.com", "password": "password123"}, "", stdhttp.StatusUnauthorized, apperr.CodeUnauthorized},
		{"garbage refresh token", stdhttp.MethodPost, "/api/auth/refresh",
			map[string]any{"refreshToken": "not-a-jwt"}, "", stdhttp.StatusUnauthorized, apperr.CodeUnauthorized},
		{"me without token", stdhttp.MethodGet, "/api/auth/me", nil, "", stdhttp.StatusUnauthorized, apperr.CodeUnauthorized},
		{"me with bad token", stdhttp.MethodGet, "/api/auth/me", nil, "abc.def.ghi", stdhttp.StatusUnauthorized, apperr.CodeUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			expectError(t, s.do(t, tc.method, tc.path, tc.body, tc.token), tc.status, tc.code)
		})
	}
}
