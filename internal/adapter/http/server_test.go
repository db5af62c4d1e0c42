package http

import (
	"bytes"
	"context"
	"encoding/json"
	stdhttp "net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	domain "github.com/GopalDev98/creditcard-backend/internal/domain/application"
	"github.com/GopalDev98/creditcard-backend/internal/domain/uow"
	"github.com/GopalDev98/creditcard-backend/internal/domain/user"
	"github.com/GopalDev98/creditcard-backend/internal/infrastructure/metrics"
	"github.com/GopalDev98/creditcard-backend/internal/testutil/applicationmock"
	"github.com/GopalDev98/creditcard-backend/internal/testutil/auditmock"
	"github.com/GopalDev98/creditcard-backend/internal/testutil/uowmock"
	"github.com/GopalDev98/creditcard-backend/internal/testutil/usermock"
	appuc "github.com/GopalDev98/creditcard-backend/internal/usecase/application"
	"github.com/GopalDev98/creditcard-backend/internal/usecase/audit"
	"github.com/GopalDev98/creditcard-backend/internal/usecase/auth"
)

// -------- helpers --------

var testNow = time.Date(2026, 10, 15, 10, 0, 0, 0, time.UTC)

func newEchoWithValidator() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	e.HTTPErrorHandler = ErrorHandler()
	return e
}

func mustJSON(v any) *bytes.Reader {
	b, _ := json.Marshal(v)
	return bytes.NewReader(b)
}

// memApplications keeps applications in memory behind applicationmock.Repo.
func memApplications() *applicationmock.Repo {
	var mu sync.Mutex
	var rows []*domain.Application
	find := func(match func(*domain.Application) bool) (*domain.Application, error) {
		mu.Lock()
		defer mu.Unlock()
		for _, a := range rows {
			if match(a) {
				return a, nil
			}
		}
		return nil, domain.ErrNotFound
	}
	return &applicationmock.Repo{
		CreateFn: func(_ context.Context, a *domain.Application) error {
			mu.Lock()
			defer mu.Unlock()
			for _, r := range rows {
				if r.PersonalInfo.PANCard == a.PersonalInfo.PANCard || r.ApplicationNumber == a.ApplicationNumber {
					return gorm.ErrDuplicatedKey
				}
			}
			a.ID = uint64(len(rows) + 1)
			rows = append(rows, a)
			return nil
		},
		GetByApplicationIDFn: func(_ context.Context, id string) (*domain.Application, error) {
			return find(func(a *domain.Application) bool { return a.ApplicationID == id })
		},
		GetByNumberFn: func(_ context.Context, n string) (*domain.Application, error) {
			return find(func(a *domain.Application) bool { return a.ApplicationNumber == n })
		},
		ListByUserIDFn: func(_ context.Context, userID string) ([]domain.Application, error) {
			mu.Lock()
			defer mu.Unlock()
			var out []domain.Application
			for _, a := range rows {
				if a.OwnedBy(userID) {
					out = append(out, *a)
				}
			}
			return out, nil
		},
		ListFn: func(_ context.Context, f domain.ListFilter) ([]domain.Application, error) {
			mu.Lock()
			defer mu.Unlock()
			var out []domain.Application
			for _, a := range rows {
				if f.Status == "" || a.Status == f.Status {
					out = append(out, *a)
				}
			}
			return out, nil
		},
	}
}

func memUsers() *usermock.Repo {
	var mu sync.Mutex
	byEmail := map[string]*user.User{}
	return &usermock.Repo{
		CreateFn: func(_ context.Context, u *user.User) error {
			mu.Lock()
			defer mu.Unlock()
			if _, ok := byEmail[u.Email]; ok {
				return gorm.ErrDuplicatedKey
			}
			u.CreatedAt = testNow
			byEmail[u.Email] = u
			return nil
		},
		GetByEmailFn: func(_ context.Context, email string) (*user.User, error) {
			mu.Lock()
			defer mu.Unlock()
			if u, ok := byEmail[email]; ok {
				return u, nil
			}
			return nil, user.ErrNotFound
		},
		GetByUserIDFn: func(_ context.Context, id string) (*user.User, error) {
			mu.Lock()
			defer mu.Unlock()
			for _, u := range byEmail {
				if u.UserID == id {
					return u, nil
				}
			}
			return nil, user.ErrNotFound
		},
	}
}

type testServer struct {
	e      *echo.Echo
	scores *applicationmock.ScoreProvider
	audits *auditmock.Repo
}

func newServer(t *testing.T) *testServer {
	t.Helper()
	e := newEchoWithValidator()

	apps := memApplications()
	scores := &applicationmock.ScoreProvider{Value: 850}
	audits := &auditmock.Repo{}
	recorder := audit.NewRecorder(audits, 16)
	t.Cleanup(func() { _ = recorder.Close(context.Background()) })

	appUC := appuc.NewUsecase(apps, uowmock.Passthrough(uow.Repos{Applications: apps, Audits: audits}),
		&applicationmock.Sequencer{}, scores, recorder, appuc.WithClock(func() time.Time { return testNow }))
	authUC := auth.NewUsecase(memUsers(), auth.Config{
		AccessSecret:     "test-access",
		AccessTTL:        15 * time.Minute,
		RefreshSecret:    "test-refresh",
		RefreshTTL:       time.Hour,
		AllowAdminSignup: true,
	}, auth.WithBcryptCost(bcrypt.MinCost))

	Register(e, Deps{
		Health:        NewHandler("creditcard-backend", "test"),
		Applications:  NewApplicationHandler(appUC),
		Auth:          NewAuthHandler(authUC),
		Audit:         NewAuditHandler(audit.NewUsecase(audits)),
		Authenticator: authUC,
		Gatherer:      metrics.New().Registry,
	})
	return &testServer{e: e, scores: scores, audits: audits}
}

func (s *testServer) do(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var req *stdhttp.Request
	if body != nil {
		req = httptest.NewRequest(method, path, mustJSON(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

// register returns an access token for a fresh user with role.
func (s *testServer) register(t *testing.T, email string, role user.Role) (token, id string) {
	t.Helper()
	rec := s.do(t, stdhttp.MethodPost, "/api/auth/register",
		map[string]any{"email": email, "password": "password123", "role": role}, "")
	if rec.Code != stdhttp.StatusCreated {
		t.Fatalf("register %s => %d %s", email, rec.Code, rec.Body.String())
	}
	var env struct {
		Data auth.Session `json:"data"`
	}
	decode(t, rec, &env)
	return env.Data.AccessToken, env.Data.User.ID
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string       `json:"code"`
		Message string       `json:"message"`
		Details []FieldError `json:"details"`
	} `json:"error"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("invalid JSON: %v; raw=%s", err, rec.Body.String())
	}
}

func expectError(t *testing.T, rec *httptest.ResponseRecorder, status int, code string) envelope {
	t.Helper()
	if rec.Code != status {
		t.Fatalf("want %d, got %d: %s", status, rec.Code, rec.Body.String())
	}
	var env envelope
	decode(t, rec, &env)
	if env.Success || env.Error == nil || env.Error.Code != code {
		t.Fatalf("want error code %s, got %+v", code, env.Error)
	}
	return env
}

func applicationBody(pan string, income any) map[string]any {
	return map[string]any{
		"personalInfo": map[string]any{
			"fullName":    "Asha Verma",
			"dateOfBirth": "1990-05-17",
			"email":       "Asha@Example.com",
			"phone":       "+919876543210",
			"panCard":     pan,
			"address": map[string]any{
				"street":  "221 Residency Road",
				"city":    "Bengaluru",
				"state":   "Karnataka",
				"pincode": "560025",
			},
		},
		"employmentInfo": map[string]any{
			"employmentType": "salaried",
			"annualIncome":   income,
			"companyName":    "Acme Pvt Ltd",
			"designation":    "Engineer",
		},
	}
}
