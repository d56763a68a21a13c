package account

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/cigali/cigali/internal/platform/auth"
	"github.com/cigali/cigali/internal/platform/db"
)

func newTestHandler(connected, demoEnabled bool) (*echo.Echo, *Handler, *mockUserRepo) {
	providers := newMockProviderRepo()
	users := newMockUserRepo()
	codec := auth.NewTokenCodec("test-secret", time.Hour)
	checker := &stubChecker{connected: connected}
	svc := NewService(providers, users, codec, checker, 4, demoEnabled)
	guard := auth.NewGuard(codec, NewGuardStore(users), checker, zerolog.Nop())
	return echo.New(), NewHandler(svc, guard), users
}

func postJSON(e *echo.Echo, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestHandler_Register(t *testing.T) {
	e, h, _ := newTestHandler(true, false)

	c, rec := postJSON(e, "/api/v1/auth/register",
		`{"provider_name":"Sunrise Clinic","name":"Dr. Asha Rao","email":"asha@sunrise.example","password":"long-enough-password"}`)

	if err := h.Register(c); err != nil {
		t.Fatalf("Register handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var result AuthResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if result.Token == "" {
		t.Error("expected token in response")
	}
}

func TestHandler_Register_StoreDownReturns503(t *testing.T) {
	e, h, _ := newTestHandler(false, false)

	c, _ := postJSON(e, "/api/v1/auth/register",
		`{"provider_name":"Sunrise Clinic","name":"Dr. Asha Rao","email":"asha@sunrise.example","password":"long-enough-password"}`)

	err := h.Register(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503 while store is down, got %v", err)
	}
}

func TestHandler_Login_BadCredentialsReturns401(t *testing.T) {
	e, h, _ := newTestHandler(true, false)

	c, _ := postJSON(e, "/api/v1/auth/login",
		`{"email":"nobody@clinic.example","password":"whatever"}`)

	err := h.Login(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for bad credentials, got %v", err)
	}
}

func TestHandler_Login_Success(t *testing.T) {
	e, h, users := newTestHandler(true, false)
	seedUser(t, users, "doc@clinic.example", "correct-horse", auth.RoleDoctor, true)

	c, rec := postJSON(e, "/api/v1/auth/login",
		`{"email":"doc@clinic.example","password":"correct-horse"}`)

	if err := h.Login(c); err != nil {
		t.Fatalf("Login handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestHandler_DemoLogin(t *testing.T) {
	e, h, _ := newTestHandler(false, true)

	c, rec := postJSON(e, "/api/v1/auth/demo-login",
		`{"email":"demo@cigali.com","password":"password123"}`)

	if err := h.DemoLogin(c); err != nil {
		t.Fatalf("DemoLogin handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var result AuthResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if result.User.Role != auth.RoleDoctor {
		t.Errorf("expected demo doctor, got %s", result.User.Role)
	}
}

func TestHandler_Me_FallsBackToPrincipalDuringOutage(t *testing.T) {
	e, h, users := newTestHandler(false, false)
	users.err = db.ErrStoreUnavailable

	principal := &auth.Principal{Role: auth.RoleDoctor}
	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	req = req.WithContext(auth.WithPrincipal(req.Context(), principal))
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Me(c); err != nil {
		t.Fatalf("Me handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "doctor") {
		t.Errorf("expected principal role in response, got %s", rec.Body.String())
	}
}
