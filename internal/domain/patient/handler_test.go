package patient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/cigali/cigali/internal/platform/auth"
)

type noopUserStore struct{}

func (noopUserStore) FindActiveByID(_ context.Context, _ uuid.UUID) (*auth.StoredUser, error) {
	return nil, nil
}

type alwaysConnected struct{}

func (alwaysConnected) IsConnected() bool { return true }

func newTestHandler() (*echo.Echo, *Handler, *mockRepo) {
	repo := newMockRepo()
	codec := auth.NewTokenCodec("test-secret", time.Hour)
	guard := auth.NewGuard(codec, noopUserStore{}, alwaysConnected{}, zerolog.Nop())
	return echo.New(), NewHandler(NewService(repo), guard), repo
}

func authedContext(e *echo.Echo, method, target, body string, providerID uuid.UUID) (echo.Context, *httptest.ResponseRecorder) {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	principal := &auth.Principal{UserID: uuid.New(), ProviderID: providerID, Role: auth.RoleDoctor}
	req = req.WithContext(auth.WithPrincipal(req.Context(), principal))
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestHandler_Create_BindsProviderFromPrincipal(t *testing.T) {
	e, h, _ := newTestHandler()
	clinic := uuid.New()

	// A provider_id in the body must not override the principal's clinic.
	body := fmt.Sprintf(`{"first_name":"Ravi","last_name":"Kumar","provider_id":"%s"}`, uuid.New())
	c, rec := authedContext(e, http.MethodPost, "/api/v1/patients", body, clinic)

	if err := h.Create(c); err != nil {
		t.Fatalf("Create handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var created Patient
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if created.ProviderID != clinic {
		t.Errorf("expected patient scoped to principal's clinic %s, got %s", clinic, created.ProviderID)
	}
}

func TestHandler_Get_CrossTenantReturns404(t *testing.T) {
	e, h, repo := newTestHandler()

	owner := uuid.New()
	seeded := &Patient{ProviderID: owner, FirstName: "Ravi", LastName: "Kumar"}
	if err := repo.Create(context.Background(), seeded); err != nil {
		t.Fatalf("seed patient: %v", err)
	}

	c, _ := authedContext(e, http.MethodGet, "/api/v1/patients/"+seeded.ID.String(), "", uuid.New())
	c.SetParamNames("id")
	c.SetParamValues(seeded.ID.String())

	err := h.Get(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusNotFound {
		t.Errorf("expected 404 for cross-tenant read, got %v", err)
	}
}

func TestHandler_Get_InvalidID(t *testing.T) {
	e, h, _ := newTestHandler()

	c, _ := authedContext(e, http.MethodGet, "/api/v1/patients/abc", "", uuid.New())
	c.SetParamNames("id")
	c.SetParamValues("abc")

	err := h.Get(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for malformed id, got %v", err)
	}
}
