package router_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"voxform/internal/config"
	"voxform/internal/domain"
	"voxform/internal/handler"
	"voxform/internal/middleware"
	"voxform/internal/router"
	"voxform/internal/service"
	"voxform/mocks"
)

func newRouter(t *testing.T) (*gin.Engine, *mocks.MockFormService) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{}
	cfg.CORS.AllowedOrigins = []string{"http://localhost:3000"}
	cfg.Session.CookieName = "voxform_session"
	cfg.Metrics.Enabled = true

	svc := new(mocks.MockFormService)
	tokens := service.NewSessionTokens(config.SessionConfig{Secret: "test", Issuer: "voxform"})
	r := router.Setup(cfg, tokens, nil, router.Handlers{
		Speech:   handler.NewSpeechHandler(svc, 1<<20),
		Stream:   handler.NewStreamHandler(svc, nil, 1<<20, cfg.CORS.AllowedOrigins),
		Form:     handler.NewFormHandler(svc),
		Provider: handler.NewProviderHandler(svc),
		Admin:    handler.NewAdminHandler(svc),
		Health:   handler.NewHealthHandler(svc),
	})
	return r, svc
}

func TestSetup_Routes(t *testing.T) {
	r, _ := newRouter(t)

	registered := map[string]bool{}
	for _, route := range r.Routes() {
		registered[route.Method+" "+route.Path] = true
	}
	for _, want := range []string{
		"GET /healthz",
		"GET /readyz",
		"GET /metrics",
		"POST /api/v1/speech",
		"POST /api/v1/speech/audio",
		"GET /api/v1/speech/stream",
		"GET /api/v1/form",
		"POST /api/v1/form/reset",
		"GET /api/v1/providers/status",
		"GET /api/v1/admin/submissions",
		"GET /api/v1/admin/submissions/export.csv",
		"GET /api/v1/admin/submissions/export.xlsx",
		"POST /api/v1/admin/cache/clear",
	} {
		assert.True(t, registered[want], "missing route %s", want)
	}
}

func TestSetup_FormIssuesSessionToken(t *testing.T) {
	r, svc := newRouter(t)
	svc.On("GetForm", mock.Anything, mock.AnythingOfType("string")).
		Return(domain.NewFormResult(domain.NewFormState("x"), ""), nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/v1/form", http.NoBody)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(middleware.SessionHeader))
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestSetup_AdminDisabledWithoutHash(t *testing.T) {
	r, svc := newRouter(t)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/v1/admin/submissions", http.NoBody)
	req.Header.Set("Authorization", "Bearer anything")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	svc.AssertNotCalled(t, "ListSubmissions", mock.Anything, mock.Anything, mock.Anything)
}

func TestSetup_Readiness(t *testing.T) {
	r, svc := newRouter(t)
	svc.On("Ping", mock.Anything).Return(nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/readyz", http.NoBody)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}
