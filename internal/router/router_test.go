package router

import (
	"net/http"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"secretsanta/internal/handlers"
	"secretsanta/internal/metrics"
	"secretsanta/internal/models"
	"secretsanta/internal/services"
	"secretsanta/internal/testutil"
)

type stack struct {
	router *gin.Engine
	admin  map[string]string
}

func newStack(t *testing.T) stack {
	t.Helper()
	gin.SetMode(gin.TestMode)

	tokens := testutil.NewTokenService(t)
	registry := services.NewRegistry()
	m := metrics.New(registry.Len)
	engine := services.NewDrawEngine(services.WithObserver(m))

	r := NewRouter(Config{
		Handler:       handlers.NewHTTPHandler(registry, engine),
		Verifier:      tokens,
		Metrics:       m,
		AllowedOrigin: "*",
	})
	return stack{router: r, admin: testutil.BearerHeader(t, tokens)}
}

func (s stack) do(t *testing.T, method, path string, body interface{}, auth bool) testResponse {
	t.Helper()
	var headers map[string]string
	if auth {
		headers = s.admin
	}
	w := testutil.Serve(s.router, testutil.MakeRequest(method, path, body, headers))
	return testResponse{code: w.Code, body: w.Body.String()}
}

type testResponse struct {
	code int
	body string
}

// TestSecretSantaFlow walks through a whole evening: sign-ups, a removal,
// the draw, the individual lookups and the admin view.
func TestSecretSantaFlow(t *testing.T) {
	s := newStack(t)

	resp := s.do(t, http.MethodPost, "/draw", nil, true)
	require.Equal(t, http.StatusBadRequest, resp.code)
	assert.Contains(t, resp.body, models.CodeInsufficientParticipants)

	for _, name := range []string{"Ana", "Clara", "Derick", "X"} {
		resp = s.do(t, http.MethodPost, "/participants", models.AddParticipantRequest{Name: name}, false)
		require.Equal(t, http.StatusCreated, resp.code, resp.body)
	}

	resp = s.do(t, http.MethodDelete, "/participants/4", nil, true)
	require.Equal(t, http.StatusOK, resp.code, resp.body)

	resp = s.do(t, http.MethodPost, "/participants", models.AddParticipantRequest{Name: "Eva"}, false)
	require.Equal(t, http.StatusCreated, resp.code)
	assert.Contains(t, resp.body, `"id":5`)

	resp = s.do(t, http.MethodPost, "/draw", nil, true)
	require.Equal(t, http.StatusOK, resp.code, resp.body)
	assert.Contains(t, resp.body, `"totalParticipants":4`)

	resp = s.do(t, http.MethodPost, "/draw", nil, true)
	require.Equal(t, http.StatusBadRequest, resp.code)
	assert.Contains(t, resp.body, models.CodeAlreadyDrawn)

	resp = s.do(t, http.MethodGet, "/draw/participant/1", nil, false)
	require.Equal(t, http.StatusOK, resp.code)
	assert.Contains(t, resp.body, `"giver":"Ana"`)
	assert.NotContains(t, resp.body, `"receiver":"Ana"`)

	resp = s.do(t, http.MethodGet, "/draw/participant/4", nil, false)
	assert.Equal(t, http.StatusNotFound, resp.code)

	resp = s.do(t, http.MethodGet, "/draw/results", nil, false)
	assert.Equal(t, http.StatusUnauthorized, resp.code)

	resp = s.do(t, http.MethodGet, "/draw/results", nil, true)
	require.Equal(t, http.StatusOK, resp.code)
	assert.Equal(t, 4, strings.Count(resp.body, `"giverId"`))

	resp = s.do(t, http.MethodGet, "/metrics", nil, false)
	require.Equal(t, http.StatusOK, resp.code)
	assert.Contains(t, resp.body, `secretsanta_draws_total{outcome="success"} 1`)
	assert.Contains(t, resp.body, `secretsanta_draws_total{outcome="already_drawn"} 1`)
	assert.Contains(t, resp.body, `secretsanta_draws_total{outcome="insufficient"} 1`)
	assert.Contains(t, resp.body, "secretsanta_participants 4")
}

func TestHealthAndDocs(t *testing.T) {
	s := newStack(t)

	resp := s.do(t, http.MethodGet, "/health", nil, false)
	assert.Equal(t, http.StatusOK, resp.code)
	assert.Equal(t, "OK", resp.body)

	resp = s.do(t, http.MethodGet, "/docs/openapi.json", nil, false)
	assert.Equal(t, http.StatusOK, resp.code)
	assert.Contains(t, resp.body, `"openapi"`)
}
