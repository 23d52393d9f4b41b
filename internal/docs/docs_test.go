package docs

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAPI_DocumentsEveryRoute(t *testing.T) {
	var doc struct {
		OpenAPI string                     `json:"openapi"`
		Paths   map[string]json.RawMessage `json:"paths"`
	}
	require.NoError(t, json.Unmarshal(OpenAPI(), &doc))
	assert.Equal(t, "3.0.0", doc.OpenAPI)

	for _, path := range []string{
		"/participants",
		"/participants/import",
		"/participants/{id}",
		"/draw",
		"/draw/status",
		"/draw/results",
		"/draw/results.csv",
		"/draw/participant/{participantId}",
	} {
		assert.Contains(t, doc.Paths, path)
	}
}

func TestRegister(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	Register(r)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/docs/openapi.json", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "application/json")
	assert.JSONEq(t, string(OpenAPI()), w.Body.String())
}
