// Package testutil holds helpers shared by the HTTP tests.
package testutil

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"secretsanta/internal/auth"
)

// TestSecret signs the tokens used in tests.
const TestSecret = "test-jwt-secret"

// NewTokenService returns a TokenService keyed with TestSecret.
func NewTokenService(t *testing.T) *auth.TokenService {
	t.Helper()

	svc, err := auth.NewTokenService(TestSecret, time.Hour)
	if err != nil {
		t.Fatalf("Failed to create token service: %v", err)
	}
	return svc
}

// BearerHeader returns an Authorization header carrying a fresh valid token.
func BearerHeader(t *testing.T, svc *auth.TokenService) map[string]string {
	t.Helper()

	token, err := svc.Issue("test")
	if err != nil {
		t.Fatalf("Failed to issue token: %v", err)
	}
	return map[string]string{"Authorization": "Bearer " + token}
}

// MakeRequest creates an HTTP test request with an optional JSON body
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// Serve runs req through handler and returns the recorded response.
func Serve(handler http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
