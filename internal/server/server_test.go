package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clearstack/consulting-api/internal/config"
	"github.com/clearstack/consulting-api/internal/contact"
)

func testConfig() *config.Config {
	return &config.Config{
		Stage: "local",
		Server: config.ServerConfig{
			Port:           "8080",
			AllowedOrigins: []string{"*"},
		},
	}
}

func TestHealthRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := New(testConfig(), nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestContactRoute_ZeroConfigurationYieldsThreeSkips(t *testing.T) {
	// The concrete end-to-end scenario: no sink environment configured at
	// all, a valid submission answers 500 with three skipped outcomes.
	gin.SetMode(gin.TestMode)
	router := New(testConfig(), nil)

	body := `{"email":"a@b.com","details":"Need a cloud migration"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/contact", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Origin", "https://consulting.example")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))

	var resp struct {
		OK    bool              `json:"ok"`
		Sinks []contact.Outcome `json:"sinks"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	assert.False(t, resp.OK)
	require.Len(t, resp.Sinks, 3)
	for _, outcome := range resp.Sinks {
		assert.False(t, outcome.OK)
		assert.True(t, outcome.Skipped)
		assert.NotEmpty(t, outcome.Reason)
	}
}

func TestContactRoute_ValidationError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := New(testConfig(), nil)

	body := `{"email":"not-an-email","details":"hi"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/contact", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp struct {
		OK     bool                `json:"ok"`
		Errors map[string][]string `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.OK)
	assert.NotEmpty(t, resp.Errors["email"])
	assert.NotEmpty(t, resp.Errors["details"])
}

func TestContactRoute_Preflight(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := New(testConfig(), nil)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/contact", nil)
	req.Header.Set("Origin", "https://consulting.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "POST")
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), "Content-Type")
}

func TestContactRoute_PermissiveHeadersWithoutOrigin(t *testing.T) {
	// Requests without an Origin header still carry the permissive CORS
	// headers on every response.
	gin.SetMode(gin.TestMode)
	router := New(testConfig(), nil)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/contact", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{}`, w.Body.String())
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "POST")
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), "Content-Type")

	body := `{"email":"a@b.com","details":"Need a cloud migration"}`
	postReq := httptest.NewRequest(http.MethodPost, "/api/v1/contact", bytes.NewBufferString(body))
	postReq.Header.Set("Content-Type", "application/json")
	postW := httptest.NewRecorder()
	router.ServeHTTP(postW, postReq)

	assert.Equal(t, "*", postW.Header().Get("Access-Control-Allow-Origin"))
}

func TestContactRoute_SuccessWithFakeSinks(t *testing.T) {
	gin.SetMode(gin.TestMode)

	dispatcher := contact.NewDispatcher(nil,
		contact.SinkFunc{SinkName: "email", Fn: func(context.Context, *contact.Submission) contact.Outcome {
			return contact.SkippedOutcome("mail transport configuration missing")
		}},
		contact.SinkFunc{SinkName: "record", Fn: func(context.Context, *contact.Submission) contact.Outcome {
			return contact.Delivered()
		}},
		contact.SinkFunc{SinkName: "webhook", Fn: func(context.Context, *contact.Submission) contact.Outcome {
			return contact.Delivered()
		}},
	)
	router := NewWithDispatcher(testConfig(), nil, dispatcher)

	body := `{"email":"a@b.com","details":"Need a cloud migration"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/contact", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		OK    bool              `json:"ok"`
		Sinks []contact.Outcome `json:"sinks"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.OK)
	require.Len(t, resp.Sinks, 3)
	assert.True(t, resp.Sinks[0].Skipped)
	assert.True(t, resp.Sinks[1].OK)
	assert.True(t, resp.Sinks[2].OK)
}

func TestCorrelationIDHeaderOnResponses(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := New(testConfig(), nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.NotEmpty(t, w.Header().Get("X-Correlation-ID"))
}

func TestUnknownRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := New(testConfig(), nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/unknown", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
