package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_PostJoinsBaseURLAndPath(t *testing.T) {
	var gotPath, gotContentType string
	var gotBody map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotContentType = r.Header.Get("Content-Type")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Write([]byte(`{"id":"1"}`))
	}))
	defer srv.Close()

	client := NewClient(WithBaseURL(srv.URL + "/"))

	resp, err := client.Post(context.Background(), "v1/things", map[string]string{"k": "v"})
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "/v1/things", gotPath)
	assert.Equal(t, "application/json", gotContentType)
	assert.Equal(t, map[string]interface{}{"k": "v"}, gotBody)
}

func TestClient_DefaultAndRequestHeaders(t *testing.T) {
	var gotAuth, gotCustom string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotCustom = r.Header.Get("X-Custom")
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client := NewClient(
		WithBaseURL(srv.URL),
		WithDefaultHeader("X-Custom", "default-value"),
	)

	resp, err := client.Get(context.Background(), "/x", WithBearerToken("tok-123"))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "Bearer tok-123", gotAuth)
	assert.Equal(t, "default-value", gotCustom)
}

func TestClient_ErrorStatusReturnsHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"denied"}`, http.StatusForbidden)
	}))
	defer srv.Close()

	client := NewClient(WithBaseURL(srv.URL))

	resp, err := client.Get(context.Background(), "/secret")
	require.Error(t, err)
	require.NotNil(t, resp)
	defer resp.Body.Close()

	httpErr, ok := err.(*HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusForbidden, httpErr.StatusCode)
	assert.Contains(t, httpErr.Body, "denied")
	assert.Contains(t, httpErr.Error(), "403")
}

func TestClient_RejectsRelativePathWithoutBaseURL(t *testing.T) {
	client := NewClient()

	_, err := client.Get(context.Background(), "relative/path")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid path")
}

func TestClient_AbsoluteURLWithoutBaseURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	client := NewClient()

	resp, err := client.Get(context.Background(), srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestProcessJSONResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"name":"thing","count":3}`))
	}))
	defer srv.Close()

	client := NewClient(WithBaseURL(srv.URL))
	resp, err := client.Get(context.Background(), "/thing")
	require.NoError(t, err)

	var target struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}
	require.NoError(t, client.ProcessJSONResponse(resp, &target))
	assert.Equal(t, "thing", target.Name)
	assert.Equal(t, 3, target.Count)
}
