package runner

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/chipp-ai/dispatch/engine/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func getRequest(url string) *HTTPRequest {
	return &HTTPRequest{
		Method:  core.MethodGet,
		URL:     url,
		Headers: map[string]string{},
		Query:   map[string]string{},
	}
}

func TestExecutorDo(t *testing.T) {
	t.Run("Should return the outcome of a successful call", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"id":"u1"}`))
		}))
		defer srv.Close()

		outcome, err := NewExecutor().Do(context.Background(), getRequest(srv.URL), 5*time.Second)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, outcome.StatusCode)
		assert.JSONEq(t, `{"id":"u1"}`, string(outcome.Body))
		assert.False(t, outcome.Truncated)
	})

	t.Run("Should forward headers, query and body", func(t *testing.T) {
		var gotAuth, gotQuery string
		var gotBody map[string]any
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotAuth = r.Header.Get("Authorization")
			gotQuery = r.URL.Query().Get("limit")
			json.NewDecoder(r.Body).Decode(&gotBody)
			w.WriteHeader(http.StatusCreated)
		}))
		defer srv.Close()

		req := &HTTPRequest{
			Method:  core.MethodPost,
			URL:     srv.URL,
			Headers: map[string]string{"Authorization": "Bearer tok", "Content-Type": "application/json"},
			Query:   map[string]string{"limit": "5"},
			Body:    map[string]any{"text": "hello"},
		}
		outcome, err := NewExecutor().Do(context.Background(), req, 5*time.Second)
		require.NoError(t, err)
		assert.Equal(t, http.StatusCreated, outcome.StatusCode)
		assert.Equal(t, "Bearer tok", gotAuth)
		assert.Equal(t, "5", gotQuery)
		assert.Equal(t, "hello", gotBody["text"])
	})

	t.Run("Should classify a non-2xx response as upstream_error and keep the outcome", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
			w.Write([]byte(`{"error":"backend down"}`))
		}))
		defer srv.Close()

		outcome, err := NewExecutor().Do(context.Background(), getRequest(srv.URL), 5*time.Second)
		require.Error(t, err)
		var coded *core.Error
		require.True(t, errors.As(err, &coded))
		assert.Equal(t, core.ErrCodeUpstream, coded.Code)
		assert.Equal(t, http.StatusBadGateway, coded.Details["http_status"])
		require.NotNil(t, outcome)
		assert.Equal(t, http.StatusBadGateway, outcome.StatusCode)
		assert.Contains(t, string(outcome.Body), "backend down")
	})

	t.Run("Should classify a slow upstream as timeout near the deadline", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-time.After(5 * time.Second):
			}
		}))
		defer srv.Close()

		start := time.Now()
		_, err := NewExecutor().Do(context.Background(), getRequest(srv.URL), 50*time.Millisecond)
		elapsed := time.Since(start)

		require.Error(t, err)
		var coded *core.Error
		require.True(t, errors.As(err, &coded))
		assert.Equal(t, core.ErrCodeTimeout, coded.Code)
		assert.GreaterOrEqual(t, elapsed, 50*time.Millisecond)
		assert.Less(t, elapsed, 2*time.Second)
	})

	t.Run("Should classify an unreachable host as network_error", func(t *testing.T) {
		// reserved port on localhost with nothing listening
		_, err := NewExecutor().Do(context.Background(), getRequest("http://127.0.0.1:1"), 2*time.Second)
		require.Error(t, err)
		var coded *core.Error
		require.True(t, errors.As(err, &coded))
		assert.Equal(t, core.ErrCodeNetwork, coded.Code)
	})

	t.Run("Should truncate bodies beyond the configured cap", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(strings.Repeat("x", 100)))
		}))
		defer srv.Close()

		outcome, err := NewExecutor(WithMaxBodyBytes(64)).Do(context.Background(), getRequest(srv.URL), 5*time.Second)
		require.NoError(t, err)
		assert.True(t, outcome.Truncated)
		assert.Len(t, outcome.Body, 64)
	})
}
