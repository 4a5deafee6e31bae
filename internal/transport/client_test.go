package transport_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/glossync/internal/transport"
	"github.com/agentstation/glossync/pkg/errors"
)

func noBackoff() transport.Option {
	return transport.WithBackoff(func(int) time.Duration { return 0 })
}

func TestNewNormalizesDomain(t *testing.T) {
	tests := []struct {
		domain string
		want   string
	}{
		{"api.example.com", "https://api.example.com"},
		{"api.example.com/", "https://api.example.com"},
		{"http://localhost:8080", "http://localhost:8080"},
		{"https://api.example.com", "https://api.example.com"},
	}

	for _, tt := range tests {
		t.Run(tt.domain, func(t *testing.T) {
			c := transport.New(tt.domain)
			assert.Equal(t, tt.want, c.BaseURL())
		})
	}
}

func TestLogin(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, http.MethodPost, r.Method)
			require.Equal(t, transport.LoginPath, r.URL.Path)

			var creds map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&creds))
			assert.Equal(t, "alice", creds["username"])
			assert.Equal(t, "secret", creds["password"])

			_ = json.NewEncoder(w).Encode(map[string]any{"token": "tok-123"})
		}))
		defer srv.Close()

		c := transport.New(srv.URL)
		require.NoError(t, c.Login(context.Background(), "alice", "secret"))
		assert.True(t, c.Authenticated())
	})

	t.Run("invalid credentials", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer srv.Close()

		c := transport.New(srv.URL)
		err := c.Login(context.Background(), "alice", "wrong")
		require.Error(t, err)

		var authErr *errors.AuthenticationError
		require.ErrorAs(t, err, &authErr)
		assert.Contains(t, authErr.Message, "invalid username or password")
		assert.False(t, c.Authenticated())
	})

	t.Run("missing token in response", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_ = json.NewEncoder(w).Encode(map[string]any{"status": "ok"})
		}))
		defer srv.Close()

		c := transport.New(srv.URL)
		err := c.Login(context.Background(), "alice", "secret")
		var authErr *errors.AuthenticationError
		assert.ErrorAs(t, err, &authErr)
	})
}

func TestGetRequiresAuthentication(t *testing.T) {
	c := transport.New("https://api.example.com")

	_, err := c.Get(context.Background(), "/analysis/v2/configuration/abc")
	var authErr *errors.AuthenticationError
	assert.ErrorAs(t, err, &authErr)
}

func TestRetryOnServerErrors(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == transport.LoginPath {
			_ = json.NewEncoder(w).Encode(map[string]any{"token": "tok"})
			return
		}
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode(map[string]any{"name": "config"})
	}))
	defer srv.Close()

	c := transport.New(srv.URL, noBackoff())
	require.NoError(t, c.Login(context.Background(), "u", "p"))

	body, err := c.Get(context.Background(), "/analysis/v2/configuration/abc")
	require.NoError(t, err)
	assert.Equal(t, "config", body["name"])
	assert.Equal(t, 3, attempts)
}

func TestNoRetryOnClientErrors(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == transport.LoginPath {
			_ = json.NewEncoder(w).Encode(map[string]any{"token": "tok"})
			return
		}
		attempts++
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := transport.New(srv.URL, noBackoff())
	require.NoError(t, c.Login(context.Background(), "u", "p"))

	_, err := c.Get(context.Background(), "/analysis/v2/configuration/missing")
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
	assert.Equal(t, 1, attempts)
}

func TestRetriesExhausted(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == transport.LoginPath {
			_ = json.NewEncoder(w).Encode(map[string]any{"token": "tok"})
			return
		}
		attempts++
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := transport.New(srv.URL, noBackoff(), transport.WithMaxRetries(2))
	require.NoError(t, c.Login(context.Background(), "u", "p"))

	_, err := c.Get(context.Background(), "/analysis/v2/configuration/abc")
	require.Error(t, err)
	assert.True(t, errors.IsUnavailable(err))
	assert.Equal(t, 3, attempts)
}

func TestPutSendsJSONBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == transport.LoginPath {
			_ = json.NewEncoder(w).Encode(map[string]any{"token": "tok"})
			return
		}
		require.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var payload map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		_ = json.NewEncoder(w).Encode(payload)
	}))
	defer srv.Close()

	c := transport.New(srv.URL)
	require.NoError(t, c.Login(context.Background(), "u", "p"))

	body, err := c.Put(context.Background(), "/analysis/v2/configuration/abc", map[string]any{"name": "updated"})
	require.NoError(t, err)
	assert.Equal(t, "updated", body["name"])
}

func TestContextCancellationStopsRetries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == transport.LoginPath {
			_ = json.NewEncoder(w).Encode(map[string]any{"token": "tok"})
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := transport.New(srv.URL, transport.WithBackoff(func(int) time.Duration { return time.Minute }))
	require.NoError(t, c.Login(context.Background(), "u", "p"))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := c.Get(ctx, "/analysis/v2/configuration/abc")
	assert.ErrorIs(t, err, errors.ErrCanceled)
}
