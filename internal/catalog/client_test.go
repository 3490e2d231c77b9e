package catalog

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testCatalog = `{
  "version": "0.2.0",
  "games": [{"id": "valheim", "name": "Valheim", "recommended_mods": ["bepinex-config"]}],
  "mods": [
    {"id": "bepinex-config", "name": "Config Manager", "download": "https://example.com/cm.zip", "version": "1.0.0"}
  ]
}`

const testGameMods = `{"mods": [
  {"id": "valheim-plus", "name": "Valheim Plus", "download": "https://example.com/vp.zip", "version": "0.9.9"}
]}`

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/meta.json", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-agent", r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(testCatalog))
	})
	mux.HandleFunc("/games/valheim.json", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(testGameMods))
	})
	mux.HandleFunc("/games/broken.json", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"mods": [{"id": "x"}]}`))
	})
	mux.HandleFunc("/limited", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})
	mux.HandleFunc("/retry", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "30")
		w.WriteHeader(http.StatusTooManyRequests)
	})
	mux.HandleFunc("/boom", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	mux.HandleFunc("/big", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(strings.Repeat("x", 2048)))
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func newTestClient(server *httptest.Server) *Client {
	return NewClient(&Config{
		URL:         server.URL + "/meta.json",
		GameModsURL: server.URL + "/games/",
		UserAgent:   "test-agent",
		MaxSize:     1024,
		AppVersion:  "0.1.0",
	})
}

func TestNewClient(t *testing.T) {
	tests := []struct {
		name            string
		config          *Config
		expectedURL     string
		expectedTimeout time.Duration
		expectedMaxSize int64
	}{
		{
			name:            "nil config uses defaults",
			config:          nil,
			expectedURL:     DefaultURL,
			expectedTimeout: DefaultTimeout,
			expectedMaxSize: DefaultMaxSize,
		},
		{
			name: "custom config",
			config: &Config{
				URL:     "https://mirror.example.com/meta.json",
				Timeout: 5 * time.Second,
				MaxSize: 1024,
			},
			expectedURL:     "https://mirror.example.com/meta.json",
			expectedTimeout: 5 * time.Second,
			expectedMaxSize: 1024,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := NewClient(tt.config)

			require.NotNil(t, client)
			assert.Equal(t, tt.expectedURL, client.url)
			assert.Equal(t, tt.expectedTimeout, client.http.GetClient().Timeout)
			assert.Equal(t, tt.expectedMaxSize, client.maxSize)
			assert.NotNil(t, client.rateLimiter)
		})
	}
}

func TestClient_GameModsURL(t *testing.T) {
	c := NewClient(&Config{GameModsURL: "https://example.com/games"})
	assert.Equal(t, "https://example.com/games/valheim.json", c.GameModsURL("valheim"))

	c = NewClient(&Config{GameModsURL: "https://example.com/games/"})
	assert.Equal(t, "https://example.com/games/valheim.json", c.GameModsURL("valheim"))
}

func TestClient_FetchMetadata(t *testing.T) {
	server := newTestServer(t)
	client := newTestClient(server)

	meta, err := client.FetchMetadata(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "0.2.0", meta.Version)
	assert.True(t, meta.Update)
	assert.Contains(t, meta.Games, "valheim")
	assert.Contains(t, meta.Mods, "bepinex-config")
}

func TestClient_FetchGameMods(t *testing.T) {
	server := newTestServer(t)
	client := newTestClient(server)
	ctx := context.Background()

	mods, err := client.FetchGameMods(ctx, "valheim")
	require.NoError(t, err)
	assert.Contains(t, mods, "valheim-plus")

	_, err = client.FetchGameMods(ctx, "unknown")
	require.ErrorIs(t, err, ErrCatalogNotFound)

	_, err = client.FetchGameMods(ctx, "broken")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse mods of game broken")

	_, err = client.FetchGameMods(ctx, "")
	require.ErrorIs(t, err, ErrInvalidGameID)

	_, err = client.FetchGameMods(ctx, "../meta")
	require.ErrorIs(t, err, ErrInvalidGameID)
}

func TestClient_FetchErrors(t *testing.T) {
	server := newTestServer(t)
	client := newTestClient(server)
	ctx := context.Background()

	tests := []struct {
		name    string
		path    string
		wantErr error
		status  int
	}{
		{name: "rate limited", path: "/limited", wantErr: ErrRateLimitExceeded},
		{name: "not found", path: "/missing", wantErr: ErrCatalogNotFound},
		{name: "too large", path: "/big", wantErr: ErrResponseTooLarge},
		{name: "server error", path: "/boom", status: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := client.Fetch(ctx, server.URL+tt.path)
			require.Error(t, err)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.status, apiErr.StatusCode)
		})
	}
}

func TestClient_RetryAfterPausesLimiter(t *testing.T) {
	server := newTestServer(t)
	client := newTestClient(server)

	_, err := client.Fetch(context.Background(), server.URL+"/retry")
	require.ErrorIs(t, err, ErrRateLimitExceeded)
	assert.Equal(t, 0, client.rateLimiter.Tokens())

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = client.FetchMetadata(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestClient_FetchCancelled(t *testing.T) {
	server := newTestServer(t)
	client := newTestClient(server)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.FetchMetadata(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAPIError_Error(t *testing.T) {
	err := NewAPIError(http.StatusBadGateway, "502 Bad Gateway", "https://example.com/meta.json")
	assert.Equal(t, "catalog request https://example.com/meta.json failed: 502 Bad Gateway (status 502)", err.Error())
}
