package testutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dom/crusadetome/internal/api"
	"github.com/dom/crusadetome/internal/config"
	"github.com/dom/crusadetome/internal/repository"
	"github.com/dom/crusadetome/internal/repository/memory"
	"github.com/dom/crusadetome/internal/service"
	"github.com/dom/crusadetome/internal/websocket"
	"github.com/stretchr/testify/require"
)

// TestConfig returns a configuration suitable for testing
func TestConfig() *config.Config {
	return &config.Config{
		Port:               "0", // Random port
		Environment:        "test",
		LogLevel:           "error",
		LogFormat:          "console",
		JWTSecret:          "test-jwt-secret-key-for-testing-only",
		JWTExpirationHours: 1,
		SessionTTL:         time.Hour,
		MaxUploadBytes:     64 * 1024,
	}
}

// TestServer holds all components for integration testing
type TestServer struct {
	Server   *httptest.Server
	Repos    *repository.Repositories
	Services *service.Services
	Hub      *websocket.Hub
	Config   *config.Config
}

// NewTestServer creates a complete test server with all dependencies
func NewTestServer(t *testing.T) *TestServer {
	t.Helper()
	return NewTestServerWithConfig(t, TestConfig())
}

func NewTestServerWithConfig(t *testing.T, cfg *config.Config) *TestServer {
	t.Helper()

	repos := &repository.Repositories{
		Session: memory.NewSessionRepository(cfg.SessionTTL),
	}
	services := service.NewServices(repos, cfg)

	hub := websocket.NewHub(services.Session)
	go hub.Run()
	services.Session.SetPublisher(hub)

	router := api.NewRouter(services, hub, cfg)
	server := httptest.NewServer(router)

	ts := &TestServer{
		Server:   server,
		Repos:    repos,
		Services: services,
		Hub:      hub,
		Config:   cfg,
	}

	t.Cleanup(func() {
		server.Close()
		hub.Stop()
	})

	return ts
}

// BaseURL returns the test server's base URL
func (ts *TestServer) BaseURL() string {
	return ts.Server.URL
}

// APIURL returns the full API URL for a given path
func (ts *TestServer) APIURL(path string) string {
	return fmt.Sprintf("%s/api/v1%s", ts.Server.URL, path)
}

// WebSocketURL returns the WebSocket URL with token
func (ts *TestServer) WebSocketURL(token string) string {
	wsURL := "ws" + ts.Server.URL[4:] // Replace "http" with "ws"
	return fmt.Sprintf("%s/api/v1/ws?token=%s", wsURL, token)
}

// SessionResponse mirrors the body of POST /sessions
type SessionResponse struct {
	Token string       `json:"token"`
	Unit  UnitResponse `json:"unit"`
}

// UnitResponse mirrors the body of the /unit endpoints
type UnitResponse struct {
	SessionID string          `json:"sessionId"`
	Document  json.RawMessage `json:"document"`
	Form      service.Form    `json:"form"`
	Report    *service.Report `json:"report"`
}

// StartSession opens a session and returns its token
func (ts *TestServer) StartSession(t *testing.T) SessionResponse {
	t.Helper()

	resp, err := http.Post(ts.APIURL("/sessions"), "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var result SessionResponse
	AssertJSONResponse(t, resp, &result)
	require.NotEmpty(t, result.Token)
	return result
}

// Do sends an authenticated request. The caller closes the response body.
func (ts *TestServer) Do(t *testing.T, method, path, token, contentType string, body []byte) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequest(method, ts.APIURL(path), reader)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}
