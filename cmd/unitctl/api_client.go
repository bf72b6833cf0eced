package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"time"

	"github.com/dom/crusadetome/internal/service"
)

// APIClient handles HTTP communication with the backend
type APIClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewAPIClient creates a new API client
func NewAPIClient(baseURL string) *APIClient {
	return &APIClient{
		baseURL: baseURL + "/api/v1",
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Response types matching backend

type SessionResponse struct {
	Token string       `json:"token"`
	Unit  UnitResponse `json:"unit"`
}

type UnitResponse struct {
	SessionID string          `json:"sessionId"`
	Document  json.RawMessage `json:"document"`
	Form      service.Form    `json:"form"`
	Report    *service.Report `json:"report"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Offset  *int64 `json:"offset"`
}

type EnumsResponse struct {
	UnitTypes []string `json:"unitTypes"`
	Factions  []string `json:"factions"`
}

// APIError is a non-2xx reply from the backend
type APIError struct {
	Status int
	Body   ErrorResponse
	Raw    string
}

func (e *APIError) Error() string {
	if e.Body.Error != "" {
		return fmt.Sprintf("%s (status %d): %s", e.Body.Error, e.Status, e.Body.Message)
	}
	return fmt.Sprintf("status %d: %s", e.Status, e.Raw)
}

// StartSession opens an editing session
func (c *APIClient) StartSession() (*SessionResponse, error) {
	resp, err := c.do(http.MethodPost, "/sessions", "", "", nil)
	if err != nil {
		return nil, fmt.Errorf("start session request failed: %w", err)
	}
	defer resp.Body.Close()

	var result SessionResponse
	if err := decode(resp, http.StatusCreated, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// EndSession discards the session behind token
func (c *APIClient) EndSession(token string) error {
	resp, err := c.do(http.MethodDelete, "/sessions/current", token, "", nil)
	if err != nil {
		return fmt.Errorf("end session request failed: %w", err)
	}
	defer resp.Body.Close()
	return decode(resp, http.StatusNoContent, nil)
}

// Enums fetches the unit type and faction lists
func (c *APIClient) Enums() (*EnumsResponse, error) {
	resp, err := c.do(http.MethodGet, "/enums", "", "", nil)
	if err != nil {
		return nil, fmt.Errorf("enums request failed: %w", err)
	}
	defer resp.Body.Close()

	var result EnumsResponse
	if err := decode(resp, http.StatusOK, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Load uploads a unit document into the session
func (c *APIClient) Load(token string, document []byte) (*UnitResponse, error) {
	resp, err := c.do(http.MethodPost, "/unit/load", token, "application/json", document)
	if err != nil {
		return nil, fmt.Errorf("load request failed: %w", err)
	}
	defer resp.Body.Close()

	var result UnitResponse
	if err := decode(resp, http.StatusOK, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Submit applies a form to the session record
func (c *APIClient) Submit(token string, form service.Form) (*UnitResponse, error) {
	body, err := json.Marshal(form)
	if err != nil {
		return nil, err
	}

	resp, err := c.do(http.MethodPost, "/unit/submit", token, "application/json", body)
	if err != nil {
		return nil, fmt.Errorf("submit request failed: %w", err)
	}
	defer resp.Body.Close()

	var result UnitResponse
	if err := decode(resp, http.StatusOK, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Save downloads the session record and the filename the server chose for it
func (c *APIClient) Save(token string) (string, []byte, error) {
	resp, err := c.do(http.MethodGet, "/unit/save", token, "", nil)
	if err != nil {
		return "", nil, fmt.Errorf("save request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", nil, decode(resp, http.StatusOK, nil)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", nil, fmt.Errorf("failed to read document: %w", err)
	}

	filename := "unit.json"
	if _, params, err := mime.ParseMediaType(resp.Header.Get("Content-Disposition")); err == nil && params["filename"] != "" {
		filename = params["filename"]
	}
	return filename, data, nil
}

func (c *APIClient) do(method, path, token, contentType string, body []byte) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		bodyReader = bytes.NewReader(body)
	}

	req, err := http.NewRequest(method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, err
	}

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	return c.httpClient.Do(req)
}

func decode(resp *http.Response, want int, v interface{}) error {
	if resp.StatusCode != want {
		bodyBytes, _ := io.ReadAll(resp.Body)
		apiErr := &APIError{Status: resp.StatusCode, Raw: string(bodyBytes)}
		json.Unmarshal(bodyBytes, &apiErr.Body)
		return apiErr
	}
	if v == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
