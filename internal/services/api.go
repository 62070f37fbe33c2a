// API service for making raw HTTP requests to the Spotify Web API
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/oauth2"
)

// APIService provides methods for making raw, path-addressed requests to the
// Spotify Web API. The CLI's api command uses it for debugging endpoints the
// typed [SpotifyService] does not cover.
type APIService struct {
	source     oauth2.TokenSource
	baseURL    string
	httpClient *http.Client
}

// NewAPIService creates a raw API client. A nil source sends unauthenticated
// requests, which the API rejects for everything but public endpoints.
func NewAPIService(source oauth2.TokenSource, baseURL string, client *http.Client) *APIService {
	if baseURL == "" {
		baseURL = spotifyBaseURL
	}
	if client == nil {
		client = http.DefaultClient
	}

	return &APIService{
		source:     source,
		baseURL:    baseURL,
		httpClient: client,
	}
}

// APIResponse represents a raw API response with status and body.
type APIResponse struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
	IsJSON     bool
	JSONData   any
}

// Get performs a GET request to the specified path and returns the raw response.
func (a *APIService) Get(ctx context.Context, path string) (*APIResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	return a.send(req)
}

// Post performs a POST request with the given JSON data and returns the raw response.
func (a *APIService) Post(ctx context.Context, path string, data []byte) (*APIResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	return a.send(req)
}

// Put performs a PUT request with the given JSON data and returns the raw
// response. A nil or empty body is allowed; several player endpoints take none.
func (a *APIService) Put(ctx context.Context, path string, data []byte) (*APIResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, a.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if len(data) > 0 {
		req.Header.Set("Content-Type", "application/json")
	}

	return a.send(req)
}

// send authorizes and executes the request, capturing the raw response.
func (a *APIService) send(req *http.Request) (*APIResponse, error) {
	if a.source != nil {
		token, err := a.source.Token()
		if err != nil {
			return nil, fmt.Errorf("failed to obtain access token: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+token.AccessToken)
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	apiResp := &APIResponse{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Body:       body,
	}

	var jsonData any
	if err := json.Unmarshal(body, &jsonData); err == nil {
		apiResp.IsJSON = true
		apiResp.JSONData = jsonData
	}

	return apiResp, nil
}
