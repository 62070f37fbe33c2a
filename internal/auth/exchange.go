package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/desertthunder/spotx/internal/shared"
)

const (
	// AuthEndpoint is Spotify's user-facing authorization page.
	AuthEndpoint = "https://accounts.spotify.com/authorize"
	// TokenEndpoint is Spotify's token issuance endpoint.
	TokenEndpoint = "https://accounts.spotify.com/api/token"
)

// TokenResponse is the token endpoint's JSON payload, shared by both grant types.
//
// refresh_token is optional on the refresh grant: Spotify only includes it when
// rotating, so callers keep the previous one when the field is empty.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"` // lifetime in seconds
	RefreshToken string `json:"refresh_token,omitempty"`
	Scope        string `json:"scope"`
}

// Exchanger performs the two token endpoint round trips of the authorization code flow.
//
// Neither operation retries on failure: authorization codes are single-use
// upstream, so repeating a failed exchange with the same code cannot succeed,
// and a failed refresh is surfaced so the caller can decide to re-authorize.
type Exchanger struct {
	clientID     string
	clientSecret string
	redirectURI  string
	tokenURL     string
	client       *http.Client
}

// ExchangerOpts configures optional [Exchanger] dependencies, primarily for tests.
type ExchangerOpts struct {
	TokenURL string       // overrides the default token endpoint
	Client   *http.Client // overrides the default HTTP client
}

// NewExchanger creates an Exchanger for the given application credentials.
func NewExchanger(clientID, clientSecret, redirectURI string, opts *ExchangerOpts) *Exchanger {
	if opts == nil {
		opts = &ExchangerOpts{}
	}

	tokenURL := opts.TokenURL
	if tokenURL == "" {
		tokenURL = TokenEndpoint
	}

	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}

	return &Exchanger{
		clientID:     clientID,
		clientSecret: clientSecret,
		redirectURI:  redirectURI,
		tokenURL:     tokenURL,
		client:       client,
	}
}

// Exchange converts an authorization code into a token pair using the PKCE verifier.
//
// The client identifier and verifier travel in the form body. PKCE stands in
// for the client secret on this grant, so no Basic auth header is sent.
func (e *Exchanger) Exchange(ctx context.Context, code, verifier string) (*TokenResponse, error) {
	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("code", code)
	form.Set("redirect_uri", e.redirectURI)
	form.Set("client_id", e.clientID)
	form.Set("code_verifier", verifier)

	token, err := e.post(ctx, form, false)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrExchangeFailed, err)
	}

	return token, nil
}

// Refresh renews the access token from a refresh token.
//
// Spotify requires HTTP Basic application credentials for this grant.
func (e *Exchanger) Refresh(ctx context.Context, refreshToken string) (*TokenResponse, error) {
	if refreshToken == "" {
		return nil, shared.ErrNoRefreshToken
	}

	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", refreshToken)

	token, err := e.post(ctx, form, true)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrRefreshFailed, err)
	}

	return token, nil
}

// post performs one form-encoded POST against the token endpoint and decodes the response.
func (e *Exchanger) post(ctx context.Context, form url.Values, basicAuth bool) (*TokenResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if basicAuth {
		req.SetBasicAuth(e.clientID, e.clientSecret)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var remote struct {
			Error            string `json:"error"`
			ErrorDescription string `json:"error_description"`
		}
		if json.Unmarshal(body, &remote) == nil && remote.Error != "" {
			return nil, fmt.Errorf("token endpoint error: status %d: %s - %s", resp.StatusCode, remote.Error, remote.ErrorDescription)
		}
		return nil, fmt.Errorf("token endpoint error: status %d", resp.StatusCode)
	}

	var token TokenResponse
	if err := json.Unmarshal(body, &token); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if token.AccessToken == "" {
		return nil, fmt.Errorf("response missing access_token")
	}

	return &token, nil
}
