package auth

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/desertthunder/spotx/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/sync/singleflight"
)

// Skew is the safety margin subtracted from token expiry. A token inside the
// skew window is treated as expired so it is never presented to the remote API
// after real expiry (absorbs clock drift and request latency).
const Skew = 60 * time.Second

// Scopes is the fixed permission set requested during authorization.
var Scopes = []string{
	"user-read-private",
	"user-read-email",
	"user-library-read",
	"user-library-modify",
	"user-read-playback-state",
	"user-modify-playback-state",
	"user-read-recently-played",
	"user-top-read",
	"playlist-read-private",
	"playlist-read-collaborative",
	"playlist-modify-public",
	"playlist-modify-private",
}

// Manager owns the credential lifecycle for one installation.
//
// All reads and writes of persistent credential state route through the
// Manager; no other component touches the store directly. A single Manager is
// constructed per process and passed by reference to consumers.
//
// Manager implements [oauth2.TokenSource], so HTTP clients built on
// [oauth2.NewClient] attach a freshly validated bearer token to every request.
type Manager struct {
	store     Store
	exchanger *Exchanger

	clientID    string
	redirectURI string
	authURL     string

	now func() time.Time

	mu    sync.RWMutex // guards creds
	creds *Credentials // in-memory copy of the persisted record, nil until seen

	group singleflight.Group // serializes refresh attempts

	lmu      sync.Mutex // guards listener
	listener *CallbackListener
}

// ManagerOpts configures optional [Manager] dependencies, primarily for tests.
type ManagerOpts struct {
	Store     Store            // overrides the default file store
	Exchanger *Exchanger       // overrides the default token exchanger
	AuthURL   string           // overrides the default authorization endpoint
	Now       func() time.Time // overrides the clock
}

// NewManager creates the process-wide credential lifecycle manager.
func NewManager(config *shared.Config, opts *ManagerOpts) (*Manager, error) {
	if opts == nil {
		opts = &ManagerOpts{}
	}

	spotify := config.Credentials.Spotify

	store := opts.Store
	if store == nil {
		dir, err := config.StorageDir()
		if err != nil {
			return nil, err
		}
		store = NewFileStore(dir)
	}

	exchanger := opts.Exchanger
	if exchanger == nil {
		exchanger = NewExchanger(spotify.ClientID, spotify.ClientSecret, spotify.RedirectURI, nil)
	}

	authURL := opts.AuthURL
	if authURL == "" {
		authURL = AuthEndpoint
	}

	now := opts.Now
	if now == nil {
		now = time.Now
	}

	return &Manager{
		store:       store,
		exchanger:   exchanger,
		clientID:    spotify.ClientID,
		redirectURI: spotify.RedirectURI,
		authURL:     authURL,
		now:         now,
	}, nil
}

// GenerateAuthURL starts a new authorization attempt and returns the URL to
// present to the user.
//
// Generates a fresh state token and PKCE verifier, persists them as the
// handshake record, and builds the authorization endpoint URL with the S256
// challenge. Overwrites any prior unconsumed handshake: at most one
// authorization attempt is outstanding, and starting a second invalidates the
// first. No network call is made.
func (m *Manager) GenerateAuthURL() (string, error) {
	state, err := GenerateState()
	if err != nil {
		return "", fmt.Errorf("failed to generate state: %w", err)
	}

	verifier, err := GenerateVerifier()
	if err != nil {
		return "", fmt.Errorf("failed to generate verifier: %w", err)
	}

	if err := m.store.SaveHandshake(&Handshake{State: state, CodeVerifier: verifier}); err != nil {
		return "", err
	}

	params := url.Values{}
	params.Set("response_type", "code")
	params.Set("client_id", m.clientID)
	params.Set("scope", strings.Join(Scopes, " "))
	params.Set("redirect_uri", m.redirectURI)
	params.Set("state", state)
	params.Set("code_challenge_method", "S256")
	params.Set("code_challenge", Challenge(verifier))

	return m.authURL + "?" + params.Encode(), nil
}

// ExchangeCodeForToken consumes the authorization callback.
//
// The state must match the stored handshake exactly, defending against forged,
// stale, and duplicate callbacks. On success the renewed credential record is
// persisted and the handshake is deleted (single use). On exchange failure the
// handshake is left intact; note that authorization codes are single-use
// upstream, so retrying with the same code will also fail.
func (m *Manager) ExchangeCodeForToken(ctx context.Context, code, state string) error {
	handshake, err := m.store.LoadHandshake()
	if err != nil {
		return err
	}
	if handshake == nil {
		return fmt.Errorf("%w: no authorization attempt in progress", shared.ErrInvalidState)
	}
	if handshake.State != state {
		return shared.ErrInvalidState
	}

	token, err := m.exchanger.Exchange(ctx, code, handshake.CodeVerifier)
	if err != nil {
		return err
	}

	if err := m.save(m.credentials(token, nil)); err != nil {
		return err
	}

	return m.store.ClearHandshake()
}

// GetValidAccessToken returns an access token that is safe to present to the
// remote API right now.
//
// This is the single read/refresh path: every outbound API call routes through
// it before attaching a bearer header. A token inside the [Skew] window is
// refreshed first; concurrent callers share one in-flight refresh so the
// remote never sees two simultaneous refreshes of the same token.
func (m *Manager) GetValidAccessToken(ctx context.Context) (string, error) {
	creds, err := m.load()
	if err != nil {
		return "", err
	}
	if creds == nil {
		return "", shared.ErrNotAuthenticated
	}

	if !creds.ExpiresWithin(m.now(), Skew) {
		return creds.AccessToken, nil
	}

	if creds.RefreshToken == "" {
		return "", shared.ErrReauthorizationRequired
	}

	access, err, _ := m.group.Do("refresh", func() (any, error) {
		return m.refresh(ctx)
	})
	if err != nil {
		return "", err
	}

	return access.(string), nil
}

// IsAuthenticated reports whether a credential record exists on storage.
//
// This is a presence check, not a validity check: an expired record still
// counts. Callers needing validity must use [Manager.GetValidAccessToken].
func (m *Manager) IsAuthenticated() bool {
	creds, err := m.load()
	return err == nil && creds != nil
}

// Scope returns the scope string stored with the credential record, or ""
// when nothing is stored.
func (m *Manager) Scope() string {
	creds, err := m.load()
	if err != nil || creds == nil {
		return ""
	}
	return creds.Scope
}

// ClearAuth deletes the credential record. Idempotent; succeeds even when
// nothing was stored. Any outstanding handshake is unaffected.
func (m *Manager) ClearAuth() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.store.ClearCredentials(); err != nil {
		return err
	}

	m.creds = nil
	return nil
}

// Token implements [oauth2.TokenSource] backed by the credential lifecycle.
func (m *Manager) Token() (*oauth2.Token, error) {
	access, err := m.GetValidAccessToken(context.Background())
	if err != nil {
		return nil, err
	}
	return &oauth2.Token{AccessToken: access, TokenType: "Bearer"}, nil
}

// StartCallbackListener binds the redirect endpoint and begins waiting for the
// authorization redirect in the background.
//
// Any listener from a prior attempt is closed first, freeing the port and
// guaranteeing a stale attempt can never complete against a new handshake.
func (m *Manager) StartCallbackListener() (*CallbackListener, error) {
	m.lmu.Lock()
	defer m.lmu.Unlock()

	if m.listener != nil {
		m.listener.Close()
	}

	listener, err := NewCallbackListener(m.redirectURI, m.ExchangeCodeForToken)
	if err != nil {
		return nil, err
	}

	if err := listener.Start(); err != nil {
		return nil, err
	}

	m.listener = listener
	return listener, nil
}

// refresh performs one renewal round trip and persists the result.
//
// Runs inside the singleflight group. The expiry check is repeated here so a
// caller that joins after an earlier flight completed gets the renewed token
// without a redundant network call.
func (m *Manager) refresh(ctx context.Context) (string, error) {
	creds, err := m.load()
	if err != nil {
		return "", err
	}
	if creds == nil {
		return "", shared.ErrNotAuthenticated
	}

	if !creds.ExpiresWithin(m.now(), Skew) {
		return creds.AccessToken, nil
	}

	if creds.RefreshToken == "" {
		return "", shared.ErrReauthorizationRequired
	}

	token, err := m.exchanger.Refresh(ctx, creds.RefreshToken)
	if err != nil {
		return "", err
	}

	renewed := m.credentials(token, creds)
	if err := m.save(renewed); err != nil {
		return "", err
	}

	return renewed.AccessToken, nil
}

// credentials builds a credential record from a token response.
//
// Rotation upstream is partial: a refresh response may omit the refresh token
// or the scope, and an omitted field means "unchanged", so the prior record's
// values carry over.
func (m *Manager) credentials(token *TokenResponse, prior *Credentials) *Credentials {
	creds := &Credentials{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		ExpiresAt:    m.now().Add(time.Duration(token.ExpiresIn) * time.Second).UnixMilli(),
		Scope:        token.Scope,
	}
	if prior != nil {
		if creds.RefreshToken == "" {
			creds.RefreshToken = prior.RefreshToken
		}
		if creds.Scope == "" {
			creds.Scope = prior.Scope
		}
	}
	return creds
}

// load returns the credential record, reading storage when the cache is empty.
//
// Presence is cached; absence is not. A record written by another process (a
// login completing while the MCP server runs) becomes visible on the next call.
func (m *Manager) load() (*Credentials, error) {
	m.mu.RLock()
	if m.creds != nil {
		creds := m.creds
		m.mu.RUnlock()
		return creds, nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.creds != nil {
		return m.creds, nil
	}

	creds, err := m.store.LoadCredentials()
	if err != nil {
		return nil, err
	}

	m.creds = creds
	return creds, nil
}

// save persists a credential record and updates the in-memory cache.
//
// The write and the cache update happen under the lock so no caller observes
// a half-updated record.
func (m *Manager) save(creds *Credentials) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.store.SaveCredentials(creds); err != nil {
		return err
	}

	m.creds = creds
	return nil
}
