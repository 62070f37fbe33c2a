package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/spotx/internal/auth"
	"github.com/desertthunder/spotx/internal/shared"
	"github.com/desertthunder/spotx/internal/ui"
	"github.com/urfave/cli/v3"
)

// AuthLogin walks the OAuth2 + PKCE handshake end to end: generate the
// authorization URL, bind the redirect listener, hand the URL to the browser,
// and wait for the callback to finish the code exchange.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	if r.manager == nil {
		return fmt.Errorf("%w: credential manager not configured", shared.ErrInvalidConfig)
	}
	if r.config == nil || r.config.Credentials.Spotify.ClientID == "" {
		return fmt.Errorf("%w: spotify client_id is not set; run 'spotx setup config' and add your application credentials", shared.ErrInvalidConfig)
	}

	authURL, err := r.manager.GenerateAuthURL()
	if err != nil {
		return fmt.Errorf("failed to generate authorization URL: %w", err)
	}

	listener, err := r.manager.StartCallbackListener()
	if err != nil {
		return fmt.Errorf("failed to start callback listener: %w", err)
	}
	defer listener.Close()

	if cmd.Bool("plain") {
		return r.loginPlain(ctx, authURL, listener)
	}

	return r.loginInteractive(ctx, authURL, listener)
}

// loginPlain runs the handshake without the interactive view, for terminals
// where bubbletea is unwelcome (CI, dumb terminals, piped output).
func (r *Runner) loginPlain(ctx context.Context, authURL string, listener *auth.CallbackListener) error {
	r.writePlain("Open this URL in your browser to authorize:\n\n  %s\n\n", authURL)
	if err := r.openURL(authURL); err != nil {
		r.logger.Debugf("failed to open browser: %v", err)
	}
	r.writePlain("Waiting for authorization (times out after %s)...\n", auth.CallbackTimeout)

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-listener.Result():
		if err != nil {
			return fmt.Errorf("authorization failed: %w", err)
		}
	}

	r.writePlain("✓ Connected to Spotify\n")
	if profile, err := r.spotify.Profile(ctx); err == nil {
		name := profile.DisplayName
		if name == "" {
			name = profile.ID
		}
		r.writePlain("→ Logged in as %s\n", name)
	}

	return nil
}

// loginInteractive drives the handshake through the bubbletea wait screen. A
// bridge goroutine turns the listener's single outcome into a LoginResult,
// decorating success with the profile name and granted scope.
func (r *Runner) loginInteractive(ctx context.Context, authURL string, listener *auth.CallbackListener) error {
	results := make(chan ui.LoginResult, 1)
	go func() {
		result := ui.LoginResult{Err: <-listener.Result()}
		if result.Err == nil {
			if profile, err := r.spotify.Profile(ctx); err == nil {
				result.Profile = profile.DisplayName
				if result.Profile == "" {
					result.Profile = profile.ID
				}
			}
			result.Scope = r.manager.Scope()
		}
		results <- result
	}()

	model := ui.NewLoginModel(ctx, authURL, results, r.openURL)
	final, err := tea.NewProgram(model).Run()
	if err != nil {
		return fmt.Errorf("failed to run login view: %w", err)
	}

	login := final.(*ui.LoginModel)
	if login.Cancelled() {
		return fmt.Errorf("authorization attempt canceled")
	}
	if result := login.Result(); result.Err != nil {
		return fmt.Errorf("authorization failed: %w", result.Err)
	}

	return nil
}

// AuthStatus reports whether stored credentials exist. Presence is the whole
// check; --verify additionally proves the credentials against the profile
// endpoint.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	authenticated := r.manager != nil && r.manager.IsAuthenticated()

	status := struct {
		Authenticated bool   `json:"authenticated"`
		Scope         string `json:"scope,omitempty"`
		Profile       string `json:"profile,omitempty"`
	}{Authenticated: authenticated}

	if authenticated {
		status.Scope = r.manager.Scope()
	}

	if authenticated && cmd.Bool("verify") {
		profile, err := r.spotify.Profile(ctx)
		if err != nil {
			return adviseAuth(fmt.Errorf("credential check failed: %w", err))
		}
		status.Profile = profile.DisplayName
		if status.Profile == "" {
			status.Profile = profile.ID
		}
	}

	if cmd.Bool("json") {
		return r.writeJSON(status, true)
	}

	if !authenticated {
		r.writePlain("⚠ Not connected. Run 'spotx auth login' to authorize.\n")
		return nil
	}

	r.writePlain("✓ Connected to Spotify\n")
	if status.Profile != "" {
		r.writePlain("→ Logged in as %s\n", status.Profile)
	}
	if status.Scope != "" {
		r.writePlain("→ Scope: %s\n", status.Scope)
	}

	return nil
}

// AuthLogout removes stored credentials. Safe to run when nothing is stored.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	if r.manager == nil {
		return fmt.Errorf("%w: credential manager not configured", shared.ErrInvalidConfig)
	}

	had := r.manager.IsAuthenticated()
	if err := r.manager.ClearAuth(); err != nil {
		return fmt.Errorf("failed to clear credentials: %w", err)
	}

	if had {
		r.writePlain("✓ Logged out of Spotify\n")
	} else {
		r.writePlain("No stored credentials.\n")
	}

	return nil
}
