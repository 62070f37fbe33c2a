package ui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

const testAuthURL = "https://accounts.spotify.com/authorize?client_id=test"

func keyMsg(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func TestLoginModel(t *testing.T) {
	t.Run("WaitingView", func(t *testing.T) {
		m := NewLoginModel(context.Background(), testAuthURL, make(chan LoginResult), nil)

		view := m.View()
		if !strings.Contains(view, "Waiting for authorization") {
			t.Errorf("waiting view missing status line, got: %s", view)
		}
		if !strings.Contains(view, testAuthURL) {
			t.Errorf("waiting view missing auth URL, got: %s", view)
		}
	})

	t.Run("SuccessResult", func(t *testing.T) {
		m := NewLoginModel(context.Background(), testAuthURL, make(chan LoginResult), nil)

		updated, cmd := m.Update(loginResultMsg{Profile: "testuser", Scope: "user-read-private"})
		model := updated.(*LoginModel)

		if model.state != LoginSucceeded {
			t.Errorf("expected LoginSucceeded, got %d", model.state)
		}
		if cmd == nil {
			t.Error("expected quit command after result")
		}

		view := model.View()
		if !strings.Contains(view, "Connected to Spotify") {
			t.Errorf("success view missing confirmation, got: %s", view)
		}
		if !strings.Contains(view, "testuser") {
			t.Errorf("success view missing profile, got: %s", view)
		}
		if !strings.Contains(view, "user-read-private") {
			t.Errorf("success view missing scopes, got: %s", view)
		}
	})

	t.Run("FailureResult", func(t *testing.T) {
		m := NewLoginModel(context.Background(), testAuthURL, make(chan LoginResult), nil)

		updated, _ := m.Update(loginResultMsg{Err: errors.New("access_denied")})
		model := updated.(*LoginModel)

		if model.state != LoginFailed {
			t.Errorf("expected LoginFailed, got %d", model.state)
		}

		view := model.View()
		if !strings.Contains(view, "Authorization failed") {
			t.Errorf("failure view missing heading, got: %s", view)
		}
		if !strings.Contains(view, "access_denied") {
			t.Errorf("failure view missing error, got: %s", view)
		}
	})

	t.Run("QuitBeforeResult", func(t *testing.T) {
		m := NewLoginModel(context.Background(), testAuthURL, make(chan LoginResult), nil)

		updated, cmd := m.Update(keyMsg('q'))
		model := updated.(*LoginModel)

		if cmd == nil {
			t.Error("expected quit command")
		}
		if !model.Cancelled() {
			t.Error("expected Cancelled() after quitting while waiting")
		}
	})

	t.Run("QuitAfterResultNotCancelled", func(t *testing.T) {
		m := NewLoginModel(context.Background(), testAuthURL, make(chan LoginResult), nil)

		updated, _ := m.Update(loginResultMsg{Profile: "testuser"})
		updated, _ = updated.(*LoginModel).Update(keyMsg('q'))

		if updated.(*LoginModel).Cancelled() {
			t.Error("quitting after a result should not count as cancelled")
		}
	})

	t.Run("ReopenBrowser", func(t *testing.T) {
		var opened string
		openURL := func(url string) error {
			opened = url
			return nil
		}
		m := NewLoginModel(context.Background(), testAuthURL, make(chan LoginResult), openURL)

		m.Update(keyMsg('o'))

		if opened != testAuthURL {
			t.Errorf("expected browser reopened with auth URL, got %q", opened)
		}
	})
}

func TestLoginModel_WaitForResult(t *testing.T) {
	t.Run("DeliversResult", func(t *testing.T) {
		results := make(chan LoginResult, 1)
		results <- LoginResult{Profile: "testuser"}

		m := NewLoginModel(context.Background(), testAuthURL, results, nil)
		msg := m.waitForResult()()

		result, ok := msg.(loginResultMsg)
		if !ok {
			t.Fatalf("expected loginResultMsg, got %T", msg)
		}
		if result.Profile != "testuser" {
			t.Errorf("expected profile testuser, got %q", result.Profile)
		}
	})

	t.Run("ContextCancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		m := NewLoginModel(ctx, testAuthURL, make(chan LoginResult), nil)
		msg := m.waitForResult()()

		result, ok := msg.(loginResultMsg)
		if !ok {
			t.Fatalf("expected loginResultMsg, got %T", msg)
		}
		if !errors.Is(result.Err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", result.Err)
		}
	})

	t.Run("ClosedChannel", func(t *testing.T) {
		results := make(chan LoginResult)
		close(results)

		m := NewLoginModel(context.Background(), testAuthURL, results, nil)
		msg := m.waitForResult()()

		result, ok := msg.(loginResultMsg)
		if !ok {
			t.Fatalf("expected loginResultMsg, got %T", msg)
		}
		if result.Err == nil {
			t.Error("expected error for closed result channel")
		}
	})
}
