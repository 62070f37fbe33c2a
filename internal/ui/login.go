package ui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// LoginState represents the current phase of the login flow.
type LoginState int

const (
	LoginWaiting LoginState = iota
	LoginSucceeded
	LoginFailed
)

// LoginResult is delivered by the auth flow once the browser callback
// resolves and the code exchange finishes.
type LoginResult struct {
	Profile string
	Scope   string
	Err     error
}

type loginResultMsg LoginResult

// LoginModel renders the browser-handoff wait screen for auth login.
type LoginModel struct {
	ctx      context.Context
	state    LoginState
	authURL  string
	results  <-chan LoginResult
	result   LoginResult
	openURL  func(string) error
	spinner  spinner.Model
	help     help.Model
	keys     keyMap
	quitting bool
}

// NewLoginModel builds the wait screen. openURL reopens the authorization
// page when the user presses o; pass nil to disable the binding.
func NewLoginModel(ctx context.Context, authURL string, results <-chan LoginResult, openURL func(string) error) *LoginModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.accent

	return &LoginModel{
		ctx:     ctx,
		state:   LoginWaiting,
		authURL: authURL,
		results: results,
		openURL: openURL,
		spinner: sp,
		help:    help.New(),
		keys:    newKeyMap(),
	}
}

// Init starts the spinner and begins waiting for the callback result.
func (m *LoginModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.waitForResult())
}

// Update handles incoming messages and updates the model state.
func (m *LoginModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.open):
			if m.state == LoginWaiting && m.openURL != nil {
				_ = m.openURL(m.authURL)
			}
		}
		return m, nil

	case loginResultMsg:
		m.result = LoginResult(msg)
		if m.result.Err != nil {
			m.state = LoginFailed
		} else {
			m.state = LoginSucceeded
		}
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View renders the UI based on the current login state.
func (m *LoginModel) View() string {
	switch m.state {
	case LoginSucceeded:
		return m.renderSuccess()
	case LoginFailed:
		return m.renderFailure()
	default:
		return m.renderWaiting()
	}
}

// Result reports the callback outcome after the program exits.
func (m *LoginModel) Result() LoginResult { return m.result }

// Cancelled reports whether the user quit before the callback arrived.
func (m *LoginModel) Cancelled() bool { return m.quitting && m.state == LoginWaiting }

func (m *LoginModel) waitForResult() tea.Cmd {
	return func() tea.Msg {
		select {
		case <-m.ctx.Done():
			return loginResultMsg{Err: m.ctx.Err()}
		case result, ok := <-m.results:
			if !ok {
				return loginResultMsg{Err: fmt.Errorf("login aborted")}
			}
			return loginResultMsg(result)
		}
	}
}

func (m *LoginModel) renderWaiting() string {
	title := styles.title.Render("Connect Spotify")
	status := fmt.Sprintf("%s Waiting for authorization in your browser...", m.spinner.View())
	link := fmt.Sprintf("%s\n%s", styles.help.Render("If nothing opened, visit:"), styles.warn.Render(m.authURL))
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.open, m.keys.quit})

	return fmt.Sprintf("%s\n%s\n\n%s\n\n%s", title, status, link, helpView)
}

func (m *LoginModel) renderSuccess() string {
	title := styles.ok.Render("✓ Connected to Spotify")

	var who string
	if m.result.Profile != "" {
		who = fmt.Sprintf("\nLogged in as %s", m.result.Profile)
	}

	var scope string
	if m.result.Scope != "" {
		scope = "\n" + styles.help.Render(fmt.Sprintf("Granted scopes: %s", m.result.Scope))
	}

	return fmt.Sprintf("%s%s%s\n", title, who, scope)
}

func (m *LoginModel) renderFailure() string {
	title := styles.err.Render("✗ Authorization failed")
	return fmt.Sprintf("%s\n%v\n", title, m.result.Err)
}
