package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"
)

// ExchangeFunc consumes the authorization code and state delivered to the
// callback endpoint. The credential lifecycle manager supplies this.
type ExchangeFunc func(ctx context.Context, code, state string) error

// CallbackHandler handles the OAuth2 authorization redirect for one attempt.
// Implements the Handler interface for registration with a Router.
//
// The handler processes exactly one callback: success, an error redirect from
// the authorization server, or a malformed request all consume the attempt.
type CallbackHandler struct {
	path        string
	exchange    ExchangeFunc
	resultChan  chan error
	once        sync.Once
	callbackHit bool
	mu          sync.Mutex
}

// NewCallbackHandler creates a callback handler serving the given path.
// An empty path defaults to "/callback".
func NewCallbackHandler(path string, exchange ExchangeFunc) *CallbackHandler {
	if path == "" {
		path = "/callback"
	}
	return &CallbackHandler{
		path:       path,
		exchange:   exchange,
		resultChan: make(chan error, 1),
	}
}

// Routes returns the HTTP routes this handler serves.
func (h *CallbackHandler) Routes() []string {
	return []string{h.path}
}

// ServeHTTP handles the authorization redirect.
//
// Forwards code and state to the exchange function, responding 200 on success
// or 400 with the failure reason. An error parameter from the authorization
// server short-circuits without calling the exchanger.
func (h *CallbackHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Only handle callback once
	h.mu.Lock()
	if h.callbackHit {
		h.mu.Unlock()
		http.Error(w, "Callback already processed", http.StatusBadRequest)
		return
	}
	h.callbackHit = true
	h.mu.Unlock()

	query := r.URL.Query()

	if errParam := query.Get("error"); errParam != "" {
		err := fmt.Errorf("authorization failed: %s - %s", errParam, query.Get("error_description"))
		h.Send(err)
		http.Error(w, "Authorization failed", http.StatusBadRequest)
		return
	}

	code := query.Get("code")
	state := query.Get("state")
	if code == "" || state == "" {
		err := fmt.Errorf("callback missing code or state parameter")
		h.Send(err)
		http.Error(w, "Missing code or state parameter", http.StatusBadRequest)
		return
	}

	if err := h.exchange(r.Context(), code, state); err != nil {
		h.Send(err)
		http.Error(w, fmt.Sprintf("Token exchange failed: %v", err), http.StatusBadRequest)
		return
	}

	h.Send(nil)

	w.Header().Set("Content-Type", "text/html")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, `
<!DOCTYPE html>
<html>
<head>
    <title>Authorization Successful</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
               display: flex; align-items: center; justify-content: center; height: 100vh;
               margin: 0; background: #f5f5f5; }
        .container { text-align: center; background: white; padding: 2rem;
                     border-radius: 8px; box-shadow: 0 2px 4px rgba(0,0,0,0.1); }
        h1 { color: #1DB954; margin: 0 0 1rem 0; }
        p { color: #666; margin: 0; }
    </style>
</head>
<body>
    <div class="container">
        <h1>✓ Authorization Successful</h1>
        <p>You can close this window and return to the terminal.</p>
    </div>
</body>
</html>
`)
}

// Send sends the callback outcome through the channel (only once).
func (h *CallbackHandler) Send(err error) {
	h.once.Do(func() {
		h.resultChan <- err
		close(h.resultChan)
	})
}

// Result returns the result channel for receiving callback completion.
//
// Channel will receive exactly one result and then be closed. A nil value
// means the exchange succeeded.
func (h *CallbackHandler) Result() <-chan error {
	return h.resultChan
}
