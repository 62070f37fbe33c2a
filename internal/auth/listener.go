package auth

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/desertthunder/spotx/internal/server"
	"github.com/desertthunder/spotx/internal/shared"
)

// CallbackTimeout is how long a listener waits for the browser redirect
// before shutting down on its own.
const CallbackTimeout = 5 * time.Minute

// ListenerState identifies where a [CallbackListener] is in its lifecycle.
type ListenerState int32

const (
	StateIdle ListenerState = iota
	StateListening
	StateClosed
)

// String returns the lowercase name of the state.
func (s ListenerState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateListening:
		return "listening"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// CallbackListener is a short-lived local HTTP endpoint that receives the
// authorization redirect and feeds code and state into the exchange.
//
// Lifecycle: Idle -> Listening -> Closed. The listener serves exactly one
// authorization attempt and closes itself after the first callback, after an
// error redirect, or after [CallbackTimeout] elapses with no callback.
type CallbackListener struct {
	addr    string
	handler *server.CallbackHandler
	timeout time.Duration

	state atomic.Int32
	srv   *http.Server
	ln    net.Listener
	timer *time.Timer

	result     chan error
	resultOnce sync.Once
	closeOnce  sync.Once
	done       chan struct{}
}

// NewCallbackListener prepares a listener for the given redirect URI in the
// Idle state. The port is not bound until [CallbackListener.Start].
func NewCallbackListener(redirectURI string, exchange server.ExchangeFunc) (*CallbackListener, error) {
	parsed, err := url.Parse(redirectURI)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid redirect URI: %v", shared.ErrInvalidConfig, err)
	}

	addr := parsed.Host
	if parsed.Port() == "" {
		addr = net.JoinHostPort(parsed.Hostname(), "80")
	}

	return &CallbackListener{
		addr:    addr,
		handler: server.NewCallbackHandler(parsed.Path, exchange),
		timeout: CallbackTimeout,
		result:  make(chan error, 1),
		done:    make(chan struct{}),
	}, nil
}

// Start binds the redirect port and begins serving in the background.
func (l *CallbackListener) Start() error {
	if !l.state.CompareAndSwap(int32(StateIdle), int32(StateListening)) {
		return fmt.Errorf("listener already started")
	}

	ln, err := net.Listen("tcp", l.addr)
	if err != nil {
		l.state.Store(int32(StateClosed))
		return fmt.Errorf("failed to bind %s: %w", l.addr, err)
	}
	l.ln = ln

	router := server.NewBasicRouter()
	router.Handler(l.handler)
	l.srv = &http.Server{Handler: router}

	go func() {
		if err := l.srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			l.publish(err)
			l.Close()
		}
	}()

	l.timer = time.AfterFunc(l.timeout, func() {
		l.publish(fmt.Errorf("%w: no authorization callback received", shared.ErrTimeout))
		l.Close()
	})

	go l.watch()

	return nil
}

// watch closes the listener once the single callback has been handled.
func (l *CallbackListener) watch() {
	select {
	case err := <-l.handler.Result():
		l.publish(err)
		l.Close()
	case <-l.done:
	}
}

// Close shuts the listener down. Safe to call from any state and more than once.
func (l *CallbackListener) Close() error {
	var err error
	l.closeOnce.Do(func() {
		prev := l.state.Swap(int32(StateClosed))
		close(l.done)

		if l.timer != nil {
			l.timer.Stop()
		}

		l.publish(fmt.Errorf("authorization attempt canceled"))

		if prev == int32(StateListening) && l.srv != nil {
			// Graceful shutdown so an in-flight callback response still flushes.
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			err = l.srv.Shutdown(ctx)
		}
	})
	return err
}

// publish delivers the attempt's outcome exactly once.
func (l *CallbackListener) publish(err error) {
	l.resultOnce.Do(func() {
		l.result <- err
		close(l.result)
	})
}

// Result returns the channel carrying the attempt's outcome.
//
// Exactly one value is delivered: nil when the exchange succeeded, otherwise
// the failure (including timeout and cancellation).
func (l *CallbackListener) Result() <-chan error {
	return l.result
}

// State returns the listener's current lifecycle state.
func (l *CallbackListener) State() ListenerState {
	return ListenerState(l.state.Load())
}

// Addr returns the bound listen address. Empty before Start succeeds.
func (l *CallbackListener) Addr() string {
	if l.ln == nil {
		return ""
	}
	return l.ln.Addr().String()
}
