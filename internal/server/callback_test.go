package server

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// fakeExchange records the arguments forwarded by the handler.
type fakeExchange struct {
	calls int
	code  string
	state string
	err   error
}

func (f *fakeExchange) fn(ctx context.Context, code, state string) error {
	f.calls++
	f.code = code
	f.state = state
	return f.err
}

func receiveResult(t *testing.T, h *CallbackHandler) error {
	t.Helper()
	select {
	case err := <-h.Result():
		return err
	default:
		t.Fatal("expected a result to be delivered")
		return nil
	}
}

func TestNewCallbackHandler(t *testing.T) {
	t.Run("DefaultPath", func(t *testing.T) {
		h := NewCallbackHandler("", (&fakeExchange{}).fn)

		routes := h.Routes()
		if len(routes) != 1 || routes[0] != "/callback" {
			t.Errorf("expected default /callback route, got %v", routes)
		}
	})

	t.Run("CustomPath", func(t *testing.T) {
		h := NewCallbackHandler("/auth/done", (&fakeExchange{}).fn)

		routes := h.Routes()
		if len(routes) != 1 || routes[0] != "/auth/done" {
			t.Errorf("expected /auth/done route, got %v", routes)
		}
	})
}

func TestCallbackHandlerServeHTTP(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		exchange := &fakeExchange{}
		h := NewCallbackHandler("", exchange.fn)

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/callback?code=code789&state=state123", nil)
		h.ServeHTTP(w, r)

		if w.Code != http.StatusOK {
			t.Errorf("expected status 200, got %d", w.Code)
		}
		if !strings.Contains(w.Body.String(), "Authorization Successful") {
			t.Errorf("expected success page, got %q", w.Body.String())
		}

		if exchange.code != "code789" || exchange.state != "state123" {
			t.Errorf("expected code789/state123, got %s/%s", exchange.code, exchange.state)
		}

		if err := receiveResult(t, h); err != nil {
			t.Errorf("expected nil result, got %v", err)
		}
	})

	t.Run("ErrorRedirect", func(t *testing.T) {
		exchange := &fakeExchange{}
		h := NewCallbackHandler("", exchange.fn)

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/callback?error=access_denied&error_description=User+denied", nil)
		h.ServeHTTP(w, r)

		if w.Code != http.StatusBadRequest {
			t.Errorf("expected status 400, got %d", w.Code)
		}
		if exchange.calls != 0 {
			t.Errorf("expected exchange to be skipped, got %d calls", exchange.calls)
		}

		err := receiveResult(t, h)
		if err == nil || !strings.Contains(err.Error(), "access_denied") {
			t.Errorf("expected access_denied in result, got %v", err)
		}
	})

	t.Run("MissingCode", func(t *testing.T) {
		exchange := &fakeExchange{}
		h := NewCallbackHandler("", exchange.fn)

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/callback?state=state123", nil)
		h.ServeHTTP(w, r)

		if w.Code != http.StatusBadRequest {
			t.Errorf("expected status 400, got %d", w.Code)
		}
		if exchange.calls != 0 {
			t.Errorf("expected exchange to be skipped, got %d calls", exchange.calls)
		}
	})

	t.Run("MissingState", func(t *testing.T) {
		exchange := &fakeExchange{}
		h := NewCallbackHandler("", exchange.fn)

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/callback?code=code789", nil)
		h.ServeHTTP(w, r)

		if w.Code != http.StatusBadRequest {
			t.Errorf("expected status 400, got %d", w.Code)
		}
	})

	t.Run("ExchangeFailure", func(t *testing.T) {
		exchange := &fakeExchange{err: fmt.Errorf("token endpoint error: status 400")}
		h := NewCallbackHandler("", exchange.fn)

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/callback?code=code789&state=state123", nil)
		h.ServeHTTP(w, r)

		if w.Code != http.StatusBadRequest {
			t.Errorf("expected status 400, got %d", w.Code)
		}
		if !strings.Contains(w.Body.String(), "Token exchange failed") {
			t.Errorf("expected failure reason in body, got %q", w.Body.String())
		}

		if err := receiveResult(t, h); err == nil {
			t.Error("expected exchange error in result")
		}
	})

	t.Run("SecondCallbackRejected", func(t *testing.T) {
		exchange := &fakeExchange{}
		h := NewCallbackHandler("", exchange.fn)

		first := httptest.NewRecorder()
		h.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/callback?code=code789&state=state123", nil))

		second := httptest.NewRecorder()
		h.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/callback?code=other&state=other", nil))

		if second.Code != http.StatusBadRequest {
			t.Errorf("expected status 400 for repeated callback, got %d", second.Code)
		}
		if !strings.Contains(second.Body.String(), "already processed") {
			t.Errorf("expected already processed message, got %q", second.Body.String())
		}
		if exchange.calls != 1 {
			t.Errorf("expected exactly one exchange call, got %d", exchange.calls)
		}
	})
}

func TestCallbackHandlerSend(t *testing.T) {
	h := NewCallbackHandler("", (&fakeExchange{}).fn)

	first := fmt.Errorf("first")
	h.Send(first)
	h.Send(fmt.Errorf("second"))

	if err := <-h.Result(); err != first {
		t.Errorf("expected first error, got %v", err)
	}

	if _, open := <-h.Result(); open {
		t.Error("expected result channel to be closed after delivery")
	}
}
