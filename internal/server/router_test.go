package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestBasicRouterHandle(t *testing.T) {
	router := NewBasicRouter()
	router.Handle(http.MethodGet, "/ping", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("MatchingMethod", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

		if w.Code != http.StatusOK {
			t.Errorf("expected status 200, got %d", w.Code)
		}
	})

	t.Run("MethodNotAllowed", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/ping", nil))

		if w.Code != http.StatusMethodNotAllowed {
			t.Errorf("expected status 405, got %d", w.Code)
		}
	})
}

func TestBasicRouterHandler(t *testing.T) {
	router := NewBasicRouter()
	router.Handler(NewCallbackHandler("/callback", (&fakeExchange{}).fn))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/callback?code=code789&state=state123", nil))

	if w.Code != http.StatusOK {
		t.Errorf("expected registered callback route to respond 200, got %d", w.Code)
	}
}

func TestBasicRouterMiddleware(t *testing.T) {
	router := NewBasicRouter()

	var order []string
	named := func(name string) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	router.Use(named("outer"), named("inner"))
	router.Handle(http.MethodGet, "/ping", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		order = append(order, "handler")
	}))

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ping", nil))

	if len(order) != 3 || order[0] != "outer" || order[1] != "inner" || order[2] != "handler" {
		t.Errorf("expected middleware applied in registration order, got %v", order)
	}
}
