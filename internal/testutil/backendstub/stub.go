// Package backendstub provides in-process fake backend services for client
// tests: an echo server per service with per-route call counting and error
// injection, so tests can assert cache behavior and error translation
// without a real backend.
package backendstub

import (
	"net/http"
	"net/http/httptest"
	"sync"

	"github.com/labstack/echo/v4"
)

// Failure is an injected backend error served instead of the real handler.
type Failure struct {
	Status  int
	Code    string
	Message string
	once    bool
}

// Stub is the base fake service: an echo instance behind httptest with
// call counting and failure injection keyed by "METHOD /path".
type Stub struct {
	e   *echo.Echo
	srv *httptest.Server

	mu       sync.Mutex
	calls    map[string]int
	failures map[string]Failure
}

func newStub() *Stub {
	s := &Stub{
		e:        echo.New(),
		calls:    make(map[string]int),
		failures: make(map[string]Failure),
	}
	s.e.HideBanner = true
	s.e.Use(s.intercept)
	return s
}

func (s *Stub) intercept(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		key := routeKey(c.Request().Method, c.Request().URL.Path)
		s.mu.Lock()
		s.calls[key]++
		f, failing := s.failures[key]
		if failing && f.once {
			delete(s.failures, key)
		}
		s.mu.Unlock()
		if failing {
			return c.JSON(f.Status, map[string]string{"code": f.Code, "message": f.Message})
		}
		return next(c)
	}
}

func (s *Stub) start() {
	s.srv = httptest.NewServer(s.e)
}

// URL returns the stub's base URL.
func (s *Stub) URL() string { return s.srv.URL }

// Close shuts the stub down.
func (s *Stub) Close() { s.srv.Close() }

// Calls reports how many requests hit method+path, failures included.
func (s *Stub) Calls(method, path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[routeKey(method, path)]
}

// Fail makes every request to method+path return the given backend error
// until cleared.
func (s *Stub) Fail(method, path string, status int, code, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[routeKey(method, path)] = Failure{Status: status, Code: code, Message: message}
}

// FailOnce injects a backend error for the next request only.
func (s *Stub) FailOnce(method, path string, status int, code, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[routeKey(method, path)] = Failure{Status: status, Code: code, Message: message, once: true}
}

// ClearFailures removes all injected failures.
func (s *Stub) ClearFailures() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = make(map[string]Failure)
}

func routeKey(method, path string) string { return method + " " + path }

func notFound(c echo.Context, message string) error {
	return c.JSON(http.StatusNotFound, map[string]string{"code": "NotFoundError", "message": message})
}

func conflict(c echo.Context, code, message string) error {
	return c.JSON(http.StatusConflict, map[string]string{"code": code, "message": message})
}
