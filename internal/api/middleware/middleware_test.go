package middleware

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"resumeBuilder/internal/auth"
)

type stubResolver map[string]string

func (s stubResolver) Resolve(_ context.Context, token string) (string, error) {
	if token == "broken" {
		return "", errors.New("redis down")
	}
	if email, ok := s[token]; ok {
		return email, nil
	}
	return "", auth.ErrInvalidSession
}

func newSessionEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CorrelationIDMiddleware(), SlogLoggerMiddleware(nil), SessionMiddleware(stubResolver{"good": "ada@example.com"}, "sid"))
	r.GET("/open", func(c *gin.Context) {
		email, _ := EmailFromContext(c)
		c.String(http.StatusOK, email)
	})
	r.GET("/closed", RequireSession("/login.html"), func(c *gin.Context) {
		c.String(http.StatusOK, "secret")
	})
	return r
}

func TestRequireSession(t *testing.T) {
	r := newSessionEngine()
	cases := []struct {
		name     string
		cookie   string
		status   int
		location string
	}{
		{"no cookie", "", http.StatusFound, "/login.html"},
		{"invalid token", "bogus", http.StatusFound, "/login.html"},
		{"resolver failure", "broken", http.StatusFound, "/login.html"},
		{"valid token", "good", http.StatusOK, ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/closed", nil)
			if tc.cookie != "" {
				req.AddCookie(&http.Cookie{Name: "sid", Value: tc.cookie})
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tc.status {
				t.Fatalf("expected %d got %d", tc.status, w.Code)
			}
			if got := w.Header().Get("Location"); got != tc.location {
				t.Fatalf("expected location %q got %q", tc.location, got)
			}
		})
	}
}

func TestSessionMiddleware_InjectsEmail(t *testing.T) {
	r := newSessionEngine()
	req := httptest.NewRequest(http.MethodGet, "/open", nil)
	req.AddCookie(&http.Cookie{Name: "sid", Value: "good"})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Body.String() != "ada@example.com" {
		t.Fatalf("unexpected body %q", w.Body.String())
	}
}

func TestCorrelationID(t *testing.T) {
	r := newSessionEngine()

	req := httptest.NewRequest(http.MethodGet, "/open", nil)
	req.Header.Set("X-Correlation-ID", "abc-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if got := w.Header().Get("X-Correlation-ID"); got != "abc-123" {
		t.Fatalf("expected echoed id got %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/open", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if got := w.Header().Get("X-Correlation-ID"); len(got) != 36 {
		t.Fatalf("expected generated uuid got %q", got)
	}
}

func TestLoggerFromContextOr_FallsBack(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	fallback := slog.New(slog.NewTextHandler(io.Discard, nil))
	if got := LoggerFromContextOr(c, fallback); got != fallback {
		t.Fatal("expected fallback logger without request logger")
	}

	requestLogger := slog.New(slog.NewTextHandler(io.Discard, nil))
	c.Set(slogLoggerKey, requestLogger)
	if got := LoggerFromContextOr(c, fallback); got != requestLogger {
		t.Fatal("expected request logger to win")
	}
}
