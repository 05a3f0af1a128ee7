package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestRecoverMiddleware(t *testing.T) {
	s := &Server{logger: zerolog.Nop(), nowTime: time.Now}
	h := ChainMiddleware(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}, s.LoggingMiddleware, s.RecoverMiddleware)

	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, "/courses", nil))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.JSONEq(t, `{"data":null,"message":"Internal server error","status":500}`, rec.Body.String())
}

func TestChainMiddlewareOrder(t *testing.T) {
	var order []string
	mark := func(name string) func(http.HandlerFunc) http.HandlerFunc {
		return func(next http.HandlerFunc) http.HandlerFunc {
			return func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next(w, r)
			}
		}
	}
	h := ChainMiddleware(func(http.ResponseWriter, *http.Request) { order = append(order, "handler") }, mark("a"), mark("b"))
	h(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, []string{"a", "b", "handler"}, order)
}

func TestIPRateLimiter(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	rl := newIPRateLimiter(1, 2, func() time.Time { return now })

	require.True(t, rl.allow("10.0.0.1"))
	require.True(t, rl.allow("10.0.0.1"))
	require.False(t, rl.allow("10.0.0.1"))
	require.True(t, rl.allow("10.0.0.2"))

	now = now.Add(time.Second)
	require.True(t, rl.allow("10.0.0.1"))

	now = now.Add(visitorIdleTimeout + time.Minute)
	require.True(t, rl.allow("10.0.0.3"))
	require.Len(t, rl.visitors, 1)
}

func TestClientIP(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "192.0.2.1:1234"
	require.Equal(t, "192.0.2.1", clientIP(r))

	r.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	require.Equal(t, "192.0.2.1", clientIP(r))
}

func TestGenerateEmailFromBaseURL(t *testing.T) {
	require.Equal(t, "student@campus.test", generateEmailFromBaseURL("student", "http://campus.test:3000"))
	require.Equal(t, "student@localhost.local", generateEmailFromBaseURL("student", "http://localhost:3000"))
	require.Equal(t, "student@campus.local", generateEmailFromBaseURL("student", ""))
}
