package server

import (
	"net/http"
	"runtime/debug"
	"time"

	"github.com/jrsteele09/go-campus/pipeline"
	"github.com/rs/cors"
)

func ChainMiddleware(routeFunction http.HandlerFunc, mw ...func(http.HandlerFunc) http.HandlerFunc) http.HandlerFunc {
	chainedHandler := routeFunction
	// Apply middleware in reverse order
	for i := len(mw) - 1; i >= 0; i-- {
		chainedHandler = mw[i](chainedHandler) // Call the middleware function
	}
	return chainedHandler
}

// APIMiddleware is logging and panic recovery followed by any route specific middleware.
func (s *Server) APIMiddleware(mw ...func(http.HandlerFunc) http.HandlerFunc) []func(http.HandlerFunc) http.HandlerFunc {
	chainedMiddleWare := []func(http.HandlerFunc) http.HandlerFunc{
		s.LoggingMiddleware,
		s.RecoverMiddleware,
	}
	return append(chainedMiddleWare, mw...)
}

// statusRecorder remembers the status code written by the handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) LoggingMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next(rec, r)

		evt := s.logger.Debug()
		if s.env == "DEV" {
			evt = s.logger.Info()
		}
		evt.Str("request_id", r.Header.Get(pipeline.RequestIDHeader)).
			Dur("latency", time.Since(start)).
			Msgf("[%-19s] %s %s", colouredMethod(r.Method), r.URL.Path, colouredStatus(rec.status))
	}
}

// RecoverMiddleware turns a handler panic into a 500 envelope.
func (s *Server) RecoverMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.logger.Error().
					Interface("panic", rec).
					Str("path", r.URL.Path).
					Bytes("stack", debug.Stack()).
					Msg("recovered from panic in handler")
				writeError(w, http.StatusInternalServerError, "Internal server error")
			}
		}()
		next(w, r)
	}
}

// CorsHandler applies the configured origins. A "*" origin allows everyone but without credentials.
func (s *Server) CorsHandler(next http.Handler) http.Handler {
	allowedOrigins := s.config.GetAllowedOrigins()
	isWildcard := allowedOrigins.IsAllowedOrigin("*")

	options := cors.Options{
		AllowedOrigins:   allowedOrigins.List(),
		AllowedMethods:   s.config.GetAllowedMethods(),
		AllowedHeaders:   s.config.GetAllowedHeaders(),
		AllowCredentials: !isWildcard,
		MaxAge:           86400,
	}
	if isWildcard {
		options.AllowedOrigins = []string{"*"}
	}
	return cors.New(options).Handler(next)
}

// RateLimitMiddleware limits each client IP on the credential endpoints. Disabled by config it passes through.
func (s *Server) RateLimitMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.limiter != nil && !s.limiter.allow(clientIP(r)) {
			w.Header().Set("Retry-After", "1")
			writeError(w, http.StatusTooManyRequests, "Too many requests, please try again later")
			return
		}
		next(w, r)
	}
}
