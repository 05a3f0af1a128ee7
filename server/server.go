package server

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/jrsteele09/go-campus/auth"
	"github.com/jrsteele09/go-campus/courses"
	"github.com/jrsteele09/go-campus/internal/config"
	"github.com/jrsteele09/go-campus/newsletter"
	"github.com/jrsteele09/go-campus/token"
	"github.com/jrsteele09/go-campus/users"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Repos holds all repository dependencies of the Server
type Repos struct {
	Users      users.UserRepo
	Courses    courses.Repo
	Newsletter newsletter.Repo
}

type Server struct {
	env     string // Environment (e.g., "DEV", "PROD")
	prefix  string
	mux     *http.ServeMux
	handler http.Handler
	routes  []string
	config  config.Config
	auth    *auth.AuthService
	repos   Repos
	limiter *ipRateLimiter
	logger  zerolog.Logger
	nowTime func() time.Time
}

type Option func(*Server)

func WithLogger(logger zerolog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithNowTime sets the clock used for tokens and enrollments (primarily for testing)
func WithNowTime(nowFunc func() time.Time) Option {
	return func(s *Server) {
		s.nowTime = nowFunc
	}
}

func New(cfg config.Config, repos Repos, options ...Option) (*Server, error) {
	if repos.Users == nil || repos.Courses == nil || repos.Newsletter == nil {
		return nil, fmt.Errorf("[Server New] users, courses and newsletter repos are required")
	}

	s := &Server{
		env:     cfg.GetEnv(),
		prefix:  cfg.GetAPIPrefix(),
		mux:     http.NewServeMux(),
		config:  cfg,
		repos:   repos,
		logger:  log.Logger,
		nowTime: time.Now,
	}
	for _, opt := range options {
		opt(s)
	}

	tokenCreator := token.New(
		token.NewHMACSigner(cfg.GetJWTSecret()),
		token.WithIssuer(cfg.GetIssuer()),
		token.WithTokenExpiry(cfg.GetAccessTokenExpiry()),
		token.WithNowFunc(s.nowTime),
	)
	authService, err := auth.NewAuthService(repos.Users, tokenCreator, auth.WithNowTime(s.nowTime))
	if err != nil {
		return nil, fmt.Errorf("[Server New] failed to create auth service: %w", err)
	}
	s.auth = authService

	if cfg.GetEnableRateLimiting() {
		s.limiter = newIPRateLimiter(cfg.GetLoginRateLimit(), cfg.GetLoginRateBurst(), s.nowTime)
	}

	if err := s.InitialiseSystem(); err != nil {
		return nil, fmt.Errorf("[Server New] Failed to initialise the system: %w", err)
	}

	s.initRoutes()
	s.logRoutes()

	var h http.Handler = s.mux
	if s.prefix != "" {
		h = http.StripPrefix(s.prefix, h)
	}
	s.handler = s.CorsHandler(h)
	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

// PruneRevokedTokens forgets revocations of tokens that have expired since.
func (s *Server) PruneRevokedTokens() int {
	return s.auth.PruneRevokedTokens()
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)

		if len(parts) > 1 {
			s.logRoute(parts[0], s.prefix+parts[1])
		} else {
			s.logRoute("", s.prefix+parts[0])
		}
	}
}

func (s *Server) logRoute(method, path string) {
	s.logger.Info().Msgf("[%-19s] %s", colouredMethod(method), path)
}
