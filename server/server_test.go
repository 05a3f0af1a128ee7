package server_test

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jrsteele09/go-campus/api"
	"github.com/jrsteele09/go-campus/courses"
	fakecourserepo "github.com/jrsteele09/go-campus/courses/repofake"
	"github.com/jrsteele09/go-campus/internal/config"
	campuserrors "github.com/jrsteele09/go-campus/internal/errors"
	"github.com/jrsteele09/go-campus/localstore"
	"github.com/jrsteele09/go-campus/newsletter"
	fakenewsletterrepo "github.com/jrsteele09/go-campus/newsletter/repofake"
	"github.com/jrsteele09/go-campus/pipeline"
	"github.com/jrsteele09/go-campus/server"
	"github.com/jrsteele09/go-campus/session"
	"github.com/jrsteele09/go-campus/tokenstore"
	fakeuserrepo "github.com/jrsteele09/go-campus/users/repofake"
	"github.com/jrsteele09/go-campus/validation"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

const (
	demoEmail    = "student@campus.test"
	demoPassword = "demopass1"
)

type testFixture struct {
	ts        *httptest.Server
	tokens    *tokenstore.Store
	navigator *pipeline.MemoryNavigator
	policy    *pipeline.UnauthorizedPolicy
	backend   *api.HTTPClient
	provider  *session.Provider
}

func newConfig(t *testing.T, values map[string]any) *config.Settings {
	t.Helper()
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))
	base := map[string]any{
		"env":                  "TEST",
		"base_url":             "http://campus.test",
		"jwt_secret":           "test-secret",
		"demo_user_password":   demoPassword,
		"enable_rate_limiting": false,
		"allowed_origins":      "http://localhost:5173",
	}
	for k, v := range values {
		base[k] = v
	}
	return config.New(config.WithValues(base))
}

func setupTestFixture(t *testing.T, values map[string]any) *testFixture {
	t.Helper()

	srv, err := server.New(newConfig(t, values), server.Repos{
		Users:      fakeuserrepo.NewFakeUserRepo(),
		Courses:    fakecourserepo.NewFakeCourseRepo().Seed(),
		Newsletter: fakenewsletterrepo.NewFakeNewsletterRepo(),
	}, server.WithLogger(zerolog.Nop()))
	require.NoError(t, err)

	f := &testFixture{
		ts:        httptest.NewServer(srv),
		tokens:    tokenstore.New(localstore.NewMemoryStore()),
		navigator: pipeline.NewMemoryNavigator("/"),
	}
	t.Cleanup(f.ts.Close)

	f.policy = pipeline.NewUnauthorizedPolicy(f.tokens, f.navigator, pipeline.WithPolicyLogger(zerolog.Nop()))
	client := pipeline.NewClient(f.ts.URL+"/api",
		pipeline.WithTokens(f.tokens),
		pipeline.WithUnauthorizedPolicy(f.policy),
		pipeline.WithLogger(zerolog.Nop()),
		pipeline.WithTransport(f.ts.Client()),
	)
	f.backend = api.NewHTTPClient(client)
	f.provider = session.New(f.backend, f.tokens, session.WithExpiryNotifier(f.policy), session.WithLogger(zerolog.Nop()))
	t.Cleanup(f.provider.Close)
	return f
}

func (f *testFixture) login(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	f.provider.Init(ctx)
	require.NoError(t, f.provider.Login(ctx, demoEmail, demoPassword))
}

func TestSessionLifecycle(t *testing.T) {
	ctx := context.Background()
	f := setupTestFixture(t, nil)

	require.Equal(t, session.StateAnonymous, f.provider.Init(ctx).State)

	require.NoError(t, f.provider.Login(ctx, demoEmail, demoPassword))
	snap := f.provider.Snapshot()
	require.Equal(t, session.StateAuthenticated, snap.State)
	require.Equal(t, demoEmail, snap.User.Email)
	require.Equal(t, "Demo Student", snap.User.Name)

	token, ok, err := f.tokens.Get(ctx)
	require.NoError(t, err)
	require.True(t, ok)

	me, err := f.backend.CurrentUser(ctx)
	require.NoError(t, err)
	require.Equal(t, *snap.User, me)

	require.NoError(t, f.provider.Logout(ctx))
	require.Equal(t, session.StateAnonymous, f.provider.Snapshot().State)
	_, ok, _ = f.tokens.Get(ctx)
	require.False(t, ok)

	// The revoked token no longer works even if presented again
	require.NoError(t, f.tokens.Set(ctx, token))
	_, err = f.backend.CurrentUser(ctx)
	require.ErrorIs(t, err, campuserrors.ErrUnauthorized)
}

func TestRestoreSessionFromStoredToken(t *testing.T) {
	ctx := context.Background()
	f := setupTestFixture(t, nil)
	resp, err := f.backend.Login(ctx, demoEmail, demoPassword)
	require.NoError(t, err)
	require.NoError(t, f.tokens.Set(ctx, resp.Token))

	snap := f.provider.Init(ctx)

	require.Equal(t, session.StateAuthenticated, snap.State)
	require.Equal(t, resp.User, *snap.User)
}

func TestStaleTokenClearsSessionAndRedirects(t *testing.T) {
	ctx := context.Background()
	f := setupTestFixture(t, nil)
	f.navigator.Navigate("/dashboard")
	require.NoError(t, f.tokens.Set(ctx, "garbage"))

	snap := f.provider.Init(ctx)

	require.Equal(t, session.StateAnonymous, snap.State)
	_, ok, _ := f.tokens.Get(ctx)
	require.False(t, ok)
	require.Equal(t, []string{"/login?redirect=%2Fdashboard"}, f.navigator.Redirects())
}

func TestLoginFailures(t *testing.T) {
	ctx := context.Background()
	f := setupTestFixture(t, nil)
	f.navigator.Navigate("/login")
	f.provider.Init(ctx)

	err := f.provider.Login(ctx, demoEmail, "wrongpass1")
	require.ErrorIs(t, err, campuserrors.ErrUnauthorized)
	require.Equal(t, "Invalid email or password", f.provider.Snapshot().Error)
	require.Equal(t, session.StateAnonymous, f.provider.Snapshot().State)
	require.Empty(t, f.navigator.Redirects())
}

func TestRegister(t *testing.T) {
	ctx := context.Background()
	f := setupTestFixture(t, nil)
	f.provider.Init(ctx)

	form := validation.Registration{
		Name: "Ada", Email: "ada@campus.test", Phone: "+447911123456",
		Password: "analytic1", ConfirmPassword: "analytic1",
	}
	require.NoError(t, f.provider.Register(ctx, form))
	require.Equal(t, "ada@campus.test", f.provider.Snapshot().User.Email)

	_, err := f.backend.Register(ctx, api.RegisterRequest{Email: "ada@campus.test", Password: "analytic1"})
	require.ErrorIs(t, err, campuserrors.ErrConflict)
	var apiErr *pipeline.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, "An account with this email already exists", apiErr.Message)

	_, err = f.backend.Register(ctx, api.RegisterRequest{Email: "bob@campus.test", Password: "short"})
	require.ErrorIs(t, err, campuserrors.ErrValidation)
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, validation.MsgWeakPassword, apiErr.Message)
}

func TestUpdateProfile(t *testing.T) {
	ctx := context.Background()
	f := setupTestFixture(t, nil)
	f.login(t)

	require.NoError(t, f.provider.UpdateProfile(ctx, "Ada Student"))
	require.Equal(t, "Ada Student", f.provider.Snapshot().User.Name)

	me, err := f.backend.CurrentUser(ctx)
	require.NoError(t, err)
	require.Equal(t, "Ada Student", me.Name)
}

func TestCourses(t *testing.T) {
	ctx := context.Background()
	f := setupTestFixture(t, nil)

	all, err := f.backend.ListCourses(ctx, courses.Filters{})
	require.NoError(t, err)
	require.Len(t, all, 4)

	intermediate, err := f.backend.ListCourses(ctx, courses.Filters{Level: "intermediate"})
	require.NoError(t, err)
	require.Len(t, intermediate, 2)

	none, err := f.backend.ListCourses(ctx, courses.Filters{Search: "xylophone"})
	require.NoError(t, err)
	require.Empty(t, none)

	course, err := f.backend.GetCourse(ctx, "2")
	require.NoError(t, err)
	require.Equal(t, "Data Structures and Algorithms", course.Title)

	_, err = f.backend.GetCourse(ctx, "missing")
	require.ErrorIs(t, err, campuserrors.ErrNotFound)

	universities, err := f.backend.ListUniversities(ctx)
	require.NoError(t, err)
	require.Len(t, universities, 3)
}

func TestEnrollment(t *testing.T) {
	ctx := context.Background()
	f := setupTestFixture(t, nil)

	// Protected routes need a session
	f.navigator.Navigate("/courses/1")
	_, err := f.backend.Enroll(ctx, "1")
	require.ErrorIs(t, err, campuserrors.ErrUnauthorized)
	require.Equal(t, []string{"/login?redirect=%2Fcourses%2F1"}, f.navigator.Redirects())

	f.login(t)

	enrolled, err := f.backend.EnrolledCourses(ctx)
	require.NoError(t, err)
	require.Empty(t, enrolled)

	e, err := f.backend.Enroll(ctx, "1")
	require.NoError(t, err)
	require.Equal(t, "1", e.CourseID)
	require.Equal(t, 0, e.Progress)

	_, err = f.backend.Enroll(ctx, "1")
	require.ErrorIs(t, err, campuserrors.ErrConflict)

	_, err = f.backend.Enroll(ctx, "2")
	require.NoError(t, err)

	e, err = f.backend.UpdateProgress(ctx, "1", 150)
	require.NoError(t, err)
	require.Equal(t, 100, e.Progress)

	_, err = f.backend.UpdateProgress(ctx, "3", 10)
	require.ErrorIs(t, err, campuserrors.ErrNotFound)

	enrolled, err = f.backend.EnrolledCourses(ctx)
	require.NoError(t, err)
	require.Len(t, enrolled, 2)
	require.Equal(t, courses.DashboardStats{CoursesCompleted: 1, CertificatesEarned: 1}, courses.Stats(enrolled))
}

func TestNewsletter(t *testing.T) {
	ctx := context.Background()
	f := setupTestFixture(t, nil)

	sub, err := f.backend.Subscribe(ctx, api.NewsletterSubscription{Email: "Reader@Campus.test"})
	require.NoError(t, err)
	require.Equal(t, "reader@campus.test", sub.Email)
	require.Equal(t, newsletter.DefaultPreferences(), sub.Preferences)

	prefs := newsletter.Preferences{CourseUpdates: true}
	sub, err = f.backend.UpdatePreferences(ctx, "reader@campus.test", prefs)
	require.NoError(t, err)
	require.Equal(t, prefs, sub.Preferences)

	require.NoError(t, f.backend.Unsubscribe(ctx, "reader@campus.test"))
	require.ErrorIs(t, f.backend.Unsubscribe(ctx, "reader@campus.test"), campuserrors.ErrNotFound)

	_, err = f.backend.Subscribe(ctx, api.NewsletterSubscription{Email: "not-an-email"})
	require.ErrorIs(t, err, campuserrors.ErrValidation)
}

func TestRawResponses(t *testing.T) {
	f := setupTestFixture(t, nil)

	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		wantStatus int
		wantBody   string
	}{
		{"health", http.MethodGet, "/api/health", "", http.StatusOK, `"status":"ok"`},
		{"unknown route", http.MethodGet, "/api/nope", "", http.StatusNotFound, `"message":"Route not found"`},
		{"bad filter", http.MethodGet, "/api/courses?maxPrice=cheap", "", http.StatusBadRequest, `invalid maxPrice`},
		{"bad body", http.MethodPost, "/api/auth/login", "{", http.StatusBadRequest, `"message":"Invalid request body"`},
		{"missing token", http.MethodGet, "/api/auth/me", "", http.StatusUnauthorized, `"message":"Authentication required"`},
		{"logout without token", http.MethodPost, "/api/auth/logout", "", http.StatusUnauthorized, `"status":401`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := http.NewRequest(tt.method, f.ts.URL+tt.path, strings.NewReader(tt.body))
			require.NoError(t, err)
			resp, err := f.ts.Client().Do(req)
			require.NoError(t, err)
			defer resp.Body.Close()

			require.Equal(t, tt.wantStatus, resp.StatusCode)
			require.Equal(t, "application/json", resp.Header.Get("Content-Type"))
			body, err := io.ReadAll(resp.Body)
			require.NoError(t, err)
			require.Contains(t, string(body), tt.wantBody)
		})
	}
}

func TestCors(t *testing.T) {
	f := setupTestFixture(t, nil)

	req, err := http.NewRequest(http.MethodOptions, f.ts.URL+"/api/auth/login", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "authorization,content-type")
	resp, err := f.ts.Client().Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, "http://localhost:5173", resp.Header.Get("Access-Control-Allow-Origin"))
	require.Equal(t, "true", resp.Header.Get("Access-Control-Allow-Credentials"))

	req, err = http.NewRequest(http.MethodGet, f.ts.URL+"/api/courses", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://evil.example.com")
	resp, err = f.ts.Client().Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Empty(t, resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestLoginRateLimit(t *testing.T) {
	ctx := context.Background()
	f := setupTestFixture(t, map[string]any{
		"enable_rate_limiting": true,
		"login_rate_limit":     0.001,
		"login_rate_burst":     2,
	})

	for i := 0; i < 2; i++ {
		_, err := f.backend.Login(ctx, demoEmail, demoPassword)
		require.NoError(t, err)
	}
	_, err := f.backend.Login(ctx, demoEmail, demoPassword)
	require.ErrorIs(t, err, campuserrors.ErrRateLimited)

	// Other routes are not limited
	_, err = f.backend.ListCourses(ctx, courses.Filters{})
	require.NoError(t, err)
}

func TestLoginRateLimitIgnoresForwardedFor(t *testing.T) {
	f := setupTestFixture(t, map[string]any{
		"enable_rate_limiting": true,
		"login_rate_limit":     0.001,
		"login_rate_burst":     2,
	})

	statuses := make([]int, 0, 4)
	for i := 0; i < 4; i++ {
		req, err := http.NewRequest(http.MethodPost, f.ts.URL+"/api/auth/login",
			strings.NewReader(`{"email":"student@campus.test","password":"wrongpass1"}`))
		require.NoError(t, err)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("203.0.113.%d", i+1))
		resp, err := f.ts.Client().Do(req)
		require.NoError(t, err)
		resp.Body.Close()
		statuses = append(statuses, resp.StatusCode)
	}

	require.Equal(t, []int{http.StatusUnauthorized, http.StatusUnauthorized, http.StatusTooManyRequests, http.StatusTooManyRequests}, statuses)
}

func TestTokenExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	srv, err := server.New(newConfig(t, map[string]any{"access_token_expiry": "1h"}), server.Repos{
		Users:      fakeuserrepo.NewFakeUserRepo(),
		Courses:    fakecourserepo.NewFakeCourseRepo().Seed(),
		Newsletter: fakenewsletterrepo.NewFakeNewsletterRepo(),
	}, server.WithLogger(zerolog.Nop()), server.WithNowTime(clock))
	require.NoError(t, err)
	ts := httptest.NewServer(srv)
	defer ts.Close()

	tokens := tokenstore.New(localstore.NewMemoryStore())
	backend := api.NewHTTPClient(pipeline.NewClient(ts.URL+"/api",
		pipeline.WithTokens(tokens),
		pipeline.WithLogger(zerolog.Nop()),
		pipeline.WithTransport(ts.Client()),
	))
	resp, err := backend.Login(ctx, demoEmail, demoPassword)
	require.NoError(t, err)
	require.NoError(t, tokens.Set(ctx, resp.Token))

	_, err = backend.CurrentUser(ctx)
	require.NoError(t, err)

	now = now.Add(2 * time.Hour)
	_, err = backend.CurrentUser(ctx)
	require.ErrorIs(t, err, campuserrors.ErrUnauthorized)
	require.Zero(t, srv.PruneRevokedTokens())
}
