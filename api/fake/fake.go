// Package fake is an in-memory api.Backend for tests and offline demos.
package fake

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-campus/api"
	"github.com/jrsteele09/go-campus/courses"
	fakecourserepo "github.com/jrsteele09/go-campus/courses/repofake"
	campuserrors "github.com/jrsteele09/go-campus/internal/errors"
	"github.com/jrsteele09/go-campus/newsletter"
	fakenewsletterrepo "github.com/jrsteele09/go-campus/newsletter/repofake"
	"github.com/jrsteele09/go-campus/pipeline"
	"github.com/jrsteele09/go-campus/tokenstore"
	"github.com/jrsteele09/go-campus/users"
)

// Operation names accepted by Calls, FailWith and OnCall.
const (
	OpLogin             = "Login"
	OpRegister          = "Register"
	OpCurrentUser       = "CurrentUser"
	OpLogout            = "Logout"
	OpUpdateProfile     = "UpdateProfile"
	OpListCourses       = "ListCourses"
	OpGetCourse         = "GetCourse"
	OpEnroll            = "Enroll"
	OpEnrolledCourses   = "EnrolledCourses"
	OpUpdateProgress    = "UpdateProgress"
	OpListUniversities  = "ListUniversities"
	OpSubscribe         = "Subscribe"
	OpUnsubscribe       = "Unsubscribe"
	OpUpdatePreferences = "UpdatePreferences"
)

var _ api.Backend = (*Backend)(nil)

type account struct {
	user     api.User
	password string
}

// Backend reads the caller's bearer token from the same token store the pipeline would use. Tokens are
// issued as t1, t2, ... in order.
type Backend struct {
	tokens tokenstore.Tokens
	policy *pipeline.UnauthorizedPolicy

	mu         sync.Mutex
	accounts   map[string]*account
	sessions   map[string]string
	nextToken  int
	catalogue  *fakecourserepo.FakeCourseRepo
	newsletter *fakenewsletterrepo.FakeNewsletterRepo
	calls      map[string]int
	failures   map[string]error
	hooks      map[string]func()
	now        func() time.Time
}

type Option func(*Backend)

// WithUnauthorizedPolicy runs the policy on every 401 the fake produces, as the pipeline would.
func WithUnauthorizedPolicy(p *pipeline.UnauthorizedPolicy) Option {
	return func(b *Backend) {
		b.policy = p
	}
}

func WithNowFunc(now func() time.Time) Option {
	return func(b *Backend) {
		b.now = now
	}
}

func New(tokens tokenstore.Tokens, opts ...Option) *Backend {
	b := &Backend{
		tokens:     tokens,
		accounts:   make(map[string]*account),
		sessions:   make(map[string]string),
		catalogue:  fakecourserepo.NewFakeCourseRepo().Seed(),
		newsletter: fakenewsletterrepo.NewFakeNewsletterRepo(),
		calls:      make(map[string]int),
		failures:   make(map[string]error),
		hooks:      make(map[string]func()),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// AddUser creates an account. An empty ID gets a generated one.
func (b *Backend) AddUser(user api.User, password string) api.User {
	b.mu.Lock()
	defer b.mu.Unlock()
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	user.Email = users.NormaliseEmail(user.Email)
	b.accounts[user.Email] = &account{user: user, password: password}
	return user
}

// AddSession makes token valid for the account with the given email.
func (b *Backend) AddSession(token, email string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sessions[token] = users.NormaliseEmail(email)
}

// RevokeSessions invalidates every issued token, as a server restart with a new secret would.
func (b *Backend) RevokeSessions() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sessions = make(map[string]string)
}

// FailWith makes every later call of op return err. A nil err clears the failure.
func (b *Backend) FailWith(op string, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err == nil {
		delete(b.failures, op)
		return
	}
	b.failures[op] = err
}

// OnCall runs fn while op is in flight, after it was counted and before its result is produced.
func (b *Backend) OnCall(op string, fn func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.hooks[op] = fn
}

// Calls reports how many times op was invoked.
func (b *Backend) Calls(op string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[op]
}

// TotalCalls reports every invocation of every operation.
func (b *Backend) TotalCalls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	total := 0
	for _, n := range b.calls {
		total += n
	}
	return total
}

// Unauthorized builds the error the server sends for a rejected token.
func Unauthorized(message string) *pipeline.APIError {
	return &pipeline.APIError{Message: message, Status: http.StatusUnauthorized, Kind: pipeline.KindHTTP}
}

func httpErr(status int, message string) *pipeline.APIError {
	return &pipeline.APIError{Message: message, Status: status, Kind: pipeline.KindHTTP}
}

// begin counts the call, runs its hook and returns any injected failure.
func (b *Backend) begin(ctx context.Context, op string) error {
	b.mu.Lock()
	b.calls[op]++
	hook := b.hooks[op]
	err := b.failures[op]
	b.mu.Unlock()

	if hook != nil {
		hook()
	}
	if err := ctx.Err(); err != nil {
		return &pipeline.APIError{Message: pipeline.MsgNoResponse, Status: http.StatusServiceUnavailable, Kind: pipeline.KindTransport}
	}
	return b.finish(ctx, err)
}

// finish applies the 401 policy the way the pipeline does.
func (b *Backend) finish(ctx context.Context, err error) error {
	if err != nil && b.policy != nil && pipeline.IsUnauthorized(err) {
		b.policy.Handle(ctx)
	}
	return err
}

// caller resolves the bearer token to an account.
func (b *Backend) caller(ctx context.Context) (*account, error) {
	token, ok, err := b.tokens.Get(ctx)
	if err != nil {
		return nil, &pipeline.APIError{Message: err.Error(), Status: http.StatusInternalServerError, Kind: pipeline.KindConfig}
	}
	if !ok {
		return nil, b.finish(ctx, Unauthorized("Authentication required"))
	}

	b.mu.Lock()
	email, found := b.sessions[token]
	acct := b.accounts[email]
	b.mu.Unlock()

	if !found || acct == nil {
		return nil, b.finish(ctx, Unauthorized("Invalid or expired token"))
	}
	return acct, nil
}

func (b *Backend) issue(email string) string {
	b.nextToken++
	token := fmt.Sprintf("t%d", b.nextToken)
	b.sessions[token] = email
	return token
}

func (b *Backend) Login(ctx context.Context, email, password string) (api.AuthResponse, error) {
	if err := b.begin(ctx, OpLogin); err != nil {
		return api.AuthResponse{}, err
	}
	b.mu.Lock()
	acct, ok := b.accounts[users.NormaliseEmail(email)]
	if !ok || acct.password != password {
		b.mu.Unlock()
		return api.AuthResponse{}, b.finish(ctx, httpErr(http.StatusUnauthorized, "Invalid email or password"))
	}
	resp := api.AuthResponse{Token: b.issue(acct.user.Email), User: acct.user}
	b.mu.Unlock()
	return resp, nil
}

func (b *Backend) Register(ctx context.Context, req api.RegisterRequest) (api.AuthResponse, error) {
	if err := b.begin(ctx, OpRegister); err != nil {
		return api.AuthResponse{}, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	email := users.NormaliseEmail(req.Email)
	if _, exists := b.accounts[email]; exists {
		return api.AuthResponse{}, httpErr(http.StatusConflict, "An account with this email already exists")
	}
	user := api.User{ID: uuid.NewString(), Email: email, Name: req.Name, Phone: req.Phone}
	b.accounts[email] = &account{user: user, password: req.Password}
	return api.AuthResponse{Token: b.issue(email), User: user}, nil
}

func (b *Backend) CurrentUser(ctx context.Context) (api.User, error) {
	if err := b.begin(ctx, OpCurrentUser); err != nil {
		return api.User{}, err
	}
	acct, err := b.caller(ctx)
	if err != nil {
		return api.User{}, err
	}
	return acct.user, nil
}

// Logout revokes the caller's token. Without one it still succeeds.
func (b *Backend) Logout(ctx context.Context) error {
	if err := b.begin(ctx, OpLogout); err != nil {
		return err
	}
	token, ok, _ := b.tokens.Get(ctx)
	if ok {
		b.mu.Lock()
		delete(b.sessions, token)
		b.mu.Unlock()
	}
	return nil
}

func (b *Backend) UpdateProfile(ctx context.Context, update api.ProfileUpdate) (api.User, error) {
	if err := b.begin(ctx, OpUpdateProfile); err != nil {
		return api.User{}, err
	}
	acct, err := b.caller(ctx)
	if err != nil {
		return api.User{}, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if update.Name != "" {
		acct.user.Name = update.Name
	}
	if update.Phone != "" {
		acct.user.Phone = update.Phone
	}
	return acct.user, nil
}

func (b *Backend) ListCourses(ctx context.Context, filters courses.Filters) ([]courses.Course, error) {
	if err := b.begin(ctx, OpListCourses); err != nil {
		return nil, err
	}
	return b.catalogue.List(filters)
}

func (b *Backend) GetCourse(ctx context.Context, id string) (courses.Course, error) {
	if err := b.begin(ctx, OpGetCourse); err != nil {
		return courses.Course{}, err
	}
	c, err := b.catalogue.Get(id)
	if err != nil {
		return courses.Course{}, httpErr(http.StatusNotFound, "Course not found")
	}
	return *c, nil
}

func (b *Backend) Enroll(ctx context.Context, courseID string) (courses.Enrollment, error) {
	if err := b.begin(ctx, OpEnroll); err != nil {
		return courses.Enrollment{}, err
	}
	acct, err := b.caller(ctx)
	if err != nil {
		return courses.Enrollment{}, err
	}
	e, err := b.catalogue.Enroll(acct.user.ID, courseID, b.now())
	switch {
	case campuserrors.Is(err, campuserrors.ErrCourseNotFound):
		return courses.Enrollment{}, httpErr(http.StatusNotFound, "Course not found")
	case campuserrors.Is(err, campuserrors.ErrAlreadyEnrolled):
		return courses.Enrollment{}, httpErr(http.StatusConflict, "Already enrolled in this course")
	case err != nil:
		return courses.Enrollment{}, httpErr(http.StatusInternalServerError, err.Error())
	}
	return *e, nil
}

func (b *Backend) EnrolledCourses(ctx context.Context) ([]courses.Enrollment, error) {
	if err := b.begin(ctx, OpEnrolledCourses); err != nil {
		return nil, err
	}
	acct, err := b.caller(ctx)
	if err != nil {
		return nil, err
	}
	return b.catalogue.Enrollments(acct.user.ID)
}

func (b *Backend) UpdateProgress(ctx context.Context, courseID string, progress int) (courses.Enrollment, error) {
	if err := b.begin(ctx, OpUpdateProgress); err != nil {
		return courses.Enrollment{}, err
	}
	acct, err := b.caller(ctx)
	if err != nil {
		return courses.Enrollment{}, err
	}
	e, err := b.catalogue.UpdateProgress(acct.user.ID, courseID, progress, b.now())
	if err != nil {
		return courses.Enrollment{}, httpErr(http.StatusNotFound, "Not enrolled in this course")
	}
	return *e, nil
}

func (b *Backend) ListUniversities(ctx context.Context) ([]courses.University, error) {
	if err := b.begin(ctx, OpListUniversities); err != nil {
		return nil, err
	}
	all, err := b.catalogue.List(courses.Filters{})
	if err != nil {
		return nil, err
	}
	return courses.Universities(all), nil
}

func (b *Backend) Subscribe(ctx context.Context, sub api.NewsletterSubscription) (newsletter.Subscription, error) {
	if err := b.begin(ctx, OpSubscribe); err != nil {
		return newsletter.Subscription{}, err
	}
	s, err := b.newsletter.Subscribe(sub.Email, sub.Preferences, b.now())
	if err != nil {
		return newsletter.Subscription{}, err
	}
	return *s, nil
}

func (b *Backend) Unsubscribe(ctx context.Context, email string) error {
	if err := b.begin(ctx, OpUnsubscribe); err != nil {
		return err
	}
	if err := b.newsletter.Unsubscribe(email); err != nil {
		return httpErr(http.StatusNotFound, "Subscription not found")
	}
	return nil
}

func (b *Backend) UpdatePreferences(ctx context.Context, email string, prefs newsletter.Preferences) (newsletter.Subscription, error) {
	if err := b.begin(ctx, OpUpdatePreferences); err != nil {
		return newsletter.Subscription{}, err
	}
	s, err := b.newsletter.UpdatePreferences(email, prefs)
	if err != nil {
		return newsletter.Subscription{}, httpErr(http.StatusNotFound, "Subscription not found")
	}
	return *s, nil
}
