package auth_test

import (
	"testing"
	"time"

	"github.com/jrsteele09/go-campus/auth"
	campuserrors "github.com/jrsteele09/go-campus/internal/errors"
	"github.com/jrsteele09/go-campus/token"
	"github.com/jrsteele09/go-campus/users"
	fakeuserrepo "github.com/jrsteele09/go-campus/users/repofake"
	"github.com/jrsteele09/go-campus/validation"
	"github.com/stretchr/testify/require"
)

const (
	secretStr        = "1234"
	issuer           = "com.testissuer"
	testUserEmail    = "john.doe@example.com"
	testUserPassword = "password123"
)

// testFixture holds all test dependencies
type testFixture struct {
	userRepo     users.UserRepo
	tokenCreator *token.Manager
	service      *auth.AuthService
	now          time.Time
}

// setupTestFixture creates a new test fixture with one registered student
func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()

	f := &testFixture{
		userRepo: fakeuserrepo.NewFakeUserRepo(),
		now:      time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
	nowFunc := func() time.Time { return f.now }
	f.tokenCreator = token.New(
		token.NewHMACSigner(secretStr),
		token.WithIssuer(issuer),
		token.WithTokenExpiry(time.Hour),
		token.WithNowFunc(nowFunc),
	)

	service, err := auth.NewAuthService(f.userRepo, f.tokenCreator, auth.WithNowTime(nowFunc))
	require.NoError(t, err)
	f.service = service

	created, err := service.EnsureUser(testUserEmail, "John Doe", testUserPassword)
	require.NoError(t, err)
	require.True(t, created)
	return f
}

func TestNewAuthService_RequiresDependencies(t *testing.T) {
	_, err := auth.NewAuthService(nil, token.New(token.NewHMACSigner(secretStr)))
	require.Error(t, err)
	_, err = auth.NewAuthService(fakeuserrepo.NewFakeUserRepo(), nil)
	require.Error(t, err)
}

func TestLogin(t *testing.T) {
	f := setupTestFixture(t)

	t.Run("valid credentials", func(t *testing.T) {
		session, err := f.service.Login("John.Doe@example.com", testUserPassword)
		require.NoError(t, err)
		require.Equal(t, testUserEmail, session.User.Email)
		require.NotEmpty(t, session.Token)
		require.Equal(t, f.now.Add(time.Hour), session.ExpiresAt)

		user, err := f.userRepo.GetByEmail(testUserEmail)
		require.NoError(t, err)
		require.True(t, user.LoggedIn)
		require.Equal(t, f.now, user.LastLogin)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := f.service.Login(testUserEmail, "nope12345")
		require.ErrorIs(t, err, campuserrors.ErrInvalidCredentials)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := f.service.Login("ghost@example.com", testUserPassword)
		require.ErrorIs(t, err, campuserrors.ErrInvalidCredentials)
	})

	t.Run("missing password", func(t *testing.T) {
		_, err := f.service.Login(testUserEmail, "")
		require.ErrorIs(t, err, campuserrors.ErrValidation)
	})
}

func TestRegister(t *testing.T) {
	f := setupTestFixture(t)

	session, err := f.service.Register(auth.Registration{
		Email: "ada@campus.edu", Password: "analytic1", Name: " Ada ", Phone: "+447911123456",
	})
	require.NoError(t, err)
	require.Equal(t, "Ada", session.User.Name)
	require.NotEmpty(t, session.User.ID)

	user, err := f.service.Authenticate(session.Token)
	require.NoError(t, err)
	require.Equal(t, "ada@campus.edu", user.Email)

	tests := []struct {
		name string
		reg  auth.Registration
		want error
		msg  string
	}{
		{"duplicate", auth.Registration{Email: testUserEmail, Password: "password456"}, campuserrors.ErrUserExists, ""},
		{"weak password", auth.Registration{Email: "b@campus.edu", Password: "short"}, campuserrors.ErrValidation, validation.MsgWeakPassword},
		{"bad email", auth.Registration{Email: "b@campus", Password: "password456"}, campuserrors.ErrValidation, validation.MsgInvalidEmail},
		{"bad phone", auth.Registration{Email: "b@campus.edu", Password: "password456", Phone: "abc"}, campuserrors.ErrValidation, validation.MsgInvalidPhone},
		{"weak password before bad email", auth.Registration{Email: "b@campus", Password: "short"}, campuserrors.ErrValidation, validation.MsgWeakPassword},
		{"missing", auth.Registration{}, campuserrors.ErrValidation, validation.MsgAllFieldsRequired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.service.Register(tt.reg)
			require.ErrorIs(t, err, tt.want)
			if tt.msg != "" {
				var verr *validation.Error
				require.ErrorAs(t, err, &verr)
				require.Equal(t, tt.msg, verr.Message)
			}
		})
	}
}

func TestAuthenticateAndLogout(t *testing.T) {
	f := setupTestFixture(t)
	session, err := f.service.Login(testUserEmail, testUserPassword)
	require.NoError(t, err)

	user, err := f.service.Authenticate(session.Token)
	require.NoError(t, err)
	require.Equal(t, session.User.ID, user.ID)

	require.NoError(t, f.service.Logout(session.Token))
	_, err = f.service.Authenticate(session.Token)
	require.ErrorIs(t, err, campuserrors.ErrUnauthorized)

	stored, err := f.userRepo.GetByEmail(testUserEmail)
	require.NoError(t, err)
	require.False(t, stored.LoggedIn)

	// Logging out again is harmless
	require.NoError(t, f.service.Logout(session.Token))
}

func TestAuthenticate_ExpiredToken(t *testing.T) {
	f := setupTestFixture(t)
	session, err := f.service.Login(testUserEmail, testUserPassword)
	require.NoError(t, err)

	f.now = f.now.Add(2 * time.Hour)
	_, err = f.service.Authenticate(session.Token)
	require.ErrorIs(t, err, campuserrors.ErrUnauthorized)

	require.NoError(t, f.service.Logout(session.Token))
}

func TestAuthenticate_DeletedAccount(t *testing.T) {
	f := setupTestFixture(t)
	session, err := f.service.Login(testUserEmail, testUserPassword)
	require.NoError(t, err)
	require.NoError(t, f.userRepo.Delete(testUserEmail))

	_, err = f.service.Authenticate(session.Token)
	require.ErrorIs(t, err, campuserrors.ErrUnauthorized)
}

func TestUpdateProfile(t *testing.T) {
	f := setupTestFixture(t)
	user, err := f.userRepo.GetByEmail(testUserEmail)
	require.NoError(t, err)

	updated, err := f.service.UpdateProfile(user.ID, auth.ProfileChanges{Name: "Johnny"})
	require.NoError(t, err)
	require.Equal(t, "Johnny", updated.Name)

	_, err = f.service.UpdateProfile(user.ID, auth.ProfileChanges{Phone: "abc"})
	require.ErrorIs(t, err, campuserrors.ErrValidation)

	_, err = f.service.UpdateProfile("missing", auth.ProfileChanges{Name: "x"})
	require.ErrorIs(t, err, campuserrors.ErrUserNotFound)
}

func TestEnsureUser_Idempotent(t *testing.T) {
	f := setupTestFixture(t)
	created, err := f.service.EnsureUser(testUserEmail, "Other", "password999")
	require.NoError(t, err)
	require.False(t, created)

	_, err = f.service.Login(testUserEmail, testUserPassword)
	require.NoError(t, err)
}
