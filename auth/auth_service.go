package auth

import (
	"strings"
	"time"

	campuserrors "github.com/jrsteele09/go-campus/internal/errors"
	"github.com/jrsteele09/go-campus/token"
	"github.com/jrsteele09/go-campus/users"
	"github.com/jrsteele09/go-campus/validation"
	"github.com/pkg/errors"
)

// Registration is what a new student submits.
type Registration struct {
	Email    string
	Password string
	Name     string
	Phone    string
}

// ProfileChanges leaves a field alone when it is empty.
type ProfileChanges struct {
	Name  string
	Phone string
}

// Session is the outcome of a successful login or registration.
type Session struct {
	User      *users.User
	Token     string
	ExpiresAt time.Time
}

// AuthService signs students in and out and resolves bearer tokens back to accounts.
type AuthService struct {
	users        users.UserRepo
	tokenCreator *token.Manager
	nowTime      func() time.Time
}

// AuthServiceOption defines a function type to modify the AuthService instance.
type AuthServiceOption func(*AuthService)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) AuthServiceOption {
	return func(as *AuthService) {
		as.nowTime = nowFunc
	}
}

// NewAuthService initializes a new AuthService with required dependencies.
func NewAuthService(userRepo users.UserRepo, tokenCreator *token.Manager, options ...AuthServiceOption) (*AuthService, error) {
	if userRepo == nil {
		return nil, errors.New("[NewAuthService] Users repo is required")
	}
	if tokenCreator == nil {
		return nil, errors.New("[NewAuthService] tokenCreator is required")
	}

	authService := &AuthService{
		users:        userRepo,
		tokenCreator: tokenCreator,
		nowTime:      time.Now,
	}
	for _, opt := range options {
		opt(authService)
	}
	return authService, nil
}

// Login checks the password and issues a token. Unknown emails and wrong passwords are indistinguishable.
func (as *AuthService) Login(email, password string) (*Session, error) {
	if err := validation.Login(email, password); err != nil {
		return nil, err
	}

	user, err := as.users.GetByEmail(email)
	if err != nil {
		if errors.Is(err, campuserrors.ErrUserNotFound) {
			return nil, campuserrors.ErrInvalidCredentials
		}
		return nil, errors.Wrap(err, "[AuthService.Login] GetByEmail")
	}
	if !user.CheckPassword(password) {
		return nil, campuserrors.ErrInvalidCredentials
	}

	user.LastLogin = as.nowTime()
	user.LoggedIn = true
	if err := as.users.Upsert(user); err != nil {
		return nil, errors.Wrap(err, "[AuthService.Login] Upsert")
	}
	return as.issue(user)
}

// Register creates the account and signs it in.
func (as *AuthService) Register(reg Registration) (*Session, error) {
	if strings.TrimSpace(reg.Email) == "" || reg.Password == "" {
		return nil, &validation.Error{Message: validation.MsgAllFieldsRequired}
	}
	if err := validation.Password(reg.Password); err != nil {
		return nil, err
	}
	if err := validation.Email(reg.Email); err != nil {
		return nil, err
	}
	if err := validation.Phone(reg.Phone); err != nil {
		return nil, err
	}

	if _, err := as.users.GetByEmail(reg.Email); err == nil {
		return nil, campuserrors.ErrUserExists
	} else if !errors.Is(err, campuserrors.ErrUserNotFound) {
		return nil, errors.Wrap(err, "[AuthService.Register] GetByEmail")
	}

	hash, err := users.HashPassword(reg.Password)
	if err != nil {
		return nil, errors.Wrap(err, "[AuthService.Register] HashPassword")
	}
	now := as.nowTime()
	user := &users.User{
		Email:        reg.Email,
		Name:         strings.TrimSpace(reg.Name),
		Phone:        strings.TrimSpace(reg.Phone),
		PasswordHash: hash,
		DateJoined:   now,
		LastLogin:    now,
		LoggedIn:     true,
	}
	if err := as.users.Upsert(user); err != nil {
		return nil, errors.Wrap(err, "[AuthService.Register] Upsert")
	}
	return as.issue(user)
}

func (as *AuthService) issue(user *users.User) (*Session, error) {
	signed, exp, err := as.tokenCreator.Issue(user)
	if err != nil {
		return nil, errors.Wrap(err, "[AuthService.issue] Issue")
	}
	return &Session{User: user, Token: signed, ExpiresAt: exp}, nil
}

// Authenticate resolves a bearer token to its account. Every failure matches ErrUnauthorized.
func (as *AuthService) Authenticate(rawToken string) (*users.User, error) {
	introspection, err := as.tokenCreator.Introspection(rawToken)
	if err != nil || !introspection.Active {
		return nil, errors.Wrap(campuserrors.ErrUnauthorized, reason(err))
	}
	user, err := as.users.GetByID(introspection.Sub)
	if err != nil {
		return nil, errors.Wrap(campuserrors.ErrUnauthorized, "account no longer exists")
	}
	return user, nil
}

func reason(err error) string {
	if err == nil {
		return "inactive token"
	}
	return err.Error()
}

// Logout revokes the token. The account is marked logged out when this was a valid token.
func (as *AuthService) Logout(rawToken string) error {
	user, authErr := as.Authenticate(rawToken)
	if err := as.tokenCreator.RevokeAccessToken(rawToken); err != nil {
		return errors.Wrap(err, "[AuthService.Logout] RevokeAccessToken")
	}
	if authErr == nil {
		if err := as.users.SetLoggedIn(user.Email, false); err != nil {
			return errors.Wrap(err, "[AuthService.Logout] SetLoggedIn")
		}
	}
	return nil
}

// UpdateProfile applies the non-empty changes to the account.
func (as *AuthService) UpdateProfile(userID string, changes ProfileChanges) (*users.User, error) {
	user, err := as.users.GetByID(userID)
	if err != nil {
		return nil, errors.Wrap(err, "[AuthService.UpdateProfile] GetByID")
	}
	if name := strings.TrimSpace(changes.Name); name != "" {
		user.Name = name
	}
	if phone := strings.TrimSpace(changes.Phone); phone != "" {
		if err := validation.Phone(phone); err != nil {
			return nil, err
		}
		user.Phone = phone
	}
	if err := as.users.Upsert(user); err != nil {
		return nil, errors.Wrap(err, "[AuthService.UpdateProfile] Upsert")
	}
	return user, nil
}

// EnsureUser creates the account when it does not exist yet and reports whether it did.
func (as *AuthService) EnsureUser(email, name, password string) (bool, error) {
	if _, err := as.users.GetByEmail(email); err == nil {
		return false, nil
	}
	hash, err := users.HashPassword(password)
	if err != nil {
		return false, errors.Wrap(err, "[AuthService.EnsureUser] HashPassword")
	}
	err = as.users.Upsert(&users.User{
		Email:        email,
		Name:         name,
		PasswordHash: hash,
		DateJoined:   as.nowTime(),
	})
	if err != nil {
		return false, errors.Wrap(err, "[AuthService.EnsureUser] Upsert")
	}
	return true, nil
}

// PruneRevokedTokens drops revocations whose tokens have expired anyway.
func (as *AuthService) PruneRevokedTokens() int {
	return as.tokenCreator.CleanupRevokedTokens()
}
