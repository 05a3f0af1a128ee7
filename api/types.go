// Package api is the typed client for the campus REST API.
package api

import (
	"context"

	"github.com/jrsteele09/go-campus/courses"
	"github.com/jrsteele09/go-campus/newsletter"
)

// User is the public view of a student account.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// AuthResponse is returned by login and register.
type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// Envelope wraps every response body.
type Envelope[T any] struct {
	Data    T      `json:"data"`
	Message string `json:"message,omitempty"`
	Status  int    `json:"status"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name,omitempty"`
	Phone    string `json:"phone,omitempty"`
}

// ProfileUpdate leaves fields unchanged when empty.
type ProfileUpdate struct {
	Name  string `json:"name,omitempty"`
	Phone string `json:"phone,omitempty"`
}

type ProgressUpdate struct {
	Progress int `json:"progress"`
}

// NewsletterSubscription subscribes email. Nil preferences mean the server defaults.
type NewsletterSubscription struct {
	Email       string                  `json:"email"`
	Preferences *newsletter.Preferences `json:"preferences,omitempty"`
}

type PreferencesUpdate struct {
	Email       string                 `json:"email"`
	Preferences newsletter.Preferences `json:"preferences"`
}

type AuthAPI interface {
	Login(ctx context.Context, email, password string) (AuthResponse, error)
	Register(ctx context.Context, req RegisterRequest) (AuthResponse, error)
	CurrentUser(ctx context.Context) (User, error)
	Logout(ctx context.Context) error
}

type UserAPI interface {
	UpdateProfile(ctx context.Context, update ProfileUpdate) (User, error)
}

type CourseAPI interface {
	ListCourses(ctx context.Context, filters courses.Filters) ([]courses.Course, error)
	GetCourse(ctx context.Context, id string) (courses.Course, error)
	Enroll(ctx context.Context, courseID string) (courses.Enrollment, error)
	EnrolledCourses(ctx context.Context) ([]courses.Enrollment, error)
	UpdateProgress(ctx context.Context, courseID string, progress int) (courses.Enrollment, error)
	ListUniversities(ctx context.Context) ([]courses.University, error)
}

type NewsletterAPI interface {
	Subscribe(ctx context.Context, sub NewsletterSubscription) (newsletter.Subscription, error)
	Unsubscribe(ctx context.Context, email string) error
	UpdatePreferences(ctx context.Context, email string, prefs newsletter.Preferences) (newsletter.Subscription, error)
}

// Backend is everything the campus server offers.
type Backend interface {
	AuthAPI
	UserAPI
	CourseAPI
	NewsletterAPI
}
