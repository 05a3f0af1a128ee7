package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"

	"github.com/jrsteele09/go-campus/courses"
	"github.com/jrsteele09/go-campus/newsletter"
	"github.com/jrsteele09/go-campus/pipeline"
	"github.com/pkg/errors"
)

var _ Backend = (*HTTPClient)(nil)

// HTTPClient talks to the campus API through the request pipeline.
type HTTPClient struct {
	client *pipeline.Client
}

func NewHTTPClient(client *pipeline.Client) *HTTPClient {
	return &HTTPClient{client: client}
}

// call sends the request and decodes the envelope's data field into out (skipped when out is nil).
func (c *HTTPClient) call(ctx context.Context, method, path string, query url.Values, body, out any) error {
	resp, err := c.client.Send(ctx, method, path, query, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	var envelope Envelope[json.RawMessage]
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return pipeline.BadResponseError(errors.Wrapf(err, "[HTTPClient.call] decode %s %s", method, path))
	}
	if len(envelope.Data) == 0 || bytes.Equal(envelope.Data, []byte("null")) {
		return pipeline.BadResponseError(errors.Errorf("[HTTPClient.call] %s %s: response has no data", method, path))
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return pipeline.BadResponseError(errors.Wrapf(err, "[HTTPClient.call] decode data of %s %s", method, path))
	}
	return nil
}

func (c *HTTPClient) Login(ctx context.Context, email, password string) (AuthResponse, error) {
	var out AuthResponse
	err := c.call(ctx, http.MethodPost, PathLogin, nil, LoginRequest{Email: email, Password: password}, &out)
	return out, err
}

func (c *HTTPClient) Register(ctx context.Context, req RegisterRequest) (AuthResponse, error) {
	var out AuthResponse
	err := c.call(ctx, http.MethodPost, PathRegister, nil, req, &out)
	return out, err
}

func (c *HTTPClient) CurrentUser(ctx context.Context) (User, error) {
	var out User
	err := c.call(ctx, http.MethodGet, PathCurrentUser, nil, nil, &out)
	return out, err
}

func (c *HTTPClient) Logout(ctx context.Context) error {
	return c.call(ctx, http.MethodPost, PathLogout, nil, nil, nil)
}

func (c *HTTPClient) UpdateProfile(ctx context.Context, update ProfileUpdate) (User, error) {
	var out User
	err := c.call(ctx, http.MethodPut, PathProfile, nil, update, &out)
	return out, err
}

func (c *HTTPClient) ListCourses(ctx context.Context, filters courses.Filters) ([]courses.Course, error) {
	var out []courses.Course
	if err := c.call(ctx, http.MethodGet, PathCourses, filters.Values(), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) GetCourse(ctx context.Context, id string) (courses.Course, error) {
	var out courses.Course
	err := c.call(ctx, http.MethodGet, CoursePath(id), nil, nil, &out)
	return out, err
}

func (c *HTTPClient) Enroll(ctx context.Context, courseID string) (courses.Enrollment, error) {
	var out courses.Enrollment
	err := c.call(ctx, http.MethodPost, EnrollPath(courseID), nil, nil, &out)
	return out, err
}

func (c *HTTPClient) EnrolledCourses(ctx context.Context) ([]courses.Enrollment, error) {
	var out []courses.Enrollment
	if err := c.call(ctx, http.MethodGet, PathEnrolledCourses, nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) UpdateProgress(ctx context.Context, courseID string, progress int) (courses.Enrollment, error) {
	var out courses.Enrollment
	err := c.call(ctx, http.MethodPut, ProgressPath(courseID), nil, ProgressUpdate{Progress: progress}, &out)
	return out, err
}

func (c *HTTPClient) ListUniversities(ctx context.Context) ([]courses.University, error) {
	var out []courses.University
	if err := c.call(ctx, http.MethodGet, PathUniversities, nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) Subscribe(ctx context.Context, sub NewsletterSubscription) (newsletter.Subscription, error) {
	var out newsletter.Subscription
	err := c.call(ctx, http.MethodPost, PathSubscribe, nil, sub, &out)
	return out, err
}

func (c *HTTPClient) Unsubscribe(ctx context.Context, email string) error {
	return c.call(ctx, http.MethodPost, PathUnsubscribe, nil, NewsletterSubscription{Email: email}, nil)
}

func (c *HTTPClient) UpdatePreferences(ctx context.Context, email string, prefs newsletter.Preferences) (newsletter.Subscription, error) {
	var out newsletter.Subscription
	err := c.call(ctx, http.MethodPut, PathNewsletterSettings, nil, PreferencesUpdate{Email: email, Preferences: prefs}, &out)
	return out, err
}
