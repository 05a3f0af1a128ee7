package server

import "github.com/jrsteele09/go-campus/api"

// Route path constants, relative to the API prefix.
// The client package owns the shared paths so both sides agree on them.
const (
	// Auth Routes
	RouteAuthLogin    = api.PathLogin
	RouteAuthRegister = api.PathRegister
	RouteAuthMe       = api.PathCurrentUser
	RouteAuthLogout   = api.PathLogout

	// User Routes
	RouteUserProfile = api.PathProfile

	// Course Routes
	RouteCourses         = api.PathCourses
	RouteCoursesEnrolled = api.PathEnrolledCourses
	RouteCourse          = api.PathCourses + "/{id}"
	RouteCourseEnroll    = RouteCourse + "/enroll"
	RouteCourseProgress  = RouteCourse + "/progress"
	RouteUniversities    = api.PathUniversities

	// Newsletter Routes
	RouteNewsletterSubscribe   = api.PathSubscribe
	RouteNewsletterUnsubscribe = api.PathUnsubscribe
	RouteNewsletterPreferences = api.PathNewsletterSettings

	RouteHealth = "/health"
)
