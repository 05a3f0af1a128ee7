package api

import "net/url"

// Paths relative to the API base URL. The server registers the same constants.
const (
	PathLogin              = "/auth/login"
	PathRegister           = "/auth/register"
	PathCurrentUser        = "/auth/me"
	PathLogout             = "/auth/logout"
	PathProfile            = "/users/me"
	PathCourses            = "/courses"
	PathEnrolledCourses    = "/courses/enrolled"
	PathUniversities       = "/universities"
	PathSubscribe          = "/newsletter/subscribe"
	PathUnsubscribe        = "/newsletter/unsubscribe"
	PathNewsletterSettings = "/newsletter/preferences"
)

func CoursePath(id string) string {
	return PathCourses + "/" + url.PathEscape(id)
}

func EnrollPath(id string) string {
	return CoursePath(id) + "/enroll"
}

func ProgressPath(id string) string {
	return CoursePath(id) + "/progress"
}
