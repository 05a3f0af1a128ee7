package courses

import "time"

// Repo stores the catalogue and enrollments.
type Repo interface {
	List(filters Filters) ([]Course, error)
	Get(id string) (*Course, error)
	Upsert(course Course) error
	Enroll(userID, courseID string, at time.Time) (*Enrollment, error)
	Enrollments(userID string) ([]Enrollment, error)
	UpdateProgress(userID, courseID string, progress int, at time.Time) (*Enrollment, error)
}
