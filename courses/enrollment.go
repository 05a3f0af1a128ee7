package courses

import "time"

// Enrollment ties a student to a course and records how far they got.
type Enrollment struct {
	CourseID     string    `json:"courseId"`
	UserID       string    `json:"userId"`
	Course       Course    `json:"course"`
	Progress     int       `json:"progress"` // 0..100
	EnrolledAt   time.Time `json:"enrolledAt"`
	LastAccessed time.Time `json:"lastAccessed"`
}

func (e Enrollment) Completed() bool {
	return e.Progress >= 100
}

func (e Enrollment) InProgress() bool {
	return e.Progress > 0 && e.Progress < 100
}

// ClampProgress keeps a progress value inside 0..100.
func ClampProgress(p int) int {
	switch {
	case p < 0:
		return 0
	case p > 100:
		return 100
	}
	return p
}

// DashboardStats summarise a student's enrollments.
type DashboardStats struct {
	CoursesInProgress  int `json:"coursesInProgress"`
	CoursesCompleted   int `json:"coursesCompleted"`
	CertificatesEarned int `json:"certificatesEarned"`
}

// Stats counts in-progress and completed enrollments. Every completed course earns a certificate.
func Stats(enrollments []Enrollment) DashboardStats {
	var s DashboardStats
	for _, e := range enrollments {
		switch {
		case e.Completed():
			s.CoursesCompleted++
			s.CertificatesEarned++
		case e.InProgress():
			s.CoursesInProgress++
		}
	}
	return s
}
