package fakecourserepo

import (
	"sort"
	"sync"
	"time"

	"github.com/jrsteele09/go-campus/courses"
	campuserrors "github.com/jrsteele09/go-campus/internal/errors"
)

var _ courses.Repo = (*FakeCourseRepo)(nil)

type FakeCourseRepo struct {
	courses     map[string]courses.Course
	order       []string
	enrollments map[string]map[string]*courses.Enrollment // userID -> courseID -> enrollment
	lock        sync.RWMutex
}

// NewFakeCourseRepo returns an empty repo. Use Seed to load the demo catalogue.
func NewFakeCourseRepo() *FakeCourseRepo {
	return &FakeCourseRepo{
		courses:     make(map[string]courses.Course),
		enrollments: make(map[string]map[string]*courses.Enrollment),
	}
}

func (r *FakeCourseRepo) Upsert(course courses.Course) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if _, ok := r.courses[course.ID]; !ok {
		r.order = append(r.order, course.ID)
	}
	r.courses[course.ID] = course
	return nil
}

func (r *FakeCourseRepo) List(filters courses.Filters) ([]courses.Course, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	all := make([]courses.Course, 0, len(r.order))
	for _, id := range r.order {
		all = append(all, r.courses[id])
	}
	return filters.Apply(all), nil
}

func (r *FakeCourseRepo) Get(id string) (*courses.Course, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	c, ok := r.courses[id]
	if !ok {
		return nil, campuserrors.ErrCourseNotFound
	}
	return &c, nil
}

func (r *FakeCourseRepo) Enroll(userID, courseID string, at time.Time) (*courses.Enrollment, error) {
	r.lock.Lock()
	defer r.lock.Unlock()

	c, ok := r.courses[courseID]
	if !ok {
		return nil, campuserrors.ErrCourseNotFound
	}
	if _, ok := r.enrollments[userID]; !ok {
		r.enrollments[userID] = make(map[string]*courses.Enrollment)
	}
	if _, ok := r.enrollments[userID][courseID]; ok {
		return nil, campuserrors.ErrAlreadyEnrolled
	}

	c.EnrollmentCount++
	r.courses[courseID] = c

	e := &courses.Enrollment{
		CourseID:     courseID,
		UserID:       userID,
		EnrolledAt:   at,
		LastAccessed: at,
	}
	r.enrollments[userID][courseID] = e
	out := *e
	out.Course = c
	return &out, nil
}

func (r *FakeCourseRepo) Enrollments(userID string) ([]courses.Enrollment, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	out := make([]courses.Enrollment, 0, len(r.enrollments[userID]))
	for courseID, e := range r.enrollments[userID] {
		item := *e
		item.Course = r.courses[courseID]
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].LastAccessed.After(out[j].LastAccessed)
	})
	return out, nil
}

func (r *FakeCourseRepo) UpdateProgress(userID, courseID string, progress int, at time.Time) (*courses.Enrollment, error) {
	r.lock.Lock()
	defer r.lock.Unlock()

	e, ok := r.enrollments[userID][courseID]
	if !ok {
		return nil, campuserrors.ErrNotEnrolled
	}
	e.Progress = courses.ClampProgress(progress)
	e.LastAccessed = at
	out := *e
	out.Course = r.courses[courseID]
	return &out, nil
}
