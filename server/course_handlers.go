package server

import (
	"net/http"

	"github.com/jrsteele09/go-campus/api"
	"github.com/jrsteele09/go-campus/courses"
)

func (s *Server) ListCoursesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filters, err := courses.ParseFilters(r.URL.Query())
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		list, err := s.repos.Courses.List(filters)
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, list, "")
	}
}

func (s *Server) GetCourseHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		course, err := s.repos.Courses.Get(r.PathValue("id"))
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, course, "")
	}
}

func (s *Server) EnrollHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		enrollment, err := s.repos.Courses.Enroll(currentUser(r).ID, r.PathValue("id"), s.nowTime())
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, enrollment, "Enrolled successfully")
	}
}

func (s *Server) EnrolledCoursesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		enrollments, err := s.repos.Courses.Enrollments(currentUser(r).ID)
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		if enrollments == nil {
			enrollments = []courses.Enrollment{}
		}
		writeJSON(w, http.StatusOK, enrollments, "")
	}
}

func (s *Server) UpdateProgressHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req api.ProgressUpdate
		if !decodeBody(w, r, &req) {
			return
		}
		enrollment, err := s.repos.Courses.UpdateProgress(currentUser(r).ID, r.PathValue("id"), req.Progress, s.nowTime())
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, enrollment, "Progress updated")
	}
}

func (s *Server) ListUniversitiesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		all, err := s.repos.Courses.List(courses.Filters{})
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		universities := courses.Universities(all)
		if universities == nil {
			universities = []courses.University{}
		}
		writeJSON(w, http.StatusOK, universities, "")
	}
}
