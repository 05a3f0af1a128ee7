package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/jrsteele09/go-campus/api"
	campuserrors "github.com/jrsteele09/go-campus/internal/errors"
	"github.com/jrsteele09/go-campus/validation"
	"github.com/rs/zerolog/log"
)

const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, status int, data any, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(api.Envelope[any]{Data: data, Message: message, Status: status}); err != nil {
		log.Err(err).Msg("failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, nil, message)
}

// writeServiceError maps domain errors onto status codes and user facing messages.
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *validation.Error
	switch {
	case errors.As(err, &verr):
		writeError(w, http.StatusBadRequest, verr.Message)
	case errors.Is(err, campuserrors.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "Invalid email or password")
	case errors.Is(err, campuserrors.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, "Invalid or expired token")
	case errors.Is(err, campuserrors.ErrUserExists):
		writeError(w, http.StatusConflict, "An account with this email already exists")
	case errors.Is(err, campuserrors.ErrCourseNotFound):
		writeError(w, http.StatusNotFound, "Course not found")
	case errors.Is(err, campuserrors.ErrAlreadyEnrolled):
		writeError(w, http.StatusConflict, "Already enrolled in this course")
	case errors.Is(err, campuserrors.ErrNotEnrolled):
		writeError(w, http.StatusNotFound, "Not enrolled in this course")
	case errors.Is(err, campuserrors.ErrUserNotFound), errors.Is(err, campuserrors.ErrNotFound):
		writeError(w, http.StatusNotFound, "Not found")
	default:
		s.logger.Err(err).Str("path", r.URL.Path).Msg("request failed")
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// decodeBody reads a JSON request body into dst. An empty body leaves dst untouched.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if r.Body == nil || r.ContentLength == 0 {
		return true
	}
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(dst)
	if err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}
