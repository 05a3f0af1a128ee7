package server

import (
	"net/http"

	"github.com/jrsteele09/go-campus/api"
	"github.com/jrsteele09/go-campus/auth"
	"github.com/jrsteele09/go-campus/users"
)

func toAPIUser(u *users.User) api.User {
	return api.User{ID: u.ID, Email: u.Email, Name: u.Name, Phone: u.Phone}
}

func (s *Server) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "app": s.config.GetAppName()}, "")
	}
}

func (s *Server) NotFoundHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "Route not found")
	}
}

// LoginHandler exchanges email and password for a bearer token
func (s *Server) LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req api.LoginRequest
		if !decodeBody(w, r, &req) {
			return
		}
		session, err := s.auth.Login(req.Email, req.Password)
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, api.AuthResponse{Token: session.Token, User: toAPIUser(session.User)}, "Login successful")
	}
}

func (s *Server) RegisterHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req api.RegisterRequest
		if !decodeBody(w, r, &req) {
			return
		}
		session, err := s.auth.Register(auth.Registration{
			Email:    req.Email,
			Password: req.Password,
			Name:     req.Name,
			Phone:    req.Phone,
		})
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, api.AuthResponse{Token: session.Token, User: toAPIUser(session.User)}, "Registration successful")
	}
}

func (s *Server) CurrentUserHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, toAPIUser(currentUser(r)), "")
	}
}

// LogoutHandler revokes the presented token
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.auth.Logout(currentToken(r)); err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, nil, "Logged out")
	}
}

func (s *Server) UpdateProfileHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req api.ProfileUpdate
		if !decodeBody(w, r, &req) {
			return
		}
		user, err := s.auth.UpdateProfile(currentUser(r).ID, auth.ProfileChanges{Name: req.Name, Phone: req.Phone})
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, toAPIUser(user), "Profile updated")
	}
}
