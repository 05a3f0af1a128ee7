package server

import (
	"net/http"

	"github.com/jrsteele09/go-campus/api"
	"github.com/jrsteele09/go-campus/validation"
)

func (s *Server) SubscribeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req api.NewsletterSubscription
		if !decodeBody(w, r, &req) {
			return
		}
		if err := validation.Email(req.Email); err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		sub, err := s.repos.Newsletter.Subscribe(req.Email, req.Preferences, s.nowTime())
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, sub, "Subscribed")
	}
}

func (s *Server) UnsubscribeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req api.NewsletterSubscription
		if !decodeBody(w, r, &req) {
			return
		}
		if err := s.repos.Newsletter.Unsubscribe(req.Email); err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, nil, "Unsubscribed")
	}
}

func (s *Server) UpdatePreferencesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req api.PreferencesUpdate
		if !decodeBody(w, r, &req) {
			return
		}
		sub, err := s.repos.Newsletter.UpdatePreferences(req.Email, req.Preferences)
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, sub, "Preferences updated")
	}
}
