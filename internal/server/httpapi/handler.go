package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/enigma/internal/api"
	"github.com/dmitrijs2005/enigma/internal/common"
	"github.com/dmitrijs2005/enigma/internal/server/models"
)

// createSessionRequest carries the credentials and the optional tracking
// fields at the top level of the body.
type createSessionRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	api.Track
}

type sessionTokenRequest struct {
	SessionToken string `json:"session_token"`
}

func decode(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}

func (s *HTTPServer) createSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	session, err := s.auth.CreateSession(r.Context(), req.Username, req.Password, fromAPITrack(req.Track))
	if err != nil {
		if errors.Is(err, common.ErrInvalidCredential) {
			writeTagged(w, TypeUserOrPasswordIncorrect, nil)
			return
		}
		s.fail(w, r, err)
		return
	}

	out := toAPISession(session)
	writeTagged(w, TypeSessionCreated, &out)
}

func (s *HTTPServer) verifySession(w http.ResponseWriter, r *http.Request) {
	var req sessionTokenRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	res, err := s.auth.VerifySession(r.Context(), req.SessionToken)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	switch res.Status {
	case models.SessionValid:
		out := toAPISession(res.Session)
		writeTagged(w, TypeSessionVerified, &out)
	case models.SessionExpired:
		writeTagged(w, TypeSessionExpired, nil)
	default:
		writeTagged(w, TypeSessionNotFound, nil)
	}
}

func (s *HTTPServer) deleteSession(w http.ResponseWriter, r *http.Request) {
	var req sessionTokenRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	if err := s.auth.DeleteSession(r.Context(), req.SessionToken); err != nil {
		s.fail(w, r, err)
		return
	}
	writeTagged(w, TypeSessionDeleted, nil)
}

func (s *HTTPServer) healthz(w http.ResponseWriter, r *http.Request) {
	if err := s.auth.Ping(r.Context()); err != nil {
		s.logger.Warn(r.Context(), "health check failed", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *HTTPServer) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, common.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, common.ErrResourceExhausted):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	default:
		s.logger.Error(r.Context(), "request failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
