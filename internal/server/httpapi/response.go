package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/dmitrijs2005/enigma/internal/api"
)

// Response types, carried in the "type" field.
const (
	TypeSessionCreated          = "SessionCreated"
	TypeSessionVerified         = "SessionVerified"
	TypeSessionDeleted          = "SessionDeleted"
	TypeSessionNotFound         = "SessionNotFound"
	TypeSessionExpired          = "SessionExpired"
	TypeUserOrPasswordIncorrect = "UserOrPasswordIncorrect"
	TypeError                   = "Error"
)

// Response is the tagged body of every session endpoint. Session fields are
// inlined next to "type" when present.
type Response struct {
	Type string `json:"type"`
	*api.Session
	Message string `json:"message,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeTagged(w http.ResponseWriter, typ string, session *api.Session) {
	writeJSON(w, http.StatusOK, Response{Type: typ, Session: session})
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, Response{Type: TypeError, Message: message})
}
