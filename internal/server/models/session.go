package models

import "time"

// SessionLifetime is the absolute validity of a session from its creation.
const SessionLifetime = 7 * 24 * time.Hour

// Track is the client context captured when a session is created.
type Track struct {
	Device           *string `json:"device,omitempty"`
	UserAgent        *string `json:"user_agent,omitempty"`
	IPAddress        *string `json:"ip_address,omitempty"`
	Location         *string `json:"location,omitempty"`
	OS               *string `json:"os,omitempty"`
	Browser          *string `json:"browser,omitempty"`
	ScreenResolution *string `json:"screen_resolution,omitempty"`
	Timezone         *string `json:"timezone,omitempty"`
}

// SessionRecord is a sessions row.
type SessionRecord struct {
	ID         int64
	UserID     int64
	Token      string
	ExpiryDate time.Time
	CreatedAt  time.Time
	LastUsedAt *time.Time
	Track      Track
}

// Expired reports whether the session is past its expiry at now.
func (s *SessionRecord) Expired(now time.Time) bool {
	return s.ExpiryDate.Before(now)
}

// Session is a session row composed with its hydrated owner.
type Session struct {
	User       User       `json:"user"`
	Token      string     `json:"session_token"`
	ExpiryDate time.Time  `json:"expiry_date"`
	CreatedAt  time.Time  `json:"created_at"`
	LastUsedAt *time.Time `json:"last_used_at,omitempty"`
	Track      Track      `json:"track"`
}

type VerifyStatus int

const (
	SessionValid VerifyStatus = iota
	SessionNotFound
	SessionExpired
)

func (s VerifyStatus) String() string {
	switch s {
	case SessionValid:
		return "valid"
	case SessionNotFound:
		return "not_found"
	case SessionExpired:
		return "expired"
	}
	return "unknown"
}

// VerifyResult is the outcome of a session check. Session is set only when
// Status is SessionValid.
type VerifyResult struct {
	Status  VerifyStatus
	Session *Session
}
