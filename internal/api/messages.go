package api

import "time"

// Verification statuses carried in VerifySessionResponse.Status.
const (
	StatusValid    = "valid"
	StatusNotFound = "not_found"
	StatusExpired  = "expired"
)

type Permission struct {
	Site       string `json:"site"`
	Permission string `json:"permission"`
}

type User struct {
	ID          int64        `json:"id"`
	Username    string       `json:"username"`
	Email       *string      `json:"email,omitempty"`
	Permissions []Permission `json:"permissions"`
}

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

type Session struct {
	User         User       `json:"user"`
	SessionToken string     `json:"session_token"`
	ExpiryDate   time.Time  `json:"expiry_date"`
	CreatedAt    time.Time  `json:"created_at"`
	LastUsedAt   *time.Time `json:"last_used_at,omitempty"`
	Track        Track      `json:"track"`
}

// SessionInfo describes a stored session without its owner.
type SessionInfo struct {
	SessionToken string     `json:"session_token"`
	ExpiryDate   time.Time  `json:"expiry_date"`
	CreatedAt    time.Time  `json:"created_at"`
	LastUsedAt   *time.Time `json:"last_used_at,omitempty"`
	Expired      bool       `json:"expired"`
	Track        Track      `json:"track"`
}

type Empty struct{}

type CreateSessionRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Track    Track  `json:"track"`
}

type SessionResponse struct {
	Session Session `json:"session"`
}

type SessionTokenRequest struct {
	SessionToken string `json:"session_token"`
}

type VerifySessionResponse struct {
	Status  string   `json:"status"`
	Session *Session `json:"session,omitempty"`
}

type CreateUserRequest struct {
	Username string  `json:"username"`
	Password string  `json:"password"`
	Email    *string `json:"email,omitempty"`
}

type UserResponse struct {
	User User `json:"user"`
}

type UsernameRequest struct {
	Username string `json:"username"`
}

type ListUsersResponse struct {
	Users []User `json:"users"`
}

type PermissionRequest struct {
	Username   string `json:"username"`
	Site       string `json:"site"`
	Permission string `json:"permission"`
}

type HasPermissionResponse struct {
	Granted bool `json:"granted"`
}

type ListSessionsResponse struct {
	Sessions []SessionInfo `json:"sessions"`
}

type SweepSessionsResponse struct {
	Deleted int64 `json:"deleted"`
}

type ExportDirectoryResponse struct {
	Bucket string `json:"bucket"`
	Key    string `json:"key"`
	Users  int    `json:"users"`
}
