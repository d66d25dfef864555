// Package models holds the server-side domain records.
package models

import "time"

// User is a hydrated identity. Password material never leaves the
// credential store, so it is not part of this type.
type User struct {
	ID          int64        `json:"id"`
	Username    string       `json:"username"`
	Email       *string      `json:"email,omitempty"`
	Permissions []Permission `json:"permissions"`
}

// Permission is a (site, permission) grant owned by a user.
type Permission struct {
	Site       string `json:"site"`
	Permission string `json:"permission"`
}

func (p Permission) String() string {
	return p.Site + ":" + p.Permission
}

// HasPermission reports whether the hydrated grant set contains (site, perm).
func (u *User) HasPermission(site, perm string) bool {
	for _, p := range u.Permissions {
		if p.Site == site && p.Permission == perm {
			return true
		}
	}
	return false
}

// Credential is the stored user row including password material.
type Credential struct {
	ID             int64
	Username       string
	Email          *string
	PasswordHash   string
	PasswordSalt   string
	PasswordMethod string
	CreatedAt      time.Time
}
