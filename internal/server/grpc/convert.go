package grpc

import (
	"time"

	"github.com/dmitrijs2005/enigma/internal/api"
	"github.com/dmitrijs2005/enigma/internal/server/models"
)

func toAPIUser(u *models.User) api.User {
	perms := make([]api.Permission, 0, len(u.Permissions))
	for _, p := range u.Permissions {
		perms = append(perms, api.Permission{Site: p.Site, Permission: p.Permission})
	}
	return api.User{ID: u.ID, Username: u.Username, Email: u.Email, Permissions: perms}
}

func toAPITrack(t models.Track) api.Track {
	return api.Track{
		Device:           t.Device,
		UserAgent:        t.UserAgent,
		IPAddress:        t.IPAddress,
		Location:         t.Location,
		OS:               t.OS,
		Browser:          t.Browser,
		ScreenResolution: t.ScreenResolution,
		Timezone:         t.Timezone,
	}
}

func fromAPITrack(t api.Track) models.Track {
	return models.Track{
		Device:           t.Device,
		UserAgent:        t.UserAgent,
		IPAddress:        t.IPAddress,
		Location:         t.Location,
		OS:               t.OS,
		Browser:          t.Browser,
		ScreenResolution: t.ScreenResolution,
		Timezone:         t.Timezone,
	}
}

func toAPISession(s *models.Session) api.Session {
	return api.Session{
		User:         toAPIUser(&s.User),
		SessionToken: s.Token,
		ExpiryDate:   s.ExpiryDate,
		CreatedAt:    s.CreatedAt,
		LastUsedAt:   s.LastUsedAt,
		Track:        toAPITrack(s.Track),
	}
}

func toSessionInfo(r *models.SessionRecord, now time.Time) api.SessionInfo {
	return api.SessionInfo{
		SessionToken: r.Token,
		ExpiryDate:   r.ExpiryDate,
		CreatedAt:    r.CreatedAt,
		LastUsedAt:   r.LastUsedAt,
		Expired:      r.Expired(now),
		Track:        toAPITrack(r.Track),
	}
}

func verifyStatus(s models.VerifyStatus) string {
	switch s {
	case models.SessionValid:
		return api.StatusValid
	case models.SessionExpired:
		return api.StatusExpired
	}
	return api.StatusNotFound
}
