package httpapi

import (
	"github.com/dmitrijs2005/enigma/internal/api"
	"github.com/dmitrijs2005/enigma/internal/server/models"
)

func toAPISession(s *models.Session) api.Session {
	perms := make([]api.Permission, 0, len(s.User.Permissions))
	for _, p := range s.User.Permissions {
		perms = append(perms, api.Permission{Site: p.Site, Permission: p.Permission})
	}

	t := s.Track
	return api.Session{
		User:         api.User{ID: s.User.ID, Username: s.User.Username, Email: s.User.Email, Permissions: perms},
		SessionToken: s.Token,
		ExpiryDate:   s.ExpiryDate,
		CreatedAt:    s.CreatedAt,
		LastUsedAt:   s.LastUsedAt,
		Track: api.Track{
			Device: t.Device, UserAgent: t.UserAgent, IPAddress: t.IPAddress, Location: t.Location,
			OS: t.OS, Browser: t.Browser, ScreenResolution: t.ScreenResolution, Timezone: t.Timezone,
		},
	}
}

func fromAPITrack(t api.Track) models.Track {
	return models.Track{
		Device: t.Device, UserAgent: t.UserAgent, IPAddress: t.IPAddress, Location: t.Location,
		OS: t.OS, Browser: t.Browser, ScreenResolution: t.ScreenResolution, Timezone: t.Timezone,
	}
}
