package storage

import (
	"context"
	"time"
)

// SessionStorage defines interface for storing the active identity on client
type SessionStorage interface {
	// SaveSession stores the active session, replacing the previous one
	SaveSession(ctx context.Context, session *Session) error

	// GetSession retrieves the active session
	// Returns ErrSessionNotFound if nobody is logged in
	GetSession(ctx context.Context) (*Session, error)

	// DeleteSession removes the active session (logout)
	DeleteSession(ctx context.Context) error
}

// Session represents the identity that owns the local namespace
type Session struct {
	UserID      string `json:"user_id"`
	AccessToken string `json:"access_token,omitempty"` // пусто для гостя
	ExpiresAt   int64  `json:"expires_at,omitempty"`   // unix секунды, 0 - без срока
	Guest       bool   `json:"guest"`
}

// Expired reports whether the access token is past its expiry at now.
func (s *Session) Expired(now time.Time) bool {
	if s.Guest || s.ExpiresAt == 0 {
		return false
	}
	return now.After(time.Unix(s.ExpiresAt, 0))
}
