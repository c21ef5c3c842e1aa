// Package auth keeps the client session: which identity owns the local
// namespace and the bearer token used for sync.
package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/iudanet/lifedash/internal/client/storage"
	"github.com/iudanet/lifedash/internal/clock"
	"github.com/iudanet/lifedash/internal/validation"
)

var (
	// ErrInvalidToken is returned when the token cannot be decoded
	ErrInvalidToken = errors.New("invalid access token")

	// ErrTokenUserMismatch is returned when the token was issued for another user
	ErrTokenUserMismatch = errors.New("token was issued for a different user")

	// ErrTokenExpired is returned when the stored or supplied token is past its expiry
	ErrTokenExpired = errors.New("access token expired")
)

// tokenClaims is the part of the server token the client reads.
// Подпись проверяет сервер, клиент только читает claims.
type tokenClaims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

type service struct {
	sessions storage.SessionStorage
	clock    clock.Clock
	parser   *jwt.Parser
}

// Compile-time check that service implements Service
var _ Service = (*service)(nil)

// NewService creates the session service.
func NewService(sessions storage.SessionStorage, clk clock.Clock) Service {
	if clk == nil {
		clk = clock.Real()
	}
	return &service{
		sessions: sessions,
		clock:    clk,
		parser:   jwt.NewParser(),
	}
}

func (s *service) Login(ctx context.Context, userID, token string) (*storage.Session, error) {
	userID = validation.NormalizeUserID(userID)
	if err := validation.ValidateUserID(userID); err != nil {
		return nil, fmt.Errorf("invalid user id: %w", err)
	}
	if token == "" {
		return nil, ErrInvalidToken
	}

	claims, err := s.peek(token)
	if err != nil {
		return nil, err
	}
	if claims.UserID != userID {
		return nil, fmt.Errorf("%w: token user %q", ErrTokenUserMismatch, claims.UserID)
	}

	session := &storage.Session{
		UserID:      userID,
		AccessToken: token,
	}
	if claims.ExpiresAt != nil {
		session.ExpiresAt = claims.ExpiresAt.Unix()
	}
	if session.Expired(s.clock.Now()) {
		return nil, ErrTokenExpired
	}

	if err := s.sessions.SaveSession(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	return session, nil
}

func (s *service) Guest(ctx context.Context) (*storage.Session, error) {
	session := &storage.Session{
		UserID: uuid.NewString(),
		Guest:  true,
	}

	if err := s.sessions.SaveSession(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	return session, nil
}

func (s *service) Restore(ctx context.Context) (*storage.Session, error) {
	session, err := s.sessions.GetSession(ctx)
	if err != nil {
		return nil, err
	}

	if session.Expired(s.clock.Now()) {
		return session, ErrTokenExpired
	}

	return session, nil
}

func (s *service) Logout(ctx context.Context) error {
	err := s.sessions.DeleteSession(ctx)
	if err != nil && !errors.Is(err, storage.ErrSessionNotFound) {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

func (s *service) peek(token string) (*tokenClaims, error) {
	claims := &tokenClaims{}
	if _, _, err := s.parser.ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.UserID == "" {
		return nil, fmt.Errorf("%w: missing user_id claim", ErrInvalidToken)
	}
	return claims, nil
}
