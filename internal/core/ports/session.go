package ports

import (
	"context"
	"time"

	"github.com/farmconnect/marketplace-gateway/internal/core/domain"
)

// SessionStore persists sessions by id. Get returns domain.ErrSessionNotFound
// when the session is absent or expired.
type SessionStore interface {
	Save(ctx context.Context, sess *domain.Session, ttl time.Duration) error
	Get(ctx context.Context, id string) (*domain.Session, error)
	Delete(ctx context.Context, id string) error
}

// SessionInvalidator forces a session out, e.g. after the market API answered 401.
type SessionInvalidator interface {
	Invalidate(ctx context.Context, sessionID string) error
}

// SessionService is the single writer of session state.
type SessionService interface {
	SessionInvalidator
	Login(ctx context.Context, email, password string) (*domain.Session, string, error)
	Register(ctx context.Context, reg Registration) (*domain.User, error)
	Restore(ctx context.Context, token string) (*domain.Session, error)
	Verify(ctx context.Context, sess *domain.Session) error
	Logout(ctx context.Context, sess *domain.Session) error
}
