package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/farmconnect/marketplace-gateway/internal/core/domain"
	"github.com/farmconnect/marketplace-gateway/internal/core/ports"
)

// SessionStore keeps sessions as JSON documents.
// Key format: session:<session_id>
type SessionStore struct {
	client *redis.Client
}

var _ ports.SessionStore = (*SessionStore)(nil)

func NewSessionStore(client *redis.Client) *SessionStore {
	return &SessionStore{client: client}
}

// sessionRecord is the stored form. Session.Token is hidden from JSON on the
// domain type, so it is carried explicitly here.
type sessionRecord struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Token     string    `json:"token"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (s *SessionStore) Save(ctx context.Context, sess *domain.Session, ttl time.Duration) error {
	b, err := json.Marshal(sessionRecord{
		ID:        sess.ID,
		UserID:    sess.UserID,
		Name:      sess.Name,
		Email:     sess.Email,
		Role:      string(sess.Role),
		Token:     sess.Token,
		CreatedAt: sess.CreatedAt,
		ExpiresAt: sess.ExpiresAt,
	})
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := s.client.Set(ctx, sessionKey(sess.ID), b, ttl).Err(); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (s *SessionStore) Get(ctx context.Context, id string) (*domain.Session, error) {
	b, err := s.client.Get(ctx, sessionKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	var rec sessionRecord
	if err := json.Unmarshal(b, &rec); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &domain.Session{
		ID:        rec.ID,
		UserID:    rec.UserID,
		Name:      rec.Name,
		Email:     rec.Email,
		Role:      domain.Role(rec.Role),
		Token:     rec.Token,
		CreatedAt: rec.CreatedAt,
		ExpiresAt: rec.ExpiresAt,
	}, nil
}

func (s *SessionStore) Delete(ctx context.Context, id string) error {
	return s.client.Del(ctx, sessionKey(id)).Err()
}

func sessionKey(id string) string {
	return "session:" + id
}
