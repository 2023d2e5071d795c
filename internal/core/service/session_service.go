package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/farmconnect/marketplace-gateway/internal/core/domain"
	"github.com/farmconnect/marketplace-gateway/internal/core/ports"
)

// SessionService is the only component that creates, persists or destroys
// sessions. Everything else receives the *domain.Session it produced.
type SessionService struct {
	api    ports.AuthAPI
	store  ports.SessionStore
	secret []byte
	ttl    time.Duration
	logger zerolog.Logger

	now   func() time.Time
	newID func() string
}

func NewSessionService(api ports.AuthAPI, store ports.SessionStore, secret string, ttl time.Duration, logger zerolog.Logger) *SessionService {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &SessionService{
		api:    api,
		store:  store,
		secret: []byte(secret),
		ttl:    ttl,
		logger: logger,
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// Login authenticates against the market API, persists a new session and
// returns it with the signed token the caller presents on later requests.
func (s *SessionService) Login(ctx context.Context, email, password string) (*domain.Session, string, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, "", domain.ErrInvalidCredentials
	}

	res, err := s.api.Login(ctx, ports.Credentials{Email: email, Password: password})
	if err != nil {
		return nil, "", fmt.Errorf("login: %w", err)
	}

	now := s.now().UTC()
	sess := &domain.Session{
		ID:        s.newID(),
		UserID:    res.User.ID,
		Name:      res.User.Name,
		Email:     res.User.Email,
		Role:      res.User.Role,
		Token:     res.Token,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}

	if err := s.store.Save(ctx, sess, s.ttl); err != nil {
		return nil, "", fmt.Errorf("login: save session: %w", err)
	}

	token, err := s.generateToken(sess)
	if err != nil {
		return nil, "", fmt.Errorf("login: sign token: %w", err)
	}

	s.logger.Info().Str("session_id", sess.ID).Str("user_id", sess.UserID).Str("role", string(sess.Role)).Msg("session created")
	return sess, token, nil
}

// Register forwards a new account to the market API. It does not log the user in.
func (s *SessionService) Register(ctx context.Context, reg ports.Registration) (*domain.User, error) {
	if !reg.Role.Valid() {
		return nil, domain.NewError(domain.KindValidation, "role must be farmer or buyer", nil)
	}
	if strings.TrimSpace(reg.Email) == "" || reg.Password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.api.Register(ctx, reg)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	return user, nil
}

// Restore resolves a signed token to its live session.
func (s *SessionService) Restore(ctx context.Context, token string) (*domain.Session, error) {
	claims := jwt.MapClaims{}
	tkn, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil || !tkn.Valid {
		return nil, domain.NewError(domain.KindUnauthorized, "invalid session token", err)
	}

	sid, _ := claims["sid"].(string)
	if sid == "" {
		return nil, domain.NewError(domain.KindUnauthorized, "session token missing session id", nil)
	}

	sess, err := s.store.Get(ctx, sid)
	if err != nil {
		return nil, err
	}
	if sess.Expired(s.now()) {
		s.drop(ctx, sid)
		return nil, domain.ErrSessionExpired
	}
	return sess, nil
}

// Verify checks the session's bearer token with the market API. A rejected
// token ends the session.
func (s *SessionService) Verify(ctx context.Context, sess *domain.Session) error {
	if err := s.api.Verify(ctx, sess.Token); err != nil {
		expireOnUnauthorized(ctx, s, sess, s.logger, err)
		return fmt.Errorf("verify session: %w", err)
	}
	return nil
}

// Logout ends the session locally even when the market API cannot be reached.
func (s *SessionService) Logout(ctx context.Context, sess *domain.Session) error {
	if err := s.api.Logout(ctx, sess.Token); err != nil {
		s.logger.Warn().Err(err).Str("session_id", sess.ID).Msg("market api logout failed")
	}
	if err := s.store.Delete(ctx, sess.ID); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	s.logger.Info().Str("session_id", sess.ID).Msg("session closed")
	return nil
}

// Invalidate removes a session without contacting the market API.
func (s *SessionService) Invalidate(ctx context.Context, sessionID string) error {
	if err := s.store.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("invalidate session: %w", err)
	}
	s.logger.Info().Str("session_id", sessionID).Msg("session invalidated")
	return nil
}

func (s *SessionService) drop(ctx context.Context, sessionID string) {
	if err := s.store.Delete(ctx, sessionID); err != nil && !errors.Is(err, domain.ErrSessionNotFound) {
		s.logger.Warn().Err(err).Str("session_id", sessionID).Msg("failed to drop expired session")
	}
}

func (s *SessionService) generateToken(sess *domain.Session) (string, error) {
	claims := jwt.MapClaims{
		"sid":  sess.ID,
		"sub":  sess.UserID,
		"role": string(sess.Role),
		"iat":  sess.CreatedAt.Unix(),
		"exp":  sess.ExpiresAt.Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(s.secret)
}

// expireOnUnauthorized ends the session when the market API rejected its
// token. This is the only error with a side effect beyond reporting it.
func expireOnUnauthorized(ctx context.Context, inv ports.SessionInvalidator, sess *domain.Session, logger zerolog.Logger, err error) {
	if domain.KindOf(err) != domain.KindUnauthorized || inv == nil || sess == nil {
		return
	}
	if ierr := inv.Invalidate(context.WithoutCancel(ctx), sess.ID); ierr != nil {
		logger.Warn().Err(ierr).Str("session_id", sess.ID).Msg("failed to invalidate session after 401")
	}
}
