package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/farmconnect/marketplace-gateway/internal/core/domain"
	"github.com/farmconnect/marketplace-gateway/internal/core/ports"
)

// ---------------------------------------------------------------------------
// Stubs
// ---------------------------------------------------------------------------

type stubAuthAPI struct {
	loginFn    func(ctx context.Context, creds ports.Credentials) (*ports.LoginResult, error)
	registerFn func(ctx context.Context, reg ports.Registration) (*domain.User, error)
	verifyErr  error
	logoutErr  error
	logouts    int
}

func (a *stubAuthAPI) Login(ctx context.Context, creds ports.Credentials) (*ports.LoginResult, error) {
	return a.loginFn(ctx, creds)
}

func (a *stubAuthAPI) Register(ctx context.Context, reg ports.Registration) (*domain.User, error) {
	return a.registerFn(ctx, reg)
}

func (a *stubAuthAPI) Logout(_ context.Context, _ string) error {
	a.logouts++
	return a.logoutErr
}

func (a *stubAuthAPI) Verify(_ context.Context, _ string) error {
	return a.verifyErr
}

type stubSessionStore struct {
	sessions map[string]domain.Session
	ttls     map[string]time.Duration
}

func newStubSessionStore() *stubSessionStore {
	return &stubSessionStore{sessions: map[string]domain.Session{}, ttls: map[string]time.Duration{}}
}

func (s *stubSessionStore) Save(_ context.Context, sess *domain.Session, ttl time.Duration) error {
	s.sessions[sess.ID] = *sess
	s.ttls[sess.ID] = ttl
	return nil
}

func (s *stubSessionStore) Get(_ context.Context, id string) (*domain.Session, error) {
	sess, ok := s.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return &sess, nil
}

func (s *stubSessionStore) Delete(_ context.Context, id string) error {
	delete(s.sessions, id)
	return nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

var fixedNow = time.Date(2026, 5, 10, 9, 0, 0, 0, time.UTC)

func newTestSessionService(api *stubAuthAPI, store *stubSessionStore) *SessionService {
	svc := NewSessionService(api, store, "secret", time.Hour, discardLogger)
	svc.now = func() time.Time { return fixedNow }
	svc.newID = func() string { return "sid-1" }
	return svc
}

func loginOK(role domain.Role) *stubAuthAPI {
	return &stubAuthAPI{
		loginFn: func(_ context.Context, creds ports.Credentials) (*ports.LoginResult, error) {
			return &ports.LoginResult{
				Token: "upstream-token",
				User:  domain.User{ID: "u-1", Name: "Rosa", Email: creds.Email, Role: role},
			}, nil
		},
	}
}

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func TestSessionService_Login_PersistsAndSigns(t *testing.T) {
	store := newStubSessionStore()
	svc := newTestSessionService(loginOK(domain.RoleFarmer), store)

	sess, token, err := svc.Login(context.Background(), "rosa@example.com", "pwd")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sess.ID != "sid-1" || sess.Role != domain.RoleFarmer || sess.Token != "upstream-token" {
		t.Errorf("unexpected session %+v", sess)
	}
	if !sess.ExpiresAt.Equal(fixedNow.Add(time.Hour)) {
		t.Errorf("unexpected expiry %v", sess.ExpiresAt)
	}
	if _, ok := store.sessions["sid-1"]; !ok {
		t.Fatal("session not persisted")
	}
	if store.ttls["sid-1"] != time.Hour {
		t.Errorf("unexpected ttl %v", store.ttls["sid-1"])
	}

	claims := jwt.MapClaims{}
	_, err = jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return []byte("secret"), nil
	}, jwt.WithTimeFunc(func() time.Time { return fixedNow }))
	if err != nil {
		t.Fatalf("token does not verify: %v", err)
	}
	if claims["sid"] != "sid-1" || claims["role"] != "farmer" || claims["sub"] != "u-1" {
		t.Errorf("unexpected claims %+v", claims)
	}
}

func TestSessionService_Login_MissingCredentials(t *testing.T) {
	api := &stubAuthAPI{loginFn: func(context.Context, ports.Credentials) (*ports.LoginResult, error) {
		t.Fatal("market api must not be called")
		return nil, nil
	}}
	svc := newTestSessionService(api, newStubSessionStore())

	if _, _, err := svc.Login(context.Background(), " ", "pwd"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestSessionService_Login_UpstreamRejects(t *testing.T) {
	api := &stubAuthAPI{loginFn: func(context.Context, ports.Credentials) (*ports.LoginResult, error) {
		return nil, &domain.Error{Kind: domain.KindUnauthorized, Message: "invalid credentials", Status: 401}
	}}
	store := newStubSessionStore()
	svc := newTestSessionService(api, store)

	_, _, err := svc.Login(context.Background(), "a@b.c", "bad")
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if len(store.sessions) != 0 {
		t.Error("no session must be stored on failed login")
	}
}

func TestSessionService_Restore(t *testing.T) {
	store := newStubSessionStore()
	svc := newTestSessionService(loginOK(domain.RoleBuyer), store)
	_, token, err := svc.Login(context.Background(), "a@b.c", "pwd")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	sess, err := svc.Restore(context.Background(), token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sess.ID != "sid-1" || sess.Token != "upstream-token" {
		t.Errorf("unexpected session %+v", sess)
	}
}

func TestSessionService_Restore_InvalidToken(t *testing.T) {
	svc := newTestSessionService(loginOK(domain.RoleBuyer), newStubSessionStore())

	for _, tok := range []string{"", "not-a-token"} {
		if _, err := svc.Restore(context.Background(), tok); !errors.Is(err, domain.ErrUnauthorized) {
			t.Errorf("%q: expected unauthorized, got %v", tok, err)
		}
	}

	other := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sid": "sid-1"})
	signed, _ := other.SignedString([]byte("other-secret"))
	if _, err := svc.Restore(context.Background(), signed); !errors.Is(err, domain.ErrUnauthorized) {
		t.Errorf("foreign signature: expected unauthorized, got %v", err)
	}
}

func TestSessionService_Restore_InvalidatedSession(t *testing.T) {
	store := newStubSessionStore()
	svc := newTestSessionService(loginOK(domain.RoleBuyer), store)
	_, token, _ := svc.Login(context.Background(), "a@b.c", "pwd")

	if err := svc.Invalidate(context.Background(), "sid-1"); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	if _, err := svc.Restore(context.Background(), token); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestSessionService_Restore_ExpiredSessionIsDropped(t *testing.T) {
	store := newStubSessionStore()
	svc := newTestSessionService(loginOK(domain.RoleBuyer), store)
	_, token, _ := svc.Login(context.Background(), "a@b.c", "pwd")

	// Token still valid but the stored session says otherwise.
	s := store.sessions["sid-1"]
	s.ExpiresAt = fixedNow.Add(-time.Second)
	store.sessions["sid-1"] = s

	if _, err := svc.Restore(context.Background(), token); !errors.Is(err, domain.ErrSessionExpired) {
		t.Fatalf("expected ErrSessionExpired, got %v", err)
	}
	if _, ok := store.sessions["sid-1"]; ok {
		t.Error("expired session must be removed")
	}
}

func TestSessionService_Verify_UnauthorizedInvalidates(t *testing.T) {
	store := newStubSessionStore()
	api := loginOK(domain.RoleBuyer)
	svc := newTestSessionService(api, store)
	sess, _, _ := svc.Login(context.Background(), "a@b.c", "pwd")

	api.verifyErr = domain.ErrSessionExpired
	if err := svc.Verify(context.Background(), sess); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if _, ok := store.sessions[sess.ID]; ok {
		t.Error("session must be removed after upstream 401")
	}
}

func TestSessionService_Verify_NetworkErrorKeepsSession(t *testing.T) {
	store := newStubSessionStore()
	api := loginOK(domain.RoleBuyer)
	svc := newTestSessionService(api, store)
	sess, _, _ := svc.Login(context.Background(), "a@b.c", "pwd")

	api.verifyErr = domain.NewError(domain.KindNetwork, "network error", nil)
	_ = svc.Verify(context.Background(), sess)
	if _, ok := store.sessions[sess.ID]; !ok {
		t.Error("network failure must not end the session")
	}
}

func TestSessionService_Logout_UpstreamFailureStillEndsSession(t *testing.T) {
	store := newStubSessionStore()
	api := loginOK(domain.RoleBuyer)
	svc := newTestSessionService(api, store)
	sess, _, _ := svc.Login(context.Background(), "a@b.c", "pwd")

	api.logoutErr = errors.New("connection refused")
	if err := svc.Logout(context.Background(), sess); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if api.logouts != 1 {
		t.Errorf("expected upstream logout attempt")
	}
	if len(store.sessions) != 0 {
		t.Error("session must be removed")
	}
}

func TestSessionService_Register_RejectsUnknownRole(t *testing.T) {
	api := &stubAuthAPI{registerFn: func(context.Context, ports.Registration) (*domain.User, error) {
		t.Fatal("market api must not be called")
		return nil, nil
	}}
	svc := newTestSessionService(api, newStubSessionStore())

	_, err := svc.Register(context.Background(), ports.Registration{Email: "a@b.c", Password: "x", Role: "admin"})
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestSessionService_Register_Forwards(t *testing.T) {
	api := &stubAuthAPI{registerFn: func(_ context.Context, reg ports.Registration) (*domain.User, error) {
		return &domain.User{ID: "u-9", Name: reg.Name, Email: reg.Email, Role: reg.Role}, nil
	}}
	svc := newTestSessionService(api, newStubSessionStore())

	user, err := svc.Register(context.Background(), ports.Registration{Name: "Kofi", Email: "k@b.c", Password: "x", Role: domain.RoleFarmer})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.ID != "u-9" || user.Role != domain.RoleFarmer {
		t.Errorf("unexpected user %+v", user)
	}
}
