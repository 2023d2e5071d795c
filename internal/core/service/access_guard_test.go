package service

import (
	"net/url"
	"testing"
	"time"

	"github.com/farmconnect/marketplace-gateway/internal/core/domain"
)

func TestAccessGuard_NoSessionRedirectsToLogin(t *testing.T) {
	g := NewAccessGuard()

	for _, path := range []string{"/cart", "/farmer/trades", "/customer/dashboard?tab=orders"} {
		d := g.Check(nil, domain.RoleBuyer, path)
		if d.Allow {
			t.Fatalf("%s: must not allow without session", path)
		}
		if d.Outcome != OutcomeUnauthenticated {
			t.Errorf("%s: unexpected outcome %q", path, d.Outcome)
		}

		u, err := url.Parse(d.RedirectTo)
		if err != nil {
			t.Fatalf("invalid redirect %q: %v", d.RedirectTo, err)
		}
		if u.Path != domain.LoginPath {
			t.Errorf("%s: expected redirect to /login, got %q", path, u.Path)
		}
		// The original path must be recoverable after login.
		from := u.Query().Get("from")
		if got := ReturnPath(from, domain.RoleBuyer); got != path {
			t.Errorf("%s: expected return path %q, got %q", path, path, got)
		}
	}
}

func TestAccessGuard_NoRoleRequiredStillNeedsSession(t *testing.T) {
	g := NewAccessGuard()
	if d := g.Check(nil, "", "/account"); d.Allow {
		t.Fatal("protected path without role must still require a session")
	}
	sess := &domain.Session{Role: domain.RoleFarmer}
	if d := g.Check(sess, "", "/account"); !d.Allow {
		t.Fatal("any role may view a path without role requirement")
	}
}

func TestAccessGuard_FarmerOnBuyerPath(t *testing.T) {
	g := NewAccessGuard()
	d := g.Check(&domain.Session{Role: domain.RoleFarmer}, domain.RoleBuyer, "/cart")

	if d.Allow {
		t.Fatal("farmer must never see the buyer view")
	}
	if d.RedirectTo != domain.FarmerDashboardPath || d.Outcome != OutcomeWrongRole {
		t.Errorf("unexpected decision %+v", d)
	}
}

func TestAccessGuard_BuyerOnFarmerPath(t *testing.T) {
	g := NewAccessGuard()
	d := g.Check(&domain.Session{Role: domain.RoleBuyer}, domain.RoleFarmer, "/farmer/expenses")

	if d.Allow || d.RedirectTo != domain.BuyerDashboardPath {
		t.Errorf("unexpected decision %+v", d)
	}
}

func TestAccessGuard_UnknownRoleFallsBackToDefault(t *testing.T) {
	g := NewAccessGuard()
	d := g.Check(&domain.Session{Role: "admin"}, domain.RoleBuyer, "/cart")

	if d.Allow || d.RedirectTo != domain.DefaultPath {
		t.Errorf("unexpected decision %+v", d)
	}
}

func TestAccessGuard_MatchingRoleAllowed(t *testing.T) {
	g := NewAccessGuard()
	d := g.Check(&domain.Session{Role: domain.RoleBuyer}, domain.RoleBuyer, "/cart")

	if !d.Allow || d.RedirectTo != "" {
		t.Errorf("unexpected decision %+v", d)
	}
}

func TestAccessGuard_ExpiredSessionIsAbsent(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	g := &AccessGuard{now: func() time.Time { return now }}
	sess := &domain.Session{Role: domain.RoleBuyer, ExpiresAt: now.Add(-time.Minute)}

	d := g.Check(sess, domain.RoleBuyer, "/cart")
	if d.Allow || d.Outcome != OutcomeUnauthenticated {
		t.Errorf("expired session must be treated as absent: %+v", d)
	}
}

func TestReturnPath_RejectsOffsiteTargets(t *testing.T) {
	cases := map[string]string{
		"":                      domain.FarmerDashboardPath,
		"https://evil.example":  domain.FarmerDashboardPath,
		"//evil.example/x":      domain.FarmerDashboardPath,
		"/\\evil.example":       domain.FarmerDashboardPath,
		"/login?from=/cart":     domain.FarmerDashboardPath,
		"farmer/trades":         domain.FarmerDashboardPath,
		"/farmer/trades":        "/farmer/trades",
		"/farmer/trades?page=2": "/farmer/trades?page=2",
	}
	for from, want := range cases {
		if got := ReturnPath(from, domain.RoleFarmer); got != want {
			t.Errorf("ReturnPath(%q): expected %q, got %q", from, want, got)
		}
	}

	if got := ReturnPath("", "admin"); got != domain.DefaultPath {
		t.Errorf("unknown role without from: expected /, got %q", got)
	}
}

func TestLoginRedirect_DropsOffsitePath(t *testing.T) {
	if got := LoginRedirect("//evil.example"); got != domain.LoginPath {
		t.Errorf("expected bare login path, got %q", got)
	}
	if got := LoginRedirect("/cart"); got != "/login?from=%2Fcart" {
		t.Errorf("unexpected login redirect %q", got)
	}
}
