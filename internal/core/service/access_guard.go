package service

import (
	"net/url"
	"strings"
	"time"

	"github.com/farmconnect/marketplace-gateway/internal/core/domain"
)

// Outcome labels a guard decision.
type Outcome string

const (
	OutcomeAllow           Outcome = "allow"
	OutcomeUnauthenticated Outcome = "unauthenticated"
	OutcomeWrongRole       Outcome = "wrong_role"
)

// Decision is the result of a navigation check. RedirectTo is empty when Allow is true.
type Decision struct {
	Allow      bool
	RedirectTo string
	Outcome    Outcome
}

// AccessGuard decides whether a view may be rendered for a session. It never
// performs I/O; session validity was established when the session was restored.
type AccessGuard struct {
	now func() time.Time
}

func NewAccessGuard() *AccessGuard {
	return &AccessGuard{now: time.Now}
}

// Check evaluates a navigation attempt. An empty required role means any
// authenticated caller may view the path.
func (g *AccessGuard) Check(sess *domain.Session, required domain.Role, requestedPath string) Decision {
	if sess == nil || sess.Expired(g.now()) {
		return Decision{RedirectTo: LoginRedirect(requestedPath), Outcome: OutcomeUnauthenticated}
	}

	if required != "" && sess.Role != required {
		target, ok := domain.LandingPath(sess.Role)
		if !ok {
			target = domain.DefaultPath
		}
		return Decision{RedirectTo: target, Outcome: OutcomeWrongRole}
	}

	return Decision{Allow: true, Outcome: OutcomeAllow}
}

// LoginRedirect builds the login URL carrying the originally requested path.
func LoginRedirect(requestedPath string) string {
	if requestedPath == "" || !isLocalPath(requestedPath) {
		return domain.LoginPath
	}
	return domain.LoginPath + "?" + url.Values{"from": {requestedPath}}.Encode()
}

// ReturnPath picks where to send a caller after login: the path they were
// originally headed to when it is a local path, otherwise the role's landing view.
func ReturnPath(from string, role domain.Role) string {
	if isLocalPath(from) && !strings.HasPrefix(from, domain.LoginPath) {
		return from
	}
	if p, ok := domain.LandingPath(role); ok {
		return p
	}
	return domain.DefaultPath
}

// isLocalPath accepts same-site absolute paths only, so the redirect cannot
// be used to leave the site.
func isLocalPath(p string) bool {
	if !strings.HasPrefix(p, "/") || strings.HasPrefix(p, "//") || strings.HasPrefix(p, "/\\") {
		return false
	}
	u, err := url.Parse(p)
	if err != nil {
		return false
	}
	return u.Scheme == "" && u.Host == ""
}
