package domain

import "time"

// Role is the marketplace persona attached to a session.
type Role string

const (
	RoleFarmer Role = "farmer"
	RoleBuyer  Role = "buyer"
)

const (
	LoginPath           = "/login"
	DefaultPath         = "/"
	FarmerDashboardPath = "/farmer/dashboard"
	BuyerDashboardPath  = "/customer/dashboard"
)

// LandingPath returns the default view for a role. Unknown roles have none.
func LandingPath(r Role) (string, bool) {
	switch r {
	case RoleFarmer:
		return FarmerDashboardPath, true
	case RoleBuyer:
		return BuyerDashboardPath, true
	default:
		return "", false
	}
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleFarmer || r == RoleBuyer
}

// Session is the authenticated identity of a caller. Token is the bearer
// token issued by the market API and is never serialised to clients.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	Role      Role      `json:"role"`
	Token     string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the session is past its expiry at now.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// User is the profile returned by the market API on login and registration.
type User struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Role     Role   `json:"role"`
	Location string `json:"location,omitempty"`
	Phone    string `json:"phone,omitempty"`
}
