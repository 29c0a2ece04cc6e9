package security

import "time"

// RoleAdmin may change detection settings
const RoleAdmin = "admin"

// Principal is the authenticated caller of the visit API. Every visit,
// candidate and catalog row is scoped to UserID.
type Principal struct {
	UserID    string
	Role      string
	ExpiresAt time.Time
}

// IsAdmin reports whether the caller may change detection settings
func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// Verifier resolves a bearer token to the caller it was issued for
type Verifier interface {
	Verify(token string) (Principal, error)
}
