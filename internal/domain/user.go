package domain

import "time"

// Roles assignable to users.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User represents a registered account. PasswordHash is a bcrypt digest and
// must never be serialized into API responses.
type User struct {
	ID           string     `json:"id"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	Name         string     `json:"name"`
	Role         string     `json:"role"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	DeletedAt    *time.Time `json:"-"`
}

// ReuseViolationMarker is written to ReplacedByTokenHash for every token in a
// family revoked after a rotated token was presented a second time. It
// distinguishes security revocations from ordinary rotation in the ledger.
const ReuseViolationMarker = "REUSE_VIOLATION"

// RefreshToken is one link in a rotation chain. Only the SHA-256 digest of
// the opaque secret is stored. Rows are never deleted; revocation and
// replacement are recorded in place so the full chain stays auditable.
type RefreshToken struct {
	ID                  string     `json:"id"`
	UserID              string     `json:"user_id"`
	TokenHash           string     `json:"-"`
	ExpiresAt           time.Time  `json:"expires_at"`
	CreatedAt           time.Time  `json:"created_at"`
	CreatedByIP         string     `json:"created_by_ip"`
	RevokedAt           *time.Time `json:"revoked_at,omitempty"`
	RevokedByIP         string     `json:"revoked_by_ip,omitempty"`
	ReplacedByTokenHash string     `json:"-"`
}

// Expired reports whether the token's lifetime has passed.
func (t *RefreshToken) Expired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}

// Revoked reports whether the token has been revoked.
func (t *RefreshToken) Revoked() bool {
	return t.RevokedAt != nil
}

// Active reports whether the token can still be rotated.
func (t *RefreshToken) Active(now time.Time) bool {
	return !t.Revoked() && !t.Expired(now)
}
