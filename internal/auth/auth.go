// Package auth is the authentication boundary: participant credentials,
// the administrative capability and stateless session tokens.
package auth

import (
	"context"
	"errors"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid session token")
)

// Role separates roster voters from the administrative command channel
type Role string

const (
	RoleVoter Role = "voter"
	RoleAdmin Role = "admin"
)

// Identity is what an Authenticator yields for a verified participant:
// a stable voter key plus the contact string display names derive from.
type Identity struct {
	VoterKey string
	Email    string
}

// Authenticator verifies a participant's credential
type Authenticator interface {
	// Authenticate returns ErrInvalidCredentials for an unknown email or a
	// wrong password. Any other error means the backend could not answer.
	Authenticate(ctx context.Context, email, password string) (*Identity, error)
}

// Principal is an authenticated caller as carried in a session token
type Principal struct {
	VoterKey    string `json:"voter_key"`
	Email       string `json:"email,omitempty"`
	DisplayName string `json:"display_name"`
	Role        Role   `json:"role"`
}

// IsAdmin reports whether the principal holds the administrative capability
func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// IsVoter reports whether the principal is a roster participant session
func (p Principal) IsVoter() bool {
	return p.Role == RoleVoter
}

// CanResetLedger implements vote.ResetAuthorizer
func (p Principal) CanResetLedger() bool {
	return p.IsAdmin()
}
