package auth

import "crypto/subtle"

// AdminGate checks the out-of-band administrative credential pair. It is
// not a roster identity and never touches participant storage.
type AdminGate struct {
	user     string
	password string
}

// NewAdminGate builds a gate for the configured pair; empty values reject every login
func NewAdminGate(user, password string) *AdminGate {
	return &AdminGate{user: user, password: password}
}

// Check returns ErrInvalidCredentials unless both values match
func (g *AdminGate) Check(user, password string) error {
	if g.user == "" || g.password == "" {
		return ErrInvalidCredentials
	}
	userOK := subtle.ConstantTimeCompare([]byte(user), []byte(g.user)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(g.password)) == 1
	if !userOK || !passOK {
		return ErrInvalidCredentials
	}
	return nil
}

// Principal is the identity carried by admin sessions
func (g *AdminGate) Principal() Principal {
	return Principal{
		VoterKey:    "admin:" + g.user,
		DisplayName: g.user,
		Role:        RoleAdmin,
	}
}
