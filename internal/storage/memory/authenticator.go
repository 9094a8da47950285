package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/gravadigital/navidad-api/internal/auth"
)

// Authenticator accepts a fixed set of participant emails sharing one password
type Authenticator struct {
	mu       sync.RWMutex
	accounts map[string][]byte
}

var _ auth.Authenticator = (*Authenticator)(nil)

// NewAuthenticator provisions one account per email, all with password
func NewAuthenticator(emails []string, password string) (*Authenticator, error) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	a := &Authenticator{accounts: make(map[string][]byte, len(emails))}
	for _, email := range emails {
		a.accounts[strings.ToLower(email)] = hash
	}
	return a, nil
}

// Authenticate checks the shared password of a provisioned account
func (a *Authenticator) Authenticate(ctx context.Context, email, password string) (*auth.Identity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	email = strings.ToLower(strings.TrimSpace(email))

	a.mu.RLock()
	hash, ok := a.accounts[email]
	a.mu.RUnlock()
	if !ok {
		return nil, auth.ErrInvalidCredentials
	}
	if err := auth.ComparePassword(hash, password); err != nil {
		return nil, err
	}

	return &auth.Identity{VoterKey: VoterKey(email), Email: email}, nil
}

// VoterKey derives a stable voter key from a credential email
func VoterKey(email string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("mailto:"+strings.ToLower(email))).String()
}
