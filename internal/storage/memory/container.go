package memory

import (
	"context"

	"github.com/gravadigital/navidad-api/internal/auth"
	"github.com/gravadigital/navidad-api/internal/domain/vote"
)

// Container bundles the in-memory vote store and authenticator
type Container struct {
	votes *VoteStore
	authn *Authenticator
}

// NewContainer provisions accounts for emails sharing password
func NewContainer(emails []string, password string) (*Container, error) {
	authn, err := NewAuthenticator(emails, password)
	if err != nil {
		return nil, err
	}
	return &Container{votes: NewVoteStore(), authn: authn}, nil
}

// The accessors below satisfy storage.RepositoryContainer; Close has nothing to release.
func (c *Container) Votes() vote.Store                 { return c.votes }
func (c *Container) Authenticator() auth.Authenticator { return c.authn }
func (c *Container) Health(ctx context.Context) error  { return c.votes.Health(ctx) }
func (c *Container) Close() error                      { return nil }
