package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gravadigital/navidad-api/internal/config"
	"github.com/gravadigital/navidad-api/internal/domain/roster"
	"github.com/gravadigital/navidad-api/internal/domain/vote"
)

func TestValidateStorageType(t *testing.T) {
	st, err := ValidateStorageType("memory")
	require.NoError(t, err)
	assert.Equal(t, StorageTypeMemory, st)

	st, err = ValidateStorageType("postgres")
	require.NoError(t, err)
	assert.Equal(t, StorageTypePostgres, st)

	_, err = ValidateStorageType("firestore")
	assert.Error(t, err)
}

func TestFactory_Memory(t *testing.T) {
	cfg := &config.Config{}
	cfg.Voting.Roster = config.DefaultRoster
	cfg.Voting.EmailDomain = "navidad-votes.com"
	cfg.Voting.SharedPassword = "turron"

	c, err := NewFactory(StorageTypeMemory).CreateContainer(context.Background(), cfg)
	require.NoError(t, err)
	defer c.Close()

	ctx := context.Background()
	require.NoError(t, c.Health(ctx))

	email := roster.CredentialEmail("Virgilio", cfg.Voting.EmailDomain)
	id, err := c.Authenticator().Authenticate(ctx, email, "turron")
	require.NoError(t, err)

	require.NoError(t, c.Votes().Create(ctx, vote.NewVote(id.VoterKey, "bife", "Virgilio")))
	votes, err := c.Votes().List(ctx)
	require.NoError(t, err)
	assert.Len(t, votes, 1)
}

func TestFactory_Unsupported(t *testing.T) {
	_, err := NewFactory("firestore").CreateContainer(context.Background(), &config.Config{})
	assert.Error(t, err)
}
