package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gravadigital/navidad-api/internal/auth"
	"github.com/gravadigital/navidad-api/internal/domain/vote"
)

func TestVoteStore_CreateAndGet(t *testing.T) {
	store := NewVoteStore()
	ctx := context.Background()

	_, err := store.Get(ctx, "v1")
	assert.ErrorIs(t, err, vote.ErrNotFound)

	require.NoError(t, store.Create(ctx, vote.NewVote("v1", "A", "Luis")))

	got, err := store.Get(ctx, "v1")
	require.NoError(t, err)
	assert.Equal(t, "A", got.OptionID)
	assert.Equal(t, "Luis", got.UserName)

	err = store.Create(ctx, vote.NewVote("v1", "B", "Luis"))
	assert.ErrorIs(t, err, vote.ErrAlreadyVoted)

	got, err = store.Get(ctx, "v1")
	require.NoError(t, err)
	assert.Equal(t, "A", got.OptionID)
}

func TestVoteStore_ListKeepsInsertionOrder(t *testing.T) {
	store := NewVoteStore()
	ctx := context.Background()

	for _, key := range []string{"c", "a", "b"} {
		require.NoError(t, store.Create(ctx, vote.NewVote(key, "A", key)))
	}

	votes, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, votes, 3)
	assert.Equal(t, "c", votes[0].VoterKey)
	assert.Equal(t, "a", votes[1].VoterKey)
	assert.Equal(t, "b", votes[2].VoterKey)
}

func TestVoteStore_DeleteAll(t *testing.T) {
	store := NewVoteStore()
	ctx := context.Background()

	n, err := store.DeleteAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	require.NoError(t, store.Create(ctx, vote.NewVote("v1", "A", "")))
	require.NoError(t, store.Create(ctx, vote.NewVote("v2", "B", "")))

	n, err = store.DeleteAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	votes, err := store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, votes)
}

func TestVoteStore_CancelledContext(t *testing.T) {
	store := NewVoteStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Error(t, store.Create(ctx, vote.NewVote("v1", "A", "")))
	_, err := store.List(ctx)
	assert.Error(t, err)
	assert.Error(t, store.Health(ctx))
}

func TestVoteStore_Watch(t *testing.T) {
	store := NewVoteStore()
	ctx, cancel := context.WithCancel(context.Background())

	changes, err := store.Watch(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, store.Subscribers())

	require.NoError(t, store.Create(context.Background(), vote.NewVote("v1", "A", "")))
	select {
	case <-changes:
	case <-time.After(time.Second):
		t.Fatal("no change signal after create")
	}

	// two mutations without a read coalesce into one pending signal
	require.NoError(t, store.Create(context.Background(), vote.NewVote("v2", "A", "")))
	_, err = store.DeleteAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, changes, 1)
	<-changes

	// resetting an empty store is not a change
	_, err = store.DeleteAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, changes, 0)

	cancel()
	assert.Eventually(t, func() bool { return store.Subscribers() == 0 }, time.Second, 10*time.Millisecond)
	_, open := <-changes
	assert.False(t, open)
}

func TestAuthenticator(t *testing.T) {
	authn, err := NewAuthenticator([]string{"toni@navidad-votes.com", "angel@navidad-votes.com"}, "turron")
	require.NoError(t, err)
	ctx := context.Background()

	t.Run("valid credentials", func(t *testing.T) {
		id, err := authn.Authenticate(ctx, "toni@navidad-votes.com", "turron")
		require.NoError(t, err)
		assert.Equal(t, "toni@navidad-votes.com", id.Email)
		assert.Equal(t, VoterKey("toni@navidad-votes.com"), id.VoterKey)
	})

	t.Run("email match is case-insensitive and the key is stable", func(t *testing.T) {
		a, err := authn.Authenticate(ctx, "TONI@navidad-votes.com", "turron")
		require.NoError(t, err)
		b, err := authn.Authenticate(ctx, "toni@navidad-votes.com", "turron")
		require.NoError(t, err)
		assert.Equal(t, a.VoterKey, b.VoterKey)
	})

	t.Run("distinct voters get distinct keys", func(t *testing.T) {
		assert.NotEqual(t, VoterKey("toni@navidad-votes.com"), VoterKey("angel@navidad-votes.com"))
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := authn.Authenticate(ctx, "toni@navidad-votes.com", "polvoron")
		assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	})

	t.Run("unknown account", func(t *testing.T) {
		_, err := authn.Authenticate(ctx, "nadie@navidad-votes.com", "turron")
		assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	})

	t.Run("empty shared password is refused", func(t *testing.T) {
		_, err := NewAuthenticator([]string{"x@y"}, "")
		assert.Error(t, err)
	})
}
