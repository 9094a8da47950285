package vote_test

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gravadigital/navidad-api/internal/domain/option"
	"github.com/gravadigital/navidad-api/internal/domain/vote"
	"github.com/gravadigital/navidad-api/internal/logger"
	"github.com/gravadigital/navidad-api/internal/storage/memory"
)

type capability bool

func (c capability) CanResetLedger() bool { return bool(c) }

const admin = capability(true)

// faultyStore injects store failures around a working memory store
type faultyStore struct {
	*memory.VoteStore
	getErr    error
	createErr error
	deleteErr error
}

func (f *faultyStore) Get(ctx context.Context, key string) (*vote.Vote, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.VoteStore.Get(ctx, key)
}

func (f *faultyStore) Create(ctx context.Context, v *vote.Vote) error {
	if f.createErr != nil {
		return f.createErr
	}
	return f.VoteStore.Create(ctx, v)
}

func (f *faultyStore) DeleteAll(ctx context.Context) (int, error) {
	if f.deleteErr != nil {
		return 0, f.deleteErr
	}
	return f.VoteStore.DeleteAll(ctx)
}

func testOptions() *option.Set {
	return option.MustNewSet([]option.VotingOption{
		{ID: "A", Name: "Option A"},
		{ID: "B", Name: "Option B"},
		{ID: "C", Name: "Option C"},
	})
}

func newLedger(t *testing.T) (*vote.Ledger, *memory.VoteStore) {
	t.Helper()
	logger.InitializeWithWriter(io.Discard, "error")
	store := memory.NewVoteStore()
	return vote.NewLedger(store, testOptions()), store
}

func TestLedger_CastVote(t *testing.T) {
	ctx := context.Background()

	t.Run("first vote succeeds", func(t *testing.T) {
		ledger, _ := newLedger(t)

		v, err := ledger.CastVote(ctx, "voter1", "A", "Ángel")
		require.NoError(t, err)
		assert.Equal(t, "voter1", v.VoterKey)
		assert.Equal(t, "A", v.OptionID)
		assert.Equal(t, "Ángel", v.UserName)
	})

	t.Run("second vote by the same voter is rejected", func(t *testing.T) {
		ledger, store := newLedger(t)

		_, err := ledger.CastVote(ctx, "voter1", "A", "Ángel")
		require.NoError(t, err)

		for _, opt := range []string{"B", "A", "C"} {
			_, err = ledger.CastVote(ctx, "voter1", opt, "Ángel")
			assert.ErrorIs(t, err, vote.ErrAlreadyVoted)
		}

		votes, err := store.List(ctx)
		require.NoError(t, err)
		require.Len(t, votes, 1)
		assert.Equal(t, "A", votes[0].OptionID)
	})

	t.Run("unknown option never reaches the store", func(t *testing.T) {
		ledger, store := newLedger(t)

		_, err := ledger.CastVote(ctx, "voter1", "Z", "Luis")
		assert.ErrorIs(t, err, vote.ErrInvalidOption)
		assert.ErrorIs(t, err, vote.ErrValidation)

		votes, _ := store.List(ctx)
		assert.Empty(t, votes)
	})

	t.Run("missing selection", func(t *testing.T) {
		ledger, _ := newLedger(t)

		_, err := ledger.CastVote(ctx, "voter1", "  ", "Luis")
		assert.ErrorIs(t, err, vote.ErrValidation)
		assert.NotErrorIs(t, err, vote.ErrInvalidOption)
	})

	t.Run("unauthenticated voter", func(t *testing.T) {
		ledger, _ := newLedger(t)

		_, err := ledger.CastVote(ctx, "", "A", "Luis")
		assert.ErrorIs(t, err, vote.ErrPermissionDenied)
	})

	t.Run("blank display name is stored as anonymous", func(t *testing.T) {
		ledger, _ := newLedger(t)

		v, err := ledger.CastVote(ctx, "voter1", "B", "")
		require.NoError(t, err)
		assert.Equal(t, vote.AnonymousName, v.UserName)
	})
}

func TestLedger_CastVoteStoreFailures(t *testing.T) {
	ctx := context.Background()
	logger.InitializeWithWriter(io.Discard, "error")

	tests := []struct {
		name    string
		store   *faultyStore
		wantErr error
		notErr  error
	}{
		{
			name:    "store unreachable on read",
			store:   &faultyStore{VoteStore: memory.NewVoteStore(), getErr: errors.New("connection refused")},
			wantErr: vote.ErrUnavailable,
			notErr:  vote.ErrPermissionDenied,
		},
		{
			name:    "store unreachable on write",
			store:   &faultyStore{VoteStore: memory.NewVoteStore(), createErr: errors.New("i/o timeout")},
			wantErr: vote.ErrUnavailable,
			notErr:  vote.ErrPermissionDenied,
		},
		{
			name:    "store denies the write",
			store:   &faultyStore{VoteStore: memory.NewVoteStore(), createErr: vote.ErrPermissionDenied},
			wantErr: vote.ErrPermissionDenied,
			notErr:  vote.ErrUnavailable,
		},
		{
			name:    "concurrent ballot landed between check and write",
			store:   &faultyStore{VoteStore: memory.NewVoteStore(), createErr: vote.ErrAlreadyVoted},
			wantErr: vote.ErrAlreadyVoted,
			notErr:  vote.ErrUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ledger := vote.NewLedger(tt.store, testOptions())

			_, err := ledger.CastVote(ctx, "voter1", "A", "Pepe")
			assert.ErrorIs(t, err, tt.wantErr)
			assert.NotErrorIs(t, err, tt.notErr)
			assert.NotEmpty(t, vote.Message(err))
		})
	}
}

func TestLedger_ConcurrentCastsForOneVoter(t *testing.T) {
	ledger, store := newLedger(t)
	ctx := context.Background()

	const attempts = 50
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		rejected  int
	)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			opt := []string{"A", "B", "C"}[i%3]
			_, err := ledger.CastVote(ctx, "voter1", opt, "Goyo")

			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				successes++
			} else if errors.Is(err, vote.ErrAlreadyVoted) {
				rejected++
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, attempts-1, rejected)

	votes, err := store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, votes, 1)
}

func TestLedger_Reset(t *testing.T) {
	ctx := context.Background()

	t.Run("reset twice reports count then zero", func(t *testing.T) {
		ledger, store := newLedger(t)
		for i, key := range []string{"v1", "v2", "v3"} {
			_, err := ledger.CastVote(ctx, key, []string{"A", "B", "A"}[i], key)
			require.NoError(t, err)
		}

		n, err := ledger.Reset(ctx, admin)
		require.NoError(t, err)
		assert.Equal(t, 3, n)
		votes, _ := store.List(ctx)
		assert.Empty(t, votes)

		n, err = ledger.Reset(ctx, admin)
		require.NoError(t, err)
		assert.Equal(t, 0, n)
		votes, _ = store.List(ctx)
		assert.Empty(t, votes)
	})

	t.Run("voters may vote again after a reset", func(t *testing.T) {
		ledger, _ := newLedger(t)
		_, err := ledger.CastVote(ctx, "v1", "A", "v1")
		require.NoError(t, err)

		_, err = ledger.Reset(ctx, admin)
		require.NoError(t, err)

		_, err = ledger.CastVote(ctx, "v1", "B", "v1")
		assert.NoError(t, err)
	})

	t.Run("requires the admin capability", func(t *testing.T) {
		ledger, store := newLedger(t)
		_, err := ledger.CastVote(ctx, "v1", "A", "v1")
		require.NoError(t, err)

		_, err = ledger.Reset(ctx, nil)
		assert.ErrorIs(t, err, vote.ErrPermissionDenied)

		_, err = ledger.Reset(ctx, capability(false))
		assert.ErrorIs(t, err, vote.ErrPermissionDenied)

		votes, _ := store.List(ctx)
		assert.Len(t, votes, 1)
	})

	t.Run("storage failure surfaces as unavailable", func(t *testing.T) {
		logger.InitializeWithWriter(io.Discard, "error")
		store := &faultyStore{VoteStore: memory.NewVoteStore(), deleteErr: errors.New("batch aborted")}
		ledger := vote.NewLedger(store, testOptions())

		_, err := ledger.Reset(ctx, admin)
		assert.ErrorIs(t, err, vote.ErrUnavailable)
	})
}

func nextSnapshot(t *testing.T, ch <-chan vote.Snapshot, want func(vote.Snapshot) bool) vote.Snapshot {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case snap, ok := <-ch:
			require.True(t, ok, "snapshot stream closed")
			if want(snap) {
				return snap
			}
		case <-deadline:
			t.Fatal("timed out waiting for snapshot")
		}
	}
}

func TestLedger_Observe(t *testing.T) {
	ledger, store := newLedger(t)
	ctx := context.Background()

	_, err := ledger.CastVote(ctx, "v1", "A", "v1")
	require.NoError(t, err)

	snaps, stop, err := ledger.Observe(ctx)
	require.NoError(t, err)

	first := nextSnapshot(t, snaps, func(vote.Snapshot) bool { return true })
	assert.Equal(t, 1, first.Total())

	_, err = ledger.CastVote(ctx, "v2", "B", "v2")
	require.NoError(t, err)
	snap := nextSnapshot(t, snaps, func(s vote.Snapshot) bool { return s.Total() == 2 })
	v, ok := snap.VoteOf("v2")
	require.True(t, ok)
	assert.Equal(t, "B", v.OptionID)

	_, err = ledger.Reset(ctx, admin)
	require.NoError(t, err)
	nextSnapshot(t, snaps, func(s vote.Snapshot) bool { return s.Total() == 0 })

	stop()
	assert.Eventually(t, func() bool {
		select {
		case _, ok := <-snaps:
			return !ok
		default:
			return false
		}
	}, 2*time.Second, 10*time.Millisecond)
	assert.Eventually(t, func() bool { return store.Subscribers() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestMessage(t *testing.T) {
	errs := []error{
		vote.ErrValidation,
		vote.ErrInvalidOption,
		vote.ErrAlreadyVoted,
		vote.ErrPermissionDenied,
		vote.ErrUnavailable,
	}

	seen := make(map[string]bool)
	for _, err := range errs {
		msg := vote.Message(err)
		assert.NotEmpty(t, msg)
		assert.False(t, seen[msg], "duplicate message for %v", err)
		seen[msg] = true
	}
}

func TestClassify(t *testing.T) {
	assert.Nil(t, vote.Classify(nil))
	assert.ErrorIs(t, vote.Classify(vote.ErrAlreadyVoted), vote.ErrAlreadyVoted)

	err := vote.Classify(errors.New("dial tcp: refused"))
	assert.ErrorIs(t, err, vote.ErrUnavailable)
}
