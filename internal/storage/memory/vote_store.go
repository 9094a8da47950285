// Package memory provides process-local implementations of the storage
// boundaries, used for development and as the test double of the core.
package memory

import (
	"context"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/gravadigital/navidad-api/internal/domain/vote"
	"github.com/gravadigital/navidad-api/internal/logger"
)

// VoteStore keeps ballots in a map keyed by voter
type VoteStore struct {
	mu     sync.RWMutex
	votes  map[string]vote.Vote
	order  []string
	subs   map[int]chan struct{}
	nextID int
	log    *log.Logger
}

var _ vote.Store = (*VoteStore)(nil)

// NewVoteStore creates an empty store
func NewVoteStore() *VoteStore {
	return &VoteStore{
		votes: make(map[string]vote.Vote),
		subs:  make(map[int]chan struct{}),
		log:   logger.Repository("memory_vote"),
	}
}

// Get returns the voter's ballot or vote.ErrNotFound
func (s *VoteStore) Get(ctx context.Context, voterKey string) (*vote.Vote, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.votes[voterKey]
	if !ok {
		return nil, vote.ErrNotFound
	}
	return &v, nil
}

// Create stores v unless the voter already has a ballot (vote.ErrAlreadyVoted)
func (s *VoteStore) Create(ctx context.Context, v *vote.Vote) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	if _, exists := s.votes[v.VoterKey]; exists {
		s.mu.Unlock()
		return vote.ErrAlreadyVoted
	}
	s.votes[v.VoterKey] = *v
	s.order = append(s.order, v.VoterKey)
	s.mu.Unlock()

	s.log.Debug("vote stored", "voter_key", v.VoterKey, "option_id", v.OptionID)
	s.notify()
	return nil
}

// List returns a copy of every ballot, oldest first
func (s *VoteStore) List(ctx context.Context) ([]vote.Vote, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	votes := make([]vote.Vote, 0, len(s.order))
	for _, key := range s.order {
		votes = append(votes, s.votes[key])
	}
	return votes, nil
}

// DeleteAll empties the store and returns how many ballots it held
func (s *VoteStore) DeleteAll(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	count := len(s.votes)
	s.votes = make(map[string]vote.Vote)
	s.order = nil
	s.mu.Unlock()

	s.log.Debug("votes cleared", "deleted", count)
	if count > 0 {
		s.notify()
	}
	return count, nil
}

// Watch registers a change listener. Signals are coalesced: a listener that
// has not drained the previous signal receives no second one.
func (s *VoteStore) Watch(ctx context.Context) (<-chan struct{}, error) {
	ch := make(chan struct{}, 1)

	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = ch
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		s.mu.Lock()
		delete(s.subs, id)
		close(ch)
		s.mu.Unlock()
	}()

	return ch, nil
}

// Health fails only when ctx is done
func (s *VoteStore) Health(ctx context.Context) error {
	return ctx.Err()
}

// Subscribers reports the number of active watchers
func (s *VoteStore) Subscribers() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.subs)
}

func (s *VoteStore) notify() {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, ch := range s.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
