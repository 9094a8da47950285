package vote

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/gravadigital/navidad-api/internal/domain/option"
	"github.com/gravadigital/navidad-api/internal/logger"
)

// Ledger is the authoritative voter -> option mapping. It enforces one
// ballot per voter key on top of any Store.
type Ledger struct {
	store   Store
	options *option.Set
	log     *log.Logger
}

// NewLedger creates a ledger over store accepting ballots for options
func NewLedger(store Store, options *option.Set) *Ledger {
	return &Ledger{
		store:   store,
		options: options,
		log:     logger.Ledger(),
	}
}

// Options returns the option set ballots are validated against
func (l *Ledger) Options() *option.Set {
	return l.options
}

// CastVote records the voter's single ballot. A second call for the same
// voter key fails with ErrAlreadyVoted and leaves the first ballot intact.
func (l *Ledger) CastVote(ctx context.Context, voterKey, optionID, displayName string) (*Vote, error) {
	optionID = strings.TrimSpace(optionID)
	if optionID == "" {
		return nil, fmt.Errorf("%w: no option selected", ErrValidation)
	}
	if !l.options.Contains(optionID) {
		return nil, fmt.Errorf("%w: %w: %s", ErrValidation, ErrInvalidOption, optionID)
	}
	if strings.TrimSpace(voterKey) == "" {
		l.log.Error("vote rejected: no authenticated voter", "option_id", optionID)
		return nil, fmt.Errorf("%w: voter is not authenticated", ErrPermissionDenied)
	}

	existing, err := l.store.Get(ctx, voterKey)
	switch {
	case err == nil:
		l.log.Info("vote rejected: voter already voted", "voter_key", voterKey, "option_id", existing.OptionID)
		return nil, ErrAlreadyVoted
	case errors.Is(err, ErrNotFound):
	default:
		return nil, l.fail("failed to check existing vote", err, "voter_key", voterKey)
	}

	ballot := NewVote(voterKey, optionID, displayName)
	if err := ballot.Validate(); err != nil {
		return nil, err
	}

	if err := l.store.Create(ctx, ballot); err != nil {
		if errors.Is(err, ErrAlreadyVoted) {
			l.log.Info("vote rejected: concurrent ballot for voter", "voter_key", voterKey)
			return nil, ErrAlreadyVoted
		}
		return nil, l.fail("failed to store vote", err, "voter_key", voterKey)
	}

	l.log.Info("vote cast", "voter_key", voterKey, "option_id", optionID, "user_name", ballot.UserName)
	return ballot, nil
}

// Reset clears every ballot, starting a new round. Only principals holding
// the reset capability may call it. An empty ledger yields 0 without error.
func (l *Ledger) Reset(ctx context.Context, actor ResetAuthorizer) (int, error) {
	if actor == nil || !actor.CanResetLedger() {
		l.log.Error("ledger reset rejected: caller lacks admin capability")
		return 0, fmt.Errorf("%w: ledger reset requires admin rights", ErrPermissionDenied)
	}

	count, err := l.store.DeleteAll(ctx)
	if err != nil {
		return 0, l.fail("failed to reset ledger", err)
	}

	l.log.Warn("ledger reset", "deleted", count)
	return count, nil
}

// VoteOf returns the voter's ballot or ErrNotFound
func (l *Ledger) VoteOf(ctx context.Context, voterKey string) (*Vote, error) {
	v, err := l.store.Get(ctx, voterKey)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, l.fail("failed to read vote", err, "voter_key", voterKey)
	}
	return v, nil
}

// Snapshot reads the whole ledger once
func (l *Ledger) Snapshot(ctx context.Context) (Snapshot, error) {
	votes, err := l.store.List(ctx)
	if err != nil {
		return Snapshot{}, l.fail("failed to list votes", err)
	}
	return NewSnapshot(votes), nil
}

// Observe streams full ledger snapshots: the current one immediately, then a
// fresh one after every mutation. Only the latest undelivered snapshot is
// kept. The stream ends when ctx is cancelled or the returned stop func is
// called; calling Observe again starts a new stream.
func (l *Ledger) Observe(ctx context.Context) (<-chan Snapshot, func(), error) {
	ctx, cancel := context.WithCancel(ctx)

	changes, err := l.store.Watch(ctx)
	if err != nil {
		cancel()
		return nil, nil, l.fail("failed to watch votes", err)
	}

	out := make(chan Snapshot, 1)
	go func() {
		defer close(out)

		publish := func() bool {
			snap, err := l.Snapshot(ctx)
			if err != nil {
				// skip this round; the next change signal retries
				return ctx.Err() == nil
			}
			select {
			case <-out:
			default:
			}
			select {
			case out <- snap:
				return true
			case <-ctx.Done():
				return false
			}
		}

		if !publish() {
			return
		}
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-changes:
				if !ok || !publish() {
					return
				}
			}
		}
	}()

	return out, cancel, nil
}

// Health checks the underlying store
func (l *Ledger) Health(ctx context.Context) error {
	if err := l.store.Health(ctx); err != nil {
		return Classify(err)
	}
	return nil
}

func (l *Ledger) fail(msg string, err error, keyvals ...any) error {
	err = Classify(err)
	if errors.Is(err, ErrPermissionDenied) || errors.Is(err, ErrUnavailable) {
		l.log.Error(msg, append(keyvals, "error", err)...)
	}
	return err
}
