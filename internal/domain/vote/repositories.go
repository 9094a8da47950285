package vote

import "context"

// Store is the persistence boundary of the ledger: a collection keyed by voter.
type Store interface {
	// Get returns ErrNotFound when the voter has no ballot.
	Get(ctx context.Context, voterKey string) (*Vote, error)
	// Create inserts a ballot and must fail with ErrAlreadyVoted rather than
	// overwrite an existing record for the same key.
	Create(ctx context.Context, vote *Vote) error
	List(ctx context.Context) ([]Vote, error)
	// DeleteAll removes every ballot in one batch and reports how many were removed.
	DeleteAll(ctx context.Context) (int, error)
	// Watch signals after every mutation. The channel is closed when ctx ends.
	Watch(ctx context.Context) (<-chan struct{}, error)
	Health(ctx context.Context) error
}

// ResetAuthorizer is held by principals allowed to clear the ledger.
type ResetAuthorizer interface {
	CanResetLedger() bool
}
