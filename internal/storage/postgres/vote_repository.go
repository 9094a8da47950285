package postgres

import (
	"context"
	"errors"

	"github.com/charmbracelet/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/gravadigital/navidad-api/internal/domain/vote"
	"github.com/gravadigital/navidad-api/internal/logger"
)

// PostgresVoteRepository implements vote.Store on the votes table
type PostgresVoteRepository struct {
	db       *gorm.DB
	notifier *Notifier
	log      *log.Logger
}

var _ vote.Store = (*PostgresVoteRepository)(nil)

// NewPostgresVoteRepository creates a new PostgreSQL vote repository.
// notifier may be nil when the repository is used without Watch.
func NewPostgresVoteRepository(db *gorm.DB, notifier *Notifier) *PostgresVoteRepository {
	return &PostgresVoteRepository{
		db:       db,
		notifier: notifier,
		log:      logger.Repository("vote"),
	}
}

// Get returns the voter's ballot or vote.ErrNotFound
func (r *PostgresVoteRepository) Get(ctx context.Context, voterKey string) (*vote.Vote, error) {
	r.log.Debug("retrieving vote", "voter_key", voterKey)

	var v vote.Vote
	err := r.db.WithContext(ctx).Where("voter_key = ?", voterKey).Take(&v).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, vote.ErrNotFound
		}
		r.log.Error("failed to retrieve vote", "voter_key", voterKey, "error", err)
		return nil, classifyError("get vote", err)
	}
	return &v, nil
}

// Create inserts the ballot unless the voter key already has one. The
// conflict is resolved by the primary key, so concurrent casts for one
// voter cannot both succeed.
func (r *PostgresVoteRepository) Create(ctx context.Context, v *vote.Vote) error {
	r.log.Debug("creating vote", "voter_key", v.VoterKey, "option_id", v.OptionID)

	if err := v.Validate(); err != nil {
		return err
	}

	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "voter_key"}}, DoNothing: true}).
		Create(v)
	if result.Error != nil {
		r.log.Error("failed to create vote", "voter_key", v.VoterKey, "error", result.Error)
		return classifyError("create vote", result.Error)
	}
	if result.RowsAffected == 0 {
		return vote.ErrAlreadyVoted
	}

	r.log.Info("vote created successfully", "voter_key", v.VoterKey, "option_id", v.OptionID)
	return nil
}

// List returns every ballot ordered by voted_at
func (r *PostgresVoteRepository) List(ctx context.Context) ([]vote.Vote, error) {
	var votes []vote.Vote
	if err := r.db.WithContext(ctx).Order("voted_at ASC, voter_key ASC").Find(&votes).Error; err != nil {
		r.log.Error("failed to list votes", "error", err)
		return nil, classifyError("list votes", err)
	}

	r.log.Debug("votes listed", "count", len(votes))
	return votes, nil
}

// DeleteAll clears the table in one transaction. The EXCLUSIVE lock waits
// for in-flight inserts and holds new ones until commit, so no ballot can
// land inside the reset and survive it.
func (r *PostgresVoteRepository) DeleteAll(ctx context.Context) (int, error) {
	var deleted int64

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("LOCK TABLE votes IN EXCLUSIVE MODE").Error; err != nil {
			return err
		}

		result := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&vote.Vote{})
		if result.Error != nil {
			return result.Error
		}
		deleted = result.RowsAffected
		return nil
	})
	if err != nil {
		r.log.Error("failed to delete votes", "error", err)
		return 0, classifyError("delete votes", err)
	}

	r.log.Info("votes deleted", "count", deleted)
	return int(deleted), nil
}

// Watch subscribes to the votes_changed notifications
func (r *PostgresVoteRepository) Watch(ctx context.Context) (<-chan struct{}, error) {
	if r.notifier == nil {
		return nil, errors.New("vote repository has no change notifier")
	}
	return r.notifier.Subscribe(ctx), nil
}

// Health pings the database
func (r *PostgresVoteRepository) Health(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return classifyError("health", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return classifyError("health", err)
	}
	return nil
}
