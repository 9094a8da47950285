package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"gorm.io/gorm"

	"github.com/gravadigital/navidad-api/internal/auth"
	"github.com/gravadigital/navidad-api/internal/config"
	"github.com/gravadigital/navidad-api/internal/domain/vote"
	"github.com/gravadigital/navidad-api/internal/logger"
)

// Container wires the postgres-backed repositories and the change notifier
type Container struct {
	db           *gorm.DB
	log          *log.Logger
	notifier     *Notifier
	stopNotifier context.CancelFunc
	votes        *PostgresVoteRepository
	participants *PostgresParticipantRepository
}

// NewContainer connects, migrates and starts listening for vote changes
func NewContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	log := logger.Repository("postgres_container")
	log.Info("Initializing PostgreSQL repository container...")

	db, err := Connect(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := AutoMigrate(ctx, db); err != nil {
		_ = Close(db)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	notifier, err := NewNotifier(cfg.GetDatabaseURL())
	if err != nil {
		_ = Close(db)
		return nil, fmt.Errorf("failed to start vote notifier: %w", err)
	}

	runCtx, stop := context.WithCancel(context.Background())
	go notifier.Run(runCtx)

	c := &Container{
		db:           db,
		log:          log,
		notifier:     notifier,
		stopNotifier: stop,
		votes:        NewPostgresVoteRepository(db, notifier),
		participants: NewPostgresParticipantRepository(db),
	}

	log.Info("PostgreSQL repository container initialized successfully")
	return c, nil
}

// NewContainerWithDB creates a container over an existing connection, without change notifications
func NewContainerWithDB(db *gorm.DB) *Container {
	return &Container{
		db:           db,
		log:          logger.Repository("postgres_container"),
		votes:        NewPostgresVoteRepository(db, nil),
		participants: NewPostgresParticipantRepository(db),
	}
}

// Votes returns the vote store
func (c *Container) Votes() vote.Store {
	return c.votes
}

// Authenticator returns the participant credential checker
func (c *Container) Authenticator() auth.Authenticator {
	return c.participants
}

// Participants returns the participant repository
func (c *Container) Participants() ParticipantRepository {
	return c.participants
}

// DB returns the underlying database connection
func (c *Container) DB() *gorm.DB {
	return c.db
}

// Health checks the connection and that both tables answer
func (c *Container) Health(ctx context.Context) error {
	if err := HealthCheck(ctx, c.db); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}

	for _, table := range []string{"votes", "participants"} {
		var count int64
		if err := c.db.WithContext(ctx).Table(table).Count(&count).Error; err != nil {
			c.log.Error("Repository health check failed", "table", table, "error", err)
			return fmt.Errorf("table %s health check failed: %w", table, err)
		}
	}

	stats := Stats(c.db)
	c.log.Debug("Database connection metrics",
		"open_connections", stats.OpenConnections,
		"in_use_connections", stats.InUse,
		"idle_connections", stats.Idle)
	return nil
}

// Close stops the notifier and closes the database
func (c *Container) Close() error {
	c.log.Info("Closing PostgreSQL repository container...")

	var errs []error
	if c.notifier != nil {
		c.stopNotifier()
		if err := c.notifier.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close notifier: %w", err))
		}
	}
	if err := Close(c.db); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
