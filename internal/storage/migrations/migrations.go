package migrations

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/gravadigital/navidad-api/internal/logger"
)

// lockKey serializes migrators; API replicas all migrate on startup
const lockKey = 741225

// ErrNothingToRollback is returned by RollbackMigration on an empty history
var ErrNothingToRollback = errors.New("no migrations to rollback")

// Migration represents a database migration
type Migration struct {
	ID   string
	Name string
	Up   func(*gorm.DB) error
	Down func(*gorm.DB) error
}

// Applied is a row of the schema_migrations history
type Applied struct {
	ID        string    `gorm:"column:id"`
	Name      string    `gorm:"column:name"`
	AppliedAt time.Time `gorm:"column:applied_at"`
}

// GetMigrations returns all available migrations in order
func GetMigrations() []Migration {
	return []Migration{
		{ID: "001", Name: "create_extensions", Up: migration001Up, Down: migration001Down},
		{ID: "002", Name: "create_ballot_tables", Up: migration002Up, Down: migration002Down},
		{ID: "003", Name: "create_indexes", Up: migration003Up, Down: migration003Down},
		{ID: "004", Name: "create_change_notifications", Up: migration004Up, Down: migration004Down},
	}
}

// RunMigrations applies every pending migration, each in its own transaction
// holding the migration lock.
func RunMigrations(db *gorm.DB) error {
	log := logger.Migration()

	if err := createMigrationsTable(db); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	applied := 0
	for _, m := range GetMigrations() {
		ran, err := apply(db, m)
		if err != nil {
			return err
		}
		if ran {
			applied++
			log.Info("Applied migration", "id", m.ID, "name", m.Name)
		} else {
			log.Debug("Migration already applied, skipping", "id", m.ID)
		}
	}

	log.Info("Schema up to date", "applied", applied)
	return nil
}

func apply(db *gorm.DB, m Migration) (bool, error) {
	ran := false
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := lock(tx); err != nil {
			return err
		}
		done, err := hasBeenRun(tx, m.ID)
		if err != nil || done {
			return err
		}
		if err := m.Up(tx); err != nil {
			return fmt.Errorf("failed to run migration %s: %w", m.ID, err)
		}
		ran = true
		return tx.Exec("INSERT INTO schema_migrations (id, name) VALUES (?, ?)", m.ID, m.Name).Error
	})
	return ran, err
}

// Status lists the applied migrations, oldest first
func Status(db *gorm.DB) ([]Applied, error) {
	if err := createMigrationsTable(db); err != nil {
		return nil, fmt.Errorf("failed to create migrations table: %w", err)
	}

	var rows []Applied
	if err := db.Raw("SELECT id, name, applied_at FROM schema_migrations ORDER BY id").Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to read migration history: %w", err)
	}
	return rows, nil
}

// RollbackMigration reverts the most recently applied migration
func RollbackMigration(db *gorm.DB) error {
	log := logger.Migration()

	var rolledBack Migration
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := lock(tx); err != nil {
			return err
		}

		var last Applied
		res := tx.Raw("SELECT id, name, applied_at FROM schema_migrations ORDER BY id DESC LIMIT 1").Scan(&last)
		if res.Error != nil {
			return fmt.Errorf("failed to get last migration: %w", res.Error)
		}
		if last.ID == "" {
			return ErrNothingToRollback
		}

		m, ok := find(last.ID)
		if !ok {
			return fmt.Errorf("migration %s not found", last.ID)
		}
		if err := m.Down(tx); err != nil {
			return fmt.Errorf("failed to rollback migration %s: %w", m.ID, err)
		}
		rolledBack = m
		return tx.Exec("DELETE FROM schema_migrations WHERE id = ?", m.ID).Error
	})
	if err != nil {
		return err
	}

	log.Info("Rolled back migration", "id", rolledBack.ID, "name", rolledBack.Name)
	return nil
}

func find(id string) (Migration, bool) {
	for _, m := range GetMigrations() {
		if m.ID == id {
			return m, true
		}
	}
	return Migration{}, false
}

func createMigrationsTable(db *gorm.DB) error {
	return db.Exec(`
        CREATE TABLE IF NOT EXISTS schema_migrations (
            id VARCHAR(10) PRIMARY KEY,
            name VARCHAR(255) NOT NULL,
            applied_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
        )
    `).Error
}

// lock takes a transaction-scoped advisory lock, released on commit or rollback
func lock(tx *gorm.DB) error {
	if err := tx.Exec("SELECT pg_advisory_xact_lock(?)", lockKey).Error; err != nil {
		return fmt.Errorf("failed to acquire migration lock: %w", err)
	}
	return nil
}

func hasBeenRun(tx *gorm.DB, id string) (bool, error) {
	var count int64
	if err := tx.Raw("SELECT COUNT(*) FROM schema_migrations WHERE id = ?", id).Scan(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check migration %s: %w", id, err)
	}
	return count > 0, nil
}

// Pending returns the migrations not yet recorded in history
func Pending(db *gorm.DB) ([]Migration, error) {
	applied, err := Status(db)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(applied))
	for _, a := range applied {
		seen[a.ID] = true
	}

	var pending []Migration
	for _, m := range GetMigrations() {
		if !seen[m.ID] {
			pending = append(pending, m)
		}
	}
	return pending, nil
}
