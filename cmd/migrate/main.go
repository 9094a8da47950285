package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/gravadigital/navidad-api/internal/config"
	"github.com/gravadigital/navidad-api/internal/domain/roster"
	"github.com/gravadigital/navidad-api/internal/logger"
	"github.com/gravadigital/navidad-api/internal/storage/migrations"
	"github.com/gravadigital/navidad-api/internal/storage/postgres"
	"gorm.io/gorm"
)

func main() {
	cfg := config.Load()

	logger.Initialize(cfg.Server.LogLevel)
	log := logger.Migration()

	rollback := flag.Bool("rollback", false, "Rollback the last migration")
	status := flag.Bool("status", false, "List applied and pending migrations, then exit")
	seed := flag.Bool("seed", false, "Create a participant account for every roster name (uses SHARED_PASSWORD)")
	flag.Parse()

	log.Info("Starting migration process", "rollback", *rollback, "seed", *seed)

	db, err := postgres.Connect(context.Background(), cfg)
	if err != nil {
		log.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer postgres.Close(db)

	if *status {
		printStatus(db)
		return
	}

	if *rollback {
		log.Info("Rolling back migrations...")
		err := migrations.RollbackMigration(db)
		switch {
		case errors.Is(err, migrations.ErrNothingToRollback):
			log.Warn("Nothing to roll back")
		case err != nil:
			log.Error("Migration rollback failed", "error", err)
			os.Exit(1)
		default:
			log.Info("Migration rollback completed successfully")
		}
	} else {
		log.Info("Running migrations...")
		if err := migrations.RunMigrations(db); err != nil {
			log.Error("Migration failed", "error", err)
			os.Exit(1)
		}
		log.Info("Migrations completed successfully")
	}

	if *seed {
		r, err := roster.New(cfg.Voting.Roster)
		if err != nil {
			log.Error("Invalid roster", "error", err)
			os.Exit(1)
		}
		created, err := migrations.SeedParticipants(db, r, cfg.Voting.EmailDomain, cfg.Voting.SharedPassword)
		if err != nil {
			log.Error("Seeding participants failed", "error", err)
			os.Exit(1)
		}
		log.Info("Participants seeded", "created", created, "roster_size", r.Size())
	}

	fmt.Println("Migration process completed!")
}

func printStatus(db *gorm.DB) {
	log := logger.Migration()

	applied, err := migrations.Status(db)
	if err != nil {
		log.Error("Failed to read migration history", "error", err)
		os.Exit(1)
	}
	pending, err := migrations.Pending(db)
	if err != nil {
		log.Error("Failed to compute pending migrations", "error", err)
		os.Exit(1)
	}

	for _, a := range applied {
		fmt.Printf("  applied  %s  %-32s %s\n", a.ID, a.Name, a.AppliedAt.Format("2006-01-02 15:04:05"))
	}
	for _, m := range pending {
		fmt.Printf("  pending  %s  %s\n", m.ID, m.Name)
	}
}
