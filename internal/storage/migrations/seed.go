package migrations

import (
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/gravadigital/navidad-api/internal/auth"
	"github.com/gravadigital/navidad-api/internal/domain/participant"
	"github.com/gravadigital/navidad-api/internal/domain/roster"
	"github.com/gravadigital/navidad-api/internal/logger"
)

// SeedParticipants provisions one credential per roster name, all sharing
// password. Existing emails are left untouched, so re-seeding keeps voter
// keys stable. It returns the number of participants inserted.
func SeedParticipants(db *gorm.DB, r *roster.Roster, emailDomain, password string) (int, error) {
	log := logger.Migration()

	hash, err := auth.HashPassword(password)
	if err != nil {
		return 0, err
	}

	participants := make([]*participant.Participant, 0, r.Size())
	for _, name := range r.Names() {
		p := participant.NewParticipant(name, roster.CredentialEmail(name, emailDomain), hash)
		if err := p.Validate(); err != nil {
			return 0, fmt.Errorf("invalid participant %q: %w", name, err)
		}
		participants = append(participants, p)
	}

	result := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "email"}},
		DoNothing: true,
	}).Create(&participants)
	if result.Error != nil {
		log.Error("Failed to seed participants", "error", result.Error)
		return 0, fmt.Errorf("failed to seed participants: %w", result.Error)
	}

	log.Info("Participants seeded", "inserted", result.RowsAffected, "roster_size", r.Size())
	return int(result.RowsAffected), nil
}
