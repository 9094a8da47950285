package migrations

import (
	"github.com/gravadigital/navidad-api/internal/domain/participant"
	"github.com/gravadigital/navidad-api/internal/domain/vote"
)

// AllModels returns the tables managed by gorm, in creation order
func AllModels() []any {
	return []any{
		&participant.Participant{},
		&vote.Vote{},
	}
}
