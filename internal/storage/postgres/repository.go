package postgres

import (
	"context"

	"github.com/gravadigital/navidad-api/internal/auth"
	"github.com/gravadigital/navidad-api/internal/domain/participant"
)

// ParticipantRepository define los métodos para interactuar con los participantes en la DB.
type ParticipantRepository interface {
	auth.Authenticator
	Create(ctx context.Context, p *participant.Participant) error
	GetByEmail(ctx context.Context, email string) (*participant.Participant, error)
	GetAll(ctx context.Context) ([]*participant.Participant, error)
}
