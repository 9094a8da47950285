package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"gorm.io/gorm"

	"github.com/gravadigital/navidad-api/internal/auth"
	"github.com/gravadigital/navidad-api/internal/domain/participant"
	"github.com/gravadigital/navidad-api/internal/logger"
)

// PostgresParticipantRepository stores participant credentials and
// authenticates logins against them.
type PostgresParticipantRepository struct {
	db  *gorm.DB
	log *log.Logger
}

var _ auth.Authenticator = (*PostgresParticipantRepository)(nil)

// NewPostgresParticipantRepository creates a new PostgreSQL participant repository
func NewPostgresParticipantRepository(db *gorm.DB) *PostgresParticipantRepository {
	return &PostgresParticipantRepository{
		db:  db,
		log: logger.Repository("participant"),
	}
}

// Create inserts a participant credential
func (r *PostgresParticipantRepository) Create(ctx context.Context, p *participant.Participant) error {
	r.log.Debug("Creating participant", "email", p.Email, "name", p.Name)

	if err := p.Validate(); err != nil {
		r.log.Error("Participant validation failed", "error", err)
		return fmt.Errorf("participant validation failed: %w", err)
	}

	if err := r.db.WithContext(ctx).Create(p).Error; err != nil {
		if sqlState(err) == codeUniqueViolation {
			return fmt.Errorf("participant with email %s already exists", p.Email)
		}
		r.log.Error("Failed to create participant", "error", err, "email", p.Email)
		return fmt.Errorf("failed to create participant: %w", err)
	}

	r.log.Info("Participant created successfully", "voter_key", p.VoterKey, "email", p.Email)
	return nil
}

// GetByEmail returns auth.ErrInvalidCredentials for an unknown email
func (r *PostgresParticipantRepository) GetByEmail(ctx context.Context, email string) (*participant.Participant, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, errors.New("email cannot be empty")
	}

	var p participant.Participant
	if err := r.db.WithContext(ctx).Where("email = ?", email).Take(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			r.log.Debug("Participant not found", "email", email)
			return nil, auth.ErrInvalidCredentials
		}
		r.log.Error("Failed to get participant by email", "email", email, "error", err)
		return nil, classifyError("get participant", err)
	}
	return &p, nil
}

// GetAll lists every participant
func (r *PostgresParticipantRepository) GetAll(ctx context.Context) ([]*participant.Participant, error) {
	var participants []*participant.Participant
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&participants).Error; err != nil {
		r.log.Error("Failed to get all participants", "error", err)
		return nil, classifyError("list participants", err)
	}

	r.log.Debug("Retrieved all participants", "count", len(participants))
	return participants, nil
}

// Authenticate implements auth.Authenticator
func (r *PostgresParticipantRepository) Authenticate(ctx context.Context, email, password string) (*auth.Identity, error) {
	p, err := r.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if err := auth.ComparePassword(p.PasswordHash, password); err != nil {
		return nil, err
	}
	return &auth.Identity{VoterKey: p.VoterKey.String(), Email: p.Email}, nil
}
