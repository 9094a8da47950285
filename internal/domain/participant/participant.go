package participant

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Participant is a roster member's stored credential. VoterKey is the
// stable identity votes are keyed by; Name is only the roster label.
type Participant struct {
	VoterKey     uuid.UUID `json:"voter_key" gorm:"column:voter_key;type:uuid;primaryKey;default:uuid_generate_v4()"`
	Name         string    `json:"name" gorm:"column:name;type:text;not null"`
	Email        string    `json:"email" gorm:"column:email;type:text;not null;uniqueIndex"`
	PasswordHash []byte    `json:"-" gorm:"column:password_hash;type:bytea;not null"`
	CreatedAt    time.Time `json:"created_at" gorm:"column:created_at;autoCreateTime"`
}

// TableName overrides the table name
func (Participant) TableName() string {
	return "participants"
}

// NewParticipant crea un participante con su hash de contraseña
func NewParticipant(name, email string, passwordHash []byte) *Participant {
	return &Participant{
		VoterKey:     uuid.New(),
		Name:         name,
		Email:        strings.ToLower(strings.TrimSpace(email)),
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}
}

// Validate checks the credential record before storing it
func (p *Participant) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return errors.New("name is required")
	}
	if !strings.Contains(p.Email, "@") {
		return errors.New("email must have a valid format")
	}
	if len(p.PasswordHash) == 0 {
		return errors.New("password hash is required")
	}
	return nil
}
