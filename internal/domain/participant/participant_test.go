package participant

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestNewParticipant(t *testing.T) {
	p := NewParticipant("Toñi", " TONI@navidad-votes.com ", []byte("hash"))

	assert.NotEqual(t, uuid.Nil, p.VoterKey)
	assert.Equal(t, "toni@navidad-votes.com", p.Email)
	assert.NoError(t, p.Validate())
}

func TestParticipant_Validate(t *testing.T) {
	tests := []struct {
		name string
		p    Participant
	}{
		{"missing name", Participant{Email: "a@b", PasswordHash: []byte("h")}},
		{"bad email", Participant{Name: "Goyo", Email: "goyo", PasswordHash: []byte("h")}},
		{"missing hash", Participant{Name: "Goyo", Email: "goyo@b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, tt.p.Validate())
		})
	}
}
