package vote

import (
	"fmt"
	"strings"
	"time"
)

// AnonymousName is stored when a voter has no resolvable display name
const AnonymousName = "Anónimo"

// Vote is a single ballot. VoterKey is the document key: one record per voter.
type Vote struct {
	VoterKey string    `json:"voter_key" gorm:"column:voter_key;type:text;primaryKey"`
	OptionID string    `json:"option_id" gorm:"column:option_id;type:text;not null"`
	UserName string    `json:"user_name" gorm:"column:user_name;type:text;not null"`
	VotedAt  time.Time `json:"voted_at" gorm:"column:voted_at;autoCreateTime"`
}

// TableName overrides the table name
func (Vote) TableName() string {
	return "votes"
}

// NewVote builds a ballot, substituting AnonymousName for a blank display name
func NewVote(voterKey, optionID, displayName string) *Vote {
	name := strings.TrimSpace(displayName)
	if name == "" {
		name = AnonymousName
	}

	return &Vote{
		VoterKey: voterKey,
		OptionID: optionID,
		UserName: name,
		VotedAt:  time.Now().UTC(),
	}
}

// Validate checks if the vote data is valid
func (v *Vote) Validate() error {
	if strings.TrimSpace(v.VoterKey) == "" {
		return fmt.Errorf("%w: voter_key is required", ErrValidation)
	}
	if strings.TrimSpace(v.OptionID) == "" {
		return fmt.Errorf("%w: option_id is required", ErrValidation)
	}
	return nil
}

// Snapshot is a complete point-in-time copy of the ledger
type Snapshot struct {
	Votes   []Vote    `json:"votes"`
	TakenAt time.Time `json:"taken_at"`
}

// NewSnapshot copies votes into a snapshot
func NewSnapshot(votes []Vote) Snapshot {
	return Snapshot{
		Votes:   append([]Vote{}, votes...),
		TakenAt: time.Now().UTC(),
	}
}

// Total is the number of ballots in the snapshot
func (s Snapshot) Total() int {
	return len(s.Votes)
}

// VoteOf returns the ballot recorded for voterKey, if any
func (s Snapshot) VoteOf(voterKey string) (Vote, bool) {
	for _, v := range s.Votes {
		if v.VoterKey == voterKey {
			return v, true
		}
	}
	return Vote{}, false
}
