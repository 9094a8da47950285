package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"github.com/gravadigital/navidad-api/internal/domain/vote"
)

type stateErr string

func (e stateErr) Error() string    { return "driver error " + string(e) }
func (e stateErr) SQLState() string { return string(e) }

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
		not  error
	}{
		{"not found", gorm.ErrRecordNotFound, vote.ErrNotFound, vote.ErrUnavailable},
		{"gorm duplicate", gorm.ErrDuplicatedKey, vote.ErrAlreadyVoted, vote.ErrUnavailable},
		{"pq unique violation", &pq.Error{Code: "23505"}, vote.ErrAlreadyVoted, vote.ErrUnavailable},
		{"pq insufficient privilege", &pq.Error{Code: "42501"}, vote.ErrPermissionDenied, vote.ErrUnavailable},
		{"wrapped pgx-style privilege error", fmt.Errorf("exec: %w", stateErr("42501")), vote.ErrPermissionDenied, vote.ErrUnavailable},
		{"connection failure", &pq.Error{Code: "08006"}, vote.ErrUnavailable, vote.ErrPermissionDenied},
		{"plain error", errors.New("dial tcp: connection refused"), vote.ErrUnavailable, vote.ErrPermissionDenied},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classifyError("op", tt.err)
			assert.ErrorIs(t, got, tt.want)
			assert.NotErrorIs(t, got, tt.not)
		})
	}

	assert.NoError(t, classifyError("op", nil))
}
