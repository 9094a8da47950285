package postgres

import (
	"errors"
	"fmt"

	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/gravadigital/navidad-api/internal/domain/vote"
)

// SQLSTATE codes the ledger distinguishes
const (
	codeUniqueViolation       = "23505"
	codeInsufficientPrivilege = "42501"
)

// sqlStater is implemented by driver errors other than *pq.Error
type sqlStater interface {
	SQLState() string
}

func sqlState(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}
	var st sqlStater
	if errors.As(err, &st) {
		return st.SQLState()
	}
	return ""
}

// classifyError maps a database error onto the ledger error taxonomy.
// Permission failures are never reported as Unavailable.
func classifyError(op string, err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return vote.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%s: %w", op, vote.ErrAlreadyVoted)
	}

	switch sqlState(err) {
	case codeUniqueViolation:
		return fmt.Errorf("%s: %w", op, vote.ErrAlreadyVoted)
	case codeInsufficientPrivilege:
		return fmt.Errorf("%s: %w: %w", op, vote.ErrPermissionDenied, err)
	default:
		return fmt.Errorf("%s: %w: %w", op, vote.ErrUnavailable, err)
	}
}
