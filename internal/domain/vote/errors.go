package vote

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation covers malformed input such as a missing selection
	ErrValidation = errors.New("validation error")
	// ErrInvalidOption is returned for option ids outside the configured set
	ErrInvalidOption = errors.New("invalid option")
	// ErrAlreadyVoted is returned when the voter already has a ballot in the ledger
	ErrAlreadyVoted = errors.New("already voted")
	// ErrPermissionDenied is an authorization failure, never worth retrying
	ErrPermissionDenied = errors.New("permission denied")
	// ErrUnavailable is a transient store failure; callers may retry
	ErrUnavailable = errors.New("vote store unavailable")
	// ErrNotFound is returned by stores when a voter has no ballot
	ErrNotFound = errors.New("vote not found")
)

var known = []error{ErrValidation, ErrInvalidOption, ErrAlreadyVoted, ErrPermissionDenied, ErrUnavailable, ErrNotFound}

// Classify leaves errors from the taxonomy untouched and marks everything
// else as ErrUnavailable.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	for _, k := range known {
		if errors.Is(err, k) {
			return err
		}
	}
	return fmt.Errorf("%w: %w", ErrUnavailable, err)
}

// Message returns the user-facing text for a ledger error
func Message(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidOption):
		return "The selected option does not exist. Please choose one of the listed proposals."
	case errors.Is(err, ErrValidation):
		return "Please select an option before voting."
	case errors.Is(err, ErrAlreadyVoted):
		return "You have already voted. Only one vote per person is allowed."
	case errors.Is(err, ErrPermissionDenied):
		return "You are not allowed to perform this action."
	case errors.Is(err, ErrNotFound):
		return "No vote has been recorded yet."
	case errors.Is(err, ErrUnavailable):
		return "The voting service is unavailable right now. Please try again in a moment."
	default:
		return "An unexpected error occurred."
	}
}
