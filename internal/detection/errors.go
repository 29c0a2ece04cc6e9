package detection

import (
	"errors"
	"fmt"
)

var (
	// ErrCollaborator marks failures of the settings provider, locator, lock
	// or stores. The caller owns retry policy; the engine never retries.
	ErrCollaborator = errors.New("detection collaborator failure")

	// ErrInvariantViolation marks storage states the state machine forbids.
	// The user's update is refused rather than repaired.
	ErrInvariantViolation = errors.New("detection invariant violation")

	// ErrInvalidSettings is returned when the provider hands out thresholds
	// that break their documented relations.
	ErrInvalidSettings = errors.New("invalid detection settings")
)

// CollaboratorError wraps a failed call to an external dependency
type CollaboratorError struct {
	Op  string
	Err error
}

func (e *CollaboratorError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *CollaboratorError) Unwrap() []error {
	return []error{ErrCollaborator, e.Err}
}

// InvariantError describes an internal-consistency defect for one user
type InvariantError struct {
	UserID  string
	PlaceID int64
	Detail  string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("invariant violation for user %s place %d: %s", e.UserID, e.PlaceID, e.Detail)
}

func (e *InvariantError) Unwrap() error {
	return ErrInvariantViolation
}

func collaboratorErr(op string, err error) error {
	if err == nil {
		return nil
	}
	var ce *CollaboratorError
	var ie *InvariantError
	if errors.As(err, &ce) || errors.As(err, &ie) {
		return err
	}
	return &CollaboratorError{Op: op, Err: err}
}
