package devicestate

import (
	"fmt"

	"github.com/fadliRafidan/smart-lock-api/pkg/model"
	"github.com/fadliRafidan/smart-lock-api/pkg/storage"
	"github.com/pkg/errors"
)

// ErrNotFound is returned when no device has the requested id
var ErrNotFound = storage.ErrNotFound

// ErrAlreadyExists is returned when provisioning a device id that is taken
var ErrAlreadyExists = storage.ErrAlreadyExists

// ConflictError is returned when the caller's expected version no longer
// matches the stored one. Current is the device as committed after the
// rejected attempt.
type ConflictError struct {
	ExpectedVersion int64
	Current         model.Device
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("version conflict: device %s expected version %d, current version %d",
		e.Current.ID, e.ExpectedVersion, e.Current.VersionID)
}

// IsConflict reports whether err is a version conflict and returns it
func IsConflict(err error) (*ConflictError, bool) {
	var c *ConflictError
	if errors.As(err, &c) {
		return c, true
	}
	return nil, false
}

// Outcome classifies the result of an operation for callers that need to
// tell documented outcomes apart from infrastructure failures.
type Outcome int

const (
	OutcomeSuccess Outcome = iota
	OutcomeNotFound
	OutcomeConflict
	OutcomeTransientFailure
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeNotFound:
		return "not_found"
	case OutcomeConflict:
		return "conflict"
	default:
		return "transient_failure"
	}
}

// OutcomeOf maps an error returned by this package to its Outcome. Anything
// that is neither a missing device nor a conflict is a transient failure.
func OutcomeOf(err error) Outcome {
	if err == nil {
		return OutcomeSuccess
	}
	if errors.Is(err, ErrNotFound) {
		return OutcomeNotFound
	}
	if _, ok := IsConflict(err); ok {
		return OutcomeConflict
	}
	return OutcomeTransientFailure
}
