package application

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrEntityNotFound is returned when a lookup matches no record.
	ErrEntityNotFound = errors.New("entity not found")
	// ErrInvalidPassword is returned when the email exists but the
	// password does not match. Kept distinct from ErrEntityNotFound so
	// callers can render the right message.
	ErrInvalidPassword = errors.New("invalid password")
	// ErrSaveFailed wraps the root cause of a failed transactional write.
	ErrSaveFailed = errors.New("save failed")
)

// ValidationError carries per-field messages from rule evaluation.
type ValidationError struct {
	Details map[string]string
}

func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Details))
	for f := range e.Details {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return "validation failed: " + strings.Join(fields, ", ")
}

func saveFailed(cause error) error {
	return fmt.Errorf("%w: %v", ErrSaveFailed, cause)
}
