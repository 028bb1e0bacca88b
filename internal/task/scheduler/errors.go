package scheduler

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidCadence is matched (errors.Is) by every cadence parse failure.
	ErrInvalidCadence = errors.New("invalid cadence format")
	ErrNoJobs         = errors.New("no schedules registered")
	ErrDuplicateJob   = errors.New("schedule already registered")
)

// SupportedFormats lists example cadence strings accepted by ParseCadence.
var SupportedFormats = []string{"8h", "30m", "09:00", "09:00,15:00"}

// CadenceError describes why a cadence string was rejected.
type CadenceError struct {
	Spec      string
	Reason    string
	Supported []string
}

func (e *CadenceError) Error() string {
	quoted := make([]string, 0, len(e.Supported))
	for _, s := range e.Supported {
		quoted = append(quoted, "'"+s+"'")
	}
	msg := fmt.Sprintf("invalid cadence %q", e.Spec)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if len(quoted) > 0 {
		msg += " (supported formats: " + strings.Join(quoted, ", ") + ")"
	}
	return msg
}

func (e *CadenceError) Is(target error) bool { return target == ErrInvalidCadence }

func invalidCadence(spec, reason string) error {
	return &CadenceError{Spec: spec, Reason: reason, Supported: SupportedFormats}
}
