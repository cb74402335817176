package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for the fitting error taxonomy.
// Typed errors below match these with errors.Is.
var (
	// ErrConfiguration is matched by every *ConfigurationError.
	ErrConfiguration = errors.New("pkfit: invalid configuration")

	// ErrInsufficientData is matched by every *InsufficientDataError.
	ErrInsufficientData = errors.New("pkfit: insufficient data")

	// ErrDegenerateGrid is matched by every *DegenerateGridError.
	ErrDegenerateGrid = errors.New("pkfit: degenerate grid")
)

// ConfigurationError reports an invalid grid specification.
// It is raised before any candidate is evaluated.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("invalid configuration: %s", e.Reason)
	}
	return fmt.Sprintf("invalid configuration: %s: %s", e.Field, e.Reason)
}

func (e *ConfigurationError) Is(target error) bool { return target == ErrConfiguration }

// InsufficientDataError reports a subject series (or pooled set) with no
// observations to fit.
type InsufficientDataError struct {
	SubjectID string
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("subject %q: no observations to fit", e.SubjectID)
}

func (e *InsufficientDataError) Is(target error) bool { return target == ErrInsufficientData }

// DegenerateGridError reports a grid in which no candidate produced a
// finite objective, e.g. every CL or V value is non-positive.
type DegenerateGridError struct {
	SubjectID  string
	Candidates int
}

func (e *DegenerateGridError) Error() string {
	return fmt.Sprintf("subject %q: none of %d grid candidates is valid", e.SubjectID, e.Candidates)
}

func (e *DegenerateGridError) Is(target error) bool { return target == ErrDegenerateGrid }

// Kind names the error class of err for failure reporting.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrConfiguration):
		return "ConfigurationError"
	case errors.Is(err, ErrInsufficientData):
		return "InsufficientDataError"
	case errors.Is(err, ErrDegenerateGrid):
		return "DegenerateGridError"
	default:
		return "Error"
	}
}
