package salary

import (
	"errors"
	"strings"
)

var (
	ErrInvalidInput        = errors.New("invalid input")
	ErrUnknownRegime       = errors.New("unknown tax regime")
	ErrCalculationNotFound = errors.New("salary calculation not found")
)

type FieldIssue struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// InputError lists every rejected field of a single request.
type InputError struct {
	Issues []FieldIssue
}

func (e *InputError) Error() string {
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		parts = append(parts, issue.Field+" "+issue.Reason)
	}
	return ErrInvalidInput.Error() + ": " + strings.Join(parts, "; ")
}

func (e *InputError) Unwrap() error {
	return ErrInvalidInput
}
