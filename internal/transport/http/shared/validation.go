package shared

import (
	"errors"
	"net/http"
	"net/mail"
	"sort"
	"strings"
	"unicode/utf8"

	"inhand/internal/domain/salary"
	"inhand/internal/transport/http/api"
)

type ValidationIssue struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// Validator collects field issues for a single request.
type Validator struct {
	issues []ValidationIssue
}

func NewValidator() *Validator {
	return &Validator{}
}

func (v *Validator) Add(field, reason string) {
	if reason = strings.TrimSpace(reason); reason == "" {
		return
	}
	v.issues = append(v.issues, ValidationIssue{Field: strings.TrimSpace(field), Reason: reason})
}

func (v *Validator) Required(field, value, reason string) {
	if strings.TrimSpace(value) == "" {
		v.Add(field, reason)
	}
}

func (v *Validator) MaxLength(field, value string, limit int) {
	if utf8.RuneCountInString(value) > limit {
		v.Add(field, "must be at most "+itoa(limit)+" characters")
	}
}

func (v *Validator) Email(field, value string) {
	addr, err := mail.ParseAddress(strings.TrimSpace(value))
	if err != nil || addr.Name != "" {
		v.Add(field, "must be a valid email address")
	}
}

// AddInputError copies the field issues of a salary input error. It reports
// whether err was one.
func (v *Validator) AddInputError(err error) bool {
	var inputErr *salary.InputError
	if !errors.As(err, &inputErr) {
		return false
	}
	for _, issue := range inputErr.Issues {
		v.Add(issue.Field, issue.Reason)
	}
	return true
}

func (v *Validator) HasIssues() bool {
	return len(v.issues) > 0
}

// Issues returns the collected issues ordered by field.
func (v *Validator) Issues() []ValidationIssue {
	if len(v.issues) == 0 {
		return nil
	}
	out := append([]ValidationIssue(nil), v.issues...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Field != out[j].Field {
			return out[i].Field < out[j].Field
		}
		return out[i].Reason < out[j].Reason
	})
	return out
}

func (v *Validator) Reject(w http.ResponseWriter, requestID string) bool {
	if !v.HasIssues() {
		return false
	}
	FailValidation(w, requestID, v.Issues())
	return true
}

func FailValidation(w http.ResponseWriter, requestID string, issues []ValidationIssue) {
	api.FailWithDetails(w, http.StatusBadRequest, "validation_error", "payload validation failed",
		map[string]any{"fields": issues}, requestID)
}
