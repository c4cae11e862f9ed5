package shared

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"inhand/internal/domain/salary"
)

func TestParsePagination(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		wantLimit  int
		wantOffset int
	}{
		{name: "defaults", query: "", wantLimit: 20, wantOffset: 0},
		{name: "explicit", query: "?limit=5&offset=10", wantLimit: 5, wantOffset: 10},
		{name: "capped", query: "?limit=500", wantLimit: 100, wantOffset: 0},
		{name: "invalid ignored", query: "?limit=-1&offset=x", wantLimit: 20, wantOffset: 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/items"+tc.query, nil)
			p := ParsePagination(req, 20, 100)
			if p.Limit != tc.wantLimit || p.Offset != tc.wantOffset {
				t.Fatalf("expected %d/%d, got %d/%d", tc.wantLimit, tc.wantOffset, p.Limit, p.Offset)
			}
		})
	}
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "198.51.100.7:4321"
	if got := ClientIP(req); got != "198.51.100.7" {
		t.Fatalf("expected remote host, got %q", got)
	}
	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	if got := ClientIP(req); got != "203.0.113.9" {
		t.Fatalf("expected forwarded host, got %q", got)
	}
}

func TestValidatorAddInputError(t *testing.T) {
	v := NewValidator()
	if v.AddInputError(fmt.Errorf("other")) {
		t.Fatal("did not expect plain error to be absorbed")
	}
	err := &salary.InputError{Issues: []salary.FieldIssue{
		{Field: "hra", Reason: "must not be negative"},
		{Field: "basic", Reason: "must not be negative"},
	}}
	if !v.AddInputError(fmt.Errorf("wrapped: %w", err)) {
		t.Fatal("expected input error to be absorbed")
	}
	issues := v.Issues()
	if len(issues) != 2 || issues[0].Field != "basic" {
		t.Fatalf("expected sorted issues, got %+v", issues)
	}
}

func TestValidatorRejectWritesEnvelope(t *testing.T) {
	v := NewValidator()
	v.Required("email", " ", "is required")
	v.MaxLength("label", "abcdef", 3)
	v.Email("email", "Jane <jane@example.com>")

	rec := httptest.NewRecorder()
	if !v.Reject(rec, "req-1") {
		t.Fatal("expected reject")
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if len(v.Issues()) != 3 {
		t.Fatalf("expected 3 issues, got %+v", v.Issues())
	}
}
