package api

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goccy/go-json"
)

func TestFailWithDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	FailWithDetails(rec, http.StatusBadRequest, "validation_error", "payload validation failed", map[string]any{"fields": []string{"basic"}}, "req-1")

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("expected json content type, got %q", ct)
	}
	var env Envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if env.Success || env.Error == nil || env.Error.Code != "validation_error" {
		t.Fatalf("unexpected envelope: %+v", env)
	}
	if env.RequestID != "req-1" {
		t.Fatalf("expected request id, got %q", env.RequestID)
	}
	if _, ok := env.Error.Details["fields"]; !ok {
		t.Fatalf("expected fields detail, got %+v", env.Error.Details)
	}
}

func TestDecodeRejectsUnknownFields(t *testing.T) {
	var dst struct {
		Email string `json:"email"`
	}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"a@example.com","extra":1}`))
	if err := Decode(req, &dst); err == nil {
		t.Fatal("expected unknown field to be rejected")
	}
}

func TestDecodeRejectsTrailingData(t *testing.T) {
	var dst struct {
		Basic int `json:"basic"`
	}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"basic":1} {"basic":2}`))
	if err := Decode(req, &dst); !errors.Is(err, ErrTrailingData) {
		t.Fatalf("expected ErrTrailingData, got %v", err)
	}

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{\"basic\":1}\n"))
	if err := Decode(req, &dst); err != nil || dst.Basic != 1 {
		t.Fatalf("expected single object to decode, got %v (%d)", err, dst.Basic)
	}
}
