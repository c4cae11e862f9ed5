package audit

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	ActionCalculationSaved   = "salary.calculation.saved"
	ActionCalculationDeleted = "salary.calculation.deleted"
	ActionRetentionRun       = "salary.retention.run"

	EntityCalculation = "salary_calculation"
	EntityJob         = "job"
)

type Event struct {
	ActorID    string
	Action     string
	EntityType string
	EntityID   string
	RequestID  string
	IP         string
	Details    any
}

type Recorder interface {
	Record(ctx context.Context, evt Event) error
}

type Service struct {
	DB *pgxpool.Pool
}

func New(db *pgxpool.Pool) *Service {
	return &Service{DB: db}
}

// Record stores evt. Salary figures never go into Details.
func (s *Service) Record(ctx context.Context, evt Event) error {
	var details []byte
	if evt.Details != nil {
		payload, err := json.Marshal(evt.Details)
		if err != nil {
			return err
		}
		details = payload
	}
	_, err := s.DB.Exec(ctx, `
    INSERT INTO audit_events (actor_user_id, action, entity_type, entity_id, details_json, request_id, ip)
    VALUES ($1,$2,$3,$4,$5,$6,$7)
  `, nullIfEmpty(evt.ActorID), evt.Action, evt.EntityType, evt.EntityID, details, evt.RequestID, evt.IP)
	return err
}

type Filter struct {
	Action     string
	EntityType string
	ActorID    string
}

// StoredEvent is an audit row as read back for review.
type StoredEvent struct {
	ID         string          `json:"id"`
	ActorID    string          `json:"actorUserId"`
	Action     string          `json:"action"`
	EntityType string          `json:"entityType"`
	EntityID   string          `json:"entityId"`
	RequestID  string          `json:"requestId"`
	IP         string          `json:"ip"`
	Details    json.RawMessage `json:"details,omitempty"`
	CreatedAt  time.Time       `json:"createdAt"`
}

func (f Filter) where() (string, []any) {
	var clauses []string
	var args []any
	add := func(column, value string) {
		if value == "" {
			return
		}
		args = append(args, value)
		clauses = append(clauses, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	add("action", f.Action)
	add("entity_type", f.EntityType)
	add("actor_user_id::text", f.ActorID)
	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func (s *Service) Count(ctx context.Context, filter Filter) (int, error) {
	where, args := filter.where()
	var total int
	err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM audit_events"+where, args...).Scan(&total)
	return total, err
}

// List returns matching events newest first. A limit of zero lists them all.
func (s *Service) List(ctx context.Context, filter Filter, includeDetails bool, limit, offset int) ([]StoredEvent, error) {
	where, args := filter.where()
	query := `
    SELECT id::text, COALESCE(actor_user_id::text, ''), action, entity_type, entity_id, request_id, ip, details_json, created_at
    FROM audit_events` + where + `
    ORDER BY created_at DESC`
	if limit > 0 {
		args = append(args, limit, offset)
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	}
	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []StoredEvent
	for rows.Next() {
		var evt StoredEvent
		var details []byte
		if err := rows.Scan(&evt.ID, &evt.ActorID, &evt.Action, &evt.EntityType, &evt.EntityID, &evt.RequestID, &evt.IP, &details, &evt.CreatedAt); err != nil {
			return nil, err
		}
		if includeDetails && len(details) > 0 {
			evt.Details = json.RawMessage(details)
		}
		out = append(out, evt)
	}
	return out, rows.Err()
}

func nullIfEmpty(value string) any {
	if value == "" {
		return nil
	}
	return value
}

// Discard drops every event.
type Discard struct{}

func (Discard) Record(context.Context, Event) error { return nil }
