package salaryhandler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"inhand/internal/domain/audit"
	"inhand/internal/domain/auth"
	"inhand/internal/domain/salary"
	"inhand/internal/transport/http/api"
	"inhand/internal/transport/http/middleware"
	"inhand/internal/transport/http/shared"
)

const (
	maxLabelLength = 120
	endpointSave   = "salary.calculations.save"
)

type Calculator interface {
	Calculate(ctx context.Context, c salary.Components, regime salary.Regime) (salary.Breakdown, error)
	Compare(ctx context.Context, c salary.Components) (salary.Comparison, error)
	Save(ctx context.Context, userID, label string, regime salary.Regime, c salary.Components) (salary.Calculation, salary.Breakdown, error)
	Get(ctx context.Context, userID, id string) (salary.Calculation, salary.Breakdown, error)
	List(ctx context.Context, userID string, limit, offset int) ([]salary.CalculationSummary, int, error)
	Delete(ctx context.Context, userID, id string) error
}

type IdempotencyStore interface {
	Check(ctx context.Context, userID, endpoint, key, requestHash string) ([]byte, bool, error)
	Save(ctx context.Context, userID, endpoint, key, requestHash string, response []byte) error
}

type Handler struct {
	Salary      Calculator
	Perms       middleware.PermissionStore
	Audit       audit.Recorder
	Idempotency IdempotencyStore
}

func NewHandler(calc Calculator, perms middleware.PermissionStore, recorder audit.Recorder, idem IdempotencyStore) *Handler {
	if recorder == nil {
		recorder = audit.Discard{}
	}
	return &Handler{Salary: calc, Perms: perms, Audit: recorder, Idempotency: idem}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/salary", func(r chi.Router) {
		r.Get("/regimes", h.handleRegimes)
		r.Post("/calculate", h.handleCalculate)
		r.Post("/compare", h.handleCompare)
		r.With(middleware.RequirePermission(auth.PermHistoryWrite, h.Perms)).Post("/calculations", h.handleSave)
		r.With(middleware.RequirePermission(auth.PermHistoryRead, h.Perms)).Get("/calculations", h.handleList)
		r.With(middleware.RequirePermission(auth.PermHistoryRead, h.Perms)).Get("/calculations/{calculationID}", h.handleGet)
		r.With(middleware.RequirePermission(auth.PermHistoryRead, h.Perms)).Get("/calculations/{calculationID}/report", h.handleReport)
		r.With(middleware.RequirePermission(auth.PermHistoryRead, h.Perms)).Get("/calculations/{calculationID}/pdf", h.handlePDF)
		r.With(middleware.RequirePermission(auth.PermHistoryWrite, h.Perms)).Delete("/calculations/{calculationID}", h.handleDelete)
	})
}

type calculateRequest struct {
	Regime string `json:"regime"`
	salary.Components
}

type saveRequest struct {
	Label  string `json:"label"`
	Regime string `json:"regime"`
	salary.Components
}

type regimeInfo struct {
	ID   salary.Regime `json:"id"`
	Name string        `json:"name"`
}

type breakdownResponse struct {
	salary.Breakdown
	RegimeName string       `json:"regimeName"`
	Rows       []salary.Row `json:"rows"`
}

type comparisonResponse struct {
	Best       salary.Regime       `json:"best"`
	Breakdowns []breakdownResponse `json:"breakdowns"`
}

type calculationResponse struct {
	Calculation salary.Calculation `json:"calculation"`
	Breakdown   breakdownResponse  `json:"breakdown"`
}

func newBreakdownResponse(b salary.Breakdown) breakdownResponse {
	return breakdownResponse{Breakdown: b, RegimeName: b.Regime.Name(), Rows: b.Rows()}
}

func (h *Handler) handleRegimes(w http.ResponseWriter, r *http.Request) {
	regimes := make([]regimeInfo, 0, len(salary.Regimes()))
	for _, regime := range salary.Regimes() {
		regimes = append(regimes, regimeInfo{ID: regime, Name: regime.Name()})
	}
	api.Success(w, map[string]any{
		"regimes": regimes,
		"default": salary.RegimeNewCurrent,
		"rules":   salary.CurrentRules(),
	}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCalculate(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	var payload calculateRequest
	if err := api.Decode(r, &payload); err != nil {
		failDecode(w, err, requestID)
		return
	}
	regime, err := salary.ParseRegime(payload.Regime)
	if err != nil {
		failSalary(w, err, requestID)
		return
	}
	breakdown, err := h.Salary.Calculate(r.Context(), payload.Components, regime)
	if err != nil {
		failSalary(w, err, requestID)
		return
	}
	api.Success(w, newBreakdownResponse(breakdown), requestID)
}

func (h *Handler) handleCompare(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	var payload salary.Components
	if err := api.Decode(r, &payload); err != nil {
		failDecode(w, err, requestID)
		return
	}
	comparison, err := h.Salary.Compare(r.Context(), payload)
	if err != nil {
		failSalary(w, err, requestID)
		return
	}
	out := comparisonResponse{Best: comparison.Best, Breakdowns: make([]breakdownResponse, 0, len(comparison.Breakdowns))}
	for _, b := range comparison.Breakdowns {
		out.Breakdowns = append(out.Breakdowns, newBreakdownResponse(b))
	}
	api.Success(w, out, requestID)
}

func (h *Handler) handleSave(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	body, err := io.ReadAll(r.Body)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}
	r.Body = io.NopCloser(bytes.NewReader(body))

	idempotencyKey := r.Header.Get("Idempotency-Key")
	requestHash := middleware.RequestHash(body)
	if idempotencyKey != "" && h.Idempotency != nil {
		stored, found, err := h.Idempotency.Check(r.Context(), user.UserID, endpointSave, idempotencyKey, requestHash)
		if errors.Is(err, middleware.ErrIdempotencyConflict) {
			api.Fail(w, http.StatusConflict, "idempotency_conflict", "idempotency key reused with a different payload", requestID)
			return
		}
		if err != nil {
			slog.Warn("idempotency check failed", "err", err, "requestId", requestID)
		}
		if found {
			api.Created(w, json.RawMessage(stored), requestID)
			return
		}
	}

	var payload saveRequest
	if err := api.Decode(r, &payload); err != nil {
		failDecode(w, err, requestID)
		return
	}
	validator := shared.NewValidator()
	validator.MaxLength("label", payload.Label, maxLabelLength)
	if validator.Reject(w, requestID) {
		return
	}
	regime, err := salary.ParseRegime(payload.Regime)
	if err != nil {
		failSalary(w, err, requestID)
		return
	}

	calc, breakdown, err := h.Salary.Save(r.Context(), user.UserID, payload.Label, regime, payload.Components)
	if err != nil {
		failSalary(w, err, requestID)
		return
	}

	if err := h.Audit.Record(r.Context(), audit.Event{
		ActorID:    user.UserID,
		Action:     audit.ActionCalculationSaved,
		EntityType: audit.EntityCalculation,
		EntityID:   calc.ID,
		RequestID:  requestID,
		IP:         shared.ClientIP(r),
		Details:    map[string]any{"regime": calc.Regime, "label": calc.Label},
	}); err != nil {
		slog.Warn("audit calculation save failed", "err", err, "requestId", requestID)
	}

	response := calculationResponse{Calculation: calc, Breakdown: newBreakdownResponse(breakdown)}
	if idempotencyKey != "" && h.Idempotency != nil {
		encoded, err := json.Marshal(response)
		if err != nil {
			slog.Warn("save response marshal failed", "err", err)
		} else if err := h.Idempotency.Save(r.Context(), user.UserID, endpointSave, idempotencyKey, requestHash, encoded); err != nil {
			slog.Warn("idempotency save failed", "err", err, "requestId", requestID)
		}
	}
	api.Created(w, response, requestID)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	page := shared.ParsePagination(r, 20, 100)

	items, total, err := h.Salary.List(r.Context(), user.UserID, page.Limit, page.Offset)
	if err != nil {
		failSalary(w, err, requestID)
		return
	}
	api.Success(w, page.Page(items, total), requestID)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	calc, breakdown, ok := h.load(w, r)
	if !ok {
		return
	}
	api.Success(w, calculationResponse{Calculation: calc, Breakdown: newBreakdownResponse(breakdown)}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleReport(w http.ResponseWriter, r *http.Request) {
	_, breakdown, ok := h.load(w, r)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := salary.WriteReport(&buf, breakdown); err != nil {
		failSalary(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (h *Handler) handlePDF(w http.ResponseWriter, r *http.Request) {
	calc, breakdown, ok := h.load(w, r)
	if !ok {
		return
	}
	title := "Salary Breakup"
	if calc.Label != "" {
		title = "Salary Breakup: " + calc.Label
	}
	var buf bytes.Buffer
	if err := salary.WritePDF(&buf, breakdown, title); err != nil {
		failSalary(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "salary-breakup-"+calc.ID+".pdf"))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	id, ok := calculationID(w, r)
	if !ok {
		return
	}
	if err := h.Salary.Delete(r.Context(), user.UserID, id); err != nil {
		failSalary(w, err, requestID)
		return
	}
	if err := h.Audit.Record(r.Context(), audit.Event{
		ActorID:    user.UserID,
		Action:     audit.ActionCalculationDeleted,
		EntityType: audit.EntityCalculation,
		EntityID:   id,
		RequestID:  requestID,
		IP:         shared.ClientIP(r),
	}); err != nil {
		slog.Warn("audit calculation delete failed", "err", err, "requestId", requestID)
	}
	api.Success(w, map[string]string{"id": id, "status": "deleted"}, requestID)
}

func (h *Handler) load(w http.ResponseWriter, r *http.Request) (salary.Calculation, salary.Breakdown, bool) {
	user, _ := middleware.GetUser(r.Context())
	id, ok := calculationID(w, r)
	if !ok {
		return salary.Calculation{}, salary.Breakdown{}, false
	}
	calc, breakdown, err := h.Salary.Get(r.Context(), user.UserID, id)
	if err != nil {
		failSalary(w, err, middleware.GetRequestID(r.Context()))
		return salary.Calculation{}, salary.Breakdown{}, false
	}
	return calc, breakdown, true
}

// calculationID answers 404 for ids that cannot name a stored calculation.
func calculationID(w http.ResponseWriter, r *http.Request) (string, bool) {
	raw := chi.URLParam(r, "calculationID")
	if _, err := uuid.Parse(raw); err != nil {
		api.Fail(w, http.StatusNotFound, "not_found", "salary calculation not found", middleware.GetRequestID(r.Context()))
		return "", false
	}
	return raw, true
}

func failDecode(w http.ResponseWriter, err error, requestID string) {
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		api.Fail(w, http.StatusRequestEntityTooLarge, "payload_too_large", "request body too large", requestID)
		return
	}
	api.FailWithDetails(w, http.StatusBadRequest, "invalid_input", "salary components must be numeric", map[string]any{"reason": err.Error()}, requestID)
}

func failSalary(w http.ResponseWriter, err error, requestID string) {
	validator := shared.NewValidator()
	if validator.AddInputError(err) {
		validator.Reject(w, requestID)
		return
	}
	switch {
	case errors.Is(err, salary.ErrUnknownRegime):
		api.Fail(w, http.StatusBadRequest, "unknown_regime", "regime must be one of old, new, new_post_2025", requestID)
	case errors.Is(err, salary.ErrCalculationNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "salary calculation not found", requestID)
	default:
		slog.Error("salary request failed", "err", err, "requestId", requestID)
		api.Fail(w, http.StatusInternalServerError, "salary_failed", "failed to process salary request", requestID)
	}
}
