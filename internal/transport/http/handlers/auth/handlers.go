package authhandler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"unicode"

	"github.com/go-chi/chi/v5"

	"inhand/internal/domain/auth"
	"inhand/internal/transport/http/api"
	"inhand/internal/transport/http/middleware"
	"inhand/internal/transport/http/shared"
)

const minPasswordLength = 8

type Authenticator interface {
	Login(ctx context.Context, email, password string) (auth.Session, error)
	Register(ctx context.Context, email, password string) (auth.Session, error)
}

type Handler struct {
	Auth        Authenticator
	AllowSignup bool
}

func NewHandler(authn Authenticator, allowSignup bool) *Handler {
	return &Handler{Auth: authn, AllowSignup: allowSignup}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", h.HandleLogin)
		r.Post("/register", h.HandleRegister)
	})
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	var payload credentialsRequest
	if err := api.Decode(r, &payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}

	validator := shared.NewValidator()
	validator.Required("email", payload.Email, "is required")
	validator.Required("password", payload.Password, "is required")
	if validator.Reject(w, requestID) {
		return
	}

	session, err := h.Auth.Login(r.Context(), payload.Email, payload.Password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		api.Fail(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials", requestID)
		return
	}
	if err != nil {
		slog.Error("login failed", "err", err, "requestId", requestID)
		api.Fail(w, http.StatusInternalServerError, "login_failed", "failed to sign in", requestID)
		return
	}
	api.Success(w, session, requestID)
}

func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	if !h.AllowSignup {
		api.Fail(w, http.StatusForbidden, "signup_disabled", "self signup is disabled", requestID)
		return
	}
	var payload credentialsRequest
	if err := api.Decode(r, &payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}

	validator := shared.NewValidator()
	validator.Email("email", payload.Email)
	if err := validatePassword(payload.Password); err != nil {
		validator.Add("password", err.Error())
	}
	if validator.Reject(w, requestID) {
		return
	}

	session, err := h.Auth.Register(r.Context(), payload.Email, payload.Password)
	if errors.Is(err, auth.ErrEmailTaken) {
		api.Fail(w, http.StatusConflict, "email_taken", "email already registered", requestID)
		return
	}
	if err != nil {
		slog.Error("register failed", "err", err, "requestId", requestID)
		api.Fail(w, http.StatusInternalServerError, "register_failed", "failed to register", requestID)
		return
	}
	api.Created(w, session, requestID)
}

func validatePassword(password string) error {
	if len(password) < minPasswordLength {
		return fmt.Errorf("must be at least %d characters", minPasswordLength)
	}
	var hasUpper, hasLower, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasUpper || !hasLower || !hasDigit {
		return errors.New("must contain upper case, lower case and a digit")
	}
	return nil
}
