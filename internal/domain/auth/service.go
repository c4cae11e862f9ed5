package auth

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

type Service struct {
	store    StoreAPI
	secret   string
	tokenTTL time.Duration
}

func NewService(store StoreAPI, secret string, tokenTTL time.Duration) *Service {
	return &Service{store: store, secret: secret, tokenTTL: tokenTTL}
}

type Session struct {
	Token     string    `json:"accessToken"`
	ExpiresAt time.Time `json:"expiresAt"`
	UserID    string    `json:"userId"`
	Role      string    `json:"role"`
}

func (s *Service) Login(ctx context.Context, email, password string) (Session, error) {
	user, err := s.store.FindUserByEmail(ctx, email)
	if errors.Is(err, ErrUserNotFound) {
		return Session{}, ErrInvalidCredentials
	}
	if err != nil {
		return Session{}, err
	}
	if err := CheckPassword(user.PasswordHash, password); err != nil {
		return Session{}, ErrInvalidCredentials
	}
	if err := s.store.UpdateLastLogin(ctx, user.ID); err != nil {
		slog.Warn("last login update failed", "userId", user.ID, "err", err)
	}
	return s.issue(user.ID, user.Role)
}

// Register creates a regular user and signs them in.
func (s *Service) Register(ctx context.Context, email, password string) (Session, error) {
	hash, err := HashPassword(password)
	if err != nil {
		return Session{}, err
	}
	id, err := s.store.CreateUser(ctx, email, hash, RoleUser)
	if err != nil {
		return Session{}, err
	}
	return s.issue(id, RoleUser)
}

// EnsureUser creates the user when the email is unknown. Existing users are
// left untouched.
func (s *Service) EnsureUser(ctx context.Context, email, password, role string) error {
	if _, err := s.store.FindUserByEmail(ctx, email); err == nil {
		return nil
	} else if !errors.Is(err, ErrUserNotFound) {
		return err
	}
	hash, err := HashPassword(password)
	if err != nil {
		return err
	}
	_, err = s.store.CreateUser(ctx, email, hash, role)
	if errors.Is(err, ErrEmailTaken) {
		return nil
	}
	return err
}

func (s *Service) issue(userID, role string) (Session, error) {
	expires := time.Now().Add(s.tokenTTL)
	token, err := GenerateToken(s.secret, Claims{UserID: userID, Role: role}, s.tokenTTL)
	if err != nil {
		return Session{}, err
	}
	return Session{Token: token, ExpiresAt: expires, UserID: userID, Role: role}, nil
}
