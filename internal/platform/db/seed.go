package db

import (
	"context"
	"fmt"

	"inhand/internal/domain/auth"
	"inhand/internal/platform/config"
)

type UserEnsurer interface {
	EnsureUser(ctx context.Context, email, password, role string) error
}

// Seed creates the configured admin account if it does not exist yet.
func Seed(ctx context.Context, users UserEnsurer, cfg config.Config) error {
	if cfg.SeedAdminEmail == "" {
		return nil
	}
	if err := users.EnsureUser(ctx, cfg.SeedAdminEmail, cfg.SeedAdminPassword, auth.RoleAdmin); err != nil {
		return fmt.Errorf("seed admin user: %w", err)
	}
	return nil
}
