package salary

import (
	"context"
	"time"
)

type StoredCalculation struct {
	ID            string
	UserID        string
	Label         string
	Regime        Regime
	ComponentsEnc []byte
	CreatedAt     time.Time
}

type StoreAPI interface {
	CreateCalculation(ctx context.Context, userID, label string, regime Regime, componentsEnc []byte) (string, time.Time, error)
	GetCalculation(ctx context.Context, userID, id string) (StoredCalculation, error)
	CountCalculations(ctx context.Context, userID string) (int, error)
	ListCalculations(ctx context.Context, userID string, limit, offset int) ([]StoredCalculation, error)
	DeleteCalculation(ctx context.Context, userID, id string) error
	DeleteCalculationsBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
