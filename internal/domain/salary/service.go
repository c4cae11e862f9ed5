package salary

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/shopspring/decimal"

	"inhand/internal/platform/cache"
	cryptoutil "inhand/internal/platform/crypto"
	"inhand/internal/requestctx"
)

type Service struct {
	store    StoreAPI
	crypto   *cryptoutil.Service
	cache    cache.Cache
	cacheTTL time.Duration
	observer Observer
}

// Observer receives calculation and cache counters.
type Observer interface {
	RecordCalculation(regime string)
	RecordCache(hit bool)
}

type noopObserver struct{}

func (noopObserver) RecordCalculation(string) {}
func (noopObserver) RecordCache(bool)         {}

func NewService(store StoreAPI, crypto *cryptoutil.Service, c cache.Cache, cacheTTL time.Duration) *Service {
	if c == nil {
		c = cache.NewMemory()
	}
	return &Service{store: store, crypto: crypto, cache: c, cacheTTL: cacheTTL, observer: noopObserver{}}
}

func (s *Service) SetObserver(o Observer) {
	if o == nil {
		o = noopObserver{}
	}
	s.observer = o
}

type CalculationSummary struct {
	Calculation
	MonthlyInHand decimal.Decimal `json:"monthlyInHand"`
}

// Calculate memoises breakups by their inputs. Cache trouble is logged and
// the breakup is computed directly.
func (s *Service) Calculate(ctx context.Context, c Components, regime Regime) (Breakdown, error) {
	if err := Validate(c); err != nil {
		return Breakdown{}, err
	}
	if !regime.Valid() {
		return Breakdown{}, ErrUnknownRegime
	}

	key := CacheKey(c, regime)
	if raw, ok, err := s.cache.Get(ctx, key); err != nil {
		slog.Warn("breakdown cache read failed", "err", err, "requestId", requestctx.GetRequestID(ctx))
	} else if ok {
		var cached Breakdown
		if err := json.Unmarshal([]byte(raw), &cached); err == nil {
			s.observer.RecordCache(true)
			return cached, nil
		}
		slog.Warn("breakdown cache entry unreadable", "key", key, "requestId", requestctx.GetRequestID(ctx))
	}

	s.observer.RecordCache(false)
	breakdown, err := Calculate(c, regime)
	if err != nil {
		return Breakdown{}, err
	}
	s.observer.RecordCalculation(string(regime))
	if payload, err := json.Marshal(breakdown); err == nil {
		if err := s.cache.Set(ctx, key, string(payload), s.cacheTTL); err != nil {
			slog.Warn("breakdown cache write failed", "err", err, "requestId", requestctx.GetRequestID(ctx))
		}
	}
	return breakdown, nil
}

func (s *Service) Compare(_ context.Context, c Components) (Comparison, error) {
	cmp, err := Compare(c)
	if err != nil {
		return Comparison{}, err
	}
	for _, b := range cmp.Breakdowns {
		s.observer.RecordCalculation(string(b.Regime))
	}
	return cmp, nil
}

func (s *Service) Save(ctx context.Context, userID, label string, regime Regime, c Components) (Calculation, Breakdown, error) {
	breakdown, err := s.Calculate(ctx, c, regime)
	if err != nil {
		return Calculation{}, Breakdown{}, err
	}
	sealed, err := s.crypto.SealJSON(c)
	if err != nil {
		return Calculation{}, Breakdown{}, fmt.Errorf("seal components: %w", err)
	}
	label = strings.TrimSpace(label)
	id, createdAt, err := s.store.CreateCalculation(ctx, userID, label, regime, sealed)
	if err != nil {
		return Calculation{}, Breakdown{}, err
	}
	return Calculation{
		ID:         id,
		UserID:     userID,
		Label:      label,
		Regime:     regime,
		Components: c,
		CreatedAt:  createdAt,
	}, breakdown, nil
}

// Get loads a saved calculation and recomputes its breakup.
func (s *Service) Get(ctx context.Context, userID, id string) (Calculation, Breakdown, error) {
	stored, err := s.store.GetCalculation(ctx, userID, id)
	if err != nil {
		return Calculation{}, Breakdown{}, err
	}
	calc, err := s.open(stored)
	if err != nil {
		return Calculation{}, Breakdown{}, err
	}
	breakdown, err := s.Calculate(ctx, calc.Components, calc.Regime)
	if err != nil {
		return Calculation{}, Breakdown{}, err
	}
	return calc, breakdown, nil
}

func (s *Service) List(ctx context.Context, userID string, limit, offset int) ([]CalculationSummary, int, error) {
	total, err := s.store.CountCalculations(ctx, userID)
	if err != nil {
		return nil, 0, err
	}
	rows, err := s.store.ListCalculations(ctx, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	out := make([]CalculationSummary, 0, len(rows))
	for _, row := range rows {
		calc, err := s.open(row)
		if err != nil {
			return nil, 0, err
		}
		breakdown, err := s.Calculate(ctx, calc.Components, calc.Regime)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, CalculationSummary{Calculation: calc, MonthlyInHand: breakdown.MonthlyInHand})
	}
	return out, total, nil
}

func (s *Service) Delete(ctx context.Context, userID, id string) error {
	return s.store.DeleteCalculation(ctx, userID, id)
}

// PurgeBefore removes every saved calculation created before cutoff.
func (s *Service) PurgeBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	return s.store.DeleteCalculationsBefore(ctx, cutoff)
}

func (s *Service) open(stored StoredCalculation) (Calculation, error) {
	var c Components
	if err := s.crypto.OpenJSON(stored.ComponentsEnc, &c); err != nil {
		return Calculation{}, fmt.Errorf("calculation %s: %w", stored.ID, err)
	}
	return Calculation{
		ID:         stored.ID,
		UserID:     stored.UserID,
		Label:      stored.Label,
		Regime:     stored.Regime,
		Components: c,
		CreatedAt:  stored.CreatedAt,
	}, nil
}

// CacheKey identifies a breakup by its regime and component values.
func CacheKey(c Components, regime Regime) string {
	parts := []string{
		string(regime),
		c.Basic.String(),
		c.HRA.String(),
		c.SpecialAllowance.String(),
		c.BonusAnnual.String(),
		c.EmployerPF.String(),
		c.Gratuity.String(),
		c.MedicalInsurance.String(),
		c.OtherAllowances.String(),
	}
	sum := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return "breakdown:" + hex.EncodeToString(sum[:])
}
