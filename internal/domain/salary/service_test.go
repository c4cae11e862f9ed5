package salary

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"inhand/internal/platform/cache"
	cryptoutil "inhand/internal/platform/crypto"
)

type memStore struct {
	rows []StoredCalculation
	seq  int
}

func (m *memStore) CreateCalculation(_ context.Context, userID, label string, regime Regime, enc []byte) (string, time.Time, error) {
	m.seq++
	id := fmt.Sprintf("calc-%d", m.seq)
	created := time.Date(2026, time.January, m.seq, 0, 0, 0, 0, time.UTC)
	m.rows = append(m.rows, StoredCalculation{ID: id, UserID: userID, Label: label, Regime: regime, ComponentsEnc: enc, CreatedAt: created})
	return id, created, nil
}

func (m *memStore) GetCalculation(_ context.Context, userID, id string) (StoredCalculation, error) {
	for _, row := range m.rows {
		if row.UserID == userID && row.ID == id {
			return row, nil
		}
	}
	return StoredCalculation{}, ErrCalculationNotFound
}

func (m *memStore) CountCalculations(_ context.Context, userID string) (int, error) {
	n := 0
	for _, row := range m.rows {
		if row.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (m *memStore) ListCalculations(_ context.Context, userID string, limit, offset int) ([]StoredCalculation, error) {
	var out []StoredCalculation
	for _, row := range m.rows {
		if row.UserID == userID {
			out = append(out, row)
		}
	}
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (m *memStore) DeleteCalculation(_ context.Context, userID, id string) error {
	for i, row := range m.rows {
		if row.UserID == userID && row.ID == id {
			m.rows = append(m.rows[:i], m.rows[i+1:]...)
			return nil
		}
	}
	return ErrCalculationNotFound
}

func (m *memStore) DeleteCalculationsBefore(_ context.Context, cutoff time.Time) (int64, error) {
	var kept []StoredCalculation
	var removed int64
	for _, row := range m.rows {
		if row.CreatedAt.Before(cutoff) {
			removed++
			continue
		}
		kept = append(kept, row)
	}
	m.rows = kept
	return removed, nil
}

type failingCache struct{}

func (failingCache) Get(context.Context, string) (string, bool, error) {
	return "", false, errors.New("cache down")
}

func (failingCache) Set(context.Context, string, string, time.Duration) error {
	return errors.New("cache down")
}

func (failingCache) Close() error { return nil }

func newTestService(t *testing.T, store StoreAPI) *Service {
	t.Helper()
	crypto, err := cryptoutil.New(strings.Repeat("ab", 32))
	if err != nil {
		t.Fatalf("crypto setup failed: %v", err)
	}
	return NewService(store, crypto, cache.NewMemory(), time.Minute)
}

func TestServiceCalculateUsesCache(t *testing.T) {
	mem := cache.NewMemory()
	svc := NewService(&memStore{}, nil, mem, time.Minute)
	ctx := context.Background()
	c := Components{Basic: d("40000"), HRA: d("20000"), SpecialAllowance: d("10000")}

	first, err := svc.Calculate(ctx, c, RegimeNewCurrent)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok, _ := mem.Get(ctx, CacheKey(c, RegimeNewCurrent)); !ok {
		t.Fatal("expected breakdown to be cached")
	}
	second, err := svc.Calculate(ctx, c, RegimeNewCurrent)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	expectEqual(t, "cached in-hand", first.MonthlyInHand, second.MonthlyInHand)
	if len(second.Items) != len(ItemNames) {
		t.Fatalf("expected %d cached items, got %d", len(ItemNames), len(second.Items))
	}
}

func TestServiceCalculateSurvivesCacheFailure(t *testing.T) {
	svc := NewService(&memStore{}, nil, failingCache{}, time.Minute)
	b, err := svc.Calculate(context.Background(), Components{Basic: d("40000")}, RegimeOld)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(b.Items) != len(ItemNames) {
		t.Fatalf("expected full breakdown, got %d items", len(b.Items))
	}
}

func TestServiceCalculateRejectsBadInput(t *testing.T) {
	svc := NewService(&memStore{}, nil, nil, time.Minute)
	if _, err := svc.Calculate(context.Background(), Components{HRA: d("-1")}, RegimeOld); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if _, err := svc.Calculate(context.Background(), Components{}, Regime("flat")); !errors.Is(err, ErrUnknownRegime) {
		t.Fatalf("expected ErrUnknownRegime, got %v", err)
	}
}

func TestServiceSaveGetListDelete(t *testing.T) {
	store := &memStore{}
	svc := newTestService(t, store)
	ctx := context.Background()
	c := Components{Basic: d("50000"), HRA: d("25000"), EmployerPF: d("6000"), MedicalInsurance: d("2000")}

	saved, breakdown, err := svc.Save(ctx, "user-1", "  offer A  ", RegimeOld, c)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if saved.Label != "offer A" {
		t.Fatalf("expected trimmed label, got %q", saved.Label)
	}
	expectEqual(t, "saved in-hand", d("74018"), breakdown.MonthlyInHand)
	if strings.Contains(string(store.rows[0].ComponentsEnc), "50000") {
		t.Fatal("expected components to be sealed at rest")
	}

	got, gotBreakdown, err := svc.Get(ctx, "user-1", saved.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	expectEqual(t, "reloaded basic", d("50000"), got.Components.Basic)
	expectEqual(t, "reloaded in-hand", d("74018"), gotBreakdown.MonthlyInHand)

	if _, _, err := svc.Get(ctx, "user-2", saved.ID); !errors.Is(err, ErrCalculationNotFound) {
		t.Fatalf("expected ErrCalculationNotFound for other user, got %v", err)
	}

	if _, _, err := svc.Save(ctx, "user-1", "", RegimeNewCurrent, Components{Basic: d("30000")}); err != nil {
		t.Fatalf("second save failed: %v", err)
	}
	list, total, err := svc.List(ctx, "user-1", 10, 0)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if total != 2 || len(list) != 2 {
		t.Fatalf("expected 2 saved calculations, got total=%d len=%d", total, len(list))
	}
	expectEqual(t, "listed in-hand", d("74018"), list[0].MonthlyInHand)

	if err := svc.Delete(ctx, "user-1", saved.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if err := svc.Delete(ctx, "user-1", saved.ID); !errors.Is(err, ErrCalculationNotFound) {
		t.Fatalf("expected ErrCalculationNotFound on second delete, got %v", err)
	}
}

func TestServiceSaveRejectsInvalidInput(t *testing.T) {
	store := &memStore{}
	svc := newTestService(t, store)
	if _, _, err := svc.Save(context.Background(), "user-1", "x", RegimeOld, Components{Basic: d("-1")}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if len(store.rows) != 0 {
		t.Fatal("expected nothing to be stored")
	}
}

func TestServicePurgeBefore(t *testing.T) {
	store := &memStore{}
	svc := newTestService(t, store)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if _, _, err := svc.Save(ctx, "user-1", "", RegimeOld, Components{Basic: d("10000")}); err != nil {
			t.Fatalf("save failed: %v", err)
		}
	}
	removed, err := svc.PurgeBefore(ctx, time.Date(2026, time.January, 3, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("purge failed: %v", err)
	}
	if removed != 2 {
		t.Fatalf("expected 2 removed, got %d", removed)
	}
}

type countingObserver struct {
	calcs  map[string]int
	hits   int
	misses int
}

func (o *countingObserver) RecordCalculation(regime string) { o.calcs[regime]++ }

func (o *countingObserver) RecordCache(hit bool) {
	if hit {
		o.hits++
		return
	}
	o.misses++
}

func TestServiceObserver(t *testing.T) {
	svc := NewService(&memStore{}, nil, cache.NewMemory(), time.Minute)
	obs := &countingObserver{calcs: map[string]int{}}
	svc.SetObserver(obs)
	ctx := context.Background()
	c := Components{Basic: d("40000")}

	for i := 0; i < 2; i++ {
		if _, err := svc.Calculate(ctx, c, RegimeOld); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if obs.misses != 1 || obs.hits != 1 {
		t.Fatalf("expected 1 miss and 1 hit, got %d misses %d hits", obs.misses, obs.hits)
	}
	if _, err := svc.Compare(ctx, c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if obs.calcs["old"] != 2 || obs.calcs["new"] != 1 || obs.calcs["new_post_2025"] != 1 {
		t.Fatalf("unexpected calculation counts: %v", obs.calcs)
	}
}
