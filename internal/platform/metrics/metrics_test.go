package metrics

import (
	"testing"
	"time"
)

func TestCollectorSnapshot(t *testing.T) {
	c := New()
	c.Record(200, 10*time.Millisecond)
	c.Record(500, 30*time.Millisecond)
	c.Record(429, 0)
	c.RecordCalculation("old")
	c.RecordCalculation("old")
	c.RecordCalculation("new")
	c.RecordCache(true)
	c.RecordCache(false)
	c.RecordCache(false)

	snap := c.Snapshot()
	if snap["requestsTotal"].(uint64) != 3 {
		t.Fatalf("expected 3 requests, got %v", snap["requestsTotal"])
	}
	if snap["errorsTotal"].(uint64) != 1 {
		t.Fatalf("expected 1 error, got %v", snap["errorsTotal"])
	}
	if snap["rateLimitedTotal"].(uint64) != 1 {
		t.Fatalf("expected 1 rate limited, got %v", snap["rateLimitedTotal"])
	}
	if avg := snap["avgDurationMs"].(float64); avg < 13.3 || avg > 13.4 {
		t.Fatalf("expected avg ~13.33ms, got %v", avg)
	}
	byRegime := snap["calculationsByRegime"].(map[string]uint64)
	if byRegime["old"] != 2 || byRegime["new"] != 1 {
		t.Fatalf("unexpected regime counts: %v", byRegime)
	}
	if snap["cacheHitsTotal"].(uint64) != 1 || snap["cacheMissesTotal"].(uint64) != 2 {
		t.Fatalf("unexpected cache counts: %v", snap)
	}
}

func TestNilCollectorIgnoresCalculations(t *testing.T) {
	var c *Collector
	c.RecordCalculation("old")
	c.RecordCache(true)
}
