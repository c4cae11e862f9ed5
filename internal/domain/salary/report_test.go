package salary

import (
	"bytes"
	"strings"
	"testing"
)

func exampleBreakdown(t *testing.T) Breakdown {
	t.Helper()
	b, err := Calculate(Components{Basic: d("40000"), HRA: d("20000"), SpecialAllowance: d("10000")}, RegimeNewCurrent)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return b
}

func TestWriteReport(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteReport(&buf, exampleBreakdown(t)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := buf.String()

	for _, name := range ItemNames {
		if !strings.Contains(out, name) {
			t.Fatalf("expected report to contain %q:\n%s", name, out)
		}
	}
	if !strings.Contains(out, strings.Repeat("-", 55)) {
		t.Fatal("expected separator rule")
	}
	if !strings.Contains(out, "Tax Calculation: New Tax Regime (Current)") {
		t.Fatalf("expected regime line, got:\n%s", out)
	}
	if !strings.Contains(out, "Monthly In-Hand Salary: INR ") {
		t.Fatalf("expected monthly summary, got:\n%s", out)
	}
}

func TestFormatAmountKeepsTwoDecimals(t *testing.T) {
	if got := FormatAmount(d("200")); got != "200.00" {
		t.Fatalf("expected 200.00, got %s", got)
	}
	if got := FormatAmount(d("2946.666666")); got != "2,946.67" {
		t.Fatalf("expected 2,946.67, got %s", got)
	}
}

func TestWritePDF(t *testing.T) {
	var buf bytes.Buffer
	if err := WritePDF(&buf, exampleBreakdown(t), ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")) {
		t.Fatalf("expected PDF header, got %q", buf.Bytes()[:8])
	}
}
