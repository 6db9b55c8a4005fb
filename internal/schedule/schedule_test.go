package schedule

import (
	"testing"
	"time"
)

func parseTime(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		t.Fatalf("cannot parse %q: %v", value, err)
	}
	return parsed
}

func TestEvaluateDelayedAndOnTimeTriggers(t *testing.T) {
	cronExpr := "0 20 * * *"
	window := 60 * time.Second

	tooEarly, err := Evaluate(&cronExpr, parseTime(t, "2025-08-12T19:59:00Z"), window)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	onTime, err := Evaluate(&cronExpr, parseTime(t, "2025-08-12T20:00:00Z"), window)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	latest, err := Evaluate(&cronExpr, parseTime(t, "2025-08-12T20:00:59Z"), window)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	tooLate, err := Evaluate(&cronExpr, parseTime(t, "2025-08-12T20:01:00Z"), window)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantFiring := parseTime(t, "2025-08-12T20:00:00Z")
	wantNextDay := parseTime(t, "2025-08-13T20:00:00Z")

	assertTiming(t, "tooEarly", tooEarly, Timing{Now: false, At: wantFiring})
	assertTiming(t, "onTime", onTime, Timing{Now: true, At: wantFiring})
	assertTiming(t, "latest", latest, Timing{Now: true, At: wantFiring})
	assertTiming(t, "tooLate", tooLate, Timing{Now: false, At: wantNextDay})
}

func TestEvaluateWithoutScheduleIsAlwaysNow(t *testing.T) {
	now := parseTime(t, "2025-08-12T20:00:00Z")

	got, err := Evaluate(nil, now, 15*time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	assertTiming(t, "no-schedule", got, Timing{Now: true, At: now})
}

func assertTiming(t *testing.T, name string, got, want Timing) {
	t.Helper()
	if got.Now != want.Now || !got.At.Equal(want.At) {
		t.Errorf("%s: Evaluate() = %+v, want %+v", name, got, want)
	}
}
