// internal/schedule/shift_test.go
package schedule

import (
	"testing"
	"time"
)

func at(hour, minute int) time.Time {
	return time.Date(2026, 6, 15, hour, minute, 0, 0, time.Local)
}

func TestEvaluate_ActiveInsideWindow(t *testing.T) {
	w := Window{Start: 5, Stop: 21}

	for hour := 5; hour < 21; hour++ {
		active, sleep := w.Evaluate(at(hour, 30))
		if !active {
			t.Fatalf("hour %d should be active", hour)
		}
		if sleep != 0 {
			t.Fatalf("hour %d: active sleep should be zero, got %v", hour, sleep)
		}
	}
}

func TestEvaluate_JustBeforeStart(t *testing.T) {
	w := Window{Start: 5, Stop: 21}

	active, sleep := w.Evaluate(at(4, 59))
	if active {
		t.Fatalf("04:59 should be inactive")
	}
	if sleep <= 0 || sleep >= 60*time.Minute {
		t.Fatalf("04:59: want positive sleep under 60m, got %v", sleep)
	}
	if sleep != 1*time.Minute {
		t.Fatalf("04:59: want 1m, got %v", sleep)
	}
}

func TestEvaluate_EveningWrapsPastMidnight(t *testing.T) {
	w := Window{Start: 5, Stop: 21}

	active, sleep := w.Evaluate(at(21, 0))
	if active {
		t.Fatalf("21:00 should be inactive")
	}
	// ((5 - 21 + 24) * 60) - 0 = 480 minutes
	if sleep != 480*time.Minute {
		t.Fatalf("21:00: want 480m, got %v", sleep)
	}

	_, sleep = w.Evaluate(at(23, 30))
	// ((5 - 23 + 24) * 60) - 30 = 330 minutes
	if sleep != 330*time.Minute {
		t.Fatalf("23:30: want 330m, got %v", sleep)
	}
}

func TestEvaluate_EarlyMorningSameDay(t *testing.T) {
	w := Window{Start: 5, Stop: 21}

	active, sleep := w.Evaluate(at(3, 0))
	if active {
		t.Fatalf("03:00 should be inactive")
	}
	// ((5 - 3) * 60) - 0 = 120 minutes
	if sleep != 120*time.Minute {
		t.Fatalf("03:00: want 120m, got %v", sleep)
	}
}

func TestEvaluate_WindowEdges(t *testing.T) {
	w := Window{Start: 5, Stop: 21}

	if active, _ := w.Evaluate(at(5, 0)); !active {
		t.Fatalf("start hour is inclusive")
	}
	if active, _ := w.Evaluate(at(20, 59)); !active {
		t.Fatalf("20:59 should still be active")
	}
	if active, _ := w.Evaluate(at(21, 0)); active {
		t.Fatalf("stop hour is exclusive")
	}
}
