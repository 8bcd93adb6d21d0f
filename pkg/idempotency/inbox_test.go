package idempotency

import (
	"errors"
	"testing"
)

func TestScheduleKeyDeterministic(t *testing.T) {
	a := ScheduleKey("pid-1", "rx-1")
	b := ScheduleKey("pid-1", "rx-1")
	if a != b {
		t.Errorf("same inputs produced different keys: %s vs %s", a, b)
	}
	if len(a) != 64 {
		t.Errorf("key length = %d, want 64 hex chars", len(a))
	}
}

func TestScheduleKeyDistinct(t *testing.T) {
	keys := map[string]bool{
		ScheduleKey("pid-1", "rx-1"): true,
		ScheduleKey("pid-1", "rx-2"): true,
		ScheduleKey("pid-2", "rx-1"): true,
	}
	if len(keys) != 3 {
		t.Errorf("expected 3 distinct keys, got %d", len(keys))
	}
}

func TestIsTerminalError(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{errors.New("validation failed on field pid"), true},
		{errors.New("prescription not found"), true},
		{errors.New("invalid window"), true},
		{errors.New("connection refused"), false},
		{errors.New("context deadline exceeded"), false},
	}
	for _, tt := range tests {
		if got := isTerminalError(tt.err); got != tt.want {
			t.Errorf("isTerminalError(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}
