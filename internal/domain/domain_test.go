package domain

import (
	"errors"
	"testing"
)

// ─── HumanCredits Tests ─────────────────────────────────────────────────────

func TestHumanCredits(t *testing.T) {
	tests := []struct {
		name   string
		amount int64
		want   string
	}{
		{"zero", 0, "0"},
		{"small", 420, "420"},
		{"under_ten_k", 9999, "9999"},
		{"ten_k", 10_000, "10.0K"},
		{"fractional_k", 12_500, "12.5K"},
		{"millions", 2_400_000, "2.4M"},
		{"billions", 3_000_000_000, "3.0B"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := HumanCredits(tt.amount)
			if got != tt.want {
				t.Errorf("HumanCredits(%d) = %q, want %q", tt.amount, got, tt.want)
			}
		})
	}
}

// ─── SHA256Hex Tests ────────────────────────────────────────────────────────

func TestSHA256Hex_Deterministic(t *testing.T) {
	a := SHA256Hex([]byte("fern"))
	b := SHA256Hex([]byte("fern"))
	if a != b {
		t.Errorf("SHA256Hex not deterministic: %q != %q", a, b)
	}
	if len(a) != 64 {
		t.Errorf("SHA256Hex length = %d, want 64", len(a))
	}
}

// ─── Sentinel Error Tests ───────────────────────────────────────────────────

func TestSentinelErrorsAreDistinct(t *testing.T) {
	sentinels := []error{
		ErrInvalidAmount,
		ErrInsufficientBalance,
		ErrInvalidIdentity,
		ErrUnknownItem,
		ErrUnknownUpgrade,
		ErrPersistenceWrite,
	}
	for i, a := range sentinels {
		for j, b := range sentinels {
			if i != j && errors.Is(a, b) {
				t.Errorf("sentinel %v matches %v", a, b)
			}
		}
	}
}
