package economy

import "testing"

// ─── Cost Model Tests ───────────────────────────────────────────────────────

func TestCost_Deterministic(t *testing.T) {
	seeds := []string{"fern", "🌿", "old oak", "violet-lamp", "x"}
	for _, seed := range seeds {
		a := Cost(seed)
		b := Cost(seed)
		if a != b {
			t.Errorf("Cost(%q) not deterministic: %d != %d", seed, a, b)
		}
	}
}

func TestCost_EmptySeedIsMidpoint(t *testing.T) {
	want := int64(costMid)
	tests := []string{"", "   ", "\t\n"}
	for _, seed := range tests {
		if got := Cost(seed); got != want {
			t.Errorf("Cost(%q) = %d, want midpoint %d", seed, got, want)
		}
	}
}

func TestCost_WithinBounds(t *testing.T) {
	seeds := []string{
		"a", "b", "zzz", "🌻", "🔥", "grandfather clock", "tiny pebble",
		"0", "1", "2", "3", "4", "5", "6", "7", "8", "9",
	}
	for _, seed := range seeds {
		got := Cost(seed)
		if got < CostMin || got > CostMax {
			t.Errorf("Cost(%q) = %d, outside [%d, %d]", seed, got, CostMin, CostMax)
		}
	}
}

func TestCost_VariantsShareCost(t *testing.T) {
	tests := []struct {
		name string
		a, b string
	}{
		{"variation_selector", "star\uFE0F", "star"},
		{"skin_tone", "wave\U0001F3FD", "wave"},
		{"case", "Fern", "fern"},
		{"whitespace", "  fern  ", "fern"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if Cost(tt.a) != Cost(tt.b) {
				t.Errorf("Cost(%q) = %d, Cost(%q) = %d; variants must share a cost",
					tt.a, Cost(tt.a), tt.b, Cost(tt.b))
			}
		})
	}
}

func TestCost_SpreadsAcrossSeeds(t *testing.T) {
	// Not a distribution test — just confirms the hash actually varies.
	seen := make(map[int64]bool)
	for _, seed := range []string{"a", "b", "c", "d", "e", "f", "g", "h"} {
		seen[Cost(seed)] = true
	}
	if len(seen) < 4 {
		t.Errorf("only %d distinct costs across 8 seeds", len(seen))
	}
}
