package termdesk

import (
	"testing"
)

func TestRuneWidth(t *testing.T) {
	tests := []struct {
		r        rune
		expected int
	}{
		{'A', 1},
		{' ', 1},
		{'中', 2},
		{'한', 2},
		{'Ａ', 2},
	}

	for _, tt := range tests {
		got := runeWidth(tt.r)
		if got != tt.expected {
			t.Errorf("runeWidth(%q) = %d, want %d", tt.r, got, tt.expected)
		}
	}
}

func TestStringWidth(t *testing.T) {
	if got := StringWidth("ab中"); got != 4 {
		t.Errorf("StringWidth = %d, want 4", got)
	}
}
