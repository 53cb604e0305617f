package game

import "testing"

func TestParseCount(t *testing.T) {
	tests := []struct {
		in   string
		want int64
		ok   bool
	}{
		{"7", 7, true},
		{"  42  ", 42, true},
		{"0", 0, true},
		{"-5", -5, true},
		{"1,000", 1000, true},
		{"1_000_000", 1000000, true},
		{"10 000", 10000, true},
		{"-1,234", -1234, true},

		// Integral decimal and scientific forms parse.
		{"2.0", 2, true},
		{"1000.00", 1000, true},
		{"1e3", 1000, true},
		{"1E3", 1000, true},
		{"1.5e1", 15, true},
		{"2e+2", 200, true},
		{"1500e-2", 15, true},
		{"0.00", 0, true},

		// Fullwidth, Arabic-Indic, superscript and subscript digits.
		{"１２３", 123, true},
		{"١٢", 12, true},
		{"²", 2, true},
		{"⁴²", 42, true},
		{"₁₂", 12, true},

		// Rejected forms.
		{"", 0, false},
		{"banana", 0, false},
		{"one", 0, false},
		{"+3", 0, false},
		{"1.5", 0, false},
		{"0.5e0", 0, false},
		{"1e19", 0, false},
		{"1e-19", 0, false},
		{"1e", 0, false},
		{"e3", 0, false},
		{".", 0, false},
		{"1.2.3", 0, false},
		{"12three", 0, false},
		{"9223372036854775808", 0, false}, // int64 overflow
		{"--4", 0, false},
	}

	for _, tt := range tests {
		got, ok := ParseCount(tt.in, false)
		if ok != tt.ok || (ok && got != tt.want) {
			t.Errorf("ParseCount(%q, false) = %d, %v; want %d, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestParseCountExtreme(t *testing.T) {
	tests := []struct {
		in   string
		want int64
		ok   bool
	}{
		{"we hit 420 bois", 420, true},
		{"lets go!! 69 !!", 69, true},
		{"number 1,000 baby", 1000, true},
		{"no numbers here", 0, false},
		{"", 0, false},
		// Chunks longer than 32 characters are skipped.
		{"111111111111111111111111111111111111111111", 0, false},
		// Whole-message parse still wins when possible.
		{"17", 17, true},
	}

	for _, tt := range tests {
		got, ok := ParseCount(tt.in, true)
		if ok != tt.ok || (ok && got != tt.want) {
			t.Errorf("ParseCount(%q, true) = %d, %v; want %d, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}

	// Embedded numbers only count in extreme mode.
	if _, ok := ParseCount("we hit 420 bois", false); ok {
		t.Error("embedded number parsed outside extreme mode")
	}
}
