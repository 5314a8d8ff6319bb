package utils

import "testing"

func TestNormalizeStem(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  Which Service   stores objects?\n", "which service stores objects?"},
		{"already normalized", "already normalized"},
		{"", ""},
		{"TABS\tand\nnewlines", "tabs and newlines"},
	}

	for _, tt := range tests {
		if got := NormalizeStem(tt.in); got != tt.want {
			t.Errorf("NormalizeStem(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestStemKeyStableAcrossFormatting(t *testing.T) {
	a := StemKey("Which service stores objects?")
	b := StemKey("  which SERVICE   stores objects?  ")
	if a != b {
		t.Errorf("expected equal keys for equivalent stems, got %s and %s", a, b)
	}

	c := StemKey("a different question entirely?")
	if a == c {
		t.Error("expected different keys for different stems")
	}
}
