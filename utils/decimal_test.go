package utils

import "testing"

func TestParseAmount_AcceptsFormattedStrings(t *testing.T) {
	cases := []struct {
		in       string
		expected string
	}{
		{"20000", "20000"},
		{"20,000", "20000"},
		{"$ 20,000", "20000"},
		{"$ -20,000", "-20000"},
		{"  USD 1,234.50  ", "1234.5"},
		{"(15.25)", "-15.25"},
	}
	for _, tc := range cases {
		d, err := ParseAmount(tc.in)
		if err != nil {
			t.Fatalf("ParseAmount(%q) error: %v", tc.in, err)
		}
		if d.String() != tc.expected {
			t.Fatalf("ParseAmount(%q) expected %s, got %s", tc.in, tc.expected, d.String())
		}
	}
}

func TestParseAmount_RejectsGarbage(t *testing.T) {
	for _, in := range []string{"", "abc", "12x4", "$"} {
		if _, err := ParseAmount(in); err == nil {
			t.Fatalf("ParseAmount(%q) expected error", in)
		}
	}
}
