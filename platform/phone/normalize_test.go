package phone

import "testing"

func TestNormalizeE164(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{"national number gets country code", "11 98765 4321", "+5511987654321"},
		{"already E.164", "+5511987654321", "+5511987654321"},
		{"foreign E.164 preserved", "+31612345678", "+31612345678"},
		{"whitespace trimmed", "  +5511987654321  ", "+5511987654321"},
		{"empty stays empty", "", ""},
		{"garbage returned trimmed", " not-a-phone ", "not-a-phone"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := NormalizeE164(tc.input); got != tc.want {
				t.Errorf("NormalizeE164(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}
