package normaliser

import "testing"

func TestParseCheckoutTime(t *testing.T) {
	cases := []struct {
		name    string
		raw     string
		want    string
		wantOK  bool
	}{
		{"zero-padded text", "19:30", "19:30", true},
		{"unpadded hour gets zero-padded", "9:15", "09:15", true},
		{"seconds are truncated", "18:30:45", "18:30", true},
		{"serial fraction of a day", "0.770833333", "18:30", true},
		{"blank is absent", "", "", false},
		{"garbage is unparsable", "soon-ish", "", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := ParseCheckoutTime(tc.raw)
			if ok != tc.wantOK {
				t.Fatalf("ParseCheckoutTime(%q) ok = %v, want %v", tc.raw, ok, tc.wantOK)
			}
			if ok && got != tc.want {
				t.Fatalf("ParseCheckoutTime(%q) = %q, want %q", tc.raw, got, tc.want)
			}
		})
	}
}

// A "9:15" checkout time must zero-pad to "09:15" so that the department
// dossier's lexicographic ">19:30" cutoff (internal/aggregator/departments.go)
// never mistakes an early-morning reading for a late one.
func TestParseCheckoutTime_ZeroPaddingPreservesLexicographicOrder(t *testing.T) {
	early, ok := ParseCheckoutTime("9:15")
	if !ok {
		t.Fatal("expected 9:15 to parse")
	}
	if early > "19:30" {
		t.Fatalf("zero-padded early checkout %q must not lexicographically exceed 19:30", early)
	}
}
