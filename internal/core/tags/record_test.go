package tags

import "testing"

func TestParsePair(t *testing.T) {
	cases := []struct {
		in        string
		num, total uint
	}{
		{"", 0, 0},
		{"7", 7, 0},
		{"3/12", 3, 12},
		{"3/12/99", 3, 12},
		{"03/008", 3, 8},
		{"2/junk", 2, 0},
		{"junk", 0, 0},
		{"-4", 0, 0},
		{"/12", 0, 12},
	}
	for _, c := range cases {
		num, total := parsePair(c.in)
		if num != c.num || total != c.total {
			t.Errorf("parsePair(%q) = (%d, %d), expected (%d, %d)", c.in, num, total, c.num, c.total)
		}
	}
}

func TestFormatPair(t *testing.T) {
	cases := []struct {
		num, total uint
		out        string
	}{
		{0, 0, ""},
		{7, 0, "7"},
		{3, 12, "3/12"},
		{0, 12, "0/12"},
	}
	for _, c := range cases {
		if got := formatPair(c.num, c.total); got != c.out {
			t.Errorf("formatPair(%d, %d) = %q, expected %q", c.num, c.total, got, c.out)
		}
	}
}

func TestFormatPairRoundTrip(t *testing.T) {
	// Every encodable pair decodes back to itself.
	pairs := [][2]uint{{0, 0}, {1, 0}, {3, 12}, {0, 12}}
	for _, p := range pairs {
		num, total := parsePair(formatPair(p[0], p[1]))
		if num != p[0] || total != p[1] {
			t.Errorf("Pair (%d, %d) did not survive the round trip: got (%d, %d)", p[0], p[1], num, total)
		}
	}
}

func TestParseUintPermissive(t *testing.T) {
	cases := []struct {
		in  string
		out uint
	}{
		{"", 0},
		{"7", 7},
		{"007", 7},
		{"2006-05-01", 2006},
		{"12abc", 12},
		{"abc", 0},
		{"-5", 0},
		{"+5", 5},
		{" 42 ", 42},
	}
	for _, c := range cases {
		if got := parseUint(c.in); got != c.out {
			t.Errorf("parseUint(%q) = %d, expected %d", c.in, got, c.out)
		}
	}
}

func TestFirstNonEmpty(t *testing.T) {
	if got := firstNonEmpty("", "", "third"); got != "third" {
		t.Errorf("Expected %q, got %q", "third", got)
	}
	if got := firstNonEmpty("first", "second"); got != "first" {
		t.Errorf("Expected %q, got %q", "first", got)
	}
	if got := firstNonEmpty(); got != "" {
		t.Errorf("Expected empty string, got %q", got)
	}
}
