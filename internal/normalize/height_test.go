package normalize

import "testing"

func TestParseHeightCm(t *testing.T) {
	cases := []struct {
		in   string
		want int
		ok   bool
	}{
		{"173", 173, true},
		{"173 cm", 173, true},
		{"173cm", 173, true},
		{`5'8"`, 173, true},
		{"5' 8", 173, true},
		{"5'8''", 173, true},
		{"6'", 183, true},
		{"5.8", 173, true},
		{"5 ft 8 in", 173, true},
		{"5 feet 8 inches", 173, true},
		{"5 ft", 152, true},
		{"5", 152, true},
		{"  5'8\"  ", 173, true},
		{"5.13", 0, false},
		{"tall", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, ok := ParseHeightCm(tc.in)
		if ok != tc.ok {
			t.Fatalf("ParseHeightCm(%q) ok: want=%v got=%v", tc.in, tc.ok, ok)
		}
		if ok && got != tc.want {
			t.Fatalf("ParseHeightCm(%q): want=%d got=%d", tc.in, tc.want, got)
		}
	}
}

func TestParseHeightCmDecimalIsFeetInches(t *testing.T) {
	// "5.8" must read as 5 ft 8 in, never as 5 feet with the fraction dropped.
	got, ok := ParseHeightCm("5.8")
	if !ok {
		t.Fatalf("ParseHeightCm(5.8): unexpected invalid")
	}
	if got != 173 {
		t.Fatalf("ParseHeightCm(5.8): want=173 got=%d", got)
	}
}

func TestFormatHeightCm(t *testing.T) {
	cases := []struct {
		cm   int
		want string
	}{
		{173, `5'8"`},
		{152, `5'0"`},
		{183, `6'0"`},
	}
	for _, tc := range cases {
		if got := FormatHeightCm(tc.cm); got != tc.want {
			t.Fatalf("FormatHeightCm(%d): want=%q got=%q", tc.cm, tc.want, got)
		}
	}
}
