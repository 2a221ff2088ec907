package account

import "testing"

func TestParseKind(t *testing.T) {
	cases := []struct {
		in   string
		want Kind
		ok   bool
	}{
		{"SAVINGS", KindSavings, true},
		{" savings ", KindSavings, true},
		{"current", KindCurrent, true},
		{"fixed_deposit", KindFixedDeposit, true},
		{"salary", KindSalary, true},
		{"checking", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, err := ParseKind(tc.in)
		if tc.ok && (err != nil || got != tc.want) {
			t.Fatalf("ParseKind(%q) = %q, %v; want %q", tc.in, got, err, tc.want)
		}
		if !tc.ok && err == nil {
			t.Fatalf("ParseKind(%q) expected error", tc.in)
		}
	}
}
