package gitio

import "testing"

func TestIsCommitSHA(t *testing.T) {
	cases := map[string]bool{
		"a94a8fe5ccb19ba61c4c0873d391e987982fbbd3": true,
		"A94A8FE5CCB19BA61C4C0873D391E987982FBBD3": true,
		"v1.2.3":                                   false,
		"main":                                     false,
		"release-10.0":                             false,
		"a94a8fe":                                  false, // short SHA, not the full 40 hex chars
		"":                                          false,
	}
	for ref, want := range cases {
		if got := IsCommitSHA(ref); got != want {
			t.Errorf("IsCommitSHA(%q) = %v, want %v", ref, got, want)
		}
	}
}
