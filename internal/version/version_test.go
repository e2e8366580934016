package version

import (
	"strings"
	"testing"
)

func TestColoredKeepsDigits(t *testing.T) {
	orig := Version
	defer func() { Version = orig }()

	Version = "1.2.3-rc1"
	if got := Colored(false); got != "1.2.3-rc1" {
		t.Fatalf("plain = %q", got)
	}
	got := Colored(true)
	if !strings.Contains(got, "\x1b[") || !strings.HasSuffix(got, "-rc1") {
		t.Fatalf("colored = %q", got)
	}
	for _, part := range []string{"1", "2", "3"} {
		if !strings.Contains(got, part) {
			t.Fatalf("colored %q lost %s", got, part)
		}
	}
}

func TestColoredOddVersion(t *testing.T) {
	orig := Version
	defer func() { Version = orig }()

	Version = "nightly"
	if got := Colored(true); got != "nightly" {
		t.Fatalf("colored = %q", got)
	}
}
