package version

import (
	"strings"
	"testing"
)

func TestString(t *testing.T) {
	oldCommit, oldVersion := Commit, Version
	t.Cleanup(func() { Commit, Version = oldCommit, oldVersion })

	Version = "1.2.0"
	Commit = "0123456789abcdef"
	got := String()
	if !strings.HasPrefix(got, "auditplus 1.2.0 (commit: 0123456,") {
		t.Errorf("unexpected version string %q", got)
	}

	Commit = "abc"
	if ShortCommit() != "abc" {
		t.Errorf("short commits should be kept whole, got %q", ShortCommit())
	}
}
