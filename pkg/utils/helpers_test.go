package utils

import (
	"strings"
	"testing"
)

func TestRandomHexLength(t *testing.T) {
	if got := RandomHex(4); len(got) != 8 {
		t.Fatalf("expected 8 hex chars, got %q", got)
	}
}

func TestNickname(t *testing.T) {
	n := Nickname()
	if parts := strings.Split(n, "-"); len(parts) != 3 || len(parts[2]) != 4 {
		t.Fatalf("unexpected nickname %q", n)
	}
}
