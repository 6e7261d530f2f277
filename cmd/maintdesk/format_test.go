package main

import (
	"strings"
	"testing"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"short", 10, "short"},
		{"exactly-ten", 11, "exactly-ten"},
		{"this is far too long", 8, "this is…"},
		{"x", 0, ""},
		{"abc", 1, "a"},
	}
	for _, tt := range tests {
		if got := Truncate(tt.in, tt.max); got != tt.want {
			t.Errorf("Truncate(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
		}
	}
}

func TestColorStatus(t *testing.T) {
	if !strings.Contains(ColorStatus("COMPLETED"), ansiGreen) {
		t.Error("COMPLETED should be green")
	}
	if !strings.Contains(ColorStatus("CANCELLED"), ansiRed) {
		t.Error("CANCELLED should be red")
	}
	if !strings.Contains(ColorStatus("IN_PROGRESS"), ansiYellow) {
		t.Error("IN_PROGRESS should be yellow")
	}
	if ColorStatus("MYSTERY") != "MYSTERY" {
		t.Error("unknown status should pass through uncolored")
	}
}

func TestVisibleLenIgnoresANSI(t *testing.T) {
	plain := "PENDING"
	colored := ColorStatus(plain)
	if visibleLen(colored) != len(plain) {
		t.Errorf("visibleLen(%q) = %d, want %d", colored, visibleLen(colored), len(plain))
	}
}

func TestRenderTableAlignsColumns(t *testing.T) {
	var sb strings.Builder
	RenderTable(&sb, []string{"ID", "NAME"}, [][]string{
		{"1", "pump"},
		{"12345", "compressor"},
	})
	out := sb.String()

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("got %d lines, want header + divider + 2 rows", len(lines))
	}
	if !strings.HasPrefix(lines[0], "ID   ") {
		t.Errorf("header not padded to widest cell: %q", lines[0])
	}
	if !strings.Contains(lines[1], "-----") {
		t.Errorf("divider missing: %q", lines[1])
	}
}

func TestDashIfEmpty(t *testing.T) {
	if dashIfEmpty("") != "-" {
		t.Error("empty should render as dash")
	}
	if dashIfEmpty("x") != "x" {
		t.Error("non-empty should pass through")
	}
}
