package logtail

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestRead(t *testing.T) {
	tmpDir := t.TempDir()
	logPath := filepath.Join(tmpDir, "test.log")

	var content strings.Builder
	var expectedAll []string
	for i := 1; i <= 10; i++ {
		line := fmt.Sprintf("Line %d", i)
		content.WriteString(line + "\n")
		expectedAll = append(expectedAll, line)
	}

	if err := os.WriteFile(logPath, []byte(content.String()), 0644); err != nil {
		t.Fatalf("failed to create test log file: %v", err)
	}

	tests := []struct {
		name     string
		maxLines int
		expected []string
	}{
		{"read all (0)", 0, expectedAll},
		{"read all (negative)", -1, expectedAll},
		{"read partial (3)", 3, expectedAll[7:]},
		{"read partial (5)", 5, expectedAll[5:]},
		{"read exactly all (10)", 10, expectedAll},
		{"read more than exists (20)", 20, expectedAll},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Read(logPath, tt.maxLines)
			if err != nil {
				t.Fatalf("Read() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("Read() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestRead_MissingFile(t *testing.T) {
	got, err := Read(filepath.Join(t.TempDir(), "nope.log"), 5)
	if err != nil || got != nil {
		t.Fatalf("Read() = %v, %v; want nil, nil", got, err)
	}
}

func TestFilter(t *testing.T) {
	lines := []string{
		"2026-01-02 10:00:00 DEBU loaded list=items",
		"2026-01-02 10:00:01 INFO poll ok",
		"2026-01-02 10:00:02 WARN load failed list=staff",
		"  caused by: timeout",
		"2026-01-02 10:00:03 ERRO search failed",
		"2026-01-02 10:00:04 INFO poll ok",
	}

	got := Filter(lines, "warn")
	want := []string{lines[2], lines[3], lines[4]}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Filter(warn) = %v, want %v", got, want)
	}

	if got := Filter(lines, "debug"); len(got) != len(lines) {
		t.Fatalf("Filter(debug) kept %d lines, want all", len(got))
	}
	if got := Filter(lines, "bogus"); len(got) != len(lines) {
		t.Fatalf("Filter(bogus) kept %d lines, want all", len(got))
	}
}

func TestLineLevel(t *testing.T) {
	if level, ok := LineLevel("2026-01-02 10:00:00 ERRO boom"); !ok || level != "ERRO" {
		t.Fatalf("LineLevel = %q, %v", level, ok)
	}
	if _, ok := LineLevel("plain text line"); ok {
		t.Fatal("LineLevel matched a line without a level")
	}
}

func TestColorizeLines_KeepsText(t *testing.T) {
	input := []string{
		"2026-01-02 10:00:02 WARN load failed list=staff",
		"    continuation",
		"",
	}
	got := ColorizeLines(input)
	if len(got) != len(input) {
		t.Fatalf("ColorizeLines returned %d lines, want %d", len(got), len(input))
	}
	for _, part := range []string{"2026-01-02 10:00:02", "WARN", "load failed list=staff"} {
		if !strings.Contains(got[0], part) {
			t.Fatalf("colorized line %q lost %q", got[0], part)
		}
	}
	if got[1] != input[1] || got[2] != "" {
		t.Fatalf("non-log lines changed: %q", got[1:])
	}
}
