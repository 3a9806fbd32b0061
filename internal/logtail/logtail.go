package logtail

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Read returns at most maxLines from the end of the file at path. A
// non-positive maxLines returns every line. A missing file yields no lines.
func Read(path string, maxLines int) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
		if maxLines > 0 && len(lines) > 2*maxLines {
			lines = append(lines[:0], lines[len(lines)-maxLines:]...)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}
	if maxLines > 0 && len(lines) > maxLines {
		lines = lines[len(lines)-maxLines:]
	}
	return lines, nil
}

// charmbracelet/log abbreviates levels to four letters.
var levelRank = map[string]int{
	"DEBU": 0, "DEBUG": 0,
	"INFO": 1,
	"WARN": 2,
	"ERRO": 3, "ERROR": 3,
	"FATA": 4, "FATAL": 4,
}

// LineLevel extracts the level token of a "date time LEVEL message" line.
func LineLevel(line string) (string, bool) {
	fields := strings.Fields(line)
	if len(fields) < 3 {
		return "", false
	}
	level := fields[2]
	_, ok := levelRank[level]
	return level, ok
}

// Filter keeps lines at or above minLevel. Lines without a recognised level
// (continuations, stack traces) follow the previous line's decision.
func Filter(lines []string, minLevel string) []string {
	minRank, ok := levelRank[strings.ToUpper(strings.TrimSpace(minLevel))]
	if !ok || minRank == 0 {
		return lines
	}
	out := make([]string, 0, len(lines))
	keep := true
	for _, line := range lines {
		if level, ok := LineLevel(line); ok {
			keep = levelRank[level] >= minRank
		}
		if keep {
			out = append(out, line)
		}
	}
	return out
}

var (
	stampStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#808080"))
	levelStyle = map[int]lipgloss.Style{
		0: lipgloss.NewStyle().Foreground(lipgloss.Color("#87CEEB")).Bold(true),
		1: lipgloss.NewStyle().Foreground(lipgloss.Color("#5FD75F")).Bold(true),
		2: lipgloss.NewStyle().Foreground(lipgloss.Color("#FFD700")).Bold(true),
		3: lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")).Bold(true),
		4: lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")).Bold(true),
	}
)

// ColorizeLine styles the timestamp and level of a log line.
func ColorizeLine(line string) string {
	level, ok := LineLevel(line)
	if !ok {
		return line
	}
	fields := strings.SplitN(line, " ", 4)
	if len(fields) < 3 {
		return line
	}
	rest := ""
	if len(fields) == 4 {
		rest = " " + fields[3]
	}
	stamp := stampStyle.Render(fields[0] + " " + fields[1])
	return stamp + " " + levelStyle[levelRank[level]].Render(fields[2]) + rest
}

// ColorizeLines applies ColorizeLine to each line.
func ColorizeLines(lines []string) []string {
	out := make([]string, len(lines))
	for i, line := range lines {
		out[i] = ColorizeLine(line)
	}
	return out
}
