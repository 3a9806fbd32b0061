package prefs

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/natefinch/atomic"
	toml "github.com/pelletier/go-toml/v2"
)

// Prefs is the on-disk preferences document.
type Prefs struct {
	Theme    string `toml:"theme"`
	LastList string `toml:"last_list,omitempty"`
}

const (
	defaultPrefsPath = "~/.config/retriever/prefs.toml"
	defaultTheme     = "Nightfox"
)

// DefaultPath returns the default preferences file path.
func DefaultPath() string {
	return defaultPrefsPath
}

func defaults() Prefs {
	return Prefs{Theme: defaultTheme}
}

// Load returns the preferences stored at path. A missing file yields the
// defaults with no error. A file that cannot be read or parsed also yields
// the defaults, together with the reason, so callers may log it and carry on.
func Load(path string) (Prefs, error) {
	file, err := locate(path)
	if err != nil {
		return defaults(), err
	}
	data, err := os.ReadFile(file)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return defaults(), nil
	case err != nil:
		return defaults(), fmt.Errorf("read prefs: %w", err)
	}

	var p Prefs
	if err := toml.Unmarshal(data, &p); err != nil {
		return defaults(), fmt.Errorf("parse prefs %s: %w", file, err)
	}
	p.Theme = strings.TrimSpace(p.Theme)
	p.LastList = strings.TrimSpace(p.LastList)
	if p.Theme == "" {
		p.Theme = defaultTheme
	}
	return p, nil
}

// Save replaces the preferences file with p. The parent directory is created
// on first use and the write goes through a temp file and rename.
func Save(path string, p Prefs) error {
	file, err := locate(path)
	if err != nil {
		return err
	}
	data, err := toml.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode prefs: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(file), 0o755); err != nil {
		return fmt.Errorf("create prefs dir: %w", err)
	}
	if err := atomic.WriteFile(file, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("write prefs %s: %w", file, err)
	}
	return nil
}

// Update loads the stored preferences, applies change and saves the result.
// A damaged file is overwritten starting from the defaults.
func Update(path string, change func(*Prefs)) error {
	p, _ := Load(path)
	change(&p)
	return Save(path, p)
}

// locate turns path (or the default when blank) into an absolute file name
// with a leading ~ expanded.
func locate(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		path = defaultPrefsPath
	}
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("locate prefs: %w", err)
		}
		path = filepath.Join(home, path[1:])
	}
	return filepath.Abs(path)
}
