// Package prefs persists chronomap user preferences in
// ~/.config/chronomap/prefs.toml.
package prefs

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/five82/chronomap/internal/config"
	"github.com/five82/chronomap/internal/theme"
)

// Prefs holds what the interface remembers between runs.
type Prefs struct {
	Theme theme.Mode
	// Period is the last period viewed; empty means the configured default.
	Period string
}

type filePrefs struct {
	Theme  string `toml:"theme"`
	Period string `toml:"period,omitempty"`
}

const defaultPrefsPath = "~/.config/chronomap/prefs.toml"

// DefaultPath returns the default preferences file path.
func DefaultPath() string {
	return defaultPrefsPath
}

// Load reads preferences from path. Any failure to read or parse the file
// yields the defaults; the error is never fatal for the caller.
func Load(path string) Prefs {
	defaults := Prefs{Theme: theme.Light}

	resolved, err := resolvePath(path)
	if err != nil {
		return defaults
	}
	file, err := os.Open(resolved)
	if err != nil {
		return defaults
	}
	defer func() { _ = file.Close() }()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return defaults
	}
	var raw filePrefs
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return defaults
	}
	mode, err := theme.Parse(raw.Theme)
	if err != nil {
		mode = theme.Light
	}
	return Prefs{Theme: mode, Period: strings.TrimSpace(raw.Period)}
}

// Save writes preferences to path, creating directories as needed.
func Save(path string, p Prefs) error {
	resolved, err := resolvePath(path)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(resolved), 0o755); err != nil {
		return fmt.Errorf("create prefs dir: %w", err)
	}
	bytes, err := toml.Marshal(filePrefs{Theme: p.Theme.String(), Period: p.Period})
	if err != nil {
		return fmt.Errorf("marshal prefs: %w", err)
	}
	if err := os.WriteFile(resolved, bytes, 0o644); err != nil {
		return fmt.Errorf("write prefs: %w", err)
	}
	return nil
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		path = defaultPrefsPath
	}
	return config.ExpandPath(path)
}
