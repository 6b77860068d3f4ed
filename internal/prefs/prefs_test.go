package prefs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/chronomap/internal/theme"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	p := Load("")
	assert.Equal(t, theme.Light, p.Theme)
	assert.Empty(t, p.Period)
}

func TestLoad_ReadsExistingFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	dir := filepath.Join(home, ".config", "chronomap")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "prefs.toml"), []byte("theme = \"Dark\"\nperiod = \"1760\"\n"), 0o644))

	p := Load("")
	assert.Equal(t, theme.Dark, p.Theme)
	assert.Equal(t, "1760", p.Period)
}

func TestLoad_GracefulDegradation(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"invalid toml", "not valid [[[ toml"},
		{"unknown theme", "theme = \"Dracula\"\n"},
		{"empty file", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "prefs.toml")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o644))

			assert.Equal(t, theme.Light, Load(path).Theme)
		})
	}
}

func TestSave_CreatesDirectoryAndRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "prefs.toml")

	require.NoError(t, Save(path, Prefs{Theme: theme.Dark, Period: "1640"}))

	got := Load(path)
	assert.Equal(t, Prefs{Theme: theme.Dark, Period: "1640"}, got)
}

func TestSave_OverwritesExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.toml")

	require.NoError(t, Save(path, Prefs{Theme: theme.Dark}))
	require.NoError(t, Save(path, Prefs{Theme: theme.Light}))

	assert.Equal(t, theme.Light, Load(path).Theme)
}

func TestDefaultPath(t *testing.T) {
	assert.Equal(t, "~/.config/chronomap/prefs.toml", DefaultPath())
}
