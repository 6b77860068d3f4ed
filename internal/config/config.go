package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/paulmach/orb"
	toml "github.com/pelletier/go-toml/v2"

	"github.com/five82/chronomap/internal/layers"
	"github.com/five82/chronomap/internal/logging"
	"github.com/five82/chronomap/internal/period"
)

// Config is the resolved chronomap configuration.
type Config struct {
	DataURL        string
	DataDir        string
	DataExt        string
	LogLevel       string
	LogFormat      string
	LogFile        string
	SearchURL      string
	SearchCountry  string
	SearchDebounce time.Duration
	InitialZoom    float64
	// Center is lon/lat.
	Center        orb.Point
	Labels        layers.LabelThresholds
	DefaultPeriod string
	Catalog       period.Catalog
}

const (
	defaultConfigPath = "~/.config/chronomap/config.toml"
	defaultDataURL    = "http://127.0.0.1:8740"
	defaultDataDir    = "~/.local/share/chronomap/data"
	defaultDataExt    = "geojson"
	defaultLogFile    = "~/.local/state/chronomap/chronomap.log"
	defaultLogLevel   = "info"
	defaultLogFormat  = "text"
	defaultZoom       = 6
	defaultDebounceMS = 500
	defaultCountry    = "ua"
	defaultSearchURL  = "https://nominatim.openstreetmap.org"
)

// Environment variables that override file values.
const (
	EnvDataURL  = "CHRONOMAP_DATA_URL"
	EnvDataDir  = "CHRONOMAP_DATA_DIR"
	EnvLogLevel = "CHRONOMAP_LOG_LEVEL"
)

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		DataURL:        defaultDataURL,
		DataDir:        mustExpand(defaultDataDir),
		DataExt:        defaultDataExt,
		LogLevel:       defaultLogLevel,
		LogFormat:      defaultLogFormat,
		LogFile:        mustExpand(defaultLogFile),
		SearchURL:      defaultSearchURL,
		SearchCountry:  defaultCountry,
		SearchDebounce: defaultDebounceMS * time.Millisecond,
		InitialZoom:    defaultZoom,
		Center:         orb.Point{30.81, 48.88},
		Labels:         layers.DefaultLabelThresholds(),
		DefaultPeriod:  period.Default().First().ID,
		Catalog:        period.Default(),
	}
}

type rawPeriod struct {
	ID      string `toml:"id"`
	Label   string `toml:"label"`
	Areas   string `toml:"areas"`
	Borders string `toml:"borders"`
	Points  string `toml:"points"`
}

type rawConfig struct {
	DataURL          string      `toml:"data_url"`
	DataDir          string      `toml:"data_dir"`
	DataExt          string      `toml:"data_ext"`
	LogLevel         string      `toml:"log_level"`
	LogFormat        string      `toml:"log_format"`
	LogFile          string      `toml:"log_file"`
	SearchURL        string      `toml:"search_url"`
	SearchCountry    string      `toml:"search_country"`
	SearchDebounceMS int         `toml:"search_debounce_ms"`
	InitialZoom      float64     `toml:"initial_zoom"`
	Center           []float64   `toml:"center"`
	LabelZoomLevel2  float64     `toml:"label_zoom_level2"`
	LabelZoomLevel3  float64     `toml:"label_zoom_level3"`
	DefaultPeriod    string      `toml:"default_period"`
	Periods          []rawPeriod `toml:"periods"`
}

// Load reads the TOML config at path (the default location when empty),
// applies environment overrides and validates the result. A missing file
// yields the defaults.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()
	file, err := os.Open(resolved)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return Config{}, fmt.Errorf("open config: %w", err)
	default:
		defer file.Close()
		bytes, err := io.ReadAll(file)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		var raw rawConfig
		if err := toml.Unmarshal(bytes, &raw); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
		if err := cfg.apply(raw); err != nil {
			return Config{}, err
		}
	}

	cfg.applyEnv(os.Getenv)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) apply(raw rawConfig) error {
	set := func(dst *string, v string) {
		if v = strings.TrimSpace(v); v != "" {
			*dst = v
		}
	}
	set(&c.DataURL, raw.DataURL)
	set(&c.DataExt, raw.DataExt)
	set(&c.LogLevel, raw.LogLevel)
	set(&c.LogFormat, raw.LogFormat)
	set(&c.SearchURL, raw.SearchURL)
	set(&c.SearchCountry, raw.SearchCountry)
	if v := strings.TrimSpace(raw.DataDir); v != "" {
		c.DataDir = mustExpand(v)
	}
	if v := strings.TrimSpace(raw.LogFile); v != "" {
		c.LogFile = mustExpand(v)
	}
	if raw.SearchDebounceMS > 0 {
		c.SearchDebounce = time.Duration(raw.SearchDebounceMS) * time.Millisecond
	}
	if raw.InitialZoom > 0 {
		c.InitialZoom = raw.InitialZoom
	}
	if len(raw.Center) > 0 {
		if len(raw.Center) != 2 {
			return fmt.Errorf("center must be [lat, lon], got %d values", len(raw.Center))
		}
		c.Center = orb.Point{raw.Center[1], raw.Center[0]}
	}
	if raw.LabelZoomLevel2 > 0 {
		c.Labels.Level2 = raw.LabelZoomLevel2
	}
	if raw.LabelZoomLevel3 > 0 {
		c.Labels.Level3 = raw.LabelZoomLevel3
	}

	if len(raw.Periods) > 0 {
		periods := make([]period.Period, len(raw.Periods))
		for i, p := range raw.Periods {
			periods[i] = period.Period{
				ID:    p.ID,
				Label: p.Label,
				Refs:  period.Refs{Areas: p.Areas, Borders: p.Borders, Points: p.Points},
			}
		}
		catalog, err := period.NewCatalog(periods)
		if err != nil {
			return fmt.Errorf("periods: %w", err)
		}
		c.Catalog = catalog
		c.DefaultPeriod = catalog.First().ID
	}
	set(&c.DefaultPeriod, raw.DefaultPeriod)
	return nil
}

func (c *Config) applyEnv(getenv func(string) string) {
	if v := strings.TrimSpace(getenv(EnvDataURL)); v != "" {
		c.DataURL = v
	}
	if v := strings.TrimSpace(getenv(EnvDataDir)); v != "" {
		c.DataDir = mustExpand(v)
	}
	if v := strings.TrimSpace(getenv(EnvLogLevel)); v != "" {
		c.LogLevel = v
	}
}

// Validate checks cross-field constraints.
func (c Config) Validate() error {
	if c.Catalog.Len() == 0 {
		return errors.New("config: no periods configured")
	}
	if _, ok := c.Catalog.Lookup(c.DefaultPeriod); !ok {
		return fmt.Errorf("config: default_period %q is not a configured period", c.DefaultPeriod)
	}
	if !logging.ValidLevel(c.LogLevel) {
		return fmt.Errorf("config: unknown log_level %q", c.LogLevel)
	}
	if c.Labels.Level3 < c.Labels.Level2 {
		return fmt.Errorf("config: label_zoom_level3 (%v) must not be below label_zoom_level2 (%v)", c.Labels.Level3, c.Labels.Level2)
	}
	return nil
}

// LoadEnv loads KEY=VALUE files into the process environment without
// overriding variables that are already set. Missing files are ignored.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	var present []string
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			present = append(present, f)
		}
	}
	if len(present) == 0 {
		return nil
	}
	if err := godotenv.Load(present...); err != nil {
		return fmt.Errorf("load env: %w", err)
	}
	return nil
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return ExpandPath(defaultConfigPath)
	}
	return ExpandPath(path)
}

func mustExpand(path string) string {
	expanded, err := ExpandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

// ExpandPath trims path, expands a leading ~ and makes it absolute.
func ExpandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
