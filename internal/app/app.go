package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/five82/chronomap/internal/config"
	"github.com/five82/chronomap/internal/dataset"
	"github.com/five82/chronomap/internal/logging"
	"github.com/five82/chronomap/internal/mapview"
	"github.com/five82/chronomap/internal/overrides"
	"github.com/five82/chronomap/internal/prefs"
	"github.com/five82/chronomap/internal/search"
	"github.com/five82/chronomap/internal/termmap"
	"github.com/five82/chronomap/internal/theme"
	"github.com/five82/chronomap/internal/ui"
)

// Options configure the chronomap application.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses default ~/.config/chronomap/prefs.toml
	EnvFiles   []string
	// LogLevel overrides the configured level when set.
	LogLevel string
}

// BrowseOptions configure the interactive map.
type BrowseOptions struct {
	// Period is the period shown first; empty uses the last viewed one, then
	// the configured default.
	Period string
	// Theme forces a colour mode; empty uses the saved preference.
	Theme      string
	ExportPath string
}

// setup loads configuration and builds the logger. When toFile is set the
// log goes to the configured file so it does not disturb the terminal UI.
func setup(opts Options, toFile bool) (config.Config, *slog.Logger, io.Closer, error) {
	if err := config.LoadEnv(opts.EnvFiles...); err != nil {
		return config.Config{}, nil, nil, err
	}
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return config.Config{}, nil, nil, fmt.Errorf("load config: %w", err)
	}
	if opts.LogLevel != "" {
		if !logging.ValidLevel(opts.LogLevel) {
			return config.Config{}, nil, nil, fmt.Errorf("unknown log level %q", opts.LogLevel)
		}
		cfg.LogLevel = opts.LogLevel
	}

	logOpts := logging.Options{Format: cfg.LogFormat, Level: cfg.LogLevel}
	if toFile {
		logOpts.File = cfg.LogFile
	}
	logger, closer, err := logging.New(logOpts)
	if err != nil {
		return config.Config{}, nil, nil, fmt.Errorf("init logging: %w", err)
	}
	slog.SetDefault(logger)
	return cfg, logger, closer, nil
}

// Browse runs the interactive map until the user quits or ctx is cancelled.
func Browse(ctx context.Context, opts Options, browse BrowseOptions) error {
	cfg, logger, closer, err := setup(opts, true)
	if err != nil {
		return err
	}
	defer func() { _ = closer.Close() }()

	userPrefs := prefs.Load(opts.PrefsPath)
	mode := userPrefs.Theme
	if browse.Theme != "" {
		if mode, err = theme.Parse(browse.Theme); err != nil {
			return err
		}
	}
	periodID, err := initialPeriod(cfg, browse.Period, userPrefs.Period)
	if err != nil {
		return err
	}

	client, err := dataset.NewClient(cfg.DataURL)
	if err != nil {
		return fmt.Errorf("init dataset client: %w", err)
	}
	client.WithExt(cfg.DataExt)
	store := overrides.NewStore()
	logger = logger.With("session", store.SessionID())
	defer func() {
		if n := store.Count(); n > 0 {
			logger.Warn("discarding unsaved overrides", slog.Int("count", n))
		}
		store.Reset()
	}()

	surface := termmap.New(cfg.Center, cfg.InitialZoom)
	changes := make(chan struct{}, 1)
	orch := mapview.New(mapview.Options{
		Loader:   dataset.NewLoader(client, cfg.Catalog),
		Catalog:  cfg.Catalog,
		Store:    store,
		Map:      surface,
		Group:    surface,
		Theme:    mode,
		Labels:   cfg.Labels,
		Logger:   logger,
		OnChange: signal(changes),
	})
	defer orch.Close()
	surface.OnZoom(orch.ApplyZoom)

	results := make(chan search.Response, 4)
	var searcher ui.Searcher
	if searchClient, err := search.NewClient(cfg.SearchURL, cfg.SearchCountry); err != nil {
		logger.Warn("place search disabled", slog.String("error", err.Error()))
	} else {
		searcher = search.NewSearcher(searchClient, cfg.SearchDebounce, func(r search.Response) {
			select {
			case results <- r:
			case <-ctx.Done():
			}
		})
	}

	if err := orch.SelectPeriod(ctx, periodID); err != nil {
		return err
	}
	logger.Info("browse started", slog.String("period", periodID), slog.String("theme", mode.String()))

	return ui.Run(ui.Options{
		Context:       ctx,
		Orchestrator:  orch,
		Surface:       surface,
		Store:         store,
		Catalog:       cfg.Catalog,
		Searcher:      searcher,
		Changes:       changes,
		SearchResults: results,
		Theme:         mode,
		Home:          cfg.Center,
		HomeZoom:      cfg.InitialZoom,
		PrefsPath:     opts.PrefsPath,
		ExportPath:    browse.ExportPath,
		Logger:        logger,
	})
}

// initialPeriod picks the first period to show: an explicit choice must
// exist, a remembered one is used only while it still exists.
func initialPeriod(cfg config.Config, explicit, remembered string) (string, error) {
	if explicit != "" {
		if _, ok := cfg.Catalog.Lookup(explicit); !ok {
			return "", fmt.Errorf("%w: %q", dataset.ErrUnknownPeriod, explicit)
		}
		return explicit, nil
	}
	if _, ok := cfg.Catalog.Lookup(remembered); ok && remembered != "" {
		return remembered, nil
	}
	return cfg.DefaultPeriod, nil
}

// signal returns a callback that marks ch without blocking. Pending marks
// coalesce.
func signal(ch chan<- struct{}) func() {
	return func() {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
