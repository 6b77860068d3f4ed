// Package cli defines the chronomap command line.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/five82/chronomap/internal/app"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath string
	PrefsPath  string
	LogLevel   string
	EnvFiles   []string
}

func (o *RootOptions) app() app.Options {
	return app.Options{
		ConfigPath: o.ConfigPath,
		PrefsPath:  o.PrefsPath,
		LogLevel:   o.LogLevel,
		EnvFiles:   o.EnvFiles,
	}
}

// NewRootCommand creates the root command. Without a subcommand it runs
// browse.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}
	browse := NewBrowseCommand(opts)

	cmd := &cobra.Command{
		Use:   "chronomap",
		Short: "Historical map of the Ukrainian lands in the terminal",
		Long: `chronomap shows time-sliced historical maps: regions, borders and
settlements of a selected period, with hover details, place search and an
editor whose changes can be exported and saved back into the datasets.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE:          browse.RunE,
	}
	cmd.Flags().AddFlagSet(browse.Flags())

	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "config file (default ~/.config/chronomap/config.toml)")
	cmd.PersistentFlags().StringVar(&opts.PrefsPath, "prefs", "", "preferences file (default ~/.config/chronomap/prefs.toml)")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "", "log level (trace|debug|info|warn|error)")
	cmd.PersistentFlags().StringSliceVar(&opts.EnvFiles, "env-file", nil, "env files to load (default .env)")

	cmd.AddCommand(browse)
	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewSaveCommand(opts))
	cmd.AddCommand(NewPeriodsCommand(opts))
	return cmd
}
