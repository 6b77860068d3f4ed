package cli

import (
	"github.com/spf13/cobra"

	"github.com/five82/chronomap/internal/app"
)

// NewBrowseCommand creates the browse command, the interactive map.
func NewBrowseCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &app.BrowseOptions{}
	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Open the interactive map",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.Browse(cmd.Context(), rootOpts.app(), *opts)
		},
	}
	cmd.Flags().StringVar(&opts.Period, "period", "", "period to show first")
	cmd.Flags().StringVar(&opts.Theme, "theme", "", "colour theme (light|dark)")
	cmd.Flags().StringVar(&opts.ExportPath, "export", "overrides.json", "file the export key writes overrides to")
	return cmd
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the data directory for the map",
		Long: `Serve the dataset files of data_dir under /data/ so the map can load
them from data_url.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.Serve(cmd.Context(), rootOpts.app(), addr, nil)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:8740", "listen address")
	return cmd
}

// NewSaveCommand creates the save command.
func NewSaveCommand(rootOpts *RootOptions) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "save",
		Short: "Write exported overrides into the dataset files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.Save(rootOpts.app(), file, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "overrides.json", "exported override list")
	return cmd
}

// NewPeriodsCommand creates the periods command.
func NewPeriodsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "periods",
		Short: "List the configured periods",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.Periods(rootOpts.app(), cmd.OutOrStdout())
		},
	}
}
