package app

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/five82/chronomap/internal/savefile"
)

// Save applies an exported override list to the dataset files in the data
// directory and prints one line per (period, layer) group. It fails when
// any group failed.
func Save(opts Options, file string, out io.Writer) error {
	cfg, logger, closer, err := setup(opts, false)
	if err != nil {
		return err
	}
	defer func() { _ = closer.Close() }()

	f, err := os.Open(file)
	if err != nil {
		return fmt.Errorf("open overrides: %w", err)
	}
	entries, err := savefile.ReadEntries(f)
	_ = f.Close()
	if err != nil {
		return err
	}

	writer := savefile.NewWriter(cfg.DataDir, cfg.DataExt, cfg.Catalog, logger)
	report, err := writer.Save(entries)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, r := range report.Results {
		fmt.Fprintf(tw, "%s\t%s\tapplied %d\tskipped %d\n", r.Key, r.Status(), r.Applied, r.Skipped)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintln(out, report.Message())
	if !report.Success() {
		return fmt.Errorf("save: %d of %d groups failed", failed(report), len(report.Results))
	}
	return nil
}

func failed(r savefile.Report) int {
	n := 0
	for _, res := range r.Results {
		if res.Err != nil {
			n++
		}
	}
	return n
}

// Periods prints the configured period catalog.
func Periods(opts Options, out io.Writer) error {
	cfg, _, closer, err := setup(opts, false)
	if err != nil {
		return err
	}
	defer func() { _ = closer.Close() }()

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tLABEL\tAREAS\tBORDERS\tPOINTS\t")
	for _, p := range cfg.Catalog.All() {
		mark := ""
		if p.ID == cfg.DefaultPeriod {
			mark = "*"
		}
		fmt.Fprintf(tw, "%s%s\t%s\t%s\t%s\t%s\t\n", p.ID, mark, p.Label, p.Refs.Areas, p.Refs.Borders, p.Refs.Points)
	}
	return tw.Flush()
}
