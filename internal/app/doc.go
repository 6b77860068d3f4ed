// Package app is the composition root of chronomap.
//
// Every entry point loads the configuration (after applying any .env file)
// and builds the logger, then wires the parts it needs:
//
//   - Browse: dataset client and loader, override store, terminal surface,
//     map orchestrator, place searcher and the Bubble Tea UI. Logs go to the
//     configured file while the UI owns the terminal. Orchestrator changes
//     and search responses reach the UI through buffered channels, never by
//     calling into the running program.
//   - Serve: a static file server for the data directory under /data/,
//     the endpoint the dataset loader fetches from.
//   - Save: reads an exported override list and writes it into the dataset
//     files through the save collaborator.
//   - Periods: prints the configured period catalog.
package app
