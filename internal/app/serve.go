package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"time"
)

// DataPrefix is the URL path the dataset files are served under.
const DataPrefix = "/data/"

const shutdownTimeout = 5 * time.Second

// Serve serves the data directory over HTTP until ctx is cancelled.
// ready, when non-nil, receives the bound address once listening.
func Serve(ctx context.Context, opts Options, addr string, ready func(net.Addr)) error {
	cfg, logger, closer, err := setup(opts, false)
	if err != nil {
		return err
	}
	defer func() { _ = closer.Close() }()

	info, err := os.Stat(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("data dir: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("data dir %s is not a directory", cfg.DataDir)
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	srv := &http.Server{
		Handler:           DataHandler(cfg.DataDir, logger),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()
	logger.Info("serving datasets", slog.String("addr", ln.Addr().String()), slog.String("dir", cfg.DataDir))
	if ready != nil {
		ready(ln.Addr())
	}

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	logger.Info("server stopped")
	return nil
}

// DataHandler serves files of dir under DataPrefix. Only GET and HEAD are
// allowed and directory listings are refused.
func DataHandler(dir string, logger *slog.Logger) http.Handler {
	files := http.StripPrefix(DataPrefix, http.FileServer(http.Dir(dir)))
	mux := http.NewServeMux()
	mux.HandleFunc(DataPrefix, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.Header().Set("Allow", "GET, HEAD")
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if r.URL.Path == DataPrefix || r.URL.Path[len(r.URL.Path)-1] == '/' {
			http.NotFound(w, r)
			return
		}
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		files.ServeHTTP(rec, r)
		logger.Debug("data request",
			slog.String("path", r.URL.Path),
			slog.Int("status", rec.status),
			slog.Duration("elapsed", time.Since(start)),
		)
	})
	return mux
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
