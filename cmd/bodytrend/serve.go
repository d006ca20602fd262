package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/pkg/browser"
	"github.com/spf13/cobra"

	httpadapter "github.com/couchcryptid/body-trend-etl/internal/adapter/http"
	"github.com/couchcryptid/body-trend-etl/internal/pipeline"
)

func (a *app) newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the samples, summary API and trend page",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx, a.pipeline(nil))
		},
	}
}

// serve runs the HTTP server until ctx is cancelled, then drains it within
// the configured shutdown timeout.
func (a *app) serve(ctx context.Context, p *pipeline.Pipeline) error {
	dirs := httpadapter.Dirs{
		Data: filepath.Dir(a.cfg.SamplesJSON),
		Web:  a.cfg.WebDir,
	}
	srv := httpadapter.NewServer(a.cfg.HTTPAddr, p, dirs, a.logger)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	if a.cfg.OpenBrowser {
		url := pageURL(a.cfg.HTTPAddr, a.cfg.WebDir)
		if err := browser.OpenURL(url); err != nil {
			a.logger.Warn("could not open browser", "url", url, "error", err)
		}
	}

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}
	a.logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	a.logger.Info("shutdown complete")
	return nil
}

// pageURL is the address a browser should open: the trend page when a web
// directory exists, otherwise the samples API.
func pageURL(addr, webDir string) string {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		host, port = addr, "80"
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "localhost"
	}
	base := "http://" + net.JoinHostPort(host, port)
	if info, err := os.Stat(webDir); err == nil && info.IsDir() {
		return base + "/"
	}
	return base + "/api/samples"
}
