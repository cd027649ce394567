package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/boxlens/internal/server"
	"github.com/matzehuels/boxlens/pkg/session"
)

// shutdownTimeout bounds graceful shutdown of the HTTP server.
const shutdownTimeout = 10 * time.Second

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr       string
		sessionTTL time.Duration
		noCache    bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the overlay renderer over HTTP",
		Long: `Serve the overlay renderer over HTTP.

POST /render renders a multipart upload (image + layout) in one request.
/sessions keeps an image and layout on the server so options can be
toggled and re-rendered without uploading again. Idle sessions expire
after --session-ttl.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("addr") {
				addr = c.Config.Server.Addr
			}
			if !cmd.Flags().Changed("session-ttl") {
				sessionTTL = c.Config.Server.SessionTTL.Duration
			}
			return c.runServe(cmd.Context(), addr, sessionTTL, noCache)
		},
	}

	defaults := DefaultConfig().Server
	cmd.Flags().StringVar(&addr, "addr", defaults.Addr, "listen address")
	cmd.Flags().DurationVar(&sessionTTL, "session-ttl", defaults.SessionTTL.Duration, "idle session lifetime")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, addr string, sessionTTL time.Duration, noCache bool) error {
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	store := session.NewMemoryStore(sessionTTL)
	go store.RunCleanup(ctx, max(sessionTTL/4, time.Second), func(n int) {
		c.Logger.Debug("expired sessions", "count", n)
	})

	srv := server.New(server.Config{
		MaxUpload: c.Config.Server.MaxUpload,
		Defaults:  c.Config.RenderOptions(),
	}, runner, store, c.Logger)

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		c.Logger.Info("listening", "addr", addr, "session_ttl", sessionTTL)
		errc <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	c.Logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return ctx.Err()
}
