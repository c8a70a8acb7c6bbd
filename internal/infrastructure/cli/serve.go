package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/forgeflow/internal/application"
	"github.com/felixgeelhaar/forgeflow/internal/infrastructure/server"
	"github.com/felixgeelhaar/forgeflow/internal/infrastructure/sse"
	"github.com/felixgeelhaar/forgeflow/internal/infrastructure/storage"
	"github.com/felixgeelhaar/forgeflow/internal/infrastructure/watch"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the workflow over HTTP with live events and node chat",
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServicesForCurrentDir()
		if err != nil {
			return err
		}

		logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

		stream := sse.NewSSEHandler(services.Dispatcher)
		srv := server.NewServer(serveAddr, services.Workflows, services.Generation,
			services.Notifier, stream, services.Mission, logger)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		// Reload when the manifest changes under our feet, but not when
		// the change is our own save landing on disk.
		externalChange := manifestReloadGuard(services.Workflows)
		watcher, err := watch.NewManifestWatcher(services.Repo, 500*time.Millisecond, func(filename string) {
			if filename != storage.WorkflowFile {
				return
			}
			if !externalChange() {
				return
			}
			if err := services.Workflows.Load(); err != nil {
				logger.Error().Err(err).Msg("manifest reload failed")
				return
			}
			logger.Info().Msg("manifest reloaded from disk")
		})
		if err != nil {
			return err
		}
		go func() {
			if err := watcher.Run(ctx); err != nil && ctx.Err() == nil {
				logger.Error().Err(err).Msg("manifest watcher stopped")
			}
		}()

		errCh := make(chan error, 1)
		go func() { errCh <- srv.Start() }()

		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		case err := <-errCh:
			return err
		}
	},
}

// manifestReloadGuard returns a predicate that reports whether a watch
// event for the workflow manifest came from an external edit. Events that
// line up with our own save counter are consumed without a reload, which
// would otherwise push a redundant history snapshot.
func manifestReloadGuard(workflows *application.WorkflowService) func() bool {
	last := workflows.SaveCount()
	return func() bool {
		if n := workflows.SaveCount(); n != last {
			last = n
			return false
		}
		return true
	}
}

func init() {
	serveCmd.Flags().StringVarP(&serveAddr, "addr", "a", ":8787", "Listen address")
	RootCmd.AddCommand(serveCmd)
}
