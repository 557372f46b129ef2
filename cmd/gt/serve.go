package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gradtrack/gradtrack/internal/dashboard"
	"github.com/gradtrack/gradtrack/internal/storage"
	"github.com/gradtrack/gradtrack/internal/watch"
)

var serveCmd = &cobra.Command{
	Use:     "serve",
	GroupID: "advanced",
	Short:   "Serve a live dashboard of your applications",
	Long: `Start an HTTP server with a live feed of the application list.

Endpoints:
  /ws            WebSocket: a snapshot, then a message per change
  /applications  current list as JSON
  /health        liveness

WebSocket messages:
- snapshot: the whole list (on connect, load and import)
- application_update: an application was added, updated, or deleted
- saved / save_failed: outcome of each write
- external_change: another program edited the data file
- stats: counts by status, pinned, due this week

With the file backend the data file is watched for edits made by other
programs, such as a text editor or a sync client.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		port, _ := cmd.Flags().GetInt("port")
		if !cmd.Flags().Changed("port") {
			port = cfg.Dashboard.Port
		}

		sess, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer func() {
			if err := sess.Close(); err != nil {
				logger.Error("failed to save on shutdown", zap.Error(err))
			}
		}()

		server := dashboard.NewServer(&dashboard.Config{
			Port:     port,
			Snapshot: sess.store.Applications,
			Logger:   logger.Named("dashboard"),
		})
		handler := dashboard.NewHandler(server, logger.Named("dashboard"))
		unsubscribe := sess.store.Subscribe(handler.OnStoreEvent)
		defer unsubscribe()

		if err := server.Start(); err != nil {
			return fmt.Errorf("failed to start dashboard: %w", err)
		}

		if file, ok := sess.backend.(*storage.File); ok {
			watcher, err := watch.NewFileWatcher(watch.DefaultSettle, file.ChangedExternally)
			if err != nil {
				return err
			}
			if err := watcher.Start(file.Path()); err != nil {
				logger.Warn("not watching data file", zap.Error(err))
			} else {
				defer func() { _ = watcher.Stop() }()
				go forwardWatchEvents(watcher, handler)
			}
		}

		addr := server.GetAddr()
		fmt.Printf("Dashboard started on http://%s\n", addr)
		fmt.Printf("WebSocket endpoint: ws://%s/ws\n", addr)
		fmt.Println("\nPress Ctrl+C to stop...")

		ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer cancel()
		<-ctx.Done()

		fmt.Println("\nShutting down...")
		return server.Stop()
	},
}

func forwardWatchEvents(watcher *watch.FileWatcher, handler *dashboard.Handler) {
	events, errs := watcher.Events(), watcher.Errors()
	for events != nil || errs != nil {
		select {
		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			handler.OnExternalChange(ev)
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			logger.Warn("file watcher error", zap.Error(err))
		}
	}
}

func init() {
	serveCmd.Flags().IntP("port", "p", 8484, "Port to listen on (default from config)")
	rootCmd.AddCommand(serveCmd)
}

