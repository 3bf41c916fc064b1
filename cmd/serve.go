package cmd

import (
	"context"
	"os"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/cloudposse/specls/pkg/config"
	log "github.com/cloudposse/specls/pkg/logger"
	"github.com/cloudposse/specls/pkg/lsp/engine/local"
	"github.com/cloudposse/specls/pkg/lsp/server"
	"github.com/cloudposse/specls/pkg/lsp/watcher"
	"github.com/cloudposse/specls/pkg/schema"
	"github.com/cloudposse/specls/pkg/version"
)

// serveCmd runs the language server.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the language server",
	Long: `Run the language server over stdio (the default), TCP or WebSocket.

With --watch, files changed on disk under the working directory are reported to the server
the same way an editor reports workspace/didChangeWatchedFiles.`,
	Example: "specls serve\nspecls serve --transport tcp --address 127.0.0.1:7998 --watch",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := specConfig
		if stdio, _ := cmd.Flags().GetBool("stdio"); stdio {
			cfg.Server.Transport = config.TransportStdio
		}
		return runServe(cmd.Context(), cfg)
	},
}

func init() {
	f := serveCmd.Flags()
	f.String("transport", config.TransportStdio, "Transport to serve: stdio, tcp or websocket")
	f.String("address", config.DefaultAddress, "Listen address for the tcp and websocket transports")
	f.Bool("watch", false, "Watch the working directory for changes to configuration and OpenAPI files")
	f.Duration("watch-debounce", config.DefaultWatchDebounce, "Quiet period before a batch of file changes is reported")
	f.Bool("trace", false, "Log every protocol message")
	// Editors using vscode-languageclient append --stdio to the server command.
	f.Bool("stdio", false, "Shorthand for --transport stdio")
	_ = f.MarkHidden("stdio")

	_ = viper.BindPFlag("server.transport", f.Lookup("transport"))
	_ = viper.BindPFlag("server.address", f.Lookup("address"))
	_ = viper.BindPFlag("server.watch", f.Lookup("watch"))
	_ = viper.BindPFlag("server.watch_debounce", f.Lookup("watch-debounce"))
	_ = viper.BindPFlag("server.trace", f.Lookup("trace"))
}

// runServe runs the server until its transport ends.
func runServe(ctx context.Context, cfg schema.Configuration) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	s, err := server.NewServer(ctx, cfg, local.New, afero.NewOsFs())
	if err != nil {
		return err
	}
	defer func() {
		_ = s.Shutdown()
	}()

	if cfg.Server.Watch {
		root, err := os.Getwd()
		if err != nil {
			return err
		}
		w, err := startWatcher(ctx, root, cfg.Server.WatchDebounce, s.Dispatcher().FilesChanged)
		if err != nil {
			return err
		}
		defer func() {
			_ = w.Close()
		}()
	}

	log.Info("Starting specls", "version", version.Version, "transport", cfg.Server.Transport)
	return s.Run()
}

func startWatcher(ctx context.Context, root string, delay time.Duration, handler watcher.Handler) (*watcher.Watcher, error) {
	if delay <= 0 {
		delay = config.DefaultWatchDebounce
	}

	w, err := watcher.New(delay, handler, watcher.Relevant)
	if err != nil {
		return nil, err
	}
	if err := w.AddRecursive(root); err != nil {
		_ = w.Close()
		return nil, err
	}
	w.Start(ctx)

	log.Debug("Watching for file changes", "root", root, "debounce", delay)
	return w, nil
}
