package cmd

import (
	"io"
	"sync"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/cloudposse/specls/pkg/config"
	log "github.com/cloudposse/specls/pkg/logger"
	"github.com/cloudposse/specls/pkg/schema"
)

var (
	// specConfig is loaded in PersistentPreRunE before any subcommand runs.
	specConfig schema.Configuration

	cleanupMu sync.Mutex
	logCloser io.Closer
)

// RootCmd represents the base command when called without any subcommands.
var RootCmd = &cobra.Command{
	Use:   "specls",
	Short: "Language server for OpenAPI documents and literate configuration files",
	Long: `specls runs the transform pipeline behind literate configuration files (markdown documents
with embedded YAML blocks) whenever an editor opens or edits them, and reports the resulting
messages as diagnostics on the OpenAPI documents they reference.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig(cmd)
	},
}

// Execute runs the root command. This is called by main.main().
func Execute() error {
	return RootCmd.Execute()
}

// Cleanup releases resources held by the CLI, such as the log file.
func Cleanup() {
	cleanupMu.Lock()
	defer cleanupMu.Unlock()

	if logCloser != nil {
		if err := logCloser.Close(); err != nil {
			log.Trace("Closing log file", "error", err)
		}
		logCloser = nil
	}
}

func init() {
	pf := RootCmd.PersistentFlags()
	pf.String("config", "", "Path to a specls configuration file, merged over ~/.specls.yaml and ./specls.yaml")
	pf.String("logs-level", "Info", "Logs level. Supported log levels are Trace, Debug, Info, Warning, Error, Off")
	pf.String("logs-file", "/dev/stderr", "The file to write logs to. Stdout is reserved for the stdio transport")

	_ = viper.BindPFlag("logs.level", pf.Lookup("logs-level"))
	_ = viper.BindPFlag("logs.file", pf.Lookup("logs-file"))

	RootCmd.AddCommand(serveCmd, versionCmd)
}

// initConfig loads the configuration and configures the default logger from it.
func initConfig(cmd *cobra.Command) error {
	configFile, err := cmd.Flags().GetString("config")
	if err != nil {
		return err
	}

	loaded, err := config.LoadConfig(viper.GetViper(), configFile)
	if err != nil {
		return err
	}

	logger, closer, err := log.Configure(loaded.Logs.Level, loaded.Logs.File)
	if err != nil {
		return err
	}

	log.SetDefault(logger)
	Cleanup()
	cleanupMu.Lock()
	logCloser = closer
	cleanupMu.Unlock()

	specConfig = loaded
	log.Debug("Loaded configuration", "file", loaded.ConfigFileUsed, "level", loaded.Logs.Level)
	return nil
}
