package cli

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/greenbim/carbonledger/internal/config"
	"github.com/greenbim/carbonledger/internal/logging"
)

// contextKey is the private type for values the CLI stashes in the command
// context.
type contextKey string

// configContextKey carries the loaded *config.Config.
const configContextKey contextKey = "config"

// setupLogging configures logging from config file, environment, and CLI
// flags, attaches the logger and config to the command context, and returns
// the logging result for cleanup.
func setupLogging(cmd *cobra.Command) *logging.Result {
	configPath, _ := cmd.Flags().GetString("config")
	if configPath == "" {
		configPath = config.Path()
	}
	cfg := config.LoadFile(cmd.Context(), configPath)

	loggingCfg := cfg.Logging

	debug, _ := cmd.Flags().GetBool("debug")
	if debug {
		loggingCfg.Level = "debug"
		loggingCfg.Format = "console"
		loggingCfg.File = ""
	}

	if envLevel := os.Getenv(config.EnvLogLevel); envLevel != "" && !debug {
		loggingCfg.Level = envLevel
	}
	if envFormat := os.Getenv(config.EnvLogFormat); envFormat != "" {
		loggingCfg.Format = envFormat
	}

	// An interactive terminal gets console output unless the config or
	// environment pinned a format.
	if cfg.Logging.Format == "" && os.Getenv(config.EnvLogFormat) == "" && !debug && isTerminal(os.Stderr) {
		loggingCfg.Format = "console"
	}

	result := logging.NewLogger(loggingCfg.ToLoggingConfig())
	logger = logging.ComponentLogger(result.Logger, "cli")

	ctx := context.WithValue(cmd.Context(), configContextKey, cfg)
	ctx = logger.WithContext(ctx)
	cmd.SetContext(ctx)

	logger.Info().Ctx(ctx).Str("command", cmd.Name()).Msg("command started")

	return &result
}

// configFromCmd returns the config loaded during setupLogging, or defaults
// when the command runs without the root's PersistentPreRun (tests).
func configFromCmd(cmd *cobra.Command) *config.Config {
	if cfg, ok := cmd.Context().Value(configContextKey).(*config.Config); ok {
		return cfg
	}
	return config.Default()
}
