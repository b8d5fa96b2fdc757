package cli

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/getmockd/stubdb/pkg/config"
	"github.com/getmockd/stubdb/pkg/logging"
)

// loadConfig layers defaults, the config file, the environment and the
// global flags. Command specific flags are applied by the caller.
func loadConfig(cmd *cobra.Command, g *globalFlags) (*config.Config, error) {
	path := g.configFile
	if !cmd.Flags().Changed("config") {
		if v := os.Getenv(config.EnvConfig); v != "" {
			path = v
		}
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	config.ApplyEnv(cfg)

	if cmd.Flags().Changed("log-level") {
		cfg.Log.Level = g.logLevel
	}
	if cmd.Flags().Changed("log-format") {
		cfg.Log.Format = g.logFormat
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) *slog.Logger {
	lc := cfg.Logging()
	lc.Output = os.Stderr
	return logging.New(lc)
}
