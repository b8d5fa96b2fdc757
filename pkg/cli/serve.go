package cli

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/getmockd/stubdb/pkg/config"
	"github.com/getmockd/stubdb/pkg/dbset"
	"github.com/getmockd/stubdb/pkg/engine"
	"github.com/getmockd/stubdb/pkg/metrics"
	"github.com/getmockd/stubdb/pkg/resolver"
)

const shutdownTimeout = 10 * time.Second

type serveFlags struct {
	host       string
	port       int
	securePort int
	dbsets     string
	mappings   []string
	autoCert   bool
}

func newServeCommand(g *globalFlags) *cobra.Command {
	f := &serveFlags{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the stub server",
		Long: `Start the HTTP and HTTPS listeners.

Datasets load in the background; /__stubdb/ready answers 503 until they are
all loaded and stub requests wait for them.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, g)
			if err != nil {
				return err
			}
			f.apply(cmd, cfg)
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cfg)
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&f.host, "host", "", "Interface to listen on")
	fl.IntVarP(&f.port, "port", "p", 0, "HTTP port, 0 disables")
	fl.IntVar(&f.securePort, "secure-port", 0, "HTTPS port, 0 disables")
	fl.StringVarP(&f.dbsets, "dbsets", "d", "", "Dataset directory")
	fl.StringSliceVarP(&f.mappings, "mappings", "m", nil, "Mapping file globs, replaces the configured list")
	fl.BoolVar(&f.autoCert, "auto-cert", false, "Serve HTTPS with a generated self-signed certificate")
	return cmd
}

func (f *serveFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	fl := cmd.Flags()
	if fl.Changed("host") {
		cfg.Server.Host = f.host
	}
	if fl.Changed("port") {
		cfg.Server.Port = f.port
	}
	if fl.Changed("secure-port") {
		cfg.Server.SecurePort = f.securePort
	}
	if fl.Changed("dbsets") {
		cfg.DBSets = f.dbsets
	}
	if fl.Changed("mappings") {
		cfg.Mappings = f.mappings
	}
	if fl.Changed("auto-cert") {
		cfg.Server.TLS.AutoCert = f.autoCert
	}
}

// runServe serves until ctx ends or a listener or dataset load fails.
func runServe(ctx context.Context, cfg *config.Config) error {
	if err := config.Validate(cfg).Err(); err != nil {
		return fmt.Errorf("invalid configuration:\n%w", err)
	}
	log := newLogger(cfg)

	m := metrics.NewServer()
	stopRuntime := m.Runtime.Start(15 * time.Second)
	defer stopRuntime()

	loader := dbset.LoadAsync(ctx, cfg.Resolve(cfg.DBSets),
		dbset.WithPattern(cfg.DBSetPattern),
		dbset.WithLogger(log),
	)
	if loader.Done() {
		if _, err := loader.Store(ctx); err != nil {
			return err
		}
	}

	set, err := cfg.LoadMappings()
	if err != nil {
		return err
	}
	res, err := resolver.New(set)
	if err != nil {
		return err
	}
	log.Info("mappings loaded", "count", res.Len())

	handler := engine.NewHandler(res, loader,
		engine.WithBaseDir(cfg.BaseDir()),
		engine.WithDatasetFallback(cfg.Templating.DatasetFallback),
		engine.WithLogger(log),
		engine.WithMetrics(m),
		engine.WithDebugInfo(cfg),
	)
	srv := engine.NewServer(cfg, handler, log)
	if err := srv.Start(); err != nil {
		return err
	}

	loadErr := make(chan error, 1)
	go func() {
		if _, err := loader.Store(ctx); err != nil && ctx.Err() == nil {
			loadErr <- err
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		log.Info("shutting down")
	case runErr = <-srv.Errors():
	case runErr = <-loadErr:
		runErr = fmt.Errorf("loading datasets: %w", runErr)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return errors.Join(runErr, srv.Shutdown(shutdownCtx))
}
