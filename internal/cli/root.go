// Package cli wires configuration, the database provider and the searcher
// together and exposes them as cobra commands.
package cli

import (
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/zephyraoss/offline-finder/internal/config"
	"github.com/zephyraoss/offline-finder/internal/dbpath"
	"github.com/zephyraoss/offline-finder/internal/metrics"
	"github.com/zephyraoss/offline-finder/internal/store"
)

type rootFlags struct {
	dbPath     string
	configPath string
	logLevel   string
}

// deps is everything a command needs, built once per invocation.
type deps struct {
	cfg      config.Config
	logger   *slog.Logger
	resolver dbpath.Resolver
	provider *store.Provider
	searcher *store.Searcher
	prom     *metrics.Prometheus
}

func NewRootCmd() *cobra.Command {
	f := &rootFlags{}
	root := &cobra.Command{
		Use:           "offlinefinder",
		Short:         "Search the offline records database",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&f.dbPath, "db", "", "Path to db.sqlite (default: discover next to the binary or working directory)")
	root.PersistentFlags().StringVar(&f.configPath, "config", "", "YAML config file (default: $FINDER_CONFIG)")
	root.PersistentFlags().StringVar(&f.logLevel, "log-level", "", "debug, info, warn or error")

	root.AddCommand(newServeCmd(f), newSearchCmd(f), newLocateCmd(f))
	return root
}

// Execute runs the root command with os.Args.
func Execute() error {
	root := NewRootCmd()
	if err := root.Execute(); err != nil {
		root.PrintErrln("error:", err)
		return err
	}
	return nil
}

func (f *rootFlags) build(logOut io.Writer) (*deps, error) {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return nil, err
	}
	if f.dbPath != "" {
		cfg.DBPath = f.dbPath
	}
	if f.logLevel != "" {
		cfg.LogLevel = config.ParseLevel(f.logLevel, cfg.LogLevel)
	}

	logger := slog.New(slog.NewTextHandler(logOut, &slog.HandlerOptions{Level: cfg.LogLevel}))
	resolver := dbpath.Resolver{Override: cfg.DBPath}

	var rec metrics.Recorder
	var prom *metrics.Prometheus
	if cfg.Metrics {
		prom = metrics.NewPrometheus()
		rec = prom
	}

	provider := store.NewProvider(
		store.WithPathFunc(resolver.Resolve),
		store.WithPragmas(store.ReadOnlyPragmas(cfg.CacheSizeKiB, cfg.MmapSize)),
		store.WithLogger(logger),
	)
	return &deps{
		cfg:      cfg,
		logger:   logger,
		resolver: resolver,
		provider: provider,
		searcher: store.NewSearcher(provider, rec, logger),
		prom:     prom,
	}, nil
}
