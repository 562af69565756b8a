package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"nl2sql/internal/config"
	"nl2sql/internal/loader"
	"nl2sql/internal/metrics"
	"nl2sql/internal/metrics/datadog"
	"nl2sql/internal/metrics/prompush"
	"nl2sql/internal/pipeline"
	"nl2sql/internal/provision"
	"nl2sql/internal/storage"
)

// errInvalidConfig is returned after the issues have been printed.
var errInvalidConfig = errors.New("configuration is invalid")

// Function variables used to introduce test seams.
var (
	newProvisioner = func(logf func(string, ...any)) pipeline.Provisioner {
		return &provision.Provisioner{Logf: logf}
	}
	newLoader = func(dataDir string, logf func(string, ...any)) pipeline.Loader {
		return loader.New(dataDir, loader.LogObserver(logf))
	}
)

type rootFlags struct {
	cfgFile string
	envFile string
	verbose bool
}

func newRootCmd() *cobra.Command {
	var f rootFlags

	root := &cobra.Command{
		Use:   "etl",
		Short: "Provision the domain stores and load every source file",
		Long: `etl creates each domain's database if missing, then loads every configured
source file into its own table. Column names are reconciled through the
declared synonym tables and each table is replaced atomically.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadAndValidate(cmd, f)
			if err != nil {
				return err
			}
			return run(cmd, cfg, f.verbose)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&f.cfgFile, "config", "", "YAML config file (default: built-in domains)")
	pf.StringVar(&f.envFile, "env-file", "", "dotenv file with connection secrets (default: ./.env if present)")
	pf.BoolVarP(&f.verbose, "verbose", "v", false, "verbose output")
	pf.String("data-dir", "", "base directory of the source files")
	pf.String("backend", "", "storage backend (mysql, postgres, sqlite, mssql)")
	pf.String("host", "", "database host")
	pf.Int("port", 0, "database port")
	pf.String("user", "", "database user")
	pf.Int("domain-workers", 0, "domains loaded at once (0 = all)")
	pf.Int("table-workers", 0, "tables per domain loaded at once on backends with concurrent DDL")
	pf.Int("batch-size", 0, "rows per insert batch")
	pf.String("metrics-backend", "", "metrics backend (none, pushgateway, datadog)")
	pf.String("pushgateway-url", "", "Pushgateway base URL")
	pf.String("statsd-addr", "", "DogStatsD address")

	_ = root.RegisterFlagCompletionFunc("metrics-backend", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"none", "pushgateway", "datadog"}, cobra.ShellCompDirectiveNoFileComp
	})
	_ = root.RegisterFlagCompletionFunc("backend", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return storage.ListKinds(), cobra.ShellCompDirectiveNoFileComp
	})

	root.AddCommand(newValidateCmd(&f))
	root.AddCommand(newProbeCmd(&f))
	return root
}

func newValidateCmd(f *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the configuration and print the load plan",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadAndValidate(cmd, *f)
			if err != nil {
				return err
			}
			doms, err := cfg.Descriptors()
			if err != nil {
				return err
			}
			renderPlan(cmd.OutOrStdout(), doms)
			return nil
		},
	}
}

// loadAndValidate loads the layered config and prints every issue to stderr.
// Errors block; warnings do not.
func loadAndValidate(cmd *cobra.Command, f rootFlags) (*config.Config, error) {
	cfg, err := config.Load(config.Options{
		File:    f.cfgFile,
		EnvFile: f.envFile,
		Flags:   cmd.Root().PersistentFlags(),
	})
	if err != nil {
		return nil, err
	}
	issues := config.Validate(cfg)
	config.SortIssues(issues)
	for _, iss := range issues {
		fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
	}
	if config.HasErrors(issues) {
		return nil, errInvalidConfig
	}
	return cfg, nil
}

func run(cmd *cobra.Command, cfg *config.Config, verbose bool) error {
	logger := log.New(cmd.ErrOrStderr(), "", log.LstdFlags)
	logf := logger.Printf

	if verbose {
		storage.Logf = logf
	} else {
		storage.Logf = func(string, ...any) {}
	}

	flush, err := setupMetrics(cfg.Metrics, logf)
	if err != nil {
		return err
	}
	defer flush()

	doms, err := cfg.Descriptors()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if verbose {
		logf("pipeline: backend=%s domains=%d data_dir=%s", cfg.Connection.Kind, len(doms), cfg.DataDir)
	}

	d := pipeline.New(newProvisioner(logf), newLoader(cfg.DataDir, logf), pipeline.Options{
		DomainWorkers: cfg.Runtime.DomainWorkers,
		TableWorkers:  cfg.Runtime.TableWorkers,
		BatchSize:     cfg.Runtime.BatchSize,
	})
	rep := d.Run(ctx, doms)

	renderReport(cmd.OutOrStdout(), rep)
	if verbose {
		logf("completed in %s", rep.Elapsed.Truncate(time.Millisecond))
	}
	return rep.Err()
}

// setupMetrics installs the configured metrics backend and returns the
// function that flushes it at exit.
func setupMetrics(m config.Metrics, logf func(string, ...any)) (func(), error) {
	b, err := newMetricsBackend(m)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return func() {}, nil
	}
	logf("metrics: backend=%s", m.Backend)
	metrics.SetBackend(b)
	return func() {
		if err := metrics.Flush(); err != nil {
			logf("metrics: flush error: %v", err)
		}
	}, nil
}

// newMetricsBackend returns nil for the "none" backend.
func newMetricsBackend(m config.Metrics) (metrics.Backend, error) {
	switch m.Backend {
	case "", "none":
		return nil, nil
	case "pushgateway":
		b, err := prompush.NewBackend(prompush.DefaultJob, m.PushgatewayURL)
		if err != nil {
			return nil, fmt.Errorf("metrics: %w", err)
		}
		return b, nil
	case "datadog":
		b, err := datadog.NewBackend(datadog.Config{Addr: m.StatsdAddr})
		if err != nil {
			return nil, fmt.Errorf("metrics: %w", err)
		}
		return b, nil
	default:
		return nil, fmt.Errorf("metrics: unknown backend %q", m.Backend)
	}
}
