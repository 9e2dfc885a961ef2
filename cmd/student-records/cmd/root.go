// Package cmd holds the student-records command tree.
package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/aanand-mishra/student-records/internal/config"
	"github.com/aanand-mishra/student-records/internal/logging"
	"github.com/aanand-mishra/student-records/internal/metrics"
	"github.com/aanand-mishra/student-records/internal/storage"
	"github.com/aanand-mishra/student-records/internal/store"

	// Storage drivers register themselves.
	_ "github.com/aanand-mishra/student-records/internal/storage/csvfile"
	_ "github.com/aanand-mishra/student-records/internal/storage/pebblekv"
	_ "github.com/aanand-mishra/student-records/internal/storage/sqlite"
)

// app is what every subcommand works with once the root has run.
type app struct {
	cfgPath string

	cfg     *config.Config
	metrics *metrics.Metrics
	records *store.Store
}

// NewRootCmd builds a fresh command tree.
func NewRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "student-records",
		Short: "Manage student records (NIM, name, department, GPA)",
		Long: `student-records keeps a list of students in a CSV file, SQLite or
Pebble and lets you add, edit, delete, search, sort and export them from
the command line, a JSON API or a browser.

Examples:
  student-records serve --config=config/local.yaml
  student-records list --query=siti --key=gpa --dir=desc
  student-records sort --key=name --algo=insertion`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.open(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.close()
		},
	}

	root.PersistentFlags().StringVarP(&a.cfgPath, "config", "c", "", "path to the YAML config (default $CONFIG_PATH)")

	root.AddCommand(
		newServeCmd(a),
		newListCmd(a),
		newAddCmd(a),
		newUpdateCmd(a),
		newDeleteCmd(a),
		newSortCmd(a),
		newExportCmd(a),
	)
	return root
}

// Execute runs the command tree and exits non-zero on failure.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// open loads configuration, sets up logging and loads the records.
func (a *app) open(cmd *cobra.Command) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}

	a.cfg = config.MustLoad(a.cfgPath)

	// The server logs to stdout; everything else keeps stdout for its output.
	if cmd.Name() == "serve" {
		logging.Setup(a.cfg.Env, a.cfg.Logging.Level, a.cfg.Logging.Format)
	} else {
		slog.SetDefault(logging.New(cmd.ErrOrStderr(), a.cfg.Env, a.cfg.Logging.Level, a.cfg.Logging.Format))
	}

	backend, err := storage.Open(a.cfg.Storage.Driver, a.cfg.Storage.Path)
	if err != nil {
		return err
	}

	a.metrics = metrics.New()
	a.records = store.New(backend,
		store.WithLogger(slog.Default()),
		store.WithMetrics(a.metrics))

	if err := a.records.Load(cmd.Context()); err != nil {
		_ = a.records.Close()
		a.records = nil
		return err
	}

	slog.Debug("storage initialised",
		slog.String("driver", a.cfg.Storage.Driver),
		slog.String("path", a.cfg.Storage.Path),
		slog.Int("records", a.records.Len()))
	return nil
}

func (a *app) close() error {
	if a.records == nil {
		return nil
	}
	err := a.records.Close()
	a.records = nil
	return err
}
