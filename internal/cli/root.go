// Package cli implements the videostore command line.
package cli

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/viant/videostore/internal/config"
	"github.com/viant/videostore/internal/logging"
	"github.com/viant/videostore/store"
)

var version = "0.1.0"

// app carries the state shared by all commands of one invocation.
type app struct {
	cfgFile  string
	dir      string
	backend  string
	logLevel string

	cfg    *config.Config
	logger zerolog.Logger
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	a := &app{logger: zerolog.Nop()}
	root := &cobra.Command{
		Use:          "videostore",
		Short:        "Video embedding store with cosine similarity search",
		Long:         color.CyanString("videostore") + " keeps video embeddings with their metadata on disk and answers top-k similarity queries.",
		Version:      version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	flags := root.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "YAML config file (default $"+config.EnvConfigPath+")")
	flags.StringVarP(&a.dir, "dir", "d", "", "storage directory")
	flags.StringVar(&a.backend, "backend", "", "persistence backend: files or sqlite")
	flags.StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error")

	root.AddCommand(
		newAddCmd(a),
		newSearchCmd(a),
		newInfoCmd(a),
		newIngestCmd(a),
		newPersistCmd(a),
	)
	return root
}

// Execute runs the command line.
func Execute() error {
	return NewRootCmd().Execute()
}

func (a *app) init(cmd *cobra.Command) error {
	cfg, err := config.Load(a.cfgFile)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("dir") {
		cfg.Store.Dir = a.dir
	}
	if flags.Changed("backend") {
		cfg.Store.Backend = a.backend
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = a.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = logger
	return nil
}

func (a *app) openStore(ctx context.Context) (*store.Store, error) {
	factory := store.FileBackend
	if a.cfg.Store.Backend == config.BackendSQLite {
		factory = store.SQLiteBackend
	}
	s, err := store.Open(ctx, a.cfg.Store.Dir, store.WithBackend(factory), store.WithLogger(a.logger))
	if err != nil {
		return nil, fmt.Errorf("open store %s: %w", a.cfg.Store.Dir, err)
	}
	return s, nil
}
