// Package cmd implements the fade CLI commands.
//
// The root command carries the flags every subcommand shares (config
// file, preset, verbosity) and builds the logger before any of them run.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/go-drift/fade/cmd/fade/internal/config"
	"github.com/go-drift/fade/pkg/errors"
)

// Version information set at build time.
var (
	Version   = "0.1.0-dev"
	BuildTime = "unknown"
)

// globals holds the persistent flags and what PersistentPreRunE derives
// from them.
type globals struct {
	configPath string
	preset     string
	verbose    bool

	logger *zap.Logger
}

// resolve loads the configuration named by the persistent flags.
func (g *globals) resolve() (*config.Resolved, error) {
	r, err := config.Resolve(g.configPath, g.preset)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if r.Path != "" {
		g.logger.Debug("loaded config", zap.String("path", r.Path), zap.String("preset", string(r.Preset)))
	}
	return r, nil
}

// NewRootCommand builds the command tree.
func NewRootCommand() *cobra.Command {
	g := &globals{logger: zap.NewNop()}

	root := &cobra.Command{
		Use:   "fade",
		Short: "fade - timed visibility animation for splash screens and overlays",
		Long: `fade drives the show/hide lifecycle of splash screens and loading
overlays: enter and exit animations, a looping spinner while shown,
and an optional dwell timer that advances on its own.

Settings come from the preset and, when present, fade.yaml.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg := zap.NewProductionConfig()
			cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
			if g.verbose {
				cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
			}
			logger, err := cfg.Build()
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			g.logger = logger
			errors.SetHandler(&errors.LogHandler{Logger: logger, Verbose: g.verbose})
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = g.logger.Sync()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&g.configPath, "config", "c", config.FileName, "configuration file (optional)")
	flags.StringVarP(&g.preset, "preset", "p", "", "preset to start from: splash or overlay (default from config, else splash)")
	flags.BoolVarP(&g.verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(
		newSimulateCommand(g),
		newRenderCommand(g),
		newPreviewCommand(g),
		newVersionCommand(),
	)
	return root
}

// Execute runs the CLI with os.Args.
func Execute() error {
	root := NewRootCommand()
	root.SetArgs(os.Args[1:])
	return root.Execute()
}
