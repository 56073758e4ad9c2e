// hdrive: harmonic drive geometry and involute profile engine.
//
// Computes strain wave gear geometry, tooth profiles and feasibility checks
// from the command line, or serves them to AI tools over MCP.
//
// Usage:
//
//	hdrive serve                          # Start MCP server (stdio transport)
//	hdrive geometry --teeth 160 --module 0.5 --material plastic
//	hdrive suggest --ratio 80 --max-diameter 100 --material plastic
//	hdrive export --design elbow.json5 --out elbow.dxf --xlsx
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/HendryAvila/hdrive/internal/config"
	"github.com/HendryAvila/hdrive/internal/logging"
)

// app holds what every subcommand needs once the root pre-run has loaded
// configuration and built the logger.
type app struct {
	configPath string
	cfg        *config.Config
	log        *zap.Logger
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(os.Stdout).ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func newRootCmd(out io.Writer) *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "hdrive",
		Short: "Harmonic drive geometry and involute profile engine",
		Long: `hdrive sizes strain wave gears: Circular Spline, Flex Spline and Wave Generator
geometry, involute tooth contours, strain and contact ratio checks, parameter
suggestions for a target ratio, a searchable design catalogue and DXF/XLSX export.

Run "hdrive serve" to expose everything as MCP tools over stdio.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.log != nil {
				_ = a.log.Sync()
			}
		},
	}
	root.SetOut(out)
	root.PersistentFlags().StringVar(&a.configPath, "config", config.DefaultPath(), "Config file (YAML)")

	root.AddCommand(
		a.serveCmd(),
		a.geometryCmd(),
		a.profileCmd(),
		a.validateCmd(),
		a.suggestCmd(),
		a.sweepCmd(),
		a.exportCmd(),
		a.designsCmd(),
		a.versionCmd(),
	)
	return root
}

func (a *app) init() error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	log, err := logging.New(cfg.Logging)
	if err != nil {
		return err
	}
	a.cfg, a.log = cfg, log
	log.Debug("config loaded", zap.String("path", a.configPath), zap.String("data_dir", cfg.Storage.DataDir))
	return nil
}
