package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/ironsheep/core-column-mcp/internal/config"
	"github.com/ironsheep/core-column-mcp/internal/detection"
	"github.com/ironsheep/core-column-mcp/internal/imaging"
	"github.com/ironsheep/core-column-mcp/internal/segment"
	"github.com/ironsheep/core-column-mcp/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			os.Exit(130) // Standard shell convention for SIGINT
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		configPath string
		verbose    bool
	)

	root := &cobra.Command{
		Use:   "core-column-mcp",
		Short: "MCP server that turns core box photographs into depth-registered columns",
		Long: `core-column-mcp serves the Model Context Protocol over stdin/stdout.

It segments core box photographs with an external instance segmentation
service, assembles the detected columns into depth-registered images and
lets clients slice, combine, preview and save them.

Environment variables:
  ` + config.EnvInferenceURL + `   Inference service base URL
  ` + config.EnvLogLevel + `      debug, info, warn or error`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			level := cfg.Level()
			if verbose {
				level = log.DebugLevel
			}
			logger := newLogger(os.Stderr, level)

			return serve(cmd.Context(), cfg, logger)
		},
	}

	root.SetVersionTemplate(fmt.Sprintf("core-column-mcp %s\n  Build time: %s\n  Git commit: %s\n", Version, BuildTime, GitCommit))
	root.Flags().StringVarP(&configPath, "config", "c", "", "path to a TOML configuration file")
	root.Flags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	return root
}

// newLogger writes to w, never stdout: stdout carries the protocol.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
		Prefix:          "core-column",
	})
}

func serve(ctx context.Context, cfg *config.Config, logger *log.Logger) error {
	logger.Debug("starting", "version", Version, "built", BuildTime, "commit", GitCommit)

	opts := []server.Option{
		server.WithLogger(logger),
		server.WithVersion(Version),
	}

	if cfg.Detector.URL == "" {
		logger.Warn("no inference service configured, segmentation tools are disabled")
	} else {
		det, err := detection.NewHTTPDetector(cfg.Detector.URL, cfg.Detector.Timeout)
		if err != nil {
			return err
		}
		if err := det.Health(ctx); err != nil {
			logger.Warn("inference service is not healthy yet", "url", cfg.Detector.URL, "err", err)
		}

		segOpts := append([]segment.Option{
			segment.WithLogger(logger.WithPrefix("segment")),
			segment.WithCache(imaging.NewImageCache()),
		}, cfg.SegmentOptions()...)
		seg, err := segment.New(det, segOpts...)
		if err != nil {
			return err
		}
		opts = append(opts, server.WithSegmenter(seg))
		logger.Info("segmentation enabled", "url", cfg.Detector.URL, "classes", cfg.Classes,
			"order", cfg.Layout.Order, "endpoints", cfg.Layout.Endpoints)
	}

	return server.New(opts...).Run(ctx)
}
