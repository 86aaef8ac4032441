// Package cmd contains all CLI commands for shopctl
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"github.com/swadbest/shopctl/internal/apiclient"
	"github.com/swadbest/shopctl/internal/config"
	"github.com/swadbest/shopctl/internal/counts"
	"github.com/swadbest/shopctl/internal/output"
	"github.com/swadbest/shopctl/internal/session"
	"github.com/swadbest/shopctl/internal/shop"
)

var (
	cfgFile   string
	verbose   bool
	quiet     bool
	colorFlag string
	cfg       *config.Config
	logger    *slog.Logger
	app       *storefront
	version   = "dev"
)

// annotationOffline marks commands that never talk to the backend
const annotationOffline = "shopctl/offline"

// storefront holds the objects shared by every command for one invocation
type storefront struct {
	session *session.Store
	counts  *counts.Synchronizer
	shop    *shop.Services
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "shopctl",
	Short: "Storefront client for the terminal",
	Long: `shopctl lets customers browse the catalog, manage their cart and wishlist,
pay for orders and follow shipments from the terminal.

Example usage:
  shopctl login --email you@example.com    # Sign in
  shopctl products list --search honey     # Browse the catalog
  shopctl cart add <product> <variant>     # Add a variant to the cart
  shopctl orders track <order>             # Follow a shipment`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		app = nil
		if err := initConfig(); err != nil {
			return err
		}
		if cmd.Annotations[annotationOffline] == "true" {
			return nil
		}
		return initStorefront()
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if app != nil && app.counts != nil {
			app.counts.Close()
		}
		if !jsonRequested(cmd) {
			newPrinter(cmd).PrintHints(strings.TrimPrefix(cmd.CommandPath(), cmd.Root().Name()+" "))
		}
	},
}

// Execute runs the CLI and returns the process exit code
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return handleError(rootCmd.ExecuteContext(ctx), rootCmd.ErrOrStderr())
}

// handleError prints err to w and returns the matching exit code
func handleError(err error, w io.Writer) int {
	if err == nil {
		return output.ExitSuccess
	}
	cliErr := output.FromError(err)
	printerFor(w, w).FormatError(cliErr)
	return cliErr.ExitCode
}

// SetVersion sets the version string for the CLI
func SetVersion(v string) {
	version = v
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .shopctl.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress informational output")
	rootCmd.PersistentFlags().StringVar(&colorFlag, "color", "auto", "color output: auto, always, never")

	rootCmd.MarkFlagsMutuallyExclusive("verbose", "quiet")

	rootCmd.SetFlagErrorFunc(func(c *cobra.Command, err error) error {
		return &output.CLIError{
			Summary:    err.Error(),
			Suggestion: fmt.Sprintf("Run '%s --help' for usage", c.CommandPath()),
			ExitCode:   output.ExitUsageError,
		}
	})
}

// initConfig loads configuration and sets up the logger
func initConfig() error {
	var err error

	cfg, err = config.Load(cfgFile)
	if err != nil {
		return &output.CLIError{
			Summary:    "could not load configuration",
			Detail:     err.Error(),
			Suggestion: "Check .shopctl.yaml syntax or use --config flag",
			ExitCode:   output.ExitConfigError,
		}
	}

	logger = newLogger(os.Stderr, cfg.Logging, verbose)
	slog.SetDefault(logger)

	logger.Debug("configuration loaded",
		"base_url", cfg.API.BaseURL,
		"session_file", cfg.Session.File,
		"rate_limit", cfg.API.RateLimit,
	)
	return nil
}

func newLogger(w io.Writer, lc config.LoggingConfig, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	switch lc.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: level}
	if lc.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// initStorefront restores the session and wires the client stack
func initStorefront() error {
	store := session.NewStore(session.NewFileStorage(cfg.Session.File), session.WithLogger(logger))
	if err := store.Hydrate(); err != nil {
		if !errors.Is(err, session.ErrCorruptSession) {
			return fmt.Errorf("restoring session: %w", err)
		}
		logger.Warn("saved session was unusable and has been cleared", "error", err)
	}

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	client, err := apiclient.New(apiclient.Config{
		BaseURL:   cfg.API.BaseURL,
		Timeout:   cfg.API.Timeout,
		RateLimit: cfg.API.RateLimit,
		Burst:     cfg.API.Burst,
		UserAgent: "shopctl/" + version,
	}, store,
		apiclient.WithLogger(logger),
		apiclient.WithUnauthorizedHandler(func() {
			if err := store.Logout(); err != nil {
				logger.Error("failed to clear session", "error", err)
			}
		}),
	)
	if err != nil {
		return &output.CLIError{
			Summary:    "invalid backend address",
			Detail:     err.Error(),
			Suggestion: "Set api.base_url in .shopctl.yaml",
			ExitCode:   output.ExitConfigError,
		}
	}

	syncer := counts.New(store, shop.CountsFetcher(client),
		counts.WithLogger(logger),
		counts.WithTimeout(cfg.API.Timeout),
	)

	app = &storefront{
		session: store,
		counts:  syncer,
		shop: shop.NewServices(client, store, shop.Options{
			PaymentPublicKey: cfg.Payment.PublicKey,
			BlogTTL:          cfg.Cache.BlogTTL,
			Counts:           syncer,
			Logger:           logger,
		}),
	}
	return nil
}

// newPrinter creates a printer on the command's streams honoring --color and --quiet
func newPrinter(cmd *cobra.Command) *output.Printer {
	return printerFor(cmd.OutOrStdout(), cmd.ErrOrStderr())
}

func printerFor(out, errOut io.Writer) *output.Printer {
	mode, err := output.ParseColorMode(colorFlag)
	if err != nil {
		mode = output.ColorAuto
	}
	configColors := true
	if cfg != nil {
		configColors = cfg.Output.Colors
	}
	return output.NewPrinter(output.PrinterOptions{
		ColorMode:    mode,
		ConfigColors: configColors,
		Quiet:        quiet,
		Out:          out,
		Err:          errOut,
	})
}
