// Package cli implements the cloudcluster command line.
package cli

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/PieMyth/CloudCluster/internal/core/domain"
	"github.com/PieMyth/CloudCluster/internal/core/ports/driving"
	"github.com/PieMyth/CloudCluster/internal/logger"
)

// EnvHome overrides the default config directory.
const EnvHome = "CLOUDCLUSTER_HOME"

// annotationStore marks commands that need a connected document store.
const annotationStore = "store"

var version = "dev"

// Global flags.
var (
	verbose   bool
	configDir string
	logFormat string
)

// Services wired by Bootstrap or SetServices.
var (
	settingsService driving.SettingsService
	loadService     driving.LoadService
	datasetService  driving.DatasetService
	fetchService    driving.FetchService
	queryService    driving.QueryService

	bootstrap     Bootstrap
	closeServices func(context.Context) error
)

// Options describe what a command invocation needs from Bootstrap.
type Options struct {
	// ConfigDir holds config.toml. Empty means the default location.
	ConfigDir string

	// Store overrides the configured store backend when set.
	Store domain.StoreBackend

	// NeedStore is true for commands that read or write the document store.
	NeedStore bool
}

// Services are the application services the commands call.
type Services struct {
	Settings driving.SettingsService
	Load     driving.LoadService
	Dataset  driving.DatasetService
	Fetch    driving.FetchService
	Query    driving.QueryService

	// Close releases store connections. May be nil.
	Close func(context.Context) error
}

// Bootstrap builds services once global flags are parsed.
type Bootstrap func(ctx context.Context, opts Options) (*Services, error)

var rootCmd = &cobra.Command{
	Use:   "cloudcluster",
	Short: "Load Inside Airbnb datasets into a document store",
	Long: `cloudcluster downloads Inside Airbnb snapshots, converts them to JSON record
arrays and bulk-loads them into MongoDB (or a local SQLite store) in batches.

A typical run is: fetch, stage, convert, load.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "",
		"Config directory (default $"+EnvHome+" or ~/.cloudcluster)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "Log format: console or json")
}

// SetServices injects services directly, bypassing Bootstrap.
func SetServices(s *Services) {
	if s == nil {
		return
	}
	settingsService = s.Settings
	loadService = s.Load
	datasetService = s.Dataset
	fetchService = s.Fetch
	queryService = s.Query
	closeServices = s.Close
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command. Services are built by b after flag parsing
// and closed before Execute returns.
func Execute(ctx context.Context, b Bootstrap) error {
	bootstrap = b
	err := rootCmd.ExecuteContext(ctx)
	if closeServices != nil {
		if cerr := closeServices(context.WithoutCancel(ctx)); cerr != nil {
			err = errors.Join(err, cerr)
		}
		closeServices = nil
	}
	return err
}

func setup(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)
	if logFormat != "" {
		if logFormat != logger.FormatConsole && logFormat != logger.FormatJSON {
			return errors.New("--log-format must be console or json")
		}
		logger.SetFormat(logFormat)
	}

	if bootstrap == nil {
		return nil
	}

	opts := Options{
		ConfigDir: resolveConfigDir(),
		NeedStore: cmd.Annotations[annotationStore] == "true",
	}
	if f := cmd.Flags().Lookup("store"); f != nil && f.Changed {
		opts.Store = domain.StoreBackend(strings.ToLower(f.Value.String()))
	}

	svc, err := bootstrap(cmd.Context(), opts)
	if err != nil {
		return err
	}
	SetServices(svc)
	applyLogSettings()
	return nil
}

// resolveConfigDir returns --config-dir, then $CLOUDCLUSTER_HOME, else "".
func resolveConfigDir() string {
	if configDir != "" {
		return configDir
	}
	if home := strings.TrimSpace(os.Getenv(EnvHome)); home != "" {
		return filepath.Clean(home)
	}
	return ""
}

// applyLogSettings lets the config file raise verbosity and pick the format
// when the flags were not given.
func applyLogSettings() {
	if settingsService == nil {
		return
	}
	settings, err := settingsService.Get()
	if err != nil {
		return
	}
	if !verbose {
		switch settings.Logging.Level {
		case "debug", "info":
			logger.SetVerbose(true)
		}
	}
	if logFormat == "" {
		logger.SetFormat(settings.Logging.Format)
	}
}
