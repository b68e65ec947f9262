package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/PieMyth/CloudCluster/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and change settings stored in config.toml.

Environment variables override the file: CLOUDCLUSTER_MONGO_URI,
CLOUDCLUSTER_DATABASE, CLOUDCLUSTER_STORE and CLOUDCLUSTER_LOG_LEVEL.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <key> [value]",
	Short: "Set a single setting",
	Long: `Sets one setting, e.g. "cloudcluster settings set listings.batch_size 500".

If the value is omitted it is read from stdin without echo, which keeps
connection strings out of shell history.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runSettingsSet,
}

var settingsKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List setting keys",
	RunE:  runSettingsKeys,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsKeysCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Printf("File: %s\n\n", settingsService.Path())

	cmd.Println("[Store]")
	cmd.Printf("  Backend: %s\n", settings.Store.Backend.Description())
	if settings.Store.URI != "" {
		cmd.Printf("  URI: %s\n", maskURI(settings.Store.URI))
	} else {
		cmd.Printf("  URI: (not set)\n")
	}
	cmd.Printf("  Database: %s\n", settings.Store.Database)
	cmd.Printf("  Write concern: %s\n", orDefault(settings.Store.WriteConcern, "(driver default)"))
	cmd.Printf("  Data dir: %s\n", settings.Store.DataDir)
	cmd.Println()

	cmd.Println("[Paths]")
	cmd.Printf("  Downloads: %s\n", settings.Paths.DownloadDir)
	cmd.Printf("  Staging: %s\n", settings.Paths.StagingDir)
	cmd.Printf("  JSON: %s\n", settings.Paths.JSONDir)
	cmd.Println()

	for _, c := range []struct {
		title string
		cs    domain.CollectionSettings
	}{{"[Listings]", settings.Listings}, {"[Reviews]", settings.Reviews}} {
		cmd.Println(c.title)
		cmd.Printf("  Collection: %s\n", c.cs.Name)
		cmd.Printf("  Batch size: %d\n", c.cs.BatchSize)
		if len(c.cs.Indices) > 0 {
			cmd.Printf("  Indices: %v\n", c.cs.Indices)
		} else {
			cmd.Printf("  Indices: (all files present)\n")
		}
		cmd.Println()
	}

	cmd.Println("[Fetch]")
	cmd.Printf("  Index URL: %s\n", settings.Fetch.IndexURL)
	cmd.Printf("  Requests/s: %g\n", settings.Fetch.RequestsPerSecond)
	cmd.Printf("  Workers: %d\n", settings.Fetch.Workers)
	cmd.Printf("  Latest only: %t\n", settings.Fetch.LatestOnly)
	cmd.Println()

	cmd.Println("[Logging]")
	cmd.Printf("  Level: %s\n", settings.Logging.Level)
	cmd.Printf("  Format: %s\n", settings.Logging.Format)
	cmd.Println()

	if err := settings.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
		cmd.Println("Run 'cloudcluster settings set <key> <value>' to fix configuration issues.")
	} else {
		cmd.Println("Configuration is valid.")
	}
	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	key := args[0]
	var value string
	if len(args) == 2 {
		value = args[1]
	} else {
		cmd.Printf("Value for %s: ", key)
		value = readSecret(cmd.InOrStdin())
		cmd.Println()
	}

	if err := settingsService.Set(key, value); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	cmd.Printf("Set %s\n", key)
	return nil
}

func runSettingsKeys(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	for _, k := range settingsService.Keys() {
		cmd.Println(k)
	}
	return nil
}

// readSecret reads one line from in, without echo when in is a terminal.
//
//nolint:errcheck // CLI helper, error ignored for UX
func readSecret(in io.Reader) string {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		secret, err := term.ReadPassword(int(f.Fd()))
		if err == nil {
			return strings.TrimSpace(string(secret))
		}
	}
	input, _ := bufio.NewReader(in).ReadString('\n')
	return strings.TrimSpace(input)
}

// maskURI hides the password in a connection string.
func maskURI(uri string) string {
	u, err := url.Parse(uri)
	if err != nil {
		return "****"
	}
	return u.Redacted()
}
