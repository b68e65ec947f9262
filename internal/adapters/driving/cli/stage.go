package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/PieMyth/CloudCluster/internal/core/ports/driving"
)

var stageCmd = &cobra.Command{
	Use:   "stage",
	Short: "Move downloaded CSV files into the staging directory",
	Long: `Walks the download directory and moves every CSV file into the staging
directory as <index><name>.csv, numbering files in path order.`,
	RunE: runStage,
}

// Stage flags.
var (
	stageFrom  string
	stageTo    string
	stageStart int
)

func init() {
	stageCmd.Flags().StringVar(&stageFrom, "from", "", "Download directory (default paths.download_dir)")
	stageCmd.Flags().StringVar(&stageTo, "to", "", "Staging directory (default paths.staging_dir)")
	stageCmd.Flags().IntVar(&stageStart, "start", 0, "First index to assign")
	rootCmd.AddCommand(stageCmd)
}

func runStage(cmd *cobra.Command, _ []string) error {
	if datasetService == nil || settingsService == nil {
		return errors.New("dataset service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}
	req := driving.StageRequest{
		SourceDir: orDefault(stageFrom, settings.Paths.DownloadDir),
		DestDir:   orDefault(stageTo, settings.Paths.StagingDir),
		Start:     stageStart,
	}

	staged, err := datasetService.Stage(cmd.Context(), req)
	for _, f := range staged {
		cmd.Printf("%s -> %s\n", f.From, f.To)
	}
	if err != nil {
		return fmt.Errorf("stage failed: %w", err)
	}
	cmd.Printf("Staged %d files into %s\n", len(staged), req.DestDir)
	return nil
}

func orDefault(v, def string) string {
	if v != "" {
		return v
	}
	return def
}
