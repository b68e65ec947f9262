package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/PieMyth/CloudCluster/internal/core/domain"
)

// Report output formats.
const (
	formatTable = "table"
	formatJSON  = "json"
	formatYAML  = "yaml"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Summarise converted dataset files",
	Long: `Lists every JSON dataset file with its record count, size and the
host_location of its first record.`,
	RunE: runReport,
}

// Report flags.
var (
	reportDir    string
	reportFormat string
)

func init() {
	reportCmd.Flags().StringVar(&reportDir, "dir", "", "Directory to scan (default paths.json_dir)")
	reportCmd.Flags().StringVarP(&reportFormat, "format", "o", formatTable, "Output format: table, json or yaml")
	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, _ []string) error {
	if datasetService == nil {
		return errors.New("dataset service not configured")
	}

	dir := reportDir
	if dir == "" {
		if settingsService == nil {
			return errors.New("settings service not configured")
		}
		settings, err := settingsService.Get()
		if err != nil {
			return fmt.Errorf("failed to get settings: %w", err)
		}
		dir = settings.Paths.JSONDir
	}

	summaries, err := datasetService.Report(cmd.Context(), dir)
	if err != nil {
		return fmt.Errorf("failed to build report: %w", err)
	}

	switch reportFormat {
	case formatJSON:
		data, err := json.MarshalIndent(nonNil(summaries), "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
	case formatYAML:
		data, err := yaml.Marshal(nonNil(summaries))
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), string(data))
	case formatTable:
		if len(summaries) == 0 {
			cmd.Printf("No JSON dataset files in %s\n", dir)
			return nil
		}
		cmd.Println(renderTable([]string{"FILE", "RECORDS", "SIZE (MiB)", "HOST LOCATION"}, summaryRows(summaries)))
	default:
		return fmt.Errorf("%w: unknown format %q", domain.ErrInvalidInput, reportFormat)
	}
	return nil
}

func summaryRows(summaries []domain.FileSummary) [][]string {
	rows := make([][]string, 0, len(summaries))
	for _, s := range summaries {
		rows = append(rows, []string{
			s.Name,
			strconv.Itoa(s.Records),
			strconv.FormatInt(s.SizeMiB, 10),
			s.HostLocation,
		})
	}
	return rows
}

func nonNil(s []domain.FileSummary) []domain.FileSummary {
	if s == nil {
		return []domain.FileSummary{}
	}
	return s
}
