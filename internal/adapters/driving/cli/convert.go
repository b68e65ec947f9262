package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/PieMyth/CloudCluster/internal/core/domain"
	"github.com/PieMyth/CloudCluster/internal/core/ports/driving"
)

var convertCmd = &cobra.Command{
	Use:   "convert [listings|reviews|all]",
	Short: "Convert staged CSV files to JSON record arrays",
	Long: `Converts <index><kind>.csv files in the staging directory into
<index><kind>.json files in the JSON directory. Currency, percent and zipcode
columns are cleaned as configured under [clean].`,
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{"listings", "reviews", "all"},
	RunE:      runConvert,
}

// Convert flags.
var convertIndices string

func init() {
	convertCmd.Flags().StringVar(&convertIndices, "indices", "", "File indices to convert, e.g. 1,3,10-12")
	rootCmd.AddCommand(convertCmd)
}

func runConvert(cmd *cobra.Command, args []string) error {
	if datasetService == nil || settingsService == nil {
		return errors.New("dataset service not configured")
	}

	kinds, err := parseKindArg(args)
	if err != nil {
		return err
	}
	indices, err := domain.ParseIndices(convertIndices)
	if err != nil {
		return err
	}
	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	p := message.NewPrinter(language.English)
	total := 0
	for _, kind := range kinds {
		results, err := datasetService.Convert(cmd.Context(), driving.ConvertRequest{
			InputDir:  settings.Paths.StagingDir,
			OutputDir: settings.Paths.JSONDir,
			Kind:      kind,
			Indices:   indices,
		})
		for _, r := range results {
			cmd.Println(p.Sprintf("%s -> %s (%d records)", r.Source, r.Destination, r.Records))
		}
		total += len(results)
		if err != nil {
			return fmt.Errorf("convert failed: %w", err)
		}
	}
	cmd.Printf("Converted %d files\n", total)
	return nil
}
