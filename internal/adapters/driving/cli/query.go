package cli

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/PieMyth/CloudCluster/internal/core/domain"
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Query loaded listings",
	Long: `Runs read queries against the listings collection of the configured store.

Without filter flags, test and count run the stock queries: stays of 1, 7 and
31 nights under $20, $100 and $700, and listings with more than two bedrooms
in downtown Portland by zipcode (97201-97210) and by city.`,
}

var queryExistsCmd = &cobra.Command{
	Use:         "exists [collection]",
	Short:       "Report whether a collection holds documents",
	Args:        cobra.MaximumNArgs(1),
	Annotations: map[string]string{annotationStore: "true"},
	RunE:        runQueryExists,
}

var queryTestCmd = &cobra.Command{
	Use:         "test",
	Aliases:     []string{"listings"},
	Short:       "List stays up to a price with a given average minimum stay",
	Annotations: map[string]string{annotationStore: "true"},
	RunE:        runQueryTest,
}

var queryCountCmd = &cobra.Command{
	Use:         "count",
	Short:       "Count listings with more than N bedrooms in a zipcode range or city",
	Annotations: map[string]string{annotationStore: "true"},
	RunE:        runQueryCount,
}

// Query flags.
var (
	queryCollection  string
	queryStore       string
	queryMaxPrice    float64
	queryMinNights   float64
	queryLimit       int
	queryMinBedrooms int
	queryZipFrom     int
	queryZipTo       int
	queryCity        string
)

func init() {
	queryCmd.PersistentFlags().StringVar(&queryCollection, "collection", "", "Collection to query (default listings.collection)")
	queryCmd.PersistentFlags().StringVar(&queryStore, "store", "", "Store backend: mongo, sqlite or memory")

	queryTestCmd.Flags().Float64Var(&queryMaxPrice, "max-price", 100, "Highest price to include")
	queryTestCmd.Flags().Float64Var(&queryMinNights, "min-nights", 7, "Average minimum stay to match")
	queryTestCmd.Flags().IntVar(&queryLimit, "limit", 0, "Maximum listings per query (0 for all)")

	queryCountCmd.Flags().IntVar(&queryMinBedrooms, "min-bedrooms", 2, "Count listings with more bedrooms than this")
	queryCountCmd.Flags().IntVar(&queryZipFrom, "zip-from", 0, "First zipcode of the range")
	queryCountCmd.Flags().IntVar(&queryZipTo, "zip-to", 0, "Last zipcode of the range")
	queryCountCmd.Flags().StringVar(&queryCity, "city", "", "City to count in when no zipcode range is given")

	queryCmd.AddCommand(queryExistsCmd)
	queryCmd.AddCommand(queryTestCmd)
	queryCmd.AddCommand(queryCountCmd)
	rootCmd.AddCommand(queryCmd)
}

// queryTarget returns the collection named by args, --collection, or settings.
func queryTarget(args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	if queryCollection != "" {
		return queryCollection, nil
	}
	if settingsService == nil {
		return "", errors.New("settings service not configured")
	}
	settings, err := settingsService.Get()
	if err != nil {
		return "", fmt.Errorf("failed to get settings: %w", err)
	}
	return settings.Listings.Name, nil
}

func runQueryExists(cmd *cobra.Command, args []string) error {
	if queryService == nil {
		return errors.New("query service not configured")
	}
	collection, err := queryTarget(args)
	if err != nil {
		return err
	}

	ok, err := queryService.Exists(cmd.Context(), collection)
	if err != nil {
		return fmt.Errorf("failed to check collection: %w", err)
	}
	if ok {
		cmd.Printf("Collection %s exists.\n", collection)
	} else {
		cmd.Printf("Collection %s does not exist.\n", collection)
	}
	return nil
}

func runQueryTest(cmd *cobra.Command, _ []string) error {
	if queryService == nil {
		return errors.New("query service not configured")
	}
	collection, err := queryTarget(nil)
	if err != nil {
		return err
	}

	queries := domain.DefaultListingQueries()
	if cmd.Flags().Changed("max-price") || cmd.Flags().Changed("min-nights") {
		queries = []domain.ListingQuery{{MaxPrice: queryMaxPrice, MinimumNights: queryMinNights}}
	}

	p := message.NewPrinter(language.English)
	for _, q := range queries {
		q.Limit = queryLimit
		records, err := queryService.Listings(cmd.Context(), collection, q)
		if err != nil {
			return fmt.Errorf("listing query failed: %w", err)
		}

		cmd.Println(p.Sprintf("%s-night stays costing at most $%s:", formatValue(q.MinimumNights), formatValue(q.MaxPrice)))
		if len(records) > 0 {
			cmd.Println(renderTable(domain.ListingFields, listingRows(records)))
		}
		cmd.Println(p.Sprintf("Returned %d records", len(records)))
	}
	return nil
}

func runQueryCount(cmd *cobra.Command, _ []string) error {
	if queryService == nil {
		return errors.New("query service not configured")
	}
	collection, err := queryTarget(nil)
	if err != nil {
		return err
	}

	var queries []domain.BedroomCountQuery
	if cmd.Flags().Changed("zip-from") || cmd.Flags().Changed("zip-to") || cmd.Flags().Changed("city") {
		queries = []domain.BedroomCountQuery{{
			MinBedrooms: queryMinBedrooms,
			ZipFrom:     queryZipFrom,
			ZipTo:       queryZipTo,
			City:        queryCity,
		}}
	} else {
		for _, q := range domain.DefaultBedroomCountQueries() {
			q.MinBedrooms = queryMinBedrooms
			queries = append(queries, q)
		}
	}

	p := message.NewPrinter(language.English)
	for _, q := range queries {
		n, err := queryService.CountBedrooms(cmd.Context(), collection, q)
		if err != nil {
			return fmt.Errorf("count query failed: %w", err)
		}
		cmd.Println(p.Sprintf("%d listings with %s", n, q.String()))
	}
	return nil
}

func listingRows(records []domain.Record) [][]string {
	rows := make([][]string, len(records))
	for i, rec := range records {
		row := make([]string, len(domain.ListingFields))
		for j, field := range domain.ListingFields {
			v, _ := rec.Get(field)
			row[j] = formatValue(v)
		}
		rows[i] = row
	}
	return rows
}

func formatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case string:
		return t
	default:
		return fmt.Sprint(t)
	}
}
