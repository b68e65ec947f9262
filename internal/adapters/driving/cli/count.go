package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var countCmd = &cobra.Command{
	Use:         "count <collection>",
	Short:       "Count documents in a collection",
	Args:        cobra.ExactArgs(1),
	Annotations: map[string]string{annotationStore: "true"},
	RunE:        runCount,
}

func init() {
	rootCmd.AddCommand(countCmd)
}

func runCount(cmd *cobra.Command, args []string) error {
	if loadService == nil {
		return errors.New("load service not configured")
	}

	n, err := loadService.Count(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to count documents: %w", err)
	}

	p := message.NewPrinter(language.English)
	cmd.Println(p.Sprintf("%s: %d documents", args[0], n))
	return nil
}
