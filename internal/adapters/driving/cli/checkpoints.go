package cli

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/cobra"
)

var checkpointsCmd = &cobra.Command{
	Use:   "checkpoints",
	Short: "Inspect or reset saved load progress",
}

var checkpointsListCmd = &cobra.Command{
	Use:         "list",
	Short:       "List saved checkpoints",
	Annotations: map[string]string{annotationStore: "true"},
	RunE:        runCheckpointsList,
}

var checkpointsResetCmd = &cobra.Command{
	Use:   "reset <collection> <source>",
	Short: "Forget saved progress for one source file",
	Long: `Deletes the checkpoint for a source in the configured store so the next
--resume run starts at the first record. Records already in the collection
are not removed.`,
	Args:        cobra.ExactArgs(2),
	Annotations: map[string]string{annotationStore: "true"},
	RunE:        runCheckpointsReset,
}

func init() {
	checkpointsCmd.AddCommand(checkpointsListCmd)
	checkpointsCmd.AddCommand(checkpointsResetCmd)
	rootCmd.AddCommand(checkpointsCmd)
}

func runCheckpointsList(cmd *cobra.Command, _ []string) error {
	if loadService == nil {
		return errors.New("load service not configured")
	}

	cps, err := loadService.Checkpoints(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list checkpoints: %w", err)
	}
	if len(cps) == 0 {
		cmd.Println("No checkpoints saved.")
		return nil
	}

	rows := make([][]string, 0, len(cps))
	for _, cp := range cps {
		state := "partial"
		if cp.Complete {
			state = "complete"
		}
		updated := ""
		if !cp.UpdatedAt.IsZero() {
			updated = cp.UpdatedAt.Local().Format(time.DateTime)
		}
		rows = append(rows, []string{
			cp.Target, cp.Collection, cp.Source,
			strconv.Itoa(cp.Offset), strconv.Itoa(cp.Batches),
			state, updated,
		})
	}
	cmd.Println(renderTable([]string{"TARGET", "COLLECTION", "SOURCE", "OFFSET", "BATCHES", "STATE", "UPDATED"}, rows))
	return nil
}

func runCheckpointsReset(cmd *cobra.Command, args []string) error {
	if loadService == nil {
		return errors.New("load service not configured")
	}

	collection, source := args[0], filepath.Base(args[1])
	if err := loadService.ResetCheckpoint(cmd.Context(), collection, source); err != nil {
		return fmt.Errorf("failed to reset checkpoint: %w", err)
	}
	cmd.Printf("Checkpoint for %s/%s removed.\n", collection, source)
	return nil
}
