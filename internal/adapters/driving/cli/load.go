package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/spf13/cobra"
	"golang.org/x/term"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/PieMyth/CloudCluster/internal/core/domain"
	"github.com/PieMyth/CloudCluster/internal/core/ports/driving"
	"github.com/PieMyth/CloudCluster/internal/logger"
)

const progressWidth = 40

var loadCmd = &cobra.Command{
	Use:   "load [listings|reviews|all]",
	Short: "Bulk-load converted dataset files into the store",
	Long: `Loads <index><kind>.json files from the JSON directory into their collections.

Records are written in batches (listings.batch_size / reviews.batch_size).
A checkpoint is saved after every acknowledged batch; rerun with --resume to
continue an aborted load without inserting confirmed records twice.`,
	Args:        cobra.MaximumNArgs(1),
	ValidArgs:   []string{"listings", "reviews", "all"},
	Annotations: map[string]string{annotationStore: "true"},
	RunE:        runLoad,
}

// Load flags.
var (
	loadResume    bool
	loadIndices   string
	loadBatchSize int
	loadStore     string
)

func init() {
	loadCmd.Flags().BoolVar(&loadResume, "resume", false, "Continue from saved checkpoints")
	loadCmd.Flags().StringVar(&loadIndices, "indices", "", "File indices to load, e.g. 1,3,10-12")
	loadCmd.Flags().IntVar(&loadBatchSize, "batch-size", 0, "Records per write (overrides settings)")
	loadCmd.Flags().StringVar(&loadStore, "store", "", "Store backend: mongo, sqlite or memory")
	rootCmd.AddCommand(loadCmd)
}

func runLoad(cmd *cobra.Command, args []string) error {
	if loadService == nil || settingsService == nil {
		return errors.New("load service not configured")
	}

	kinds, err := parseKindArg(args)
	if err != nil {
		return err
	}
	indices, err := domain.ParseIndices(loadIndices)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("batch-size") && loadBatchSize < 1 {
		return fmt.Errorf("%w: --batch-size must be at least 1", domain.ErrInvalidInput)
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	plan, err := loadService.Plan(settings, driving.PlanRequest{
		Kinds:     kinds,
		Indices:   indices,
		BatchSize: loadBatchSize,
		Resume:    loadResume,
	})
	if err != nil {
		return fmt.Errorf("failed to plan load: %w", err)
	}

	logger.Section("load " + plan.RunID)
	p := message.NewPrinter(language.English)
	bar := newLoadProgress(cmd.ErrOrStderr(), plan)

	results, err := loadService.Run(cmd.Context(), plan, func(ack domain.BatchAck) {
		bar.clear()
		cmd.Println(p.Sprintf("%s <- %s: batch %d, %d rows sent", ack.Collection, ack.Source, ack.Sequence+1, ack.End()))
		bar.update(ack)
	})
	bar.finish(completedJobs(results))

	for _, r := range results {
		printLoadResult(cmd, p, r)
	}
	if err != nil {
		return fmt.Errorf("load failed: %w", err)
	}
	return nil
}

// parseKindArg maps the optional positional argument to record kinds.
func parseKindArg(args []string) ([]domain.RecordKind, error) {
	if len(args) == 0 || args[0] == "all" {
		return domain.AllKinds(), nil
	}
	kind := domain.RecordKind(args[0])
	if !kind.IsValid() {
		return nil, fmt.Errorf("%w: %q is not listings, reviews or all", domain.ErrInvalidInput, args[0])
	}
	return []domain.RecordKind{kind}, nil
}

func printLoadResult(cmd *cobra.Command, p *message.Printer, r domain.LoadResult) {
	if r.AlreadyComplete {
		cmd.Println(p.Sprintf("%s <- %s: already loaded (%d records)", r.Collection, r.Source, r.Offset))
		return
	}
	line := p.Sprintf("%s <- %s: %d records in %d batches", r.Collection, r.Source, r.Records, r.Batches)
	if r.Skipped > 0 {
		line += p.Sprintf(", resumed after %d", r.Skipped)
	}
	cmd.Println(line)
}

// loadProgress draws a file-level progress bar when w is a terminal.
type loadProgress struct {
	w        io.Writer
	bar      progress.Model
	position map[string]int
	total    int
	enabled  bool
}

func newLoadProgress(w io.Writer, plan domain.LoadPlan) *loadProgress {
	lp := &loadProgress{
		w:        w,
		bar:      progress.New(progress.WithDefaultGradient(), progress.WithWidth(progressWidth)),
		position: make(map[string]int, len(plan.Jobs)),
		total:    len(plan.Jobs),
		enabled:  isTerminal(w) && len(plan.Jobs) > 0,
	}
	for i, job := range plan.Jobs {
		lp.position[job.Collection+"\x00"+job.Path] = i
	}
	return lp
}

func (lp *loadProgress) update(ack domain.BatchAck) {
	if !lp.enabled {
		return
	}
	done := lp.position[ack.Collection+"\x00"+ack.Source]
	lp.render(done)
}

func (lp *loadProgress) render(done int) {
	fmt.Fprintf(lp.w, "\r%s %d/%d files", lp.bar.ViewAs(float64(done)/float64(lp.total)), done, lp.total)
}

func (lp *loadProgress) clear() {
	if lp.enabled {
		fmt.Fprint(lp.w, "\r\x1b[2K")
	}
}

func (lp *loadProgress) finish(completed int) {
	if !lp.enabled {
		return
	}
	lp.render(completed)
	fmt.Fprintln(lp.w)
}

// completedJobs counts the results of fully loaded files. A failed job may
// contribute a partial result or none at all.
func completedJobs(results []domain.LoadResult) int {
	n := 0
	for _, r := range results {
		if r.Complete {
			n++
		}
	}
	return n
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
