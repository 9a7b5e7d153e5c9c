package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"chronoreel/internal/encoding"
	"chronoreel/internal/runner"
)

func newBuildCommand(ctx *commandContext) *cobra.Command {
	var (
		paths      pathOverrides
		mergeFlag  bool
		batchSize  int
		maxClips   int
		noProgress bool
	)

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Order the input photos and encode them into part files",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.configWith(&paths)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("merge") {
				cfg.Merge.Enabled = mergeFlag
			}
			if batchSize > 0 {
				cfg.Encoding.BatchSize = batchSize
			}
			if maxClips > 0 {
				cfg.Encoding.MaxClipsPerPart = maxClips
			}

			opts := runner.Options{}
			var bar *progressbar.ProgressBar
			if !noProgress && shouldColorize(os.Stderr) {
				opts.Hooks.Photo = func(part, done, total int) {
					if bar == nil {
						bar = newProgressBar(os.Stderr, total)
					}
					bar.Describe(fmt.Sprintf("part %03d", part))
					_ = bar.Set(done)
				}
			}

			summary, err := runner.Build(cmd.Context(), cfg, opts)
			if bar != nil {
				_ = bar.Finish()
			}
			printBuildSummary(cmd.OutOrStdout(), summary)
			return err
		},
	}

	paths.register(cmd, true, true)
	cmd.Flags().BoolVar(&mergeFlag, "merge", false, "Merge the parts into one video after encoding")
	cmd.Flags().IntVar(&batchSize, "batch-size", 0, "Photos held per encode batch (overrides encoding.batch_size)")
	cmd.Flags().IntVar(&maxClips, "max-clips", 0, "Photos per part file (overrides encoding.max_clips_per_part)")
	cmd.Flags().BoolVar(&noProgress, "no-progress", false, "Disable the terminal progress bar")
	return cmd
}

func newProgressBar(w io.Writer, total int) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription("rendering"),
		progressbar.OptionShowCount(),
		progressbar.OptionSetItsString("photos"),
		progressbar.OptionShowIts(),
		progressbar.OptionThrottle(200*time.Millisecond),
		progressbar.OptionClearOnFinish(),
	)
}

func printBuildSummary(out io.Writer, summary runner.Summary) {
	if summary.RunID == "" {
		return
	}
	if len(summary.Parts) > 0 {
		fmt.Fprintln(out, renderPartResults(summary.Parts))
	}
	fmt.Fprintf(out, "Run %s: %d photos ordered, %d encoded in %d parts",
		shortID(summary.RunID), summary.Items, summary.Photos(), len(summary.Parts))
	if summary.Stats.Skipped > 0 {
		fmt.Fprintf(out, ", %d skipped", summary.Stats.Skipped)
	}
	fmt.Fprintf(out, " (%s)\n", summary.Duration.Round(time.Second))
	if summary.Merge != nil {
		fmt.Fprintf(out, "Merged video: %s (%s)\n", summary.Merge.Path, humanize.Bytes(uint64(max(summary.Merge.SizeBytes, 0))))
	}
	if summary.LogPath != "" {
		fmt.Fprintf(out, "Log: %s\n", summary.LogPath)
	}
}

func renderPartResults(parts []encoding.PartResult) string {
	rows := make([][]string, 0, len(parts))
	for _, p := range parts {
		rows = append(rows, []string{
			fmt.Sprintf("%03d", p.Index),
			p.First.Format("2006-01-02"),
			p.Last.Format("2006-01-02"),
			strconv.Itoa(p.Count),
			humanize.Bytes(uint64(max(p.SizeBytes, 0))),
			filepath.Base(p.Path),
		})
	}
	return renderTable(
		[]string{"Part", "First", "Last", "Photos", "Size", "File"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignRight, alignLeft},
	)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
