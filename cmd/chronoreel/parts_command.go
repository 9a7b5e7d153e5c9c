package main

import (
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"chronoreel/internal/fileutil"
	"chronoreel/internal/media/ffprobe"
	"chronoreel/internal/merge"
	"chronoreel/internal/staging"
)

func newPartsCommand(ctx *commandContext) *cobra.Command {
	var (
		paths pathOverrides
		probe bool
	)

	cmd := &cobra.Command{
		Use:   "parts",
		Short: "List the part files in the output directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.configWith(&paths)
			if err != nil {
				return err
			}
			inputs, err := merge.Scan(cfg.Paths.OutputDir, ctx.logger(cfg))
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(inputs) == 0 {
				fmt.Fprintf(out, "No part files in %s\n", cfg.Paths.OutputDir)
			} else {
				rows := make([][]string, 0, len(inputs))
				total := 0
				var totalSize int64
				for _, in := range inputs {
					size := fileutil.FileSize(in.Path)
					total += in.Part.Count
					totalSize += size
					duration := "-"
					if probe {
						if result, err := ffprobe.Inspect(cmd.Context(), cfg.Encoding.FFprobeBinary, in.Path); err == nil {
							duration = (time.Duration(result.DurationSeconds() * float64(time.Second))).Round(time.Second).String()
						}
					}
					rows = append(rows, []string{
						fmt.Sprintf("%03d", in.Part.Index),
						in.Part.First.Format("2006-01-02"),
						in.Part.Last.Format("2006-01-02"),
						strconv.Itoa(in.Part.Count),
						humanize.Bytes(uint64(size)),
						duration,
						filepath.Base(in.Path),
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"Part", "First", "Last", "Photos", "Size", "Duration", "File"},
					rows,
					[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignLeft},
				))
				fmt.Fprintf(out, "%d parts, %d photos, %s\n", len(inputs), total, humanize.Bytes(uint64(totalSize)))
			}

			scratch, err := staging.ListScratch(cfg.Paths.OutputDir)
			if err == nil && len(scratch) > 0 {
				fmt.Fprintf(out, "%d orphaned scratch directories; run chronoreel merge to remove them\n", len(scratch))
				for _, dir := range scratch {
					fmt.Fprintf(out, "  %s  %s  %s\n", dir.Name, humanize.Bytes(uint64(dir.Size)), humanize.Time(dir.ModTime))
				}
			}
			return nil
		},
	}
	paths.register(cmd, false, true)
	cmd.Flags().BoolVar(&probe, "probe", false, "Probe each part with ffprobe to show its duration")
	return cmd
}
