package main

import (
	"fmt"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"chronoreel/internal/runner"
)

func newMergeCommand(ctx *commandContext) *cobra.Command {
	var paths pathOverrides

	cmd := &cobra.Command{
		Use:   "merge",
		Short: "Concatenate the part files in the output directory into one video",
		Long: "Merge scans the output directory for part files, orders them by part index,\n" +
			"and writes {year}_{total}-photos.mp4. Scratch directories left by an\n" +
			"interrupted build are removed first.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.configWith(&paths)
			if err != nil {
				return err
			}
			result, err := runner.MergeOnly(cmd.Context(), cfg, runner.Options{Logger: ctx.logger(cfg)})
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, in := range result.Inputs {
				fmt.Fprintf(out, "  %03d  %s\n", in.Part.Index, filepath.Base(in.Path))
			}
			fmt.Fprintf(out, "Merged %d parts (%d photos) into %s (%s)\n",
				len(result.Inputs), result.Total, result.Path, humanize.Bytes(uint64(max(result.SizeBytes, 0))))
			return nil
		},
	}
	paths.register(cmd, false, true)
	return cmd
}
