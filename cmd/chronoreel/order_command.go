package main

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"chronoreel/internal/corpus"
	"chronoreel/internal/timestamp"
)

func newOrderCommand(ctx *commandContext) *cobra.Command {
	var (
		paths pathOverrides
		limit int
	)

	cmd := &cobra.Command{
		Use:   "order",
		Short: "Show the chronological order of the input photos without encoding",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.configWith(&paths)
			if err != nil {
				return err
			}
			logger := ctx.logger(cfg)
			loc := cfg.Location()
			items, err := corpus.NewOrderer(
				corpus.DirWalker{Logger: logger},
				timestamp.New(loc, logger),
				loc,
				logger,
			).Order(cmd.Context(), cfg.Paths.InputDir)
			if err != nil {
				return err
			}

			shown := items
			if limit > 0 && len(shown) > limit {
				shown = shown[:limit]
			}
			rows := make([][]string, 0, len(shown))
			for i, item := range shown {
				rows = append(rows, []string{
					strconv.Itoa(i + 1),
					item.Time(loc).Format(cfg.Render.DateFormat),
					string(item.Source),
					item.Path,
				})
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(
				[]string{"#", "Taken", "Source", "Path"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft},
			))
			fmt.Fprintf(out, "%d photos (%s)\n", len(items), formatSourceCounts(items.SourceCounts()))
			if len(shown) < len(items) {
				fmt.Fprintf(out, "Showing the first %d; use --limit 0 for all\n", len(shown))
			}
			return nil
		},
	}
	paths.register(cmd, true, false)
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Rows to show (0 for all)")
	return cmd
}

func formatSourceCounts(counts map[timestamp.Source]int) string {
	parts := make([]string, 0, len(counts))
	for source, n := range counts {
		parts = append(parts, fmt.Sprintf("%s: %d", source, n))
	}
	sort.Strings(parts)
	return strings.Join(parts, ", ")
}
