package main

import (
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/explorador/imdbexplorer/internal/dataset"
	"github.com/explorador/imdbexplorer/internal/section"
	"github.com/explorador/imdbexplorer/internal/temporal"
)

func newTemporalCommands(ctx *commandContext) []*cobra.Command {
	return []*cobra.Command{
		newTrendCommand(ctx),
		newCompareCommand(ctx),
	}
}

func newTrendCommand(ctx *commandContext) *cobra.Command {
	var titleType string
	var genres []string

	cmd := &cobra.Command{
		Use:   "trend",
		Short: "Yearly average rating per genre",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.temporalService(cmd)
			if err != nil {
				return err
			}
			var selected []string
			if cmd.Flags().Changed("genre") {
				selected = genres
			}
			chart, err := svc.GenreTrend(cmd.Context(), titleType, selected)
			return ctx.emit(cmd, chart, err, func(w io.Writer) { renderChart(w, chart) })
		},
	}

	cmd.Flags().StringVarP(&titleType, "type", "t", dataset.AllTypes, "Title type label")
	cmd.Flags().StringSliceVarP(&genres, "genre", "g", nil,
		fmt.Sprintf("Genres to plot (up to %d); defaults to the most frequent", temporal.MaxGenres))
	return cmd
}

func newCompareCommand(ctx *commandContext) *cobra.Command {
	var start, end int

	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Movies against series, year by year",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.temporalService(cmd)
			if err != nil {
				return err
			}
			chart, err := svc.Comparison(cmd.Context(), start, end)
			return ctx.emit(cmd, chart, err, func(w io.Writer) { renderChart(w, chart) })
		},
	}

	cmd.Flags().IntVar(&start, "from", 0, "First year (defaults to the earliest year in the data)")
	cmd.Flags().IntVar(&end, "to", 0, "Last year (defaults to the latest year in the data)")
	return cmd
}

// renderChart prints one row per year with one column per line.
func renderChart(w io.Writer, chart temporal.Chart) {
	yearSet := map[int]struct{}{}
	byLine := make([]map[int]temporal.YearPoint, len(chart.Lines))
	for i, line := range chart.Lines {
		byLine[i] = make(map[int]temporal.YearPoint, len(line.Points))
		for _, p := range line.Points {
			byLine[i][p.Year] = p
			yearSet[p.Year] = struct{}{}
		}
	}
	years := make([]int, 0, len(yearSet))
	for y := range yearSet {
		years = append(years, y)
	}
	sort.Ints(years)

	headers := []string{chart.XAxisTitle}
	aligns := []columnAlignment{alignLeft}
	for _, line := range chart.Lines {
		headers = append(headers, line.Name)
		aligns = append(aligns, alignRight)
	}

	rows := make([][]string, 0, len(years))
	for _, y := range years {
		row := []string{strconv.Itoa(y)}
		for i := range chart.Lines {
			if p, ok := byLine[i][y]; ok {
				row = append(row, fmt.Sprintf("%s (%d)", section.FormatRating(p.Mean), p.Count))
			} else {
				row = append(row, "")
			}
		}
		rows = append(rows, row)
	}

	fmt.Fprintln(w, renderTable(chart.Title, headers, rows, aligns))
	fmt.Fprintf(w, "Años con al menos %d títulos por %s.\n", chart.MinCount, chart.LegendTitle)
}
