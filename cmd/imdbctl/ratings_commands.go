package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/explorador/imdbexplorer/internal/dataset"
	"github.com/explorador/imdbexplorer/internal/ratings"
	"github.com/explorador/imdbexplorer/internal/section"
)

func newRatingsCommands(ctx *commandContext) []*cobra.Command {
	return []*cobra.Command{
		newHistogramCommand(ctx),
		newGenresCommand(ctx),
		newTopCommand(ctx),
	}
}

func newHistogramCommand(ctx *commandContext) *cobra.Command {
	var titleType string

	cmd := &cobra.Command{
		Use:   "histogram",
		Short: "Distribution of average ratings",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.ratingsService(cmd)
			if err != nil {
				return err
			}
			hist, err := svc.Histogram(cmd.Context(), titleType)
			return ctx.emit(cmd, hist, err, func(w io.Writer) {
				rows := make([][]string, 0, len(hist.Bins))
				for _, b := range hist.Bins {
					rows = append(rows, []string{
						fmt.Sprintf("%.2f - %.2f", b.Start, b.End),
						strconv.Itoa(b.Count),
					})
				}
				fmt.Fprintln(w, renderTable(hist.Title,
					[]string{hist.XAxisTitle, hist.YAxisTitle}, rows,
					[]columnAlignment{alignLeft, alignRight}))
				fmt.Fprintf(w, "Total: %s\n", section.FormatCount(int64(hist.Total)))
			})
		},
	}

	cmd.Flags().StringVarP(&titleType, "type", "t", dataset.AllTypes, "Title type label (Todos, Películas, Series or a raw titleType)")
	return cmd
}

func newGenresCommand(ctx *commandContext) *cobra.Command {
	var rangeLabel string
	var genres []string

	cmd := &cobra.Command{
		Use:   "genres",
		Short: "Genre composition of a rating range",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.ratingsService(cmd)
			if err != nil {
				return err
			}
			var selected []string
			if cmd.Flags().Changed("genre") {
				selected = genres
			}
			pie, err := svc.GenrePie(cmd.Context(), rangeLabel, selected)
			return ctx.emit(cmd, pie, err, func(w io.Writer) {
				rows := make([][]string, 0, len(pie.Slices))
				for _, s := range pie.Slices {
					rows = append(rows, []string{
						s.Genre,
						section.FormatCount(int64(s.Count)),
						fmt.Sprintf("%.1f%%", s.Percent),
					})
				}
				fmt.Fprintln(w, renderTable(pie.Title,
					[]string{"Género", "Títulos", "%"}, rows,
					[]columnAlignment{alignLeft, alignRight, alignRight}))
			})
		},
	}

	cmd.Flags().StringVarP(&rangeLabel, "range", "r", ratings.DefaultRatingRange.Label, "Rating range label")
	cmd.Flags().StringSliceVarP(&genres, "genre", "g", nil,
		fmt.Sprintf("Genres to compare (%d to %d); defaults to the most frequent", ratings.MinPieGenres, ratings.MaxPieGenres))
	return cmd
}

func newTopCommand(ctx *commandContext) *cobra.Command {
	var titleType string
	var minVotes int64

	cmd := &cobra.Command{
		Use:   "top",
		Short: "Best rated titles above a vote threshold",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.ratingsService(cmd)
			if err != nil {
				return err
			}
			top, err := svc.Top(cmd.Context(), titleType, minVotes)
			return ctx.emit(cmd, top, err, func(w io.Writer) {
				rows := make([][]string, 0, len(top.Bars))
				// Bars are ascending for charting; the table reads best first.
				for i := len(top.Bars) - 1; i >= 0; i-- {
					b := top.Bars[i]
					rows = append(rows, []string{
						strconv.Itoa(len(top.Bars) - i),
						b.Title,
						strconv.Itoa(b.StartYear),
						section.FormatRating(b.Rating),
						section.FormatCount(b.Votes),
						b.Genres,
					})
				}
				fmt.Fprintln(w, renderTable(top.Title,
					[]string{"#", "Título", "Año", "Calificación", "Votos", "Géneros"}, rows,
					[]columnAlignment{alignRight, alignLeft, alignRight, alignRight, alignRight, alignLeft}))
			})
		},
	}

	cmd.Flags().StringVarP(&titleType, "type", "t", ratings.TopTypes[0], "Title type label")
	cmd.Flags().Int64Var(&minVotes, "min-votes", ratings.DefaultVotes,
		fmt.Sprintf("Minimum votes (%d to %d, step %d)", ratings.MinVotes, ratings.MaxVotes, ratings.VotesStep))
	return cmd
}
