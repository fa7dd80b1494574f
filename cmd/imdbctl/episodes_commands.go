package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/explorador/imdbexplorer/internal/episodes"
	"github.com/explorador/imdbexplorer/internal/section"
)

func newEpisodesCommands(ctx *commandContext) []*cobra.Command {
	return []*cobra.Command{
		newSeriesCommand(ctx),
		newSeasonsCommand(ctx),
		newEpisodesCommand(ctx),
	}
}

func addSelectionFlags(cmd *cobra.Command, sel *episodes.Selection) {
	cmd.Flags().StringVarP(&sel.Series, "series", "s", "", "Series display name (defaults to the preferred series)")
	cmd.Flags().StringVar(&sel.Tconst, "tconst", "", "Series identifier, for names shared by several series")
}

func newSeriesCommand(ctx *commandContext) *cobra.Command {
	var sel episodes.Selection

	cmd := &cobra.Command{
		Use:   "series",
		Short: "List series with episode data, or describe one with --series",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.episodesService(cmd)
			if err != nil {
				return err
			}

			if sel.Series == "" && sel.Tconst == "" {
				list, err := svc.SeriesList(cmd.Context())
				return ctx.emit(cmd, list, err, func(w io.Writer) {
					rows := make([][]string, 0, len(list.Series))
					for _, c := range list.Series {
						mark := ""
						if c.Name == list.Default {
							mark = "*"
						}
						rows = append(rows, []string{mark, c.Name, strings.Join(c.Tconsts, ", "), yesNo(c.Ambiguous)})
					}
					fmt.Fprintln(w, renderTable("Series", []string{"", "Serie", "tconst", "Ambigua"}, rows, nil))
				})
			}

			info, infoErr := svc.Info(cmd.Context(), sel)
			counts, countsErr := svc.Counts(cmd.Context(), sel)
			if ctx.jsonOutput() {
				return writeJSON(cmd, map[string]section.Envelope{
					"info":   section.New(info, infoErr),
					"counts": section.New(counts, countsErr),
				})
			}

			if err := ctx.emit(cmd, info, infoErr, func(w io.Writer) {
				fmt.Fprintf(w, "%s (%s)\n%s\n", info.Name, info.Tconst, info.Summary)
				if info.Ambiguous {
					fmt.Fprintf(w, "Nombre compartido por: %s\n", strings.Join(info.Tconsts, ", "))
				}
			}); err != nil {
				return err
			}

			return ctx.emit(cmd, counts, countsErr, func(w io.Writer) {
				rows := make([][]string, 0, len(counts.Seasons))
				for _, s := range counts.Seasons {
					rows = append(rows, []string{s.Season, strconv.Itoa(s.Count)})
				}
				fmt.Fprintln(w, renderTable(counts.Title,
					[]string{counts.XAxisTitle, counts.YAxisTitle}, rows,
					[]columnAlignment{alignLeft, alignRight}))
			})
		},
	}

	addSelectionFlags(cmd, &sel)
	return cmd
}

func newSeasonsCommand(ctx *commandContext) *cobra.Command {
	var sel episodes.Selection

	cmd := &cobra.Command{
		Use:   "seasons",
		Short: "Seasons with episode ratings for a series",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.episodesService(cmd)
			if err != nil {
				return err
			}
			seasons, err := svc.Seasons(cmd.Context(), sel)
			return ctx.emit(cmd, seasons, err, func(w io.Writer) {
				rows := make([][]string, 0, len(seasons))
				for _, s := range seasons {
					rows = append(rows, []string{s})
				}
				fmt.Fprintln(w, renderTable("", []string{"Temporada"}, rows, nil))
			})
		},
	}

	addSelectionFlags(cmd, &sel)
	return cmd
}

func newEpisodesCommand(ctx *commandContext) *cobra.Command {
	var sel episodes.Selection

	cmd := &cobra.Command{
		Use:   "episodes",
		Short: "Episode rating trend of one season",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.episodesService(cmd)
			if err != nil {
				return err
			}
			trend, err := svc.Trend(cmd.Context(), sel)
			return ctx.emit(cmd, trend, err, func(w io.Writer) {
				rows := make([][]string, 0, len(trend.Points))
				for _, p := range trend.Points {
					votes := "N/D"
					if p.Votes != nil {
						votes = section.FormatCount(*p.Votes)
					}
					rows = append(rows, []string{
						strconv.FormatFloat(p.Episode, 'f', -1, 64),
						section.FormatRating(p.Rating),
						votes,
						string(p.Band),
					})
				}
				fmt.Fprintln(w, renderTable(trend.Title,
					[]string{trend.XAxisTitle, trend.YAxisTitle, "Votos", "Nivel"}, rows,
					[]columnAlignment{alignRight, alignRight, alignRight, alignLeft}))
				for _, l := range trend.Legend {
					fmt.Fprintf(w, "%s: %s\n", l.Band, l.Range)
				}
			})
		},
	}

	addSelectionFlags(cmd, &sel)
	cmd.Flags().StringVar(&sel.Season, "season", "", "Season (defaults to the first season)")
	return cmd
}

func yesNo(value bool) string {
	if value {
		return "sí"
	}
	return "no"
}
