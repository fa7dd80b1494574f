package ratings

import (
	"fmt"
	"sort"

	"github.com/explorador/imdbexplorer/internal/dataset"
	"github.com/explorador/imdbexplorer/internal/section"
)

// Slice is one genre of the donut chart.
type Slice struct {
	Genre   string  `json:"genre"`
	Count   int     `json:"count"`
	Percent float64 `json:"percent"`
}

// GenrePie is the genre composition of a rating range.
type GenrePie struct {
	Title  string   `json:"title"`
	Range  string   `json:"range"`
	Genres []string `json:"genres"`
	Hole   float64  `json:"hole"`
	Slices []Slice  `json:"slices"`
	Total  int      `json:"total"`
}

// BuildGenrePie counts how often each selected genre appears among the
// titles in the range. Slices are ordered by count, largest first; equal
// counts keep the order in which the genres first appear.
func BuildGenrePie(titles []dataset.Title, rr RatingRange, genres []string) (GenrePie, error) {
	var inRange []dataset.Title
	for _, t := range titles {
		if rr.Contains(t.AverageRating) {
			inRange = append(inRange, t)
		}
	}
	if len(inRange) == 0 {
		return GenrePie{}, section.Empty("No hay títulos en el rango de calificación '%s'. Intenta seleccionar un rango diferente.", rr.Label)
	}

	selected := make(map[string]bool, len(genres))
	for _, g := range genres {
		selected[g] = true
	}
	switch {
	case len(selected) < MinPieGenres:
		return GenrePie{}, section.Invalid("Por favor, selecciona al menos %d géneros para el gráfico de torta.", MinPieGenres)
	case len(selected) > MaxPieGenres:
		return GenrePie{}, section.Invalid("Has seleccionado más de %d géneros. Por favor, selecciona un máximo de %d géneros para el gráfico de torta.", MaxPieGenres, MaxPieGenres)
	}

	counts := make(map[string]int)
	var order []string
	total := 0
	for _, t := range inRange {
		for _, g := range t.GenreList() {
			if !selected[g] {
				continue
			}
			if counts[g] == 0 {
				order = append(order, g)
			}
			counts[g]++
			total++
		}
	}
	if total == 0 {
		return GenrePie{}, section.Empty("No hay títulos con los géneros seleccionados en este rango de calificación. Intenta elegir otros géneros o un rango diferente.")
	}

	sort.SliceStable(order, func(i, j int) bool { return counts[order[i]] > counts[order[j]] })

	slices := make([]Slice, 0, len(order))
	for _, g := range order {
		slices = append(slices, Slice{
			Genre:   g,
			Count:   counts[g],
			Percent: float64(counts[g]) * 100 / float64(total),
		})
	}

	return GenrePie{
		Title:  fmt.Sprintf("Proporción de Géneros Seleccionados para Calificaciones %s", rr.Label),
		Range:  rr.Label,
		Genres: genres,
		Hole:   0.3,
		Slices: slices,
		Total:  total,
	}, nil
}
