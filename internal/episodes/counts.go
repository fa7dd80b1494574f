package episodes

import (
	"fmt"
	"math"
	"sort"
	"strconv"

	"github.com/explorador/imdbexplorer/internal/dataset"
	"github.com/explorador/imdbexplorer/internal/section"
)

// SeriesInfo is the header line of the episodes page.
type SeriesInfo struct {
	Name          string   `json:"name"`
	Tconst        string   `json:"tconst"`
	AverageRating float64  `json:"averageRating"`
	NumVotes      *int64   `json:"numVotes,omitempty"`
	Summary       string   `json:"summary"`
	Ambiguous     bool     `json:"ambiguous"`
	Tconsts       []string `json:"tconsts"`
}

// NewSeriesInfo describes the selected series. The title is looked up in
// the deduplicated series list by id.
func NewSeriesInfo(joined []JoinedEpisode, candidate SeriesCandidate, tconst string) (SeriesInfo, error) {
	for _, title := range SeriesTitles(joined) {
		if title.Tconst != tconst {
			continue
		}
		votes := "N/D"
		if title.NumVotes != nil {
			votes = section.FormatCount(*title.NumVotes)
		}
		return SeriesInfo{
			Name:          candidate.Name,
			Tconst:        tconst,
			AverageRating: title.AverageRating,
			NumVotes:      title.NumVotes,
			Summary: fmt.Sprintf("Calificación Promedio de la Serie: %s ⭐ (Basado en %s votos)",
				section.FormatRating(title.AverageRating), votes),
			Ambiguous: candidate.Ambiguous,
			Tconsts:   candidate.Tconsts,
		}, nil
	}
	return SeriesInfo{}, section.Invalid("La serie '%s' no está disponible. Por favor, selecciona una serie de la lista.", candidate.Name)
}

// SeasonCount is one bar of the episodes-per-season chart.
type SeasonCount struct {
	Season string `json:"season"`
	Count  int    `json:"count"`
}

// SeasonCountChart is the bar chart of episodes per season.
type SeasonCountChart struct {
	Title      string        `json:"title"`
	XAxisTitle string        `json:"xAxisTitle"`
	YAxisTitle string        `json:"yAxisTitle"`
	Seasons    []SeasonCount `json:"seasons"`
	Total      int           `json:"total"`
}

// EpisodesPerSeason counts, per season, the joined rows of the series that
// carry both an episode link and a series runtime. Seasons are ascending.
func EpisodesPerSeason(joined []JoinedEpisode, tconst, name string) (SeasonCountChart, error) {
	counts := make(map[int]int)
	total := 0
	for _, row := range joined {
		if row.Tconst != tconst || !row.HasEpisode() || row.RuntimeMinutes == nil || row.SeasonNumber == nil {
			continue
		}
		counts[*row.SeasonNumber]++
		total++
	}
	if total == 0 {
		return SeasonCountChart{}, section.Empty("No se encontraron datos de episodios por temporada para la serie '%s'.", name)
	}

	seasons := make([]int, 0, len(counts))
	for s := range counts {
		seasons = append(seasons, s)
	}
	sort.Ints(seasons)

	bars := make([]SeasonCount, 0, len(seasons))
	for _, s := range seasons {
		bars = append(bars, SeasonCount{Season: strconv.Itoa(s), Count: counts[s]})
	}

	return SeasonCountChart{
		Title:      fmt.Sprintf("Cantidad de Episodios por Temporada de \"%s\"", name),
		XAxisTitle: "Temporada",
		YAxisTitle: "Cantidad de Episodios",
		Seasons:    bars,
		Total:      total,
	}, nil
}

// Seasons lists the distinct seasons of a series in the rating table.
// Numeric seasons come first in numeric order, then any other values
// sorted as text.
func Seasons(ratings []dataset.EpisodeRating, series string) ([]string, error) {
	seen := make(map[string]bool)
	var seasons []string
	for _, r := range ratings {
		if r.SeriesTitle != series {
			continue
		}
		key := r.Season()
		if seen[key] {
			continue
		}
		seen[key] = true
		seasons = append(seasons, key)
	}
	if len(seasons) == 0 {
		return nil, section.Empty("No se encontraron datos de episodios con calificaciones para la serie '%s'.", series)
	}

	sort.SliceStable(seasons, func(i, j int) bool {
		a, aok := dataset.ParseNumber(seasons[i])
		b, bok := dataset.ParseNumber(seasons[j])
		switch {
		case aok && bok:
			return a < b
		case aok != bok:
			return aok
		default:
			return seasons[i] < seasons[j]
		}
	})
	return seasons, nil
}

// formatEpisode prints integral episode numbers without a fraction.
func formatEpisode(v float64) string {
	if v == math.Trunc(v) {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
