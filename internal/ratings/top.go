package ratings

import (
	"fmt"
	"sort"
	"strings"

	"github.com/explorador/imdbexplorer/internal/dataset"
	"github.com/explorador/imdbexplorer/internal/section"
)

var topColors = map[string]string{
	"Películas": "#31688B",
	"Series":    "#E34A33",
}

// Bar is one title of the top chart.
type Bar struct {
	Tconst    string  `json:"tconst"`
	Title     string  `json:"title"`
	Rating    float64 `json:"rating"`
	Votes     int64   `json:"votes"`
	StartYear int     `json:"startYear"`
	Genres    string  `json:"genres"`
}

// TopChart is the horizontal bar chart of the best rated titles. Bars are
// ordered from lowest to highest rating so the best title is drawn on top.
type TopChart struct {
	Title      string `json:"title"`
	Type       string `json:"type"`
	Color      string `json:"color"`
	MinVotes   int64  `json:"minVotes"`
	XAxisTitle string `json:"xAxisTitle"`
	YAxisTitle string `json:"yAxisTitle"`
	Bars       []Bar  `json:"bars"`
}

// ValidateVotes checks a threshold against the slider bounds and step.
func ValidateVotes(minVotes int64) error {
	if minVotes < MinVotes || minVotes > MaxVotes || minVotes%VotesStep != 0 {
		return section.Invalid("El mínimo de votos debe estar entre %s y %s, en pasos de %d.",
			section.FormatCount(MinVotes), section.FormatCount(MaxVotes), VotesStep)
	}
	return nil
}

// BuildTop returns the n best rated titles of a type having at least
// minVotes votes, ranked by rating then votes.
func BuildTop(titles []dataset.Title, label string, minVotes int64, n int) (TopChart, error) {
	if label == "" {
		label = TopTypes[0]
	}
	titleType := dataset.InternalType(label)
	if titleType != dataset.TitleTypeMovie && titleType != dataset.TitleTypeSeries {
		return TopChart{}, section.Invalid("El tipo '%s' no es válido. Selecciona Películas o Series.", label)
	}
	label = dataset.DisplayName(titleType)
	if err := ValidateVotes(minVotes); err != nil {
		return TopChart{}, err
	}

	var candidates []dataset.Title
	for _, t := range titles {
		if t.TitleType == titleType && t.NumVotes != nil && *t.NumVotes >= minVotes {
			candidates = append(candidates, t)
		}
	}
	if len(candidates) == 0 {
		return TopChart{}, section.Empty("No se encontraron %s en el Top %d con los criterios seleccionados (mínimo %s votos). Intenta reducir el umbral de votos o selecciona un tipo de título diferente.",
			strings.ToLower(label), n, section.FormatCount(minVotes))
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.AverageRating != b.AverageRating {
			return a.AverageRating > b.AverageRating
		}
		return a.Votes() > b.Votes()
	})
	if len(candidates) > n {
		candidates = candidates[:n]
	}

	bars := make([]Bar, len(candidates))
	for i, t := range candidates {
		bars[len(candidates)-1-i] = Bar{
			Tconst:    t.Tconst,
			Title:     t.PrimaryTitle,
			Rating:    t.AverageRating,
			Votes:     t.Votes(),
			StartYear: t.StartYear,
			Genres:    t.Genres,
		}
	}

	color, ok := topColors[label]
	if !ok {
		color = fallbackColor
	}

	return TopChart{
		Title:      fmt.Sprintf("Top %d %s Mejor Puntuadas (Mín. %s votos)", n, label, section.FormatCount(minVotes)),
		Type:       label,
		Color:      color,
		MinVotes:   minVotes,
		XAxisTitle: "Calificación Promedio",
		YAxisTitle: "Título",
		Bars:       bars,
	}, nil
}
