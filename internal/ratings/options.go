// Package ratings builds the sections of the ratings page: the rating
// histogram, the genre composition of a rating range and the top titles.
package ratings

import (
	"sort"

	"github.com/explorador/imdbexplorer/internal/dataset"
	"github.com/explorador/imdbexplorer/internal/section"
)

// Vote threshold slider bounds of the top titles section.
const (
	MinVotes     = 100
	MaxVotes     = 250000
	VotesStep    = 100
	DefaultVotes = 5000
)

// Genre selection bounds of the pie section.
const (
	MinPieGenres = 3
	MaxPieGenres = 5
)

// RatingRange is an inclusive rating interval.
type RatingRange struct {
	Label string  `json:"label"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
}

// Contains reports whether r falls in the range, bounds included.
func (rr RatingRange) Contains(r float64) bool {
	return r >= rr.Min && r <= rr.Max
}

// RatingRanges are the selectable ranges of the pie section.
var RatingRanges = []RatingRange{
	{Label: "1.0 - 2.0", Min: 1.0, Max: 2.0},
	{Label: "2.1 - 3.0", Min: 2.1, Max: 3.0},
	{Label: "3.1 - 4.0", Min: 3.1, Max: 4.0},
	{Label: "4.1 - 5.0", Min: 4.1, Max: 5.0},
	{Label: "5.1 - 6.0", Min: 5.1, Max: 6.0},
	{Label: "6.1 - 7.0", Min: 6.1, Max: 7.0},
	{Label: "7.1 - 8.0", Min: 7.1, Max: 8.0},
	{Label: "8.1 - 9.0", Min: 8.1, Max: 9.0},
	{Label: "9.1 - 10.0", Min: 9.1, Max: 10.0},
}

// DefaultRatingRange is "7.1 - 8.0".
var DefaultRatingRange = RatingRanges[6]

// ParseRatingRange looks up a range by label. An empty label selects the
// default range.
func ParseRatingRange(label string) (RatingRange, error) {
	if label == "" {
		return DefaultRatingRange, nil
	}
	for _, rr := range RatingRanges {
		if rr.Label == label {
			return rr, nil
		}
	}
	return RatingRange{}, section.Invalid("El rango de calificación '%s' no es válido.", label)
}

// TopTypes are the title types offered by the top titles section.
var TopTypes = []string{
	dataset.DisplayName(dataset.TitleTypeMovie),
	dataset.DisplayName(dataset.TitleTypeSeries),
}

// TypeOptions lists "Todos" followed by the mapped title types present in
// the data, movies before series.
func TypeOptions(titles []dataset.Title) []string {
	present := make(map[string]bool)
	for _, t := range titles {
		present[t.TitleType] = true
	}
	options := []string{dataset.AllTypes}
	for _, tt := range []string{dataset.TitleTypeMovie, dataset.TitleTypeSeries} {
		if present[tt] {
			options = append(options, dataset.DisplayName(tt))
		}
	}
	return options
}

// GenreOptions lists the sorted distinct genres of the titles in the range
// and the default selection: the first five when at least three exist.
func GenreOptions(titles []dataset.Title, rr RatingRange) (genres, defaults []string) {
	seen := make(map[string]bool)
	for _, t := range titles {
		if !rr.Contains(t.AverageRating) {
			continue
		}
		for _, g := range t.GenreList() {
			if !seen[g] {
				seen[g] = true
				genres = append(genres, g)
			}
		}
	}
	sort.Strings(genres)

	defaults = []string{}
	if len(genres) >= MinPieGenres {
		defaults = append(defaults, genres[:min(MaxPieGenres, len(genres))]...)
	}
	if genres == nil {
		genres = []string{}
	}
	return genres, defaults
}

// filterByType keeps the titles of the labelled type; "Todos" keeps all.
func filterByType(titles []dataset.Title, label string) []dataset.Title {
	if label == dataset.AllTypes {
		return titles
	}
	titleType := dataset.InternalType(label)
	var out []dataset.Title
	for _, t := range titles {
		if t.TitleType == titleType {
			out = append(out, t)
		}
	}
	return out
}
