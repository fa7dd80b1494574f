package ratings

import (
	"fmt"
	"math"

	"github.com/explorador/imdbexplorer/internal/dataset"
	"github.com/explorador/imdbexplorer/internal/section"
)

const fallbackColor = "#6A5ACD"

var histogramColors = map[string]string{
	dataset.AllTypes: "#F5C518",
	"Películas":      "#31688B",
	"Series":         "#E34A33",
}

// HistogramColor returns the bar colour for a type label.
func HistogramColor(label string) string {
	if c, ok := histogramColors[label]; ok {
		return c
	}
	return fallbackColor
}

// Bin is one histogram bar. The last bin includes its upper edge.
type Bin struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Count int     `json:"count"`
}

// Histogram is the rating distribution of one title type.
type Histogram struct {
	Title      string  `json:"title"`
	Type       string  `json:"type"`
	Color      string  `json:"color"`
	XAxisTitle string  `json:"xAxisTitle"`
	YAxisTitle string  `json:"yAxisTitle"`
	BarGap     float64 `json:"barGap"`
	Bins       []Bin   `json:"bins"`
	Total      int     `json:"total"`
}

// BuildHistogram splits the ratings of the selected type into equal-width
// bins between the lowest and highest rating.
func BuildHistogram(titles []dataset.Title, label string, bins int) (Histogram, error) {
	if label == "" {
		label = dataset.AllTypes
	}
	filtered := filterByType(titles, label)
	if len(filtered) == 0 {
		return Histogram{}, section.Empty("No hay datos para generar el histograma para '%s'.", label)
	}
	if bins < 1 {
		bins = 1
	}

	lo, hi := math.Inf(1), math.Inf(-1)
	for _, t := range filtered {
		lo = math.Min(lo, t.AverageRating)
		hi = math.Max(hi, t.AverageRating)
	}

	var out []Bin
	if lo == hi {
		out = []Bin{{Start: lo, End: hi, Count: len(filtered)}}
	} else {
		width := (hi - lo) / float64(bins)
		out = make([]Bin, bins)
		for i := range out {
			out[i].Start = lo + float64(i)*width
			out[i].End = lo + float64(i+1)*width
		}
		out[bins-1].End = hi
		for _, t := range filtered {
			idx := int((t.AverageRating - lo) / width)
			if idx >= bins {
				idx = bins - 1
			}
			out[idx].Count++
		}
	}

	return Histogram{
		Title:      fmt.Sprintf("Histograma de Calificaciones Promedio de %s", label),
		Type:       label,
		Color:      HistogramColor(label),
		XAxisTitle: "Calificación Promedio",
		YAxisTitle: "Número de Títulos",
		BarGap:     0.05,
		Bins:       out,
		Total:      len(filtered),
	}, nil
}
