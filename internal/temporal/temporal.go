// Package temporal builds the yearly charts of the temporal page: the
// average rating of selected genres per year and movies against series.
package temporal

import (
	"fmt"
	"math"
	"sort"

	"github.com/explorador/imdbexplorer/internal/dataset"
	"github.com/explorador/imdbexplorer/internal/section"
)

// MaxGenres is the largest genre selection of the trend chart.
const MaxGenres = 5

const defaultGenreCount = 3

var comparisonColors = map[string]string{
	"Películas": "#31688B",
	"Series":    "#E34A33",
}

// TypeOptions lists "Todos" followed by every title type present, mapped
// to its label where one exists. Movies and series come first; other types
// keep their order of appearance.
func TypeOptions(titles []dataset.Title) []string {
	seen := make(map[string]bool)
	var labels []string
	for _, t := range titles {
		if seen[t.TitleType] {
			continue
		}
		seen[t.TitleType] = true
		labels = append(labels, dataset.DisplayName(t.TitleType))
	}

	rank := func(label string) int {
		switch label {
		case "Películas":
			return 1
		case "Series":
			return 2
		default:
			return 3
		}
	}
	sort.SliceStable(labels, func(i, j int) bool { return rank(labels[i]) < rank(labels[j]) })
	return append([]string{dataset.AllTypes}, labels...)
}

func filterByType(titles []dataset.Title, label string) []dataset.Title {
	if label == "" || label == dataset.AllTypes {
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

// GenreOptions lists the sorted genres of a type and the default
// selection: the first three.
func GenreOptions(titles []dataset.Title, label string) (genres, defaults []string) {
	seen := make(map[string]bool)
	genres = []string{}
	for _, t := range filterByType(titles, label) {
		for _, g := range t.GenreList() {
			if !seen[g] {
				seen[g] = true
				genres = append(genres, g)
			}
		}
	}
	sort.Strings(genres)
	defaults = append([]string{}, genres[:min(defaultGenreCount, len(genres))]...)
	return genres, defaults
}

// YearBounds returns the earliest and latest start year.
func YearBounds(titles []dataset.Title) (int, int, error) {
	if len(titles) == 0 {
		return 0, 0, section.Empty("No se pudieron cargar los datos. Por favor, verifica la ruta del archivo CSV y que no esté vacío.")
	}
	lo, hi := math.MaxInt, math.MinInt
	for _, t := range titles {
		lo = min(lo, t.StartYear)
		hi = max(hi, t.StartYear)
	}
	return lo, hi, nil
}

// YearPoint is the mean rating of one group in one year.
type YearPoint struct {
	Year  int     `json:"year"`
	Mean  float64 `json:"mean"`
	Count int     `json:"count"`
}

// Line is one coloured series of a yearly chart.
type Line struct {
	Name   string      `json:"name"`
	Color  string      `json:"color,omitempty"`
	Points []YearPoint `json:"points"`
}

// Chart is a yearly line chart.
type Chart struct {
	Title       string     `json:"title"`
	XAxisTitle  string     `json:"xAxisTitle"`
	YAxisTitle  string     `json:"yAxisTitle"`
	LegendTitle string     `json:"legendTitle"`
	YRange      [2]float64 `json:"yRange"`
	Markers     bool       `json:"markers"`
	MinCount    int        `json:"minCount"`
	Lines       []Line     `json:"lines"`
}

type groupKey struct {
	year  int
	group string
}

type accumulator struct {
	sum   float64
	count int
}

// aggregate turns accumulated groups into lines ordered by the given group
// names, dropping points with fewer than minCount titles.
func aggregate(groups map[groupKey]*accumulator, names []string, minCount int) []Line {
	points := make(map[string][]YearPoint)
	for k, acc := range groups {
		if acc.count < minCount {
			continue
		}
		points[k.group] = append(points[k.group], YearPoint{
			Year:  k.year,
			Mean:  acc.sum / float64(acc.count),
			Count: acc.count,
		})
	}

	var lines []Line
	for _, name := range names {
		pts := points[name]
		if len(pts) == 0 {
			continue
		}
		sort.Slice(pts, func(i, j int) bool { return pts[i].Year < pts[j].Year })
		lines = append(lines, Line{Name: name, Points: pts})
	}
	return lines
}

// GenreTrend averages the rating per year of each selected genre among the
// titles of a type. A title counts once for every selected genre it has.
func GenreTrend(titles []dataset.Title, label string, genres []string, minCount int) (Chart, error) {
	if label == "" {
		label = dataset.AllTypes
	}
	if len(genres) == 0 {
		return Chart{}, section.Invalid("Por favor, selecciona al menos un género para ver el gráfico de líneas.")
	}
	if len(genres) > MaxGenres {
		return Chart{}, section.Invalid("Selecciona hasta %d géneros.", MaxGenres)
	}

	selected := make(map[string]bool, len(genres))
	for _, g := range genres {
		selected[g] = true
	}

	groups := make(map[groupKey]*accumulator)
	matched := 0
	for _, t := range filterByType(titles, label) {
		if !t.HasGenre(selected) {
			continue
		}
		matched++
		for _, g := range t.GenreList() {
			if !selected[g] {
				continue
			}
			k := groupKey{year: t.StartYear, group: g}
			acc, ok := groups[k]
			if !ok {
				acc = &accumulator{}
				groups[k] = acc
			}
			acc.sum += t.AverageRating
			acc.count++
		}
	}
	if matched == 0 {
		return Chart{}, section.Empty("No se encontraron títulos con los géneros seleccionados para el tipo de título actual. Por favor, ajusta tus selecciones.")
	}

	names := make([]string, 0, len(selected))
	for g := range selected {
		names = append(names, g)
	}
	sort.Strings(names)

	lines := aggregate(groups, names, minCount)
	if len(lines) == 0 {
		return Chart{}, section.Empty("No hay suficientes datos (mínimo %d títulos por año/género) para los géneros seleccionados en el rango de años para '%s'. Intenta seleccionar otros géneros.", minCount, label)
	}

	return Chart{
		Title:       fmt.Sprintf("Calificación Promedio de Géneros Seleccionados (%s) por Año", label),
		XAxisTitle:  "Año de Lanzamiento",
		YAxisTitle:  "Calificación Promedio IMDb",
		LegendTitle: "Géneros",
		YRange:      [2]float64{1, 10},
		MinCount:    minCount,
		Lines:       lines,
	}, nil
}

// FormatComparison averages the rating per year of movies and of series
// released between start and end inclusive.
func FormatComparison(titles []dataset.Title, start, end, minCount int) (Chart, error) {
	if start > end {
		return Chart{}, section.Invalid("El Año de Inicio no puede ser posterior al Año de Término. Por favor, ajusta tu selección.")
	}

	groups := make(map[groupKey]*accumulator)
	matched := 0
	for _, t := range titles {
		if t.StartYear < start || t.StartYear > end {
			continue
		}
		if t.TitleType != dataset.TitleTypeMovie && t.TitleType != dataset.TitleTypeSeries {
			continue
		}
		matched++
		k := groupKey{year: t.StartYear, group: dataset.DisplayName(t.TitleType)}
		acc, ok := groups[k]
		if !ok {
			acc = &accumulator{}
			groups[k] = acc
		}
		acc.sum += t.AverageRating
		acc.count++
	}
	if matched == 0 {
		return Chart{}, section.Empty("No se encontraron datos de películas o series para el rango de años %d-%d. Por favor, ajusta los años seleccionados.", start, end)
	}

	names := []string{dataset.DisplayName(dataset.TitleTypeMovie), dataset.DisplayName(dataset.TitleTypeSeries)}
	lines := aggregate(groups, names, minCount)
	if len(lines) == 0 {
		return Chart{}, section.Empty("No hay suficientes datos (mínimo %d títulos por año/formato) para los años seleccionados (%d-%d). Ajusta tu rango de años o reduce el umbral de datos.", minCount, start, end)
	}
	for i := range lines {
		lines[i].Color = comparisonColors[lines[i].Name]
	}

	return Chart{
		Title:       fmt.Sprintf("Puntuación Promedio de Películas y Series del Año %d al %d", start, end),
		XAxisTitle:  "Año",
		YAxisTitle:  "Calificación Promedio IMDb",
		LegendTitle: "Formato",
		YRange:      [2]float64{1, 10},
		Markers:     true,
		MinCount:    minCount,
		Lines:       lines,
	}, nil
}
