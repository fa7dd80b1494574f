package episodes

import (
	"fmt"
	"sort"

	"github.com/explorador/imdbexplorer/internal/dataset"
	"github.com/explorador/imdbexplorer/internal/section"
)

// Band is a coarse classification of an episode rating.
type Band string

const (
	BandAlto   Band = "Alto"
	BandNormal Band = "Normal"
	BandBajo   Band = "Bajo"
)

var bandColors = map[Band]string{
	BandAlto:   "#2CA02C",
	BandNormal: "#FF7F0E",
	BandBajo:   "#D62728",
}

// Classify maps a rating to its band: Alto from 7.0, Normal from 4.0 up to
// but excluding 7.0, Bajo for everything else.
func Classify(rating float64) Band {
	switch {
	case rating >= 7.0:
		return BandAlto
	case rating >= 4.0:
		return BandNormal
	default:
		return BandBajo
	}
}

// Color returns the chart colour of the band.
func (b Band) Color() string {
	return bandColors[b]
}

// BandLegend describes one band for the chart caption.
type BandLegend struct {
	Band  Band   `json:"band"`
	Color string `json:"color"`
	Range string `json:"range"`
}

// Legend lists the bands from highest to lowest.
func Legend() []BandLegend {
	return []BandLegend{
		{Band: BandAlto, Color: BandAlto.Color(), Range: "7.0-10"},
		{Band: BandNormal, Color: BandNormal.Color(), Range: "4.0-6.9"},
		{Band: BandBajo, Color: BandBajo.Color(), Range: "1.0-3.9"},
	}
}

// TrendPoint is one episode marker.
type TrendPoint struct {
	Episode float64 `json:"episode"`
	Rating  float64 `json:"rating"`
	Votes   *int64  `json:"votes,omitempty"`
	Band    Band    `json:"band"`
	Color   string  `json:"color"`
	Hover   string  `json:"hover"`
}

// TrendSegment joins two consecutive episodes and takes the colour of the
// second one.
type TrendSegment struct {
	FromEpisode float64 `json:"fromEpisode"`
	ToEpisode   float64 `json:"toEpisode"`
	FromRating  float64 `json:"fromRating"`
	ToRating    float64 `json:"toRating"`
	Band        Band    `json:"band"`
	Color       string  `json:"color"`
}

// Trend is the line+scatter chart of episode ratings within one season.
type Trend struct {
	Title      string         `json:"title"`
	Series     string         `json:"series"`
	Season     string         `json:"season"`
	XAxisTitle string         `json:"xAxisTitle"`
	YAxisTitle string         `json:"yAxisTitle"`
	YRange     [2]float64     `json:"yRange"`
	Points     []TrendPoint   `json:"points"`
	Segments   []TrendSegment `json:"segments"`
	Legend     []BandLegend   `json:"legend"`
}

// RatingTrend filters the rating table to one season of a series, drops
// rows whose episode number or rating is not numeric and orders the rest
// by episode number, keeping input order among equal numbers.
func RatingTrend(ratings []dataset.EpisodeRating, series, season string) (Trend, error) {
	seasonKey := dataset.SeasonKey(season)

	var points []TrendPoint
	var raw []string
	for _, r := range ratings {
		if r.SeriesTitle != series || r.Season() != seasonKey {
			continue
		}
		episode, ok := r.Episode()
		if !ok {
			continue
		}
		rating, ok := r.Rating()
		if !ok {
			continue
		}
		band := Classify(rating)
		p := TrendPoint{Episode: episode, Rating: rating, Band: band, Color: band.Color()}
		if v, ok := r.Votes(); ok {
			p.Votes = &v
		}
		points = append(points, p)
		raw = append(raw, r.NumVotes)
	}
	if len(points) == 0 {
		return Trend{}, section.Empty("No se encontraron episodios con calificaciones para la Temporada %s de %s.", seasonKey, series)
	}

	order := make([]int, len(points))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool { return points[order[i]].Episode < points[order[j]].Episode })

	sorted := make([]TrendPoint, len(points))
	for i, idx := range order {
		p := points[idx]
		p.Hover = hoverText(p, raw[idx])
		sorted[i] = p
	}

	segments := make([]TrendSegment, 0, len(sorted)-1)
	for i := 1; i < len(sorted); i++ {
		prev, curr := sorted[i-1], sorted[i]
		segments = append(segments, TrendSegment{
			FromEpisode: prev.Episode,
			ToEpisode:   curr.Episode,
			FromRating:  prev.Rating,
			ToRating:    curr.Rating,
			Band:        curr.Band,
			Color:       curr.Color,
		})
	}

	return Trend{
		Title:      fmt.Sprintf("Calificaciones de Episodios - %s Temporada %s", series, seasonKey),
		Series:     series,
		Season:     seasonKey,
		XAxisTitle: "Número de Episodio",
		YAxisTitle: "Calificación Promedio (1-10)",
		YRange:     [2]float64{0, 10},
		Points:     sorted,
		Segments:   segments,
		Legend:     Legend(),
	}, nil
}

func hoverText(p TrendPoint, rawVotes string) string {
	votes := rawVotes
	if p.Votes != nil {
		votes = section.FormatCount(*p.Votes)
	} else if dataset.IsNull(rawVotes) {
		votes = "N/D"
	}
	return fmt.Sprintf("Episodio: %s<br>Calificación: %s (%s)<br>Votos: %s",
		formatEpisode(p.Episode), section.FormatRating(p.Rating), p.Band, votes)
}
