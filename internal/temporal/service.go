package temporal

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/explorador/imdbexplorer/internal/dataset"
	"github.com/explorador/imdbexplorer/internal/section"
)

// TitleSource provides the cleaned title table.
type TitleSource interface {
	Titles(ctx context.Context) ([]dataset.Title, error)
}

// Config holds the minimum group sizes of the yearly averages.
type Config struct {
	MinTitlesGenreTrend int
	MinTitlesComparison int
}

// Query is the selection of every temporal widget. Nil Genres means the
// default genres; zero years mean the data bounds.
type Query struct {
	Type   string   `query:"type" json:"type"`
	Genres []string `query:"genre" json:"genres"`
	Start  int      `query:"start" json:"start"`
	End    int      `query:"end" json:"end"`
}

// Options lists the choices of every temporal widget.
type Options struct {
	Types         []string `json:"types"`
	Genres        []string `json:"genres"`
	DefaultGenres []string `json:"defaultGenres"`
	MaxGenres     int      `json:"maxGenres"`
	MinYear       int      `json:"minYear"`
	MaxYear       int      `json:"maxYear"`
}

// Page holds every section of the temporal page.
type Page struct {
	Query      Query            `json:"query"`
	Options    section.Envelope `json:"options"`
	GenreTrend section.Envelope `json:"genreTrend"`
	Comparison section.Envelope `json:"comparison"`
}

// Service renders the temporal page sections.
type Service struct {
	titles TitleSource
	cfg    Config
	logger zerolog.Logger
}

// NewService creates a new temporal service.
func NewService(titles TitleSource, cfg Config, logger zerolog.Logger) *Service {
	if cfg.MinTitlesGenreTrend <= 0 {
		cfg.MinTitlesGenreTrend = 10
	}
	if cfg.MinTitlesComparison <= 0 {
		cfg.MinTitlesComparison = 50
	}
	return &Service{
		titles: titles,
		cfg:    cfg,
		logger: logger.With().Str("component", "temporal").Logger(),
	}
}

// Options returns the widget choices; genre options follow the type.
func (s *Service) Options(ctx context.Context, label string) (Options, error) {
	titles, err := s.titles.Titles(ctx)
	if err != nil {
		return Options{}, err
	}
	lo, hi, err := YearBounds(titles)
	if err != nil {
		return Options{}, err
	}
	genres, defaults := GenreOptions(titles, label)
	return Options{
		Types:         TypeOptions(titles),
		Genres:        genres,
		DefaultGenres: defaults,
		MaxGenres:     MaxGenres,
		MinYear:       lo,
		MaxYear:       hi,
	}, nil
}

// GenreTrend returns the yearly rating of the selected genres. Nil genres
// selects the default genres of the type.
func (s *Service) GenreTrend(ctx context.Context, label string, genres []string) (Chart, error) {
	titles, err := s.titles.Titles(ctx)
	if err != nil {
		return Chart{}, err
	}
	if genres == nil {
		_, genres = GenreOptions(titles, label)
	}
	return GenreTrend(titles, label, genres, s.cfg.MinTitlesGenreTrend)
}

// Comparison returns movies against series per year. Zero years default to
// the bounds of the data.
func (s *Service) Comparison(ctx context.Context, start, end int) (Chart, error) {
	titles, err := s.titles.Titles(ctx)
	if err != nil {
		return Chart{}, err
	}
	if start == 0 || end == 0 {
		lo, hi, err := YearBounds(titles)
		if err != nil {
			return Chart{}, err
		}
		if start == 0 {
			start = lo
		}
		if end == 0 {
			end = hi
		}
	}
	return FormatComparison(titles, start, end, s.cfg.MinTitlesComparison)
}

// Page renders every section of the temporal page. Each section fails on
// its own.
func (s *Service) Page(ctx context.Context, q Query) Page {
	if q.Type == "" {
		q.Type = dataset.AllTypes
	}
	page := Page{Query: q}

	opts, err := s.Options(ctx, q.Type)
	page.Options = section.New(opts, err)
	if err == nil {
		if page.Query.Genres == nil {
			page.Query.Genres = opts.DefaultGenres
		}
		if page.Query.Start == 0 {
			page.Query.Start = opts.MinYear
		}
		if page.Query.End == 0 {
			page.Query.End = opts.MaxYear
		}
	}

	page.GenreTrend = section.Run(func() (Chart, error) {
		return s.GenreTrend(ctx, page.Query.Type, page.Query.Genres)
	})
	page.Comparison = section.Run(func() (Chart, error) {
		return s.Comparison(ctx, page.Query.Start, page.Query.End)
	})
	return page
}
