package ratings

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

// Config holds the tunables of the ratings page.
type Config struct {
	TopN          int
	HistogramBins int
}

// Query is the selection of every ratings widget. Nil Genres means the
// default genre selection.
type Query struct {
	Type     string   `query:"type" json:"type"`
	Range    string   `query:"range" json:"range"`
	Genres   []string `query:"genre" json:"genres"`
	TopType  string   `query:"topType" json:"topType"`
	MinVotes int64    `query:"minVotes" json:"minVotes"`
}

// withDefaults fills the widget defaults for unset fields.
func (q Query) withDefaults() Query {
	if q.Type == "" {
		q.Type = dataset.AllTypes
	}
	if q.Range == "" {
		q.Range = DefaultRatingRange.Label
	}
	if q.TopType == "" {
		q.TopType = TopTypes[0]
	}
	if q.MinVotes == 0 {
		q.MinVotes = DefaultVotes
	}
	return q
}

// VoteSlider describes the vote threshold widget.
type VoteSlider struct {
	Min     int64 `json:"min"`
	Max     int64 `json:"max"`
	Step    int64 `json:"step"`
	Default int64 `json:"default"`
}

// Options lists the choices of every ratings widget.
type Options struct {
	Types         []string      `json:"types"`
	RatingRanges  []RatingRange `json:"ratingRanges"`
	DefaultRange  string        `json:"defaultRange"`
	Genres        []string      `json:"genres"`
	DefaultGenres []string      `json:"defaultGenres"`
	MinGenres     int           `json:"minGenres"`
	MaxGenres     int           `json:"maxGenres"`
	TopTypes      []string      `json:"topTypes"`
	Votes         VoteSlider    `json:"votes"`
}

// Page holds every section of the ratings page.
type Page struct {
	Query     Query            `json:"query"`
	Options   section.Envelope `json:"options"`
	Histogram section.Envelope `json:"histogram"`
	GenrePie  section.Envelope `json:"genrePie"`
	Top       section.Envelope `json:"top"`
}

// Service renders the ratings page sections.
type Service struct {
	titles TitleSource
	cfg    Config
	logger zerolog.Logger
}

// NewService creates a new ratings service.
func NewService(titles TitleSource, cfg Config, logger zerolog.Logger) *Service {
	if cfg.TopN <= 0 {
		cfg.TopN = 30
	}
	if cfg.HistogramBins <= 0 {
		cfg.HistogramBins = 20
	}
	return &Service{
		titles: titles,
		cfg:    cfg,
		logger: logger.With().Str("component", "ratings").Logger(),
	}
}

// Options returns the widget choices; the genre options follow the range.
func (s *Service) Options(ctx context.Context, rangeLabel string) (Options, error) {
	rr, err := ParseRatingRange(rangeLabel)
	if err != nil {
		return Options{}, err
	}
	titles, err := s.titles.Titles(ctx)
	if err != nil {
		return Options{}, err
	}
	genres, defaults := GenreOptions(titles, rr)
	return Options{
		Types:         TypeOptions(titles),
		RatingRanges:  RatingRanges,
		DefaultRange:  DefaultRatingRange.Label,
		Genres:        genres,
		DefaultGenres: defaults,
		MinGenres:     MinPieGenres,
		MaxGenres:     MaxPieGenres,
		TopTypes:      TopTypes,
		Votes:         VoteSlider{Min: MinVotes, Max: MaxVotes, Step: VotesStep, Default: DefaultVotes},
	}, nil
}

// Histogram returns the rating histogram of a type.
func (s *Service) Histogram(ctx context.Context, label string) (Histogram, error) {
	titles, err := s.titles.Titles(ctx)
	if err != nil {
		return Histogram{}, err
	}
	return BuildHistogram(titles, label, s.cfg.HistogramBins)
}

// GenrePie returns the genre composition of a range. Nil genres selects
// the default genres of the range.
func (s *Service) GenrePie(ctx context.Context, rangeLabel string, genres []string) (GenrePie, error) {
	rr, err := ParseRatingRange(rangeLabel)
	if err != nil {
		return GenrePie{}, err
	}
	titles, err := s.titles.Titles(ctx)
	if err != nil {
		return GenrePie{}, err
	}
	if genres == nil {
		_, genres = GenreOptions(titles, rr)
	}
	return BuildGenrePie(titles, rr, genres)
}

// Top returns the best rated titles of a type.
func (s *Service) Top(ctx context.Context, label string, minVotes int64) (TopChart, error) {
	titles, err := s.titles.Titles(ctx)
	if err != nil {
		return TopChart{}, err
	}
	if minVotes == 0 {
		minVotes = DefaultVotes
	}
	return BuildTop(titles, label, minVotes, s.cfg.TopN)
}

// Page renders every section of the ratings page. Each section fails on
// its own.
func (s *Service) Page(ctx context.Context, q Query) Page {
	q = q.withDefaults()
	page := Page{Query: q}

	page.Options = section.Run(func() (Options, error) { return s.Options(ctx, q.Range) })
	page.Histogram = section.Run(func() (Histogram, error) { return s.Histogram(ctx, q.Type) })
	page.GenrePie = section.Run(func() (GenrePie, error) { return s.GenrePie(ctx, q.Range, q.Genres) })
	page.Top = section.Run(func() (TopChart, error) { return s.Top(ctx, q.TopType, q.MinVotes) })

	if pie, ok := page.GenrePie.Data.(GenrePie); ok {
		page.Query.Genres = pie.Genres
	}
	return page
}
