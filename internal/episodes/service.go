package episodes

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/explorador/imdbexplorer/internal/dataset"
	"github.com/explorador/imdbexplorer/internal/section"
)

const (
	joinedKey     = "episodes.joined"
	candidatesKey = "episodes.candidates"
)

// Store is the subset of dataset.Store the episodes page reads from.
type Store interface {
	Sources() dataset.Sources
	Titles(ctx context.Context) ([]dataset.Title, error)
	EpisodeLinks(ctx context.Context) ([]dataset.EpisodeLink, error)
	EpisodeRatings(ctx context.Context) ([]dataset.EpisodeRating, error)
	Derived(ctx context.Context, key string, deps []dataset.Source, build func(context.Context) (any, error)) (any, error)
}

// Selection identifies a series by display name and, optionally, by id
// when the name is ambiguous.
type Selection struct {
	Series string `query:"series" json:"series"`
	Tconst string `query:"tconst" json:"tconst,omitempty"`
	Season string `query:"season" json:"season,omitempty"`
}

// SeriesList is the content of the series dropdown.
type SeriesList struct {
	Series  []SeriesCandidate `json:"series"`
	Default string            `json:"default"`
}

// Page holds every section of the episodes page.
type Page struct {
	Selection Selection        `json:"selection"`
	Series    section.Envelope `json:"series"`
	Info      section.Envelope `json:"info"`
	Counts    section.Envelope `json:"counts"`
	Seasons   section.Envelope `json:"seasons"`
	Trend     section.Envelope `json:"trend"`
}

// Service renders the episodes page sections.
type Service struct {
	store  Store
	logger zerolog.Logger
}

// NewService creates a new episodes service.
func NewService(store Store, logger zerolog.Logger) *Service {
	return &Service{
		store:  store,
		logger: logger.With().Str("component", "episodes").Logger(),
	}
}

// Joined returns the left join of titles with episode links, built once
// per source fingerprint.
func (s *Service) Joined(ctx context.Context) ([]JoinedEpisode, error) {
	sources := s.store.Sources()
	v, err := s.store.Derived(ctx, joinedKey, []dataset.Source{sources.Titles, sources.EpisodeLinks}, func(ctx context.Context) (any, error) {
		titles, err := s.store.Titles(ctx)
		if err != nil {
			return nil, err
		}
		links, err := s.store.EpisodeLinks(ctx)
		if err != nil {
			return nil, err
		}
		joined := LeftJoin(titles, links)
		s.logger.Debug().Int("titles", len(titles)).Int("links", len(links)).Int("rows", len(joined)).Msg("episode join built")
		return joined, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]JoinedEpisode), nil
}

// Candidates returns the series that have both episode links and ratings.
func (s *Service) Candidates(ctx context.Context) ([]SeriesCandidate, error) {
	sources := s.store.Sources()
	deps := []dataset.Source{sources.Titles, sources.EpisodeLinks, sources.EpisodeRatings}
	v, err := s.store.Derived(ctx, candidatesKey, deps, func(ctx context.Context) (any, error) {
		joined, err := s.Joined(ctx)
		if err != nil {
			return nil, err
		}
		ratings, err := s.store.EpisodeRatings(ctx)
		if err != nil {
			return nil, err
		}
		candidates := CommonSeries(joined, ratings)
		ambiguous := 0
		for _, c := range candidates {
			if c.Ambiguous {
				ambiguous++
			}
		}
		if ambiguous > 0 {
			s.logger.Warn().Int("ambiguous", ambiguous).Msg("series display names shared by several titles")
		}
		return candidates, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]SeriesCandidate), nil
}

// SeriesList returns the dropdown options and default selection.
func (s *Service) SeriesList(ctx context.Context) (SeriesList, error) {
	candidates, err := s.Candidates(ctx)
	if err != nil {
		return SeriesList{}, err
	}
	def, ok := DefaultSeries(candidates)
	if !ok {
		return SeriesList{}, errNoCommonSeries()
	}
	return SeriesList{Series: candidates, Default: def.Name}, nil
}

func errNoCommonSeries() error {
	return section.Empty("No se encontraron series con datos completos (conteo y calificaciones de episodios) para esta visualización.")
}

// Resolve finds the candidate for a selection. An empty series name picks
// the default series.
func (s *Service) Resolve(ctx context.Context, sel Selection) (SeriesCandidate, string, error) {
	candidates, err := s.Candidates(ctx)
	if err != nil {
		return SeriesCandidate{}, "", err
	}
	return resolve(candidates, sel)
}

func resolve(candidates []SeriesCandidate, sel Selection) (SeriesCandidate, string, error) {
	if len(candidates) == 0 {
		return SeriesCandidate{}, "", errNoCommonSeries()
	}

	var candidate SeriesCandidate
	found := false
	if sel.Series == "" {
		candidate, found = DefaultSeries(candidates)
	} else {
		for _, c := range candidates {
			if c.Name == sel.Series {
				candidate, found = c, true
				break
			}
		}
	}
	if !found {
		return SeriesCandidate{}, "", section.Invalid("La serie '%s' no está disponible. Por favor, selecciona una serie de la lista.", sel.Series)
	}

	if sel.Tconst == "" {
		return candidate, candidate.Tconst(), nil
	}
	if !candidate.Has(sel.Tconst) {
		return SeriesCandidate{}, "", section.Invalid("El identificador '%s' no corresponde a la serie '%s'.", sel.Tconst, candidate.Name)
	}
	return candidate, sel.Tconst, nil
}

// Info returns the series header.
func (s *Service) Info(ctx context.Context, sel Selection) (SeriesInfo, error) {
	candidate, tconst, err := s.Resolve(ctx, sel)
	if err != nil {
		return SeriesInfo{}, err
	}
	joined, err := s.Joined(ctx)
	if err != nil {
		return SeriesInfo{}, err
	}
	return NewSeriesInfo(joined, candidate, tconst)
}

// Counts returns the episodes-per-season chart.
func (s *Service) Counts(ctx context.Context, sel Selection) (SeasonCountChart, error) {
	candidate, tconst, err := s.Resolve(ctx, sel)
	if err != nil {
		return SeasonCountChart{}, err
	}
	joined, err := s.Joined(ctx)
	if err != nil {
		return SeasonCountChart{}, err
	}
	return EpisodesPerSeason(joined, tconst, candidate.Name)
}

// Seasons returns the seasons with ratings for the series.
func (s *Service) Seasons(ctx context.Context, sel Selection) ([]string, error) {
	candidate, _, err := s.Resolve(ctx, sel)
	if err != nil {
		return nil, err
	}
	ratings, err := s.store.EpisodeRatings(ctx)
	if err != nil {
		return nil, err
	}
	return Seasons(ratings, candidate.Name)
}

// Trend returns the rating trend of one season. An empty season picks the
// first season of the series.
func (s *Service) Trend(ctx context.Context, sel Selection) (Trend, error) {
	candidate, _, err := s.Resolve(ctx, sel)
	if err != nil {
		return Trend{}, err
	}
	ratings, err := s.store.EpisodeRatings(ctx)
	if err != nil {
		return Trend{}, err
	}

	season := sel.Season
	if season == "" {
		seasons, err := Seasons(ratings, candidate.Name)
		if err != nil {
			return Trend{}, err
		}
		season = seasons[0]
	}
	return RatingTrend(ratings, candidate.Name, season)
}

// Page renders every section of the episodes page. Each section fails on
// its own.
func (s *Service) Page(ctx context.Context, sel Selection) Page {
	page := Page{Selection: sel}

	list, err := s.SeriesList(ctx)
	page.Series = section.New(list, err)
	if err == nil && page.Selection.Series == "" {
		page.Selection.Series = list.Default
	}

	page.Info = section.Run(func() (SeriesInfo, error) { return s.Info(ctx, page.Selection) })
	page.Counts = section.Run(func() (SeasonCountChart, error) { return s.Counts(ctx, page.Selection) })

	seasons, err := s.Seasons(ctx, page.Selection)
	page.Seasons = section.New(seasons, err)
	if err == nil && page.Selection.Season == "" {
		page.Selection.Season = seasons[0]
	}

	page.Trend = section.Run(func() (Trend, error) { return s.Trend(ctx, page.Selection) })
	return page
}
