package ratings

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/explorador/imdbexplorer/internal/dataset"
	"github.com/explorador/imdbexplorer/internal/section"
	"github.com/explorador/imdbexplorer/internal/testutil"
)

func title(id, typ string, rating float64, votes int64, genres string) dataset.Title {
	return dataset.Title{
		Tconst:        id,
		PrimaryTitle:  "Title " + id,
		TitleType:     typ,
		StartYear:     2000,
		AverageRating: rating,
		NumVotes:      testutil.Int64Ptr(votes),
		Genres:        genres,
	}
}

func sample() []dataset.Title {
	return []dataset.Title{
		title("tt1", dataset.TitleTypeMovie, 7.5, 10000, "Drama,Action"),
		title("tt2", dataset.TitleTypeMovie, 7.5, 20000, "Comedy"),
		title("tt3", dataset.TitleTypeMovie, 9.0, 6000, "Drama"),
		title("tt4", dataset.TitleTypeSeries, 7.8, 300, "Crime,Drama,Thriller"),
		title("tt5", dataset.TitleTypeSeries, 2.0, 50000, "Horror"),
		title("tt6", "short", 7.2, 100, "Animation"),
	}
}

func TestTypeOptions(t *testing.T) {
	assert.Equal(t, []string{"Todos", "Películas", "Series"}, TypeOptions(sample()))
	assert.Equal(t, []string{"Todos"}, TypeOptions(nil))
}

func TestParseRatingRange(t *testing.T) {
	rr, err := ParseRatingRange("")
	require.NoError(t, err)
	assert.Equal(t, "7.1 - 8.0", rr.Label)

	rr, err = ParseRatingRange("9.1 - 10.0")
	require.NoError(t, err)
	assert.True(t, rr.Contains(10))
	assert.True(t, rr.Contains(9.1))
	assert.False(t, rr.Contains(9.05))

	_, err = ParseRatingRange("0 - 1")
	assert.ErrorIs(t, err, section.ErrInvalidSelection)
}

func TestGenreOptions(t *testing.T) {
	genres, defaults := GenreOptions(sample(), DefaultRatingRange)

	assert.Equal(t, []string{"Action", "Animation", "Comedy", "Crime", "Drama", "Thriller"}, genres)
	assert.Equal(t, []string{"Action", "Animation", "Comedy", "Crime", "Drama"}, defaults)

	genres, defaults = GenreOptions(sample(), RatingRanges[1])
	assert.Empty(t, genres)
	assert.Empty(t, defaults)

	// Fewer than three genres yields no default selection.
	genres, defaults = GenreOptions(sample(), RatingRanges[0])
	assert.Equal(t, []string{"Horror"}, genres)
	assert.Empty(t, defaults)
}

func TestBuildHistogram(t *testing.T) {
	titles := sample()

	hist, err := BuildHistogram(titles, "Todos", 20)
	require.NoError(t, err)
	assert.Len(t, hist.Bins, 20)
	assert.Equal(t, "#F5C518", hist.Color)
	assert.Equal(t, 2.0, hist.Bins[0].Start)
	assert.Equal(t, 9.0, hist.Bins[19].End)
	sum := 0
	for _, b := range hist.Bins {
		sum += b.Count
	}
	assert.Equal(t, len(titles), sum)
	assert.Equal(t, 1, hist.Bins[19].Count)

	hist, err = BuildHistogram(titles, "Series", 20)
	require.NoError(t, err)
	assert.Equal(t, 2, hist.Total)
	assert.Equal(t, "#E34A33", hist.Color)
	assert.Equal(t, "Histograma de Calificaciones Promedio de Series", hist.Title)

	hist, err = BuildHistogram(titles[:1], "Películas", 20)
	require.NoError(t, err)
	require.Len(t, hist.Bins, 1)
	assert.Equal(t, 1, hist.Bins[0].Count)

	_, err = BuildHistogram(titles, "Documentales", 20)
	assert.ErrorIs(t, err, section.ErrEmptyResult)
	assert.Equal(t, fallbackColor, HistogramColor("Documentales"))
}

func TestBuildGenrePie(t *testing.T) {
	titles := sample()

	pie, err := BuildGenrePie(titles, DefaultRatingRange, []string{"Drama", "Comedy", "Crime"})
	require.NoError(t, err)
	assert.Equal(t, 0.3, pie.Hole)
	require.Len(t, pie.Slices, 3)
	assert.Equal(t, Slice{Genre: "Drama", Count: 2, Percent: 50}, pie.Slices[0])
	assert.Equal(t, "Comedy", pie.Slices[1].Genre)
	assert.Equal(t, "Crime", pie.Slices[2].Genre)
	assert.Equal(t, 4, pie.Total)
	assert.Equal(t, "Proporción de Géneros Seleccionados para Calificaciones 7.1 - 8.0", pie.Title)
}

func TestBuildGenrePie_SelectionBounds(t *testing.T) {
	titles := sample()

	_, err := BuildGenrePie(titles, DefaultRatingRange, []string{"Drama", "Comedy"})
	assert.ErrorIs(t, err, section.ErrInvalidSelection)
	status, msg := section.Classify(err)
	assert.Equal(t, section.StatusInfo, status)
	assert.Contains(t, msg, "al menos 3")

	_, err = BuildGenrePie(titles, DefaultRatingRange, []string{"a", "b", "c", "d", "e", "f"})
	assert.ErrorIs(t, err, section.ErrInvalidSelection)

	_, err = BuildGenrePie(titles, RatingRanges[1], []string{"Drama", "Comedy"})
	assert.ErrorIs(t, err, section.ErrEmptyResult)

	_, err = BuildGenrePie(titles, DefaultRatingRange, []string{"Western", "Musical", "Sport"})
	assert.ErrorIs(t, err, section.ErrEmptyResult)
}

func TestBuildTop(t *testing.T) {
	titles := sample()

	top, err := BuildTop(titles, "Películas", 5000, 30)
	require.NoError(t, err)
	require.Len(t, top.Bars, 3)
	// Ascending for the horizontal bar chart: best title last.
	assert.Equal(t, []string{"tt1", "tt2", "tt3"}, []string{top.Bars[0].Tconst, top.Bars[1].Tconst, top.Bars[2].Tconst})
	assert.Equal(t, "Top 30 Películas Mejor Puntuadas (Mín. 5,000 votos)", top.Title)
	assert.Equal(t, "#31688B", top.Color)

	top, err = BuildTop(titles, "Películas", 5000, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"tt2", "tt3"}, []string{top.Bars[0].Tconst, top.Bars[1].Tconst})

	top, err = BuildTop(titles, dataset.TitleTypeSeries, 200, 30)
	require.NoError(t, err)
	assert.Equal(t, "Series", top.Type)
	assert.Len(t, top.Bars, 2)
}

func TestBuildTop_ThresholdAboveEveryTitle(t *testing.T) {
	_, err := BuildTop(sample(), "Películas", 250000, 30)

	require.ErrorIs(t, err, section.ErrEmptyResult)
	_, msg := section.Classify(err)
	assert.Contains(t, msg, "250,000")
	assert.Contains(t, msg, "películas")
}

func TestBuildTop_InvalidInput(t *testing.T) {
	for _, votes := range []int64{0, 50, 150, 250100} {
		_, err := BuildTop(sample(), "Películas", votes, 30)
		assert.ErrorIs(t, err, section.ErrInvalidSelection, fmt.Sprint(votes))
	}

	_, err := BuildTop(sample(), "Todos", 5000, 30)
	assert.ErrorIs(t, err, section.ErrInvalidSelection)
}

type staticTitles []dataset.Title

func (s staticTitles) Titles(context.Context) ([]dataset.Title, error) { return s, nil }

type failingTitles struct{}

func (failingTitles) Titles(context.Context) ([]dataset.Title, error) {
	return nil, fmt.Errorf("load titles: %w", dataset.ErrSourceMissing)
}

func TestService_PageDefaults(t *testing.T) {
	svc := NewService(staticTitles(sample()), Config{}, testutil.NopLogger())

	page := svc.Page(context.Background(), Query{})

	assert.Equal(t, "Todos", page.Query.Type)
	assert.Equal(t, "7.1 - 8.0", page.Query.Range)
	assert.EqualValues(t, DefaultVotes, page.Query.MinVotes)
	assert.True(t, page.Options.OK())
	assert.True(t, page.Histogram.OK())
	assert.True(t, page.GenrePie.OK())
	assert.True(t, page.Top.OK())
	assert.Equal(t, []string{"Action", "Animation", "Comedy", "Crime", "Drama"}, page.Query.Genres)
}

func TestService_PageSectionsFailIndependently(t *testing.T) {
	svc := NewService(staticTitles(sample()), Config{TopN: 30, HistogramBins: 20}, testutil.NopLogger())

	page := svc.Page(context.Background(), Query{Genres: []string{"Drama", "Comedy"}, MinVotes: 250000})

	assert.True(t, page.Histogram.OK())
	assert.Equal(t, section.StatusInfo, page.GenrePie.Status)
	assert.Equal(t, section.StatusWarning, page.Top.Status)

	failing := NewService(failingTitles{}, Config{}, testutil.NopLogger())
	page = failing.Page(context.Background(), Query{})
	assert.Equal(t, section.StatusError, page.Histogram.Status)
	assert.Equal(t, section.StatusError, page.Top.Status)
}

func TestHandlers(t *testing.T) {
	svc := NewService(staticTitles(sample()), Config{}, testutil.NopLogger())
	h := NewHandlers(svc)
	e := echo.New()

	tests := []struct {
		name    string
		target  string
		handler echo.HandlerFunc
		code    int
		status  section.Status
	}{
		{"histogram", "/api/v1/ratings/histogram?type=Series", h.GetHistogram, http.StatusOK, section.StatusOK},
		{"pie two genres", "/api/v1/ratings/genres?genre=Drama&genre=Comedy", h.GetGenrePie, http.StatusBadRequest, section.StatusInfo},
		{"pie defaults", "/api/v1/ratings/genres", h.GetGenrePie, http.StatusOK, section.StatusOK},
		{"top empty", "/api/v1/ratings/top?topType=Series&minVotes=250000", h.GetTop, http.StatusOK, section.StatusWarning},
		{"options bad range", "/api/v1/ratings/options?range=x", h.GetOptions, http.StatusBadRequest, section.StatusInfo},
		{"page", "/api/v1/ratings?genre=Drama", h.GetPage, http.StatusOK, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			rec := httptest.NewRecorder()
			require.NoError(t, tt.handler(e.NewContext(req, rec)))
			assert.Equal(t, tt.code, rec.Code)
			if tt.status != "" {
				assert.Contains(t, rec.Body.String(), fmt.Sprintf(`"status":"%s"`, tt.status))
			}
		})
	}
}

func TestHandlers_BadVotesParam(t *testing.T) {
	h := NewHandlers(NewService(staticTitles(sample()), Config{}, testutil.NopLogger()))
	e := echo.New()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/ratings/top?minVotes=lots", nil)
	rec := httptest.NewRecorder()
	err := h.GetTop(e.NewContext(req, rec))

	var he *echo.HTTPError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, http.StatusBadRequest, he.Code)
}
