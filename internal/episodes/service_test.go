package episodes

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/explorador/imdbexplorer/internal/dataset"
	"github.com/explorador/imdbexplorer/internal/section"
	"github.com/explorador/imdbexplorer/internal/testutil"
)

func fixture() testutil.Fixture {
	return testutil.Fixture{
		Titles: []string{
			"tt1,Breaking Bad,tvSeries,2008,49,\"Crime,Drama\",9.5,2000000",
			"tt2,Game of Thrones,tvSeries,2011,57,\"Action,Drama\",9.2,2300000",
			"tt3,Heat,movie,1995,170,\"Action,Crime\",8.3,700000",
			"tt4,The Office,tvSeries,2005,22,Comedy,9.0,700000",
			"tt5,The Office,tvSeries,2001,\\N,Comedy,8.5,150000",
		},
		Links: []string{
			"e1\ttt1\t1\t1",
			"e2\ttt1\t1\t2",
			"e3\ttt1\t2\t1",
			"e4\ttt2\t1\t1",
			"e5\ttt4\t1\t1",
			"e6\ttt5\t1\t1",
		},
		Ratings: []string{
			"Breaking Bad,1,1,9.0,1234",
			"Breaking Bad,1,2,5.0,1000",
			"Breaking Bad,1,3,2.0,900",
			"Breaking Bad,2,1,8.0,800",
			"The Office,1,1,8.0,500",
		},
	}
}

func newService(t *testing.T) *Service {
	t.Helper()
	store := testutil.NewStore(t, fixture())
	return NewService(store, testutil.NewTestLogger(t))
}

func TestService_SeriesList(t *testing.T) {
	svc := newService(t)

	list, err := svc.SeriesList(context.Background())
	require.NoError(t, err)

	require.Len(t, list.Series, 2)
	assert.Equal(t, "Breaking Bad", list.Series[0].Name)
	assert.Equal(t, "The Office", list.Series[1].Name)
	assert.True(t, list.Series[1].Ambiguous)
	assert.Equal(t, "Breaking Bad", list.Default)
}

func TestService_ResolveSelection(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	c, tconst, err := svc.Resolve(ctx, Selection{})
	require.NoError(t, err)
	assert.Equal(t, "Breaking Bad", c.Name)
	assert.Equal(t, "tt1", tconst)

	_, tconst, err = svc.Resolve(ctx, Selection{Series: "The Office", Tconst: "tt5"})
	require.NoError(t, err)
	assert.Equal(t, "tt5", tconst)

	_, _, err = svc.Resolve(ctx, Selection{Series: "The Office", Tconst: "tt1"})
	assert.ErrorIs(t, err, section.ErrInvalidSelection)

	_, _, err = svc.Resolve(ctx, Selection{Series: "Heat"})
	assert.ErrorIs(t, err, section.ErrInvalidSelection)
}

func TestService_CountsAndTrend(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	sel := Selection{Series: "Breaking Bad"}

	counts, err := svc.Counts(ctx, sel)
	require.NoError(t, err)
	assert.Equal(t, []SeasonCount{{Season: "1", Count: 2}, {Season: "2", Count: 1}}, counts.Seasons)

	seasons, err := svc.Seasons(ctx, sel)
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2"}, seasons)

	trend, err := svc.Trend(ctx, sel)
	require.NoError(t, err)
	assert.Equal(t, "1", trend.Season)
	require.Len(t, trend.Segments, 2)
	assert.Equal(t, BandNormal, trend.Segments[0].Band)
	assert.Equal(t, BandBajo, trend.Segments[1].Band)

	sel.Season = "2"
	trend, err = svc.Trend(ctx, sel)
	require.NoError(t, err)
	assert.Len(t, trend.Points, 1)
	assert.Empty(t, trend.Segments)

	// The Office tt5 has no runtime, so its count chart is empty.
	_, err = svc.Counts(ctx, Selection{Series: "The Office", Tconst: "tt5"})
	assert.ErrorIs(t, err, section.ErrEmptyResult)
}

func TestService_PageKeepsSectionsIndependent(t *testing.T) {
	d := testutil.WriteDataset(t, fixture())
	store := dataset.NewStore(d.Sources, testutil.NopLogger())
	svc := NewService(store, testutil.NopLogger())
	ctx := context.Background()

	page := svc.Page(ctx, Selection{Series: "Breaking Bad", Season: "9"})
	assert.True(t, page.Series.OK())
	assert.True(t, page.Info.OK())
	assert.True(t, page.Counts.OK())
	assert.True(t, page.Seasons.OK())
	assert.Equal(t, section.StatusWarning, page.Trend.Status)

	// Without the ratings source every section reports the load error.
	require.NoError(t, os.Remove(filepath.Join(d.Dir, "imdb_episodios_parte1.csv")))
	page = svc.Page(ctx, Selection{})
	assert.Equal(t, section.StatusError, page.Series.Status)
	assert.Equal(t, section.StatusError, page.Trend.Status)
}

func TestHandlers_Trend(t *testing.T) {
	svc := newService(t)
	h := NewHandlers(svc)
	e := echo.New()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/episodes/trend?series=Breaking+Bad&season=1", nil)
	rec := httptest.NewRecorder()
	require.NoError(t, h.GetTrend(e.NewContext(req, rec)))

	assert.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Status section.Status `json:"status"`
		Data   Trend          `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, section.StatusOK, body.Status)
	assert.Len(t, body.Data.Points, 3)
}

func TestHandlers_InvalidSeries(t *testing.T) {
	svc := newService(t)
	h := NewHandlers(svc)
	e := echo.New()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/episodes/counts?series=Nope", nil)
	rec := httptest.NewRecorder()
	require.NoError(t, h.GetCounts(e.NewContext(req, rec)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"info"`)
}

func TestHandlers_Page(t *testing.T) {
	svc := newService(t)
	h := NewHandlers(svc)
	e := echo.New()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/episodes", nil)
	rec := httptest.NewRecorder()
	require.NoError(t, h.GetPage(e.NewContext(req, rec)))

	assert.Equal(t, http.StatusOK, rec.Code)
	var page struct {
		Selection Selection `json:"selection"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Equal(t, "Breaking Bad", page.Selection.Series)
	assert.Equal(t, "1", page.Selection.Season)
}
