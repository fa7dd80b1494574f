package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/explorador/imdbexplorer/internal/config"
	"github.com/explorador/imdbexplorer/internal/dataset"
	"github.com/explorador/imdbexplorer/internal/history"
	"github.com/explorador/imdbexplorer/internal/logger"
	"github.com/explorador/imdbexplorer/internal/section"
	"github.com/explorador/imdbexplorer/internal/testutil"
)

func testFixture() testutil.Fixture {
	return testutil.Fixture{
		Titles: []string{
			"tt1,Breaking Bad,tvSeries,2008,49,\"Crime,Drama\",9.5,2000000",
			"tt2,Heat,movie,1995,170,\"Action,Crime\",8.3,700000",
			"tt3,Alien,movie,1979,117,\"Horror,Sci-Fi\",8.5,900000",
		},
		Links: []string{
			"e1\ttt1\t1\t1",
			"e2\ttt1\t1\t2",
		},
		Ratings: []string{
			"Breaking Bad,1,1,9.0,1234",
			"Breaking Bad,1,2,5.0,1000",
		},
	}
}

type testServer struct {
	*Server
	data *testutil.DatasetDir
}

func setupTestServer(t *testing.T) *testServer {
	t.Helper()

	tdb := testutil.NewTestDB(t)
	t.Cleanup(tdb.Close)

	data := testutil.WriteDataset(t, testFixture())
	store := dataset.NewStore(data.Sources, tdb.Logger)

	server := NewServer(config.Default(), tdb.DB.Conn(), store, nil, tdb.Logger)
	return &testServer{Server: server, data: data}
}

func (ts *testServer) do(t *testing.T, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	ts.echo.ServeHTTP(rec, req)
	return rec
}

func TestHealthCheck(t *testing.T) {
	ts := setupTestServer(t)

	rec := ts.do(t, http.MethodGet, "/health")

	require.Equal(t, http.StatusOK, rec.Code)
	var response map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, "ok", response["status"])
}

func TestSecurityHeaders(t *testing.T) {
	ts := setupTestServer(t)

	rec := ts.do(t, http.MethodGet, "/api/v1/status")

	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Contains(t, rec.Header().Get("Cache-Control"), "no-store")
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
}

func TestGetStatus(t *testing.T) {
	ts := setupTestServer(t)

	rec := ts.do(t, http.MethodGet, "/api/v1/status")

	require.Equal(t, http.StatusOK, rec.Code)
	var resp StatusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, config.Version, resp.Version)
	assert.Equal(t, 3, resp.SourcesTotal)
	assert.Equal(t, 3, resp.SourcesAvailable)
	assert.Equal(t, 0, resp.SourcesLoaded)
}

func TestReloadDatasets_RecordsLoads(t *testing.T) {
	ts := setupTestServer(t)

	rec := ts.do(t, http.MethodPost, "/api/v1/datasets/reload")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp ReloadResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Results, 3)
	for _, r := range resp.Results {
		assert.True(t, r.Success, r.Source)
	}
	for _, st := range resp.Sources {
		assert.True(t, st.Loaded, st.Name)
	}

	rec = ts.do(t, http.MethodGet, "/api/v1/datasets/loads")
	require.Equal(t, http.StatusOK, rec.Code)
	var loads history.ListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &loads))
	assert.EqualValues(t, 3, loads.TotalCount)
}

func TestReloadDatasets_ReportsMissingSource(t *testing.T) {
	ts := setupTestServer(t)
	require.NoError(t, os.Remove(ts.data.Sources.EpisodeLinks.Paths[0]))

	rec := ts.do(t, http.MethodPost, "/api/v1/datasets/reload")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp ReloadResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	failed := map[string]bool{}
	for _, r := range resp.Results {
		if !r.Success {
			failed[r.Source] = true
		}
	}
	assert.Equal(t, map[string]bool{dataset.SourceEpisodeLinks: true}, failed)

	rec = ts.do(t, http.MethodGet, "/api/v1/health/sources")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"error"`)
}

func TestRefreshDatasets(t *testing.T) {
	ts := setupTestServer(t)

	rec := ts.do(t, http.MethodPost, "/api/v1/datasets/refresh")

	require.Equal(t, http.StatusOK, rec.Code)
	var resp RefreshResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Empty(t, resp.Reloaded)
	assert.Empty(t, resp.Error)
}

func TestPagesAreRouted(t *testing.T) {
	ts := setupTestServer(t)

	for _, path := range []string{
		"/api/v1/ratings",
		"/api/v1/temporal",
		"/api/v1/episodes",
		"/api/v1/datasets",
		"/api/v1/health",
	} {
		rec := ts.do(t, http.MethodGet, path)
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}

func TestSectionEndpointStatusCodes(t *testing.T) {
	ts := setupTestServer(t)

	rec := ts.do(t, http.MethodGet, "/api/v1/ratings/top?minVotes=150")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	require.NoError(t, os.Remove(ts.data.Sources.Titles.Paths[0]))
	rec = ts.do(t, http.MethodGet, "/api/v1/ratings/histogram")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestSectionEndpoints_BlankGenreIsEmptySelection(t *testing.T) {
	ts := setupTestServer(t)

	for _, path := range []string{
		"/api/v1/temporal/genres?genre=",
		"/api/v1/ratings/genres?range=8.1+-+9.0&genre=",
	} {
		rec := ts.do(t, http.MethodGet, path)
		require.Equal(t, http.StatusBadRequest, rec.Code, path)

		var env section.Envelope
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), path)
		assert.Equal(t, section.StatusInfo, env.Status, path)
	}

	// without the parameter the default genres apply
	rec := ts.do(t, http.MethodGet, "/api/v1/temporal/genres")
	assert.NotEqual(t, http.StatusBadRequest, rec.Code)
}

type staticLogs struct {
	entries []logger.LogEntry
}

func (s staticLogs) GetRecentLogs() []logger.LogEntry { return s.entries }
func (s staticLogs) GetLogFilePath() string           { return "" }

func TestLogsHandlers(t *testing.T) {
	ts := setupTestServer(t)
	ts.SetLogsProvider(staticLogs{entries: []logger.LogEntry{
		{Level: "debug", Component: "dataset", Message: "a"},
		{Level: "warn", Component: "dataset", Message: "b"},
		{Level: "error", Component: "api", Message: "c"},
	}})

	rec := ts.do(t, http.MethodGet, "/api/v1/system/logs?level=warn&component=dataset")
	require.Equal(t, http.StatusOK, rec.Code)

	var logs []logger.LogEntry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &logs))
	require.Len(t, logs, 1)
	assert.Equal(t, "b", logs[0].Message)

	rec = ts.do(t, http.MethodGet, "/api/v1/system/logs/download")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
