package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/explorador/imdbexplorer/internal/dataset"
)

type fakeReporter struct {
	statuses []dataset.SourceStatus
}

func (f *fakeReporter) Status() []dataset.SourceStatus { return f.statuses }

type fakePinger struct{ err error }

func (f *fakePinger) PingContext(context.Context) error { return f.err }

type recordingBroadcaster struct {
	mu      sync.Mutex
	changes []Item
}

func (r *recordingBroadcaster) Broadcast(msgType string, payload any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if msgType == EventHealthUpdated {
		r.changes = append(r.changes, payload.(Item))
	}
	return nil
}

func TestService_StatusTransitions(t *testing.T) {
	svc := NewService(zerolog.Nop())
	b := &recordingBroadcaster{}
	svc.SetBroadcaster(b)

	svc.Register(CategorySources, "titles", "Títulos")
	item, ok := svc.Item(CategorySources, "titles")
	require.True(t, ok)
	assert.Equal(t, StatusOK, item.Status)

	svc.Set(CategorySources, "titles", StatusError, "missing")
	svc.Set(CategorySources, "titles", StatusError, "missing")
	item, _ = svc.Item(CategorySources, "titles")
	assert.Equal(t, StatusError, item.Status)
	assert.Equal(t, "missing", item.Message)
	assert.NotNil(t, item.Since)

	// registering again keeps the current status
	svc.Register(CategorySources, "titles", "Títulos")
	item, _ = svc.Item(CategorySources, "titles")
	assert.Equal(t, StatusError, item.Status)

	svc.Set(CategorySources, "titles", StatusOK, "ignored when ok")
	item, _ = svc.Item(CategorySources, "titles")
	assert.Equal(t, StatusOK, item.Status)
	assert.Empty(t, item.Message)
	assert.Nil(t, item.Since)

	// the duplicate error is not re-broadcast
	require.Len(t, b.changes, 2)
	assert.Equal(t, StatusError, b.changes[0].Status)
	assert.Equal(t, StatusOK, b.changes[1].Status)

	svc.Set(CategorySources, "unknown", StatusWarning, "untracked")
	_, ok = svc.Item(CategorySources, "unknown")
	assert.False(t, ok)
	assert.Len(t, b.changes, 2)
}

func TestService_OKItemsOmitMessage(t *testing.T) {
	svc := NewService(zerolog.Nop())
	svc.Register(CategoryDatabase, "sqlite", "Registro de cargas")

	data, err := json.Marshal(svc.Report())
	require.NoError(t, err)
	assert.NotContains(t, string(data), "message")
	assert.NotContains(t, string(data), "since")
	assert.Contains(t, string(data), `"sources":[]`)
}

func TestChecker_Check(t *testing.T) {
	reporter := &fakeReporter{statuses: []dataset.SourceStatus{
		{Name: dataset.SourceTitles, Available: true, Loaded: true},
		{Name: dataset.SourceEpisodeLinks, Available: false, Error: "no such file"},
		{Name: dataset.SourceEpisodeRatings, Available: true, Loaded: true, Stale: true},
	}}
	pinger := &fakePinger{err: errors.New("database is locked")}
	svc := NewService(zerolog.Nop())
	checker := NewChecker(svc, reporter, pinger, zerolog.Nop())

	require.NoError(t, checker.Check(context.Background()))

	all := svc.Report()
	require.Len(t, all.Sources, 3)
	byID := map[string]Item{}
	for _, item := range all.Sources {
		byID[item.ID] = item
	}
	assert.Equal(t, StatusOK, byID[dataset.SourceTitles].Status)
	assert.Equal(t, "Títulos", byID[dataset.SourceTitles].Name)
	assert.Equal(t, StatusError, byID[dataset.SourceEpisodeLinks].Status)
	assert.Contains(t, byID[dataset.SourceEpisodeLinks].Message, "no such file")
	assert.Equal(t, StatusWarning, byID[dataset.SourceEpisodeRatings].Status)

	require.Len(t, all.Database, 1)
	assert.Equal(t, StatusError, all.Database[0].Status)

	summary := svc.Summary()
	assert.True(t, summary.HasIssues)
	assert.Equal(t, 3, summary.Categories[0].Total())

	pinger.err = nil
	require.NoError(t, checker.Check(context.Background()))
	db, ok := svc.Item(CategoryDatabase, databaseItemID)
	require.True(t, ok)
	assert.Equal(t, StatusOK, db.Status)
}

func TestHandlers(t *testing.T) {
	reporter := &fakeReporter{statuses: []dataset.SourceStatus{
		{Name: dataset.SourceTitles, Available: false, Error: "gone"},
	}}
	svc := NewService(zerolog.Nop())
	checker := NewChecker(svc, reporter, nil, zerolog.Nop())

	e := echo.New()
	NewHandlers(svc, checker).RegisterRoutes(e.Group("/api/v1/health"))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/health/check", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Sources, 1)
	assert.Equal(t, StatusError, resp.Sources[0].Status)
	assert.Empty(t, resp.Database)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/health/sources", nil)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/health/bogus", nil)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
