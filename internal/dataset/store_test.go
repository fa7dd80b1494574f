package dataset

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu      sync.Mutex
	records []LoadRecord
}

func (r *recorder) RecordLoad(_ context.Context, rec LoadRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, rec)
	return nil
}

type events struct {
	mu    sync.Mutex
	types []string
}

func (e *events) Broadcast(msgType string, _ any) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.types = append(e.types, msgType)
	return nil
}

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, dir, "titles.csv", titlesHeader+"tt1,A,movie,2001,,Drama,5,1\n")
	writeFile(t, dir, "links.tsv", "tconst\tparentTconst\tseasonNumber\tepisodeNumber\ntt10\ttt1\t1\t1\n")
	writeFile(t, dir, "ratings.csv", "series_primaryTitle,seasonNumber,episodeNumber,episode_averageRating,episode_numVotes\nA,1,1,8,10\n")

	sources := SourcesFromPaths(
		[]string{filepath.Join(dir, "titles.csv")},
		[]string{filepath.Join(dir, "links.tsv")},
		[]string{filepath.Join(dir, "ratings.csv")},
		'\t',
	)
	return NewStore(sources, zerolog.Nop()), dir
}

func TestStore_LoadsOnFirstUse(t *testing.T) {
	store, _ := newTestStore(t)
	rec := &recorder{}
	ev := &events{}
	store.SetRecorder(rec)
	store.SetBroadcaster(ev)
	ctx := context.Background()

	titles, err := store.Titles(ctx)
	require.NoError(t, err)
	assert.Len(t, titles, 1)

	_, err = store.Titles(ctx)
	require.NoError(t, err)

	links, err := store.EpisodeLinks(ctx)
	require.NoError(t, err)
	assert.Len(t, links, 1)

	ratings, err := store.EpisodeRatings(ctx)
	require.NoError(t, err)
	assert.Len(t, ratings, 1)

	require.Len(t, rec.records, 3)
	assert.Equal(t, SourceTitles, rec.records[0].Source)
	assert.NoError(t, rec.records[0].Err)
	assert.Equal(t, []string{EventLoaded, EventLoaded, EventLoaded}, ev.types)

	for _, st := range store.Status() {
		assert.True(t, st.Available, st.Name)
		assert.True(t, st.Loaded, st.Name)
		assert.False(t, st.Stale, st.Name)
		assert.NotNil(t, st.LoadedAt, st.Name)
	}
}

func TestStore_MissingSourceReported(t *testing.T) {
	store, dir := newTestStore(t)
	rec := &recorder{}
	ev := &events{}
	store.SetRecorder(rec)
	store.SetBroadcaster(ev)
	require.NoError(t, os.Remove(filepath.Join(dir, "titles.csv")))

	_, err := store.Titles(context.Background())

	assert.ErrorIs(t, err, ErrSourceMissing)
	require.Len(t, rec.records, 1)
	assert.Error(t, rec.records[0].Err)
	assert.Equal(t, []string{EventError}, ev.types)

	status := store.Status()
	assert.False(t, status[0].Available)
	assert.NotEmpty(t, status[0].Error)
}

func TestStore_RepeatedFailureReportedOnce(t *testing.T) {
	store, dir := newTestStore(t)
	rec := &recorder{}
	ev := &events{}
	store.SetRecorder(rec)
	store.SetBroadcaster(ev)
	ctx := context.Background()
	titlesPath := filepath.Join(dir, "titles.csv")
	require.NoError(t, os.Remove(titlesPath))

	_, err := store.Titles(ctx)
	assert.ErrorIs(t, err, ErrSourceMissing)
	_, err = store.Titles(ctx)
	assert.ErrorIs(t, err, ErrSourceMissing)

	require.Len(t, rec.records, 1)
	assert.Equal(t, []string{EventError}, ev.types)

	// a successful load resets the failure, so the next one is reported again
	writeFile(t, dir, "titles.csv", titlesHeader+"tt1,A,movie,2001,,Drama,5,1\n")
	_, err = store.Titles(ctx)
	require.NoError(t, err)
	require.NoError(t, os.Remove(titlesPath))
	_, err = store.Titles(ctx)
	assert.ErrorIs(t, err, ErrSourceMissing)

	require.Len(t, rec.records, 3)
	assert.Equal(t, []string{EventError, EventLoaded, EventError}, ev.types)

	// a manual reload forgets remembered failures
	store.Invalidate()
	_, err = store.Titles(ctx)
	assert.ErrorIs(t, err, ErrSourceMissing)
	assert.Len(t, rec.records, 4)
}

func TestStore_RefreshReloadsChangedSources(t *testing.T) {
	store, dir := newTestStore(t)
	ev := &events{}
	store.SetBroadcaster(ev)
	ctx := context.Background()

	_, err := store.Titles(ctx)
	require.NoError(t, err)
	_, err = store.EpisodeRatings(ctx)
	require.NoError(t, err)

	builds := 0
	build := func(context.Context) (any, error) {
		builds++
		return builds, nil
	}
	deps := []Source{store.Sources().Titles}
	_, err = store.Derived(ctx, "derived", deps, build)
	require.NoError(t, err)

	writeFile(t, dir, "titles.csv", titlesHeader+
		"tt1,A,movie,2001,,Drama,5,1\n"+
		"tt2,B,movie,2002,,Comedy,6,2\n")

	result, err := store.Refresh(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{SourceTitles}, result.Reloaded)
	assert.Equal(t, []string{"derived"}, result.Pruned)
	assert.Empty(t, result.Failed)

	titles, err := store.Titles(ctx)
	require.NoError(t, err)
	assert.Len(t, titles, 2)

	v, err := store.Derived(ctx, "derived", deps, build)
	require.NoError(t, err)
	assert.Equal(t, 2, v)
	assert.Contains(t, ev.types, EventReloaded)
}

func TestStore_RefreshSkipsUnloaded(t *testing.T) {
	store, _ := newTestStore(t)

	result, err := store.Refresh(context.Background())

	require.NoError(t, err)
	assert.Empty(t, result.Reloaded)
	assert.Empty(t, result.Failed)
}

func TestStore_RefreshFailureDropsEntry(t *testing.T) {
	store, dir := newTestStore(t)
	ctx := context.Background()
	_, err := store.EpisodeLinks(ctx)
	require.NoError(t, err)

	require.NoError(t, os.Remove(filepath.Join(dir, "links.tsv")))

	result, err := store.Refresh(ctx)
	assert.ErrorIs(t, err, ErrSourceMissing)
	assert.Equal(t, []string{SourceEpisodeLinks}, result.Failed)
	_, ok := store.cache.Fingerprint(SourceEpisodeLinks)
	assert.False(t, ok)
}

func TestStore_Invalidate(t *testing.T) {
	store, _ := newTestStore(t)
	_, err := store.Titles(context.Background())
	require.NoError(t, err)
	require.Len(t, store.CacheEntries(), 1)

	store.Invalidate()

	assert.Empty(t, store.CacheEntries())
}
