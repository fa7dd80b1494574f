package dataset

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Source names used as cache keys and in the load ledger.
const (
	SourceTitles         = "titles"
	SourceEpisodeLinks   = "episode_links"
	SourceEpisodeRatings = "episode_ratings"
)

// Websocket event types emitted by the store.
const (
	EventLoaded   = "dataset:loaded"
	EventReloaded = "dataset:reloaded"
	EventError    = "dataset:error"
)

// Broadcaster defines the interface for sending WebSocket messages.
type Broadcaster interface {
	Broadcast(msgType string, payload any) error
}

// LoadRecord is handed to the LoadRecorder after every load attempt.
type LoadRecord struct {
	Source      string
	Fingerprint Fingerprint
	Stats       LoadStats
	Err         error
}

// LoadRecorder persists load attempts.
type LoadRecorder interface {
	RecordLoad(ctx context.Context, rec LoadRecord) error
}

// Sources groups the three logical input tables.
type Sources struct {
	Titles         Source
	EpisodeLinks   Source
	EpisodeRatings Source
}

// All returns the sources in a stable order.
func (s Sources) All() []Source {
	return []Source{s.Titles, s.EpisodeLinks, s.EpisodeRatings}
}

// SourceStatus reports the state of one source.
type SourceStatus struct {
	Name        string     `json:"name"`
	Paths       []string   `json:"paths"`
	Available   bool       `json:"available"`
	Error       string     `json:"error,omitempty"`
	Loaded      bool       `json:"loaded"`
	Stale       bool       `json:"stale"`
	LoadedAt    *time.Time `json:"loadedAt,omitempty"`
	RowsRead    int        `json:"rowsRead"`
	RowsKept    int        `json:"rowsKept"`
	Fingerprint string     `json:"fingerprint,omitempty"`
}

// RefreshResult lists what a Refresh call reloaded.
type RefreshResult struct {
	Reloaded []string `json:"reloaded"`
	Failed   []string `json:"failed"`
	Pruned   []string `json:"pruned"`
}

// Store serves the loaded tables to the page services. Tables are loaded on
// first use and reloaded when a source fingerprint changes.
type Store struct {
	sources     Sources
	cache       *Cache
	logger      zerolog.Logger
	recorder    LoadRecorder
	broadcaster Broadcaster

	mu       sync.RWMutex
	stats    map[string]LoadStats
	derived  map[string][]Source
	failures map[string]string // last load error per source
}

// NewStore creates a store over the given sources.
func NewStore(sources Sources, logger zerolog.Logger) *Store {
	if sources.Titles.Name == "" {
		sources.Titles.Name = SourceTitles
	}
	if sources.EpisodeLinks.Name == "" {
		sources.EpisodeLinks.Name = SourceEpisodeLinks
	}
	if sources.EpisodeRatings.Name == "" {
		sources.EpisodeRatings.Name = SourceEpisodeRatings
	}
	return &Store{
		sources: sources,
		cache:   NewCache(),
		logger:  logger.With().Str("component", "dataset").Logger(),
		stats:    make(map[string]LoadStats),
		derived:  make(map[string][]Source),
		failures: make(map[string]string),
	}
}

// SetRecorder sets the load ledger.
func (s *Store) SetRecorder(r LoadRecorder) {
	s.recorder = r
}

// SetBroadcaster sets the WebSocket broadcaster for load events.
func (s *Store) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// Sources returns the configured sources.
func (s *Store) Sources() Sources {
	return s.sources
}

// Titles returns the cleaned title table.
func (s *Store) Titles(ctx context.Context) ([]Title, error) {
	return loadSource(ctx, s, s.sources.Titles, LoadTitles)
}

// EpisodeLinks returns the cleaned episode structure table.
func (s *Store) EpisodeLinks(ctx context.Context) ([]EpisodeLink, error) {
	return loadSource(ctx, s, s.sources.EpisodeLinks, LoadEpisodeLinks)
}

// EpisodeRatings returns the raw episode rating table.
func (s *Store) EpisodeRatings(ctx context.Context) ([]EpisodeRating, error) {
	return loadSource(ctx, s, s.sources.EpisodeRatings, LoadEpisodeRatings)
}

func loadSource[T any](ctx context.Context, s *Store, src Source, load func(context.Context, Source) ([]T, LoadStats, error)) ([]T, error) {
	fp, err := src.Fingerprint()
	if err != nil {
		s.reportFailure(ctx, src.Name, "", LoadStats{Source: src.Name, Files: len(src.Paths)}, err)
		return nil, err
	}

	previous, hadPrevious := s.cache.Fingerprint(src.Name)

	v, err := s.cache.GetOrLoad(ctx, src.Name, fp, func(ctx context.Context) (any, error) {
		rows, stats, err := load(ctx, src)
		if err != nil {
			s.reportFailure(ctx, src.Name, fp, stats, err)
			return nil, err
		}
		s.reportSuccess(ctx, src.Name, fp, stats, hadPrevious && previous != fp)
		return rows, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]T), nil
}

// Derived caches a value computed from other sources. It is rebuilt when
// any dependency's fingerprint changes.
func (s *Store) Derived(ctx context.Context, key string, deps []Source, build func(context.Context) (any, error)) (any, error) {
	fp, err := combinedFingerprint(deps)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.derived[key] = deps
	s.mu.Unlock()

	return s.cache.GetOrLoad(ctx, key, fp, func(ctx context.Context) (any, error) {
		start := time.Now()
		v, err := build(ctx)
		if err != nil {
			return nil, err
		}
		s.logger.Debug().Str("key", key).Dur("duration", time.Since(start)).Msg("derived table built")
		return v, nil
	})
}

func combinedFingerprint(deps []Source) (Fingerprint, error) {
	parts := make([]string, 0, len(deps))
	for _, src := range deps {
		fp, err := src.Fingerprint()
		if err != nil {
			return "", err
		}
		parts = append(parts, string(fp))
	}
	return Fingerprint(strings.Join(parts, "|")), nil
}

// Refresh re-fingerprints every loaded source and reloads the ones that
// changed on disk. Derived entries whose inputs changed are dropped and
// rebuilt on next use.
func (s *Store) Refresh(ctx context.Context) (RefreshResult, error) {
	result := RefreshResult{Reloaded: []string{}, Failed: []string{}, Pruned: []string{}}
	var errs []error

	loaders := map[string]func(context.Context) error{
		s.sources.Titles.Name: func(ctx context.Context) error {
			_, err := s.Titles(ctx)
			return err
		},
		s.sources.EpisodeLinks.Name: func(ctx context.Context) error {
			_, err := s.EpisodeLinks(ctx)
			return err
		},
		s.sources.EpisodeRatings.Name: func(ctx context.Context) error {
			_, err := s.EpisodeRatings(ctx)
			return err
		},
	}

	for _, src := range s.sources.All() {
		cached, ok := s.cache.Fingerprint(src.Name)
		if !ok {
			continue
		}
		current, err := src.Fingerprint()
		if err == nil && current == cached {
			continue
		}
		if err == nil {
			err = loaders[src.Name](ctx)
		}
		if err != nil {
			s.cache.Delete(src.Name)
			result.Failed = append(result.Failed, src.Name)
			errs = append(errs, err)
			continue
		}
		result.Reloaded = append(result.Reloaded, src.Name)
	}

	s.mu.RLock()
	derived := make(map[string][]Source, len(s.derived))
	for k, v := range s.derived {
		derived[k] = v
	}
	s.mu.RUnlock()

	for key, deps := range derived {
		cached, ok := s.cache.Fingerprint(key)
		if !ok {
			continue
		}
		current, err := combinedFingerprint(deps)
		if err != nil || current != cached {
			s.cache.Delete(key)
			result.Pruned = append(result.Pruned, key)
		}
	}

	if len(result.Reloaded) > 0 || len(result.Failed) > 0 {
		s.logger.Info().
			Strs("reloaded", result.Reloaded).
			Strs("failed", result.Failed).
			Strs("pruned", result.Pruned).
			Msg("sources refreshed")
	}

	return result, errors.Join(errs...)
}

// Invalidate drops every cached table so the next request reloads from disk.
// Remembered failures are forgotten too, so the next attempt is recorded.
func (s *Store) Invalidate() {
	s.cache.Clear()
	s.mu.Lock()
	s.failures = make(map[string]string)
	s.mu.Unlock()
	s.logger.Info().Msg("dataset cache cleared")
}

// Status reports availability and load state of every source.
func (s *Store) Status() []SourceStatus {
	statuses := make([]SourceStatus, 0, 3)
	for _, src := range s.sources.All() {
		st := SourceStatus{Name: src.Name, Paths: src.Paths}

		current, err := src.Fingerprint()
		if err != nil {
			st.Error = err.Error()
		} else {
			st.Available = true
		}

		if cached, ok := s.cache.Fingerprint(src.Name); ok {
			st.Loaded = true
			st.Fingerprint = string(cached)
			st.Stale = err != nil || cached != current
		}

		s.mu.RLock()
		stats, ok := s.stats[src.Name]
		s.mu.RUnlock()
		if ok {
			st.RowsRead = stats.RowsRead
			st.RowsKept = stats.RowsKept
		}

		for _, e := range s.cache.Entries() {
			if e.Key == src.Name {
				loadedAt := e.LoadedAt
				st.LoadedAt = &loadedAt
			}
		}

		statuses = append(statuses, st)
	}
	return statuses
}

// CacheEntries lists every cached table, including derived ones.
func (s *Store) CacheEntries() []CacheEntryInfo {
	return s.cache.Entries()
}

func (s *Store) reportSuccess(ctx context.Context, name string, fp Fingerprint, stats LoadStats, reload bool) {
	s.mu.Lock()
	s.stats[name] = stats
	delete(s.failures, name)
	s.mu.Unlock()

	s.logger.Info().
		Str("source", name).
		Int("files", stats.Files).
		Int("rowsRead", stats.RowsRead).
		Int("rowsKept", stats.RowsKept).
		Dur("duration", stats.Duration).
		Bool("reload", reload).
		Msg("source loaded")

	s.record(ctx, LoadRecord{Source: name, Fingerprint: fp, Stats: stats})

	event := EventLoaded
	if reload {
		event = EventReloaded
	}
	s.broadcast(event, map[string]any{
		"source":   name,
		"rowsRead": stats.RowsRead,
		"rowsKept": stats.RowsKept,
	})
}

// reportFailure records, logs and broadcasts a failed load. A source that
// keeps failing with the same error is reported once until it loads again.
func (s *Store) reportFailure(ctx context.Context, name string, fp Fingerprint, stats LoadStats, err error) {
	msg := err.Error()
	s.mu.Lock()
	repeated := s.failures[name] == msg
	s.failures[name] = msg
	s.mu.Unlock()
	if repeated {
		s.logger.Debug().Err(err).Str("source", name).Msg("source still failing")
		return
	}

	s.logger.Error().Err(err).Str("source", name).Msg("source load failed")
	s.record(ctx, LoadRecord{Source: name, Fingerprint: fp, Stats: stats, Err: err})
	s.broadcast(EventError, map[string]any{
		"source": name,
		"error":  err.Error(),
	})
}

func (s *Store) record(ctx context.Context, rec LoadRecord) {
	if s.recorder == nil {
		return
	}
	if err := s.recorder.RecordLoad(ctx, rec); err != nil {
		s.logger.Warn().Err(err).Str("source", rec.Source).Msg("failed to record load")
	}
}

func (s *Store) broadcast(event string, payload any) {
	if s.broadcaster == nil {
		return
	}
	if err := s.broadcaster.Broadcast(event, payload); err != nil {
		s.logger.Warn().Err(err).Str("event", event).Msg("failed to broadcast")
	}
}

// SourcesFromPaths is a convenience for callers that build sources without
// the config package.
func SourcesFromPaths(titles, links, ratings []string, linkDelimiter rune) Sources {
	return Sources{
		Titles:         Source{Name: SourceTitles, Paths: titles},
		EpisodeLinks:   Source{Name: SourceEpisodeLinks, Paths: links, Delimiter: linkDelimiter},
		EpisodeRatings: Source{Name: SourceEpisodeRatings, Paths: ratings},
	}
}

// String implements fmt.Stringer for log output.
func (s Source) String() string {
	return fmt.Sprintf("%s(%d files)", s.Name, len(s.Paths))
}
