// Package testutil provides testing utilities for integration tests.
package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/explorador/imdbexplorer/internal/database"
	"github.com/explorador/imdbexplorer/internal/dataset"
)

// TestDB wraps a test database connection.
type TestDB struct {
	DB     *database.DB
	Path   string
	Logger zerolog.Logger
}

// NewTestDB creates a new test database in a temp directory.
// It runs migrations and returns a ready-to-use database.
// The caller should defer Close() to clean up.
func NewTestDB(t *testing.T) *TestDB {
	t.Helper()

	// Create temp directory for test database
	tmpDir, err := os.MkdirTemp("", "imdbexplorer_test")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}

	logger := NewTestLogger(t)

	db, err := database.New(filepath.Join(tmpDir, "test.db"), logger)
	if err != nil {
		os.RemoveAll(tmpDir)
		t.Fatalf("Failed to open database: %v", err)
	}

	if err := db.Migrate(); err != nil {
		db.Close()
		os.RemoveAll(tmpDir)
		t.Fatalf("Failed to run migrations: %v", err)
	}

	return &TestDB{
		DB:     db,
		Path:   tmpDir,
		Logger: logger,
	}
}

// Close closes the database and removes the temp directory.
func (tdb *TestDB) Close() {
	if tdb.DB != nil {
		tdb.DB.Close()
	}
	if tdb.Path != "" {
		os.RemoveAll(tdb.Path)
	}
}

// NewTestLogger creates a test logger that outputs to t.Log.
func NewTestLogger(t *testing.T) zerolog.Logger {
	t.Helper()
	return zerolog.New(zerolog.NewTestWriter(t)).Level(zerolog.DebugLevel)
}

// NopLogger returns a no-op logger for tests that don't need output.
func NopLogger() zerolog.Logger {
	return zerolog.Nop()
}

// Headers of the three source tables.
const (
	TitlesHeader  = "tconst,primaryTitle,titleType,startYear,runtimeMinutes,genres,averageRating,numVotes"
	LinksHeader   = "tconst\tparentTconst\tseasonNumber\tepisodeNumber"
	RatingsHeader = "series_primaryTitle,seasonNumber,episodeNumber,episode_averageRating,episode_numVotes"
)

// Fixture holds the rows of a small dataset, one line per row, without
// headers. Links rows are tab separated.
type Fixture struct {
	Titles  []string
	Links   []string
	Ratings []string
}

// DatasetDir is a temp directory holding a written fixture.
type DatasetDir struct {
	Dir     string
	Sources dataset.Sources
}

// WriteDataset writes the fixture as one titles file, a links file and a
// ratings file, and returns sources pointing at them.
func WriteDataset(t *testing.T, f Fixture) *DatasetDir {
	t.Helper()
	dir := t.TempDir()

	titles := WriteFile(t, dir, "imdb_dataset.csv", TitlesHeader, f.Titles)
	links := WriteFile(t, dir, "title_parte1.tsv", LinksHeader, f.Links)
	ratings := WriteFile(t, dir, "imdb_episodios_parte1.csv", RatingsHeader, f.Ratings)

	return &DatasetDir{
		Dir:     dir,
		Sources: dataset.SourcesFromPaths([]string{titles}, []string{links}, []string{ratings}, '\t'),
	}
}

// NewStore writes the fixture and returns a store over it.
func NewStore(t *testing.T, f Fixture) *dataset.Store {
	t.Helper()
	d := WriteDataset(t, f)
	return dataset.NewStore(d.Sources, NewTestLogger(t))
}

// WriteFile writes a header and rows to dir/name and returns the path.
func WriteFile(t *testing.T, dir, name, header string, rows []string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	content := header + "\n" + strings.Join(rows, "\n")
	if len(rows) > 0 {
		content += "\n"
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("Failed to write %s: %v", name, err)
	}
	return path
}

// StringPtr returns a pointer to a string.
func StringPtr(s string) *string {
	return &s
}

// IntPtr returns a pointer to an int.
func IntPtr(i int) *int {
	return &i
}

// Int64Ptr returns a pointer to an int64.
func Int64Ptr(i int64) *int64 {
	return &i
}

// Float64Ptr returns a pointer to a float64.
func Float64Ptr(f float64) *float64 {
	return &f
}
