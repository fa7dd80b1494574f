package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8501, cfg.Server.Port)
	assert.Equal(t, []string{"imdb_dataset.csv"}, cfg.Data.Titles)
	assert.Len(t, cfg.Data.EpisodeRatings, 5)
	assert.Len(t, cfg.Data.EpisodeLinks, 3)
	assert.Equal(t, rune(0), cfg.Data.Delimiter())
	assert.Equal(t, 30, cfg.Explorer.TopN)
	assert.Equal(t, 20, cfg.Explorer.HistogramBins)
	assert.Equal(t, "0 3 * * *", cfg.Scheduler.LedgerCleanupCron)
	assert.Equal(t, 30, cfg.Scheduler.LedgerRetentionDays)
}

func TestLoad_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte(`
server:
  port: 9000
data:
  dir: /srv/imdb
  episode_links:
    - links.tsv
explorer:
  top_n: 10
`)
	require.NoError(t, os.WriteFile(path, content, 0o600))

	t.Setenv("IMDBEXPLORER_SERVER_HOST", "127.0.0.1")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Address())
	assert.Equal(t, []string{"links.tsv"}, cfg.Data.EpisodeLinks)
	assert.Equal(t, []string{"/srv/imdb/links.tsv"}, cfg.Data.Resolve(cfg.Data.EpisodeLinks))
	assert.Equal(t, 10, cfg.Explorer.TopN)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	cfg.Data.LinksDelimiter = ",;"
	assert.Error(t, cfg.Validate())

	cfg.Data.LinksDelimiter = "\t"
	require.NoError(t, cfg.Validate())
	assert.Equal(t, '\t', cfg.Data.Delimiter())

	cfg = Default()
	cfg.Data.Titles = nil
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Scheduler.LedgerRetentionDays = -1
	assert.Error(t, cfg.Validate())
}

func TestResolve_AbsolutePathsKept(t *testing.T) {
	d := DataConfig{Dir: "data"}
	abs := filepath.Join(string(filepath.Separator), "tmp", "titles.csv")

	got := d.Resolve([]string{abs, "ep.csv"})

	assert.Equal(t, []string{abs, filepath.Join("data", "ep.csv")}, got)
}
