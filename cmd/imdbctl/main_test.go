package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/explorador/imdbexplorer/internal/section"
	"github.com/explorador/imdbexplorer/internal/testutil"
)

func writeCLIConfig(t *testing.T) string {
	t.Helper()

	data := testutil.WriteDataset(t, testutil.Fixture{
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
	})

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "data:\n" +
		"  dir: " + data.Dir + "\n" +
		"  titles: [imdb_dataset.csv]\n" +
		"  episode_links: [title_parte1.tsv]\n" +
		"  episode_ratings: [imdb_episodios_parte1.csv]\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--env-file", ""}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestHistogramJSON(t *testing.T) {
	cfg := writeCLIConfig(t)

	out, err := runCLI(t, "--config", cfg, "--json", "histogram")
	require.NoError(t, err)

	var env section.Envelope
	require.NoError(t, json.Unmarshal([]byte(out), &env))
	assert.Equal(t, section.StatusOK, env.Status)
}

func TestTopTable(t *testing.T) {
	cfg := writeCLIConfig(t)

	out, err := runCLI(t, "--config", cfg, "top", "--type", "Películas", "--min-votes", "100")
	require.NoError(t, err)

	alien := strings.Index(out, "Alien")
	heat := strings.Index(out, "Heat")
	require.GreaterOrEqual(t, alien, 0)
	require.GreaterOrEqual(t, heat, 0)
	assert.Less(t, alien, heat, "best rated first")
	assert.Contains(t, out, "900,000")
}

func TestTopInvalidVotesIsNotice(t *testing.T) {
	cfg := writeCLIConfig(t)

	out, err := runCLI(t, "--config", cfg, "top", "--min-votes", "150")

	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "[info]"), out)
}

func TestGenresTooFewIsNotice(t *testing.T) {
	cfg := writeCLIConfig(t)

	out, err := runCLI(t, "--config", cfg, "genres", "--range", "8.1 - 9.0", "--genre", "Drama,Crime")

	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "[info]"), out)
}

func TestEpisodesTrend(t *testing.T) {
	cfg := writeCLIConfig(t)

	out, err := runCLI(t, "--config", cfg, "episodes", "--series", "Breaking Bad", "--season", "1")
	require.NoError(t, err)

	assert.Contains(t, out, "Alto")
	assert.Contains(t, out, "Normal")
	assert.Contains(t, out, "1,234")
}

func TestSeriesList(t *testing.T) {
	cfg := writeCLIConfig(t)

	out, err := runCLI(t, "--config", cfg, "series")
	require.NoError(t, err)
	assert.Contains(t, out, "Breaking Bad")

	out, err = runCLI(t, "--config", cfg, "--json", "series", "--series", "Breaking Bad")
	require.NoError(t, err)
	var resp map[string]section.Envelope
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, section.StatusOK, resp["info"].Status)
	assert.Equal(t, section.StatusOK, resp["counts"].Status)
}

func TestMissingSourceFails(t *testing.T) {
	cfg := writeCLIConfig(t)
	content, err := os.ReadFile(cfg)
	require.NoError(t, err)
	broken := strings.Replace(string(content), "imdb_dataset.csv", "missing.csv", 1)
	require.NoError(t, os.WriteFile(cfg, []byte(broken), 0o600))

	_, err = runCLI(t, "--config", cfg, "histogram")
	assert.Error(t, err)

	_, err = runCLI(t, "--config", cfg, "config", "validate")
	assert.ErrorContains(t, err, "1 source(s) unavailable")
}

func TestConfigShow(t *testing.T) {
	cfg := writeCLIConfig(t)

	out, err := runCLI(t, "--config", cfg, "config", "show")

	require.NoError(t, err)
	assert.Contains(t, out, "links_delimiter:")
	assert.Contains(t, out, "top_n: 30")
}
