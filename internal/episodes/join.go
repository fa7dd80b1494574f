// Package episodes joins series titles with their episode structure and
// ratings and builds the per-season charts of the episodes page.
package episodes

import (
	"sort"

	"github.com/explorador/imdbexplorer/internal/dataset"
)

// JoinedEpisode is a title extended with the fields of one matching episode
// link. Titles without episodes appear once with nil episode fields.
type JoinedEpisode struct {
	dataset.Title
	EpisodeTconst *string `json:"episodeTconst,omitempty"`
	SeasonNumber  *int    `json:"seasonNumber,omitempty"`
	EpisodeNumber *int    `json:"episodeNumber,omitempty"`
}

// HasEpisode reports whether the row carries an episode link.
func (j JoinedEpisode) HasEpisode() bool {
	return j.EpisodeTconst != nil
}

// LeftJoin keeps every title in order and emits one row per matching link,
// in link order, or a single row with nil episode fields.
func LeftJoin(titles []dataset.Title, links []dataset.EpisodeLink) []JoinedEpisode {
	byParent := make(map[string][]int, len(links)/8)
	for i, link := range links {
		byParent[link.ParentTconst] = append(byParent[link.ParentTconst], i)
	}

	joined := make([]JoinedEpisode, 0, len(titles)+len(links))
	for _, title := range titles {
		matches := byParent[title.Tconst]
		if len(matches) == 0 {
			joined = append(joined, JoinedEpisode{Title: title})
			continue
		}
		for _, idx := range matches {
			link := links[idx]
			row := JoinedEpisode{
				Title:         title,
				SeasonNumber:  intPtr(link.SeasonNumber),
				EpisodeNumber: intPtr(link.EpisodeNumber),
			}
			if link.EpisodeTconst != "" {
				id := link.EpisodeTconst
				row.EpisodeTconst = &id
			}
			joined = append(joined, row)
		}
	}
	return joined
}

func intPtr(v int) *int {
	return &v
}

// SeriesCandidate is a series selectable on the episodes page. Several
// series may share a display name; all their ids are listed and the
// candidate is flagged ambiguous.
type SeriesCandidate struct {
	Name      string   `json:"name"`
	Tconsts   []string `json:"tconsts"`
	Ambiguous bool     `json:"ambiguous"`
}

// Tconst returns the id used when the caller does not pick one.
func (c SeriesCandidate) Tconst() string {
	if len(c.Tconsts) == 0 {
		return ""
	}
	return c.Tconsts[0]
}

// Has reports whether tconst is one of the candidate's series.
func (c SeriesCandidate) Has(tconst string) bool {
	for _, id := range c.Tconsts {
		if id == tconst {
			return true
		}
	}
	return false
}

// SeriesTitles returns the distinct series titles having at least one
// episode link, in first-appearance order.
func SeriesTitles(joined []JoinedEpisode) []dataset.Title {
	seen := make(map[string]bool)
	var series []dataset.Title
	for _, row := range joined {
		if row.TitleType != dataset.TitleTypeSeries || !row.HasEpisode() || seen[row.Tconst] {
			continue
		}
		seen[row.Tconst] = true
		series = append(series, row.Title)
	}
	return series
}

// CommonSeries intersects the series having episode links with the series
// named in the rating table, matching on display name. The result is
// sorted by name.
func CommonSeries(joined []JoinedEpisode, ratings []dataset.EpisodeRating) []SeriesCandidate {
	rated := make(map[string]bool)
	for _, r := range ratings {
		rated[r.SeriesTitle] = true
	}

	index := make(map[string]int)
	var candidates []SeriesCandidate
	for _, title := range SeriesTitles(joined) {
		if !rated[title.PrimaryTitle] {
			continue
		}
		if i, ok := index[title.PrimaryTitle]; ok {
			candidates[i].Tconsts = append(candidates[i].Tconsts, title.Tconst)
			candidates[i].Ambiguous = true
			continue
		}
		index[title.PrimaryTitle] = len(candidates)
		candidates = append(candidates, SeriesCandidate{
			Name:    title.PrimaryTitle,
			Tconsts: []string{title.Tconst},
		})
	}

	sort.Slice(candidates, func(i, j int) bool { return candidates[i].Name < candidates[j].Name })
	return candidates
}

// Preferred series shown first when present, in order.
var preferredSeries = []string{"Game of Thrones", "Breaking Bad"}

// DefaultSeries picks the initial selection of the series dropdown.
func DefaultSeries(candidates []SeriesCandidate) (SeriesCandidate, bool) {
	if len(candidates) == 0 {
		return SeriesCandidate{}, false
	}
	for _, name := range preferredSeries {
		for _, c := range candidates {
			if c.Name == name {
				return c, true
			}
		}
	}
	return candidates[0], true
}
