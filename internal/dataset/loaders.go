package dataset

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// LoadStats describes one load of a source.
type LoadStats struct {
	Source   string        `json:"source"`
	Files    int           `json:"files"`
	RowsRead int           `json:"rowsRead"`
	RowsKept int           `json:"rowsKept"`
	Duration time.Duration `json:"duration"`
}

var (
	titleColumns = []string{
		"tconst", "primaryTitle", "titleType", "startYear",
		"runtimeMinutes", "genres", "averageRating", "numVotes",
	}
	linkColumns   = []string{"tconst", "parentTconst", "seasonNumber", "episodeNumber"}
	ratingColumns = []string{
		"series_primaryTitle", "seasonNumber", "episodeNumber",
		"episode_averageRating", "episode_numVotes",
	}
)

type titleRecord struct {
	Tconst         string `csv:"tconst"`
	PrimaryTitle   string `csv:"primaryTitle"`
	TitleType      string `csv:"titleType"`
	StartYear      string `csv:"startYear"`
	RuntimeMinutes string `csv:"runtimeMinutes"`
	Genres         string `csv:"genres"`
	AverageRating  string `csv:"averageRating"`
	NumVotes       string `csv:"numVotes"`
}

type linkRecord struct {
	Tconst        string `csv:"tconst"`
	ParentTconst  string `csv:"parentTconst"`
	SeasonNumber  string `csv:"seasonNumber"`
	EpisodeNumber string `csv:"episodeNumber"`
}

// LoadTitles reads the primary title table. Numeric columns are coerced
// with invalid values treated as missing, and rows missing a start year,
// a rating in [0,10] or genres are dropped.
func LoadTitles(ctx context.Context, src Source) ([]Title, LoadStats, error) {
	start := time.Now()
	stats := LoadStats{Source: src.Name, Files: len(src.Paths)}

	records, err := decodeFragments[titleRecord](ctx, src, titleColumns)
	if err != nil {
		return nil, stats, fmt.Errorf("load titles: %w", err)
	}
	stats.RowsRead = len(records)

	titles := make([]Title, 0, len(records))
	for _, rec := range records {
		title, ok := rec.clean()
		if !ok {
			continue
		}
		titles = append(titles, title)
	}

	stats.RowsKept = len(titles)
	stats.Duration = time.Since(start)
	return titles, stats, nil
}

func (rec titleRecord) clean() (Title, bool) {
	year, ok := parseInt(rec.StartYear)
	if !ok {
		return Title{}, false
	}
	rating, ok := ParseNumber(rec.AverageRating)
	if !ok || rating < 0 || rating > 10 {
		return Title{}, false
	}
	if IsNull(rec.Genres) {
		return Title{}, false
	}

	return Title{
		Tconst:         strings.TrimSpace(rec.Tconst),
		PrimaryTitle:   rec.PrimaryTitle,
		TitleType:      strings.TrimSpace(rec.TitleType),
		StartYear:      year,
		RuntimeMinutes: optionalFloat(rec.RuntimeMinutes),
		AverageRating:  rating,
		NumVotes:       optionalInt64(rec.NumVotes),
		Genres:         strings.TrimSpace(rec.Genres),
	}, true
}

// LoadEpisodeLinks reads and concatenates the episode structure fragments,
// dropping rows without a parent series, season or episode number.
func LoadEpisodeLinks(ctx context.Context, src Source) ([]EpisodeLink, LoadStats, error) {
	start := time.Now()
	stats := LoadStats{Source: src.Name, Files: len(src.Paths)}

	records, err := decodeFragments[linkRecord](ctx, src, linkColumns)
	if err != nil {
		return nil, stats, fmt.Errorf("load episode links: %w", err)
	}
	stats.RowsRead = len(records)

	links := make([]EpisodeLink, 0, len(records))
	for _, rec := range records {
		if IsNull(rec.ParentTconst) {
			continue
		}
		season, ok := parseInt(rec.SeasonNumber)
		if !ok {
			continue
		}
		episode, ok := parseInt(rec.EpisodeNumber)
		if !ok {
			continue
		}
		episodeTconst := strings.TrimSpace(rec.Tconst)
		if IsNull(episodeTconst) {
			episodeTconst = ""
		}
		links = append(links, EpisodeLink{
			EpisodeTconst: episodeTconst,
			ParentTconst:  strings.TrimSpace(rec.ParentTconst),
			SeasonNumber:  season,
			EpisodeNumber: episode,
		})
	}

	stats.RowsKept = len(links)
	stats.Duration = time.Since(start)
	return links, stats, nil
}

// LoadEpisodeRatings reads and concatenates the episode rating fragments
// without any cleaning.
func LoadEpisodeRatings(ctx context.Context, src Source) ([]EpisodeRating, LoadStats, error) {
	start := time.Now()
	stats := LoadStats{Source: src.Name, Files: len(src.Paths)}

	ratings, err := decodeFragments[EpisodeRating](ctx, src, ratingColumns)
	if err != nil {
		return nil, stats, fmt.Errorf("load episode ratings: %w", err)
	}

	stats.RowsRead = len(ratings)
	stats.RowsKept = len(ratings)
	stats.Duration = time.Since(start)
	return ratings, stats, nil
}
