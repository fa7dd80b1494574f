package dataset

import "strings"

// Title types present in the primary dataset.
const (
	TitleTypeMovie  = "movie"
	TitleTypeSeries = "tvSeries"
)

// AllTypes is the display label selecting every title type.
const AllTypes = "Todos"

var displayNames = map[string]string{
	TitleTypeMovie:  "Películas",
	TitleTypeSeries: "Series",
}

// DisplayName returns the label shown for a title type. Unknown types are
// shown as-is.
func DisplayName(titleType string) string {
	if name, ok := displayNames[titleType]; ok {
		return name
	}
	return titleType
}

// KnownDisplayName reports whether the title type has a mapped label.
func KnownDisplayName(titleType string) bool {
	_, ok := displayNames[titleType]
	return ok
}

// InternalType maps a display label back to its title type. Raw title
// types and unknown labels are returned unchanged.
func InternalType(label string) string {
	for titleType, name := range displayNames {
		if name == label {
			return titleType
		}
	}
	return label
}

// Title is one cleaned row of the primary title table.
type Title struct {
	Tconst         string   `json:"tconst"`
	PrimaryTitle   string   `json:"primaryTitle"`
	TitleType      string   `json:"titleType"`
	StartYear      int      `json:"startYear"`
	RuntimeMinutes *float64 `json:"runtimeMinutes,omitempty"`
	AverageRating  float64  `json:"averageRating"`
	NumVotes       *int64   `json:"numVotes,omitempty"`
	Genres         string   `json:"genres"`
}

// GenreList splits the comma-delimited genre field.
func (t Title) GenreList() []string {
	return strings.Split(t.Genres, ",")
}

// HasGenre reports whether any of the title's genres is in the set.
func (t Title) HasGenre(set map[string]bool) bool {
	for _, g := range t.GenreList() {
		if set[g] {
			return true
		}
	}
	return false
}

// Votes returns the vote count, or 0 when unknown.
func (t Title) Votes() int64 {
	if t.NumVotes == nil {
		return 0
	}
	return *t.NumVotes
}

// EpisodeLink ties an episode to its parent series, season and number.
type EpisodeLink struct {
	EpisodeTconst string `json:"episodeTconst"`
	ParentTconst  string `json:"parentTconst"`
	SeasonNumber  int    `json:"seasonNumber"`
	EpisodeNumber int    `json:"episodeNumber"`
}

// EpisodeRating is one row of the episode rating table. Fields hold the raw
// cell text; coercion happens per selection through the accessor methods.
type EpisodeRating struct {
	SeriesTitle   string `csv:"series_primaryTitle" json:"seriesTitle"`
	SeasonNumber  string `csv:"seasonNumber" json:"seasonNumber"`
	EpisodeNumber string `csv:"episodeNumber" json:"episodeNumber"`
	AverageRating string `csv:"episode_averageRating" json:"averageRating"`
	NumVotes      string `csv:"episode_numVotes" json:"numVotes"`
}

// Season returns the normalized season key used for selection and grouping.
func (r EpisodeRating) Season() string {
	return SeasonKey(r.SeasonNumber)
}

// Episode returns the episode number when it is numeric.
func (r EpisodeRating) Episode() (float64, bool) {
	return ParseNumber(r.EpisodeNumber)
}

// Rating returns the episode rating when it is numeric.
func (r EpisodeRating) Rating() (float64, bool) {
	return ParseNumber(r.AverageRating)
}

// Votes returns the episode vote count when it is numeric.
func (r EpisodeRating) Votes() (int64, bool) {
	v, ok := ParseNumber(r.NumVotes)
	if !ok {
		return 0, false
	}
	return int64(v), true
}
