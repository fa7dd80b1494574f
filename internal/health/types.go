package health

import "time"

// Status is the state of one tracked item.
type Status string

const (
	StatusOK      Status = "ok"
	StatusWarning Status = "warning"
	StatusError   Status = "error"
)

// Category groups tracked items.
type Category string

const (
	CategorySources  Category = "sources"
	CategoryDatabase Category = "database"
)

// categories is the display order.
var categories = []Category{CategorySources, CategoryDatabase}

// ParseCategory resolves a category name from a request path.
func ParseCategory(name string) (Category, bool) {
	for _, c := range categories {
		if string(c) == name {
			return c, true
		}
	}
	return "", false
}

// Item is one tracked source or database. Message and Since are set only
// while the item is not OK.
type Item struct {
	Category Category   `json:"category"`
	ID       string     `json:"id"`
	Name     string     `json:"name"`
	Status   Status     `json:"status"`
	Message  string     `json:"message,omitempty"`
	Since    *time.Time `json:"since,omitempty"`
}

// Report lists every item, grouped by category.
type Report struct {
	Sources  []Item `json:"sources"`
	Database []Item `json:"database"`
}

// Counts tallies the items of one category by status.
type Counts struct {
	Category Category `json:"category"`
	OK       int      `json:"ok"`
	Warning  int      `json:"warning"`
	Error    int      `json:"error"`
}

// Total is the number of items counted.
func (c Counts) Total() int {
	return c.OK + c.Warning + c.Error
}

// Summary is the per-category tally shown on the status page.
type Summary struct {
	Categories []Counts `json:"categories"`
	HasIssues  bool     `json:"hasIssues"`
}
