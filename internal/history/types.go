package history

import "time"

// Entry is one recorded source load.
type Entry struct {
	ID          string    `json:"id"`
	Source      string    `json:"source"`
	Fingerprint string    `json:"fingerprint"`
	Files       int       `json:"files"`
	RowsRead    int       `json:"rowsRead"`
	RowsKept    int       `json:"rowsKept"`
	DurationMs  int64     `json:"durationMs"`
	Success     bool      `json:"success"`
	Error       string    `json:"error,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// ListOptions contains options for listing loads.
type ListOptions struct {
	Source   string
	Page     int
	PageSize int
}

// ListResponse contains paginated loads.
type ListResponse struct {
	Items      []*Entry `json:"items"`
	Page       int      `json:"page"`
	PageSize   int      `json:"pageSize"`
	TotalCount int64    `json:"totalCount"`
	TotalPages int      `json:"totalPages"`
}
