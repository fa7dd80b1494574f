package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/explorador/imdbexplorer/internal/dataset"
)

const (
	defaultPageSize = 50
	maxPageSize     = 100
)

// Service records every source load in the ledger table.
type Service struct {
	db     *sql.DB
	logger zerolog.Logger
	now    func() time.Time
}

// NewService creates a new history service.
func NewService(db *sql.DB, logger zerolog.Logger) *Service {
	return &Service{
		db:     db,
		logger: logger.With().Str("component", "history").Logger(),
		now:    time.Now,
	}
}

// RecordLoad implements dataset.LoadRecorder.
func (s *Service) RecordLoad(ctx context.Context, rec dataset.LoadRecord) error {
	_, err := s.Create(ctx, rec)
	return err
}

// Create inserts a ledger entry for a load attempt.
func (s *Service) Create(ctx context.Context, rec dataset.LoadRecord) (*Entry, error) {
	entry := &Entry{
		ID:          uuid.NewString(),
		Source:      rec.Source,
		Fingerprint: string(rec.Fingerprint),
		Files:       rec.Stats.Files,
		RowsRead:    rec.Stats.RowsRead,
		RowsKept:    rec.Stats.RowsKept,
		DurationMs:  rec.Stats.Duration.Milliseconds(),
		Success:     rec.Err == nil,
		CreatedAt:   s.now().UTC(),
	}
	if rec.Err != nil {
		entry.Error = rec.Err.Error()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO source_loads (id, source, fingerprint, files, rows_read, rows_kept, duration_ms, success, error, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.Source, entry.Fingerprint, entry.Files, entry.RowsRead, entry.RowsKept,
		entry.DurationMs, entry.Success, entry.Error, entry.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert source load: %w", err)
	}
	return entry, nil
}

// List lists ledger entries newest first with pagination and an optional
// source filter.
func (s *Service) List(ctx context.Context, opts ListOptions) (*ListResponse, error) {
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.PageSize < 1 {
		opts.PageSize = defaultPageSize
	}
	if opts.PageSize > maxPageSize {
		opts.PageSize = maxPageSize
	}

	offset := (opts.Page - 1) * opts.PageSize

	var totalCount int64
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM source_loads WHERE (? = '' OR source = ?)`,
		opts.Source, opts.Source,
	).Scan(&totalCount); err != nil {
		return nil, fmt.Errorf("count source loads: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, source, fingerprint, files, rows_read, rows_kept, duration_ms, success, error, created_at
		FROM source_loads
		WHERE (? = '' OR source = ?)
		ORDER BY created_at DESC, rowid DESC
		LIMIT ? OFFSET ?`,
		opts.Source, opts.Source, opts.PageSize, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list source loads: %w", err)
	}
	defer rows.Close()

	entries := make([]*Entry, 0, opts.PageSize)
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Source, &e.Fingerprint, &e.Files, &e.RowsRead, &e.RowsKept,
			&e.DurationMs, &e.Success, &e.Error, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan source load: %w", err)
		}
		entries = append(entries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	totalPages := int(totalCount) / opts.PageSize
	if int(totalCount)%opts.PageSize > 0 {
		totalPages++
	}

	return &ListResponse{
		Items:      entries,
		Page:       opts.Page,
		PageSize:   opts.PageSize,
		TotalCount: totalCount,
		TotalPages: totalPages,
	}, nil
}

// Latest returns the most recent entry for a source, or nil when none exists.
func (s *Service) Latest(ctx context.Context, source string) (*Entry, error) {
	resp, err := s.List(ctx, ListOptions{Source: source, Page: 1, PageSize: 1})
	if err != nil {
		return nil, err
	}
	if len(resp.Items) == 0 {
		return nil, nil
	}
	return resp.Items[0], nil
}

// CleanupOlderThan deletes entries older than the given number of days.
func (s *Service) CleanupOlderThan(ctx context.Context, days int) (int64, error) {
	if days <= 0 {
		return 0, nil
	}
	cutoff := s.now().UTC().AddDate(0, 0, -days)

	res, err := s.db.ExecContext(ctx, `DELETE FROM source_loads WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete old source loads: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.logger.Info().Int64("deleted", n).Int("retentionDays", days).Msg("cleaned up source load history")
	}
	return n, nil
}

// DeleteAll deletes every ledger entry.
func (s *Service) DeleteAll(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM source_loads`)
	return err
}
