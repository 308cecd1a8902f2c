package datasource

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/kwlam/sitechat/internal/db"
)

// Store manages persistence of external data sources.
type Store struct {
	db *db.DB
}

// NewStore creates a data source store.
func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

// Create inserts a new data source. The URL must be unique.
func (s *Store) Create(ctx context.Context, url, title, preview string) (*DataSource, error) {
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO data_sources (url, title, preview, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		url, title, preview, StatusActive, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("inserting data source: %w", err)
	}
	id, _ := res.LastInsertId()
	return &DataSource{
		ID: id, URL: url, Title: title, Preview: preview,
		Status: StatusActive, CreatedAt: now, UpdatedAt: now,
	}, nil
}

// Get returns a data source by id, or nil when absent.
func (s *Store) Get(ctx context.Context, id int64) (*DataSource, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, url, title, preview, status, last_fetched, fetch_count, created_at, updated_at
		 FROM data_sources WHERE id = ?`, id)
	return scanSource(row)
}

// List returns all data sources, newest first.
func (s *Store) List(ctx context.Context) ([]DataSource, error) {
	return s.list(ctx, `SELECT id, url, title, preview, status, last_fetched, fetch_count, created_at, updated_at
		 FROM data_sources ORDER BY created_at DESC`)
}

// ListActive returns active data sources in creation order, the order
// their blocks appear in the prompt.
func (s *Store) ListActive(ctx context.Context) ([]DataSource, error) {
	return s.list(ctx, `SELECT id, url, title, preview, status, last_fetched, fetch_count, created_at, updated_at
		 FROM data_sources WHERE status = 'active' ORDER BY created_at ASC`)
}

func (s *Store) list(ctx context.Context, query string) ([]DataSource, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying data sources: %w", err)
	}
	defer rows.Close()

	var sources []DataSource
	for rows.Next() {
		var d DataSource
		var lastFetched sql.NullTime
		if err := rows.Scan(&d.ID, &d.URL, &d.Title, &d.Preview, &d.Status,
			&lastFetched, &d.FetchCount, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning data source: %w", err)
		}
		if lastFetched.Valid {
			t := lastFetched.Time
			d.LastFetched = &t
		}
		sources = append(sources, d)
	}
	return sources, rows.Err()
}

func scanSource(row *sql.Row) (*DataSource, error) {
	var d DataSource
	var lastFetched sql.NullTime
	err := row.Scan(&d.ID, &d.URL, &d.Title, &d.Preview, &d.Status,
		&lastFetched, &d.FetchCount, &d.CreatedAt, &d.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scanning data source: %w", err)
	}
	if lastFetched.Valid {
		t := lastFetched.Time
		d.LastFetched = &t
	}
	return &d, nil
}

// SetStatus activates or deactivates a source.
func (s *Store) SetStatus(ctx context.Context, id int64, status string) error {
	if status != StatusActive && status != StatusInactive {
		return fmt.Errorf("invalid status %q", status)
	}
	_, err := s.db.ExecContext(ctx,
		`UPDATE data_sources SET status = ?, updated_at = ? WHERE id = ?`,
		status, time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("updating data source status: %w", err)
	}
	return nil
}

// Delete removes a data source.
func (s *Store) Delete(ctx context.Context, id int64) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM data_sources WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting data source: %w", err)
	}
	return nil
}

// RecordFetch bumps last_fetched and the fetch counter after a
// successful retrieval. The counters are advisory metrics; the update is
// not atomic with the fetch and that is acceptable.
func (s *Store) RecordFetch(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE data_sources SET last_fetched = ?, fetch_count = fetch_count + 1 WHERE id = ?`,
		time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("recording fetch: %w", err)
	}
	return nil
}
