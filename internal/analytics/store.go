// Package analytics records daily per-platform usage counters.
package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/kwlam/sitechat/internal/db"
)

// DayStat is one platform's counters for one day.
type DayStat struct {
	Platform             string `json:"platform"`
	Date                 string `json:"date"`
	ConversationsStarted int    `json:"conversations_started"`
	MessagesSent         int    `json:"messages_sent"`
}

// Summary aggregates counters over a reporting window.
type Summary struct {
	Days                 int       `json:"days"`
	ConversationsStarted int       `json:"conversations_started"`
	MessagesSent         int       `json:"messages_sent"`
	ByDay                []DayStat `json:"by_day"`
}

// Store persists analytics counters.
type Store struct {
	db *db.DB
}

// NewStore creates an analytics store.
func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

// Record bumps today's counters for a platform. Counter writes are
// best-effort bookkeeping; callers may ignore the error.
func (s *Store) Record(ctx context.Context, platform string, conversationsStarted, messagesSent int) error {
	today := time.Now().UTC().Format("2006-01-02")
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO analytics (platform, date, conversations_started, messages_sent)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(platform, date) DO UPDATE SET
			conversations_started = conversations_started + excluded.conversations_started,
			messages_sent = messages_sent + excluded.messages_sent`,
		platform, today, conversationsStarted, messagesSent)
	if err != nil {
		return fmt.Errorf("recording analytics: %w", err)
	}
	return nil
}

// Window returns per-day counters for the last n days, newest first.
func (s *Store) Window(ctx context.Context, days int) (*Summary, error) {
	if days < 1 {
		days = 1
	}
	since := time.Now().UTC().AddDate(0, 0, -days).Format("2006-01-02")

	rows, err := s.db.QueryContext(ctx, `
		SELECT platform, date, conversations_started, messages_sent
		FROM analytics
		WHERE date >= ?
		ORDER BY date DESC, platform ASC`, since)
	if err != nil {
		return nil, fmt.Errorf("querying analytics: %w", err)
	}
	defer rows.Close()

	sum := &Summary{Days: days}
	for rows.Next() {
		var d DayStat
		if err := rows.Scan(&d.Platform, &d.Date, &d.ConversationsStarted, &d.MessagesSent); err != nil {
			return nil, fmt.Errorf("scanning analytics row: %w", err)
		}
		sum.ConversationsStarted += d.ConversationsStarted
		sum.MessagesSent += d.MessagesSent
		sum.ByDay = append(sum.ByDay, d)
	}
	return sum, rows.Err()
}
