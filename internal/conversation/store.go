package conversation

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/kwlam/sitechat/internal/db"
)

// ReuseWindow is how long an active conversation keeps accepting
// messages from the same fingerprint before a fresh one is started.
const ReuseWindow = 24 * time.Hour

// Store persists conversations and messages.
type Store struct {
	db *db.DB
}

// NewStore creates a conversation store.
func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

// ResolveOrCreate returns the active conversation for the fingerprint
// with activity inside the reuse window, bumping its activity, or
// creates a new one. The second return reports whether a conversation
// was created.
func (s *Store) ResolveOrCreate(ctx context.Context, fingerprint, userAgent string) (string, bool, error) {
	cutoff := time.Now().UTC().Add(-ReuseWindow)

	var id string
	err := s.db.QueryRowContext(ctx,
		`SELECT conversation_id FROM conversations
		 WHERE user_ip = ? AND platform = ? AND status = ? AND updated_at > ?
		 ORDER BY updated_at DESC LIMIT 1`,
		fingerprint, PlatformAIChat, StatusActive, cutoff,
	).Scan(&id)

	if err == nil {
		if err := s.touch(ctx, id); err != nil {
			log.Printf("conversation: bumping activity for %s: %v", id, err)
		}
		return id, false, nil
	}
	if err != sql.ErrNoRows {
		return "", false, fmt.Errorf("resolving conversation: %w", err)
	}

	id = uuid.New().String()
	now := time.Now().UTC()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO conversations (conversation_id, user_ip, user_agent, platform, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, fingerprint, userAgent, PlatformAIChat, StatusActive, now, now,
	)
	if err != nil {
		return "", false, fmt.Errorf("creating conversation: %w", err)
	}
	return id, true, nil
}

// AppendMessage stores a turn and bumps the conversation's activity.
// Storage failures are logged and swallowed: the chat turn must not be
// lost to a persistence error.
func (s *Store) AppendMessage(ctx context.Context, conversationID, role, body, msgType string) bool {
	if msgType == "" {
		msgType = "text"
	}
	now := time.Now().UTC()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO messages (conversation_id, role, body, type, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		conversationID, role, body, msgType, now,
	)
	if err != nil {
		log.Printf("conversation: saving %s message for %s: %v", role, conversationID, err)
		return false
	}

	if err := s.touch(ctx, conversationID); err != nil {
		log.Printf("conversation: bumping activity for %s: %v", conversationID, err)
	}
	return true
}

// RecentHistory returns the most recent maxTurns messages in
// chronological order, excluding the newest message (the in-flight user
// message the pipeline saved just before asking for history).
func (s *Store) RecentHistory(ctx context.Context, conversationID string, maxTurns int) ([]Turn, error) {
	if maxTurns <= 0 {
		return nil, nil
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT role, body FROM messages
		 WHERE conversation_id = ?
		 ORDER BY created_at DESC, id DESC LIMIT ?`,
		conversationID, maxTurns+1,
	)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	var newestFirst []Turn
	for rows.Next() {
		var t Turn
		if err := rows.Scan(&t.Role, &t.Body); err != nil {
			return nil, fmt.Errorf("scanning history row: %w", err)
		}
		newestFirst = append(newestFirst, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(newestFirst) == 0 {
		return nil, nil
	}

	// Drop the in-flight message, then reverse into chronological order.
	newestFirst = newestFirst[1:]
	turns := make([]Turn, 0, len(newestFirst))
	for i := len(newestFirst) - 1; i >= 0; i-- {
		turns = append(turns, newestFirst[i])
	}
	return turns, nil
}

// Messages returns all stored messages for a conversation, oldest first.
func (s *Store) Messages(ctx context.Context, conversationID string) ([]Message, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, conversation_id, role, body, type, created_at
		 FROM messages WHERE conversation_id = ?
		 ORDER BY created_at ASC, id ASC`,
		conversationID,
	)
	if err != nil {
		return nil, fmt.Errorf("querying messages: %w", err)
	}
	defer rows.Close()

	var msgs []Message
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.Role, &m.Body, &m.Type, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning message: %w", err)
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

// Get returns a conversation by id, or nil when absent.
func (s *Store) Get(ctx context.Context, conversationID string) (*Conversation, error) {
	var c Conversation
	err := s.db.QueryRowContext(ctx,
		`SELECT conversation_id, user_ip, user_agent, platform, status, created_at, updated_at
		 FROM conversations WHERE conversation_id = ?`,
		conversationID,
	).Scan(&c.ID, &c.UserIP, &c.UserAgent, &c.Platform, &c.Status, &c.CreatedAt, &c.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting conversation: %w", err)
	}
	return &c, nil
}

// PurgeOlderThan deletes conversations (and, in cascade, their messages)
// whose last activity predates the cutoff. Returns the number of
// conversations removed.
func (s *Store) PurgeOlderThan(ctx context.Context, days int) (int, error) {
	cutoff := time.Now().UTC().AddDate(0, 0, -days)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("starting purge: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`DELETE FROM messages WHERE conversation_id IN
		 (SELECT conversation_id FROM conversations WHERE updated_at < ?)`,
		cutoff,
	)
	if err != nil {
		return 0, fmt.Errorf("purging messages: %w", err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM conversations WHERE updated_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purging conversations: %w", err)
	}
	deleted, _ := res.RowsAffected()

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing purge: %w", err)
	}
	return int(deleted), nil
}

// Delete removes one conversation and its messages (operator purge).
func (s *Store) Delete(ctx context.Context, conversationID string) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM messages WHERE conversation_id = ?`, conversationID); err != nil {
		return fmt.Errorf("deleting messages: %w", err)
	}
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM conversations WHERE conversation_id = ?`, conversationID); err != nil {
		return fmt.Errorf("deleting conversation: %w", err)
	}
	return nil
}

func (s *Store) touch(ctx context.Context, conversationID string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE conversations SET updated_at = ? WHERE conversation_id = ?`,
		time.Now().UTC(), conversationID,
	)
	return err
}
