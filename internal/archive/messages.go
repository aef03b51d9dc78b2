package archive

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"chime/pkg/ntfy"
)

// Record is a received message as stored in the archive.
type Record struct {
	ID          int64
	MessageID   string
	Topic       string
	PublishedAt time.Time
	ArchivedAt  time.Time
	Title       string
	Priority    int
	Tags        []string
	Click       string
	Body        string
}

// Save stores a received message. Saving the same message ID twice is a
// no-op; the returned bool reports whether a new row was written.
func (s *Store) Save(ctx context.Context, msg ntfy.Message) (bool, error) {
	if msg.ID == "" {
		return false, fmt.Errorf("message id is required")
	}

	var tags any
	if len(msg.Tags) > 0 {
		encoded, err := json.Marshal(msg.Tags)
		if err != nil {
			return false, fmt.Errorf("encode tags: %w", err)
		}
		tags = string(encoded)
	}

	res, err := s.execWithRetry(
		ctx,
		`INSERT OR IGNORE INTO messages (
            message_id, topic, published_at, archived_at,
            title, priority, tags, click, body
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		msg.ID,
		msg.Topic,
		msg.Time,
		time.Now().UTC().Format(time.RFC3339Nano),
		nullableString(msg.Title),
		msg.Priority,
		tags,
		nullableString(msg.Click),
		msg.Message,
	)
	if err != nil {
		return false, fmt.Errorf("insert message: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return rows > 0, nil
}

// Recent returns the newest messages first, at most limit rows.
func (s *Store) Recent(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ensureContext(ctx),
		`SELECT id, message_id, topic, published_at, archived_at,
                title, priority, tags, click, body
         FROM messages
         ORDER BY published_at DESC, id DESC
         LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent messages: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// RecentByTopic returns the newest messages for one topic.
func (s *Store) RecentByTopic(ctx context.Context, topic string, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ensureContext(ctx),
		`SELECT id, message_id, topic, published_at, archived_at,
                title, priority, tags, click, body
         FROM messages
         WHERE topic = ?
         ORDER BY published_at DESC, id DESC
         LIMIT ?`, topic, limit)
	if err != nil {
		return nil, fmt.Errorf("query topic messages: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// CountByTopic returns message counts per topic.
func (s *Store) CountByTopic(ctx context.Context) (map[string]int64, error) {
	rows, err := s.db.QueryContext(ensureContext(ctx),
		"SELECT topic, COUNT(1) FROM messages GROUP BY topic")
	if err != nil {
		return nil, fmt.Errorf("count messages: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var topic string
		var count int64
		if err := rows.Scan(&topic, &count); err != nil {
			return nil, fmt.Errorf("scan count row: %w", err)
		}
		counts[topic] = count
	}
	return counts, rows.Err()
}

func scanRecords(rows *sql.Rows) ([]Record, error) {
	var records []Record
	for rows.Next() {
		var (
			rec         Record
			publishedAt int64
			archivedAt  string
			title       sql.NullString
			tags        sql.NullString
			click       sql.NullString
		)
		if err := rows.Scan(&rec.ID, &rec.MessageID, &rec.Topic, &publishedAt, &archivedAt,
			&title, &rec.Priority, &tags, &click, &rec.Body); err != nil {
			return nil, fmt.Errorf("scan message row: %w", err)
		}
		rec.PublishedAt = time.Unix(publishedAt, 0).UTC()
		if parsed, err := time.Parse(time.RFC3339Nano, archivedAt); err == nil {
			rec.ArchivedAt = parsed
		}
		rec.Title = title.String
		rec.Click = click.String
		if tags.Valid && tags.String != "" {
			if err := json.Unmarshal([]byte(tags.String), &rec.Tags); err != nil {
				return nil, fmt.Errorf("decode tags: %w", err)
			}
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
