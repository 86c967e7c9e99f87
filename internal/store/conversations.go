package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// DefaultDurationSeconds applies when a conversation has no recorded duration.
const DefaultDurationSeconds = 60

type Conversation struct {
	ID              string
	TranscriptJSON  []byte
	DurationSeconds int
	HumeJobID       string
}

// GetConversation fetches the inputs a timeline build needs.
func (s *Store) GetConversation(ctx context.Context, id string) (*Conversation, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id::text, transcript_json, duration_seconds, hume_job_id
		FROM conversations WHERE id::text = $1`, id)

	var (
		c        Conversation
		duration *int
		jobID    *string
	)
	err := row.Scan(&c.ID, &c.TranscriptJSON, &duration, &jobID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrConversationNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get conversation %s: %w", id, err)
	}

	c.DurationSeconds = DefaultDurationSeconds
	if duration != nil {
		c.DurationSeconds = *duration
	}
	if jobID != nil {
		c.HumeJobID = *jobID
	}
	return &c, nil
}

// ListConversationIDs returns conversation ids created at or after since,
// oldest first. A zero since lists everything.
func (s *Store) ListConversationIDs(ctx context.Context, since time.Time, limit int) ([]string, error) {
	query := `SELECT id::text FROM conversations WHERE created_at >= $1 ORDER BY created_at, id`
	args := []any{since}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("scan conversations: %w", err)
	}
	return ids, nil
}
