package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/MikeSquared-Agency/metronome/internal/timeline"
)

// ListEmotionPredictions returns the persisted predictions for a conversation,
// ordered by start time.
func (s *Store) ListEmotionPredictions(ctx context.Context, conversationID string) ([]timeline.EmotionPrediction, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT model_type, start_ms, end_ms, emotions, top_emotion_name, top_emotion_score, bounding_box
		FROM emotion_predictions
		WHERE conversation_id::text = $1
		ORDER BY start_ms, model_type, id`, conversationID)
	if err != nil {
		return nil, fmt.Errorf("query emotion predictions: %w", err)
	}
	defer rows.Close()

	var preds []timeline.EmotionPrediction
	for rows.Next() {
		var (
			p        timeline.EmotionPrediction
			model    string
			emotions []byte
			box      []byte
		)
		if err := rows.Scan(&model, &p.StartMs, &p.EndMs, &emotions, &p.TopEmotion.Name, &p.TopEmotion.Score, &box); err != nil {
			return nil, fmt.Errorf("scan emotion prediction: %w", err)
		}
		p.ModelType = timeline.ModelType(model)
		if len(emotions) > 0 {
			if err := json.Unmarshal(emotions, &p.Emotions); err != nil {
				return nil, fmt.Errorf("decode emotions: %w", err)
			}
		}
		if len(box) > 0 && string(box) != "null" {
			p.BoundingBox = &timeline.BoundingBox{}
			if err := json.Unmarshal(box, p.BoundingBox); err != nil {
				return nil, fmt.Errorf("decode bounding box: %w", err)
			}
		}
		preds = append(preds, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate emotion predictions: %w", err)
	}
	return preds, nil
}

// ReplaceEmotionPredictions deletes every persisted prediction for the
// conversation and inserts preds in batches, all in one transaction.
func (s *Store) ReplaceEmotionPredictions(ctx context.Context, conversationID string, preds []timeline.EmotionPrediction) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM emotion_predictions WHERE conversation_id::text = $1`, conversationID); err != nil {
		return fmt.Errorf("delete emotion predictions: %w", err)
	}

	for _, c := range chunks(len(preds), s.batchSize) {
		batch := &pgx.Batch{}
		for _, p := range preds[c[0]:c[1]] {
			emotions, err := json.Marshal(p.Emotions)
			if err != nil {
				return fmt.Errorf("encode emotions: %w", err)
			}
			var box []byte
			if p.BoundingBox != nil {
				if box, err = json.Marshal(p.BoundingBox); err != nil {
					return fmt.Errorf("encode bounding box: %w", err)
				}
			}
			batch.Queue(`
				INSERT INTO emotion_predictions (id, conversation_id, model_type, start_ms, end_ms, emotions, top_emotion_name, top_emotion_score, bounding_box, created_at)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, now())`,
				uuid.New(), conversationID, string(p.ModelType), p.StartMs, p.EndMs, emotions, p.TopEmotion.Name, p.TopEmotion.Score, box,
			)
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("insert emotion predictions [%d:%d]: %w", c[0], c[1], err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
