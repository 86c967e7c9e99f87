package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrConversationNotFound is returned when no conversation row matches an id.
var ErrConversationNotFound = errors.New("conversation not found")

// DefaultInsertBatchSize bounds the rows sent per insert round trip.
const DefaultInsertBatchSize = 500

type Store struct {
	pool      *pgxpool.Pool
	batchSize int
}

func New(ctx context.Context, databaseURL string, batchSize int) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if batchSize <= 0 {
		batchSize = DefaultInsertBatchSize
	}
	return &Store{pool: pool, batchSize: batchSize}, nil
}

func (s *Store) Close() {
	s.pool.Close()
}

// chunks splits n items into consecutive [start, end) ranges of at most size.
func chunks(n, size int) [][2]int {
	if size <= 0 {
		size = DefaultInsertBatchSize
	}
	var out [][2]int
	for start := 0; start < n; start += size {
		end := start + size
		if end > n {
			end = n
		}
		out = append(out, [2]int{start, end})
	}
	return out
}
