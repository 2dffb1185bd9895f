// Task 5.2: SQLite-backed usage store.
package usage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Store persists and queries ai_usage rows.
type Store struct {
	db *sql.DB
}

// NewStore creates a Store over db (schema applied by sqlite.MigrateUp).
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Insert writes one usage row. Row ids are UUIDv7 so the primary key
// index stays roughly insert-ordered.
func (s *Store) Insert(ctx context.Context, rec Record) error {
	id, err := uuid.NewV7()
	if err != nil {
		return fmt.Errorf("usage id: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO ai_usage (id, caller_id, provider, model, prompt_tokens, completion_tokens, error_kind, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id.String(),
		rec.CallerID,
		rec.Provider,
		rec.Model,
		rec.PromptTokens,
		rec.CompletionTokens,
		rec.ErrorKind,
		rec.At.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("usage insert: %w", err)
	}
	return nil
}

// CallerSummary aggregates one caller's usage over a period.
type CallerSummary struct {
	CallerID         string `json:"callerId"`
	Requests         int    `json:"requests"`
	Failures         int    `json:"failures"`
	PromptTokens     int    `json:"promptTokens"`
	CompletionTokens int    `json:"completionTokens"`
}

// Summary returns per-caller aggregates for rows at or after since,
// ordered by total token consumption descending.
func (s *Store) Summary(ctx context.Context, since time.Time) ([]CallerSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT caller_id,
		       COUNT(*),
		       SUM(CASE WHEN error_kind != '' THEN 1 ELSE 0 END),
		       COALESCE(SUM(prompt_tokens), 0),
		       COALESCE(SUM(completion_tokens), 0)
		FROM ai_usage
		WHERE created_at >= ?
		GROUP BY caller_id
		ORDER BY SUM(prompt_tokens) + SUM(completion_tokens) DESC`,
		since.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return nil, fmt.Errorf("usage summary: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	var out []CallerSummary
	for rows.Next() {
		var cs CallerSummary
		if scanErr := rows.Scan(&cs.CallerID, &cs.Requests, &cs.Failures, &cs.PromptTokens, &cs.CompletionTokens); scanErr != nil {
			return nil, fmt.Errorf("usage summary scan: %w", scanErr)
		}
		out = append(out, cs)
	}
	return out, rows.Err()
}
