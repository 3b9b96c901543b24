package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// AdviceRequestRecord captures one call to the text-generation
// collaborator, success or not.
type AdviceRequestRecord struct {
	ID           int64
	Timestamp    time.Time
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
}

// AdviceLogRepo records advice requests. Append failures are the
// logger's problem, never the caller's.
type AdviceLogRepo interface {
	Append(ctx context.Context, rec AdviceRequestRecord) error

	// Recent returns up to limit records, newest first.
	Recent(ctx context.Context, limit int) ([]AdviceRequestRecord, error)
}

type adviceLogRepo struct {
	db *sql.DB
}

func (r *adviceLogRepo) Append(ctx context.Context, rec AdviceRequestRecord) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO advice_requests
			(provider, model, purpose, input_tokens, output_tokens,
			latency_ms, success, error_message)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.Provider, rec.Model, rec.Purpose, rec.InputTokens,
		rec.OutputTokens, rec.LatencyMs, rec.Success, rec.ErrorMessage,
	)
	if err != nil {
		return fmt.Errorf("append advice request: %w", err)
	}
	return nil
}

func (r *adviceLogRepo) Recent(ctx context.Context, limit int) ([]AdviceRequestRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, timestamp, provider, model, purpose, input_tokens,
			output_tokens, latency_ms, success, error_message
		FROM advice_requests
		ORDER BY id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query advice requests: %w", err)
	}
	defer rows.Close()

	var recs []AdviceRequestRecord
	for rows.Next() {
		var rec AdviceRequestRecord
		if err := rows.Scan(&rec.ID, &rec.Timestamp, &rec.Provider, &rec.Model,
			&rec.Purpose, &rec.InputTokens, &rec.OutputTokens,
			&rec.LatencyMs, &rec.Success, &rec.ErrorMessage); err != nil {
			return nil, fmt.Errorf("scan advice request: %w", err)
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}
