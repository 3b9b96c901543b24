package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ytakagi/excelquiz/internal/catalog"
	"github.com/ytakagi/excelquiz/internal/grading"
)

// ErrNotFound is returned when a row addressed by id does not exist.
var ErrNotFound = errors.New("record not found")

// ScoreRepo is the durable record store for graded attempts.
//
// Field mapping between the durable row and the in-memory entry:
//
//	user_id           <-> UserID
//	full_name         <-> UserName
//	chapter_id        <-> ChapterID
//	chapter_title     <-> ChapterTitle
//	score             <-> Score
//	date              <-> Date
//	user_answers      <-> UserAnswers      (JSON object)
//	correct_answers   <-> CorrectAns       (JSON object)
//	question_segments <-> Segments         (JSON array)
//	choices           <-> Choices          (JSON array)
type ScoreRepo interface {
	// Insert stores a new entry, assigning entry.ID when empty.
	Insert(ctx context.Context, entry *grading.ScoreEntry) error

	// QueryByUser returns one user's entries, newest first.
	QueryByUser(ctx context.Context, userID string) ([]grading.ScoreEntry, error)

	// QueryAll returns every user's entries for the admin view.
	QueryAll(ctx context.Context) ([]grading.ScoreEntry, error)

	// DeleteByID removes one entry.
	DeleteByID(ctx context.Context, id string) error
}

type scoreRepo struct {
	db *sql.DB
}

func (r *scoreRepo) Insert(ctx context.Context, entry *grading.ScoreEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}

	userAnswers, err := json.Marshal(entry.UserAnswers)
	if err != nil {
		return fmt.Errorf("marshal user answers: %w", err)
	}
	correctAnswers, err := json.Marshal(entry.CorrectAns)
	if err != nil {
		return fmt.Errorf("marshal correct answers: %w", err)
	}
	segments, err := json.Marshal(entry.Segments)
	if err != nil {
		return fmt.Errorf("marshal question segments: %w", err)
	}
	choices, err := json.Marshal(entry.Choices)
	if err != nil {
		return fmt.Errorf("marshal choices: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO scores
			(id, user_id, full_name, chapter_id, chapter_title, score, date,
			user_answers, correct_answers, question_segments, choices)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.UserID, entry.UserName, entry.ChapterID,
		entry.ChapterTitle, entry.Score, entry.Date.UTC().Format(time.RFC3339Nano),
		string(userAnswers), string(correctAnswers), string(segments), string(choices),
	)
	if err != nil {
		return fmt.Errorf("insert score: %w", err)
	}
	return nil
}

func (r *scoreRepo) QueryByUser(ctx context.Context, userID string) ([]grading.ScoreEntry, error) {
	rows, err := r.db.QueryContext(ctx, selectScores+`
		WHERE user_id = ? ORDER BY date DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("query scores by user: %w", err)
	}
	defer rows.Close()
	return scanScores(rows)
}

func (r *scoreRepo) QueryAll(ctx context.Context) ([]grading.ScoreEntry, error) {
	rows, err := r.db.QueryContext(ctx, selectScores+` ORDER BY date DESC`)
	if err != nil {
		return nil, fmt.Errorf("query all scores: %w", err)
	}
	defer rows.Close()
	return scanScores(rows)
}

func (r *scoreRepo) DeleteByID(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM scores WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete score: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

const selectScores = `
	SELECT id, user_id, full_name, chapter_id, chapter_title, score, date,
		user_answers, correct_answers, question_segments, choices
	FROM scores`

func scanScores(rows *sql.Rows) ([]grading.ScoreEntry, error) {
	var entries []grading.ScoreEntry
	for rows.Next() {
		var (
			e       grading.ScoreEntry
			date    string
			ua, ca  string
			segs    string
			choices string
		)
		if err := rows.Scan(&e.ID, &e.UserID, &e.UserName, &e.ChapterID,
			&e.ChapterTitle, &e.Score, &date, &ua, &ca, &segs, &choices); err != nil {
			return nil, fmt.Errorf("scan score row: %w", err)
		}

		t, err := time.Parse(time.RFC3339Nano, date)
		if err != nil {
			return nil, fmt.Errorf("parse score date %q: %w", date, err)
		}
		e.Date = t

		if err := json.Unmarshal([]byte(ua), &e.UserAnswers); err != nil {
			return nil, fmt.Errorf("decode user answers: %w", err)
		}
		if err := json.Unmarshal([]byte(ca), &e.CorrectAns); err != nil {
			return nil, fmt.Errorf("decode correct answers: %w", err)
		}
		var segments []catalog.Segment
		if err := json.Unmarshal([]byte(segs), &segments); err != nil {
			return nil, fmt.Errorf("decode question segments: %w", err)
		}
		e.Segments = segments
		if err := json.Unmarshal([]byte(choices), &e.Choices); err != nil {
			return nil, fmt.Errorf("decode choices: %w", err)
		}

		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate score rows: %w", err)
	}
	return entries, nil
}
