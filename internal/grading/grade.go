package grading

import (
	"math"
	"time"

	"github.com/ytakagi/excelquiz/internal/catalog"
)

// ScoreEntry is the immutable record of one graded attempt. It snapshots
// the answer key, question segments and choices at grading time, so the
// historical display stays correct even if the chapter content is later
// edited.
type ScoreEntry struct {
	ID           string
	UserID       string
	UserName     string
	ChapterID    int
	ChapterTitle string
	Score        int // percentage 0-100
	Date         time.Time
	UserAnswers  map[string]string
	CorrectAns   map[string]string
	Segments     []catalog.Segment
	Choices      []string
}

// CorrectCount returns how many of the chapter's blanks were answered
// correctly in this entry.
func (e ScoreEntry) CorrectCount() int {
	n := 0
	for id, want := range e.CorrectAns {
		if e.UserAnswers[id] == want {
			n++
		}
	}
	return n
}

// Grade compares answers against the chapter's answer key and builds a
// ScoreEntry stamped with at. It is a pure function: answers may be
// partial (a missing or empty answer is simply incorrect), comparison is
// exact string equality, and the score is the correct fraction as a
// percentage rounded half up. The caller persists the entry and fills in
// identity fields.
//
// Grade assumes a catalog-validated chapter; an empty blank list is a
// configuration error rejected at load time, never here.
func Grade(ch *catalog.Chapter, answers map[string]string, at time.Time) ScoreEntry {
	correct := 0
	for _, id := range ch.BlanksInOrder {
		if got, ok := answers[id]; ok && got == ch.CorrectAnswers[id] {
			correct++
		}
	}
	score := int(math.Floor(float64(correct)/float64(len(ch.BlanksInOrder))*100 + 0.5))

	return ScoreEntry{
		ChapterID:    ch.ID,
		ChapterTitle: ch.Title,
		Score:        score,
		Date:         at,
		UserAnswers:  copyAnswers(answers),
		CorrectAns:   copyAnswers(ch.CorrectAnswers),
		Segments:     append([]catalog.Segment(nil), ch.Segments...),
		Choices:      append([]string(nil), ch.Choices...),
	}
}

func copyAnswers(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
