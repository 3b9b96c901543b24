package grading

import (
	"testing"
	"time"

	"github.com/ytakagi/excelquiz/internal/catalog"
)

func testChapter(blanks int) *catalog.Chapter {
	ch := &catalog.Chapter{
		ID:             1,
		Title:          "テスト章",
		Choices:        []string{"A", "B", "C"},
		CorrectAnswers: map[string]string{},
	}
	ids := []string{"ア", "イ", "ウ", "エ", "オ"}
	for i := 0; i < blanks; i++ {
		ch.BlanksInOrder = append(ch.BlanksInOrder, ids[i])
		ch.CorrectAnswers[ids[i]] = "A"
		ch.Segments = append(ch.Segments,
			catalog.Segment{Text: "text"},
			catalog.Segment{BlankID: ids[i]},
		)
	}
	return ch
}

func TestGradeScore(t *testing.T) {
	tests := []struct {
		name    string
		blanks  int
		answers map[string]string
		want    int
	}{
		{"all correct", 2, map[string]string{"ア": "A", "イ": "A"}, 100},
		{"all wrong", 2, map[string]string{"ア": "B", "イ": "C"}, 0},
		{"empty answers", 2, map[string]string{}, 0},
		{"half", 2, map[string]string{"ア": "A", "イ": "B"}, 50},
		{"one of three rounds up", 3, map[string]string{"ア": "A"}, 33},
		{"two of three rounds up", 3, map[string]string{"ア": "A", "イ": "A"}, 67},
		{"one of five", 5, map[string]string{"ウ": "A"}, 20},
		{"missing answer is wrong", 2, map[string]string{"ア": "A"}, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry := Grade(testChapter(tt.blanks), tt.answers, time.Now())
			if entry.Score != tt.want {
				t.Errorf("Score = %d, want %d", entry.Score, tt.want)
			}
		})
	}
}

func TestGradeExactMatchOnly(t *testing.T) {
	ch := testChapter(1)
	for _, bad := range []string{"a", " A", "A ", "Ａ"} {
		entry := Grade(ch, map[string]string{"ア": bad}, time.Now())
		if entry.Score != 0 {
			t.Errorf("Grade(%q) scored %d, want 0: comparison must be exact", bad, entry.Score)
		}
	}
}

func TestGradeSnapshotsAreIsolated(t *testing.T) {
	ch := testChapter(2)
	answers := map[string]string{"ア": "A", "イ": "B"}
	entry := Grade(ch, answers, time.Now())

	// Mutating the inputs must not change the recorded entry.
	answers["ア"] = "C"
	ch.CorrectAnswers["イ"] = "B"
	ch.Choices[0] = "Z"
	ch.Segments[0].Text = "changed"

	if entry.UserAnswers["ア"] != "A" {
		t.Errorf("UserAnswers mutated through the input map")
	}
	if entry.CorrectAns["イ"] != "A" {
		t.Errorf("CorrectAns mutated through the chapter")
	}
	if entry.Choices[0] != "A" {
		t.Errorf("Choices mutated through the chapter")
	}
	if entry.Segments[0].Text != "text" {
		t.Errorf("Segments mutated through the chapter")
	}
}

func TestGradeStampsChapterAndDate(t *testing.T) {
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	entry := Grade(testChapter(1), nil, at)

	if entry.ChapterID != 1 || entry.ChapterTitle != "テスト章" {
		t.Errorf("chapter fields = (%d, %q)", entry.ChapterID, entry.ChapterTitle)
	}
	if !entry.Date.Equal(at) {
		t.Errorf("Date = %v, want %v", entry.Date, at)
	}
	if entry.UserID != "" || entry.UserName != "" {
		t.Errorf("identity fields must be left for the caller")
	}
}

func TestCorrectCount(t *testing.T) {
	entry := ScoreEntry{
		UserAnswers: map[string]string{"ア": "A", "イ": "B"},
		CorrectAns:  map[string]string{"ア": "A", "イ": "A", "ウ": "C"},
	}
	if got := entry.CorrectCount(); got != 1 {
		t.Errorf("CorrectCount() = %d, want 1", got)
	}
}
