package history

import (
	"testing"
	"time"

	"github.com/ytakagi/excelquiz/internal/grading"
)

func entry(id string, user string, chapter int, score int, at time.Time) grading.ScoreEntry {
	return grading.ScoreEntry{
		ID:           id,
		UserName:     user,
		ChapterID:    chapter,
		ChapterTitle: "章",
		Score:        score,
		Date:         at,
	}
}

var t0 = time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

func TestLogAppendIsNewestFirst(t *testing.T) {
	l := NewLog()
	l.Append(entry("a", "u", 1, 50, t0))
	l.Append(entry("b", "u", 1, 80, t0.Add(time.Hour)))

	got := l.Entries()
	if len(got) != 2 || got[0].ID != "b" || got[1].ID != "a" {
		t.Errorf("Entries() order = %v", ids(got))
	}
}

func TestLogReplaceAllDiscardsOptimisticAppends(t *testing.T) {
	l := NewLog()
	l.Append(entry("local", "u", 1, 50, t0.Add(2*time.Hour)))

	l.ReplaceAll([]grading.ScoreEntry{
		entry("s1", "u", 1, 40, t0),
		entry("s2", "u", 2, 60, t0.Add(time.Hour)),
	})

	got := l.Entries()
	if len(got) != 2 {
		t.Fatalf("Len = %d, want 2: fetch must replace, never merge", len(got))
	}
	if got[0].ID != "s2" || got[1].ID != "s1" {
		t.Errorf("ReplaceAll order = %v, want newest first", ids(got))
	}
}

func TestLogClearIsLocalOnly(t *testing.T) {
	l := NewLog()
	fetched := []grading.ScoreEntry{entry("s1", "u", 1, 40, t0)}
	l.ReplaceAll(fetched)
	l.Clear()

	if l.Len() != 0 {
		t.Fatalf("Len = %d after Clear", l.Len())
	}

	// A later fetch brings the durable rows back.
	l.ReplaceAll(fetched)
	if l.Len() != 1 {
		t.Errorf("entries did not reappear after re-fetch")
	}
}

func TestLogEntriesReturnsCopy(t *testing.T) {
	l := NewLog()
	l.Append(entry("a", "u", 1, 50, t0))

	got := l.Entries()
	got[0].ID = "mutated"
	if l.Entries()[0].ID != "a" {
		t.Error("Entries() exposed internal storage")
	}
}

func TestFilterByChapter(t *testing.T) {
	entries := []grading.ScoreEntry{
		entry("a", "u", 1, 50, t0),
		entry("b", "u", 2, 60, t0.Add(time.Hour)),
		entry("c", "u", 1, 70, t0.Add(2*time.Hour)),
	}

	got := FilterByChapter(entries, 1)
	if len(got) != 2 || got[0].ID != "a" || got[1].ID != "c" {
		t.Errorf("FilterByChapter(1) = %v", ids(got))
	}

	all := FilterByChapter(entries, NoFilter)
	if len(all) != 3 {
		t.Errorf("FilterByChapter(NoFilter) dropped entries: %v", ids(all))
	}
}

func TestGroupByChapterPreservesEntrySet(t *testing.T) {
	entries := []grading.ScoreEntry{
		entry("a", "u", 1, 50, t0),
		entry("b", "u", 2, 60, t0.Add(time.Hour)),
		entry("c", "u", 1, 70, t0.Add(2*time.Hour)),
	}

	groups := GroupByChapter(entries)
	if len(groups) != 2 {
		t.Fatalf("got %d groups, want 2", len(groups))
	}

	total := 0
	seen := map[string]bool{}
	for _, g := range groups {
		for _, e := range g {
			total++
			seen[e.ID] = true
		}
	}
	if total != 3 || !seen["a"] || !seen["b"] || !seen["c"] {
		t.Errorf("flattened groups != input set, got %d entries", total)
	}

	g1 := groups[1]
	if g1[0].ID != "c" || g1[1].ID != "a" {
		t.Errorf("group order = %v, want newest first", ids(g1))
	}
}

func TestAttemptNumbersCountAscendingByDate(t *testing.T) {
	// Presented newest-first, as the log stores them.
	entries := []grading.ScoreEntry{
		entry("third", "u", 1, 90, t0.Add(2*time.Hour)),
		entry("second", "u", 1, 70, t0.Add(time.Hour)),
		entry("first", "u", 1, 50, t0),
	}

	got := AttemptNumbers(entries)
	want := []int{3, 2, 1}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("AttemptNumbers[%d] = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestAttemptNumbersArePerUserAndChapter(t *testing.T) {
	entries := []grading.ScoreEntry{
		entry("a", "alice", 1, 50, t0),
		entry("b", "alice", 2, 60, t0.Add(time.Minute)),
		entry("c", "bob", 1, 70, t0.Add(2*time.Minute)),
		entry("d", "alice", 1, 80, t0.Add(3*time.Minute)),
	}

	got := AttemptNumbers(entries)
	want := []int{1, 1, 1, 2}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("AttemptNumbers[%d] = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestAttemptNumbersFallBackToUserID(t *testing.T) {
	e1 := entry("a", "", 1, 50, t0)
	e1.UserID = "uid-1"
	e2 := entry("b", "", 1, 60, t0.Add(time.Hour))
	e2.UserID = "uid-1"

	got := AttemptNumbers([]grading.ScoreEntry{e2, e1})
	if got[0] != 2 || got[1] != 1 {
		t.Errorf("AttemptNumbers = %v, want [2 1]", got)
	}
}

func TestBuildAdminRows(t *testing.T) {
	entries := []grading.ScoreEntry{
		entry("b2", "bob", 1, 70, t0.Add(3*time.Hour)),
		entry("a1", "alice", 2, 60, t0.Add(2*time.Hour)),
		entry("b1", "bob", 1, 40, t0.Add(time.Hour)),
		entry("a0", "alice", 1, 50, t0),
	}

	rows := BuildAdminRows(entries)
	if len(rows) != 4 {
		t.Fatalf("got %d rows, want 4", len(rows))
	}

	// Name asc, then chapter asc, then date asc.
	wantOrder := []string{"a0", "a1", "b1", "b2"}
	for i, id := range wantOrder {
		if rows[i].EntryID != id {
			t.Errorf("rows[%d].EntryID = %s, want %s", i, rows[i].EntryID, id)
		}
	}

	wantAttempts := []int{1, 1, 1, 2}
	for i, n := range wantAttempts {
		if rows[i].Attempt != n {
			t.Errorf("rows[%d].Attempt = %d, want %d", i, rows[i].Attempt, n)
		}
	}

	if rows[0].Date != "2025/03/01 10:00" {
		t.Errorf("Date format = %q", rows[0].Date)
	}
}

func TestAdminRowsAgreeWithHistoryAttempts(t *testing.T) {
	entries := []grading.ScoreEntry{
		entry("x3", "carol", 3, 90, t0.Add(2*time.Hour)),
		entry("x2", "carol", 3, 75, t0.Add(time.Hour)),
		entry("x1", "carol", 3, 60, t0),
	}

	attempts := AttemptNumbers(entries)
	rows := BuildAdminRows(entries)

	byID := map[string]int{}
	for _, r := range rows {
		byID[r.EntryID] = r.Attempt
	}
	for i, e := range entries {
		if byID[e.ID] != attempts[i] {
			t.Errorf("entry %s: admin attempt %d != history attempt %d",
				e.ID, byID[e.ID], attempts[i])
		}
	}
}

func TestBuildAdminRowsUnnamedUser(t *testing.T) {
	rows := BuildAdminRows([]grading.ScoreEntry{entry("a", "", 1, 10, t0)})
	if rows[0].UserName != "(名前なし)" {
		t.Errorf("UserName = %q", rows[0].UserName)
	}
}

func ids(entries []grading.ScoreEntry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.ID
	}
	return out
}
