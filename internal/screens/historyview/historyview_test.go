package historyview

import (
	"testing"
	"time"

	"github.com/ytakagi/excelquiz/internal/auth"
	"github.com/ytakagi/excelquiz/internal/catalog"
	"github.com/ytakagi/excelquiz/internal/grading"
	"github.com/ytakagi/excelquiz/internal/history"
)

func testScreen(t *testing.T, log *history.Log) *HistoryScreen {
	t.Helper()
	cat, err := catalog.Load()
	if err != nil {
		t.Fatalf("catalog.Load: %v", err)
	}
	session := &auth.Session{UserID: "user-1", DisplayName: "u"}
	return New(nil, nil, log, nil, session, cat, history.NoFilter)
}

func entryAt(id string, chapter int, at time.Time) grading.ScoreEntry {
	return grading.ScoreEntry{ID: id, UserName: "u", ChapterID: chapter, Date: at}
}

func TestFetchReplacesLog(t *testing.T) {
	log := history.NewLog()
	log.Append(entryAt("optimistic", 1, time.Now()))

	s := testScreen(t, log)
	s.Init()

	t0 := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	fetched := []grading.ScoreEntry{
		entryAt("s1", 1, t0),
		entryAt("s2", 2, t0.Add(time.Hour)),
	}
	s.Update(entriesLoadedMsg{Seq: s.seq, Entries: fetched})

	if log.Len() != 2 {
		t.Fatalf("log.Len = %d: fetch must replace wholesale", log.Len())
	}
	if log.Entries()[0].ID != "s2" {
		t.Errorf("log head = %s, want newest fetched entry", log.Entries()[0].ID)
	}
}

func TestStaleFetchIsDropped(t *testing.T) {
	log := history.NewLog()
	s := testScreen(t, log)
	s.Init()

	stale := []grading.ScoreEntry{entryAt("old", 1, time.Now())}
	s.Update(entriesLoadedMsg{Seq: s.seq - 1, Entries: stale})

	if log.Len() != 0 {
		t.Errorf("stale response replaced the log: %d entries", log.Len())
	}
	if !s.loading {
		t.Error("screen stopped loading on a stale response")
	}
}

func TestSignedOutScreenDoesNotFetch(t *testing.T) {
	log := history.NewLog()
	cat, err := catalog.Load()
	if err != nil {
		t.Fatalf("catalog.Load: %v", err)
	}
	s := New(nil, nil, log, nil, nil, cat, history.NoFilter)

	if cmd := s.Init(); cmd != nil {
		t.Error("Init returned a fetch command without a session")
	}
}

func TestVisibleFilterKeepsAttemptNumbers(t *testing.T) {
	log := history.NewLog()
	t0 := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	log.ReplaceAll([]grading.ScoreEntry{
		entryAt("a1", 1, t0),
		entryAt("b1", 2, t0.Add(time.Minute)),
		entryAt("a2", 1, t0.Add(2*time.Minute)),
	})

	s := testScreen(t, log)
	s.filter = 1

	rows := s.visible()
	if len(rows) != 2 {
		t.Fatalf("visible rows = %d, want 2", len(rows))
	}
	// Newest first: a2 is the second attempt, a1 the first.
	if rows[0].entry.ID != "a2" || rows[0].attempt != 2 {
		t.Errorf("rows[0] = %s attempt %d, want a2 attempt 2", rows[0].entry.ID, rows[0].attempt)
	}
	if rows[1].entry.ID != "a1" || rows[1].attempt != 1 {
		t.Errorf("rows[1] = %s attempt %d, want a1 attempt 1", rows[1].entry.ID, rows[1].attempt)
	}
}

func TestCycleFilterWalksChaptersThenAll(t *testing.T) {
	s := testScreen(t, history.NewLog())

	chapters := s.catalog.Chapters()
	if s.filter != history.NoFilter {
		t.Fatalf("initial filter = %d", s.filter)
	}

	for _, ch := range chapters {
		s.cycleFilter()
		if s.filter != ch.ID {
			t.Fatalf("filter = %d, want chapter %d", s.filter, ch.ID)
		}
	}

	s.cycleFilter()
	if s.filter != history.NoFilter {
		t.Errorf("filter = %d after the last chapter, want all", s.filter)
	}
}
