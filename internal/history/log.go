// Package history manages the ordered collection of graded attempts for
// the current identity, and the aggregate view the admin console shows.
//
// The local log is a cache over the durable store: appends are optimistic
// hints, a fetch result replaces the whole collection. The two are never
// merged entry by entry.
package history

import (
	"sort"

	"github.com/ytakagi/excelquiz/internal/grading"
)

// NoFilter selects all chapters in FilterByChapter.
const NoFilter = 0

// Log is the newest-first collection of score entries for one identity.
type Log struct {
	entries []grading.ScoreEntry
}

// NewLog creates an empty log.
func NewLog() *Log {
	return &Log{}
}

// Append adds a freshly graded entry to the front of the log. The caller
// persists the entry durably on its own; the local add happens regardless
// of whether that write succeeds.
func (l *Log) Append(e grading.ScoreEntry) {
	l.entries = append([]grading.ScoreEntry{e}, l.entries...)
}

// ReplaceAll reconciles the log with a full fetch from the durable store.
// The previous contents, including optimistic appends, are discarded.
// Entries are kept newest first.
func (l *Log) ReplaceAll(entries []grading.ScoreEntry) {
	l.entries = append([]grading.ScoreEntry(nil), entries...)
	sort.SliceStable(l.entries, func(i, j int) bool {
		return l.entries[i].Date.After(l.entries[j].Date)
	})
}

// Entries returns a copy of the log, newest first.
func (l *Log) Entries() []grading.ScoreEntry {
	return append([]grading.ScoreEntry(nil), l.entries...)
}

// Len returns the number of entries.
func (l *Log) Len() int {
	return len(l.entries)
}

// Clear empties the log. Destructive and local-only; callers confirm with
// the user first. Durable rows are not touched and reappear on the next
// fetch.
func (l *Log) Clear() {
	l.entries = nil
}

// FilterByChapter returns the entries for one chapter, preserving order.
// chapterID NoFilter means unfiltered.
func FilterByChapter(entries []grading.ScoreEntry, chapterID int) []grading.ScoreEntry {
	if chapterID == NoFilter {
		return append([]grading.ScoreEntry(nil), entries...)
	}
	var out []grading.ScoreEntry
	for _, e := range entries {
		if e.ChapterID == chapterID {
			out = append(out, e)
		}
	}
	return out
}

// GroupByChapter buckets entries by chapter id. Entries within a group
// are ordered newest first. Flattening the groups yields exactly the
// input entry set.
func GroupByChapter(entries []grading.ScoreEntry) map[int][]grading.ScoreEntry {
	groups := make(map[int][]grading.ScoreEntry)
	for _, e := range entries {
		groups[e.ChapterID] = append(groups[e.ChapterID], e)
	}
	for id := range groups {
		g := groups[id]
		sort.SliceStable(g, func(i, j int) bool {
			return g[i].Date.After(g[j].Date)
		})
	}
	return groups
}

// AttemptNumbers assigns each entry its 1-based attempt ordinal among all
// entries for the same (identity, chapter), counted ascending by date:
// the oldest attempt is 1. The result is parallel to entries, which may
// be in any order; display order and attempt number are independent.
func AttemptNumbers(entries []grading.ScoreEntry) []int {
	idx := make([]int, len(entries))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return entries[idx[a]].Date.Before(entries[idx[b]].Date)
	})

	counts := make(map[attemptKey]int)
	out := make([]int, len(entries))
	for _, i := range idx {
		k := keyOf(entries[i])
		counts[k]++
		out[i] = counts[k]
	}
	return out
}

type attemptKey struct {
	identity  string
	chapterID int
}

// keyOf resolves the identity the same way for every view: display name
// when set, else the user id. Attempt numbers from the personal history
// and the admin table must agree on the same data.
func keyOf(e grading.ScoreEntry) attemptKey {
	identity := e.UserName
	if identity == "" {
		identity = e.UserID
	}
	return attemptKey{identity: identity, chapterID: e.ChapterID}
}
