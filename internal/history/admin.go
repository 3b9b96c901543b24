package history

import (
	"sort"

	"github.com/ytakagi/excelquiz/internal/grading"
)

// unnamedUser labels rows whose identity has neither a display name nor
// a user id.
const unnamedUser = "(名前なし)"

// AdminRow is one line of the admin dashboard's aggregate score table.
type AdminRow struct {
	EntryID      string
	UserName     string
	ChapterID    int
	ChapterTitle string
	Score        int
	Date         string
	Attempt      int
}

// BuildAdminRows orders entries from all users by display name, then
// chapter, then date ascending, and assigns a running attempt counter per
// (identity, chapter) in that order. This ascending count is the
// canonical definition of "Nth attempt".
func BuildAdminRows(entries []grading.ScoreEntry) []AdminRow {
	sorted := append([]grading.ScoreEntry(nil), entries...)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		an, bn := displayName(a), displayName(b)
		if an != bn {
			return an < bn
		}
		if a.ChapterID != b.ChapterID {
			return a.ChapterID < b.ChapterID
		}
		return a.Date.Before(b.Date)
	})

	counts := make(map[attemptKey]int)
	rows := make([]AdminRow, 0, len(sorted))
	for _, e := range sorted {
		k := keyOf(e)
		counts[k]++
		rows = append(rows, AdminRow{
			EntryID:      e.ID,
			UserName:     displayName(e),
			ChapterID:    e.ChapterID,
			ChapterTitle: e.ChapterTitle,
			Score:        e.Score,
			Date:         e.Date.Format("2006/01/02 15:04"),
			Attempt:      counts[k],
		})
	}
	return rows
}

func displayName(e grading.ScoreEntry) string {
	if e.UserName != "" {
		return e.UserName
	}
	if e.UserID != "" {
		return e.UserID
	}
	return unnamedUser
}
