package cmd

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show per-chapter score statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, _, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		entries, err := st.ScoreRepo().QueryAll(context.Background())
		if err != nil {
			return fmt.Errorf("query scores: %w", err)
		}
		if len(entries) == 0 {
			fmt.Println("No attempts recorded yet.")
			return nil
		}

		type agg struct {
			title    string
			attempts int
			sum      int
			best     int
		}
		byChapter := make(map[int]*agg)
		for _, e := range entries {
			a := byChapter[e.ChapterID]
			if a == nil {
				a = &agg{title: e.ChapterTitle}
				byChapter[e.ChapterID] = a
			}
			a.attempts++
			a.sum += e.Score
			if e.Score > a.best {
				a.best = e.Score
			}
		}

		ids := make([]int, 0, len(byChapter))
		for id := range byChapter {
			ids = append(ids, id)
		}
		sort.Ints(ids)

		fmt.Printf("%-4s  %-24s  %8s  %6s  %6s\n",
			"Ch", "Title", "Attempts", "Avg", "Best")
		fmt.Println(strings.Repeat("─", 58))
		for _, id := range ids {
			a := byChapter[id]
			avg := float64(a.sum) / float64(a.attempts)
			fmt.Printf("%-4d  %-24s  %8d  %5.1f  %5d\n",
				id, truncate(a.title, 24), a.attempts, avg, a.best)
		}
		fmt.Println(strings.Repeat("─", 58))
		fmt.Printf("Total attempts: %d\n", len(entries))

		return nil
	},
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "…"
}
