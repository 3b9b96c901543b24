// Package advice turns grading and history summaries into requests to
// the text-generation collaborator and sanitizes what comes back. One
// attempt per request, no retry; a failure means "advice unavailable",
// never a blocked view.
package advice

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ytakagi/excelquiz/internal/grading"
	"github.com/ytakagi/excelquiz/internal/history"
	"github.com/ytakagi/excelquiz/internal/llm"
)

const (
	system = "あなたはExcel研修の講師です。学習者を励ましつつ、" +
		"弱点を具体的に指摘する短いアドバイスを日本語で書いてください。" +
		"見出しや強調記号（* や _）は使わず、プレーンテキストで答えてください。"

	maxTokens = 512
)

// Adviser requests feedback text from a Provider.
type Adviser struct {
	provider llm.Provider
	timeout  time.Duration
}

// New creates an Adviser. provider may be nil, in which case every
// request reports unavailable.
func New(provider llm.Provider) *Adviser {
	return &Adviser{provider: provider, timeout: 30 * time.Second}
}

// Available reports whether a provider is configured.
func (a *Adviser) Available() bool {
	return a != nil && a.provider != nil
}

// ForResult generates advice for a single graded attempt.
func (a *Adviser) ForResult(ctx context.Context, entry grading.ScoreEntry) (string, error) {
	payload := resultPayload{
		ChapterTitle:   entry.ChapterTitle,
		Score:          entry.Score,
		UserAnswers:    entry.UserAnswers,
		CorrectAnswers: entry.CorrectAns,
	}
	prompt := "次の採点結果をもとに、学習者への100〜200字程度のアドバイスを書いてください。\n"
	return a.request(llm.WithPurpose(ctx, "result-advice"), prompt, payload)
}

// ForHistory generates advice over the user's score history.
func (a *Adviser) ForHistory(ctx context.Context, entries []grading.ScoreEntry) (string, error) {
	attempts := history.AttemptNumbers(entries)
	summary := make([]historyItem, len(entries))
	for i, e := range entries {
		summary[i] = historyItem{
			ChapterTitle: e.ChapterTitle,
			Score:        e.Score,
			Attempt:      attempts[i],
			Date:         e.Date.Format("2006-01-02"),
		}
	}
	prompt := "次の学習履歴をもとに、今後の学習方針についての100〜200字程度のアドバイスを書いてください。\n"
	return a.request(llm.WithPurpose(ctx, "history-advice"), prompt, summary)
}

func (a *Adviser) request(ctx context.Context, prompt string, payload any) (string, error) {
	if !a.Available() {
		return "", fmt.Errorf("no advice provider configured")
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encode advice context: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	resp, err := a.provider.Generate(ctx, llm.Request{
		System:    system,
		Prompt:    prompt + string(data),
		MaxTokens: maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("generate advice: %w", err)
	}

	text := StripEmphasis(resp.Text)
	if text == "" {
		return "", fmt.Errorf("advice response was empty")
	}
	return text, nil
}

type resultPayload struct {
	ChapterTitle   string            `json:"chapter_title"`
	Score          int               `json:"score"`
	UserAnswers    map[string]string `json:"user_answers"`
	CorrectAnswers map[string]string `json:"correct_answers"`
}

type historyItem struct {
	ChapterTitle string `json:"chapter_title"`
	Score        int    `json:"score"`
	Attempt      int    `json:"attempt"`
	Date         string `json:"date"`
}
