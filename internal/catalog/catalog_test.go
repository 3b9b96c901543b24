package catalog

import (
	"strings"
	"testing"
)

func TestLoadEmbeddedCatalog(t *testing.T) {
	cat, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cat.Len() == 0 {
		t.Fatal("Load() returned an empty catalog")
	}

	for _, ch := range cat.Chapters() {
		if cat.ByID(ch.ID) == nil {
			t.Errorf("ByID(%d) = nil for listed chapter", ch.ID)
		}
	}
	if cat.ByID(9999) != nil {
		t.Error("ByID(9999) should be nil")
	}
}

func TestLoadRejectsInvalidDocuments(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantErr string
	}{
		{
			"malformed json",
			`{"chapters": [`,
			"parse",
		},
		{
			"schema violation",
			`{"chapters": [{"id": "one"}]}`,
			"schema validation",
		},
		{
			"answer not among choices",
			`{"chapters": [{
				"id": 1, "title": "t", "problem_description": "d",
				"question_segments": [{"blank_id": "ア"}],
				"blanks_in_order": ["ア"],
				"choices": ["A", "C"],
				"correct_answers": {"ア": "B"}
			}]}`,
			"not among the choices",
		},
		{
			"duplicate blank id",
			`{"chapters": [{
				"id": 1, "title": "t", "problem_description": "d",
				"question_segments": [{"blank_id": "ア"}],
				"blanks_in_order": ["ア", "ア"],
				"choices": ["A", "B"],
				"correct_answers": {"ア": "A"}
			}]}`,
			"listed twice",
		},
		{
			"answer key size mismatch",
			`{"chapters": [{
				"id": 1, "title": "t", "problem_description": "d",
				"question_segments": [{"blank_id": "ア"}],
				"blanks_in_order": ["ア"],
				"choices": ["A", "B"],
				"correct_answers": {"ア": "A", "イ": "A"}
			}]}`,
			"answer key has",
		},
		{
			"segment references unknown blank",
			`{"chapters": [{
				"id": 1, "title": "t", "problem_description": "d",
				"question_segments": [{"blank_id": "カ"}],
				"blanks_in_order": ["ア"],
				"choices": ["A", "B"],
				"correct_answers": {"ア": "A"}
			}]}`,
			"unknown blank",
		},
		{
			"no blank referenced",
			`{"chapters": [{
				"id": 1, "title": "t", "problem_description": "d",
				"question_segments": [{"text": "no blanks here"}],
				"blanks_in_order": ["ア"],
				"choices": ["A", "B"],
				"correct_answers": {"ア": "A"}
			}]}`,
			"references no blanks",
		},
		{
			"duplicate chapter id",
			`{"chapters": [
				{"id": 1, "title": "t", "problem_description": "d",
				 "question_segments": [{"blank_id": "ア"}],
				 "blanks_in_order": ["ア"], "choices": ["A", "B"],
				 "correct_answers": {"ア": "A"}},
				{"id": 1, "title": "t2", "problem_description": "d",
				 "question_segments": [{"blank_id": "ア"}],
				 "blanks_in_order": ["ア"], "choices": ["A", "B"],
				 "correct_answers": {"ア": "A"}}
			]}`,
			"duplicate chapter id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := load([]byte(tt.doc))
			if err == nil {
				t.Fatal("load() succeeded, want error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want substring %q", err, tt.wantErr)
			}
		})
	}
}

func TestIsComplete(t *testing.T) {
	ch := &Chapter{
		BlanksInOrder:  []string{"ア", "イ"},
		CorrectAnswers: map[string]string{"ア": "A", "イ": "B"},
	}

	if ch.IsComplete(map[string]string{"ア": "A"}) {
		t.Error("partial answers reported complete")
	}
	if ch.IsComplete(map[string]string{"ア": "A", "イ": ""}) {
		t.Error("empty answer reported complete")
	}
	if !ch.IsComplete(map[string]string{"ア": "X", "イ": "Y"}) {
		t.Error("complete (even if wrong) answers reported incomplete")
	}
}

func TestApplyAssistPropagatesSharedAnswers(t *testing.T) {
	cat, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	ch := cat.ByID(6)
	if ch == nil {
		t.Fatal("chapter 6 missing")
	}

	// Find a value the answer key uses for more than one blank.
	counts := map[string][]string{}
	for _, id := range ch.BlanksInOrder {
		v := ch.CorrectAnswers[id]
		counts[v] = append(counts[v], id)
	}
	var shared string
	var slots []string
	for v, ids := range counts {
		if len(ids) > 1 {
			shared, slots = v, ids
			break
		}
	}
	if shared == "" {
		t.Fatal("chapter 6 has no shared correct answer to propagate")
	}

	got := ApplyAssist(ch, map[string]string{}, slots[0], shared)
	for _, id := range slots {
		if got[id] != shared {
			t.Errorf("blank %q = %q, want propagated %q", id, got[id], shared)
		}
	}
}

func TestApplyAssistIgnoresWrongValues(t *testing.T) {
	cat, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	ch := cat.ByID(6)

	blank := ch.BlanksInOrder[0]
	var wrong string
	for _, c := range ch.Choices {
		if c != ch.CorrectAnswers[blank] {
			wrong = c
			break
		}
	}

	got := ApplyAssist(ch, map[string]string{}, blank, wrong)
	if len(got) != 1 || got[blank] != wrong {
		t.Errorf("wrong value must only fill the changed blank, got %v", got)
	}
}

func TestApplyAssistDoesNotMutateInput(t *testing.T) {
	cat, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	ch := cat.ByID(6)

	in := map[string]string{"ア": "昇順"}
	ApplyAssist(ch, in, ch.BlanksInOrder[1], ch.CorrectAnswers[ch.BlanksInOrder[1]])
	if len(in) != 1 {
		t.Errorf("input map mutated: %v", in)
	}
}

func TestApplyAssistOnlyConfiguredChapters(t *testing.T) {
	cat, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	ch := cat.ByID(1)
	if ch == nil {
		t.Fatal("chapter 1 missing")
	}

	blank := ch.BlanksInOrder[0]
	got := ApplyAssist(ch, map[string]string{}, blank, ch.CorrectAnswers[blank])
	if len(got) != 1 {
		t.Errorf("chapter without an assist rule filled extra blanks: %v", got)
	}
}
