package catalog

// assistFunc adjusts in-progress answers after the user fills one blank.
// Assist rules are an input convenience only: they change what appears in
// the other slots before submission, never how grading judges them.
type assistFunc func(ch *Chapter, answers map[string]string, changedID, value string)

// assistRules holds per-chapter input-assist policies keyed by chapter id.
// Chapter 6 reuses the same answer across several blanks, so a correctly
// chosen value is propagated to every other blank that shares it.
var assistRules = map[int]assistFunc{
	6: fillMatchingCorrect,
}

// ApplyAssist returns the answer set after recording value for changedID
// and running the chapter's assist rule, if any. The input map is not
// modified.
func ApplyAssist(ch *Chapter, answers map[string]string, changedID, value string) map[string]string {
	next := make(map[string]string, len(answers)+1)
	for k, v := range answers {
		next[k] = v
	}
	next[changedID] = value

	if rule, ok := assistRules[ch.ID]; ok {
		rule(ch, next, changedID, value)
	}
	return next
}

func fillMatchingCorrect(ch *Chapter, answers map[string]string, changedID, value string) {
	if ch.CorrectAnswers[changedID] != value {
		return
	}
	for _, id := range ch.BlanksInOrder {
		if id != changedID && ch.CorrectAnswers[id] == value {
			answers[id] = value
		}
	}
}
