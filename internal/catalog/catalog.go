package catalog

// Segment is one piece of a chapter's question text. Either Text is set
// (literal text, may contain newlines) or BlankID is set (a reference to
// a fill-in slot). A blank ID may appear in the segment list more than
// once but always denotes the same single answer slot.
type Segment struct {
	Text    string `json:"text,omitempty"`
	BlankID string `json:"blank_id,omitempty"`
}

// IsBlank reports whether the segment references a fill-in slot.
func (s Segment) IsBlank() bool {
	return s.BlankID != ""
}

// Chapter is one quiz unit: a question template with blanks, a shared
// choice list and the answer key. Chapters are immutable static
// configuration loaded once at process start.
type Chapter struct {
	ID                 int               `json:"id"`
	Title              string            `json:"title"`
	ProblemDescription string            `json:"problem_description"`
	Segments           []Segment         `json:"question_segments"`
	BlanksInOrder      []string          `json:"blanks_in_order"`
	Choices            []string          `json:"choices"`
	CorrectAnswers     map[string]string `json:"correct_answers"`
}

// IsComplete reports whether answers contains a non-empty choice for
// every blank in the chapter.
func (c *Chapter) IsComplete(answers map[string]string) bool {
	for _, id := range c.BlanksInOrder {
		if answers[id] == "" {
			return false
		}
	}
	return true
}

// Catalog holds the ordered chapter list.
type Catalog struct {
	chapters []Chapter
	byID     map[int]*Chapter
}

// Chapters returns all chapters in catalog order.
func (c *Catalog) Chapters() []Chapter {
	return c.chapters
}

// ByID returns the chapter with the given id, or nil.
func (c *Catalog) ByID(id int) *Chapter {
	return c.byID[id]
}

// Len returns the number of chapters.
func (c *Catalog) Len() int {
	return len(c.chapters)
}
