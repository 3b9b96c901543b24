package catalog

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

func bytesReader(b []byte) *bytes.Reader { return bytes.NewReader(b) }

//go:embed chapters.json
var chaptersJSON []byte

//go:embed chapters.schema.json
var chaptersSchemaJSON []byte

// Load parses and validates the embedded chapter catalog. Any defect in
// the static content (malformed JSON, schema violation, inconsistent
// blank/answer-key sets) is reported here, at process start, so that
// grading can assume a well-formed chapter.
func Load() (*Catalog, error) {
	return load(chaptersJSON)
}

func load(data []byte) (*Catalog, error) {
	if err := validateSchema(data); err != nil {
		return nil, fmt.Errorf("chapter catalog: %w", err)
	}

	var doc struct {
		Chapters []Chapter `json:"chapters"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("chapter catalog: parse: %w", err)
	}

	cat := &Catalog{
		chapters: doc.Chapters,
		byID:     make(map[int]*Chapter, len(doc.Chapters)),
	}
	for i := range cat.chapters {
		ch := &cat.chapters[i]
		if err := ch.validate(); err != nil {
			return nil, fmt.Errorf("chapter %d (%s): %w", ch.ID, ch.Title, err)
		}
		if _, dup := cat.byID[ch.ID]; dup {
			return nil, fmt.Errorf("chapter catalog: duplicate chapter id %d", ch.ID)
		}
		cat.byID[ch.ID] = ch
	}
	return cat, nil
}

// validateSchema checks the raw catalog document against the embedded
// JSON schema before any structural interpretation.
func validateSchema(data []byte) error {
	schemaDoc, err := jsonschema.UnmarshalJSON(bytesReader(chaptersSchemaJSON))
	if err != nil {
		return fmt.Errorf("parse schema: %w", err)
	}

	c := jsonschema.NewCompiler()
	if err := c.AddResource("catalog://chapters.schema.json", schemaDoc); err != nil {
		return fmt.Errorf("add schema resource: %w", err)
	}
	compiled, err := c.Compile("catalog://chapters.schema.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}

	parsed, err := jsonschema.UnmarshalJSON(bytesReader(data))
	if err != nil {
		return fmt.Errorf("parse: %w", err)
	}
	if err := compiled.Validate(parsed); err != nil {
		return fmt.Errorf("schema validation: %w", err)
	}
	return nil
}

// validate enforces the structural invariants the schema cannot express:
// blanksInOrder is non-empty and duplicate-free, its ID set equals the
// answer-key ID set, every blank referenced from the segments is a known
// slot, and every correct answer is one of the chapter's choices.
func (c *Chapter) validate() error {
	if len(c.BlanksInOrder) == 0 {
		return fmt.Errorf("no blanks defined")
	}

	slots := make(map[string]bool, len(c.BlanksInOrder))
	for _, id := range c.BlanksInOrder {
		if slots[id] {
			return fmt.Errorf("blank %q listed twice in blanks_in_order", id)
		}
		slots[id] = true
	}

	if len(c.CorrectAnswers) != len(c.BlanksInOrder) {
		return fmt.Errorf("answer key has %d entries for %d blanks",
			len(c.CorrectAnswers), len(c.BlanksInOrder))
	}

	choices := make(map[string]bool, len(c.Choices))
	for _, choice := range c.Choices {
		choices[choice] = true
	}

	for _, id := range c.BlanksInOrder {
		answer, ok := c.CorrectAnswers[id]
		if !ok {
			return fmt.Errorf("blank %q has no answer key entry", id)
		}
		if !choices[answer] {
			return fmt.Errorf("answer %q for blank %q is not among the choices", answer, id)
		}
	}

	referenced := false
	for _, seg := range c.Segments {
		if !seg.IsBlank() {
			continue
		}
		referenced = true
		if !slots[seg.BlankID] {
			return fmt.Errorf("segment references unknown blank %q", seg.BlankID)
		}
	}
	if !referenced {
		return fmt.Errorf("question text references no blanks")
	}
	return nil
}
