package question

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
)

// Validation failure kinds. A *ValidationError wraps exactly one of these.
var (
	ErrMissingField  = errors.New("missing field")
	ErrInvalidShape  = errors.New("invalid shape")
	ErrOutOfRange    = errors.New("out of range")
	ErrLabelMismatch = errors.New("label mismatch")
)

// ValidationError reports the first rule a raw record broke.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Err, e.Field)
}

func (e *ValidationError) Unwrap() error { return e.Err }

func fail(kind error, field string) error {
	return &ValidationError{Field: field, Err: kind}
}

// Record is a single undecoded question object from a topic payload.
type Record map[string]json.RawMessage

// Candidate source fields per canonical field, tried in order.
// The first present, non-null value wins.
var (
	promptFields       = []string{"question", "text"}
	choicesFields      = []string{"choices"}
	correctIndexFields = []string{"answer_index", "correct"}
	labelFields        = []string{"answer_label"}
	idFields           = []string{"id"}
	categoryFields     = []string{"category"}
	explanationFields  = []string{"explanation"}
	imageFields        = []string{"image_name"}
)

// lookup returns the first non-null value among names.
func (r Record) lookup(names []string) (json.RawMessage, bool) {
	for _, name := range names {
		raw, ok := r[name]
		if !ok || isNull(raw) {
			continue
		}
		return raw, true
	}
	return nil, false
}

// stringField decodes the first candidate as a string. A present value of the
// wrong JSON type is an InvalidShape failure for field.
func (r Record) stringField(field string, names []string) (string, bool, error) {
	raw, ok := r.lookup(names)
	if !ok {
		return "", false, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false, fail(ErrInvalidShape, field)
	}
	return s, true, nil
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

// Validate turns a raw record into a Question. Rules run in a fixed order and
// the first failure is returned.
func Validate(r Record) (Question, error) {
	prompt, ok, err := r.stringField("prompt", promptFields)
	if err != nil {
		return Question{}, err
	}
	if !ok {
		return Question{}, fail(ErrMissingField, "prompt")
	}

	rawChoices, ok := r.lookup(choicesFields)
	if !ok {
		return Question{}, fail(ErrMissingField, "choices")
	}
	var choices []string
	if err := json.Unmarshal(rawChoices, &choices); err != nil {
		return Question{}, fail(ErrInvalidShape, "choices")
	}
	if len(choices) != 2 && len(choices) != 4 {
		return Question{}, fail(ErrInvalidShape, "choices")
	}

	rawIndex, ok := r.lookup(correctIndexFields)
	if !ok {
		return Question{}, fail(ErrMissingField, "correctIndex")
	}
	// Some tools write integers as 1.0; any integral number is accepted.
	var n float64
	if err := json.Unmarshal(rawIndex, &n); err != nil || n != math.Trunc(n) {
		return Question{}, fail(ErrInvalidShape, "correctIndex")
	}
	if n < 0 || n >= float64(len(choices)) {
		return Question{}, fail(ErrOutOfRange, "correctIndex")
	}
	correctIndex := int(n)

	derived := LabelFor(correctIndex, len(choices))
	label, ok, err := r.stringField("correctLabel", labelFields)
	if err != nil {
		return Question{}, err
	}
	if ok && label != derived {
		return Question{}, fail(ErrLabelMismatch, "correctLabel")
	}

	// Without an explicit id the prompt text itself is the id. It is not
	// hashed, so identical wording in two topics resolves to one record.
	id, _, err := r.stringField("id", idFields)
	if err != nil {
		return Question{}, err
	}
	if id == "" {
		id = prompt
	}

	category, ok, err := r.stringField("category", categoryFields)
	if err != nil {
		return Question{}, err
	}
	if !ok {
		category = Uncategorized
	}

	explanation, ok, err := r.stringField("explanation", explanationFields)
	if err != nil {
		return Question{}, err
	}
	if !ok {
		return Question{}, fail(ErrMissingField, "explanation")
	}

	image, _, err := r.stringField("imageReference", imageFields)
	if err != nil {
		return Question{}, err
	}

	return Question{
		ID:             id,
		Category:       category,
		Prompt:         prompt,
		Choices:        choices,
		CorrectIndex:   correctIndex,
		CorrectLabel:   derived,
		Explanation:    explanation,
		ImageReference: image,
	}, nil
}
