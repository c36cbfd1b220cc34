package question_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/p-n-ai/quizbank/internal/question"
)

func record(t *testing.T, src string) question.Record {
	t.Helper()
	var r question.Record
	if err := json.Unmarshal([]byte(src), &r); err != nil {
		t.Fatalf("bad fixture %s: %v", src, err)
	}
	return r
}

func TestValidate_Valid(t *testing.T) {
	q, err := question.Validate(record(t, `{
		"id": "class2_q1",
		"category": "危険物の性状",
		"question": "第2類の危険物はどれか。",
		"choices": ["A. 硫黄", "B. ナトリウム", "C. 硝酸", "D. ガソリン"],
		"answer_index": 0,
		"answer_label": "A",
		"explanation": "硫黄は可燃性固体である。",
		"image_name": "sulfur"
	}`))
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if q.ID != "class2_q1" {
		t.Errorf("ID = %q, want class2_q1", q.ID)
	}
	if q.Category != "危険物の性状" {
		t.Errorf("Category = %q", q.Category)
	}
	if q.CorrectLabel != "A" {
		t.Errorf("CorrectLabel = %q, want A", q.CorrectLabel)
	}
	if q.ImageReference != "sulfur" {
		t.Errorf("ImageReference = %q, want sulfur", q.ImageReference)
	}
	if len(q.Choices) != 4 {
		t.Errorf("len(Choices) = %d, want 4", len(q.Choices))
	}
}

func TestValidate_DerivedLabel(t *testing.T) {
	for _, n := range []int{2, 4} {
		choices := []string{"a", "b", "c", "d"}[:n]
		for i := range n {
			raw, _ := json.Marshal(map[string]any{
				"question":     "Q",
				"choices":      choices,
				"answer_index": i,
				"explanation":  "E",
			})
			var r question.Record
			_ = json.Unmarshal(raw, &r)

			q, err := question.Validate(r)
			if err != nil {
				t.Fatalf("n=%d i=%d: Validate() error = %v", n, i, err)
			}
			want := []string{"A", "B", "C", "D"}[i]
			if q.CorrectLabel != want {
				t.Errorf("n=%d i=%d: CorrectLabel = %q, want %q", n, i, q.CorrectLabel, want)
			}
		}
	}
}

func TestValidate_LegacyFields(t *testing.T) {
	q, err := question.Validate(record(t, `{
		"text": "灯油は水に溶ける。",
		"choices": ["◯", "✕"],
		"correct": 1,
		"explanation": "溶けない。"
	}`))
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if q.Prompt != "灯油は水に溶ける。" {
		t.Errorf("Prompt = %q", q.Prompt)
	}
	if q.CorrectIndex != 1 || q.CorrectLabel != "B" {
		t.Errorf("CorrectIndex/Label = %d/%q, want 1/B", q.CorrectIndex, q.CorrectLabel)
	}
	if q.ID != q.Prompt {
		t.Errorf("ID = %q, want prompt text as fallback", q.ID)
	}
	if q.Category != question.Uncategorized {
		t.Errorf("Category = %q, want %q", q.Category, question.Uncategorized)
	}
	if !q.IsBinaryChoice() {
		t.Error("IsBinaryChoice() = false, want true")
	}
}

func TestValidate_FirstNonNullWins(t *testing.T) {
	q, err := question.Validate(record(t, `{
		"question": null,
		"text": "fallback prompt",
		"choices": ["x", "y"],
		"answer_index": null,
		"correct": 0,
		"id": "",
		"explanation": "E"
	}`))
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if q.Prompt != "fallback prompt" {
		t.Errorf("Prompt = %q, want fallback prompt", q.Prompt)
	}
	if q.CorrectIndex != 0 {
		t.Errorf("CorrectIndex = %d, want 0", q.CorrectIndex)
	}
	if q.ID != "fallback prompt" {
		t.Errorf("ID = %q, want prompt for empty id", q.ID)
	}

	q, err = question.Validate(record(t, `{
		"question": "primary", "text": "secondary",
		"choices": ["x", "y"], "answer_index": 1, "correct": 0, "explanation": "E"
	}`))
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if q.Prompt != "primary" || q.CorrectIndex != 1 {
		t.Errorf("got prompt %q index %d, want primary/1", q.Prompt, q.CorrectIndex)
	}
}

func TestValidate_Failures(t *testing.T) {
	tests := []struct {
		name      string
		src       string
		wantKind  error
		wantField string
	}{
		{
			name:      "missing prompt",
			src:       `{"choices": ["a","b"], "answer_index": 0, "explanation": "E"}`,
			wantKind:  question.ErrMissingField,
			wantField: "prompt",
		},
		{
			name:      "missing choices",
			src:       `{"question": "Q", "answer_index": 0, "explanation": "E"}`,
			wantKind:  question.ErrMissingField,
			wantField: "choices",
		},
		{
			name:      "one choice",
			src:       `{"question": "Q", "choices": ["a"], "answer_index": 0, "explanation": "E"}`,
			wantKind:  question.ErrInvalidShape,
			wantField: "choices",
		},
		{
			name:      "three choices",
			src:       `{"question": "Q", "choices": ["a","b","c"], "answer_index": 0, "explanation": "E"}`,
			wantKind:  question.ErrInvalidShape,
			wantField: "choices",
		},
		{
			name:      "five choices",
			src:       `{"question": "Q", "choices": ["a","b","c","d","e"], "answer_index": 0, "explanation": "E"}`,
			wantKind:  question.ErrInvalidShape,
			wantField: "choices",
		},
		{
			name:      "choices not a list",
			src:       `{"question": "Q", "choices": "a,b", "answer_index": 0, "explanation": "E"}`,
			wantKind:  question.ErrInvalidShape,
			wantField: "choices",
		},
		{
			name:      "missing index",
			src:       `{"question": "Q", "choices": ["a","b"], "explanation": "E"}`,
			wantKind:  question.ErrMissingField,
			wantField: "correctIndex",
		},
		{
			name:      "index too large",
			src:       `{"question": "Q", "choices": ["a","b"], "answer_index": 2, "explanation": "E"}`,
			wantKind:  question.ErrOutOfRange,
			wantField: "correctIndex",
		},
		{
			name:      "negative index",
			src:       `{"question": "Q", "choices": ["a","b","c","d"], "correct": -1, "explanation": "E"}`,
			wantKind:  question.ErrOutOfRange,
			wantField: "correctIndex",
		},
		{
			name:      "fractional index",
			src:       `{"question": "Q", "choices": ["a","b"], "answer_index": 0.5, "explanation": "E"}`,
			wantKind:  question.ErrInvalidShape,
			wantField: "correctIndex",
		},
		{
			name:      "index as string",
			src:       `{"question": "Q", "choices": ["a","b"], "answer_index": "1", "explanation": "E"}`,
			wantKind:  question.ErrInvalidShape,
			wantField: "correctIndex",
		},
		{
			name:      "integral float out of range",
			src:       `{"question": "Q", "choices": ["a","b"], "answer_index": 2.0, "explanation": "E"}`,
			wantKind:  question.ErrOutOfRange,
			wantField: "correctIndex",
		},
		{
			name:      "label mismatch",
			src:       `{"question": "Q", "choices": ["a","b","c","d"], "answer_index": 2, "answer_label": "B", "explanation": "E"}`,
			wantKind:  question.ErrLabelMismatch,
			wantField: "correctLabel",
		},
		{
			name:      "missing explanation",
			src:       `{"question": "Q", "choices": ["a","b"], "answer_index": 0}`,
			wantKind:  question.ErrMissingField,
			wantField: "explanation",
		},
		{
			name:      "prompt checked before choices",
			src:       `{"choices": ["a"]}`,
			wantKind:  question.ErrMissingField,
			wantField: "prompt",
		},
		{
			name:      "shape checked before index",
			src:       `{"question": "Q", "choices": ["a","b","c"]}`,
			wantKind:  question.ErrInvalidShape,
			wantField: "choices",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := question.Validate(record(t, tt.src))
			if !errors.Is(err, tt.wantKind) {
				t.Fatalf("Validate() error = %v, want %v", err, tt.wantKind)
			}
			var verr *question.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("error %T is not *ValidationError", err)
			}
			if verr.Field != tt.wantField {
				t.Errorf("Field = %q, want %q", verr.Field, tt.wantField)
			}
		})
	}
}

func TestValidate_IntegralFloatIndex(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want int
	}{
		{name: "float with zero fraction", src: `{"question": "Q", "choices": ["a","b","c","d"], "answer_index": 1.0, "explanation": "E"}`, want: 1},
		{name: "exponent form", src: `{"question": "Q", "choices": ["a","b","c","d"], "correct": 3e0, "explanation": "E"}`, want: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := question.Validate(record(t, tt.src))
			if err != nil {
				t.Fatalf("Validate() error = %v", err)
			}
			if q.CorrectIndex != tt.want || q.CorrectLabel != question.LabelFor(tt.want, 4) {
				t.Errorf("got index %d label %q, want %d", q.CorrectIndex, q.CorrectLabel, tt.want)
			}
		})
	}
}

func TestValidate_NullLabelIgnored(t *testing.T) {
	q, err := question.Validate(record(t, `{"question": "Q", "choices": ["a","b"], "answer_index": 1, "answer_label": null, "explanation": "E"}`))
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if q.CorrectLabel != "B" {
		t.Errorf("CorrectLabel = %q, want B", q.CorrectLabel)
	}
}

func TestLabelFor(t *testing.T) {
	if got := question.LabelFor(3, 2); got != "" {
		t.Errorf("LabelFor(3, 2) = %q, want empty", got)
	}
	if got := question.LabelFor(3, 4); got != "D" {
		t.Errorf("LabelFor(3, 4) = %q, want D", got)
	}
	if i, ok := question.IndexForLabel("C", 4); !ok || i != 2 {
		t.Errorf("IndexForLabel(C, 4) = %d, %v", i, ok)
	}
	if _, ok := question.IndexForLabel("C", 2); ok {
		t.Error("IndexForLabel(C, 2) should fail")
	}
}
