// Package question defines the canonical quiz question and decodes it from
// topic payloads that mix several legacy field-name variants.
package question

import "slices"

// Uncategorized is the category assigned to records that carry none.
const Uncategorized = "未分類"

// Binary-choice answer markers.
const (
	MarkTrue  = "◯"
	MarkFalse = "✕"
)

var labels = [...]string{"A", "B", "C", "D"}

// Question is an immutable, validated quiz question.
// Choices must be treated as read-only once a Question has been built.
type Question struct {
	ID             string   `json:"id"`
	Category       string   `json:"category"`
	Prompt         string   `json:"question"`
	Choices        []string `json:"choices"`
	CorrectIndex   int      `json:"answer_index"`
	CorrectLabel   string   `json:"answer_label"`
	Explanation    string   `json:"explanation"`
	ImageReference string   `json:"image_name,omitempty"`
}

// LabelFor returns the letter label of choice index i in a question with n
// choices, or "" when i is outside the label range.
func LabelFor(i, n int) string {
	if n > len(labels) {
		n = len(labels)
	}
	if i < 0 || i >= n {
		return ""
	}
	return labels[i]
}

// IndexForLabel is the inverse of LabelFor.
func IndexForLabel(label string, n int) (int, bool) {
	for i := 0; i < n && i < len(labels); i++ {
		if labels[i] == label {
			return i, true
		}
	}
	return 0, false
}

// IsCorrect reports whether choice is the correct answer.
func (q Question) IsCorrect(choice int) bool {
	return choice == q.CorrectIndex
}

// IsBinaryChoice reports whether the question uses the ◯/✕ answer form.
func (q Question) IsBinaryChoice() bool {
	return slices.Contains(q.Choices, MarkTrue)
}
