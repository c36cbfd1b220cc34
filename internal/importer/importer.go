// Package importer converts exam material into topic payload records.
package importer

import (
	"encoding/json"
	"fmt"

	"github.com/p-n-ai/quizbank/internal/question"
)

// Item is one question in the topic payload wire format.
type Item struct {
	ID          string   `json:"id"`
	Category    string   `json:"category"`
	Question    string   `json:"question"`
	Choices     []string `json:"choices"`
	AnswerIndex int      `json:"answer_index"`
	AnswerLabel string   `json:"answer_label"`
	Explanation string   `json:"explanation"`
	ImageName   *string  `json:"image_name"`
}

// check runs an item through the same validation a topic payload gets.
func check(it Item) error {
	data, err := json.Marshal(it)
	if err != nil {
		return err
	}
	var rec question.Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return err
	}
	if _, err := question.Validate(rec); err != nil {
		return fmt.Errorf("question %s: %w", it.ID, err)
	}
	return nil
}

// Encode renders items as an indented topic payload.
func Encode(items []Item) ([]byte, error) {
	if items == nil {
		items = []Item{}
	}
	return json.MarshalIndent(items, "", "    ")
}
