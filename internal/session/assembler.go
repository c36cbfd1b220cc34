// Package session assembles quiz sessions from previously recorded progress
// and drives a session answer by answer.
package session

import (
	"errors"

	"github.com/p-n-ai/quizbank/internal/question"
)

// DefaultWrongReplayLimit caps wrong-answer replay sessions.
const DefaultWrongReplayLimit = 20

// ErrEmptyReplay means no recorded id resolved to a known question. Callers
// should show a "nothing to review" state instead of an empty session.
var ErrEmptyReplay = errors.New("nothing to replay")

// QuestionLoader lists topics and loads their full question sets.
type QuestionLoader interface {
	TopicIDs() []string
	LoadAllQuestions(topicID string) []question.Question
}

// WrongAnswerSource supplies wrong-answer ids, oldest mistake first.
type WrongAnswerSource interface {
	OrderedIDsOldestFirst() []string
}

// BookmarkSource supplies bookmarked ids in a stable order.
type BookmarkSource interface {
	OrderedIDs() []string
}

// Assembler builds replay sessions across all topics.
type Assembler struct {
	loader     QuestionLoader
	wrongLimit int
}

// NewAssembler creates an assembler. wrongLimit <= 0 uses DefaultWrongReplayLimit.
func NewAssembler(loader QuestionLoader, wrongLimit int) *Assembler {
	if wrongLimit <= 0 {
		wrongLimit = DefaultWrongReplayLimit
	}
	return &Assembler{loader: loader, wrongLimit: wrongLimit}
}

// BuildReplaySession resolves orderedIDs against every topic and keeps the
// input order. Unknown ids are dropped. maxSize <= 0 means no limit.
func (a *Assembler) BuildReplaySession(orderedIDs []string, maxSize int) ([]question.Question, error) {
	if len(orderedIDs) == 0 {
		return nil, ErrEmptyReplay
	}

	index := a.index()
	qs := make([]question.Question, 0, len(orderedIDs))
	for _, id := range orderedIDs {
		if q, ok := index[id]; ok {
			qs = append(qs, q)
		}
	}

	if len(qs) == 0 {
		return nil, ErrEmptyReplay
	}
	if maxSize > 0 && len(qs) > maxSize {
		qs = qs[:maxSize]
	}
	return qs, nil
}

// WrongAnswerReplay replays recorded mistakes, oldest first, up to the
// assembler's wrong-answer limit.
func (a *Assembler) WrongAnswerReplay(src WrongAnswerSource) ([]question.Question, error) {
	return a.BuildReplaySession(src.OrderedIDsOldestFirst(), a.wrongLimit)
}

// BookmarkReplay replays every bookmarked question.
func (a *Assembler) BookmarkReplay(src BookmarkSource) ([]question.Question, error) {
	return a.BuildReplaySession(src.OrderedIDs(), 0)
}

// index maps id to the first question seen with that id, walking topics in
// catalog order. Ids are not namespaced per topic, so later duplicates lose.
func (a *Assembler) index() map[string]question.Question {
	index := make(map[string]question.Question)
	for _, topicID := range a.loader.TopicIDs() {
		for _, q := range a.loader.LoadAllQuestions(topicID) {
			if _, seen := index[q.ID]; !seen {
				index[q.ID] = q
			}
		}
	}
	return index
}
