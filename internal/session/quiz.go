package session

import (
	"errors"
	"fmt"

	"github.com/p-n-ai/quizbank/internal/question"
)

// Score bands reported by Result.
const (
	BandExcellent    = "excellent"
	BandPassing      = "passing"
	BandIntroductory = "introductory"
)

var (
	ErrQuizFinished  = errors.New("quiz already finished")
	ErrInvalidChoice = errors.New("invalid choice")
)

// AnswerRecorder receives the outcome of each answered question.
type AnswerRecorder interface {
	RecordWrong(id string)
	RemoveRecord(id string)
}

// Feedback describes a graded answer.
type Feedback struct {
	QuestionID   string `json:"question_id"`
	Correct      bool   `json:"correct"`
	CorrectIndex int    `json:"correct_index"`
	CorrectLabel string `json:"correct_label"`
	Explanation  string `json:"explanation"`
}

// Result summarizes a finished quiz.
type Result struct {
	Correct    int     `json:"correct"`
	Total      int     `json:"total"`
	Percentage float64 `json:"percentage"`
	Band       string  `json:"band"`
}

// Quiz walks an ordered question list one answer at a time.
// A Quiz is not safe for concurrent use.
type Quiz struct {
	questions []question.Question
	recorder  AnswerRecorder
	pos       int
	correct   int
}

// NewQuiz starts a quiz over questions. recorder may be nil.
func NewQuiz(questions []question.Question, recorder AnswerRecorder) *Quiz {
	return &Quiz{questions: questions, recorder: recorder}
}

// Current returns the question awaiting an answer.
func (q *Quiz) Current() (question.Question, bool) {
	if q.Done() {
		return question.Question{}, false
	}
	return q.questions[q.pos], true
}

// Position returns the zero-based index of the current question.
func (q *Quiz) Position() int { return q.pos }

// Len returns the number of questions in the quiz.
func (q *Quiz) Len() int { return len(q.questions) }

// Done reports whether every question has been answered.
func (q *Quiz) Done() bool { return q.pos >= len(q.questions) }

// Answer grades choice against the current question and advances.
// A wrong answer is recorded, a correct one clears any earlier mistake.
func (q *Quiz) Answer(choice int) (Feedback, error) {
	cur, ok := q.Current()
	if !ok {
		return Feedback{}, ErrQuizFinished
	}
	if choice < 0 || choice >= len(cur.Choices) {
		return Feedback{}, fmt.Errorf("%w: %d", ErrInvalidChoice, choice)
	}

	correct := cur.IsCorrect(choice)
	if correct {
		q.correct++
	}
	if q.recorder != nil {
		if correct {
			q.recorder.RemoveRecord(cur.ID)
		} else {
			q.recorder.RecordWrong(cur.ID)
		}
	}
	q.pos++

	return Feedback{
		QuestionID:   cur.ID,
		Correct:      correct,
		CorrectIndex: cur.CorrectIndex,
		CorrectLabel: cur.CorrectLabel,
		Explanation:  cur.Explanation,
	}, nil
}

// Result scores the answers given so far against the full quiz length.
func (q *Quiz) Result() Result {
	r := Result{Correct: q.correct, Total: len(q.questions)}
	if r.Total > 0 {
		r.Percentage = float64(r.Correct*100) / float64(r.Total)
	}
	switch {
	case r.Percentage >= 80:
		r.Band = BandExcellent
	case r.Percentage >= 60:
		r.Band = BandPassing
	default:
		r.Band = BandIntroductory
	}
	return r
}
