package httpapi

import (
	"context"
	"errors"
	"net/http"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/p-n-ai/quizbank/internal/question"
	"github.com/p-n-ai/quizbank/internal/session"
)

// Message types on the quiz socket.
const (
	msgQuestion = "question"
	msgAnswer   = "answer"
	msgFeedback = "feedback"
	msgBookmark = "bookmark"
	msgResult   = "result"
	msgEmpty    = "empty"
	msgError    = "error"
)

// questionView is a question without its answer.
type questionView struct {
	ID             string   `json:"id"`
	Category       string   `json:"category"`
	Prompt         string   `json:"question"`
	Choices        []string `json:"choices"`
	ImageReference string   `json:"image_name,omitempty"`
	BinaryChoice   bool     `json:"binary_choice"`
}

type questionMessage struct {
	Type       string       `json:"type"`
	Index      int          `json:"index"`
	Total      int          `json:"total"`
	Bookmarked bool         `json:"bookmarked"`
	Question   questionView `json:"question"`
}

type feedbackMessage struct {
	Type     string           `json:"type"`
	Feedback session.Feedback `json:"feedback"`
}

type bookmarkMessage struct {
	Type       string `json:"type"`
	ID         string `json:"id"`
	Bookmarked bool   `json:"bookmarked"`
}

type resultMessage struct {
	Type   string         `json:"type"`
	Result session.Result `json:"result"`
}

type errorMessage struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

// clientMessage is sent by the client: an answer or a bookmark toggle for
// the current question.
type clientMessage struct {
	Type   string `json:"type"`
	Choice int    `json:"choice"`
}

// handleQuizSocket runs one quiz over a WebSocket. The questions come from
// ?topic=<id> or ?replay=wrong|bookmarks.
func (h *Handler) handleQuizSocket(w http.ResponseWriter, r *http.Request) {
	qs, err := h.socketQuestions(r)
	switch {
	case err == nil, errors.Is(err, session.ErrEmptyReplay), errors.Is(err, errEmptyTopic):
	case errors.Is(err, errUnknownTopic):
		writeError(w, http.StatusNotFound, err.Error())
		return
	case errors.Is(err, errBadQuizQuery):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	default:
		h.logger.Error("failed to assemble quiz", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to assemble quiz")
		return
	}

	conn, acceptErr := websocket.Accept(w, r, nil)
	if acceptErr != nil {
		h.logger.Warn("websocket accept failed", "error", acceptErr)
		return
	}
	defer conn.CloseNow()

	ctx := r.Context()
	if err != nil {
		if werr := wsjson.Write(ctx, conn, errorMessage{Type: msgEmpty, Error: err.Error()}); werr == nil {
			conn.Close(websocket.StatusNormalClosure, err.Error())
		}
		return
	}

	if err := h.runQuiz(ctx, conn, session.NewQuiz(qs, h.wrong)); err != nil {
		h.logger.Debug("quiz socket ended", "error", err)
		return
	}
	conn.Close(websocket.StatusNormalClosure, "quiz finished")
}

var (
	errUnknownTopic = errors.New("unknown topic")
	errEmptyTopic   = errors.New("topic has no questions")
	errBadQuizQuery = errors.New("expected ?topic=<id> or ?replay=wrong|bookmarks")
)

func (h *Handler) socketQuestions(r *http.Request) ([]question.Question, error) {
	if topicID := r.URL.Query().Get("topic"); topicID != "" {
		if _, ok := h.catalog.Topic(topicID); !ok {
			return nil, errUnknownTopic
		}
		qs := h.bank.LoadSessionQuestions(topicID)
		if len(qs) == 0 {
			return nil, errEmptyTopic
		}
		return qs, nil
	}

	switch r.URL.Query().Get("replay") {
	case "wrong":
		return h.assembler.WrongAnswerReplay(h.wrong)
	case "bookmarks":
		return h.assembler.BookmarkReplay(h.bookmarks)
	}
	return nil, errBadQuizQuery
}

func (h *Handler) runQuiz(ctx context.Context, conn *websocket.Conn, quiz *session.Quiz) error {
	for {
		cur, ok := quiz.Current()
		if !ok {
			return wsjson.Write(ctx, conn, resultMessage{Type: msgResult, Result: quiz.Result()})
		}

		if err := wsjson.Write(ctx, conn, questionMessage{
			Type:       msgQuestion,
			Index:      quiz.Position(),
			Total:      quiz.Len(),
			Bookmarked: h.bookmarks.IsBookmarked(cur.ID),
			Question: questionView{
				ID:             cur.ID,
				Category:       cur.Category,
				Prompt:         cur.Prompt,
				Choices:        cur.Choices,
				ImageReference: cur.ImageReference,
				BinaryChoice:   cur.IsBinaryChoice(),
			},
		}); err != nil {
			return err
		}

		if err := h.awaitAnswer(ctx, conn, quiz, cur.ID); err != nil {
			return err
		}
	}
}

// awaitAnswer reads client messages until the current question is answered.
func (h *Handler) awaitAnswer(ctx context.Context, conn *websocket.Conn, quiz *session.Quiz, id string) error {
	for {
		var msg clientMessage
		if err := wsjson.Read(ctx, conn, &msg); err != nil {
			return err
		}

		var reply any
		answered := false
		switch msg.Type {
		case msgBookmark:
			on := h.bookmarks.ToggleBookmark(id)
			reply = bookmarkMessage{Type: msgBookmark, ID: id, Bookmarked: on}
		case msgAnswer:
			fb, err := quiz.Answer(msg.Choice)
			if err != nil {
				reply = errorMessage{Type: msgError, Error: err.Error()}
				break
			}
			reply = feedbackMessage{Type: msgFeedback, Feedback: fb}
			answered = true
		default:
			reply = errorMessage{Type: msgError, Error: "unknown message type: " + msg.Type}
		}

		if err := wsjson.Write(ctx, conn, reply); err != nil {
			return err
		}
		if answered {
			return nil
		}
	}
}
