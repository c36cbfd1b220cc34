// Package httpapi exposes the question bank, replay sessions and progress
// stores over HTTP and WebSocket.
package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/p-n-ai/quizbank/internal/catalog"
	"github.com/p-n-ai/quizbank/internal/progress"
	"github.com/p-n-ai/quizbank/internal/question"
	"github.com/p-n-ai/quizbank/internal/session"
)

const maxBodyBytes = 1 << 16

// QuestionBank is the subset of the repository the handlers need.
type QuestionBank interface {
	LoadSessionQuestions(topicID string) []question.Question
	LoadAllQuestions(topicID string) []question.Question
}

// Config holds dependencies for the handler.
type Config struct {
	Catalog   *catalog.Catalog
	Bank      QuestionBank
	Assembler *session.Assembler
	Wrong     *progress.WrongAnswerStore
	Bookmarks *progress.BookmarkStore
	WebSocket bool
	Logger    *slog.Logger
}

// Handler serves the /v1 API.
type Handler struct {
	catalog   *catalog.Catalog
	bank      QuestionBank
	assembler *session.Assembler
	wrong     *progress.WrongAnswerStore
	bookmarks *progress.BookmarkStore
	websocket bool
	logger    *slog.Logger
}

// NewHandler creates the API handler.
func NewHandler(cfg Config) *Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	// Without configured stores progress lives in memory for the process.
	wrong := cfg.Wrong
	if wrong == nil {
		wrong = progress.NewWrongAnswerStore(nil, logger)
	}
	bookmarks := cfg.Bookmarks
	if bookmarks == nil {
		bookmarks = progress.NewBookmarkStore(nil, logger)
	}
	return &Handler{
		catalog:   cfg.Catalog,
		bank:      cfg.Bank,
		assembler: cfg.Assembler,
		wrong:     wrong,
		bookmarks: bookmarks,
		websocket: cfg.WebSocket,
		logger:    logger,
	}
}

// Register mounts the API routes on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /v1/topics", h.handleTopics)
	mux.HandleFunc("GET /v1/topics/{id}/session", h.handleTopicSession)
	mux.HandleFunc("GET /v1/topics/{id}/questions", h.handleTopicQuestions)

	mux.HandleFunc("GET /v1/replay/wrong", h.handleWrongReplay)
	mux.HandleFunc("GET /v1/replay/bookmarks", h.handleBookmarkReplay)

	mux.HandleFunc("GET /v1/progress/wrong", h.handleListWrong)
	mux.HandleFunc("POST /v1/progress/wrong", h.handleRecordWrong)
	mux.HandleFunc("POST /v1/progress/wrong/remove", h.handleRemoveWrong)
	mux.HandleFunc("DELETE /v1/progress/wrong", h.handleClearWrong)

	mux.HandleFunc("GET /v1/bookmarks", h.handleListBookmarks)
	mux.HandleFunc("POST /v1/bookmarks/toggle", h.handleToggleBookmark)

	if h.websocket {
		mux.HandleFunc("GET /v1/ws/quiz", h.handleQuizSocket)
	}
}

type idRequest struct {
	ID string `json:"id"`
}

type replayResponse struct {
	Empty     bool                `json:"empty"`
	Questions []question.Question `json:"questions"`
}

type sessionResponse struct {
	Topic     catalog.Topic       `json:"topic"`
	Questions []question.Question `json:"questions"`
}

func (h *Handler) handleTopics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"chapters": h.catalog.Chapters()})
}

func (h *Handler) handleTopicSession(w http.ResponseWriter, r *http.Request) {
	topic, ok := h.topic(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{
		Topic:     topic,
		Questions: h.bank.LoadSessionQuestions(topic.ID),
	})
}

func (h *Handler) handleTopicQuestions(w http.ResponseWriter, r *http.Request) {
	topic, ok := h.topic(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{
		Topic:     topic,
		Questions: h.bank.LoadAllQuestions(topic.ID),
	})
}

func (h *Handler) topic(w http.ResponseWriter, r *http.Request) (catalog.Topic, bool) {
	id := r.PathValue("id")
	topic, ok := h.catalog.Topic(id)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown topic: "+id)
		return catalog.Topic{}, false
	}
	return topic, true
}

func (h *Handler) handleWrongReplay(w http.ResponseWriter, r *http.Request) {
	qs, err := h.assembler.WrongAnswerReplay(h.wrong)
	h.writeReplay(w, qs, err)
}

func (h *Handler) handleBookmarkReplay(w http.ResponseWriter, r *http.Request) {
	qs, err := h.assembler.BookmarkReplay(h.bookmarks)
	h.writeReplay(w, qs, err)
}

func (h *Handler) writeReplay(w http.ResponseWriter, qs []question.Question, err error) {
	if errors.Is(err, session.ErrEmptyReplay) {
		writeJSON(w, http.StatusOK, replayResponse{Empty: true, Questions: []question.Question{}})
		return
	}
	if err != nil {
		h.logger.Error("replay failed", "error", err)
		writeError(w, http.StatusInternalServerError, "replay failed")
		return
	}
	writeJSON(w, http.StatusOK, replayResponse{Questions: qs})
}

func (h *Handler) handleListWrong(w http.ResponseWriter, r *http.Request) {
	ids := h.wrong.OrderedIDsOldestFirst()
	records := make([]progress.WrongAnswerRecord, 0, len(ids))
	for _, id := range ids {
		if rec, ok := h.wrong.Record(id); ok {
			records = append(records, rec)
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"records": records})
}

func (h *Handler) handleRecordWrong(w http.ResponseWriter, r *http.Request) {
	id, ok := readID(w, r)
	if !ok {
		return
	}
	h.wrong.RecordWrong(id)
	rec, _ := h.wrong.Record(id)
	writeJSON(w, http.StatusOK, rec)
}

func (h *Handler) handleRemoveWrong(w http.ResponseWriter, r *http.Request) {
	id, ok := readID(w, r)
	if !ok {
		return
	}
	h.wrong.RemoveRecord(id)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleClearWrong(w http.ResponseWriter, r *http.Request) {
	h.wrong.ClearAll()
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleListBookmarks(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"ids": h.bookmarks.OrderedIDs()})
}

func (h *Handler) handleToggleBookmark(w http.ResponseWriter, r *http.Request) {
	id, ok := readID(w, r)
	if !ok {
		return
	}
	on := h.bookmarks.ToggleBookmark(id)
	writeJSON(w, http.StatusOK, map[string]any{"id": id, "bookmarked": on})
}

// readID decodes {"id": "..."} and rejects empty ids.
func readID(w http.ResponseWriter, r *http.Request) (string, bool) {
	var req idRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return "", false
	}
	if req.ID == "" {
		writeError(w, http.StatusBadRequest, "id is required")
		return "", false
	}
	return req.ID, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
