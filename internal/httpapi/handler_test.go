package httpapi_test

import (
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/p-n-ai/quizbank/internal/bank"
	"github.com/p-n-ai/quizbank/internal/catalog"
	"github.com/p-n-ai/quizbank/internal/httpapi"
	"github.com/p-n-ai/quizbank/internal/progress"
	"github.com/p-n-ai/quizbank/internal/question"
	"github.com/p-n-ai/quizbank/internal/session"
	"github.com/p-n-ai/quizbank/internal/source"
)

const (
	topicID  = "class3_g1_general"
	category = "1-10 乙3類総論"
)

type fixture struct {
	mux       *http.ServeMux
	repo      *bank.Repository
	wrong     *progress.WrongAnswerStore
	bookmarks *progress.BookmarkStore
}

func newFixture(t *testing.T, n int) *fixture {
	t.Helper()

	records := make([]map[string]any, n)
	for i := range n {
		records[i] = map[string]any{
			"id":           fmt.Sprintf("g1_q%d", i+1),
			"category":     category,
			"question":     fmt.Sprintf("question %d", i+1),
			"choices":      []string{"A. a", "B. b", "C. c", "D. d"},
			"answer_index": i % 4,
			"explanation":  fmt.Sprintf("explanation %d", i+1),
		}
	}
	data, err := json.Marshal(records)
	if err != nil {
		t.Fatal(err)
	}

	cat, err := catalog.New(catalog.Chapter{
		ID:     "ch1",
		Title:  "Chapter 1",
		Topics: []catalog.Topic{{ID: topicID, Category: category}},
	})
	if err != nil {
		t.Fatal(err)
	}

	repo := bank.NewRepository(bank.Config{
		Source:  source.NewMemorySource(map[string][]byte{topicID: data}),
		Catalog: cat,
		Rand:    rand.New(rand.NewPCG(7, 11)),
	})
	wrong := progress.NewWrongAnswerStore(progress.NewMemoryKV(), nil)
	bookmarks := progress.NewBookmarkStore(progress.NewMemoryKV(), nil)

	h := httpapi.NewHandler(httpapi.Config{
		Catalog:   cat,
		Bank:      repo,
		Assembler: session.NewAssembler(repo, session.DefaultWrongReplayLimit),
		Wrong:     wrong,
		Bookmarks: bookmarks,
		WebSocket: true,
	})
	mux := http.NewServeMux()
	h.Register(mux)

	return &fixture{mux: mux, repo: repo, wrong: wrong, bookmarks: bookmarks}
}

func (f *fixture) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	rec := httptest.NewRecorder()
	f.mux.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return v
}

type replayBody struct {
	Empty     bool                `json:"empty"`
	Questions []question.Question `json:"questions"`
}

func TestTopics(t *testing.T) {
	f := newFixture(t, 3)

	rec := f.do(t, http.MethodGet, "/v1/topics", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := decode[struct {
		Chapters []catalog.Chapter `json:"chapters"`
	}](t, rec)
	if len(body.Chapters) != 1 || body.Chapters[0].Topics[0].ID != topicID {
		t.Errorf("chapters = %+v", body.Chapters)
	}
}

func TestTopicSession(t *testing.T) {
	f := newFixture(t, 15)

	tests := []struct {
		name       string
		path       string
		wantStatus int
		wantLen    int
	}{
		{name: "session is truncated", path: "/v1/topics/" + topicID + "/session", wantStatus: http.StatusOK, wantLen: bank.DefaultSessionSize},
		{name: "questions returns all", path: "/v1/topics/" + topicID + "/questions", wantStatus: http.StatusOK, wantLen: 15},
		{name: "unknown topic", path: "/v1/topics/nope/session", wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.do(t, http.MethodGet, tt.path, "")
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantStatus != http.StatusOK {
				return
			}
			body := decode[replayBody](t, rec)
			if len(body.Questions) != tt.wantLen {
				t.Errorf("len = %d, want %d", len(body.Questions), tt.wantLen)
			}
		})
	}
}

func TestWrongAnswerFlow(t *testing.T) {
	f := newFixture(t, 3)

	rec := f.do(t, http.MethodGet, "/v1/replay/wrong", "")
	if got := decode[replayBody](t, rec); !got.Empty || got.Questions == nil {
		t.Fatalf("empty replay = %+v, want empty with non-nil questions", got)
	}

	for _, id := range []string{"g1_q2", "g1_q1", "g1_q2"} {
		rec := f.do(t, http.MethodPost, "/v1/progress/wrong", `{"id":"`+id+`"}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("record %s: status = %d", id, rec.Code)
		}
	}
	rec = f.do(t, http.MethodPost, "/v1/progress/wrong", `{"id":"g1_q2"}`)
	if got := decode[progress.WrongAnswerRecord](t, rec); got.TimesWrong != 3 {
		t.Errorf("TimesWrong = %d, want 3", got.TimesWrong)
	}

	rec = f.do(t, http.MethodGet, "/v1/replay/wrong", "")
	got := decode[replayBody](t, rec)
	if got.Empty || len(got.Questions) != 2 {
		t.Fatalf("replay = %+v, want 2 questions", got)
	}

	rec = f.do(t, http.MethodPost, "/v1/progress/wrong/remove", `{"id":"g1_q1"}`)
	if rec.Code != http.StatusNoContent {
		t.Errorf("remove status = %d, want 204", rec.Code)
	}
	if f.wrong.Len() != 1 {
		t.Errorf("Len = %d, want 1", f.wrong.Len())
	}

	rec = f.do(t, http.MethodGet, "/v1/progress/wrong", "")
	list := decode[struct {
		Records []progress.WrongAnswerRecord `json:"records"`
	}](t, rec)
	if len(list.Records) != 1 || list.Records[0].ID != "g1_q2" {
		t.Errorf("records = %+v", list.Records)
	}

	rec = f.do(t, http.MethodDelete, "/v1/progress/wrong", "")
	if rec.Code != http.StatusNoContent || f.wrong.Len() != 0 {
		t.Errorf("clear: status = %d, len = %d", rec.Code, f.wrong.Len())
	}
}

func TestBookmarkFlow(t *testing.T) {
	f := newFixture(t, 3)

	type toggle struct {
		ID         string `json:"id"`
		Bookmarked bool   `json:"bookmarked"`
	}
	rec := f.do(t, http.MethodPost, "/v1/bookmarks/toggle", `{"id":"g1_q3"}`)
	if got := decode[toggle](t, rec); !got.Bookmarked || got.ID != "g1_q3" {
		t.Errorf("first toggle = %+v", got)
	}
	f.do(t, http.MethodPost, "/v1/bookmarks/toggle", `{"id":"ghost"}`)

	rec = f.do(t, http.MethodGet, "/v1/replay/bookmarks", "")
	got := decode[replayBody](t, rec)
	if got.Empty || len(got.Questions) != 1 || got.Questions[0].ID != "g1_q3" {
		t.Errorf("replay = %+v, want only g1_q3", got)
	}

	rec = f.do(t, http.MethodPost, "/v1/bookmarks/toggle", `{"id":"g1_q3"}`)
	if got := decode[toggle](t, rec); got.Bookmarked {
		t.Errorf("second toggle = %+v, want unbookmarked", got)
	}

	rec = f.do(t, http.MethodGet, "/v1/bookmarks", "")
	ids := decode[struct {
		IDs []string `json:"ids"`
	}](t, rec)
	if len(ids.IDs) != 1 || ids.IDs[0] != "ghost" {
		t.Errorf("ids = %v, want [ghost]", ids.IDs)
	}
}

func TestBadRequests(t *testing.T) {
	f := newFixture(t, 1)

	tests := []struct {
		name string
		path string
		body string
	}{
		{name: "invalid json", path: "/v1/progress/wrong", body: `{`},
		{name: "missing id", path: "/v1/progress/wrong", body: `{}`},
		{name: "empty id on remove", path: "/v1/progress/wrong/remove", body: `{"id":""}`},
		{name: "empty id on toggle", path: "/v1/bookmarks/toggle", body: `{"id":""}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.do(t, http.MethodPost, tt.path, tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
		})
	}
}
