// Package bank loads topic questions and samples quiz sessions from them.
package bank

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"

	"github.com/p-n-ai/quizbank/internal/catalog"
	"github.com/p-n-ai/quizbank/internal/question"
	"github.com/p-n-ai/quizbank/internal/source"
)

// Session size limits per topic kind.
const (
	BinaryChoiceSessionSize = 12
	DefaultSessionSize      = 10
)

// Load-time failures. Both degrade to an empty question list.
var (
	ErrUnknownTopic      = errors.New("unknown topic")
	ErrSourceUnavailable = errors.New("source unavailable")
	ErrDecodeFailure     = errors.New("decode failure")
)

// Config holds dependencies for the repository.
type Config struct {
	Source  source.ByteSource
	Catalog *catalog.Catalog
	Rand    *rand.Rand   // permutation source; nil uses the global generator
	Logger  *slog.Logger // nil uses slog.Default()
}

// Repository reads topic payloads and turns them into questions.
type Repository struct {
	source  source.ByteSource
	catalog *catalog.Catalog
	rng     *rand.Rand
	rngMu   sync.Mutex
	logger  *slog.Logger
}

// NewRepository creates a question bank repository.
func NewRepository(cfg Config) *Repository {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	cat := cfg.Catalog
	if cat == nil {
		cat = catalog.Empty()
	}
	return &Repository{
		source:  cfg.Source,
		catalog: cat,
		rng:     cfg.Rand,
		logger:  logger,
	}
}

// TopicIDs returns every topic known to the catalog.
func (r *Repository) TopicIDs() []string {
	return r.catalog.TopicIDs()
}

// LoadSessionQuestions returns a shuffled session for a topic, capped at the
// topic's session size. Failures yield an empty session and a logged warning.
func (r *Repository) LoadSessionQuestions(topicID string) []question.Question {
	topic, qs, ok := r.loadFiltered(topicID)
	if !ok {
		return []question.Question{}
	}

	r.shuffle(qs)

	limit := DefaultSessionSize
	if topic.BinaryChoice {
		limit = BinaryChoiceSessionSize
	}
	if len(qs) > limit {
		qs = qs[:limit]
	}
	return qs
}

// LoadAllQuestions returns every question of a topic in payload order,
// without shuffling or truncation.
func (r *Repository) LoadAllQuestions(topicID string) []question.Question {
	_, qs, ok := r.loadFiltered(topicID)
	if !ok {
		return []question.Question{}
	}
	return qs
}

// loadFiltered decodes a topic and keeps the questions tagged with its
// category. When nothing matches, the whole payload is used instead because
// some source files do not tag categories correctly.
func (r *Repository) loadFiltered(topicID string) (catalog.Topic, []question.Question, bool) {
	topic, all, err := r.load(topicID)
	if err != nil {
		r.logger.Warn("failed to load topic questions", "topic_id", topicID, "error", err)
		return catalog.Topic{}, nil, false
	}

	filtered := make([]question.Question, 0, len(all))
	for _, q := range all {
		if q.Category == topic.Category {
			filtered = append(filtered, q)
		}
	}

	if len(filtered) == 0 && len(all) > 0 {
		r.logger.Warn("no category match, falling back to full question set",
			"topic_id", topicID,
			"category", topic.Category,
			"questions", len(all),
		)
		return topic, all, true
	}
	return topic, filtered, true
}

func (r *Repository) load(topicID string) (catalog.Topic, []question.Question, error) {
	topic, ok := r.catalog.Topic(topicID)
	if !ok {
		return catalog.Topic{}, nil, fmt.Errorf("%w: %s", ErrUnknownTopic, topicID)
	}
	if r.source == nil {
		return topic, nil, fmt.Errorf("%w: no byte source configured", ErrSourceUnavailable)
	}

	data, err := r.source.Fetch(topicID)
	if err != nil {
		return topic, nil, fmt.Errorf("%w: %w", ErrSourceUnavailable, err)
	}

	qs, err := question.DecodePayload(data)
	if err != nil {
		return topic, nil, fmt.Errorf("%w: %w", ErrDecodeFailure, err)
	}
	return topic, qs, nil
}

func (r *Repository) shuffle(qs []question.Question) {
	swap := func(i, j int) { qs[i], qs[j] = qs[j], qs[i] }
	if r.rng != nil {
		r.rngMu.Lock()
		defer r.rngMu.Unlock()
		r.rng.Shuffle(len(qs), swap)
		return
	}
	rand.Shuffle(len(qs), swap)
}
