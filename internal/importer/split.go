package importer

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// Range assigns questions Start through End (1-based, inclusive) of one
// parsed exam to a topic.
type Range struct {
	Start    int
	End      int
	TopicID  string
	Category string
}

// TopicItems is the payload for one topic cut from a larger exam.
type TopicItems struct {
	TopicID string
	Items   []Item
}

// ParseRange parses "start-end=topicID:category", e.g.
// "1-10=class2_genre1:危険物の性状".
func ParseRange(s string) (Range, error) {
	span, target, ok := strings.Cut(s, "=")
	if !ok {
		return Range{}, fmt.Errorf("range %q: want start-end=topicID:category", s)
	}
	from, to, ok := strings.Cut(span, "-")
	if !ok {
		return Range{}, fmt.Errorf("range %q: want start-end", s)
	}
	start, err := strconv.Atoi(strings.TrimSpace(from))
	if err != nil {
		return Range{}, fmt.Errorf("range %q: bad start: %w", s, err)
	}
	end, err := strconv.Atoi(strings.TrimSpace(to))
	if err != nil {
		return Range{}, fmt.Errorf("range %q: bad end: %w", s, err)
	}
	topicID, category, _ := strings.Cut(target, ":")

	r := Range{
		Start:    start,
		End:      end,
		TopicID:  strings.TrimSpace(topicID),
		Category: strings.TrimSpace(category),
	}
	if err := r.check(); err != nil {
		return Range{}, fmt.Errorf("range %q: %w", s, err)
	}
	return r, nil
}

func (r Range) check() error {
	switch {
	case r.Start < 1 || r.End < r.Start:
		return fmt.Errorf("span %d-%d is empty or starts below 1", r.Start, r.End)
	case r.TopicID == "" || r.TopicID == "." || r.TopicID == "..":
		return fmt.Errorf("invalid topic id %q", r.TopicID)
	case strings.ContainsAny(r.TopicID, `/\`):
		return fmt.Errorf("topic id %q contains a path separator", r.TopicID)
	case r.Category == "":
		return fmt.Errorf("category is required")
	}
	return nil
}

// Split cuts items into per-topic payloads by question number. Each item
// takes the category of its range and keeps its id. Questions outside every
// range are dropped, and a range reaching past the last question keeps what
// exists. Overlapping ranges and repeated topic ids are rejected.
func Split(items []Item, ranges []Range) ([]TopicItems, error) {
	sorted := slices.Clone(ranges)
	slices.SortFunc(sorted, func(a, b Range) int { return a.Start - b.Start })

	seen := make(map[string]bool, len(ranges))
	for i, r := range sorted {
		if err := r.check(); err != nil {
			return nil, fmt.Errorf("topic %s: %w", r.TopicID, err)
		}
		if seen[r.TopicID] {
			return nil, fmt.Errorf("topic %s: listed twice", r.TopicID)
		}
		seen[r.TopicID] = true
		if i > 0 && r.Start <= sorted[i-1].End {
			return nil, fmt.Errorf("topic %s: %d-%d overlaps %s", r.TopicID, r.Start, r.End, sorted[i-1].TopicID)
		}
	}

	out := make([]TopicItems, 0, len(ranges))
	for _, r := range ranges {
		lo := min(r.Start-1, len(items))
		hi := min(r.End, len(items))

		chunk := make([]Item, 0, hi-lo)
		for _, it := range items[lo:hi] {
			it.Category = r.Category
			chunk = append(chunk, it)
		}
		out = append(out, TopicItems{TopicID: r.TopicID, Items: chunk})
	}
	return out, nil
}
