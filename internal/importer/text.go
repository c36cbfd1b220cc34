package importer

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strings"

	"golang.org/x/text/width"

	"github.com/p-n-ai/quizbank/internal/question"
)

// TextOptions controls ParseText.
type TextOptions struct {
	IDPrefix string // ids become <IDPrefix>_q<n>
	Category string
}

var questionMarker = regexp.MustCompile(`第\d+問`)

// ParseText reads questions delimited by 第N問 headers. Each block holds
// prompt lines, choice lines "A." to "D.", a "正解:" answer line and a
// "解説:" explanation that may continue over several lines.
// Full-width letters and punctuation are folded to ASCII first.
func ParseText(r io.Reader, opts TextOptions) ([]Item, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading input: %w", err)
	}

	prefix := opts.IDPrefix
	if prefix == "" {
		prefix = "imported"
	}
	category := opts.Category
	if category == "" {
		category = question.Uncategorized
	}

	var items []Item
	text := width.Fold.String(string(raw))
	for _, block := range questionMarker.Split(text, -1) {
		if strings.TrimSpace(block) == "" {
			continue
		}
		it, err := parseBlock(block)
		if err != nil {
			return nil, fmt.Errorf("question %d: %w", len(items)+1, err)
		}
		it.ID = fmt.Sprintf("%s_q%d", prefix, len(items)+1)
		it.Category = category
		if err := check(it); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, nil
}

func parseBlock(block string) (Item, error) {
	var (
		it      Item
		prompt  []string
		expl    []string
		label   string
		inExpl  bool
		scanner = bufio.NewScanner(strings.NewReader(block))
	)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if letter, text, ok := choiceLine(line); ok {
			it.Choices = append(it.Choices, letter+". "+text)
			continue
		}
		if rest, ok := cutLabel(line, "正解"); ok {
			if rest == "" {
				return Item{}, fmt.Errorf("empty answer line")
			}
			label = rest[:1]
			continue
		}
		if rest, ok := cutLabel(line, "解説"); ok {
			inExpl = true
			expl = append(expl, rest)
			continue
		}

		switch {
		case inExpl:
			expl = append(expl, line)
		case len(it.Choices) == 0:
			prompt = append(prompt, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return Item{}, err
	}

	if label == "" {
		return Item{}, fmt.Errorf("missing answer line")
	}
	if len(expl) == 0 {
		return Item{}, fmt.Errorf("missing explanation line")
	}
	idx, ok := question.IndexForLabel(label, len(it.Choices))
	if !ok {
		return Item{}, fmt.Errorf("answer %q does not match %d choices", label, len(it.Choices))
	}

	it.Question = strings.Join(prompt, "\n")
	it.AnswerIndex = idx
	it.AnswerLabel = label
	it.Explanation = strings.Join(expl, "\n")
	return it, nil
}

// choiceLine matches "A. text", "A text" and, after folding, "A．text".
func choiceLine(line string) (string, string, bool) {
	if len(line) < 2 {
		return "", "", false
	}
	letter := line[:1]
	if !strings.Contains("ABCD", letter) {
		return "", "", false
	}
	if line[1] != '.' && line[1] != ' ' {
		return "", "", false
	}
	return letter, strings.TrimSpace(line[2:]), true
}

// cutLabel strips "<name>:" from the start of line.
func cutLabel(line, name string) (string, bool) {
	rest, ok := strings.CutPrefix(line, name)
	if !ok {
		return "", false
	}
	rest, ok = strings.CutPrefix(rest, ":")
	if !ok {
		return "", false
	}
	return strings.TrimSpace(rest), true
}
