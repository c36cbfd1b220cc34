package importer

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/p-n-ai/quizbank/internal/question"
)

// Spreadsheet columns, in order.
var xlsxHeader = []string{
	"id", "category", "question",
	"choice_a", "choice_b", "choice_c", "choice_d",
	"answer", "explanation", "image",
}

// ReadXLSX reads questions from a worksheet whose first row is the header
// id, category, question, choice_a..choice_d, answer, explanation, image.
// answer holds a label letter or a zero-based index. An empty sheet name
// selects the first sheet.
func ReadXLSX(r io.Reader, sheet string) ([]Item, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("opening workbook: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("reading sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %q is empty", sheet)
	}

	col, err := headerIndex(rows[0])
	if err != nil {
		return nil, err
	}

	var items []Item
	for n, row := range rows[1:] {
		cell := func(name string) string {
			i, ok := col[name]
			if !ok || i >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[i])
		}
		if cell("question") == "" && cell("id") == "" {
			continue
		}

		it := Item{
			ID:          cell("id"),
			Category:    cell("category"),
			Question:    cell("question"),
			Explanation: cell("explanation"),
		}
		if it.Category == "" {
			it.Category = question.Uncategorized
		}
		if img := cell("image"); img != "" {
			it.ImageName = &img
		}
		for _, name := range []string{"choice_a", "choice_b", "choice_c", "choice_d"} {
			if c := cell(name); c != "" {
				it.Choices = append(it.Choices, c)
			}
		}

		idx, err := parseAnswer(cell("answer"), len(it.Choices))
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", n+2, err)
		}
		it.AnswerIndex = idx
		it.AnswerLabel = question.LabelFor(idx, len(it.Choices))

		if err := check(it); err != nil {
			return nil, fmt.Errorf("row %d: %w", n+2, err)
		}
		items = append(items, it)
	}
	return items, nil
}

func headerIndex(header []string) (map[string]int, error) {
	col := make(map[string]int, len(header))
	for i, h := range header {
		col[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, required := range []string{"question", "choice_a", "choice_b", "answer", "explanation"} {
		if _, ok := col[required]; !ok {
			return nil, fmt.Errorf("missing column %q", required)
		}
	}
	return col, nil
}

func parseAnswer(v string, n int) (int, error) {
	if v == "" {
		return 0, fmt.Errorf("missing answer")
	}
	if i, err := strconv.Atoi(v); err == nil {
		return i, nil
	}
	if i, ok := question.IndexForLabel(strings.ToUpper(v), n); ok {
		return i, nil
	}
	return 0, fmt.Errorf("answer %q is neither an index nor a label", v)
}

// WriteXLSX renders items as a workbook readable by ReadXLSX.
func WriteXLSX(w io.Writer, items []Item) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	header := make([]any, len(xlsxHeader))
	for i, h := range xlsxHeader {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}

	for n, it := range items {
		row := []any{it.ID, it.Category, it.Question, "", "", "", ""}
		for i, c := range it.Choices {
			if i < 4 {
				row[3+i] = c
			}
		}
		image := ""
		if it.ImageName != nil {
			image = *it.ImageName
		}
		row = append(row, it.AnswerLabel, it.Explanation, image)

		cellRef, err := excelize.CoordinatesToCellName(1, n+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cellRef, &row); err != nil {
			return err
		}
	}

	_, err := f.WriteTo(w)
	return err
}
