package lesson

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/samber/lo"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Card is a single prompt/answer pair of a quiz
type Card struct {
	Prompt string
	Answer string
}

// Quiz holds the shuffled cards of a quiz file and the pool of all answers
type Quiz struct {
	Cards   []Card
	Answers []string
}

// MatchPair is one left/right pair of a matching game
type MatchPair struct {
	Left  string
	Right string
}

// Matching holds the pairs of a matching file and their display orders
type Matching struct {
	Pairs      []MatchPair
	LeftItems  []string
	RightItems []string
	Mapping    map[string]string
}

// SentenceItem is one row of a sentence builder file
type SentenceItem struct {
	English          string
	Macedonian       string
	MacedonianBlocks []string
	EnglishBlocks    []string
}

// SentenceSet holds the items of a sentence builder file in file order
type SentenceSet struct {
	Items []SentenceItem
	Total int
}

// LoadQuiz parses a quiz file. Rows must have exactly two fields; rows with a
// blank field are dropped. Cards come back in random order.
func LoadQuiz(path string) (*Quiz, error) {
	rows, err := readRows(path)
	if err != nil {
		return nil, err
	}

	pairs, err := twoColumnRows(path, rows)
	if err != nil {
		return nil, err
	}

	cards := lo.Shuffle(lo.Map(pairs, func(p MatchPair, _ int) Card {
		return Card{Prompt: p.Left, Answer: p.Right}
	}))

	return &Quiz{
		Cards: cards,
		Answers: lo.Map(cards, func(c Card, _ int) string {
			return c.Answer
		}),
	}, nil
}

// LoadMatching parses a matching file. Left and right columns are shuffled
// independently; duplicate left items keep the last right item in Mapping.
func LoadMatching(path string) (*Matching, error) {
	rows, err := readRows(path)
	if err != nil {
		return nil, err
	}

	pairs, err := twoColumnRows(path, rows)
	if err != nil {
		return nil, err
	}

	m := &Matching{
		Pairs:   pairs,
		Mapping: make(map[string]string, len(pairs)),
	}
	m.LeftItems = lo.Shuffle(lo.Map(pairs, func(p MatchPair, _ int) string { return p.Left }))
	m.RightItems = lo.Shuffle(lo.Map(pairs, func(p MatchPair, _ int) string { return p.Right }))
	for _, p := range pairs {
		m.Mapping[p.Left] = p.Right
	}
	return m, nil
}

// LoadSentences parses a sentence builder file of 2 to 4 fields per row:
// english, macedonian, optional "|" separated macedonian blocks, optional
// "|" separated english blocks. Blocks default to whitespace tokens.
func LoadSentences(path string) (*SentenceSet, error) {
	rows, err := readRows(path)
	if err != nil {
		return nil, err
	}

	set := &SentenceSet{}
	for _, r := range rows {
		row := r.fields
		if len(row) < 2 || len(row) > 4 {
			return nil, fmt.Errorf("%w: %s line %d: expected 2 to 4 fields, got %d", ErrMalformedContent, path, r.line, len(row))
		}

		item := SentenceItem{
			English:    strings.TrimSpace(row[0]),
			Macedonian: strings.TrimSpace(row[1]),
		}
		item.MacedonianBlocks = blocks(row, 2, item.Macedonian)
		item.EnglishBlocks = blocks(row, 3, item.English)
		set.Items = append(set.Items, item)
	}
	set.Total = len(set.Items)
	return set, nil
}

// blocks returns the pipe separated blocks of row[idx], or the whitespace
// tokens of fallback when that field is absent or blank.
func blocks(row []string, idx int, fallback string) []string {
	if len(row) > idx && strings.TrimSpace(row[idx]) != "" {
		parts := lo.Map(strings.Split(row[idx], "|"), func(s string, _ int) string {
			return strings.TrimSpace(s)
		})
		return lo.Filter(parts, func(s string, _ int) bool { return s != "" })
	}
	return strings.Fields(fallback)
}

func twoColumnRows(path string, rows []record) ([]MatchPair, error) {
	var pairs []MatchPair
	for _, r := range rows {
		row := r.fields
		if len(row) != 2 {
			return nil, fmt.Errorf("%w: %s line %d: expected 2 fields, got %d", ErrMalformedContent, path, r.line, len(row))
		}
		left, right := strings.TrimSpace(row[0]), strings.TrimSpace(row[1])
		if left == "" || right == "" {
			continue
		}
		pairs = append(pairs, MatchPair{Left: left, Right: right})
	}
	return pairs, nil
}

// record is one CSV record and the file line it starts on
type record struct {
	fields []string
	line   int
}

// readRows reads every CSV record of a lesson file. The whole file is
// validated as UTF-8 before parsing.
func readRows(path string) ([]record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ErrContentUnavailable, path, err)
	}

	data = bytes.TrimPrefix(data, utf8BOM)
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("%w: %s is not valid UTF-8", ErrMalformedContent, path)
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1

	var rows []record
	for {
		fields, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrMalformedContent, path, err)
		}
		line, _ := reader.FieldPos(0)
		rows = append(rows, record{fields: fields, line: line})
	}
	return rows, nil
}
