package store

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
	"sync"

	"github.com/i474232898/campusbot/internal/answers"
	"github.com/i474232898/campusbot/internal/common"
)

// csvAnswerSlots is how many answers one CSV row can hold.
const csvAnswerSlots = 4

var csvHeader = []string{"question", "answer1", "answer2", "answer3", "answer4"}

// CSVAnswerStore persists the answer table as question,answer1..answer4 rows.
// Answers beyond the fourth are not written.
type CSVAnswerStore struct {
	mu     sync.Mutex
	path   string
	sample answers.Table
}

// NewCSVAnswerStore returns a store for path. When the file is missing on
// Load, sample is written to it first.
func NewCSVAnswerStore(path string, sample answers.Table) *CSVAnswerStore {
	return &CSVAnswerStore{path: path, sample: sample}
}

// Path returns the backing file.
func (s *CSVAnswerStore) Path() string { return s.path }

// Load reads the file, creating it from the sample table if it does not exist.
func (s *CSVAnswerStore) Load() (answers.Table, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	table, err := ReadCSVTable(s.path)
	if errors.Is(err, ErrNotFound) && s.sample != nil {
		if err := writeCSVTable(s.path, s.sample); err != nil {
			return nil, fmt.Errorf("create sample csv: %w", err)
		}
		return cloneTable(s.sample), nil
	}
	return table, err
}

// Save rewrites the whole file.
func (s *CSVAnswerStore) Save(table answers.Table) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return writeCSVTable(s.path, table)
}

// ReadCSVTable parses an answer table from path. Questions are normalized and
// rows without any non-blank answer are skipped.
func ReadCSVTable(path string) (answers.Table, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	return parseCSVTable(f)
}

func parseCSVTable(r io.Reader) (answers.Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrMissingQuestionColumn
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	columns := make(map[string]int, len(header))
	for i, h := range header {
		columns[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	qi, ok := columns["question"]
	if !ok {
		return nil, ErrMissingQuestionColumn
	}

	var table answers.Table
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row: %w", err)
		}

		q := common.Normalize(field(row, qi))
		if q == "" {
			continue
		}
		var list []string
		for slot := 1; slot <= csvAnswerSlots; slot++ {
			idx, ok := columns[fmt.Sprintf("answer%d", slot)]
			if !ok {
				continue
			}
			if a := strings.TrimSpace(field(row, idx)); a != "" {
				list = append(list, a)
			}
		}
		if len(list) > 0 {
			table = append(table, answers.Entry{Question: q, Answers: list})
		}
	}
	return table, nil
}

func writeCSVTable(path string, table answers.Table) error {
	return writeAtomic(path, func(w io.Writer) error {
		cw := csv.NewWriter(w)
		if err := cw.Write(csvHeader); err != nil {
			return err
		}
		for _, e := range table {
			row := make([]string, 1+csvAnswerSlots)
			row[0] = e.Question
			for i := 0; i < csvAnswerSlots && i < len(e.Answers); i++ {
				row[i+1] = e.Answers[i]
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
		cw.Flush()
		return cw.Error()
	})
}

func field(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}
