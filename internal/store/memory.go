package store

import (
	"errors"
	"sync"

	"github.com/i474232898/campusbot/internal/answers"
	"github.com/i474232898/campusbot/internal/temperature"
)

var (
	// ErrNotFound is returned when a backing file does not exist.
	ErrNotFound = errors.New("store file not found")
	// ErrMissingQuestionColumn is returned for CSV files without a "question" header.
	ErrMissingQuestionColumn = errors.New(`csv file must contain a "question" column`)
)

// MemoryDayStore is a concurrency-safe in-memory temperature.Repository.
// Nothing survives the process.
type MemoryDayStore struct {
	mu      sync.RWMutex
	records temperature.Records
}

// NewMemoryDayStore creates an empty MemoryDayStore.
func NewMemoryDayStore() *MemoryDayStore {
	return &MemoryDayStore{records: make(temperature.Records)}
}

// Load returns a copy of the stored day records.
func (s *MemoryDayStore) Load() (temperature.Records, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.records.Clone(), nil
}

// Save replaces the stored day records with a copy of records.
func (s *MemoryDayStore) Save(records temperature.Records) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = records.Clone()
	return nil
}

// MemoryAnswerStore is an in-memory answers.Repository seeded with a table.
type MemoryAnswerStore struct {
	mu    sync.RWMutex
	table answers.Table
}

// NewMemoryAnswerStore creates a store that initially holds seed.
func NewMemoryAnswerStore(seed answers.Table) *MemoryAnswerStore {
	return &MemoryAnswerStore{table: cloneTable(seed)}
}

func (s *MemoryAnswerStore) Load() (answers.Table, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneTable(s.table), nil
}

func (s *MemoryAnswerStore) Save(table answers.Table) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.table = cloneTable(table)
	return nil
}

func cloneTable(t answers.Table) answers.Table {
	out := make(answers.Table, len(t))
	for i, e := range t {
		out[i] = answers.Entry{Question: e.Question, Answers: append([]string(nil), e.Answers...)}
	}
	return out
}
