// Package answers holds the mutable question -> answers table.
package answers

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/i474232898/campusbot/internal/common"
)

// ErrNotFound is returned when a question has no entry in the table.
var ErrNotFound = errors.New("question not found")

// Entry is one question with its ordered answers.
type Entry struct {
	Question string
	Answers  []string
}

// Table is the persisted form of the store, in insertion order.
type Table []Entry

// Repository loads and saves the whole answer table.
type Repository interface {
	Load() (Table, error)
	Save(Table) error
}

// Store is a concurrency-safe answer table that writes itself back to its
// repository after every mutation.
type Store struct {
	mu      sync.RWMutex
	entries map[string][]string
	order   []string

	repo   Repository
	pick   func(n int) int
	logger *zap.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithPicker replaces the uniform random index picker used by PickOne.
func WithPicker(pick func(n int) int) Option {
	return func(s *Store) { s.pick = pick }
}

// WithLogger sets the logger used for persistence failures.
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// NewStore creates an empty store backed by repo. repo may be nil for a
// purely in-memory table.
func NewStore(repo Repository, opts ...Option) *Store {
	s := &Store{
		entries: make(map[string][]string),
		repo:    repo,
		pick:    rand.IntN,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open creates a store and fills it from repo.
func Open(repo Repository, opts ...Option) (*Store, error) {
	s := NewStore(repo, opts...)
	if repo == nil {
		return s, nil
	}
	table, err := repo.Load()
	if err != nil {
		return s, fmt.Errorf("load answer table: %w", err)
	}
	s.Replace(table)
	return s, nil
}

// Replace swaps the in-memory table for table without persisting it.
func (s *Store) Replace(table Table) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = make(map[string][]string, len(table))
	s.order = s.order[:0]
	for _, e := range table {
		s.appendLocked(common.Normalize(e.Question), e.Answers...)
	}
}

// Lookup returns a copy of the answers for q.
func (s *Store) Lookup(q string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	answers, ok := s.entries[common.Normalize(q)]
	if !ok {
		return nil, ErrNotFound
	}
	return slices.Clone(answers), nil
}

// Has reports whether q has an entry.
func (s *Store) Has(q string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.entries[common.Normalize(q)]
	return ok
}

// PickOne returns one answer for q chosen uniformly at random.
func (s *Store) PickOne(q string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	answers, ok := s.entries[common.Normalize(q)]
	if !ok {
		return "", ErrNotFound
	}
	return answers[s.pick(len(answers))], nil
}

// ListAll returns every answer for q numbered from 1 in insertion order.
func (s *Store) ListAll(q string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	answers, ok := s.entries[common.Normalize(q)]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]string, len(answers))
	for i, a := range answers {
		out[i] = fmt.Sprintf("%d. %s", i+1, a)
	}
	return out, nil
}

// Questions returns all normalized questions, sorted.
func (s *Store) Questions() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := slices.Clone(s.order)
	sort.Strings(out)
	return out
}

// Snapshot returns the table in insertion order.
func (s *Store) Snapshot() Table {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// Add appends answer to q, creating the question if needed. Adding an answer
// that is already present changes nothing but still persists.
func (s *Store) Add(q, answer string) error {
	key := common.Normalize(q)
	if key == "" || answer == "" {
		return fmt.Errorf("question and answer must not be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.appendLocked(key, answer)
	return s.persistLocked("add")
}

// RemoveAnswer deletes answer from q. The question disappears with its last
// answer. It reports false when either the question or the answer is unknown.
func (s *Store) RemoveAnswer(q, answer string) (bool, error) {
	key := common.Normalize(q)

	s.mu.Lock()
	defer s.mu.Unlock()

	answers, ok := s.entries[key]
	if !ok {
		return false, nil
	}
	i := slices.Index(answers, answer)
	if i < 0 {
		return false, nil
	}

	answers = slices.Delete(answers, i, i+1)
	if len(answers) == 0 {
		s.deleteLocked(key)
	} else {
		s.entries[key] = answers
	}
	return true, s.persistLocked("remove answer")
}

// RemoveQuestion deletes q and all its answers. It reports false when q is unknown.
func (s *Store) RemoveQuestion(q string) (bool, error) {
	key := common.Normalize(q)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[key]; !ok {
		return false, nil
	}
	s.deleteLocked(key)
	return true, s.persistLocked("remove question")
}

func (s *Store) appendLocked(key string, answers ...string) {
	existing, ok := s.entries[key]
	if !ok {
		s.order = append(s.order, key)
	}
	for _, a := range answers {
		if a == "" || slices.Contains(existing, a) {
			continue
		}
		existing = append(existing, a)
	}
	if len(existing) == 0 {
		// never keep a question without answers
		s.order = s.order[:len(s.order)-1]
		return
	}
	s.entries[key] = existing
}

func (s *Store) deleteLocked(key string) {
	delete(s.entries, key)
	if i := slices.Index(s.order, key); i >= 0 {
		s.order = slices.Delete(s.order, i, i+1)
	}
}

func (s *Store) snapshotLocked() Table {
	table := make(Table, 0, len(s.order))
	for _, key := range s.order {
		table = append(table, Entry{Question: key, Answers: slices.Clone(s.entries[key])})
	}
	return table
}

func (s *Store) persistLocked(op string) error {
	if s.repo == nil {
		return nil
	}
	if err := s.repo.Save(s.snapshotLocked()); err != nil {
		s.logger.Error("failed to persist answer table", zap.String("op", op), zap.Error(err))
		return fmt.Errorf("persist answer table: %w", err)
	}
	return nil
}

// MinImportQuestions is the smallest table Import accepts.
const MinImportQuestions = 9

// ErrTooFewQuestions is returned by Import for tables below MinImportQuestions.
var ErrTooFewQuestions = fmt.Errorf("import needs at least %d questions", MinImportQuestions)

// Import replaces the whole table and persists it. Tables with fewer than
// MinImportQuestions questions are rejected and the current table is kept.
func (s *Store) Import(table Table) error {
	fresh := NewStore(nil)
	fresh.Replace(table)
	if len(fresh.order) < MinImportQuestions {
		return fmt.Errorf("%w: got %d", ErrTooFewQuestions, len(fresh.order))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = fresh.entries
	s.order = fresh.order
	return s.persistLocked("import")
}
