// Package quiz runs a multiple choice trivia round.
package quiz

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/i474232898/campusbot/internal/knowledge"
)

// DefaultRounds is how many questions a round asks.
const DefaultRounds = 10

var (
	// ErrFinished is returned when answering after the last question.
	ErrFinished = errors.New("quiz is finished")
	// ErrInvalidChoice is returned for a choice outside 1..len(options).
	ErrInvalidChoice = errors.New("invalid choice")
)

// Session is one round of n distinct questions drawn at random.
type Session struct {
	questions []knowledge.QuizQuestion
	current   int
	score     int
}

// NewSession draws min(n, len(questions)) distinct questions using rng.
// A nil rng uses the global source.
func NewSession(questions []knowledge.QuizQuestion, n int, rng *rand.Rand) *Session {
	n = min(n, len(questions))
	perm := rand.Perm
	if rng != nil {
		perm = rng.Perm
	}

	picked := make([]knowledge.QuizQuestion, 0, n)
	for _, i := range perm(len(questions))[:n] {
		picked = append(picked, questions[i])
	}
	return &Session{questions: picked}
}

// Current returns the question to answer next and its 1-based number.
// ok is false once the round is done.
func (s *Session) Current() (q knowledge.QuizQuestion, number int, ok bool) {
	if s.Done() {
		return knowledge.QuizQuestion{}, 0, false
	}
	return s.questions[s.current], s.current + 1, true
}

// Answer checks choice against the current question and moves on.
// An invalid choice does not consume the question.
func (s *Session) Answer(choice int) (bool, error) {
	q, _, ok := s.Current()
	if !ok {
		return false, ErrFinished
	}
	if choice < 1 || choice > len(q.Options) {
		return false, fmt.Errorf("%w: want 1-%d, got %d", ErrInvalidChoice, len(q.Options), choice)
	}

	correct := q.Options[choice-1] == q.Correct
	if correct {
		s.score++
	}
	s.current++
	return correct, nil
}

// Score returns the correct answers so far and how many were answered.
func (s *Session) Score() (correct, answered int) {
	return s.score, s.current
}

// Total is the number of questions in the round.
func (s *Session) Total() int {
	return len(s.questions)
}

// Done reports whether every question was answered.
func (s *Session) Done() bool {
	return s.current >= len(s.questions)
}
