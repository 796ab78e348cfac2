// Package knowledge holds the static lookup tables the resolver matches against.
package knowledge

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/i474232898/campusbot/internal/answers"
	"github.com/i474232898/campusbot/internal/common"
)

//go:embed seed.yaml
var seed []byte

// Action names a topic whose answer is produced by a collaborator instead of text.
type Action string

const (
	ActionNone    Action = ""
	ActionWeather Action = "weather"
	ActionCompare Action = "compare"
)

// Category is a named group of canonical sub-questions.
type Category struct {
	Name      string   `yaml:"name"`
	Questions []string `yaml:"questions"`
}

// KeywordRule answers with a fixed response when any keyword occurs in the input.
type KeywordRule struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
	Variants []string `yaml:"variants"`
	Response string   `yaml:"response"`
}

// Matches reports whether any keyword is a substring of the normalized input.
func (r KeywordRule) Matches(input string) bool {
	return common.HasAny(input, r.Keywords...)
}

// Topic is a substring trigger with a canned response or an action.
// All terms in All must occur; when Any is set, at least one of them must too.
type Topic struct {
	Name     string   `yaml:"name"`
	All      []string `yaml:"all"`
	Any      []string `yaml:"any"`
	Response string   `yaml:"response"`
	Action   Action   `yaml:"action"`
}

// Matches reports whether input satisfies the topic's triggers.
func (t Topic) Matches(input string) bool {
	if len(t.All) == 0 && len(t.Any) == 0 {
		return false
	}
	if !common.HasAll(input, t.All...) {
		return false
	}
	return len(t.Any) == 0 || common.HasAny(input, t.Any...)
}

// Typo is a recognized topic word with the clarification offered when the
// input looks like a misspelling of it.
type Typo struct {
	Word     string `yaml:"word"`
	Response string `yaml:"response"`
}

// Location describes a campus place and the city used for its weather.
type Location struct {
	Key         string `yaml:"key" json:"-"`
	Name        string `yaml:"name" json:"name"`
	University  string `yaml:"university" json:"university"`
	Address     string `yaml:"address" json:"address"`
	Description string `yaml:"description" json:"description"`
	City        string `yaml:"city" json:"city"`
}

// LocationRoute maps location-identifying terms to a location key.
type LocationRoute struct {
	Location string   `yaml:"location"`
	Terms    []string `yaml:"terms"`
}

// SeedEntry is an answer-store row in the seed file.
type SeedEntry struct {
	Question string   `yaml:"question"`
	Answers  []string `yaml:"answers"`
}

// QuizQuestion is one multiple choice trivia question.
type QuizQuestion struct {
	Question string   `yaml:"question"`
	Options  []string `yaml:"options"`
	Correct  string   `yaml:"correct"`
}

// Base is the full set of static tables.
type Base struct {
	FAQ            map[string]string `yaml:"faq"`
	Categories     []Category        `yaml:"categories"`
	DirectAnswers  map[string]string `yaml:"direct_answers"`
	KeywordRules   []KeywordRule     `yaml:"keyword_rules"`
	Topics         []Topic           `yaml:"topics"`
	Heuristics     []Topic           `yaml:"heuristics"`
	Typos          []Typo            `yaml:"typos"`
	Locations      []Location        `yaml:"locations"`
	LocationRoutes []LocationRoute   `yaml:"location_routes"`
	Answers        []SeedEntry       `yaml:"answers"`
	SampleAnswers  []SeedEntry       `yaml:"sample_answers"`
	Quiz           []QuizQuestion    `yaml:"quiz"`

	locations map[string]Location
}

// Load parses the embedded seed tables.
func Load() (*Base, error) {
	return Parse(seed)
}

// Parse decodes YAML tables and normalizes every lookup key.
func Parse(data []byte) (*Base, error) {
	var b Base
	if err := yaml.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("parse knowledge tables: %w", err)
	}

	b.FAQ = normalizeKeys(b.FAQ)
	b.DirectAnswers = normalizeKeys(b.DirectAnswers)

	b.locations = make(map[string]Location, len(b.Locations))
	for _, l := range b.Locations {
		b.locations[l.Key] = l
	}
	for _, r := range b.LocationRoutes {
		if _, ok := b.locations[r.Location]; !ok {
			return nil, fmt.Errorf("location route references unknown location %q", r.Location)
		}
	}
	for _, q := range b.Quiz {
		if !containsString(q.Options, q.Correct) {
			return nil, fmt.Errorf("quiz question %q: correct answer %q is not an option", q.Question, q.Correct)
		}
	}
	return &b, nil
}

// FAQAnswer returns the expanded FAQ response for a normalized question.
func (b *Base) FAQAnswer(key string, now time.Time) (string, bool) {
	tmpl, ok := b.FAQ[key]
	if !ok {
		return "", false
	}
	return Expand(tmpl, now), true
}

// DirectAnswer returns the knowledge-base answer for a normalized question.
func (b *Base) DirectAnswer(key string) (string, bool) {
	a, ok := b.DirectAnswers[key]
	return a, ok
}

// DirectQuestions returns the normalized direct-answer questions, sorted.
func (b *Base) DirectQuestions() []string {
	return sortedKeys(b.DirectAnswers)
}

// FAQQuestions returns the normalized FAQ questions, sorted.
func (b *Base) FAQQuestions() []string {
	return sortedKeys(b.FAQ)
}

// MatchCategory returns the first category whose name occurs in input or
// which owns input as one of its sub-questions.
func (b *Base) MatchCategory(input string) (Category, bool) {
	for _, c := range b.Categories {
		if strings.Contains(input, c.Name) {
			return c, true
		}
		for _, q := range c.Questions {
			if common.Normalize(q) == input {
				return c, true
			}
		}
	}
	return Category{}, false
}

// Category looks a category up by name.
func (b *Base) Category(name string) (Category, bool) {
	for _, c := range b.Categories {
		if c.Name == name {
			return c, true
		}
	}
	return Category{}, false
}

// MatchLocation returns the location selected by the first route with a term in input.
func (b *Base) MatchLocation(input string) (Location, bool) {
	for _, r := range b.LocationRoutes {
		if common.HasAny(input, r.Terms...) {
			return b.locations[r.Location], true
		}
	}
	return Location{}, false
}

// TypoWords returns the recognized vocabulary in configured order.
func (b *Base) TypoWords() []string {
	words := make([]string, len(b.Typos))
	for i, t := range b.Typos {
		words[i] = t.Word
	}
	return words
}

// Typo returns the clarification for a vocabulary word.
func (b *Base) Typo(word string) (Typo, bool) {
	for _, t := range b.Typos {
		if t.Word == word {
			return t, true
		}
	}
	return Typo{}, false
}

// AnswerTable converts seed rows into an answer table.
func AnswerTable(entries []SeedEntry) answers.Table {
	table := make(answers.Table, 0, len(entries))
	for _, e := range entries {
		table = append(table, answers.Entry{Question: common.Normalize(e.Question), Answers: e.Answers})
	}
	return table
}

// Expand fills the {time} placeholder of a response template.
func Expand(tmpl string, now time.Time) string {
	return strings.ReplaceAll(tmpl, "{time}", common.ClockTime(now))
}

func normalizeKeys(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[common.Normalize(k)] = v
	}
	return out
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func containsString(items []string, s string) bool {
	for _, it := range items {
		if it == s {
			return true
		}
	}
	return false
}
