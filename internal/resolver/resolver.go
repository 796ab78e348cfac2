// Package resolver turns a free-text question into an answer by trying an
// ordered cascade of matchers. Unmatched input is a value, never an error.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/i474232898/campusbot/internal/answers"
	"github.com/i474232898/campusbot/internal/common"
	"github.com/i474232898/campusbot/internal/fuzzy"
	"github.com/i474232898/campusbot/internal/knowledge"
	"github.com/i474232898/campusbot/internal/temperature"
	"github.com/i474232898/campusbot/internal/weather"
)

// ErrInvalidSelection is returned by Select for a non-numeric or out-of-range choice.
var ErrInvalidSelection = errors.New("invalid selection")

// Mode controls how knowledge categories are answered.
type Mode int

const (
	// Interactive returns a KindSelection response for the caller to prompt with.
	Interactive Mode = iota
	// SingleShot answers categories with the closest direct answer instead.
	SingleShot
)

// WeatherService is the weather lookup the resolver depends on.
type WeatherService interface {
	Current(ctx context.Context, city string) (weather.Report, error)
	Forecast(ctx context.Context, city string, date time.Time) (weather.Report, error)
}

// Temperatures is the read side of the temperature aggregator.
type Temperatures interface {
	Average(w temperature.Window) (float64, bool)
	Compare() []temperature.DayDelta
}

// Resolver evaluates the matching cascade. It is safe for concurrent use as
// long as its collaborators are.
type Resolver struct {
	answers *answers.Store
	kb      *knowledge.Base
	weather WeatherService
	temps   Temperatures

	city       string
	mode       Mode
	allAnswers bool
	threshold  float64
	now        func() time.Time
	logger     *zap.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

func WithWeather(w WeatherService) Option { return func(r *Resolver) { r.weather = w } }

func WithTemperatures(t Temperatures) Option { return func(r *Resolver) { r.temps = t } }

// WithCity sets the city used for plain weather questions.
func WithCity(city string) Option { return func(r *Resolver) { r.city = city } }

func WithMode(m Mode) Option { return func(r *Resolver) { r.mode = m } }

// WithAllAnswers lists every stored answer instead of picking one.
func WithAllAnswers(all bool) Option { return func(r *Resolver) { r.allAnswers = all } }

// WithThreshold sets the minimum fuzzy similarity.
func WithThreshold(t float64) Option { return func(r *Resolver) { r.threshold = t } }

func WithClock(now func() time.Time) Option { return func(r *Resolver) { r.now = now } }

func WithLogger(l *zap.Logger) Option { return func(r *Resolver) { r.logger = l } }

// New creates a resolver over store and kb.
func New(store *answers.Store, kb *knowledge.Base, opts ...Option) *Resolver {
	r := &Resolver{
		answers:   store,
		kb:        kb,
		city:      "Goslar",
		mode:      Interactive,
		threshold: fuzzy.DefaultThreshold,
		now:       time.Now,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// With returns a copy of r with opts applied.
func (r *Resolver) With(opts ...Option) *Resolver {
	cp := *r
	for _, opt := range opts {
		opt(&cp)
	}
	return &cp
}

// Resolve answers text with the first matching cascade step.
func (r *Resolver) Resolve(ctx context.Context, text string) Response {
	resp := r.resolve(ctx, text)
	if resp.Kind == KindNoAnswer {
		r.logger.Warn("no answer found", zap.String("question", common.Normalize(text)))
	} else {
		r.logger.Info("question resolved",
			zap.String("question", common.Normalize(text)),
			zap.String("kind", string(resp.Kind)),
			zap.String("source", string(resp.Source)))
	}
	return resp
}

func (r *Resolver) resolve(ctx context.Context, text string) Response {
	lower := strings.ToLower(strings.TrimSpace(text))
	q := common.Normalize(text)

	if place, ok := r.kb.MatchLocation(lower); ok {
		return r.resolveLocation(ctx, lower, place)
	}

	if isCompound(lower) {
		if out := r.ResolveAll(ctx, text); out != "" {
			return answer(SourceCompound, out)
		}
	}

	if resp, ok := r.exact(q); ok {
		return resp
	}

	if cat, ok := r.kb.MatchCategory(q); ok {
		return r.category(q, cat)
	}

	if resp, ok := r.keyword(q); ok {
		return resp
	}

	for _, t := range r.kb.Topics {
		if t.Matches(q) {
			return r.topic(ctx, t)
		}
	}

	return r.fallback(q)
}

// exact looks q up in the answer store, the FAQ and the direct answers, in that order.
func (r *Resolver) exact(q string) (Response, bool) {
	if r.answers != nil && r.answers.Has(q) {
		if text, err := r.storedAnswer(q); err == nil {
			return answer(SourceAnswers, text), true
		}
	}
	if a, ok := r.kb.FAQAnswer(q, r.now()); ok {
		return answer(SourceFAQ, a), true
	}
	if a, ok := r.kb.DirectAnswer(q); ok {
		return answer(SourceKnowledge, a), true
	}
	return Response{}, false
}

func (r *Resolver) storedAnswer(q string) (string, error) {
	if r.allAnswers {
		list, err := r.answers.ListAll(q)
		if err != nil {
			return "", err
		}
		return strings.Join(list, "\n"), nil
	}
	return r.answers.PickOne(q)
}

func (r *Resolver) category(q string, cat knowledge.Category) Response {
	if r.mode == Interactive {
		return Response{
			Kind:      KindSelection,
			Source:    SourceKnowledge,
			Selection: &Selection{Category: cat.Name, Options: append([]string(nil), cat.Questions...)},
		}
	}
	if closest, ok := fuzzy.Closest(q, r.kb.DirectQuestions(), r.threshold); ok {
		a, _ := r.kb.DirectAnswer(closest)
		return answer(SourceKnowledge, a)
	}
	return noAnswer()
}

// Selection returns the menu for a category name.
func (r *Resolver) Selection(category string) (Selection, bool) {
	cat, ok := r.kb.Category(category)
	if !ok {
		return Selection{}, false
	}
	return Selection{Category: cat.Name, Options: append([]string(nil), cat.Questions...)}, true
}

// Select answers the 1-based choice from sel.
func (r *Resolver) Select(sel Selection, choice string) (Response, error) {
	n, err := strconv.Atoi(strings.TrimSpace(choice))
	if err != nil {
		return Response{}, fmt.Errorf("%w: %q is not a number", ErrInvalidSelection, choice)
	}
	if n < 1 || n > len(sel.Options) {
		return Response{}, fmt.Errorf("%w: choose 1-%d", ErrInvalidSelection, len(sel.Options))
	}

	if a, ok := r.kb.DirectAnswer(common.Normalize(sel.Options[n-1])); ok {
		return answer(SourceKnowledge, a), nil
	}
	return noAnswer(), nil
}

func (r *Resolver) keyword(q string) (Response, bool) {
	for _, rule := range r.kb.KeywordRules {
		if rule.Matches(q) {
			return answer(SourceKeyword, rule.Response), true
		}
	}
	return Response{}, false
}

func (r *Resolver) topic(ctx context.Context, t knowledge.Topic) Response {
	switch t.Action {
	case knowledge.ActionWeather:
		return answer(SourceTopic, r.currentWeather(ctx))
	case knowledge.ActionCompare:
		if r.temps == nil {
			return answer(SourceTopic, msgNoData)
		}
		return answer(SourceTopic, temperature.ComparisonTable(r.temps.Compare()))
	default:
		return answer(SourceTopic, knowledge.Expand(t.Response, r.now()))
	}
}

func (r *Resolver) currentWeather(ctx context.Context) string {
	now := r.now()
	if r.weather == nil {
		return common.ClockTime(now) + " " + msgWeatherFailed
	}
	report, err := r.weather.Current(ctx, r.city)
	if err != nil {
		return r.weatherError(now, r.city, err)
	}
	return fmt.Sprintf("Wetter in %s: %s", r.city, report)
}

// fallback offers a "did you mean" for near misses of the typo vocabulary or
// of a known question, and the no-answer reply otherwise.
func (r *Resolver) fallback(q string) Response {
	if word, ok := fuzzy.Closest(q, r.kb.TypoWords(), r.threshold); ok {
		if t, ok := r.kb.Typo(word); ok {
			return answer(SourceTypo, knowledge.Expand(t.Response, r.now()))
		}
	}

	var candidates []string
	if r.answers != nil {
		candidates = append(candidates, r.answers.Questions()...)
	}
	candidates = append(candidates, r.kb.DirectQuestions()...)

	closest, ok := fuzzy.Closest(q, candidates, r.threshold)
	if !ok {
		return noAnswer()
	}
	if r.answers != nil && r.answers.Has(closest) {
		if text, err := r.storedAnswer(closest); err == nil {
			sep := " "
			if r.allAnswers {
				sep = "\n"
			}
			return answer(SourceFuzzy, fmt.Sprintf("Meinen Sie '%s'? Antwort:%s%s", closest, sep, text))
		}
	}
	if a, ok := r.kb.DirectAnswer(closest); ok {
		return answer(SourceFuzzy, fmt.Sprintf("Meinen Sie '%s'? Antwort: %s", closest, a))
	}
	return noAnswer()
}
