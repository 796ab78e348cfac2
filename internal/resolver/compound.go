package resolver

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/i474232898/campusbot/internal/common"
	"github.com/i474232898/campusbot/internal/knowledge"
)

var (
	greetingRe = regexp.MustCompile(`(?i)^\s*(?:hallo|hey|hi)\b[,!.\s]*`)
	splitRe    = regexp.MustCompile(`(?i)\?(?:\s+(?:und|oder|and|or)\b)?|\s+(?:und|oder|and|or)\s+`)
)

// isCompound reports whether input joins several questions with a
// conjunction or with more than one '?'.
func isCompound(input string) bool {
	return len(Split(input)) > 1
}

// Split breaks a multi-part input into sub-questions, each ending in '?'.
// A leading greeting is dropped and empty pieces are discarded.
func Split(input string) []string {
	input = greetingRe.ReplaceAllString(input, "")

	var parts []string
	for _, p := range splitRe.Split(input, -1) {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if !strings.HasSuffix(p, "?") {
			p += "?"
		}
		parts = append(parts, p)
	}
	return parts
}

// ResolveAll resolves each sub-question of input on its own and returns
// the answers as numbered lines in input order.
func (r *Resolver) ResolveAll(ctx context.Context, input string) string {
	parts := Split(input)
	lines := make([]string, len(parts))
	for i, p := range parts {
		lines[i] = fmt.Sprintf("%d. %s", i+1, r.resolvePart(ctx, p).String())
	}
	return strings.Join(lines, "\n")
}

// resolvePart runs the reduced cascade used for compound parts: exact
// lookup, heuristics, keyword rules, fuzzy fallback.
func (r *Resolver) resolvePart(_ context.Context, part string) Response {
	q := common.Normalize(part)
	if resp, ok := r.exact(q); ok {
		return resp
	}
	for _, h := range r.kb.Heuristics {
		if h.Matches(q) {
			return answer(SourceHeuristic, knowledge.Expand(h.Response, r.now()))
		}
	}
	if resp, ok := r.keyword(q); ok {
		return resp
	}
	return r.fallback(q)
}
