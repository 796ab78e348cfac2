package knowledge

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadBase(t *testing.T) *Base {
	t.Helper()
	b, err := Load()
	require.NoError(t, err)
	return b
}

func TestLoadNormalizesKeys(t *testing.T) {
	b := loadBase(t)

	_, ok := b.FAQ["wie heißt du"]
	assert.True(t, ok)
	_, ok = b.FAQ["wie heißt du?"]
	assert.False(t, ok)

	a, ok := b.DirectAnswer("wann beginnt das neue semester")
	require.True(t, ok)
	assert.Equal(t, "Das Semester beginnt am 1. Oktober.", a)
	assert.Len(t, b.DirectQuestions(), 6)
}

func TestFAQAnswerExpandsTime(t *testing.T) {
	b := loadBase(t)
	now := time.Date(2025, 5, 10, 14, 3, 9, 0, time.Local)

	got, ok := b.FAQAnswer("wie spät ist es", now)
	require.True(t, ok)
	assert.Equal(t, "Es ist jetzt: (14:03:09)", got)
}

func TestMatchCategory(t *testing.T) {
	b := loadBase(t)

	c, ok := b.MatchCategory("infos zum semester")
	require.True(t, ok)
	assert.Equal(t, "semester", c.Name)
	assert.Len(t, c.Questions, 3)

	c, ok = b.MatchCategory("wie viele versuche habe ich pro prüfung")
	require.True(t, ok)
	assert.Equal(t, "prüfung", c.Name)

	_, ok = b.MatchCategory("mensa")
	assert.False(t, ok)
}

func TestMatchLocationFollowsRouteOrder(t *testing.T) {
	b := loadBase(t)

	l, ok := b.MatchLocation("wie ist das wetter am gotec")
	require.True(t, ok)
	assert.Equal(t, "Goslar", l.City)

	l, ok = b.MatchLocation("wo ist der hörsaal")
	require.True(t, ok)
	assert.Equal(t, "Wolfenbüttel", l.City)

	l, ok = b.MatchLocation("veranstaltung heute")
	require.True(t, ok)
	assert.Equal(t, "gotec", l.Key)

	_, ok = b.MatchLocation("was ist dein name")
	assert.False(t, ok)
}

func TestTopicMatches(t *testing.T) {
	capital := Topic{All: []string{"hauptstadt", "deutschland"}}
	assert.True(t, capital.Matches("hauptstadt von deutschland"))
	assert.False(t, capital.Matches("hauptstadt"))

	joke := Topic{Any: []string{"witz"}}
	assert.True(t, joke.Matches("erzähl einen witz"))
	assert.False(t, Topic{}.Matches("anything"))
}

func TestParseRejectsUnknownRouteAndBadQuiz(t *testing.T) {
	_, err := Parse([]byte("location_routes:\n  - location: mars\n    terms: [x]\n"))
	assert.Error(t, err)

	_, err = Parse([]byte("quiz:\n  - question: q\n    options: [a, b]\n    correct: c\n"))
	assert.Error(t, err)

	_, err = Parse([]byte("faq: [unterminated"))
	assert.Error(t, err)
}

func TestAnswerTable(t *testing.T) {
	b := loadBase(t)
	table := AnswerTable(b.Answers)
	require.Len(t, table, 1)
	assert.Equal(t, "was ist dein name", table[0].Question)
	assert.Len(t, table[0].Answers, 3)

	assert.Len(t, AnswerTable(b.SampleAnswers), 9)
	assert.Len(t, b.Quiz, 10)
}
