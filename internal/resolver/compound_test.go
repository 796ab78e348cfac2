package resolver

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplit(t *testing.T) {
	cases := map[string][]string{
		"Wann beginnt das Semester und wo ist der Hörsaal?": {"Wann beginnt das Semester?", "wo ist der Hörsaal?"},
		"Hallo, was ist Python? und wer bist du":            {"was ist Python?", "wer bist du?"},
		"hi wie spät ist es? Was kannst du tun?":            {"wie spät ist es?", "Was kannst du tun?"},
		"hier ist der Hund oder die Katze":                  {"hier ist der Hund?", "die Katze?"},
		"eins? zwei? drei?":                                 {"eins?", "zwei?", "drei?"},
		"what is this and where is that":                    {"what is this?", "where is that?"},
		"  ?? und  ":                                        nil,
	}
	for in, want := range cases {
		assert.Equal(t, want, Split(in), in)
	}
}

func TestIsCompound(t *testing.T) {
	assert.True(t, isCompound("wann beginnt das semester und wo ist der hörsaal?"))
	assert.True(t, isCompound("was ist python? wer bist du?"))
	assert.False(t, isCompound("wie spät ist es?"))
	assert.False(t, isCompound("der hund bellt"))
	assert.False(t, isCompound("was ist dein name??"))
}

func TestResolveAllNumbersParts(t *testing.T) {
	r, _ := newResolver(t)

	out := r.ResolveAll(context.Background(), "Wann beginnt das Semester und wo ist der Hörsaal?")
	assert.Equal(t,
		"1. Das Semester beginnt am 1. Oktober.\n"+
			"2. Bitte spezifizieren Sie den Hörsaal oder die Stadt (z.B. 'Hörsaal Wolfenbüttel').",
		out)

	out = r.ResolveAll(context.Background(), "Was ist dein Name? Wie alt bist du?")
	assert.Equal(t, "1. Ich bin dein freundlicher Chatbot.\n2. "+NoAnswer, out)
}

func TestResolveDelegatesCompound(t *testing.T) {
	r, _ := newResolver(t)

	resp := r.Resolve(context.Background(), "Wann beginnt das Semester und wann finden die Prüfungen statt?")
	assert.Equal(t, SourceCompound, resp.Source)
	assert.Equal(t,
		"1. Das Semester beginnt am 1. Oktober.\n"+
			"2. Die Prüfungen finden normalerweise am Ende des Semesters statt.",
		resp.Text)

	resp = r.Resolve(context.Background(), "Muss ich den Semesterbeitrag bezahlen und wie spät ist es?")
	assert.Equal(t,
		"1. Der Semesterbeitrag muss bis zum 15. Oktober bezahlt werden.\n"+
			"2. Es ist jetzt: (10:00:00)",
		resp.Text)
}
