package resolver

import (
	"fmt"
	"strings"

	"github.com/i474232898/campusbot/internal/knowledge"
)

// Kind is the shape of a Response.
type Kind string

const (
	KindAnswer    Kind = "answer"
	KindLocation  Kind = "location"
	KindSelection Kind = "selection"
	KindNoAnswer  Kind = "no_answer"
)

// Source names the cascade step that produced a Response.
type Source string

const (
	SourceLocation  Source = "location"
	SourceCompound  Source = "compound"
	SourceAnswers   Source = "answers"
	SourceFAQ       Source = "faq"
	SourceKnowledge Source = "knowledge"
	SourceHeuristic Source = "heuristic"
	SourceKeyword   Source = "keyword"
	SourceTopic     Source = "topic"
	SourceTypo      Source = "typo"
	SourceFuzzy     Source = "fuzzy"
	SourceNone      Source = "none"
)

// NoAnswer is the reply when nothing in the cascade matched.
const NoAnswer = "Tut mir leid, dazu habe ich keine Antwort."

// Response is the outcome of resolving one input.
type Response struct {
	Kind      Kind            `json:"kind"`
	Source    Source          `json:"source"`
	Text      string          `json:"text,omitempty"`
	Location  *LocationAnswer `json:"location,omitempty"`
	Selection *Selection      `json:"selection,omitempty"`
}

// Selection asks the caller to choose one of a category's questions.
type Selection struct {
	Category string   `json:"category"`
	Options  []string `json:"options"`
}

// LocationAnswer combines place details, weather and the sensor average.
type LocationAnswer struct {
	Info    knowledge.Location `json:"info"`
	Time    string             `json:"time"`
	Weather string             `json:"weather"`
	Window  string             `json:"window"`
	Average string             `json:"average"`
}

func answer(src Source, text string) Response {
	return Response{Kind: KindAnswer, Source: src, Text: text}
}

func noAnswer() Response {
	return Response{Kind: KindNoAnswer, Source: SourceNone, Text: NoAnswer}
}

// String renders the response the way the chat prints it.
func (r Response) String() string {
	switch {
	case r.Location != nil:
		return r.Location.String()
	case r.Selection != nil:
		return r.Selection.String()
	default:
		return r.Text
	}
}

func (s Selection) String() string {
	var b strings.Builder
	b.WriteString("Meintest du vielleicht eine dieser Fragen?\n")
	for i, q := range s.Options {
		fmt.Fprintf(&b, "\n%d. %s", i+1, q)
	}
	return b.String()
}

func (l LocationAnswer) String() string {
	var b strings.Builder
	b.WriteString("Ort-Informationen:\n")
	fmt.Fprintf(&b, "  Name: %s\n", l.Info.Name)
	fmt.Fprintf(&b, "  Universität: %s\n", l.Info.University)
	fmt.Fprintf(&b, "  Adresse: %s\n", l.Info.Address)
	fmt.Fprintf(&b, "  Beschreibung: %s\n", l.Info.Description)
	fmt.Fprintf(&b, "  Stadt: %s\n", l.Info.City)
	fmt.Fprintf(&b, "  Zeit: %s\n", l.Time)
	fmt.Fprintf(&b, "Wetter: %s\n", l.Weather)
	b.WriteString("Durchschnittstemperatur (Sensor, 3 Tage):\n")
	fmt.Fprintf(&b, "  Zeitraum: %s\n", l.Window)
	fmt.Fprintf(&b, "  Temperatur: %s", l.Average)
	return b.String()
}
