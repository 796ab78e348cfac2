// Package display renders chatbot status on an optional 8x8 display.
package display

import (
	"fmt"
	"time"
)

// RGB is a pixel or text colour.
type RGB [3]uint8

var (
	White = RGB{255, 255, 255}
	Red   = RGB{255, 0, 0}
	Green = RGB{0, 255, 0}
	Blue  = RGB{0, 0, 255}
	Off   = RGB{0, 0, 0}
)

// Hex returns the colour as #rrggbb.
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c[0], c[1], c[2])
}

// Size is the edge length of a glyph.
const Size = 8

// Glyph is an 8x8 picture, row-major.
type Glyph struct {
	Name   string
	Pixels [Size * Size]RGB
}

// Sink is a display device. Calls must not block the caller for long.
type Sink interface {
	ShowMessage(text string, color RGB, scroll time.Duration)
	ShowGlyph(g Glyph, hold time.Duration)
	Clear()
}

// DefaultScroll is the per-column scroll delay of messages.
const DefaultScroll = 50 * time.Millisecond

// ShowTemperature shows temp as "21.5C" in white, or "No Temp" in red when
// the reading failed. A nil sink is ignored.
func ShowTemperature(s Sink, temp float64, err error) {
	if s == nil {
		return
	}
	if err != nil {
		s.ShowMessage("No Temp", Red, DefaultScroll)
		return
	}
	s.ShowMessage(fmt.Sprintf("%.1fC", temp), White, DefaultScroll)
}

// ShowScore shows the end glyph followed by "score/total".
func ShowScore(s Sink, score, total int) {
	if s == nil {
		return
	}
	s.ShowGlyph(End, time.Second)
	s.ShowMessage(fmt.Sprintf("%d/%d", score, total), White, DefaultScroll)
	s.Clear()
}

// Show shows g for hold and clears the display. A nil sink is ignored.
func Show(s Sink, g Glyph, hold time.Duration) {
	if s == nil {
		return
	}
	s.ShowGlyph(g, hold)
	s.Clear()
}
