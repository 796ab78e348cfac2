package display

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// Terminal draws glyphs and messages on a writer with lipgloss colours.
// Hold and scroll durations are ignored; output is immediate.
type Terminal struct {
	mu       sync.Mutex
	out      io.Writer
	renderer *lipgloss.Renderer
	frame    lipgloss.Style
}

func NewTerminal(out io.Writer) *Terminal {
	r := lipgloss.NewRenderer(out)
	return &Terminal{
		out:      out,
		renderer: r,
		frame:    r.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1),
	}
}

func (t *Terminal) ShowMessage(text string, color RGB, _ time.Duration) {
	style := t.renderer.NewStyle().Bold(true).Foreground(lipgloss.Color(color.Hex()))
	t.write(t.frame.Render(style.Render(text)))
}

func (t *Terminal) ShowGlyph(g Glyph, _ time.Duration) {
	var b strings.Builder
	for y := 0; y < Size; y++ {
		if y > 0 {
			b.WriteByte('\n')
		}
		for x := 0; x < Size; x++ {
			px := g.Pixels[y*Size+x]
			if px == Off {
				b.WriteString("  ")
				continue
			}
			b.WriteString(t.renderer.NewStyle().Foreground(lipgloss.Color(px.Hex())).Render("██"))
		}
	}
	t.write(t.frame.Render(b.String()))
}

// Clear is a no-op; the terminal keeps its scrollback.
func (t *Terminal) Clear() {}

func (t *Terminal) write(s string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintln(t.out, s)
}

// New returns the sink named by kind: "terminal" or "none". "none" yields nil.
func New(kind string, out io.Writer) (Sink, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "", "none":
		return nil, nil
	case "terminal":
		return NewTerminal(out), nil
	default:
		return nil, fmt.Errorf("unknown display %q", kind)
	}
}
