package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"math/rand/v2"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/i474232898/campusbot/internal/common"
	"github.com/i474232898/campusbot/internal/display"
	"github.com/i474232898/campusbot/internal/knowledge"
	"github.com/i474232898/campusbot/internal/quiz"
	"github.com/i474232898/campusbot/internal/resolver"
	"github.com/i474232898/campusbot/internal/scheduler"
	"github.com/i474232898/campusbot/internal/sensor"
)

// maxSelectAttempts bounds the prompts for one category menu.
const maxSelectAttempts = 3

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start the interactive chat (default)",
	Long: `Starts the interactive chat and samples temperatures in the background.
Type 'trivia' to play a quiz round and 'bye' to quit.`,
	RunE: runChat,
}

func runChat(cmd *cobra.Command, _ []string) error {
	b, err := loadBot(cmd)
	if err != nil {
		return err
	}
	defer b.Close()

	sched := scheduler.New(b.sampler, b.cfg.SampleInterval, logger)
	if err := sched.Start(); err != nil {
		return fmt.Errorf("start sampler: %w", err)
	}
	defer sched.Stop()

	c := &chat{
		resolver: b.resolver,
		quiz:     b.kb.Quiz,
		sensor:   b.sensor,
		display:  b.display,
		out:      cmd.OutOrStdout(),
		lines:    readLines(cmd.InOrStdin()),
		now:      time.Now,
	}
	c.run(cmd.Context())
	return nil
}

// chat is one interactive session on a line-oriented terminal.
type chat struct {
	resolver *resolver.Resolver
	quiz     []knowledge.QuizQuestion
	sensor   sensor.Source
	display  display.Sink
	out      io.Writer
	lines    <-chan string
	now      func() time.Time
	rng      *rand.Rand
}

func (c *chat) run(ctx context.Context) {
	c.say("Hallo!")
	display.Show(c.display, display.Start, time.Second)
	c.say("Wie kann ich Ihnen helfen?")

	for {
		c.showTemperature(ctx)

		line, ok := c.prompt(ctx, "Du: ")
		if !ok {
			fmt.Fprintln(c.out)
			c.say("Auf Wiedersehen!")
			return
		}

		switch common.Normalize(line) {
		case "":
			continue
		case "bye":
			c.say("Auf Wiedersehen!")
			return
		case "trivia":
			c.runQuiz(ctx)
			continue
		}

		resp := c.resolver.Resolve(ctx, line)
		if resp.Selection != nil {
			c.choose(ctx, *resp.Selection)
			continue
		}
		printResponse(c.out, c.now(), resp)
	}
}

// choose prompts for a menu entry until a valid one is given or the
// attempts run out.
func (c *chat) choose(ctx context.Context, sel resolver.Selection) {
	c.say("%s", sel.String())
	for range maxSelectAttempts {
		line, ok := c.prompt(ctx, common.ClockTime(c.now())+" Gib die Zahl deiner Wahl ein: ")
		if !ok {
			return
		}
		resp, err := c.resolver.Select(sel, line)
		if err == nil {
			c.say("Antwort: %s", resp.String())
			return
		}
		c.say("Ungültige Auswahl. Bitte gib eine Zahl zwischen 1 und %d ein.", len(sel.Options))
	}
	c.say("Zu viele ungültige Eingaben.")
}

func (c *chat) runQuiz(ctx context.Context) {
	s := quiz.NewSession(c.quiz, quiz.DefaultRounds, c.rng)
	c.say("Quiz-Spiel gestartet! %d Fragen warten auf dich. Gib die Nummer der Antwort ein.", s.Total())
	display.Show(c.display, display.QuizStart, time.Second)
	c.say("Zum Beenden des Spiels gib 'trivia' ein.")

	for {
		q, n, ok := s.Current()
		if !ok {
			break
		}
		correct, answered := s.Score()
		fmt.Fprintln(c.out)
		c.say("Frage %d von %d: %s", n, s.Total(), q.Question)
		for i, opt := range q.Options {
			fmt.Fprintf(c.out, "%d. %s\n", i+1, opt)
		}
		c.say("Aktueller Punktestand: %d/%d", correct, answered)

		if !c.askQuizQuestion(ctx, s, q) {
			break
		}
	}

	correct, answered := s.Score()
	c.say("Quiz beendet! Endstand: %d/%d", correct, answered)
	display.ShowScore(c.display, correct, s.Total())
}

// askQuizQuestion reads answers until one is valid. It returns false when
// the player quits the round.
func (c *chat) askQuizQuestion(ctx context.Context, s *quiz.Session, q knowledge.QuizQuestion) bool {
	for {
		line, ok := c.prompt(ctx, fmt.Sprintf("%s Deine Antwort (1-%d oder 'trivia'): ", common.ClockTime(c.now()), len(q.Options)))
		if !ok {
			return false
		}
		line = strings.ToLower(strings.TrimSpace(line))
		if line == "trivia" {
			return false
		}

		if choice, err := strconv.Atoi(line); err == nil {
			if right, err := s.Answer(choice); err == nil {
				if right {
					c.say("Richtig!")
					display.Show(c.display, display.Correct, time.Second)
				} else {
					c.say("Falsch! Die richtige Antwort ist: %s", q.Correct)
					display.Show(c.display, display.Incorrect, time.Second)
				}
				return true
			}
		}
		c.say("Bitte gib eine gültige Antwort (1-%d) oder 'trivia' ein.", len(q.Options))
	}
}

func (c *chat) showTemperature(ctx context.Context) {
	if c.display == nil {
		return
	}
	temp, err := 0.0, error(sensor.ErrUnavailable)
	if c.sensor != nil {
		temp, err = c.sensor.Read(ctx)
	}
	display.ShowTemperature(c.display, temp, err)
}

func (c *chat) say(format string, args ...any) {
	fmt.Fprintf(c.out, "%s %s\n", common.ClockTime(c.now()), fmt.Sprintf(format, args...))
}

// prompt prints p and waits for the next line. ok is false on end of input
// or cancellation.
func (c *chat) prompt(ctx context.Context, p string) (line string, ok bool) {
	fmt.Fprint(c.out, p)
	select {
	case <-ctx.Done():
		return "", false
	case line, ok = <-c.lines:
		return line, ok
	}
}

func readLines(r io.Reader) <-chan string {
	ch := make(chan string)
	go func() {
		defer close(ch)
		sc := bufio.NewScanner(r)
		for sc.Scan() {
			ch <- sc.Text()
		}
	}()
	return ch
}

// printResponse prints resp prefixed with the clock time of now.
func printResponse(w io.Writer, now time.Time, resp resolver.Response) {
	if resp.Location != nil {
		fmt.Fprintf(w, "\n%s Antwort:\n%s\n\n", common.ClockTime(now), resp.String())
		return
	}
	fmt.Fprintf(w, "%s %s\n", common.ClockTime(now), resp.String())
}
