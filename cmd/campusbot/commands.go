package main

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/i474232898/campusbot/internal/answers"
	"github.com/i474232898/campusbot/internal/common"
	"github.com/i474232898/campusbot/internal/config"
	"github.com/i474232898/campusbot/internal/knowledge"
	"github.com/i474232898/campusbot/internal/resolver"
	"github.com/i474232898/campusbot/internal/store"
	"github.com/i474232898/campusbot/internal/temperature"
)

var (
	allAnswers   bool
	removeAnswer string
	importFile   string
)

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Answer a single question and exit",
	Long: `Answers one question without prompting. Knowledge categories are answered
with the closest matching question instead of a menu.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

var addCmd = &cobra.Command{
	Use:   "add <question> <answer>",
	Short: "Add an answer to the answer table",
	Args:  cobra.ExactArgs(2),
	RunE:  runAdd,
}

var removeCmd = &cobra.Command{
	Use:   "remove <question>",
	Short: "Remove a question, or one of its answers with --answer",
	Args:  cobra.ExactArgs(1),
	RunE:  runRemove,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List every known question",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Show the 3-day sensor and weather temperature spread",
	Args:  cobra.NoArgs,
	RunE:  runCompare,
}

var importCmd = &cobra.Command{
	Use:   "import --file <path>",
	Short: "Replace the answer table with a CSV file",
	Long: `Replaces the answer table with the contents of a CSV file with the columns
question,answer1,answer2,answer3,answer4. The file must hold at least 9
questions; otherwise the current table is kept.`,
	Args: cobra.NoArgs,
	RunE: runImport,
}

// loadBot reads the configuration and wires a bot for cmd.
func loadBot(cmd *cobra.Command) (*bot, error) {
	cfg, envFile, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if !envFile {
		logger.Info("no .env file found; using environment only")
	}
	return newBot(cfg, cmd.OutOrStdout(), logger)
}

func runAsk(cmd *cobra.Command, args []string) error {
	b, err := loadBot(cmd)
	if err != nil {
		return err
	}
	defer b.Close()

	r := b.resolver.With(resolver.WithMode(resolver.SingleShot), resolver.WithAllAnswers(allAnswers))
	printResponse(cmd.OutOrStdout(), time.Now(), r.Resolve(cmd.Context(), strings.Join(args, " ")))
	return nil
}

func runAdd(cmd *cobra.Command, args []string) error {
	b, err := loadBot(cmd)
	if err != nil {
		return err
	}
	defer b.Close()

	question, answer := args[0], args[1]
	if err := b.answers.Add(question, answer); err != nil {
		return err
	}
	logger.Info("answer added", zap.String("question", question), zap.String("answer", answer))
	fmt.Fprintf(cmd.OutOrStdout(), "%s Frage hinzugefügt: %s -> %s\n", common.ClockTime(time.Now()), question, answer)
	return nil
}

func runRemove(cmd *cobra.Command, args []string) error {
	b, err := loadBot(cmd)
	if err != nil {
		return err
	}
	defer b.Close()

	out, now := cmd.OutOrStdout(), common.ClockTime(time.Now())
	question := common.Normalize(args[0])

	if removeAnswer != "" {
		removed, err := b.answers.RemoveAnswer(question, strings.TrimSpace(removeAnswer))
		if err != nil {
			return err
		}
		if !removed {
			fmt.Fprintf(out, "%s Antwort '%s' für Frage '%s' nicht gefunden.\n", now, removeAnswer, question)
			return nil
		}
		logger.Info("answer removed", zap.String("question", question), zap.String("answer", removeAnswer))
		fmt.Fprintf(out, "%s Antwort '%s' wurde von der Frage '%s' entfernt.\n", now, removeAnswer, question)
		return nil
	}

	removed, err := b.answers.RemoveQuestion(question)
	if err != nil {
		return err
	}
	if !removed {
		fmt.Fprintf(out, "%s Frage nicht gefunden: %s\n", now, question)
		return nil
	}
	logger.Info("question removed", zap.String("question", question))
	fmt.Fprintf(out, "%s Frage entfernt: %s\n", now, question)
	return nil
}

func runList(cmd *cobra.Command, _ []string) error {
	b, err := loadBot(cmd)
	if err != nil {
		return err
	}
	defer b.Close()

	writeQuestionList(cmd.OutOrStdout(), time.Now(), b.answers, b.kb)
	return nil
}

func runCompare(cmd *cobra.Command, _ []string) error {
	b, err := loadBot(cmd)
	if err != nil {
		return err
	}
	defer b.Close()

	fmt.Fprintln(cmd.OutOrStdout(), temperature.ComparisonTable(b.temps.Compare()))
	return nil
}

func runImport(cmd *cobra.Command, _ []string) error {
	b, err := loadBot(cmd)
	if err != nil {
		return err
	}
	defer b.Close()

	out, now := cmd.OutOrStdout(), common.ClockTime(time.Now())
	table, err := store.ReadCSVTable(importFile)
	if err != nil {
		return fmt.Errorf("import %s: %w", importFile, err)
	}
	if err := b.answers.Import(table); err != nil {
		if errors.Is(err, answers.ErrTooFewQuestions) {
			fmt.Fprintf(out, "%s Fehler: CSV-Datei muss mindestens %d Fragen enthalten.\n", now, answers.MinImportQuestions)
		}
		return err
	}
	logger.Info("csv imported", zap.String("path", importFile), zap.Int("questions", len(table)))
	fmt.Fprintf(out, "%s CSV-Datei erfolgreich importiert. Wissensbasis wurde aktualisiert.\n", now)
	return nil
}

// writeQuestionList prints every question the bot knows, grouped by source.
func writeQuestionList(w io.Writer, now time.Time, s *answers.Store, kb *knowledge.Base) {
	fmt.Fprintf(w, "%s Liste aller Fragen in der Wissensbasis:\n\n", common.ClockTime(now))

	listSection(w, "Fragen aus der CSV-Datei", s.Questions())
	listSection(w, "Fragen aus der Knowledge Base", kb.DirectQuestions())
	listSection(w, "Fragen aus der FAQ", kb.FAQQuestions())

	fmt.Fprintln(w, "=== Fragen aus Varianten ===")
	if len(kb.KeywordRules) == 0 {
		fmt.Fprintln(w, "Keine Fragen vorhanden.")
	}
	for _, rule := range kb.KeywordRules {
		fmt.Fprintf(w, "--- Kategorie: %s ---\n", rule.Name)
		for i, v := range rule.Variants {
			fmt.Fprintf(w, "%d. %s\n", i+1, v)
		}
	}
}

func listSection(w io.Writer, title string, questions []string) {
	fmt.Fprintf(w, "=== %s ===\n", title)
	if len(questions) == 0 {
		fmt.Fprintln(w, "Keine Fragen vorhanden.")
	}
	for i, q := range questions {
		fmt.Fprintf(w, "%d. %s\n", i+1, q)
	}
	fmt.Fprintln(w)
}
