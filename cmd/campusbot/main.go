package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	logEnabled bool
	logLevel   string

	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "campusbot",
	Short: "Rule-based campus chatbot with temperature logging",
	Long: `campusbot answers campus questions from a CSV answer table, a built-in
knowledge base and keyword rules, and looks up the weather for campus
locations. While chatting or serving it samples a local temperature sensor
and the outside temperature every few minutes.

Run without a subcommand to start the interactive chat.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		l, err := newLogger(logFile, cmd.ErrOrStderr(), logEnabled, logLevel)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		logger = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
	RunE: runChat,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&logEnabled, "log", false, "write a log to "+logFile)
	rootCmd.PersistentFlags().StringVar(&logLevel, "level", "WARNING", "log level: INFO or WARNING")

	askCmd.Flags().BoolVar(&allAnswers, "all-answers", false, "show every stored answer")
	removeCmd.Flags().StringVar(&removeAnswer, "answer", "", "remove only this answer")
	importCmd.Flags().StringVar(&importFile, "file", "", "CSV file to import")
	_ = importCmd.MarkFlagRequired("file")

	rootCmd.AddCommand(chatCmd, askCmd, addCmd, removeCmd, listCmd, compareCmd, importCmd, serveCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
