package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"revision-buddy/config"
	"revision-buddy/llm"
	"revision-buddy/logger"
	"revision-buddy/quiz"
	"revision-buddy/rag"
)

const rootLongDesc string = `Revision buddy is a chat tutor for OCR GCSE Business.

  buddy serve     Run the HTTP server
  buddy search    Search note files the way a chat turn does
  buddy score     Mark an answer against a model answer`

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "buddy",
		Short:         "OCR GCSE Business revision buddy",
		Long:          rootLongDesc,
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().StringP("config", "c", "", "Path to config file (default: ./buddy.toml)")

	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newSearchCmd())
	cmd.AddCommand(newScoreCmd())

	return cmd
}

type serveCommander struct {
	listen     string
	configPath string
	debug      bool
	logger     *zap.Logger
}

func newServeCmd() *cobra.Command {
	cmder := &serveCommander{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the revision buddy HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %w", err)
			}
			cmder.configPath, err = cmd.Flags().GetString("config")
			if err != nil {
				return fmt.Errorf("could not get config flag: %w", err)
			}
			return cmder.run(cmd.Context())
		},
	}

	cmd.Flags().StringVarP(&cmder.listen, "listen", "l", "", "Address to listen on (overrides config)")

	return cmd
}

func (c *serveCommander) run(ctx context.Context) error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	if c.listen != "" {
		cfg.Listen = c.listen
	}

	c.logger = logger.NewLoggerWithFile(c.debug || cfg.Debug, cfg.LogFile)
	defer c.logger.Sync()

	model, err := llm.New(cfg.LLM.Client())
	switch {
	case errors.Is(err, llm.ErrNoProvider):
		c.logger.Info("no llm provider configured, replies are scripted")
	case err != nil:
		return err
	default:
		c.logger.Info("using llm provider", zap.String("provider", model.Name()))
	}

	if cfg.TeacherPasscode == "" {
		c.logger.Info("no teacher passcode set, dashboard disabled")
	}

	server := NewServer(cfg, model, c.logger)

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Run()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		c.logger.Info("shutting down")
		return server.Shutdown()
	}
}

func newSearchCmd() *cobra.Command {
	var (
		query string
		limit int
	)

	cmd := &cobra.Command{
		Use:   "search <file>...",
		Short: "Print the note excerpts a query would pull in",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			notes := rag.NewNoteCollection()
			for _, path := range args {
				data, err := os.ReadFile(path)
				if err != nil {
					return fmt.Errorf("reading %s: %w", path, err)
				}
				text, err := rag.Extract(path, data)
				if err != nil {
					return err
				}
				notes.Add(filepath.Base(path), text)
			}

			out := cmd.OutOrStdout()
			for s := range rag.Search(notes, query, limit) {
				fmt.Fprintln(out, s.String())
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&query, "query", "q", "", "Question to search for")
	cmd.Flags().IntVarP(&limit, "max", "n", rag.DefaultMaxSnippets, "Maximum number of excerpts")
	_ = cmd.MarkFlagRequired("query")

	return cmd
}

func newScoreCmd() *cobra.Command {
	var reference, answer string

	cmd := &cobra.Command{
		Use:   "score",
		Short: "Mark an answer against a model answer",
		RunE: func(cmd *cobra.Command, _ []string) error {
			res := quiz.ScoreAnswer(reference, answer)
			fmt.Fprintf(cmd.OutOrStdout(), "Score %d/%d: %s\n", res.Score, quiz.MaxScore, res.Feedback)
			return nil
		},
	}

	cmd.Flags().StringVarP(&reference, "reference", "r", "", "Model answer")
	cmd.Flags().StringVarP(&answer, "answer", "a", "", "Student answer")
	_ = cmd.MarkFlagRequired("reference")

	return cmd
}
