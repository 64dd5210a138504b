package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"legalbot/internal/config"
	"legalbot/internal/logger"
	"legalbot/internal/transport/rest"
	"legalbot/internal/tui"
)

func newApp() *cli.App {
	return &cli.App{
		Name:  "legalbot",
		Usage: "Answer legal questions from a table of legal provisions",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to YAML config file (uses ./config.yaml or ~/.config/legalbot/config.yaml if not provided)",
			},
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Override logging level (debug, info, warn, error)",
			},
			&cli.StringFlag{
				Name:  "corpus",
				Usage: "Override corpus.path",
			},
		},
		Before: func(*cli.Context) error {
			_ = godotenv.Load()
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Serve the HTTP API",
				Action: serveCommand,
			},
			{
				Name:   "chat",
				Usage:  "Start an interactive chat session",
				Action: chatCommand,
			},
			{
				Name:      "ask",
				Usage:     "Answer a single question and exit",
				ArgsUsage: "<question words...>",
				Action:    askCommand,
			},
		},
	}
}

func loadConfig(c *cli.Context) (*config.AppConfig, error) {
	var (
		cfg *config.AppConfig
		err error
	)
	if path := c.String("config"); path != "" {
		cfg, err = config.Load(path)
	} else {
		cfg, _, err = config.LoadDefault()
	}
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if p := c.String("corpus"); p != "" {
		cfg.Corpus.Path = p
	}
	if lvl := c.String("log-level"); lvl != "" {
		cfg.Logging.Level = lvl
	}
	return cfg, nil
}

func serveCommand(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	log, err := logger.NewLogger(cfg.Logging.Env, cfg.Logging.Level, cfg.Logging.File)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := buildAssistant(ctx, cfg, log)
	if err != nil {
		log.Error("Failed to initialize legal assistant", zap.Error(err))
		return err
	}
	defer app.Close()

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      rest.NewServer(app.Assistant, log).Router(cfg.HTTP.AllowedOrigins),
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
		log.Info("Received shutdown signal")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Error during shutdown", zap.Error(err))
	}
	log.Info("Server stopped gracefully")
	return nil
}

func chatCommand(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	// the terminal belongs to the UI: log to a file or nowhere
	log := zap.NewNop()
	if cfg.Logging.File != "" {
		if log, err = logger.NewLogger(cfg.Logging.Env, cfg.Logging.Level, cfg.Logging.File); err != nil {
			return err
		}
	}
	defer func() { _ = log.Sync() }()

	fmt.Fprintln(c.App.Writer, "Preparing legal knowledge base... 📚")
	app, err := buildAssistant(c.Context, cfg, log)
	if err != nil {
		return err
	}
	defer app.Close()

	status := fmt.Sprintf("Loaded %d records (%s). Ready.", app.Assistant.Len(), app.Assistant.EmbedderName())
	m := tui.New(c.Context, app.Assistant, status)
	_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(c.Context)).Run()
	if err == nil {
		fmt.Fprintln(c.App.Writer, tui.Farewell)
	}
	return err
}

func askCommand(c *cli.Context) error {
	question := strings.Join(c.Args().Slice(), " ")
	if strings.TrimSpace(question) == "" {
		return errors.New("a question is required")
	}
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	log := zap.NewNop()
	if cfg.Logging.File != "" {
		if log, err = logger.NewLogger(cfg.Logging.Env, cfg.Logging.Level, cfg.Logging.File); err != nil {
			return err
		}
	}
	defer func() { _ = log.Sync() }()

	app, err := buildAssistant(c.Context, cfg, log)
	if err != nil {
		return err
	}
	defer app.Close()

	reply, err := app.Assistant.Reply(c.Context, question)
	if err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, reply)
	return nil
}
