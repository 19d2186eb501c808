package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"StrategyScanner/internal/config"
	"StrategyScanner/internal/criteria"
	"StrategyScanner/internal/domain"
	"StrategyScanner/internal/infrastructure/blog"
	"StrategyScanner/internal/infrastructure/llm"
	"StrategyScanner/internal/infrastructure/reddit"
	"StrategyScanner/internal/infrastructure/storage"
	"StrategyScanner/internal/infrastructure/telegram"
	"StrategyScanner/internal/infrastructure/youtube"
	"StrategyScanner/internal/normalize"
	"StrategyScanner/internal/ports"
	"StrategyScanner/internal/scanner"
	"StrategyScanner/internal/scheduler"
	"StrategyScanner/internal/server"
	"StrategyScanner/internal/usecase"
)

// Application wires configuration to the pipeline, server, and scheduler.
type Application struct {
	cfg   config.Config
	log   zerolog.Logger
	repo  *storage.SQLiteRepository
	srv   *server.Server
	sched *scheduler.Scheduler
}

// New builds a runnable application instance.
func New(cfg config.Config, log zerolog.Logger) (*Application, error) {
	repo, err := storage.Open(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("open strategy store: %w", err)
	}

	registry := scanner.NewRegistry()
	registry.Register(domain.SourceYouTube, youtube.New)
	registry.Register(domain.SourceReddit, reddit.New)
	registry.Register(domain.SourceBlog, blog.New)

	extractor := llm.NewExtractor(cfg.LLM, &http.Client{Timeout: 60 * time.Second}, log)

	aggregator := usecase.NewAggregator(usecase.AggregatorDeps{
		Registry:   registry,
		Extractor:  extractor,
		Normalizer: normalize.New(log),
		Log:        log,
	})

	parser := criteria.NewParser(log)

	srv := server.New(server.Config{
		Port:       cfg.Server.Port,
		Log:        log,
		Parser:     parser,
		Pipeline:   aggregator,
		Repository: repo,
	})

	app := &Application{cfg: cfg, log: log, repo: repo, srv: srv}

	if cfg.Scheduler.CronExpression != "" {
		var notifier ports.Notifier
		if cfg.Telegram.BotToken != "" && cfg.Telegram.ChatID != "" {
			notifier = telegram.NewNotifier(cfg.Telegram)
		}

		app.sched = scheduler.New(log, cron.WithLocation(cfg.Scheduler.Location()))
		job := scheduler.NewScanJob(scheduler.ScanJobConfig{
			Log:           log,
			Parser:        parser,
			Pipeline:      aggregator,
			Repository:    repo,
			Notifier:      notifier,
			RawCriteria:   cfg.Scan.Criteria,
			YouTubeAPIKey: cfg.Scan.YouTubeAPIKey,
		})
		if err := app.sched.AddJob(cfg.Scheduler.CronExpression, job); err != nil {
			return nil, fmt.Errorf("register scheduled scan: %w", err)
		}
	}

	return app, nil
}

// Run starts the scheduler and HTTP server and blocks until ctx is
// cancelled, then shuts both down.
func (a *Application) Run(ctx context.Context) error {
	if a.sched != nil {
		a.sched.Start()
		defer a.sched.Stop()
	}
	defer a.repo.Close()

	errCh := make(chan error, 1)
	go func() {
		if err := a.srv.Start(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return a.srv.Shutdown(shutdownCtx)
}
