package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"go.uber.org/zap"

	"github.com/Strangekim/jabdonsani/internal/batch"
	"github.com/Strangekim/jabdonsani/internal/config"
	"github.com/Strangekim/jabdonsani/internal/scheduler"
	"github.com/Strangekim/jabdonsani/internal/store"
	"github.com/Strangekim/jabdonsani/pkg/alert"
	"github.com/Strangekim/jabdonsani/pkg/crawler"
	"github.com/Strangekim/jabdonsani/pkg/server"
	"github.com/Strangekim/jabdonsani/pkg/translate"
)

func loadConfig() (*config.Config, error) {
	path := cfgFile
	if path == "" {
		if _, err := os.Stat("config.yaml"); err == nil {
			path = "config.yaml"
		}
	}
	return config.Load(path)
}

func newLogger() (*zap.SugaredLogger, error) {
	l, err := zap.NewProduction()
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return l.Sugar(), nil
}

func buildRunner(cfg *config.Config, db store.Store, logger *zap.SugaredLogger) (*batch.Runner, error) {
	if cfg.Anthropic.APIKey == "" {
		return nil, fmt.Errorf("anthropic api key not set (ANTHROPIC_API_KEY)")
	}

	sources, err := cfg.CrawlerConfigs()
	if err != nil {
		return nil, fmt.Errorf("parse sources: %w", err)
	}

	thumbnails := crawler.NewResolver()
	registry := crawler.NewRegistry(
		crawler.NewHackerNews(thumbnails),
		crawler.NewHFPapers(),
		crawler.NewDevTo(),
		crawler.NewLobsters(),
		crawler.NewReddit(),
	)

	client := translate.NewClaude(cfg.Anthropic.APIKey, cfg.Anthropic.Model, cfg.Anthropic.BaseURL)
	translator := translate.NewTranslator(client)

	return batch.New(db, registry, translator, sources, buildAlertManager(cfg), logger), nil
}

func buildAlertManager(cfg *config.Config) *alert.Manager {
	var notifiers []alert.Notifier

	if cfg.Alerts.Slack.Enabled && cfg.Alerts.Slack.WebhookURL != "" {
		notifiers = append(notifiers, alert.NewSlack(cfg.Alerts.Slack.WebhookURL))
	}
	if cfg.Alerts.Discord.Enabled && cfg.Alerts.Discord.WebhookURL != "" {
		notifiers = append(notifiers, alert.NewDiscord(cfg.Alerts.Discord.WebhookURL))
	}
	if cfg.Alerts.Webhook.Enabled && cfg.Alerts.Webhook.URL != "" {
		notifiers = append(notifiers, alert.NewWebhook(cfg.Alerts.Webhook.URL, cfg.Alerts.Webhook.Secret))
	}

	return alert.NewManager(notifiers)
}

func runCrawl() error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer logger.Sync()

	db, err := store.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()

	runner, err := buildRunner(cfg, db, logger)
	if err != nil {
		return err
	}

	ctx := context.Background()
	jobID, err := runner.RunOnce(ctx)
	if err != nil {
		return fmt.Errorf("run batch: %w", err)
	}

	job, err := db.LatestJob(ctx)
	if err != nil {
		return fmt.Errorf("read job: %w", err)
	}

	fmt.Printf("job %s: %s (%d items, %d errors)\n",
		jobID, job.Status, job.ItemsCollected, job.Errors)
	return nil
}

func runServe(port int) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if port == 0 {
		port = cfg.Server.Port
	}

	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer logger.Sync()

	db, err := store.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()

	runner, err := buildRunner(cfg, db, logger)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	sched := scheduler.New(runner, cfg.Schedule.Crons, logger)
	if err := sched.Start(); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	defer sched.Stop()

	srv := server.New(db, runner, logger, port)
	go func() {
		<-ctx.Done()
		logger.Infow("shutting down")
	}()

	return srv.ListenAndServe()
}

func runStatus() error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	db, err := store.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()

	job, err := db.LatestJob(context.Background())
	if err != nil {
		return fmt.Errorf("read job: %w", err)
	}
	if job == nil {
		fmt.Println("no batch jobs yet (run: jabdonsani crawl)")
		return nil
	}

	fmt.Printf("job:      %s\n", job.ID)
	fmt.Printf("status:   %s\n", job.Status)
	fmt.Printf("started:  %s\n", job.StartedAt.Format(time.RFC3339))
	if job.CompletedAt.Valid {
		fmt.Printf("finished: %s\n", job.CompletedAt.Time.Format(time.RFC3339))
	}
	fmt.Printf("items:    %d\n", job.ItemsCollected)
	fmt.Printf("errors:   %d\n", job.Errors)
	if job.ErrorLog.Valid && job.ErrorLog.String != "" {
		fmt.Printf("log:      %s\n", job.ErrorLog.String)
	}
	return nil
}

func runTrendsList(jsonOutput bool, field string, limit int) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	db, err := store.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()

	opts := store.ListOpts{Limit: limit}
	if field != "" {
		f := crawler.Field(field)
		if !crawler.ValidField(f) {
			return fmt.Errorf("unknown field %q (want ai, dev or robotics)", field)
		}
		opts.Field = f
	}

	trends, err := db.ListTrends(context.Background(), opts)
	if err != nil {
		return fmt.Errorf("list trends: %w", err)
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(trends)
	}

	if len(trends) == 0 {
		fmt.Println("no trends found (try collecting first: jabdonsani crawl)")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "FIELD\tSOURCE\tSCORE\tTITLE\tCREATED")
	for _, t := range trends {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n",
			t.Field, t.Source, t.Score, t.Title,
			t.CreatedAt.Format(time.RFC3339))
	}
	return w.Flush()
}
