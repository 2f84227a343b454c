// Package main contains the entrypoint for the secretary bot.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/rsilveira/secretary-bot/internal/bot"
	"github.com/rsilveira/secretary-bot/internal/bot/handlers"
	"github.com/rsilveira/secretary-bot/internal/config"
	"github.com/rsilveira/secretary-bot/internal/database"
	"github.com/rsilveira/secretary-bot/internal/logger"
	"github.com/rsilveira/secretary-bot/internal/telegram"
	"github.com/rsilveira/secretary-bot/internal/topic"
	"github.com/rsilveira/secretary-bot/internal/triage"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	exitCode := run(ctx)
	stop()
	os.Exit(exitCode)
}

// run wires all components together and blocks until shutdown, returning the
// process exit code.
func run(ctx context.Context) int {
	configPath := flag.String("config", "", "Path to configuration file (default: ./config.yaml)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		return 1
	}

	log := logger.New(cfg.Logger.Level, cfg.Logger.Format)
	log.Info("Logger initialized", "level", cfg.Logger.Level, "format", cfg.Logger.Format)

	db, err := database.NewDB(cfg.Database.Path)
	if err != nil {
		log.Error("Failed to open database", "path", cfg.Database.Path, "error", err)
		return 1
	}
	defer database.CloseDB(db)
	store := database.NewStore(db, log)

	registry := triage.NewRegistry(store, log)
	if err := registry.Refresh(ctx); err != nil {
		log.Error("Failed to load high priority registry", "error", err)
		return 1
	}

	topicClient, err := topic.NewClient(ctx, cfg.Topic, log)
	if err != nil {
		log.Error("Failed to initialize topic hint client", "error", err)
		return 1
	}
	var hinter triage.TopicHinter
	if topicClient != nil {
		hinter = topicClient
	} else {
		log.Info("Topic hints disabled, no API key configured")
	}

	deps := handlers.HandlerDeps{
		Logger:   log,
		Config:   cfg,
		Store:    store,
		Registry: registry,
	}

	// The capture handler needs the pipeline, which needs the notifier,
	// which needs the bot instance. Bind the handler after wiring finishes.
	var capture tgbot.HandlerFunc
	botOpts := []tgbot.Option{
		tgbot.WithMiddlewares(logger.Middleware(log)),
		tgbot.WithDefaultHandler(func(ctx context.Context, b *tgbot.Bot, update *models.Update) {
			if capture != nil {
				capture(ctx, b, update)
			}
		}),
	}
	tg, err := telegram.New(cfg.Telegram.Token, log, botOpts...)
	if err != nil {
		log.Error("Failed to create Telegram bot", "error", err)
		return 1
	}

	notifier := bot.NewNotifier(tg, cfg.Telegram.OwnerID, log)

	deps.Pipeline = triage.NewPipeline(
		store,
		registry,
		triage.NewFeatureExtractor(cfg.Telegram.BotUsername),
		hinter,
		notifier,
		triage.PipelineConfig{
			WarningThreshold: cfg.Triage.WarningThreshold,
			TopicTimeout:     cfg.Topic.Timeout,
		},
		log,
	)
	deps.Selector = triage.NewSelector(store, notifier, triage.SelectorConfig{
		Window:      cfg.Scheduler.SummaryInterval,
		MinScore:    cfg.Triage.MinScore,
		MaxMessages: cfg.Triage.MaxMessages,
	}, log)
	deps.Resolver = triage.NewResolver(store, log)
	capture = handlers.NewCaptureHandler(deps)

	if err := telegram.RegisterHandlers(tg, log, handlers.RegisterAllCommands(deps)); err != nil {
		log.Error("Failed to register Telegram handlers", "error", err)
		return 1
	}
	if err := telegram.SetCommandMenu(ctx, tg); err != nil {
		log.Warn("Failed to publish command menu", "error", err)
	}

	sched, err := bot.NewScheduler(deps.Selector, cfg.Scheduler, log)
	if err != nil {
		log.Error("Failed to create scheduler", "error", err)
		return 1
	}

	app := bot.New(log, tg, sched, notifier)

	log.Info("Starting secretary bot...")
	runErr := app.Run(ctx)

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		log.Error("Bot stopped due to error", "error", runErr)
		time.Sleep(time.Second)
		return 1
	}

	log.Info("Bot stopped gracefully.")
	time.Sleep(time.Second)
	return 0
}
