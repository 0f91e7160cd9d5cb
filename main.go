package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"medminder/internal/config"
	"medminder/internal/database"
	"medminder/internal/llm"
	"medminder/internal/metrics"
	"medminder/internal/notify"
	"medminder/internal/reminder"
	"medminder/internal/server"
	"medminder/internal/store"
	"medminder/internal/twilio"
	"medminder/internal/wizard"
)

func main() {
	cfg := config.Load()

	logger := newLogger(cfg.AppEnv)
	defer func() { _ = logger.Sync() }()

	db, err := database.New()
	if err != nil {
		logger.Fatal("database init failed", zap.Error(err))
	}
	if cfg.SeedDemoData {
		if err := database.SeedDemoData(db); err != nil {
			logger.Fatal("seed failed", zap.Error(err))
		}
	}

	collector := metrics.NewCollector("medminder")
	medStore := store.New(db, logger)

	provider := newProvider(cfg, logger)
	gateway := llm.NewGateway(provider, logger, collector)

	smsClient := twilio.New(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioFromNumber)
	hub := notify.NewHub(logger, collector)
	notifier := notify.NewNotifier(hub, smsClient, cfg.CaregiverNumber, logger)

	// Every store mutation is pushed to connected clients.
	unsubscribe := medStore.Subscribe(notifier.NotifyChange)
	defer unsubscribe()

	scheduler := reminder.NewScheduler(medStore, notifier, cfg.LocalTimezone, logger, collector)
	if err := scheduler.Start(); err != nil {
		logger.Fatal("scheduler start failed", zap.Error(err))
	}

	wizardManager := wizard.NewManager(medStore, gateway, logger)

	srv := server.New(server.Options{
		Store:           medStore,
		Wizard:          wizardManager,
		Gateway:         gateway,
		Notifier:        notifier,
		Hub:             hub,
		Metrics:         collector,
		Logger:          logger,
		EmergencyNumber: cfg.EmergencyNumber,
		CaregiverNumber: cfg.CaregiverNumber,
		AllowedOrigins:  cfg.AllowedOrigins,
	})

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	go func() {
		logger.Info("server starting", zap.String("port", cfg.Port))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	waitForShutdown(httpServer, scheduler, hub, logger)
}

func newLogger(appEnv string) *zap.Logger {
	var (
		logger *zap.Logger
		err    error
	)
	if appEnv == "production" {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		panic(err)
	}
	return logger
}

func newProvider(cfg *config.Config, logger *zap.Logger) llm.Provider {
	switch cfg.LLMProvider {
	case "openai":
		if cfg.OpenAIAPIKey == "" {
			logger.Warn("OPENAI_API_KEY not set, AI features run in fallback mode")
			return nil
		}
		return llm.NewOpenAIClient(cfg.OpenAIAPIKey, cfg.LLMModel)
	case "gemini":
		if cfg.GeminiAPIKey == "" {
			logger.Warn("GEMINI_API_KEY not set, AI features run in fallback mode")
			return nil
		}
		client, err := llm.NewGeminiClient(context.Background(), cfg.GeminiAPIKey, cfg.LLMModel)
		if err != nil {
			logger.Warn("gemini client init failed, AI features run in fallback mode", zap.Error(err))
			return nil
		}
		return client
	default:
		logger.Warn("unknown LLM_PROVIDER, AI features run in fallback mode",
			zap.String("provider", cfg.LLMProvider))
		return nil
	}
}

func waitForShutdown(httpServer *http.Server, scheduler *reminder.Scheduler, hub *notify.Hub, logger *zap.Logger) {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	logger.Info("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Warn("server shutdown error", zap.Error(err))
	}
	hub.Close()
	scheduler.Stop()
}
