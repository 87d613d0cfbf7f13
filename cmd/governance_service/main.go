package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-co-op/gocron"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"contribution_governance_system/configs"
	"contribution_governance_system/internal/api"
	"contribution_governance_system/internal/db"
	"contribution_governance_system/internal/db/repositories"
	"contribution_governance_system/internal/di"
	"contribution_governance_system/internal/governance"
	"contribution_governance_system/internal/services"
	tgbot "contribution_governance_system/internal/tg_bot"
)

const shutdownTimeout = 10 * time.Second

type periodAdvancer interface {
	AdvancePeriod(ctx context.Context, currentBlock uint64, force bool) ([]governance.Event, error)
}

type blockHeightSource interface {
	BlockHeight(ctx context.Context) (uint64, error)
}

func main() {
	config, err := configs.LoadGovernanceServiceConfig()
	logger := di.NewLogger(config.App, config.Logger)

	if err != nil {
		logger.Fatalw("failed to load config", "error", err)
	}
	logger.Info("config loaded")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("starting db")
	database, err := db.StartDB(config.DB, logger)
	if err != nil {
		logger.Fatalw("failed to start db", "error", err)
	}
	logger.Info("db started")

	logger.Info("initializing repositories and services")
	stateRepository := repositories.NewStateRepository(database)
	timeout := time.Duration(config.Services.Timeout) * time.Second
	ledgerService := services.NewLedgerService(config.Services.LedgerURL, config.Governance.Token, timeout)
	validatorService := services.NewValidatorService(config.Services.ValidatorsURL, timeout)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	options := []governance.Option{
		governance.WithStore(stateRepository),
		governance.WithMetrics(registry),
	}

	var notifier *tgbot.Notifier
	if config.Notifier.IsEnabled() {
		botAPI, err := tgbotapi.NewBotAPI(config.Notifier.Token)
		if err != nil {
			logger.Fatalw("failed to create notifier bot", "error", err)
		}
		notifier = tgbot.NewNotifier(botAPI, config.Notifier.ChatID, logger)
		options = append(options, governance.WithListener(notifier.Listen))
	}

	engine, err := governance.NewEngine(ctx, governance.NewParams(config.Governance), validatorService, ledgerService, logger, options...)
	if err != nil {
		logger.Fatalw("failed to start governance engine", "error", err)
	}

	scheduler := gocron.NewScheduler(time.UTC)
	_, err = scheduler.Cron(config.Scheduler.AdvancePeriodCron).SingletonMode().Do(func() {
		advancePeriod(ctx, engine, ledgerService, logger)
	})
	if err != nil {
		logger.Fatalw("failed to schedule period advance", "error", err)
	}
	scheduler.StartAsync()

	server := api.NewServer(config.API, engine, registry, logger)
	go func() {
		if err := server.Start(); err != nil {
			logger.Fatalw("failed to start api server", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	scheduler.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Errorw("failed to shut down api server", "error", err)
	}

	if notifier != nil {
		notifier.Stop()
	}

	if err := database.Close(); err != nil {
		logger.Errorw("failed to close db", "error", err)
	}
}

// advancePeriod moves the governance clock to the ledger's current height.
// Errors are logged and retried on the next tick.
func advancePeriod(ctx context.Context, engine periodAdvancer, heights blockHeightSource, logger *zap.SugaredLogger) {
	height, err := heights.BlockHeight(ctx)
	if err != nil {
		logger.Errorw("failed to get block height", "error", err)
		return
	}

	events, err := engine.AdvancePeriod(ctx, height, false)
	if err != nil {
		logger.Errorw("failed to advance period", "block", height, "error", err)
		return
	}

	if len(events) == 0 {
		logger.Infow("period is not over yet", "block", height)
	}
}
