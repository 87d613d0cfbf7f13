package main

import (
	"contribution_governance_system/configs"
	"contribution_governance_system/internal/db"
	"contribution_governance_system/internal/db/repositories"
	"contribution_governance_system/internal/di"
	tgbot "contribution_governance_system/internal/tg_bot"
	"contribution_governance_system/internal/tg_bot/commands"
	"contribution_governance_system/internal/tg_bot/handlers"
)

func main() {
	config, err := configs.LoadGovernanceBotConfig()
	logger := di.NewLogger(config.App, config.Logger)

	if err != nil {
		logger.Fatalw("failed to load config", "error", err)
	}
	logger.Info("config loaded")

	logger.Info("starting db")
	database, err := db.StartDB(config.DB, logger)
	if err != nil {
		logger.Fatalw("failed to start db", "error", err)
	}
	logger.Info("db started")

	logger.Info("starting bot")
	periodRepository := repositories.NewPeriodRepository(database)
	proposalRepository := repositories.NewProposalRepository(database)
	milestoneRepository := repositories.NewMilestoneRepository(database)
	balanceRepository := repositories.NewBalanceRepository(database)

	tgbot.NewBot(
		handlers.NewGovernanceBotCommandHandler(logger, []commands.Command{
			commands.NewStartCommand(config.Bot),
			commands.NewPeriodCommand(periodRepository, logger),
			commands.NewProposalsCommand(proposalRepository, logger),
			commands.NewProposalCommand(proposalRepository, milestoneRepository, logger),
			commands.NewBalanceCommand(balanceRepository, logger),
		}),
	).Start(config.Bot, logger)
}
