package tgbot

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"contribution_governance_system/configs"
	"contribution_governance_system/internal/tg_bot/handlers"
)

type bot struct {
	handler handlers.CommandHandler
}

type Bot interface {
	Start(config configs.Bot, logger *zap.SugaredLogger)
}

func NewBot(handler handlers.CommandHandler) Bot {
	return &bot{handler: handler}
}

func (b *bot) Start(config configs.Bot, logger *zap.SugaredLogger) {
	logger.Info("creating bot")
	bot, updates, err := b.createBot(config)
	if err != nil {
		logger.Fatalf("failed to create bot: %v", err)
	}
	logger.Info("bot created")

	for update := range updates {
		for _, message := range b.handler.Handle(update) {
			if _, err := bot.Send(message); err != nil {
				logger.Errorf("failed to send message: %v", err)
			}
		}
	}
}

func (b *bot) createBot(config configs.Bot) (*tgbotapi.BotAPI, tgbotapi.UpdatesChannel, error) {
	bot, err := tgbotapi.NewBotAPI(config.Token)
	if err != nil {
		return nil, nil, err
	}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = config.UpdateTimeout

	return bot, bot.GetUpdatesChan(u), nil
}
