package handlers

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"contribution_governance_system/internal/tg_bot/commands"
)

type CommandHandler interface {
	Handle(update tgbotapi.Update) []tgbotapi.Chattable
}

type governanceBotCommandHandler struct {
	logger *zap.SugaredLogger

	commands []commands.Command
}

func NewGovernanceBotCommandHandler(logger *zap.SugaredLogger, commands []commands.Command) CommandHandler {
	return &governanceBotCommandHandler{
		logger:   logger,
		commands: commands,
	}
}

func (h *governanceBotCommandHandler) Handle(update tgbotapi.Update) []tgbotapi.Chattable {
	message := update.Message
	if message == nil {
		h.logger.Warn("received unknown updates")
		return []tgbotapi.Chattable{}
	}

	if !message.IsCommand() {
		return []tgbotapi.Chattable{}
	}

	command := message.Command()
	h.logger.Infow("received command", "command", command, "chat_id", message.Chat.ID)

	for _, handler := range h.commands {
		if handler.CanHandle(command) {
			return handler.Handle(message.CommandArguments(), message.Chat.ID)
		}
	}

	h.logger.Errorf("received unknown command: %s", command)
	return []tgbotapi.Chattable{}
}
