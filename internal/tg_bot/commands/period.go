package commands

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"contribution_governance_system/internal/db/repositories"
	"contribution_governance_system/internal/tg_bot/extension"
)

const periodCommandName = "period"

type periodCommand struct {
	periodRepository repositories.PeriodRepository
	logger           *zap.SugaredLogger
}

func NewPeriodCommand(periodRepository repositories.PeriodRepository, logger *zap.SugaredLogger) Command {
	return &periodCommand{
		periodRepository: periodRepository,
		logger:           logger,
	}
}

func (c *periodCommand) CanHandle(command string) bool {
	return command == periodCommandName
}

func (c *periodCommand) Handle(arguments string, chatID int64) []tgbotapi.Chattable {
	period, err := c.periodRepository.GetCurrent()
	if err != nil {
		c.logger.Errorw("failed to get period", "error", err)
		return []tgbotapi.Chattable{extension.DefaultErrorMessage(chatID)}
	}

	messageText := fmt.Sprintf("%s #%d\n", period.Name.CapitalizedString(), period.SequenceNumber)
	messageText += fmt.Sprintf("Started at block: %d", period.StartedAtBlock)

	return []tgbotapi.Chattable{tgbotapi.NewMessage(chatID, messageText)}
}
