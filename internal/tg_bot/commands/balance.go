package commands

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"contribution_governance_system/internal/db/repositories"
	"contribution_governance_system/internal/tg_bot/extension"
)

const balanceCommandName = "balance"

type balanceCommand struct {
	balanceRepository repositories.BalanceRepository
	logger            *zap.SugaredLogger
}

func NewBalanceCommand(balanceRepository repositories.BalanceRepository, logger *zap.SugaredLogger) Command {
	return &balanceCommand{
		balanceRepository: balanceRepository,
		logger:            logger,
	}
}

func (c *balanceCommand) CanHandle(command string) bool {
	return command == balanceCommandName
}

func (c *balanceCommand) Handle(arguments string, chatID int64) []tgbotapi.Chattable {
	address := strings.TrimSpace(arguments)
	if address == "" {
		return []tgbotapi.Chattable{extension.ErrorMessage(chatID, "Usage: /balance <address>")}
	}

	balance, err := c.balanceRepository.GetOneByAddress(address)
	if err != nil {
		c.logger.Errorw("failed to get balance", "error", err, "address", address)
		return []tgbotapi.Chattable{extension.DefaultErrorMessage(chatID)}
	}

	messageText := fmt.Sprintf("Claimable: %s\n", extension.FormatAmount(balance.Claimable))
	messageText += fmt.Sprintf("Claimed so far: %s", extension.FormatAmount(balance.TotalClaimed))

	return []tgbotapi.Chattable{tgbotapi.NewMessage(chatID, messageText)}
}
