package commands

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"contribution_governance_system/configs"
)

const startCommandName = "start"

type startCommand struct {
	botConfig configs.Bot
}

func NewStartCommand(botConfig configs.Bot) Command {
	return &startCommand{
		botConfig: botConfig,
	}
}

func (c *startCommand) CanHandle(command string) bool {
	return command == startCommandName
}

func (c *startCommand) Handle(arguments string, chatID int64) []tgbotapi.Chattable {
	parseMode := tgbotapi.ModeMarkdownV2

	messageText := tgbotapi.EscapeText(parseMode, fmt.Sprintf(`
Hi! I am the %s governance bot, and here is what I can do:

/period - shows the current governance period.
/proposals [status] - lists proposals, pending and active ones by default.
/proposal <ipfs hash> - shows a proposal with its milestones.
/balance <address> - shows the claimable reward of an address.

To see all available commands, press the Menu button.
`, c.botConfig.CommunityName))
	messageText = strings.Replace(messageText, "Menu", "*Menu*", -1)
	message := tgbotapi.NewMessage(chatID, messageText)
	message.ParseMode = parseMode
	return []tgbotapi.Chattable{message}
}
