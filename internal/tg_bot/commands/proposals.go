package commands

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"contribution_governance_system/internal"
	"contribution_governance_system/internal/db/models"
	"contribution_governance_system/internal/db/repositories"
	"contribution_governance_system/internal/tg_bot/extension"
)

const proposalsCommandName = "proposals"

var defaultProposalStatuses = []models.ProposalStatus{
	models.ProposalStatusPending,
	models.ProposalStatusActive,
}

type proposalsCommand struct {
	proposalRepository repositories.ProposalRepository
	logger             *zap.SugaredLogger
}

func NewProposalsCommand(proposalRepository repositories.ProposalRepository, logger *zap.SugaredLogger) Command {
	return &proposalsCommand{
		proposalRepository: proposalRepository,
		logger:             logger,
	}
}

func (c *proposalsCommand) CanHandle(command string) bool {
	return command == proposalsCommandName
}

func (c *proposalsCommand) Handle(arguments string, chatID int64) []tgbotapi.Chattable {
	statuses := defaultProposalStatuses

	if argument := strings.TrimSpace(arguments); argument != "" {
		status, ok := models.ParseProposalStatus(argument)
		if !ok {
			return []tgbotapi.Chattable{extension.ErrorMessage(chatID, fmt.Sprintf("Unknown status %q", argument))}
		}
		statuses = []models.ProposalStatus{status}
	}

	proposals, err := c.proposalRepository.GetManyByStatus(statuses...)
	if err != nil {
		c.logger.Errorw("failed to get proposals", "error", err)
		return []tgbotapi.Chattable{extension.DefaultErrorMessage(chatID)}
	}

	if len(proposals) == 0 {
		return []tgbotapi.Chattable{tgbotapi.NewMessage(chatID, "No proposals found")}
	}

	var messageText string
	for _, proposal := range proposals {
		messageText += fmt.Sprintf("Project: %s\n", proposal.Title)
		messageText += fmt.Sprintf("Hash: %s\n", proposal.Hash)
		messageText += fmt.Sprintf("Status: %s\n", proposal.Status)
		messageText += fmt.Sprintf("Budget: %s %s\n", extension.FormatAmount(proposal.TotalBudget), proposal.Token)
		messageText += fmt.Sprintf("Submitted: %s\n", internal.Format(proposal.CreatedAt))
		messageText += fmt.Sprintln()
	}

	return []tgbotapi.Chattable{tgbotapi.NewMessage(chatID, strings.TrimSpace(messageText))}
}
