package commands

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-pg/pg/v10"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"contribution_governance_system/internal"
	"contribution_governance_system/internal/db/repositories"
	"contribution_governance_system/internal/tg_bot/extension"
)

const proposalCommandName = "proposal"

type proposalCommand struct {
	proposalRepository  repositories.ProposalRepository
	milestoneRepository repositories.MilestoneRepository
	logger              *zap.SugaredLogger
}

func NewProposalCommand(
	proposalRepository repositories.ProposalRepository,
	milestoneRepository repositories.MilestoneRepository,
	logger *zap.SugaredLogger,
) Command {
	return &proposalCommand{
		proposalRepository:  proposalRepository,
		milestoneRepository: milestoneRepository,
		logger:              logger,
	}
}

func (c *proposalCommand) CanHandle(command string) bool {
	return command == proposalCommandName
}

func (c *proposalCommand) Handle(arguments string, chatID int64) []tgbotapi.Chattable {
	hash := strings.TrimSpace(arguments)
	if hash == "" {
		return []tgbotapi.Chattable{extension.ErrorMessage(chatID, "Usage: /proposal <ipfs hash>")}
	}

	proposal, err := c.proposalRepository.GetOneByHash(hash)
	if errors.Is(err, pg.ErrNoRows) {
		return []tgbotapi.Chattable{extension.ErrorMessage(chatID, fmt.Sprintf("Proposal %s not found", hash))}
	}
	if err != nil {
		c.logger.Errorw("failed to get proposal", "error", err, "hash", hash)
		return []tgbotapi.Chattable{extension.DefaultErrorMessage(chatID)}
	}

	milestones, err := c.milestoneRepository.GetManyByProposal(proposal.ID)
	if err != nil {
		c.logger.Errorw("failed to get milestones", "error", err, "hash", hash)
		return []tgbotapi.Chattable{extension.DefaultErrorMessage(chatID)}
	}

	messageText := fmt.Sprintf("Project: %s\n", proposal.Title)
	messageText += fmt.Sprintf("Status: %s\n", proposal.Status)
	messageText += fmt.Sprintf("Contributor: %s\n", proposal.ContributorAddress)
	messageText += fmt.Sprintf("Sponsor: %s\n", proposal.SponsorAddress)
	messageText += fmt.Sprintf("Budget: %s %s\n", extension.FormatAmount(proposal.TotalBudget), proposal.Token)
	messageText += fmt.Sprintf("Sponsor bond: %s (%s)\n", extension.FormatAmount(proposal.SponsorDeposit), proposal.DepositStatus)
	messageText += fmt.Sprintf("Submitted: %s\n", internal.Format(proposal.CreatedAt))

	if len(milestones) > 0 {
		messageText += "\nMilestones:\n"
	}
	for _, milestone := range milestones {
		messageText += fmt.Sprintf("%d. %s: %s, %s\n",
			milestone.MilestoneID,
			milestone.Title,
			extension.FormatAmount(milestone.BudgetShare),
			milestone.Status,
		)
	}

	return []tgbotapi.Chattable{tgbotapi.NewMessage(chatID, strings.TrimSpace(messageText))}
}
