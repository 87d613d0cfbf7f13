package commands

import (
	"errors"
	"testing"
	"time"

	"github.com/go-pg/pg/v10"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"

	"contribution_governance_system/configs"
	"contribution_governance_system/internal/db/models"
	mock_repositories "contribution_governance_system/internal/db/repositories/mocks"
)

const testChatID int64 = 42

func messageText(t *testing.T, messages []tgbotapi.Chattable) string {
	t.Helper()

	require.Len(t, messages, 1)
	message, ok := messages[0].(tgbotapi.MessageConfig)
	require.True(t, ok)
	assert.Equal(t, testChatID, message.ChatID)

	return message.Text
}

func TestStartCommand(t *testing.T) {
	command := NewStartCommand(configs.Bot{CommunityName: "CPS"})

	assert.True(t, command.CanHandle("start"))
	assert.False(t, command.CanHandle("proposals"))

	text := messageText(t, command.Handle("", testChatID))
	assert.Contains(t, text, "CPS governance bot")
	assert.Contains(t, text, "*Menu*")
}

func TestPeriodCommand(t *testing.T) {
	ctrl := gomock.NewController(t)
	periodRepository := mock_repositories.NewMockPeriodRepository(ctrl)

	periodRepository.EXPECT().GetCurrent().Return(&models.Period{
		Name:           models.PeriodNameVoting,
		SequenceNumber: 4,
		StartedAtBlock: 300,
	}, nil)

	command := NewPeriodCommand(periodRepository, zap.NewNop().Sugar())

	text := messageText(t, command.Handle("", testChatID))
	assert.Equal(t, "Voting Period #4\nStarted at block: 300", text)
}

func TestPeriodCommand_RepositoryError(t *testing.T) {
	ctrl := gomock.NewController(t)
	periodRepository := mock_repositories.NewMockPeriodRepository(ctrl)

	periodRepository.EXPECT().GetCurrent().Return(nil, errors.New("connection refused"))

	command := NewPeriodCommand(periodRepository, zap.NewNop().Sugar())

	text := messageText(t, command.Handle("", testChatID))
	assert.Equal(t, "Something went wrong, please try again", text)
}

func TestProposalsCommand_DefaultStatuses(t *testing.T) {
	ctrl := gomock.NewController(t)
	proposalRepository := mock_repositories.NewMockProposalRepository(ctrl)

	proposalRepository.EXPECT().
		GetManyByStatus(models.ProposalStatusPending, models.ProposalStatusActive).
		Return([]*models.Proposal{{
			Hash:        "bafy-1",
			Title:       "Block explorer",
			Status:      models.ProposalStatusActive,
			TotalBudget: models.MustParseAmount("100000000000000000000"),
			Token:       "bnUSD",
			CreatedAt:   time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC),
		}}, nil)

	command := NewProposalsCommand(proposalRepository, zap.NewNop().Sugar())

	text := messageText(t, command.Handle("", testChatID))
	assert.Contains(t, text, "Project: Block explorer")
	assert.Contains(t, text, "Budget: 100 bnUSD")
	assert.Contains(t, text, "Submitted: 05.03.2024")
}

func TestProposalsCommand_StatusArgument(t *testing.T) {
	ctrl := gomock.NewController(t)
	proposalRepository := mock_repositories.NewMockProposalRepository(ctrl)

	proposalRepository.EXPECT().
		GetManyByStatus(models.ProposalStatusCompleted).
		Return([]*models.Proposal{}, nil)

	command := NewProposalsCommand(proposalRepository, zap.NewNop().Sugar())

	assert.Equal(t, "No proposals found", messageText(t, command.Handle(" completed ", testChatID)))
	assert.Equal(t, `Unknown status "archived"`, messageText(t, command.Handle("archived", testChatID)))
}

func TestProposalCommand(t *testing.T) {
	ctrl := gomock.NewController(t)
	proposalRepository := mock_repositories.NewMockProposalRepository(ctrl)
	milestoneRepository := mock_repositories.NewMockMilestoneRepository(ctrl)

	proposalRepository.EXPECT().GetOneByHash("bafy-1").Return(&models.Proposal{
		ID:                 7,
		Hash:               "bafy-1",
		Title:              "Block explorer",
		Status:             models.ProposalStatusActive,
		ContributorAddress: "hx-contributor",
		SponsorAddress:     "hx1",
		TotalBudget:        models.MustParseAmount("100000000000000000000"),
		SponsorDeposit:     models.MustParseAmount("15000000000000000000"),
		DepositStatus:      models.DepositStatusBondReceived,
		Token:              "bnUSD",
	}, nil)
	milestoneRepository.EXPECT().GetManyByProposal(7).Return([]*models.Milestone{
		{MilestoneID: 1, Title: "Indexer", BudgetShare: models.MustParseAmount("30000000000000000000"), Status: models.MilestoneStatusCompleted},
		{MilestoneID: 2, Title: "Frontend", BudgetShare: models.MustParseAmount("70000000000000000000"), Status: models.MilestoneStatusWaiting},
	}, nil)

	command := NewProposalCommand(proposalRepository, milestoneRepository, zap.NewNop().Sugar())

	text := messageText(t, command.Handle("bafy-1", testChatID))
	assert.Contains(t, text, "Sponsor bond: 15 (bond_received)")
	assert.Contains(t, text, "1. Indexer: 30, completed")
	assert.Contains(t, text, "2. Frontend: 70, waiting")
}

func TestProposalCommand_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	proposalRepository := mock_repositories.NewMockProposalRepository(ctrl)
	milestoneRepository := mock_repositories.NewMockMilestoneRepository(ctrl)

	proposalRepository.EXPECT().GetOneByHash("bafy-missing").Return(nil, pg.ErrNoRows)

	command := NewProposalCommand(proposalRepository, milestoneRepository, zap.NewNop().Sugar())

	assert.Equal(t, "Proposal bafy-missing not found", messageText(t, command.Handle("bafy-missing", testChatID)))
	assert.Equal(t, "Usage: /proposal <ipfs hash>", messageText(t, command.Handle("", testChatID)))
}

func TestBalanceCommand(t *testing.T) {
	ctrl := gomock.NewController(t)
	balanceRepository := mock_repositories.NewMockBalanceRepository(ctrl)

	balanceRepository.EXPECT().GetOneByAddress("hx1").Return(&models.Balance{
		Address:      "hx1",
		Claimable:    models.MustParseAmount("900000000000000000"),
		TotalClaimed: models.MustParseAmount("15000000000000000000"),
	}, nil)

	command := NewBalanceCommand(balanceRepository, zap.NewNop().Sugar())

	assert.Equal(t, "Claimable: 0.9\nClaimed so far: 15", messageText(t, command.Handle("hx1", testChatID)))
}
