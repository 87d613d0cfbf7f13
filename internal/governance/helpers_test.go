package governance

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"contribution_governance_system/internal/db/models"
)

const (
	testToken       = "bnUSD"
	testContributor = "hx-contributor"
	testSponsor     = "hx1"
	decimals        = 1_000_000_000_000_000_000
)

func tokens(n uint64) models.Amount {
	amount, _ := models.NewAmount(n).MulUint64(decimals)
	return amount
}

type fakeOracle struct {
	mu        sync.Mutex
	eligible  map[string]bool
	weights   map[string]models.Amount
	penalties map[string]bool
}

func newFakeOracle() *fakeOracle {
	return &fakeOracle{
		eligible:  make(map[string]bool),
		weights:   make(map[string]models.Amount),
		penalties: make(map[string]bool),
	}
}

func (o *fakeOracle) add(address string, weight models.Amount) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.eligible[address] = true
	o.weights[address] = weight
}

func (o *fakeOracle) penalize(address string, penalty bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.penalties[address] = penalty
}

func (o *fakeOracle) IsEligible(_ context.Context, address string) (bool, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.eligible[address], nil
}

func (o *fakeOracle) VotingWeight(_ context.Context, address string) (models.Amount, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.weights[address], nil
}

func (o *fakeOracle) HasPenalty(_ context.Context, address string) (bool, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.penalties[address], nil
}

type transfer struct {
	to     string
	amount models.Amount
}

type fakeLedger struct {
	mu         sync.Mutex
	transfers  []transfer
	err        error
	balance    models.Amount
	onTransfer func()
}

func (l *fakeLedger) Transfer(_ context.Context, to string, amount models.Amount, _ []byte) error {
	if l.onTransfer != nil {
		l.onTransfer()
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return l.err
	}
	l.transfers = append(l.transfers, transfer{to: to, amount: amount})
	return nil
}

func (l *fakeLedger) BalanceOf(_ context.Context, _ string) (models.Amount, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balance, nil
}

// memoryStore upserts saved rows by id, the way the database does.
type memoryStore struct {
	snapshot models.Snapshot
	saves    int
	last     models.Snapshot
	err      error
}

func (s *memoryStore) Load(_ context.Context) (models.Snapshot, error) {
	return s.snapshot.Clone(), nil
}

func (s *memoryStore) Save(_ context.Context, changes models.Snapshot) error {
	if s.err != nil {
		return s.err
	}
	s.saves++
	s.last = changes.Clone()

	changes = changes.Clone()
	s.snapshot.Period = changes.Period
	s.snapshot.Treasury = changes.Treasury
	s.snapshot.Validators = upsertRows(s.snapshot.Validators, changes.Validators, func(r models.Validator) int { return r.ID })
	s.snapshot.Proposals = upsertRows(s.snapshot.Proposals, changes.Proposals, func(r models.Proposal) int { return r.ID })
	s.snapshot.Milestones = upsertRows(s.snapshot.Milestones, changes.Milestones, func(r models.Milestone) int { return r.ID })
	s.snapshot.Reports = upsertRows(s.snapshot.Reports, changes.Reports, func(r models.ProgressReport) int { return r.ID })
	s.snapshot.Votes = upsertRows(s.snapshot.Votes, changes.Votes, func(r models.Vote) int { return r.ID })
	s.snapshot.MilestoneVotes = upsertRows(s.snapshot.MilestoneVotes, changes.MilestoneVotes, func(r models.MilestoneVote) int { return r.ID })
	s.snapshot.PriorityVotes = upsertRows(s.snapshot.PriorityVotes, changes.PriorityVotes, func(r models.PriorityVote) int { return r.ID })
	s.snapshot.Windows = upsertRows(s.snapshot.Windows, changes.Windows, func(r models.TallyWindow) int { return r.ID })
	s.snapshot.Installments = upsertRows(s.snapshot.Installments, changes.Installments, func(r models.Installment) int { return r.ID })
	s.snapshot.Balances = upsertRows(s.snapshot.Balances, changes.Balances, func(r models.Balance) int { return r.ID })
	return nil
}

// upsertRows relies on ids being dense and starting at 1.
func upsertRows[T any](rows, changes []T, id func(T) int) []T {
	for _, row := range changes {
		i := id(row) - 1
		for len(rows) <= i {
			var zero T
			rows = append(rows, zero)
		}
		rows[i] = row
	}
	return rows
}

func testParams() Params {
	return Params{
		Token:                       testToken,
		TreasuryAddress:             "cx-treasury",
		BlocksPerPeriod:             100,
		QuorumBasisPoints:           6667,
		SponsorBondBasisPoints:      1500,
		SponsorRewardBasisPoints:    200,
		RejectionPenaltyBasisPoints: 0,
		AllowMilestoneResubmission:  true,
	}
}

type harness struct {
	t      *testing.T
	ctx    context.Context
	engine *Engine
	oracle *fakeOracle
	ledger *fakeLedger
	store  *memoryStore
	block  uint64
}

func newHarness(t *testing.T, params Params) *harness {
	t.Helper()

	h := &harness{
		t:      t,
		ctx:    context.Background(),
		oracle: newFakeOracle(),
		ledger: &fakeLedger{},
		store:  &memoryStore{},
	}

	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	engine, err := NewEngine(h.ctx, params, h.oracle, h.ledger, zap.NewNop().Sugar(),
		WithStore(h.store),
		WithClock(func() time.Time { return now }),
	)
	require.NoError(t, err)
	h.engine = engine

	return h
}

func (h *harness) advance() []Event {
	h.t.Helper()
	h.block += h.engine.Params().BlocksPerPeriod
	events, err := h.engine.AdvancePeriod(h.ctx, h.block, false)
	require.NoError(h.t, err)
	return events
}

func (h *harness) registerValidators(n int) []string {
	h.t.Helper()
	addresses := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		address := fmt.Sprintf("hx%d", i)
		h.oracle.add(address, tokens(100))
		require.NoError(h.t, h.engine.Register(h.ctx, address))
		addresses = append(addresses, address)
	}
	return addresses
}

func sponsoredSubmission(hash string) ProposalSubmission {
	return ProposalSubmission{
		Hash:               hash,
		Title:              "Wallet integration",
		Link:               "https://ipfs.io/ipfs/" + hash,
		TotalBudget:        tokens(100),
		Token:              testToken,
		SponsorAddress:     testSponsor,
		ContributorAddress: testContributor,
		DurationPeriods:    3,
		Milestones: []MilestoneSpec{
			{ID: 1, Title: "Design", BudgetShare: tokens(30), CompletionPeriod: 1},
			{ID: 2, Title: "Build", BudgetShare: tokens(40), CompletionPeriod: 2},
			{ID: 3, Title: "Launch", BudgetShare: tokens(30), CompletionPeriod: 3},
		},
	}
}

// submitSponsored submits a proposal and posts its sponsor bond.
func (h *harness) submitSponsored(hash string) {
	h.t.Helper()
	require.NoError(h.t, h.engine.SubmitProposal(h.ctx, sponsoredSubmission(hash)))
	require.NoError(h.t, h.engine.OnTokenReceived(h.ctx, testToken, testSponsor, tokens(15), SponsorVotePayload(hash, "looks good")))
}

func (h *harness) voteAll(voters []string, hash string, choice models.VoteChoice) {
	h.t.Helper()
	for _, voter := range voters {
		require.NoError(h.t, h.engine.CastVote(h.ctx, hash, voter, choice, "", false))
	}
}

func (h *harness) voteReport(voters []string, reportHash string, choice models.VoteChoice, milestoneIDs ...int) {
	h.t.Helper()
	ballots := make([]MilestoneBallot, 0, len(milestoneIDs))
	for _, id := range milestoneIDs {
		ballots = append(ballots, MilestoneBallot{MilestoneID: id, Choice: choice})
	}
	for _, voter := range voters {
		require.NoError(h.t, h.engine.CastMilestoneVote(h.ctx, reportHash, voter, ballots, "", false))
	}
}

// activate drives a pending proposal through a unanimous vote.
func (h *harness) activate(voters []string, hash string) {
	h.t.Helper()
	h.advance()
	h.voteAll(voters, hash, models.VoteChoiceApprove)
	h.advance()
}

func (h *harness) submitReport(reportHash, proposalHash string, claimed ...int) {
	h.t.Helper()
	submissions := make([]models.MilestoneSubmission, 0, len(claimed))
	for _, id := range claimed {
		submissions = append(submissions, models.MilestoneSubmission{MilestoneID: id, ClaimComplete: true})
	}
	require.NoError(h.t, h.engine.SubmitProgressReport(h.ctx, testContributor, ReportSubmission{
		Hash:         reportHash,
		ProposalHash: proposalHash,
		Title:        "Progress " + reportHash,
		Milestones:   submissions,
	}))
}

func (h *harness) claimable(address string) models.Amount {
	return h.engine.ProjectedFund(address, models.BeneficiaryContributor).Withdrawable
}

func eventTypes(events []Event) []EventType {
	types := make([]EventType, 0, len(events))
	for _, event := range events {
		types = append(types, event.Type)
	}
	return types
}

var errLedgerDown = errors.New("ledger unavailable")
