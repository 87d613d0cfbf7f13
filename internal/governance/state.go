package governance

import "contribution_governance_system/internal/db/models"

type milestoneKey struct {
	proposalID  int
	milestoneID int
}

type voteKey struct {
	proposalID int
	voter      string
}

type milestoneVoteKey struct {
	reportID    int
	milestoneID int
	voter       string
}

type priorityKey struct {
	voter    string
	sequence uint64
}

type windowKey struct {
	kind      models.WindowKind
	subjectID int
}

// State is an arena of governance entities. Every entity's ID is its
// position in the owning slice plus one; the maps are secondary lookups
// rebuilt from the slices.
type State struct {
	models.Snapshot

	validatorIndex     map[string]int
	proposalIndex      map[string]int
	milestoneIndex     map[milestoneKey]int
	reportIndex        map[string]int
	voteIndex          map[voteKey]int
	milestoneVoteIndex map[milestoneVoteKey]int
	priorityIndex      map[priorityKey]int
	windowIndex        map[windowKey]int
	installmentIndex   map[milestoneKey][]int
	balanceIndex       map[string]int
}

func newState(snapshot models.Snapshot) *State {
	s := &State{Snapshot: snapshot}
	s.reindex()
	return s
}

func genesisSnapshot() models.Snapshot {
	return models.Snapshot{
		Period: models.Period{
			ID:             models.PeriodRowID,
			Name:           models.PeriodNameApplication,
			SequenceNumber: 1,
		},
		Treasury: models.TreasuryAccount{ID: models.TreasuryRowID},
	}
}

func (s *State) clone() *State {
	return newState(s.Snapshot.Clone())
}

func (s *State) reindex() {
	s.validatorIndex = make(map[string]int, len(s.Validators))
	for i, validator := range s.Validators {
		s.validatorIndex[validator.Address] = i
	}

	s.proposalIndex = make(map[string]int, len(s.Proposals))
	for i, proposal := range s.Proposals {
		s.proposalIndex[proposal.Hash] = i
	}

	s.milestoneIndex = make(map[milestoneKey]int, len(s.Milestones))
	for i, milestone := range s.Milestones {
		s.milestoneIndex[milestoneKey{milestone.ProposalID, milestone.MilestoneID}] = i
	}

	s.reportIndex = make(map[string]int, len(s.Reports))
	for i, report := range s.Reports {
		s.reportIndex[report.Hash] = i
	}

	s.voteIndex = make(map[voteKey]int, len(s.Votes))
	for i, vote := range s.Votes {
		s.voteIndex[voteKey{vote.ProposalID, vote.VoterAddress}] = i
	}

	s.milestoneVoteIndex = make(map[milestoneVoteKey]int, len(s.MilestoneVotes))
	for i, vote := range s.MilestoneVotes {
		s.milestoneVoteIndex[milestoneVoteKey{vote.ReportID, vote.MilestoneID, vote.VoterAddress}] = i
	}

	s.priorityIndex = make(map[priorityKey]int, len(s.PriorityVotes))
	for i, vote := range s.PriorityVotes {
		s.priorityIndex[priorityKey{vote.VoterAddress, vote.PeriodSequence}] = i
	}

	s.windowIndex = make(map[windowKey]int, len(s.Windows))
	for i, window := range s.Windows {
		s.windowIndex[windowKey{window.Kind, window.SubjectID}] = i
	}

	s.installmentIndex = make(map[milestoneKey][]int, len(s.Installments))
	for i, installment := range s.Installments {
		key := milestoneKey{installment.ProposalID, installment.MilestoneID}
		s.installmentIndex[key] = append(s.installmentIndex[key], i)
	}

	s.balanceIndex = make(map[string]int, len(s.Balances))
	for i, balance := range s.Balances {
		s.balanceIndex[balance.Address] = i
	}
}

func (s *State) validator(address string) (*models.Validator, bool) {
	i, ok := s.validatorIndex[address]
	if !ok {
		return nil, false
	}
	return &s.Validators[i], true
}

func (s *State) addValidator(validator models.Validator) *models.Validator {
	validator.ID = len(s.Validators) + 1
	s.Validators = append(s.Validators, validator)
	s.validatorIndex[validator.Address] = len(s.Validators) - 1
	return &s.Validators[len(s.Validators)-1]
}

func (s *State) proposalByHash(hash string) (*models.Proposal, bool) {
	i, ok := s.proposalIndex[hash]
	if !ok {
		return nil, false
	}
	return &s.Proposals[i], true
}

func (s *State) proposalByID(id int) *models.Proposal {
	return &s.Proposals[id-1]
}

func (s *State) addProposal(proposal models.Proposal) *models.Proposal {
	proposal.ID = len(s.Proposals) + 1
	s.Proposals = append(s.Proposals, proposal)
	s.proposalIndex[proposal.Hash] = len(s.Proposals) - 1
	return &s.Proposals[len(s.Proposals)-1]
}

func (s *State) milestone(proposalID, milestoneID int) (*models.Milestone, bool) {
	i, ok := s.milestoneIndex[milestoneKey{proposalID, milestoneID}]
	if !ok {
		return nil, false
	}
	return &s.Milestones[i], true
}

// milestonesOf returns the milestones of a proposal in submission order.
func (s *State) milestonesOf(proposal *models.Proposal) []*models.Milestone {
	milestones := make([]*models.Milestone, 0, len(proposal.MilestoneIDs))
	for _, id := range proposal.MilestoneIDs {
		if milestone, ok := s.milestone(proposal.ID, id); ok {
			milestones = append(milestones, milestone)
		}
	}
	return milestones
}

func (s *State) addMilestone(milestone models.Milestone) *models.Milestone {
	milestone.ID = len(s.Milestones) + 1
	s.Milestones = append(s.Milestones, milestone)
	s.milestoneIndex[milestoneKey{milestone.ProposalID, milestone.MilestoneID}] = len(s.Milestones) - 1
	return &s.Milestones[len(s.Milestones)-1]
}

func (s *State) report(hash string) (*models.ProgressReport, bool) {
	i, ok := s.reportIndex[hash]
	if !ok {
		return nil, false
	}
	return &s.Reports[i], true
}

func (s *State) reportByID(id int) *models.ProgressReport {
	return &s.Reports[id-1]
}

func (s *State) addReport(report models.ProgressReport) *models.ProgressReport {
	report.ID = len(s.Reports) + 1
	s.Reports = append(s.Reports, report)
	s.reportIndex[report.Hash] = len(s.Reports) - 1
	return &s.Reports[len(s.Reports)-1]
}

// unresolvedReport returns the report of a proposal still waiting for a vote outcome.
func (s *State) unresolvedReport(proposalID int) (*models.ProgressReport, bool) {
	for i := len(s.Reports) - 1; i >= 0; i-- {
		report := &s.Reports[i]
		if report.ProposalID == proposalID && report.Status == models.ReportStatusWaiting {
			return report, true
		}
	}
	return nil, false
}

func (s *State) reportsOf(proposalID int) []*models.ProgressReport {
	var reports []*models.ProgressReport
	for i := range s.Reports {
		if s.Reports[i].ProposalID == proposalID {
			reports = append(reports, &s.Reports[i])
		}
	}
	return reports
}

func (s *State) vote(proposalID int, voter string) (*models.Vote, bool) {
	i, ok := s.voteIndex[voteKey{proposalID, voter}]
	if !ok {
		return nil, false
	}
	return &s.Votes[i], true
}

func (s *State) votesOf(proposalID int) []models.Vote {
	var votes []models.Vote
	for _, vote := range s.Votes {
		if vote.ProposalID == proposalID {
			votes = append(votes, vote)
		}
	}
	return votes
}

func (s *State) addVote(vote models.Vote) {
	vote.ID = len(s.Votes) + 1
	s.Votes = append(s.Votes, vote)
	s.voteIndex[voteKey{vote.ProposalID, vote.VoterAddress}] = len(s.Votes) - 1
}

func (s *State) milestoneVote(reportID, milestoneID int, voter string) (*models.MilestoneVote, bool) {
	i, ok := s.milestoneVoteIndex[milestoneVoteKey{reportID, milestoneID, voter}]
	if !ok {
		return nil, false
	}
	return &s.MilestoneVotes[i], true
}

func (s *State) milestoneVotesOf(reportID, milestoneID int) []models.MilestoneVote {
	var votes []models.MilestoneVote
	for _, vote := range s.MilestoneVotes {
		if vote.ReportID == reportID && vote.MilestoneID == milestoneID {
			votes = append(votes, vote)
		}
	}
	return votes
}

func (s *State) addMilestoneVote(vote models.MilestoneVote) {
	vote.ID = len(s.MilestoneVotes) + 1
	s.MilestoneVotes = append(s.MilestoneVotes, vote)
	s.milestoneVoteIndex[milestoneVoteKey{vote.ReportID, vote.MilestoneID, vote.VoterAddress}] = len(s.MilestoneVotes) - 1
}

func (s *State) priorityVote(voter string, sequence uint64) (*models.PriorityVote, bool) {
	i, ok := s.priorityIndex[priorityKey{voter, sequence}]
	if !ok {
		return nil, false
	}
	return &s.PriorityVotes[i], true
}

func (s *State) addPriorityVote(vote models.PriorityVote) {
	vote.ID = len(s.PriorityVotes) + 1
	s.PriorityVotes = append(s.PriorityVotes, vote)
	s.priorityIndex[priorityKey{vote.VoterAddress, vote.PeriodSequence}] = len(s.PriorityVotes) - 1
}

// window returns the most recent tally window for a subject, open or closed.
func (s *State) window(kind models.WindowKind, subjectID int) (*models.TallyWindow, bool) {
	i, ok := s.windowIndex[windowKey{kind, subjectID}]
	if !ok {
		return nil, false
	}
	return &s.Windows[i], true
}

func (s *State) openWindow(kind models.WindowKind, subjectID int) (*models.TallyWindow, bool) {
	window, ok := s.window(kind, subjectID)
	if !ok || window.Closed {
		return nil, false
	}
	return window, true
}

func (s *State) addWindow(window models.TallyWindow) *models.TallyWindow {
	window.ID = len(s.Windows) + 1
	s.Windows = append(s.Windows, window)
	s.windowIndex[windowKey{window.Kind, window.SubjectID}] = len(s.Windows) - 1
	return &s.Windows[len(s.Windows)-1]
}

func (s *State) installmentsOf(proposalID, milestoneID int) []*models.Installment {
	indexes := s.installmentIndex[milestoneKey{proposalID, milestoneID}]
	installments := make([]*models.Installment, 0, len(indexes))
	for _, i := range indexes {
		installments = append(installments, &s.Installments[i])
	}
	return installments
}

func (s *State) addInstallment(installment models.Installment) {
	installment.ID = len(s.Installments) + 1
	s.Installments = append(s.Installments, installment)
	key := milestoneKey{installment.ProposalID, installment.MilestoneID}
	s.installmentIndex[key] = append(s.installmentIndex[key], len(s.Installments)-1)
}

func (s *State) balance(address string) (models.Balance, bool) {
	i, ok := s.balanceIndex[address]
	if !ok {
		return models.Balance{Address: address}, false
	}
	return s.Balances[i], true
}

// credit adds amount to the claimable balance of address, creating the row if needed.
func (s *State) credit(address string, amount models.Amount) {
	i, ok := s.balanceIndex[address]
	if !ok {
		s.Balances = append(s.Balances, models.Balance{ID: len(s.Balances) + 1, Address: address})
		i = len(s.Balances) - 1
		s.balanceIndex[address] = i
	}
	s.Balances[i].Claimable = s.Balances[i].Claimable.Add(amount)
}
