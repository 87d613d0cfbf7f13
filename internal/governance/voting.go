package governance

import (
	"context"
	"fmt"
	"sort"

	"contribution_governance_system/internal/db/models"
)

// Tally aggregates the ballots of one tally window.
type Tally struct {
	EligibleVoters int           `json:"eligible_voters"`
	EligibleWeight models.Amount `json:"total_votes"`
	TotalVoters    int           `json:"total_voters"`
	ApproveVoters  int           `json:"approve_voters"`
	RejectVoters   int           `json:"reject_voters"`
	ApproveWeight  models.Amount `json:"approved_votes"`
	RejectWeight   models.Amount `json:"rejected_votes"`
}

func newTally(window *models.TallyWindow) Tally {
	if window == nil {
		return Tally{}
	}
	return Tally{
		EligibleVoters: len(window.Voters),
		EligibleWeight: window.EligibleWeight(),
	}
}

func (t *Tally) add(choice models.VoteChoice, weight models.Amount) {
	t.TotalVoters++
	switch choice {
	case models.VoteChoiceApprove:
		t.ApproveVoters++
		t.ApproveWeight = t.ApproveWeight.Add(weight)
	case models.VoteChoiceReject:
		t.RejectVoters++
		t.RejectWeight = t.RejectWeight.Add(weight)
	}
}

func (t Tally) ParticipatingWeight() models.Amount {
	return t.ApproveWeight.Add(t.RejectWeight)
}

// Approved reports whether approvals strictly outweigh rejections and the
// participating weight reaches quorumBasisPoints of the eligible weight.
// Ties and sub-quorum tallies are rejected.
func (t Tally) Approved(quorumBasisPoints uint64) bool {
	if t.ApproveWeight.Cmp(t.RejectWeight) <= 0 {
		return false
	}

	participating, overflowP := t.ParticipatingWeight().MulUint64(maxBasisPoints)
	required, overflowR := t.EligibleWeight.MulUint64(quorumBasisPoints)
	if overflowP || overflowR {
		return t.ParticipatingWeight().Cmp(t.EligibleWeight.BasisPoints(quorumBasisPoints)) >= 0
	}

	return participating.Cmp(required) >= 0
}

type BallotRecord struct {
	Address   string            `json:"address"`
	Choice    models.VoteChoice `json:"vote"`
	Reason    string            `json:"vote_reason"`
	Weight    models.Amount     `json:"weight"`
	CreatedAt string            `json:"timestamp"`
}

type VoteResult struct {
	Tally
	Approved bool           `json:"approved"`
	Closed   bool           `json:"closed"`
	Ballots  []BallotRecord `json:"ballots"`
}

type MilestoneBallot struct {
	MilestoneID int               `json:"id"`
	Choice      models.VoteChoice `json:"vote"`
}

type PriorityScore struct {
	ProposalHash string `json:"ipfs_hash"`
	Title        string `json:"project_title"`
	Points       int    `json:"points"`
	Voters       int    `json:"voters"`
}

func (e *Engine) CastVote(ctx context.Context, proposalHash, voter string, choice models.VoteChoice, reason string, isChange bool) error {
	_, err := e.mutate(ctx, "vote_proposal", func(t *txn) error {
		return t.castVote(proposalHash, voter, choice, reason, isChange)
	})
	if err != nil {
		e.logger.Warnw("failed to cast vote", "hash", proposalHash, "voter", voter, "error", err)
		return err
	}

	e.logger.Infow("vote cast", "hash", proposalHash, "voter", voter, "vote", choice, "change", isChange)
	return nil
}

func (e *Engine) CastMilestoneVote(ctx context.Context, reportHash, voter string, ballots []MilestoneBallot, reason string, isChange bool) error {
	_, err := e.mutate(ctx, "vote_report", func(t *txn) error {
		return t.castMilestoneVote(reportHash, voter, ballots, reason, isChange)
	})
	if err != nil {
		e.logger.Warnw("failed to cast milestone vote", "report", reportHash, "voter", voter, "error", err)
		return err
	}

	e.logger.Infow("milestone vote cast", "report", reportHash, "voter", voter, "ballots", len(ballots), "change", isChange)
	return nil
}

// VotePriority records a non-binding ranking of pending proposals. It does
// not take part in any tally.
func (e *Engine) VotePriority(ctx context.Context, voter string, proposalHashes []string) error {
	_, err := e.mutate(ctx, "vote_priority", func(t *txn) error {
		return t.votePriority(voter, proposalHashes)
	})
	if err != nil {
		e.logger.Warnw("failed to record priority vote", "voter", voter, "error", err)
		return err
	}

	e.logger.Infow("priority vote recorded", "voter", voter, "proposals", len(proposalHashes))
	return nil
}

func (e *Engine) VoteResult(proposalHash string) (VoteResult, error) {
	var (
		result VoteResult
		err    error
	)
	e.read(func(s *State) {
		proposal, ok := s.proposalByHash(proposalHash)
		if !ok {
			err = fmt.Errorf("proposal %s: %w", proposalHash, ErrNotFound)
			return
		}
		window, _ := s.window(models.WindowKindProposal, proposal.ID)
		result = s.proposalVoteResult(proposal.ID, window, e.params.QuorumBasisPoints)
	})
	return result, err
}

// PriorityRanking aggregates the priority votes of the latest voting period
// with a Borda count: on a ballot of n proposals the first gets n points and
// the last gets one.
func (e *Engine) PriorityRanking() []PriorityScore {
	var scores []PriorityScore
	e.read(func(s *State) {
		sequence := s.Period.SequenceNumber
		if s.Period.Name != models.PeriodNameVoting {
			sequence--
		}

		byProposal := make(map[int]*PriorityScore)
		for _, vote := range s.PriorityVotes {
			if vote.PeriodSequence != sequence {
				continue
			}
			for rank, proposalID := range vote.ProposalIDs {
				score, ok := byProposal[proposalID]
				if !ok {
					proposal := s.proposalByID(proposalID)
					score = &PriorityScore{ProposalHash: proposal.Hash, Title: proposal.Title}
					byProposal[proposalID] = score
				}
				score.Points += len(vote.ProposalIDs) - rank
				score.Voters++
			}
		}

		ids := make([]int, 0, len(byProposal))
		for id := range byProposal {
			ids = append(ids, id)
		}
		sort.Slice(ids, func(i, j int) bool {
			a, b := byProposal[ids[i]], byProposal[ids[j]]
			if a.Points != b.Points {
				return a.Points > b.Points
			}
			return ids[i] < ids[j]
		})

		scores = make([]PriorityScore, 0, len(ids))
		for _, id := range ids {
			scores = append(scores, *byProposal[id])
		}
	})
	return scores
}

func (s *State) proposalVoteResult(proposalID int, window *models.TallyWindow, quorumBasisPoints uint64) VoteResult {
	result := VoteResult{Tally: newTally(window)}

	for _, vote := range s.votesOf(proposalID) {
		var weight models.Amount
		if window != nil {
			weight, _ = window.WeightOf(vote.VoterAddress)
		}
		result.add(vote.Choice, weight)
		result.Ballots = append(result.Ballots, BallotRecord{
			Address:   vote.VoterAddress,
			Choice:    vote.Choice,
			Reason:    vote.Reason,
			Weight:    weight,
			CreatedAt: vote.CreatedAt.UTC().Format(timestampLayout),
		})
	}

	if window != nil && window.Closed {
		result.Closed = true
		result.Approved = window.Approved
	} else {
		result.Approved = result.Tally.Approved(quorumBasisPoints)
	}

	return result
}

func (s *State) milestoneVoteResult(reportID, milestoneID int, window *models.TallyWindow, quorumBasisPoints uint64) VoteResult {
	result := VoteResult{Tally: newTally(window)}

	for _, vote := range s.milestoneVotesOf(reportID, milestoneID) {
		var weight models.Amount
		if window != nil {
			weight, _ = window.WeightOf(vote.VoterAddress)
		}
		result.add(vote.Choice, weight)
		result.Ballots = append(result.Ballots, BallotRecord{
			Address:   vote.VoterAddress,
			Choice:    vote.Choice,
			Reason:    vote.Reason,
			Weight:    weight,
			CreatedAt: vote.CreatedAt.UTC().Format(timestampLayout),
		})
	}

	result.Approved = result.Tally.Approved(quorumBasisPoints)
	if window != nil && window.Closed {
		result.Closed = true
		for _, milestoneResult := range window.MilestoneResults {
			if milestoneResult.MilestoneID == milestoneID {
				result.Approved = milestoneResult.Approved
			}
		}
	}

	return result
}

func (t *txn) castVote(proposalHash, voter string, choice models.VoteChoice, reason string, isChange bool) error {
	if err := t.requirePeriod(models.PeriodNameVoting); err != nil {
		return err
	}
	if !choice.IsValid() {
		return fmt.Errorf("%w: unknown vote %q", ErrInvalidBallot, choice)
	}

	proposal, ok := t.proposalByHash(proposalHash)
	if !ok {
		return fmt.Errorf("proposal %s: %w", proposalHash, ErrNotFound)
	}
	if proposal.Status != models.ProposalStatusPending {
		return ErrWrongProposalStatus
	}

	window, ok := t.openWindow(models.WindowKindProposal, proposal.ID)
	if !ok {
		return ErrWrongProposalStatus
	}
	if err := t.requireVoter(window, voter); err != nil {
		return err
	}

	if vote, ok := t.vote(proposal.ID, voter); ok {
		if !isChange {
			return ErrDuplicateVote
		}
		vote.Choice = choice
		vote.Reason = reason
		vote.CreatedAt = t.now
		return nil
	}

	t.addVote(models.Vote{
		ProposalID:   proposal.ID,
		VoterAddress: voter,
		Choice:       choice,
		Reason:       reason,
		CreatedAt:    t.now,
	})

	return nil
}

func (t *txn) castMilestoneVote(reportHash, voter string, ballots []MilestoneBallot, reason string, isChange bool) error {
	if err := t.requirePeriod(models.PeriodNameVoting); err != nil {
		return err
	}

	report, ok := t.report(reportHash)
	if !ok {
		return fmt.Errorf("report %s: %w", reportHash, ErrNotFound)
	}
	if report.Status != models.ReportStatusWaiting {
		return ErrWrongProposalStatus
	}

	window, ok := t.openWindow(models.WindowKindReport, report.ID)
	if !ok {
		return ErrWrongProposalStatus
	}
	if err := t.requireVoter(window, voter); err != nil {
		return err
	}

	if err := validateMilestoneBallots(report, ballots); err != nil {
		return err
	}

	for _, ballot := range ballots {
		if _, ok := t.milestoneVote(report.ID, ballot.MilestoneID, voter); ok && !isChange {
			return ErrDuplicateVote
		}
	}

	for _, ballot := range ballots {
		if vote, ok := t.milestoneVote(report.ID, ballot.MilestoneID, voter); ok {
			vote.Choice = ballot.Choice
			vote.Reason = reason
			vote.CreatedAt = t.now
			continue
		}

		t.addMilestoneVote(models.MilestoneVote{
			ReportID:     report.ID,
			MilestoneID:  ballot.MilestoneID,
			VoterAddress: voter,
			Choice:       ballot.Choice,
			Reason:       reason,
			CreatedAt:    t.now,
		})
	}

	return nil
}

// validateMilestoneBallots requires exactly one valid ballot per milestone
// the report claims complete.
func validateMilestoneBallots(report *models.ProgressReport, ballots []MilestoneBallot) error {
	claimed := report.ClaimedMilestoneIDs()
	if len(ballots) != len(claimed) {
		return fmt.Errorf("%w: expected %d milestone ballots, got %d", ErrInvalidBallot, len(claimed), len(ballots))
	}

	seen := make(map[int]struct{}, len(ballots))
	for _, ballot := range ballots {
		if !ballot.Choice.IsValid() {
			return fmt.Errorf("%w: unknown vote %q", ErrInvalidBallot, ballot.Choice)
		}
		if !report.Claims(ballot.MilestoneID) {
			return fmt.Errorf("%w: milestone %d is not part of the report", ErrInvalidBallot, ballot.MilestoneID)
		}
		if _, ok := seen[ballot.MilestoneID]; ok {
			return fmt.Errorf("%w: duplicate ballot for milestone %d", ErrInvalidBallot, ballot.MilestoneID)
		}
		seen[ballot.MilestoneID] = struct{}{}
	}

	return nil
}

func (t *txn) votePriority(voter string, proposalHashes []string) error {
	if err := t.requirePeriod(models.PeriodNameVoting); err != nil {
		return err
	}

	validator, ok := t.validator(voter)
	if !ok || !validator.IsRegistered || !validator.IsVotingMember {
		return ErrNotEligibleVoter
	}

	if len(proposalHashes) == 0 {
		return fmt.Errorf("%w: empty priority list", ErrInvalidBallot)
	}

	ids := make([]int, 0, len(proposalHashes))
	seen := make(map[int]struct{}, len(proposalHashes))
	for _, hash := range proposalHashes {
		proposal, ok := t.proposalByHash(hash)
		if !ok {
			return fmt.Errorf("proposal %s: %w", hash, ErrNotFound)
		}
		if proposal.Status != models.ProposalStatusPending {
			return fmt.Errorf("%w: proposal %s is %s", ErrWrongProposalStatus, hash, proposal.Status)
		}
		if _, ok := seen[proposal.ID]; ok {
			return fmt.Errorf("%w: duplicate proposal %s", ErrInvalidBallot, hash)
		}
		seen[proposal.ID] = struct{}{}
		ids = append(ids, proposal.ID)
	}

	// A later ranking in the same period replaces the earlier one.
	if existing, ok := t.priorityVote(voter, t.Period.SequenceNumber); ok {
		existing.ProposalIDs = ids
		return nil
	}

	t.addPriorityVote(models.PriorityVote{
		VoterAddress:   voter,
		PeriodSequence: t.Period.SequenceNumber,
		ProposalIDs:    ids,
	})

	return nil
}

// openWindows opens a tally window for every pending proposal and every
// waiting report, all sharing one snapshot of the voting members.
func (t *txn) openWindows() error {
	voters, err := t.votingSnapshot()
	if err != nil {
		return err
	}

	for i := range t.Proposals {
		proposal := t.Proposals[i]
		if proposal.Status != models.ProposalStatusPending {
			continue
		}
		if _, ok := t.openWindow(models.WindowKindProposal, proposal.ID); ok {
			continue
		}

		t.addWindow(models.TallyWindow{
			Kind:           models.WindowKindProposal,
			SubjectID:      proposal.ID,
			OpenedAtPeriod: t.Period.SequenceNumber,
			Voters:         append([]models.WindowVoter(nil), voters...),
		})
		t.emit(Event{Type: EventWindowOpened, WindowKind: models.WindowKindProposal, ProposalHash: proposal.Hash})
	}

	for i := range t.Reports {
		report := t.Reports[i]
		if report.Status != models.ReportStatusWaiting {
			continue
		}
		if _, ok := t.openWindow(models.WindowKindReport, report.ID); ok {
			continue
		}

		t.addWindow(models.TallyWindow{
			Kind:           models.WindowKindReport,
			SubjectID:      report.ID,
			OpenedAtPeriod: t.Period.SequenceNumber,
			Voters:         append([]models.WindowVoter(nil), voters...),
		})
		t.emit(Event{
			Type:         EventWindowOpened,
			WindowKind:   models.WindowKindReport,
			ProposalHash: t.proposalByID(report.ProposalID).Hash,
			ReportHash:   report.Hash,
		})
	}

	return nil
}

// closeWindows finalizes every open window: proposal windows first, then
// report windows, each in the order they were opened.
func (t *txn) closeWindows() error {
	for _, kind := range []models.WindowKind{models.WindowKindProposal, models.WindowKindReport} {
		for i := range t.Windows {
			if t.Windows[i].Kind != kind {
				continue
			}
			if err := t.finalize(i); err != nil {
				return err
			}
		}
	}
	return nil
}

// finalize closes the window at index i. Closed windows are left untouched.
func (t *txn) finalize(i int) error {
	window := &t.Windows[i]
	if window.Closed {
		return nil
	}

	window.Closed = true
	window.ClosedAtPeriod = t.Period.SequenceNumber

	switch window.Kind {
	case models.WindowKindProposal:
		return t.finalizeProposalWindow(window)
	case models.WindowKindReport:
		return t.finalizeReportWindow(window)
	}
	return fmt.Errorf("unknown window kind %q", window.Kind)
}

func (t *txn) finalizeProposalWindow(window *models.TallyWindow) error {
	proposal := t.proposalByID(window.SubjectID)
	result := t.proposalVoteResult(proposal.ID, window, t.params.QuorumBasisPoints)
	window.Approved = result.Tally.Approved(t.params.QuorumBasisPoints)

	t.emit(Event{
		Type:         EventWindowClosed,
		WindowKind:   models.WindowKindProposal,
		ProposalHash: proposal.Hash,
		Approved:     window.Approved,
	})

	if proposal.Status != models.ProposalStatusPending {
		return nil
	}
	return t.onVoteFinalized(proposal, window.Approved)
}

func (t *txn) finalizeReportWindow(window *models.TallyWindow) error {
	report := t.reportByID(window.SubjectID)

	window.Approved = true
	window.MilestoneResults = window.MilestoneResults[:0]
	for _, milestoneID := range report.ClaimedMilestoneIDs() {
		result := t.milestoneVoteResult(report.ID, milestoneID, window, t.params.QuorumBasisPoints)
		approved := result.Tally.Approved(t.params.QuorumBasisPoints)
		window.MilestoneResults = append(window.MilestoneResults, models.MilestoneResult{
			MilestoneID: milestoneID,
			Approved:    approved,
		})
		window.Approved = window.Approved && approved
	}

	t.emit(Event{
		Type:         EventWindowClosed,
		WindowKind:   models.WindowKindReport,
		ProposalHash: t.proposalByID(report.ProposalID).Hash,
		ReportHash:   report.Hash,
		Approved:     window.Approved,
	})

	if report.Status != models.ReportStatusWaiting {
		return nil
	}
	return t.resolveReport(report, window.MilestoneResults)
}
