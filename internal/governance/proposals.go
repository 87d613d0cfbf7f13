package governance

import (
	"context"
	"fmt"
	"strings"

	"github.com/samber/lo"

	"contribution_governance_system/internal/db/models"
)

type MilestoneSpec struct {
	ID               int           `json:"id"`
	Title            string        `json:"name"`
	BudgetShare      models.Amount `json:"budget"`
	CompletionPeriod int           `json:"completion_period"`
}

type ProposalSubmission struct {
	Hash               string          `json:"ipfs_hash"`
	Title              string          `json:"project_title"`
	Link               string          `json:"ipfs_link"`
	TotalBudget        models.Amount   `json:"total_budget"`
	Token              string          `json:"token"`
	SponsorAddress     string          `json:"sponsor_address"`
	ContributorAddress string          `json:"contributor_address"`
	DurationPeriods    int             `json:"project_duration"`
	Milestones         []MilestoneSpec `json:"milestones"`
}

func (e *Engine) SubmitProposal(ctx context.Context, submission ProposalSubmission) error {
	_, err := e.mutate(ctx, "submit_proposal", func(t *txn) error {
		return t.submitProposal(submission)
	})
	if err != nil {
		e.logger.Warnw("failed to submit proposal", "hash", submission.Hash, "error", err)
		return err
	}

	e.logger.Infow("proposal submitted", "hash", submission.Hash, "contributor", submission.ContributorAddress)
	return nil
}

// RecordSponsorDeposit accepts the sponsor bond of a proposal waiting for
// sponsorship. The bond must match the required amount exactly.
func (e *Engine) RecordSponsorDeposit(ctx context.Context, proposalHash, sender string, amount models.Amount, reason string) error {
	_, err := e.mutate(ctx, "sponsor_deposit", func(t *txn) error {
		return t.recordSponsorDeposit(proposalHash, sender, amount, reason)
	})
	if err != nil {
		e.logger.Warnw("failed to record sponsor deposit", "hash", proposalHash, "sender", sender, "error", err)
		return err
	}

	e.logger.Infow("sponsor deposit recorded", "hash", proposalHash, "sponsor", sender, "amount", amount)
	return nil
}

func (t *txn) submitProposal(submission ProposalSubmission) error {
	if err := t.requirePeriod(models.PeriodNameApplication); err != nil {
		return err
	}

	submission.Hash = strings.TrimSpace(submission.Hash)
	switch {
	case submission.Hash == "":
		return fmt.Errorf("%w: hash is empty", ErrInvalidProposal)
	case strings.TrimSpace(submission.Title) == "":
		return fmt.Errorf("%w: title is empty", ErrInvalidProposal)
	case submission.ContributorAddress == "":
		return fmt.Errorf("%w: contributor address is empty", ErrInvalidProposal)
	case submission.DurationPeriods < 0:
		return fmt.Errorf("%w: negative duration", ErrInvalidProposal)
	}

	if submission.Token != t.params.Token {
		return fmt.Errorf("%w: %s", ErrInvalidToken, submission.Token)
	}

	if _, ok := t.proposalByHash(submission.Hash); ok {
		return ErrDuplicateProposal
	}

	if err := validateMilestones(submission.TotalBudget, submission.Milestones); err != nil {
		return err
	}

	status := models.ProposalStatusPending
	if submission.SponsorAddress != "" {
		sponsor, ok := t.validator(submission.SponsorAddress)
		if !ok || !sponsor.IsRegistered {
			return fmt.Errorf("%w: sponsor is not a registered validator", ErrNotSponsor)
		}
		status = models.ProposalStatusSponsorPending
	}

	proposal := t.addProposal(models.Proposal{
		Hash:               submission.Hash,
		Title:              submission.Title,
		Link:               submission.Link,
		TotalBudget:        submission.TotalBudget,
		Token:              submission.Token,
		SponsorAddress:     submission.SponsorAddress,
		ContributorAddress: submission.ContributorAddress,
		DurationPeriods:    submission.DurationPeriods,
		MilestoneIDs: lo.Map(submission.Milestones, func(m MilestoneSpec, _ int) int {
			return m.ID
		}),
		Status:          status,
		DepositStatus:   models.DepositStatusNone,
		CreatedAt:       t.now,
		CreatedAtPeriod: t.Period.SequenceNumber,
	})
	proposalID, hash := proposal.ID, proposal.Hash

	for _, spec := range submission.Milestones {
		t.addMilestone(models.Milestone{
			ProposalID:       proposalID,
			MilestoneID:      spec.ID,
			Title:            spec.Title,
			BudgetShare:      spec.BudgetShare,
			CompletionPeriod: spec.CompletionPeriod,
			Status:           models.MilestoneStatusWaiting,
		})
	}

	t.emit(Event{
		Type:         EventProposalSubmitted,
		ProposalHash: hash,
		Address:      submission.ContributorAddress,
		Status:       status,
	})
	return nil
}

func validateMilestones(totalBudget models.Amount, milestones []MilestoneSpec) error {
	if len(milestones) == 0 {
		return fmt.Errorf("%w: no milestones", ErrInvalidMilestones)
	}

	seen := make(map[int]struct{}, len(milestones))
	var sum models.Amount

	for _, milestone := range milestones {
		if _, ok := seen[milestone.ID]; ok {
			return fmt.Errorf("%w: duplicate milestone id %d", ErrInvalidMilestones, milestone.ID)
		}
		seen[milestone.ID] = struct{}{}

		if milestone.BudgetShare.IsZero() {
			return fmt.Errorf("%w: milestone %d has no budget", ErrInvalidMilestones, milestone.ID)
		}

		var overflow bool
		if sum, overflow = sum.AddOverflow(milestone.BudgetShare); overflow {
			return fmt.Errorf("%w: budget overflow", ErrInvalidMilestones)
		}
	}

	if sum.Cmp(totalBudget) != 0 {
		return fmt.Errorf("%w: milestone budgets sum to %s, total budget is %s", ErrInvalidMilestones, sum, totalBudget)
	}

	return nil
}

func (t *txn) requiredBond(proposal *models.Proposal) models.Amount {
	return proposal.TotalBudget.BasisPoints(t.params.SponsorBondBasisPoints)
}

func (t *txn) recordSponsorDeposit(proposalHash, sender string, amount models.Amount, reason string) error {
	if err := t.requirePeriod(models.PeriodNameApplication); err != nil {
		return err
	}

	proposal, ok := t.proposalByHash(proposalHash)
	if !ok {
		return fmt.Errorf("proposal %s: %w", proposalHash, ErrNotFound)
	}
	if proposal.Status != models.ProposalStatusSponsorPending {
		return ErrWrongProposalStatus
	}
	if sender != proposal.SponsorAddress {
		return ErrNotSponsor
	}

	required := t.requiredBond(proposal)
	if amount.Cmp(required) != 0 {
		return fmt.Errorf("%w: expected %s, got %s", ErrInvalidBondAmount, required, amount)
	}

	if err := t.transition(proposal, models.ProposalStatusPending); err != nil {
		return err
	}
	proposal.SponsorDeposit = amount
	proposal.DepositStatus = models.DepositStatusBondReceived
	proposal.SponsorVoteReason = reason

	t.emit(Event{Type: EventProposalSponsored, ProposalHash: proposal.Hash, Address: sender, Amount: amount})
	return nil
}

func (t *txn) transition(proposal *models.Proposal, next models.ProposalStatus) error {
	if !proposal.Status.CanTransitionTo(next) {
		return fmt.Errorf("%w: %s -> %s", ErrWrongProposalStatus, proposal.Status, next)
	}
	proposal.Status = next
	return nil
}

// onVoteFinalized applies the outcome of a closed proposal window.
func (t *txn) onVoteFinalized(proposal *models.Proposal, approved bool) error {
	if !approved {
		if err := t.transition(proposal, models.ProposalStatusRejected); err != nil {
			return err
		}
		t.emit(Event{Type: EventProposalRejected, ProposalHash: proposal.Hash})
		t.returnBond(proposal, t.params.RejectionPenaltyBasisPoints)
		return nil
	}

	if err := t.transition(proposal, models.ProposalStatusActive); err != nil {
		return err
	}
	t.emit(Event{Type: EventProposalActivated, ProposalHash: proposal.Hash})

	t.scheduleInstallments(proposal)

	// The first milestone is paid up front.
	return t.releaseInstallment(proposal.ID, proposal.MilestoneIDs[0])
}

// onMilestoneCompleted closes the proposal once none of its milestones is
// still open.
func (t *txn) onMilestoneCompleted(proposal *models.Proposal) error {
	if proposal.Status != models.ProposalStatusActive {
		return nil
	}

	allCompleted := true
	for _, milestone := range t.milestonesOf(proposal) {
		if t.milestoneOpen(milestone) {
			return nil
		}
		if milestone.Status != models.MilestoneStatusCompleted {
			allCompleted = false
		}
	}

	if !allCompleted {
		if err := t.transition(proposal, models.ProposalStatusRejected); err != nil {
			return err
		}
		t.emit(Event{Type: EventProposalRejected, ProposalHash: proposal.Hash})
		t.forfeitBond(proposal)
		return nil
	}

	if err := t.transition(proposal, models.ProposalStatusCompleted); err != nil {
		return err
	}
	t.emit(Event{Type: EventProposalCompleted, ProposalHash: proposal.Hash})
	t.returnBond(proposal, 0)

	return nil
}

func (t *txn) milestoneOpen(milestone *models.Milestone) bool {
	switch milestone.Status {
	case models.MilestoneStatusCompleted:
		return false
	case models.MilestoneStatusRejected:
		return t.params.AllowMilestoneResubmission
	}
	return true
}
