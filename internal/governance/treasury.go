package governance

import (
	"context"
	"fmt"

	"contribution_governance_system/internal/db/models"
)

type InstallmentView struct {
	MilestoneID int           `json:"milestone_id"`
	Amount      models.Amount `json:"installment_amount"`
	Paid        bool          `json:"paid"`
}

type FundProjection struct {
	ProposalHash     string            `json:"ipfs_hash"`
	Title            string            `json:"project_title"`
	Status           string            `json:"status"`
	Total            models.Amount     `json:"total_budget"`
	Installments     []InstallmentView `json:"installments"`
	InstallmentCount int               `json:"installment_count"`
	TimesPaid        int               `json:"installment_paid_count"`
	PaidToDate       models.Amount     `json:"paid_to_date"`
	Remaining        models.Amount     `json:"remaining"`
}

type ProjectedFund struct {
	Address      string             `json:"address"`
	Role         models.Beneficiary `json:"role"`
	Proposals    []FundProjection   `json:"data"`
	Withdrawable models.Amount      `json:"withdraw_amount"`
	TotalClaimed models.Amount      `json:"total_claimed"`
}

type TreasuryStatus struct {
	Token         string        `json:"token"`
	Address       string        `json:"address"`
	LedgerBalance models.Amount `json:"ledger_balance"`
	Retained      models.Amount `json:"retained"`
	TotalReleased models.Amount `json:"total_released"`
	TotalClaimed  models.Amount `json:"total_claimed"`
	Outstanding   models.Amount `json:"outstanding"`
}

// ClaimReward pays out the whole claimable balance of address. The zeroed
// balance is committed before the ledger transfer, which runs without
// holding the engine lock. A failed transfer credits the amount back.
func (e *Engine) ClaimReward(ctx context.Context, address string) (models.Amount, error) {
	var claimed models.Amount

	_, err := e.mutate(ctx, "claim_reward", func(t *txn) error {
		amount, err := t.claim(address)
		if err != nil {
			return err
		}
		claimed = amount
		return nil
	})
	if err != nil {
		e.logger.Warnw("failed to claim reward", "address", address, "error", err)
		return models.Amount{}, err
	}

	if err := e.ledger.Transfer(ctx, address, claimed, nil); err != nil {
		e.logger.Warnw("failed to transfer reward", "address", address, "amount", claimed, "error", err)
		e.restoreReward(ctx, address, claimed)
		return models.Amount{}, fmt.Errorf("failed to transfer reward: %w", err)
	}

	e.logger.Infow("reward claimed", "address", address, "amount", claimed)
	return claimed, nil
}

func (e *Engine) restoreReward(ctx context.Context, address string, amount models.Amount) {
	_, err := e.mutate(context.WithoutCancel(ctx), "restore_reward", func(t *txn) error {
		return t.restoreClaim(address, amount)
	})
	if err != nil {
		e.logger.Errorw("failed to restore unpaid reward",
			"address", address,
			"amount", amount,
			"error", err,
		)
	}
}

// ProjectedFund lists the installments address receives in the given role
// together with its currently withdrawable balance.
func (e *Engine) ProjectedFund(address string, role models.Beneficiary) ProjectedFund {
	fund := ProjectedFund{Address: address, Role: role}

	e.read(func(s *State) {
		for i := range s.Proposals {
			proposal := &s.Proposals[i]
			projection, ok := s.projection(proposal, address, role)
			if ok {
				fund.Proposals = append(fund.Proposals, projection)
			}
		}

		balance, _ := s.balance(address)
		fund.Withdrawable = balance.Claimable
		fund.TotalClaimed = balance.TotalClaimed
	})

	return fund
}

func (e *Engine) TreasuryStatus(ctx context.Context) (TreasuryStatus, error) {
	var status TreasuryStatus
	e.read(func(s *State) {
		status = TreasuryStatus{
			Token:         e.params.Token,
			Address:       e.params.TreasuryAddress,
			Retained:      s.Treasury.Retained,
			TotalReleased: s.Treasury.TotalReleased,
			TotalClaimed:  s.Treasury.TotalClaimed,
			Outstanding:   s.Treasury.TotalReleased.Sub(s.Treasury.TotalClaimed),
		}
	})

	if status.Address == "" {
		return status, nil
	}

	balance, err := e.ledger.BalanceOf(ctx, status.Address)
	if err != nil {
		return TreasuryStatus{}, fmt.Errorf("failed to get treasury balance: %w", err)
	}
	status.LedgerBalance = balance

	return status, nil
}

func (s *State) projection(proposal *models.Proposal, address string, role models.Beneficiary) (FundProjection, bool) {
	switch role {
	case models.BeneficiaryContributor:
		if proposal.ContributorAddress != address {
			return FundProjection{}, false
		}
	case models.BeneficiarySponsor:
		if proposal.SponsorAddress != address {
			return FundProjection{}, false
		}
	default:
		return FundProjection{}, false
	}

	projection := FundProjection{
		ProposalHash: proposal.Hash,
		Title:        proposal.Title,
		Status:       proposal.Status.String(),
	}

	for _, milestoneID := range proposal.MilestoneIDs {
		for _, installment := range s.installmentsOf(proposal.ID, milestoneID) {
			if installment.Beneficiary != role {
				continue
			}

			projection.Installments = append(projection.Installments, InstallmentView{
				MilestoneID: milestoneID,
				Amount:      installment.Amount,
				Paid:        installment.Paid,
			})
			projection.Total = projection.Total.Add(installment.Amount)
			if installment.Paid {
				projection.TimesPaid++
				projection.PaidToDate = projection.PaidToDate.Add(installment.Amount)
			}
		}
	}

	if len(projection.Installments) == 0 {
		return FundProjection{}, false
	}

	projection.InstallmentCount = len(projection.Installments)
	projection.Remaining = projection.Total.Sub(projection.PaidToDate)

	return projection, true
}

// scheduleInstallments creates one contributor entry per milestone and, for
// sponsored proposals, one sponsor entry per milestone.
func (t *txn) scheduleInstallments(proposal *models.Proposal) {
	sponsorReward := proposal.SponsorDeposit.BasisPoints(t.params.SponsorRewardBasisPoints)

	for _, milestone := range t.milestonesOf(proposal) {
		t.addInstallment(models.Installment{
			ProposalID:  proposal.ID,
			MilestoneID: milestone.MilestoneID,
			Beneficiary: models.BeneficiaryContributor,
			Address:     proposal.ContributorAddress,
			Amount:      milestone.BudgetShare,
		})

		if !proposal.HasSponsor() || sponsorReward.IsZero() {
			continue
		}

		t.addInstallment(models.Installment{
			ProposalID:  proposal.ID,
			MilestoneID: milestone.MilestoneID,
			Beneficiary: models.BeneficiarySponsor,
			Address:     proposal.SponsorAddress,
			Amount:      sponsorReward,
		})
	}
}

// releaseInstallment credits every unpaid installment of a milestone. Paid
// installments are skipped, so releasing a milestone twice is a no-op.
func (t *txn) releaseInstallment(proposalID, milestoneID int) error {
	installments := t.installmentsOf(proposalID, milestoneID)
	if len(installments) == 0 {
		return fmt.Errorf("installments of milestone %d: %w", milestoneID, ErrNotFound)
	}

	proposalHash := t.proposalByID(proposalID).Hash

	for _, installment := range installments {
		if installment.Paid {
			continue
		}

		installment.Paid = true
		installment.PaidAtPeriod = t.Period.SequenceNumber
		t.credit(installment.Address, installment.Amount)
		t.Treasury.TotalReleased = t.Treasury.TotalReleased.Add(installment.Amount)

		t.emit(Event{
			Type:         EventInstallmentReleased,
			ProposalHash: proposalHash,
			MilestoneID:  milestoneID,
			Beneficiary:  installment.Beneficiary,
			Address:      installment.Address,
			Amount:       installment.Amount,
		})
	}

	return nil
}

// returnBond refunds the sponsor bond minus penaltyBasisPoints, which the
// treasury retains.
func (t *txn) returnBond(proposal *models.Proposal, penaltyBasisPoints uint64) {
	if proposal.DepositStatus != models.DepositStatusBondReceived {
		return
	}

	penalty := proposal.SponsorDeposit.BasisPoints(penaltyBasisPoints)
	refund := proposal.SponsorDeposit.Sub(penalty)

	if !refund.IsZero() {
		t.credit(proposal.SponsorAddress, refund)
	}
	t.Treasury.Retained = t.Treasury.Retained.Add(penalty)
	proposal.DepositStatus = models.DepositStatusBondReturned

	t.emit(Event{
		Type:         EventBondReturned,
		ProposalHash: proposal.Hash,
		Beneficiary:  models.BeneficiarySponsor,
		Address:      proposal.SponsorAddress,
		Amount:       refund,
	})
}

func (t *txn) forfeitBond(proposal *models.Proposal) {
	if proposal.DepositStatus != models.DepositStatusBondReceived {
		return
	}

	t.Treasury.Retained = t.Treasury.Retained.Add(proposal.SponsorDeposit)
	proposal.DepositStatus = models.DepositStatusBondForfeited

	t.emit(Event{
		Type:         EventBondForfeited,
		ProposalHash: proposal.Hash,
		Address:      proposal.SponsorAddress,
		Amount:       proposal.SponsorDeposit,
	})
}

func (t *txn) claim(address string) (models.Amount, error) {
	i, ok := t.balanceIndex[address]
	if !ok || t.Balances[i].Claimable.IsZero() {
		return models.Amount{}, ErrNothingToClaim
	}

	balance := &t.Balances[i]
	amount := balance.Claimable
	balance.Claimable = models.Amount{}
	balance.TotalClaimed = balance.TotalClaimed.Add(amount)
	t.Treasury.TotalClaimed = t.Treasury.TotalClaimed.Add(amount)

	t.emit(Event{Type: EventRewardClaimed, Address: address, Amount: amount})
	return amount, nil
}

func (t *txn) restoreClaim(address string, amount models.Amount) error {
	i, ok := t.balanceIndex[address]
	if !ok {
		return fmt.Errorf("%w: balance of %s", ErrNotFound, address)
	}

	balance := &t.Balances[i]
	balance.Claimable = balance.Claimable.Add(amount)
	balance.TotalClaimed = balance.TotalClaimed.Sub(amount)
	t.Treasury.TotalClaimed = t.Treasury.TotalClaimed.Sub(amount)

	t.emit(Event{Type: EventRewardRestored, Address: address, Amount: amount})
	return nil
}
