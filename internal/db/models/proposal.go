package models

import "time"

type (
	ProposalStatus string
	DepositStatus  string
)

func (p ProposalStatus) String() string {
	return string(p)
}

func (d DepositStatus) String() string {
	return string(d)
}

const (
	ProposalStatusSponsorPending ProposalStatus = "sponsor_pending"
	ProposalStatusPending        ProposalStatus = "pending"
	ProposalStatusActive         ProposalStatus = "active"
	ProposalStatusRejected       ProposalStatus = "rejected"
	ProposalStatusCompleted      ProposalStatus = "completed"

	DepositStatusNone          DepositStatus = "none"
	DepositStatusBondReceived  DepositStatus = "bond_received"
	DepositStatusBondReturned  DepositStatus = "bond_returned"
	DepositStatusBondForfeited DepositStatus = "bond_forfeited"
)

var ProposalStatuses = []ProposalStatus{
	ProposalStatusSponsorPending,
	ProposalStatusPending,
	ProposalStatusActive,
	ProposalStatusRejected,
	ProposalStatusCompleted,
}

func ParseProposalStatus(s string) (ProposalStatus, bool) {
	for _, status := range ProposalStatuses {
		if string(status) == s {
			return status, true
		}
	}
	return "", false
}

func (p ProposalStatus) IsTerminal() bool {
	return p == ProposalStatusRejected || p == ProposalStatusCompleted
}

// CanTransitionTo reports whether moving from p to next follows
// SponsorPending -> Pending -> {Active -> Completed} | Rejected.
func (p ProposalStatus) CanTransitionTo(next ProposalStatus) bool {
	switch p {
	case ProposalStatusSponsorPending:
		return next == ProposalStatusPending
	case ProposalStatusPending:
		return next == ProposalStatusActive || next == ProposalStatusRejected
	case ProposalStatusActive:
		return next == ProposalStatusCompleted || next == ProposalStatusRejected
	}
	return false
}

type Proposal struct {
	ID                 int            `json:"id" pg:",pk"`
	Hash               string         `json:"ipfs_hash" pg:",notnull,unique"`
	Title              string         `json:"project_title" pg:",notnull"`
	Link               string         `json:"ipfs_link"`
	TotalBudget        Amount         `json:"total_budget" pg:"type:numeric,notnull,use_zero"`
	Token              string         `json:"token" pg:",notnull"`
	SponsorAddress     string         `json:"sponsor_address"`
	ContributorAddress string         `json:"contributor_address" pg:",notnull"`
	DurationPeriods    int            `json:"project_duration" pg:",use_zero"`
	MilestoneIDs       []int          `json:"milestone_ids" pg:",array"`
	Status             ProposalStatus `json:"status" pg:",notnull"`
	SponsorDeposit     Amount         `json:"sponsor_deposit_amount" pg:"type:numeric,use_zero"`
	DepositStatus      DepositStatus  `json:"sponsor_deposit_status" pg:",notnull"`
	SponsorVoteReason  string         `json:"sponsor_vote_reason"`
	CreatedAt          time.Time      `json:"created_at"`
	CreatedAtPeriod    uint64         `json:"created_at_period" pg:",use_zero"`
}

func (p Proposal) HasSponsor() bool {
	return p.SponsorAddress != ""
}

func (p Proposal) Clone() Proposal {
	p.MilestoneIDs = append([]int(nil), p.MilestoneIDs...)
	return p
}
