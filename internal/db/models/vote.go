package models

import "time"

type VoteChoice string

func (v VoteChoice) String() string {
	return string(v)
}

const (
	VoteChoiceApprove VoteChoice = "_approve"
	VoteChoiceReject  VoteChoice = "_reject"
)

func (v VoteChoice) IsValid() bool {
	return v == VoteChoiceApprove || v == VoteChoiceReject
}

type Vote struct {
	ID           int        `json:"-" pg:",pk"`
	ProposalID   int        `json:"proposal_id" pg:",notnull"`
	VoterAddress string     `json:"address" pg:",notnull"`
	Choice       VoteChoice `json:"vote" pg:",notnull"`
	Reason       string     `json:"vote_reason"`
	CreatedAt    time.Time  `json:"created_at"`
}

type MilestoneVote struct {
	ID           int        `json:"-" pg:",pk"`
	ReportID     int        `json:"report_id" pg:",notnull"`
	MilestoneID  int        `json:"milestone_id" pg:",use_zero"`
	VoterAddress string     `json:"address" pg:",notnull"`
	Choice       VoteChoice `json:"vote" pg:",notnull"`
	Reason       string     `json:"vote_reason"`
	CreatedAt    time.Time  `json:"created_at"`
}

type PriorityVote struct {
	ID             int    `json:"-" pg:",pk"`
	VoterAddress   string `json:"address" pg:",notnull"`
	PeriodSequence uint64 `json:"period_sequence" pg:",use_zero"`
	ProposalIDs    []int  `json:"proposal_ids" pg:",array"`
}

func (v PriorityVote) Clone() PriorityVote {
	v.ProposalIDs = append([]int(nil), v.ProposalIDs...)
	return v
}
