package models

type MilestoneStatus string

func (m MilestoneStatus) String() string {
	return string(m)
}

const (
	MilestoneStatusWaiting         MilestoneStatus = "waiting"
	MilestoneStatusReportSubmitted MilestoneStatus = "report_submitted"
	MilestoneStatusApproved        MilestoneStatus = "approved"
	MilestoneStatusCompleted       MilestoneStatus = "completed"
	MilestoneStatusRejected        MilestoneStatus = "rejected"
)

type Milestone struct {
	ID               int             `json:"-" pg:",pk"`
	ProposalID       int             `json:"proposal_id" pg:",notnull"`
	MilestoneID      int             `json:"id" pg:",use_zero"`
	Title            string          `json:"name"`
	BudgetShare      Amount          `json:"budget" pg:"type:numeric,notnull,use_zero"`
	CompletionPeriod int             `json:"completion_period" pg:",use_zero"`
	Status           MilestoneStatus `json:"status" pg:",notnull"`
}
