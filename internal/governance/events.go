package governance

import "contribution_governance_system/internal/db/models"

type EventType string

const (
	EventPeriodChanged       EventType = "period.changed"
	EventWindowOpened        EventType = "window.opened"
	EventWindowClosed        EventType = "window.closed"
	EventProposalSubmitted   EventType = "proposal.submitted"
	EventProposalSponsored   EventType = "proposal.sponsored"
	EventProposalActivated   EventType = "proposal.activated"
	EventProposalRejected    EventType = "proposal.rejected"
	EventProposalCompleted   EventType = "proposal.completed"
	EventReportSubmitted     EventType = "report.submitted"
	EventReportResolved      EventType = "report.resolved"
	EventMilestoneResolved   EventType = "milestone.resolved"
	EventInstallmentReleased EventType = "installment.released"
	EventBondReturned        EventType = "bond.returned"
	EventBondForfeited       EventType = "bond.forfeited"
	EventRewardClaimed       EventType = "reward.claimed"
	EventRewardRestored      EventType = "reward.restored"
)

// Event records one side effect of a committed operation. Only the fields
// relevant to Type are set.
type Event struct {
	Type         EventType
	Period       models.PeriodName
	Sequence     uint64
	WindowKind   models.WindowKind
	ProposalHash string
	ReportHash   string
	MilestoneID  int
	Beneficiary  models.Beneficiary
	Address      string
	Amount       models.Amount
	Approved     bool
	Status       models.ProposalStatus
}
