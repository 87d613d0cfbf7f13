package models

import "time"

type ReportStatus string

func (r ReportStatus) String() string {
	return string(r)
}

const (
	ReportStatusWaiting  ReportStatus = "waiting"
	ReportStatusApproved ReportStatus = "approved"
	ReportStatusRejected ReportStatus = "rejected"
)

type MilestoneSubmission struct {
	MilestoneID   int  `json:"id"`
	ClaimComplete bool `json:"status"`
}

type ProgressReport struct {
	ID                int                   `json:"-" pg:",pk"`
	Hash              string                `json:"report_hash" pg:",notnull,unique"`
	ProposalID        int                   `json:"proposal_id" pg:",notnull"`
	Title             string                `json:"progress_report_title"`
	Link              string                `json:"ipfs_link"`
	Submissions       []MilestoneSubmission `json:"submissions" pg:",notnull"`
	Status            ReportStatus          `json:"status" pg:",notnull"`
	SubmittedAt       time.Time             `json:"timestamp"`
	SubmittedAtPeriod uint64                `json:"submitted_at_period" pg:",use_zero"`
}

func (r ProgressReport) ClaimedMilestoneIDs() []int {
	ids := make([]int, 0, len(r.Submissions))
	for _, submission := range r.Submissions {
		if submission.ClaimComplete {
			ids = append(ids, submission.MilestoneID)
		}
	}
	return ids
}

func (r ProgressReport) Claims(milestoneID int) bool {
	for _, submission := range r.Submissions {
		if submission.MilestoneID == milestoneID && submission.ClaimComplete {
			return true
		}
	}
	return false
}

func (r ProgressReport) Clone() ProgressReport {
	r.Submissions = append([]MilestoneSubmission(nil), r.Submissions...)
	return r
}
