package governance

import (
	"fmt"
	"time"

	"github.com/samber/lo"

	"contribution_governance_system/internal/db/models"
)

const timestampLayout = time.RFC3339

type ProposalDetail struct {
	Proposal     models.Proposal
	Milestones   []models.Milestone
	ReportHashes []string
	RequiredBond models.Amount
}

// KV flattens the detail into the key/value record served to external clients.
func (d ProposalDetail) KV() map[string]any {
	p := d.Proposal

	return map[string]any{
		"ipfs_hash":              p.Hash,
		"project_title":          p.Title,
		"ipfs_link":              p.Link,
		"total_budget":           p.TotalBudget,
		"token":                  p.Token,
		"sponsor_address":        p.SponsorAddress,
		"contributor_address":    p.ContributorAddress,
		"project_duration":       p.DurationPeriods,
		"status":                 p.Status,
		"sponsor_deposit_amount": p.SponsorDeposit,
		"sponsor_deposit_status": p.DepositStatus,
		"sponsor_bond_required":  d.RequiredBond,
		"sponsor_vote_reason":    p.SponsorVoteReason,
		"created_at":             p.CreatedAt.UTC().Format(timestampLayout),
		"created_at_period":      p.CreatedAtPeriod,
		"milestone_count":        len(d.Milestones),
		"milestones":             d.Milestones,
		"progress_reports":       d.ReportHashes,
	}
}

type ReportDetail struct {
	Report       models.ProgressReport
	ProposalHash string
	Milestones   []models.Milestone
}

func (d ReportDetail) KV() map[string]any {
	r := d.Report

	return map[string]any{
		"report_hash":               r.Hash,
		"ipfs_hash":                 d.ProposalHash,
		"progress_report_title":     r.Title,
		"ipfs_link":                 r.Link,
		"status":                    r.Status,
		"timestamp":                 r.SubmittedAt.UTC().Format(timestampLayout),
		"submitted_at_period":       r.SubmittedAtPeriod,
		"submissions":               r.Submissions,
		"submitted_milestone_count": len(r.ClaimedMilestoneIDs()),
		"milestones":                d.Milestones,
	}
}

// ActiveProposal is an active proposal as seen by its contributor.
type ActiveProposal struct {
	ProposalHash        string                `json:"ipfs_hash"`
	Title               string                `json:"project_title"`
	Status              models.ProposalStatus `json:"status"`
	NewProgressReport   bool                  `json:"new_progress_report"`
	CanSubmitReport     bool                  `json:"can_submit_progress_report"`
	LastReportHash      string                `json:"last_progress_report"`
	MilestoneCount      int                   `json:"milestone_count"`
	MilestonesCompleted int                   `json:"milestones_completed"`
}

// ProposalHashesByStatus lists proposal hashes with the given status in
// submission order.
func (e *Engine) ProposalHashesByStatus(status models.ProposalStatus) []string {
	var hashes []string
	e.read(func(s *State) {
		hashes = lo.FilterMap(s.Proposals, func(p models.Proposal, _ int) (string, bool) {
			return p.Hash, p.Status == status
		})
	})
	return hashes
}

func (e *Engine) ProposalDetail(proposalHash string) (ProposalDetail, error) {
	var (
		detail ProposalDetail
		err    error
	)
	e.read(func(s *State) {
		proposal, ok := s.proposalByHash(proposalHash)
		if !ok {
			err = fmt.Errorf("proposal %s: %w", proposalHash, ErrNotFound)
			return
		}

		detail = ProposalDetail{
			Proposal: proposal.Clone(),
			Milestones: lo.Map(s.milestonesOf(proposal), func(m *models.Milestone, _ int) models.Milestone {
				return *m
			}),
			ReportHashes: lo.Map(s.reportsOf(proposal.ID), func(r *models.ProgressReport, _ int) string {
				return r.Hash
			}),
			RequiredBond: proposal.TotalBudget.BasisPoints(e.params.SponsorBondBasisPoints),
		}
	})
	return detail, err
}

// ActiveProposals lists the active proposals of a contributor. NewProgressReport
// is set while a submitted report awaits its vote; CanSubmitReport tells
// whether a new report may be submitted right now.
func (e *Engine) ActiveProposals(contributor string) []ActiveProposal {
	var active []ActiveProposal
	e.read(func(s *State) {
		for i := range s.Proposals {
			proposal := &s.Proposals[i]
			if proposal.ContributorAddress != contributor || proposal.Status != models.ProposalStatusActive {
				continue
			}

			view := ActiveProposal{
				ProposalHash: proposal.Hash,
				Title:        proposal.Title,
				Status:       proposal.Status,
			}

			milestones := s.milestonesOf(proposal)
			view.MilestoneCount = len(milestones)
			view.MilestonesCompleted = lo.CountBy(milestones, func(m *models.Milestone) bool {
				return m.Status == models.MilestoneStatusCompleted
			})

			if reports := s.reportsOf(proposal.ID); len(reports) > 0 {
				view.LastReportHash = reports[len(reports)-1].Hash
			}

			_, unresolved := s.unresolvedReport(proposal.ID)
			view.NewProgressReport = unresolved
			view.CanSubmitReport = s.Period.Name == models.PeriodNameApplication && !unresolved

			active = append(active, view)
		}
	})
	return active
}

func (s *State) reportDetail(report *models.ProgressReport) ReportDetail {
	proposal := s.proposalByID(report.ProposalID)

	detail := ReportDetail{
		Report:       report.Clone(),
		ProposalHash: proposal.Hash,
	}
	for _, submission := range report.Submissions {
		if milestone, ok := s.milestone(proposal.ID, submission.MilestoneID); ok {
			detail.Milestones = append(detail.Milestones, *milestone)
		}
	}

	return detail
}
