package governance

import (
	"context"
	"fmt"
	"strings"

	"contribution_governance_system/internal/db/models"
)

type ReportSubmission struct {
	Hash         string                       `json:"report_hash"`
	ProposalHash string                       `json:"ipfs_hash"`
	Title        string                       `json:"progress_report_title"`
	Link         string                       `json:"ipfs_link"`
	Milestones   []models.MilestoneSubmission `json:"milestones"`
}

type MilestoneVoteResult struct {
	MilestoneID int `json:"milestone_id"`
	VoteResult
}

func (e *Engine) SubmitProgressReport(ctx context.Context, contributor string, submission ReportSubmission) error {
	_, err := e.mutate(ctx, "submit_report", func(t *txn) error {
		return t.submitProgressReport(contributor, submission)
	})
	if err != nil {
		e.logger.Warnw("failed to submit progress report", "report", submission.Hash, "proposal", submission.ProposalHash, "error", err)
		return err
	}

	e.logger.Infow("progress report submitted", "report", submission.Hash, "proposal", submission.ProposalHash)
	return nil
}

func (e *Engine) MilestoneStatus(proposalHash string, milestoneID int) (models.Milestone, error) {
	var (
		milestone models.Milestone
		err       error
	)
	e.read(func(s *State) {
		proposal, ok := s.proposalByHash(proposalHash)
		if !ok {
			err = fmt.Errorf("proposal %s: %w", proposalHash, ErrNotFound)
			return
		}
		m, ok := s.milestone(proposal.ID, milestoneID)
		if !ok {
			err = fmt.Errorf("milestone %d: %w", milestoneID, ErrNotFound)
			return
		}
		milestone = *m
	})
	return milestone, err
}

func (e *Engine) ReportDetail(reportHash string) (ReportDetail, error) {
	var (
		detail ReportDetail
		err    error
	)
	e.read(func(s *State) {
		report, ok := s.report(reportHash)
		if !ok {
			err = fmt.Errorf("report %s: %w", reportHash, ErrNotFound)
			return
		}
		detail = s.reportDetail(report)
	})
	return detail, err
}

func (e *Engine) MilestoneVoteResult(reportHash string, milestoneID int) (VoteResult, error) {
	var (
		result VoteResult
		err    error
	)
	e.read(func(s *State) {
		report, ok := s.report(reportHash)
		if !ok {
			err = fmt.Errorf("report %s: %w", reportHash, ErrNotFound)
			return
		}
		if !report.Claims(milestoneID) {
			err = fmt.Errorf("milestone %d of report %s: %w", milestoneID, reportHash, ErrNotFound)
			return
		}
		window, _ := s.window(models.WindowKindReport, report.ID)
		result = s.milestoneVoteResult(report.ID, milestoneID, window, e.params.QuorumBasisPoints)
	})
	return result, err
}

// ReportVoteResult returns the vote result of every milestone the report
// claims complete.
func (e *Engine) ReportVoteResult(reportHash string) ([]MilestoneVoteResult, error) {
	var (
		results []MilestoneVoteResult
		err     error
	)
	e.read(func(s *State) {
		report, ok := s.report(reportHash)
		if !ok {
			err = fmt.Errorf("report %s: %w", reportHash, ErrNotFound)
			return
		}
		window, _ := s.window(models.WindowKindReport, report.ID)
		for _, milestoneID := range report.ClaimedMilestoneIDs() {
			results = append(results, MilestoneVoteResult{
				MilestoneID: milestoneID,
				VoteResult:  s.milestoneVoteResult(report.ID, milestoneID, window, e.params.QuorumBasisPoints),
			})
		}
	})
	return results, err
}

func (t *txn) submitProgressReport(contributor string, submission ReportSubmission) error {
	proposal, ok := t.proposalByHash(submission.ProposalHash)
	if !ok {
		return fmt.Errorf("proposal %s: %w", submission.ProposalHash, ErrNotFound)
	}
	if proposal.Status != models.ProposalStatusActive {
		return ErrWrongProposalStatus
	}
	if contributor != proposal.ContributorAddress {
		return ErrNotContributor
	}
	if err := t.requirePeriod(models.PeriodNameApplication); err != nil {
		return err
	}
	if _, ok := t.unresolvedReport(proposal.ID); ok {
		return ErrUnresolvedReportExists
	}

	submission.Hash = strings.TrimSpace(submission.Hash)
	if submission.Hash == "" {
		return fmt.Errorf("%w: report hash is empty", ErrInvalidProposal)
	}
	if _, ok := t.report(submission.Hash); ok {
		return ErrDuplicateReport
	}

	if err := t.validateSubmissions(proposal, submission.Milestones); err != nil {
		return err
	}

	proposalID, proposalHash := proposal.ID, proposal.Hash
	report := t.addReport(models.ProgressReport{
		Hash:              submission.Hash,
		ProposalID:        proposalID,
		Title:             submission.Title,
		Link:              submission.Link,
		Submissions:       append([]models.MilestoneSubmission(nil), submission.Milestones...),
		Status:            models.ReportStatusWaiting,
		SubmittedAt:       t.now,
		SubmittedAtPeriod: t.Period.SequenceNumber,
	})

	for _, milestoneID := range report.ClaimedMilestoneIDs() {
		milestone, _ := t.milestone(proposalID, milestoneID)
		milestone.Status = models.MilestoneStatusReportSubmitted
	}

	t.emit(Event{Type: EventReportSubmitted, ProposalHash: proposalHash, ReportHash: submission.Hash})
	return nil
}

func (t *txn) validateSubmissions(proposal *models.Proposal, submissions []models.MilestoneSubmission) error {
	if len(submissions) == 0 {
		return fmt.Errorf("%w: report has no milestones", ErrInvalidMilestones)
	}

	seen := make(map[int]struct{}, len(submissions))
	claims := 0

	for _, submission := range submissions {
		milestone, ok := t.milestone(proposal.ID, submission.MilestoneID)
		if !ok {
			return fmt.Errorf("%w: milestone %d does not belong to the proposal", ErrInvalidMilestones, submission.MilestoneID)
		}
		if _, ok := seen[submission.MilestoneID]; ok {
			return fmt.Errorf("%w: milestone %d reported twice", ErrInvalidMilestones, submission.MilestoneID)
		}
		seen[submission.MilestoneID] = struct{}{}

		if !submission.ClaimComplete {
			continue
		}
		claims++

		switch milestone.Status {
		case models.MilestoneStatusWaiting:
		case models.MilestoneStatusRejected:
			if !t.params.AllowMilestoneResubmission {
				return fmt.Errorf("%w: milestone %d was rejected", ErrInvalidMilestones, submission.MilestoneID)
			}
		default:
			return fmt.Errorf("%w: milestone %d is %s", ErrInvalidMilestones, submission.MilestoneID, milestone.Status)
		}
	}

	if claims == 0 {
		return fmt.Errorf("%w: report claims no completed milestone", ErrInvalidMilestones)
	}

	return nil
}

// resolveReport applies the per-milestone outcome of a closed report window.
// Approved milestones are paid before they are marked completed.
func (t *txn) resolveReport(report *models.ProgressReport, results []models.MilestoneResult) error {
	proposal := t.proposalByID(report.ProposalID)
	approved := true

	for _, result := range results {
		milestone, ok := t.milestone(proposal.ID, result.MilestoneID)
		if !ok {
			return fmt.Errorf("milestone %d of proposal %s: %w", result.MilestoneID, proposal.Hash, ErrNotFound)
		}

		t.emit(Event{
			Type:         EventMilestoneResolved,
			ProposalHash: proposal.Hash,
			ReportHash:   report.Hash,
			MilestoneID:  result.MilestoneID,
			Approved:     result.Approved,
		})

		if !result.Approved {
			milestone.Status = models.MilestoneStatusRejected
			approved = false
			continue
		}

		milestone.Status = models.MilestoneStatusApproved
		if err := t.releaseInstallment(proposal.ID, result.MilestoneID); err != nil {
			return err
		}
		milestone.Status = models.MilestoneStatusCompleted
	}

	if approved {
		report.Status = models.ReportStatusApproved
	} else {
		report.Status = models.ReportStatusRejected
	}
	t.emit(Event{
		Type:         EventReportResolved,
		ProposalHash: proposal.Hash,
		ReportHash:   report.Hash,
		Approved:     approved,
	})

	return t.onMilestoneCompleted(proposal)
}
