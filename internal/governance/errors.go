package governance

import "errors"

var (
	ErrNotEligible            = errors.New("not eligible validator")
	ErrAlreadyRegistered      = errors.New("validator is already registered")
	ErrNotRegistered          = errors.New("validator is not registered")
	ErrNotEligibleVoter       = errors.New("not eligible voter")
	ErrDuplicateProposal      = errors.New("proposal already exists")
	ErrInvalidMilestones      = errors.New("invalid milestones")
	ErrInvalidBondAmount      = errors.New("invalid sponsor bond amount")
	ErrDuplicateVote          = errors.New("already voted")
	ErrWrongPeriod            = errors.New("action is not allowed in the current period")
	ErrWrongProposalStatus    = errors.New("action is not allowed for the proposal status")
	ErrUnresolvedReportExists = errors.New("proposal has an unresolved progress report")
	ErrNothingToClaim         = errors.New("nothing to claim")

	ErrNotFound        = errors.New("not found")
	ErrNotSponsor      = errors.New("sender is not the designated sponsor")
	ErrNotContributor  = errors.New("caller is not the proposal contributor")
	ErrInvalidBallot   = errors.New("invalid ballot")
	ErrInvalidToken    = errors.New("unsupported token")
	ErrDuplicateReport = errors.New("progress report already exists")
	ErrInvalidPayload  = errors.New("invalid ledger payload")
	ErrInvalidProposal = errors.New("invalid proposal")
	ErrInvalidAddress  = errors.New("invalid address")
)
