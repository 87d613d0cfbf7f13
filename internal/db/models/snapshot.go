package models

import "reflect"

// Snapshot is the full committed governance state as persisted.
type Snapshot struct {
	Period         Period
	Treasury       TreasuryAccount
	Validators     []Validator
	Proposals      []Proposal
	Milestones     []Milestone
	Reports        []ProgressReport
	Votes          []Vote
	MilestoneVotes []MilestoneVote
	PriorityVotes  []PriorityVote
	Windows        []TallyWindow
	Installments   []Installment
	Balances       []Balance
}

func (s Snapshot) Clone() Snapshot {
	clone := Snapshot{
		Period:         s.Period,
		Treasury:       s.Treasury,
		Validators:     append([]Validator(nil), s.Validators...),
		Milestones:     append([]Milestone(nil), s.Milestones...),
		Votes:          append([]Vote(nil), s.Votes...),
		MilestoneVotes: append([]MilestoneVote(nil), s.MilestoneVotes...),
		Installments:   append([]Installment(nil), s.Installments...),
		Balances:       append([]Balance(nil), s.Balances...),
	}

	clone.Proposals = make([]Proposal, len(s.Proposals))
	for i, proposal := range s.Proposals {
		clone.Proposals[i] = proposal.Clone()
	}

	clone.Reports = make([]ProgressReport, len(s.Reports))
	for i, report := range s.Reports {
		clone.Reports[i] = report.Clone()
	}

	clone.PriorityVotes = make([]PriorityVote, len(s.PriorityVotes))
	for i, vote := range s.PriorityVotes {
		clone.PriorityVotes[i] = vote.Clone()
	}

	clone.Windows = make([]TallyWindow, len(s.Windows))
	for i, window := range s.Windows {
		clone.Windows[i] = window.Clone()
	}

	return clone
}

// Changes returns the rows of s that are new or differ from previous. The
// period and treasury rows are always included.
func (s Snapshot) Changes(previous Snapshot) Snapshot {
	return Snapshot{
		Period:         s.Period,
		Treasury:       s.Treasury,
		Validators:     changedRows(previous.Validators, s.Validators),
		Proposals:      changedRows(previous.Proposals, s.Proposals),
		Milestones:     changedRows(previous.Milestones, s.Milestones),
		Reports:        changedRows(previous.Reports, s.Reports),
		Votes:          changedRows(previous.Votes, s.Votes),
		MilestoneVotes: changedRows(previous.MilestoneVotes, s.MilestoneVotes),
		PriorityVotes:  changedRows(previous.PriorityVotes, s.PriorityVotes),
		Windows:        changedRows(previous.Windows, s.Windows),
		Installments:   changedRows(previous.Installments, s.Installments),
		Balances:       changedRows(previous.Balances, s.Balances),
	}
}

// changedRows relies on rows never being removed or reordered, so row i of
// current is the same entity as row i of previous.
func changedRows[T any](previous, current []T) []T {
	var changed []T
	for i := range current {
		if i < len(previous) && reflect.DeepEqual(previous[i], current[i]) {
			continue
		}
		changed = append(changed, current[i])
	}
	return changed
}
