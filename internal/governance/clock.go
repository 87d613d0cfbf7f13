package governance

import (
	"context"

	"contribution_governance_system/internal/db/models"
)

type PeriodStatus struct {
	Name           models.PeriodName `json:"period_name"`
	SequenceNumber uint64            `json:"sequence_number"`
	StartedAtBlock uint64            `json:"started_at_block"`
	NextBlock      uint64            `json:"next_block"`
}

func (e *Engine) PeriodStatus() PeriodStatus {
	var status PeriodStatus
	e.read(func(s *State) {
		status = PeriodStatus{
			Name:           s.Period.Name,
			SequenceNumber: s.Period.SequenceNumber,
			StartedAtBlock: s.Period.StartedAtBlock,
			NextBlock:      s.Period.StartedAtBlock + e.params.BlocksPerPeriod,
		}
	})
	return status
}

// AdvancePeriod rotates Application <-> Voting once BlocksPerPeriod blocks
// have elapsed since the current period started, or unconditionally when
// force is set. A call that comes too early is a no-op and returns no events.
//
// Entering Voting opens a tally window for every pending proposal and waiting
// report. Entering Application closes every open window, proposal windows
// first and then report windows, each in creation order, and applies the
// resulting transitions.
func (e *Engine) AdvancePeriod(ctx context.Context, currentBlock uint64, force bool) ([]Event, error) {
	events, err := e.mutate(ctx, "advance_period", func(t *txn) error {
		return t.advance(currentBlock, force)
	})
	if err != nil {
		e.logger.Errorw("failed to advance period", "block", currentBlock, "error", err)
		return nil, err
	}

	if len(events) > 0 {
		e.logger.Infow("period advanced", "block", currentBlock, "period", events[0].Period, "sequence", events[0].Sequence, "events", len(events))
	}

	return events, nil
}

func (t *txn) advance(currentBlock uint64, force bool) error {
	period := &t.Period

	var elapsed uint64
	if currentBlock > period.StartedAtBlock {
		elapsed = currentBlock - period.StartedAtBlock
	}

	if !force && elapsed < t.params.BlocksPerPeriod {
		t.unchanged = true
		return nil
	}

	period.Name = period.Name.Next()
	period.SequenceNumber++
	if currentBlock > period.StartedAtBlock {
		period.StartedAtBlock = currentBlock
	}

	t.emit(Event{
		Type:     EventPeriodChanged,
		Period:   period.Name,
		Sequence: period.SequenceNumber,
	})

	if period.Name == models.PeriodNameVoting {
		return t.openWindows()
	}

	if err := t.closeWindows(); err != nil {
		return err
	}

	return t.refreshVotingMembers()
}

func (t *txn) requirePeriod(name models.PeriodName) error {
	if t.Period.Name != name {
		return ErrWrongPeriod
	}
	return nil
}
