package governance

import (
	"context"
	"fmt"
	"strings"

	"github.com/samber/lo"

	"contribution_governance_system/internal/db/models"
)

type ValidatorStatus struct {
	Address        string        `json:"address"`
	IsEligible     bool          `json:"is_prep"`
	IsRegistered   bool          `json:"is_registered"`
	HasPenalty     bool          `json:"pay_penalty"`
	IsVotingMember bool          `json:"voting_prep"`
	VotingWeight   models.Amount `json:"voting_weight"`
}

func (e *Engine) Register(ctx context.Context, address string) error {
	_, err := e.mutate(ctx, "register", func(t *txn) error {
		return t.register(address)
	})
	if err != nil {
		e.logger.Warnw("failed to register validator", "address", address, "error", err)
		return err
	}

	e.logger.Infow("validator registered", "address", address)
	return nil
}

func (e *Engine) Unregister(ctx context.Context, address string) error {
	_, err := e.mutate(ctx, "unregister", func(t *txn) error {
		return t.unregister(address)
	})
	if err != nil {
		e.logger.Warnw("failed to unregister validator", "address", address, "error", err)
		return err
	}

	e.logger.Infow("validator unregistered", "address", address)
	return nil
}

func (e *Engine) ValidatorStatus(ctx context.Context, address string) (ValidatorStatus, error) {
	var validator models.Validator
	e.read(func(s *State) {
		if v, ok := s.validator(address); ok {
			validator = *v
		}
	})

	eligible, err := e.oracle.IsEligible(ctx, address)
	if err != nil {
		return ValidatorStatus{}, fmt.Errorf("failed to check eligibility: %w", err)
	}

	status := ValidatorStatus{
		Address:        address,
		IsEligible:     eligible,
		IsRegistered:   validator.IsRegistered,
		IsVotingMember: validator.IsVotingMember,
	}
	if !eligible {
		return status, nil
	}

	if status.HasPenalty, err = e.oracle.HasPenalty(ctx, address); err != nil {
		return ValidatorStatus{}, fmt.Errorf("failed to check penalty: %w", err)
	}
	if status.HasPenalty {
		status.IsVotingMember = false
	}

	if status.VotingWeight, err = e.oracle.VotingWeight(ctx, address); err != nil {
		return ValidatorStatus{}, fmt.Errorf("failed to get voting weight: %w", err)
	}

	return status, nil
}

// Validators lists registered validators in registration order.
func (e *Engine) Validators() []models.Validator {
	var validators []models.Validator
	e.read(func(s *State) {
		validators = lo.Filter(s.Validators, func(v models.Validator, _ int) bool {
			return v.IsRegistered
		})
	})
	return validators
}

func (t *txn) register(address string) error {
	address = strings.TrimSpace(address)
	if address == "" {
		return ErrInvalidAddress
	}

	eligible, err := t.oracle.IsEligible(t.ctx, address)
	if err != nil {
		return fmt.Errorf("failed to check eligibility: %w", err)
	}
	if !eligible {
		return ErrNotEligible
	}

	penalty, err := t.oracle.HasPenalty(t.ctx, address)
	if err != nil {
		return fmt.Errorf("failed to check penalty: %w", err)
	}

	validator, ok := t.validator(address)
	if ok && validator.IsRegistered {
		return ErrAlreadyRegistered
	}
	if !ok {
		validator = t.addValidator(models.Validator{Address: address})
	}

	validator.IsRegistered = true
	validator.RegisteredAt = t.now
	// A validator joining mid-vote only takes part from the next window.
	validator.IsVotingMember = !penalty && t.Period.Name == models.PeriodNameApplication

	return nil
}

func (t *txn) unregister(address string) error {
	validator, ok := t.validator(address)
	if !ok || !validator.IsRegistered {
		return ErrNotRegistered
	}

	validator.IsRegistered = false
	validator.IsVotingMember = false

	return nil
}

func (t *txn) refreshVotingMembers() error {
	for i := range t.Validators {
		validator := &t.Validators[i]
		if !validator.IsRegistered {
			continue
		}

		penalty, err := t.oracle.HasPenalty(t.ctx, validator.Address)
		if err != nil {
			return fmt.Errorf("failed to check penalty of %s: %w", validator.Address, err)
		}
		validator.IsVotingMember = !penalty
	}

	return nil
}

// votingSnapshot captures the voting members and their weights for a new window.
func (t *txn) votingSnapshot() ([]models.WindowVoter, error) {
	var voters []models.WindowVoter

	for _, validator := range t.Validators {
		if !validator.IsRegistered || !validator.IsVotingMember {
			continue
		}

		penalty, err := t.oracle.HasPenalty(t.ctx, validator.Address)
		if err != nil {
			return nil, fmt.Errorf("failed to check penalty of %s: %w", validator.Address, err)
		}
		if penalty {
			continue
		}

		weight, err := t.oracle.VotingWeight(t.ctx, validator.Address)
		if err != nil {
			return nil, fmt.Errorf("failed to get voting weight of %s: %w", validator.Address, err)
		}

		voters = append(voters, models.WindowVoter{Address: validator.Address, Weight: weight})
	}

	return voters, nil
}

// requireVoter checks that address may vote in window.
func (t *txn) requireVoter(window *models.TallyWindow, address string) error {
	validator, ok := t.validator(address)
	if !ok || !validator.IsRegistered {
		return ErrNotEligibleVoter
	}
	if _, ok := window.WeightOf(address); !ok {
		return ErrNotEligibleVoter
	}
	return nil
}
