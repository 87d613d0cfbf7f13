package governance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister_NotEligible(t *testing.T) {
	h := newHarness(t, testParams())

	err := h.engine.Register(h.ctx, "hx-unknown")
	assert.ErrorIs(t, err, ErrNotEligible)
	assert.Empty(t, h.engine.Validators())
}

func TestRegister_AlreadyRegistered(t *testing.T) {
	h := newHarness(t, testParams())
	h.registerValidators(1)

	err := h.engine.Register(h.ctx, "hx1")
	assert.ErrorIs(t, err, ErrAlreadyRegistered)
}

func TestRegister_EmptyAddress(t *testing.T) {
	h := newHarness(t, testParams())

	assert.ErrorIs(t, h.engine.Register(h.ctx, "  "), ErrInvalidAddress)
}

func TestUnregister_NotRegistered(t *testing.T) {
	h := newHarness(t, testParams())

	assert.ErrorIs(t, h.engine.Unregister(h.ctx, "hx1"), ErrNotRegistered)
}

func TestRegister_ReRegistrationResetsVotingMembership(t *testing.T) {
	h := newHarness(t, testParams())
	h.registerValidators(1)

	require.NoError(t, h.engine.Unregister(h.ctx, "hx1"))

	status, err := h.engine.ValidatorStatus(h.ctx, "hx1")
	require.NoError(t, err)
	assert.True(t, status.IsEligible)
	assert.False(t, status.IsRegistered)
	assert.False(t, status.IsVotingMember)

	h.advance()
	require.NoError(t, h.engine.Register(h.ctx, "hx1"))

	status, err = h.engine.ValidatorStatus(h.ctx, "hx1")
	require.NoError(t, err)
	assert.True(t, status.IsEligible)
	assert.True(t, status.IsRegistered)
	assert.False(t, status.IsVotingMember)

	h.advance()

	status, err = h.engine.ValidatorStatus(h.ctx, "hx1")
	require.NoError(t, err)
	assert.True(t, status.IsVotingMember)
}

func TestValidatorStatus_PenaltyExcludesVotingMembership(t *testing.T) {
	h := newHarness(t, testParams())
	h.registerValidators(2)
	h.oracle.penalize("hx2", true)

	status, err := h.engine.ValidatorStatus(h.ctx, "hx2")
	require.NoError(t, err)
	assert.True(t, status.HasPenalty)
	assert.False(t, status.IsVotingMember)
	assert.Equal(t, tokens(100), status.VotingWeight)
}

func TestValidatorStatus_UnknownAddress(t *testing.T) {
	h := newHarness(t, testParams())

	status, err := h.engine.ValidatorStatus(h.ctx, "hx-unknown")
	require.NoError(t, err)
	assert.False(t, status.IsEligible)
	assert.False(t, status.IsRegistered)
	assert.True(t, status.VotingWeight.IsZero())
}

func TestVotingSnapshot_SkipsPenalizedValidators(t *testing.T) {
	h := newHarness(t, testParams())
	voters := h.registerValidators(3)
	h.submitSponsored("bafy-penalty")
	h.oracle.penalize("hx3", true)

	h.advance()

	assert.ErrorIs(t, h.engine.CastVote(h.ctx, "bafy-penalty", voters[2], "_approve", "", false), ErrNotEligibleVoter)
	assert.NoError(t, h.engine.CastVote(h.ctx, "bafy-penalty", voters[0], "_approve", "", false))
}

func TestValidators_ListsRegisteredOnly(t *testing.T) {
	h := newHarness(t, testParams())
	h.registerValidators(3)
	require.NoError(t, h.engine.Unregister(h.ctx, "hx2"))

	validators := h.engine.Validators()
	require.Len(t, validators, 2)
	assert.Equal(t, "hx1", validators[0].Address)
	assert.Equal(t, "hx3", validators[1].Address)
}
