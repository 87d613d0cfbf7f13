package governance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"contribution_governance_system/internal/db/models"
)

func TestMutate_SavesOnlyChangedRows(t *testing.T) {
	h := newHarness(t, testParams())
	voters := h.registerValidators(7)
	h.submitSponsored("bafy-a")
	h.submitSponsored("bafy-b")
	h.submitSponsored("bafy-c")
	h.advance()

	for _, hash := range []string{"bafy-a", "bafy-b"} {
		h.voteAll(voters, hash, models.VoteChoiceApprove)
	}
	h.voteAll(voters[:6], "bafy-c", models.VoteChoiceApprove)

	require.NoError(t, h.engine.CastVote(h.ctx, "bafy-c", voters[6], models.VoteChoiceReject, "", false))

	saved := h.store.last
	require.Len(t, saved.Votes, 1)
	assert.Equal(t, voters[6], saved.Votes[0].VoterAddress)
	assert.Empty(t, saved.Windows)
	assert.Empty(t, saved.Proposals)
	assert.Empty(t, saved.Validators)
	assert.Empty(t, saved.Milestones)
	assert.Empty(t, saved.Installments)
	assert.Empty(t, saved.Balances)
	assert.Equal(t, models.PeriodNameVoting, saved.Period.Name)

	restarted, err := NewEngine(h.ctx, testParams(), h.oracle, h.ledger, zap.NewNop().Sugar(), WithStore(h.store))
	require.NoError(t, err)
	assert.Equal(t, h.engine.Snapshot(), restarted.Snapshot())
}
