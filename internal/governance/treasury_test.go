package governance

import (
	"context"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"contribution_governance_system/internal/db/models"
)

func TestReleaseInstallment_SecondReleaseIsNoop(t *testing.T) {
	h := newHarness(t, testParams())
	voters := h.registerValidators(3)
	h.submitSponsored("bafy-release")
	h.activate(voters, "bafy-release")

	events, err := h.engine.mutate(context.Background(), "test", func(tx *txn) error {
		proposal, _ := tx.proposalByHash("bafy-release")
		if err := tx.releaseInstallment(proposal.ID, 2); err != nil {
			return err
		}
		return tx.releaseInstallment(proposal.ID, 2)
	})
	require.NoError(t, err)

	assert.Equal(t, []EventType{EventInstallmentReleased, EventInstallmentReleased}, eventTypes(events))
	assert.Equal(t, tokens(70), h.claimable(testContributor))

	treasury, err := h.engine.TreasuryStatus(h.ctx)
	require.NoError(t, err)
	assert.Equal(t, models.MustParseAmount("70600000000000000000"), treasury.TotalReleased)
}

func TestReleaseInstallment_UnknownMilestone(t *testing.T) {
	h := newHarness(t, testParams())
	voters := h.registerValidators(3)
	h.submitSponsored("bafy-unknown")
	h.activate(voters, "bafy-unknown")

	_, err := h.engine.mutate(context.Background(), "test", func(tx *txn) error {
		proposal, _ := tx.proposalByHash("bafy-unknown")
		return tx.releaseInstallment(proposal.ID, 42)
	})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestClaimReward_TransferFailureRestoresBalance(t *testing.T) {
	h := newHarness(t, testParams())
	voters := h.registerValidators(3)
	h.submitSponsored("bafy-claim")
	h.activate(voters, "bafy-claim")

	h.ledger.err = errLedgerDown
	_, err := h.engine.ClaimReward(h.ctx, testContributor)
	assert.ErrorIs(t, err, errLedgerDown)

	assert.Equal(t, tokens(30), h.claimable(testContributor))

	restarted, err := NewEngine(h.ctx, testParams(), h.oracle, h.ledger, zap.NewNop().Sugar(), WithStore(h.store))
	require.NoError(t, err)
	assert.Equal(t, tokens(30), restarted.ProjectedFund(testContributor, models.BeneficiaryContributor).Withdrawable)

	h.ledger.err = nil
	paid, err := h.engine.ClaimReward(h.ctx, testContributor)
	require.NoError(t, err)
	assert.Equal(t, tokens(30), paid)
	assert.True(t, h.claimable(testContributor).IsZero())
}

func TestClaimReward_TransferRunsWithoutEngineLock(t *testing.T) {
	h := newHarness(t, testParams())
	voters := h.registerValidators(3)
	h.submitSponsored("bafy-unlocked")
	h.activate(voters, "bafy-unlocked")

	var duringTransfer models.Amount
	h.ledger.onTransfer = func() {
		duringTransfer = h.claimable(testContributor)
		_, _ = h.engine.ClaimReward(h.ctx, testContributor)
	}

	paid, err := h.engine.ClaimReward(h.ctx, testContributor)
	require.NoError(t, err)
	assert.Equal(t, tokens(30), paid)
	assert.True(t, duringTransfer.IsZero())
	assert.Equal(t, []transfer{{to: testContributor, amount: tokens(30)}}, h.ledger.transfers)
}

func TestClaimReward_FailedRestoreIsLoggedForReconciliation(t *testing.T) {
	h := newHarness(t, testParams())
	voters := h.registerValidators(3)
	h.submitSponsored("bafy-reconcile")
	h.activate(voters, "bafy-reconcile")

	core, logs := observer.New(zap.WarnLevel)
	engine, err := NewEngine(h.ctx, testParams(), h.oracle, h.ledger, zap.New(core).Sugar(), WithStore(h.store))
	require.NoError(t, err)

	h.ledger.err = errLedgerDown
	h.ledger.onTransfer = func() {
		h.store.err = assert.AnError
	}

	_, err = engine.ClaimReward(h.ctx, testContributor)
	assert.ErrorIs(t, err, errLedgerDown)

	restoreLogs := logs.FilterMessage("failed to restore unpaid reward")
	require.Equal(t, 1, restoreLogs.Len())
	entry := restoreLogs.All()[0]
	assert.Equal(t, zap.ErrorLevel, entry.Level)
	assert.Equal(t, testContributor, entry.ContextMap()["address"])
	assert.Equal(t, tokens(30).String(), entry.ContextMap()["amount"])
}

func TestClaimReward_NothingToClaim(t *testing.T) {
	h := newHarness(t, testParams())

	_, err := h.engine.ClaimReward(h.ctx, "hx-nobody")
	assert.ErrorIs(t, err, ErrNothingToClaim)
	assert.Empty(t, h.ledger.transfers)
}

func TestProjectedFund_SponsorRole(t *testing.T) {
	h := newHarness(t, testParams())
	voters := h.registerValidators(3)
	h.submitSponsored("bafy-projection")
	h.activate(voters, "bafy-projection")

	fund := h.engine.ProjectedFund(testSponsor, models.BeneficiarySponsor)
	require.Len(t, fund.Proposals, 1)

	projection := fund.Proposals[0]
	reward := models.MustParseAmount("300000000000000000")
	assert.Equal(t, 3, projection.InstallmentCount)
	assert.Equal(t, 1, projection.TimesPaid)
	assert.Equal(t, reward, projection.PaidToDate)
	assert.Equal(t, models.MustParseAmount("600000000000000000"), projection.Remaining)
	assert.Equal(t, reward, fund.Withdrawable)

	assert.Empty(t, h.engine.ProjectedFund(testSponsor, models.BeneficiaryContributor).Proposals)
	assert.Empty(t, h.engine.ProjectedFund(testContributor, models.BeneficiarySponsor).Proposals)
}

func TestProjectedFund_DoesNotMutate(t *testing.T) {
	h := newHarness(t, testParams())
	voters := h.registerValidators(3)
	h.submitSponsored("bafy-readonly")
	h.activate(voters, "bafy-readonly")

	before := h.engine.Snapshot()
	saves := h.store.saves

	h.engine.ProjectedFund(testContributor, models.BeneficiaryContributor)

	assert.Equal(t, before, h.engine.Snapshot())
	assert.Equal(t, saves, h.store.saves)
}

func TestMetrics_RecordCommitsAndFailures(t *testing.T) {
	registry := prometheus.NewRegistry()
	engine, err := NewEngine(context.Background(), testParams(), newFakeOracle(), &fakeLedger{}, zap.NewNop().Sugar(), WithMetrics(registry))
	require.NoError(t, err)

	_, err = engine.AdvancePeriod(context.Background(), 100, false)
	require.NoError(t, err)
	assert.ErrorIs(t, engine.Register(context.Background(), "hx-unknown"), ErrNotEligible)

	expected := `
# HELP governance_period_sequence sequence number of the current period
# TYPE governance_period_sequence gauge
governance_period_sequence 2
`
	assert.NoError(t, testutil.GatherAndCompare(registry, strings.NewReader(expected), "governance_period_sequence"))
	assert.Equal(t, 1, testutil.CollectAndCount(engine.metrics.operationFailures))
}
