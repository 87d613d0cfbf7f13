package main

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"contribution_governance_system/internal/governance"
)

type fakeAdvancer struct {
	blocks []uint64
	err    error
}

func (a *fakeAdvancer) AdvancePeriod(ctx context.Context, currentBlock uint64, force bool) ([]governance.Event, error) {
	a.blocks = append(a.blocks, currentBlock)
	return nil, a.err
}

type fakeHeights struct {
	height uint64
	err    error
}

func (h fakeHeights) BlockHeight(ctx context.Context) (uint64, error) {
	return h.height, h.err
}

func TestAdvancePeriod_UsesLedgerHeight(t *testing.T) {
	engine := &fakeAdvancer{}

	advancePeriod(context.Background(), engine, fakeHeights{height: 1296000}, zap.NewNop().Sugar())

	assert.Equal(t, []uint64{1296000}, engine.blocks)
}

func TestAdvancePeriod_SkipsWithoutHeight(t *testing.T) {
	engine := &fakeAdvancer{}

	advancePeriod(context.Background(), engine, fakeHeights{err: errors.New("ledger unavailable")}, zap.NewNop().Sugar())

	assert.Empty(t, engine.blocks)
}

func TestAdvancePeriod_EngineErrorIsNotFatal(t *testing.T) {
	engine := &fakeAdvancer{err: errors.New("store unavailable")}

	advancePeriod(context.Background(), engine, fakeHeights{height: 10}, zap.NewNop().Sugar())

	assert.Equal(t, []uint64{10}, engine.blocks)
}
