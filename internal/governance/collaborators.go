package governance

import (
	"context"

	"contribution_governance_system/internal/db/models"
)

// ValidatorOracle is the read-only source of truth for validator eligibility,
// voting weight and penalties.
type ValidatorOracle interface {
	IsEligible(ctx context.Context, address string) (bool, error)
	VotingWeight(ctx context.Context, address string) (models.Amount, error)
	HasPenalty(ctx context.Context, address string) (bool, error)
}

// Ledger moves value held by the treasury.
type Ledger interface {
	Transfer(ctx context.Context, to string, amount models.Amount, payload []byte) error
	BalanceOf(ctx context.Context, address string) (models.Amount, error)
}

// Store persists governance state. Save receives only the rows the
// operation created or modified, plus the period and treasury rows.
type Store interface {
	Load(ctx context.Context) (models.Snapshot, error)
	Save(ctx context.Context, snapshot models.Snapshot) error
}
