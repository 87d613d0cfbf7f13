package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-pg/pg/v10"

	"contribution_governance_system/internal/db/models"
)

type stateRepository struct {
	repository
}

// StateRepository persists the governance state. Save upserts the rows it
// is given in one transaction so a reader never sees a partial commit;
// callers pass only the rows an operation changed.
type StateRepository interface {
	Load(ctx context.Context) (models.Snapshot, error)
	Save(ctx context.Context, snapshot models.Snapshot) error
}

func NewStateRepository(db *pg.DB) StateRepository {
	return &stateRepository{
		repository: repository{
			db: db,
		},
	}
}

func (r *stateRepository) Load(ctx context.Context) (models.Snapshot, error) {
	var snapshot models.Snapshot

	err := r.db.ModelContext(ctx, &snapshot.Period).
		Where("id = ?", models.PeriodRowID).
		Select()
	if errors.Is(err, pg.ErrNoRows) {
		return models.Snapshot{}, nil
	}
	if err != nil {
		return models.Snapshot{}, fmt.Errorf("failed to load period: %w", err)
	}

	err = r.db.ModelContext(ctx, &snapshot.Treasury).
		Where("id = ?", models.TreasuryRowID).
		Select()
	if err != nil && !errors.Is(err, pg.ErrNoRows) {
		return models.Snapshot{}, fmt.Errorf("failed to load treasury: %w", err)
	}
	snapshot.Treasury.ID = models.TreasuryRowID

	tables := []struct {
		name  string
		model interface{}
	}{
		{"validators", &snapshot.Validators},
		{"proposals", &snapshot.Proposals},
		{"milestones", &snapshot.Milestones},
		{"progress reports", &snapshot.Reports},
		{"votes", &snapshot.Votes},
		{"milestone votes", &snapshot.MilestoneVotes},
		{"priority votes", &snapshot.PriorityVotes},
		{"tally windows", &snapshot.Windows},
		{"installments", &snapshot.Installments},
		{"balances", &snapshot.Balances},
	}

	for _, table := range tables {
		if err := r.db.ModelContext(ctx, table.model).OrderExpr("id ASC").Select(); err != nil {
			return models.Snapshot{}, fmt.Errorf("failed to load %s: %w", table.name, err)
		}
	}

	return snapshot, nil
}

func (r *stateRepository) Save(ctx context.Context, snapshot models.Snapshot) error {
	return r.db.RunInTransaction(ctx, func(tx *pg.Tx) error {
		if err := upsert(ctx, tx, &snapshot.Period); err != nil {
			return fmt.Errorf("failed to save period: %w", err)
		}
		if err := upsert(ctx, tx, &snapshot.Treasury); err != nil {
			return fmt.Errorf("failed to save treasury: %w", err)
		}

		tables := []struct {
			name  string
			rows  int
			model interface{}
		}{
			{"validators", len(snapshot.Validators), &snapshot.Validators},
			{"proposals", len(snapshot.Proposals), &snapshot.Proposals},
			{"milestones", len(snapshot.Milestones), &snapshot.Milestones},
			{"progress reports", len(snapshot.Reports), &snapshot.Reports},
			{"votes", len(snapshot.Votes), &snapshot.Votes},
			{"milestone votes", len(snapshot.MilestoneVotes), &snapshot.MilestoneVotes},
			{"priority votes", len(snapshot.PriorityVotes), &snapshot.PriorityVotes},
			{"tally windows", len(snapshot.Windows), &snapshot.Windows},
			{"installments", len(snapshot.Installments), &snapshot.Installments},
			{"balances", len(snapshot.Balances), &snapshot.Balances},
		}

		for _, table := range tables {
			if table.rows == 0 {
				continue
			}
			if err := upsert(ctx, tx, table.model); err != nil {
				return fmt.Errorf("failed to save %s: %w", table.name, err)
			}
		}

		return nil
	})
}

// upsert inserts model rows, overwriting existing rows with the same id.
func upsert(ctx context.Context, tx *pg.Tx, model interface{}) error {
	_, err := tx.ModelContext(ctx, model).
		OnConflict("(id) DO UPDATE").
		Insert()
	return err
}
