package repositories

import (
	"errors"

	"github.com/go-pg/pg/v10"

	"contribution_governance_system/internal/db/models"
)

type balanceRepository struct {
	repository
}

type BalanceRepository interface {
	GetOneByAddress(address string) (*models.Balance, error)
}

func NewBalanceRepository(db *pg.DB) BalanceRepository {
	return &balanceRepository{
		repository: repository{
			db: db,
		},
	}
}

// GetOneByAddress returns an empty balance for an address that was never credited.
func (r *balanceRepository) GetOneByAddress(address string) (*models.Balance, error) {
	balance := &models.Balance{}

	err := r.db.Model(balance).
		Where("address = ?", address).
		Select()
	if errors.Is(err, pg.ErrNoRows) {
		return &models.Balance{Address: address}, nil
	}

	return balance, err
}
