package repositories

import (
	"github.com/go-pg/pg/v10"

	"contribution_governance_system/internal/db/models"
)

type periodRepository struct {
	repository
}

type PeriodRepository interface {
	GetCurrent() (*models.Period, error)
}

func NewPeriodRepository(db *pg.DB) PeriodRepository {
	return &periodRepository{
		repository: repository{
			db: db,
		},
	}
}

func (r *periodRepository) GetCurrent() (*models.Period, error) {
	period := &models.Period{}

	err := r.db.Model(period).
		Where("id = ?", models.PeriodRowID).
		Select()

	return period, err
}
