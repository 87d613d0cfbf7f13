package repositories

import (
	"github.com/go-pg/pg/v10"

	"contribution_governance_system/internal/db/models"
)

type milestoneRepository struct {
	repository
}

type MilestoneRepository interface {
	GetManyByProposal(proposalID int) ([]*models.Milestone, error)
}

func NewMilestoneRepository(db *pg.DB) MilestoneRepository {
	return &milestoneRepository{
		repository: repository{
			db: db,
		},
	}
}

func (r *milestoneRepository) GetManyByProposal(proposalID int) ([]*models.Milestone, error) {
	milestones := make([]*models.Milestone, 0)

	err := r.db.Model(&milestones).
		Where("proposal_id = ?", proposalID).
		OrderExpr("milestone_id ASC").
		Select()

	return milestones, err
}
