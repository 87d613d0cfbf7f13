package repositories

import (
	"github.com/go-pg/pg/v10"

	"contribution_governance_system/internal/db/models"
)

type proposalRepository struct {
	repository
}

type ProposalRepository interface {
	GetOneByHash(hash string) (*models.Proposal, error)
	GetManyByStatus(status ...models.ProposalStatus) ([]*models.Proposal, error)
	GetManyByContributor(contributorAddress string) ([]*models.Proposal, error)
}

func NewProposalRepository(db *pg.DB) ProposalRepository {
	return &proposalRepository{
		repository: repository{
			db: db,
		},
	}
}

func (r *proposalRepository) GetOneByHash(hash string) (*models.Proposal, error) {
	proposal := &models.Proposal{}

	err := r.db.Model(proposal).
		Where("hash = ?", hash).
		Select()

	return proposal, err
}

func (r *proposalRepository) GetManyByStatus(status ...models.ProposalStatus) ([]*models.Proposal, error) {
	proposals := make([]*models.Proposal, 0)

	err := r.db.Model(&proposals).
		WhereGroup(func(q *pg.Query) (*pg.Query, error) {
			for _, s := range status {
				q = q.WhereOr("status = ?", s)
			}
			return q, nil
		}).
		OrderExpr("id ASC").
		Select()

	return proposals, err
}

func (r *proposalRepository) GetManyByContributor(contributorAddress string) ([]*models.Proposal, error) {
	proposals := make([]*models.Proposal, 0)

	err := r.db.Model(&proposals).
		Where("contributor_address = ?", contributorAddress).
		OrderExpr("id ASC").
		Select()

	return proposals, err
}
