package repositories

import "github.com/go-pg/pg/v10"

type repository struct {
	db *pg.DB
}

//go:generate mockgen -destination=mocks/mock_repositories.go -package=mock_repositories . ProposalRepository,MilestoneRepository,PeriodRepository,BalanceRepository
