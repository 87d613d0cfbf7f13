package governance

import (
	"fmt"

	"contribution_governance_system/configs"
)

const maxBasisPoints = 10000

type Params struct {
	Token                       string
	TreasuryAddress             string
	BlocksPerPeriod             uint64
	QuorumBasisPoints           uint64
	SponsorBondBasisPoints      uint64
	SponsorRewardBasisPoints    uint64
	RejectionPenaltyBasisPoints uint64
	AllowMilestoneResubmission  bool
}

func NewParams(config configs.Governance) Params {
	return Params{
		Token:                       config.Token,
		TreasuryAddress:             config.TreasuryAddress,
		BlocksPerPeriod:             config.BlocksPerPeriod,
		QuorumBasisPoints:           config.QuorumBasisPoints,
		SponsorBondBasisPoints:      config.SponsorBondBasisPoints,
		SponsorRewardBasisPoints:    config.SponsorRewardBasisPoints,
		RejectionPenaltyBasisPoints: config.RejectionPenaltyBasisPoints,
		AllowMilestoneResubmission:  config.AllowMilestoneResubmission,
	}
}

func (p Params) Validate() error {
	switch {
	case p.Token == "":
		return fmt.Errorf("token must be set")
	case p.QuorumBasisPoints > maxBasisPoints:
		return fmt.Errorf("quorum must not exceed %d basis points", maxBasisPoints)
	case p.SponsorBondBasisPoints > maxBasisPoints:
		return fmt.Errorf("sponsor bond must not exceed %d basis points", maxBasisPoints)
	case p.SponsorRewardBasisPoints > maxBasisPoints:
		return fmt.Errorf("sponsor reward must not exceed %d basis points", maxBasisPoints)
	case p.RejectionPenaltyBasisPoints > maxBasisPoints:
		return fmt.Errorf("rejection penalty must not exceed %d basis points", maxBasisPoints)
	}
	return nil
}
