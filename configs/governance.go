package configs

type Governance struct {
	Token                       string `env:"GOVERNANCE_TOKEN" envDefault:"bnUSD"`
	TreasuryAddress             string `env:"GOVERNANCE_TREASURY_ADDRESS"`
	BlocksPerPeriod             uint64 `env:"GOVERNANCE_BLOCKS_PER_PERIOD" envDefault:"1296000"`
	QuorumBasisPoints           uint64 `env:"GOVERNANCE_QUORUM_BPS" envDefault:"6667"`
	SponsorBondBasisPoints      uint64 `env:"GOVERNANCE_SPONSOR_BOND_BPS" envDefault:"1500"`
	SponsorRewardBasisPoints    uint64 `env:"GOVERNANCE_SPONSOR_REWARD_BPS" envDefault:"200"`
	RejectionPenaltyBasisPoints uint64 `env:"GOVERNANCE_REJECTION_PENALTY_BPS" envDefault:"0"`
	AllowMilestoneResubmission  bool   `env:"GOVERNANCE_ALLOW_MILESTONE_RESUBMISSION" envDefault:"true"`
}
