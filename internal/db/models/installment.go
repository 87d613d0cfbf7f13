package models

type Beneficiary string

func (b Beneficiary) String() string {
	return string(b)
}

const (
	BeneficiaryContributor Beneficiary = "contributor"
	BeneficiarySponsor     Beneficiary = "sponsor"
)

type Installment struct {
	ID           int         `json:"-" pg:",pk"`
	ProposalID   int         `json:"proposal_id" pg:",notnull"`
	MilestoneID  int         `json:"milestone_id" pg:",use_zero"`
	Beneficiary  Beneficiary `json:"beneficiary" pg:",notnull"`
	Address      string      `json:"address" pg:",notnull"`
	Amount       Amount      `json:"installment_amount" pg:"type:numeric,notnull,use_zero"`
	Paid         bool        `json:"paid" pg:",use_zero"`
	PaidAtPeriod uint64      `json:"paid_at_period" pg:",use_zero"`
}

type Balance struct {
	ID           int    `json:"-" pg:",pk"`
	Address      string `json:"address" pg:",notnull,unique"`
	Claimable    Amount `json:"claimable" pg:"type:numeric,notnull,use_zero"`
	TotalClaimed Amount `json:"total_claimed" pg:"type:numeric,notnull,use_zero"`
}

const TreasuryRowID = 1

type TreasuryAccount struct {
	tableName struct{} `pg:"treasury_accounts"`

	ID            int    `json:"-" pg:",pk"`
	Retained      Amount `json:"retained" pg:"type:numeric,notnull,use_zero"`
	TotalReleased Amount `json:"total_released" pg:"type:numeric,notnull,use_zero"`
	TotalClaimed  Amount `json:"total_claimed" pg:"type:numeric,notnull,use_zero"`
}
