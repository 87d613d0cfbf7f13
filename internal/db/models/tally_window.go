package models

type WindowKind string

const (
	WindowKindProposal WindowKind = "proposal"
	WindowKindReport   WindowKind = "report"
)

type WindowVoter struct {
	Address string `json:"address"`
	Weight  Amount `json:"weight"`
}

type MilestoneResult struct {
	MilestoneID int  `json:"milestone_id"`
	Approved    bool `json:"approved"`
}

// TallyWindow holds the voter snapshot taken when a Voting period opens
// and the outcome recorded when it closes.
type TallyWindow struct {
	ID               int               `json:"id" pg:",pk"`
	Kind             WindowKind        `json:"kind" pg:",notnull"`
	SubjectID        int               `json:"subject_id" pg:",notnull"`
	OpenedAtPeriod   uint64            `json:"opened_at_period" pg:",use_zero"`
	ClosedAtPeriod   uint64            `json:"closed_at_period" pg:",use_zero"`
	Closed           bool              `json:"closed" pg:",use_zero"`
	Voters           []WindowVoter     `json:"voters"`
	Approved         bool              `json:"approved" pg:",use_zero"`
	MilestoneResults []MilestoneResult `json:"milestone_results"`
}

func (w TallyWindow) WeightOf(address string) (Amount, bool) {
	for _, voter := range w.Voters {
		if voter.Address == address {
			return voter.Weight, true
		}
	}
	return Amount{}, false
}

func (w TallyWindow) EligibleWeight() Amount {
	var total Amount
	for _, voter := range w.Voters {
		total = total.Add(voter.Weight)
	}
	return total
}

func (w TallyWindow) Clone() TallyWindow {
	w.Voters = append([]WindowVoter(nil), w.Voters...)
	w.MilestoneResults = append([]MilestoneResult(nil), w.MilestoneResults...)
	return w
}
