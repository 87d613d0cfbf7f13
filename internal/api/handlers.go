package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"contribution_governance_system/internal/db/models"
	"contribution_governance_system/internal/governance"
)

type advancePeriodRequest struct {
	Block uint64 `json:"block"`
	Force bool   `json:"force"`
}

type advancePeriodResponse struct {
	Period governance.PeriodStatus `json:"period"`
	Events []governance.Event      `json:"events"`
}

type tokenReceivedRequest struct {
	Token  string        `json:"token"`
	From   string        `json:"from"`
	Amount models.Amount `json:"amount"`
	Data   []byte        `json:"data"`
}

type voteRequest struct {
	Vote     models.VoteChoice `json:"vote"`
	Reason   string            `json:"vote_reason"`
	IsChange bool              `json:"vote_change"`
}

type milestoneVoteRequest struct {
	Votes    []governance.MilestoneBallot `json:"votes"`
	Reason   string                       `json:"vote_reason"`
	IsChange bool                         `json:"vote_change"`
}

type priorityVoteRequest struct {
	Proposals []string `json:"proposals"`
}

type claimResponse struct {
	Address string        `json:"address"`
	Amount  models.Amount `json:"amount"`
}

func (s *Server) healthcheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) periodStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.governance.PeriodStatus())
}

func (s *Server) advancePeriod(w http.ResponseWriter, r *http.Request) {
	var request advancePeriodRequest
	if err := decodeJSON(r, &request); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	events, err := s.governance.AdvancePeriod(r.Context(), request.Block, request.Force)
	if err != nil {
		s.writeGovernanceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, advancePeriodResponse{
		Period: s.governance.PeriodStatus(),
		Events: events,
	})
}

func (s *Server) validators(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.governance.Validators())
}

func (s *Server) validatorStatus(w http.ResponseWriter, r *http.Request) {
	status, err := s.governance.ValidatorStatus(r.Context(), mux.Vars(r)["address"])
	if err != nil {
		s.writeGovernanceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	if err := s.governance.Register(r.Context(), caller(r)); err != nil {
		s.writeGovernanceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) unregister(w http.ResponseWriter, r *http.Request) {
	if err := s.governance.Unregister(r.Context(), caller(r)); err != nil {
		s.writeGovernanceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) proposalsByStatus(w http.ResponseWriter, r *http.Request) {
	status, ok := models.ParseProposalStatus(r.URL.Query().Get("status"))
	if !ok {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown status %q", r.URL.Query().Get("status")))
		return
	}
	writeJSON(w, http.StatusOK, s.governance.ProposalHashesByStatus(status))
}

func (s *Server) submitProposal(w http.ResponseWriter, r *http.Request) {
	var submission governance.ProposalSubmission
	if err := decodeJSON(r, &submission); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	submission.ContributorAddress = caller(r)

	if err := s.governance.SubmitProposal(r.Context(), submission); err != nil {
		s.writeGovernanceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (s *Server) proposalDetail(w http.ResponseWriter, r *http.Request) {
	detail, err := s.governance.ProposalDetail(mux.Vars(r)["hash"])
	if err != nil {
		s.writeGovernanceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, detail.KV())
}

func (s *Server) activeProposals(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.governance.ActiveProposals(mux.Vars(r)["address"]))
}

func (s *Server) voteResult(w http.ResponseWriter, r *http.Request) {
	result, err := s.governance.VoteResult(mux.Vars(r)["hash"])
	if err != nil {
		s.writeGovernanceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) voteProposal(w http.ResponseWriter, r *http.Request) {
	var request voteRequest
	if err := decodeJSON(r, &request); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	err := s.governance.CastVote(r.Context(), mux.Vars(r)["hash"], caller(r), request.Vote, request.Reason, request.IsChange)
	if err != nil {
		s.writeGovernanceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) milestoneStatus(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])

	milestone, err := s.governance.MilestoneStatus(mux.Vars(r)["hash"], id)
	if err != nil {
		s.writeGovernanceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, milestone)
}

func (s *Server) priorityRanking(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.governance.PriorityRanking())
}

func (s *Server) votePriority(w http.ResponseWriter, r *http.Request) {
	var request priorityVoteRequest
	if err := decodeJSON(r, &request); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.governance.VotePriority(r.Context(), caller(r), request.Proposals); err != nil {
		s.writeGovernanceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) submitProgressReport(w http.ResponseWriter, r *http.Request) {
	var submission governance.ReportSubmission
	if err := decodeJSON(r, &submission); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.governance.SubmitProgressReport(r.Context(), caller(r), submission); err != nil {
		s.writeGovernanceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (s *Server) reportDetail(w http.ResponseWriter, r *http.Request) {
	detail, err := s.governance.ReportDetail(mux.Vars(r)["hash"])
	if err != nil {
		s.writeGovernanceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, detail.KV())
}

func (s *Server) reportVoteResult(w http.ResponseWriter, r *http.Request) {
	results, err := s.governance.ReportVoteResult(mux.Vars(r)["hash"])
	if err != nil {
		s.writeGovernanceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, results)
}

func (s *Server) voteProgressReport(w http.ResponseWriter, r *http.Request) {
	var request milestoneVoteRequest
	if err := decodeJSON(r, &request); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	err := s.governance.CastMilestoneVote(r.Context(), mux.Vars(r)["hash"], caller(r), request.Votes, request.Reason, request.IsChange)
	if err != nil {
		s.writeGovernanceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) milestoneVoteResult(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])

	result, err := s.governance.MilestoneVoteResult(mux.Vars(r)["hash"], id)
	if err != nil {
		s.writeGovernanceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) tokenReceived(w http.ResponseWriter, r *http.Request) {
	var request tokenReceivedRequest
	if err := decodeJSON(r, &request); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.governance.OnTokenReceived(r.Context(), request.Token, request.From, request.Amount, request.Data); err != nil {
		s.writeGovernanceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) claimReward(w http.ResponseWriter, r *http.Request) {
	address := caller(r)

	amount, err := s.governance.ClaimReward(r.Context(), address)
	if err != nil {
		s.writeGovernanceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, claimResponse{Address: address, Amount: amount})
}

func (s *Server) projectedFund(w http.ResponseWriter, r *http.Request) {
	role := models.Beneficiary(r.URL.Query().Get("role"))
	switch role {
	case "":
		role = models.BeneficiaryContributor
	case models.BeneficiaryContributor, models.BeneficiarySponsor:
	default:
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown role %q", role))
		return
	}

	writeJSON(w, http.StatusOK, s.governance.ProjectedFund(mux.Vars(r)["address"], role))
}

func (s *Server) treasuryStatus(w http.ResponseWriter, r *http.Request) {
	status, err := s.governance.TreasuryStatus(r.Context())
	if err != nil {
		s.writeGovernanceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}
