package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"contribution_governance_system/internal/governance"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// writeGovernanceError maps a governance error to the closest HTTP status.
// Anything unrecognized is logged and reported as an internal error.
func (s *Server) writeGovernanceError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.logger.Errorw("failed to handle request", "path", r.URL.Path, "error", err)
		writeError(w, status, "internal error")
		return
	}
	writeError(w, status, err.Error())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, governance.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, governance.ErrNotEligible),
		errors.Is(err, governance.ErrNotEligibleVoter),
		errors.Is(err, governance.ErrNotSponsor),
		errors.Is(err, governance.ErrNotContributor):
		return http.StatusForbidden
	case errors.Is(err, governance.ErrAlreadyRegistered),
		errors.Is(err, governance.ErrNotRegistered),
		errors.Is(err, governance.ErrDuplicateProposal),
		errors.Is(err, governance.ErrDuplicateReport),
		errors.Is(err, governance.ErrDuplicateVote),
		errors.Is(err, governance.ErrWrongPeriod),
		errors.Is(err, governance.ErrWrongProposalStatus),
		errors.Is(err, governance.ErrUnresolvedReportExists),
		errors.Is(err, governance.ErrNothingToClaim):
		return http.StatusConflict
	case errors.Is(err, governance.ErrInvalidMilestones),
		errors.Is(err, governance.ErrInvalidBondAmount),
		errors.Is(err, governance.ErrInvalidBallot),
		errors.Is(err, governance.ErrInvalidToken),
		errors.Is(err, governance.ErrInvalidPayload),
		errors.Is(err, governance.ErrInvalidProposal),
		errors.Is(err, governance.ErrInvalidAddress):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func decodeJSON(r *http.Request, out interface{}) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(out)
}

func caller(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get(callerHeader))
}
