package governance

import (
	"context"
	"encoding/json"
	"fmt"

	"contribution_governance_system/internal/db/models"
)

const (
	methodSponsorVote = "sponsorVote"
	sponsorAccept     = "_accept"
)

type tokenPayload struct {
	Method string          `json:"method"`
	Params json.RawMessage `json:"params"`
}

type sponsorVoteParams struct {
	ProposalHash string `json:"ipfs_hash"`
	Vote         string `json:"vote"`
	Reason       string `json:"vote_reason"`
}

// OnTokenReceived handles a ledger transfer into the treasury. The payload
// names the instruction the transfer carries; the only supported one is a
// sponsor accepting a proposal with its bond.
func (e *Engine) OnTokenReceived(ctx context.Context, token, from string, amount models.Amount, payload []byte) error {
	if token != e.params.Token {
		return fmt.Errorf("%w: %s", ErrInvalidToken, token)
	}

	var instruction tokenPayload
	if err := json.Unmarshal(payload, &instruction); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	switch instruction.Method {
	case methodSponsorVote:
		var params sponsorVoteParams
		if err := json.Unmarshal(instruction.Params, &params); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidPayload, err)
		}
		if params.Vote != sponsorAccept {
			return fmt.Errorf("%w: unsupported sponsor vote %q", ErrInvalidPayload, params.Vote)
		}
		return e.RecordSponsorDeposit(ctx, params.ProposalHash, from, amount, params.Reason)
	default:
		return fmt.Errorf("%w: unknown method %q", ErrInvalidPayload, instruction.Method)
	}
}

// SponsorVotePayload builds the payload a sponsor attaches to its bond transfer.
func SponsorVotePayload(proposalHash, reason string) []byte {
	params, _ := json.Marshal(sponsorVoteParams{ProposalHash: proposalHash, Vote: sponsorAccept, Reason: reason})
	payload, _ := json.Marshal(tokenPayload{Method: methodSponsorVote, Params: params})
	return payload
}
