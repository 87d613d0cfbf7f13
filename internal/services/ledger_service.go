package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"contribution_governance_system/internal/db/models"
)

type transferRequest struct {
	Token   string        `json:"token"`
	To      string        `json:"to"`
	Amount  models.Amount `json:"amount"`
	Payload []byte        `json:"data,omitempty"`
}

type mintRequest struct {
	Token  string        `json:"token"`
	To     string        `json:"to"`
	Amount models.Amount `json:"amount"`
}

type balanceResponse struct {
	Balance models.Amount `json:"balance"`
}

type blockResponse struct {
	Height uint64 `json:"height"`
}

type ledgerService struct {
	service
	token string
}

// LedgerService talks to the token ledger holding the treasury funds.
type LedgerService interface {
	Transfer(ctx context.Context, to string, amount models.Amount, payload []byte) error
	MintTo(ctx context.Context, to string, amount models.Amount) error
	BalanceOf(ctx context.Context, address string) (models.Amount, error)
	BlockHeight(ctx context.Context) (uint64, error)
}

func NewLedgerService(baseURL, token string, timeout time.Duration) LedgerService {
	return &ledgerService{
		service: newService(baseURL, timeout),
		token:   token,
	}
}

func (s *ledgerService) Transfer(ctx context.Context, to string, amount models.Amount, payload []byte) error {
	request := transferRequest{
		Token:   s.token,
		To:      to,
		Amount:  amount,
		Payload: payload,
	}

	if err := s.do(ctx, http.MethodPost, "transfers", request, nil); err != nil {
		return fmt.Errorf("failed to transfer %s %s to %s: %w", amount, s.token, to, err)
	}

	return nil
}

func (s *ledgerService) MintTo(ctx context.Context, to string, amount models.Amount) error {
	request := mintRequest{
		Token:  s.token,
		To:     to,
		Amount: amount,
	}

	if err := s.do(ctx, http.MethodPost, "mints", request, nil); err != nil {
		return fmt.Errorf("failed to mint %s %s to %s: %w", amount, s.token, to, err)
	}

	return nil
}

func (s *ledgerService) BalanceOf(ctx context.Context, address string) (models.Amount, error) {
	var response balanceResponse

	path := fmt.Sprintf("balances/%s?token=%s", url.PathEscape(address), url.QueryEscape(s.token))
	if err := s.do(ctx, http.MethodGet, path, nil, &response); err != nil {
		return models.Amount{}, fmt.Errorf("failed to get balance of %s: %w", address, err)
	}

	return response.Balance, nil
}

func (s *ledgerService) BlockHeight(ctx context.Context) (uint64, error) {
	var response blockResponse

	if err := s.do(ctx, http.MethodGet, "blocks/latest", nil, &response); err != nil {
		return 0, fmt.Errorf("failed to get block height: %w", err)
	}

	return response.Height, nil
}
