package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"contribution_governance_system/internal/db/models"
)

type validatorResponse struct {
	Address      string        `json:"address"`
	IsEligible   bool          `json:"is_prep"`
	VotingWeight models.Amount `json:"voting_weight"`
	HasPenalty   bool          `json:"pay_penalty"`
}

type validatorService struct {
	service
}

// ValidatorService reads validator eligibility, weight and penalties from the
// network's validator registry. Unknown addresses are reported as ineligible.
type ValidatorService interface {
	IsEligible(ctx context.Context, address string) (bool, error)
	VotingWeight(ctx context.Context, address string) (models.Amount, error)
	HasPenalty(ctx context.Context, address string) (bool, error)
}

func NewValidatorService(baseURL string, timeout time.Duration) ValidatorService {
	return &validatorService{
		service: newService(baseURL, timeout),
	}
}

func (s *validatorService) IsEligible(ctx context.Context, address string) (bool, error) {
	validator, err := s.get(ctx, address)
	if err != nil {
		return false, err
	}
	return validator.IsEligible, nil
}

func (s *validatorService) VotingWeight(ctx context.Context, address string) (models.Amount, error) {
	validator, err := s.get(ctx, address)
	if err != nil {
		return models.Amount{}, err
	}
	return validator.VotingWeight, nil
}

func (s *validatorService) HasPenalty(ctx context.Context, address string) (bool, error) {
	validator, err := s.get(ctx, address)
	if err != nil {
		return false, err
	}
	return validator.HasPenalty, nil
}

func (s *validatorService) get(ctx context.Context, address string) (validatorResponse, error) {
	var response validatorResponse

	err := s.do(ctx, http.MethodGet, "validators/"+url.PathEscape(address), nil, &response)

	var statusErr *StatusError
	if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound {
		return validatorResponse{Address: address}, nil
	}
	if err != nil {
		return validatorResponse{}, fmt.Errorf("failed to get validator %s: %w", address, err)
	}

	return response, nil
}
