package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"contribution_governance_system/internal/db/models"
)

func newValidatorServer(t *testing.T) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/validators/hx1":
			_, _ = w.Write([]byte(`{"address":"hx1","is_prep":true,"voting_weight":"100000000000000000000","pay_penalty":false}`))
		case "/validators/hx2":
			_, _ = w.Write([]byte(`{"address":"hx2","is_prep":true,"voting_weight":"5","pay_penalty":true}`))
		case "/validators/hx-broken":
			w.WriteHeader(http.StatusInternalServerError)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)

	return server
}

func TestValidatorService_Eligible(t *testing.T) {
	validators := NewValidatorService(newValidatorServer(t).URL, time.Second)
	ctx := context.Background()

	eligible, err := validators.IsEligible(ctx, "hx1")
	require.NoError(t, err)
	assert.True(t, eligible)

	weight, err := validators.VotingWeight(ctx, "hx1")
	require.NoError(t, err)
	assert.Equal(t, models.MustParseAmount("100000000000000000000"), weight)

	penalty, err := validators.HasPenalty(ctx, "hx2")
	require.NoError(t, err)
	assert.True(t, penalty)
}

func TestValidatorService_UnknownAddressIsIneligible(t *testing.T) {
	validators := NewValidatorService(newValidatorServer(t).URL, time.Second)

	eligible, err := validators.IsEligible(context.Background(), "hx-unknown")
	require.NoError(t, err)
	assert.False(t, eligible)

	weight, err := validators.VotingWeight(context.Background(), "hx-unknown")
	require.NoError(t, err)
	assert.True(t, weight.IsZero())
}

func TestValidatorService_ServerError(t *testing.T) {
	validators := NewValidatorService(newValidatorServer(t).URL, time.Second)

	_, err := validators.IsEligible(context.Background(), "hx-broken")

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusInternalServerError, statusErr.StatusCode)
}
