package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"contribution_governance_system/configs"
	"contribution_governance_system/internal/db/models"
	"contribution_governance_system/internal/governance"
)

const (
	testToken         = "bnUSD"
	testOperatorToken = "secret"
	testContributor   = "hx-contributor"
)

var hundredTokens = models.MustParseAmount("100000000000000000000")

type staticOracle struct {
	weights map[string]models.Amount
}

func (o *staticOracle) IsEligible(ctx context.Context, address string) (bool, error) {
	_, ok := o.weights[address]
	return ok, nil
}

func (o *staticOracle) VotingWeight(ctx context.Context, address string) (models.Amount, error) {
	return o.weights[address], nil
}

func (o *staticOracle) HasPenalty(ctx context.Context, address string) (bool, error) {
	return false, nil
}

type recordingLedger struct {
	mu        sync.Mutex
	transfers map[string]models.Amount
}

func (l *recordingLedger) Transfer(ctx context.Context, to string, amount models.Amount, payload []byte) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.transfers[to] = l.transfers[to].Add(amount)
	return nil
}

func (l *recordingLedger) BalanceOf(ctx context.Context, address string) (models.Amount, error) {
	return models.Amount{}, nil
}

type testServer struct {
	t      *testing.T
	server *Server
	ledger *recordingLedger
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	oracle := &staticOracle{weights: map[string]models.Amount{
		"hx1": hundredTokens,
		"hx2": hundredTokens,
		"hx3": hundredTokens,
	}}
	ledger := &recordingLedger{transfers: map[string]models.Amount{}}
	registry := prometheus.NewRegistry()

	engine, err := governance.NewEngine(context.Background(), governance.Params{
		Token:                      testToken,
		BlocksPerPeriod:            100,
		QuorumBasisPoints:          6667,
		SponsorBondBasisPoints:     1500,
		SponsorRewardBasisPoints:   200,
		AllowMilestoneResubmission: true,
	}, oracle, ledger, zap.NewNop().Sugar(), governance.WithMetrics(registry))
	require.NoError(t, err)

	server := NewServer(configs.API{OperatorToken: testOperatorToken}, engine, registry, zap.NewNop().Sugar())

	return &testServer{t: t, server: server, ledger: ledger}
}

func (s *testServer) do(method, path, callerAddress string, body interface{}) *httptest.ResponseRecorder {
	s.t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	request := httptest.NewRequest(method, path, reader)
	if callerAddress != "" {
		request.Header.Set(callerHeader, callerAddress)
	}
	if strings.Contains(path, "/operator/") {
		request.Header.Set(authorizationHeader, "Bearer "+testOperatorToken)
	}

	recorder := httptest.NewRecorder()
	s.server.Handler().ServeHTTP(recorder, request)
	return recorder
}

func (s *testServer) decode(recorder *httptest.ResponseRecorder, out interface{}) {
	s.t.Helper()
	require.NoError(s.t, json.Unmarshal(recorder.Body.Bytes(), out))
}

func (s *testServer) advance(block uint64) {
	s.t.Helper()
	response := s.do(http.MethodPost, "/api/v1/operator/period/advance", "", advancePeriodRequest{Block: block})
	require.Equal(s.t, http.StatusOK, response.Code, response.Body.String())
}

func submission(hash string) governance.ProposalSubmission {
	return governance.ProposalSubmission{
		Hash:            hash,
		Title:           "Block explorer",
		TotalBudget:     hundredTokens,
		Token:           testToken,
		SponsorAddress:  "hx1",
		DurationPeriods: 1,
		Milestones: []governance.MilestoneSpec{
			{ID: 1, Title: "Explorer", BudgetShare: hundredTokens, CompletionPeriod: 1},
		},
	}
}

func TestServer_ProposalLifecycle(t *testing.T) {
	s := newTestServer(t)

	for _, validator := range []string{"hx1", "hx2", "hx3"} {
		response := s.do(http.MethodPost, "/api/v1/validators/register", validator, nil)
		require.Equal(t, http.StatusNoContent, response.Code, response.Body.String())
	}

	response := s.do(http.MethodPost, "/api/v1/proposals", testContributor, submission("bafy-explorer"))
	require.Equal(t, http.StatusCreated, response.Code, response.Body.String())

	response = s.do(http.MethodPost, "/api/v1/operator/ledger/token-received", "", tokenReceivedRequest{
		Token:  testToken,
		From:   "hx1",
		Amount: models.MustParseAmount("15000000000000000000"),
		Data:   governance.SponsorVotePayload("bafy-explorer", "useful tooling"),
	})
	require.Equal(t, http.StatusNoContent, response.Code, response.Body.String())

	s.advance(100)

	for _, validator := range []string{"hx1", "hx2", "hx3"} {
		response = s.do(http.MethodPost, "/api/v1/proposals/bafy-explorer/votes", validator, voteRequest{Vote: models.VoteChoiceApprove})
		require.Equal(t, http.StatusNoContent, response.Code, response.Body.String())
	}

	var result governance.VoteResult
	s.decode(s.do(http.MethodGet, "/api/v1/proposals/bafy-explorer/votes", "", nil), &result)
	assert.Equal(t, 3, result.ApproveVoters)
	assert.False(t, result.Closed)

	s.advance(200)

	var detail map[string]interface{}
	s.decode(s.do(http.MethodGet, "/api/v1/proposals/bafy-explorer", "", nil), &detail)
	assert.Equal(t, "active", detail["status"])
	assert.Equal(t, testContributor, detail["contributor_address"])

	var active []string
	s.decode(s.do(http.MethodGet, "/api/v1/proposals?status=active", "", nil), &active)
	assert.Equal(t, []string{"bafy-explorer"}, active)

	var claim claimResponse
	response = s.do(http.MethodPost, "/api/v1/funds/claim", testContributor, nil)
	require.Equal(t, http.StatusOK, response.Code, response.Body.String())
	s.decode(response, &claim)
	assert.Equal(t, hundredTokens, claim.Amount)
	assert.Equal(t, hundredTokens, s.ledger.transfers[testContributor])

	response = s.do(http.MethodPost, "/api/v1/funds/claim", testContributor, nil)
	assert.Equal(t, http.StatusConflict, response.Code)
}

func TestServer_ErrorMapping(t *testing.T) {
	s := newTestServer(t)

	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, "/api/v1/proposals/bafy-missing", "", nil).Code)
	assert.Equal(t, http.StatusForbidden, s.do(http.MethodPost, "/api/v1/validators/register", "hx-stranger", nil).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodGet, "/api/v1/proposals?status=archived", "", nil).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodGet, "/api/v1/funds/hx1?role=validator", "", nil).Code)

	require.Equal(t, http.StatusNoContent, s.do(http.MethodPost, "/api/v1/validators/register", "hx1", nil).Code)
	assert.Equal(t, http.StatusConflict, s.do(http.MethodPost, "/api/v1/validators/register", "hx1", nil).Code)

	response := s.do(http.MethodPost, "/api/v1/proposals", testContributor, map[string]string{"unexpected": "field"})
	assert.Equal(t, http.StatusBadRequest, response.Code)
}

func TestServer_OperatorRoutesRequireToken(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name          string
		authorization string
		expected      int
	}{
		{name: "missing", authorization: "", expected: http.StatusUnauthorized},
		{name: "wrong", authorization: "Bearer wrong", expected: http.StatusUnauthorized},
		{name: "truncated", authorization: "Bearer " + testOperatorToken[:len(testOperatorToken)-1], expected: http.StatusUnauthorized},
		{name: "without scheme", authorization: testOperatorToken, expected: http.StatusUnauthorized},
		{name: "valid", authorization: "Bearer " + testOperatorToken, expected: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			request := httptest.NewRequest(http.MethodPost, "/api/v1/operator/period/advance", strings.NewReader(`{"block":1}`))
			if tt.authorization != "" {
				request.Header.Set(authorizationHeader, tt.authorization)
			}
			recorder := httptest.NewRecorder()
			s.server.Handler().ServeHTTP(recorder, request)

			assert.Equal(t, tt.expected, recorder.Code, recorder.Body.String())
		})
	}

	var period governance.PeriodStatus
	s.decode(s.do(http.MethodGet, "/api/v1/period", "", nil), &period)
	assert.Equal(t, models.PeriodNameApplication, period.Name)
	assert.Equal(t, uint64(1), period.SequenceNumber)
}

func TestServer_MetricsAndHealthcheck(t *testing.T) {
	s := newTestServer(t)
	s.advance(100)

	health := s.do(http.MethodGet, "/healthcheck", "", nil)
	assert.Equal(t, http.StatusOK, health.Code)

	metrics := s.do(http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, metrics.Code)
	assert.Contains(t, metrics.Body.String(), "governance_period_sequence 2")
}
