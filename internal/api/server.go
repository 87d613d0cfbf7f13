package api

import (
	"context"
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"contribution_governance_system/configs"
	"contribution_governance_system/internal/db/models"
	"contribution_governance_system/internal/governance"
)

const (
	callerHeader        = "X-Caller-Address"
	authorizationHeader = "Authorization"
)

// Governance is the part of the governance engine exposed over HTTP.
type Governance interface {
	PeriodStatus() governance.PeriodStatus
	AdvancePeriod(ctx context.Context, currentBlock uint64, force bool) ([]governance.Event, error)

	Register(ctx context.Context, address string) error
	Unregister(ctx context.Context, address string) error
	ValidatorStatus(ctx context.Context, address string) (governance.ValidatorStatus, error)
	Validators() []models.Validator

	SubmitProposal(ctx context.Context, submission governance.ProposalSubmission) error
	OnTokenReceived(ctx context.Context, token, from string, amount models.Amount, payload []byte) error
	ProposalHashesByStatus(status models.ProposalStatus) []string
	ProposalDetail(proposalHash string) (governance.ProposalDetail, error)
	ActiveProposals(contributor string) []governance.ActiveProposal

	CastVote(ctx context.Context, proposalHash, voter string, choice models.VoteChoice, reason string, isChange bool) error
	VoteResult(proposalHash string) (governance.VoteResult, error)
	VotePriority(ctx context.Context, voter string, proposalHashes []string) error
	PriorityRanking() []governance.PriorityScore

	SubmitProgressReport(ctx context.Context, contributor string, submission governance.ReportSubmission) error
	CastMilestoneVote(ctx context.Context, reportHash, voter string, ballots []governance.MilestoneBallot, reason string, isChange bool) error
	MilestoneStatus(proposalHash string, milestoneID int) (models.Milestone, error)
	ReportDetail(reportHash string) (governance.ReportDetail, error)
	ReportVoteResult(reportHash string) ([]governance.MilestoneVoteResult, error)
	MilestoneVoteResult(reportHash string, milestoneID int) (governance.VoteResult, error)

	ClaimReward(ctx context.Context, address string) (models.Amount, error)
	ProjectedFund(address string, role models.Beneficiary) governance.ProjectedFund
	TreasuryStatus(ctx context.Context) (governance.TreasuryStatus, error)
}

type Server struct {
	config     configs.API
	governance Governance
	logger     *zap.SugaredLogger
	router     *mux.Router
	httpServer *http.Server
}

func NewServer(config configs.API, governance Governance, gatherer prometheus.Gatherer, logger *zap.SugaredLogger) *Server {
	s := &Server{
		config:     config,
		governance: governance,
		logger:     logger,
		router:     mux.NewRouter(),
	}
	s.routes(gatherer)

	s.httpServer = &http.Server{
		Addr:              config.Address,
		Handler:           s.router,
		ReadHeaderTimeout: 60 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until Shutdown is called.
func (s *Server) Start() error {
	s.logger.Infow("starting api server", "address", s.config.Address)

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) routes(gatherer prometheus.Gatherer) {
	s.router.Use(s.logRequests)

	s.router.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	s.router.HandleFunc("/healthcheck", s.healthcheck).Methods(http.MethodGet)

	v1 := s.router.PathPrefix("/api/v1").Subrouter()

	v1.HandleFunc("/period", s.periodStatus).Methods(http.MethodGet)

	v1.HandleFunc("/validators", s.validators).Methods(http.MethodGet)
	v1.HandleFunc("/validators/{address}", s.validatorStatus).Methods(http.MethodGet)
	v1.HandleFunc("/validators/register", s.register).Methods(http.MethodPost)
	v1.HandleFunc("/validators/unregister", s.unregister).Methods(http.MethodPost)

	v1.HandleFunc("/proposals", s.proposalsByStatus).Methods(http.MethodGet)
	v1.HandleFunc("/proposals", s.submitProposal).Methods(http.MethodPost)
	v1.HandleFunc("/proposals/{hash}", s.proposalDetail).Methods(http.MethodGet)
	v1.HandleFunc("/proposals/{hash}/votes", s.voteResult).Methods(http.MethodGet)
	v1.HandleFunc("/proposals/{hash}/votes", s.voteProposal).Methods(http.MethodPost)
	v1.HandleFunc("/proposals/{hash}/milestones/{id:[0-9]+}", s.milestoneStatus).Methods(http.MethodGet)
	v1.HandleFunc("/contributors/{address}/proposals", s.activeProposals).Methods(http.MethodGet)

	v1.HandleFunc("/priority", s.priorityRanking).Methods(http.MethodGet)
	v1.HandleFunc("/priority", s.votePriority).Methods(http.MethodPost)

	v1.HandleFunc("/reports", s.submitProgressReport).Methods(http.MethodPost)
	v1.HandleFunc("/reports/{hash}", s.reportDetail).Methods(http.MethodGet)
	v1.HandleFunc("/reports/{hash}/votes", s.reportVoteResult).Methods(http.MethodGet)
	v1.HandleFunc("/reports/{hash}/votes", s.voteProgressReport).Methods(http.MethodPost)
	v1.HandleFunc("/reports/{hash}/milestones/{id:[0-9]+}/votes", s.milestoneVoteResult).Methods(http.MethodGet)

	v1.HandleFunc("/funds/claim", s.claimReward).Methods(http.MethodPost)
	v1.HandleFunc("/funds/{address}", s.projectedFund).Methods(http.MethodGet)
	v1.HandleFunc("/treasury", s.treasuryStatus).Methods(http.MethodGet)

	operator := v1.PathPrefix("/operator").Subrouter()
	operator.Use(s.requireOperator)
	operator.HandleFunc("/period/advance", s.advancePeriod).Methods(http.MethodPost)
	operator.HandleFunc("/ledger/token-received", s.tokenReceived).Methods(http.MethodPost)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(recorder, r)

		s.logger.Infow("handled request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", recorder.status,
			"duration", time.Since(start),
		)
	})
}

func (s *Server) requireOperator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		given := []byte(r.Header.Get(authorizationHeader))
		expected := []byte("Bearer " + s.config.OperatorToken)
		if subtle.ConstantTimeCompare(given, expected) != 1 {
			writeError(w, http.StatusUnauthorized, "operator token required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
