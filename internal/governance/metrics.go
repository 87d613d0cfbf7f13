package governance

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"contribution_governance_system/internal/db/models"
)

type metrics struct {
	operations        *prometheus.CounterVec
	operationFailures *prometheus.CounterVec
	events            *prometheus.CounterVec
	proposals         *prometheus.GaugeVec
	periodSequence    prometheus.Gauge
	votingPeriod      prometheus.Gauge
	registered        prometheus.Gauge
	claimable         prometheus.Gauge
}

func newMetrics(registry prometheus.Registerer) *metrics {
	factory := promauto.With(registry)

	return &metrics{
		operations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "governance_operations_total",
			Help: "number of committed governance operations",
		}, []string{"operation"}),
		operationFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "governance_operation_failures_total",
			Help: "number of rejected governance operations",
		}, []string{"operation"}),
		events: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "governance_events_total",
			Help: "number of governance events by type",
		}, []string{"type"}),
		proposals: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "governance_proposals",
			Help: "number of proposals by status",
		}, []string{"status"}),
		periodSequence: factory.NewGauge(prometheus.GaugeOpts{
			Name: "governance_period_sequence",
			Help: "sequence number of the current period",
		}),
		votingPeriod: factory.NewGauge(prometheus.GaugeOpts{
			Name: "governance_voting_period",
			Help: "1 while the voting period is active",
		}),
		registered: factory.NewGauge(prometheus.GaugeOpts{
			Name: "governance_registered_validators",
			Help: "number of registered validators",
		}),
		claimable: factory.NewGauge(prometheus.GaugeOpts{
			Name: "governance_unclaimed_balances",
			Help: "number of addresses with a claimable balance",
		}),
	}
}

func (m *metrics) observeFailure(operation string) {
	if m == nil {
		return
	}
	m.operationFailures.WithLabelValues(operation).Inc()
}

func (m *metrics) observeCommit(operation string, events []Event, state *State) {
	if m == nil {
		return
	}

	m.operations.WithLabelValues(operation).Inc()
	for _, event := range events {
		m.events.WithLabelValues(string(event.Type)).Inc()
	}

	m.observeState(state)
}

func (m *metrics) observeState(state *State) {
	if m == nil {
		return
	}

	counts := make(map[models.ProposalStatus]int, len(models.ProposalStatuses))
	for _, proposal := range state.Proposals {
		counts[proposal.Status]++
	}
	for _, status := range models.ProposalStatuses {
		m.proposals.WithLabelValues(status.String()).Set(float64(counts[status]))
	}

	m.periodSequence.Set(float64(state.Period.SequenceNumber))
	if state.Period.Name == models.PeriodNameVoting {
		m.votingPeriod.Set(1)
	} else {
		m.votingPeriod.Set(0)
	}

	var registered, claimable int
	for _, validator := range state.Validators {
		if validator.IsRegistered {
			registered++
		}
	}
	for _, balance := range state.Balances {
		if !balance.Claimable.IsZero() {
			claimable++
		}
	}
	m.registered.Set(float64(registered))
	m.claimable.Set(float64(claimable))
}
