package governance

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"contribution_governance_system/internal/db/models"
)

type Option func(*Engine)

func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

func WithStore(store Store) Option {
	return func(e *Engine) {
		e.store = store
	}
}

func WithMetrics(registry prometheus.Registerer) Option {
	return func(e *Engine) {
		e.metrics = newMetrics(registry)
	}
}

// WithListener registers a callback that receives the events of every
// committed operation, in the order they were produced.
func WithListener(listener func([]Event)) Option {
	return func(e *Engine) {
		e.listeners = append(e.listeners, listener)
	}
}

// Engine is the single writer over governance state. Every mutation runs
// against a private copy of the committed state and replaces it only when
// the whole operation, including persistence, succeeds.
type Engine struct {
	mu    sync.RWMutex
	state *State

	params    Params
	oracle    ValidatorOracle
	ledger    Ledger
	store     Store
	metrics   *metrics
	listeners []func([]Event)
	logger    *zap.SugaredLogger
	now       func() time.Time
}

func NewEngine(
	ctx context.Context,
	params Params,
	oracle ValidatorOracle,
	ledger Ledger,
	logger *zap.SugaredLogger,
	options ...Option,
) (*Engine, error) {
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("invalid governance params: %w", err)
	}

	e := &Engine{
		params: params,
		oracle: oracle,
		ledger: ledger,
		logger: logger,
		now:    time.Now,
	}
	for _, option := range options {
		option(e)
	}

	snapshot := genesisSnapshot()
	if e.store != nil {
		loaded, err := e.store.Load(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load governance state: %w", err)
		}
		if loaded.Period.Name != "" {
			snapshot = loaded
		}
	}
	e.state = newState(snapshot)
	e.metrics.observeState(e.state)

	logger.Infow("governance engine started",
		"period", e.state.Period.Name,
		"sequence", e.state.Period.SequenceNumber,
		"proposals", len(e.state.Proposals),
	)

	return e, nil
}

// txn carries one in-flight operation.
type txn struct {
	*State

	ctx    context.Context
	params Params
	oracle ValidatorOracle
	now    time.Time
	events []Event

	// unchanged marks an operation that completed as a no-op.
	unchanged bool
}

func (t *txn) emit(event Event) {
	t.events = append(t.events, event)
}

func (e *Engine) mutate(ctx context.Context, operation string, fn func(t *txn) error) ([]Event, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	t := &txn{
		State:  e.state.clone(),
		ctx:    ctx,
		params: e.params,
		oracle: e.oracle,
		now:    e.now(),
	}

	if err := fn(t); err != nil {
		e.metrics.observeFailure(operation)
		return nil, err
	}

	if t.unchanged {
		return nil, nil
	}

	if e.store != nil {
		if err := e.store.Save(ctx, t.Snapshot.Changes(e.state.Snapshot)); err != nil {
			e.logger.Errorw("failed to persist governance state", "operation", operation, "error", err)
			return nil, fmt.Errorf("failed to persist state: %w", err)
		}
	}

	e.state = t.State
	e.metrics.observeCommit(operation, t.events, e.state)

	for _, listener := range e.listeners {
		listener(t.events)
	}

	return t.events, nil
}

func (e *Engine) read(fn func(s *State)) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	fn(e.state)
}

// Snapshot returns a copy of the committed state.
func (e *Engine) Snapshot() models.Snapshot {
	var snapshot models.Snapshot
	e.read(func(s *State) {
		snapshot = s.Snapshot.Clone()
	})
	return snapshot
}

func (e *Engine) Params() Params {
	return e.params
}
