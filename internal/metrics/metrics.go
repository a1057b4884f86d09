package metrics

import (
	"sync"
	"sync/atomic"
	"time"
)

// OperatorMetrics holds the tuple counters of a single operator.
type OperatorMetrics struct {
	operator string

	// Counters (atomic so a snapshot can be read while the pipeline runs)
	tuplesIn         uint64 // tuples pulled from upstream
	tuplesOut        uint64 // tuples handed downstream
	tuplesDropped    uint64 // tuples rejected by a predicate
	evaluationErrors uint64 // tuples that failed evaluation

	openedAt atomic.Int64 // unix nanos of the last open, 0 when never opened
}

// NewOperatorMetrics creates the counters for one operator.
func NewOperatorMetrics(operator string) *OperatorMetrics {
	return &OperatorMetrics{operator: operator}
}

func (m *OperatorMetrics) Operator() string {
	return m.operator
}

func (m *OperatorMetrics) IncrementIn() {
	atomic.AddUint64(&m.tuplesIn, 1)
}

func (m *OperatorMetrics) IncrementOut() {
	atomic.AddUint64(&m.tuplesOut, 1)
}

func (m *OperatorMetrics) IncrementDropped() {
	atomic.AddUint64(&m.tuplesDropped, 1)
}

func (m *OperatorMetrics) IncrementErrors() {
	atomic.AddUint64(&m.evaluationErrors, 1)
}

// MarkOpened records the time the operator was opened.
func (m *OperatorMetrics) MarkOpened(t time.Time) {
	m.openedAt.Store(t.UnixNano())
}

// OperatorStats is a snapshot of OperatorMetrics.
type OperatorStats struct {
	Operator         string
	TuplesIn         uint64
	TuplesOut        uint64
	TuplesDropped    uint64
	EvaluationErrors uint64
	OpenedAt         time.Time
}

// Snapshot returns the current counter values.
func (m *OperatorMetrics) Snapshot() OperatorStats {
	var openedAt time.Time
	if ns := m.openedAt.Load(); ns != 0 {
		openedAt = time.Unix(0, ns)
	}
	return OperatorStats{
		Operator:         m.operator,
		TuplesIn:         atomic.LoadUint64(&m.tuplesIn),
		TuplesOut:        atomic.LoadUint64(&m.tuplesOut),
		TuplesDropped:    atomic.LoadUint64(&m.tuplesDropped),
		EvaluationErrors: atomic.LoadUint64(&m.evaluationErrors),
		OpenedAt:         openedAt,
	}
}

// Instrumented is implemented by operators that keep counters.
type Instrumented interface {
	Metrics() *OperatorMetrics
}

// Registry groups operator metrics in registration order.
type Registry struct {
	mu        sync.RWMutex
	order     []string
	operators map[string]*OperatorMetrics
}

func NewRegistry() *Registry {
	return &Registry{operators: make(map[string]*OperatorMetrics)}
}

// Register adds m; registering the same operator name again replaces the previous counters.
func (r *Registry) Register(m *OperatorMetrics) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.operators[m.operator]; !exists {
		r.order = append(r.order, m.operator)
	}
	r.operators[m.operator] = m
}

// Snapshots returns one snapshot per registered operator in registration order.
func (r *Registry) Snapshots() []OperatorStats {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]OperatorStats, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.operators[name].Snapshot())
	}
	return out
}
