package metrics

import "github.com/prometheus/client_golang/prometheus"

// LoanMetrics tracks circulation activity and contention on the lending paths.
type LoanMetrics struct {
	issued    prometheus.Counter
	returned  prometheus.Counter
	conflicts *prometheus.CounterVec
	retries   prometheus.Counter
	overdue   prometheus.Gauge
}

// NewLoanMetrics registers loan counters on the provided registerer.
func NewLoanMetrics(reg prometheus.Registerer) *LoanMetrics {
	if reg == nil {
		return &LoanMetrics{}
	}
	issued := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "loans_issued_total",
		Help: "Loans issued successfully.",
	})
	returned := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "loans_returned_total",
		Help: "Loans returned successfully.",
	})
	conflicts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "loan_conflicts_total",
		Help: "Lending operations rejected by a concurrency guard.",
	}, []string{"reason"})
	retries := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "loan_retries_total",
		Help: "Transient conflict retries on lending operations.",
	})
	overdue := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "loans_overdue",
		Help: "Open loans past their due date, as of the last sweep.",
	})
	reg.MustRegister(issued, returned, conflicts, retries, overdue)
	return &LoanMetrics{
		issued:    issued,
		returned:  returned,
		conflicts: conflicts,
		retries:   retries,
		overdue:   overdue,
	}
}

func (m *LoanMetrics) IncIssued() {
	if m == nil || m.issued == nil {
		return
	}
	m.issued.Inc()
}

func (m *LoanMetrics) IncReturned() {
	if m == nil || m.returned == nil {
		return
	}
	m.returned.Inc()
}

// IncConflict records a rejected operation with the guard that tripped,
// e.g. "stock_depleted" or "active_loan_exists".
func (m *LoanMetrics) IncConflict(reason string) {
	if m == nil || m.conflicts == nil {
		return
	}
	m.conflicts.WithLabelValues(normalizeLabel(reason)).Inc()
}

func (m *LoanMetrics) IncRetry() {
	if m == nil || m.retries == nil {
		return
	}
	m.retries.Inc()
}

// SetOverdue records the overdue count observed by the sweep.
func (m *LoanMetrics) SetOverdue(count int64) {
	if m == nil || m.overdue == nil {
		return
	}
	m.overdue.Set(float64(count))
}
