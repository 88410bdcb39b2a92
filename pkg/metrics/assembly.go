package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// AssemblyMetrics records production and stock-mutation metadata.
type AssemblyMetrics struct {
	built          *prometheus.CounterVec
	deleted        prometheus.Counter
	serialAttempts prometheus.Histogram
	stockDeltas    *prometheus.CounterVec
	blockedDeletes *prometheus.CounterVec
}

// NewAssemblyMetrics registers the assembly engine metrics on the provided registerer.
func NewAssemblyMetrics(reg prometheus.Registerer) *AssemblyMetrics {
	if reg == nil {
		return &AssemblyMetrics{}
	}
	built := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "assemblies_built_total",
		Help: "Assemblies created, labeled by produced item.",
	}, []string{"item"})
	deleted := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "assemblies_deleted_total",
		Help: "Assembly records deleted.",
	})
	serialAttempts := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "assembly_serial_attempts",
		Help:    "Serial-number generation attempts per assembly.",
		Buckets: []float64{1, 2, 3, 5, 8, 13, 21, 32},
	})
	stockDeltas := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "stock_adjustments_total",
		Help: "Stock adjustments applied, labeled by direction.",
	}, []string{"direction"})
	blockedDeletes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "blocked_deletes_total",
		Help: "Deletes blocked by the dependency guard, labeled by entity kind.",
	}, []string{"entity"})
	reg.MustRegister(built, deleted, serialAttempts, stockDeltas, blockedDeletes)
	return &AssemblyMetrics{
		built:          built,
		deleted:        deleted,
		serialAttempts: serialAttempts,
		stockDeltas:    stockDeltas,
		blockedDeletes: blockedDeletes,
	}
}

// IncBuilt increments the build counter for the named item.
func (m *AssemblyMetrics) IncBuilt(item string) {
	if m == nil || m.built == nil {
		return
	}
	m.built.WithLabelValues(normalizeLabel(item)).Inc()
}

// IncDeleted increments the assembly deletion counter.
func (m *AssemblyMetrics) IncDeleted() {
	if m == nil || m.deleted == nil {
		return
	}
	m.deleted.Inc()
}

// ObserveSerialAttempts records how many serial candidates were tried.
func (m *AssemblyMetrics) ObserveSerialAttempts(attempts int) {
	if m == nil || m.serialAttempts == nil {
		return
	}
	m.serialAttempts.Observe(float64(attempts))
}

// AddStockDelta counts adjusted units by direction.
func (m *AssemblyMetrics) AddStockDelta(amount int) {
	if m == nil || m.stockDeltas == nil {
		return
	}
	if amount >= 0 {
		m.stockDeltas.WithLabelValues("in").Add(float64(amount))
		return
	}
	m.stockDeltas.WithLabelValues("out").Add(float64(-amount))
}

// IncBlockedDelete counts a delete rejected by the dependency guard.
func (m *AssemblyMetrics) IncBlockedDelete(entity string) {
	if m == nil || m.blockedDeletes == nil {
		return
	}
	m.blockedDeletes.WithLabelValues(normalizeLabel(entity)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
