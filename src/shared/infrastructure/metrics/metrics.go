package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics métricas Prometheus del flujo de venta por lote
// Todos los métodos aceptan receptor nil para correr sin métricas
type Metrics struct {
	commits        *prometheus.CounterVec
	saves          *prometheus.CounterVec
	snapshotLoads  *prometheus.CounterVec
	remoteDuration *prometheus.HistogramVec
	batchLines     prometheus.Gauge
}

// New registra las métricas en el registerer indicado
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		commits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "storepos",
			Name:      "batch_sale_commits_total",
			Help:      "Line commits by result.",
		}, []string{"result"}),
		saves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "storepos",
			Name:      "batch_sale_saves_total",
			Help:      "Final batch saves by result.",
		}, []string{"result"}),
		snapshotLoads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "storepos",
			Name:      "stock_snapshot_loads_total",
			Help:      "Stock snapshot load attempts by result.",
		}, []string{"result"}),
		remoteDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "storepos",
			Name:      "remote_request_duration_seconds",
			Help:      "Inventory API request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation", "status"}),
		batchLines: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "storepos",
			Name:      "batch_sale_lines",
			Help:      "Committed lines in the current batch.",
		}),
	}
	reg.MustRegister(m.commits, m.saves, m.snapshotLoads, m.remoteDuration, m.batchLines)
	return m
}

// Commit cuenta un commit de línea
func (m *Metrics) Commit(result string) {
	if m == nil {
		return
	}
	m.commits.WithLabelValues(result).Inc()
}

// Save cuenta un guardado final
func (m *Metrics) Save(result string) {
	if m == nil {
		return
	}
	m.saves.WithLabelValues(result).Inc()
}

// SnapshotLoad cuenta un intento de carga del snapshot
func (m *Metrics) SnapshotLoad(result string) {
	if m == nil {
		return
	}
	m.snapshotLoads.WithLabelValues(result).Inc()
}

// ObserveRemote registra la latencia de una llamada al API remoto
func (m *Metrics) ObserveRemote(operation, status string, started time.Time) {
	if m == nil {
		return
	}
	m.remoteDuration.WithLabelValues(operation, status).Observe(time.Since(started).Seconds())
}

// SetBatchLines publica la cantidad de líneas confirmadas
func (m *Metrics) SetBatchLines(n int) {
	if m == nil {
		return
	}
	m.batchLines.Set(float64(n))
}
