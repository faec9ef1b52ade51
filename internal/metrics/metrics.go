package metrics

import "github.com/prometheus/client_golang/prometheus"

// Metrics счётчики генерации и переходов слотов
type Metrics struct {
	generationRuns     *prometheus.CounterVec
	generationDuration prometheus.Histogram
	slotsGenerated     prometheus.Counter
	transitions        *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		generationRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ybooking",
			Subsystem: "generator",
			Name:      "doctor_runs_total",
			Help:      "Запуски генерации по врачам",
		}, []string{"status"}),
		generationDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "ybooking",
			Subsystem: "generator",
			Name:      "cycle_duration_seconds",
			Help:      "Длительность полного цикла генерации",
			Buckets:   prometheus.DefBuckets,
		}),
		slotsGenerated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ybooking",
			Subsystem: "generator",
			Name:      "slots_created_total",
			Help:      "Созданные слоты",
		}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ybooking",
			Subsystem: "booking",
			Name:      "transitions_total",
			Help:      "Попытки занять или освободить слот",
		}, []string{"op", "result"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.generationRuns, m.generationDuration, m.slotsGenerated, m.transitions)
	return m
}

func (m *Metrics) ObserveGeneration(status string) {
	if m == nil {
		return
	}
	m.generationRuns.WithLabelValues(status).Inc()
}

func (m *Metrics) AddSlotsGenerated(n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.slotsGenerated.Add(float64(n))
}

func (m *Metrics) ObserveGenerationDuration(seconds float64) {
	if m == nil {
		return
	}
	m.generationDuration.Observe(seconds)
}

func (m *Metrics) ObserveTransition(op, result string) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(op, result).Inc()
}
