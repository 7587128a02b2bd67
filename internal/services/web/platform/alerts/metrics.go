package alerts

import "github.com/prometheus/client_golang/prometheus"

// Metrics counts alert cookie outcomes. A nil *Metrics records nothing.
type Metrics struct {
	Payloads *prometheus.CounterVec
	Rendered prometheus.Counter
}

// NewMetrics registers the alert counters with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		Payloads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "roomalerts_alert_payloads_total",
			Help: "Alert cookie reads by outcome",
		}, []string{"outcome"}),
		Rendered: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "roomalerts_alerts_rendered_total",
			Help: "Alert headings rendered",
		}),
	}
	if reg == nil {
		return m, nil
	}
	for _, c := range []prometheus.Collector{m.Payloads, m.Rendered} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) observe(result Result) {
	if m == nil {
		return
	}
	m.Payloads.WithLabelValues(string(result.Outcome)).Inc()
	if result.Rendered > 0 {
		m.Rendered.Add(float64(result.Rendered))
	}
}
