package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	Authentications *prometheus.CounterVec
	Authorizations  *prometheus.CounterVec
	Revocations     *prometheus.CounterVec
	gatherer        prometheus.Gatherer
}

// New registers the gateway collectors on reg and serves reg on Handler.
func New(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		Authentications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "docflow",
			Name:      "authentications_total",
			Help:      "Bearer token resolutions by result.",
		}, []string{"result"}),
		Authorizations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "docflow",
			Name:      "authorizations_total",
			Help:      "Gate decisions by operation and decision.",
		}, []string{"operation", "decision"}),
		Revocations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "docflow",
			Name:      "token_revocations_total",
			Help:      "Logout revocations by result.",
		}, []string{"result"}),
		gatherer: reg,
	}
	reg.MustRegister(m.Authentications, m.Authorizations, m.Revocations)
	return m
}

func (m *Metrics) ObserveAuthentication(result string) {
	if m == nil {
		return
	}
	m.Authentications.WithLabelValues(result).Inc()
}

func (m *Metrics) ObserveAuthorization(operation, decision string) {
	if m == nil {
		return
	}
	m.Authorizations.WithLabelValues(operation, decision).Inc()
}

func (m *Metrics) ObserveRevocation(result string) {
	if m == nil {
		return
	}
	m.Revocations.WithLabelValues(result).Inc()
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
