// Package metrics exposes authorization outcomes as Prometheus counters.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "enigma"

// Prometheus implements services.Recorder on its own registry.
type Prometheus struct {
	registry *prometheus.Registry
	logins   *prometheus.CounterVec
	verifies *prometheus.CounterVec
	swept    prometheus.Counter
	sweeps   prometheus.Counter
	requests *prometheus.CounterVec
}

func NewPrometheus() *Prometheus {
	p := &Prometheus{
		registry: prometheus.NewRegistry(),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "logins_total",
			Help:      "Session creation attempts by outcome.",
		}, []string{"outcome"}),
		verifies: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "session_verifications_total",
			Help:      "Session verifications by status.",
		}, []string{"status"}),
		swept: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_swept_total",
			Help:      "Expired sessions deleted by sweeps.",
		}),
		sweeps: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sweeps_total",
			Help:      "Completed sweep runs.",
		}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Transport requests by transport, method and result code.",
		}, []string{"transport", "method", "code"}),
	}

	p.registry.MustRegister(
		p.logins, p.verifies, p.swept, p.sweeps, p.requests,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return p
}

func (p *Prometheus) ObserveLogin(outcome string) {
	p.logins.WithLabelValues(outcome).Inc()
}

func (p *Prometheus) ObserveVerify(status string) {
	p.verifies.WithLabelValues(status).Inc()
}

func (p *Prometheus) ObserveSweep(deleted int64) {
	p.sweeps.Inc()
	p.swept.Add(float64(deleted))
}

// ObserveRequest counts a finished transport call.
func (p *Prometheus) ObserveRequest(transport, method string, code int) {
	p.requests.WithLabelValues(transport, method, strconv.Itoa(code)).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (p *Prometheus) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{Registry: p.registry})
}

// Registry is exposed for tests.
func (p *Prometheus) Registry() *prometheus.Registry {
	return p.registry
}
