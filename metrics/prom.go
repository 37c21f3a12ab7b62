// Package metrics records service metrics in Prometheus collectors.
package metrics

import (
	"errors"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Recorder holds the service collectors. A nil *Recorder is valid and
// records nothing.
type Recorder struct {
	mutations       *prometheus.CounterVec
	advisorRequests *prometheus.CounterVec
	advisorLatency  prometheus.Histogram
	httpRequests    *prometheus.CounterVec
	httpLatency     *prometheus.HistogramVec
	planSize        *prometheus.GaugeVec
	persistFailures prometheus.Counter
}

// NewRecorder registers the collectors on the default Prometheus registerer.
func NewRecorder() (*Recorder, error) {
	return NewRecorderWithRegistry(prometheus.DefaultRegisterer)
}

// NewRecorderWithRegistry registers the collectors on reg. A nil registerer
// defaults to the global one. Collectors already registered are reused.
func NewRecorderWithRegistry(reg prometheus.Registerer) (*Recorder, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	r := &Recorder{
		mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "shiftplan_mutations_total",
			Help: "Plan mutations by operation and outcome",
		}, []string{"op", "result"}),
		advisorRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "shiftplan_advisor_requests_total",
			Help: "Advisory text requests by outcome",
		}, []string{"result"}),
		advisorLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "shiftplan_advisor_latency_seconds",
			Help:    "Latency of advisory text requests",
			Buckets: prometheus.DefBuckets,
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "shiftplan_http_requests_total",
			Help: "HTTP requests by method, route and status",
		}, []string{"method", "route", "status"}),
		httpLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "shiftplan_http_request_duration_seconds",
			Help:    "HTTP request latency by route",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		planSize: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "shiftplan_plan_size",
			Help: "Number of employees, shifts and entries in the plan",
		}, []string{"kind"}),
		persistFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "shiftplan_persist_failures_total",
			Help: "Plan saves that failed and were rolled back",
		}),
	}

	var err error
	if r.mutations, err = register(reg, r.mutations); err != nil {
		return nil, err
	}
	if r.advisorRequests, err = register(reg, r.advisorRequests); err != nil {
		return nil, err
	}
	if r.advisorLatency, err = register(reg, r.advisorLatency); err != nil {
		return nil, err
	}
	if r.httpRequests, err = register(reg, r.httpRequests); err != nil {
		return nil, err
	}
	if r.httpLatency, err = register(reg, r.httpLatency); err != nil {
		return nil, err
	}
	if r.planSize, err = register(reg, r.planSize); err != nil {
		return nil, err
	}
	if r.persistFailures, err = register(reg, r.persistFailures); err != nil {
		return nil, err
	}
	return r, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// RecordMutation counts a plan mutation. result is "ok", "rejected",
// "not_found" or "error".
func (r *Recorder) RecordMutation(op, result string) {
	if r == nil {
		return
	}
	r.mutations.WithLabelValues(op, result).Inc()
}

// RecordAdvisor counts an advisory request and observes its latency.
func (r *Recorder) RecordAdvisor(err error, took time.Duration) {
	if r == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	r.advisorRequests.WithLabelValues(result).Inc()
	r.advisorLatency.Observe(took.Seconds())
}

// RecordHTTP counts a served request.
func (r *Recorder) RecordHTTP(method, route string, status int, took time.Duration) {
	if r == nil {
		return
	}
	r.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	r.httpLatency.WithLabelValues(method, route).Observe(took.Seconds())
}

// SetPlanSize publishes the current collection sizes.
func (r *Recorder) SetPlanSize(employees, shifts, entries int) {
	if r == nil {
		return
	}
	r.planSize.WithLabelValues("employees").Set(float64(employees))
	r.planSize.WithLabelValues("shifts").Set(float64(shifts))
	r.planSize.WithLabelValues("entries").Set(float64(entries))
}

// RecordPersistFailure counts a failed save.
func (r *Recorder) RecordPersistFailure() {
	if r == nil {
		return
	}
	r.persistFailures.Inc()
}
