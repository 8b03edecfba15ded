package di

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// metrics 引擎指标；nil 表示未启用
type metrics struct {
	instances    *prometheus.CounterVec
	construction prometheus.Histogram
	failures     *prometheus.CounterVec
}

func newMetrics(reg prometheus.Registerer) (*metrics, error) {
	if reg == nil {
		return nil, nil
	}

	m := &metrics{
		instances: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "inject",
			Name:      "instances_total",
			Help:      "Instances cached by the injector, by source.",
		}, []string{"source"}),
		construction: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "inject",
			Name:      "construction_seconds",
			Help:      "Time spent in constructors and factory methods.",
			Buckets:   []float64{.0001, .001, .01, .1, 1, 10},
		}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "inject",
			Name:      "failures_total",
			Help:      "Failed Inject calls, by error kind.",
		}, []string{"kind"}),
	}

	var err error
	m.instances, err = register(reg, m.instances)
	if err != nil {
		return nil, err
	}
	m.construction, err = register(reg, m.construction)
	if err != nil {
		return nil, err
	}
	m.failures, err = register(reg, m.failures)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// register 注册收集器；已注册时复用现有的收集器
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

func (m *metrics) cached(src Source) {
	if m == nil {
		return
	}
	m.instances.WithLabelValues(string(src)).Inc()
}

func (m *metrics) observe(start time.Time) {
	if m == nil {
		return
	}
	m.construction.Observe(time.Since(start).Seconds())
}

func (m *metrics) failed(err error) {
	if m == nil {
		return
	}
	m.failures.WithLabelValues(Kind(err)).Inc()
}
