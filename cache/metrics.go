package cache

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics 用于 Prometheus 监控缓存命中、未命中、加载失败、过期等指标。
type Metrics struct {
	Hits        *prometheus.CounterVec // 命中次数，按前缀区分
	Misses      *prometheus.CounterVec // 未命中次数，按前缀区分
	LoadErrors  *prometheus.CounterVec // 被包装函数返回错误的次数
	Expirations prometheus.Counter     // 过期删除次数
}

// NewMetrics 创建并注册指标，reg为nil时注册到默认Registerer
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		Hits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "memo",
			Name:      "hits_total",
			Help:      "Number of lookups answered from the cache",
		}, []string{"prefix"}),
		Misses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "memo",
			Name:      "misses_total",
			Help:      "Number of lookups that invoked the wrapped operation",
		}, []string{"prefix"}),
		LoadErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "memo",
			Name:      "load_errors_total",
			Help:      "Number of wrapped operation failures",
		}, []string{"prefix"}),
		Expirations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "memo",
			Name:      "expirations_total",
			Help:      "Number of expired entries removed from the store",
		}),
	}
	reg.MustRegister(m.Hits, m.Misses, m.LoadErrors, m.Expirations)
	return m
}

func (m *Metrics) hit(prefix string) {
	if m != nil {
		m.Hits.WithLabelValues(prefix).Inc()
	}
}

func (m *Metrics) miss(prefix string) {
	if m != nil {
		m.Misses.WithLabelValues(prefix).Inc()
	}
}

func (m *Metrics) loadError(prefix string) {
	if m != nil {
		m.LoadErrors.WithLabelValues(prefix).Inc()
	}
}

func (m *Metrics) expired() {
	if m != nil {
		m.Expirations.Inc()
	}
}
