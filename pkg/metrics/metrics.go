// Package metrics 把连接管理器的运行事件导出为Prometheus指标
package metrics

import (
	"net/http"

	"github.com/Kevin-Rudy/pulsesense/pkg/core"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector 实现 stream.Recorder，使用独立的注册表
type Collector struct {
	registry *prometheus.Registry

	// ConnectAttempts 按端点角色统计的连接尝试次数
	ConnectAttempts *prometheus.CounterVec
	// ConnectionState 当前连接状态（0 idle, 1 connecting, 2 connected, 3 disconnected）
	ConnectionState prometheus.Gauge
	// Envelopes 按处理结果统计的报文数量
	Envelopes *prometheus.CounterVec
	// Points 按指标统计写入窗口的数据点数量
	Points *prometheus.CounterVec
	// LatestValue 每个指标的最新值
	LatestValue *prometheus.GaugeVec
}

// NewCollector 创建并注册所有指标
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		ConnectAttempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pulsesense_connect_attempts_total",
				Help: "Total number of stream connection attempts",
			},
			[]string{"role"},
		),
		ConnectionState: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "pulsesense_connection_state",
				Help: "Current stream connection state",
			},
		),
		Envelopes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pulsesense_envelopes_total",
				Help: "Total number of inbound stream messages by classification result",
			},
			[]string{"result"},
		),
		Points: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pulsesense_points_total",
				Help: "Total number of telemetry points stored per metric",
			},
			[]string{"metric"},
		),
		LatestValue: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "pulsesense_latest_value",
				Help: "Most recent telemetry value per metric",
			},
			[]string{"metric"},
		),
	}

	c.registry.MustRegister(c.ConnectAttempts, c.ConnectionState, c.Envelopes, c.Points, c.LatestValue)
	return c
}

// Registry 返回指标注册表
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler 返回 /metrics 的HTTP处理器
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

func (c *Collector) AttemptStarted(role core.EndpointRole) {
	c.ConnectAttempts.WithLabelValues(role.String()).Inc()
}

func (c *Collector) StateChanged(state core.ConnectionState) {
	c.ConnectionState.Set(float64(state))
}

func (c *Collector) EnvelopeAccepted(routed bool) {
	if routed {
		c.Envelopes.WithLabelValues("accepted").Inc()
		return
	}
	c.Envelopes.WithLabelValues("unrouted").Inc()
}

func (c *Collector) EnvelopeDropped(reason string) {
	c.Envelopes.WithLabelValues(reason).Inc()
}

func (c *Collector) PointStored(kind core.MetricKind, value float64) {
	c.Points.WithLabelValues(kind.String()).Inc()
	c.LatestValue.WithLabelValues(kind.String()).Set(value)
}
