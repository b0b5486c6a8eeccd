package stream

import (
	"github.com/Kevin-Rudy/pulsesense/pkg/core"
)

// Recorder 接收连接管理器的运行事件，用于指标统计
// 所有方法都在事件循环中同步调用，实现不应阻塞
type Recorder interface {
	AttemptStarted(role core.EndpointRole)
	StateChanged(state core.ConnectionState)
	EnvelopeAccepted(routed bool)
	EnvelopeDropped(reason string)
	PointStored(kind core.MetricKind, value float64)
}

type noopRecorder struct{}

func (noopRecorder) AttemptStarted(core.EndpointRole)     {}
func (noopRecorder) StateChanged(core.ConnectionState)    {}
func (noopRecorder) EnvelopeAccepted(bool)                {}
func (noopRecorder) EnvelopeDropped(string)               {}
func (noopRecorder) PointStored(core.MetricKind, float64) {}
