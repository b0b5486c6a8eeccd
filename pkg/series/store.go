package series

import (
	"github.com/Kevin-Rudy/pulsesense/pkg/core"
)

// DefaultCapacity 每个指标默认保留的数据点个数
const DefaultCapacity = 120

// Store 每个指标一个有上限的数据点窗口
// 只由连接管理器的事件循环写入，因此不需要加锁
type Store struct {
	series [len(core.AllKinds)]*Ring[core.TelemetryPoint]
}

// NewStore 为每个指标创建空窗口
func NewStore(capacity int) *Store {
	s := &Store{}
	for _, kind := range core.AllKinds {
		s.series[kind] = NewRing[core.TelemetryPoint](capacity)
	}
	return s
}

// Push 将数据点追加到指定指标的窗口，超出容量时淘汰最旧的点
func (s *Store) Push(kind core.MetricKind, point core.TelemetryPoint) {
	if r := s.ring(kind); r != nil {
		r.Push(point)
	}
}

// Latest 返回指定指标最近写入的数据点
func (s *Store) Latest(kind core.MetricKind) (core.TelemetryPoint, bool) {
	if r := s.ring(kind); r != nil {
		return r.Latest()
	}
	return core.TelemetryPoint{}, false
}

// Window 返回指定指标当前窗口的副本，调用方可以随意修改
func (s *Store) Window(kind core.MetricKind) []core.TelemetryPoint {
	if r := s.ring(kind); r != nil {
		return r.Items()
	}
	return nil
}

// Len 返回指定指标窗口内的点数
func (s *Store) Len(kind core.MetricKind) int {
	if r := s.ring(kind); r != nil {
		return r.Len()
	}
	return 0
}

func (s *Store) ring(kind core.MetricKind) *Ring[core.TelemetryPoint] {
	if kind < 0 || int(kind) >= len(s.series) {
		return nil
	}
	return s.series[kind]
}
