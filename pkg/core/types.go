// Package core 定义了遥测客户端的核心数据结构和接口
// 这些类型保证了界面层与连接管理器的完全解耦
package core

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// MetricKind 表示指标类型
type MetricKind int

const (
	HeartRate   MetricKind = iota // 心率
	Temperature                   // 体温
	Steps                         // 步频
)

// AllKinds 按固定顺序列出所有指标类型
var AllKinds = [...]MetricKind{HeartRate, Temperature, Steps}

// String 返回指标类型名称
func (k MetricKind) String() string {
	switch k {
	case HeartRate:
		return "heart_rate"
	case Temperature:
		return "temperature"
	case Steps:
		return "steps"
	default:
		return "unknown"
	}
}

// Unit 返回指标的显示单位
func (k MetricKind) Unit() string {
	switch k {
	case HeartRate:
		return "bpm"
	case Temperature:
		return "°C"
	case Steps:
		return "steps/min"
	default:
		return ""
	}
}

// TelemetryPoint 表示带时间戳的单个遥测数据点
// 只由消息分类器生成，生成后不可修改
type TelemetryPoint struct {
	Timestamp time.Time // 观测时间，零值表示无法解析的时间
	Value     float64   // 观测值
}

// ValidTime 判断数据点的时间戳是否可用于绘图
func (p TelemetryPoint) ValidTime() bool {
	return !p.Timestamp.IsZero()
}

// StatusLabel 表示指标最新值的分类标签
type StatusLabel int

const (
	StatusUnknown StatusLabel = iota // 尚无数据
	StatusLow
	StatusNormal
	StatusHigh
	StatusIdle
	StatusMoving
	StatusActive
)

// String 返回标签的显示文本
func (s StatusLabel) String() string {
	switch s {
	case StatusLow:
		return "Low"
	case StatusNormal:
		return "Normal"
	case StatusHigh:
		return "High"
	case StatusIdle:
		return "Idle"
	case StatusMoving:
		return "Moving"
	case StatusActive:
		return "Active"
	default:
		return "—"
	}
}

// ConnectionState 表示连接状态机的状态
type ConnectionState int

const (
	StateIdle ConnectionState = iota
	StateConnecting
	StateConnected
	StateDisconnected
)

// String 返回状态名称
func (s ConnectionState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateDisconnected:
		return "disconnected"
	default:
		return "unknown"
	}
}

// EndpointRole 区分主端点和备用端点
type EndpointRole int

const (
	RolePrimary EndpointRole = iota
	RoleFallback
)

// String 返回端点角色名称
func (r EndpointRole) String() string {
	if r == RoleFallback {
		return "fallback"
	}
	return "primary"
}

// Envelope 表示一条已接受的观测报文，用于调试日志展示
type Envelope struct {
	Raw         json.RawMessage // 压缩后的原始报文
	EffectiveAt time.Time       // 报文中的观测时间，解析失败时为零值
	CodeText    string          // code.text 原文
}

// Connectivity 描述当前连接状态和正在使用的端点
type Connectivity struct {
	State     ConnectionState
	Role      EndpointRole
	Endpoint  string
	Attempts  uint64 // 已发起的连接尝试次数
	LastError string // 最近一次连接失败的原因
}

// String 返回适合状态栏显示的文本
func (c Connectivity) String() string {
	switch c.State {
	case StateConnecting:
		return fmt.Sprintf("connecting… (%s %s)", c.Role, c.Endpoint)
	case StateConnected:
		return fmt.Sprintf("connected (%s %s)", c.Role, c.Endpoint)
	case StateDisconnected:
		if c.LastError != "" {
			return fmt.Sprintf("disconnected (%s) retrying…", c.LastError)
		}
		return "disconnected retrying…"
	default:
		return "idle"
	}
}

// SeriesSnapshot 是单个指标窗口的只读副本
type SeriesSnapshot struct {
	Kind   MetricKind
	Points []TelemetryPoint // 按到达顺序排列，最多为窗口容量
	Latest *TelemetryPoint  // 最新数据点，窗口为空时为nil
	Status StatusLabel      // 最新值对应的状态标签
}

// Snapshot 是某一时刻客户端状态的完整深拷贝
// 外部协作者（渲染器、日志视图、状态栏）只读取Snapshot，从不修改内部状态
type Snapshot struct {
	Series       [len(AllKinds)]SeriesSnapshot
	Feed         []Envelope // 最近接受的报文，最旧的在前
	LastUpdate   time.Time  // 最近一条已接受报文的观测时间
	Connectivity Connectivity
}

// Metric 返回指定指标的窗口副本
func (s Snapshot) Metric(kind MetricKind) SeriesSnapshot {
	if kind < 0 || int(kind) >= len(s.Series) {
		return SeriesSnapshot{Kind: kind}
	}
	return s.Series[kind]
}

// DataSource 定义了实时遥测数据源的标准接口
// 界面层只依赖这个接口，不关心底层的连接细节
type DataSource interface {
	// Start 启动数据收集，非阻塞，重复调用无效果
	Start(ctx context.Context)

	// Snapshot 返回最近一次发布的快照
	Snapshot() Snapshot

	// Updates 返回一个只读通道，每当有新快照发布时收到通知
	// 通道只保留最新的快照，慢速消费者会跳过中间状态
	Updates() <-chan Snapshot
}
