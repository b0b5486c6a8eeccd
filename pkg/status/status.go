// Package status 根据固定阈值给指标最新值打上状态标签
package status

import (
	"github.com/Kevin-Rudy/pulsesense/pkg/core"
)

// 阈值常量，边界值本身属于Normal/Moving
const (
	HeartRateLow    = 50.0
	HeartRateHigh   = 120.0
	TemperatureLow  = 36.0
	TemperatureHigh = 38.0
	StepsActive     = 90.0
)

// Evaluate 将指标值映射为状态标签
func Evaluate(kind core.MetricKind, value float64) core.StatusLabel {
	switch kind {
	case core.HeartRate:
		return band(value, HeartRateLow, HeartRateHigh)
	case core.Temperature:
		return band(value, TemperatureLow, TemperatureHigh)
	case core.Steps:
		if value == 0 {
			return core.StatusIdle
		}
		if value > StepsActive {
			return core.StatusActive
		}
		return core.StatusMoving
	default:
		return core.StatusUnknown
	}
}

// ForLatest 根据窗口的最新点计算标签，没有数据时返回Unknown
func ForLatest(kind core.MetricKind, latest core.TelemetryPoint, ok bool) core.StatusLabel {
	if !ok {
		return core.StatusUnknown
	}
	return Evaluate(kind, latest.Value)
}

func band(value, low, high float64) core.StatusLabel {
	if value < low {
		return core.StatusLow
	}
	if value > high {
		return core.StatusHigh
	}
	return core.StatusNormal
}
