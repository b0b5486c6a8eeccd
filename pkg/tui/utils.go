// Package tui 工具函数和辅助类型
package tui

import (
	"fmt"
	"math"

	"github.com/Kevin-Rudy/pulsesense/pkg/core"
)

// formatAxisValue 格式化Y轴刻度
func formatAxisValue(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "N/A"
	}
	if math.Abs(v) >= 100 {
		return fmt.Sprintf("%.0f", v)
	}
	return fmt.Sprintf("%.1f", v)
}

// kindTitle 返回指标的显示名称
func kindTitle(kind core.MetricKind) string {
	switch kind {
	case core.HeartRate:
		return "Heart Rate"
	case core.Temperature:
		return "Temperature"
	case core.Steps:
		return "Steps"
	default:
		return kind.String()
	}
}

// kindColor 返回指标在状态行和图表中使用的颜色
func kindColor(kind core.MetricKind) string {
	colorSequence := []string{"[red]", "[yellow]", "[green]"}
	if kind < 0 || int(kind) >= len(colorSequence) {
		return "[white]"
	}
	return colorSequence[kind]
}

// stateColor 返回连接状态的颜色
func stateColor(state core.ConnectionState) string {
	switch state {
	case core.StateConnected:
		return "[green]"
	case core.StateConnecting:
		return "[yellow]"
	case core.StateDisconnected:
		return "[red]"
	default:
		return "[gray]"
	}
}

// abs 返回整数的绝对值
func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
