// Package tui 图表渲染模块
package tui

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/Kevin-Rudy/pulsesense/pkg/core"
)

// brailleCell 定义盲文字符的cell结构
type brailleCell struct {
	char  int
	color string
}

// brailleDotMap 盲文点阵的映射关系 (2x4 grid)
var brailleDotMap = [4][2]int{
	{0b00000001, 0b00001000}, // (y:0, x:0), (y:0, x:1)
	{0b00000010, 0b00010000}, // (y:1, x:0), (y:1, x:1)
	{0b00000100, 0b00100000}, // (y:2, x:0), (y:2, x:1)
	{0b01000000, 0b10000000}, // (y:3, x:0), (y:3, x:1)
}

// validateChartSize 验证图表尺寸是否合理
func (t *TUI) validateChartSize(width, height int) string {
	if height < t.tuiConfig.MinChartHeight || width < t.tuiConfig.MinChartWidth {
		return "终端尺寸过小"
	}
	if width > t.tuiConfig.MaxChartSize || height > t.tuiConfig.MaxChartSize {
		return "终端尺寸过大"
	}
	return ""
}

// plottablePoints 过滤掉时间戳无效或值非有限数的点
func plottablePoints(points []core.TelemetryPoint) []core.TelemetryPoint {
	out := make([]core.TelemetryPoint, 0, len(points))
	for _, p := range points {
		if !p.ValidTime() || math.IsNaN(p.Value) || math.IsInf(p.Value, 0) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// getTimeWindow 返回数据点的时间范围
// 点按到达顺序排列，时间戳不保证单调
func getTimeWindow(points []core.TelemetryPoint) (start, end time.Time) {
	start, end = points[0].Timestamp, points[0].Timestamp
	for _, p := range points[1:] {
		if p.Timestamp.Before(start) {
			start = p.Timestamp
		}
		if p.Timestamp.After(end) {
			end = p.Timestamp
		}
	}
	return start, end
}

// timestampToX 将时间戳转换为X坐标
func timestampToX(timestamp, windowStart, windowEnd time.Time, chartWidth int) int {
	windowDuration := windowEnd.Sub(windowStart)
	if windowDuration <= 0 {
		return 0
	}

	offset := timestamp.Sub(windowStart)
	if offset < 0 {
		return -1 // 在窗口左边界外
	}
	if offset > windowDuration {
		return chartWidth // 在窗口右边界外
	}

	x := int(float64(offset) / float64(windowDuration) * float64(chartWidth-1))
	return x
}

// calculateValueRange 计算Y轴的值范围
// 上下各留出值范围的一定比例，值全部相同时使用固定留白
func (t *TUI) calculateValueRange(points []core.TelemetryPoint) (minVal, maxVal, valueRange float64) {
	minVal, maxVal = points[0].Value, points[0].Value
	for _, p := range points {
		if p.Value < minVal {
			minVal = p.Value
		}
		if p.Value > maxVal {
			maxVal = p.Value
		}
	}

	pad := (maxVal - minVal) * t.tuiConfig.ValueBufferRatio
	if pad == 0 {
		pad = t.tuiConfig.MinValuePadding
	}
	minVal -= pad
	maxVal += pad

	return minVal, maxVal, maxVal - minVal
}

// drawSelectedChart 按当前选择绘制单个指标或全部指标
func (t *TUI) drawSelectedChart(snap core.Snapshot, width, height int) string {
	if t.selectedRow >= 0 && t.selectedRow < len(core.AllKinds) {
		series := snap.Metric(core.AllKinds[t.selectedRow])
		return t.drawPanel(series, width, height)
	}
	return t.drawAllCharts(snap, width, height)
}

// drawAllCharts 把全部指标上下排列，每个指标使用独立的Y轴
func (t *TUI) drawAllCharts(snap core.Snapshot, width, height int) string {
	panelHeight := height / len(core.AllKinds)

	panels := make([]string, 0, len(core.AllKinds))
	for _, kind := range core.AllKinds {
		panels = append(panels, t.drawPanel(snap.Metric(kind), width, panelHeight))
	}
	return strings.Join(panels, "\n")
}

// drawPanel 绘制带标题行的单指标图表
func (t *TUI) drawPanel(series core.SeriesSnapshot, width, height int) string {
	title := fmt.Sprintf("%s%s (%s)[white]", kindColor(series.Kind), kindTitle(series.Kind), series.Kind.Unit())
	return title + "\n" + t.drawSeriesChart(series, width, height-1)
}

// drawSeriesChart 基于时间戳绘制单个指标的折线图
func (t *TUI) drawSeriesChart(series core.SeriesSnapshot, width, height int) string {
	// 检查图表尺寸是否合理
	if sizeErr := t.validateChartSize(width, height); sizeErr != "" {
		return sizeErr
	}

	points := plottablePoints(series.Points)
	if len(points) == 0 {
		return "没有数据"
	}

	windowStart, windowEnd := getTimeWindow(points)
	minVal, maxVal, valueRange := t.calculateValueRange(points)

	// 动态计算Y轴标签宽度
	topLabel := formatAxisValue(maxVal)
	bottomLabel := formatAxisValue(minVal)
	maxLabelLen := len(topLabel)
	if len(bottomLabel) > maxLabelLen {
		maxLabelLen = len(bottomLabel)
	}
	yAxisLabelWidth := maxLabelLen + 2 // +2 为│分隔符和右侧空格留出缓冲

	// 准备画布尺寸
	chartBodyHeight := height - 2 // 为X轴和时间戳留出2行空间
	chartWidth := width - yAxisLabelWidth

	if chartBodyHeight <= 0 || chartWidth <= 0 {
		return "可绘制区域过小"
	}

	canvas := make([][]brailleCell, chartWidth)
	for i := range canvas {
		canvas[i] = make([]brailleCell, chartBodyHeight)
	}

	color := kindColor(series.Kind)
	pixelHeight := chartBodyHeight * 4
	pixelWidth := chartWidth * 2

	lastX, lastY := -1, -1
	for _, point := range points {
		currX := timestampToX(point.Timestamp, windowStart, windowEnd, pixelWidth)
		if currX < 0 || currX >= pixelWidth {
			continue
		}

		normalized := (point.Value - minVal) / valueRange
		currY := int((1.0 - normalized) * float64(pixelHeight-1))
		if currY < 0 {
			currY = 0
		} else if currY >= pixelHeight {
			currY = pixelHeight - 1
		}

		if lastX != -1 {
			drawBrailleLine(canvas, lastX, lastY, currX, currY, pixelHeight, pixelWidth, color)
		} else {
			setBrailleDot(canvas, currX, currY, color)
		}
		lastX, lastY = currX, currY
	}

	var lines []string

	// 预先计算Y轴标签及其对应的行号
	yAxisLabelCount := 5
	if chartBodyHeight < yAxisLabelCount {
		yAxisLabelCount = chartBodyHeight
	}
	yAxisLabels := make(map[int]string)
	if yAxisLabelCount > 1 {
		for i := 0; i < yAxisLabelCount; i++ {
			normalized := float64(i) / float64(yAxisLabelCount-1)
			value := maxVal - normalized*valueRange
			row := int(normalized * float64(chartBodyHeight-1))
			yAxisLabels[row] = formatAxisValue(value)
		}
	}

	// 绘制Y轴和图表主体
	for i := 0; i < chartBodyHeight; i++ {
		var line strings.Builder
		fmt.Fprintf(&line, "[gray]%*s[white] [gray]│[white]", yAxisLabelWidth-2, yAxisLabels[i])

		for j := 0; j < chartWidth; j++ {
			cell := canvas[j][i]
			if cell.char == 0 {
				line.WriteByte(' ')
			} else {
				line.WriteString(cell.color + string(rune(0x2800+cell.char)) + "[white]")
			}
		}
		lines = append(lines, line.String())
	}

	// 绘制X轴
	xAxisLine := fmt.Sprintf("%-*s└%s", yAxisLabelWidth-1, "", strings.Repeat("─", chartWidth))
	lines = append(lines, "[gray]"+xAxisLine+"[white]")

	// X轴时间刻度，显示数据点的实际时间范围
	startTimeStr := windowStart.Local().Format(time.TimeOnly)
	endTimeStr := windowEnd.Local().Format(time.TimeOnly)

	spaceCount := chartWidth - len(startTimeStr) - len(endTimeStr)
	if spaceCount < 1 {
		spaceCount = 1
	}
	timeLine := fmt.Sprintf("%-*s%s%*s%s", yAxisLabelWidth, "", startTimeStr, spaceCount, "", endTimeStr)
	lines = append(lines, "[gray]"+timeLine+"[white]")

	// 保证X轴总是可见
	if len(lines) > height {
		lines = lines[:height]
	}

	return strings.Join(lines, "\n")
}

// setBrailleDot 在高分辨率坐标上标记一个点
func setBrailleDot(canvas [][]brailleCell, x, y int, color string) {
	canvasX := x / 2
	canvasY := y / 4
	if canvasX < 0 || canvasX >= len(canvas) || canvasY < 0 || canvasY >= len(canvas[0]) {
		return
	}
	canvas[canvasX][canvasY].char |= brailleDotMap[y%4][x%2]
	canvas[canvasX][canvasY].color = color
}

// drawBrailleLine 使用布雷森汉姆算法在盲文画布上绘制线段
func drawBrailleLine(canvas [][]brailleCell, x1, y1, x2, y2, maxHeight, maxWidth int, color string) {
	dx := abs(x2 - x1)
	dy := abs(y2 - y1)
	sx := 1
	if x1 > x2 {
		sx = -1
	}
	sy := 1
	if y1 > y2 {
		sy = -1
	}
	err := dx - dy

	x, y := x1, y1
	for {
		if y >= 0 && y < maxHeight && x >= 0 && x < maxWidth {
			setBrailleDot(canvas, x, y, color)
		}

		if x == x2 && y == y2 {
			break
		}

		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x += sx
		}
		if e2 < dx {
			err += dx
			y += sy
		}
	}
}
