// Package tui 布局管理模块
package tui

import (
	"github.com/Kevin-Rudy/pulsesense/pkg/core"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

// setupUI 设置用户界面布局
// 布局自上而下：状态栏、每个指标一行状态、图表、最近报文
func (t *TUI) setupUI() {
	t.header.SetDynamicColors(true)
	t.header.SetText("[green]PulseSense 已启动[white] - [yellow]正在连接后端...[white]")

	// 设置图表属性
	t.chart.SetWordWrap(false)
	t.chart.SetDynamicColors(true)
	t.chart.SetText("[yellow]正在初始化，等待数据...[white]")

	t.logView.SetDynamicColors(true)
	t.logView.SetWordWrap(false)
	t.logView.SetBorder(true)
	t.logView.SetTitle(" 最近报文 ")
	t.logView.SetTitleAlign(tview.AlignLeft)

	// 创建主垂直布局
	t.flex = tview.NewFlex()
	t.flex.SetDirection(tview.FlexRow)
	t.flex.AddItem(t.header, 2, 0, false)

	t.statusRows = make([]*tview.TextView, 0, len(core.AllKinds))
	for range core.AllKinds {
		row := tview.NewTextView()
		row.SetDynamicColors(true)
		t.flex.AddItem(row, 1, 0, false)
		t.statusRows = append(t.statusRows, row)
	}

	t.flex.AddItem(t.chart, 0, 1, false)
	t.flex.AddItem(t.logView, t.tuiConfig.FeedLines+2, 0, false) // +2 为边框

	t.app.SetRoot(t.flex, true)
}

// refreshViews 用最新快照更新所有视图
func (t *TUI) refreshViews() {
	if t.testMode {
		return
	}

	snap := t.currentSnapshot()

	t.header.SetText(t.renderHeader(snap))
	for i, kind := range core.AllKinds {
		t.statusRows[i].SetText(t.renderStatusRow(snap.Metric(kind)))
	}
	t.logView.SetText(t.renderFeed(snap.Feed))

	t.updateSelection()
	t.updateChart()
}

// updateChart 更新图表显示
func (t *TUI) updateChart() {
	if t.testMode || t.chart == nil {
		return
	}

	// 获取图表视图的实际可绘制尺寸
	_, _, width, height := t.chart.GetInnerRect()

	// 确保有合理的最小尺寸
	if width < t.tuiConfig.MinChartWidth {
		width = 80
	}
	if height < t.tuiConfig.MinChartHeight {
		height = 15
	}

	t.chart.SetText(t.drawSelectedChart(t.currentSnapshot(), width, height))
}

// updateSelection 高亮当前选中的指标行
func (t *TUI) updateSelection() {
	if t.testMode || len(t.statusRows) == 0 {
		return
	}

	for i, row := range t.statusRows {
		if t.selectedRow == i {
			row.SetBackgroundColor(tcell.ColorDarkCyan)
		} else {
			row.SetBackgroundColor(tcell.ColorDefault)
		}
	}
}

// safeUIUpdate 安全地执行UI更新操作
func (t *TUI) safeUIUpdate(updateFunc func()) {
	defer func() {
		if r := recover(); r != nil {
			// 如果应用已经停止，忽略panic
		}
	}()
	t.app.QueueUpdateDraw(updateFunc)
}
