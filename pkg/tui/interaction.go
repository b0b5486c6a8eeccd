// Package tui 交互控制模块
package tui

import (
	"github.com/Kevin-Rudy/pulsesense/pkg/core"
	"github.com/gdamore/tcell/v2"
)

// setupKeyBindings 设置键盘绑定
func (t *TUI) setupKeyBindings() {
	t.app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyCtrlC:
			t.Stop()
			return nil
		case tcell.KeyRune:
			switch event.Rune() {
			case 'q', 'Q':
				t.Stop()
				return nil
			}
		case tcell.KeyUp:
			t.navigateUp()
			return nil
		case tcell.KeyDown:
			t.navigateDown()
			return nil
		}
		return event
	})
}

// navigateUp 向上导航
func (t *TUI) navigateUp() {
	n := len(core.AllKinds)

	if t.selectedRow == -1 {
		// 从全选状态按上键，选择最后一个指标
		t.selectedRow = n - 1
	} else if t.selectedRow > 0 {
		t.selectedRow--
	} else {
		// 在第一个指标时按上键，返回全选状态
		t.selectedRow = -1
	}

	if !t.testMode {
		t.updateSelection()
		t.updateChart()
	}
}

// navigateDown 向下导航
func (t *TUI) navigateDown() {
	n := len(core.AllKinds)

	if t.selectedRow == -1 {
		// 从全选状态按下键，选择第一个指标
		t.selectedRow = 0
	} else if t.selectedRow < n-1 {
		t.selectedRow++
	} else {
		// 在最后一个指标时按下键，返回全选状态
		t.selectedRow = -1
	}

	if !t.testMode {
		t.updateSelection()
		t.updateChart()
	}
}
