// Package tui 快照处理模块
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/Kevin-Rudy/pulsesense/pkg/core"
)

// handleSnapshot 保存最新快照，下一次刷新时绘制
func (t *TUI) handleSnapshot(snap core.Snapshot) {
	t.snapMu.Lock()
	t.snapshot = snap
	t.snapMu.Unlock()
}

// currentSnapshot 返回最近一次收到的快照
func (t *TUI) currentSnapshot() core.Snapshot {
	t.snapMu.RLock()
	defer t.snapMu.RUnlock()
	return t.snapshot
}

// renderHeader 生成状态栏文本：后端地址、连接状态和最后更新时间
func (t *TUI) renderHeader(snap core.Snapshot) string {
	last := "—"
	if !snap.LastUpdate.IsZero() {
		last = snap.LastUpdate.Local().Format(time.TimeOnly)
	}

	return fmt.Sprintf("[green]PulseSense[white]  后端: [yellow]%s[white]\n%s%s[white]  最后更新: %s",
		t.backend, stateColor(snap.Connectivity.State), snap.Connectivity, last)
}

// renderStatusRow 生成单个指标的状态行
func (t *TUI) renderStatusRow(series core.SeriesSnapshot) string {
	value := "—"
	if series.Latest != nil {
		value = fmt.Sprintf("%s (%.1f)", series.Status, series.Latest.Value)
	}

	return fmt.Sprintf("%s%-18s[white] %s", kindColor(series.Kind), kindTitle(series.Kind), value)
}

// renderFeed 生成日志视图文本，最旧的报文在前
func (t *TUI) renderFeed(feed []core.Envelope) string {
	if len(feed) == 0 {
		return "[gray]等待数据...[white]"
	}

	if n := t.tuiConfig.FeedLines; len(feed) > n {
		feed = feed[len(feed)-n:]
	}

	lines := make([]string, 0, len(feed))
	for _, env := range feed {
		lines = append(lines, string(env.Raw))
	}
	return strings.Join(lines, "\n")
}
