// Package tui 提供实时生命体征仪表盘的终端用户界面
// 界面只读取数据源发布的快照，从不修改连接管理器的内部状态
package tui

import (
	"context"
	"sync"
	"time"

	"github.com/Kevin-Rudy/pulsesense/pkg/core"
	"github.com/rivo/tview"
)

// TUI 主界面结构
type TUI struct {
	app        *tview.Application
	header     *tview.TextView
	statusRows []*tview.TextView
	chart      *tview.TextView
	logView    *tview.TextView
	flex       *tview.Flex
	dataSource core.DataSource

	// 配置信息
	tuiConfig *Config
	backend   string // 显示用的后端地址

	// 最近一次收到的快照
	snapshot core.Snapshot
	snapMu   sync.RWMutex

	// 界面状态，-1 表示同时显示全部指标
	selectedRow int

	// 控制
	stopChan chan struct{}
	stopOnce sync.Once
	doneChan chan struct{}

	// 测试模式标志
	testMode bool
}

// NewTUI 创建新的TUI实例
func NewTUI(dataSource core.DataSource, backend string, tuiConfig *Config) *TUI {
	tui := &TUI{
		app:         tview.NewApplication(),
		header:      tview.NewTextView(),
		chart:       tview.NewTextView(),
		logView:     tview.NewTextView(),
		dataSource:  dataSource,
		tuiConfig:   tuiConfig,
		backend:     backend,
		snapshot:    dataSource.Snapshot(),
		selectedRow: -1, // 默认全选状态
		stopChan:    make(chan struct{}),
		doneChan:    make(chan struct{}),
	}

	tui.setupUI()
	tui.setupKeyBindings()

	return tui
}

// NewTUIForTest 创建用于测试的TUI实例（不初始化图形组件）
func NewTUIForTest(dataSource core.DataSource, backend string, tuiConfig *Config) *TUI {
	return &TUI{
		app:         tview.NewApplication(), // 创建一个应用实例，但不会运行
		dataSource:  dataSource,
		tuiConfig:   tuiConfig,
		backend:     backend,
		snapshot:    dataSource.Snapshot(),
		selectedRow: -1,
		stopChan:    make(chan struct{}),
		doneChan:    make(chan struct{}),
		testMode:    true,
	}
}

// Run 启动数据源并运行界面，直到用户退出或 ctx 被取消
func (t *TUI) Run(ctx context.Context) error {
	t.dataSource.Start(ctx)

	go t.processData(ctx)

	err := t.app.Run()

	// app.Run 出错返回时也要让processData退出
	t.closeStop()
	<-t.doneChan

	return err
}

// Stop 停止TUI界面
func (t *TUI) Stop() {
	t.closeStop()
	t.app.Stop()
}

func (t *TUI) closeStop() {
	t.stopOnce.Do(func() { close(t.stopChan) })
}

// processData 接收数据源的快照，并按固定间隔重绘
func (t *TUI) processData(ctx context.Context) {
	defer close(t.doneChan)

	updates := t.dataSource.Updates()
	uiTicker := time.NewTicker(t.tuiConfig.RefreshInterval)
	defer uiTicker.Stop()

	t.handleUIRefresh()

	for {
		select {
		case snap := <-updates:
			t.handleSnapshot(snap)

		case <-uiTicker.C:
			t.handleUIRefresh()

		case <-ctx.Done():
			if !t.testMode {
				t.app.Stop()
			}
			return

		case <-t.stopChan:
			return
		}
	}
}

// handleUIRefresh 处理UI刷新
func (t *TUI) handleUIRefresh() {
	if !t.testMode && t.app != nil {
		t.safeUIUpdate(func() {
			t.refreshViews()
		})
	}
}
