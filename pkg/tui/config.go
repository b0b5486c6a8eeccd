// Package tui 配置定义
package tui

import (
	"errors"
	"time"
)

// Config TUI组件的配置结构
type Config struct {
	RefreshInterval  time.Duration // UI刷新间隔
	MinChartWidth    int           // 最小图表宽度
	MinChartHeight   int           // 最小图表高度
	MaxChartSize     int           // 最大图表尺寸（防止极端值）
	ValueBufferRatio float64       // Y轴上下各留出值范围的比例
	MinValuePadding  float64       // 值范围为0时的上下留白
	FeedLines        int           // 日志视图显示的报文条数
}

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		RefreshInterval:  200 * time.Millisecond, // 默认200ms刷新
		MinChartWidth:    20,                     // 最小图表宽度
		MinChartHeight:   5,                      // 最小图表高度
		MaxChartSize:     1000,                   // 最大图表尺寸
		ValueBufferRatio: 0.15,                   // 15%缓冲
		MinValuePadding:  1,
		FeedLines:        5,
	}
}

// Validate 验证配置的合理性
func (c *Config) Validate() error {
	if c.RefreshInterval <= 0 {
		return errors.New("UI刷新间隔必须大于0")
	}

	if c.RefreshInterval < 10*time.Millisecond {
		return errors.New("UI刷新间隔不能小于10ms")
	}

	if c.MinChartWidth <= 0 {
		return errors.New("最小图表宽度必须大于0")
	}

	if c.MinChartHeight <= 0 {
		return errors.New("最小图表高度必须大于0")
	}

	if c.MaxChartSize <= 0 {
		return errors.New("最大图表尺寸必须大于0")
	}

	if c.ValueBufferRatio < 0 {
		return errors.New("值缓冲比例不能为负数")
	}

	if c.MinValuePadding <= 0 {
		return errors.New("最小留白必须大于0")
	}

	if c.FeedLines <= 0 {
		return errors.New("日志条数必须大于0")
	}

	return nil
}
