package main

import (
	"fmt"

	"github.com/Kevin-Rudy/pulsesense/pkg/endpoint"
	"github.com/Kevin-Rudy/pulsesense/pkg/logger"
	"github.com/Kevin-Rudy/pulsesense/pkg/stream"
	"github.com/Kevin-Rudy/pulsesense/pkg/tui"
	"github.com/urfave/cli/v2"
)

// AppConfig 应用层配置聚合
type AppConfig struct {
	StreamConfig *stream.Config
	TUIConfig    *tui.Config
	LogFile      string
	LogLevel     string
	MetricsAddr  string
	Headless     bool
}

// buildConfigFromCLI 从命令行参数构建配置
func buildConfigFromCLI(c *cli.Context) *AppConfig {
	// 构建连接管理器配置
	streamConfig := stream.DefaultConfig()
	streamConfig.Backend = endpoint.Normalize(c.String("backend"))
	streamConfig.RetryDelay = c.Duration("retry-delay")
	streamConfig.DialTimeout = c.Duration("dial-timeout")
	streamConfig.HistorySize = c.Int("history")

	// 构建 TUI 配置
	tuiConfig := tui.DefaultConfig()
	if c.IsSet("refresh-rate") {
		tuiConfig.RefreshInterval = c.Duration("refresh-rate")
	}
	if c.IsSet("chart-width") {
		tuiConfig.MinChartWidth = c.Int("chart-width")
	}
	if c.IsSet("chart-height") {
		tuiConfig.MinChartHeight = c.Int("chart-height")
	}

	config := &AppConfig{
		StreamConfig: streamConfig,
		TUIConfig:    tuiConfig,
		LogFile:      c.String("log-file"),
		LogLevel:     c.String("log-level"),
		MetricsAddr:  c.String("metrics-addr"),
		Headless:     c.Bool("headless"),
	}

	// 无界面时日志默认写到标准错误
	if config.Headless && config.LogFile == "" {
		config.LogFile = logger.Stderr
	}

	return config
}

// validateConfig 验证配置的合理性
func validateConfig(config *AppConfig) error {
	if err := config.StreamConfig.Validate(); err != nil {
		return fmt.Errorf("连接配置错误: %w", err)
	}

	if err := config.TUIConfig.Validate(); err != nil {
		return fmt.Errorf("tui配置错误: %w", err)
	}

	return nil
}
