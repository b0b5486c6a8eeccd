package main

import (
	"fmt"
	"runtime"
	"time"

	"github.com/Kevin-Rudy/pulsesense/pkg/endpoint"
	"github.com/Kevin-Rudy/pulsesense/pkg/series"
	"github.com/Kevin-Rudy/pulsesense/pkg/stream"
	"github.com/urfave/cli/v2"
)

// createCliApp 创建CLI应用实例
func createCliApp() *cli.App {
	app := &cli.App{
		Name:    AppName,
		Version: AppVersion,
		Usage:   AppDesc,
		Flags:   createCliFlags(),
		Action:  runApp,
	}

	// 添加版本子命令
	app.Commands = createCommands()

	return app
}

// createCliFlags 创建CLI参数定义
func createCliFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "backend",
			Aliases: []string{"b"},
			Value:   "http://127.0.0.1:8080",
			Usage:   "后端基础地址，实时流路径为 " + endpoint.StreamPath,
			EnvVars: []string{"PULSESENSE_BACKEND"},
		},
		&cli.DurationFlag{
			Name:    "retry-delay",
			Value:   stream.DefaultRetryDelay,
			Usage:   "连接断开后的重连间隔 (例如: 800ms, 2s)",
			EnvVars: []string{"PULSESENSE_RETRY_DELAY"},
		},
		&cli.DurationFlag{
			Name:    "dial-timeout",
			Value:   5 * time.Second,
			Usage:   "单次握手超时",
			EnvVars: []string{"PULSESENSE_DIAL_TIMEOUT"},
		},
		&cli.IntFlag{
			Name:  "history",
			Value: series.DefaultCapacity,
			Usage: "每个指标保留的数据点数量",
		},
		&cli.DurationFlag{
			Name:    "refresh-rate",
			Aliases: []string{"r"},
			Value:   200 * time.Millisecond,
			Usage:   "UI刷新频率 (例如: 100ms, 500ms)",
		},
		&cli.IntFlag{
			Name:  "chart-width",
			Value: 20,
			Usage: "最小图表宽度",
		},
		&cli.IntFlag{
			Name:  "chart-height",
			Value: 5,
			Usage: "最小图表高度",
		},
		&cli.StringFlag{
			Name:    "log-file",
			Usage:   "日志文件路径，\"-\" 表示标准错误；界面模式下为空时不记录日志",
			EnvVars: []string{"PULSESENSE_LOG_FILE"},
		},
		&cli.StringFlag{
			Name:    "log-level",
			Value:   "info",
			Usage:   "日志级别 (debug, info, warn, error)",
			EnvVars: []string{"PULSESENSE_LOG_LEVEL"},
		},
		&cli.StringFlag{
			Name:    "metrics-addr",
			Usage:   "Prometheus指标监听地址，例如 127.0.0.1:9100，为空时不启用",
			EnvVars: []string{"PULSESENSE_METRICS_ADDR"},
		},
		&cli.BoolFlag{
			Name:  "headless",
			Usage: "不启动界面，只把快照摘要写入日志",
		},
	}
}

// createCommands 创建子命令
func createCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:    "version",
			Aliases: []string{"v"},
			Usage:   "显示详细版本信息",
			Action: func(c *cli.Context) error {
				fmt.Printf("%s v%s\n", AppName, AppVersion)
				fmt.Printf("描述: %s\n", AppDesc)
				fmt.Printf("系统: %s/%s\n", runtime.GOOS, runtime.GOARCH)
				fmt.Printf("实时流路径: %s\n", endpoint.StreamPath)
				return nil
			},
		},
	}
}
