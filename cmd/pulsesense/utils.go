package main

import (
	"fmt"

	"github.com/Kevin-Rudy/pulsesense/pkg/endpoint"
)

// 程序信息常量
const (
	AppName    = "pulsesense"
	AppVersion = "0.1.0"
	AppDesc    = "实时生命体征遥测终端仪表盘"
)

// printRunningConfig 打印运行配置信息
func printRunningConfig(config *AppConfig) {
	eps := endpoint.Resolve(config.StreamConfig.Backend)

	fmt.Printf("后端地址: %s\n", config.StreamConfig.Backend)
	fmt.Printf("主端点: %s\n", eps.Primary)
	fmt.Printf("备用端点: %s\n", eps.Fallback)
	fmt.Printf("重连间隔: %v\n", config.StreamConfig.RetryDelay)
	fmt.Printf("窗口容量: %d\n", config.StreamConfig.HistorySize)
	if config.MetricsAddr != "" {
		fmt.Printf("指标地址: http://%s/metrics\n", config.MetricsAddr)
	}
}

// printUsageInstructions 显示TUI操作说明
func printUsageInstructions() {
	fmt.Println("操作说明:")
	fmt.Println("  ↑/↓ 方向键  - 选择指标")
	fmt.Println("  在边界继续按方向键 - 切换到全部指标")
	fmt.Println("  q 或 Ctrl+C - 退出程序")
	fmt.Println("========================================")
}
