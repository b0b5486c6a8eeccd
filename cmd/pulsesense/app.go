package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Kevin-Rudy/pulsesense/pkg/core"
	"github.com/Kevin-Rudy/pulsesense/pkg/logger"
	"github.com/Kevin-Rudy/pulsesense/pkg/metrics"
	"github.com/Kevin-Rudy/pulsesense/pkg/stream"
	"github.com/Kevin-Rudy/pulsesense/pkg/tui"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

// runApp 主要应用逻辑处理函数
func runApp(c *cli.Context) error {
	if c.NArg() > 0 {
		return cli.Exit(fmt.Sprintf("错误: 不接受位置参数 %v，请使用 --backend 指定后端", c.Args().Slice()), 1)
	}

	// 构建并验证配置
	appConfig := buildConfigFromCLI(c)
	if err := validateConfig(appConfig); err != nil {
		return cli.Exit(fmt.Sprintf("配置验证失败: %v", err), 1)
	}

	log, err := logger.New(appConfig.LogFile, appConfig.LogLevel)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}
	defer func() { _ = log.Sync() }()

	fmt.Printf("正在启动 %s v%s...\n", AppName, AppVersion)
	printRunningConfig(appConfig)

	collector := metrics.NewCollector()
	appConfig.StreamConfig.Logger = log
	appConfig.StreamConfig.Recorder = collector

	client, err := stream.NewClient(appConfig.StreamConfig)
	if err != nil {
		return cli.Exit(fmt.Sprintf("无法创建连接管理器: %v", err), 1)
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if appConfig.MetricsAddr != "" {
		shutdown := serveMetrics(appConfig.MetricsAddr, collector, log)
		defer shutdown()
	}

	if appConfig.Headless {
		runHeadless(ctx, client, log)
	} else {
		fmt.Println("\n正在启动TUI界面...")
		printUsageInstructions()

		tuiInstance := tui.NewTUI(client, appConfig.StreamConfig.Backend, appConfig.TUIConfig)

		// 启动TUI界面，这会阻塞直到用户退出
		if err := tuiInstance.Run(ctx); err != nil {
			stop()
			return cli.Exit(fmt.Sprintf("TUI运行出错: %v", err), 1)
		}
	}

	// 取消ctx后等待连接管理器关闭当前连接
	stop()
	<-client.Done()

	fmt.Println("\n程序已退出")
	return nil
}

// serveMetrics 在后台启动 /metrics 服务，返回关闭函数
func serveMetrics(addr string, collector *metrics.Collector, log *zap.Logger) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", collector.Handler())

	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info("metrics server listening", zap.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("metrics server failed", zap.Error(err))
		}
	}()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = server.Shutdown(ctx)
	}
}

// runHeadless 不启动界面，每收到一个快照就写一条摘要日志
func runHeadless(ctx context.Context, source core.DataSource, log *zap.Logger) {
	source.Start(ctx)

	updates := source.Updates()
	for {
		select {
		case <-ctx.Done():
			return
		case snap := <-updates:
			log.Info("snapshot", snapshotFields(snap)...)
		}
	}
}

// snapshotFields 把快照摘要转换为日志字段
func snapshotFields(snap core.Snapshot) []zap.Field {
	fields := []zap.Field{
		zap.String("connectivity", snap.Connectivity.String()),
		zap.Uint64("attempts", snap.Connectivity.Attempts),
		zap.Int("feed", len(snap.Feed)),
	}
	if !snap.LastUpdate.IsZero() {
		fields = append(fields, zap.Time("last_update", snap.LastUpdate))
	}

	for _, kind := range core.AllKinds {
		series := snap.Metric(kind)
		if series.Latest == nil {
			continue
		}
		fields = append(fields,
			zap.Float64(kind.String(), series.Latest.Value),
			zap.String(kind.String()+"_status", series.Status.String()),
		)
	}
	return fields
}
