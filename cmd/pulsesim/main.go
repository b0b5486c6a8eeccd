package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Kevin-Rudy/pulsesense/pkg/endpoint"
	"github.com/Kevin-Rudy/pulsesense/pkg/logger"
	"github.com/Kevin-Rudy/pulsesense/pkg/simulator"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

// 程序信息常量
const (
	AppName    = "pulsesim"
	AppVersion = "0.1.0"
	AppDesc    = "生命体征遥测模拟器，通过websocket推送观测报文"
)

func main() {
	app := &cli.App{
		Name:    AppName,
		Version: AppVersion,
		Usage:   AppDesc,
		Flags:   createCliFlags(),
		Action:  runApp,
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// createCliFlags 创建CLI参数定义
func createCliFlags() []cli.Flag {
	defaults := simulator.DefaultConfig()

	return []cli.Flag{
		&cli.StringFlag{
			Name:    "listen",
			Aliases: []string{"l"},
			Value:   defaults.Listen,
			Usage:   "监听地址",
			EnvVars: []string{"PULSESIM_LISTEN"},
		},
		&cli.DurationFlag{
			Name:    "interval",
			Aliases: []string{"n"},
			Value:   defaults.Interval,
			Usage:   "推送间隔 (例如: 800ms, 1s)",
			EnvVars: []string{"PULSESIM_INTERVAL"},
		},
		&cli.StringFlag{
			Name:    "patient",
			Value:   defaults.PatientID,
			Usage:   "报文中的患者编号",
			EnvVars: []string{"PULSESIM_PATIENT_ID"},
		},
		&cli.StringFlag{
			Name:    "device",
			Value:   defaults.DeviceID,
			Usage:   "报文中的设备编号",
			EnvVars: []string{"PULSESIM_DEVICE_ID"},
		},
		&cli.Int64Flag{
			Name:  "seed",
			Usage: "随机种子，为0时使用当前时间",
		},
		&cli.StringFlag{
			Name:  "log-level",
			Value: "info",
			Usage: "日志级别 (debug, info, warn, error)",
		},
	}
}

// runApp 启动HTTP服务和推送循环，直到收到退出信号
func runApp(c *cli.Context) error {
	config := simulator.DefaultConfig()
	config.Listen = c.String("listen")
	config.Interval = c.Duration("interval")
	config.PatientID = c.String("patient")
	config.DeviceID = c.String("device")
	if seed := c.Int64("seed"); seed != 0 {
		config.Seed = seed
	}

	log, err := logger.New(logger.Stderr, c.String("log-level"))
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}
	defer func() { _ = log.Sync() }()

	srv, err := simulator.NewServer(config, log)
	if err != nil {
		return cli.Exit(fmt.Sprintf("配置验证失败: %v", err), 1)
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	httpServer := &http.Server{
		Addr:              config.Listen,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("simulator listening",
			zap.String("addr", config.Listen),
			zap.String("stream", "ws://"+config.Listen+endpoint.StreamPath),
			zap.Duration("interval", config.Interval),
		)
		errCh <- httpServer.ListenAndServe()
	}()

	runDone := make(chan struct{})
	go func() {
		defer close(runDone)
		srv.Run(ctx)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			stop()
			<-runDone
			return cli.Exit(fmt.Sprintf("HTTP服务出错: %v", err), 1)
		}
	}

	stop()
	<-runDone

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Warn("http shutdown", zap.Error(err))
	}

	log.Info("simulator stopped")
	return nil
}
