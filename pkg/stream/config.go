// Package stream 配置定义
package stream

import (
	"errors"
	"time"

	"github.com/Kevin-Rudy/pulsesense/pkg/series"
	"go.uber.org/zap"
)

// DefaultRetryDelay 连接断开后重连前的固定等待时间
const DefaultRetryDelay = 800 * time.Millisecond

// DefaultFeedSize 调试日志保留的报文条数
const DefaultFeedSize = 5

// Config 连接管理器的配置结构
type Config struct {
	Backend     string        // 后端基础地址，例如 http://127.0.0.1:8080
	Origin      string        // websocket握手使用的Origin，为空时使用Backend
	RetryDelay  time.Duration // 重连间隔，固定不增长
	DialTimeout time.Duration // 单次握手超时
	HistorySize int           // 每个指标的窗口容量
	FeedSize    int           // 调试日志容量

	Dialer   Dialer      // 传输层，为空时使用websocket
	Logger   *zap.Logger // 为空时不输出日志
	Recorder Recorder    // 指标记录器，为空时不记录
}

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		Backend:     "http://127.0.0.1:8080",
		RetryDelay:  DefaultRetryDelay,
		DialTimeout: 5 * time.Second,
		HistorySize: series.DefaultCapacity,
		FeedSize:    DefaultFeedSize,
	}
}

// Validate 验证配置的合理性
func (c *Config) Validate() error {
	if c.Backend == "" {
		return errors.New("后端地址不能为空")
	}

	if c.RetryDelay <= 0 {
		return errors.New("重连间隔必须大于0")
	}

	if c.DialTimeout <= 0 {
		return errors.New("握手超时必须大于0")
	}

	if c.HistorySize <= 0 {
		return errors.New("窗口容量必须大于0")
	}

	if c.HistorySize > 10000 {
		return errors.New("窗口容量不能超过10000")
	}

	if c.FeedSize <= 0 {
		return errors.New("调试日志容量必须大于0")
	}

	return nil
}
