// Package stream 选项模式支持
package stream

import (
	"time"

	"go.uber.org/zap"
)

// Option 配置选项函数类型
type Option func(*Config)

// WithBackend 设置后端地址
func WithBackend(backend string) Option {
	return func(c *Config) {
		c.Backend = backend
	}
}

// WithRetryDelay 设置重连间隔
func WithRetryDelay(delay time.Duration) Option {
	return func(c *Config) {
		c.RetryDelay = delay
	}
}

// WithDialTimeout 设置握手超时
func WithDialTimeout(timeout time.Duration) Option {
	return func(c *Config) {
		c.DialTimeout = timeout
	}
}

// WithHistorySize 设置窗口容量
func WithHistorySize(size int) Option {
	return func(c *Config) {
		c.HistorySize = size
	}
}

// WithDialer 替换传输层
func WithDialer(d Dialer) Option {
	return func(c *Config) {
		c.Dialer = d
	}
}

// WithLogger 设置日志记录器
func WithLogger(l *zap.Logger) Option {
	return func(c *Config) {
		c.Logger = l
	}
}

// WithRecorder 设置指标记录器
func WithRecorder(r Recorder) Option {
	return func(c *Config) {
		c.Recorder = r
	}
}

// NewClientWithOptions 使用选项模式创建客户端
func NewClientWithOptions(opts ...Option) (*Client, error) {
	config := DefaultConfig()

	// 应用所有选项
	for _, opt := range opts {
		opt(config)
	}

	return NewClient(config)
}
