// Package simulator 配置定义
package simulator

import (
	"errors"
	"time"
)

// Config 模拟器的配置结构
type Config struct {
	Listen    string        // 监听地址
	Interval  time.Duration // 每个节拍的间隔
	PatientID string        // 报文中的患者编号
	DeviceID  string        // 报文中的设备编号
	Seed      int64         // 随机种子
	HubBuffer int           // 每个客户端的待发送队列长度
}

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		Listen:    "127.0.0.1:8080",
		Interval:  800 * time.Millisecond,
		PatientID: "demo-patient-1",
		DeviceID:  "simulator-1",
		Seed:      time.Now().UnixNano(),
		HubBuffer: 64,
	}
}

// Validate 验证配置的合理性
func (c *Config) Validate() error {
	if c.Listen == "" {
		return errors.New("监听地址不能为空")
	}

	if c.Interval <= 0 {
		return errors.New("节拍间隔必须大于0")
	}

	if c.PatientID == "" || c.DeviceID == "" {
		return errors.New("患者编号和设备编号不能为空")
	}

	if c.HubBuffer <= 0 {
		return errors.New("客户端队列长度必须大于0")
	}

	return nil
}
