// Package simulator 模拟可穿戴设备，生成心率、体温和步频读数
// 并通过 /ws/live 以观测报文的形式推送给所有已连接的客户端
package simulator

import (
	"math/rand"
	"time"

	"github.com/Kevin-Rudy/pulsesense/pkg/core"
)

// stepsMode 步频的运动模式
type stepsMode int

const (
	modeIdle stepsMode = iota
	modeWalk
	modeRun
)

// Reading 一次传感器读数
type Reading struct {
	PatientID string
	DeviceID  string
	Kind      core.MetricKind
	Value     float64
	Unit      string
	Timestamp time.Time
}

// Generator 带状态的随机游走信号源，曲线平滑且接近真实
// 不是并发安全的，由单个goroutine驱动
type Generator struct {
	rng       *rand.Rand
	patientID string
	deviceID  string

	heartRate   float64
	temperature float64

	mode          stepsMode
	modeTicksLeft int
}

// NewGenerator 使用给定种子创建信号源
func NewGenerator(seed int64, patientID, deviceID string) *Generator {
	rng := rand.New(rand.NewSource(seed))
	g := &Generator{
		rng:           rng,
		patientID:     patientID,
		deviceID:      deviceID,
		mode:          modeIdle,
		modeTicksLeft: 10,
	}
	g.heartRate = g.between(68.0, 82.0)
	g.temperature = g.between(36.4, 36.9)
	return g
}

// Next 生成一个节拍的读数：心率、体温、步频各一条
func (g *Generator) Next(now time.Time) []Reading {
	return []Reading{
		g.reading(core.HeartRate, g.nextHeartRate(), "bpm", now),
		g.reading(core.Temperature, g.nextTemperature(), "°C", now),
		g.reading(core.Steps, g.nextSteps(), "steps/min", now),
	}
}

// nextHeartRate 小幅漂移，偶尔出现短暂的尖峰
func (g *Generator) nextHeartRate() float64 {
	g.heartRate += g.between(-1.2, 1.2)
	if g.chance(0.05) {
		g.heartRate += g.between(6.0, 18.0)
	}
	g.heartRate = clamp(g.heartRate, 50.0, 140.0)
	return g.heartRate
}

// nextTemperature 非常缓慢的漂移，极少出现发热样升高
func (g *Generator) nextTemperature() float64 {
	g.temperature += g.between(-0.02, 0.02)
	if g.chance(0.01) {
		g.temperature += g.between(0.1, 0.4)
	}
	g.temperature = clamp(g.temperature, 35.8, 38.8)
	return g.temperature
}

// nextSteps 在静止、步行、跑步三种模式之间切换
func (g *Generator) nextSteps() float64 {
	g.modeTicksLeft--
	if g.modeTicksLeft <= 0 {
		g.mode = g.nextMode()
		switch g.mode {
		case modeIdle:
			g.modeTicksLeft = g.intBetween(6, 18)
		case modeWalk:
			g.modeTicksLeft = g.intBetween(8, 24)
		default:
			g.modeTicksLeft = g.intBetween(3, 10)
		}
	}

	switch g.mode {
	case modeIdle:
		return g.between(0.0, 8.0)
	case modeWalk:
		return g.between(20.0, 60.0)
	default:
		return g.between(90.0, 160.0)
	}
}

func (g *Generator) nextMode() stepsMode {
	switch g.mode {
	case modeIdle:
		if g.chance(0.55) {
			return modeWalk
		}
		return modeIdle
	case modeWalk:
		if g.chance(0.18) {
			return modeRun
		}
		if g.chance(0.25) {
			return modeIdle
		}
		return modeWalk
	default:
		// 跑步是短时爆发，随后回落
		if g.chance(0.45) {
			return modeWalk
		}
		return modeIdle
	}
}

func (g *Generator) reading(kind core.MetricKind, value float64, unit string, now time.Time) Reading {
	return Reading{
		PatientID: g.patientID,
		DeviceID:  g.deviceID,
		Kind:      kind,
		Value:     value,
		Unit:      unit,
		Timestamp: now,
	}
}

// between 返回 [lo, hi) 内的随机数
func (g *Generator) between(lo, hi float64) float64 {
	return lo + g.rng.Float64()*(hi-lo)
}

// intBetween 返回 [lo, hi) 内的随机整数
func (g *Generator) intBetween(lo, hi int) int {
	return lo + g.rng.Intn(hi-lo)
}

func (g *Generator) chance(p float64) bool {
	return g.rng.Float64() < p
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
