// Package classifier 校验并解码实时流中的观测报文
package classifier

import (
	"errors"
	"strings"
	"time"

	"github.com/Kevin-Rudy/pulsesense/pkg/core"
	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
)

// ObservationType 唯一接受的报文类型
const ObservationType = "Observation"

var (
	// ErrMalformed 报文不是合法的JSON
	ErrMalformed = errors.New("报文不是合法的JSON")
	// ErrNotObservation 报文合法但不是观测报文
	ErrNotObservation = errors.New("报文不是观测报文")
)

// 报文字段路径
const (
	fieldResourceType = "resourceType"
	fieldEffective    = "effectiveDateTime"
	fieldCodeText     = "code.text"
	fieldValue        = "valueQuantity.value"
)

// 按优先级排列的指标关键字
var routes = []struct {
	keyword string
	kind    core.MetricKind
}{
	{"heart", core.HeartRate},
	{"temperature", core.Temperature},
	{"steps", core.Steps},
}

// 依次尝试的时间格式
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// Reading 一条已接受的观测报文的解码结果
type Reading struct {
	Envelope core.Envelope
	Kind     core.MetricKind
	Point    core.TelemetryPoint
	Routed   bool // 同时确定了指标类型和数值时为true
}

// Classify 解码报文
// 非法JSON返回ErrMalformed，非观测报文返回ErrNotObservation，
// 两种情况调用方都应静默丢弃。返回nil错误表示报文已被接受，
// 即使没有提取出数据点。
func Classify(payload []byte) (Reading, error) {
	if !gjson.ValidBytes(payload) {
		return Reading{}, ErrMalformed
	}

	doc := gjson.ParseBytes(payload)
	if !doc.IsObject() {
		return Reading{}, ErrNotObservation
	}
	if rt := doc.Get(fieldResourceType); rt.Type != gjson.String || rt.Str != ObservationType {
		return Reading{}, ErrNotObservation
	}

	codeText := ""
	if text := doc.Get(fieldCodeText); text.Type == gjson.String {
		codeText = text.Str
	}

	effective := parseTime(doc.Get(fieldEffective))

	reading := Reading{
		Envelope: core.Envelope{
			Raw:         pretty.Ugly(payload),
			EffectiveAt: effective,
			CodeText:    codeText,
		},
	}

	kind, ok := route(codeText)
	if !ok {
		return reading, nil
	}

	value := doc.Get(fieldValue)
	if value.Type != gjson.Number {
		return reading, nil
	}

	reading.Kind = kind
	reading.Point = core.TelemetryPoint{Timestamp: effective, Value: value.Num}
	reading.Routed = true
	return reading, nil
}

// route 按子串匹配确定指标类型
func route(codeText string) (core.MetricKind, bool) {
	lower := strings.ToLower(codeText)
	for _, r := range routes {
		if strings.Contains(lower, r.keyword) {
			return r.kind, true
		}
	}
	return 0, false
}

// parseTime 解析观测时间，失败时返回零值
func parseTime(field gjson.Result) time.Time {
	if field.Type != gjson.String {
		return time.Time{}
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, field.Str); err == nil {
			return t
		}
	}
	return time.Time{}
}
