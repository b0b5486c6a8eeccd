package simulator

import (
	"encoding/json"
	"time"

	"github.com/Kevin-Rudy/pulsesense/pkg/core"
	"github.com/google/uuid"
)

// Reference FHIR资源引用
type Reference struct {
	Reference string `json:"reference"`
}

// CodeableText 只带文本的编码
type CodeableText struct {
	Text string `json:"text"`
}

// Quantity 带单位的数值
type Quantity struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
}

// Observation 推送到实时流的观测报文
type Observation struct {
	ResourceType      string       `json:"resourceType"`
	ID                string       `json:"id"`
	Status            string       `json:"status"`
	Code              CodeableText `json:"code"`
	Subject           Reference    `json:"subject"`
	Device            Reference    `json:"device"`
	EffectiveDateTime time.Time    `json:"effectiveDateTime"`
	ValueQuantity     Quantity     `json:"valueQuantity"`
}

// helloMessage 客户端连接后收到的第一条消息
var helloMessage = []byte(`{"type":"hello","msg":"connected"}`)

// SignalName 返回指标在报文code.text中的名称
func SignalName(kind core.MetricKind) string {
	switch kind {
	case core.HeartRate:
		return "Heart Rate"
	case core.Temperature:
		return "Body Temperature"
	case core.Steps:
		return "Steps per Minute"
	default:
		return "Unknown"
	}
}

// ToObservation 把读数转换为观测报文
func ToObservation(r Reading) Observation {
	return Observation{
		ResourceType:      "Observation",
		ID:                uuid.NewString(),
		Status:            "final",
		Code:              CodeableText{Text: SignalName(r.Kind)},
		Subject:           Reference{Reference: "Patient/" + r.PatientID},
		Device:            Reference{Reference: "Device/" + r.DeviceID},
		EffectiveDateTime: r.Timestamp.UTC(),
		ValueQuantity:     Quantity{Value: r.Value, Unit: r.Unit},
	}
}

// Encode 把读数编码为JSON报文
func Encode(r Reading) ([]byte, error) {
	return json.Marshal(ToObservation(r))
}
