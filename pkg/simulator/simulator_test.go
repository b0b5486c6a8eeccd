package simulator

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Kevin-Rudy/pulsesense/pkg/classifier"
	"github.com/Kevin-Rudy/pulsesense/pkg/core"
	"golang.org/x/net/websocket"
)

// TestGeneratorRanges 测试随机游走的取值范围
func TestGeneratorRanges(t *testing.T) {
	g := NewGenerator(42, "p", "d")
	now := time.Now()

	for i := 0; i < 2000; i++ {
		readings := g.Next(now)
		if len(readings) != 3 {
			t.Fatalf("Expected 3 readings per tick, got %d", len(readings))
		}

		hr, temp, steps := readings[0], readings[1], readings[2]
		if hr.Kind != core.HeartRate || temp.Kind != core.Temperature || steps.Kind != core.Steps {
			t.Fatalf("Unexpected reading order: %v %v %v", hr.Kind, temp.Kind, steps.Kind)
		}
		if hr.Value < 50 || hr.Value > 140 {
			t.Errorf("Heart rate out of range: %f", hr.Value)
		}
		if temp.Value < 35.8 || temp.Value > 38.8 {
			t.Errorf("Temperature out of range: %f", temp.Value)
		}
		if steps.Value < 0 || steps.Value >= 160 {
			t.Errorf("Steps out of range: %f", steps.Value)
		}
	}
}

// TestGeneratorDeterministic 测试相同种子产生相同序列
func TestGeneratorDeterministic(t *testing.T) {
	a, b := NewGenerator(7, "p", "d"), NewGenerator(7, "p", "d")
	now := time.Now()

	for i := 0; i < 50; i++ {
		ra, rb := a.Next(now), b.Next(now)
		for j := range ra {
			if ra[j].Value != rb[j].Value {
				t.Fatalf("Tick %d reading %d differs: %f vs %f", i, j, ra[j].Value, rb[j].Value)
			}
		}
	}
}

// TestEncodeRoutesThroughClassifier 测试报文能被分类器正确路由
func TestEncodeRoutesThroughClassifier(t *testing.T) {
	g := NewGenerator(1, "patient-001", "device-001")
	now := time.Date(2024, 1, 2, 3, 4, 5, 600_000_000, time.UTC)

	for _, r := range g.Next(now) {
		payload, err := Encode(r)
		if err != nil {
			t.Fatalf("Encode failed: %v", err)
		}

		reading, err := classifier.Classify(payload)
		if err != nil {
			t.Fatalf("Classifier rejected simulator payload %s: %v", payload, err)
		}
		if !reading.Routed || reading.Kind != r.Kind {
			t.Errorf("Expected %s to route to %s, got %+v", SignalName(r.Kind), r.Kind, reading)
		}
		if reading.Point.Value != r.Value || !reading.Point.Timestamp.Equal(now) {
			t.Errorf("Point mismatch: %+v vs %+v", reading.Point, r)
		}
	}
}

// TestObservationShape 测试报文字段
func TestObservationShape(t *testing.T) {
	obs := ToObservation(Reading{PatientID: "p1", DeviceID: "d1", Kind: core.Steps, Value: 12, Unit: "steps/min"})

	if obs.ResourceType != "Observation" || obs.Status != "final" {
		t.Errorf("Unexpected resource fields: %+v", obs)
	}
	if obs.Subject.Reference != "Patient/p1" || obs.Device.Reference != "Device/d1" {
		t.Errorf("Unexpected references: %+v %+v", obs.Subject, obs.Device)
	}
	if obs.ID == "" {
		t.Error("Observation should have an id")
	}
}

// TestHubBroadcast 测试广播与注销
func TestHubBroadcast(t *testing.T) {
	hub := NewHub(1)
	id1, ch1 := hub.Add()
	_, ch2 := hub.Add()

	hub.Broadcast([]byte("a"))
	hub.Broadcast([]byte("b")) // 队列已满，被丢弃

	if got := string(<-ch1); got != "a" {
		t.Errorf("Expected 'a', got %q", got)
	}
	if got := string(<-ch2); got != "a" {
		t.Errorf("Expected 'a', got %q", got)
	}

	hub.Remove(id1)
	if _, ok := <-ch1; ok {
		t.Error("Channel should be closed after Remove")
	}
	if hub.Len() != 1 {
		t.Errorf("Expected 1 client, got %d", hub.Len())
	}
}

// TestServerHealthz 测试健康检查接口
func TestServerHealthz(t *testing.T) {
	srv, err := NewServer(DefaultConfig(), nil)
	if err != nil {
		t.Fatalf("NewServer failed: %v", err)
	}

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil || body["status"] != "ok" {
		t.Errorf("Unexpected body %q (err=%v)", rec.Body.String(), err)
	}
}

// TestServerLiveStream 测试websocket推送
func TestServerLiveStream(t *testing.T) {
	srv, err := NewServer(DefaultConfig(), nil)
	if err != nil {
		t.Fatalf("NewServer failed: %v", err)
	}
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/live"
	ws, err := websocket.Dial(wsURL, "", ts.URL)
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	defer ws.Close()

	var hello string
	if err := websocket.Message.Receive(ws, &hello); err != nil {
		t.Fatalf("Receive hello failed: %v", err)
	}
	if hello != string(helloMessage) {
		t.Errorf("Unexpected hello %q", hello)
	}

	// 等待服务端完成注册
	deadline := time.Now().Add(2 * time.Second)
	for srv.Hub().Len() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	srv.Tick(time.Now())

	for i := 0; i < 3; i++ {
		var msg []byte
		if err := websocket.Message.Receive(ws, &msg); err != nil {
			t.Fatalf("Receive observation failed: %v", err)
		}
		if _, err := classifier.Classify(msg); err != nil {
			t.Errorf("Streamed message should be an observation: %v", err)
		}
	}
}

// TestConfigValidate 测试配置校验
func TestConfigValidate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Interval = 0
	if err := cfg.Validate(); err == nil {
		t.Error("Expected error for zero interval")
	}

	cfg = DefaultConfig()
	cfg.PatientID = ""
	if err := cfg.Validate(); err == nil {
		t.Error("Expected error for empty patient id")
	}
}
