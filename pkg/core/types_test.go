package core

import (
	"context"
	"strings"
	"testing"
	"time"
)

// TestMetricKindString 测试指标名称和单位
func TestMetricKindString(t *testing.T) {
	tests := []struct {
		kind MetricKind
		name string
		unit string
	}{
		{HeartRate, "heart_rate", "bpm"},
		{Temperature, "temperature", "°C"},
		{Steps, "steps", "steps/min"},
		{MetricKind(42), "unknown", ""},
	}

	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.name {
			t.Errorf("Expected name %q, got %q", tt.name, got)
		}
		if got := tt.kind.Unit(); got != tt.unit {
			t.Errorf("Expected unit %q for %s, got %q", tt.unit, tt.name, got)
		}
	}
}

// TestStatusLabelString 测试状态标签文本
func TestStatusLabelString(t *testing.T) {
	if StatusUnknown.String() != "—" {
		t.Errorf("Expected placeholder for unknown status, got %q", StatusUnknown.String())
	}
	if StatusActive.String() != "Active" {
		t.Errorf("Expected 'Active', got %q", StatusActive.String())
	}
}

// TestTelemetryPointValidTime 测试无效时间戳的判定
func TestTelemetryPointValidTime(t *testing.T) {
	if (TelemetryPoint{Value: 1}).ValidTime() {
		t.Error("Zero timestamp should not be valid")
	}
	if !(TelemetryPoint{Timestamp: time.Now(), Value: 1}).ValidTime() {
		t.Error("Real timestamp should be valid")
	}
}

// TestConnectivityString 测试连接状态文本
func TestConnectivityString(t *testing.T) {
	c := Connectivity{State: StateConnecting, Role: RoleFallback, Endpoint: "ws://localhost:8080/ws/live"}
	if got := c.String(); !strings.Contains(got, "connecting") || !strings.Contains(got, "fallback") {
		t.Errorf("Unexpected connecting text: %q", got)
	}

	c = Connectivity{State: StateDisconnected, LastError: "EOF"}
	if got := c.String(); !strings.Contains(got, "EOF") || !strings.Contains(got, "retrying") {
		t.Errorf("Unexpected disconnected text: %q", got)
	}

	if got := (Connectivity{}).String(); got != "idle" {
		t.Errorf("Expected 'idle', got %q", got)
	}
}

// TestSnapshotMetric 测试按指标读取快照
func TestSnapshotMetric(t *testing.T) {
	var snap Snapshot
	snap.Series[Steps] = SeriesSnapshot{Kind: Steps, Status: StatusIdle}

	if got := snap.Metric(Steps); got.Status != StatusIdle {
		t.Errorf("Expected Idle status, got %v", got.Status)
	}

	if got := snap.Metric(MetricKind(9)); got.Kind != MetricKind(9) || len(got.Points) != 0 {
		t.Errorf("Out of range kind should return an empty series, got %+v", got)
	}
}

// mockDataSource 模拟数据源，用于测试
type mockDataSource struct {
	updates chan Snapshot
	started bool
}

func newMockDataSource() *mockDataSource {
	return &mockDataSource{updates: make(chan Snapshot, 1)}
}

func (m *mockDataSource) Start(ctx context.Context) {
	m.started = true
	m.updates <- Snapshot{LastUpdate: time.Unix(1, 0)}
}

func (m *mockDataSource) Snapshot() Snapshot { return Snapshot{} }

func (m *mockDataSource) Updates() <-chan Snapshot { return m.updates }

// TestDataSourceInterface 测试DataSource接口
func TestDataSourceInterface(t *testing.T) {
	var source DataSource = newMockDataSource()

	source.Start(context.Background())

	select {
	case snap := <-source.Updates():
		if !snap.LastUpdate.Equal(time.Unix(1, 0)) {
			t.Errorf("Unexpected snapshot: %+v", snap)
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatal("Should receive a snapshot after Start")
	}
}
