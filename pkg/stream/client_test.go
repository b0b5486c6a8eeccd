package stream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Kevin-Rudy/pulsesense/pkg/core"
	"go.uber.org/zap/zaptest"
)

// fakeConn 模拟传输句柄，消息通过通道注入
type fakeConn struct {
	messages chan []byte
	closed   chan struct{}
	once     sync.Once
}

func newFakeConn() *fakeConn {
	return &fakeConn{
		messages: make(chan []byte, 32),
		closed:   make(chan struct{}),
	}
}

func (f *fakeConn) Receive() ([]byte, error) {
	select {
	case m := <-f.messages:
		return m, nil
	case <-f.closed:
		return nil, io.EOF
	}
}

func (f *fakeConn) Close() error {
	f.once.Do(func() { close(f.closed) })
	return nil
}

func (f *fakeConn) isClosed() bool {
	select {
	case <-f.closed:
		return true
	default:
		return false
	}
}

// fakeDialer 记录每次握手的端点和时间
type fakeDialer struct {
	mu    sync.Mutex
	urls  []string
	times []time.Time
	dial  func(ctx context.Context, n int, url string) (Conn, error)
}

func (d *fakeDialer) Dial(ctx context.Context, url string) (Conn, error) {
	d.mu.Lock()
	n := len(d.urls)
	d.urls = append(d.urls, url)
	d.times = append(d.times, time.Now())
	d.mu.Unlock()
	return d.dial(ctx, n, url)
}

func (d *fakeDialer) calls() ([]string, []time.Time) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.urls...), append([]time.Time(nil), d.times...)
}

func (d *fakeDialer) waitCalls(t *testing.T, n int) ([]string, []time.Time) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		urls, times := d.calls()
		if len(urls) >= n {
			return urls, times
		}
		time.Sleep(2 * time.Millisecond)
	}
	urls, _ := d.calls()
	t.Fatalf("Expected at least %d dial calls, got %d", n, len(urls))
	return nil, nil
}

func refuse(context.Context, int, string) (Conn, error) {
	return nil, errors.New("connection refused")
}

func newTestClient(t *testing.T, dialer Dialer, opts ...Option) *Client {
	t.Helper()
	all := []Option{
		WithBackend("http://127.0.0.1:8080"),
		WithRetryDelay(5 * time.Millisecond),
		WithDialer(dialer),
		WithLogger(zaptest.NewLogger(t)),
	}
	client, err := NewClientWithOptions(append(all, opts...)...)
	if err != nil {
		t.Fatalf("NewClientWithOptions failed: %v", err)
	}
	return client
}

func startClient(t *testing.T, client *Client) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	client.Start(ctx)
	t.Cleanup(func() {
		cancel()
		<-client.Done()
	})
}

func waitFor(t *testing.T, client *Client, cond func(core.Snapshot) bool) core.Snapshot {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if snap := client.Snapshot(); cond(snap) {
			return snap
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("Condition not met, last connectivity: %+v", client.Snapshot().Connectivity)
	return core.Snapshot{}
}

func observationJSON(ts time.Time, text string, value float64) []byte {
	return []byte(fmt.Sprintf(
		`{"resourceType":"Observation","effectiveDateTime":%q,"code":{"text":%q},"valueQuantity":{"value":%v}}`,
		ts.Format(time.RFC3339Nano), text, value))
}

// TestNewClientValidation 测试配置校验
func TestNewClientValidation(t *testing.T) {
	if _, err := NewClientWithOptions(WithRetryDelay(0)); err == nil {
		t.Error("Expected error for zero retry delay")
	}
	if _, err := NewClientWithOptions(WithBackend("")); err == nil {
		t.Error("Expected error for empty backend")
	}
	if _, err := NewClientWithOptions(WithHistorySize(0)); err == nil {
		t.Error("Expected error for zero history size")
	}

	client, err := NewClientWithOptions()
	if err != nil {
		t.Fatalf("Default config should be valid: %v", err)
	}
	if client.config.RetryDelay != 800*time.Millisecond {
		t.Errorf("Expected default retry delay 800ms, got %v", client.config.RetryDelay)
	}
	if state := client.Snapshot().Connectivity.State; state != core.StateIdle {
		t.Errorf("Expected idle state before Start, got %s", state)
	}
	if _, ok := client.dialer.(WebsocketDialer); !ok {
		t.Errorf("Expected websocket dialer by default, got %T", client.dialer)
	}
}

// TestClientAlternatesEndpoints 测试端点按尝试次数交替
func TestClientAlternatesEndpoints(t *testing.T) {
	dialer := &fakeDialer{dial: refuse}
	client := newTestClient(t, dialer)
	startClient(t, client)

	urls, _ := dialer.waitCalls(t, 8)
	endpoints := client.Endpoints()
	for i, url := range urls {
		expected := endpoints.Primary
		if i%2 == 1 {
			expected = endpoints.Fallback
		}
		if url != expected {
			t.Errorf("Attempt %d: expected %s, got %s", i, expected, url)
		}
	}

	snap := waitFor(t, client, func(s core.Snapshot) bool {
		return s.Connectivity.Attempts >= uint64(len(urls))
	})
	if snap.Connectivity.LastError != "connection refused" {
		t.Errorf("Expected last error to be recorded, got %q", snap.Connectivity.LastError)
	}
}

// TestClientRetryDelay 测试固定的重连间隔
func TestClientRetryDelay(t *testing.T) {
	const delay = 30 * time.Millisecond
	dialer := &fakeDialer{dial: refuse}
	client := newTestClient(t, dialer, WithRetryDelay(delay))
	startClient(t, client)

	_, times := dialer.waitCalls(t, 4)
	for i := 1; i < len(times); i++ {
		if gap := times[i].Sub(times[i-1]); gap < delay-5*time.Millisecond {
			t.Errorf("Gap between attempt %d and %d is %v, expected at least %v", i-1, i, gap, delay)
		}
	}
}

// TestClientIngest 测试报文分类与写入窗口
func TestClientIngest(t *testing.T) {
	conn := newFakeConn()
	dialer := &fakeDialer{dial: func(context.Context, int, string) (Conn, error) { return conn, nil }}
	client := newTestClient(t, dialer)
	startClient(t, client)

	waitFor(t, client, func(s core.Snapshot) bool { return s.Connectivity.State == core.StateConnected })

	base := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	conn.messages <- []byte(`not json`)
	conn.messages <- []byte(`{"type":"hello","msg":"connected"}`)
	conn.messages <- observationJSON(base, "Heart Rate", 130)
	conn.messages <- observationJSON(base.Add(time.Second), "Blood Pressure", 120)
	conn.messages <- observationJSON(base.Add(2*time.Second), "Body Temperature", 36.6)
	conn.messages <- observationJSON(base.Add(3*time.Second), "Steps per Minute", 0)

	snap := waitFor(t, client, func(s core.Snapshot) bool { return len(s.Feed) == 4 })

	hr := snap.Metric(core.HeartRate)
	if len(hr.Points) != 1 || hr.Points[0].Value != 130 || hr.Status != core.StatusHigh {
		t.Errorf("Unexpected heart rate series: %+v", hr)
	}
	temp := snap.Metric(core.Temperature)
	if len(temp.Points) != 1 || temp.Status != core.StatusNormal {
		t.Errorf("Unexpected temperature series: %+v", temp)
	}
	steps := snap.Metric(core.Steps)
	if len(steps.Points) != 1 || steps.Status != core.StatusIdle {
		t.Errorf("Unexpected steps series: %+v", steps)
	}
	if steps.Latest == nil || !steps.Latest.Timestamp.Equal(base.Add(3*time.Second)) {
		t.Errorf("Unexpected latest steps point: %+v", steps.Latest)
	}
	if !snap.LastUpdate.Equal(base.Add(3 * time.Second)) {
		t.Errorf("Expected last update %v, got %v", base.Add(3*time.Second), snap.LastUpdate)
	}
	if snap.Feed[1].CodeText != "Blood Pressure" {
		t.Errorf("Unroutable envelope should still be logged, got feed %+v", snap.Feed)
	}

	if window := client.Window(core.HeartRate); len(window) != 1 {
		t.Errorf("Window accessor should expose the heart rate series, got %d points", len(window))
	}
}

// TestClientSilentDrop 测试非法报文不产生任何副作用
func TestClientSilentDrop(t *testing.T) {
	conn := newFakeConn()
	dialer := &fakeDialer{dial: func(context.Context, int, string) (Conn, error) { return conn, nil }}
	client := newTestClient(t, dialer)
	startClient(t, client)

	waitFor(t, client, func(s core.Snapshot) bool { return s.Connectivity.State == core.StateConnected })

	marker := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	conn.messages <- []byte(`{"resourceType":"Observation"`)
	conn.messages <- []byte(`{"resourceType":"Patient","code":{"text":"Heart Rate"},"valueQuantity":{"value":80}}`)
	conn.messages <- observationJSON(marker, "Marker", 1)

	snap := waitFor(t, client, func(s core.Snapshot) bool { return len(s.Feed) > 0 })
	if len(snap.Feed) != 1 || snap.Feed[0].CodeText != "Marker" {
		t.Errorf("Only the marker should be logged, got %+v", snap.Feed)
	}
	for _, kind := range core.AllKinds {
		if n := len(snap.Metric(kind).Points); n != 0 {
			t.Errorf("Series %s should stay empty, got %d points", kind, n)
		}
		if snap.Metric(kind).Status != core.StatusUnknown {
			t.Errorf("Series %s should have unknown status", kind)
		}
	}
	if !snap.LastUpdate.Equal(marker) {
		t.Errorf("Expected last update from marker, got %v", snap.LastUpdate)
	}
}

// TestClientFeedBounded 测试调试日志只保留最近5条
func TestClientFeedBounded(t *testing.T) {
	conn := newFakeConn()
	dialer := &fakeDialer{dial: func(context.Context, int, string) (Conn, error) { return conn, nil }}
	client := newTestClient(t, dialer)
	startClient(t, client)

	waitFor(t, client, func(s core.Snapshot) bool { return s.Connectivity.State == core.StateConnected })

	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	for i := 1; i <= 7; i++ {
		conn.messages <- observationJSON(base.Add(time.Duration(i)*time.Second), "Heart Rate", float64(i))
	}

	snap := waitFor(t, client, func(s core.Snapshot) bool {
		latest := s.Metric(core.HeartRate).Latest
		return latest != nil && latest.Value == 7
	})

	if len(snap.Feed) != DefaultFeedSize {
		t.Fatalf("Expected %d feed entries, got %d", DefaultFeedSize, len(snap.Feed))
	}
	for i, env := range snap.Feed {
		expected := fmt.Sprintf(`"value":%d`, i+3)
		if !strings.Contains(string(env.Raw), expected) {
			t.Errorf("Feed entry %d should contain %s, got %s", i, expected, env.Raw)
		}
	}
}

// TestClientReconnectsToFallback 测试连接关闭后改用备用端点
func TestClientReconnectsToFallback(t *testing.T) {
	first, second := newFakeConn(), newFakeConn()
	dialer := &fakeDialer{dial: func(_ context.Context, n int, _ string) (Conn, error) {
		if n == 0 {
			return first, nil
		}
		return second, nil
	}}
	client := newTestClient(t, dialer)
	startClient(t, client)

	waitFor(t, client, func(s core.Snapshot) bool { return s.Connectivity.State == core.StateConnected })

	// 模拟服务端关闭连接
	first.Close()

	snap := waitFor(t, client, func(s core.Snapshot) bool {
		return s.Connectivity.Attempts == 2 && s.Connectivity.State == core.StateConnected
	})
	if snap.Connectivity.Role != core.RoleFallback || snap.Connectivity.Endpoint != client.Endpoints().Fallback {
		t.Errorf("Second connection should use fallback, got %+v", snap.Connectivity)
	}
	if snap.Connectivity.LastError != "" {
		t.Errorf("Successful connection should clear last error, got %q", snap.Connectivity.LastError)
	}

	urls, _ := dialer.calls()
	if len(urls) != 2 {
		t.Errorf("Expected exactly 2 dial calls, got %d", len(urls))
	}
}

// TestClientBadEndpoint 测试无法构造连接时同样重试
func TestClientBadEndpoint(t *testing.T) {
	dialer := &fakeDialer{dial: func(context.Context, int, string) (Conn, error) {
		t.Error("Dialer should not be called for a malformed endpoint")
		return nil, errors.New("unexpected")
	}}
	client := newTestClient(t, dialer, WithBackend("http://bad host:8080"))
	startClient(t, client)

	snap := waitFor(t, client, func(s core.Snapshot) bool {
		return s.Connectivity.Attempts >= 4 && s.Connectivity.State == core.StateDisconnected
	})
	if !strings.Contains(snap.Connectivity.LastError, ErrBadEndpoint.Error()) {
		t.Errorf("Expected bad endpoint error, got %q", snap.Connectivity.LastError)
	}
}

// TestClientStartIdempotent 测试重复启动不会产生额外连接
func TestClientStartIdempotent(t *testing.T) {
	dialer := &fakeDialer{dial: func(ctx context.Context, _ int, _ string) (Conn, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}}
	client := newTestClient(t, dialer, WithDialTimeout(time.Minute))

	ctx, cancel := context.WithCancel(context.Background())
	defer func() {
		cancel()
		<-client.Done()
	}()
	client.Start(ctx)
	client.Start(ctx)

	dialer.waitCalls(t, 1)
	time.Sleep(30 * time.Millisecond)
	if urls, _ := dialer.calls(); len(urls) != 1 {
		t.Errorf("Expected a single dial, got %d", len(urls))
	}
	if state := client.Snapshot().Connectivity.State; state != core.StateConnecting {
		t.Errorf("Expected connecting state while dial is pending, got %s", state)
	}
}

// TestClientContextCancel 测试ctx结束后释放连接
func TestClientContextCancel(t *testing.T) {
	conn := newFakeConn()
	dialer := &fakeDialer{dial: func(context.Context, int, string) (Conn, error) { return conn, nil }}
	client := newTestClient(t, dialer)

	ctx, cancel := context.WithCancel(context.Background())
	client.Start(ctx)
	waitFor(t, client, func(s core.Snapshot) bool { return s.Connectivity.State == core.StateConnected })

	cancel()
	select {
	case <-client.Done():
	case <-time.After(time.Second):
		t.Fatal("Event loop should exit after context cancel")
	}
	if !conn.isClosed() {
		t.Error("Open connection should be closed on exit")
	}
}

// TestClientUpdates 测试快照通知
func TestClientUpdates(t *testing.T) {
	dialer := &fakeDialer{dial: refuse}
	client := newTestClient(t, dialer)
	startClient(t, client)

	select {
	case snap := <-client.Updates():
		if snap.Connectivity.Attempts == 0 {
			t.Errorf("Published snapshot should reflect an attempt, got %+v", snap.Connectivity)
		}
	case <-time.After(time.Second):
		t.Fatal("Expected a snapshot on the updates channel")
	}
}
