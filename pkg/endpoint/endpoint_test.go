package endpoint

import (
	"testing"

	"github.com/Kevin-Rudy/pulsesense/pkg/core"
)

// TestResolve 测试端点推导
func TestResolve(t *testing.T) {
	tests := []struct {
		base     string
		primary  string
		fallback string
	}{
		{"http://127.0.0.1:8080", "ws://127.0.0.1:8080/ws/live", "ws://localhost:8080/ws/live"},
		{"https://127.0.0.1", "wss://127.0.0.1/ws/live", "wss://localhost/ws/live"},
		{"HTTP://127.0.0.1:9000", "ws://127.0.0.1:9000/ws/live", "ws://localhost:9000/ws/live"},
		{"http://example.com:8080", "ws://example.com:8080/ws/live", "ws://example.com:8080/ws/live"},
		{"ws://127.0.0.1:1", "ws://127.0.0.1:1/ws/live", "ws://localhost:1/ws/live"},
	}

	for _, tt := range tests {
		got := Resolve(tt.base)
		if got.Primary != tt.primary {
			t.Errorf("Resolve(%q).Primary = %q, expected %q", tt.base, got.Primary, tt.primary)
		}
		if got.Fallback != tt.fallback {
			t.Errorf("Resolve(%q).Fallback = %q, expected %q", tt.base, got.Fallback, tt.fallback)
		}
	}
}

// TestResolveHostOnly 测试只替换主机部分
func TestResolveHostOnly(t *testing.T) {
	got := Resolve("http://127.0.0.1:8080/proxy/127.0.0.1")
	expected := "ws://localhost:8080/proxy/127.0.0.1/ws/live"
	if got.Fallback != expected {
		t.Errorf("Expected fallback %q, got %q", expected, got.Fallback)
	}
}

// TestSelectAlternation 测试端点按奇偶交替
func TestSelectAlternation(t *testing.T) {
	e := Resolve("http://127.0.0.1:8080")

	for attempt := uint64(0); attempt < 6; attempt++ {
		url, role := e.Select(attempt)
		if attempt%2 == 0 {
			if url != e.Primary || role != core.RolePrimary {
				t.Errorf("Attempt %d should use primary, got %s (%s)", attempt, url, role)
			}
		} else if url != e.Fallback || role != core.RoleFallback {
			t.Errorf("Attempt %d should use fallback, got %s (%s)", attempt, url, role)
		}
	}
}

// TestNormalize 测试地址规范化
func TestNormalize(t *testing.T) {
	if got := Normalize("  http://127.0.0.1:8080/// "); got != "http://127.0.0.1:8080" {
		t.Errorf("Unexpected normalized address %q", got)
	}
}
