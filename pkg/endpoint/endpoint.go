// Package endpoint 根据配置的后端地址推导实时流端点
package endpoint

import (
	"strings"

	"github.com/Kevin-Rudy/pulsesense/pkg/core"
)

const (
	// StreamPath 实时流的固定路径
	StreamPath = "/ws/live"

	loopbackLiteral = "127.0.0.1"
	loopbackAlias   = "localhost"
)

// Endpoints 一次会话中的两个候选端点，推导后不可修改
type Endpoints struct {
	Primary  string
	Fallback string
}

// Resolve 由后端地址推导主端点和备用端点
// base 应已带有协议前缀且没有结尾的斜杠
func Resolve(base string) Endpoints {
	return Endpoints{
		Primary:  toStream(base) + StreamPath,
		Fallback: toStream(substituteHost(base)) + StreamPath,
	}
}

// Select 按尝试次数的奇偶性选择端点：偶数为主端点，奇数为备用端点
func (e Endpoints) Select(attempt uint64) (string, core.EndpointRole) {
	if attempt%2 == 0 {
		return e.Primary, core.RolePrimary
	}
	return e.Fallback, core.RoleFallback
}

// Normalize 去掉首尾空白和结尾的斜杠
func Normalize(raw string) string {
	return strings.TrimRight(strings.TrimSpace(raw), "/")
}

// toStream 将HTTP协议替换为对应的websocket协议
func toStream(url string) string {
	switch {
	case hasPrefixFold(url, "http://"):
		return "ws://" + url[len("http://"):]
	case hasPrefixFold(url, "https://"):
		return "wss://" + url[len("https://"):]
	default:
		return url
	}
}

// substituteHost 只在主机部分把回环地址换成主机名别名
func substituteHost(url string) string {
	hostStart := 0
	if i := strings.Index(url, "://"); i >= 0 {
		hostStart = i + len("://")
	}
	hostEnd := len(url)
	if i := strings.IndexAny(url[hostStart:], "/?#"); i >= 0 {
		hostEnd = hostStart + i
	}

	host := strings.Replace(url[hostStart:hostEnd], loopbackLiteral, loopbackAlias, 1)
	return url[:hostStart] + host + url[hostEnd:]
}

func hasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}
