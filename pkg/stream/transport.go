// Package stream 传输层
package stream

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"golang.org/x/net/websocket"
)

// ErrBadEndpoint 端点地址无法构造连接
var ErrBadEndpoint = errors.New("端点地址无效")

// Conn 一个已打开的传输句柄
// Receive 阻塞直到收到下一条消息或连接关闭
type Conn interface {
	Receive() ([]byte, error)
	Close() error
}

// Dialer 打开到端点的传输句柄
type Dialer interface {
	Dial(ctx context.Context, endpoint string) (Conn, error)
}

// WebsocketDialer 基于 golang.org/x/net/websocket 的传输层
type WebsocketDialer struct {
	Origin string
}

// Dial 完成websocket握手
func (d WebsocketDialer) Dial(ctx context.Context, endpoint string) (Conn, error) {
	cfg, err := websocket.NewConfig(endpoint, d.Origin)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadEndpoint, err)
	}

	ws, err := cfg.DialContext(ctx)
	if err != nil {
		return nil, err
	}
	return &websocketConn{ws: ws}, nil
}

type websocketConn struct {
	ws *websocket.Conn
}

func (c *websocketConn) Receive() ([]byte, error) {
	var data []byte
	if err := websocket.Message.Receive(c.ws, &data); err != nil {
		return nil, err
	}
	return data, nil
}

func (c *websocketConn) Close() error {
	return c.ws.Close()
}

// checkEndpoint 同步检查端点地址能否用于建立流连接
func checkEndpoint(endpoint string) error {
	u, err := url.Parse(endpoint)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBadEndpoint, err)
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return fmt.Errorf("%w: 不支持的协议 %q", ErrBadEndpoint, u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("%w: 缺少主机", ErrBadEndpoint)
	}
	return nil
}
