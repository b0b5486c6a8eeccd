package simulator

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/websocket"
)

// Server 提供 /healthz 和 /ws/live 两个接口
type Server struct {
	config    *Config
	hub       *Hub
	generator *Generator
	logger    *zap.Logger
}

// NewServer 创建模拟器服务
func NewServer(config *Config, logger *zap.Logger) (*Server, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Server{
		config:    config,
		hub:       NewHub(config.HubBuffer),
		generator: NewGenerator(config.Seed, config.PatientID, config.DeviceID),
		logger:    logger,
	}, nil
}

// Hub 返回广播中心
func (s *Server) Hub() *Hub {
	return s.hub
}

// Handler 返回HTTP路由
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.healthz)
	// 不校验Origin，任何看板都可以订阅
	mux.Handle("/ws/live", websocket.Server{Handler: s.serveLive})
	return mux
}

// Run 按固定节拍生成读数并广播，阻塞直到ctx结束
// 退出时断开所有客户端
func (s *Server) Run(ctx context.Context) {
	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()
	defer s.hub.Close()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			s.Tick(now)
		}
	}
}

// Tick 生成一个节拍的读数并广播
func (s *Server) Tick(now time.Time) {
	for _, r := range s.generator.Next(now) {
		msg, err := Encode(r)
		if err != nil {
			s.logger.Error("编码报文失败", zap.Error(err))
			continue
		}
		s.hub.Broadcast(msg)
	}
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// serveLive 为单个websocket客户端转发广播消息
func (s *Server) serveLive(ws *websocket.Conn) {
	id, messages := s.hub.Add()
	defer s.hub.Remove(id)

	remote := ws.Request().RemoteAddr
	s.logger.Info("客户端已连接", zap.Uint64("client", id), zap.String("remote", remote))
	defer s.logger.Info("客户端已断开", zap.Uint64("client", id))

	// 客户端不发送数据，读到错误即视为断开
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		_, _ = io.Copy(io.Discard, ws)
	}()

	if err := websocket.Message.Send(ws, string(helloMessage)); err != nil {
		return
	}

	for {
		select {
		case <-gone:
			return
		case msg, ok := <-messages:
			if !ok {
				return
			}
			if err := websocket.Message.Send(ws, string(msg)); err != nil {
				s.logger.Debug("发送失败", zap.Uint64("client", id), zap.Error(err))
				return
			}
		}
	}
}
