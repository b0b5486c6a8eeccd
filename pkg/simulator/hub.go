package simulator

import (
	"sync"
)

// Hub 把消息广播给所有已注册的客户端
type Hub struct {
	mu      sync.Mutex
	nextID  uint64
	clients map[uint64]chan []byte
	buffer  int
}

// NewHub 创建广播中心，buffer 为每个客户端的待发送队列长度
func NewHub(buffer int) *Hub {
	if buffer < 1 {
		buffer = 1
	}
	return &Hub{
		nextID:  1,
		clients: make(map[uint64]chan []byte),
		buffer:  buffer,
	}
}

// Add 注册一个客户端，返回其编号和接收通道
func (h *Hub) Add() (uint64, <-chan []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.nextID
	h.nextID++
	ch := make(chan []byte, h.buffer)
	h.clients[id] = ch
	return id, ch
}

// Remove 注销客户端并关闭其通道
func (h *Hub) Remove(id uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if ch, ok := h.clients[id]; ok {
		delete(h.clients, id)
		close(ch)
	}
}

// Broadcast 发送给所有客户端，队列已满的客户端丢弃这条消息
func (h *Hub) Broadcast(msg []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, ch := range h.clients {
		select {
		case ch <- msg:
		default:
		}
	}
}

// Close 注销所有客户端，对应的连接随后断开
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for id, ch := range h.clients {
		delete(h.clients, id)
		close(ch)
	}
}

// Len 返回当前客户端数量
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}
