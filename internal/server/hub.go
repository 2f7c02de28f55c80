package server

import (
	"sync"

	"go.uber.org/zap"

	"github.com/threadspeaker/scout-with-friends/internal/protocol"
	"github.com/threadspeaker/scout-with-friends/internal/protocol/codec"
)

// Hub 在线连接表和大厅分组，实现 types.Transport。
// 所有投递都是非阻塞的：发送缓冲区满的连接会被关闭。
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client
	groups  map[string]map[string]*Client

	codec  codec.Codec
	logger *zap.Logger
}

// NewHub 创建连接表
func NewHub(c codec.Codec, logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		clients: make(map[string]*Client),
		groups:  make(map[string]map[string]*Client),
		codec:   c,
		logger:  logger,
	}
}

// Register 注册连接
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c.ID] = c
}

// Unregister 注销连接并移出所有分组
func (h *Hub) Unregister(connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	delete(h.clients, connID)
	for group, members := range h.groups {
		delete(members, connID)
		if len(members) == 0 {
			delete(h.groups, group)
		}
	}
}

// Get 按连接 ID 查找
func (h *Hub) Get(connID string) *Client {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.clients[connID]
}

// Count 在线连接数
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// encode 编码一条出站消息，失败时记录日志并返回 nil
func (h *Hub) encode(msg *protocol.Message) []byte {
	data, err := h.codec.Encode(msg)
	if err != nil {
		h.logger.Error("❌ 消息编码失败", zap.String("type", string(msg.Type)), zap.Error(err))
		return nil
	}
	return data
}

// SendTo 发送给单个连接，连接不存在时丢弃
func (h *Hub) SendTo(connID string, msg *protocol.Message) {
	if c := h.Get(connID); c != nil {
		c.SendMessage(msg)
	}
}

// SendToGroup 发送给分组内所有连接，只编码一次
func (h *Hub) SendToGroup(group string, msg *protocol.Message) {
	data := h.encode(msg)
	if data == nil {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.groups[group] {
		c.enqueue(data)
	}
}

// AddToGroup 把已注册的连接加入分组
func (h *Hub) AddToGroup(connID, group string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	c, ok := h.clients[connID]
	if !ok {
		return
	}
	members, ok := h.groups[group]
	if !ok {
		members = make(map[string]*Client)
		h.groups[group] = members
	}
	members[connID] = c
}

// RemoveFromGroup 把连接移出分组
func (h *Hub) RemoveFromGroup(connID, group string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	members, ok := h.groups[group]
	if !ok {
		return
	}
	delete(members, connID)
	if len(members) == 0 {
		delete(h.groups, group)
	}
}

// GroupSize 分组内的连接数
func (h *Hub) GroupSize(group string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.groups[group])
}

// Broadcast 发送给所有连接
func (h *Hub) Broadcast(msg *protocol.Message) {
	h.broadcastIf(msg, func(*Client) bool { return true })
}

// BroadcastIdle 发送给不在任何大厅中的连接
func (h *Hub) BroadcastIdle(msg *protocol.Message) {
	h.broadcastIf(msg, func(c *Client) bool { return c.GetLobby() == "" })
}

func (h *Hub) broadcastIf(msg *protocol.Message, match func(*Client) bool) {
	data := h.encode(msg)
	if data == nil {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.clients {
		if match(c) {
			c.enqueue(data)
		}
	}
}

// CloseAll 关闭所有连接的发送通道
func (h *Hub) CloseAll() {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.clients {
		c.Close()
	}
}
