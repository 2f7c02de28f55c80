package server

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/threadspeaker/scout-with-friends/internal/protocol"
	"github.com/threadspeaker/scout-with-friends/internal/protocol/codec"
)

const (
	// 写入超时
	writeWait = 10 * time.Second

	// 读取超时（pong 等待时间）
	pongWait = 60 * time.Second

	// ping 发送间隔（必须小于 pongWait）
	pingPeriod = (pongWait * 9) / 10

	// 消息最大大小
	maxMessageSize = 4096

	// 发送缓冲区大小
	sendBufferSize = 256

	// 超速警告次数超过该值时断开连接
	maxRateWarnings = 5
)

// Client 一个 WebSocket 连接。连接 ID 每次建连都不同，玩家 ID 在重连后保持不变。
type Client struct {
	ID string // 连接 ID
	IP string // 客户端 IP 地址

	server *Server
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte

	mu       sync.RWMutex
	playerID string
	name     string
	lobbyID  string
	closed   bool
}

// NewClient 创建新客户端，分配连接 ID、玩家 ID 和随机昵称
func NewClient(s *Server, hub *Hub, conn *websocket.Conn) *Client {
	return &Client{
		ID:       uuid.New().String(),
		playerID: uuid.New().String(),
		name:     GenerateNickname(),
		server:   s,
		hub:      hub,
		conn:     conn,
		send:     make(chan []byte, sendBufferSize),
	}
}

// ReadPump 从 WebSocket 读取消息并交给处理器，返回时清理连接
func (c *Client) ReadPump() {
	defer func() {
		c.handleDisconnect()
		_ = c.conn.Close()
	}()

	logger := c.server.logger
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Warn("读取错误", zap.String("conn", c.ID), zap.Error(err))
			}
			return
		}

		// 消息速率限制检查
		allowed, warning := c.server.messageLimiter.AllowMessage(c.ID)
		if !allowed {
			logger.Warn("⚠️ 客户端消息过于频繁", zap.String("player", c.GetName()), zap.String("ip", c.IP))
			c.SendMessage(codec.NewErrorMessage(protocol.ErrCodeRateLimit))
			if c.server.messageLimiter.WarningCount(c.ID) > maxRateWarnings {
				logger.Warn("🚫 客户端因多次超速被断开连接", zap.String("player", c.GetName()))
				return
			}
			continue
		}
		if warning {
			c.SendMessage(codec.NewErrorMessageWithText(protocol.ErrCodeRateLimit, "Slow down"))
		}

		msg, err := c.hub.codec.Decode(data)
		if err != nil {
			logger.Debug("消息解析错误", zap.String("conn", c.ID), zap.Error(err))
			c.SendMessage(codec.NewErrorMessage(protocol.ErrCodeInvalidMsg))
			continue
		}
		c.dispatch(msg)
		codec.PutMessage(msg)
	}
}

// dispatch 调用处理器，单条消息的 panic 不影响连接
func (c *Client) dispatch(msg *protocol.Message) {
	defer func() {
		if r := recover(); r != nil {
			c.server.logger.Error("💥 处理消息时发生 panic",
				zap.String("type", string(msg.Type)),
				zap.String("conn", c.ID),
				zap.Any("panic", r),
				zap.Stack("stack"),
			)
			c.SendMessage(codec.NewErrorMessage(protocol.ErrCodeUnknown))
		}
	}()
	c.server.handler.Handle(c, msg)
}

// WritePump 向 WebSocket 写入消息并定期发送 ping
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	frameType := websocket.TextMessage
	if c.hub.codec.Binary() {
		frameType = websocket.BinaryMessage
	}

	for {
		select {
		case data, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// 通道已关闭
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(frameType, data); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// SendMessage 编码并发送消息给客户端
func (c *Client) SendMessage(msg *protocol.Message) {
	if data := c.hub.encode(msg); data != nil {
		c.enqueue(data)
	}
}

// enqueue 非阻塞写入发送缓冲区，缓冲区已满时关闭连接
func (c *Client) enqueue(data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	select {
	case c.send <- data:
	default:
		c.hub.logger.Warn("发送缓冲区已满，关闭连接", zap.String("conn", c.ID))
		c.closed = true
		close(c.send)
	}
}

// handleDisconnect 连接断开：冻结或移除大厅座位，注销连接，释放连接名额
func (c *Client) handleDisconnect() {
	c.server.handler.Disconnect(c)
	c.hub.Unregister(c.ID)
	c.server.messageLimiter.RemoveClient(c.ID)
	c.Close()
	c.server.release()

	c.server.logger.Info("❌ 玩家已断开",
		zap.String("player", c.GetName()),
		zap.String("player_id", c.GetPlayerID()),
		zap.String("conn", c.ID),
	)
}

// Close 关闭发送通道，WritePump 随后发送关闭帧
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// GetID 连接 ID
func (c *Client) GetID() string {
	return c.ID
}

// GetPlayerID 玩家 ID
func (c *Client) GetPlayerID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.playerID
}

// GetName 昵称
func (c *Client) GetName() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.name
}

// BindPlayer 绑定玩家身份（重连或改名）
func (c *Client) BindPlayer(playerID, name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.playerID = playerID
	c.name = name
}

// SetLobby 设置客户端所在大厅
func (c *Client) SetLobby(lobbyID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lobbyID = lobbyID
}

// GetLobby 获取客户端所在大厅
func (c *Client) GetLobby() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lobbyID
}
