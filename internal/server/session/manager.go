package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"sync"
	"time"
)

const (
	// 断线后允许重连的时间
	reconnectTimeout = 2 * time.Minute
	// 离线会话的保留时间
	sessionExpireTime = 10 * time.Minute
)

// PlayerSession 玩家会话，保存重连令牌和所在大厅
type PlayerSession struct {
	PlayerID       string
	PlayerName     string
	ReconnectToken string
	LobbyID        string
	ConnID         string // 当前持有该身份的连接

	DisconnectedAt time.Time
	IsOnline       bool
}

// SessionManager 会话管理器，按玩家 ID 和令牌索引
type SessionManager struct {
	mu       sync.RWMutex
	sessions map[string]*PlayerSession // playerID -> session
	tokens   map[string]string         // token -> playerID
	now      func() time.Time
}

// NewSessionManager 创建会话管理器
func NewSessionManager() *SessionManager {
	return &SessionManager{
		sessions: make(map[string]*PlayerSession),
		tokens:   make(map[string]string),
		now:      time.Now,
	}
}

// CreateSession 为 connID 上的新玩家创建会话并生成重连令牌
func (sm *SessionManager) CreateSession(playerID, playerName, connID string) PlayerSession {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if old, ok := sm.sessions[playerID]; ok {
		delete(sm.tokens, old.ReconnectToken)
	}

	session := &PlayerSession{
		PlayerID:       playerID,
		PlayerName:     playerName,
		ReconnectToken: generateToken(),
		ConnID:         connID,
		IsOnline:       true,
	}
	sm.sessions[playerID] = session
	sm.tokens[session.ReconnectToken] = playerID
	return *session
}

// GetSession 获取会话副本
func (sm *SessionManager) GetSession(playerID string) (PlayerSession, bool) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	session, ok := sm.sessions[playerID]
	if !ok {
		return PlayerSession{}, false
	}
	return *session, true
}

// GetSessionByToken 通过令牌获取会话副本
func (sm *SessionManager) GetSessionByToken(token string) (PlayerSession, bool) {
	sm.mu.RLock()
	playerID, ok := sm.tokens[token]
	sm.mu.RUnlock()
	if !ok {
		return PlayerSession{}, false
	}
	return sm.GetSession(playerID)
}

func (sm *SessionManager) update(playerID string, fn func(*PlayerSession)) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	if session, ok := sm.sessions[playerID]; ok {
		fn(session)
	}
}

// SetOffline connID 断开时标记离线并记录断线时间。
// 身份已被其他连接接管时不做修改，返回 false。
func (sm *SessionManager) SetOffline(playerID, connID string) bool {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	session, ok := sm.sessions[playerID]
	if !ok || session.ConnID != connID {
		return false
	}
	session.ConnID = ""
	session.IsOnline = false
	session.DisconnectedAt = sm.now()
	return true
}

// SetOnline 把身份绑定到 connID 并标记上线，原连接随之失去该身份
func (sm *SessionManager) SetOnline(playerID, connID string) {
	sm.update(playerID, func(s *PlayerSession) {
		s.ConnID = connID
		s.IsOnline = true
		s.DisconnectedAt = time.Time{}
	})
}

// Owns connID 是否仍持有该玩家身份
func (sm *SessionManager) Owns(playerID, connID string) bool {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	session, ok := sm.sessions[playerID]
	return ok && connID != "" && session.ConnID == connID
}

// SetLobby 记录玩家所在大厅，空字符串表示不在大厅中
func (sm *SessionManager) SetLobby(playerID, lobbyID string) {
	sm.update(playerID, func(s *PlayerSession) { s.LobbyID = lobbyID })
}

// SetName 更新昵称
func (sm *SessionManager) SetName(playerID, name string) {
	sm.update(playerID, func(s *PlayerSession) { s.PlayerName = name })
}

// DeleteSession 删除会话
func (sm *SessionManager) DeleteSession(playerID string) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if session, ok := sm.sessions[playerID]; ok {
		delete(sm.tokens, session.ReconnectToken)
		delete(sm.sessions, playerID)
	}
}

// CanReconnect 令牌与玩家匹配，且仍在重连时限内
func (sm *SessionManager) CanReconnect(token, playerID string) bool {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	storedPlayerID, ok := sm.tokens[token]
	if !ok || storedPlayerID != playerID {
		return false
	}
	session, ok := sm.sessions[playerID]
	if !ok {
		return false
	}
	if !session.IsOnline && sm.now().Sub(session.DisconnectedAt) > reconnectTimeout {
		return false
	}
	return true
}

// Count 会话数量（含离线）
func (sm *SessionManager) Count() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.sessions)
}

// CleanupLoop 定期清理过期会话，直到 ctx 结束
func (sm *SessionManager) CleanupLoop(ctx context.Context) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sm.cleanup()
		}
	}
}

// cleanup 删除离线超过保留时间的会话，返回删除数量
func (sm *SessionManager) cleanup() int {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	now := sm.now()
	removed := 0
	for playerID, session := range sm.sessions {
		if !session.IsOnline && now.Sub(session.DisconnectedAt) > sessionExpireTime {
			delete(sm.tokens, session.ReconnectToken)
			delete(sm.sessions, playerID)
			removed++
		}
	}
	return removed
}

// generateToken 生成 256 位随机令牌
func generateToken() string {
	bytes := make([]byte, 32)
	_, _ = rand.Read(bytes)
	return hex.EncodeToString(bytes)
}
