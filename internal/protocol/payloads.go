package protocol

import "github.com/threadspeaker/scout-with-friends/internal/game/card"

// --- 客户端请求 Payloads ---

// ReconnectPayload 断线重连请求
type ReconnectPayload struct {
	Token    string `json:"token"`    // 重连令牌
	PlayerID string `json:"playerId"` // 玩家 ID
}

// PingPayload 心跳请求
type PingPayload struct {
	Timestamp int64 `json:"timestamp"` // 客户端时间戳（毫秒）
}

// CreateLobbyPayload 创建大厅请求，LobbyID 为空时由服务端生成
type CreateLobbyPayload struct {
	LobbyID string `json:"lobbyId,omitempty"`
	Name    string `json:"name"`
}

// JoinLobbyPayload 加入大厅请求
type JoinLobbyPayload struct {
	LobbyID string `json:"lobbyId"`
	Name    string `json:"name"`
}

// LobbyActionPayload 针对某个大厅的游戏操作（开始、翻面、保留）
type LobbyActionPayload struct {
	LobbyID string `json:"lobbyId"`
}

// --- 服务端响应 Payloads ---

// ConnectedPayload 连接成功响应
type ConnectedPayload struct {
	PlayerID       string `json:"playerId"`
	PlayerName     string `json:"playerName"`
	ReconnectToken string `json:"reconnectToken"` // 重连令牌
}

// ReconnectedPayload 重连成功响应
type ReconnectedPayload struct {
	PlayerID   string `json:"playerId"`
	PlayerName string `json:"playerName"`
	LobbyID    string `json:"lobbyId,omitempty"` // 如果在大厅中
}

// PongPayload 心跳响应
type PongPayload struct {
	ClientTimestamp int64 `json:"clientTimestamp"` // 客户端发送的时间戳
	ServerTimestamp int64 `json:"serverTimestamp"` // 服务器时间戳（毫秒）
}

// PlayerInfo 大厅中的玩家概要
type PlayerInfo struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	IsHost    bool   `json:"isHost"`
	Connected bool   `json:"connected"`
}

// LobbyPayload 大厅创建/加入成功响应
type LobbyPayload struct {
	LobbyID    string       `json:"lobbyId"`
	HostID     string       `json:"hostId"`
	MinPlayers int          `json:"minPlayers"`
	Players    []PlayerInfo `json:"players"`
}

// PlayerJoinedPayload 其他玩家加入通知
type PlayerJoinedPayload struct {
	Player PlayerInfo `json:"player"`
}

// PlayerLeftPayload 玩家离开通知
type PlayerLeftPayload struct {
	PlayerID   string `json:"playerId"`
	PlayerName string `json:"playerName"`
	NewHostID  string `json:"newHostId,omitempty"` // 房主离开时的新房主
}

// PlayerOfflinePayload 玩家掉线通知
type PlayerOfflinePayload struct {
	PlayerID   string `json:"playerId"`
	PlayerName string `json:"playerName"`
}

// PlayerOnlinePayload 玩家上线通知
type PlayerOnlinePayload struct {
	PlayerID   string `json:"playerId"`
	PlayerName string `json:"playerName"`
}

// PlayerState 广播给客户端的玩家状态投影
type PlayerState struct {
	Name        string      `json:"name"`
	IsTurn      bool        `json:"isTurn"`
	Cards       []card.Card `json:"cards"`
	Points      int         `json:"points"`
	Tokens      int         `json:"tokens"`
	IsTokenMode bool        `json:"isTokenMode"`
	HasDecided  bool        `json:"hasDecided"`
}

// LobbySummary 大厅列表条目
type LobbySummary struct {
	LobbyID string `json:"lobbyId"`
	Phase   int    `json:"phase"`
	Players int    `json:"players"`
}

// ErrorPayload 错误响应
type ErrorPayload struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
