package types

import (
	"github.com/threadspeaker/scout-with-friends/internal/protocol"
)

// Transport 游戏核心依赖的投递能力：发给单个连接，或发给某个分组内的全部连接。
// 实现必须是非阻塞的，投递失败不影响已提交的状态变更。
type Transport interface {
	SendTo(connID string, msg *protocol.Message)
	SendToGroup(group string, msg *protocol.Message)
	AddToGroup(connID, group string)
	RemoveFromGroup(connID, group string)
}

// ClientInterface 定义客户端接口
type ClientInterface interface {
	GetID() string // 连接 ID
	GetPlayerID() string
	GetName() string
	BindPlayer(playerID, name string) // 重连时绑定回原玩家身份
	GetLobby() string
	SetLobby(id string)
	SendMessage(msg *protocol.Message)
	Close()
}

// ServerInterface 定义服务器接口（用于打破循环依赖）
type ServerInterface interface {
	IsMaintenanceMode() bool
	GetOnlineCount() int
}
