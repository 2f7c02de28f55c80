package protocol

import "encoding/json"

// Message 基础消息结构
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// MessageType 消息类型
type MessageType string

// 客户端 → 服务端 消息类型
const (
	// 连接操作
	MsgReconnect MessageType = "Reconnect" // 断线重连
	MsgPing      MessageType = "Ping"      // 心跳 ping

	// 大厅操作
	MsgCreateLobby MessageType = "CreateLobby" // 创建大厅
	MsgJoinLobby   MessageType = "JoinLobby"   // 加入大厅
	MsgLeaveLobby  MessageType = "LeaveLobby"  // 离开大厅

	// 游戏操作
	MsgStartGame      MessageType = "StartGame"      // 房主开始游戏
	MsgFlipPlayerHand MessageType = "FlipPlayerHand" // 整手翻面
	MsgKeepPlayerHand MessageType = "KeepPlayerHand" // 保留当前朝向
)

// 服务端 → 客户端 消息类型
const (
	// 连接相关
	MsgConnected     MessageType = "Connected"     // 连接成功
	MsgReconnected   MessageType = "Reconnected"   // 重连成功
	MsgPong          MessageType = "Pong"          // 心跳 pong
	MsgPlayerOffline MessageType = "PlayerOffline" // 玩家掉线通知
	MsgPlayerOnline  MessageType = "PlayerOnline"  // 玩家上线通知

	// 大厅相关
	MsgLobbyCreated MessageType = "LobbyCreated" // 大厅创建成功
	MsgLobbyJoined  MessageType = "LobbyJoined"  // 加入大厅成功
	MsgPlayerJoined MessageType = "PlayerJoined" // 其他玩家加入
	MsgPlayerLeft   MessageType = "PlayerLeft"   // 玩家离开

	// 游戏流程
	MsgGameStarted      MessageType = "GameStarted"      // 游戏开始
	MsgInitialGameState MessageType = "InitialGameState" // 发牌后的初始状态
	MsgGameMode         MessageType = "GameMode"         // 当前阶段
	MsgUpdateGameState  MessageType = "UpdateGameState"  // 状态更新

	// 错误
	MsgError MessageType = "Error" // 错误消息（仅发给调用者）
)
