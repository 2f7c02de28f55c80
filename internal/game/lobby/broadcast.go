package lobby

import (
	"go.uber.org/zap"

	"github.com/threadspeaker/scout-with-friends/internal/protocol"
	"github.com/threadspeaker/scout-with-friends/internal/protocol/codec"
)

// Project 生成所有玩家的状态投影，每次调用都是新的副本
func Project(players []*Player) []protocol.PlayerState {
	states := make([]protocol.PlayerState, len(players))
	for i, p := range players {
		states[i] = p.project()
	}
	return states
}

func (s *Session) projectLocked() []protocol.PlayerState {
	return Project(s.players)
}

// State 当前状态投影
func (s *Session) State() []protocol.PlayerState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.projectLocked()
}

// SendState 向单个连接补发当前阶段和状态投影
func (s *Session) SendState(connID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sendStateLocked(connID)
}

func (s *Session) sendStateLocked(connID string) {
	if s.phase == PhaseLobby {
		s.sendTo(connID, protocol.MsgLobbyJoined, s.infoLocked())
		return
	}
	s.sendTo(connID, protocol.MsgGameMode, s.phase)
	s.sendTo(connID, protocol.MsgUpdateGameState, s.projectLocked())
}

// broadcast 向大厅分组广播，调用方必须持有会话锁
func (s *Session) broadcast(msgType protocol.MessageType, payload any) {
	msg, err := codec.NewMessage(msgType, payload)
	if err != nil {
		s.logger.Error("❌ 构造广播消息失败", zap.String("type", string(msgType)), zap.Error(err))
		return
	}
	s.transport.SendToGroup(s.ID, msg)
}

// sendTo 发给单个连接
func (s *Session) sendTo(connID string, msgType protocol.MessageType, payload any) {
	msg, err := codec.NewMessage(msgType, payload)
	if err != nil {
		s.logger.Error("❌ 构造消息失败", zap.String("type", string(msgType)), zap.Error(err))
		return
	}
	s.transport.SendTo(connID, msg)
}
