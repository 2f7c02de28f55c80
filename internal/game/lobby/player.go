package lobby

import (
	"github.com/threadspeaker/scout-with-friends/internal/game/card"
	"github.com/threadspeaker/scout-with-friends/internal/protocol"
)

// Player 大厅中的玩家，只属于一个 Session，只能在会话锁内读写
type Player struct {
	ID         string    // 稳定的玩家 ID
	ConnID     string    // 当前连接 ID，离线时为空
	Name       string    // 昵称
	Hand       card.Hand // 手牌，顺序即位置
	HasDecided bool      // 是否已保留手牌
	IsTurn     bool      // 是否轮到该玩家
	Points     int
	Tokens     int
	TokenMode  bool // 客户端显示的决策模式
	Connected  bool
}

// project 生成客户端可见的玩家状态，手牌为副本
func (p *Player) project() protocol.PlayerState {
	return protocol.PlayerState{
		Name:        p.Name,
		IsTurn:      p.IsTurn,
		Cards:       p.Hand.Clone(),
		Points:      p.Points,
		Tokens:      p.Tokens,
		IsTokenMode: p.TokenMode,
		HasDecided:  p.HasDecided,
	}
}

// info 大厅列表中的玩家概要
func (p *Player) info(hostID string) protocol.PlayerInfo {
	return protocol.PlayerInfo{
		ID:        p.ID,
		Name:      p.Name,
		IsHost:    p.ID == hostID,
		Connected: p.Connected,
	}
}
