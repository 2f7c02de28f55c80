package lobby

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/threadspeaker/scout-with-friends/internal/apperrors"
	"github.com/threadspeaker/scout-with-friends/internal/game/card"
	"github.com/threadspeaker/scout-with-friends/internal/game/deck"
	"github.com/threadspeaker/scout-with-friends/internal/protocol"
	"github.com/threadspeaker/scout-with-friends/internal/server/storage"
	"github.com/threadspeaker/scout-with-friends/internal/types"
)

const mirrorTimeout = 3 * time.Second

// Mirror 大厅摘要的外部镜像（Redis），写入失败不影响游戏
type Mirror interface {
	SaveLobby(ctx context.Context, data *storage.LobbyData) error
	DeleteLobby(ctx context.Context, id string) error
}

// Session 一个大厅及其牌局。
// 所有读取-校验-修改-广播序列都在 mu 内完成。
type Session struct {
	ID         string
	MinPlayers int
	MaxPlayers int
	CreatedAt  time.Time

	mu       sync.Mutex
	phase    Phase
	hostID   string
	players  []*Player
	undealt  []card.Card
	updateAt time.Time
	closed   bool // 已无在线玩家或已被清理，等待从注册表移除

	engine    *deck.Engine
	transport types.Transport
	mirror    Mirror
	logger    *zap.Logger
}

func newSession(id string, r *Registry) *Session {
	now := time.Now()
	return &Session{
		ID:         id,
		MinPlayers: r.minPlayers,
		MaxPlayers: r.maxPlayers,
		CreatedAt:  now,
		updateAt:   now,
		phase:      PhaseLobby,
		players:    make([]*Player, 0, r.maxPlayers),
		engine:     r.engine,
		transport:  r.transport,
		mirror:     r.mirror,
		logger:     r.logger.With(zap.String("lobby", id)),
	}
}

// Phase 当前阶段
func (s *Session) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// HostID 当前房主
func (s *Session) HostID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hostID
}

// PlayerCount 座位数（含离线玩家）
func (s *Session) PlayerCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.players)
}

// Info 大厅信息，用于创建/加入成功的响应
func (s *Session) Info() protocol.LobbyPayload {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.infoLocked()
}

func (s *Session) infoLocked() protocol.LobbyPayload {
	players := make([]protocol.PlayerInfo, len(s.players))
	for i, p := range s.players {
		players[i] = p.info(s.hostID)
	}
	return protocol.LobbyPayload{
		LobbyID:    s.ID,
		HostID:     s.hostID,
		MinPlayers: s.MinPlayers,
		Players:    players,
	}
}

// Undealt 发牌后未分配的剩余牌
func (s *Session) Undealt() []card.Card {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]card.Card(nil), s.undealt...)
}

// Join 玩家加入大厅，只能在 Lobby 阶段进行
func (s *Session) Join(connID, playerID, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return apperrors.ErrLobbyNotFound
	}
	if existing := s.playerByID(playerID); existing != nil {
		// 在线座位只能由持有它的连接重复加入，换连接必须走重连
		if existing.Connected && existing.ConnID != connID {
			return apperrors.ErrReconnectFailed
		}
		if existing.Connected {
			return nil
		}
		return apperrors.ErrGameStarted
	}

	if s.phase != PhaseLobby {
		return apperrors.ErrGameStarted
	}
	if len(s.players) >= s.MaxPlayers {
		return apperrors.ErrLobbyFull
	}

	player := &Player{
		ID:        playerID,
		ConnID:    connID,
		Name:      name,
		Hand:      card.Hand{},
		Connected: true,
	}
	s.players = append(s.players, player)
	if s.hostID == "" {
		s.hostID = playerID
	}

	// 先通知已有玩家，再把新玩家加入分组
	s.broadcast(protocol.MsgPlayerJoined, protocol.PlayerJoinedPayload{
		Player: player.info(s.hostID),
	})
	s.transport.AddToGroup(connID, s.ID)
	s.touch()

	s.logger.Info("👤 玩家加入大厅",
		zap.String("player", name),
		zap.Int("count", len(s.players)),
	)
	return nil
}

// Leave 玩家主动离开。Lobby 阶段移除座位，开局后冻结座位等待重连。
// 返回大厅是否已经没有在线玩家；此时会话在锁内标记为关闭，之后的加入和重连都会失败。
func (s *Session) Leave(connID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	player := s.playerByConn(connID)
	if player == nil {
		return false, apperrors.ErrPlayerNotFound
	}
	if s.phase == PhaseLobby {
		s.removeLocked(player)
	} else {
		s.freezeLocked(player)
	}
	if s.connectedCount() == 0 {
		s.closed = true
	}
	return s.closed, nil
}

// Disconnect 连接断开，语义与 Leave 相同；未找到玩家时忽略
func (s *Session) Disconnect(connID string) bool {
	empty, err := s.Leave(connID)
	if err != nil {
		return false
	}
	return empty
}

// removeLocked 从座位中移除玩家，房主离开时顺延给下一位
func (s *Session) removeLocked(player *Player) {
	for i, p := range s.players {
		if p == player {
			s.players = append(s.players[:i], s.players[i+1:]...)
			break
		}
	}
	s.transport.RemoveFromGroup(player.ConnID, s.ID)

	newHost := ""
	if player.ID == s.hostID {
		s.hostID = ""
		if len(s.players) > 0 {
			s.hostID = s.players[0].ID
			newHost = s.hostID
		}
	}

	s.broadcast(protocol.MsgPlayerLeft, protocol.PlayerLeftPayload{
		PlayerID:   player.ID,
		PlayerName: player.Name,
		NewHostID:  newHost,
	})
	s.touch()

	s.logger.Info("👋 玩家离开大厅",
		zap.String("player", player.Name),
		zap.Int("count", len(s.players)),
	)
}

// freezeLocked 保留座位和手牌，标记为离线
func (s *Session) freezeLocked(player *Player) {
	s.transport.RemoveFromGroup(player.ConnID, s.ID)
	player.ConnID = ""
	player.Connected = false

	s.broadcast(protocol.MsgPlayerOffline, protocol.PlayerOfflinePayload{
		PlayerID:   player.ID,
		PlayerName: player.Name,
	})
	s.touch()

	s.logger.Info("📴 玩家掉线，保留座位", zap.String("player", player.Name))
}

// Reconnect 把离线座位绑定到新连接，并向该连接补发当前状态
func (s *Session) Reconnect(playerID, connID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return apperrors.ErrLobbyNotFound
	}
	player := s.playerByID(playerID)
	if player == nil {
		return apperrors.ErrPlayerNotFound
	}
	if player.ConnID != "" && player.ConnID != connID {
		s.transport.RemoveFromGroup(player.ConnID, s.ID)
	}
	player.ConnID = connID
	player.Connected = true

	s.broadcast(protocol.MsgPlayerOnline, protocol.PlayerOnlinePayload{
		PlayerID:   player.ID,
		PlayerName: player.Name,
	})
	s.transport.AddToGroup(connID, s.ID)
	s.sendStateLocked(connID)
	s.touch()

	s.logger.Info("🔄 玩家重连", zap.String("player", player.Name))
	return nil
}

// touch 记录更新时间并异步写入镜像
func (s *Session) touch() {
	s.updateAt = time.Now()
	if s.mirror == nil {
		return
	}
	data := s.snapshotLocked()
	mirror, logger := s.mirror, s.logger
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), mirrorTimeout)
		defer cancel()
		if err := mirror.SaveLobby(ctx, data); err != nil {
			logger.Warn("⚠️ 保存大厅镜像失败", zap.Error(err))
		}
	}()
}

// snapshotLocked 大厅摘要（不含手牌内容）
func (s *Session) snapshotLocked() *storage.LobbyData {
	players := make([]storage.PlayerData, len(s.players))
	for i, p := range s.players {
		players[i] = storage.PlayerData{
			ID:         p.ID,
			Name:       p.Name,
			HandSize:   len(p.Hand),
			HasDecided: p.HasDecided,
			IsTurn:     p.IsTurn,
			Points:     p.Points,
			Tokens:     p.Tokens,
			Connected:  p.Connected,
		}
	}
	return &storage.LobbyData{
		ID:         s.ID,
		Phase:      int(s.phase),
		HostID:     s.hostID,
		MinPlayers: s.MinPlayers,
		Players:    players,
		CreatedAt:  s.CreatedAt.Unix(),
		UpdatedAt:  s.updateAt.Unix(),
	}
}

// closeLocked 解散大厅时把所有连接移出分组
func (s *Session) closeLocked() {
	s.closed = true
	for _, p := range s.players {
		if p.ConnID != "" {
			s.transport.RemoveFromGroup(p.ConnID, s.ID)
		}
	}
}

func (s *Session) playerByConn(connID string) *Player {
	if connID == "" {
		return nil
	}
	for _, p := range s.players {
		if p.ConnID == connID {
			return p
		}
	}
	return nil
}

func (s *Session) playerByID(playerID string) *Player {
	if playerID == "" {
		return nil
	}
	for _, p := range s.players {
		if p.ID == playerID {
			return p
		}
	}
	return nil
}

func (s *Session) connectedCount() int {
	n := 0
	for _, p := range s.players {
		if p.Connected {
			n++
		}
	}
	return n
}
