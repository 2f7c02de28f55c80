package lobby

import (
	"go.uber.org/zap"

	"github.com/threadspeaker/scout-with-friends/internal/apperrors"
	"github.com/threadspeaker/scout-with-friends/internal/game/deck"
	"github.com/threadspeaker/scout-with-friends/internal/protocol"
)

// StartGame 房主开始游戏：打乱座次、发牌、进入 Setup 阶段
func (s *Session) StartGame(connID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	caller := s.playerByConn(connID)
	if caller == nil || caller.ID != s.hostID {
		return apperrors.ErrNotHost
	}
	if s.phase != PhaseLobby {
		return apperrors.ErrInvalidPhaseAction
	}
	if len(s.players) < s.MinPlayers {
		return apperrors.InsufficientPlayers(s.MinPlayers)
	}

	cards, err := s.engine.BuildDeck(len(s.players))
	if err != nil {
		return err
	}
	hands, remainder, err := deck.Deal(cards, len(s.players))
	if err != nil {
		return err
	}

	deck.Shuffle(s.engine, s.players)
	for i, p := range s.players {
		p.Hand = hands[i]
		p.HasDecided = false
		p.IsTurn = i == 0
	}
	s.undealt = remainder
	s.phase = PhaseSetup

	s.broadcast(protocol.MsgGameStarted, nil)
	s.broadcast(protocol.MsgInitialGameState, s.projectLocked())
	s.broadcast(protocol.MsgGameMode, s.phase)
	s.touch()

	s.logger.Info("🎮 游戏开始",
		zap.Int("players", len(s.players)),
		zap.Int("hand_size", len(hands[0])),
		zap.Int("undealt", len(remainder)),
		zap.String("first", s.players[0].Name),
	)
	return nil
}

// FlipHand 翻转调用者的整副手牌
func (s *Session) FlipHand(connID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	player, err := s.undecidedPlayer(connID)
	if err != nil {
		return err
	}

	player.Hand.Flip()
	s.broadcast(protocol.MsgUpdateGameState, s.projectLocked())
	s.touch()
	return nil
}

// KeepHand 调用者确认手牌方向；全部确认后进入出牌阶段
func (s *Session) KeepHand(connID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	player, err := s.undecidedPlayer(connID)
	if err != nil {
		return err
	}

	player.HasDecided = true
	if s.allDecided() {
		s.phase = PhaseInProgress
		s.broadcast(protocol.MsgGameMode, s.phase)
		s.logger.Info("🃏 所有玩家已确认手牌，进入出牌阶段")
	}
	s.touch()
	return nil
}

// undecidedPlayer Setup 阶段翻面/保留的公共校验
func (s *Session) undecidedPlayer(connID string) (*Player, error) {
	if s.phase != PhaseSetup {
		return nil, apperrors.ErrInvalidPhaseAction
	}
	player := s.playerByConn(connID)
	if player == nil {
		return nil, apperrors.ErrPlayerNotFound
	}
	if player.HasDecided {
		return nil, apperrors.ErrAlreadyDecided
	}
	return player, nil
}

func (s *Session) allDecided() bool {
	for _, p := range s.players {
		if !p.HasDecided {
			return false
		}
	}
	return true
}

// Tx 会话锁内的可变视图，交给出牌阶段的扩展动作使用
type Tx struct {
	s     *Session
	Actor *Player
}

// Players 按座次排列的玩家
func (tx *Tx) Players() []*Player {
	return tx.s.players
}

// Phase 当前阶段
func (tx *Tx) Phase() Phase {
	return tx.s.phase
}

// AdvanceTurn 把回合交给下一位玩家
func (tx *Tx) AdvanceTurn() *Player {
	return tx.s.advanceTurnLocked()
}

// Finish 结束牌局
func (tx *Tx) Finish() error {
	return tx.s.finishLocked()
}

// Exec 在会话锁内执行一个扩展动作。fn 必须先校验再修改；
// 返回错误时不广播。成功后广播最新状态，阶段变化时额外广播 GameMode。
func (s *Session) Exec(connID string, phase Phase, fn func(tx *Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != phase {
		return apperrors.ErrInvalidPhaseAction
	}
	actor := s.playerByConn(connID)
	if actor == nil {
		return apperrors.ErrPlayerNotFound
	}

	before := s.phase
	if err := fn(&Tx{s: s, Actor: actor}); err != nil {
		return err
	}

	s.broadcast(protocol.MsgUpdateGameState, s.projectLocked())
	if s.phase != before {
		s.broadcast(protocol.MsgGameMode, s.phase)
	}
	s.touch()
	return nil
}

// AdvanceTurn 把回合交给下一位玩家并广播状态
func (s *Session) AdvanceTurn() (*Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhaseInProgress {
		return nil, apperrors.ErrInvalidPhaseAction
	}
	next := s.advanceTurnLocked()
	s.broadcast(protocol.MsgUpdateGameState, s.projectLocked())
	s.touch()
	return next, nil
}

// Finish 结束牌局并广播 GameMode
func (s *Session) Finish() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.finishLocked(); err != nil {
		return err
	}
	s.broadcast(protocol.MsgGameMode, s.phase)
	s.touch()
	return nil
}

// advanceTurnLocked 保证始终恰好一名玩家处于回合中
func (s *Session) advanceTurnLocked() *Player {
	if len(s.players) == 0 {
		return nil
	}
	current := 0
	for i, p := range s.players {
		if p.IsTurn {
			current = i
			break
		}
	}
	next := (current + 1) % len(s.players)
	for i, p := range s.players {
		p.IsTurn = i == next
	}
	return s.players[next]
}

func (s *Session) finishLocked() error {
	if !canAdvance(s.phase, PhaseFinished) {
		return apperrors.ErrInvalidPhaseAction
	}
	s.phase = PhaseFinished
	s.logger.Info("🏁 牌局结束")
	return nil
}
