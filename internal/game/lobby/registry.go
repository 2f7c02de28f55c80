package lobby

import (
	"context"
	"math/rand/v2"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/threadspeaker/scout-with-friends/internal/apperrors"
	"github.com/threadspeaker/scout-with-friends/internal/game/card"
	"github.com/threadspeaker/scout-with-friends/internal/game/deck"
	"github.com/threadspeaker/scout-with-friends/internal/protocol"
	"github.com/threadspeaker/scout-with-friends/internal/types"
)

const (
	lobbyCodeLength  = 6
	lobbyCodeCharset = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	maxLobbyIDLength = 32

	defaultMinPlayers   = 3
	defaultMaxPlayers   = 5
	defaultLobbyTimeout = 30 * time.Minute
	cleanupInterval     = time.Minute
)

// Options 注册表依赖
type Options struct {
	Transport    types.Transport
	Engine       *deck.Engine // 为空时使用随机引擎
	Mirror       Mirror       // 可选
	Logger       *zap.Logger
	MinPlayers   int
	MaxPlayers   int
	LobbyTimeout time.Duration // 空闲大厅的清理阈值
}

// Registry 大厅注册表。mu 只保护 map，持有 mu 时不获取会话锁。
type Registry struct {
	mu      sync.RWMutex
	lobbies map[string]*Session

	transport    types.Transport
	engine       *deck.Engine
	mirror       Mirror
	logger       *zap.Logger
	minPlayers   int
	maxPlayers   int
	lobbyTimeout time.Duration
}

// NewRegistry 创建大厅注册表
func NewRegistry(opts Options) *Registry {
	r := &Registry{
		lobbies:      make(map[string]*Session),
		transport:    opts.Transport,
		engine:       opts.Engine,
		mirror:       opts.Mirror,
		logger:       opts.Logger,
		minPlayers:   opts.MinPlayers,
		maxPlayers:   opts.MaxPlayers,
		lobbyTimeout: opts.LobbyTimeout,
	}
	if r.engine == nil {
		r.engine = deck.NewRandomEngine()
	}
	if r.logger == nil {
		r.logger = zap.NewNop()
	}
	if r.minPlayers <= 0 {
		r.minPlayers = defaultMinPlayers
	}
	if r.maxPlayers < r.minPlayers {
		r.maxPlayers = max(defaultMaxPlayers, r.minPlayers)
	}
	if r.lobbyTimeout <= 0 {
		r.lobbyTimeout = defaultLobbyTimeout
	}
	return r
}

// Create 创建大厅，创建者成为房主。id 为空时生成随机大厅码。
func (r *Registry) Create(id, connID, playerID, name string) (*Session, error) {
	if id != "" && !validLobbyID(id) {
		return nil, apperrors.ErrInvalidMessage
	}

	r.mu.Lock()
	if id == "" {
		id = r.generateLobbyCode()
	}
	if _, exists := r.lobbies[id]; exists {
		r.mu.Unlock()
		return nil, apperrors.ErrDuplicateLobby
	}

	sess := newSession(id, r)
	// 会话尚未对外可见，直接入座
	sess.players = append(sess.players, &Player{
		ID:        playerID,
		ConnID:    connID,
		Name:      name,
		Hand:      card.Hand{},
		Connected: true,
	})
	sess.hostID = playerID
	r.lobbies[id] = sess
	r.mu.Unlock()

	r.transport.AddToGroup(connID, id)

	sess.mu.Lock()
	sess.touch()
	sess.mu.Unlock()

	r.logger.Info("🏠 大厅已创建", zap.String("lobby", id), zap.String("host", name))
	return sess, nil
}

// Get 查找大厅，不存在或 id 非法时返回 nil
func (r *Registry) Get(id string) *Session {
	if !validLobbyID(id) {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.lobbies[id]
}

// Remove 解散大厅
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	sess, exists := r.lobbies[id]
	delete(r.lobbies, id)
	r.mu.Unlock()

	if !exists {
		return
	}

	sess.mu.Lock()
	sess.closeLocked()
	sess.mu.Unlock()

	if r.mirror != nil {
		mirror, logger := r.mirror, r.logger
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), mirrorTimeout)
			defer cancel()
			if err := mirror.DeleteLobby(ctx, id); err != nil {
				logger.Warn("⚠️ 删除大厅镜像失败", zap.String("lobby", id), zap.Error(err))
			}
		}()
	}

	r.logger.Info("🗑️ 大厅已解散", zap.String("lobby", id))
}

func (r *Registry) lookup(id string) (*Session, error) {
	sess := r.Get(id)
	if sess == nil {
		return nil, apperrors.ErrLobbyNotFound
	}
	return sess, nil
}

// Join 加入已有大厅
func (r *Registry) Join(id, connID, playerID, name string) (*Session, error) {
	sess, err := r.lookup(id)
	if err != nil {
		return nil, err
	}
	if err := sess.Join(connID, playerID, name); err != nil {
		return nil, err
	}
	return sess, nil
}

// Leave 主动离开大厅，大厅没有在线玩家时解散
func (r *Registry) Leave(id, connID string) error {
	sess, err := r.lookup(id)
	if err != nil {
		return err
	}
	empty, err := sess.Leave(connID)
	if err != nil {
		return err
	}
	if empty {
		r.Remove(id)
	}
	return nil
}

// Disconnect 连接断开时调用
func (r *Registry) Disconnect(id, connID string) {
	sess := r.Get(id)
	if sess == nil {
		return
	}
	if sess.Disconnect(connID) {
		r.Remove(id)
	}
}

// Reconnect 把玩家重新绑定到新连接
func (r *Registry) Reconnect(id, playerID, connID string) (*Session, error) {
	sess, err := r.lookup(id)
	if err != nil {
		return nil, err
	}
	if err := sess.Reconnect(playerID, connID); err != nil {
		return nil, err
	}
	return sess, nil
}

// StartGame 开始游戏
func (r *Registry) StartGame(id, connID string) error {
	sess, err := r.lookup(id)
	if err != nil {
		return err
	}
	return sess.StartGame(connID)
}

// FlipHand 翻转手牌
func (r *Registry) FlipHand(id, connID string) error {
	sess, err := r.lookup(id)
	if err != nil {
		return err
	}
	return sess.FlipHand(connID)
}

// KeepHand 保留手牌
func (r *Registry) KeepHand(id, connID string) error {
	sess, err := r.lookup(id)
	if err != nil {
		return err
	}
	return sess.KeepHand(connID)
}

// sessions 拷贝当前所有会话，调用方在不持有 mu 的情况下访问它们
func (r *Registry) sessions() []*Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := make([]*Session, 0, len(r.lobbies))
	for _, sess := range r.lobbies {
		list = append(list, sess)
	}
	return list
}

// List 大厅列表，按 ID 排序
func (r *Registry) List() []protocol.LobbySummary {
	list := r.sessions()
	summaries := make([]protocol.LobbySummary, 0, len(list))
	for _, sess := range list {
		sess.mu.Lock()
		summaries = append(summaries, protocol.LobbySummary{
			LobbyID: sess.ID,
			Phase:   int(sess.phase),
			Players: len(sess.players),
		})
		sess.mu.Unlock()
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].LobbyID < summaries[j].LobbyID
	})
	return summaries
}

// Count 大厅数量
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.lobbies)
}

// ActiveGamesCount 已开局且未结束的牌局数量
func (r *Registry) ActiveGamesCount() int {
	count := 0
	for _, sess := range r.sessions() {
		phase := sess.Phase()
		if phase == PhaseSetup || phase == PhaseInProgress {
			count++
		}
	}
	return count
}

// generateLobbyCode 生成未被占用的大厅码，调用方持有 mu
func (r *Registry) generateLobbyCode() string {
	for {
		code := make([]byte, lobbyCodeLength)
		for i := range code {
			code[i] = lobbyCodeCharset[rand.IntN(len(lobbyCodeCharset))]
		}
		if _, exists := r.lobbies[string(code)]; !exists {
			return string(code)
		}
	}
}

// validLobbyID 大厅 ID 只允许字母、数字、下划线和连字符
func validLobbyID(id string) bool {
	if id == "" || len(id) > maxLobbyIDLength {
		return false
	}
	for _, c := range id {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '_', c == '-':
		default:
			return false
		}
	}
	return true
}
