package handler

import (
	"errors"

	"go.uber.org/zap"

	"github.com/threadspeaker/scout-with-friends/internal/apperrors"
	"github.com/threadspeaker/scout-with-friends/internal/game/lobby"
	"github.com/threadspeaker/scout-with-friends/internal/protocol"
	"github.com/threadspeaker/scout-with-friends/internal/protocol/codec"
	"github.com/threadspeaker/scout-with-friends/internal/server/session"
	"github.com/threadspeaker/scout-with-friends/internal/types"
)

// HandlerDeps 处理器依赖
type HandlerDeps struct {
	Server         types.ServerInterface
	Registry       *lobby.Registry
	SessionManager *session.SessionManager
	Logger         *zap.Logger
}

// Handler 消息处理器，把客户端消息分发到大厅注册表
type Handler struct {
	server         types.ServerInterface
	registry       *lobby.Registry
	sessionManager *session.SessionManager
	logger         *zap.Logger
	handlers       map[protocol.MessageType]handlerFunc
}

// 不要求连接持有玩家身份的消息
var anonymousMessages = map[protocol.MessageType]bool{
	protocol.MsgPing:      true,
	protocol.MsgReconnect: true,
}

// handlerFunc 统一的处理器函数签名
type handlerFunc func(client types.ClientInterface, msg *protocol.Message)

// NewHandler 创建处理器
func NewHandler(deps HandlerDeps) *Handler {
	h := &Handler{
		server:         deps.Server,
		registry:       deps.Registry,
		sessionManager: deps.SessionManager,
		logger:         deps.Logger,
	}
	if h.logger == nil {
		h.logger = zap.NewNop()
	}
	h.initHandlers()
	return h
}

// initHandlers 初始化消息处理器映射
func (h *Handler) initHandlers() {
	h.handlers = map[protocol.MessageType]handlerFunc{
		// 连接操作
		protocol.MsgPing:      h.handlePing,
		protocol.MsgReconnect: h.handleReconnect,

		// 大厅操作
		protocol.MsgCreateLobby: h.handleCreateLobby,
		protocol.MsgJoinLobby:   h.handleJoinLobby,
		protocol.MsgLeaveLobby:  h.handleLeaveLobby,

		// 游戏操作
		protocol.MsgStartGame:      h.lobbyAction(h.registry.StartGame),
		protocol.MsgFlipPlayerHand: h.lobbyAction(h.registry.FlipHand),
		protocol.MsgKeepPlayerHand: h.lobbyAction(h.registry.KeepHand),
	}
}

// Handle 处理消息
func (h *Handler) Handle(client types.ClientInterface, msg *protocol.Message) {
	handler, ok := h.handlers[msg.Type]
	if !ok {
		h.unknownMessage(client, msg)
		return
	}

	// 身份已在新连接上重连，旧连接不能再代表该玩家操作
	if !anonymousMessages[msg.Type] && !h.sessionManager.Owns(client.GetPlayerID(), client.GetID()) {
		h.logger.Info("🔁 旧连接的身份已被接管",
			zap.String("player_id", client.GetPlayerID()),
			zap.String("conn", client.GetID()),
		)
		h.sendError(client, apperrors.ErrSessionReplaced)
		client.Close()
		return
	}
	handler(client, msg)
}

// unknownMessage 回复无法识别的消息类型
func (h *Handler) unknownMessage(client types.ClientInterface, msg *protocol.Message) {
	h.logger.Warn("⚠️ 未知消息类型",
		zap.String("type", string(msg.Type)),
		zap.String("player", client.GetName()),
		zap.String("conn", client.GetID()),
		zap.Int("payload_bytes", len(msg.Payload)),
	)
	client.SendMessage(codec.NewErrorMessage(protocol.ErrCodeInvalidMsg))
}

// Disconnect 连接断开时清理该连接在大厅和会话中的状态。
// 身份已被新连接接管时什么都不做。
func (h *Handler) Disconnect(client types.ClientInterface) {
	if !h.sessionManager.SetOffline(client.GetPlayerID(), client.GetID()) {
		return
	}
	if lobbyID := client.GetLobby(); lobbyID != "" {
		h.registry.Disconnect(lobbyID, client.GetID())
	}
}

// sendError 把错误回复给发起操作的连接，不影响其他玩家
func (h *Handler) sendError(client types.ClientInterface, err error) {
	var gameErr *apperrors.GameError
	if errors.As(err, &gameErr) {
		client.SendMessage(codec.NewErrorMessageWithText(gameErr.Code, gameErr.Message))
		return
	}
	h.logger.Error("❌ 处理消息失败", zap.String("conn", client.GetID()), zap.Error(err))
	client.SendMessage(codec.NewErrorMessage(protocol.ErrCodeUnknown))
}
