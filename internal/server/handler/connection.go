package handler

import (
	"time"

	"go.uber.org/zap"

	"github.com/threadspeaker/scout-with-friends/internal/apperrors"
	"github.com/threadspeaker/scout-with-friends/internal/protocol"
	"github.com/threadspeaker/scout-with-friends/internal/protocol/codec"
	"github.com/threadspeaker/scout-with-friends/internal/types"
)

// handlePing 处理心跳消息
func (h *Handler) handlePing(client types.ClientInterface, msg *protocol.Message) {
	payload, err := codec.ParsePayload[protocol.PingPayload](msg)
	if err != nil {
		return
	}

	client.SendMessage(codec.MustNewMessage(protocol.MsgPong, protocol.PongPayload{
		ClientTimestamp: payload.Timestamp,
		ServerTimestamp: time.Now().UnixMilli(),
	}))
}

// handleReconnect 处理断线重连：新连接接管旧玩家身份，并回到原大厅
func (h *Handler) handleReconnect(client types.ClientInterface, msg *protocol.Message) {
	payload, err := codec.ParsePayload[protocol.ReconnectPayload](msg)
	if err != nil {
		h.sendError(client, apperrors.ErrInvalidMessage)
		return
	}

	if !h.sessionManager.CanReconnect(payload.Token, payload.PlayerID) {
		h.sendError(client, apperrors.ErrReconnectFailed)
		return
	}
	saved, ok := h.sessionManager.GetSession(payload.PlayerID)
	if !ok {
		h.sendError(client, apperrors.ErrReconnectFailed)
		return
	}

	// 丢弃建连时分配的临时身份；仍持有旧身份的连接此后会被拒绝
	if tempID := client.GetPlayerID(); tempID != saved.PlayerID {
		h.sessionManager.DeleteSession(tempID)
	}
	client.BindPlayer(saved.PlayerID, saved.PlayerName)
	h.sessionManager.SetOnline(saved.PlayerID, client.GetID())

	reply := protocol.ReconnectedPayload{
		PlayerID:   saved.PlayerID,
		PlayerName: saved.PlayerName,
	}
	if saved.LobbyID != "" && h.registry.Get(saved.LobbyID) != nil {
		reply.LobbyID = saved.LobbyID
	}
	client.SendMessage(codec.MustNewMessage(protocol.MsgReconnected, reply))

	if reply.LobbyID != "" {
		if _, err := h.registry.Reconnect(reply.LobbyID, saved.PlayerID, client.GetID()); err != nil {
			h.sessionManager.SetLobby(saved.PlayerID, "")
			h.sendError(client, err)
			return
		}
		client.SetLobby(reply.LobbyID)
	} else {
		h.sessionManager.SetLobby(saved.PlayerID, "")
	}

	h.logger.Info("🔄 玩家重连成功",
		zap.String("player", saved.PlayerName),
		zap.String("player_id", saved.PlayerID),
		zap.String("lobby", reply.LobbyID),
	)
}
