package handler

import (
	"github.com/threadspeaker/scout-with-friends/internal/apperrors"
	"github.com/threadspeaker/scout-with-friends/internal/protocol"
	"github.com/threadspeaker/scout-with-friends/internal/protocol/codec"
	"github.com/threadspeaker/scout-with-friends/internal/types"
)

// lobbyAction 包装开始、翻面、保留三种游戏操作。
// 请求未带大厅 ID 时使用连接当前所在的大厅；成功时广播由会话完成。
func (h *Handler) lobbyAction(action func(lobbyID, connID string) error) handlerFunc {
	return func(client types.ClientInterface, msg *protocol.Message) {
		payload, err := codec.ParsePayload[protocol.LobbyActionPayload](msg)
		if err != nil {
			h.sendError(client, apperrors.ErrInvalidMessage)
			return
		}

		lobbyID := payload.LobbyID
		if lobbyID == "" {
			lobbyID = client.GetLobby()
		}
		if err := action(lobbyID, client.GetID()); err != nil {
			h.sendError(client, err)
		}
	}
}
