package handler

import (
	"github.com/threadspeaker/scout-with-friends/internal/apperrors"
	"github.com/threadspeaker/scout-with-friends/internal/protocol"
	"github.com/threadspeaker/scout-with-friends/internal/protocol/codec"
	"github.com/threadspeaker/scout-with-friends/internal/types"
)

// handleCreateLobby 处理创建大厅
func (h *Handler) handleCreateLobby(client types.ClientInterface, msg *protocol.Message) {
	if h.server.IsMaintenanceMode() {
		h.sendError(client, apperrors.ErrMaintenance)
		return
	}

	payload, err := codec.ParsePayload[protocol.CreateLobbyPayload](msg)
	if err != nil {
		h.sendError(client, apperrors.ErrInvalidMessage)
		return
	}

	h.leaveCurrent(client)
	h.rename(client, payload.Name)

	sess, err := h.registry.Create(payload.LobbyID, client.GetID(), client.GetPlayerID(), client.GetName())
	if err != nil {
		h.sendError(client, err)
		return
	}

	client.SetLobby(sess.ID)
	h.sessionManager.SetLobby(client.GetPlayerID(), sess.ID)
	client.SendMessage(codec.MustNewMessage(protocol.MsgLobbyCreated, sess.Info()))
}

// handleJoinLobby 处理加入大厅
func (h *Handler) handleJoinLobby(client types.ClientInterface, msg *protocol.Message) {
	if h.server.IsMaintenanceMode() {
		h.sendError(client, apperrors.ErrMaintenance)
		return
	}

	payload, err := codec.ParsePayload[protocol.JoinLobbyPayload](msg)
	if err != nil {
		h.sendError(client, apperrors.ErrInvalidMessage)
		return
	}

	if client.GetLobby() != payload.LobbyID {
		h.leaveCurrent(client)
	}
	h.rename(client, payload.Name)

	sess, err := h.registry.Join(payload.LobbyID, client.GetID(), client.GetPlayerID(), client.GetName())
	if err != nil {
		h.sendError(client, err)
		return
	}

	client.SetLobby(sess.ID)
	h.sessionManager.SetLobby(client.GetPlayerID(), sess.ID)
	client.SendMessage(codec.MustNewMessage(protocol.MsgLobbyJoined, sess.Info()))
}

// handleLeaveLobby 处理离开大厅
func (h *Handler) handleLeaveLobby(client types.ClientInterface, _ *protocol.Message) {
	lobbyID := client.GetLobby()
	if lobbyID == "" {
		h.sendError(client, apperrors.ErrPlayerNotFound)
		return
	}
	if err := h.registry.Leave(lobbyID, client.GetID()); err != nil {
		h.sendError(client, err)
		return
	}

	client.SetLobby("")
	h.sessionManager.SetLobby(client.GetPlayerID(), "")
	client.SendMessage(codec.MustNewMessage(protocol.MsgPlayerLeft, protocol.PlayerLeftPayload{
		PlayerID:   client.GetPlayerID(),
		PlayerName: client.GetName(),
	}))
}

// leaveCurrent 如果已在某个大厅中，先离开
func (h *Handler) leaveCurrent(client types.ClientInterface) {
	if lobbyID := client.GetLobby(); lobbyID != "" {
		_ = h.registry.Leave(lobbyID, client.GetID())
		client.SetLobby("")
		h.sessionManager.SetLobby(client.GetPlayerID(), "")
	}
}

// rename 使用请求中的昵称，空昵称保留系统分配的昵称
func (h *Handler) rename(client types.ClientInterface, name string) {
	if name == "" || name == client.GetName() {
		return
	}
	client.BindPlayer(client.GetPlayerID(), name)
	h.sessionManager.SetName(client.GetPlayerID(), name)
}
