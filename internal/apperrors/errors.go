package apperrors

import (
	"errors"
	"fmt"

	"github.com/threadspeaker/scout-with-friends/internal/protocol"
)

// GameError 游戏错误（大厅和会话共享），只回复给发起操作的连接
type GameError struct {
	Code    int
	Message string
}

func (e *GameError) Error() string {
	return e.Message
}

// Is 按错误码匹配，使带格式化消息的错误也能与预定义错误比较
func (e *GameError) Is(target error) bool {
	var t *GameError
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code
}

func newError(code int) *GameError {
	return &GameError{Code: code, Message: protocol.ErrorMessages[code]}
}

// 预定义错误
var (
	ErrLobbyNotFound       = newError(protocol.ErrCodeLobbyNotFound)
	ErrLobbyFull           = newError(protocol.ErrCodeLobbyFull)
	ErrDuplicateLobby      = newError(protocol.ErrCodeDuplicateLobby)
	ErrGameStarted         = newError(protocol.ErrCodeGameStarted)
	ErrNotHost             = newError(protocol.ErrCodeNotHost)
	ErrInsufficientPlayers = newError(protocol.ErrCodeNotEnoughPlayers)
	ErrInvalidPhaseAction  = newError(protocol.ErrCodeInvalidPhase)
	ErrAlreadyDecided      = newError(protocol.ErrCodeAlreadyDecided)
	ErrPlayerNotFound      = newError(protocol.ErrCodePlayerNotFound)
	ErrInvalidMessage      = newError(protocol.ErrCodeInvalidMsg)
	ErrReconnectFailed     = newError(protocol.ErrCodeReconnectFailed)
	ErrSessionReplaced     = newError(protocol.ErrCodeSessionReplaced)
	ErrMaintenance         = newError(protocol.ErrCodeServerMaintenance)
)

// InsufficientPlayers 带最少人数的错误消息
func InsufficientPlayers(minPlayers int) *GameError {
	return &GameError{
		Code:    protocol.ErrCodeNotEnoughPlayers,
		Message: fmt.Sprintf("Need at least %d players to start", minPlayers),
	}
}
