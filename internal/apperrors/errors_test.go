package apperrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/threadspeaker/scout-with-friends/internal/protocol"
)

func TestGameError_Is(t *testing.T) {
	t.Parallel()

	wrapped := fmt.Errorf("start failed: %w", ErrNotHost)
	assert.ErrorIs(t, wrapped, ErrNotHost)
	assert.NotErrorIs(t, wrapped, ErrLobbyNotFound)

	var gameErr *GameError
	assert.True(t, errors.As(wrapped, &gameErr))
	assert.Equal(t, protocol.ErrCodeNotHost, gameErr.Code)
	assert.Equal(t, "Only the host can start the game", gameErr.Error())

	assert.False(t, ErrNotHost.Is(errors.New("Only the host can start the game")))
}

func TestInsufficientPlayers(t *testing.T) {
	t.Parallel()

	err := InsufficientPlayers(3)
	assert.Equal(t, "Need at least 3 players to start", err.Error())
	assert.ErrorIs(t, err, ErrInsufficientPlayers)
	assert.Equal(t, protocol.ErrCodeNotEnoughPlayers, err.Code)
}

func TestPredefinedErrors_HaveMessages(t *testing.T) {
	t.Parallel()

	for _, err := range []*GameError{
		ErrLobbyNotFound, ErrLobbyFull, ErrDuplicateLobby, ErrGameStarted,
		ErrNotHost, ErrInsufficientPlayers, ErrInvalidPhaseAction, ErrAlreadyDecided,
		ErrPlayerNotFound, ErrInvalidMessage, ErrReconnectFailed, ErrSessionReplaced, ErrMaintenance,
	} {
		assert.NotEmpty(t, err.Error(), "code %d", err.Code)
	}
}
