//go:build !production

package testutil

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/threadspeaker/scout-with-friends/internal/server/storage"
)

// MockMirror 大厅镜像 mock
type MockMirror struct {
	mock.Mock
}

func (m *MockMirror) SaveLobby(ctx context.Context, data *storage.LobbyData) error {
	args := m.Called(ctx, data)
	return args.Error(0)
}

func (m *MockMirror) DeleteLobby(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
