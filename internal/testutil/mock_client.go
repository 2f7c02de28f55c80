//go:build !production

package testutil

import (
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/threadspeaker/scout-with-friends/internal/protocol"
)

// MockClient 实现 types.ClientInterface 的 mock
type MockClient struct {
	mock.Mock
}

func (m *MockClient) GetID() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockClient) GetPlayerID() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockClient) GetName() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockClient) BindPlayer(playerID, name string) {
	m.Called(playerID, name)
}

func (m *MockClient) GetLobby() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockClient) SetLobby(id string) {
	m.Called(id)
}

func (m *MockClient) SendMessage(msg *protocol.Message) {
	m.Called(msg)
}

func (m *MockClient) Close() {
	m.Called()
}

// SimpleClient 简单的 mock 客户端，不使用 testify（用于不需要断言调用的测试）
type SimpleClient struct {
	ID       string
	PlayerID string
	Name     string
	LobbyID  string

	mu       sync.Mutex
	Messages []*protocol.Message
	Closed   bool
}

func (m *SimpleClient) GetID() string       { return m.ID }
func (m *SimpleClient) GetPlayerID() string { return m.PlayerID }
func (m *SimpleClient) GetName() string     { return m.Name }
func (m *SimpleClient) GetLobby() string    { return m.LobbyID }
func (m *SimpleClient) SetLobby(id string)  { m.LobbyID = id }

func (m *SimpleClient) BindPlayer(playerID, name string) {
	m.PlayerID = playerID
	m.Name = name
}

func (m *SimpleClient) SendMessage(msg *protocol.Message) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Messages = append(m.Messages, msg)
}

func (m *SimpleClient) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Closed = true
}

// Last 最后一条消息，没有时返回 nil
func (m *SimpleClient) Last() *protocol.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Messages) == 0 {
		return nil
	}
	return m.Messages[len(m.Messages)-1]
}

// Types 已收到消息的类型序列
func (m *SimpleClient) Types() []protocol.MessageType {
	m.mu.Lock()
	defer m.mu.Unlock()
	types := make([]protocol.MessageType, len(m.Messages))
	for i, msg := range m.Messages {
		types[i] = msg.Type
	}
	return types
}
