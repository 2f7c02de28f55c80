//go:build !production

package testutil

import (
	"sync"

	"github.com/threadspeaker/scout-with-friends/internal/protocol"
)

// RecordingTransport 内存中的 types.Transport，按连接记录收到的消息。
// 分组广播会展开为对每个成员的投递，与真实 Hub 一致。
type RecordingTransport struct {
	mu     sync.Mutex
	groups map[string]map[string]bool
	inbox  map[string][]*protocol.Message
}

// NewRecordingTransport 创建记录型传输
func NewRecordingTransport() *RecordingTransport {
	return &RecordingTransport{
		groups: make(map[string]map[string]bool),
		inbox:  make(map[string][]*protocol.Message),
	}
}

func (t *RecordingTransport) SendTo(connID string, msg *protocol.Message) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.inbox[connID] = append(t.inbox[connID], msg)
}

func (t *RecordingTransport) SendToGroup(group string, msg *protocol.Message) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for connID := range t.groups[group] {
		t.inbox[connID] = append(t.inbox[connID], msg)
	}
}

func (t *RecordingTransport) AddToGroup(connID, group string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.groups[group] == nil {
		t.groups[group] = make(map[string]bool)
	}
	t.groups[group][connID] = true
}

func (t *RecordingTransport) RemoveFromGroup(connID, group string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.groups[group], connID)
	if len(t.groups[group]) == 0 {
		delete(t.groups, group)
	}
}

// Messages 某个连接收到的全部消息
func (t *RecordingTransport) Messages(connID string) []*protocol.Message {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]*protocol.Message(nil), t.inbox[connID]...)
}

// Types 某个连接收到的消息类型序列
func (t *RecordingTransport) Types(connID string) []protocol.MessageType {
	msgs := t.Messages(connID)
	types := make([]protocol.MessageType, len(msgs))
	for i, msg := range msgs {
		types[i] = msg.Type
	}
	return types
}

// Last 某个连接收到的最后一条指定类型消息
func (t *RecordingTransport) Last(connID string, msgType protocol.MessageType) *protocol.Message {
	msgs := t.Messages(connID)
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Type == msgType {
			return msgs[i]
		}
	}
	return nil
}

// Members 分组内的连接数
func (t *RecordingTransport) Members(group string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.groups[group])
}

// InGroup 连接是否在分组中
func (t *RecordingTransport) InGroup(connID, group string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.groups[group][connID]
}

// Reset 清空已记录的消息，保留分组
func (t *RecordingTransport) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.inbox = make(map[string][]*protocol.Message)
}
