package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/threadspeaker/scout-with-friends/internal/protocol"
)

// 解码得到的消息归还对象池后再次解码，不能残留上一条消息的内容
func TestDecode_PooledMessageReset(t *testing.T) {
	t.Parallel()

	for _, format := range []string{FormatJSON, FormatProtobuf} {
		t.Run(format, func(t *testing.T) {
			t.Parallel()
			c, err := New(format)
			require.NoError(t, err)

			withPayload, err := c.Encode(MustNewMessage(protocol.MsgJoinLobby, protocol.JoinLobbyPayload{LobbyID: "ROOM"}))
			require.NoError(t, err)
			bare, err := c.Encode(MustNewMessage(protocol.MsgKeepPlayerHand, nil))
			require.NoError(t, err)

			for range 20 {
				msg, err := c.Decode(withPayload)
				require.NoError(t, err)
				require.Equal(t, protocol.MsgJoinLobby, msg.Type)
				payload, err := ParsePayload[protocol.JoinLobbyPayload](msg)
				require.NoError(t, err)
				assert.Equal(t, "ROOM", payload.LobbyID)
				PutMessage(msg)

				msg, err = c.Decode(bare)
				require.NoError(t, err)
				assert.Equal(t, protocol.MsgKeepPlayerHand, msg.Type)
				assert.Empty(t, msg.Payload)
				PutMessage(msg)
			}
		})
	}
}

// 解码失败时消息已归还对象池，调用方拿到的是 nil
func TestDecode_FailureReturnsNoMessage(t *testing.T) {
	t.Parallel()

	c := JSONCodec{}
	for _, data := range []string{`{"payload":{"lobbyId":"ROOM"}}`, `{bad`} {
		msg, err := c.Decode([]byte(data))
		assert.Error(t, err)
		assert.Nil(t, msg)
	}

	msg, err := c.Decode([]byte(`{"type":"Ping"}`))
	require.NoError(t, err)
	assert.Equal(t, protocol.MsgPing, msg.Type)
	assert.Empty(t, msg.Payload)
	PutMessage(msg)

	assert.NotPanics(t, func() { PutMessage(nil) })
}

// Encode 复用缓冲区，返回的字节必须与缓冲区脱钩
func TestEncode_OutputOwnsBytes(t *testing.T) {
	t.Parallel()

	c := JSONCodec{}
	first, err := c.Encode(MustNewMessage(protocol.MsgPong, protocol.PongPayload{ClientTimestamp: 1}))
	require.NoError(t, err)
	snapshot := string(first)

	_, err = c.Encode(MustNewMessage(protocol.MsgPlayerLeft, protocol.PlayerLeftPayload{PlayerID: "p1", PlayerName: "Ann"}))
	require.NoError(t, err)
	assert.Equal(t, snapshot, string(first))
	assert.NotContains(t, snapshot, "\n")

	buf := GetBuffer()
	assert.Zero(t, buf.Len())
	PutBuffer(buf)
	assert.NotPanics(t, func() { PutBuffer(nil) })
}
