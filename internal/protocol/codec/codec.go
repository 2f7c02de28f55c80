package codec

import (
	"encoding/json"
	"errors"
	"fmt"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/threadspeaker/scout-with-friends/internal/protocol"
)

// 编码格式名称（对应配置 server.codec）
const (
	FormatJSON     = "json"
	FormatProtobuf = "protobuf"
)

// ErrMissingType 消息缺少 type 字段
var ErrMissingType = errors.New("消息缺少 type 字段")

// Codec 消息编解码器
type Codec interface {
	Encode(m *protocol.Message) ([]byte, error)
	// Decode 返回的消息来自对象池，处理完毕后应调用 PutMessage
	Decode(data []byte) (*protocol.Message, error)
	// Binary 是否使用二进制帧传输
	Binary() bool
}

// New 按格式名称创建编解码器
func New(format string) (Codec, error) {
	switch format {
	case FormatJSON, "":
		return JSONCodec{}, nil
	case FormatProtobuf:
		return ProtobufCodec{}, nil
	default:
		return nil, fmt.Errorf("未知的编码格式: %q", format)
	}
}

// JSONCodec 文本帧 JSON 编码
type JSONCodec struct{}

// Binary 使用文本帧
func (JSONCodec) Binary() bool { return false }

// Encode 将消息编码为 JSON 字节
func (JSONCodec) Encode(m *protocol.Message) ([]byte, error) {
	buf := GetBuffer()
	defer PutBuffer(buf)

	if err := json.NewEncoder(buf).Encode(m); err != nil {
		return nil, err
	}
	// Encoder 会追加换行符
	out := make([]byte, buf.Len()-1)
	copy(out, buf.Bytes())
	return out, nil
}

// Decode 从 JSON 字节解码消息
func (JSONCodec) Decode(data []byte) (*protocol.Message, error) {
	msg := GetMessage()
	if err := json.Unmarshal(data, msg); err != nil {
		PutMessage(msg)
		return nil, err
	}
	if msg.Type == "" {
		PutMessage(msg)
		return nil, ErrMissingType
	}
	return msg, nil
}

// ProtobufCodec 二进制帧编码，信封为 google.protobuf.Struct
type ProtobufCodec struct{}

// Binary 使用二进制帧
func (ProtobufCodec) Binary() bool { return true }

// Encode 将消息编码为 Protobuf 字节
func (ProtobufCodec) Encode(m *protocol.Message) ([]byte, error) {
	var payload any
	if len(m.Payload) > 0 {
		if err := json.Unmarshal(m.Payload, &payload); err != nil {
			return nil, fmt.Errorf("payload 不是合法 JSON: %w", err)
		}
	}

	st, err := structpb.NewStruct(map[string]any{
		"type":    string(m.Type),
		"payload": payload,
	})
	if err != nil {
		return nil, err
	}
	return proto.Marshal(st)
}

// Decode 从 Protobuf 字节解码消息
func (ProtobufCodec) Decode(data []byte) (*protocol.Message, error) {
	st := &structpb.Struct{}
	if err := proto.Unmarshal(data, st); err != nil {
		return nil, err
	}

	msgType := st.GetFields()["type"].GetStringValue()
	if msgType == "" {
		return nil, ErrMissingType
	}

	msg := GetMessage()
	msg.Type = protocol.MessageType(msgType)

	if v, ok := st.GetFields()["payload"]; ok {
		if _, isNull := v.GetKind().(*structpb.Value_NullValue); !isNull {
			raw, err := json.Marshal(v.AsInterface())
			if err != nil {
				PutMessage(msg)
				return nil, err
			}
			msg.Payload = raw
		}
	}
	return msg, nil
}
