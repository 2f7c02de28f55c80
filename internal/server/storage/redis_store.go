package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// Redis key 前缀
	lobbyKeyPrefix = "scout:lobby:"
	lobbyIndexKey  = "scout:lobbies"

	// 大厅数据过期时间
	lobbyExpiration = 2 * time.Hour
)

// LobbyData 大厅摘要（用于 Redis 镜像，不用于恢复状态）
type LobbyData struct {
	ID         string       `json:"id"`
	Phase      int          `json:"phase"`
	HostID     string       `json:"host_id"`
	MinPlayers int          `json:"min_players"`
	Players    []PlayerData `json:"players"`
	CreatedAt  int64        `json:"created_at"`
	UpdatedAt  int64        `json:"updated_at"`
}

// PlayerData 玩家摘要
type PlayerData struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	HandSize   int    `json:"hand_size"`
	HasDecided bool   `json:"has_decided"`
	IsTurn     bool   `json:"is_turn"`
	Points     int    `json:"points"`
	Tokens     int    `json:"tokens"`
	Connected  bool   `json:"connected"`
}

// RedisStore Redis 存储
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore 创建 Redis 存储
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// SaveLobby 保存大厅摘要到 Redis
func (rs *RedisStore) SaveLobby(ctx context.Context, data *LobbyData) error {
	if data == nil {
		return nil
	}

	jsonData, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("序列化大厅数据失败: %w", err)
	}

	pipe := rs.client.TxPipeline()
	pipe.Set(ctx, lobbyKeyPrefix+data.ID, jsonData, lobbyExpiration)
	pipe.SAdd(ctx, lobbyIndexKey, data.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("保存大厅 %s 失败: %w", data.ID, err)
	}
	return nil
}

// LoadLobby 从 Redis 加载大厅摘要，不存在时返回 nil
func (rs *RedisStore) LoadLobby(ctx context.Context, id string) (*LobbyData, error) {
	data, err := rs.client.Get(ctx, lobbyKeyPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var lobbyData LobbyData
	if err := json.Unmarshal(data, &lobbyData); err != nil {
		return nil, fmt.Errorf("反序列化大厅数据失败: %w", err)
	}
	return &lobbyData, nil
}

// DeleteLobby 从 Redis 删除大厅
func (rs *RedisStore) DeleteLobby(ctx context.Context, id string) error {
	pipe := rs.client.TxPipeline()
	pipe.Del(ctx, lobbyKeyPrefix+id)
	pipe.SRem(ctx, lobbyIndexKey, id)
	_, err := pipe.Exec(ctx)
	return err
}

// ListLobbyIDs 获取所有镜像中的大厅 ID
func (rs *RedisStore) ListLobbyIDs(ctx context.Context) ([]string, error) {
	return rs.client.SMembers(ctx, lobbyIndexKey).Result()
}

// PurgeLobbies 清除上一个进程遗留的镜像数据，返回清除数量
func (rs *RedisStore) PurgeLobbies(ctx context.Context) (int, error) {
	ids, err := rs.ListLobbyIDs(ctx)
	if err != nil {
		return 0, err
	}
	for _, id := range ids {
		if err := rs.DeleteLobby(ctx, id); err != nil {
			return 0, err
		}
	}
	return len(ids), nil
}

// Ping 检查 Redis 连接
func (rs *RedisStore) Ping(ctx context.Context) error {
	return rs.client.Ping(ctx).Err()
}

// Close 关闭 Redis 连接
func (rs *RedisStore) Close() error {
	return rs.client.Close()
}
