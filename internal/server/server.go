package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"runtime"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/threadspeaker/scout-with-friends/internal/config"
	"github.com/threadspeaker/scout-with-friends/internal/game/lobby"
	"github.com/threadspeaker/scout-with-friends/internal/protocol"
	"github.com/threadspeaker/scout-with-friends/internal/protocol/codec"
	"github.com/threadspeaker/scout-with-friends/internal/server/handler"
	"github.com/threadspeaker/scout-with-friends/internal/server/session"
	"github.com/threadspeaker/scout-with-friends/internal/server/storage"
)

// Server WebSocket 服务器
type Server struct {
	config *config.Config
	logger *zap.Logger

	store          *storage.RedisStore // Redis 未启用时为 nil
	codec          codec.Codec
	hub            *Hub
	registry       *lobby.Registry
	sessionManager *session.SessionManager
	handler        *handler.Handler
	upgrader       websocket.Upgrader
	httpServer     *http.Server

	// 安全组件
	rateLimiter    *RateLimiter
	originChecker  *OriginChecker
	messageLimiter *MessageRateLimiter

	// 连接控制
	maxConnections int
	semaphore      chan struct{} // 信号量控制并发连接数

	// 维护模式
	maintenanceMode bool
	maintenanceMu   sync.RWMutex
}

// NewServer 创建服务器实例。启用 Redis 时先检查连接并清理上次运行遗留的镜像。
func NewServer(cfg *config.Config, logger *zap.Logger) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	c, err := codec.New(cfg.Server.Codec)
	if err != nil {
		return nil, err
	}

	s := &Server{
		config:         cfg,
		logger:         logger,
		codec:          c,
		hub:            NewHub(c, logger.Named("hub")),
		sessionManager: session.NewSessionManager(),
		rateLimiter: NewRateLimiter(
			cfg.Security.RateLimit.MaxPerSecond,
			cfg.Security.RateLimit.MaxPerMinute,
			cfg.Security.RateLimit.BanDurationTime(),
		),
		originChecker:  NewOriginChecker(cfg.Security.AllowedOrigins),
		messageLimiter: NewMessageRateLimiter(cfg.Security.MessageLimit.MaxPerSecond),
		maxConnections: cfg.Server.MaxConnections,
		semaphore:      make(chan struct{}, cfg.Server.MaxConnections),
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.originChecker.Check,
	}

	// 接口值必须保持为 nil，不能是空的 *RedisStore
	var mirror lobby.Mirror
	if cfg.Redis.Enabled {
		store, err := s.openStore(cfg.Redis)
		if err != nil {
			return nil, err
		}
		s.store = store
		mirror = store
	}

	s.registry = lobby.NewRegistry(lobby.Options{
		Transport:    s.hub,
		Mirror:       mirror,
		Logger:       logger.Named("lobby"),
		MinPlayers:   cfg.Game.MinPlayers,
		MaxPlayers:   cfg.Game.MaxPlayers,
		LobbyTimeout: cfg.Game.LobbyTimeoutDuration(),
	})

	s.handler = handler.NewHandler(handler.HandlerDeps{
		Server:         s,
		Registry:       s.registry,
		SessionManager: s.sessionManager,
		Logger:         logger.Named("handler"),
	})

	logger.Info("🔒 安全配置",
		zap.Int("conn_per_second", cfg.Security.RateLimit.MaxPerSecond),
		zap.Int("msg_per_second", cfg.Security.MessageLimit.MaxPerSecond),
		zap.Int("max_connections", cfg.Server.MaxConnections),
		zap.Strings("allowed_origins", cfg.Security.AllowedOrigins),
	)
	return s, nil
}

// openStore 连接 Redis 并清除遗留的大厅镜像
func (s *Server) openStore(cfg config.RedisConfig) (*storage.RedisStore, error) {
	store := storage.NewRedisStore(redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := store.Ping(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("redis 连接失败: %w", err)
	}

	purged, err := store.PurgeLobbies(ctx)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("清理 redis 大厅镜像失败: %w", err)
	}
	if purged > 0 {
		s.logger.Info("🧹 已清除遗留的大厅镜像", zap.Int("count", purged))
	}
	return store, nil
}

// routes HTTP 路由
func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/lobbies", s.handleLobbies)
	return mux
}

// Start 启动后台任务并监听，直到 ctx 结束或 Shutdown 被调用
func (s *Server) Start(ctx context.Context) error {
	go s.registry.CleanupLoop(ctx)
	go s.sessionManager.CleanupLoop(ctx)
	go s.monitorStats(ctx)

	addr := s.config.Server.Addr()
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second, // 防止 Slowloris 攻击
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	s.logger.Info("🚀 服务器启动",
		zap.String("url", "ws://"+addr+"/ws"),
		zap.String("codec", s.config.Server.Codec),
		zap.Int("cpus", runtime.NumCPU()),
	)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// handleWebSocket 处理 WebSocket 握手：维护模式、连接数、来源、频率依次检查
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	clientIP := GetClientIP(r)

	// 维护模式检查（最优先）
	if s.IsMaintenanceMode() {
		s.logger.Info("🔧 维护模式，拒绝新连接", zap.String("ip", clientIP))
		http.Error(w, "Server is under maintenance, please try again later", http.StatusServiceUnavailable)
		return
	}

	// 连接数限制检查，名额在连接断开时释放
	select {
	case s.semaphore <- struct{}{}:
	default:
		s.logger.Warn("🚫 达到最大连接数限制", zap.Int("max", s.maxConnections), zap.String("ip", clientIP))
		http.Error(w, "Server Full", http.StatusServiceUnavailable)
		return
	}

	// 来源验证
	if !s.originChecker.Check(r) {
		s.release()
		s.logger.Warn("🚫 来源验证失败", zap.String("origin", r.Header.Get("Origin")), zap.String("ip", clientIP))
		http.Error(w, "Origin not allowed", http.StatusForbidden)
		return
	}

	// 速率限制检查
	if !s.rateLimiter.Allow(clientIP) {
		s.release()
		s.logger.Warn("🚫 请求过于频繁", zap.String("ip", clientIP))
		http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.release()
		s.logger.Warn("WebSocket 升级失败", zap.Error(err))
		return
	}

	client := NewClient(s, s.hub, conn)
	client.IP = clientIP
	s.hub.Register(client)

	sess := s.sessionManager.CreateSession(client.GetPlayerID(), client.GetName(), client.ID)

	// 发送连接成功消息（包含重连令牌）
	client.SendMessage(codec.MustNewMessage(protocol.MsgConnected, protocol.ConnectedPayload{
		PlayerID:       sess.PlayerID,
		PlayerName:     sess.PlayerName,
		ReconnectToken: sess.ReconnectToken,
	}))

	s.logger.Info("✅ 玩家已连接",
		zap.String("player", sess.PlayerName),
		zap.String("player_id", sess.PlayerID),
		zap.String("conn", client.ID),
		zap.String("ip", clientIP),
	)

	go client.ReadPump()
	go client.WritePump()
}

// release 归还一个连接名额
func (s *Server) release() {
	select {
	case <-s.semaphore:
	default:
	}
}

// handleHealth 健康检查接口
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// handleLobbies 大厅列表
func (s *Server) handleLobbies(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.registry.List()); err != nil {
		s.logger.Warn("写入大厅列表失败", zap.Error(err))
	}
}

// GetOnlineCount 获取在线连接数
func (s *Server) GetOnlineCount() int {
	return s.hub.Count()
}
