package server

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"go.uber.org/zap"

	"github.com/threadspeaker/scout-with-friends/internal/protocol"
	"github.com/threadspeaker/scout-with-friends/internal/protocol/codec"
)

const (
	statsInterval   = 30 * time.Second
	httpStopTimeout = 5 * time.Second
)

// monitorStats 定期记录服务器状态并清理限流记录，直到 ctx 结束
func (s *Server) monitorStats(ctx context.Context) {
	ticker := time.NewTicker(statsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		var m runtime.MemStats
		runtime.ReadMemStats(&m)

		pruned := s.rateLimiter.Prune()
		s.logger.Info("📊 [监控]",
			zap.Int("online", s.GetOnlineCount()),
			zap.Int("lobbies", s.registry.Count()),
			zap.Int("active_games", s.registry.ActiveGamesCount()),
			zap.Int("sessions", s.sessionManager.Count()),
			zap.Int("goroutines", runtime.NumGoroutine()),
			zap.String("connections", fmt.Sprintf("%d/%d", len(s.semaphore), s.maxConnections)),
			zap.Float64("alloc_mb", float64(m.Alloc)/1024/1024),
			zap.Int("rate_records_pruned", pruned),
		)
	}
}

// EnterMaintenanceMode 进入维护模式：拒绝新连接、新建和加入大厅
func (s *Server) EnterMaintenanceMode() {
	s.maintenanceMu.Lock()
	s.maintenanceMode = true
	s.maintenanceMu.Unlock()

	// 通知不在大厅中的玩家
	s.hub.BroadcastIdle(codec.NewErrorMessageWithText(protocol.ErrCodeServerMaintenance,
		"👷 Maintenance mode: new lobbies are disabled"))

	s.logger.Info("🔧 进入维护模式：停止新连接和大厅创建")
}

// IsMaintenanceMode 检查是否在维护模式
func (s *Server) IsMaintenanceMode() bool {
	s.maintenanceMu.RLock()
	defer s.maintenanceMu.RUnlock()
	return s.maintenanceMode
}

// GracefulShutdown 进入维护模式，等待进行中的对局结束（最多 timeout），然后关闭
func (s *Server) GracefulShutdown(timeout time.Duration) {
	s.EnterMaintenanceMode()

	deadline := time.Now().Add(timeout)
	ticker := time.NewTicker(s.config.Game.ShutdownCheckIntervalDuration())
	defer ticker.Stop()

	for time.Now().Before(deadline) {
		activeGames := s.registry.ActiveGamesCount()
		if activeGames == 0 {
			s.logger.Info("✅ 所有对局已结束")
			break
		}
		s.logger.Info("⏳ 等待对局结束...", zap.Int("active_games", activeGames))
		<-ticker.C
	}

	if activeGames := s.registry.ActiveGamesCount(); activeGames > 0 {
		s.logger.Warn("⚠️ 超时，仍有对局进行中，强制关闭", zap.Int("active_games", activeGames))
	}

	s.Shutdown()
}

// Shutdown 关闭所有连接、HTTP 服务和 Redis
func (s *Server) Shutdown() {
	s.hub.Broadcast(codec.NewErrorMessageWithText(protocol.ErrCodeServerMaintenance,
		"🚧 Server is shutting down"))
	s.hub.CloseAll()

	if s.httpServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), httpStopTimeout)
		defer cancel()
		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.logger.Warn("HTTP 服务关闭失败", zap.Error(err))
		}
	}

	if s.store != nil {
		_ = s.store.Close()
	}

	s.logger.Info("服务器已关闭")
}
