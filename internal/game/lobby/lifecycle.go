package lobby

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// CleanupLoop 定期清理空闲大厅，直到 ctx 结束
func (r *Registry) CleanupLoop(ctx context.Context) {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			r.cleanup(now)
		}
	}
}

// cleanup 移除超时未开局、已结束或无人在线的大厅，返回清理数量
func (r *Registry) cleanup(now time.Time) int {
	var expired []string
	for _, sess := range r.sessions() {
		sess.mu.Lock()
		idle := now.Sub(sess.updateAt) > r.lobbyTimeout
		stale := sess.phase == PhaseLobby || sess.phase == PhaseFinished || sess.connectedCount() == 0
		if idle && stale {
			// 锁内关闭，避免判定之后有玩家加入
			sess.closed = true
			expired = append(expired, sess.ID)
		}
		sess.mu.Unlock()
	}

	for _, id := range expired {
		r.Remove(id)
	}
	if len(expired) > 0 {
		r.logger.Info("🧹 清理空闲大厅", zap.Int("count", len(expired)))
	}
	return len(expired)
}
