package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/threadspeaker/scout-with-friends/internal/config"
	"github.com/threadspeaker/scout-with-friends/internal/logger"
	"github.com/threadspeaker/scout-with-friends/internal/server"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "配置文件路径（为空时使用默认配置和 SCOUT_ 环境变量）")
	flag.Parse()

	// 加载配置
	cfg, loadErr := config.Load(*configPath)
	if loadErr != nil {
		cfg = config.Default()
	}

	log, err := logger.NewLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "创建日志失败: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if loadErr != nil {
		log.Warn("加载配置文件失败，使用默认配置", zap.String("path", *configPath), zap.Error(loadErr))
	}

	// 创建服务器
	srv, err := server.NewServer(cfg, log)
	if err != nil {
		log.Fatal("创建服务器失败", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 优雅关闭：等待进行中的对局结束
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-quit
		log.Info("正在关闭服务器...", zap.String("signal", sig.String()))
		srv.GracefulShutdown(cfg.Game.ShutdownTimeoutDuration())
		cancel()
	}()

	log.Info("🎴 Scout 服务器启动中...")
	if err := srv.Start(ctx); err != nil {
		log.Fatal("服务器启动失败", zap.Error(err))
	}
	<-ctx.Done()
}
