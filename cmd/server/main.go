// Package main 是应用程序的入口点。
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"qa-session-go/internal/cache"
	"qa-session-go/internal/config"
	"qa-session-go/internal/handler"
	"qa-session-go/internal/middleware"
	"qa-session-go/internal/pipeline"
	"qa-session-go/internal/repository"
	"qa-session-go/internal/service"
	"qa-session-go/internal/session"
	"qa-session-go/pkg/chatapi"
	"qa-session-go/pkg/database"
	"qa-session-go/pkg/kafka"
	"qa-session-go/pkg/log"
	"qa-session-go/pkg/storage"
	"qa-session-go/pkg/token"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
)

func main() {
	// 1. 初始化配置
	config.Init("./configs/config.yaml")
	cfg := config.Conf

	// 2. 初始化日志记录器
	log.Init(cfg.Log.Level, cfg.Log.Format, cfg.Log.OutputPath)
	defer log.Sync()
	log.Info("日志记录器初始化成功")

	// 3. 问答缓存，配置了 Redis 时从快照恢复并在每次变更后写回
	var persister cache.Persister
	if cfg.Database.Redis.Addr != "" {
		if err := database.InitRedis(cfg.Database.Redis); err != nil {
			log.Fatalf("Redis 初始化失败: %v", err)
		}
		persister = repository.NewCacheRepository(database.RDB, cfg.Cache.PersistKey)
	} else {
		log.Warnf("未配置 Redis，问答缓存不做持久化")
	}
	qaCache := cache.New(cfg.Cache.Capacity, persister)
	restoreCtx, cancelRestore := context.WithTimeout(context.Background(), 5*time.Second)
	if err := qaCache.Restore(restoreCtx); err != nil {
		log.Warnf("恢复问答缓存失败，使用空缓存: %v", err)
	}
	cancelRestore()

	// 4. 可选协作方：会话存储、附件对象存储、问答事件
	var loader repository.ConversationRepository
	if cfg.Database.MySQL.DSN != "" {
		if err := database.InitMySQL(cfg.Database.MySQL.DSN); err != nil {
			log.Fatalf("MySQL 初始化失败: %v", err)
		}
		loader = repository.NewConversationRepository(database.DB)
	}

	opts := service.EngineOptions{AttachmentPrompt: cfg.Chat.AttachmentPrompt}
	if cfg.MinIO.Endpoint != "" {
		resolver, err := storage.NewAttachmentResolver(cfg.MinIO)
		if err != nil {
			log.Fatalf("MinIO 初始化失败: %v", err)
		}
		opts.Resolver = resolver
	}
	var publisher *kafka.ExchangePublisher
	if cfg.Kafka.Brokers != "" {
		publisher = kafka.NewExchangePublisher(cfg.Kafka)
		opts.Recorder = publisher
	}

	// 5. 远端问答服务与请求管道
	chatClient := chatapi.NewClient(cfg.Chat)
	p := pipeline.New(chatClient, pipeline.Config{
		MaxRetries:     cfg.Chat.MaxRetries,
		BackoffBase:    cfg.Chat.BackoffBase,
		AttemptTimeout: cfg.Chat.AttemptTimeout,
	})
	opts.Suggestions = service.NewSuggestionService(cfg.Suggestions.Local, chatClient)

	engine := service.NewChatEngine(session.NewStore(), qaCache, p, loader, opts)

	// 启动时预取一次推荐问题，失败只记录日志
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Chat.AttemptTimeout)
		defer cancel()
		engine.Suggestions(ctx)
	}()

	jwtManager := token.NewJWTManager(cfg.JWT.Secret, cfg.JWT.AccessTokenExpireHours)

	// 6. 设置 Gin 模式并注册路由
	gin.SetMode(cfg.Server.Mode)
	r := gin.New()
	r.Use(middleware.RequestLogger(), gin.Recovery())
	registerRoutes(r, engine, jwtManager)

	// 启动 HTTP 服务器并实现优雅停机
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: r,
	}

	go func() {
		log.Infof("服务启动于 %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP 服务监听失败: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("接收到停机信号，正在关闭服务...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("HTTP 服务器关闭失败: %v", err)
	}
	engine.Close()
	if publisher != nil {
		if err := publisher.Close(); err != nil {
			log.Errorf("关闭 Kafka 生产者失败: %v", err)
		}
	}
	log.Info("服务已优雅关闭")
}

func registerRoutes(r *gin.Engine, engine service.ChatEngine, jwtManager *token.JWTManager) {
	chatHandler := handler.NewChatHandler(engine, jwtManager)
	conversationHandler := handler.NewConversationHandler(engine)
	suggestionHandler := handler.NewSuggestionHandler(engine)
	cacheHandler := handler.NewCacheHandler(engine)

	// Chat 路由 (WebSocket)，令牌在路径中
	r.GET("/chat/:token", chatHandler.Handle)

	apiV1 := r.Group("/api/v1")
	{
		apiV1.POST("/auth/token", handler.NewAuthHandler(jwtManager).IssueToken)

		authed := apiV1.Group("/")
		authed.Use(middleware.AuthMiddleware(jwtManager))
		{
			chatGroup := authed.Group("/chat")
			{
				chatGroup.GET("/websocket-token", chatHandler.GetWebsocketStopToken)
				chatGroup.POST("/messages", chatHandler.SendMessage)
				chatGroup.GET("/messages", chatHandler.GetMessages)
				chatGroup.DELETE("/messages", chatHandler.NewChat)
				chatGroup.PUT("/scene", chatHandler.SelectScene)
			}

			authed.GET("/conversations", conversationHandler.ListConversations)
			authed.POST("/conversations/:chatId/load", conversationHandler.LoadConversation)

			authed.GET("/suggestions", suggestionHandler.List)

			authed.GET("/cache/questions", cacheHandler.Questions)
			authed.DELETE("/cache", cacheHandler.Clear)
		}
	}
}
