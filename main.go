package main

import (
	"context"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"forum-chat/internal/config"
	"forum-chat/internal/db"
	"forum-chat/internal/guard"
	"forum-chat/internal/handlers"
	"forum-chat/internal/middleware"
	"forum-chat/internal/observability"
	"forum-chat/internal/rabbitmq"
	"forum-chat/internal/repositories"
	"forum-chat/internal/session"
	"forum-chat/internal/telemetry"
	"forum-chat/internal/ws"
)

const serviceName = "forum-chat"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if cfg.OTLPEndpoint != "" {
		shutdown, err := observability.InitTracing(context.Background(), cfg.OTLPEndpoint, serviceName, cfg.Environment)
		if err != nil {
			log.Fatalf("failed to init tracing: %v", err)
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = shutdown(ctx)
		}()
	}

	database, err := db.Connect(cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("failed to connect to db: %v", err)
	}
	defer database.Close()

	publisher := rabbitmq.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange)
	defer publisher.Close()
	observability.SetPublisher(publisher)
	log.Printf("event publisher mode=%s", rabbitmq.Mode(publisher))

	audit := telemetry.NewAuditEmitter(publisher, "audit.chat", serviceName, cfg.Environment)

	var sessionCache session.Cache = session.NewMemoryCache()
	if cfg.RedisURL != "" {
		redisCache, err := session.NewRedisCache(cfg.RedisURL)
		if err != nil {
			log.Printf("redis unavailable, using in-memory session cache: %v", err)
		} else {
			sessionCache = redisCache
			defer redisCache.Close()
		}
	}
	sessions := session.NewJWTProvider(cfg.JWTSecret, cfg.JWTIssuer, sessionCache, cfg.SessionCacheTTL)

	roomRepo := repositories.NewRoomRepo(database.DB, cfg.StoreTimeout)
	messageRepo := repositories.NewMessageRepo(database.DB, cfg.StoreTimeout)
	accessGuard := guard.New(roomRepo)

	hub := ws.NewHub(accessGuard, messageRepo)
	wsHandler := ws.NewHandler(hub, sessions)
	chatHandler := handlers.NewChatHandler(roomRepo, messageRepo, accessGuard, sessions, audit)

	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	router.Use(otelgin.Middleware(serviceName))
	router.Use(observability.HTTPMetricsMiddleware())

	router.GET("/healthz", handlers.Health(database))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	ready := middleware.Ready(database.Ready)
	pageAuth := middleware.Auth(sessions, true)
	apiAuth := middleware.Auth(sessions, false)

	router.GET("/chat/request", ready, pageAuth, chatHandler.RequestChat)
	router.GET("/chat/list", ready, apiAuth, chatHandler.ListRooms)
	router.GET("/chat/detail/:room_id", ready, apiAuth, chatHandler.RoomDetail)

	router.GET("/ws", ready, wsHandler.Handle)

	handlers.RegisterDebugRoutes(router, audit, cfg.DebugRoutes)

	log.Printf("chat service listening on :%s", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
