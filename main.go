package main

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"mawadda-service/internal/cache"
	"mawadda-service/internal/config"
	"mawadda-service/internal/handlers"
	"mawadda-service/internal/logger"
	"mawadda-service/internal/middleware"
	"mawadda-service/internal/observability"
	"mawadda-service/internal/rabbitmq"
	"mawadda-service/internal/services"
	"mawadda-service/internal/store"
	"mawadda-service/internal/telemetry"
	"mawadda-service/internal/ws"
)

func main() {
	_ = godotenv.Load()

	cfg := config.New()
	logger.InitFromConfig(cfg)

	ctx := context.Background()
	shutdownTracing, err := observability.SetupTracing(ctx, cfg.Otel.Endpoint, "mawadda-service", cfg.Environment)
	if err != nil {
		logger.Warn("tracing setup failed", "err", err)
	} else {
		defer func() { _ = shutdownTracing(context.Background()) }()
	}

	publisher := rabbitmq.NewPublisher(cfg.AMQP.URL, cfg.AMQP.Exchange)
	defer publisher.Close()
	if cfg.AMQP.URL != "" {
		if eventsPublisher, err := observability.NewAMQPPublisher(cfg.AMQP.URL, cfg.AMQP.Exchange); err != nil {
			logger.Warn("events publisher unavailable", "err", err)
		} else {
			observability.SetPublisher(eventsPublisher)
			defer eventsPublisher.Close()
		}
	}
	audit := telemetry.NewAuditEmitter(publisher, "audit.moderation", "mawadda-service", cfg.Environment)

	db := store.NewMemStore()
	redisCache := cache.NewRedisCache(cfg)

	notifications := services.NewNotificationService(db, publisher)
	people := services.NewPeopleService(db)
	likes := services.NewLikeService(db, redisCache, notifications)
	blocks := services.NewBlockService(db, redisCache)
	conversations := services.NewConversationService(db, notifications)
	moderation := services.NewModerationService(db, notifications, audit)
	reports := services.NewReportService(db, moderation)

	hub := ws.NewHub()

	profileHandler := handlers.NewProfileHandler(people)
	relationshipHandler := handlers.NewRelationshipHandler(likes, blocks)
	conversationHandler := handlers.NewConversationHandler(conversations, hub, audit)
	notificationHandler := handlers.NewNotificationHandler(notifications)
	reportHandler := handlers.NewReportHandler(reports, audit)
	moderationHandler := handlers.NewModerationHandler(moderation)

	conversationWS := ws.NewConversationWebSocketHandler(hub, conversations, cfg.Auth.JWTSecret)

	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware("mawadda-service"))
	router.Use(observability.HTTPMetricsMiddleware())

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	handlers.RegisterDebugRoutes(router, audit, cfg.Debug)

	authMiddleware := middleware.AuthMiddleware(cfg.Auth.JWTSecret)
	adminOnly := middleware.RequireAdmin()

	router.POST("/profiles/batch", authMiddleware, profileHandler.BatchProfiles)
	router.GET("/profiles/:profile_id", authMiddleware, profileHandler.GetProfile)

	router.POST("/likes", authMiddleware, relationshipHandler.Like)
	router.DELETE("/likes/:profile_id", authMiddleware, relationshipHandler.Unlike)
	router.GET("/likes/received", authMiddleware, relationshipHandler.WhoLikedMe)
	router.GET("/likes/count", authMiddleware, relationshipHandler.LikeCount)
	router.POST("/likes/viewed", authMiddleware, relationshipHandler.MarkLikesViewed)

	router.POST("/blocks", authMiddleware, relationshipHandler.Block)
	router.DELETE("/blocks/:profile_id", authMiddleware, relationshipHandler.Unblock)
	router.GET("/blocks", authMiddleware, relationshipHandler.BlockedUsers)

	router.POST("/conversations/start", authMiddleware, conversationHandler.Start)
	router.GET("/conversations", authMiddleware, conversationHandler.List)
	router.GET("/conversations/:conversation_id", authMiddleware, conversationHandler.Get)
	router.GET("/conversations/:conversation_id/messages", authMiddleware, conversationHandler.GetMessages)
	router.POST("/conversations/:conversation_id/messages", authMiddleware, conversationHandler.PostMessage)
	router.POST("/conversations/:conversation_id/accept", authMiddleware, conversationHandler.Accept)
	router.POST("/conversations/:conversation_id/decline", authMiddleware, conversationHandler.Decline)
	router.POST("/conversations/:conversation_id/read", authMiddleware, conversationHandler.MarkRead)
	router.GET("/conversations/:conversation_id/limit", authMiddleware, conversationHandler.CheckLimit)

	router.GET("/notifications", authMiddleware, notificationHandler.List)
	router.POST("/notifications/:notification_id/read", authMiddleware, notificationHandler.MarkRead)
	router.GET("/notifications/unread-count", authMiddleware, notificationHandler.UnreadCount)

	router.POST("/reports/profile", authMiddleware, reportHandler.ReportProfile)
	router.POST("/reports/message", authMiddleware, reportHandler.ReportMessage)
	router.GET("/admin/reports", authMiddleware, adminOnly, reportHandler.ListPending)
	router.POST("/admin/reports/:report_id/review", authMiddleware, adminOnly, reportHandler.Review)

	router.POST("/admin/moderation", authMiddleware, adminOnly, moderationHandler.Apply)
	router.GET("/admin/moderation/:user_id", authMiddleware, adminOnly, moderationHandler.History)
	router.POST("/admin/moderation/reinstate", authMiddleware, adminOnly, moderationHandler.ReinstateExpired)

	router.GET("/ws/conversations/:conversation_id", conversationWS.Handle)

	logger.Info("starting server", "port", cfg.HTTP.Port, "environment", cfg.Environment)
	if err := router.Run(":" + cfg.HTTP.Port); err != nil {
		logger.Error("server error", "err", err)
	}
}
