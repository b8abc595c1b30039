package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/imrann-dev/school-erp-api/api/swagger"
	"github.com/imrann-dev/school-erp-api/internal/docstore"
	"github.com/imrann-dev/school-erp-api/internal/gateway"
	"github.com/imrann-dev/school-erp-api/internal/handler"
	internalmiddleware "github.com/imrann-dev/school-erp-api/internal/middleware"
	"github.com/imrann-dev/school-erp-api/internal/repository"
	"github.com/imrann-dev/school-erp-api/internal/service"
	"github.com/imrann-dev/school-erp-api/pkg/cache"
	"github.com/imrann-dev/school-erp-api/pkg/config"
	"github.com/imrann-dev/school-erp-api/pkg/database"
	"github.com/imrann-dev/school-erp-api/pkg/export"
	"github.com/imrann-dev/school-erp-api/pkg/logger"
	corsmiddleware "github.com/imrann-dev/school-erp-api/pkg/middleware/cors"
	reqidmiddleware "github.com/imrann-dev/school-erp-api/pkg/middleware/requestid"
)

// @title School ERP API
// @version 1.0.0
// @description Fee accounting, hosted checkout reconciliation and portal document stores
// @BasePath /api/v1
// @schemes http

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to redis", "error", err)
	}
	defer redisClient.Close()

	validate := validator.New()
	metricsSvc := service.NewMetricsService()

	feeRepo := repository.NewFeeRepository(db)
	documentRepo := repository.NewDocumentRepository(db)
	paymentState := repository.NewPaymentStateRepository(redisClient)

	settingsStore := docstore.New(docstore.KindSettings, documentRepo, docstore.SettingsDefaults, logr)
	timetableStore := docstore.New(docstore.KindTimetable, documentRepo, docstore.TimetableDefaults, logr)
	communicationsStore := docstore.New(docstore.KindCommunications, documentRepo, docstore.CommunicationsDefaults, logr)

	feeSvc := service.NewFeeService(feeRepo, validate, logr)
	settingsSvc := service.NewSettingsService(settingsStore, metricsSvc, logr)
	timetableSvc := service.NewTimetableService(timetableStore, validate, metricsSvc, logr)
	communicationSvc := service.NewCommunicationService(communicationsStore, validate, metricsSvc, logr)

	checkoutClient := gateway.NewCheckoutClient(cfg.Payments.GatewayURL, cfg.Payments.Currency, cfg.Payments.GatewayTimeout)
	paymentSvc := service.NewPaymentService(checkoutClient, paymentState, feeSvc, metricsSvc, validate, logr, service.PaymentServiceConfig{
		MinAmount:     cfg.Payments.MinAmount,
		PendingTTL:    cfg.Payments.PendingTTL,
		ClaimTTL:      cfg.Payments.ClaimTTL,
		RetryAttempts: cfg.Payments.RetryAttempts,
		RetryDelay:    cfg.Payments.RetryDelay,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	paymentSvc.StartRetryQueue(ctx)
	defer paymentSvc.StopRetryQueue()

	feeHandler := handler.NewFeeHandler(feeSvc, export.NewReceiptRenderer(), cfg.Receipts.SchoolName)
	paymentHandler := handler.NewPaymentHandler(paymentSvc)
	settingsHandler := handler.NewSettingsHandler(settingsSvc)
	timetableHandler := handler.NewTimetableHandler(timetableSvc)
	communicationHandler := handler.NewCommunicationHandler(communicationSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "database unavailable"})
			return
		}
		if err := redisClient.Ping(c.Request.Context()).Err(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "redis unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	fees := api.Group("/fees")
	fees.GET("", feeHandler.List)
	fees.POST("", feeHandler.Create)
	fees.GET("/stats", feeHandler.Stats)
	fees.GET("/overdue", feeHandler.Overdue)
	fees.GET("/:id", feeHandler.Get)
	fees.PUT("/:id", feeHandler.Update)
	fees.DELETE("/:id", feeHandler.Delete)
	fees.POST("/:id/payments", feeHandler.RecordPayment)
	if cfg.Receipts.Enabled {
		fees.GET("/:id/receipt", feeHandler.Receipt)
	}

	if cfg.Payments.Enabled {
		payments := api.Group("/payments")
		payments.POST("/checkout", paymentHandler.InitiateCheckout)
		payments.GET("/return", paymentHandler.Return)
		payments.POST("/complete", paymentHandler.Complete)
	}

	if cfg.Stores.Enabled {
		settings := api.Group("/settings")
		settings.GET("/:role", settingsHandler.Get)
		settings.PATCH("/:role", settingsHandler.Update)
		settings.PATCH("/:role/:section", settingsHandler.UpdateSection)
		settings.POST("/:role/reset", settingsHandler.Reset)
		settings.POST("/:role/password", settingsHandler.ChangePassword)

		timetables := api.Group("/timetables")
		timetables.GET("", timetableHandler.GetAll)
		timetables.GET("/stats", timetableHandler.Stats)
		timetables.GET("/teachers", timetableHandler.ListTeachers)
		timetables.PUT("/teachers", timetableHandler.SaveTeacher)
		timetables.GET("/teachers/:id", timetableHandler.GetTeacher)
		timetables.DELETE("/teachers/:id", timetableHandler.DeleteTeacher)
		timetables.GET("/classes", timetableHandler.ListClasses)
		timetables.PUT("/classes/:name", timetableHandler.SaveClass)
		timetables.GET("/classes/:name", timetableHandler.GetClass)
		timetables.DELETE("/classes/:name", timetableHandler.DeleteClass)
	}

	if cfg.Communications.Enabled {
		communications := api.Group("/communications")
		communications.POST("/messages", communicationHandler.SendMessage)
		communications.GET("/messages/search", communicationHandler.SearchMessages)
		communications.GET("/conversations", communicationHandler.UserConversations)
		communications.GET("/conversations/:id/messages", communicationHandler.ConversationMessages)
		communications.POST("/conversations/:id/read", communicationHandler.MarkConversationRead)
		communications.POST("/announcements", communicationHandler.CreateAnnouncement)
		communications.GET("/announcements", communicationHandler.UserAnnouncements)
		communications.POST("/announcements/:id/read", communicationHandler.MarkAnnouncementRead)
		communications.POST("/notifications", communicationHandler.CreateNotification)
		communications.GET("/notifications", communicationHandler.UserNotifications)
		communications.POST("/notifications/:id/read", communicationHandler.MarkNotificationRead)
		communications.GET("/unread", communicationHandler.UnreadCounts)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)

	srv := &http.Server{Addr: addr, Handler: r}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logr.Sugar().Errorw("server shutdown failed", "error", err)
		}
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
