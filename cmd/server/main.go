// cmd/server/main.go
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/supplydash/inventory-engine/internal/api/handlers"
	"github.com/supplydash/inventory-engine/internal/api/middleware"
	"github.com/supplydash/inventory-engine/internal/cache"
	"github.com/supplydash/inventory-engine/internal/config"
	"github.com/supplydash/inventory-engine/internal/engine"
	"github.com/supplydash/inventory-engine/internal/repository/postgres"
	"github.com/supplydash/inventory-engine/internal/service"
	"github.com/supplydash/inventory-engine/internal/storage"
	"github.com/supplydash/inventory-engine/pkg/logger"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	logger.SetLevel(cfg.Server.Mode)
	srvLog := logger.Component("server")
	if cfg.Server.Mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize database
	db, err := postgres.NewDB(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Repositories
	catalogRepo := postgres.NewCatalogRepository(db)
	snapshotRepo := postgres.NewSnapshotRepository(db)
	poRepo := postgres.NewPORepository(db)
	salesRepo := postgres.NewSalesRepository(db)

	// Engine
	calc := engine.NewCalculator(engine.Params{
		OrderingCost:    cfg.Engine.OrderingCost,
		ZScore:          cfg.Engine.ZScore,
		WorkingDays:     cfg.Engine.WorkingDays,
		DefaultLeadTime: cfg.Engine.DefaultLeadTime,
	})
	rollForward := engine.NewRollForward(catalogRepo, snapshotRepo, poRepo, salesRepo, calc)
	agg := engine.NewAggregator(calc)

	// Cache
	kpiCache, err := cache.NewKPICache(cfg.Cache)
	if err != nil {
		srvLog.Warn().Err(err).Msg("kpi cache unavailable, continuing without")
		kpiCache = cache.NewNoopKPICache()
	}

	// Services
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	lastSeq, err := poRepo.LastSequence(ctx, time.Now().Year())
	cancel()
	if err != nil {
		log.Fatalf("Failed to read last PO sequence: %v", err)
	}
	numbers := engine.NewPONumberSource(time.Now().Year(), lastSeq)

	orderService := service.NewOrderService(poRepo, catalogRepo, snapshotRepo, calc, numbers)
	snapshotService := service.NewSnapshotService(rollForward, catalogRepo, snapshotRepo, agg, kpiCache, cfg.Engine.BaselineQty)

	if cfg.Storage.Enabled {
		store, err := storage.NewMinioClient(cfg.Storage)
		if err != nil {
			srvLog.Warn().Err(err).Msg("report storage unavailable, continuing without")
		} else {
			snapshotService.SetArchiveStorage(store)
		}
	}

	// Initialize HTTP server
	router := setupRouter(cfg, snapshotService, orderService)
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Start server in a goroutine
	go func() {
		srvLog.Info().Str("port", cfg.Server.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			srvLog.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	srvLog.Info().Msg("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		srvLog.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	srvLog.Info().Msg("Server exiting")
}

func setupRouter(cfg *config.Config, snapshotService *service.SnapshotService, orderService *service.OrderService) *gin.Engine {
	router := gin.New()

	// Middleware
	router.Use(
		middleware.Logger(),
		middleware.Recovery(),
		cors.New(cors.Config{
			AllowOrigins:     cfg.Server.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
			AllowCredentials: false,
			MaxAge:           12 * time.Hour,
		}),
	)

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// API v1
	v1 := router.Group("/api/v1")
	{
		snapshotHandler := handlers.NewSnapshotHandler(snapshotService)
		v1.POST("/rollforward", snapshotHandler.RunRollForward)
		v1.GET("/snapshots/latest", snapshotHandler.GetLatestSnapshots)
		v1.GET("/snapshots/:date", snapshotHandler.GetSnapshotsByDate)
		v1.GET("/reports/alerts", snapshotHandler.GetAlerts)
		v1.GET("/reports/costs", snapshotHandler.GetCosts)
		v1.GET("/reports/kpis", snapshotHandler.GetKPIs)
		v1.GET("/reports/savings", snapshotHandler.GetSavings)

		orderHandler := handlers.NewOrderHandler(orderService)
		v1.POST("/orders", orderHandler.PlaceOrder)
		v1.GET("/orders", orderHandler.ListOrders)
		v1.GET("/orders/:po_number", orderHandler.GetOrder)
		v1.POST("/orders/:po_number/ship", orderHandler.ShipOrder)
		v1.POST("/orders/:po_number/receive", orderHandler.ReceiveOrder)
		v1.POST("/orders/:po_number/cancel", orderHandler.CancelOrder)
	}

	return router
}
