package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	inventoryapp "github.com/stockledger/platform/internal/application/inventory"
	valuationapp "github.com/stockledger/platform/internal/application/valuation"
	warehouseapp "github.com/stockledger/platform/internal/application/warehouse"
	"github.com/stockledger/platform/internal/domain/authz"
	"github.com/stockledger/platform/internal/domain/shared"
	"github.com/stockledger/platform/internal/infrastructure/cache"
	"github.com/stockledger/platform/internal/infrastructure/config"
	infraevent "github.com/stockledger/platform/internal/infrastructure/event"
	"github.com/stockledger/platform/internal/infrastructure/logger"
	"github.com/stockledger/platform/internal/infrastructure/persistence"
	"github.com/stockledger/platform/internal/infrastructure/scheduler"
	"github.com/stockledger/platform/internal/infrastructure/telemetry"
	"github.com/stockledger/platform/internal/interfaces/http/handler"
	"github.com/stockledger/platform/internal/interfaces/http/middleware"
	"github.com/stockledger/platform/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting ERP Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// OpenTelemetry metrics: exporter lifecycle, GORM query instrumentation,
	// and the periodic business-metrics collector (stock movements,
	// reservation outcomes, locked quantity, low-stock count).
	meterProvider, err := telemetry.NewMeterProvider(context.Background(), telemetry.MetricsConfig{
		Enabled:           cfg.Metrics.Enabled,
		CollectorEndpoint: cfg.Metrics.CollectorEndpoint,
		ExportInterval:    cfg.Metrics.ExportInterval,
		ServiceName:       cfg.App.Name,
		Insecure:          cfg.Metrics.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}
	defer func() {
		if err := meterProvider.Shutdown(context.Background()); err != nil {
			log.Error("Error shutting down meter provider", zap.Error(err))
		}
	}()

	dbMetricsCfg := telemetry.DefaultDBMetricsConfig()
	dbMetricsCfg.Enabled = cfg.Metrics.Enabled
	if _, err := telemetry.RegisterDBMetrics(db.DB, meterProvider, dbMetricsCfg, log); err != nil {
		log.Error("Failed to register database metrics plugin", zap.Error(err))
	}

	businessMetrics, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
		Meter:             meterProvider.Meter("stockledger/business"),
		Logger:            log,
		CollectInterval:   cfg.Metrics.CollectInterval,
		InventoryProvider: telemetry.NewGormInventoryMetricsProvider(db.DB),
	})
	if err != nil {
		log.Fatal("Failed to initialize business metrics", zap.Error(err))
	}
	metricsTenantProvider := telemetry.NewGormTenantProvider(db.DB)
	businessMetrics.StartPeriodicCollection(context.Background(), metricsTenantProvider, cfg.Metrics.CollectInterval)
	defer businessMetrics.Stop()

	// Continuous profiling: no-op unless cfg.Profiler.Enabled, so this is
	// safe to leave wired in every environment.
	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:             cfg.Profiler.Enabled,
		ServerAddress:       cfg.Profiler.ServerAddress,
		ApplicationName:     cfg.Profiler.ApplicationName,
		ProfileCPU:          true,
		ProfileAllocObjects: true,
		ProfileInuseObjects: true,
		ProfileGoroutines:   true,
	}, log)
	if err != nil {
		log.Error("Failed to start profiler", zap.Error(err))
	} else {
		defer func() {
			if err := profiler.Stop(); err != nil {
				log.Error("Error stopping profiler", zap.Error(err))
			}
		}()
	}

	// Policy-Version Gate (spec §4.J): prefer Redis so a version bump is
	// visible to every instance in the fleet; fall back to an in-memory
	// store (single-instance only) if Redis isn't reachable.
	versionStore, err := authz.NewRedisVersionStore(authz.RedisVersionStoreConfig{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	var gateStore authz.VersionStore = versionStore
	if err != nil {
		log.Warn("Redis version store unavailable, falling back to in-memory (single-instance only)", zap.Error(err))
		gateStore = authz.NewInMemoryVersionStore()
	}

	gate := authz.NewPolicyVersionGate(gateStore, authz.GateConfig{
		Enforced:                cfg.Authz.Enforced,
		AllowLegacyZeroVersions: cfg.Authz.AllowLegacyZeroVersions,
		Timeout:                 cfg.Authz.VersionStoreTimeout,
	}, log)

	decisionCache := authz.NewDecisionCache(cfg.Cache.DecisionTTL)
	log.Info("Policy-Version Gate initialized",
		zap.Bool("enforced", cfg.Authz.Enforced),
		zap.Duration("decision_cache_ttl", cfg.Cache.DecisionTTL),
	)

	// Event bus: domain events raised by the inventory aggregate are
	// dispatched synchronously to registered handlers.
	eventBus := infraevent.NewInMemoryEventBus(log)
	if err := eventBus.Start(context.Background()); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	// Repositories backing the inventory aggregate (§4.A-§4.D).
	inventoryRepo := persistence.NewGormInventoryItemRepository(db.DB)
	lockRepo := persistence.NewGormStockLockRepository(db.DB)
	transactionRepo := persistence.NewGormInventoryTransactionRepository(db.DB)
	stockTakingRepo := persistence.NewGormStockTakingRepository(db.DB)
	reorderRuleRepo := persistence.NewGormReorderRuleRepository(db.DB)
	warehouseZoneRepo := persistence.NewGormWarehouseZoneRepository(db.DB)
	warehouseLocationRepo := persistence.NewGormWarehouseLocationRepository(db.DB)
	stockBatchRepo := persistence.NewGormStockBatchRepository(db.DB)
	adjustmentDocumentRepo := persistence.NewGormAdjustmentDocumentRepository(db.DB)
	putawayRuleRepo := persistence.NewGormPutawayRuleRepository(db.DB)
	removalStrategyRepo := persistence.NewGormRemovalStrategyRepository(db.DB)
	valuationAccountRepo := persistence.NewGormValuationAccountRepository(db.DB)
	valuationHistoryRepo := persistence.NewGormValuationHistoryRepository(db.DB)
	txScope := persistence.NewGormTransactionScope(db.DB)
	tenantProvider := persistence.NewGormTenantProvider(db.DB)

	inventoryService := inventoryapp.NewInventoryServiceWithLockRepo(inventoryRepo, lockRepo, transactionRepo)
	inventoryService.SetEventPublisher(eventBus)
	inventoryService.SetTransactionScope(txScope)
	inventoryService.SetMetricsRecorder(businessMetrics)

	// Idempotency Registry backing adjustment document posting (spec.md §4.F):
	// prefer Redis so a line posted by one instance is not re-posted by
	// another; fall back to an in-memory store (single-instance only) if
	// Redis isn't reachable, matching the Policy-Version Gate's fallback above.
	adjustmentIdempotencyStore, err := cache.NewRedisIdempotencyStore(cache.RedisConfig{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	var idempotencyStore shared.IdempotencyStore = adjustmentIdempotencyStore
	if err != nil {
		log.Warn("Redis idempotency store unavailable, falling back to in-memory (single-instance only)", zap.Error(err))
		idempotencyStore = cache.NewInMemoryIdempotencyStore()
	}

	adjustmentDocumentService := inventoryapp.NewAdjustmentDocumentService(adjustmentDocumentRepo, inventoryService, eventBus, log)
	adjustmentDocumentService.SetIdempotencyStore(idempotencyStore)

	// Stock taking finalization (spec.md §4.F) posts differences through the
	// same inventory posting path as adjustments and shares their Idempotency
	// Registry, keyed per (stock_taking_id, product_id) instead of per line.
	stockTakingService := inventoryapp.NewStockTakingService(stockTakingRepo, inventoryService, eventBus, log)
	stockTakingService.SetIdempotencyStore(idempotencyStore)

	valuationService := valuationapp.NewValuationService(valuationAccountRepo, valuationHistoryRepo)
	valuationService.SetEventPublisher(eventBus)

	// Stock lock expiration and replenishment (§4.I) are swept on a fixed
	// interval rather than driven by request traffic.
	lockExpirationService := inventoryapp.NewStockLockExpirationService(lockRepo, inventoryRepo, eventBus, log)
	replenishmentService := inventoryapp.NewReplenishmentService(reorderRuleRepo, inventoryRepo, eventBus, nil, log)
	lotQuarantineService := inventoryapp.NewLotQuarantineService(stockBatchRepo, inventoryRepo, eventBus, log)

	sweepTrigger := scheduler.NewSweepTrigger(scheduler.DefaultSweepTriggerConfig(), log,
		scheduler.Sweep{
			Name:     "stock-lock-expiration",
			Interval: cfg.Scheduler.LockExpirySweepInterval,
			Run: func(ctx context.Context) error {
				_, err := lockExpirationService.ReleaseExpiredLocks(ctx)
				return err
			},
		},
		scheduler.Sweep{
			Name:     "replenishment",
			Interval: cfg.Scheduler.ReplenishmentCheckInterval,
			Run: func(ctx context.Context) error {
				tenantIDs, err := tenantProvider.GetAllActiveTenantIDs(ctx)
				if err != nil {
					return err
				}
				for _, tenantID := range tenantIDs {
					if _, err := replenishmentService.EvaluateTenant(ctx, tenantID); err != nil {
						log.Error("Replenishment evaluation failed for tenant",
							zap.String("tenant_id", tenantID.String()),
							zap.Error(err),
						)
					}
				}
				return nil
			},
		},
		scheduler.Sweep{
			Name:     "lot-quarantine",
			Interval: cfg.Scheduler.QuarantineSweepInterval,
			Run: func(ctx context.Context) error {
				tenantIDs, err := tenantProvider.GetAllActiveTenantIDs(ctx)
				if err != nil {
					return err
				}
				for _, tenantID := range tenantIDs {
					if _, err := lotQuarantineService.QuarantineExpiredLots(ctx, tenantID); err != nil {
						log.Error("Lot quarantine sweep failed for tenant",
							zap.String("tenant_id", tenantID.String()),
							zap.Error(err),
						)
					}
				}
				return nil
			},
		},
	)
	if err := sweepTrigger.Start(context.Background()); err != nil {
		log.Fatal("Failed to start sweep trigger", zap.Error(err))
	}
	defer func() {
		if err := sweepTrigger.Stop(context.Background()); err != nil {
			log.Error("Error stopping sweep trigger", zap.Error(err))
		}
	}()

	putawayService := warehouseapp.NewPutawayService(warehouseLocationRepo, warehouseZoneRepo, putawayRuleRepo)
	removalService := warehouseapp.NewRemovalService(removalStrategyRepo, inventoryService)

	inventoryHandler := handler.NewInventoryHandler(inventoryService)
	stockTakingHandler := handler.NewStockTakingHandler(stockTakingService)
	adjustmentDocumentHandler := handler.NewAdjustmentDocumentHandler(adjustmentDocumentService)
	warehouseHandler := handler.NewWarehouseHandler(putawayService, removalService)
	valuationHandler := handler.NewValuationHandler(valuationService)
	systemHandler := handler.NewSystemHandler()

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize router with our custom middleware
	ginEngine := gin.New()
	ginEngine.Use(middleware.RequestID())
	ginEngine.Use(logger.Recovery(log))
	ginEngine.Use(logger.GinMiddleware(log))
	ginEngine.Use(middleware.CORS())
	ginEngine.Use(middleware.Tracing())
	ginEngine.Use(middleware.HTTPMetricsWithMeter(meterProvider.Meter("stockledger/http"), cfg.Metrics.Enabled))
	ginEngine.Use(middleware.Profiling())

	// Health check endpoint
	ginEngine.GET("/health", func(c *gin.Context) {
		reqLog := logger.GetGinLogger(c)
		if err := db.Ping(); err != nil {
			reqLog.Warn("Health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"time":     time.Now().Format(time.RFC3339),
				"database": "error",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": "ok",
		})
	})

	// API v1 routes, gated by the Policy-Version Gate on everything but
	// /health (and /api/v1/ping, kept open as a liveness probe).
	v1 := router.NewRouter(ginEngine, router.WithAPIVersion("v1"))

	v1.Register(router.NewDomainGroup("system", "").
		GET("/ping", systemHandler.Ping).
		GET("/system", middleware.JWTAuthMiddleware(gate), systemHandler.GetSystemInfo))

	v1.Register(router.NewDomainGroup("inventory", "/inventory").
		Use(middleware.JWTAuthMiddleware(gate)).
		GET("", inventoryHandler.List).
		GET("/below-minimum", inventoryHandler.ListBelowMinimum).
		GET("/:id", inventoryHandler.GetByID).
		GET("/:id/availability", inventoryHandler.CheckAvailability).
		GET("/:id/locks", inventoryHandler.GetActiveLocks).
		GET("/:id/locks/:lockId", inventoryHandler.GetLockByID).
		GET("/:id/transactions", inventoryHandler.ListTransactionsByItem).
		GET("/transactions", inventoryHandler.ListTransactions).
		GET("/transactions/:transactionId", inventoryHandler.GetTransactionByID).
		GET("/warehouse/:warehouseId", inventoryHandler.ListByWarehouse).
		GET("/product/:productId", inventoryHandler.ListByProduct).
		GET("/warehouse/:warehouseId/product/:productId", inventoryHandler.GetByWarehouseAndProduct).
		POST("/:id/increase", middleware.RequirePermission("inventory:write"), inventoryHandler.IncreaseStock).
		POST("/:id/deduct", middleware.RequirePermission("inventory:write"), inventoryHandler.DeductStock).
		POST("/:id/adjust", middleware.RequirePermission("inventory:write"), inventoryHandler.AdjustStock).
		POST("/:id/lock", middleware.RequirePermission("inventory:write"), inventoryHandler.LockStock).
		POST("/:id/locks/:lockId/unlock", middleware.RequirePermission("inventory:write"), inventoryHandler.UnlockStock).
		PATCH("/:id/thresholds", middleware.RequirePermission("inventory:write"), inventoryHandler.SetThresholds))

	v1.Register(router.NewDomainGroup("stock-taking", "/stock-takings").
		Use(middleware.JWTAuthMiddleware(gate)).
		GET("", stockTakingHandler.List).
		GET("/:id", stockTakingHandler.GetByID).
		GET("/:id/progress", stockTakingHandler.GetProgress).
		GET("/number/:number", stockTakingHandler.GetByTakingNumber).
		POST("", middleware.RequirePermission("stock_taking:write"), stockTakingHandler.Create).
		PUT("/:id", middleware.RequirePermission("stock_taking:write"), stockTakingHandler.Update).
		DELETE("/:id", middleware.RequirePermission("stock_taking:write"), stockTakingHandler.Delete).
		POST("/:id/items", middleware.RequirePermission("stock_taking:write"), stockTakingHandler.AddItem).
		POST("/:id/items/batch", middleware.RequirePermission("stock_taking:write"), stockTakingHandler.AddItems).
		DELETE("/:id/items/:itemId", middleware.RequirePermission("stock_taking:write"), stockTakingHandler.RemoveItem).
		POST("/:id/start-counting", middleware.RequirePermission("stock_taking:write"), stockTakingHandler.StartCounting).
		POST("/:id/items/:itemId/count", middleware.RequirePermission("stock_taking:write"), stockTakingHandler.RecordCount).
		POST("/:id/counts/batch", middleware.RequirePermission("stock_taking:write"), stockTakingHandler.RecordCounts).
		POST("/:id/finalize", middleware.RequirePermission("stock_taking:approve"), stockTakingHandler.Finalize).
		POST("/:id/cancel", middleware.RequirePermission("stock_taking:write"), stockTakingHandler.Cancel))

	v1.Register(router.NewDomainGroup("adjustment-documents", "/inventory/adjustment-documents").
		Use(middleware.JWTAuthMiddleware(gate)).
		GET("", adjustmentDocumentHandler.List).
		GET("/:id", adjustmentDocumentHandler.GetByID).
		GET("/number/:number", adjustmentDocumentHandler.GetByDocumentNumber).
		POST("", middleware.RequirePermission("inventory:write"), adjustmentDocumentHandler.Create).
		POST("/:id/lines", middleware.RequirePermission("inventory:write"), adjustmentDocumentHandler.AddLine).
		DELETE("/:id/lines/:line_id", middleware.RequirePermission("inventory:write"), adjustmentDocumentHandler.RemoveLine).
		POST("/:id/post", middleware.RequirePermission("inventory:write"), adjustmentDocumentHandler.Post).
		POST("/:id/cancel", middleware.RequirePermission("inventory:write"), adjustmentDocumentHandler.Cancel))

	v1.Register(router.NewDomainGroup("warehouse", "/warehouses").
		Use(middleware.JWTAuthMiddleware(gate)).
		POST("/:warehouseId/putaway-suggestions", middleware.RequirePermission("inventory:write"), warehouseHandler.Suggest).
		POST("/:warehouseId/removal-plan", middleware.RequirePermission("inventory:write"), warehouseHandler.Plan).
		POST("/:warehouseId/removal-plan/confirm", middleware.RequirePermission("inventory:write"), warehouseHandler.Confirm))

	v1.Register(router.NewDomainGroup("valuation", "/valuation-accounts").
		Use(middleware.JWTAuthMiddleware(gate)).
		GET("/:id/history", valuationHandler.GetHistory).
		GET("/:id/layers", valuationHandler.GetLayers).
		GET("/by-product/:productId", valuationHandler.GetByProduct).
		POST("/receipts", middleware.RequirePermission("inventory:write"), valuationHandler.RecordReceipt).
		POST("/deliveries", middleware.RequirePermission("inventory:write"), valuationHandler.RecordDelivery).
		POST("/revalue", middleware.RequirePermission("inventory:write"), valuationHandler.Revalue).
		POST("/switch-method", middleware.RequirePermission("inventory:write"), valuationHandler.SwitchMethod).
		POST("/adjust", middleware.RequirePermission("inventory:write"), valuationHandler.Adjust).
		POST("/standard-cost", middleware.RequirePermission("inventory:write"), valuationHandler.SetStandardCost))

	v1.Setup()

	log.Info("Decision cache ready for authorization lookups", zap.Int("size", decisionCache.Size()))

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      ginEngine,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
