package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-contrib/gzip"
	_ "github.com/joho/godotenv/autoload"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/ledgerbook/ledgerbook-api/docs" // Swagger docs
	"github.com/ledgerbook/ledgerbook-api/internal/config"
	"github.com/ledgerbook/ledgerbook-api/internal/database"
	"github.com/ledgerbook/ledgerbook-api/internal/handlers"
	"github.com/ledgerbook/ledgerbook-api/internal/jobs"
	"github.com/ledgerbook/ledgerbook-api/internal/middleware"
	"github.com/ledgerbook/ledgerbook-api/internal/models"
	"github.com/ledgerbook/ledgerbook-api/internal/repository"
	"github.com/ledgerbook/ledgerbook-api/internal/services"
	"github.com/ledgerbook/ledgerbook-api/internal/storage"
	"github.com/ledgerbook/ledgerbook-api/pkg/logger"

	"github.com/gin-gonic/gin"
)

// @title Ledgerbook API
// @version 1.0
// @description REST API for the Ledgerbook installment accounting system

// @contact.name API Support

// @host localhost:8081
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Setup(cfg.Environment)

	// Initialize Sentry when DSN is configured
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			TracesSampleRate: 0.2,
			Environment:      cfg.Environment,
		}); err != nil {
			logger.Error("Sentry initialization failed", "error", err)
		} else {
			logger.Info("Sentry initialized")
		}
	}

	// Set Gin mode
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Connect to database
	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	logger.Info("Connected to database")

	if err := database.Migrate(db); err != nil {
		logger.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Initialize storage
	store, err := storage.NewLocalStorage(cfg.StoragePath)
	if err != nil {
		logger.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	logger.Info("Initialized local storage")

	// Initialize repositories
	repos := repository.NewRepositories(db)

	// Initialize background worker
	worker := jobs.NewWorker(cfg.WorkerCount)
	logger.Info("Started background worker", "goroutines", cfg.WorkerCount)

	// Initialize services
	svcs := services.NewServices(repos, worker, store, cfg, db)

	// Schedule recurring jobs
	scheduleJobs(worker, repos, svcs)

	// Initialize handlers
	h := handlers.NewHandlers(svcs)

	// Setup router
	router := setupRouter(h, cfg)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Failed to start server", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	// Create context with timeout for shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Shutdown HTTP server
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	// Shutdown background worker
	worker.Shutdown()
	logger.Info("Background worker stopped")

	// Flush Sentry events before exit
	if cfg.SentryDSN != "" {
		sentry.Flush(5 * time.Second)
	}

	logger.Info("Server exited gracefully")
}

func setupRouter(h *handlers.Handlers, cfg *config.Config) *gin.Engine {
	router := gin.New()

	// Global middleware
	if cfg.SentryDSN != "" {
		router.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.CORS(cfg.AllowedOrigins))
	router.Use(gzip.Gzip(gzip.DefaultCompression))

	// Redirect root to swagger
	router.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusMovedPermanently, "/swagger/index.html")
	})

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Health check (public)
		v1.GET("/health", h.Health.Index)

		// Authentication (public)
		auth := v1.Group("/auth")
		{
			auth.POST("/login", h.Auth.Login)
		}

		// Protected routes (requires authentication)
		protected := v1.Group("")
		protected.Use(middleware.Auth(cfg.JWTSecret))
		{
			protected.GET("/auth/me", h.Auth.Me)
			protected.PATCH("/auth/change_password", h.Auth.ChangePassword)

			// Admin-only routes
			admin := protected.Group("")
			admin.Use(middleware.RequireAdmin())
			{
				admin.POST("/auth/register", h.Auth.Register)

				// Record lifecycle (admin only)
				admin.POST("/records/:record_id/approve", h.Record.Approve)
				admin.POST("/records/:record_id/reject", h.Record.Reject)
				admin.POST("/records/:record_id/activate", h.Record.Activate)
				admin.POST("/records/:record_id/settle", h.Record.Settle)
				admin.POST("/records/:record_id/complete", h.Record.Complete)
				admin.PUT("/records/:record_id", h.Record.Update)
				admin.POST("/records/import", h.Record.Import)

				// Finance (admin only)
				admin.PUT("/finance/opening_balance", h.Finance.SetOpeningBalance)
				admin.DELETE("/finance/partner_transactions/:id", h.Finance.DeletePartnerTransaction)
				admin.DELETE("/finance/expenses/:id", h.Finance.DeleteExpense)
				admin.DELETE("/finance/ledger_entries/:id", h.Finance.DeleteLedgerEntry)

				// Audits (admin only)
				admin.GET("/audit_logs", h.Audit.Index)

				// Background jobs
				admin.GET("/jobs/status", h.Job.Status)
			}

			// Customers
			customers := protected.Group("/customers")
			{
				customers.GET("", h.Customer.Index)
				customers.POST("", h.Customer.Create)
				customers.GET("/:customer_id", h.Customer.Show)
				customers.PUT("/:customer_id", h.Customer.Update)
				customers.DELETE("/:customer_id", h.Customer.Delete)
			}

			// Records
			records := protected.Group("/records")
			{
				records.GET("", h.Record.Index)
				records.POST("", h.Record.Create)
				records.POST("/preview_schedule", h.Record.PreviewSchedule)
				records.GET("/:record_id", h.Record.Show)
				records.GET("/:record_id/statement", h.Record.Statement)
				records.POST("/:record_id/collect", middleware.RequireRole("admin", "agent"), h.Collection.Collect)
			}

			// Collections
			protected.GET("/collections/due", h.Collection.Due)

			// Receipts
			receipts := protected.Group("/receipts")
			{
				receipts.GET("", h.Receipt.Index)
				receipts.GET("/:receipt_id", h.Receipt.Show)
				receipts.GET("/:receipt_id/download", h.Receipt.Download)
			}

			// Finance
			finance := protected.Group("/finance")
			{
				finance.GET("/cash_summary", h.Finance.CashSummary)
				finance.GET("/export", h.Finance.Export)
				finance.GET("/partner_transactions", h.Finance.ListPartnerTransactions)
				finance.POST("/partner_transactions", h.Finance.CreatePartnerTransaction)
				finance.GET("/expenses", h.Finance.ListExpenses)
				finance.POST("/expenses", h.Finance.CreateExpense)
				finance.GET("/ledger_entries", h.Finance.ListLedgerEntries)
				finance.POST("/ledger_entries", h.Finance.CreateLedgerEntry)
			}

			// Notifications
			// Static route first so "read_all" is not matched as :id
			notifications := protected.Group("/notifications")
			{
				notifications.GET("", h.Notification.Index)
				notifications.POST("/read_all", h.Notification.MarkAllRead)
				notifications.POST("/:id/read", h.Notification.MarkRead)
			}
		}
	}

	return router
}

func scheduleJobs(worker *jobs.Worker, repos *repository.Repositories, svcs *services.Services) {
	// Flip overdue records at startup and every hour after
	worker.ScheduleEveryImmediate(1*time.Hour, func(ctx context.Context) error {
		logger.Info("[Job] Scanning for overdue records...")
		companies, err := repos.Company.FindAll(ctx)
		if err != nil {
			return err
		}
		for _, company := range companies {
			flipped, err := svcs.Record.ScanOverdue(ctx, company.ID)
			if err != nil {
				logger.Error("Overdue scan failed", "company_id", company.ID, "error", err)
				continue
			}
			if flipped > 0 {
				logger.Info("Marked records overdue", "company_id", company.ID, "count", flipped)
			}
		}
		return nil
	})

	// Daily collection reminders
	worker.ScheduleEvery(24*time.Hour, func(ctx context.Context) error {
		logger.Info("[Job] Sending due collection reminders...")
		companies, err := repos.Company.FindAll(ctx)
		if err != nil {
			return err
		}
		for _, company := range companies {
			due, err := svcs.Collection.DueList(ctx, company.ID, time.Now())
			if err != nil {
				logger.Error("Due list failed", "company_id", company.ID, "error", err)
				continue
			}
			if len(due) == 0 {
				continue
			}
			if err := svcs.Notification.NotifyAdmins(ctx, company.ID,
				"Collections due today",
				fmt.Sprintf("%d installments are due for collection", len(due)),
				models.NotificationTypeCollectionDue); err != nil {
				logger.Error("Due reminder failed", "company_id", company.ID, "error", err)
			}
		}
		return nil
	})

	logger.Info("Scheduled recurring jobs")
}
