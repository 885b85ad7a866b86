package router

import (
	"time"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/NguyenNamVlog/quan-ly-in-an/internal/config"
	"github.com/NguyenNamVlog/quan-ly-in-an/internal/finance"
	"github.com/NguyenNamVlog/quan-ly-in-an/internal/handler"
	"github.com/NguyenNamVlog/quan-ly-in-an/internal/infra"
	"github.com/NguyenNamVlog/quan-ly-in-an/internal/middleware"
	"github.com/NguyenNamVlog/quan-ly-in-an/internal/repository"
	"github.com/NguyenNamVlog/quan-ly-in-an/internal/service"
	"github.com/NguyenNamVlog/quan-ly-in-an/internal/worker"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, dispatcher *worker.Dispatcher, smtpCB *infra.CircuitBreaker) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	// Order codes carry a slash ("003/DH.25"); clients URL-encode it and the
	// router must keep the raw path so :code captures the whole thing.
	r.UseRawPath = true

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Repositories ─────────────────────────────────────────────────────────
	userRepo := repository.NewUserRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	cashbookRepo := repository.NewCashbookRepository(db)
	documentRepo := repository.NewDocumentRepository(db)
	seqRepo := repository.NewSequenceRepository(rdb)

	// ── Services ─────────────────────────────────────────────────────────────
	rates := finance.NewRateTable(cfg.ParseCommissionRates(), cfg.CommissionDefaultRate)

	authSvc := service.NewAuthService(userRepo, cfg)
	orderSvc := service.NewOrderService(orderRepo, cashbookRepo, seqRepo, rates)
	cashbookSvc := service.NewCashbookService(cashbookRepo)
	documentSvc := service.NewDocumentService(documentRepo, orderRepo, dispatcher)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	ordersH := handler.NewOrdersHandler(orderSvc)
	cashbookH := handler.NewCashbookHandler(cashbookSvc)
	documentsH := handler.NewDocumentsHandler(documentSvc)
	customersH := handler.NewCustomersHandler(orderSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb, smtpCB))

	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
	}

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	v1 := r.Group("/v1", jwtMW)
	{
		// Roles: staff can run the pipeline; destructive and money-shaping
		// operations need admin.
		orders := v1.Group("/orders")
		{
			orders.POST("", middleware.RequireRole("staff", "admin"), ordersH.Create)
			orders.GET("", middleware.RequireRole("staff", "admin"), ordersH.List)
			orders.GET("/:code", middleware.RequireRole("staff", "admin"), ordersH.Get)
			orders.POST("/:code/advance", middleware.RequireRole("staff", "admin"), ordersH.Advance)
			orders.POST("/:code/payments", middleware.RequireRole("staff", "admin"), ordersH.RecordPayment)
			orders.PUT("/:code", middleware.RequireRole("admin"), ordersH.Edit)
			orders.DELETE("/:code", middleware.RequireRole("admin"), ordersH.Delete)
			orders.PATCH("/:code/commission", middleware.RequireRole("admin"), ordersH.SetCommission)

			orders.POST("/:code/documents", middleware.RequireRole("staff", "admin"), documentsH.Request)
			orders.GET("/:code/documents", middleware.RequireRole("staff", "admin"), documentsH.ListByOrder)
		}

		v1.GET("/documents/:id/download", middleware.RequireRole("staff", "admin"), documentsH.Download)

		cashbook := v1.Group("/cashbook")
		{
			cashbook.GET("", middleware.RequireRole("staff", "admin"), cashbookH.List)
			cashbook.GET("/summary", middleware.RequireRole("staff", "admin"), cashbookH.Summary)
			// Manual entries shape the books directly
			cashbook.POST("", middleware.RequireRole("admin"), cashbookH.Append)
		}

		v1.GET("/customers/lookup", middleware.RequireRole("staff", "admin"), customersH.Lookup)
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
