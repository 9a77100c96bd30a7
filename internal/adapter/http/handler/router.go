package handler

import (
	"intro-auction/internal/adapter/http/middleware"
	redisStore "intro-auction/internal/adapter/storage/redis"
	"intro-auction/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	LedgerSvc       ports.LedgerService
	AuctionSvc      ports.AuctionService
	ReaperSvc       ports.ReaperService
	TokenSvc        ports.TokenService
	RateLimitStore  *redisStore.RateLimitStore // nil = rate limiting disabled
	HealthCheckers  []ports.HealthChecker
	ReaperBatchSize int
	Logger          zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.Metrics())
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.MaxBodySize(64 << 10))

	r.GET("/health", HealthCheck(deps.HealthCheckers...))
	r.GET("/metrics", Metrics())

	rules := middleware.DefaultRateLimitRules()
	rl := func(group string) gin.HandlerFunc {
		if deps.RateLimitStore == nil {
			return func(c *gin.Context) { c.Next() }
		}
		rule, ok := rules[group]
		if !ok {
			return func(c *gin.Context) { c.Next() }
		}
		return middleware.RateLimiter(deps.RateLimitStore, group, rule, deps.Logger)
	}

	v1 := r.Group("/api/v1", middleware.JWTAuth(deps.TokenSvc, deps.Logger))

	conversationHandler := NewConversationHandler(deps.AuctionSvc)
	conversations := v1.Group("/conversations")
	{
		conversations.POST("", rl("conversations"), conversationHandler.Create)
		conversations.POST("/:id/open", rl("conversations"), conversationHandler.Open)
		conversations.POST("/:id/replies", rl("replies"), conversationHandler.Reply)
	}

	accountHandler := NewAccountHandler(deps.LedgerSvc)
	accounts := v1.Group("/accounts/me")
	{
		accounts.POST("", rl("ledger_read"), accountHandler.Open)
		accounts.GET("/balance", rl("ledger_read"), accountHandler.Balance)
		accounts.GET("/journal", rl("ledger_read"), accountHandler.Journal)
		accounts.POST("/deposits/sweep", rl("bridge"), accountHandler.Sweep)
		accounts.POST("/withdrawals", rl("bridge"), accountHandler.Withdraw)
	}

	settingsHandler := NewSettingsHandler(deps.AuctionSvc)
	v1.PUT("/intro-settings/daily-limit", rl("settings"), settingsHandler.UpdateDailyLimit)

	adminHandler := NewAdminHandler(deps.ReaperSvc, deps.ReaperBatchSize, deps.Logger)
	admin := v1.Group("/admin", middleware.RequireRoot())
	{
		admin.POST("/reaper/run", rl("admin"), adminHandler.RunReaper)
	}

	return r
}
