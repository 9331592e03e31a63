package app

import (
	"fmt"
	"html/template"
	"net/http"
	"time"

	"stocksim/internal/auth"
	"stocksim/internal/cache"
	"stocksim/internal/config"
	"stocksim/internal/events"
	"stocksim/internal/handlers"
	"stocksim/internal/quote"
	"stocksim/internal/repo"
	"stocksim/internal/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

func newRouter(cfg config.Config, db *pgxpool.Pool, rdb *redis.Client, pub events.Publisher) (*gin.Engine, error) {
	r := gin.New()
	r.Use(gin.Logger())
	r.Use(gin.CustomRecovery(func(c *gin.Context, _ any) {
		c.HTML(http.StatusInternalServerError, "apology.html", gin.H{
			"Code":    http.StatusInternalServerError,
			"Message": "internal error",
		})
	}))

	r.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST", "OPTIONS", "HEAD"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Cookie"},
		ExposeHeaders: []string{"Content-Length", "Content-Type"},
		MaxAge:        12 * time.Hour,
	}))
	r.Use(noStore())

	r.SetFuncMap(template.FuncMap{
		"usd": func(d decimal.Decimal) string { return "$" + d.StringFixed(2) },
	})
	r.LoadHTMLGlob("web/templates/*.html")

	if err := Setup(r, cfg, db, rdb, pub); err != nil {
		return nil, err
	}
	return r, nil
}

// noStore keeps the browser from caching pages that show account state.
func noStore() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Cache-Control", "no-cache, no-store, must-revalidate")
		c.Header("Pragma", "no-cache")
		c.Header("Expires", "0")
		c.Next()
	}
}

// Setup wires stores, services and handlers, and registers all routes.
func Setup(r *gin.Engine, cfg config.Config, db *pgxpool.Pool, rdb *redis.Client, pub events.Publisher) error {
	startingCash, err := decimal.NewFromString(cfg.Trading.StartingCash)
	if err != nil {
		return fmt.Errorf("STARTING_CASH: %w", err)
	}

	r.GET("/health", healthHandler(cfg))

	sessionStore := auth.NewStore(rdb, cfg.Redis.SessionTTL.Duration())
	userRepo := repo.NewPGUserRepo(db)
	userSvc := service.NewUserService(userRepo, startingCash)
	authHandler := handlers.NewAuthHandler(sessionStore, userSvc)
	registerAuthRoutes(r, authHandler)

	quoteClient := quote.NewClient(cfg.Quote.BaseURL, cfg.Quote.APIKey, cfg.Quote.Timeout.Duration())
	quoteCache := cache.NewQuoteCache(rdb, cfg.Redis.QuoteTTL.Duration())
	quotes := quote.NewCachedProvider(quoteClient, quoteCache)

	tradeRepo := repo.NewPGTradeRepo(db)
	tradeSvc := service.NewTradeService(tradeRepo, userRepo, quotes, pub)
	tradeHandler := handlers.NewTradeHandler(tradeSvc)

	protected := r.Group("", auth.RequireSession(sessionStore))
	registerTradeRoutes(protected, tradeHandler)
	return nil
}

func healthHandler(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(200, gin.H{"ok": true, "env": cfg.App.Env, "version": cfg.App.Version})
	}
}

func registerAuthRoutes(r *gin.Engine, h *handlers.AuthHandler) {
	r.GET("/login", h.ShowLogin)
	r.POST("/login", h.Login)
	r.GET("/register", h.ShowRegister)
	r.POST("/register", h.Register)
	r.GET("/logout", h.Logout)
	r.POST("/logout", h.Logout)
}

func registerTradeRoutes(g *gin.RouterGroup, h *handlers.TradeHandler) {
	g.GET("/", h.Index)
	g.GET("/buy", h.ShowBuy)
	g.POST("/buy", h.Buy)
	g.GET("/sell", h.ShowSell)
	g.POST("/sell", h.Sell)
	g.GET("/quote", h.ShowQuote)
	g.POST("/quote", h.GetQuote)
	g.GET("/history", h.History)
}
