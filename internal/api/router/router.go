package router

import (
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/d60-Lab/tierlist/config"
	"github.com/d60-Lab/tierlist/docs"
	"github.com/d60-Lab/tierlist/internal/api/handler"
	"github.com/d60-Lab/tierlist/internal/api/middleware"
	"github.com/d60-Lab/tierlist/internal/metrics"
	"github.com/d60-Lab/tierlist/internal/session"
)

// New 组装路由
func New(cfg *config.Config, h *handler.Handler, sessions *session.Manager) (*gin.Engine, error) {
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	if err := handler.RegisterValidators(); err != nil {
		return nil, err
	}
	metrics.MustRegister()

	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.Recovery(),
		sentrygin.New(sentrygin.Options{Repanic: true}),
	)
	if cfg.Tracing.Enabled {
		r.Use(otelgin.Middleware(cfg.Tracing.ServiceName))
	}
	r.Use(
		middleware.Logger(),
		middleware.Metrics(),
		gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/metrics"})),
	)

	r.GET("/health", h.Health)
	r.GET("/ready", h.Ready)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	if cfg.Swagger.Enabled {
		docs.SwaggerInfo.BasePath = "/"
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	basePath := cfg.Server.BasePath
	if basePath == "" {
		basePath = "/api"
	}
	api := r.Group(basePath, middleware.Session(sessions))
	authed := middleware.RequireAuth()

	auth := api.Group("/auth")
	if cfg.RateLimit.RPS > 0 {
		auth.Use(middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst).Middleware())
	}
	{
		auth.POST("/register", h.Register)
		auth.POST("/login", h.Login)
		auth.GET("/check", h.Check)
		auth.POST("/logout", authed, h.Logout)
		auth.PATCH("/user", authed, h.UpdateUser)
		auth.GET("/google", h.GoogleLogin)
		auth.GET("/google/callback", h.GoogleCallback)
	}

	items := api.Group("/items")
	{
		items.GET("", h.ListItems)
		items.GET("/leaderboard", h.Leaderboard)
		items.GET("/my", authed, h.MyItems)
		items.GET("/my-unvoted", authed, h.MyUnvoted)
		items.GET("/recommendations", authed, h.Recommendations)
		items.POST("", authed, h.CreateItem)
		items.DELETE("/:id", authed, h.DeleteItem)
	}

	votes := api.Group("/votes")
	{
		votes.POST("", authed, h.UpsertVote)
		votes.DELETE("/:itemId", authed, h.DeleteVote)
		votes.GET("/stats/:itemId", h.VoteStats)
		votes.GET("/my", authed, h.MyVotes)
		votes.GET("/ignored", authed, h.MyIgnored)
	}

	rooms := api.Group("/rooms")
	{
		rooms.POST("", authed, h.CreateRoom)
		rooms.GET("/my", authed, h.MyRooms)
		rooms.GET("/:hash", h.GetRoom)
		rooms.PATCH("/:hash", authed, h.UpdateRoom)
		rooms.DELETE("/:hash", authed, h.DeleteRoom)
	}

	push := api.Group("/push")
	{
		push.GET("/vapid-public-key", h.VAPIDPublicKey)
		push.POST("/subscribe", authed, h.Subscribe)
		push.DELETE("/unsubscribe", authed, h.Unsubscribe)
		push.GET("/status", authed, h.PushStatus)
	}

	return r, nil
}
