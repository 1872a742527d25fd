package routes

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/haven-community/haven/config"
	"github.com/haven-community/haven/controllers"
	"github.com/haven-community/haven/middleware"
	"github.com/haven-community/haven/moderation"
	"github.com/haven-community/haven/stores"
	"github.com/haven-community/haven/utils"
)

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(db *gorm.DB) *gin.Engine {
	cfg := config.Get()
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(utils.RequestLogger())
	r.Use(utils.Recovery())

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	r.GET("/health", func(ctx *gin.Context) {
		utils.Success(ctx, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	userStore := stores.NewUserStore(db)
	feedStore := stores.NewFeedStore(db)
	feedQuery := stores.NewFeedQuery(db)
	gate := moderation.NewGate(cfg.ModerationURL, cfg.ModerationThreshold, cfg.ModerationTimeout())

	authController := controllers.NewAuthController(userStore)
	postController := controllers.NewPostController(feedStore, feedQuery, gate)
	professionalController := controllers.NewProfessionalController(db)

	api := r.Group("/api/v1")

	authGroup := api.Group("/auth")
	authGroup.Use(middleware.RateLimit())
	authGroup.POST("/signup", authController.Signup)
	authGroup.POST("/login", authController.Login)
	authGroup.GET("/me", middleware.AuthRequired(userStore), authController.Me)
	authGroup.POST("/logout", middleware.AuthRequired(userStore), authController.Logout)

	// Reads bypass auth and moderation entirely.
	api.GET("/posts", postController.ListPosts)
	api.GET("/posts/:id", postController.GetPost)
	api.GET("/professionals", professionalController.List)

	protected := api.Group("")
	protected.Use(middleware.AuthRequired(userStore), middleware.RateLimit())
	protected.POST("/posts", postController.CreatePost)
	protected.DELETE("/posts/:id", postController.DeletePost)
	protected.POST("/posts/:id/comments", postController.CreateComment)
	protected.POST("/posts/:id/like", postController.Like)
	protected.POST("/professionals", professionalController.Create)

	return r
}
