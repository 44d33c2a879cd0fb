package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/user/cinematch/internal/handler"
	"github.com/user/cinematch/internal/middleware"
)

// RegisterRoutes 注册所有路由
func RegisterRoutes(r *gin.Engine, h *handler.Handler) {
	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// ==================== 认证 ====================
	auth := r.Group("/auth")
	{
		auth.POST("/register", h.Register)
		auth.POST("/login", h.Login)
		auth.POST("/logout", h.Logout)
	}

	// ==================== 公开 API ====================
	api := r.Group("/api")
	api.Use(middleware.OptionalAuth(h.Config.AppSecret))
	{
		api.GET("/movies/search", h.SearchMovies)
		api.GET("/movies/:id", h.GetMovie)
	}

	// ==================== 需要登录的 API ====================
	user := r.Group("/api")
	user.Use(middleware.RequireAuth(h.Config.AppSecret))
	{
		user.GET("/me", h.Me)
		user.POST("/movies/:id/like", h.LikeMovie)
		user.DELETE("/movies/:id/like", h.UnlikeMovie)
		user.GET("/likes", h.ListLikes)
		user.GET("/recommendations", h.Recommendations)
	}

	// ==================== 管理后台 ====================
	admin := r.Group("/admin")
	admin.Use(middleware.RequireAuth(h.Config.AppSecret))
	admin.Use(middleware.RequireAdmin())
	{
		admin.POST("/ingest", h.AdminIngest)
	}
}
