package handler

import (
	"errors"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/user/cinematch/internal/config"
	"github.com/user/cinematch/internal/middleware"
	"github.com/user/cinematch/internal/model"
	"github.com/user/cinematch/internal/repository"
	"github.com/user/cinematch/internal/service"
	"github.com/user/cinematch/internal/utils"
)

// Handler HTTP 处理器
type Handler struct {
	Repos       *repository.Repositories
	Config      *config.Config
	Recommender *service.RecommendationService
	Ingest      *service.IngestService
	TMDB        *service.TMDBClient

	searchCache *utils.SearchCache[[]model.Movie]
}

// NewHandler 创建处理器
func NewHandler(repos *repository.Repositories, cfg *config.Config) *Handler {
	embedder := service.NewOllamaEmbedder(cfg)

	return &Handler{
		Repos:       repos,
		Config:      cfg,
		Recommender: service.NewRecommendationService(repos.Like, repos.Movie, cfg.EmbeddingDim),
		Ingest:      service.NewIngestService(repos.Movie, embedder),
		TMDB:        service.NewTMDBClient(cfg),
		searchCache: utils.NewSearchCache[[]model.Movie](1000, 10*time.Minute),
	}
}

// bindError 把绑定错误转成对外提示
func bindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		utils.BadRequest(c, "参数校验失败: "+verrs[0].Field())
		return
	}
	utils.BadRequest(c, "请求格式错误")
}

// ==================== 认证 ====================

type registerRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

// Register 注册
func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	// 检查邮箱是否已存在
	existing, err := h.Repos.User.FindByEmail(req.Email)
	if err != nil {
		utils.InternalServerError(c, "")
		return
	}
	if existing != nil {
		utils.BadRequest(c, "该邮箱已被注册")
		return
	}

	// 默认截取邮箱 @ 符号前的内容作为用户名
	username := req.Email
	if parts := strings.Split(req.Email, "@"); len(parts) > 0 {
		username = parts[0]
	}

	user, err := h.Repos.User.Create(req.Email, username, req.Password)
	if err != nil {
		utils.InternalServerError(c, "注册失败，请重试")
		return
	}

	token, err := middleware.GenerateToken(user.ID, user.Email, user.Role, h.Config.AppSecret, h.Config.JWTExpiry)
	if err != nil {
		utils.InternalServerError(c, "注册失败，请重试")
		return
	}

	c.SetCookie("token", token, int(h.Config.JWTExpiry.Seconds()), "/", "", false, true)
	utils.Success(c, gin.H{"user": user, "token": token})
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login 登录
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	user, err := h.Repos.User.FindByEmail(req.Email)
	if err != nil || user == nil {
		utils.Unauthorized(c, "邮箱或密码错误")
		return
	}

	if !h.Repos.User.CheckPassword(user, req.Password) {
		utils.Unauthorized(c, "邮箱或密码错误")
		return
	}

	token, err := middleware.GenerateToken(user.ID, user.Email, user.Role, h.Config.AppSecret, h.Config.JWTExpiry)
	if err != nil {
		utils.InternalServerError(c, "登录失败，请重试")
		return
	}

	c.SetCookie("token", token, int(h.Config.JWTExpiry.Seconds()), "/", "", false, true)
	utils.Success(c, gin.H{"user": user, "token": token})
}

// Logout 退出登录
func (h *Handler) Logout(c *gin.Context) {
	c.SetCookie("token", "", -1, "/", "", false, true)
	utils.SuccessWithMessage(c, "已退出登录", nil)
}

// Me 当前用户信息
func (h *Handler) Me(c *gin.Context) {
	userID := middleware.GetUserID(c)
	user, err := h.Repos.User.FindByID(userID)
	if err != nil || user == nil {
		utils.Unauthorized(c, "")
		return
	}
	utils.Success(c, user)
}
