package handler

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/user/cinematch/internal/middleware"
	"github.com/user/cinematch/internal/model"
	"github.com/user/cinematch/internal/utils"
)

// ==================== 电影 ====================

// SearchMovies 按标题搜索电影
func (h *Handler) SearchMovies(c *gin.Context) {
	keyword := strings.TrimSpace(c.Query("q"))
	if keyword == "" {
		utils.BadRequest(c, "缺少搜索关键词")
		return
	}

	cacheKey := strings.ToLower(keyword)
	if cached, ok := h.searchCache.Get(cacheKey); ok {
		utils.Success(c, gin.H{"items": cached})
		return
	}

	movies, err := h.Repos.Movie.SearchByTitle(keyword, 20)
	if err != nil {
		utils.InternalServerError(c, "")
		return
	}

	h.searchCache.Set(cacheKey, movies)
	utils.Success(c, gin.H{"items": movies})
}

// GetMovie 获取电影详情
func (h *Handler) GetMovie(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "无效的电影 ID")
		return
	}

	cacheKey := fmt.Sprintf("movie:%d", id)
	if cached, ok := utils.CacheGet(cacheKey); ok {
		utils.Success(c, cached)
		return
	}

	movie, err := h.Repos.Movie.FindByID(id)
	if err != nil {
		utils.InternalServerError(c, "")
		return
	}
	if movie == nil {
		utils.NotFound(c, "电影不存在")
		return
	}

	utils.CacheSet(cacheKey, movie, 5*time.Minute)
	utils.Success(c, movie)
}

// ==================== 喜欢 ====================

// LikeMovie 喜欢电影（重复喜欢静默忽略）
func (h *Handler) LikeMovie(c *gin.Context) {
	userID := middleware.GetUserID(c)
	movieID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "无效的电影 ID")
		return
	}

	movie, err := h.Repos.Movie.FindByID(movieID)
	if err != nil {
		utils.InternalServerError(c, "")
		return
	}
	if movie == nil {
		utils.NotFound(c, "电影不存在")
		return
	}

	if err := h.Repos.Like.Add(userID, movieID); err != nil {
		utils.InternalServerError(c, "操作失败")
		return
	}

	utils.SuccessWithMessage(c, "已喜欢", gin.H{"movie_id": movieID})
}

// UnlikeMovie 取消喜欢
func (h *Handler) UnlikeMovie(c *gin.Context) {
	userID := middleware.GetUserID(c)
	movieID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "无效的电影 ID")
		return
	}

	if err := h.Repos.Like.Remove(userID, movieID); err != nil {
		utils.InternalServerError(c, "操作失败")
		return
	}

	utils.SuccessWithMessage(c, "已取消喜欢", gin.H{"movie_id": movieID})
}

// ListLikes 喜欢列表
func (h *Handler) ListLikes(c *gin.Context) {
	userID := middleware.GetUserID(c)

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	likes, err := h.Repos.Like.ListByUser(userID, limit, offset)
	if err != nil {
		utils.InternalServerError(c, "")
		return
	}

	total, _ := h.Repos.Like.CountByUser(userID)
	utils.Success(c, gin.H{"items": likes, "total": total})
}

// ==================== 推荐 ====================

// Recommendations 个性化推荐
func (h *Handler) Recommendations(c *gin.Context) {
	userID := middleware.GetUserID(c)

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if limit <= 0 || limit > 50 {
		limit = 10
	}
	recencyWeighted := c.DefaultQuery("recency_weighted", "true") != "false"

	recs, err := h.Recommender.Recommend(userID, limit, recencyWeighted)
	if err != nil {
		utils.InternalServerError(c, "推荐计算失败")
		return
	}

	// 没有喜欢记录是正常结果，返回空列表
	if len(recs) == 0 {
		utils.SuccessWithMessage(c, "先去喜欢几部电影，才能为你推荐", gin.H{"items": []model.RankedMovie{}})
		return
	}

	utils.Success(c, gin.H{"items": recs})
}

// ==================== 管理 ====================

// AdminIngest 手动触发一次 TMDB 热门电影入库
func (h *Handler) AdminIngest(c *gin.Context) {
	pages, _ := strconv.Atoi(c.DefaultQuery("pages", "5"))
	if pages <= 0 || pages > 20 {
		pages = 5
	}

	genreMap, err := h.TMDB.FetchGenres()
	if err != nil {
		utils.InternalServerError(c, "获取类型列表失败")
		return
	}

	movies := h.TMDB.FetchPopularPages(pages)
	if len(movies) == 0 {
		utils.InternalServerError(c, "没有获取到任何电影")
		return
	}

	result := h.Ingest.Ingest(movies, genreMap)
	utils.Success(c, gin.H{
		"fetched":  len(movies),
		"inserted": result.Inserted,
		"skipped":  result.Skipped,
	})
}
