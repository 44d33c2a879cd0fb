package repository

import (
	"time"

	"github.com/user/cinematch/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type LikeRepository struct {
	db *gorm.DB
}

func NewLikeRepository(db *gorm.DB) *LikeRepository {
	return &LikeRepository{db: db}
}

// Add 记录喜欢，重复喜欢静默忽略
func (r *LikeRepository) Add(userID, movieID int) error {
	like := &model.UserLike{
		UserID:  userID,
		MovieID: movieID,
		LikedAt: time.Now(),
	}
	return r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(like).Error
}

// Remove 取消喜欢
func (r *LikeRepository) Remove(userID, movieID int) error {
	return r.db.Where("user_id = ? AND movie_id = ?", userID, movieID).Delete(&model.UserLike{}).Error
}

// IsLiked 检查是否已喜欢
func (r *LikeRepository) IsLiked(userID, movieID int) (bool, error) {
	var count int64
	err := r.db.Model(&model.UserLike{}).Where("user_id = ? AND movie_id = ?", userID, movieID).Count(&count).Error
	return count > 0, err
}

// ListLikedVectors 获取某用户喜欢的电影向量，按喜欢时间倒序
// 向量列以文本形式读出，由推荐服务负责归一化
func (r *LikeRepository) ListLikedVectors(userID int) ([]model.LikedVector, error) {
	rows, err := r.db.Raw(`
		SELECT m.embedding::text, ul.liked_at
		FROM user_likes ul
		JOIN movies m ON ul.movie_id = m.id
		WHERE ul.user_id = ? AND m.embedding IS NOT NULL
		ORDER BY ul.liked_at DESC
	`, userID).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var liked []model.LikedVector
	for rows.Next() {
		var lv model.LikedVector
		if err := rows.Scan(&lv.Embedding, &lv.LikedAt); err != nil {
			return nil, err
		}
		liked = append(liked, lv)
	}
	return liked, rows.Err()
}

// ListLikedMovieIDs 获取某用户喜欢过的全部电影 ID
func (r *LikeRepository) ListLikedMovieIDs(userID int) ([]int, error) {
	var ids []int
	err := r.db.Model(&model.UserLike{}).
		Where("user_id = ?", userID).
		Pluck("movie_id", &ids).Error
	return ids, err
}

// ListByUser 获取喜欢列表（带电影信息），按喜欢时间倒序
func (r *LikeRepository) ListByUser(userID, limit, offset int) ([]model.LikedMovie, error) {
	rows, err := r.db.Raw(`
		SELECT m.id, m.title, m.poster_path, m.vote_average, ul.liked_at
		FROM user_likes ul
		JOIN movies m ON ul.movie_id = m.id
		WHERE ul.user_id = ?
		ORDER BY ul.liked_at DESC
		LIMIT ? OFFSET ?
	`, userID, limit, offset).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	likes := make([]model.LikedMovie, 0, limit)
	for rows.Next() {
		var lm model.LikedMovie
		if err := rows.Scan(&lm.MovieID, &lm.Title, &lm.PosterPath, &lm.VoteAverage, &lm.LikedAt); err != nil {
			return nil, err
		}
		likes = append(likes, lm)
	}
	return likes, rows.Err()
}

// CountByUser 统计用户喜欢数量
func (r *LikeRepository) CountByUser(userID int) (int, error) {
	var count int64
	err := r.db.Model(&model.UserLike{}).Where("user_id = ?", userID).Count(&count).Error
	return int(count), err
}
