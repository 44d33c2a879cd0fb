package model

import (
	"time"
)

// UserLike 用户喜欢记录
// (user_id, movie_id) 唯一，重复喜欢在插入时被静默忽略
type UserLike struct {
	ID      int       `json:"id" db:"id"`
	UserID  int       `json:"user_id" db:"user_id" gorm:"uniqueIndex:idx_user_like"`
	MovieID int       `json:"movie_id" db:"movie_id" gorm:"uniqueIndex:idx_user_like"`
	LikedAt time.Time `json:"liked_at" db:"liked_at" gorm:"index"`
}

// LikedMovie 喜欢列表的关联查询结果
type LikedMovie struct {
	MovieID     int       `json:"movie_id"`
	Title       string    `json:"title"`
	PosterPath  string    `json:"poster_path"`
	VoteAverage float64   `json:"vote_average"`
	LikedAt     time.Time `json:"liked_at"`
}
