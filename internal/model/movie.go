package model

import (
	"time"

	"github.com/pgvector/pgvector-go"
)

// Movie 电影模型（TMDB 信息）
// 入库策略：没有简介的电影不会生成向量，也不会入库，Embedding 与 Overview 同生共死
type Movie struct {
	ID          int              `json:"id" db:"id"`
	TmdbID      int              `json:"tmdb_id" db:"tmdb_id" gorm:"unique"`
	Title       string           `json:"title" db:"title"`
	Overview    string           `json:"overview" db:"overview"`
	ReleaseDate *time.Time       `json:"release_date" db:"release_date"`
	PosterPath  string           `json:"poster_path" db:"poster_path"`
	VoteAverage float64          `json:"vote_average" db:"vote_average" gorm:"index"`
	Genres      []string         `json:"genres" db:"genres" gorm:"type:text[]"`
	Embedding   *pgvector.Vector `json:"-" db:"embedding" gorm:"type:vector(384)"` // 维度与 EMBEDDING_DIM 一致
	CreatedAt   time.Time        `json:"created_at" db:"created_at"`
}
