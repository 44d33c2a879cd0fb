package repository

import (
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"
	"github.com/pgvector/pgvector-go"
	"github.com/user/cinematch/internal/model"
	"gorm.io/gorm"
)

type MovieRepository struct {
	db *gorm.DB
}

func NewMovieRepository(db *gorm.DB) *MovieRepository {
	return &MovieRepository{db: db}
}

// Insert 插入电影，tmdb_id 冲突时不做任何更新
// 返回是否真正插入了新行，冲突行保持原样
func (r *MovieRepository) Insert(movie *model.Movie) (bool, error) {
	createdAt := movie.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	res := r.db.Exec(`
		INSERT INTO movies (tmdb_id, title, overview, release_date, poster_path, vote_average, genres, embedding, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (tmdb_id) DO NOTHING
	`, movie.TmdbID, movie.Title, movie.Overview, movie.ReleaseDate, movie.PosterPath,
		movie.VoteAverage, pq.Array(movie.Genres), movie.Embedding, createdAt)

	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// FindByID 根据 ID 查找电影（不含向量列）
func (r *MovieRepository) FindByID(id int) (*model.Movie, error) {
	var movie model.Movie
	var releaseDate sql.NullTime

	err := r.db.Model(&model.Movie{}).
		Select("id", "tmdb_id", "title", "overview", "release_date", "poster_path", "vote_average", "genres", "created_at").
		Where("id = ?", id).
		Row().Scan(
		&movie.ID, &movie.TmdbID, &movie.Title, &movie.Overview,
		&releaseDate, &movie.PosterPath, &movie.VoteAverage,
		pq.Array(&movie.Genres), &movie.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) || err.Error() == "sql: no rows in result set" {
			return nil, nil
		}
		return nil, err
	}

	if releaseDate.Valid {
		movie.ReleaseDate = &releaseDate.Time
	}
	return &movie, nil
}

// SearchByTitle 按标题模糊搜索
func (r *MovieRepository) SearchByTitle(keyword string, limit int) ([]model.Movie, error) {
	rows, err := r.db.Raw(`
		SELECT id, tmdb_id, title, overview, release_date, poster_path, vote_average, genres, created_at
		FROM movies
		WHERE title ILIKE ?
		ORDER BY vote_average DESC
		LIMIT ?
	`, "%"+keyword+"%", limit).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	movies := make([]model.Movie, 0, limit)
	for rows.Next() {
		var movie model.Movie
		var releaseDate sql.NullTime
		if err := rows.Scan(
			&movie.ID, &movie.TmdbID, &movie.Title, &movie.Overview,
			&releaseDate, &movie.PosterPath, &movie.VoteAverage,
			pq.Array(&movie.Genres), &movie.CreatedAt,
		); err != nil {
			return nil, err
		}
		if releaseDate.Valid {
			movie.ReleaseDate = &releaseDate.Time
		}
		movies = append(movies, movie)
	}
	return movies, rows.Err()
}

// NearestNeighbors 按余弦距离查找最接近查询向量的电影
// 相似度为 1 - 余弦距离；excludeIDs 中的电影不参与候选；
// 相同分值下的次序由数据库自然排序决定
func (r *MovieRepository) NearestNeighbors(query []float64, excludeIDs []int, limit int) ([]model.RankedMovie, error) {
	qv := make([]float32, len(query))
	for i, v := range query {
		qv[i] = float32(v)
	}
	vec := pgvector.NewVector(qv)

	sqlStr := `
		SELECT m.id, m.title, m.poster_path, m.vote_average,
		       1 - (m.embedding <=> ?) AS similarity
		FROM movies m
		WHERE m.embedding IS NOT NULL`
	args := []interface{}{vec}

	if len(excludeIDs) > 0 {
		sqlStr += `
		  AND m.id <> ALL(?)`
		args = append(args, pq.Array(excludeIDs))
	}

	sqlStr += `
		ORDER BY m.embedding <=> ?
		LIMIT ?`
	args = append(args, vec, limit)

	rows, err := r.db.Raw(sqlStr, args...).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ranked := make([]model.RankedMovie, 0, limit)
	for rows.Next() {
		var m model.RankedMovie
		if err := rows.Scan(&m.ID, &m.Title, &m.PosterPath, &m.VoteAverage, &m.Similarity); err != nil {
			return nil, err
		}
		ranked = append(ranked, m)
	}
	return ranked, rows.Err()
}

// Count 电影总数
func (r *MovieRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&model.Movie{}).Count(&count).Error
	return count, err
}
