package service

import (
	"log"
	"time"

	"github.com/pgvector/pgvector-go"
	"github.com/user/cinematch/internal/model"
)

// MovieInserter 入库流水线依赖的存储能力
type MovieInserter interface {
	// Insert 插入电影，tmdb_id 冲突时返回 false 且不改动已有行
	Insert(movie *model.Movie) (bool, error)
}

// SkipReason 单条记录被跳过的原因
type SkipReason string

const (
	SkipEmptyOverview SkipReason = "empty_overview" // 没有简介，不生成向量也不入库
	SkipDuplicate     SkipReason = "duplicate"      // tmdb_id 已存在
	SkipEmbedFailed   SkipReason = "embed_failed"   // 向量化失败
	SkipStoreFailed   SkipReason = "store_failed"   // 写库失败
)

// RecordOutcome 单条记录的处理结果
type RecordOutcome struct {
	TmdbID   int
	Title    string
	Inserted bool
	Reason   SkipReason // 仅在未插入时有值
}

// IngestResult 一批入库的汇总结果
type IngestResult struct {
	Inserted int
	Skipped  int
	Outcomes []RecordOutcome
}

// IngestService 电影入库流水线
type IngestService struct {
	movies   MovieInserter
	embedder Embedder
}

// NewIngestService 创建入库服务
func NewIngestService(movies MovieInserter, embedder Embedder) *IngestService {
	return &IngestService{
		movies:   movies,
		embedder: embedder,
	}
}

// Ingest 处理一批 TMDB 原始电影数据
// 单条记录出错只计入跳过数并继续，整批永远不会因个别坏记录中断；
// genreMap 由调用方在一次运行开始时构建并传入
func (s *IngestService) Ingest(movies []RawMovie, genreMap map[int]string) IngestResult {
	result := IngestResult{
		Outcomes: make([]RecordOutcome, 0, len(movies)),
	}

	for _, raw := range movies {
		outcome := s.ingestOne(raw, genreMap)
		result.Outcomes = append(result.Outcomes, outcome)
		if outcome.Inserted {
			result.Inserted++
		} else {
			result.Skipped++
		}
	}

	log.Printf("[入库] 完成: 插入 %d 条，跳过 %d 条", result.Inserted, result.Skipped)
	return result
}

func (s *IngestService) ingestOne(raw RawMovie, genreMap map[int]string) RecordOutcome {
	outcome := RecordOutcome{TmdbID: raw.ID, Title: raw.Title}

	// 没有简介的电影不参与推荐，直接跳过
	if raw.Overview == "" {
		outcome.Reason = SkipEmptyOverview
		return outcome
	}

	genreNames := ResolveGenreNames(raw.GenreIDs, genreMap)

	text := BuildEmbeddingText(raw.Title, raw.Overview, genreNames)
	embedding, err := s.embedder.Embed(text)
	if err != nil {
		log.Printf("[入库] %s (tmdb_id=%d) 向量化失败: %v", raw.Title, raw.ID, err)
		outcome.Reason = SkipEmbedFailed
		return outcome
	}

	// 上映日期解析失败时按缺失处理，不影响整条记录
	var releaseDate *time.Time
	if raw.ReleaseDate != "" {
		if t, err := time.Parse("2006-01-02", raw.ReleaseDate); err == nil {
			releaseDate = &t
		}
	}

	vec := pgvector.NewVector(embedding)
	movie := &model.Movie{
		TmdbID:      raw.ID,
		Title:       raw.Title,
		Overview:    raw.Overview,
		ReleaseDate: releaseDate,
		PosterPath:  raw.PosterPath,
		VoteAverage: raw.VoteAverage,
		Genres:      genreNames,
		Embedding:   &vec,
	}

	inserted, err := s.movies.Insert(movie)
	if err != nil {
		log.Printf("[入库] %s (tmdb_id=%d) 写库失败: %v", raw.Title, raw.ID, err)
		outcome.Reason = SkipStoreFailed
		return outcome
	}
	if !inserted {
		outcome.Reason = SkipDuplicate
		return outcome
	}

	outcome.Inserted = true
	return outcome
}

// ResolveGenreNames 将类型 ID 解析为名称，未知 ID 静默丢弃
func ResolveGenreNames(genreIDs []int, genreMap map[int]string) []string {
	names := make([]string, 0, len(genreIDs))
	for _, id := range genreIDs {
		if name, ok := genreMap[id]; ok {
			names = append(names, name)
		}
	}
	return names
}
