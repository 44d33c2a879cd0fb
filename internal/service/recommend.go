package service

import (
	"fmt"
	"log"

	"github.com/user/cinematch/internal/model"
	"github.com/user/cinematch/internal/utils"
	"golang.org/x/sync/singleflight"
)

// recencyDecay 按喜欢次序的指数衰减系数
// 衰减以排位计（最近一条为 0），与喜欢之间的时间间隔无关
const recencyDecay = 0.9

// LikeStore 推荐服务依赖的喜欢记录读取能力
type LikeStore interface {
	// ListLikedVectors 返回用户喜欢的电影向量，按喜欢时间倒序
	ListLikedVectors(userID int) ([]model.LikedVector, error)

	// ListLikedMovieIDs 返回用户喜欢过的全部电影 ID
	ListLikedMovieIDs(userID int) ([]int, error)
}

// MovieRanker 推荐服务依赖的相似度检索能力
type MovieRanker interface {
	// NearestNeighbors 按余弦距离返回与查询向量最接近的电影，excludeIDs 不参与候选
	NearestNeighbors(query []float64, excludeIDs []int, limit int) ([]model.RankedMovie, error)
}

// RecommendationService 推荐服务
type RecommendationService struct {
	likes  LikeStore
	movies MovieRanker
	dim    int
	sf     singleflight.Group
}

// NewRecommendationService 创建推荐服务
func NewRecommendationService(likes LikeStore, movies MovieRanker, dim int) *RecommendationService {
	return &RecommendationService{
		likes:  likes,
		movies: movies,
		dim:    dim,
	}
}

// Recommend 为用户生成个性化推荐
// 用户没有任何喜欢记录时返回空列表，这是正常结果而非错误；
// 偏好向量每次请求重新计算，并发的相同请求用 singleflight 合并
func (s *RecommendationService) Recommend(userID, limit int, recencyWeighted bool) ([]model.RankedMovie, error) {
	key := fmt.Sprintf("rec:%d:%d:%t", userID, limit, recencyWeighted)
	val, err, _ := s.sf.Do(key, func() (interface{}, error) {
		return s.recommend(userID, limit, recencyWeighted)
	})
	if err != nil {
		return nil, err
	}
	return val.([]model.RankedMovie), nil
}

func (s *RecommendationService) recommend(userID, limit int, recencyWeighted bool) ([]model.RankedMovie, error) {
	// 1. 喜欢记录连同向量，按喜欢时间倒序
	liked, err := s.likes.ListLikedVectors(userID)
	if err != nil {
		return nil, err
	}

	// 2. 归一化向量，解析失败的条目丢弃不中断整个请求
	vectors := make([][]float64, 0, len(liked))
	for _, lv := range liked {
		vec, err := NormalizeStoredVector(lv.Embedding, s.dim)
		if err != nil {
			log.Printf("[推荐] 用户 %d 的喜欢记录向量无法解析，已跳过: %v", userID, err)
			continue
		}
		vectors = append(vectors, vec)
	}

	// 3. 没有可用向量等同于没有喜欢记录
	if len(vectors) == 0 {
		return []model.RankedMovie{}, nil
	}

	// 4. 聚合出偏好向量
	preference := AggregatePreference(vectors, recencyWeighted)

	// 5. 已喜欢的电影不再推荐
	excludeIDs, err := s.likes.ListLikedMovieIDs(userID)
	if err != nil {
		return nil, err
	}

	return s.movies.NearestNeighbors(preference, excludeIDs, limit)
}

// AggregatePreference 把多条喜欢向量聚合成一条偏好向量
// vectors 按喜欢时间倒序（最近的在前），必须非空；
// recencyWeighted 为 true 时第 i 条权重为 0.9^i 再归一化，
// 为 false 时取逐维算术平均。全部计算使用 float64
func AggregatePreference(vectors [][]float64, recencyWeighted bool) []float64 {
	dim := len(vectors[0])
	preference := make([]float64, dim)

	if !recencyWeighted {
		for _, vec := range vectors {
			for i, v := range vec {
				preference[i] += v
			}
		}
		n := float64(len(vectors))
		for i := range preference {
			preference[i] /= n
		}
		return preference
	}

	weights := make([]float64, len(vectors))
	var sum float64
	w := 1.0
	for i := range weights {
		weights[i] = w
		sum += w
		w *= recencyDecay
	}
	for i := range weights {
		weights[i] /= sum
	}

	for j, vec := range vectors {
		for i, v := range vec {
			preference[i] += v * weights[j]
		}
	}
	return preference
}

// NormalizeStoredVector 把存储层的两种向量形式统一成 []float64
// dim 大于 0 时校验维度，不符按解析失败处理
func NormalizeStoredVector(v model.StoredVector, dim int) ([]float64, error) {
	var out []float64

	switch {
	case len(v.Floats) > 0:
		out = make([]float64, len(v.Floats))
		for i, f := range v.Floats {
			out[i] = float64(f)
		}
	case v.Text != "":
		parsed, err := utils.ParseVectorText(v.Text)
		if err != nil {
			return nil, err
		}
		out = parsed
	default:
		return nil, fmt.Errorf("向量为空")
	}

	if dim > 0 && len(out) != dim {
		return nil, fmt.Errorf("向量维度不符: 期望 %d，实际 %d", dim, len(out))
	}
	return out, nil
}
