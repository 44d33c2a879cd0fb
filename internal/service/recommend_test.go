package service

import (
	"fmt"
	"math"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/user/cinematch/internal/model"
)

type fakeLikeStore struct {
	vectors []model.LikedVector
	ids     []int
}

func (f *fakeLikeStore) ListLikedVectors(userID int) ([]model.LikedVector, error) {
	return f.vectors, nil
}

func (f *fakeLikeStore) ListLikedMovieIDs(userID int) ([]int, error) {
	return f.ids, nil
}

type fakeCandidate struct {
	id     int
	title  string
	vector []float64
}

// fakeRanker 在内存里按余弦相似度排序，模拟 pgvector 的行为
type fakeRanker struct {
	candidates  []fakeCandidate
	lastQuery   []float64
	lastExclude []int
}

func (f *fakeRanker) NearestNeighbors(query []float64, excludeIDs []int, limit int) ([]model.RankedMovie, error) {
	f.lastQuery = query
	f.lastExclude = excludeIDs

	excluded := make(map[int]bool, len(excludeIDs))
	for _, id := range excludeIDs {
		excluded[id] = true
	}

	var ranked []model.RankedMovie
	for _, cand := range f.candidates {
		if excluded[cand.id] {
			continue
		}
		ranked = append(ranked, model.RankedMovie{
			ID:         cand.id,
			Title:      cand.title,
			Similarity: cosine(query, cand.vector),
		})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Similarity > ranked[j].Similarity
	})
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked, nil
}

func cosine(a, b []float64) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

func vectorText(v []float64) string {
	s := "["
	for i, f := range v {
		if i > 0 {
			s += ","
		}
		s += fmt.Sprintf("%g", f)
	}
	return s + "]"
}

func TestAggregatePreferenceMean(t *testing.T) {
	vectors := [][]float64{
		{1, 0},
		{0, 1},
		{0, 0},
	}
	got := AggregatePreference(vectors, false)

	require.Len(t, got, 2)
	assert.InDelta(t, 1.0/3.0, got[0], 1e-9)
	assert.InDelta(t, 1.0/3.0, got[1], 1e-9)
}

func TestAggregatePreferenceRecencyWeights(t *testing.T) {
	// 单位向量让偏好向量直接等于归一化后的权重
	vectors := [][]float64{
		{1, 0},
		{0, 1},
	}
	got := AggregatePreference(vectors, true)

	require.Len(t, got, 2)
	// 两条记录时 w0/w1 = 1/0.9
	assert.InDelta(t, 1.0/0.9, got[0]/got[1], 1e-9)
	assert.InDelta(t, 1.0, got[0]+got[1], 1e-9)
}

func TestAggregatePreferenceWeightsDecreasing(t *testing.T) {
	n := 5
	vectors := make([][]float64, n)
	for i := range vectors {
		vec := make([]float64, n)
		vec[i] = 1
		vectors[i] = vec
	}

	weights := AggregatePreference(vectors, true)

	var sum float64
	for i, w := range weights {
		sum += w
		if i > 0 {
			assert.Less(t, w, weights[i-1], "权重必须随排位严格递减")
		}
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
}

func TestNormalizeStoredVector(t *testing.T) {
	tests := []struct {
		name    string
		in      model.StoredVector
		dim     int
		want    []float64
		wantErr bool
	}{
		{
			name: "文本形式",
			in:   model.StoredVector{Text: "[0.5,-0.25,1]"},
			dim:  3,
			want: []float64{0.5, -0.25, 1},
		},
		{
			name: "原生形式",
			in:   model.StoredVector{Floats: []float32{1, 0, 0}},
			dim:  3,
			want: []float64{1, 0, 0},
		},
		{
			name:    "格式错误",
			in:      model.StoredVector{Text: "0.5,0.25"},
			dim:     2,
			wantErr: true,
		},
		{
			name:    "维度不符",
			in:      model.StoredVector{Text: "[1,2]"},
			dim:     3,
			wantErr: true,
		},
		{
			name:    "空向量",
			in:      model.StoredVector{},
			dim:     3,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeStoredVector(tt.in, tt.dim)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Len(t, got, len(tt.want))
			for i := range tt.want {
				assert.InDelta(t, tt.want[i], got[i], 1e-6)
			}
		})
	}
}

func TestRecommendEmptyHistory(t *testing.T) {
	svc := NewRecommendationService(&fakeLikeStore{}, &fakeRanker{}, 3)

	recs, err := svc.Recommend(1, 10, true)

	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestRecommendDropsMalformedVectors(t *testing.T) {
	now := time.Now()
	likes := &fakeLikeStore{
		vectors: []model.LikedVector{
			{Embedding: model.StoredVector{Text: "not-a-vector"}, LikedAt: now},
			{Embedding: model.StoredVector{Text: "[0,1,0]"}, LikedAt: now.Add(-time.Hour)},
		},
		ids: []int{1, 2},
	}
	ranker := &fakeRanker{
		candidates: []fakeCandidate{
			{id: 3, title: "C", vector: []float64{0, 1, 0}},
		},
	}
	svc := NewRecommendationService(likes, ranker, 3)

	recs, err := svc.Recommend(1, 10, true)

	require.NoError(t, err)
	require.Len(t, recs, 1)
	// 坏向量被丢弃后，查询向量应该只由剩下的合法向量决定
	assert.InDelta(t, 1.0, recs[0].Similarity, 1e-9)
}

func TestRecommendAllMalformedBehavesAsEmpty(t *testing.T) {
	likes := &fakeLikeStore{
		vectors: []model.LikedVector{
			{Embedding: model.StoredVector{Text: "broken"}, LikedAt: time.Now()},
		},
		ids: []int{1},
	}
	svc := NewRecommendationService(likes, &fakeRanker{}, 3)

	recs, err := svc.Recommend(1, 10, false)

	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestRecommendPrefersRecentlyLiked(t *testing.T) {
	vecA := []float64{1, 0, 0}
	vecB := []float64{0, 1, 0}
	now := time.Now()

	// B 比 A 更近被喜欢，列表按时间倒序所以 B 在前
	likes := &fakeLikeStore{
		vectors: []model.LikedVector{
			{Embedding: model.StoredVector{Text: vectorText(vecB)}, LikedAt: now},
			{Embedding: model.StoredVector{Text: vectorText(vecA)}, LikedAt: now.Add(-time.Hour)},
		},
		ids: []int{1, 2},
	}
	ranker := &fakeRanker{
		candidates: []fakeCandidate{
			{id: 1, title: "A", vector: vecA},
			{id: 2, title: "B", vector: vecB},
			{id: 3, title: "近A", vector: []float64{0.9, 0.1, 0}},
			{id: 4, title: "近B", vector: []float64{0.1, 0.9, 0}},
		},
	}
	svc := NewRecommendationService(likes, ranker, 3)

	recs, err := svc.Recommend(1, 10, true)
	require.NoError(t, err)

	// 偏好向量应该更接近最近喜欢的 B
	assert.Greater(t, cosine(ranker.lastQuery, vecB), cosine(ranker.lastQuery, vecA))

	// 已喜欢的电影不出现在结果里
	for _, rec := range recs {
		assert.NotContains(t, []int{1, 2}, rec.ID)
	}

	// 与 B 相近的候选排在与 A 相近的前面
	require.Len(t, recs, 2)
	assert.Equal(t, "近B", recs[0].Title)
	assert.Equal(t, "近A", recs[1].Title)
}

func TestRecommendRespectsLimitAndOrdering(t *testing.T) {
	likes := &fakeLikeStore{
		vectors: []model.LikedVector{
			{Embedding: model.StoredVector{Text: "[1,0,0]"}, LikedAt: time.Now()},
		},
		ids: []int{1},
	}
	ranker := &fakeRanker{
		candidates: []fakeCandidate{
			{id: 2, title: "a", vector: []float64{1, 0, 0}},
			{id: 3, title: "b", vector: []float64{0.8, 0.2, 0}},
			{id: 4, title: "c", vector: []float64{0, 1, 0}},
			{id: 5, title: "d", vector: []float64{-1, 0, 0}},
		},
	}
	svc := NewRecommendationService(likes, ranker, 3)

	recs, err := svc.Recommend(1, 2, false)
	require.NoError(t, err)

	require.Len(t, recs, 2)
	for i := 1; i < len(recs); i++ {
		assert.GreaterOrEqual(t, recs[i-1].Similarity, recs[i].Similarity)
	}
	assert.Equal(t, []int{1}, ranker.lastExclude)
}
