package model

import (
	"fmt"
	"time"
)

// StoredVector 存储层读出的向量
// pgvector 列经过 JOIN 查询后可能以文本形式 "[v1,v2,...]" 返回，
// 也可能由驱动直接解码成数值切片，两种形式在这里显式区分，
// 进入聚合计算前统一归一化为 []float64
type StoredVector struct {
	Floats []float32 // 原生数值形式
	Text   string    // pgvector 文本序列化形式
}

// Scan 实现 sql.Scanner，接收驱动返回的文本形式
func (v *StoredVector) Scan(src interface{}) error {
	switch s := src.(type) {
	case nil:
		*v = StoredVector{}
		return nil
	case []byte:
		v.Text = string(s)
		return nil
	case string:
		v.Text = s
		return nil
	default:
		return fmt.Errorf("无法将 %T 解析为向量", src)
	}
}

// LikedVector 某条喜欢记录对应的电影向量与时间
type LikedVector struct {
	Embedding StoredVector
	LikedAt   time.Time
}

// RankedMovie 相似度排序后的候选电影
type RankedMovie struct {
	ID          int     `json:"id"`
	Title       string  `json:"title"`
	PosterPath  string  `json:"poster_path"`
	VoteAverage float64 `json:"vote_average"`
	Similarity  float64 `json:"similarity"` // 1 - 余弦距离，完全相同为 1.0
}
