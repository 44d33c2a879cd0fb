package utils

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseVectorText 解析 pgvector 的文本序列化形式 "[v1,v2,...]"
func ParseVectorText(s string) ([]float64, error) {
	s = strings.TrimSpace(s)
	if len(s) < 2 || s[0] != '[' || s[len(s)-1] != ']' {
		return nil, fmt.Errorf("向量文本格式错误: %q", s)
	}

	body := strings.TrimSpace(s[1 : len(s)-1])
	if body == "" {
		return nil, fmt.Errorf("向量文本为空: %q", s)
	}

	parts := strings.Split(body, ",")
	out := make([]float64, len(parts))
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("向量第 %d 维解析失败: %w", i, err)
		}
		out[i] = f
	}
	return out, nil
}
