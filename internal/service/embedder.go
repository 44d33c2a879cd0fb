package service

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/user/cinematch/internal/config"
)

// Embedder 文本向量化接口
type Embedder interface {
	Embed(text string) ([]float32, error)
}

// BuildEmbeddingText 构造待向量化文本
// 拼接顺序固定为：标题、"Genre: xx, yy"（有类型时）、简介（有简介时），
// 各部分用 ". " 连接。顺序和分隔符不能改动，否则重新入库后
// 新旧向量会落在不同的语义空间里
func BuildEmbeddingText(title, overview string, genreNames []string) string {
	parts := []string{title}

	if len(genreNames) > 0 {
		parts = append(parts, "Genre: "+strings.Join(genreNames, ", "))
	}

	if overview != "" {
		parts = append(parts, overview)
	}

	return strings.Join(parts, ". ")
}

// OllamaEmbedder 调用 Ollama embeddings API 生成向量
type OllamaEmbedder struct {
	host   string
	model  string
	dim    int
	client *http.Client
}

// NewOllamaEmbedder 创建向量化客户端
func NewOllamaEmbedder(cfg *config.Config) *OllamaEmbedder {
	return &OllamaEmbedder{
		host:  cfg.EmbeddingHost,
		model: cfg.EmbeddingModel,
		dim:   cfg.EmbeddingDim,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// embeddingRequest Ollama embedding API 请求结构
type embeddingRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

// embeddingResponse Ollama embedding API 响应结构
type embeddingResponse struct {
	Embedding []float32 `json:"embedding"`
}

// Embed 生成文本向量，校验返回维度
func (e *OllamaEmbedder) Embed(text string) ([]float32, error) {
	reqBody := embeddingRequest{
		Model:  e.model,
		Prompt: text,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request failed: %w", err)
	}

	resp, err := e.client.Post(e.host+"/api/embeddings", "application/json", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("post request to ollama failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ollama returned error status: %d", resp.StatusCode)
	}

	var result embeddingResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode response failed: %w", err)
	}

	if len(result.Embedding) != e.dim {
		return nil, fmt.Errorf("向量维度不符: 期望 %d，实际 %d", e.dim, len(result.Embedding))
	}

	return result.Embedding, nil
}
